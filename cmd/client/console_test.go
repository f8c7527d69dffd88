package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/achgulp/axon-bbs-sub000/pkg/eventlog"
	"github.com/achgulp/axon-bbs-sub000/pkg/game"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/achgulp/axon-bbs-sub000/pkg/session"
	"github.com/achgulp/axon-bbs-sub000/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    session.Command
		wantErr bool
	}{
		{name: "build", line: "build tank", want: session.BuildCommand{UnitType: types.UnitTypeTank}},
		{name: "build drone", line: "build Drone", want: session.BuildCommand{UnitType: types.UnitTypeDrone}},
		{name: "move", line: "move 0-TANK-a 3.5 -10", want: session.MoveCommand{UnitID: "0-TANK-a", Point: &kinematic.Vector{X: 3.5, Z: -10}}},
		{name: "attack", line: "attack 0-TANK-a fortress-1", want: session.MoveCommand{UnitID: "0-TANK-a", TargetID: "fortress-1"}},
		{name: "build without type", line: "build", wantErr: true},
		{name: "bad coordinate", line: "move 0-TANK-a x 1", wantErr: true},
		{name: "unknown", line: "retreat", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommand(strings.Fields(tt.line), nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func playingState(t *testing.T) *state.InMemoryStateManager {
	t.Helper()
	w := game.NewWorldState(tuning.Default())
	w.Units = []types.Unit{{ID: "0-TANK-a", OwnerID: 0, Type: types.UnitTypeTank, Health: 80, MaxHealth: 100, TargetID: "fortress-1"}}
	sm := state.NewInMemoryStateManager()
	require.NoError(t, sm.Set(context.Background(), &state.Snapshot{
		Phase:    state.PhasePlaying,
		Self:     types.Player{Identity: types.Identity{DisplayName: "Alice", PublicKeyID: "pk-alice"}, ID: 0},
		Opponent: types.SyntheticOpponent,
		World:    w,
	}))
	return sm
}

func TestConsole_Run(t *testing.T) {
	commands := make(chan session.Command)
	go func() {
		for cmd := range commands {
			switch cmd := cmd.(type) {
			case session.BuildCommand:
				cmd.Result <- nil
			case session.MoveCommand:
				cmd.Result <- errors.New("unit 0-TANK-zzz not found")
			}
		}
	}()
	defer close(commands)

	in := strings.NewReader("build tank\nattack 0-TANK-zzz fortress-1\n\nstatus\nfly\n")
	out := &bytes.Buffer{}
	newConsole(in, out, commands, playingState(t)).Run(context.Background())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, "ok", lines[0])
	assert.Equal(t, "error: unit 0-TANK-zzz not found", lines[1])
	assert.Contains(t, lines[2], "you are player 0 (Alice) against Fortress AI")
	assert.Contains(t, out.String(), "fortress-1 (player 1): 2000/2000")
	assert.Contains(t, out.String(), "0-TANK-a at (0.0, 0.0) hp 80/100 -> fortress-1")
	assert.Equal(t, `error: unknown command "fly"`, lines[len(lines)-1])
}

func TestConsole_NotPlaying(t *testing.T) {
	out := &bytes.Buffer{}
	newConsole(strings.NewReader("build tank\n"), out, nil, state.NewInMemoryStateManager()).Run(context.Background())
	assert.Equal(t, "error: not in a game\n", out.String())
}

func TestPrintEntry(t *testing.T) {
	target := "fortress-1"
	event := messages.NewEvent(messages.MoveUnit{UnitID: "0-TANK-a", TargetID: &target})
	event.TimestampMs = 1700000000000
	event.Sender = types.Identity{DisplayName: "Alice", PublicKeyID: "pk-alice"}
	body, err := messages.Encode(event)
	require.NoError(t, err)

	out := &bytes.Buffer{}
	printEntry(out, eventlog.Entry{ID: 7, Body: string(body), AuthorDisplay: "Alice"})
	printEntry(out, eventlog.Entry{ID: 8, Body: "{", AuthorDisplay: "Mallory"})

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "#7 Alice: MOVE_UNIT 0-TANK-a -> fortress-1", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "#8 Mallory: malformed event"))
}

func TestPrintOutcome(t *testing.T) {
	out := &bytes.Buffer{}
	printOutcome(out, session.Outcome{WinnerID: 1, Won: true, Opponent: types.SyntheticOpponent})
	assert.Equal(t, "Victory! You destroyed Fortress AI's fortress.\n", out.String())
}

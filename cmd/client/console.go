package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/achgulp/axon-bbs-sub000/pkg/session"
	"github.com/achgulp/axon-bbs-sub000/pkg/state"
)

// commandTimeout bounds the wait for the game loop to apply a command.
const commandTimeout = 2 * time.Second

type console struct {
	in           io.Reader
	out          io.Writer
	commands     chan<- session.Command
	stateManager state.StateManager
}

func newConsole(in io.Reader, out io.Writer, commands chan<- session.Command, stateManager state.StateManager) *console {
	return &console{
		in:           in,
		out:          out,
		commands:     commands,
		stateManager: stateManager,
	}
}

func (c *console) Run(ctx context.Context) {
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		c.handle(ctx, scanner.Text())
	}
}

func (c *console) handle(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	snap, err := c.stateManager.Get(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	if fields[0] == "status" {
		printStatus(c.out, snap)
		return
	}
	if fields[0] == "help" {
		fmt.Fprintln(c.out, "build tank|drone, move <unit> <x> <z>, attack <unit> <target>, status")
		return
	}

	result := make(chan error, 1)
	cmd, err := parseCommand(fields, result)
	if err != nil {
		fmt.Fprintf(c.out, "error: %v\n", err)
		return
	}
	if snap.Phase != state.PhasePlaying {
		fmt.Fprintln(c.out, "error: not in a game")
		return
	}

	select {
	case c.commands <- cmd:
	case <-ctx.Done():
		return
	case <-time.After(commandTimeout):
		fmt.Fprintln(c.out, "error: game is not accepting commands")
		return
	}
	select {
	case err := <-result:
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			return
		}
		fmt.Fprintln(c.out, "ok")
	case <-ctx.Done():
	}
}

func parseCommand(fields []string, result chan<- error) (session.Command, error) {
	switch fields[0] {
	case "build":
		if len(fields) != 2 {
			return nil, fmt.Errorf("usage: build tank|drone")
		}
		return session.BuildCommand{
			UnitType: types.UnitType(strings.ToUpper(fields[1])),
			Result:   result,
		}, nil
	case "move":
		if len(fields) != 4 {
			return nil, fmt.Errorf("usage: move <unit> <x> <z>")
		}
		x, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid x %q", fields[2])
		}
		z, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid z %q", fields[3])
		}
		return session.MoveCommand{
			UnitID: fields[1],
			Point:  &kinematic.Vector{X: x, Z: z},
			Result: result,
		}, nil
	case "attack":
		if len(fields) != 3 {
			return nil, fmt.Errorf("usage: attack <unit> <target>")
		}
		return session.MoveCommand{
			UnitID:   fields[1],
			TargetID: fields[2],
			Result:   result,
		}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func printStatus(w io.Writer, snap *state.Snapshot) {
	switch snap.Phase {
	case state.PhaseLobby:
		fmt.Fprintf(w, "lobby: %s until the AI takes the other seat\n", snap.Countdown)
		return
	case state.PhasePlaying, state.PhaseGameOver:
	default:
		fmt.Fprintln(w, "idle")
		return
	}

	fmt.Fprintf(w, "%s: you are player %d (%s) against %s\n", snap.Phase, snap.Self.ID, snap.Self.DisplayName, snap.Opponent.DisplayName)
	if snap.World == nil {
		return
	}
	fmt.Fprintf(w, "resources: %d\n", snap.World.Resources[snap.Self.ID])
	for _, f := range snap.World.Fortresses {
		fmt.Fprintf(w, "%s (player %d): %d/%d\n", f.ID, f.OwnerID, f.Health, f.MaxHealth)
	}
	units := append([]types.Unit(nil), snap.World.Units...)
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	for _, u := range units {
		target := "-"
		if u.TargetID != "" {
			target = u.TargetID
		} else if u.TargetPosition != nil {
			target = fmt.Sprintf("(%.1f, %.1f)", u.TargetPosition.X, u.TargetPosition.Z)
		}
		fmt.Fprintf(w, "  %s at (%.1f, %.1f) hp %d/%d -> %s\n", u.ID, u.Position.X, u.Position.Z, u.Health, u.MaxHealth, target)
	}
}

func printOutcome(w io.Writer, outcome session.Outcome) {
	if outcome.Won {
		fmt.Fprintf(w, "Victory! You destroyed %s's fortress.\n", outcome.Opponent.DisplayName)
		return
	}
	fmt.Fprintf(w, "Defeat. %s destroyed your fortress.\n", outcome.Opponent.DisplayName)
}

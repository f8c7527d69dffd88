package state

import (
	"context"
	"time"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
)

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseLobby    Phase = "lobby"
	PhasePlaying  Phase = "playing"
	PhaseGameOver Phase = "game_over"
)

// Snapshot is a point in time view of a session for readers outside the game loop.
type Snapshot struct {
	Phase    Phase
	Self     types.Player
	Opponent types.Identity
	// Countdown is the time left before the synthetic opponent is used
	Countdown time.Duration
	World     *types.WorldState
	// WinnerID is only meaningful in PhaseGameOver
	WinnerID int
}

// Copy returns a deep copy of the snapshot.
func (s *Snapshot) Copy() *Snapshot {
	c := *s
	if s.World != nil {
		c.World = s.World.Copy()
	}
	return &c
}

// StateManager provides shared access to the session state.
// Implementations must be thread-safe.
type StateManager interface {
	// Get returns a copy of the current snapshot.
	Get(ctx context.Context) (*Snapshot, error)
	// Set replaces the current snapshot.
	Set(ctx context.Context, snapshot *Snapshot) error
}

package session

import (
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
)

// Command is an action of the local player, applied on the game loop.
type Command interface {
	reply(err error)
}

// BuildCommand builds a unit in the local player's spawn lane.
type BuildCommand struct {
	UnitType types.UnitType
	// Result receives the outcome if set. It must be buffered.
	Result chan<- error
}

// MoveCommand retargets a unit. TargetID wins over Point; a Point that lands
// on an enemy unit or fortress targets that entity.
type MoveCommand struct {
	UnitID   string
	TargetID string
	Point    *kinematic.Vector
	// Result receives the outcome if set. It must be buffered.
	Result chan<- error
}

func (c BuildCommand) reply(err error) { sendResult(c.Result, err) }
func (c MoveCommand) reply(err error)  { sendResult(c.Result, err) }

func sendResult(ch chan<- error, err error) {
	if ch == nil {
		return
	}
	select {
	case ch <- err:
	default:
	}
}

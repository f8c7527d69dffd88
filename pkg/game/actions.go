package game

import (
	"fmt"
	"math/rand"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
	"github.com/google/uuid"
)

// Actions turns player intents into event payloads. It is the only place
// resources are spent: cost is deducted from the local state when the
// BuildUnit is authored, never when it is applied.
type Actions struct {
	tuning *tuning.Tuning
	rng    *rand.Rand
	newID  func() string
}

type NewActionsOptions struct {
	Tuning *tuning.Tuning
	// Rand picks spawn positions, defaults to a time-seeded source
	Rand *rand.Rand
	// NewID defaults to uuid.NewString
	NewID func() string
}

func NewActions(opts NewActionsOptions) *Actions {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	return &Actions{
		tuning: opts.Tuning,
		rng:    rng,
		newID:  newID,
	}
}

// UnitID returns the id of a unit built by ownerID.
func UnitID(ownerID int, unitType types.UnitType, suffix string) string {
	return fmt.Sprintf("%d-%s-%s", ownerID, unitType, suffix)
}

// CanAfford reports whether ownerID has the resources to build unitType.
func (a *Actions) CanAfford(w *types.WorldState, ownerID int, unitType types.UnitType) bool {
	stats, ok := a.tuning.Stats(unitType)
	return ok && w.Resources[ownerID] >= stats.Cost
}

// BuildUnit spends the unit cost and returns the event payload to post.
func (a *Actions) BuildUnit(w *types.WorldState, ownerID int, unitType types.UnitType) (messages.BuildUnit, error) {
	stats, ok := a.tuning.Stats(unitType)
	if !ok {
		return messages.BuildUnit{}, &ErrUnknownUnitType{UnitType: unitType}
	}
	if w.Resources[ownerID] < stats.Cost {
		return messages.BuildUnit{}, &ErrInsufficientResources{
			UnitType:  unitType,
			Cost:      stats.Cost,
			Available: w.Resources[ownerID],
		}
	}
	w.Resources[ownerID] -= stats.Cost

	x := (a.rng.Float64() - 0.5) * (constants.MapWidth - constants.SpawnMargin)
	return messages.BuildUnit{
		UnitID:   UnitID(ownerID, unitType, a.newID()),
		UnitType: unitType,
		OwnerID:  ownerID,
		Position: kinematic.Vector{X: x, Z: SpawnZ(ownerID)},
	}, nil
}

// MoveUnit retargets one of ownerID's units. A friendly targetID is treated
// as no target. The local state is updated immediately so the unit starts
// moving before the event comes back from the log.
func (a *Actions) MoveUnit(w *types.WorldState, ownerID int, unitID string, targetID string, point *kinematic.Vector) (messages.MoveUnit, error) {
	u := w.FindUnit(unitID)
	if u == nil {
		return messages.MoveUnit{}, &ErrUnknownUnit{ID: unitID}
	}
	if u.OwnerID != ownerID {
		return messages.MoveUnit{}, &ErrNotOwner{UnitID: unitID, OwnerID: ownerID}
	}
	if targetID != "" {
		owner, ok := w.EntityOwner(targetID)
		if !ok {
			return messages.MoveUnit{}, &ErrUnknownUnit{ID: targetID}
		}
		if owner == ownerID {
			targetID = ""
		}
	}

	move := messages.MoveUnit{UnitID: unitID}
	u.TargetID = targetID
	u.TargetPosition = nil
	if targetID != "" {
		id := targetID
		move.TargetID = &id
	} else if point != nil {
		p := *point
		move.TargetPosition = &p
		local := p
		u.TargetPosition = &local
	}
	return move, nil
}

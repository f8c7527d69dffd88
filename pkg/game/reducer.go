package game

import (
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/log"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

// Effect is a side effect of applying an event, for the caller to act on.
type Effect interface {
	effect()
}

// UnitDestroyed is emitted when an attack removes a unit.
type UnitDestroyed struct {
	UnitID     string
	AttackerID string
}

// FortressDestroyed is emitted by the attack that first brings a fortress to
// zero health. Only the client controlling Sender may declare the game over.
type FortressDestroyed struct {
	FortressID string
	WinnerID   int
	Sender     types.Identity
}

// GameEnded is emitted when a GameOver event is applied.
type GameEnded struct {
	WinnerID int
}

func (UnitDestroyed) effect()     {}
func (FortressDestroyed) effect() {}
func (GameEnded) effect()         {}

// Reducer folds events into a WorldState. It is deterministic: every client
// applying the same events in the same order reaches the same state.
type Reducer struct {
	tuning *tuning.Tuning
	logger *log.Logger
}

func NewReducer(t *tuning.Tuning) *Reducer {
	return &Reducer{
		tuning: t,
		logger: log.With("reducer"),
	}
}

// Reduce returns the state after applying the event. prev is not modified.
func (r *Reducer) Reduce(prev *types.WorldState, event messages.Event) (*types.WorldState, []Effect) {
	next := prev.Copy()
	var effects []Effect

	switch p := event.Payload.(type) {
	case messages.BuildUnit:
		r.applyBuildUnit(next, p)
	case messages.MoveUnit:
		r.applyMoveUnit(next, p)
	case messages.UnitAttack:
		effects = r.applyUnitAttack(next, p, event)
	case messages.GameOver:
		effects = append(effects, GameEnded{WinnerID: p.WinnerID})
	case messages.JoinGame, messages.StartGame:
		// matchmaking traffic has no effect on the world
	default:
		r.logger.Warn("Unhandled event type: %T", p)
	}

	return next, effects
}

func (r *Reducer) applyBuildUnit(w *types.WorldState, p messages.BuildUnit) {
	if w.FindUnit(p.UnitID) != nil || w.FindFortress(p.UnitID) != nil {
		r.logger.Trace("Unit %s already exists", p.UnitID)
		return
	}
	if p.OwnerID != 0 && p.OwnerID != 1 {
		r.logger.Warn("Ignoring unit %s with owner %d", p.UnitID, p.OwnerID)
		return
	}
	stats, ok := r.tuning.Stats(p.UnitType)
	if !ok {
		r.logger.Warn("Ignoring unit %s of unknown type %s", p.UnitID, p.UnitType)
		return
	}

	w.Units = append(w.Units, types.Unit{
		ID:        p.UnitID,
		OwnerID:   p.OwnerID,
		Type:      p.UnitType,
		Position:  p.Position,
		Health:    stats.Health,
		MaxHealth: stats.Health,
	})
	r.logger.Debug("Unit %s built for player %d", p.UnitID, p.OwnerID)
}

func (r *Reducer) applyMoveUnit(w *types.WorldState, p messages.MoveUnit) {
	u := w.FindUnit(p.UnitID)
	if u == nil {
		return
	}
	u.TargetID = ""
	if p.TargetID != nil {
		u.TargetID = *p.TargetID
	}
	u.TargetPosition = nil
	if p.TargetPosition != nil {
		pos := *p.TargetPosition
		u.TargetPosition = &pos
	}
}

func (r *Reducer) applyUnitAttack(w *types.WorldState, p messages.UnitAttack, event messages.Event) []Effect {
	attacker := w.FindUnit(p.AttackerID)
	if attacker == nil {
		return nil
	}
	if attacker.LastAttackAtMs != nil && event.TimestampMs-*attacker.LastAttackAtMs < r.tuning.AttackCooldownMs {
		r.logger.Trace("Attack by %s still cooling down", p.AttackerID)
		return nil
	}
	ts := event.TimestampMs
	attacker.LastAttackAtMs = &ts

	if target := w.FindUnit(p.TargetID); target != nil {
		target.Health -= p.Damage
		if target.Health <= 0 {
			w.RemoveUnit(p.TargetID)
			r.logger.Debug("Unit %s destroyed by %s", p.TargetID, p.AttackerID)
			return []Effect{UnitDestroyed{UnitID: p.TargetID, AttackerID: p.AttackerID}}
		}
		return nil
	}

	if fortress := w.FindFortress(p.TargetID); fortress != nil {
		wasStanding := !fortress.IsDestroyed()
		fortress.Health -= p.Damage
		r.logger.Debug("Fortress %s health %d", fortress.ID, fortress.Health)
		if wasStanding && fortress.IsDestroyed() {
			return []Effect{FortressDestroyed{
				FortressID: fortress.ID,
				WinnerID:   types.OpponentID(fortress.OwnerID),
				Sender:     event.Sender,
			}}
		}
	}
	return nil
}

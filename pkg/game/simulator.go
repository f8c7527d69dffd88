package game

import (
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/achgulp/axon-bbs-sub000/pkg/messages"
)

// arrivalDistance is how close a unit must get to a ground point to stop.
const arrivalDistance = 0.1

// Simulator advances unit movement between events. It runs locally on every
// client and never touches the network; attacks it decides on are returned
// for the caller to post.
type Simulator struct {
	tuning *tuning.Tuning
	// lastAuthoredMs paces attack authoring per unit so an in-range unit
	// does not post an event every frame
	lastAuthoredMs map[string]int64
}

func NewSimulator(t *tuning.Tuning) *Simulator {
	return &Simulator{
		tuning:         t,
		lastAuthoredMs: make(map[string]int64),
	}
}

// Step moves every unit with a target by one frame of dt seconds.
// controls reports whether this client authors events for an owner id.
func (s *Simulator) Step(w *types.WorldState, dt float64, nowMs int64, controls func(ownerID int) bool) []messages.UnitAttack {
	var attacks []messages.UnitAttack
	alive := make(map[string]struct{}, len(w.Units))

	for i := range w.Units {
		u := &w.Units[i]
		alive[u.ID] = struct{}{}
		stats, ok := s.tuning.Stats(u.Type)
		if !ok {
			continue
		}
		step := stats.Speed * dt

		if u.TargetID != "" {
			targetPos, ok := w.EntityPosition(u.TargetID)
			if !ok {
				u.TargetID = ""
				continue
			}
			targetPos.Y = u.Position.Y
			dist := u.Position.DistanceTo(targetPos)
			if dist > stats.Range {
				u.Position = kinematic.MoveTowards(u.Position, targetPos, step)
				continue
			}
			if attack, ok := s.attack(w, u, stats, nowMs, controls); ok {
				attacks = append(attacks, attack)
			}
			continue
		}

		if u.TargetPosition != nil {
			target := *u.TargetPosition
			target.Y = u.Position.Y
			u.Position = kinematic.MoveTowards(u.Position, target, step)
			if u.Position.DistanceTo(target) <= arrivalDistance {
				u.TargetPosition = nil
			}
		}
	}

	for id := range s.lastAuthoredMs {
		if _, ok := alive[id]; !ok {
			delete(s.lastAuthoredMs, id)
		}
	}
	return attacks
}

func (s *Simulator) attack(w *types.WorldState, u *types.Unit, stats tuning.UnitStats, nowMs int64, controls func(int) bool) (messages.UnitAttack, bool) {
	if controls == nil || !controls(u.OwnerID) {
		return messages.UnitAttack{}, false
	}
	if owner, ok := w.EntityOwner(u.TargetID); !ok || owner == u.OwnerID {
		return messages.UnitAttack{}, false
	}
	if last, ok := s.lastAuthoredMs[u.ID]; ok && nowMs-last < s.tuning.AttackCooldownMs {
		return messages.UnitAttack{}, false
	}
	s.lastAuthoredMs[u.ID] = nowMs
	return messages.UnitAttack{
		AttackerID: u.ID,
		TargetID:   u.TargetID,
		Damage:     stats.Damage,
	}, true
}

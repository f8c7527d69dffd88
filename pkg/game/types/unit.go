package types

import "github.com/achgulp/axon-bbs-sub000/pkg/kinematic"

type UnitType string

const (
	UnitTypeTank  UnitType = "TANK"
	UnitTypeDrone UnitType = "DRONE"
)

type Unit struct {
	ID       string           `json:"id"`
	OwnerID  int              `json:"ownerId"`
	Type     UnitType         `json:"type"`
	Position kinematic.Vector `json:"position"`
	// TargetID is the entity being pursued, empty when idle.
	TargetID string `json:"targetId,omitempty"`
	// TargetPosition is a ground point to move to when TargetID is empty.
	TargetPosition *kinematic.Vector `json:"targetPosition,omitempty"`
	Health         int               `json:"health"`
	MaxHealth      int               `json:"maxHealth"`
	LastAttackAtMs *int64            `json:"lastAttackAtMs,omitempty"`
}

// HasTarget reports whether the unit is pursuing an entity or a point.
func (u *Unit) HasTarget() bool {
	return u.TargetID != "" || u.TargetPosition != nil
}

func (u Unit) Copy() Unit {
	c := u
	if u.TargetPosition != nil {
		p := *u.TargetPosition
		c.TargetPosition = &p
	}
	if u.LastAttackAtMs != nil {
		ts := *u.LastAttackAtMs
		c.LastAttackAtMs = &ts
	}
	return c
}

type Fortress struct {
	ID        string           `json:"id"`
	OwnerID   int              `json:"ownerId"`
	Position  kinematic.Vector `json:"position"`
	Health    int              `json:"health"`
	MaxHealth int              `json:"maxHealth"`
}

// IsDestroyed reports whether the fortress has no health left.
func (f *Fortress) IsDestroyed() bool {
	return f.Health <= 0
}

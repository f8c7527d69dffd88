package game

import (
	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
)

// FortressID returns the id of the fortress owned by a player.
func FortressID(ownerID int) string {
	if ownerID == 0 {
		return "fortress-0"
	}
	return "fortress-1"
}

// NewWorldState returns the state every match starts from.
func NewWorldState(t *tuning.Tuning) *types.WorldState {
	fortressZ := constants.MapDepth/2 - constants.FortressInset
	return &types.WorldState{
		Fortresses: []types.Fortress{
			{
				ID:        FortressID(0),
				OwnerID:   0,
				Position:  kinematic.Vector{Z: fortressZ},
				Health:    t.FortressHealth,
				MaxHealth: t.FortressHealth,
			},
			{
				ID:        FortressID(1),
				OwnerID:   1,
				Position:  kinematic.Vector{Z: -fortressZ},
				Health:    t.FortressHealth,
				MaxHealth: t.FortressHealth,
			},
		},
		Units:     []types.Unit{},
		Resources: [2]int{t.StartingResources, t.StartingResources},
	}
}

// SpawnZ returns the spawn lane of a player.
func SpawnZ(ownerID int) float64 {
	z := constants.MapDepth/2 - constants.SpawnInset
	if ownerID == 0 {
		return z
	}
	return -z
}

// GenerateResources adds amount to every player's resources.
func GenerateResources(w *types.WorldState, amount int) {
	for i := range w.Resources {
		w.Resources[i] += amount
	}
}

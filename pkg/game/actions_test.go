package game

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/tuning"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestActions() *Actions {
	return NewActions(NewActionsOptions{
		Tuning: tuning.Default(),
		Rand:   rand.New(rand.NewSource(1)),
		NewID:  func() string { return "id" },
	})
}

func TestActions_BuildUnit(t *testing.T) {
	tests := []struct {
		name      string
		ownerID   int
		unitType  types.UnitType
		resources int
		wantErr   func(error) bool
		wantLeft  int
	}{
		{name: "tank", ownerID: 0, unitType: types.UnitTypeTank, resources: 500, wantLeft: 400},
		{name: "drone for player two", ownerID: 1, unitType: types.UnitTypeDrone, resources: 75, wantLeft: 0},
		{name: "too poor", ownerID: 0, unitType: types.UnitTypeTank, resources: 99, wantErr: IsInsufficientResources, wantLeft: 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorldState(tuning.Default())
			w.Resources[tt.ownerID] = tt.resources

			build, err := newTestActions().BuildUnit(w, tt.ownerID, tt.unitType)
			assert.Equal(t, tt.wantLeft, w.Resources[tt.ownerID])
			if tt.wantErr != nil {
				assert.True(t, tt.wantErr(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, UnitID(tt.ownerID, tt.unitType, "id"), build.UnitID)
			assert.Equal(t, tt.ownerID, build.OwnerID)
			assert.Equal(t, SpawnZ(tt.ownerID), build.Position.Z)
			half := (constants.MapWidth - constants.SpawnMargin) / 2
			assert.LessOrEqual(t, build.Position.X, half)
			assert.GreaterOrEqual(t, build.Position.X, -half)
			// other player untouched
			assert.Equal(t, 500, w.Resources[types.OpponentID(tt.ownerID)])
		})
	}
}

func TestActions_BuildUnknownType(t *testing.T) {
	w := NewWorldState(tuning.Default())
	_, err := newTestActions().BuildUnit(w, 0, types.UnitType("MECH"))
	assert.Error(t, err)
	assert.Equal(t, 500, w.Resources[0])
}

func TestUnitID(t *testing.T) {
	id := UnitID(1, types.UnitTypeDrone, "abc")
	assert.Equal(t, "1-DRONE-abc", id)

	generated := NewActions(NewActionsOptions{Tuning: tuning.Default()}).newID()
	assert.Len(t, generated, 36)
	assert.Equal(t, 4, strings.Count(generated, "-"))
}

func TestActions_MoveUnit(t *testing.T) {
	setup := func() *types.WorldState {
		w := NewWorldState(tuning.Default())
		w.Units = append(w.Units,
			types.Unit{ID: "0-TANK-1", OwnerID: 0, Type: types.UnitTypeTank},
			types.Unit{ID: "0-TANK-2", OwnerID: 0, Type: types.UnitTypeTank},
			types.Unit{ID: "1-TANK-1", OwnerID: 1, Type: types.UnitTypeTank},
		)
		return w
	}
	a := newTestActions()

	t.Run("enemy target", func(t *testing.T) {
		w := setup()
		move, err := a.MoveUnit(w, 0, "0-TANK-1", "1-TANK-1", nil)
		require.NoError(t, err)
		require.NotNil(t, move.TargetID)
		assert.Equal(t, "1-TANK-1", *move.TargetID)
		assert.Nil(t, move.TargetPosition)
		assert.Equal(t, "1-TANK-1", w.FindUnit("0-TANK-1").TargetID)
	})

	t.Run("friendly target becomes no target", func(t *testing.T) {
		w := setup()
		w.FindUnit("0-TANK-1").TargetID = "fortress-1"
		move, err := a.MoveUnit(w, 0, "0-TANK-1", "0-TANK-2", nil)
		require.NoError(t, err)
		assert.Nil(t, move.TargetID)
		assert.Empty(t, w.FindUnit("0-TANK-1").TargetID)
	})

	t.Run("ground point", func(t *testing.T) {
		w := setup()
		point := &kinematic.Vector{X: 1, Z: 2}
		move, err := a.MoveUnit(w, 0, "0-TANK-1", "", point)
		require.NoError(t, err)
		require.NotNil(t, move.TargetPosition)
		assert.Equal(t, *point, *move.TargetPosition)
		assert.Equal(t, *point, *w.FindUnit("0-TANK-1").TargetPosition)
	})

	t.Run("not owner", func(t *testing.T) {
		_, err := a.MoveUnit(setup(), 0, "1-TANK-1", "fortress-0", nil)
		assert.True(t, IsNotOwner(err))
	})

	t.Run("unknown unit", func(t *testing.T) {
		_, err := a.MoveUnit(setup(), 0, "nope", "", nil)
		assert.True(t, IsUnknownUnit(err))
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := a.MoveUnit(setup(), 0, "0-TANK-1", "nope", nil)
		assert.True(t, IsUnknownUnit(err))
	})
}

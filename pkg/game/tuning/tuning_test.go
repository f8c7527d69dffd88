package tuning

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	tn := Default()

	assert.Equal(t, 2000, tn.FortressHealth)
	assert.Equal(t, 500, tn.StartingResources)
	assert.Equal(t, 2, tn.ResourceGenerationRate)
	assert.Equal(t, int64(1000), tn.AttackCooldownMs)

	tank, ok := tn.Stats(types.UnitTypeTank)
	require.True(t, ok)
	assert.Equal(t, UnitStats{Cost: 100, Health: 100, Speed: 2.5, Damage: 10, Range: 1.5, AIWeight: 0.6}, tank)

	drone, ok := tn.Stats(types.UnitTypeDrone)
	require.True(t, ok)
	assert.Equal(t, UnitStats{Cost: 75, Health: 50, Speed: 4, Damage: 5, Range: 1, AIWeight: 0.4}, drone)

	assert.Equal(t, []types.UnitType{types.UnitTypeTank, types.UnitTypeDrone}, tn.UnitTypes())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("starting_resources: 1000\n"), 0o600))

	tn, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1000, tn.StartingResources)
	assert.Equal(t, 2000, tn.FortressHealth)
	assert.Len(t, tn.Units, 2)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "not yaml", in: "units: ["},
		{name: "no units", in: "fortress_health: 10\n"},
		{name: "zero fortress health", in: "fortress_health: 0\nunits:\n  TANK: {health: 1, speed: 1, range: 1}\n"},
		{name: "zero unit speed", in: "fortress_health: 10\nunits:\n  TANK: {health: 1, speed: 0, range: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

package kinematic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector_Normalize(t *testing.T) {
	n, ok := Vector{X: 3, Z: 4}.Normalize()
	assert.True(t, ok)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Z, 1e-12)

	zero, ok := Vector{}.Normalize()
	assert.False(t, ok)
	assert.Equal(t, Vector{}, zero)
}

func TestMoveTowards(t *testing.T) {
	tests := []struct {
		name        string
		from        Vector
		target      Vector
		maxDistance float64
		want        Vector
	}{
		{
			name:        "partial step",
			from:        Vector{X: 0, Z: 0},
			target:      Vector{X: 0, Z: 10},
			maxDistance: 2.5,
			want:        Vector{X: 0, Z: 2.5},
		},
		{
			name:        "does not overshoot",
			from:        Vector{X: 1, Z: 1},
			target:      Vector{X: 1, Z: 2},
			maxDistance: 5,
			want:        Vector{X: 1, Z: 2},
		},
		{
			name:        "same point",
			from:        Vector{X: 4, Z: 4},
			target:      Vector{X: 4, Z: 4},
			maxDistance: 1,
			want:        Vector{X: 4, Z: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MoveTowards(tt.from, tt.target, tt.maxDistance)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-9)
		})
	}
}

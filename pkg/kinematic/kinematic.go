package kinematic

// This package includes the vector math used for straight-line pursuit.

import (
	"math"
)

const (
	// Epsilon is the length below which a vector is treated as zero
	Epsilon float64 = 1e-9
)

// Vector is a point or direction in world space. Y is up.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

func (v Vector) Sub(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y, Z: v.Z - other.Z}
}

func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean length of the vector.
func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceTo returns the distance between two points.
func (v Vector) DistanceTo(other Vector) float64 {
	return other.Sub(v).Length()
}

// Normalize returns the unit vector in the direction of v.
// The second return value is false for a zero-length vector, in which case
// the zero vector is returned.
func (v Vector) Normalize() (Vector, bool) {
	length := v.Length()
	if length < Epsilon {
		return Vector{}, false
	}
	return v.Scale(1 / length), true
}

// MoveTowards advances from toward target by at most maxDistance without overshooting.
func MoveTowards(from Vector, target Vector, maxDistance float64) Vector {
	delta := target.Sub(from)
	distance := delta.Length()
	if distance <= maxDistance {
		return target
	}
	direction, ok := delta.Normalize()
	if !ok {
		return from
	}
	return from.Add(direction.Scale(maxDistance))
}

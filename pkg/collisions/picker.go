package collisions

import (
	"math"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/constants"
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
	"github.com/solarlune/resolv"
)

const (
	// TagUnit marks unit objects in the pick space
	TagUnit = "unit"
	// TagFortress marks fortress objects in the pick space
	TagFortress = "fortress"

	// UnitPickSize is the side of the square a unit occupies when picked
	UnitPickSize float64 = 1.0
	// FortressPickSize is the side of the square a fortress occupies when picked
	FortressPickSize float64 = 4.0
	// PickRadius is the half side of the box placed at the picked point
	PickRadius float64 = 0.5

	margin   float64 = 8.0
	cellSize int     = 2
)

// Picker resolves a ground point on the battlefield to the entity standing on it.
// The battlefield is centered on the origin, x across and z along the map;
// resolv works in non-negative screen space, so points are offset by half the
// map plus a margin.
type Picker struct {
	space *resolv.Space
}

// NewPicker builds a pick space for the entities of w.
func NewPicker(w *types.WorldState) *Picker {
	width := int(math.Ceil(constants.MapWidth + 2*margin))
	depth := int(math.Ceil(constants.MapDepth + 2*margin))
	p := &Picker{
		space: resolv.NewSpace(width, depth, cellSize, cellSize),
	}
	for _, f := range w.Fortresses {
		p.add(f.ID, f.Position, FortressPickSize, TagFortress)
	}
	for _, u := range w.Units {
		p.add(u.ID, u.Position, UnitPickSize, TagUnit)
	}
	return p
}

func toSpace(pos kinematic.Vector) (float64, float64) {
	return pos.X + constants.MapWidth/2 + margin, pos.Z + constants.MapDepth/2 + margin
}

func (p *Picker) add(id string, pos kinematic.Vector, size float64, tag string) {
	x, y := toSpace(pos)
	obj := resolv.NewObject(x-size/2, y-size/2, size, size, tag)
	obj.Data = id
	p.space.Add(obj)
}

// Pick returns the id of the entity nearest to point whose footprint overlaps
// it, preferring units over fortresses. accept filters candidate ids.
func (p *Picker) Pick(point kinematic.Vector, accept func(id string) bool) (string, bool) {
	x, y := toSpace(point)
	pickBox := resolv.NewObject(x-PickRadius, y-PickRadius, 2*PickRadius, 2*PickRadius)
	p.space.Add(pickBox)
	defer p.space.Remove(pickBox)

	for _, tag := range []string{TagUnit, TagFortress} {
		collision := pickBox.Check(0, 0, tag)
		if collision == nil {
			continue
		}
		best := ""
		bestDist := math.MaxFloat64
		for _, obj := range collision.Objects {
			id, ok := obj.Data.(string)
			if !ok || !overlaps(pickBox, obj) {
				continue
			}
			if accept != nil && !accept(id) {
				continue
			}
			cx := obj.Position.X + obj.Size.X/2
			cy := obj.Position.Y + obj.Size.Y/2
			d := math.Hypot(cx-x, cy-y)
			if d < bestDist {
				best, bestDist = id, d
			}
		}
		if best != "" {
			return best, true
		}
	}
	return "", false
}

// overlaps tests the footprints; Check only reports objects sharing a cell.
func overlaps(a, b *resolv.Object) bool {
	return a.Position.X < b.Position.X+b.Size.X &&
		b.Position.X < a.Position.X+a.Size.X &&
		a.Position.Y < b.Position.Y+b.Size.Y &&
		b.Position.Y < a.Position.Y+a.Size.Y
}

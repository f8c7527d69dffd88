package types

import "github.com/achgulp/axon-bbs-sub000/pkg/kinematic"

// WorldState is the shared simulation state folded from the event stream.
type WorldState struct {
	Fortresses []Fortress `json:"fortresses"`
	Units      []Unit     `json:"units"`
	// Resources is indexed by player id.
	Resources [2]int `json:"resources"`
}

// Copy returns a deep copy of the world state.
func (w *WorldState) Copy() *WorldState {
	c := &WorldState{
		Fortresses: make([]Fortress, len(w.Fortresses)),
		Units:      make([]Unit, len(w.Units)),
		Resources:  w.Resources,
	}
	copy(c.Fortresses, w.Fortresses)
	for i, u := range w.Units {
		c.Units[i] = u.Copy()
	}
	return c
}

// FindUnit returns a pointer into Units, or nil.
func (w *WorldState) FindUnit(id string) *Unit {
	for i := range w.Units {
		if w.Units[i].ID == id {
			return &w.Units[i]
		}
	}
	return nil
}

// FindFortress returns a pointer into Fortresses, or nil.
func (w *WorldState) FindFortress(id string) *Fortress {
	for i := range w.Fortresses {
		if w.Fortresses[i].ID == id {
			return &w.Fortresses[i]
		}
	}
	return nil
}

// FortressOf returns the fortress owned by the given player, or nil.
func (w *WorldState) FortressOf(ownerID int) *Fortress {
	for i := range w.Fortresses {
		if w.Fortresses[i].OwnerID == ownerID {
			return &w.Fortresses[i]
		}
	}
	return nil
}

// EntityPosition returns the position of the unit or fortress with the given id.
func (w *WorldState) EntityPosition(id string) (kinematic.Vector, bool) {
	if u := w.FindUnit(id); u != nil {
		return u.Position, true
	}
	if f := w.FindFortress(id); f != nil {
		return f.Position, true
	}
	return kinematic.Vector{}, false
}

// EntityOwner returns the owner of the unit or fortress with the given id.
func (w *WorldState) EntityOwner(id string) (int, bool) {
	if u := w.FindUnit(id); u != nil {
		return u.OwnerID, true
	}
	if f := w.FindFortress(id); f != nil {
		return f.OwnerID, true
	}
	return 0, false
}

// RemoveUnit deletes the unit with the given id and reports whether it existed.
func (w *WorldState) RemoveUnit(id string) bool {
	for i := range w.Units {
		if w.Units[i].ID == id {
			w.Units = append(w.Units[:i], w.Units[i+1:]...)
			return true
		}
	}
	return false
}

// UnitsOwnedBy returns copies of the units owned by the given player.
func (w *WorldState) UnitsOwnedBy(ownerID int) []Unit {
	var units []Unit
	for _, u := range w.Units {
		if u.OwnerID == ownerID {
			units = append(units, u.Copy())
		}
	}
	return units
}

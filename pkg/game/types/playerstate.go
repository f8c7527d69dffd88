package types

import "encoding/json"

// Player is an Identity seated at one side of a match.
type Player struct {
	Identity
	// ID is the seat, 0 or 1. It indexes WorldState.Resources.
	ID    int    `json:"id"`
	Color uint32 `json:"color"`
}

// OpponentID returns the seat of the other player.
func OpponentID(playerID int) int {
	return 1 - playerID
}

// UnmarshalJSON keeps the seat fields that the embedded Identity decoder would drop.
func (p *Player) UnmarshalJSON(b []byte) error {
	if err := p.Identity.UnmarshalJSON(b); err != nil {
		return err
	}
	var seat struct {
		ID    int    `json:"id"`
		Color uint32 `json:"color"`
	}
	if err := json.Unmarshal(b, &seat); err != nil {
		return err
	}
	p.ID = seat.ID
	p.Color = seat.Color
	return nil
}

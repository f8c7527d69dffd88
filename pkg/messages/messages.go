package messages

import (
	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
	"github.com/achgulp/axon-bbs-sub000/pkg/kinematic"
)

type EventType string

// Event types
const (
	EventTypeJoinGame   EventType = "JOIN_GAME"
	EventTypeStartGame  EventType = "START_GAME"
	EventTypeBuildUnit  EventType = "BUILD_UNIT"
	EventTypeMoveUnit   EventType = "MOVE_UNIT"
	EventTypeUnitAttack EventType = "UNIT_ATTACK"
	EventTypeGameOver   EventType = "GAME_OVER"
)

// Event is a single message on the game topic.
type Event struct {
	Type        EventType
	Payload     Payload
	TimestampMs int64
	Sender      types.Identity
}

// NewEvent wraps a payload in an unsent event.
func NewEvent(payload Payload) Event {
	return Event{
		Type:    payload.EventType(),
		Payload: payload,
	}
}

// Payload is implemented by every event variant.
type Payload interface {
	EventType() EventType
}

// JoinGame announces that the sender is looking for a match.
type JoinGame struct{}

// StartGame answers a JoinGame. Opponent is the sender's seat.
// Target is the joiner being answered.
type StartGame struct {
	Opponent *types.Player  `json:"opponent,omitempty"`
	Target   *types.Identity `json:"target,omitempty"`
}

type BuildUnit struct {
	UnitID   string           `json:"unitId"`
	UnitType types.UnitType   `json:"unitType"`
	OwnerID  int              `json:"ownerId"`
	Position kinematic.Vector `json:"position"`
}

// MoveUnit retargets a unit. With neither target set the unit stops.
type MoveUnit struct {
	UnitID         string            `json:"unitId"`
	TargetID       *string           `json:"targetId,omitempty"`
	TargetPosition *kinematic.Vector `json:"targetPosition,omitempty"`
}

type UnitAttack struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Damage     int    `json:"damage"`
}

type GameOver struct {
	WinnerID int `json:"winnerId"`
}

func (JoinGame) EventType() EventType   { return EventTypeJoinGame }
func (StartGame) EventType() EventType  { return EventTypeStartGame }
func (BuildUnit) EventType() EventType  { return EventTypeBuildUnit }
func (MoveUnit) EventType() EventType   { return EventTypeMoveUnit }
func (UnitAttack) EventType() EventType { return EventTypeUnitAttack }
func (GameOver) EventType() EventType   { return EventTypeGameOver }

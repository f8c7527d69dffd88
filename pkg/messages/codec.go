package messages

import (
	"encoding/json"
	"fmt"

	"github.com/achgulp/axon-bbs-sub000/pkg/game/types"
)

type wireEvent struct {
	Type        EventType       `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	TimestampMs int64           `json:"timestampMs"`
	Sender      types.Identity  `json:"sender"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	if e.Payload == nil {
		return nil, fmt.Errorf("event %s has no payload", e.Type)
	}
	payload, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %v", err)
	}
	eventType := e.Type
	if eventType == "" {
		eventType = e.Payload.EventType()
	}
	return json.Marshal(wireEvent{
		Type:        eventType,
		Payload:     payload,
		TimestampMs: e.TimestampMs,
		Sender:      e.Sender,
	})
}

func (e *Event) UnmarshalJSON(b []byte) error {
	w := wireEvent{}
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	payload, err := decodePayload(w.Type, w.Payload)
	if err != nil {
		return err
	}
	e.Type = w.Type
	e.Payload = payload
	e.TimestampMs = w.TimestampMs
	e.Sender = w.Sender
	return nil
}

func decodePayload(eventType EventType, raw json.RawMessage) (Payload, error) {
	var p Payload
	switch eventType {
	case EventTypeJoinGame:
		p = &JoinGame{}
	case EventTypeStartGame:
		p = &StartGame{}
	case EventTypeBuildUnit:
		p = &BuildUnit{}
	case EventTypeMoveUnit:
		p = &MoveUnit{}
	case EventTypeUnitAttack:
		p = &UnitAttack{}
	case EventTypeGameOver:
		p = &GameOver{}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s payload: %v", eventType, err)
		}
	}
	return deref(p), nil
}

// deref stores payloads by value so type switches match on the struct type.
func deref(p Payload) Payload {
	switch v := p.(type) {
	case *JoinGame:
		return *v
	case *StartGame:
		return *v
	case *BuildUnit:
		return *v
	case *MoveUnit:
		return *v
	case *UnitAttack:
		return *v
	case *GameOver:
		return *v
	}
	return p
}

// Encode serializes an event to its wire body.
func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event: %v", err)
	}
	return b, nil
}

// Decode parses and validates a wire body.
// All failures are returned as *ErrMalformedEvent.
func Decode(body []byte) (*Event, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, NewErrMalformedEvent("invalid json", err)
	}
	if err := eventSchema.Validate(doc); err != nil {
		return nil, NewErrMalformedEvent("schema validation failed", err)
	}
	e := &Event{}
	if err := json.Unmarshal(body, e); err != nil {
		return nil, NewErrMalformedEvent("invalid payload", err)
	}
	return e, nil
}

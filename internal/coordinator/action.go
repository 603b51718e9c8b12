package coordinator

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jacobtread/obs-mod-toys/internal/object"
)

// Action is one client-issued mutation of the shared canvas. The concrete
// types below are the only implementations; consumers match exhaustively.
type Action interface {
	// Kind returns the wire discriminator for the action.
	Kind() string
}

// CreateObject places a new object on the canvas. ID is minted by the
// coordinator when the action is applied; values supplied by clients are
// never trusted and are dropped at decode time.
type CreateObject struct {
	ID              uuid.UUID
	Object          object.Object
	InitialPosition object.Position
}

func (CreateObject) Kind() string { return "CreateObject" }

// MoveObject repositions an existing object. Moving an absent id is a no-op
// on the store but still broadcasts.
type MoveObject struct {
	ID       uuid.UUID
	Position object.Position
}

func (MoveObject) Kind() string { return "MoveObject" }

// RemoveObject deletes an object. Removing an absent id is a no-op on the
// store but still broadcasts.
type RemoveObject struct {
	ID uuid.UUID
}

func (RemoveObject) Kind() string { return "RemoveObject" }

// ClearObjects empties the canvas.
type ClearObjects struct{}

func (ClearObjects) Kind() string { return "ClearObjects" }

// MarshalAction encodes an action with its "type" discriminator.
func MarshalAction(a Action) ([]byte, error) {
	switch v := a.(type) {
	case CreateObject:
		obj, err := object.MarshalObject(v.Object)
		if err != nil {
			return nil, fmt.Errorf("marshal create object: %w", err)
		}
		return json.Marshal(struct {
			Type            string          `json:"type"`
			ID              uuid.UUID       `json:"id"`
			Object          json.RawMessage `json:"object"`
			InitialPosition object.Position `json:"initial_position"`
		}{Type: v.Kind(), ID: v.ID, Object: obj, InitialPosition: v.InitialPosition})
	case MoveObject:
		return json.Marshal(struct {
			Type     string          `json:"type"`
			ID       uuid.UUID       `json:"id"`
			Position object.Position `json:"position"`
		}{Type: v.Kind(), ID: v.ID, Position: v.Position})
	case RemoveObject:
		return json.Marshal(struct {
			Type string    `json:"type"`
			ID   uuid.UUID `json:"id"`
		}{Type: v.Kind(), ID: v.ID})
	case ClearObjects:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{Type: v.Kind()})
	default:
		return nil, fmt.Errorf("unsupported action type %T", a)
	}
}

// UnmarshalAction decodes a tagged action payload. Unknown action types are
// a protocol error for the caller to surface.
func UnmarshalAction(data []byte) (Action, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	switch tag.Type {
	case "CreateObject":
		// Any client-supplied id is deliberately not decoded; the
		// coordinator mints one on apply.
		var aux struct {
			Object          json.RawMessage `json:"object"`
			InitialPosition object.Position `json:"initial_position"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, fmt.Errorf("decode create action: %w", err)
		}
		obj, err := object.UnmarshalObject(aux.Object)
		if err != nil {
			return nil, err
		}
		return CreateObject{Object: obj, InitialPosition: aux.InitialPosition}, nil
	case "MoveObject":
		var aux struct {
			ID       uuid.UUID       `json:"id"`
			Position object.Position `json:"position"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, fmt.Errorf("decode move action: %w", err)
		}
		return MoveObject{ID: aux.ID, Position: aux.Position}, nil
	case "RemoveObject":
		var aux struct {
			ID uuid.UUID `json:"id"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, fmt.Errorf("decode remove action: %w", err)
		}
		return RemoveObject{ID: aux.ID}, nil
	case "ClearObjects":
		return ClearObjects{}, nil
	default:
		return nil, fmt.Errorf("unknown action type: %s", tag.Type)
	}
}

package session

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jacobtread/obs-mod-toys/internal/coordinator"
	"github.com/jacobtread/obs-mod-toys/internal/object"
)

// clientMessage is one inbound frame, decoded. A frame whose type tag is
// unknown is a protocol error and terminates the connection.
type clientMessage interface {
	isClientMessage()
}

type authenticateMessage struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (authenticateMessage) isClientMessage() {}

type serverActionMessage struct {
	Action coordinator.Action
}

func (serverActionMessage) isClientMessage() {}

type requestObjectsMessage struct{}

func (requestObjectsMessage) isClientMessage() {}

func decodeClientMessage(data []byte) (clientMessage, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode client message: %w", err)
	}

	switch tag.Type {
	case "Authenticate":
		var m authenticateMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decode authenticate message: %w", err)
		}
		return m, nil
	case "ServerAction":
		var aux struct {
			Action json.RawMessage `json:"action"`
		}
		if err := json.Unmarshal(data, &aux); err != nil {
			return nil, fmt.Errorf("decode server action message: %w", err)
		}
		action, err := coordinator.UnmarshalAction(aux.Action)
		if err != nil {
			return nil, err
		}
		return serverActionMessage{Action: action}, nil
	case "RequestObjects":
		return requestObjectsMessage{}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %s", tag.Type)
	}
}

func encodeAuthenticated(sessionID uuid.UUID, color string) ([]byte, error) {
	return json.Marshal(struct {
		Type      string    `json:"type"`
		SessionID uuid.UUID `json:"session_id"`
		Color     string    `json:"color"`
	}{Type: "Authenticated", SessionID: sessionID, Color: color})
}

func encodeError(message string) ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{Type: "Error", Message: message})
}

func encodeActionReported(action coordinator.Action) ([]byte, error) {
	raw, err := coordinator.MarshalAction(action)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Type   string          `json:"type"`
		Action json.RawMessage `json:"action"`
	}{Type: "ServerActionReported", Action: raw})
}

func encodeObjects(objects []object.DefinedObjectWithID) ([]byte, error) {
	if objects == nil {
		// empty list on the wire, never null
		objects = []object.DefinedObjectWithID{}
	}
	return json.Marshal(struct {
		Type    string                       `json:"type"`
		Objects []object.DefinedObjectWithID `json:"objects"`
	}{Type: "Objects", Objects: objects})
}

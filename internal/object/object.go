package object

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Position locates an object on the shared canvas. Coordinates are
// unbounded signed pixel values.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Object is one placeable canvas object. The concrete kinds below implement
// it; payloads carrying a kind this server does not know decode to Unknown
// and round-trip verbatim.
type Object interface {
	Kind() string
}

// Text is a text snippet on the canvas.
type Text struct {
	Text string `json:"text" validate:"required,max=10000"`
}

func (Text) Kind() string { return "Text" }

// Image is an image on the canvas, referenced by URL with declared
// display dimensions.
type Image struct {
	URL    string `json:"url" validate:"required,url,max=2048"`
	Width  uint32 `json:"width" validate:"required,min=1,max=16384"`
	Height uint32 `json:"height" validate:"required,min=1,max=16384"`
}

func (Image) Kind() string { return "Image" }

// Unknown holds the raw payload of an unrecognized object kind. Keeping the
// original bytes lets newer clients exchange kinds this server has not
// learned about yet.
type Unknown struct {
	Tag string
	Raw json.RawMessage
}

func (u Unknown) Kind() string { return u.Tag }

// DefinedObject is an object together with its placement on the canvas.
type DefinedObject struct {
	Position Position
	Object   Object
}

// DefinedObjectWithID pairs a defined object with its store identifier, for
// snapshot responses.
type DefinedObjectWithID struct {
	ID     uuid.UUID     `json:"id"`
	Object DefinedObject `json:"object"`
}

// MarshalObject encodes obj as JSON with its kind merged in as the "type"
// discriminator field.
func MarshalObject(obj Object) ([]byte, error) {
	switch o := obj.(type) {
	case Text:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text
		}{Type: o.Kind(), Text: o})
	case Image:
		return json.Marshal(struct {
			Type string `json:"type"`
			Image
		}{Type: o.Kind(), Image: o})
	case Unknown:
		raw := make(json.RawMessage, len(o.Raw))
		copy(raw, o.Raw)
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported object type %T", obj)
	}
}

// UnmarshalObject decodes a tagged object payload. Unrecognized tags are
// not an error; they produce an Unknown carrying the payload unchanged.
func UnmarshalObject(data []byte) (Object, error) {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode object: %w", err)
	}
	if tag.Type == "" {
		return nil, fmt.Errorf("object missing type tag")
	}

	switch tag.Type {
	case "Text":
		var t Text
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decode text object: %w", err)
		}
		return t, nil
	case "Image":
		var i Image
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, fmt.Errorf("decode image object: %w", err)
		}
		return i, nil
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return Unknown{Tag: tag.Type, Raw: raw}, nil
	}
}

func (d DefinedObject) MarshalJSON() ([]byte, error) {
	obj, err := MarshalObject(d.Object)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Position Position        `json:"position"`
		Object   json.RawMessage `json:"object"`
	}{Position: d.Position, Object: obj})
}

func (d *DefinedObject) UnmarshalJSON(data []byte) error {
	var aux struct {
		Position Position        `json:"position"`
		Object   json.RawMessage `json:"object"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("decode defined object: %w", err)
	}
	obj, err := UnmarshalObject(aux.Object)
	if err != nil {
		return err
	}
	d.Position = aux.Position
	d.Object = obj
	return nil
}

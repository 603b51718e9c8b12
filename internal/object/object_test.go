package object

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalObjectText(t *testing.T) {
	data, err := MarshalObject(Text{Text: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Text","text":"hello"}`, string(data))
}

func TestMarshalObjectImage(t *testing.T) {
	data, err := MarshalObject(Image{URL: "https://example.com/cat.png", Width: 320, Height: 240})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Image","url":"https://example.com/cat.png","width":320,"height":240}`, string(data))
}

func TestUnmarshalObjectRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		obj  Object
	}{
		{name: "text", obj: Text{Text: "hi"}},
		{name: "image", obj: Image{URL: "https://example.com/a.png", Width: 1, Height: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalObject(tt.obj)
			require.NoError(t, err)

			decoded, err := UnmarshalObject(data)
			require.NoError(t, err)
			assert.Equal(t, tt.obj, decoded)
		})
	}
}

func TestUnmarshalObjectUnknownKindPassesThrough(t *testing.T) {
	payload := `{"type":"Sticker","emoji":"party","scale":2}`

	decoded, err := UnmarshalObject([]byte(payload))
	require.NoError(t, err)

	unknown, ok := decoded.(Unknown)
	require.True(t, ok)
	assert.Equal(t, "Sticker", unknown.Kind())

	// Round-trips verbatim
	data, err := MarshalObject(unknown)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(data))
}

func TestUnmarshalObjectMissingTag(t *testing.T) {
	_, err := UnmarshalObject([]byte(`{"text":"hi"}`))
	assert.Error(t, err)
}

func TestUnmarshalObjectInvalidJSON(t *testing.T) {
	_, err := UnmarshalObject([]byte(`{`))
	assert.Error(t, err)
}

func TestDefinedObjectJSONRoundTrip(t *testing.T) {
	original := DefinedObject{
		Position: Position{X: -4, Y: 17},
		Object:   Text{Text: "note"},
	}

	data, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{"position":{"x":-4,"y":17},"object":{"type":"Text","text":"note"}}`, string(data))

	var decoded DefinedObject
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func TestDefinedObjectWithIDJSON(t *testing.T) {
	id := uuid.MustParse("7f9c24e5-2f33-4c35-a2c4-9a146f4e0fb2")
	entry := DefinedObjectWithID{
		ID: id,
		Object: DefinedObject{
			Position: Position{X: 0, Y: 0},
			Object:   Image{URL: "https://example.com/a.png", Width: 10, Height: 20},
		},
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "7f9c24e5-2f33-4c35-a2c4-9a146f4e0fb2",
		"object": {
			"position": {"x": 0, "y": 0},
			"object": {"type": "Image", "url": "https://example.com/a.png", "width": 10, "height": 20}
		}
	}`, string(data))
}

package claims

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentUnmarshalFlatForm(t *testing.T) {
	raw := []byte(`{
		"role": "manager",
		"sales_view": [1, 2],
		"sales_update": [1],
		"parts_view": [0],
		"parts_delete": []
	}`)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, "manager", doc.Role)
	assert.Equal(t, []int64{1, 2}, doc.Modules["sales"][ActionView])
	assert.Equal(t, []int64{1}, doc.Modules["sales"][ActionUpdate])
	assert.Equal(t, []int64{0}, doc.Modules["parts"][ActionView])
	assert.Equal(t, []int64{}, doc.Modules["parts"][ActionDelete])
	// Keys never present in the wire form stay absent.
	_, ok := doc.Modules["sales"][ActionCreate]
	assert.False(t, ok)
}

func TestDocumentUnmarshalIgnoresUnknownKeys(t *testing.T) {
	raw := []byte(`{"favourite_colour": "green", "sales_view": [3], "_update": [1]}`)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Len(t, doc.Modules, 1)
	assert.Equal(t, []int64{3}, doc.Modules["sales"][ActionView])
}

func TestDocumentUnmarshalMalformedGrantListReadsEmpty(t *testing.T) {
	raw := []byte(`{"sales_view": "oops", "sales_update": [2]}`)

	var doc Document
	require.NoError(t, json.Unmarshal(raw, &doc))

	assert.Equal(t, []int64{}, doc.Modules["sales"][ActionView])
	assert.Equal(t, []int64{2}, doc.Modules["sales"][ActionUpdate])
}

func TestDocumentMarshalRoundTrip(t *testing.T) {
	doc := Document{
		Role: "super",
		Modules: map[string]Grants{
			"quality": {
				ActionView:   {1, 4},
				ActionCreate: {},
				ActionUpdate: {4},
				ActionDelete: {},
			},
		},
	}

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Contains(t, flat, "role")
	assert.Contains(t, flat, "quality_view")
	assert.Contains(t, flat, "quality_delete")
	assert.NotContains(t, flat, "quality")

	var back Document
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, doc, back)
}

func TestDocumentMarshalOmitsEmptyRole(t *testing.T) {
	raw, err := json.Marshal(Document{Modules: map[string]Grants{
		"sales": {ActionView: {1}},
	}})
	require.NoError(t, err)

	var flat map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.NotContains(t, flat, "role")
}

func TestDocumentCloneIsDeep(t *testing.T) {
	doc := Document{
		Role: "manager",
		Modules: map[string]Grants{
			"sales": {ActionView: {1, 2}},
		},
	}

	clone := doc.Clone()
	clone.Modules["sales"][ActionView][0] = 99
	clone.Modules["parts"] = Grants{ActionView: {1}}

	assert.Equal(t, []int64{1, 2}, doc.Modules["sales"][ActionView])
	assert.NotContains(t, doc.Modules, "parts")
}

func TestRequirementIsEmpty(t *testing.T) {
	assert.True(t, Requirement{}.IsEmpty())
	assert.False(t, Requirement{View: []string{"sales"}}.IsEmpty())
	assert.False(t, Requirement{Role: "super"}.IsEmpty())
	assert.False(t, Requirement{Bypass: true}.IsEmpty())
}

func TestModeValid(t *testing.T) {
	assert.True(t, ModeAdditive.Valid())
	assert.True(t, ModeReplace.Valid())
	assert.False(t, Mode("").Valid())
	assert.False(t, Mode("merge").Valid())
}

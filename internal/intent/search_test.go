package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexuscore/nexus/internal/capability"
)

func TestFindTargetExactLabel(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "Save"},
		{Role: "button", Label: "Save As"},
	}
	el, ok := FindTarget(elements, "Save")
	assert.True(t, ok)
	assert.Equal(t, "Save", el.Label)
}

func TestFindTargetRoleWord(t *testing.T) {
	elements := []capability.Element{
		{Role: "static-text", Label: "Save"},
		{Role: "button", Label: "Save"},
	}
	el, ok := FindTarget(elements, "save button")
	assert.True(t, ok)
	assert.Equal(t, "button", el.Role)
}

func TestFindTargetSubstringFallback(t *testing.T) {
	elements := []capability.Element{{Role: "button", Label: "Save Document"}}
	el, ok := FindTarget(elements, "save")
	assert.True(t, ok)
	assert.Equal(t, "Save Document", el.Label)
}

func TestFindTargetNoMatch(t *testing.T) {
	elements := []capability.Element{{Role: "button", Label: "Cancel"}}
	_, ok := FindTarget(elements, "Save")
	assert.False(t, ok)
}

func TestApplyOrdinalNth(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "Save 1"},
		{Role: "button", Label: "Save 2"},
		{Role: "button", Label: "Save 3"},
	}
	el, ok := ApplyOrdinal(elements, Ordinal{N: 2, Role: "button"})
	assert.True(t, ok)
	assert.Equal(t, "Save 2", el.Label)
}

func TestApplyOrdinalLast(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "One"},
		{Role: "button", Label: "Two"},
	}
	el, ok := ApplyOrdinal(elements, Ordinal{N: -1, Role: "button"})
	assert.True(t, ok)
	assert.Equal(t, "Two", el.Label)
}

func TestApplyOrdinalOutOfRange(t *testing.T) {
	elements := []capability.Element{{Role: "button", Label: "One"}}
	_, ok := ApplyOrdinal(elements, Ordinal{N: 5, Role: "button"})
	assert.False(t, ok)
}

func TestApplySpatialBelow(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "Cancel", Bounds: capability.Rect{X: 0, Y: 0, W: 20, H: 20}},
		{Role: "button", Label: "Save", Bounds: capability.Rect{X: 0, Y: 100, W: 20, H: 20}},
	}
	el, ok := ApplySpatial(elements, capability.Rect{}, Spatial{Search: "save", Relation: "below", Reference: "Cancel"})
	assert.True(t, ok)
	assert.Equal(t, "Save", el.Label)
}

func TestApplySpatialRegion(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "OK", Bounds: capability.Rect{X: 90, Y: 10, W: 10, H: 10}},
	}
	bounds := capability.Rect{X: 0, Y: 0, W: 100, H: 100}
	el, ok := ApplySpatial(elements, bounds, Spatial{Search: "ok", Region: "top-right"})
	assert.True(t, ok)
	assert.Equal(t, "OK", el.Label)
}

func TestApplyContainerByRowText(t *testing.T) {
	elements := []capability.Element{
		{Role: "button", Label: "Delete Invoice 42"},
		{Role: "button", Label: "Delete Invoice 99"},
	}
	el, ok := ApplyContainer(elements, "Delete", Container{RowText: "Invoice 42"})
	assert.True(t, ok)
	assert.Equal(t, "Delete Invoice 42", el.Label)
}

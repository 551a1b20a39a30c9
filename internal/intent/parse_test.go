package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeActionSynonyms(t *testing.T) {
	assert.Equal(t, "click Save", NormalizeAction("tap Save"))
	assert.Equal(t, "type hello", NormalizeAction("enter hello"))
	assert.Equal(t, "open Finder", NormalizeAction("launch Finder"))
}

func TestNormalizeActionPhraseSynonym(t *testing.T) {
	assert.Equal(t, "click Save", NormalizeAction("click on Save"))
	assert.Equal(t, "navigate example.com", NormalizeAction("go to example.com"))
}

func TestNormalizeActionTypoCorrection(t *testing.T) {
	assert.Equal(t, "click Save", NormalizeAction("clikk Save"))
}

func TestNormalizeActionLeavesUnknownFarVerbAlone(t *testing.T) {
	assert.Equal(t, "xyzzy Save", NormalizeAction("xyzzy Save"))
}

func TestNormalizeActionSkipsTypoForMenuPath(t *testing.T) {
	assert.Equal(t, "clikk File > Save", NormalizeAction("clikk File > Save"))
}

func TestParseOrdinalWord(t *testing.T) {
	got, ok := ParseOrdinal("second save button")
	assert.True(t, ok)
	assert.Equal(t, Ordinal{N: 2, Role: "button", Label: "save"}, got)
}

func TestParseOrdinalLast(t *testing.T) {
	got, ok := ParseOrdinal("last button")
	assert.True(t, ok)
	assert.Equal(t, Ordinal{N: -1, Role: "button"}, got)
}

func TestParseOrdinalNumericSuffix(t *testing.T) {
	got, ok := ParseOrdinal("3rd item")
	assert.True(t, ok)
	assert.Equal(t, 3, got.N)
}

func TestParseOrdinalRoleThenNumber(t *testing.T) {
	got, ok := ParseOrdinal("save button 2")
	assert.True(t, ok)
	assert.Equal(t, Ordinal{N: 2, Role: "button", Label: "save"}, got)
}

func TestParseOrdinalNoMatch(t *testing.T) {
	_, ok := ParseOrdinal("Save")
	assert.False(t, ok)
}

func TestParseSpatialRelation(t *testing.T) {
	got, ok := ParseSpatial("Save button below Cancel")
	assert.True(t, ok)
	assert.Equal(t, Spatial{Search: "Save button", Relation: "below", Reference: "Cancel"}, got)
}

func TestParseSpatialRegion(t *testing.T) {
	got, ok := ParseSpatial("OK in the top-right")
	assert.True(t, ok)
	assert.Equal(t, "OK", got.Search)
	assert.Equal(t, "top-right", got.Region)
}

func TestParseSpatialNoMatch(t *testing.T) {
	_, ok := ParseSpatial("Save")
	assert.False(t, ok)
}

func TestParseContainerRowNum(t *testing.T) {
	got, ok := ParseContainer("Delete in row 3")
	assert.True(t, ok)
	assert.Equal(t, Container{Target: "Delete", RowNum: 3}, got)
}

func TestParseContainerRowText(t *testing.T) {
	got, ok := ParseContainer("Delete in the row containing Invoice 42")
	assert.True(t, ok)
	assert.Equal(t, Container{Target: "Delete", RowText: "Invoice 42"}, got)
}

func TestParseCoordinate(t *testing.T) {
	x, y, ok := ParseCoordinate("at 10,20")
	assert.True(t, ok)
	assert.Equal(t, 10, x)
	assert.Equal(t, 20, y)
}

func TestParseCoordinateNoMatch(t *testing.T) {
	_, _, ok := ParseCoordinate("Save button")
	assert.False(t, ok)
}

func TestResolveModifiersDoubleClick(t *testing.T) {
	mods, clicks, button := ResolveModifiers("dblclick")
	assert.Nil(t, mods)
	assert.Equal(t, 2, clicks)
	assert.Equal(t, "left", button)
}

func TestResolveModifiersShiftClick(t *testing.T) {
	mods, clicks, button := ResolveModifiers("shift-click")
	assert.Equal(t, []string{"shift"}, mods)
	assert.Equal(t, 1, clicks)
	assert.Equal(t, "left", button)
}

func TestParseFields(t *testing.T) {
	got := ParseFields(`Name="Jane Doe", Email=jane@example.com`)
	assert.Equal(t, map[string]string{"Name": "Jane Doe", "Email": "jane@example.com"}, got)
}

func TestSplitChain(t *testing.T) {
	got := SplitChain("click Save; press enter ;  type hi")
	assert.Equal(t, []string{"click Save", "press enter", "type hi"}, got)
}

func TestResolveKeyAlias(t *testing.T) {
	assert.Equal(t, "return", ResolveKey("enter"))
	assert.Equal(t, "cmd", ResolveKey("command"))
}

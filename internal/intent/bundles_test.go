package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBundleSaveAs(t *testing.T) {
	steps, ok := matchBundle("save as report.txt")
	assert.True(t, ok)
	assert.Equal(t, []string{
		"press cmd+shift+s", "wait for Save dialog", "type report.txt", "press enter",
	}, steps)
}

func TestMatchBundleFindReplace(t *testing.T) {
	steps, ok := matchBundle("find foo and replace with bar")
	assert.True(t, ok)
	assert.Equal(t, []string{
		"press cmd+f", "type foo", "press escape", "press cmd+shift+h", "type bar",
	}, steps)
}

func TestMatchBundleZoomIn(t *testing.T) {
	steps, ok := matchBundle("zoom in")
	assert.True(t, ok)
	assert.Equal(t, []string{"press cmd+plus"}, steps)
}

func TestMatchBundleNoMatch(t *testing.T) {
	_, ok := matchBundle("click Save")
	assert.False(t, ok)
}

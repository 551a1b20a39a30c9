package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchShortcutLiteral(t *testing.T) {
	got, ok := matchShortcut("copy")
	assert.True(t, ok)
	assert.Equal(t, Shortcut{Name: "copy"}, got)
}

func TestMatchShortcutGetter(t *testing.T) {
	got, ok := matchShortcut("get clipboard")
	assert.True(t, ok)
	assert.Equal(t, Getter{Kind: "clipboard"}, got)
}

func TestMatchShortcutWhereIs(t *testing.T) {
	got, ok := matchShortcut("where is safari?")
	assert.True(t, ok)
	assert.Equal(t, Getter{Kind: "where_is", Arg: "safari"}, got)
}

func TestMatchShortcutNoMatch(t *testing.T) {
	_, ok := matchShortcut("click Save")
	assert.False(t, ok)
}

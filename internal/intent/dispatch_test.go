package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
)

func TestExecuteClickByLabel(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Bounds: capability.Rect{X: 10, Y: 10, W: 40, H: 20}, Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "click Save", nil)
	assert.True(t, res.OK)
	assert.Contains(t, res.Text, "Save")
}

func TestExecuteClickMissingElementFails(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "click Nonexistent", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "nonexistent")
}

func TestExecuteTypeFallsBackToKeystroke(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "text-field", Label: "Name", Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "type hello", nil)
	assert.True(t, res.OK)
	assert.Equal(t, "keystroke", res.Method)
}

func TestExecutePressKeystroke(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, nil)
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "press enter", nil)
	assert.True(t, res.OK)
}

func TestExecuteChainStopsOnFirstFailure(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "click Nonexistent; click Save", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "step 1/2")
}

func TestExecuteChainAllSucceed(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	res := d.Execute(context.Background(), "press enter; click Save", nil)
	assert.True(t, res.OK)
}

func TestExecuteEmptyActionFails(t *testing.T) {
	world := fake.NewWorld()
	d := newTestDispatcher(world)
	res := d.Execute(context.Background(), "   ", nil)
	assert.False(t, res.OK)
	assert.Equal(t, "empty action", res.Error)
}

func TestExecuteUnknownAppFails(t *testing.T) {
	world := fake.NewWorld()
	d := newTestDispatcher(world)
	res := d.Execute(context.Background(), "click Save", nil)
	assert.False(t, res.OK)
}

func TestDoAdaptsExecute(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Enabled: true},
	})
	world.Focus(100)
	d := newTestDispatcher(world)

	ok, detail, err := d.Do(context.Background(), "click Save", nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, detail, "Save")
}

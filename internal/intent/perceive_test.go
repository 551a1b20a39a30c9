package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/hooks"
	"github.com/nexuscore/nexus/internal/perception"
	"github.com/nexuscore/nexus/internal/recipe"
)

func newTestDispatcher(world *fake.World) *Dispatcher {
	bridge := world.Bridge()
	p := perception.NewPipeline()
	perception.RegisterDefaults(p, bridge)
	return &Dispatcher{
		Bridge:   bridge,
		Recipes:  recipe.NewRegistry(),
		Pipeline: p,
		Hooks:    hooks.NewRegistry(),
		Config:   config.Config{},
	}
}

func TestPerceiveRendersFocusedApp(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{X: 0, Y: 0, W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save"},
	})
	world.Focus(100)

	d := newTestDispatcher(world)
	res, err := d.Perceive(context.Background(), PerceiveOptions{})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "TextEdit")
	assert.Contains(t, res.Text, "Save")
}

func TestPerceiveByAppNameOverridesFocus(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, nil)
	world.AddWindow(200, "Calculator", "calc", capability.Rect{W: 200, H: 300}, []capability.Element{
		{Role: "button", Label: "5"},
	})
	world.Focus(100)

	d := newTestDispatcher(world)
	res, err := d.Perceive(context.Background(), PerceiveOptions{App: "Calculator"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Calculator")
	assert.Contains(t, res.Text, "5")
}

func TestPerceiveQueryFiltersElements(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save"},
		{Role: "button", Label: "Cancel"},
	})
	world.Focus(100)

	d := newTestDispatcher(world)
	res, err := d.Perceive(context.Background(), PerceiveOptions{Query: "save"})
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Save")
	assert.NotContains(t, res.Text, "Cancel")
}

func TestPerceiveDiffReportsNoPriorSnapshotThenChanges(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save"},
	})
	world.Focus(100)

	d := newTestDispatcher(world)
	first, err := d.Perceive(context.Background(), PerceiveOptions{Diff: true})
	require.NoError(t, err)
	assert.Contains(t, first.Text, "no prior snapshot")

	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save"},
		{Role: "button", Label: "Cancel"},
	})
	second, err := d.Perceive(context.Background(), PerceiveOptions{Diff: true})
	require.NoError(t, err)
	assert.Contains(t, second.Text, "Cancel")
}

func TestPerceiveFailsForUnknownApp(t *testing.T) {
	world := fake.NewWorld()
	d := newTestDispatcher(world)
	_, err := d.Perceive(context.Background(), PerceiveOptions{App: "Nonexistent"})
	assert.Error(t, err)
}

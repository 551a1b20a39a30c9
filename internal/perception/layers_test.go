package perception

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
)

func TestRegisterDefaultsMergesTreeAndOCR(t *testing.T) {
	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{X: 0, Y: 0, W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save"},
	})
	bridge := world.Bridge()

	p := NewPipeline()
	RegisterDefaults(p, bridge)

	pctx := p.Run(context.Background(), 100, "TextEdit", capability.Rect{X: 0, Y: 0, W: 400, H: 300}, 50)
	assert.GreaterOrEqual(t, len(pctx.Elements), 1)
	assert.Equal(t, "ax", pctx.Elements[0].Source)
}

func TestOCRLayerSkippedWhenTreeIsRich(t *testing.T) {
	world := fake.NewWorld()
	elems := make([]capability.Element, 0, 10)
	for i := 0; i < 10; i++ {
		elems = append(elems, capability.Element{Role: "button", Label: "x"})
	}
	world.AddWindow(1, "App", "w", capability.Rect{W: 100, H: 100}, elems)
	bridge := world.Bridge()

	p := NewPipeline()
	RegisterDefaults(p, bridge)
	pctx := p.Run(context.Background(), 1, "App", capability.Rect{W: 100, H: 100}, 50)
	for _, e := range pctx.Elements {
		assert.NotEqual(t, "ocr", e.Source)
	}
}

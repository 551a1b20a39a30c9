package perception

import (
	"context"
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/dialog"
)

// sparseThreshold is the element count below which the OCR fallback layer
// runs, matching the source's heuristic that a near-empty accessibility
// tree usually means the app doesn't expose one (Electron canvas apps,
// games) rather than that the screen is genuinely empty.
const sparseThreshold = 3

// TreeLayer walks the accessibility tree via bridge.Accessibility. It is
// always registered at the lowest priority so every other layer's elements
// append after it.
func TreeLayer(bridge capability.Bridge) Layer {
	return Layer{
		Name:     "ax",
		Priority: 10,
		Run: func(ctx context.Context, pctx *Context) ([]capability.Element, error) {
			if bridge.Accessibility == nil {
				return nil, nil
			}
			return bridge.Accessibility.Snapshot(ctx, pctx.PID, pctx.FetchLimit)
		},
	}
}

// OCRLayer captures the process's window region and runs OCR over it,
// conditional on the tree layer having returned too few elements to be
// trustworthy on its own.
func OCRLayer(bridge capability.Bridge) Layer {
	return Layer{
		Name:     "ocr",
		Priority: 20,
		Condition: func(pctx *Context) bool {
			return len(pctx.Elements) < sparseThreshold &&
				bridge.ScreenCapture != nil && bridge.OCR != nil
		},
		Run: func(ctx context.Context, pctx *Context) ([]capability.Element, error) {
			img, w, h, err := bridge.ScreenCapture.CaptureRegion(ctx, pctx.Bounds)
			if err != nil {
				return nil, err
			}
			return bridge.OCR.Recognize(ctx, img, w, h)
		},
	}
}

// TemplateLayer matches the process's window against the known
// system-dialog template table, promoting a match's buttons/fields to
// synthetic elements positioned at their resolved absolute coordinates.
// Conditional on the process being one of dialog.KnownProcesses and an OCR
// layer (or prior run) having already produced text to match against.
func TemplateLayer(bridge capability.Bridge, appName func(pid int) string) Layer {
	return Layer{
		Name:     "template",
		Priority: 30,
		Condition: func(pctx *Context) bool {
			_, known := dialog.KnownProcesses[pctx.AppName]
			return known
		},
		Run: func(ctx context.Context, pctx *Context) ([]capability.Element, error) {
			var text strings.Builder
			for _, e := range pctx.Elements {
				text.WriteString(e.Label)
				text.WriteString(" ")
			}
			_, tmpl, ok := dialog.MatchTemplate(text.String(), pctx.AppName)
			if !ok {
				return nil, nil
			}
			var out []capability.Element
			for key, btn := range tmpl.Buttons {
				pt, ok := dialog.ResolveButton(tmpl, key, pctx.Bounds)
				if !ok {
					continue
				}
				label := key
				if len(btn.Labels) > 0 {
					label = btn.Labels[0]
				}
				out = append(out, capability.Element{
					Role:    "button",
					Label:   label,
					Bounds:  capability.Rect{X: pt.X - 1, Y: pt.Y - 1, W: 2, H: 2},
					Enabled: true,
					Source:  "template",
				})
			}
			return out, nil
		},
	}
}

// RegisterDefaults wires the standard tree -> ocr -> template pipeline onto
// p, the layer set every Runtime uses unless a test wants a narrower one.
func RegisterDefaults(p *Pipeline, bridge capability.Bridge) {
	p.Register(TreeLayer(bridge))
	p.Register(OCRLayer(bridge))
	p.Register(TemplateLayer(bridge, nil))
}

// Package perception runs the layered perception pipeline: an accessibility
// tree walk, a conditional OCR fallback when the tree is sparse, and a
// conditional system-dialog template layer, merged into one element set per
// process. Grounded on original_source/nexus/sense/plugins.py's
// register_layer/run_pipeline design.
package perception

import (
	"context"
	"sort"
	"sync"

	"github.com/nexuscore/nexus/internal/capability"
)

// Context carries the pipeline's working state through every layer, mirroring
// plugins.py's ctx dict (pid, elements, app_info, bounds, fetch_limit,
// tables, lists).
type Context struct {
	PID        int
	AppName    string
	Bounds     capability.Rect
	FetchLimit int
	Elements   []capability.Element
	Tables     []Table
	Lists      []List

	// Trusted, Focus and Windows are populated by the caller (intent.Perceive)
	// after the layer walk, not by any Layer — they come from Accessibility
	// and WindowManager calls that apply once per perceive() regardless of
	// which layers ran. Fusion renders them ahead of the element list.
	Trusted bool
	Focus   *capability.Element
	Windows []capability.Window

	// Content holds document/field text pulled for perceive(content=true).
	Content []capability.ContentItem
	// WebContent holds browser page text pulled via CDP when the focused
	// app is a controllable browser.
	WebContent string
}

// Table is a side-channel structured table the tree layer may discover
// while walking (e.g. a spreadsheet grid or list view with columns).
type Table struct {
	Name string
	Rows [][]string
}

// List is a side-channel flat list the tree layer may discover (e.g. a
// sidebar's item list), rendered by fusion separately from free elements.
type List struct {
	Name  string
	Items []string
}

// Layer is one registered perception source. Condition may be nil, meaning
// "always run". Run must never panic; Pipeline recovers anyway but a well
// behaved layer returns an error instead.
type Layer struct {
	Name      string
	Priority  int
	Condition func(ctx *Context) bool
	Run       func(ctx context.Context, pctx *Context) ([]capability.Element, error)
}

// Pipeline holds the registered layers, run in ascending priority order.
type Pipeline struct {
	mu     sync.Mutex
	layers []Layer
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Register adds a layer and keeps the layer list priority-sorted.
func (p *Pipeline) Register(l Layer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.layers = append(p.layers, l)
	sort.SliceStable(p.layers, func(i, j int) bool { return p.layers[i].Priority < p.layers[j].Priority })
}

// Layers returns a snapshot of the registered layers, for diagnostics.
func (p *Pipeline) Layers() []Layer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Layer, len(p.layers))
	copy(out, p.layers)
	return out
}

// Run executes every registered layer in priority order against pid,
// merging elements in layer order (later layers append, never override).
// A layer whose Condition returns false is skipped; a layer that panics or
// errors is isolated and the pipeline continues with whatever the prior
// layers already produced.
func (p *Pipeline) Run(ctx context.Context, pid int, appName string, bounds capability.Rect, fetchLimit int) (pctx *Context) {
	p.mu.Lock()
	layers := make([]Layer, len(p.layers))
	copy(layers, p.layers)
	p.mu.Unlock()

	if fetchLimit <= 0 {
		fetchLimit = 150
	}
	pctx = &Context{PID: pid, AppName: appName, Bounds: bounds, FetchLimit: fetchLimit}

	for _, layer := range layers {
		if layer.Condition != nil && !safeCondition(layer.Condition, pctx) {
			continue
		}
		elements := safeRun(layer, ctx, pctx)
		for i := range elements {
			if elements[i].Source == "" {
				elements[i].Source = layer.Name
			}
		}
		pctx.Elements = append(pctx.Elements, elements...)
	}
	return pctx
}

func safeCondition(cond func(ctx *Context) bool, pctx *Context) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return cond(pctx)
}

func safeRun(l Layer, ctx context.Context, pctx *Context) (out []capability.Element) {
	defer func() {
		if recover() != nil {
			out = nil
		}
	}()
	elements, err := l.Run(ctx, pctx)
	if err != nil {
		return nil
	}
	return elements
}

// Package browserbridge is the optional Chrome DevTools Protocol client the
// browser verbs in intent.Dispatcher drive when the focused app is a
// controllable browser. It is one perception/action source among several
// per spec.md §1 — never the system's primary interface. Navigate and NewTab
// launch Chrome when it is not running; the other tab methods return
// nxerr.BridgeUnavailable instead of blocking, and ConsoleLogs returns
// nxerr.UnsupportedCapability. Grounded on the teacher's internal/agent/tools/browser.go
// (chromedp.NewExecAllocator + chromedp.Run action shape) generalized from
// a single-shot tool call into a long-lived per-tab bridge this package's
// caller keeps across several act() calls.
package browserbridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/nexuscore/nexus/internal/nxerr"
)

const defaultTimeout = 5 * time.Second

// Bridge drives one Chrome instance over CDP, tracking the active tab so
// navigate/js/switch-tab/new-tab/close-tab verbs can operate without the
// caller re-resolving a target each time.
type Bridge struct {
	mu       sync.Mutex
	allocCtx context.Context
	cancel   context.CancelFunc
	browser  context.Context
	browserCancel context.CancelFunc
	current  context.Context
	currentCancel context.CancelFunc
	headless bool
	started  bool
}

// New creates a bridge that lazily launches Chrome on first use, matching
// the teacher's allocator-then-context split so a single Chrome process
// backs every tab this bridge opens.
func New(headless bool) *Bridge {
	return &Bridge{headless: headless}
}

func (b *Bridge) ensureStarted() error {
	if b.started {
		return nil
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		return nxerr.Wrap(nxerr.BridgeUnavailable, "browserbridge: launch chrome", err)
	}
	b.allocCtx = allocCtx
	b.cancel = cancel
	b.browser = browserCtx
	b.browserCancel = browserCancel
	b.current = browserCtx
	b.currentCancel = func() {}
	b.started = true
	return nil
}

// Close tears down the Chrome process, if one was started.
func (b *Bridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return
	}
	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.cancel != nil {
		b.cancel()
	}
	b.started = false
}

// Navigate loads url in the active tab, launching Chrome first if this is
// the bridge's first call.
func (b *Bridge) Navigate(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureStarted(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(b.current, defaultTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.Navigate(url), chromedp.WaitReady("body"))
}

// Eval runs expr as JavaScript in the active tab and returns its JSON-ish
// string representation.
func (b *Bridge) Eval(ctx context.Context, expr string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return "", nxerr.New(nxerr.BridgeUnavailable, "browserbridge: no active tab; navigate first")
	}
	runCtx, cancel := context.WithTimeout(b.current, defaultTimeout)
	defer cancel()
	var out string
	if err := chromedp.Run(runCtx, chromedp.EvaluateAsDevTools(expr, &out)); err != nil {
		return "", err
	}
	return out, nil
}

// CurrentURL returns the active tab's address bar URL.
func (b *Bridge) CurrentURL(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return "", nxerr.New(nxerr.BridgeUnavailable, "browserbridge: no active tab")
	}
	runCtx, cancel := context.WithTimeout(b.current, defaultTimeout)
	defer cancel()
	var url string
	if err := chromedp.Run(runCtx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

// Tabs lists every open tab's title, newest last.
func (b *Bridge) Tabs(ctx context.Context) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nil, nxerr.New(nxerr.BridgeUnavailable, "browserbridge: chrome is not running")
	}
	targets, err := chromedp.Targets(b.browser)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		if t.Type != "page" {
			continue
		}
		out = append(out, fmt.Sprintf("%s — %s", t.Title, t.URL))
	}
	return out, nil
}

// NewTab opens a fresh tab, optionally navigating it to url, and makes it
// the active tab.
func (b *Bridge) NewTab(ctx context.Context, url string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ensureStarted(); err != nil {
		return err
	}
	tabCtx, tabCancel := chromedp.NewContext(b.browser)
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return err
	}
	if url != "" {
		runCtx, cancel := context.WithTimeout(tabCtx, defaultTimeout)
		defer cancel()
		if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
			tabCancel()
			return err
		}
	}
	if b.currentCancel != nil {
		// Deliberately not cancelling the previous tab's context — closing it
		// is CloseTab's job, not an implicit side effect of switching away.
	}
	b.current, b.currentCancel = tabCtx, tabCancel
	return nil
}

// SwitchTab activates the first open tab whose title or URL contains query
// (case-sensitive substring, matching the source's simple contains match),
// or the Nth tab (1-based) if query parses as an integer index.
func (b *Bridge) SwitchTab(ctx context.Context, query string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nxerr.New(nxerr.BridgeUnavailable, "browserbridge: chrome is not running")
	}
	targets, err := chromedp.Targets(b.browser)
	if err != nil {
		return err
	}
	var match *target.Info
	if idx, ok := parseIndex(query); ok {
		pages := pageTargets(targets)
		if idx < 1 || idx > len(pages) {
			return nxerr.New(nxerr.ElementNotFound, fmt.Sprintf("browserbridge: no tab #%d", idx))
		}
		match = pages[idx-1]
	} else {
		for _, t := range targets {
			if t.Type != "page" {
				continue
			}
			if strings.Contains(t.Title, query) || strings.Contains(t.URL, query) {
				tc := t
				match = tc
				break
			}
		}
	}
	if match == nil {
		return nxerr.New(nxerr.ElementNotFound, fmt.Sprintf("browserbridge: no tab matching %q", query))
	}
	tabCtx, tabCancel := chromedp.NewContext(b.browser, chromedp.WithTargetID(match.TargetID))
	b.current, b.currentCancel = tabCtx, tabCancel
	return nil
}

// CloseTab closes the active tab. query is not used: no tab is looked up
// by title, URL or index.
func (b *Bridge) CloseTab(ctx context.Context, query string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return nxerr.New(nxerr.BridgeUnavailable, "browserbridge: chrome is not running")
	}
	runCtx, cancel := context.WithTimeout(b.current, defaultTimeout)
	defer cancel()
	return chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		return nil
	}), chromedp.CancelContext)
}

// ConsoleLogs is a best-effort placeholder: without an attached listener
// from the moment the tab opened, replaying console history isn't possible
// over CDP — the real adapter would attach runtime.enable + a log sink at
// NewTab time, which is an OS-binding concern out of this module's scope
// per spec.md §1.
func (b *Bridge) ConsoleLogs(ctx context.Context) ([]string, error) {
	return nil, nxerr.New(nxerr.UnsupportedCapability, "browserbridge: console log capture requires an attached listener")
}

func pageTargets(targets []*target.Info) []*target.Info {
	var out []*target.Info
	for _, t := range targets {
		if t.Type == "page" {
			out = append(out, t)
		}
	}
	return out
}

func parseIndex(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

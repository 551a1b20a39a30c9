package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyClick(t *testing.T) {
	got := Classify("click Save")
	assert.Equal(t, Click{Target: "Save", Clicks: 1, Button: "left"}, got)
}

func TestClassifyClickMenuPath(t *testing.T) {
	got := Classify("click File > Save As")
	click, ok := got.(Click)
	require := assert.New(t)
	require.True(ok)
	require.Equal([]string{"File", "Save As"}, click.MenuPath)
}

func TestClassifyModifierClick(t *testing.T) {
	got := Classify("double-click Icon")
	click, ok := got.(Click)
	assert.True(t, ok)
	assert.Equal(t, "Icon", click.Target)
	assert.Equal(t, 2, click.Clicks)
}

func TestClassifyType(t *testing.T) {
	got := Classify(`type "hello world"`)
	assert.Equal(t, Type{Text: "hello world"}, got)
}

func TestClassifyTypeIn(t *testing.T) {
	got := Classify("type hello in Search")
	assert.Equal(t, Type{Text: "hello", Target: "Search"}, got)
}

func TestClassifyPressResolvesKeys(t *testing.T) {
	got := Classify("press cmd+s")
	press, ok := got.(Press)
	assert.True(t, ok)
	assert.Len(t, press.Keys, 2)
}

func TestClassifyOpen(t *testing.T) {
	assert.Equal(t, Open{App: "Calculator"}, Classify("open Calculator"))
}

func TestClassifySwitchTo(t *testing.T) {
	assert.Equal(t, Switch{App: "Finder"}, Classify("switch to Finder"))
}

func TestClassifySwitchToTab(t *testing.T) {
	got := Classify("switch to tab github")
	assert.Equal(t, Switch{Tab: "github"}, got)
}

func TestClassifyScrollDefaults(t *testing.T) {
	assert.Equal(t, Scroll{Direction: "down", Amount: 3}, Classify("scroll"))
}

func TestClassifyScrollWithAmountAndTarget(t *testing.T) {
	got := Classify("scroll up 5 in Sidebar")
	assert.Equal(t, Scroll{Direction: "up", Amount: 5, Target: "Sidebar"}, got)
}

func TestClassifyScrollUntil(t *testing.T) {
	got := Classify("scroll until Submit appears")
	assert.Equal(t, Scroll{Until: "Submit"}, got)
}

func TestClassifyWaitSeconds(t *testing.T) {
	assert.Equal(t, Wait{Seconds: 2}, Classify("wait 2"))
}

func TestClassifyWaitForTimeout(t *testing.T) {
	got := Classify("wait for Dialog 5s")
	assert.Equal(t, Wait{Target: "Dialog", TimeoutSeconds: 5}, got)
}

func TestClassifyWaitUntilDisappears(t *testing.T) {
	got := Classify("wait until Spinner disappears")
	assert.Equal(t, Wait{Target: "Spinner", UntilDisappear: true, TimeoutSeconds: 10}, got)
}

func TestClassifyMenu(t *testing.T) {
	got := Classify("menu File > Save")
	assert.Equal(t, Menu{Path: []string{"File", "Save"}}, got)
}

func TestClassifyWindowOp(t *testing.T) {
	assert.Equal(t, WindowOp{Op: "tile", Arg: "left"}, Classify("tile left"))
}

func TestClassifyNavigate(t *testing.T) {
	got := Classify("navigate to example.com")
	assert.Equal(t, Browser{Op: "navigate", Arg: "example.com"}, got)
}

func TestClassifyNavPathViaGoto(t *testing.T) {
	got := Classify("goto Settings > Network")
	assert.Equal(t, NavPath{Steps: []string{"Settings", "Network"}}, got)
}

func TestClassifyEval(t *testing.T) {
	got := Classify("run js document.title")
	assert.Equal(t, Browser{Op: "js", Arg: "document.title"}, got)
}

func TestClassifyWorkflowStart(t *testing.T) {
	got := Classify("record start checkout")
	assert.Equal(t, WorkflowOp{Op: "start", Name: "checkout"}, got)
}

func TestClassifyWorkflowStop(t *testing.T) {
	assert.Equal(t, WorkflowOp{Op: "stop"}, Classify("record stop"))
}

func TestClassifyRouteOp(t *testing.T) {
	got := Classify("via replay checkout")
	assert.Equal(t, RouteOp{Op: "replay", Name: "checkout"}, got)
}

func TestClassifyRawFallback(t *testing.T) {
	got := Classify("zzzzz unknown verb")
	assert.Equal(t, Raw{Verb: "zzzzz", Rest: "unknown verb"}, got)
}

func TestClassifyEmptyIsRaw(t *testing.T) {
	assert.Equal(t, Raw{}, Classify(""))
}

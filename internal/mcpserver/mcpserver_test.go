package mcpserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/lifecycle"
)

func newTestRuntime(t *testing.T) *lifecycle.Runtime {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Home = dir
	cfg.Database.Path = dir + "/nexus.db"
	cfg.Control.StatePath = dir + "/state.json"
	cfg.Skills.BundledDir = dir + "/skills"
	cfg.Skills.UserDir = dir + "/skills-user"
	cfg.Perception.MaxElements = 200

	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{W: 400, H: 300}, []capability.Element{
		{Role: "button", Label: "Save", Enabled: true},
	})
	world.Focus(100)

	rt, err := lifecycle.Init(context.Background(), cfg, world.Bridge())
	require.NoError(t, err)
	t.Cleanup(func() { rt.Close() })
	return rt
}

func TestPerceiveHandlerReturnsRenderedText(t *testing.T) {
	rt := newTestRuntime(t)
	handler := perceiveHandler(rt)
	_, out, err := handler(context.Background(), nil, PerceiveInput{})
	require.NoError(t, err)
	result, ok := out.(PerceiveOutput)
	require.True(t, ok)
	assert.Contains(t, result.Text, "TextEdit")
}

func TestActHandlerRejectsEmptyAction(t *testing.T) {
	rt := newTestRuntime(t)
	handler := actHandler(rt)
	_, _, err := handler(context.Background(), nil, ActInput{})
	assert.Error(t, err)
}

func TestRememberSetGetRoundTrip(t *testing.T) {
	rt := newTestRuntime(t)
	handler := rememberHandler(rt)

	_, setOut, err := handler(context.Background(), nil, RememberInput{Op: "set", Key: "k", Value: "v"})
	require.NoError(t, err)
	assert.Contains(t, setOut.(RememberOutput).Text, "k")

	_, getOut, err := handler(context.Background(), nil, RememberInput{Op: "get", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "v", getOut.(RememberOutput).Text)

	_, statsOut, err := handler(context.Background(), nil, RememberInput{Op: "stats"})
	require.NoError(t, err)
	assert.NotEmpty(t, statsOut.(RememberOutput).Text)
}

func TestRememberRejectsUnknownOp(t *testing.T) {
	rt := newTestRuntime(t)
	handler := rememberHandler(rt)
	_, _, err := handler(context.Background(), nil, RememberInput{Op: "bogus"})
	assert.Error(t, err)
}

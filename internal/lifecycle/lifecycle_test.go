package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/hooks"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Config{}
	cfg.Home = dir
	cfg.Database.Path = dir + "/nexus.db"
	cfg.Control.StatePath = dir + "/state.json"
	cfg.Skills.BundledDir = dir + "/skills"
	cfg.Skills.UserDir = dir + "/skills-user"
	return cfg
}

func TestInitWiresEveryRuntimeSingleton(t *testing.T) {
	cfg := testConfig(t)
	world := fake.NewWorld()

	rt, err := Init(context.Background(), cfg, world.Bridge())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Store)
	assert.NotNil(t, rt.Session)
	assert.NotNil(t, rt.Learn)
	assert.NotNil(t, rt.Graph)
	assert.NotNil(t, rt.Skills)
	assert.NotNil(t, rt.Workflow)
	assert.NotNil(t, rt.Control)
	assert.NotNil(t, rt.Pipeline)
	assert.NotNil(t, rt.Route)
	assert.NotNil(t, rt.Observer)
	assert.NotNil(t, rt.Dispatcher)
	assert.Nil(t, rt.Browser, "browser bridge stays unset when Config.Browser.Enabled is false")

	assert.Greater(t, len(rt.Pipeline.Layers()), 0)
	assert.Greater(t, len(rt.Hooks.Registered(hooks.BeforeAct)), 0)
}

func TestInitConstructsBrowserBridgeWhenEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Browser.Enabled = true
	world := fake.NewWorld()

	rt, err := Init(context.Background(), cfg, world.Bridge())
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Browser)
	assert.NotNil(t, rt.Dispatcher.Browser)
}

func TestInitToleratesZeroValueBridge(t *testing.T) {
	cfg := testConfig(t)

	rt, err := Init(context.Background(), cfg, capability.Bridge{})
	require.NoError(t, err)
	defer rt.Close()

	assert.NotNil(t, rt.Dispatcher)
}

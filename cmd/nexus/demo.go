package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/capability/fake"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/lifecycle"
	"github.com/nexuscore/nexus/internal/mcpserver"
)

func demoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the tool server against a seeded in-memory fake desktop",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
}

// runDemo seeds a fake.World with a couple of sample apps so the tools can
// be exercised end to end without touching real OS state.
func runDemo() error {
	home, err := os.MkdirTemp("", "nexus-demo-*")
	if err != nil {
		return fmt.Errorf("make demo home: %w", err)
	}
	cfg, err := config.LoadFromBytes([]byte("Home: " + home))
	if err != nil {
		return fmt.Errorf("load demo config: %w", err)
	}

	world := fake.NewWorld()
	world.AddWindow(100, "TextEdit", "untitled", capability.Rect{X: 0, Y: 0, W: 800, H: 600}, []capability.Element{
		{Role: "button", Label: "Save", Bounds: capability.Rect{X: 700, Y: 10, W: 60, H: 24}, Enabled: true},
		{Role: "textarea", Label: "Document", Bounds: capability.Rect{X: 0, Y: 40, W: 800, H: 540}, Enabled: true},
	})
	world.AddWindow(200, "Calculator", "Calculator", capability.Rect{X: 900, Y: 0, W: 300, H: 400}, []capability.Element{
		{Role: "button", Label: "1", Enabled: true}, {Role: "button", Label: "2", Enabled: true},
		{Role: "button", Label: "+", Enabled: true}, {Role: "button", Label: "=", Enabled: true},
		{Role: "statictext", Label: "0", Enabled: true},
	})
	world.Focus(100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := lifecycle.Init(ctx, cfg, world.Bridge())
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}
	defer rt.Close()

	server := mcpserver.New(rt)
	return server.Run(ctx, &mcp.StdioTransport{})
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/config"
	"github.com/nexuscore/nexus/internal/lifecycle"
	"github.com/nexuscore/nexus/internal/mcpserver"
)

func serveCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the perceive/act/remember tool server over stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfgFile)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "path to config.yaml (defaults to ~/.nexus/config.yaml)")
	return cmd
}

// runServe wires a Runtime against the platform capability bridge and
// serves the three tools over stdio until the process is signalled or the
// host closes the pipe. No native per-OS accessibility adapter is wired in
// yet, so this runs against a zero-value capability.Bridge, which degrades
// every bridge-dependent hook and layer rather than panicking; "demo" is
// the fully working path until that adapter lands.
func runServe(cfgFile string) error {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		cfgFile = filepath.Join(home, ".nexus", "config.yaml")
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := lifecycle.Init(ctx, cfg, capability.Bridge{})
	if err != nil {
		return fmt.Errorf("init runtime: %w", err)
	}
	defer rt.Close()

	server := mcpserver.New(rt)
	return server.Run(ctx, &mcp.StdioTransport{})
}

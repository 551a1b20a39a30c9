// Command nexus is the agent's entrypoint: "serve" runs the stdio MCP tool
// server against an empty (zero-value) capability bridge with no adapters
// wired in; "demo" runs the same server against an in-memory fake world
// seeded with a couple of sample apps, for trying the tools without a
// desktop session.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "nexus",
		Short: "Perceive and act on the desktop through an MCP tool server",
	}
	root.AddCommand(serveCmd(), demoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

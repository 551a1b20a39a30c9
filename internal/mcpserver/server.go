// Package mcpserver exposes the three stdio tools an LLM host drives this
// agent through — perceive, act, remember — plus read-only skills and
// workflow catalog tools (skills_list, skills_get, workflows_list,
// workflows_get), grounded on the teacher's internal/mcp
// server/tool registration pattern.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/lifecycle"
)

// New builds an MCP server with every tool registered against rt.
func New(rt *lifecycle.Runtime) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "nexus",
		Version: "1.0.0",
	}, nil)

	registerPerceiveTool(server, rt)
	registerActTool(server, rt)
	registerRememberTool(server, rt)
	registerSkillsTools(server, rt)
	registerWorkflowTools(server, rt)

	return server
}

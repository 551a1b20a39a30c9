package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/lifecycle"
)

// SkillsListInput takes no arguments; it's a catalog read.
type SkillsListInput struct{}

// SkillSummary is one catalog entry, matching spec.md §6's "skills
// catalog" read-only endpoint.
type SkillSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Source      string `json:"source"`
}

// SkillsListOutput wraps the catalog.
type SkillsListOutput struct {
	Skills []SkillSummary `json:"skills"`
}

// SkillGetInput identifies one skill to read in full.
type SkillGetInput struct {
	ID string `json:"id" jsonschema:"required,Skill id as returned by skills_list."`
}

// SkillGetOutput is a skill's full body plus metadata, matching spec.md
// §6's "per-skill reader" endpoint.
type SkillGetOutput struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Requires    []string `json:"requires,omitempty"`
	Install     string   `json:"install,omitempty"`
	Available   bool     `json:"available"`
	Body        string   `json:"body"`
}

func registerSkillsTools(server *mcp.Server, rt *lifecycle.Runtime) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "skills_list",
		Title:       "List known app skills",
		Description: "List the bundled and user-defined app skills (direct-CLI shortcuts preferred over GUI automation when available).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input SkillsListInput) (*mcp.CallToolResult, any, error) {
		var out []SkillSummary
		for _, sk := range rt.Skills.List() {
			out = append(out, SkillSummary{
				ID: sk.ID, Name: sk.Name, Description: sk.Description,
				Available: sk.Available, Source: sk.Source,
			})
		}
		return nil, SkillsListOutput{Skills: out}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "skills_get",
		Title:       "Read one app skill",
		Description: "Read a single skill's full instructions by id, as returned by skills_list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, input SkillGetInput) (*mcp.CallToolResult, any, error) {
		if input.ID == "" {
			return nil, nil, fmt.Errorf("id is required")
		}
		sk, ok := rt.Skills.Get(input.ID)
		if !ok {
			return nil, nil, fmt.Errorf("unknown skill %q", input.ID)
		}
		return nil, SkillGetOutput{
			ID: sk.ID, Name: sk.Name, Description: sk.Description,
			Requires: sk.Requires, Install: sk.Install, Available: sk.Available, Body: sk.Body,
		}, nil
	})
}

package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/intent"
	"github.com/nexuscore/nexus/internal/lifecycle"
)

// PerceiveInput mirrors perceive()'s optional arguments (spec.md §6). Empty
// strings and false booleans are all treated as unset.
type PerceiveInput struct {
	App        string `json:"app,omitempty" jsonschema:"Target app name or PID. Defaults to the frontmost app."`
	Query      string `json:"query,omitempty" jsonschema:"Only return elements whose role or label matches this substring."`
	Screenshot bool   `json:"screenshot,omitempty" jsonschema:"Attach a screenshot of the target window alongside the text."`
	Menus      bool   `json:"menus,omitempty" jsonschema:"Accepted for compatibility; the menu bar is not added to the listing."`
	Diff       bool   `json:"diff,omitempty" jsonschema:"Report what changed since the last perceive call for this app."`
	Content    bool   `json:"content,omitempty" jsonschema:"Include readable document/page content, not just interactive elements."`
	Observe    bool   `json:"observe,omitempty" jsonschema:"Include any buffered accessibility change notifications."`
}

// PerceiveOutput is perceive()'s structured result: text is always
// populated; the screenshot (when requested) travels only in the
// CallToolResult's ImageContent, not here.
type PerceiveOutput struct {
	Text string `json:"text"`
}

func registerPerceiveTool(server *mcp.Server, rt *lifecycle.Runtime) {
	mcp.AddTool(server, &mcp.Tool{
		Name:  "perceive",
		Title: "Perceive the screen",
		Description: `Read the current state of an app's UI as accessibility-tree text, falling back to OCR or a known dialog template when the tree is too sparse to trust.

Examples:
  perceive()
  perceive(app: "Calculator")
  perceive(query: "save")
  perceive(diff: true)
  perceive(screenshot: true)`,
	}, perceiveHandler(rt))
}

func perceiveHandler(rt *lifecycle.Runtime) func(context.Context, *mcp.CallToolRequest, PerceiveInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input PerceiveInput) (*mcp.CallToolResult, any, error) {
		res, err := rt.Dispatcher.Perceive(ctx, intent.PerceiveOptions{
			App:        input.App,
			Query:      input.Query,
			Screenshot: input.Screenshot,
			Menus:      input.Menus,
			Diff:       input.Diff,
			Content:    input.Content,
			Observe:    input.Observe,
		})
		if err != nil {
			return nil, nil, err
		}
		if len(res.Image) == 0 {
			return nil, PerceiveOutput{Text: res.Text}, nil
		}
		result := &mcp.CallToolResult{
			Content: []mcp.Content{
				&mcp.TextContent{Text: res.Text},
				&mcp.ImageContent{Data: res.Image, MIMEType: "image/png"},
			},
		}
		return result, PerceiveOutput{Text: res.Text}, nil
	}
}

package mcpserver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/lifecycle"
)

// ActInput mirrors act()'s arguments (spec.md §6). action supports the ";"
// chain separator.
type ActInput struct {
	Action string `json:"action" jsonschema:"required,The action to perform, e.g. 'click Save' or 'type hello;press enter'."`
	App    string `json:"app,omitempty" jsonschema:"Target app name or PID. Defaults to the frontmost app."`
}

// ActOutput is act()'s structured result.
type ActOutput struct {
	OK      bool   `json:"ok"`
	Text    string `json:"text"`
	Method  string `json:"method,omitempty"`
	Error   string `json:"error,omitempty"`
	Diff    string `json:"diff,omitempty"`
	Retried bool   `json:"retried,omitempty"`
}

func registerActTool(server *mcp.Server, rt *lifecycle.Runtime) {
	mcp.AddTool(server, &mcp.Tool{
		Name:  "act",
		Title: "Act on the screen",
		Description: `Dispatch a natural-language GUI action against the target app: click, type, press, open, scroll, and more. Supports a ';'-separated chain of actions, and 'via record'/'via replay'/'via list'/'via delete' for recorded routes.

Examples:
  act(action: "click Save")
  act(action: "open Calculator; press 2; press +; press 3; press =")
  act(action: "click the 2nd save button")
  act(action: "via replay checkout")`,
	}, actHandler(rt))
}

func actHandler(rt *lifecycle.Runtime) func(context.Context, *mcp.CallToolRequest, ActInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ActInput) (*mcp.CallToolResult, any, error) {
		if input.Action == "" {
			return nil, nil, fmt.Errorf("action is required")
		}

		var pid *int
		if input.App != "" {
			if n, err := strconv.Atoi(input.App); err == nil {
				pid = &n
			} else if p, err := resolveAppPID(ctx, rt, input.App); err == nil {
				pid = &p
			} else {
				return nil, nil, err
			}
		}

		res := rt.Dispatcher.Execute(ctx, input.Action, pid)
		out := ActOutput{
			OK: res.OK, Text: res.Text, Method: res.Method,
			Error: res.Error, Diff: res.Diff, Retried: res.Retried,
		}
		if !res.OK {
			return nil, out, fmt.Errorf("%s", res.Error)
		}
		return nil, out, nil
	}
}

// resolveAppPID finds a running app's PID by name, for the act() tool's
// optional app argument (the dispatcher itself only resolves by PID hint
// or frontmost process).
func resolveAppPID(ctx context.Context, rt *lifecycle.Runtime, app string) (int, error) {
	if rt.Bridge.WindowManager == nil {
		return 0, fmt.Errorf("no window manager adapter configured")
	}
	windows, err := rt.Bridge.WindowManager.ListWindows(ctx)
	if err != nil {
		return 0, err
	}
	lower := strings.ToLower(app)
	for _, w := range windows {
		if strings.ToLower(w.App) == lower {
			return w.PID, nil
		}
	}
	return 0, fmt.Errorf("no running app matching %q", app)
}

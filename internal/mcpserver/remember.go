package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nexuscore/nexus/internal/lifecycle"
)

// RememberInput mirrors remember()'s arguments (spec.md §6), plus the
// "suggest" op added for the navigation graph (spec.md §4.12).
type RememberInput struct {
	Op    string `json:"op" jsonschema:"required,Operation: set, get, delete, list, clear, stats, suggest."`
	Key   string `json:"key,omitempty" jsonschema:"Memory key for set/get/delete. Target layout fingerprint for suggest."`
	Value string `json:"value,omitempty" jsonschema:"Value to store. Required for set."`
	App   string `json:"app,omitempty" jsonschema:"App to suggest a next action for. Defaults to the frontmost app. Only used by suggest."`
}

// RememberOutput is remember()'s structured result: a single human-readable
// confirmation or error string, matching spec.md §6's "returns
// human-readable confirmation or error".
type RememberOutput struct {
	Text string `json:"text"`
}

var rememberOps = map[string]bool{
	"set": true, "get": true, "delete": true, "list": true, "clear": true, "stats": true, "suggest": true,
}

func registerRememberTool(server *mcp.Server, rt *lifecycle.Runtime) {
	mcp.AddTool(server, &mcp.Tool{
		Name:  "remember",
		Title: "Persistent key/value memory",
		Description: `Store and recall small facts across sessions (preferences, IDs, reminders), or inspect how well automation is learning this machine's apps.

Operations:
- remember(op: set, key: "...", value: "...")
- remember(op: get, key: "...")
- remember(op: delete, key: "...")
- remember(op: list)
- remember(op: clear)
- remember(op: stats)
- remember(op: suggest, key: "<target layout fingerprint>", app: "...")`,
	}, rememberHandler(rt))
}

func rememberHandler(rt *lifecycle.Runtime) func(context.Context, *mcp.CallToolRequest, RememberInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input RememberInput) (*mcp.CallToolResult, any, error) {
		op := strings.ToLower(strings.TrimSpace(input.Op))
		if !rememberOps[op] {
			return nil, nil, fmt.Errorf("unknown op %q, must be one of set, get, delete, list, clear, stats, suggest", input.Op)
		}

		switch op {
		case "set":
			if input.Key == "" || input.Value == "" {
				return nil, nil, fmt.Errorf("set requires key and value")
			}
			if err := rt.Store.MemorySet(ctx, input.Key, input.Value); err != nil {
				return nil, nil, err
			}
			return nil, RememberOutput{Text: fmt.Sprintf("remembered %q", input.Key)}, nil

		case "get":
			if input.Key == "" {
				return nil, nil, fmt.Errorf("get requires key")
			}
			v, ok, err := rt.Store.MemoryGet(ctx, input.Key)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				return nil, RememberOutput{Text: fmt.Sprintf("no memory for %q", input.Key)}, nil
			}
			return nil, RememberOutput{Text: v}, nil

		case "delete":
			if input.Key == "" {
				return nil, nil, fmt.Errorf("delete requires key")
			}
			deleted, err := rt.Store.MemoryDelete(ctx, input.Key)
			if err != nil {
				return nil, nil, err
			}
			if !deleted {
				return nil, RememberOutput{Text: fmt.Sprintf("no memory for %q", input.Key)}, nil
			}
			return nil, RememberOutput{Text: fmt.Sprintf("deleted %q", input.Key)}, nil

		case "list":
			keys, err := rt.Store.MemoryKeys(ctx)
			if err != nil {
				return nil, nil, err
			}
			if len(keys) == 0 {
				return nil, RememberOutput{Text: "no memories stored"}, nil
			}
			return nil, RememberOutput{Text: strings.Join(keys, "\n")}, nil

		case "clear":
			if err := rt.Store.MemoryClear(ctx); err != nil {
				return nil, nil, err
			}
			return nil, RememberOutput{Text: "cleared all memories"}, nil

		case "stats":
			stats, err := rt.Learn.GlobalStats(ctx)
			if err != nil {
				return nil, nil, err
			}
			text := fmt.Sprintf(
				"learned labels: %d app-specific, %d global\nactions recorded: %d\napps tracked: %d",
				stats.LabelMappings, stats.GlobalMappings, stats.ActionsRecord, stats.AppsTracked,
			)
			return nil, RememberOutput{Text: text}, nil

		case "suggest":
			if input.Key == "" {
				return nil, nil, fmt.Errorf("suggest requires key (the target fingerprint)")
			}
			step, ok, err := rt.Dispatcher.SuggestNext(ctx, input.App, input.Key)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				return nil, RememberOutput{Text: fmt.Sprintf("no known path to %q", input.Key)}, nil
			}
			return nil, RememberOutput{Text: fmt.Sprintf("try: %s (leads toward %s)", step.Action, step.To)}, nil
		}
		return nil, nil, fmt.Errorf("unreachable op %q", op)
	}
}

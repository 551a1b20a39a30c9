package intent

import "strings"

// shortcutTable maps a literal, already-normalized phrase straight to a
// Shortcut intent, checked before verb normalization runs, mirroring
// resolve.py's shortcut-intent block.
var shortcutTable = map[string]string{
	"select all":   "select_all",
	"copy":         "copy",
	"paste":        "paste",
	"undo":         "undo",
	"redo":         "redo",
	"close window": "close_window",
	"quit":         "quit",
	"exit":         "quit",
	"maximize":     "maximize",
	"minimize":     "minimize",
	"restore":      "restore",
	"unminimize":   "restore",
	"fullscreen":   "fullscreen",
	"exit fullscreen": "exit_fullscreen",
}

// getterTable maps a literal getter phrase to a Getter.Kind.
var getterTable = map[string]string{
	"get clipboard":  "clipboard",
	"get url":        "url",
	"get tabs":       "tabs",
	"get source":     "source",
	"get selection":  "selection",
	"get console":    "console",
	"get table":      "table",
	"get list":       "list",
	"list windows":   "windows",
	"list recipes":   "recipes",
	"list workflows": "workflows",
	"window info":    "window_info",
}

// matchShortcut recognizes a literal shortcut or getter phrase before any
// normalization runs.
func matchShortcut(action string) (ParsedIntent, bool) {
	if name, ok := shortcutTable[action]; ok {
		return Shortcut{Name: name}, true
	}
	if kind, ok := getterTable[action]; ok {
		return Getter{Kind: kind}, true
	}
	if strings.HasPrefix(action, "where is ") {
		app := strings.TrimSuffix(strings.TrimPrefix(action, "where is "), "?")
		return Getter{Kind: "where_is", Arg: strings.TrimSpace(app)}, true
	}
	return nil, false
}

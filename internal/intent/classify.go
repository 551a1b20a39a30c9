package intent

import (
	"strconv"
	"strings"
)

// Classify turns an already chain-split, shortcut/bundle-checked,
// verb-normalized action string into a ParsedIntent. The dispatcher still
// consults the recipe registry before falling back to whatever this
// returns, matching resolve.py's ordering (recipes run after
// normalization, before verb dispatch).
func Classify(action string) ParsedIntent {
	action = strings.TrimSpace(action)
	if action == "" {
		return Raw{}
	}

	fields := strings.Fields(action)
	verb := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(action, fields[0]))

	// "switch to X" / "bring X" normalize to a two-word verb.
	if verb == "switch" && strings.HasPrefix(rest, "to ") {
		rest = strings.TrimSpace(strings.TrimPrefix(rest, "to"))
		verb = "switch to"
	}

	if mods, clicks, button, ok := tryModifierClick(verb); ok {
		return Click{Target: rest, Modifiers: mods, Clicks: clicks, Button: button}
	}

	switch verb {
	case "click":
		return classifyClick(rest)
	case "type":
		return classifyType(rest)
	case "press":
		keys := strings.FieldsFunc(rest, func(r rune) bool { return r == '+' || r == ' ' })
		for i, k := range keys {
			keys[i] = ResolveKey(k)
		}
		return Press{Keys: keys}
	case "open":
		return Open{App: rest}
	case "switch to", "activate":
		if strings.HasPrefix(strings.ToLower(rest), "tab ") {
			return Switch{Tab: strings.TrimSpace(rest[4:])}
		}
		return Switch{App: rest}
	case "scroll":
		return classifyScroll(rest)
	case "hover":
		return Hover{Target: rest}
	case "focus":
		return Focus{Target: rest}
	case "drag":
		if idx := strings.Index(strings.ToLower(rest), " to "); idx >= 0 {
			return Drag{From: strings.TrimSpace(rest[:idx]), To: strings.TrimSpace(rest[idx+4:])}
		}
		return Drag{To: rest}
	case "fill":
		rest = strings.TrimPrefix(rest, "form ")
		rest = strings.TrimPrefix(rest, "in ")
		return Fill{Fields: ParseFields(rest)}
	case "wait":
		return classifyWait(rest)
	case "menu":
		return Menu{Path: splitMenuPath(rest)}
	case "tile", "move", "position", "resize":
		return WindowOp{Op: verb, Arg: rest}
	case "fullscreen":
		return WindowOp{Op: "fullscreen", Arg: rest}
	case "navigate", "goto", "go":
		return classifyNavigateOrBrowser(rest)
	case "run", "eval", "execute", "js":
		return Browser{Op: "js", Arg: strings.TrimPrefix(rest, "js ")}
	case "observe":
		return Observe{}
	case "notify":
		return Notify{Text: rest}
	case "say":
		return Say{Text: rest}
	case "set", "write":
		if strings.HasPrefix(strings.ToLower(rest), "clipboard ") {
			return Clipboard{Text: strings.TrimSpace(rest[len("clipboard "):])}
		}
	}

	if strings.HasPrefix(verb, "record") || strings.HasPrefix(action, "record ") {
		return classifyWorkflowOp(action)
	}
	if strings.HasPrefix(action, "replay ") || action == "list workflows" || strings.HasPrefix(action, "delete workflow ") {
		return classifyWorkflowOp(action)
	}
	if strings.HasPrefix(action, "via ") {
		return classifyRouteOp(strings.TrimPrefix(action, "via "))
	}

	if strings.Contains(action, ">") {
		if strings.Contains(action, " > ") && !strings.HasPrefix(action, "click") {
			return NavPath{Steps: splitMenuPath(action)}
		}
	}

	return Raw{Verb: verb, Rest: rest}
}

func tryModifierClick(verb string) (mods []string, clicks int, button string, ok bool) {
	if !strings.Contains(verb, "click") || verb == "click" {
		return nil, 0, "", false
	}
	mods, clicks, button = ResolveModifiers(verb)
	return mods, clicks, button, true
}

func classifyClick(rest string) ParsedIntent {
	if strings.Contains(rest, ">") {
		return Click{MenuPath: splitMenuPath(rest)}
	}
	return Click{Target: rest, Clicks: 1, Button: "left"}
}

func classifyType(rest string) ParsedIntent {
	if idx := strings.Index(strings.ToLower(rest), " in "); idx >= 0 {
		text := rest[:idx]
		target := rest[idx+4:]
		return Type{Text: stripQuotes(strings.TrimSpace(text)), Target: strings.TrimSpace(target)}
	}
	return Type{Text: stripQuotes(rest)}
}

func classifyScroll(rest string) ParsedIntent {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Scroll{Direction: "down", Amount: 3}
	}
	if fields[0] == "until" {
		until := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(rest, "until")), " appears")
		return Scroll{Until: strings.TrimSpace(until)}
	}
	dir := fields[0]
	amount := 3
	remainder := fields[1:]
	if len(remainder) > 0 {
		if n, err := strconv.Atoi(remainder[0]); err == nil {
			amount = n
			remainder = remainder[1:]
		}
	}
	target := ""
	if len(remainder) > 0 && remainder[0] == "in" {
		target = strings.Join(remainder[1:], " ")
	}
	return Scroll{Direction: dir, Amount: amount, Target: target}
}

func classifyWait(rest string) ParsedIntent {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Wait{Seconds: 1}
	}
	if fields[0] == "for" {
		remainder := strings.TrimSpace(strings.TrimPrefix(rest, "for"))
		timeout := 10.0
		if idx := strings.LastIndex(remainder, " "); idx >= 0 {
			last := remainder[idx+1:]
			if strings.HasSuffix(last, "s") {
				if v, err := strconv.ParseFloat(strings.TrimSuffix(last, "s"), 64); err == nil {
					timeout = v
					remainder = strings.TrimSpace(remainder[:idx])
				}
			}
		}
		return Wait{Target: remainder, TimeoutSeconds: timeout}
	}
	if fields[0] == "until" {
		remainder := strings.TrimSpace(strings.TrimPrefix(rest, "until"))
		if strings.HasSuffix(remainder, "disappears") {
			return Wait{Target: strings.TrimSpace(strings.TrimSuffix(remainder, "disappears")), UntilDisappear: true, TimeoutSeconds: 10}
		}
		return Wait{Target: remainder, TimeoutSeconds: 10}
	}
	if v, err := strconv.ParseFloat(fields[0], 64); err == nil {
		if v > 30 {
			v = 30
		}
		return Wait{Seconds: v}
	}
	return Wait{Seconds: 1}
}

func classifyNavigateOrBrowser(rest string) ParsedIntent {
	rest = strings.TrimPrefix(rest, "to ")
	if strings.Contains(rest, ">") {
		return NavPath{Steps: splitMenuPath(rest)}
	}
	return Browser{Op: "navigate", Arg: rest}
}

func splitMenuPath(s string) []string {
	parts := strings.Split(s, ">")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func classifyWorkflowOp(action string) ParsedIntent {
	switch {
	case strings.HasPrefix(action, "record start "):
		return WorkflowOp{Op: "start", Name: strings.TrimPrefix(action, "record start ")}
	case action == "record stop":
		return WorkflowOp{Op: "stop"}
	case strings.HasPrefix(action, "replay "):
		return WorkflowOp{Op: "replay", Name: strings.TrimPrefix(action, "replay ")}
	case action == "list workflows":
		return WorkflowOp{Op: "list"}
	case strings.HasPrefix(action, "delete workflow "):
		return WorkflowOp{Op: "delete", Name: strings.TrimPrefix(action, "delete workflow ")}
	}
	return Raw{Verb: "workflow", Rest: action}
}

func classifyRouteOp(rest string) ParsedIntent {
	fields := strings.SplitN(rest, " ", 2)
	op := fields[0]
	name := ""
	if len(fields) > 1 {
		name = fields[1]
	}
	switch op {
	case "record", "start", "stop", "replay", "run", "list", "delete":
		return RouteOp{Op: op, Name: name}
	}
	return Raw{Verb: "via", Rest: rest}
}

package intent

import "regexp"

// Bundle is a small ordered table of regexes intercepting well-known
// multi-step workflows before verb normalization runs, mirroring
// original_source/nexus/act/bundles.py's match_bundle.
type Bundle struct {
	Name string
	Re   *regexp.Regexp
	// Expand turns a regex match into the literal chain of steps the
	// dispatcher runs in sequence, each settling 150ms apart like any
	// other chain step.
	Expand func(m []string) []string
}

var bundles = []Bundle{
	{
		Name: "save_as",
		Re:   regexp.MustCompile(`(?i)^save as (.+)$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+shift+s", "wait for Save dialog", "type " + m[1], "press enter"}
		},
	},
	{
		Name: "find_replace",
		Re:   regexp.MustCompile(`(?i)^find (.+) and replace with (.+)$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+f", "type " + m[1], "press escape", "press cmd+shift+h", "type " + m[2]}
		},
	},
	{
		Name: "new_document",
		Re:   regexp.MustCompile(`(?i)^new document$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+n"}
		},
	},
	{
		Name: "zoom_in",
		Re:   regexp.MustCompile(`(?i)^zoom in$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+plus"}
		},
	},
	{
		Name: "zoom_out",
		Re:   regexp.MustCompile(`(?i)^zoom out$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+minus"}
		},
	},
	{
		Name: "zoom_reset",
		Re:   regexp.MustCompile(`(?i)^(zoom reset|reset zoom|actual size)$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+0"}
		},
	},
	{
		Name: "print",
		Re:   regexp.MustCompile(`(?i)^print$`),
		Expand: func(m []string) []string {
			return []string{"press cmd+p"}
		},
	},
}

// matchBundle finds the first bundle whose pattern matches action and
// expands it into a literal step chain, run exactly like a user-supplied
// ";"-separated chain.
func matchBundle(action string) ([]string, bool) {
	for _, b := range bundles {
		if m := b.Re.FindStringSubmatch(action); m != nil {
			return b.Expand(m), true
		}
	}
	return nil, false
}

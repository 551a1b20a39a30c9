// Package intent normalizes a natural-language action string into a
// dispatchable ParsedIntent and executes it against the capability bridge,
// the recipe registry, and every supporting subsystem. Grounded on
// original_source/nexus/act/parse.py (normalization) and
// nexus/act/resolve.py (dispatch).
package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// roleWords maps a spoken role word to the closed Element.Role enumeration,
// mirroring parse.py's ROLE_MAP.
var roleWords = map[string]string{
	"button":    "button",
	"link":      "link",
	"tab":       "tab",
	"field":     "text-field",
	"textfield": "text-field",
	"textbox":   "text-field",
	"input":     "text-field",
	"textarea":  "text-area",
	"checkbox":  "checkbox",
	"radio":     "radio",
	"menuitem":  "menu-item",
	"menu item": "menu-item",
	"text":      "static-text",
	"label":     "static-text",
	"image":     "image",
	"icon":      "image",
	"slider":    "slider",
	"switch":    "switch",
	"toggle":    "switch",
	"list":      "list",
	"table":     "table",
	"outline":   "outline",
	"toolbar":   "toolbar",
	"dialog":    "dialog",
	"window":    "dialog",
	"group":     "group",
}

// phraseSynonyms are tried longest-match-first before single-word synonyms,
// mirroring parse.py's PHRASE_SYNONYMS.
var phraseSynonyms = []struct{ from, to string }{
	{"press on", "click"},
	{"click on", "click"},
	{"tap on", "click"},
	{"go to", "navigate"},
	{"switch to", "switch to"},
	{"type in", "type"},
	{"look at", "focus"},
}

// verbSynonyms maps a single verb word to its canonical form, mirroring
// parse.py's VERB_SYNONYMS.
var verbSynonyms = map[string]string{
	"tap": "click", "hit": "click", "select": "click", "choose": "click",
	"pick": "click", "push": "click", "touch": "click",
	"enter": "type", "input": "type",
	"launch": "open", "start": "open",
	"swipe": "scroll",
	"browse": "navigate", "visit": "navigate", "load": "navigate",
	"find": "focus", "locate": "focus",
	"mouseover": "hover",
	"bring":     "switch to",
}

// allVerbs is the closed set typo correction is scored against, mirroring
// parse.py's _ALL_VERBS.
var allVerbs = []string{
	"click", "type", "press", "open", "switch to", "navigate", "focus",
	"hover", "drag", "fill", "wait", "scroll", "menu", "move", "resize",
	"minimize", "restore", "fullscreen", "tile", "observe", "notify", "say",
}

const typoThreshold = 0.75

// ordinalWords maps a spoken ordinal to its 1-based index; "last" is -1.
var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
	"last": -1,
}

var ordinalNumRE = regexp.MustCompile(`^(\d+)(st|nd|rd|th)$`)

// keyAliases maps a spoken key name to the synthesized key name, mirroring
// parse.py's KEY_ALIASES.
var keyAliases = map[string]string{
	"cmd": "cmd", "command": "cmd", "ctrl": "ctrl", "control": "ctrl",
	"alt": "alt", "opt": "alt", "option": "alt", "shift": "shift",
	"enter": "return", "return": "return", "esc": "escape", "escape": "escape",
	"tab": "tab", "space": "space", "spacebar": "space",
	"delete": "delete", "backspace": "delete", "del": "delete",
	"up": "up", "down": "down", "left": "left", "right": "right",
	"home": "home", "end": "end", "pageup": "pageup", "pagedown": "pagedown",
	"f1": "f1", "f2": "f2", "f3": "f3", "f4": "f4", "f5": "f5", "f6": "f6",
	"f7": "f7", "f8": "f8", "f9": "f9", "f10": "f10", "f11": "f11", "f12": "f12",
}

var regionPatterns = []struct {
	re     *regexp.Regexp
	region string
}{
	{regexp.MustCompile(`\btop[\s-]?right\b`), "top-right"},
	{regexp.MustCompile(`\btop[\s-]?left\b`), "top-left"},
	{regexp.MustCompile(`\bbottom[\s-]?right\b`), "bottom-right"},
	{regexp.MustCompile(`\bbottom[\s-]?left\b`), "bottom-left"},
	{regexp.MustCompile(`\btop\b`), "top"},
	{regexp.MustCompile(`\bbottom\b`), "bottom"},
	{regexp.MustCompile(`\bcenter\b`), "center"},
}

var spatialRelations = []struct {
	re       *regexp.Regexp
	relation string
}{
	{regexp.MustCompile(`(?i)^(.*?)\s+below\s+(.*)$`), "below"},
	{regexp.MustCompile(`(?i)^(.*?)\s+above\s+(.*)$`), "above"},
	{regexp.MustCompile(`(?i)^(.*?)\s+left of\s+(.*)$`), "left-of"},
	{regexp.MustCompile(`(?i)^(.*?)\s+right of\s+(.*)$`), "right-of"},
	{regexp.MustCompile(`(?i)^(.*?)\s+near\s+(.*)$`), "near"},
}

var containerRE = regexp.MustCompile(`(?i)^(.*?)\s+in\s+(?:the\s+)?row\s+(?:with|containing|that has|that contains)\s+(.*)$`)
var containerRowNumRE = regexp.MustCompile(`(?i)^(.*?)\s+in\s+(?:the\s+)?row\s+(\d+)$`)
var coordRE = regexp.MustCompile(`^(?:at\s+)?(-?\d+)[,\s]+(-?\d+)$`)

// NormalizeAction runs phrase/word synonym substitution then typo
// correction against the known-verb set, mirroring parse.py's
// _normalize_action. action is assumed already lower-cased and trimmed.
func NormalizeAction(action string) string {
	if strings.Contains(action, ">") {
		// Menu path marker: typo correction is skipped, but phrase/word
		// synonyms still apply to the verb prefix.
		return normalizeWords(action, false)
	}
	return normalizeWords(action, true)
}

func normalizeWords(action string, allowTypo bool) string {
	for _, syn := range phraseSynonyms {
		if strings.HasPrefix(action, syn.from+" ") || action == syn.from {
			rest := strings.TrimPrefix(strings.TrimPrefix(action, syn.from), " ")
			if rest == "" {
				return syn.to
			}
			return syn.to + " " + rest
		}
	}

	fields := strings.Fields(action)
	if len(fields) == 0 {
		return action
	}
	verb := fields[0]
	rest := strings.Join(fields[1:], " ")

	if canon, ok := verbSynonyms[verb]; ok {
		verb = canon
	} else if allowTypo && !contains(allVerbs, verb) {
		if match, ok := closestVerb(verb); ok {
			verb = match
		}
	}

	if rest == "" {
		return verb
	}
	return verb + " " + rest
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// closestVerb finds the known verb with the highest similarity ratio to
// word, returning it if the ratio clears typoThreshold — a Go port of
// difflib.SequenceMatcher-style ratio via Levenshtein distance:
// ratio = 1 - distance/max(len(a), len(b)).
func closestVerb(word string) (string, bool) {
	best := ""
	bestRatio := 0.0
	for _, v := range allVerbs {
		r := similarityRatio(word, v)
		if r > bestRatio {
			bestRatio, best = r, v
		}
	}
	if bestRatio >= typoThreshold {
		return best, true
	}
	return "", false
}

func similarityRatio(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	n, m := len(ra), len(rb)
	if n == 0 {
		return m
	}
	if m == 0 {
		return n
	}
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 0; j <= m; j++ {
		prev[j] = j
	}
	for i := 1; i <= n; i++ {
		cur[0] = i
		for j := 1; j <= m; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := cur[j-1] + 1
			sub := prev[j-1] + cost
			cur[j] = min3(del, ins, sub)
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// Ordinal is a parsed "nth element of role, optionally labeled" selector.
// N == -1 means "last".
type Ordinal struct {
	N     int
	Role  string
	Label string
}

var ordinalPrefixRE = regexp.MustCompile(`(?i)^(?:the\s+)?(\S+)\s+(.+)$`)

// ParseOrdinal recognizes "<ordinal> [label] <role>" and "<role> <N>"
// selectors, mirroring parse.py's _parse_ordinal.
func ParseOrdinal(target string) (Ordinal, bool) {
	fields := strings.Fields(target)
	if len(fields) < 2 {
		return Ordinal{}, false
	}

	first := strings.ToLower(fields[0])
	var n int
	var ok bool
	if v, found := ordinalWords[first]; found {
		n, ok = v, true
	} else if m := ordinalNumRE.FindStringSubmatch(first); m != nil {
		v, _ := strconv.Atoi(m[1])
		n, ok = v, true
	}
	if ok {
		remainder := fields[1:]
		if len(remainder) == 0 {
			return Ordinal{}, false
		}
		role, hasRole := resolveRoleWord(remainder[len(remainder)-1])
		label := strings.Join(remainder[:len(remainder)-1], " ")
		if !hasRole {
			role = ""
			label = strings.Join(remainder, " ")
		}
		return Ordinal{N: n, Role: role, Label: label}, true
	}

	// "<role> <N>" form: last token is an integer, role word precedes it.
	last := fields[len(fields)-1]
	if v, err := strconv.Atoi(last); err == nil {
		roleWord := fields[len(fields)-2]
		if role, hasRole := resolveRoleWord(roleWord); hasRole {
			label := strings.Join(fields[:len(fields)-2], " ")
			return Ordinal{N: v, Role: role, Label: label}, true
		}
	}

	return Ordinal{}, false
}

func resolveRoleWord(word string) (string, bool) {
	role, ok := roleWords[strings.ToLower(word)]
	return role, ok
}

// Spatial is a parsed directional-proximity or screen-region selector.
type Spatial struct {
	Search    string
	Relation  string // below|above|left-of|right-of|near, or "" when Region is set
	Reference string
	Region    string
}

// ParseSpatial recognizes "<search> <relation> <reference>" and
// "<search> in (the) <region>" forms, mirroring parse.py's _parse_spatial.
func ParseSpatial(target string) (Spatial, bool) {
	for _, rel := range spatialRelations {
		if m := rel.re.FindStringSubmatch(target); m != nil {
			return Spatial{
				Search:    strings.TrimSpace(m[1]),
				Relation:  rel.relation,
				Reference: strings.TrimSpace(m[2]),
			}, true
		}
	}

	lower := strings.ToLower(target)
	if idx := strings.Index(lower, " in "); idx >= 0 {
		search := target[:idx]
		region := lower[idx+4:]
		region = strings.TrimPrefix(region, "the ")
		for _, rp := range regionPatterns {
			if rp.re.MatchString(region) {
				return Spatial{Search: strings.TrimSpace(search), Region: rp.region}, true
			}
		}
	}

	return Spatial{}, false
}

// Container is a parsed "target within a matched table/list row" selector.
type Container struct {
	Target  string
	RowText string // non-empty when matching by row content
	RowNum  int    // >0 when matching by 1-based row number
}

// ParseContainer recognizes "X in row N" and "X in the row with/containing
// Y" forms, mirroring parse.py's _parse_container.
func ParseContainer(target string) (Container, bool) {
	if m := containerRE.FindStringSubmatch(target); m != nil {
		return Container{Target: strings.TrimSpace(m[1]), RowText: strings.TrimSpace(m[2])}, true
	}
	if m := containerRowNumRE.FindStringSubmatch(target); m != nil {
		n, _ := strconv.Atoi(m[2])
		return Container{Target: strings.TrimSpace(m[1]), RowNum: n}, true
	}
	return Container{}, false
}

// ParseCoordinate recognizes "at? X,Y" or "X Y", mirroring parse.py's
// coordinate disambiguator.
func ParseCoordinate(target string) (x, y int, ok bool) {
	m := coordRE.FindStringSubmatch(strings.TrimSpace(target))
	if m == nil {
		return 0, 0, false
	}
	x, _ = strconv.Atoi(m[1])
	y, _ = strconv.Atoi(m[2])
	return x, y, true
}

var modifierClickRE = regexp.MustCompile(`(?i)^(shift|cmd|command|opt|option|ctrl|control)-?click$`)

// ResolveModifiers extracts click modifiers/multiplicity from a verb token
// such as "shift-click", "dblclick", "tclick", "rclick", mirroring
// parse.py's _resolve_modifiers. Returns the modifier keys, the click
// count, and the button ("left" or "right").
func ResolveModifiers(verb string) (mods []string, clicks int, button string) {
	clicks, button = 1, "left"
	lower := strings.ToLower(verb)
	switch lower {
	case "double-click", "doubleclick", "dblclick":
		return nil, 2, "left"
	case "triple-click", "tripleclick", "tclick":
		return nil, 3, "left"
	case "right-click", "rightclick", "rclick":
		return nil, 1, "right"
	}
	if m := modifierClickRE.FindStringSubmatch(lower); m != nil {
		key := m[1]
		switch key {
		case "cmd", "command":
			key = "cmd"
		case "opt", "option":
			key = "alt"
		case "ctrl", "control":
			key = "ctrl"
		}
		return []string{key}, 1, "left"
	}
	return nil, 1, "left"
}

// ParseFields splits a comma-separated "Name=value, Name2=value2" list,
// respecting quoted values that may themselves contain commas, mirroring
// parse.py's _parse_fields.
func ParseFields(text string) map[string]string {
	out := make(map[string]string)
	for _, part := range splitRespectingQuotes(text, ',') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.Index(part, "=")
		if eq < 0 {
			continue
		}
		name := strings.TrimSpace(part[:eq])
		val := stripQuotes(strings.TrimSpace(part[eq+1:]))
		if name != "" {
			out[name] = val
		}
	}
	return out
}

func splitRespectingQuotes(s string, sep rune) []string {
	var out []string
	var cur strings.Builder
	inQuote := rune(0)
	for _, r := range s {
		switch {
		case inQuote != 0:
			cur.WriteRune(r)
			if r == inQuote {
				inQuote = 0
			}
		case r == '"' || r == '\'':
			inQuote = r
			cur.WriteRune(r)
		case r == sep:
			out = append(out, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	out = append(out, cur.String())
	return out
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// SplitChain splits action on top-level ";" for sequential dispatch.
func SplitChain(action string) []string {
	parts := strings.Split(action, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ResolveKey maps a spoken key token to its synthesized key name.
func ResolveKey(token string) string {
	if alias, ok := keyAliases[strings.ToLower(token)]; ok {
		return alias
	}
	return token
}

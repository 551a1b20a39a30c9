// Package skills catalogs the markdown "prefer this CLI" hints exposed to
// the connected LLM through the MCP skills_list and skills_get tools, so the agent reaches for a direct API
// before falling back to GUI automation per spec.md §1's explicit advice.
package skills

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
)

// Skill is one markdown skill file's metadata plus its body.
type Skill struct {
	ID          string
	Name        string
	Description string
	Requires    []string
	Install     string
	Source      string // "bundled" or "user"
	Available   bool
	Body        string
}

// Library is the merged set of bundled and user skills, user entries
// overriding bundled ones sharing an ID.
type Library struct {
	skills map[string]Skill
	order  []string
}

// Empty returns a Library with no skills, used when loading fails.
func Empty() *Library {
	return &Library{skills: make(map[string]Skill)}
}

// Load scans bundledDir then userDir (user entries win on ID collision) and
// builds a Library. Either directory may not exist.
func Load(bundledDir, userDir string) (*Library, error) {
	lib := Empty()
	for _, entry := range []struct {
		dir    string
		source string
	}{
		{bundledDir, "bundled"},
		{userDir, "user"},
	} {
		files, err := scanDir(entry.dir)
		if err != nil {
			return nil, err
		}
		for _, path := range files {
			id := strings.TrimSuffix(filepath.Base(path), ".md")
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			meta, body := parseFrontmatter(string(data))
			sk := Skill{
				ID:          id,
				Name:        metaString(meta, "name", id),
				Description: metaString(meta, "description", ""),
				Requires:    metaList(meta, "requires"),
				Install:     metaString(meta, "install", ""),
				Source:      entry.source,
				Body:        body,
			}
			sk.Available = checkBins(sk.Requires)
			if _, existed := lib.skills[id]; !existed {
				lib.order = append(lib.order, id)
			}
			lib.skills[id] = sk
		}
	}
	sort.Strings(lib.order)
	return lib, nil
}

func scanDir(dir string) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// List returns every skill, sorted by id.
func (l *Library) List() []Skill {
	out := make([]Skill, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.skills[id])
	}
	return out
}

// Get returns a skill by id.
func (l *Library) Get(id string) (Skill, bool) {
	sk, ok := l.skills[id]
	return sk, ok
}

// appSkillMap is the direct app-name → skill-id lookup, checked before the
// fuzzy fallback.
var appSkillMap = map[string]string{
	"mail": "email", "mail-app": "email",
	"safari":            "safari",
	"google chrome":     "browser",
	"chrome":            "browser",
	"finder":            "finder",
	"terminal":          "terminal",
	"iterm":             "terminal",
	"iterm2":            "terminal",
	"docker":            "docker",
	"docker desktop":    "docker",
	"visual studio code": "vscode",
	"code":              "vscode",
	"system settings":    "system-settings",
	"system preferences": "system-settings",
}

// FindForApp returns the most relevant skill id for appName, checking the
// direct map first, then a fuzzy name/description substring search.
func (l *Library) FindForApp(appName string) (string, bool) {
	if appName == "" {
		return "", false
	}
	lower := strings.ToLower(appName)
	for pattern, id := range appSkillMap {
		if strings.Contains(lower, pattern) {
			if _, ok := l.skills[id]; ok {
				return id, true
			}
		}
	}
	for _, id := range l.order {
		sk := l.skills[id]
		if strings.Contains(lower, strings.ToLower(sk.Name)) ||
			(sk.Description != "" && strings.Contains(strings.ToLower(sk.Description), lower)) {
			return id, true
		}
	}
	return "", false
}

// RenderHTML renders a skill's body through goldmark into HTML. The MCP
// skills_get tool does not call it; it returns the raw markdown body.
func RenderHTML(body string) (string, error) {
	var buf strings.Builder
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var frontmatterRE = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n?(.*)$`)
var kvRE = regexp.MustCompile(`^(\w+)\s*:\s*(.+)$`)
var listRE = regexp.MustCompile(`^\[(.+)\]$`)

// parseFrontmatter parses the hand-rolled, non-YAML "key: value" block the
// source uses (nexus/mind/skills.py's _parse_frontmatter), not a real YAML
// parser.
func parseFrontmatter(text string) (map[string]string, string) {
	m := frontmatterRE.FindStringSubmatch(text)
	if m == nil {
		return nil, text
	}
	meta := make(map[string]string)
	for _, line := range strings.Split(m[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := kvRE.FindStringSubmatch(line)
		if kv == nil {
			continue
		}
		key, val := kv[1], strings.TrimSpace(kv[2])
		meta[key] = strings.Trim(val, `"'`)
	}
	return meta, m[2]
}

func metaString(meta map[string]string, key, def string) string {
	if meta == nil {
		return def
	}
	if v, ok := meta[key]; ok {
		return v
	}
	return def
}

func metaList(meta map[string]string, key string) []string {
	if meta == nil {
		return nil
	}
	v, ok := meta[key]
	if !ok {
		return nil
	}
	m := listRE.FindStringSubmatch(v)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.Trim(strings.TrimSpace(p), `"'`))
	}
	return out
}

func checkBins(requires []string) bool {
	for _, bin := range requires {
		if _, err := exec.LookPath(bin); err != nil {
			return false
		}
	}
	return true
}

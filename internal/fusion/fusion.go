// Package fusion composes the merged perception-pipeline output into the
// text block the LLM client reads back from perceive(), and computes the
// layout fingerprint used for snapshot diffing, the navigation graph, and
// workflow/route step verification. Grounded on
// original_source/nexus/sense/fusion.py's render()/snapshot()/diff().
package fusion

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
	"github.com/nexuscore/nexus/internal/perception"
)

// Snapshot is a point-in-time fingerprint of one process's layout, cheap
// enough to take before and after every action for diffing.
type Snapshot struct {
	PID         int
	AppName     string
	Fingerprint string
	Elements    []capability.Element
}

// Fingerprint hashes the role:label pairs of elements, sorted, into a
// 12-hex-char digest — stable across runs regardless of tree-walk order,
// matching the source's md5(...).hexdigest()[:12] over a sorted pair list.
// The choice of MD5 is not security-relevant here (spec.md's Open
// Questions): any uniform hash would do, this one matches the source byte
// for byte given the same element set.
func Fingerprint(elements []capability.Element) string {
	pairs := make([]string, 0, len(elements))
	for _, e := range elements {
		pairs = append(pairs, e.Role+":"+e.Label)
	}
	sort.Strings(pairs)
	sum := md5.Sum([]byte(strings.Join(pairs, "|")))
	return hex.EncodeToString(sum[:])[:12]
}

// Snap builds a Snapshot from a perception pipeline run, for before/after
// hashing around an action.
func Snap(pid int, appName string, elements []capability.Element) Snapshot {
	return Snapshot{
		PID:         pid,
		AppName:     appName,
		Fingerprint: Fingerprint(elements),
		Elements:    elements,
	}
}

// Verify describes what changed between two snapshots of the same process.
func Verify(before, after Snapshot) string {
	if before.Fingerprint == after.Fingerprint {
		return "no visible change"
	}

	beforeSet := make(map[string]bool, len(before.Elements))
	for _, e := range before.Elements {
		beforeSet[e.Role+":"+e.Label] = true
	}
	afterSet := make(map[string]bool, len(after.Elements))
	for _, e := range after.Elements {
		afterSet[e.Role+":"+e.Label] = true
	}

	var added, removed []string
	for k := range afterSet {
		if !beforeSet[k] {
			added = append(added, k)
		}
	}
	for k := range beforeSet {
		if !afterSet[k] {
			removed = append(removed, k)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)

	var parts []string
	if len(added) > 0 {
		parts = append(parts, fmt.Sprintf("appeared: %s", strings.Join(capLimit(added, 10), ", ")))
	}
	if len(removed) > 0 {
		parts = append(parts, fmt.Sprintf("disappeared: %s", strings.Join(capLimit(removed, 10), ", ")))
	}
	if len(parts) == 0 {
		return "layout changed"
	}
	return strings.Join(parts, "; ")
}

func capLimit(s []string, n int) []string {
	if len(s) <= n {
		return s
	}
	out := append([]string{}, s[:n]...)
	out = append(out, fmt.Sprintf("...and %d more", len(s)-n))
	return out
}

// maxWindowsShown caps the windows list the way the source caps it for
// token efficiency ("Windows (N):" followed by at most this many lines).
const maxWindowsShown = 8

// minElementsForGroupHeading matches the source's MIN_FOR_HEADING: a
// container only gets its own heading line when it holds at least this
// many non-container elements, otherwise its elements render inline with
// everything else.
const minElementsForGroupHeading = 2

// groupContainerRoles are AX-ish roles that exist only to wrap other
// elements — showing one as a numbered element under its own heading is
// redundant, matching the source's _GROUP_AX_ROLES.
var groupContainerRoles = map[string]bool{
	"toolbar": true, "sheet": true, "dialog": true, "tabgroup": true,
	"group": true, "scrollarea": true, "splitgroup": true,
}

func isGroupContainer(e capability.Element) bool {
	return groupContainerRoles[strings.ToLower(e.Role)]
}

// filterNoise drops elements that add no value to the rendered listing:
// unlabeled static-text/image elements, and group elements whose label
// duplicates a non-group element already in the same listing (the common
// "group wraps a single button with the same label" pattern). Matches
// spec.md §6's noise filter.
func filterNoise(elements []capability.Element) []capability.Element {
	nonGroupLabels := make(map[string]bool)
	for _, e := range elements {
		if e.Label != "" && !strings.EqualFold(e.Role, "group") {
			nonGroupLabels[e.Label] = true
		}
	}

	out := make([]capability.Element, 0, len(elements))
	for _, e := range elements {
		if e.Label == "" && (strings.EqualFold(e.Role, "statictext") || strings.EqualFold(e.Role, "static text") || strings.EqualFold(e.Role, "image")) {
			continue
		}
		if strings.EqualFold(e.Role, "group") && nonGroupLabels[e.Label] {
			continue
		}
		out = append(out, e)
	}
	return out
}

// formatElement renders one element as the compact one-liner every listing
// (elements, focus line, search results) shares.
func formatElement(e capability.Element) string {
	role := e.Role
	if role == "" {
		role = "element"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", role)
	if e.Label != "" {
		fmt.Fprintf(&b, " %q", e.Label)
	}
	if e.Value != "" {
		v := e.Value
		if len(v) > 40 {
			v = v[:37] + "..."
		}
		fmt.Fprintf(&b, " = %s", v)
	}
	if e.Focused {
		b.WriteString(" *focused*")
	}
	if !e.Enabled {
		b.WriteString(" (disabled)")
	}
	if e.Source != "" && e.Source != "ax" {
		fmt.Fprintf(&b, " (%s)", e.Source)
	}
	return b.String()
}

// renderGroupedElements renders elements with container-group headings,
// suppressing a container's own row under its heading and leaving
// under-populated groups flat. Matches the source's
// _render_grouped_elements/MIN_FOR_HEADING.
func renderGroupedElements(elements []capability.Element) []string {
	counts := make(map[string]int)
	for _, e := range elements {
		if !isGroupContainer(e) {
			counts[e.Group]++
		}
	}

	var lines []string
	currentGroup := ""
	started := false
	for _, e := range elements {
		showHeading := e.Group != "" && counts[e.Group] >= minElementsForGroupHeading

		if !started || e.Group != currentGroup {
			currentGroup = e.Group
			started = true
			if showHeading {
				display := currentGroup
				if len(display) > 60 {
					display = display[:60] + "..."
				}
				lines = append(lines, fmt.Sprintf("  %s:", display))
			}
		}

		if showHeading && isGroupContainer(e) {
			continue
		}

		indent := "  "
		if showHeading {
			indent = "    "
		}
		lines = append(lines, indent+formatElement(e))
	}
	return lines
}

// Render composes the human/LLM-readable text block for one perceive()
// pass: a trusted-permission note when accessibility access isn't granted,
// the app/window header, the focused element, the windows list, the
// element tree (grouped by container), side tables/lists, document
// content, browser page content, and whatever result_parts the
// before/after hooks and diff mode appended. Grounded on
// original_source/nexus/sense/fusion.py's see().
func Render(pctx *perception.Context, extraParts []string) string {
	var b strings.Builder

	if !pctx.Trusted {
		b.WriteString("NOTE: Accessibility permission not granted. Enable your terminal/IDE in " +
			"System Settings > Privacy & Security > Accessibility. Showing limited info.\n\n")
	}

	fmt.Fprintf(&b, "App: %s (pid %d)\n", pctx.AppName, pctx.PID)

	if pctx.Focus != nil {
		fmt.Fprintf(&b, "Focus: %s\n", formatElement(*pctx.Focus))
	}

	if len(pctx.Windows) > 0 {
		fmt.Fprintf(&b, "\nWindows (%d):\n", len(pctx.Windows))
		shown := pctx.Windows
		if len(shown) > maxWindowsShown {
			shown = shown[:maxWindowsShown]
		}
		for _, w := range shown {
			if w.Title != "" {
				fmt.Fprintf(&b, "  %s — %q\n", w.App, w.Title)
			} else {
				fmt.Fprintf(&b, "  %s\n", w.App)
			}
		}
		if remaining := len(pctx.Windows) - len(shown); remaining > 0 {
			fmt.Fprintf(&b, "  ... and %d more\n", remaining)
		}
	}

	b.WriteString("\n")
	elements := filterNoise(pctx.Elements)
	fmt.Fprintf(&b, "Elements (%d):\n", len(elements))
	if len(elements) == 0 {
		b.WriteString("  (no elements found)\n")
	}
	for _, line := range renderGroupedElements(elements) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, t := range pctx.Tables {
		fmt.Fprintf(&b, "\nTable %q:\n", t.Name)
		for _, row := range t.Rows {
			b.WriteString("  " + strings.Join(row, " | ") + "\n")
		}
	}
	for _, l := range pctx.Lists {
		fmt.Fprintf(&b, "\nList %q: %s\n", l.Name, strings.Join(l.Items, ", "))
	}

	if len(pctx.Content) > 0 {
		b.WriteString("\nContent:\n")
		for _, item := range pctx.Content {
			label := ""
			if item.Label != "" {
				label = fmt.Sprintf(" %q", item.Label)
			}
			fmt.Fprintf(&b, "  [%s]%s:\n", item.Role, label)
			lines := strings.Split(item.Content, "\n")
			if len(lines) > 5 {
				lines = append(lines[:5], fmt.Sprintf("... (%d lines total)", len(strings.Split(item.Content, "\n"))))
			}
			for _, l := range lines {
				b.WriteString("    " + l + "\n")
			}
		}
	}

	if pctx.WebContent != "" {
		fmt.Fprintf(&b, "\n--- Web Page ---\n%s\n", pctx.WebContent)
	}

	for _, part := range extraParts {
		b.WriteString(part)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

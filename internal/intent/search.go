package intent

import (
	"strings"

	"github.com/nexuscore/nexus/internal/capability"
)

// FindTarget resolves a plain-text target against elements, preferring an
// exact case-insensitive label match over a substring match, and a role
// word detected in the target text (e.g. "click save button") over a bare
// label search — mirroring parse.py's _filter_by_search.
func FindTarget(elements []capability.Element, target string) (capability.Element, bool) {
	target = strings.TrimSpace(target)
	if target == "" {
		return capability.Element{}, false
	}

	role, label := extractRoleWord(target)
	candidates := elements
	if role != "" {
		var filtered []capability.Element
		for _, e := range elements {
			if strings.EqualFold(e.Role, role) {
				filtered = append(filtered, e)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}
	if label == "" {
		label = target
	}

	lowerLabel := strings.ToLower(label)
	for _, e := range candidates {
		if strings.EqualFold(strings.TrimSpace(e.Label), label) {
			return e, true
		}
	}
	for _, e := range candidates {
		if strings.Contains(strings.ToLower(e.Label), lowerLabel) {
			return e, true
		}
	}
	return capability.Element{}, false
}

// extractRoleWord strips a trailing or leading role word from target,
// returning the role (mapped to the closed enumeration) and the remaining
// label text. Returns ("", "") if no role word is present.
func extractRoleWord(target string) (role, label string) {
	fields := strings.Fields(target)
	if len(fields) < 2 {
		return "", ""
	}
	if r, ok := roleWords[strings.ToLower(fields[len(fields)-1])]; ok {
		return r, strings.Join(fields[:len(fields)-1], " ")
	}
	if r, ok := roleWords[strings.ToLower(fields[0])]; ok {
		return r, strings.Join(fields[1:], " ")
	}
	return "", ""
}

// ApplyOrdinal narrows elements to candidates matching role/label, then
// picks the N-th (1-based; -1 means last), matching parse.py's ordinal
// selector semantics.
func ApplyOrdinal(elements []capability.Element, o Ordinal) (capability.Element, bool) {
	var candidates []capability.Element
	for _, e := range elements {
		if o.Role != "" && !strings.EqualFold(e.Role, o.Role) {
			continue
		}
		if o.Label != "" && !strings.Contains(strings.ToLower(e.Label), strings.ToLower(o.Label)) {
			continue
		}
		candidates = append(candidates, e)
	}
	if len(candidates) == 0 {
		return capability.Element{}, false
	}
	if o.N == -1 {
		return candidates[len(candidates)-1], true
	}
	if o.N < 1 || o.N > len(candidates) {
		return capability.Element{}, false
	}
	return candidates[o.N-1], true
}

// ApplySpatial resolves a directional-proximity or screen-region target.
func ApplySpatial(elements []capability.Element, bounds capability.Rect, s Spatial) (capability.Element, bool) {
	if s.Region != "" {
		region := regionRect(bounds, s.Region)
		var best capability.Element
		found := false
		for _, e := range elements {
			if !strings.Contains(strings.ToLower(e.Label), strings.ToLower(s.Search)) {
				continue
			}
			if rectContainsCenter(region, e.Bounds) {
				best, found = e, true
				break
			}
		}
		return best, found
	}

	ref, ok := FindTarget(elements, s.Reference)
	if !ok {
		return capability.Element{}, false
	}
	refCx, refCy := center(ref.Bounds)

	var best capability.Element
	bestDist := -1
	for _, e := range elements {
		if !strings.Contains(strings.ToLower(e.Label), strings.ToLower(s.Search)) {
			continue
		}
		cx, cy := center(e.Bounds)
		switch s.Relation {
		case "below":
			if cy <= refCy {
				continue
			}
		case "above":
			if cy >= refCy {
				continue
			}
		case "left-of":
			if cx >= refCx {
				continue
			}
		case "right-of":
			if cx <= refCx {
				continue
			}
		}
		d := abs(cx-refCx) + abs(cy-refCy)
		if bestDist == -1 || d < bestDist {
			best, bestDist = e, d
		}
	}
	return best, bestDist != -1
}

// ApplyContainer resolves a target scoped to a table/list row: it returns the
// first element whose label contains both the target and c.RowText, and
// otherwise falls back to FindTarget over all elements. c.RowNum is not used,
// so a "row N" container resolves like an unscoped target.
func ApplyContainer(elements []capability.Element, target string, c Container) (capability.Element, bool) {
	// Without a structured row->element mapping, fall back to searching
	// elements whose label contains both the row hint and the target text
	// — the accessibility layer flattens rows into sibling elements, so a
	// compound label match is the best available signal without a
	// real table model wired in from this layer alone.
	for _, e := range elements {
		lower := strings.ToLower(e.Label)
		if !strings.Contains(lower, strings.ToLower(target)) {
			continue
		}
		if c.RowText != "" && !strings.Contains(lower, strings.ToLower(c.RowText)) {
			continue
		}
		return e, true
	}
	return FindTarget(elements, target)
}

func regionRect(bounds capability.Rect, region string) capability.Rect {
	halfW, halfH := bounds.W/2, bounds.H/2
	switch region {
	case "top-right":
		return capability.Rect{X: bounds.X + halfW, Y: bounds.Y, W: halfW, H: halfH}
	case "top-left":
		return capability.Rect{X: bounds.X, Y: bounds.Y, W: halfW, H: halfH}
	case "bottom-right":
		return capability.Rect{X: bounds.X + halfW, Y: bounds.Y + halfH, W: halfW, H: halfH}
	case "bottom-left":
		return capability.Rect{X: bounds.X, Y: bounds.Y + halfH, W: halfW, H: halfH}
	case "top":
		return capability.Rect{X: bounds.X, Y: bounds.Y, W: bounds.W, H: halfH}
	case "bottom":
		return capability.Rect{X: bounds.X, Y: bounds.Y + halfH, W: bounds.W, H: halfH}
	case "center":
		return capability.Rect{X: bounds.X + bounds.W/4, Y: bounds.Y + bounds.H/4, W: halfW, H: halfH}
	default:
		return bounds
	}
}

func rectContainsCenter(outer, inner capability.Rect) bool {
	cx, cy := center(inner)
	return cx >= outer.X && cx <= outer.X+outer.W && cy >= outer.Y && cy <= outer.Y+outer.H
}

func center(r capability.Rect) (int, int) {
	return r.X + r.W/2, r.Y + r.H/2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

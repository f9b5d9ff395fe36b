package archmetrics

import "strings"

// normalizePath collapses dynamic path segments (UUIDs, numeric IDs, and
// other opaque identifiers) to a ":id" placeholder so the read surface's
// per-route Prometheus metrics don't explode in cardinality as tenants mint
// new trace/workflow IDs. Static segments, including version segments like
// "v1", are preserved.
func normalizePath(path string) string {
	trailingSlash := strings.HasSuffix(path, "/") && path != "/"

	segments := splitPath(path)
	for i, seg := range segments {
		if looksLikeID(seg) {
			segments[i] = ":id"
		}
	}

	result := "/" + strings.Join(segments, "/")
	if trailingSlash {
		result += "/"
	}
	return result
}

func splitPath(path string) []string {
	var segments []string
	var current strings.Builder

	for _, ch := range path {
		if ch == '/' {
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
		} else {
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// looksLikeID reports whether seg is a dynamic identifier rather than a
// fixed route segment. A segment is dynamic if it is purely numeric, or if
// it contains a hyphen (UUIDs and short hyphenated IDs alike), or if it is
// alphanumeric and long enough to be an opaque ID rather than a route word.
func looksLikeID(seg string) bool {
	if seg == "" {
		return false
	}
	if isVersionSegment(seg) {
		return false
	}
	if isNumeric(seg) {
		return true
	}
	if strings.Contains(seg, "-") {
		return true
	}
	if isAlphanumericID(seg) {
		return true
	}
	return false
}

func isVersionSegment(seg string) bool {
	if len(seg) < 2 || (seg[0] != 'v' && seg[0] != 'V') {
		return false
	}
	return isNumeric(seg[1:])
}

func isNumeric(seg string) bool {
	if seg == "" {
		return false
	}
	for _, ch := range seg {
		if ch < '0' || ch > '9' {
			return false
		}
	}
	return true
}

// isAlphanumericID treats a long mixed letters-and-digits segment (no
// separators) as an opaque identifier rather than a route keyword, since
// route keywords in this API are short English words.
func isAlphanumericID(seg string) bool {
	if len(seg) < 8 {
		return false
	}
	hasDigit := false
	for _, ch := range seg {
		switch {
		case ch >= '0' && ch <= '9':
			hasDigit = true
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		default:
			return false
		}
	}
	return hasDigit
}

package router

import "strings"

// placeholder replaces every {name} segment in a canonical template
const placeholder = "{}"

// Param describes one {name} segment of a parameterized route
type Param struct {
	Name     string
	Position int // zero-based index among non-empty segments
}

// isParamSegment reports whether seg looks like {name}
func isParamSegment(seg string) bool {
	return len(seg) >= 2 && seg[0] == '{' && seg[len(seg)-1] == '}'
}

// isParameterized reports whether path must be registered as a template
func isParameterized(path string) bool {
	return strings.IndexByte(path, '{') != -1
}

// canonicalTemplate turns /a/{x}/b into /a/{}/b
func canonicalTemplate(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if isParamSegment(part) {
			parts[i] = placeholder
		}
	}
	return strings.Join(parts, "/")
}

// splitSegments returns the non-empty segments of path
func splitSegments(path string) []string {
	segments := make([]string, 0, 8)
	for len(path) > 0 {
		idx := strings.IndexByte(path, '/')
		if idx == -1 {
			segments = append(segments, path)
			break
		}
		if idx > 0 {
			segments = append(segments, path[:idx])
		}
		path = path[idx+1:]
	}
	return segments
}

// parseParams records name and position of every {name} segment
func parseParams(segments []string) []Param {
	var params []Param
	for pos, seg := range segments {
		if isParamSegment(seg) {
			params = append(params, Param{Name: seg[1 : len(seg)-1], Position: pos})
		}
	}
	return params
}

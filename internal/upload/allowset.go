package upload

import (
	"sort"
	"strings"
)

// AllowSet is the set of accepted file extensions, stored lower-cased without the dot.
type AllowSet map[string]struct{}

// ParseAllowSet builds an AllowSet from a comma-separated list such as "jpg,jpeg,png".
func ParseAllowSet(csv string) AllowSet {
	set := make(AllowSet)
	for _, ext := range strings.Split(csv, ",") {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			set[ext] = struct{}{}
		}
	}
	return set
}

// Allowed reports whether filename has an extension in the set.
func (s AllowSet) Allowed(filename string) bool {
	if !strings.Contains(filename, ".") {
		return false
	}
	_, ok := s[Extension(filename)]
	return ok
}

// List returns the extensions in sorted order.
func (s AllowSet) List() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Extension returns the lower-cased substring after the last dot, or "" when there is none.
func Extension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}

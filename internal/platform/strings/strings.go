// Package strings provides small string and slice helpers
package strings

import std "strings"

// IfEmpty returns def if in is empty, otherwise returns in
func IfEmpty[T any](in []T, def []T) []T {
	if len(in) == 0 {
		return def
	}
	return in
}

// NormPrefix normalizes a mount path to a single leading slash and no trailing slash
// blank input and "/" both normalize to "" which means mount at the parent root
func NormPrefix(s string) string {
	s = std.Trim(std.TrimSpace(s), "/ ")
	if s == "" {
		return ""
	}
	return "/" + s
}

// Join joins non-empty parts with sep
func Join(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return std.Join(out, sep)
}

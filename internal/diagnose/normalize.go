// Package diagnose scores one candidate detection rule against sampled
// column values, producing coverage metrics, gap analysis, and an acceptance
// decision. It also owns the finite-list and header-pattern learning
// heuristics those diagnostics feed on.
package diagnose

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a raw cell value for finite comparison: NFKC form,
// trimmed, inner whitespace collapsed, upper-cased. Blank input normalizes to
// the empty string and counts as null downstream.
func Normalize(value string) string {
	s := norm.NFKC.String(value)
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.Join(fields, " "))
}

// NormalizeAll maps Normalize over values, dropping blanks.
func NormalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

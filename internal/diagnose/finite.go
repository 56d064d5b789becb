package diagnose

import "sort"

// BuildCanonicalList turns positive value examples into a sorted, de-duplicated,
// normalized member list, dropping anything listed as a negative example.
func BuildCanonicalList(positives, negatives []string) []string {
	if len(positives) == 0 {
		return nil
	}
	negative := make(map[string]bool, len(negatives))
	for _, v := range negatives {
		if n := Normalize(v); n != "" {
			negative[n] = true
		}
	}

	seen := make(map[string]bool, len(positives))
	out := make([]string, 0, len(positives))
	for _, v := range positives {
		n := Normalize(v)
		if n == "" || negative[n] || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// ExtendMembers folds additions into members, normalized and de-duplicated,
// preserving the existing order and appending new values sorted.
func ExtendMembers(members, additions []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members)+len(additions))
	for _, m := range members {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	fresh := make([]string, 0, len(additions))
	for _, a := range additions {
		n := Normalize(a)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		fresh = append(fresh, n)
	}
	sort.Strings(fresh)
	return append(out, fresh...)
}

package model

// UnionStrings returns existing followed by every added value not already
// present. Comparison is on the raw string.
func UnionStrings(existing, added []string) []string {
	return DedupOrdered(append(append([]string(nil), existing...), added...))
}

// DedupOrdered drops later duplicates and keeps first-seen order.
func DedupOrdered(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

package domain

// ReconcileSet compares the current members of a relation with the desired
// members. added keeps the order of desired; removed keeps the order of
// current. Duplicates in desired are collapsed.
func ReconcileSet[T comparable](current, desired []T) (added, removed []T) {
	want := make(map[T]struct{}, len(desired))
	for _, d := range desired {
		want[d] = struct{}{}
	}
	have := make(map[T]struct{}, len(current))
	for _, c := range current {
		have[c] = struct{}{}
		if _, ok := want[c]; !ok {
			removed = append(removed, c)
		}
	}
	for _, d := range desired {
		if _, ok := have[d]; ok {
			continue
		}
		have[d] = struct{}{}
		added = append(added, d)
	}
	return added, removed
}

// Dedupe returns values with later duplicates removed, order preserved.
func Dedupe[T comparable](values []T) []T {
	if values == nil {
		return nil
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

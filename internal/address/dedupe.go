package address

// Item pairs a canonicalized address with the source row index it came from
type Item struct {
	Row  int
	Addr CanonicalAddress
}

// Group collects the items sharing a fingerprint. Only the representative
// is emitted downstream; size and absorbed row indices are retained for
// audit and statistics.
type Group struct {
	Fingerprint    Fingerprint
	Items          []Item
	Representative Item
}

// Size returns the number of records absorbed into the group
func (g Group) Size() int {
	return len(g.Items)
}

// Rows returns the source row indices of every item in the group
func (g Group) Rows() []int {
	rows := make([]int, len(g.Items))
	for i, it := range g.Items {
		rows[i] = it.Row
	}
	return rows
}

// Deduplicate groups items by fingerprint in first-seen order and selects a
// representative for each group. Tie-break order: highest confidence, then
// most populated field set, then first seen.
func Deduplicate(items []Item) []Group {
	index := make(map[Fingerprint]int)
	var groups []Group

	for _, it := range items {
		fp := it.Addr.Fingerprint()
		i, seen := index[fp]
		if !seen {
			index[fp] = len(groups)
			groups = append(groups, Group{Fingerprint: fp, Items: []Item{it}, Representative: it})
			continue
		}
		groups[i].Items = append(groups[i].Items, it)
		if better(it, groups[i].Representative) {
			groups[i].Representative = it
		}
	}
	return groups
}

// better reports whether candidate should replace current as representative.
// Equal candidates keep the earlier item, so selection is stable.
func better(candidate, current Item) bool {
	if candidate.Addr.Confidence != current.Addr.Confidence {
		return candidate.Addr.Confidence > current.Addr.Confidence
	}
	return candidate.Addr.FieldCount() > current.Addr.FieldCount()
}

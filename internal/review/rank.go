package review

import "sort"

// Rank sorts entries in place into the report order: severity table rank,
// then confidence descending, then path, then line_start. The sort is stable,
// so entries equal on every comparator keep their deduplicated input order.
func Rank(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		oa, ob := SeverityOrder(a.Severity), SeverityOrder(b.Severity)
		if oa != ob {
			return oa < ob
		}

		ca, cb := a.Issue.RankConfidence(), b.Issue.RankConfidence()
		if ca != cb {
			return ca > cb
		}

		pa, pb := a.Issue.DisplayPath(), b.Issue.DisplayPath()
		if pa != pb {
			return pa < pb
		}

		return lineOrZero(a.Issue.LineStart) < lineOrZero(b.Issue.LineStart)
	})
}

func lineOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

// Keys returns the ordered key list of ranked entries.
func Keys(entries []Entry) []string {
	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.Key
	}
	return keys
}

package review

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint derives the stable identity key for an issue. Precedence:
// an analyzer-supplied fingerprint, else the issue id anchored to its
// location, else location plus title. The key is xxhash64 rendered as 16 hex
// characters; at that width collisions are possible but accepted in exchange
// for compact state markers.
//
// Free-text fields (message, suggestion) never feed the key, so an issue
// whose wording changes between runs still counts as unchanged.
func Fingerprint(issue Issue) string {
	var material string
	switch {
	case strings.TrimSpace(issue.Fingerprint) != "":
		material = "fingerprint:" + issue.Fingerprint
	case strings.TrimSpace(issue.ID) != "":
		material = "id:" + issue.ID + ":" + issue.DisplayPath() + ":" + lineToken(issue.LineStart)
	default:
		material = "loc:" + issue.DisplayPath() + ":" + lineToken(issue.LineStart) + ":" + issue.DisplayTitle()
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(material))
}

// Dedupe collapses issues sharing a key. The first occurrence wins and the
// relative order of survivors is preserved: overlapping analysis passes may
// report the same finding twice, and later ranking relies on this order as
// its tie-break substrate.
func Dedupe(issues []Issue) []Entry {
	seen := make(map[string]bool, len(issues))
	entries := make([]Entry, 0, len(issues))

	for _, issue := range issues {
		key := Fingerprint(issue)
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, Entry{
			Key:      key,
			Issue:    issue,
			Severity: issue.NormalizedSeverity(),
		})
	}
	return entries
}

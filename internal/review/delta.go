package review

import (
	"regexp"
	"strings"
)

// Marker sentinels embedded in rendered comment bodies. The summary marker is
// always the first line of a managed comment; the keys marker is the last and
// carries the full ranked key list for the next run. Both are exact literals
// so a future run (or a human with grep) can locate them without structured
// parsing. The legacy item prefix identified per-issue comments posted by
// older renderings and is still honored when classifying managed comments.
const (
	SummaryMarker    = "<!-- ai-review:summary -->"
	keysMarkerOpen   = "<!-- ai-review:keys:"
	keysMarkerClose  = " -->"
	LegacyItemMarker = "<!-- ai-review:item:"
)

var keysMarkerRe = regexp.MustCompile(`<!-- ai-review:keys:([0-9a-f,]*) -->`)

// KeysMarker renders the machine-readable trailing marker for a key list.
func KeysMarker(keys []string) string {
	return keysMarkerOpen + strings.Join(keys, ",") + keysMarkerClose
}

// Delta is the difference between the current key set and the previous run's
// published key set. Unchanged is a count only; nothing downstream needs the
// unchanged keys themselves.
type Delta struct {
	New       []string
	Resolved  []string
	Unchanged int
}

// NewSet returns membership lookup for the new keys.
func (d Delta) NewSet() map[string]bool {
	set := make(map[string]bool, len(d.New))
	for _, k := range d.New {
		set[k] = true
	}
	return set
}

// ComputeDelta diffs the current ranked keys against the previous key set.
// New keys keep current (ranked) order, resolved keys keep previous order.
func ComputeDelta(current, previous []string) Delta {
	prevSet := make(map[string]bool, len(previous))
	for _, k := range previous {
		prevSet[k] = true
	}
	curSet := make(map[string]bool, len(current))
	for _, k := range current {
		curSet[k] = true
	}

	var d Delta
	for _, k := range current {
		if prevSet[k] {
			d.Unchanged++
		} else {
			d.New = append(d.New, k)
		}
	}
	for _, k := range previous {
		if !curSet[k] {
			d.Resolved = append(d.Resolved, k)
		}
	}
	return d
}

// PreviousKeys recovers the previous run's key set from existing thread
// comments. The source of truth is the most recently created comment carrying
// the summary marker; its trailing keys marker is parsed back into a key
// list. No such comment, or a body whose marker does not parse, yields an
// empty set — first-run semantics, never an error.
func PreviousKeys(comments []Comment) []string {
	var latest *Comment
	for i := range comments {
		c := &comments[i]
		if !strings.Contains(c.Body, SummaryMarker) {
			continue
		}
		if latest == nil || c.CreatedAt.After(latest.CreatedAt) {
			latest = c
		}
	}
	if latest == nil {
		return nil
	}
	return parseKeysMarker(latest.Body)
}

func parseKeysMarker(body string) []string {
	m := keysMarkerRe.FindStringSubmatch(body)
	if m == nil {
		return nil
	}

	var keys []string
	for _, k := range strings.Split(m[1], ",") {
		k = strings.TrimSpace(k)
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

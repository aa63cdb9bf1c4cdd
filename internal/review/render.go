package review

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Limits bound the rendered report size. Issue counts are unbounded, the
// comment body must not be.
type Limits struct {
	MaxSummaryItems    int
	MaxMessageChars    int
	MaxSuggestionChars int
}

// Default render limits.
const (
	DefaultMaxSummaryItems    = 20
	DefaultMaxMessageChars    = 220
	DefaultMaxSuggestionChars = 160
)

// DefaultLimits returns the documented default limits.
func DefaultLimits() Limits {
	return Limits{
		MaxSummaryItems:    DefaultMaxSummaryItems,
		MaxMessageChars:    DefaultMaxMessageChars,
		MaxSuggestionChars: DefaultMaxSuggestionChars,
	}
}

// normalized replaces missing or nonsensical values with defaults.
func (l Limits) normalized() Limits {
	if l.MaxSummaryItems <= 0 {
		l.MaxSummaryItems = DefaultMaxSummaryItems
	}
	if l.MaxMessageChars <= 0 {
		l.MaxMessageChars = DefaultMaxMessageChars
	}
	if l.MaxSuggestionChars <= 0 {
		l.MaxSuggestionChars = DefaultMaxSuggestionChars
	}
	return l
}

const criticalSectionCap = 5

var blankRunsRe = regexp.MustCompile(`\n{4,}`)

// Render produces the full comment body for a run: the summary marker on the
// first line, the human-readable report, and the keys marker on the last
// line. The keys marker always carries every ranked key, including entries
// hidden by the listing cap, because it is the only state the next run has.
func Render(res *Result, entries []Entry, delta Delta, limits Limits) string {
	limits = limits.normalized()

	var b strings.Builder
	b.WriteString(SummaryMarker + "\n")
	b.WriteString("## AI Code Review\n\n")

	b.WriteString(fmt.Sprintf("**Decision**: %s | **Risk score**: %s\n", res.EffectiveDecision(), riskLabel(res)))
	b.WriteString(countLine(entries) + "\n")
	b.WriteString(fmt.Sprintf("**Delta**: +%d new | -%d resolved | %d unchanged\n\n", len(delta.New), len(delta.Resolved), delta.Unchanged))

	summary := strings.TrimSpace(Redact(res.Summary))
	if summary == "" {
		summary = "_No summary provided._"
	}
	b.WriteString(summary + "\n\n")

	writeCriticalSection(&b, entries, limits)
	writeNewCriticalSection(&b, entries, delta, limits)
	writeFullListing(&b, entries, limits)

	b.WriteString(KeysMarker(Keys(entries)) + "\n")

	return blankRunsRe.ReplaceAllString(b.String(), "\n\n")
}

func riskLabel(res *Result) string {
	score, ok := res.RiskScore()
	if !ok {
		return "n/a"
	}
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// countLine renders the issue count with a severity breakdown in priority
// table order; unmapped severities are appended in first-seen order.
func countLine(entries []Entry) string {
	if len(entries) == 0 {
		return "**Issues**: 0"
	}

	counts := make(map[string]int)
	var unmapped []string
	for _, e := range entries {
		if counts[e.Severity] == 0 && SeverityOrder(e.Severity) == len(severityTable) {
			unmapped = append(unmapped, e.Severity)
		}
		counts[e.Severity]++
	}

	var parts []string
	for _, s := range severityTable {
		if counts[s] > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", s, counts[s]))
		}
	}
	for _, s := range unmapped {
		parts = append(parts, fmt.Sprintf("%s: %d", s, counts[s]))
	}

	return fmt.Sprintf("**Issues**: %d (%s)", len(entries), strings.Join(parts, " | "))
}

func writeCriticalSection(b *strings.Builder, entries []Entry, limits Limits) {
	b.WriteString("### Critical issues\n\n")

	written := 0
	for _, e := range entries {
		if !IsCritical(e.Severity) {
			continue
		}
		b.WriteString(entryLine(e, limits) + "\n")
		if fix := Truncate(Redact(e.Issue.Suggestion), limits.MaxSuggestionChars); fix != "" {
			b.WriteString("  - Fix: " + fix + "\n")
		}
		written++
		if written == criticalSectionCap {
			break
		}
	}
	if written == 0 {
		b.WriteString("No critical issues.\n")
	}
	b.WriteString("\n")
}

func writeNewCriticalSection(b *strings.Builder, entries []Entry, delta Delta, limits Limits) {
	b.WriteString("### New critical since last run\n\n")

	newKeys := delta.NewSet()
	written := 0
	for _, e := range entries {
		if !IsCritical(e.Severity) || !newKeys[e.Key] {
			continue
		}
		b.WriteString(entryLine(e, limits) + "\n")
		written++
		if written == criticalSectionCap {
			break
		}
	}
	if written == 0 {
		b.WriteString("None.\n")
	}
	b.WriteString("\n")
}

// writeFullListing renders the collapsible complete listing, capped at
// MaxSummaryItems with a "...and N more." footer. Omitted entirely when
// there are no issues.
func writeFullListing(b *strings.Builder, entries []Entry, limits Limits) {
	if len(entries) == 0 {
		return
	}

	b.WriteString("<details>\n")
	b.WriteString(fmt.Sprintf("<summary>All issues (%d)</summary>\n\n", len(entries)))

	shown := entries
	if len(shown) > limits.MaxSummaryItems {
		shown = shown[:limits.MaxSummaryItems]
	}
	for _, e := range shown {
		b.WriteString(entryLine(e, limits) + "\n")
	}
	if hidden := len(entries) - len(shown); hidden > 0 {
		b.WriteString(fmt.Sprintf("\n...and %d more.\n", hidden))
	}

	b.WriteString("\n</details>\n\n")
}

// entryLine renders one issue without its suggestion text.
func entryLine(e Entry, limits Limits) string {
	line := fmt.Sprintf("- **[%s]** %s (`%s`)", e.Severity, collapseSpace(Redact(e.Issue.DisplayTitle())), e.Issue.Location())
	if msg := Truncate(Redact(e.Issue.Message), limits.MaxMessageChars); msg != "" {
		line += ": " + msg
	}
	return line
}

// Truncate collapses whitespace runs to single spaces, trims, and cuts the
// text to the character cap, appending "..." only when a cut happened and the
// cap leaves room for it. The result never exceeds the cap.
func Truncate(text string, limit int) string {
	collapsed := collapseSpace(text)
	runes := []rune(collapsed)
	if len(runes) <= limit {
		return collapsed
	}
	if limit < 3 {
		if limit <= 0 {
			return ""
		}
		return strings.TrimRight(string(runes[:limit]), " ")
	}
	return strings.TrimRight(string(runes[:limit-3]), " ") + "..."
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

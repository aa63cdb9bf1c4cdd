package review

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Issue is a single finding reported by the analysis backend. Every field is
// optional: payloads come from an LLM-shaped pipeline and nothing about them
// can be trusted to be present or well-formed. Accessor methods resolve the
// documented defaults instead of callers poking at zero values.
type Issue struct {
	Title       string   `json:"title,omitempty"`
	Message     string   `json:"message,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Severity    string   `json:"severity,omitempty"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Path        string   `json:"path,omitempty"`
	LineStart   *int     `json:"line_start,omitempty"`
	LineEnd     *int     `json:"line_end,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	ID          string   `json:"id,omitempty"`
}

// DisplayTitle returns the title, or "Issue" when absent.
func (i Issue) DisplayTitle() string {
	if t := strings.TrimSpace(i.Title); t != "" {
		return t
	}
	return "Issue"
}

// DisplayPath returns the file path, or "unknown" when absent.
func (i Issue) DisplayPath() string {
	if p := strings.TrimSpace(i.Path); p != "" {
		return p
	}
	return "unknown"
}

// lineToken renders a line number for keys and locations, "?" when absent.
func lineToken(n *int) string {
	if n == nil {
		return "?"
	}
	return strconv.Itoa(*n)
}

// Location renders "path:start-end". line_end falls back to line_start and
// both fall back to "?" so that an empty issue still has a printable position.
func (i Issue) Location() string {
	start := lineToken(i.LineStart)
	end := start
	if i.LineEnd != nil {
		end = strconv.Itoa(*i.LineEnd)
	}
	return fmt.Sprintf("%s:%s-%s", i.DisplayPath(), start, end)
}

// NormalizedSeverity returns the uppercased trimmed severity label, defaulting
// to NIT when the field is absent or blank. Labels outside the priority table
// are kept verbatim for display; they only lose on ranking.
func (i Issue) NormalizedSeverity() string {
	s := strings.ToUpper(strings.TrimSpace(i.Severity))
	if s == "" {
		return SeverityNit
	}
	return s
}

// RankConfidence returns the confidence used for ordering. Absent or
// non-finite values collapse to -1 so they rank below any reported number,
// including an explicit 0.
func (i Issue) RankConfidence() float64 {
	if i.Confidence == nil {
		return -1
	}
	c := *i.Confidence
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return -1
	}
	return c
}

// Entry is an issue annotated with its identity key and normalized severity.
// Entries are what the ranker, delta computer and renderer operate on.
type Entry struct {
	Key      string
	Issue    Issue
	Severity string
}

// Severity labels in the closed priority table.
const (
	SeverityBlocker   = "BLOCKER"
	SeverityImportant = "IMPORTANT"
	SeverityCritical  = "CRITICAL"
	SeverityHigh      = "HIGH"
	SeverityMedium    = "MEDIUM"
	SeverityLow       = "LOW"
	SeverityWarning   = "WARNING"
	SeverityQuestion  = "QUESTION"
	SeverityNit       = "NIT"
)

// severityTable is the closed priority order, most severe first. Anything not
// listed ranks below NIT but keeps its own label.
var severityTable = []string{
	SeverityBlocker,
	SeverityImportant,
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityWarning,
	SeverityQuestion,
	SeverityNit,
}

var severityRank = func() map[string]int {
	m := make(map[string]int, len(severityTable))
	for i, s := range severityTable {
		m[s] = i
	}
	return m
}()

// SeverityOrder returns the priority index of a normalized severity label.
// Unmapped labels get len(severityTable), i.e. worse than every table entry.
func SeverityOrder(severity string) int {
	if r, ok := severityRank[severity]; ok {
		return r
	}
	return len(severityTable)
}

// criticalSeverities gate the "critical" report sections.
var criticalSeverities = map[string]bool{
	SeverityBlocker:   true,
	SeverityImportant: true,
	SeverityCritical:  true,
	SeverityHigh:      true,
}

// IsCritical reports whether a normalized severity belongs to the critical
// tier surfaced in the report's highlight sections.
func IsCritical(severity string) bool {
	return criticalSeverities[severity]
}

// DecisionWarn is the decision used when the analyzer did not supply one.
const DecisionWarn = "WARN"

// Result is the analyzer output consumed by a run. Stats is deliberately
// untyped: a payload whose stats field is not an object still has to decode,
// it just renders no risk score.
type Result struct {
	Issues   []Issue `json:"issues"`
	Summary  string  `json:"summary"`
	Decision string  `json:"decision"`
	Stats    any     `json:"stats"`
}

// EffectiveDecision returns the decision, defaulting to WARN.
func (r *Result) EffectiveDecision() string {
	if d := strings.TrimSpace(r.Decision); d != "" {
		return d
	}
	return DecisionWarn
}

// RiskScore returns stats.risk_score when stats is an object carrying a
// finite number under that key.
func (r *Result) RiskScore() (float64, bool) {
	stats, ok := r.Stats.(map[string]any)
	if !ok {
		return 0, false
	}
	f, ok := stats["risk_score"].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ParseResult decodes an analyzer result payload. LLM pipelines frequently
// wrap their JSON in markdown code fences, so those are stripped before
// decoding. A payload that still fails to decode is a parse error; callers
// are expected to warn and skip publishing rather than crash.
func ParseResult(data []byte) (*Result, error) {
	cleaned := stripCodeFences(string(data))
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("empty result payload")
	}

	var res Result
	if err := json.Unmarshal([]byte(cleaned), &res); err != nil {
		return nil, fmt.Errorf("failed to parse result payload: %w", err)
	}
	return &res, nil
}

// stripCodeFences removes a surrounding ```...``` block if present.
func stripCodeFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}

	lines := strings.Split(cleaned, "\n")
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

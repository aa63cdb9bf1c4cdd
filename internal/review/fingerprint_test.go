package review

import (
	"regexp"
	"testing"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

var keyFormat = regexp.MustCompile(`^[0-9a-f]{16}$`)

func TestFingerprint_Deterministic(t *testing.T) {
	a := Issue{Fingerprint: "sql-injection-a.py-10"}
	b := Issue{Fingerprint: "sql-injection-a.py-10", Message: "different wording", Title: "other"}

	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("issues with identical fingerprint fields produced different keys: %s vs %s", Fingerprint(a), Fingerprint(b))
	}

	if !keyFormat.MatchString(Fingerprint(a)) {
		t.Errorf("key %q is not 16 hex characters", Fingerprint(a))
	}
}

func TestFingerprint_Precedence(t *testing.T) {
	withFingerprint := Issue{Fingerprint: "fp", ID: "id-1", Path: "a.py", LineStart: intPtr(10)}
	withID := Issue{ID: "id-1", Path: "a.py", LineStart: intPtr(10)}
	withLocation := Issue{Path: "a.py", LineStart: intPtr(10), Title: "SQL injection"}

	keys := map[string]string{
		"fingerprint": Fingerprint(withFingerprint),
		"id":          Fingerprint(withID),
		"location":    Fingerprint(withLocation),
	}

	seen := make(map[string]string)
	for name, key := range keys {
		if prev, ok := seen[key]; ok {
			t.Errorf("derivation rules %q and %q collided on key %s", name, prev, key)
		}
		seen[key] = name
	}

	// Message and suggestion changes must not move the key.
	changed := withLocation
	changed.Message = "now with more detail"
	changed.Suggestion = "do the other thing"
	if Fingerprint(changed) != keys["location"] {
		t.Error("free-text change altered the location-derived key")
	}
}

func TestFingerprint_EmptyIssueIsTotal(t *testing.T) {
	key := Fingerprint(Issue{})
	if !keyFormat.MatchString(key) {
		t.Fatalf("empty issue produced invalid key %q", key)
	}

	// The fallbacks are fixed literals, so the key is stable too.
	if Fingerprint(Issue{}) != key {
		t.Error("empty issue key is not stable")
	}
}

func TestDedupe_FirstSeenWins(t *testing.T) {
	first := Issue{Fingerprint: "dup", Message: "first occurrence"}
	second := Issue{Fingerprint: "dup", Message: "second occurrence"}
	other := Issue{Fingerprint: "other"}

	entries := Dedupe([]Issue{first, other, second})

	if len(entries) != 2 {
		t.Fatalf("Dedupe returned %d entries, want 2", len(entries))
	}
	if entries[0].Issue.Message != "first occurrence" {
		t.Errorf("survivor message = %q, want the first occurrence", entries[0].Issue.Message)
	}
	if entries[1].Key != Fingerprint(other) {
		t.Error("relative order of survivors not preserved")
	}
}

func TestDedupe_NormalizesSeverity(t *testing.T) {
	entries := Dedupe([]Issue{{Title: "a", Severity: "  critical "}, {Title: "b", Severity: ""}})
	if entries[0].Severity != "CRITICAL" {
		t.Errorf("Severity = %q, want CRITICAL", entries[0].Severity)
	}
	if entries[1].Severity != "NIT" {
		t.Errorf("empty severity normalized to %q, want NIT", entries[1].Severity)
	}
}

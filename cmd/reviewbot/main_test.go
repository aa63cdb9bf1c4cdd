package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cexll/reviewbot/internal/config"
	"github.com/cexll/reviewbot/internal/review"
)

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	origConfig, origDotEnv := loadConfig, loadDotEnv
	loadConfig = func() (*config.Config, error) { return cfg, nil }
	loadDotEnv = func(...string) error { return nil }
	t.Cleanup(func() {
		loadConfig, loadDotEnv = origConfig, origDotEnv
	})
}

func TestParseFlags(t *testing.T) {
	opts := parseFlags([]string{"-repo", "owner/repo", "-pr", "42", "-dry-run", "-input", "result.json"})

	if opts.repo != "owner/repo" || opts.pr != 42 {
		t.Errorf("thread flags = %s#%d", opts.repo, opts.pr)
	}
	if !opts.dryRun || opts.serve {
		t.Errorf("mode flags = dryRun:%v serve:%v", opts.dryRun, opts.serve)
	}
	if opts.input != "result.json" {
		t.Errorf("input = %q", opts.input)
	}
}

func TestRun_SkipsWithoutThread(t *testing.T) {
	withConfig(t, &config.Config{Limits: review.DefaultLimits()})

	opts := &options{input: "-"}
	stdin := strings.NewReader(`{"issues":[]}`)
	if err := run(context.Background(), opts, stdin, &bytes.Buffer{}); err != nil {
		t.Errorf("missing thread must warn and skip, got error: %v", err)
	}
}

func TestRun_SkipsOnUnparseablePayload(t *testing.T) {
	withConfig(t, &config.Config{Repo: "owner/repo", PRNumber: 42, Limits: review.DefaultLimits()})

	opts := &options{input: "-"}
	stdin := strings.NewReader("this is not json")
	if err := run(context.Background(), opts, stdin, &bytes.Buffer{}); err != nil {
		t.Errorf("unparseable payload must warn and skip, got error: %v", err)
	}
}

func TestRun_SkipsOnMissingInputFile(t *testing.T) {
	withConfig(t, &config.Config{Repo: "owner/repo", PRNumber: 42, Limits: review.DefaultLimits()})

	opts := &options{input: filepath.Join(t.TempDir(), "does-not-exist.json")}
	if err := run(context.Background(), opts, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Errorf("missing input file must warn and skip, got error: %v", err)
	}
}

func TestRun_DryRunWithoutCredentials(t *testing.T) {
	withConfig(t, &config.Config{Repo: "owner/repo", PRNumber: 42, Limits: review.DefaultLimits()})

	var stdout bytes.Buffer
	opts := &options{input: "-", dryRun: true}
	stdin := strings.NewReader(`{"issues":[{"title":"SQL injection","severity":"CRITICAL","path":"a.py","line_start":10}],"decision":"FAIL"}`)

	if err := run(context.Background(), opts, stdin, &stdout); err != nil {
		t.Fatalf("dry run failed: %v", err)
	}

	body := stdout.String()
	if !strings.Contains(body, review.SummaryMarker) {
		t.Error("dry run output missing summary marker")
	}
	if !strings.Contains(body, "+1 new | -0 resolved | 0 unchanged") {
		t.Errorf("dry run output missing first-run delta:\n%s", body)
	}
}

func TestRun_PublishWithoutCredentialsFails(t *testing.T) {
	withConfig(t, &config.Config{Repo: "owner/repo", PRNumber: 42, Limits: review.DefaultLimits()})

	opts := &options{input: "-"}
	stdin := strings.NewReader(`{"issues":[]}`)
	if err := run(context.Background(), opts, stdin, &bytes.Buffer{}); err == nil {
		t.Error("publishing without credentials should fail")
	}
}

func TestReadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.json")
	if err := os.WriteFile(path, []byte(`{"issues":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	data, err := readInput(path, nil)
	if err != nil {
		t.Fatalf("readInput failed: %v", err)
	}
	if string(data) != `{"issues":[]}` {
		t.Errorf("data = %q", data)
	}

	data, err = readInput("-", strings.NewReader("from stdin"))
	if err != nil {
		t.Fatalf("readInput from stdin failed: %v", err)
	}
	if string(data) != "from stdin" {
		t.Errorf("data = %q", data)
	}
}

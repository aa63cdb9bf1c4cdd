// Package config loads reviewbot settings from an optional config file
// layered under environment variables. The environment always wins, so CI
// jobs can override a committed reviewbot.yml without touching it.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	koanfjson "github.com/knadh/koanf/parsers/json"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/cexll/reviewbot/internal/review"
)

// Config holds all configuration for a reviewbot run.
type Config struct {
	// Thread identity
	Repo     string // "owner/repo"
	PRNumber int

	// GitHub credentials: a token, or App ID + private key
	GitHubToken      string
	GitHubAppID      string
	GitHubPrivateKey string

	// Server settings (serve mode)
	Addr string

	// Render limits
	Limits review.Limits
}

// candidate config files, first match wins.
var configFiles = []string{"reviewbot.yml", "reviewbot.yaml", "reviewbot.json"}

// Load reads the optional config file and applies environment overrides.
// Missing thread identity is not an error here: the caller decides whether to
// warn and skip publishing.
func Load() (*Config, error) {
	k := koanf.New(".")
	loadConfigFile(k)

	cfg := &Config{
		Repo:             k.String("github.repository"),
		PRNumber:         k.Int("github.pr_number"),
		GitHubToken:      k.String("github.token"),
		GitHubAppID:      k.String("github.app_id"),
		GitHubPrivateKey: k.String("github.private_key"),
		Addr:             k.String("server.addr"),
		Limits: review.Limits{
			MaxSummaryItems:    k.Int("limits.max_summary_items"),
			MaxMessageChars:    k.Int("limits.max_message_chars"),
			MaxSuggestionChars: k.Int("limits.max_suggestion_chars"),
		},
	}

	cfg.Repo = getEnv("GITHUB_REPOSITORY", cfg.Repo)
	cfg.PRNumber = getEnvInt("PR_NUMBER", cfg.PRNumber)
	cfg.GitHubToken = getEnv("GITHUB_TOKEN", cfg.GitHubToken)
	cfg.GitHubAppID = getEnv("GITHUB_APP_ID", cfg.GitHubAppID)
	cfg.GitHubPrivateKey = normalizePrivateKey(getEnv("GITHUB_PRIVATE_KEY", cfg.GitHubPrivateKey))
	cfg.Addr = getEnv("ADDR", cfg.Addr)

	cfg.Limits.MaxSummaryItems = getEnvInt("MAX_SUMMARY_ITEMS", cfg.Limits.MaxSummaryItems)
	cfg.Limits.MaxMessageChars = getEnvInt("MAX_MESSAGE_CHARS", cfg.Limits.MaxMessageChars)
	cfg.Limits.MaxSuggestionChars = getEnvInt("MAX_SUGGESTION_CHARS", cfg.Limits.MaxSuggestionChars)
	cfg.Limits = sanitizeLimits(cfg.Limits)

	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}

	return cfg, nil
}

// HasThread reports whether the config addresses a comment thread.
func (c *Config) HasThread() bool {
	return c.Repo != "" && c.PRNumber > 0
}

// HasCredentials reports whether any GitHub auth method is configured.
func (c *Config) HasCredentials() bool {
	return c.GitHubToken != "" || (c.GitHubAppID != "" && c.GitHubPrivateKey != "")
}

func loadConfigFile(k *koanf.Koanf) {
	for _, name := range configFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}

		parser := koanf.Parser(koanfyaml.Parser())
		if strings.HasSuffix(name, ".json") {
			parser = koanfjson.Parser()
		}
		if err := k.Load(file.Provider(name), parser); err != nil {
			log.Printf("[Config] Warning: failed to load %s: %v", name, err)
			continue
		}
		return
	}
}

// sanitizeLimits replaces unset or negative limit values with documented
// defaults.
func sanitizeLimits(l review.Limits) review.Limits {
	defaults := review.DefaultLimits()
	if l.MaxSummaryItems <= 0 {
		l.MaxSummaryItems = defaults.MaxSummaryItems
	}
	if l.MaxMessageChars <= 0 {
		l.MaxMessageChars = defaults.MaxMessageChars
	}
	if l.MaxSuggestionChars <= 0 {
		l.MaxSuggestionChars = defaults.MaxSuggestionChars
	}
	return l
}

// getEnv returns the environment value or a fallback.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getEnvInt returns the environment value parsed as a non-negative integer,
// falling back on absence, parse failure, or a negative value.
func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		log.Printf("[Config] Warning: invalid value for %s: %q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

// normalizePrivateKey strips surrounding quotes and unescapes newlines so a
// PEM key can be passed through a single-line environment variable.
func normalizePrivateKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}

	if len(trimmed) >= 2 {
		if (trimmed[0] == '"' && trimmed[len(trimmed)-1] == '"') ||
			(trimmed[0] == '\'' && trimmed[len(trimmed)-1] == '\'') {
			trimmed = trimmed[1 : len(trimmed)-1]
		}
	}

	trimmed = strings.ReplaceAll(trimmed, "\r\n", "\n")
	trimmed = strings.ReplaceAll(trimmed, "\r", "\n")
	if strings.Contains(trimmed, "\\n") {
		trimmed = strings.ReplaceAll(trimmed, "\\r", "")
		trimmed = strings.ReplaceAll(trimmed, "\\n", "\n")
	}
	return trimmed
}

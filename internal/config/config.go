// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string
	ListenAddr string
	LogLevel   string

	// RepoRoot is the working tree the local content provider reads from.
	RepoRoot string

	// GitHub content source; optional. When all three are set the service
	// anchors against remote file content at GitHubRef instead of the
	// working tree.
	GitHubToken string
	GitHubRepo  string
	GitHubRef   string

	// ContextLines is how many surrounding lines new anchors capture on
	// each side of the commented range.
	ContextLines int

	// ContextMatchThreshold is the fraction of context lines that must
	// agree for a relocation candidate to be accepted.
	ContextMatchThreshold float64
}

// HasGitHubSource returns true when a remote content source is fully
// configured. Used by the composition root to decide between the GitHub
// content provider and the local working-tree provider.
func (c *Config) HasGitHubSource() bool {
	return c.GitHubToken != "" && c.GitHubRepo != "" && c.GitHubRef != ""
}

// Load reads configuration from environment variables and returns a
// validated Config. All variables are optional and default to a local-only
// setup: REVIEWPIN_DB_PATH (reviewpin.db), REVIEWPIN_LISTEN_ADDR
// (127.0.0.1:8080), REVIEWPIN_REPO_ROOT (.), REVIEWPIN_LOG_LEVEL (info),
// REVIEWPIN_CONTEXT_LINES (3), REVIEWPIN_CONTEXT_MATCH_THRESHOLD (0.5).
// The GitHub source is enabled by setting REVIEWPIN_GITHUB_TOKEN,
// REVIEWPIN_GITHUB_REPO (owner/repo), and REVIEWPIN_GITHUB_REF.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:                "reviewpin.db",
		ListenAddr:            "127.0.0.1:8080",
		LogLevel:              "info",
		RepoRoot:              ".",
		GitHubToken:           os.Getenv("REVIEWPIN_GITHUB_TOKEN"),
		GitHubRepo:            os.Getenv("REVIEWPIN_GITHUB_REPO"),
		GitHubRef:             os.Getenv("REVIEWPIN_GITHUB_REF"),
		ContextLines:          3,
		ContextMatchThreshold: 0.5,
	}

	if v, ok := os.LookupEnv("REVIEWPIN_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("REVIEWPIN_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("REVIEWPIN_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := os.LookupEnv("REVIEWPIN_REPO_ROOT"); ok {
		cfg.RepoRoot = v
	}

	if v, ok := os.LookupEnv("REVIEWPIN_CONTEXT_LINES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("REVIEWPIN_CONTEXT_LINES has invalid value %q: must be a positive integer", v)
		}
		cfg.ContextLines = n
	}

	if v, ok := os.LookupEnv("REVIEWPIN_CONTEXT_MATCH_THRESHOLD"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 1 {
			return nil, fmt.Errorf("REVIEWPIN_CONTEXT_MATCH_THRESHOLD has invalid value %q: must be in (0, 1]", v)
		}
		cfg.ContextMatchThreshold = f
	}

	return cfg, nil
}

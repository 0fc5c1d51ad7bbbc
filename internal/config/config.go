// Package config holds the resource engine's own configuration surface: the
// handful of environment variables spec.md §6 names as part of the core's
// external interface, plus compiled-in security defaults. Loading a
// user-facing application settings file is an external concern (spec.md §1)
// and lives outside this package.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultURLAllowlist is the built-in set of hosts a Source.URL may point
// at, per spec.md §4.1.
var DefaultURLAllowlist = []string{
	"raw.githubusercontent.com",
	"github.com",
}

// EngineConfig is the resource engine's runtime configuration.
type EngineConfig struct {
	// UserBase is the per-user directory resources are installed under
	// ($CLAUDE_HOME, default ~/.claude).
	UserBase string

	// URLAllowlist is the full set of hosts Source.URL may resolve to:
	// DefaultURLAllowlist plus CLAUDE_CATALOG_URL_ALLOWLIST.
	URLAllowlist []string

	// HTTPTimeout bounds a single download's total duration
	// (CLAUDE_HTTP_TIMEOUT_MS, default 60s per spec.md §5).
	HTTPTimeout time.Duration

	// HTTPConnectTimeout bounds TCP+TLS handshake time (spec.md §5: 10s).
	HTTPConnectTimeout time.Duration

	// MaxCatalogBytes bounds any single catalog YAML file
	// (CLAUDE_MAX_CATALOG_BYTES, default 1 MiB per spec.md §4.1).
	MaxCatalogBytes int64

	// ParseTimeout bounds a single YAML parse (spec.md §4.1 default 5s).
	ParseTimeout time.Duration

	// CacheEntries sizes the in-process resource cache's admission counters
	// (ten per expected entry; spec.md §4.3: 128). It does not cap the entry
	// count; occupancy is bounded by CacheSoftBytes.
	CacheEntries int64

	// CacheSoftBytes is the soft memory ceiling for the resource cache
	// (spec.md §4.3: 10 MiB).
	CacheSoftBytes int64

	// SearchCacheEntries records the query result cache size (spec.md
	// §4.4: 128). The search engine does not read it; it uses its own
	// defaultCacheSize constant of the same value.
	SearchCacheEntries int64

	// DiskCacheTTL records the on-disk catalog parse cache lifetime
	// (spec.md §4.3: 24h). The disk cache does not read it; it uses its own
	// diskCacheTTL constant of the same value.
	DiskCacheTTL time.Duration

	// InstallParallelism is the default batch install concurrency
	// (spec.md §4.7: 4).
	InstallParallelism int

	// MaxRetries is the installer's transient-failure retry budget
	// (spec.md §4.7: 3).
	MaxRetries int

	// DebugLogging enables the categorized file logger.
	DebugLogging bool
}

// Default returns the engine configuration before environment overrides.
func Default() *EngineConfig {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return &EngineConfig{
		UserBase:           filepath.Join(home, ".claude"),
		URLAllowlist:       append([]string(nil), DefaultURLAllowlist...),
		HTTPTimeout:        60 * time.Second,
		HTTPConnectTimeout: 10 * time.Second,
		MaxCatalogBytes:    1 << 20,
		ParseTimeout:       5 * time.Second,
		CacheEntries:       128,
		CacheSoftBytes:     10 << 20,
		SearchCacheEntries: 128,
		DiskCacheTTL:       24 * time.Hour,
		InstallParallelism: 4,
		MaxRetries:         3,
		DebugLogging:       false,
	}
}

// FromEnv returns the engine configuration with environment overrides
// applied on top of Default(), per the variables spec.md §6 names.
func FromEnv() *EngineConfig {
	cfg := Default()
	cfg.ApplyEnv()
	return cfg
}

// ApplyEnv overrides cfg in place from the process environment.
func (c *EngineConfig) ApplyEnv() {
	if v := os.Getenv("CLAUDE_HOME"); v != "" {
		c.UserBase = v
	}
	if v := os.Getenv("CLAUDE_CATALOG_URL_ALLOWLIST"); v != "" {
		extra := strings.Split(v, ",")
		seen := make(map[string]bool, len(c.URLAllowlist))
		for _, h := range c.URLAllowlist {
			seen[h] = true
		}
		for _, h := range extra {
			h = strings.TrimSpace(h)
			if h == "" || seen[h] {
				continue
			}
			seen[h] = true
			c.URLAllowlist = append(c.URLAllowlist, h)
		}
	}
	if v := os.Getenv("CLAUDE_HTTP_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			c.HTTPTimeout = time.Duration(ms) * time.Millisecond
		}
	}
	if v := os.Getenv("CLAUDE_MAX_CATALOG_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.MaxCatalogBytes = n
		}
	}
	if v := os.Getenv("CLAUDE_DEBUG"); v == "1" || v == "true" {
		c.DebugLogging = true
	}
}

// LogsDir returns the directory the categorized logger should write to.
func (c *EngineConfig) LogsDir() string {
	return filepath.Join(c.UserBase, ".logs")
}

// CacheDir returns the directory the on-disk catalog cache should use.
func (c *EngineConfig) CacheDir() string {
	return filepath.Join(c.UserBase, ".cache")
}

// HistoryPath returns the install history JSONL file path.
func (c *EngineConfig) HistoryPath() string {
	return filepath.Join(c.UserBase, ".install-history.jsonl")
}

// LockPath returns the advisory lock file path guarding the history file.
func (c *EngineConfig) LockPath() string {
	return filepath.Join(c.UserBase, ".install-history.lock")
}

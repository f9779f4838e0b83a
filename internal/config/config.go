// Package config handles TOML configuration loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// configSearchPaths lists paths checked in order when no explicit config is given.
var configSearchPaths = []string{
	"/etc/github-proxy/config.toml",
	"configs/config.toml",
}

// DefaultBaseURL is the GitHub REST API root.
const DefaultBaseURL = "https://api.github.com"

// Credential states reported by the X-Proxy-Credential header and /proxy/status.
const (
	CredentialPresent = "present"
	CredentialMissing = "missing"
)

// CLI holds global command-line arguments parsed by Kong.
type CLI struct {
	Config   string `kong:"short='c',help='Path to TOML config file.',env='CONFIG_PATH'"`
	Host     string `kong:"help='Listen host (overrides config).',env='HOST'"`
	Port     int    `kong:"short='p',help='Listen port (overrides config).',env='PORT'"`
	Token    string `kong:"help='GitHub token (overrides config).',env='GITHUB_TOKEN'"`
	LogLevel string `kong:"help='Log level: debug|info|warn|error (overrides config).',env='LOG_LEVEL'"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	GitHub   GitHubConfig   `toml:"github"`
	Upstream UpstreamConfig `toml:"upstream"`
	Log      LogConfig      `toml:"log"`
	Metrics  MetricsConfig  `toml:"metrics"`

	filePath string // resolved config file path (unexported)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"` // 0 means "use default" (8000); TOML cannot distinguish 0 from unset
	BodyMaxBytes int64  `toml:"body_max_bytes"`
}

// GitHubConfig holds the upstream credential.
type GitHubConfig struct {
	Token string `toml:"token"`
}

// HasToken reports whether a non-empty token is configured.
func (g GitHubConfig) HasToken() bool {
	return g.Token != ""
}

// CredentialState returns CredentialPresent or CredentialMissing.
func (g GitHubConfig) CredentialState() string {
	if g.HasToken() {
		return CredentialPresent
	}
	return CredentialMissing
}

// UpstreamConfig holds upstream connection settings.
type UpstreamConfig struct {
	BaseURL         string `toml:"base_url"`
	TimeoutSeconds  int    `toml:"timeout_seconds"` // 0 disables the client timeout
	IdleConnections int    `toml:"idle_connections"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads the TOML config file and applies CLI overrides.
// When no explicit path is given (via --config or CONFIG_PATH), it searches
// /etc/github-proxy/config.toml then configs/config.toml, and falls back to
// built-in defaults when neither exists.
func Load(cli *CLI) (*Config, error) {
	var cfg Config

	path := cli.Config
	if path == "" {
		path = findConfig()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg.filePath = path
	}

	cfg.applyCLI(cli)
	cfg.GitHub.Token = strings.TrimSpace(cfg.GitHub.Token)
	if cfg.Upstream.BaseURL == "" {
		cfg.Upstream.BaseURL = DefaultBaseURL
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	cfg.setDefaults()
	return &cfg, nil
}

// applyCLI overrides config values with non-zero CLI flags.
func (c *Config) applyCLI(cli *CLI) {
	if cli.Host != "" {
		c.Server.Host = cli.Host
	}
	if cli.Port != 0 {
		c.Server.Port = cli.Port
	}
	if cli.Token != "" {
		c.GitHub.Token = cli.Token
	}
	if cli.LogLevel != "" {
		c.Log.Level = cli.LogLevel
	}
}

func (c *Config) validate() error {
	if c.GitHub.Token == "YOUR_TOKEN_HERE" {
		return fmt.Errorf("github.token contains placeholder value; set a real token or leave empty for unauthenticated mode")
	}
	for _, check := range []func() error{
		c.Server.validate,
		c.Upstream.validate,
		c.Log.validate,
		c.Metrics.validate,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func (s ServerConfig) validate() error {
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be 0-65535; got %d", s.Port)
	}
	if s.BodyMaxBytes < 0 {
		return fmt.Errorf("server.body_max_bytes must be non-negative; got %d", s.BodyMaxBytes)
	}
	return nil
}

func (u UpstreamConfig) validate() error {
	parsed, err := url.Parse(u.BaseURL)
	if err != nil {
		return fmt.Errorf("upstream.base_url is not a valid URL: %w", err)
	}
	if parsed.Scheme != "https" {
		return fmt.Errorf("upstream.base_url must use HTTPS; got %q", u.BaseURL)
	}
	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return fmt.Errorf("upstream.base_url must not carry a query or fragment; got %q", u.BaseURL)
	}
	if u.TimeoutSeconds < 0 {
		return fmt.Errorf("upstream.timeout_seconds must be non-negative; got %d", u.TimeoutSeconds)
	}
	if u.IdleConnections < 0 {
		return fmt.Errorf("upstream.idle_connections must be non-negative; got %d", u.IdleConnections)
	}
	return nil
}

func (l LogConfig) validate() error {
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error", "":
	default:
		return fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", l.Level)
	}
	switch strings.ToLower(l.Format) {
	case "json", "text", "":
	default:
		return fmt.Errorf("log.format must be one of: json, text; got %q", l.Format)
	}
	return nil
}

// reservedRoutes are served by the proxy and cannot host the metrics endpoint.
var reservedRoutes = []string{"/api", "/healthz", "/proxy/status"}

// validate checks the path only when metrics are enabled.
func (m MetricsConfig) validate() error {
	if !m.Enabled || m.Path == "" {
		return nil
	}
	if !strings.HasPrefix(m.Path, "/") {
		return fmt.Errorf("metrics.path must start with '/'; got %q", m.Path)
	}
	for _, r := range reservedRoutes {
		if m.Path == r || strings.HasPrefix(m.Path, r+"/") {
			return fmt.Errorf("metrics.path %q conflicts with reserved route %q", m.Path, r)
		}
	}
	return nil
}

// setDefaults fills zero-valued fields with sensible defaults.
// For integer fields (Port, BodyMaxBytes, etc.), zero means "unset" because TOML
// cannot distinguish between an explicit 0 and an omitted key. The exception is
// Upstream.TimeoutSeconds, where 0 keeps the upstream call unbounded and
// cancellation is left to the inbound request context.
func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyMaxBytes == 0 {
		c.Server.BodyMaxBytes = 10 * 1024 * 1024 // 10 MB
	}
	if c.Upstream.IdleConnections == 0 {
		c.Upstream.IdleConnections = 100
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// findConfig returns the first config path that exists, or empty string.
func findConfig() string {
	return findConfigInPaths(configSearchPaths)
}

// findConfigInPaths returns the first path that exists on disk, or empty string.
func findConfigInPaths(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Addr returns the server listen address as host:port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// WarnPermissions logs a warning if the config file is readable by group or others.
func (c *Config) WarnPermissions(logger *slog.Logger) {
	if c.filePath == "" {
		return
	}
	info, err := os.Stat(c.filePath)
	if err != nil {
		return
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Warn("config file is readable by group/others; consider chmod 600",
			"path", c.filePath,
			"mode", fmt.Sprintf("%04o", perm),
		)
	}
}

// Package config handles the configuration directory, config.yaml and the
// stored session credential.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	// AppName is the application directory name.
	AppName = "evotodo"

	// ConfigFile is the optional settings file.
	ConfigFile = "config.yaml"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored session credential filename.
	TokenFile = "token.json"

	// DatabaseFile is the default SQLite file of the local backend.
	DatabaseFile = "tasks.db"

	// EnvPrefix prefixes environment overrides, e.g. EVOTODO_SERVER_URL.
	EnvPrefix = "EVOTODO"
)

// Backend names.
const (
	BackendHTTP        = "http"
	BackendLocal       = "local"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultServerURL      = "http://localhost:8000"
	DefaultGoogleList     = "@default"
	DefaultTimeout        = 10 * time.Second
	DefaultReloadAttempts = 3
)

// ErrNotLoggedIn is returned by LoadToken when no credential is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Settings are the values read from config.yaml and the environment.
type Settings struct {
	Backend        string        `mapstructure:"backend"`
	ServerURL      string        `mapstructure:"server_url"`
	AgentURL       string        `mapstructure:"agent_url"`
	Database       string        `mapstructure:"database"`
	GoogleList     string        `mapstructure:"google_list"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ReloadAttempts int           `mapstructure:"reload_attempts"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Stdin is where prompts and the chat REPL read from.
	Stdin io.Reader

	// Log is the diagnostic logger. Use Logger() to read it.
	Log *zap.Logger

	Settings
}

// New creates a Config for configDir, or the default directory when empty,
// and loads config.yaml from it if present. Environment variables override
// the file.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir, Stdin: os.Stdin}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) load() error {
	v := viper.New()
	v.SetDefault("backend", BackendHTTP)
	v.SetDefault("server_url", DefaultServerURL)
	v.SetDefault("agent_url", "")
	v.SetDefault("database", "")
	v.SetDefault("google_list", DefaultGoogleList)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("reload_attempts", DefaultReloadAttempts)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := filepath.Join(c.Dir, ConfigFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", ConfigFile, err)
		}
	}

	if err := v.Unmarshal(&c.Settings); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	return c.normalize()
}

func (c *Config) normalize() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendHTTP, BackendLocal, BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	c.AgentURL = strings.TrimRight(c.AgentURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ReloadAttempts < 1 {
		c.ReloadAttempts = 1
	}
	if c.GoogleList == "" {
		c.GoogleList = DefaultGoogleList
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Logger returns the configured logger or a no-op logger.
func (c *Config) Logger() *zap.Logger {
	if c.Log == nil {
		return zap.NewNop()
	}
	return c.Log
}

// AgentBaseURL returns agent_url, falling back to server_url.
func (c *Config) AgentBaseURL() string {
	if c.AgentURL != "" {
		return c.AgentURL
	}
	return c.ServerURL
}

// DatabasePath returns the SQLite path of the local backend.
func (c *Config) DatabasePath() string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(c.Dir, DatabaseFile)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored credential.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

// LoadToken reads the stored credential. ErrNotLoggedIn is returned when
// there is none.
func (c *Config) LoadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.TokenPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TokenFile, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", TokenFile, err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("invalid %s: empty token", TokenFile)
	}
	return &token, nil
}

// SaveToken stores the credential with mode 0600, creating the directory.
func (c *Config) SaveToken(token *oauth2.Token) error {
	if err := c.EnsureDir(); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.TokenPath(), data, 0600)
}

// ABOUTME: fitlog configuration: file (yaml or json), .env, and FITLOG_* overrides.
// ABOUTME: Also the factory for the record store, session backend and logger.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harperreed/fitlog/internal/auth"
	"github.com/harperreed/fitlog/internal/logging"
	"github.com/harperreed/fitlog/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Defaults for unset fields.
const (
	DefaultAddr           = ":8080"
	DefaultSessionBackend = "badger"
	DefaultSessionTTL     = "168h"
)

// Config stores fitlog configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// DataDir is the root directory for data storage. fitlog.db and the
	// badger session store live here. Supports ~ expansion.
	// Defaults to ~/.local/share/fitlog.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`

	Sessions SessionConfig `json:"sessions,omitempty" yaml:"sessions,omitempty"`
	Log      LogConfig     `json:"log,omitempty" yaml:"log,omitempty"`
}

// SessionConfig selects and configures the session backend.
type SessionConfig struct {
	// Backend is "badger" (default), "memory", "jwt" or "redis".
	Backend   string `json:"backend,omitempty" yaml:"backend,omitempty"`
	Secret    string `json:"secret,omitempty" yaml:"secret,omitempty"`
	TTL       string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
	RedisAddr string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty"`
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// GetAddr returns the listen address, defaulting to :8080.
func (c *Config) GetAddr() string {
	if c.Addr == "" {
		return DefaultAddr
	}
	return c.Addr
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetSessionBackend returns the session backend, defaulting to "badger".
func (c *Config) GetSessionBackend() string {
	if c.Sessions.Backend == "" {
		return DefaultSessionBackend
	}
	return strings.ToLower(c.Sessions.Backend)
}

// SessionTTL parses the configured session lifetime.
func (c *Config) SessionTTL() (time.Duration, error) {
	raw := c.Sessions.TTL
	if raw == "" {
		raw = DefaultSessionTTL
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse session ttl %q: %w", raw, err)
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("session ttl must be positive, got %s", ttl)
	}
	return ttl, nil
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	if c.DataDir == "" {
		return storage.DefaultDBPath()
	}
	return filepath.Join(c.GetDataDir(), "fitlog.db")
}

// SessionDir returns the badger session directory inside the data directory.
func (c *Config) SessionDir() string {
	return filepath.Join(c.GetDataDir(), "sessions")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage opens the SQLite record store under the data directory.
func (c *Config) OpenStorage() (storage.Repository, error) {
	db, err := storage.Open(c.DBPath())
	if err != nil {
		return nil, err
	}
	return db, nil
}

// OpenSessions creates the configured session backend.
func (c *Config) OpenSessions(ctx context.Context, log *logrus.Logger) (auth.Sessions, error) {
	ttl, err := c.SessionTTL()
	if err != nil {
		return nil, err
	}

	switch backend := c.GetSessionBackend(); backend {
	case "badger":
		s, err := auth.OpenBadgerSessions(c.SessionDir(), ttl, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		s, err := auth.OpenBadgerSessions("", ttl, log)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "jwt":
		s, err := auth.NewJWTSessions(c.Sessions.Secret, ttl)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "redis":
		addr := c.Sessions.RedisAddr
		if addr == "" {
			addr = "localhost:6379"
		}
		s, err := auth.DialRedisSessions(ctx, addr, ttl)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown session backend: %q", backend)
	}
}

// Logger builds the configured logger.
func (c *Config) Logger() *logrus.Logger {
	return logging.New(c.Log.Level, c.Log.Format)
}

// GetConfigDir returns the fitlog config directory.
func GetConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "fitlog")
}

// GetConfigPath returns the config file path. config.yaml wins over
// config.json when both exist; with neither, the json path is returned.
func GetConfigPath() string {
	dir := GetConfigDir()
	yamlPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath
	}
	return filepath.Join(dir, "config.json")
}

// Load reads .env (if present), the config file, then FITLOG_* variables.
// A missing config file yields defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := LoadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads one config file, choosing the decoder by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from FITLOG_* environment variables.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		key string
		dst *string
	}{
		{"FITLOG_ADDR", &c.Addr},
		{"FITLOG_DATA_DIR", &c.DataDir},
		{"FITLOG_SESSION_BACKEND", &c.Sessions.Backend},
		{"FITLOG_SESSION_SECRET", &c.Sessions.Secret},
		{"FITLOG_SESSION_TTL", &c.Sessions.TTL},
		{"FITLOG_REDIS_ADDR", &c.Sessions.RedisAddr},
		{"FITLOG_LOG_LEVEL", &c.Log.Level},
		{"FITLOG_LOG_FORMAT", &c.Log.Format},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.dst = v
		}
	}
}

// Save writes config to disk in the format its path implies.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes config to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

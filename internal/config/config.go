// Package config loads verifylog configuration from CUE.
//
// The embedded schema (schema.cue) supplies defaults and constraints. A
// user file is unified with it, so the file only needs the fields it
// changes and unknown fields are rejected.
//
//	ledger: backend: "bolt"
//	ledger: path:    "/var/lib/verifylog/ledger.bolt"
//	store:  last_n:  100
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/verifylog/internal/ledger"
)

//go:embed schema.cue
var schemaCUE string

// Config is the decoded configuration.
type Config struct {
	Ledger   LedgerConfig   `json:"ledger"`
	Store    StoreConfig    `json:"store"`
	Dispatch DispatchConfig `json:"dispatch"`
	Server   ServerConfig   `json:"server"`
	Log      LogConfig      `json:"log"`
}

// LedgerConfig selects the ledger backend.
type LedgerConfig struct {
	Backend string `json:"backend"`
	Path    string `json:"path"`
}

// StoreConfig configures the verification-log store.
type StoreConfig struct {
	LastN int `json:"last_n"`
}

// DispatchConfig configures the dispatcher.
type DispatchConfig struct {
	MaxRetries int `json:"max_retries"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Listen  string `json:"listen"`
	Channel string `json:"channel"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level"`
}

// Load reads the CUE file at path and unifies it with the schema.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadBytes("", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return LoadBytes(path, data)
}

// Default returns the configuration with every field at its default.
func Default() *Config {
	cfg, err := LoadBytes("", nil)
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is invalid: %v", err))
	}
	return cfg
}

// LoadBytes unifies CUE source data with the schema. filename is used in
// error positions only.
func LoadBytes(filename string, data []byte) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}
	value := schema.LookupPath(cue.ParsePath("#Config"))

	if len(data) > 0 {
		user := ctx.CompileBytes(data, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return nil, fmt.Errorf("compiling %s: %w", filename, err)
		}
		value = value.Unify(user)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var cfg Config
	if err := value.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

// LedgerOptions returns the ledger.Open configuration.
func (c *Config) LedgerOptions() ledger.Config {
	return ledger.Config{Backend: c.Ledger.Backend, Path: c.Ledger.Path}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"clashctl/internal/paths"
)

// Environment variables consulted as the fallback tier below the
// persisted store.
const (
	EnvHost       = "CLASH_API_HOST"
	EnvSecret     = "CLASH_API_SECRET"
	EnvConfigPath = "CLASHCTL_CONFIG"
)

// FallbackHost is the built-in default daemon address.
const FallbackHost = "127.0.0.1:9090"

// Store is the persisted on-disk config document. It is read fully into
// memory and rewritten wholesale on update; concurrent external writers
// are not handled (single-writer assumption).
type Store struct {
	Host   string `json:"host,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// Effective is the resolved {host, secret} pair for one invocation.
type Effective struct {
	Host   string
	Secret string
}

// DefaultPath returns the config store location: $CLASHCTL_CONFIG when
// set, otherwise ~/.config/clashctl/config.json.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	return paths.ConfigFile()
}

// DefaultHost returns the environment host override or the built-in
// default.
func DefaultHost() string {
	if host := os.Getenv(EnvHost); host != "" {
		return host
	}
	return FallbackHost
}

// DefaultSecret returns the environment secret override, empty when
// unset.
func DefaultSecret() string {
	return os.Getenv(EnvSecret)
}

// Load reads the store at path. An absent file is an empty store, not
// an error. A store that exists but cannot be read or parsed returns an
// empty store and the error so callers can warn and continue.
func Load(path string) (Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Store{}, nil
		}
		return Store{}, fmt.Errorf("read config %s: %w", path, err)
	}
	var store Store
	if err := json.Unmarshal(data, &store); err != nil {
		return Store{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return store, nil
}

// Save rewrites the store at path, creating parent directories as
// needed.
func (s Store) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Resolve merges the precedence tiers into the effective pair. Each
// field resolves independently: flag value, then persisted store, then
// environment, then built-in default. An empty flag value counts as
// unset.
func Resolve(flagHost, flagSecret string, store Store) Effective {
	eff := Effective{Host: flagHost, Secret: flagSecret}
	if eff.Host == "" {
		eff.Host = store.Host
	}
	if eff.Host == "" {
		eff.Host = DefaultHost()
	}
	if eff.Secret == "" {
		eff.Secret = store.Secret
	}
	if eff.Secret == "" {
		eff.Secret = DefaultSecret()
	}
	return eff
}

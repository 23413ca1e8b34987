package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	defaultLogLevel = "warn"

	configFile     = "config.json"
	walletsFile    = "wallets.json"
	deploymentsDir = "deployments"
)

// Load reads config from dir (or creates defaults). dir defaults to
// $GOVTOKEN_CONFIG_DIR, then ~/.govtoken.
func Load(dir string) (*Config, error) {
	if dir == "" {
		dir = os.Getenv(DirEnv)
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".govtoken")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.configDir = dir
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	if url := os.Getenv(RPCEnv); url != "" {
		cfg.RPCURL = url
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath is the wallets.json location.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// DeploymentsDir is where token deployments are persisted.
func (c *Config) DeploymentsDir() string {
	return filepath.Join(c.configDir, deploymentsDir)
}

// Level parses LogLevel. Unknown values fall back to warn.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// SetRemote registers a deployed contract under an alias.
func (c *Config) SetRemote(alias, address string) error {
	if alias == "" {
		return fmt.Errorf("remote alias must not be empty")
	}
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid contract address %q", address)
	}
	if c.Remotes == nil {
		c.Remotes = make(map[string]string)
	}
	c.Remotes[alias] = common.HexToAddress(address).Hex()
	return nil
}

// RemoveRemote drops an alias.
func (c *Config) RemoveRemote(alias string) error {
	if _, ok := c.Remotes[alias]; !ok {
		return fmt.Errorf("remote %s not found", alias)
	}
	delete(c.Remotes, alias)
	return nil
}

// ResolveRemote accepts an alias or a hex address.
func (c *Config) ResolveRemote(aliasOrAddr string) (common.Address, error) {
	if common.IsHexAddress(aliasOrAddr) {
		return common.HexToAddress(aliasOrAddr), nil
	}
	if addr, ok := c.Remotes[strings.TrimSpace(aliasOrAddr)]; ok {
		return common.HexToAddress(addr), nil
	}
	return common.Address{}, fmt.Errorf("unknown remote %q", aliasOrAddr)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		LogLevel:  defaultLogLevel,
		Remotes:   make(map[string]string),
		configDir: dir,
	}
}

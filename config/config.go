package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"nftmarket/core/types"
	"nftmarket/crypto"
)

type Config struct {
	ListenAddress string `toml:"ListenAddress"`
	DataDir       string `toml:"DataDir"`
	Environment   string `toml:"Environment"`
	// Admin is the bech32 account allowed to mutate the registry, mint and fund.
	Admin        string `toml:"Admin"`
	AdminKeyFile string `toml:"AdminKeyFile"`
	GenesisFile  string `toml:"GenesisFile"`

	Auction   Auction   `toml:"Auction"`
	Logging   Logging   `toml:"Logging"`
	RPC       RPC       `toml:"RPC"`
	Telemetry Telemetry `toml:"Telemetry"`
	Indexer   Indexer   `toml:"Indexer"`
}

// Load loads the configuration from the given path. A missing file is
// replaced by a freshly generated default, including a new admin key.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %q", path, undecoded[0].String())
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration written for a new node, without an admin.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.ListenAddress) == "" {
		cfg.ListenAddress = ":8080"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./market-data"
	}
	if strings.TrimSpace(cfg.Environment) == "" {
		cfg.Environment = "local"
	}
	if cfg.Auction.DefaultBidPeriodSeconds == 0 {
		cfg.Auction.DefaultBidPeriodSeconds = 86400
	}
	if cfg.Auction.DefaultBidIncrease == "" {
		cfg.Auction.DefaultBidIncrease = "0.10"
	}
	if cfg.Auction.MinBidIncrease == "" {
		cfg.Auction.MinBidIncrease = "0.02"
	}
	if cfg.Auction.MaxMinPriceRatio == "" {
		cfg.Auction.MaxMinPriceRatio = "0.8"
	}
	if cfg.Auction.ApplyRoyalties == nil {
		enabled := true
		cfg.Auction.ApplyRoyalties = &enabled
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.MaxSizeMB == 0 {
		cfg.Logging.MaxSizeMB = 100
	}
	if cfg.RPC.RateLimitPerMinute == 0 {
		cfg.RPC.RateLimitPerMinute = 600
	}
	if cfg.RPC.Burst == 0 {
		cfg.RPC.Burst = 60
	}
	if cfg.RPC.MaxBodyBytes == 0 {
		cfg.RPC.MaxBodyBytes = 1 << 20
	}
	if cfg.RPC.ReadTimeoutSeconds == 0 {
		cfg.RPC.ReadTimeoutSeconds = 15
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	keyPath := defaultAdminKeyPath(path)
	if err := writeSecret(keyPath, hex.EncodeToString(key.Bytes())); err != nil {
		return nil, err
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}

	cfg := Default()
	cfg.Admin = types.Address(key.AddressBytes()).String()
	cfg.AdminKeyFile = keyPath
	cfg.RPC.JWTSecret = hex.EncodeToString(secret)

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

func writeSecret(path, value string) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(value+"\n"), 0o600)
}

func defaultAdminKeyPath(configPath string) string {
	dir := filepath.Dir(configPath)
	if dir == "." || dir == "" {
		dir = ""
	}
	return filepath.Join(dir, "admin.key")
}

// AdminAddress parses the configured admin account. An empty value yields the
// zero address, which disables every admin operation.
func (c *Config) AdminAddress() (types.Address, error) {
	if strings.TrimSpace(c.Admin) == "" {
		return types.Address{}, nil
	}
	return types.ParseAddress(c.Admin)
}

// LoadAdminKey reads the hex-encoded admin private key.
func LoadAdminKey(path string) (*crypto.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("decode admin key: %w", err)
	}
	return crypto.PrivateKeyFromBytes(b)
}

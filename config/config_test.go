package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"nftmarket/core/amount"
	"nftmarket/core/types"
)

func TestLoadParsesMarketSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	admin := types.ModuleAddress("test:admin").String()
	contents := `ListenAddress = "127.0.0.1:9100"
DataDir = "./data"
Environment = "staging"
Admin = "` + admin + `"
GenesisFile = "genesis.yaml"

[Auction]
DefaultBidPeriodSeconds = 3600
DefaultBidIncrease = "0.05"
MinBidIncrease = "0.02"
MaxMinPriceRatio = "0.75"
ApplyRoyalties = false

[Logging]
Level = "debug"
File = "market.log"
MaxBackups = 3

[RPC]
JWTSecret = "secret"
RateLimitPerMinute = 120
Burst = 10

[Indexer]
Path = "events.db"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddress != "127.0.0.1:9100" || cfg.Environment != "staging" {
		t.Fatalf("unexpected top-level settings: %+v", cfg)
	}
	if cfg.RPC.RateLimitPerMinute != 120 || cfg.RPC.Burst != 10 {
		t.Fatalf("unexpected rpc limits: %+v", cfg.RPC)
	}
	if cfg.RPC.MaxBodyBytes != 1<<20 || cfg.RPC.ReadTimeoutSeconds != 15 {
		t.Fatalf("rpc defaults not applied: %+v", cfg.RPC)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.MaxSizeMB != 100 || cfg.Logging.MaxBackups != 3 {
		t.Fatalf("unexpected logging settings: %+v", cfg.Logging)
	}
	if cfg.Indexer.Path != "events.db" {
		t.Fatalf("unexpected indexer path %q", cfg.Indexer.Path)
	}

	addr, err := cfg.AdminAddress()
	if err != nil {
		t.Fatalf("admin address: %v", err)
	}
	if addr != types.ModuleAddress("test:admin") {
		t.Fatalf("admin mismatch: %s", addr)
	}

	params, err := cfg.AuctionParams()
	if err != nil {
		t.Fatalf("auction params: %v", err)
	}
	if params.DefaultBidPeriodSeconds != 3600 {
		t.Fatalf("bid period: %d", params.DefaultBidPeriodSeconds)
	}
	if !params.MaxMinPriceRatio.Equal(amount.MustParse("0.75")) || !params.DefaultBidIncrease.Equal(amount.MustParse("0.05")) {
		t.Fatalf("unexpected auction params: %+v", params)
	}
	if params.ApplyRoyalties {
		t.Fatalf("expected royalties disabled")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("ListenAddress = \":8080\"\nRPCAddress = \":9000\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "RPCAddress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestLoadValidatesAuctionSection(t *testing.T) {
	cases := map[string]string{
		"ratio above one":      "[Auction]\nMaxMinPriceRatio = \"1.2\"\n",
		"increase below floor": "[Auction]\nDefaultBidIncrease = \"0.01\"\n",
		"malformed decimal":    "[Auction]\nMinBidIncrease = \"two\"\n",
		"negative period":      "[Auction]\nDefaultBidPeriodSeconds = -5\n",
		"negative burst":       "[RPC]\nBurst = -1\n",
		"bad admin":            "Admin = \"nope\"\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadCreatesDefaultWithAdminKey(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node", "config.toml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if cfg.RPC.JWTSecret == "" {
		t.Fatalf("expected generated jwt secret")
	}
	if cfg.AdminKeyFile != filepath.Join(dir, "node", "admin.key") {
		t.Fatalf("unexpected key path %q", cfg.AdminKeyFile)
	}
	info, err := os.Stat(cfg.AdminKeyFile)
	if err != nil {
		t.Fatalf("stat admin key: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("admin key permissions %v", info.Mode().Perm())
	}

	key, err := LoadAdminKey(cfg.AdminKeyFile)
	if err != nil {
		t.Fatalf("load admin key: %v", err)
	}
	admin, err := cfg.AdminAddress()
	if err != nil {
		t.Fatalf("admin address: %v", err)
	}
	if admin != types.Address(key.AddressBytes()) {
		t.Fatalf("admin %s does not match generated key", admin)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload persisted config: %v", err)
	}
	if reloaded.Admin != cfg.Admin || reloaded.RPC.JWTSecret != cfg.RPC.JWTSecret {
		t.Fatalf("persisted config differs: %+v vs %+v", reloaded, cfg)
	}
	if reloaded.Auction.ApplyRoyalties == nil || !*reloaded.Auction.ApplyRoyalties {
		t.Fatalf("royalties should default to enabled")
	}
}

func TestDefaultHasNoAdmin(t *testing.T) {
	cfg := Default()
	addr, err := cfg.AdminAddress()
	if err != nil {
		t.Fatalf("admin address: %v", err)
	}
	if !addr.IsZero() {
		t.Fatalf("expected zero admin, got %s", addr)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestParseGenesis(t *testing.T) {
	owner := types.ModuleAddress("test:owner").String()
	doc := `assets:
  - id: A.0ae53cb6e3f42a79.FlowToken.Vault
  - id: A.f8d6e0586b0a20c7.FUSD.Vault
    receiverPath: /public/fusdReceiver
canonical: A.f8d6e0586b0a20c7.FUSD.Vault
collectibleTypes:
  - id: A.f8d6e0586b0a20c7.ExampleNFT.NFT
accounts:
  - address: ` + owner + `
    assets: [A.0ae53cb6e3f42a79.FlowToken.Vault]
    collectibleTypes: [A.f8d6e0586b0a20c7.ExampleNFT.NFT]
    balances:
      A.0ae53cb6e3f42a79.FlowToken.Vault: "25.5"
collectibles:
  - type: A.f8d6e0586b0a20c7.ExampleNFT.NFT
    id: 4
    owner: ` + owner + `
    royalty:
      creators: [` + owner + `]
      creatorCut: "0.05"
`
	g, err := ParseGenesis([]byte(doc))
	if err != nil {
		t.Fatalf("parse genesis: %v", err)
	}
	if len(g.Assets) != 2 || g.Assets[1].ReceiverPath != "/public/fusdReceiver" {
		t.Fatalf("unexpected assets: %+v", g.Assets)
	}
	if g.Canonical != "A.f8d6e0586b0a20c7.FUSD.Vault" {
		t.Fatalf("canonical %q", g.Canonical)
	}
	if len(g.Accounts) != 1 || g.Accounts[0].Balances["A.0ae53cb6e3f42a79.FlowToken.Vault"] != "25.5" {
		t.Fatalf("unexpected accounts: %+v", g.Accounts)
	}
	if len(g.Collectibles) != 1 || g.Collectibles[0].ID != 4 || g.Collectibles[0].Royalty == nil {
		t.Fatalf("unexpected collectibles: %+v", g.Collectibles)
	}
}

func TestParseGenesisRejectsUnknownFields(t *testing.T) {
	_, err := ParseGenesis([]byte("assets:\n  - id: A.1.X.Vault\n    colour: blue\n"))
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
	if _, err := ParseGenesis([]byte("canonical: A.1.X.Vault\n")); err == nil {
		t.Fatalf("expected error for genesis without assets")
	}
}

func TestValidateSampleRatio(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.SampleRatio = 0.25
	if err := Validate(cfg); err != nil {
		t.Fatalf("ratio 0.25 rejected: %v", err)
	}
	cfg.Telemetry.SampleRatio = 1.5
	if err := Validate(cfg); err == nil {
		t.Fatalf("expected ratio above one to be rejected")
	}
}

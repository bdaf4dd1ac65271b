package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Genesis seeds an empty ledger: the registry, funded accounts and minted
// collectibles.
type Genesis struct {
	Assets           []GenesisAsset           `yaml:"assets"`
	Canonical        string                   `yaml:"canonical"`
	CollectibleTypes []GenesisCollectibleType `yaml:"collectibleTypes"`
	Accounts         []GenesisAccount         `yaml:"accounts"`
	Collectibles     []GenesisCollectible     `yaml:"collectibles"`
}

type GenesisAsset struct {
	ID           string `yaml:"id"`
	ReceiverPath string `yaml:"receiverPath"`
}

type GenesisCollectibleType struct {
	ID             string `yaml:"id"`
	CollectionPath string `yaml:"collectionPath"`
}

// GenesisAccount is set up for the listed assets and collectible types, then
// funded with Balances (asset id to decimal amount).
type GenesisAccount struct {
	Address          string            `yaml:"address"`
	Assets           []string          `yaml:"assets"`
	CollectibleTypes []string          `yaml:"collectibleTypes"`
	Balances         map[string]string `yaml:"balances"`
}

type GenesisCollectible struct {
	Type    string          `yaml:"type"`
	ID      uint64          `yaml:"id"`
	Owner   string          `yaml:"owner"`
	Royalty *GenesisRoyalty `yaml:"royalty"`
}

type GenesisRoyalty struct {
	Creators    []string `yaml:"creators"`
	CreatorCut  string   `yaml:"creatorCut"`
	Platform    string   `yaml:"platform"`
	PlatformCut string   `yaml:"platformCut"`
}

// LoadGenesis reads a YAML genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := ParseGenesis(data)
	if err != nil {
		return nil, fmt.Errorf("genesis %s: %w", path, err)
	}
	return g, nil
}

// ParseGenesis decodes YAML, rejecting unknown fields.
func ParseGenesis(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	g := &Genesis{}
	if err := dec.Decode(g); err != nil {
		return nil, err
	}
	if len(g.Assets) == 0 {
		return nil, fmt.Errorf("at least one asset type required")
	}
	return g, nil
}

package core

import (
	"fmt"
	"sort"

	"nftmarket/config"
	"nftmarket/core/amount"
	"nftmarket/core/assets"
	"nftmarket/core/types"
	"nftmarket/native/royalty"
)

// ApplyGenesis seeds an empty ledger in a single operation signed by the
// admin. It reports false without changes when the registry already exists.
func (m *Market) ApplyGenesis(g *config.Genesis) (bool, error) {
	if g == nil {
		return false, fmt.Errorf("genesis: nil document")
	}
	applied := false
	err := m.execute("genesis", m.admin, func(s *Session) error {
		reg, err := s.Registry.Snapshot()
		if err != nil {
			return err
		}
		if reg.Version > 0 {
			return nil
		}
		if err := applyGenesis(s, m.admin, g); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func applyGenesis(s *Session, admin types.Address, g *config.Genesis) error {
	for _, asset := range g.Assets {
		if _, err := s.Registry.AddAsset(admin, assets.AssetType{ID: asset.ID, ReceiverPath: asset.ReceiverPath}); err != nil {
			return fmt.Errorf("genesis asset %s: %w", asset.ID, err)
		}
	}
	if g.Canonical != "" {
		if _, err := s.Registry.SetCanonical(admin, g.Canonical); err != nil {
			return fmt.Errorf("genesis canonical %s: %w", g.Canonical, err)
		}
	}
	for _, ct := range g.CollectibleTypes {
		if _, err := s.Registry.AddCollectibleType(admin, assets.CollectibleType{ID: ct.ID, CollectionPath: ct.CollectionPath}); err != nil {
			return fmt.Errorf("genesis collectible type %s: %w", ct.ID, err)
		}
	}
	for _, acct := range g.Accounts {
		addr, err := types.ParseAddress(acct.Address)
		if err != nil {
			return fmt.Errorf("genesis account %q: %w", acct.Address, err)
		}
		if err := s.Receivers.Setup(addr, acct.Assets, acct.CollectibleTypes); err != nil {
			return fmt.Errorf("genesis setup %s: %w", acct.Address, err)
		}
		assetIDs := make([]string, 0, len(acct.Balances))
		for id := range acct.Balances {
			assetIDs = append(assetIDs, id)
		}
		sort.Strings(assetIDs)
		for _, id := range assetIDs {
			amt, err := amount.Parse(acct.Balances[id])
			if err != nil {
				return fmt.Errorf("genesis balance %s/%s: %w", acct.Address, id, err)
			}
			if err := s.Bank.Mint(admin, addr, id, amt); err != nil {
				return fmt.Errorf("genesis balance %s/%s: %w", acct.Address, id, err)
			}
		}
	}
	for _, c := range g.Collectibles {
		owner, err := types.ParseAddress(c.Owner)
		if err != nil {
			return fmt.Errorf("genesis collectible %s#%d owner: %w", c.Type, c.ID, err)
		}
		if err := s.Collectibles.Mint(admin, owner, c.Type, c.ID); err != nil {
			return fmt.Errorf("genesis collectible %s#%d: %w", c.Type, c.ID, err)
		}
		if c.Royalty == nil {
			continue
		}
		cfg, err := royaltyConfig(c.Type, c.ID, c.Royalty)
		if err != nil {
			return fmt.Errorf("genesis royalty %s#%d: %w", c.Type, c.ID, err)
		}
		if err := s.Royalty.SetConfig(cfg); err != nil {
			return fmt.Errorf("genesis royalty %s#%d: %w", c.Type, c.ID, err)
		}
	}
	return nil
}

func royaltyConfig(collectibleType string, id uint64, r *config.GenesisRoyalty) (*royalty.Config, error) {
	cfg := &royalty.Config{Type: collectibleType, TokenID: id, CreatorCut: amount.Zero, PlatformCut: amount.Zero}
	for _, c := range r.Creators {
		addr, err := types.ParseAddress(c)
		if err != nil {
			return nil, err
		}
		cfg.Creators = append(cfg.Creators, addr)
	}
	var err error
	if r.CreatorCut != "" {
		if cfg.CreatorCut, err = amount.Parse(r.CreatorCut); err != nil {
			return nil, err
		}
	}
	if r.Platform != "" {
		if cfg.Platform, err = types.ParseAddress(r.Platform); err != nil {
			return nil, err
		}
	}
	if r.PlatformCut != "" {
		if cfg.PlatformCut, err = amount.Parse(r.PlatformCut); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

package royalty

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
	"nftmarket/native/receivers"
)

const (
	LabelCreator  = "Unique token creator cut"
	LabelPlatform = "Platform (asyncSaleFeesRecipient) cut"
)

// Config is the royalty configuration fixed when a collectible is minted.
// CreatorCut is shared equally between Creators; PlatformCut is owed to
// Platform.
type Config struct {
	Type        string
	TokenID     uint64
	Creators    []types.Address
	CreatorCut  decimal.Decimal
	Platform    types.Address
	PlatformCut decimal.Decimal
}

func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Creators = append([]types.Address(nil), c.Creators...)
	return &clone
}

// SanitizeConfig deduplicates creators, keeping first-seen order, and checks
// that the cuts are fractions summing to at most one.
func SanitizeConfig(c *Config) (*Config, error) {
	if c == nil {
		return nil, fmt.Errorf("royalty config required")
	}
	out := c.Clone()
	seen := make(map[types.Address]struct{}, len(c.Creators))
	out.Creators = out.Creators[:0]
	for _, creator := range c.Creators {
		if creator.IsZero() {
			return nil, fmt.Errorf("creator account required")
		}
		if _, dup := seen[creator]; dup {
			continue
		}
		seen[creator] = struct{}{}
		out.Creators = append(out.Creators, creator)
	}
	if !amount.IsFraction(out.CreatorCut) || !amount.IsFraction(out.PlatformCut) {
		return nil, fmt.Errorf("royalty cuts must be between 0 and 1")
	}
	if out.CreatorCut.Add(out.PlatformCut).GreaterThan(amount.One) {
		return nil, fmt.Errorf("royalty cuts exceed 1")
	}
	if out.CreatorCut.IsPositive() && len(out.Creators) == 0 {
		return nil, fmt.Errorf("creator cut requires at least one creator")
	}
	if out.PlatformCut.IsPositive() && out.Platform.IsZero() {
		return nil, fmt.Errorf("platform cut requires a platform account")
	}
	out.CreatorCut = amount.Truncate(out.CreatorCut)
	out.PlatformCut = amount.Truncate(out.PlatformCut)
	return out, nil
}

// LineItem is one payee of a royalty schedule. Receiver is the best endpoint
// found for the payee and may be unusable; Usable records the live check at
// resolution time.
type LineItem struct {
	Payee    types.Address
	Receiver receivers.ReceiverRef
	Usable   bool
	Cut      decimal.Decimal
	Label    string
}

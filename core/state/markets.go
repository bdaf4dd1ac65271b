package state

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
	"nftmarket/native/auction"
	"nftmarket/native/royalty"
)

type storedRoyaltyConfig struct {
	Type        string
	TokenID     uint64
	Creators    []types.Address
	CreatorCut  string
	Platform    types.Address
	PlatformCut string
}

func royaltyConfigKey(collectibleType string, id uint64) []byte {
	return compositeKey(royaltyConfigPrefix, []byte(collectibleType), idBytes(id))
}

func (m *Manager) RoyaltyConfigGet(collectibleType string, id uint64) (*royalty.Config, bool, error) {
	var stored storedRoyaltyConfig
	ok, err := m.get(royaltyConfigKey(collectibleType, id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	creatorCut, err := decimal.NewFromString(stored.CreatorCut)
	if err != nil {
		return nil, false, err
	}
	platformCut, err := decimal.NewFromString(stored.PlatformCut)
	if err != nil {
		return nil, false, err
	}
	return &royalty.Config{
		Type:        stored.Type,
		TokenID:     stored.TokenID,
		Creators:    stored.Creators,
		CreatorCut:  creatorCut,
		Platform:    stored.Platform,
		PlatformCut: platformCut,
	}, true, nil
}

func (m *Manager) RoyaltyConfigPut(cfg *royalty.Config) error {
	return m.put(royaltyConfigKey(cfg.Type, cfg.TokenID), storedRoyaltyConfig{
		Type:        cfg.Type,
		TokenID:     cfg.TokenID,
		Creators:    cfg.Creators,
		CreatorCut:  amount.Format(cfg.CreatorCut),
		Platform:    cfg.Platform,
		PlatformCut: amount.Format(cfg.PlatformCut),
	})
}

func escrowPayoutKey(owner types.Address, asset string) []byte {
	return compositeKey(escrowPayoutPrefix, owner[:], []byte(asset))
}

// EscrowPayoutGet returns the pending escrowed balance, zero when absent.
func (m *Manager) EscrowPayoutGet(owner types.Address, asset string) (decimal.Decimal, error) {
	var stored string
	ok, err := m.get(escrowPayoutKey(owner, asset), &stored)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return decimal.NewFromString(stored)
}

func (m *Manager) EscrowPayoutPut(owner types.Address, asset string, amt decimal.Decimal) error {
	if amt.IsZero() {
		return m.remove(escrowPayoutKey(owner, asset))
	}
	return m.put(escrowPayoutKey(owner, asset), amount.Format(amt))
}

func escrowNFTKey(owner types.Address, collectibleType string) []byte {
	return compositeKey(escrowNFTPrefix, owner[:], []byte(collectibleType))
}

func (m *Manager) EscrowCollectiblesGet(owner types.Address, collectibleType string) ([]uint64, error) {
	var ids []uint64
	if _, err := m.get(escrowNFTKey(owner, collectibleType), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (m *Manager) EscrowCollectiblesPut(owner types.Address, collectibleType string, ids []uint64) error {
	if len(ids) == 0 {
		return m.remove(escrowNFTKey(owner, collectibleType))
	}
	return m.put(escrowNFTKey(owner, collectibleType), ids)
}

type storedCustodyRef struct {
	Holder     types.Address
	Type       string
	TokenID    uint64
	CapturedAt uint64
}

type storedAuction struct {
	CollectibleType  string
	TokenID          uint64
	Status           uint8
	Kind             uint8
	Round            uint64
	Seller           types.Address
	Custody          []storedCustodyRef
	FeeRecipients    []types.Address
	FeePercentages   []string
	BiddingAsset     string
	HighestBid       string
	HighestBidder    types.Address
	BidAsset         string
	TargetKind       uint8
	TargetAccount    types.Address
	BidPeriodSeconds uint64
	AuctionEndTime   uint64
	MinPrice         string
	BuyNowPrice      string
	WhitelistedBuyer types.Address
	BidIncrease      string
	CreatedAt        uint64
	UpdatedAt        uint64
}

func auctionKey(collectibleType string, id uint64) []byte {
	return compositeKey(auctionPrefix, []byte(collectibleType), idBytes(id))
}

func toStoredAuction(a *auction.Auction) storedAuction {
	stored := storedAuction{
		CollectibleType:  a.CollectibleType,
		TokenID:          a.TokenID,
		Status:           uint8(a.Status),
		Kind:             uint8(a.Kind),
		Round:            a.Round,
		Seller:           a.Seller,
		FeeRecipients:    a.FeeRecipients,
		FeePercentages:   make([]string, len(a.FeePercentages)),
		BiddingAsset:     a.BiddingAsset,
		HighestBid:       amount.Encode(a.HighestBid),
		HighestBidder:    a.HighestBidder,
		BidAsset:         a.BidAsset,
		TargetKind:       uint8(a.Target.Kind),
		TargetAccount:    a.Target.Account,
		BidPeriodSeconds: uint64(a.BidPeriodSeconds),
		AuctionEndTime:   uint64(a.AuctionEndTime),
		MinPrice:         amount.Encode(a.MinPrice),
		BuyNowPrice:      amount.Encode(a.BuyNowPrice),
		WhitelistedBuyer: a.WhitelistedBuyer,
		BidIncrease:      amount.Format(a.BidIncrease),
		CreatedAt:        uint64(a.CreatedAt),
		UpdatedAt:        uint64(a.UpdatedAt),
	}
	for i, pct := range a.FeePercentages {
		stored.FeePercentages[i] = amount.Format(pct)
	}
	if ref := a.SellerWithdrawRef; ref != nil {
		stored.Custody = []storedCustodyRef{{Holder: ref.Holder, Type: ref.Type, TokenID: ref.TokenID, CapturedAt: uint64(ref.CapturedAt)}}
	}
	return stored
}

func fromStoredAuction(stored storedAuction) (*auction.Auction, error) {
	a := &auction.Auction{
		CollectibleType:  stored.CollectibleType,
		TokenID:          stored.TokenID,
		Status:           auction.Status(stored.Status),
		Kind:             auction.Kind(stored.Kind),
		Round:            stored.Round,
		Seller:           stored.Seller,
		FeeRecipients:    stored.FeeRecipients,
		BiddingAsset:     stored.BiddingAsset,
		HighestBidder:    stored.HighestBidder,
		BidAsset:         stored.BidAsset,
		Target:           auction.SettlementTarget{Kind: auction.TargetKind(stored.TargetKind), Account: stored.TargetAccount},
		BidPeriodSeconds: int64(stored.BidPeriodSeconds),
		AuctionEndTime:   int64(stored.AuctionEndTime),
		WhitelistedBuyer: stored.WhitelistedBuyer,
		CreatedAt:        int64(stored.CreatedAt),
		UpdatedAt:        int64(stored.UpdatedAt),
	}
	if !a.Status.Valid() || !a.Kind.Valid() {
		return nil, fmt.Errorf("auction %s#%d: corrupt status or kind", stored.CollectibleType, stored.TokenID)
	}
	var err error
	if a.HighestBid, err = amount.Decode(stored.HighestBid); err != nil {
		return nil, err
	}
	if a.MinPrice, err = amount.Decode(stored.MinPrice); err != nil {
		return nil, err
	}
	if a.BuyNowPrice, err = amount.Decode(stored.BuyNowPrice); err != nil {
		return nil, err
	}
	if a.BidIncrease, err = decimal.NewFromString(stored.BidIncrease); err != nil {
		return nil, err
	}
	a.FeePercentages = make([]decimal.Decimal, len(stored.FeePercentages))
	for i, raw := range stored.FeePercentages {
		if a.FeePercentages[i], err = decimal.NewFromString(raw); err != nil {
			return nil, err
		}
	}
	if len(stored.Custody) > 0 {
		ref := stored.Custody[0]
		a.SellerWithdrawRef = &auction.CustodyRef{Holder: ref.Holder, Type: ref.Type, TokenID: ref.TokenID, CapturedAt: int64(ref.CapturedAt)}
	}
	return a, nil
}

func (m *Manager) AuctionGet(collectibleType string, id uint64) (*auction.Auction, bool, error) {
	var stored storedAuction
	ok, err := m.get(auctionKey(collectibleType, id), &stored)
	if err != nil || !ok {
		return nil, false, err
	}
	a, err := fromStoredAuction(stored)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// AuctionPut stores the record and adds it to the auction index on first
// write.
func (m *Manager) AuctionPut(a *auction.Auction) error {
	if a == nil {
		return fmt.Errorf("auction: nil record")
	}
	key := auctionKey(a.CollectibleType, a.TokenID)
	existed, err := m.get(key, nil)
	if err != nil {
		return err
	}
	if err := m.put(key, toStoredAuction(a)); err != nil {
		return err
	}
	if existed {
		return nil
	}
	return m.appendUnique(auctionIndexKey, []byte(a.ID().String()))
}

// AuctionList returns every collectible with an auction record, in first-write
// order.
func (m *Manager) AuctionList() ([]types.CollectibleID, error) {
	entries, err := m.list(auctionIndexKey)
	if err != nil {
		return nil, err
	}
	out := make([]types.CollectibleID, 0, len(entries))
	for _, entry := range entries {
		id, err := types.ParseCollectibleID(string(entry))
		if err != nil {
			return nil, fmt.Errorf("auction index: %w", err)
		}
		out = append(out, id)
	}
	return out, nil
}

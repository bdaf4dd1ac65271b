package state

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"nftmarket/core/amount"
	"nftmarket/core/assets"
	"nftmarket/core/types"
	"nftmarket/native/auction"
	"nftmarket/native/bank"
	"nftmarket/native/royalty"
	"nftmarket/storage"
)

const (
	flow    = "A.0ae53cb6e3f42a79.FlowToken.Vault"
	artwork = "A.01cf0e2f2f715450.AsyncArtwork.NFT"
)

var (
	alice = types.ModuleAddress("alice")
	bob   = types.ModuleAddress("bob")
)

func newTestManager() *Manager {
	return NewManager(storage.NewMemDB())
}

func TestAppendUniqueDeduplicates(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.appendUnique([]byte("list"), []byte("a")))
	require.NoError(t, m.appendUnique([]byte("list"), []byte("b")))
	require.NoError(t, m.appendUnique([]byte("list"), []byte("a")))
	list, err := m.list([]byte("list"))
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, list)

	empty, err := m.list([]byte("missing"))
	require.NoError(t, err)
	require.NotNil(t, empty)
	require.Empty(t, empty)

	_, err = m.get(nil, nil)
	require.Error(t, err)
}

func TestRegistryRoundTrip(t *testing.T) {
	m := newTestManager()
	reg, err := m.RegistryGet()
	require.NoError(t, err)
	require.Zero(t, reg.Version)

	reg.Version = 3
	reg.Canonical = flow
	reg.Assets = []assets.AssetType{{ID: flow, ReceiverPath: "/public/flowTokenReceiver"}}
	reg.Collectibles = []assets.CollectibleType{{ID: artwork, CollectionPath: "/public/AsyncArtworkCollection"}}
	require.NoError(t, m.RegistryPut(reg))

	loaded, err := m.RegistryGet()
	require.NoError(t, err)
	require.Equal(t, reg, loaded)
}

func TestVaultRoundTrip(t *testing.T) {
	m := newTestManager()
	_, ok, err := m.VaultGet(alice, flow)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, m.VaultPut(&bank.Vault{Owner: alice, Asset: flow, Balance: amount.MustParse("12.5")}))
	v, ok, err := m.VaultGet(alice, flow)
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, v.Balance.Equal(amount.MustParse("12.5")))
}

func TestReceiverLinks(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.ReceiverLinkPut(alice, assets.GenericReceiverPath, true))
	linked, err := m.ReceiverLinked(alice, assets.GenericReceiverPath)
	require.NoError(t, err)
	require.True(t, linked)

	linked, err = m.ReceiverLinked(bob, assets.GenericReceiverPath)
	require.NoError(t, err)
	require.False(t, linked)

	require.NoError(t, m.ReceiverLinkPut(alice, assets.GenericReceiverPath, false))
	linked, err = m.ReceiverLinked(alice, assets.GenericReceiverPath)
	require.NoError(t, err)
	require.False(t, linked)
}

func TestEscrowSlots(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.EscrowPayoutPut(alice, flow, amount.MustParse("5.7")))
	pending, err := m.EscrowPayoutGet(alice, flow)
	require.NoError(t, err)
	require.Equal(t, "5.70000000", amount.Format(pending))

	require.NoError(t, m.EscrowPayoutPut(alice, flow, decimal.Zero))
	pending, err = m.EscrowPayoutGet(alice, flow)
	require.NoError(t, err)
	require.True(t, pending.IsZero())

	require.NoError(t, m.EscrowCollectiblesPut(bob, artwork, []uint64{4, 9}))
	ids, err := m.EscrowCollectiblesGet(bob, artwork)
	require.NoError(t, err)
	require.Equal(t, []uint64{4, 9}, ids)
	require.NoError(t, m.EscrowCollectiblesPut(bob, artwork, nil))
	ids, err = m.EscrowCollectiblesGet(bob, artwork)
	require.NoError(t, err)
	require.Empty(t, ids)
}

func TestRoyaltyConfigRoundTrip(t *testing.T) {
	m := newTestManager()
	cfg := &royalty.Config{
		Type:        artwork,
		TokenID:     1,
		Creators:    []types.Address{alice, bob},
		CreatorCut:  amount.MustParse("0.1"),
		Platform:    bob,
		PlatformCut: amount.MustParse("0.05"),
	}
	require.NoError(t, m.RoyaltyConfigPut(cfg))
	loaded, ok, err := m.RoyaltyConfigGet(artwork, 1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cfg.Creators, loaded.Creators)
	require.True(t, loaded.CreatorCut.Equal(cfg.CreatorCut))
	require.True(t, loaded.PlatformCut.Equal(cfg.PlatformCut))
}

func TestAuctionRoundTripAndIndex(t *testing.T) {
	m := newTestManager()
	a := &auction.Auction{
		CollectibleType:   artwork,
		TokenID:           7,
		Status:            auction.StatusActive,
		Kind:              auction.KindAuction,
		Round:             2,
		Seller:            alice,
		SellerWithdrawRef: &auction.CustodyRef{Holder: alice, Type: artwork, TokenID: 7, CapturedAt: 100},
		FeeRecipients:     []types.Address{bob},
		FeePercentages:    []decimal.Decimal{amount.MustParse("0.05")},
		BiddingAsset:      flow,
		HighestBid:        decimal.NewNullDecimal(amount.MustParse("4")),
		HighestBidder:     bob,
		BidAsset:          flow,
		Target:            auction.Explicit(alice),
		BidPeriodSeconds:  86400,
		AuctionEndTime:    86500,
		MinPrice:          decimal.NewNullDecimal(amount.MustParse("2")),
		BuyNowPrice:       decimal.NewNullDecimal(amount.MustParse("5")),
		BidIncrease:       amount.MustParse("0.1"),
		CreatedAt:         100,
		UpdatedAt:         100,
	}
	require.NoError(t, m.AuctionPut(a))
	require.NoError(t, m.AuctionPut(a))

	loaded, ok, err := m.AuctionGet(artwork, 7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, a.Status, loaded.Status)
	require.Equal(t, a.Target, loaded.Target)
	require.Equal(t, *a.SellerWithdrawRef, *loaded.SellerWithdrawRef)
	require.True(t, loaded.HighestBid.Valid)
	require.True(t, loaded.HighestBid.Decimal.Equal(a.HighestBid.Decimal))
	require.True(t, loaded.BuyNowPrice.Decimal.Equal(a.BuyNowPrice.Decimal))
	require.Len(t, loaded.FeePercentages, 1)
	require.True(t, loaded.FeePercentages[0].Equal(a.FeePercentages[0]))

	a.Status = auction.StatusSettled
	a.HighestBid = decimal.NullDecimal{}
	a.SellerWithdrawRef = nil
	require.NoError(t, m.AuctionPut(a))
	loaded, _, err = m.AuctionGet(artwork, 7)
	require.NoError(t, err)
	require.False(t, loaded.HighestBid.Valid)
	require.Nil(t, loaded.SellerWithdrawRef)

	ids, err := m.AuctionList()
	require.NoError(t, err)
	require.Equal(t, []types.CollectibleID{{Type: artwork, ID: 7}}, ids)
}

func TestClock(t *testing.T) {
	m := newTestManager()
	ts, err := m.ClockGet()
	require.NoError(t, err)
	require.Zero(t, ts)
	require.NoError(t, m.ClockPut(1700000000))
	ts, err = m.ClockGet()
	require.NoError(t, err)
	require.EqualValues(t, 1700000000, ts)
}

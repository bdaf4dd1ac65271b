package rpc

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/assets"
	"nftmarket/core/types"
	"nftmarket/native/auction"
	"nftmarket/native/royalty"
)

// decodeParams strictly decodes the first positional parameter into dst.
func decodeParams(raw json.RawMessage, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return invalidParams("invalid params: " + err.Error())
	}
	return nil
}

type FeeView struct {
	Recipient  types.Address `json:"recipient"`
	Percentage string        `json:"percentage"`
}

type CustodyView struct {
	Holder     types.Address `json:"holder"`
	CapturedAt int64         `json:"capturedAt"`
}

type AuctionView struct {
	Type              string        `json:"type"`
	TokenID           uint64        `json:"tokenId"`
	Status            string        `json:"status"`
	Kind              string        `json:"kind"`
	Round             uint64        `json:"round"`
	Seller            types.Address `json:"seller"`
	SellerWithdrawRef *CustodyView  `json:"sellerWithdrawRef,omitempty"`
	Fees              []FeeView     `json:"fees"`
	BiddingAsset      string        `json:"biddingAsset,omitempty"`
	HighestBid        string        `json:"highestBid,omitempty"`
	HighestBidder     types.Address `json:"highestBidder"`
	BidAsset          string        `json:"bidAsset,omitempty"`
	Recipient         types.Address `json:"recipient"`
	BidPeriodSeconds  int64         `json:"bidPeriodSeconds"`
	AuctionEndTime    int64         `json:"auctionEndTime"`
	MinPrice          string        `json:"minPrice,omitempty"`
	BuyNowPrice       string        `json:"buyNowPrice,omitempty"`
	WhitelistedBuyer  types.Address `json:"whitelistedBuyer"`
	BidIncrease       string        `json:"bidIncrease"`
	CreatedAt         int64         `json:"createdAt"`
	UpdatedAt         int64         `json:"updatedAt"`
}

func auctionView(a *auction.Auction) *AuctionView {
	if a == nil {
		return nil
	}
	v := &AuctionView{
		Type:             a.CollectibleType,
		TokenID:          a.TokenID,
		Status:           a.Status.String(),
		Kind:             a.Kind.String(),
		Round:            a.Round,
		Seller:           a.Seller,
		Fees:             make([]FeeView, 0, len(a.FeeRecipients)),
		BiddingAsset:     a.BiddingAsset,
		HighestBid:       amount.FormatOptional(a.HighestBid),
		HighestBidder:    a.HighestBidder,
		BidAsset:         a.BidAsset,
		BidPeriodSeconds: a.BidPeriodSeconds,
		AuctionEndTime:   a.AuctionEndTime,
		MinPrice:         amount.FormatOptional(a.MinPrice),
		BuyNowPrice:      amount.FormatOptional(a.BuyNowPrice),
		WhitelistedBuyer: a.WhitelistedBuyer,
		BidIncrease:      amount.Format(a.BidIncrease),
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
	if a.HasBid() {
		v.Recipient = a.Target.Recipient(a.HighestBidder)
	}
	if ref := a.SellerWithdrawRef; ref != nil {
		v.SellerWithdrawRef = &CustodyView{Holder: ref.Holder, CapturedAt: ref.CapturedAt}
	}
	for i, r := range a.FeeRecipients {
		v.Fees = append(v.Fees, FeeView{Recipient: r, Percentage: amount.Format(a.FeePercentages[i])})
	}
	return v
}

func auctionViews(list []*auction.Auction) []*AuctionView {
	out := make([]*AuctionView, 0, len(list))
	for _, a := range list {
		out = append(out, auctionView(a))
	}
	return out
}

func parseStatus(s string) (*auction.Status, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return nil, nil
	}
	for st := auction.StatusNone; st <= auction.StatusWithdrawn; st++ {
		if st.String() == s {
			status := st
			return &status, nil
		}
	}
	return nil, invalidParams("unknown auction status " + s)
}

type LineItemView struct {
	Payee    types.Address `json:"payee"`
	Receiver string        `json:"receiver"`
	Generic  bool          `json:"generic"`
	Usable   bool          `json:"usable"`
	Cut      string        `json:"cut"`
	Label    string        `json:"label"`
}

func lineItemViews(items []royalty.LineItem) []LineItemView {
	out := make([]LineItemView, 0, len(items))
	for _, item := range items {
		out = append(out, LineItemView{
			Payee:    item.Payee,
			Receiver: item.Receiver.Path,
			Generic:  item.Receiver.Generic,
			Usable:   item.Usable,
			Cut:      amount.Format(item.Cut),
			Label:    item.Label,
		})
	}
	return out
}

type RoyaltyConfigView struct {
	Creators    []types.Address `json:"creators"`
	CreatorCut  string          `json:"creatorCut"`
	Platform    types.Address   `json:"platform"`
	PlatformCut string          `json:"platformCut"`
}

func royaltyConfigView(cfg *royalty.Config) *RoyaltyConfigView {
	if cfg == nil {
		return nil
	}
	return &RoyaltyConfigView{
		Creators:    append([]types.Address{}, cfg.Creators...),
		CreatorCut:  amount.Format(cfg.CreatorCut),
		Platform:    cfg.Platform,
		PlatformCut: amount.Format(cfg.PlatformCut),
	}
}

type AssetView struct {
	ID           string `json:"id"`
	ReceiverPath string `json:"receiverPath"`
}

type CollectibleTypeView struct {
	ID             string `json:"id"`
	CollectionPath string `json:"collectionPath"`
}

type RegistryView struct {
	Version          uint64                `json:"version"`
	Canonical        string                `json:"canonical"`
	Assets           []AssetView           `json:"assets"`
	CollectibleTypes []CollectibleTypeView `json:"collectibleTypes"`
}

func registryView(reg *assets.Registry) *RegistryView {
	if reg == nil {
		return nil
	}
	v := &RegistryView{
		Version:          reg.Version,
		Canonical:        reg.Canonical,
		Assets:           make([]AssetView, 0, len(reg.Assets)),
		CollectibleTypes: make([]CollectibleTypeView, 0, len(reg.Collectibles)),
	}
	for _, a := range reg.Assets {
		v.Assets = append(v.Assets, AssetView{ID: a.ID, ReceiverPath: a.ReceiverPath})
	}
	for _, ct := range reg.Collectibles {
		v.CollectibleTypes = append(v.CollectibleTypes, CollectibleTypeView{ID: ct.ID, CollectionPath: ct.CollectionPath})
	}
	return v
}

type amountView struct {
	Amount string `json:"amount"`
}

func formatAmount(d decimal.Decimal) amountView { return amountView{Amount: amount.Format(d)} }

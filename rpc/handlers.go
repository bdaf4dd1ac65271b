package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"nftmarket/core/assets"
	"nftmarket/core/types"
	"nftmarket/indexer"
	"nftmarket/native/auction"
	"nftmarket/native/royalty"
)

// typed decodes the request parameters into P before calling fn.
func typed[P any](fn func(ctx context.Context, caller types.Address, p P) (interface{}, error)) handlerFunc {
	return func(ctx context.Context, caller types.Address, raw json.RawMessage) (interface{}, error) {
		var p P
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return fn(ctx, caller, p)
	}
}

func (s *Server) routes() map[string]method {
	return map[string]method{
		"auction_createSale":             {auth: true, handle: typed(s.auctionCreateSale)},
		"auction_createDefault":          {auth: true, handle: typed(s.auctionCreateDefault)},
		"auction_create":                 {auth: true, handle: typed(s.auctionCreate)},
		"auction_bid":                    {auth: true, handle: typed(s.auctionBid)},
		"auction_customBid":              {auth: true, handle: typed(s.auctionCustomBid)},
		"auction_settle":                 {auth: true, handle: typed(s.auctionSettle)},
		"auction_takeHighestBid":         {auth: true, handle: typed(s.auctionTakeHighestBid)},
		"auction_withdraw":               {auth: true, handle: typed(s.auctionWithdraw)},
		"auction_withdrawBid":            {auth: true, handle: typed(s.auctionWithdrawBid)},
		"auction_updateBuyNowPrice":      {auth: true, handle: typed(s.auctionUpdateBuyNowPrice)},
		"auction_updateMinimumPrice":     {auth: true, handle: typed(s.auctionUpdateMinimumPrice)},
		"auction_updateWhitelistedBuyer": {auth: true, handle: typed(s.auctionUpdateWhitelistedBuyer)},
		"auction_get":                    {handle: typed(s.auctionGet)},
		"auction_list":                   {handle: typed(s.auctionList)},

		"escrow_claimPayout": {auth: true, handle: typed(s.escrowClaimPayout)},
		"escrow_claimNFTs":   {auth: true, handle: typed(s.escrowClaimNFTs)},
		"escrow_pending":     {handle: typed(s.escrowPending)},

		"royalty_get": {handle: typed(s.royaltyGet)},

		"account_setup":               {auth: true, handle: typed(s.accountSetup)},
		"account_link":                {auth: true, handle: typed(s.accountLink)},
		"account_unlink":              {auth: true, handle: typed(s.accountUnlink)},
		"account_transfer":            {auth: true, handle: typed(s.accountTransfer)},
		"account_transferCollectible": {auth: true, handle: typed(s.accountTransferCollectible)},
		"account_balance":             {handle: typed(s.accountBalance)},
		"account_collectibles":        {handle: typed(s.accountCollectibles)},

		"admin_mint":               {auth: true, handle: typed(s.adminMint)},
		"admin_fund":               {auth: true, handle: typed(s.adminFund)},
		"admin_addAsset":           {auth: true, handle: typed(s.adminAddAsset)},
		"admin_removeAsset":        {auth: true, handle: typed(s.adminRemoveAsset)},
		"admin_setCanonical":       {auth: true, handle: typed(s.adminSetCanonical)},
		"admin_addCollectibleType": {auth: true, handle: typed(s.adminAddCollectibleType)},

		"registry_get": {handle: typed(s.registryGet)},
		"events_list":  {handle: typed(s.eventsList)},
	}
}

// --- auctions ---

type collectibleParams struct {
	Type    string `json:"type"`
	TokenID uint64 `json:"tokenId"`
}

type saleParams struct {
	Type             string            `json:"type"`
	TokenID          uint64            `json:"tokenId"`
	BiddingAsset     string            `json:"biddingAsset"`
	BuyNowPrice      decimal.Decimal   `json:"buyNowPrice"`
	WhitelistedBuyer types.Address     `json:"whitelistedBuyer"`
	FeeRecipients    []types.Address   `json:"feeRecipients"`
	FeePercentages   []decimal.Decimal `json:"feePercentages"`
}

type auctionParams struct {
	Type             string            `json:"type"`
	TokenID          uint64            `json:"tokenId"`
	BiddingAsset     string            `json:"biddingAsset"`
	MinPrice         decimal.Decimal   `json:"minPrice"`
	BuyNowPrice      decimal.Decimal   `json:"buyNowPrice"`
	FeeRecipients    []types.Address   `json:"feeRecipients"`
	FeePercentages   []decimal.Decimal `json:"feePercentages"`
	BidPeriodSeconds int64             `json:"bidPeriodSeconds"`
	BidIncrease      decimal.Decimal   `json:"bidIncrease"`
}

func (p auctionParams) request() auction.AuctionRequest {
	return auction.AuctionRequest{
		CollectibleType:  p.Type,
		TokenID:          p.TokenID,
		BiddingAsset:     p.BiddingAsset,
		MinPrice:         p.MinPrice,
		BuyNowPrice:      p.BuyNowPrice,
		FeeRecipients:    p.FeeRecipients,
		FeePercentages:   p.FeePercentages,
		BidPeriodSeconds: p.BidPeriodSeconds,
		BidIncrease:      p.BidIncrease,
	}
}

type bidParams struct {
	Type      string          `json:"type"`
	TokenID   uint64          `json:"tokenId"`
	Asset     string          `json:"asset"`
	Amount    decimal.Decimal `json:"amount"`
	Recipient types.Address   `json:"recipient"`
}

type priceParams struct {
	Type    string          `json:"type"`
	TokenID uint64          `json:"tokenId"`
	Price   decimal.Decimal `json:"price"`
}

type buyerParams struct {
	Type    string        `json:"type"`
	TokenID uint64        `json:"tokenId"`
	Buyer   types.Address `json:"buyer"`
}

type listParams struct {
	Status string `json:"status"`
}

func auctionResult(a *auction.Auction, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return auctionView(a), nil
}

func (s *Server) auctionCreateSale(_ context.Context, caller types.Address, p saleParams) (interface{}, error) {
	return auctionResult(s.market.CreateSale(caller, auction.SaleRequest{
		CollectibleType:  p.Type,
		TokenID:          p.TokenID,
		BiddingAsset:     p.BiddingAsset,
		BuyNowPrice:      p.BuyNowPrice,
		WhitelistedBuyer: p.WhitelistedBuyer,
		FeeRecipients:    p.FeeRecipients,
		FeePercentages:   p.FeePercentages,
	}))
}

func (s *Server) auctionCreateDefault(_ context.Context, caller types.Address, p auctionParams) (interface{}, error) {
	return auctionResult(s.market.CreateDefault(caller, p.request()))
}

func (s *Server) auctionCreate(_ context.Context, caller types.Address, p auctionParams) (interface{}, error) {
	return auctionResult(s.market.Create(caller, p.request()))
}

func (s *Server) auctionBid(_ context.Context, caller types.Address, p bidParams) (interface{}, error) {
	if !p.Recipient.IsZero() {
		return nil, invalidParams("recipient is only accepted by auction_customBid")
	}
	return auctionResult(s.market.Bid(caller, p.Type, p.TokenID, p.Asset, p.Amount))
}

func (s *Server) auctionCustomBid(_ context.Context, caller types.Address, p bidParams) (interface{}, error) {
	return auctionResult(s.market.CustomBid(caller, p.Type, p.TokenID, p.Asset, p.Amount, p.Recipient))
}

func (s *Server) auctionSettle(_ context.Context, caller types.Address, p collectibleParams) (interface{}, error) {
	return auctionResult(s.market.Settle(caller, p.Type, p.TokenID))
}

func (s *Server) auctionTakeHighestBid(_ context.Context, caller types.Address, p collectibleParams) (interface{}, error) {
	return auctionResult(s.market.TakeHighestBid(caller, p.Type, p.TokenID))
}

func (s *Server) auctionWithdraw(_ context.Context, caller types.Address, p collectibleParams) (interface{}, error) {
	return auctionResult(s.market.Withdraw(caller, p.Type, p.TokenID))
}

func (s *Server) auctionWithdrawBid(_ context.Context, caller types.Address, p collectibleParams) (interface{}, error) {
	return auctionResult(s.market.WithdrawBid(caller, p.Type, p.TokenID))
}

func (s *Server) auctionUpdateBuyNowPrice(_ context.Context, caller types.Address, p priceParams) (interface{}, error) {
	return auctionResult(s.market.UpdateBuyNowPrice(caller, p.Type, p.TokenID, p.Price))
}

func (s *Server) auctionUpdateMinimumPrice(_ context.Context, caller types.Address, p priceParams) (interface{}, error) {
	return auctionResult(s.market.UpdateMinimumPrice(caller, p.Type, p.TokenID, p.Price))
}

func (s *Server) auctionUpdateWhitelistedBuyer(_ context.Context, caller types.Address, p buyerParams) (interface{}, error) {
	return auctionResult(s.market.UpdateWhitelistedBuyer(caller, p.Type, p.TokenID, p.Buyer))
}

func (s *Server) auctionGet(_ context.Context, _ types.Address, p collectibleParams) (interface{}, error) {
	return auctionResult(s.market.Auction(p.Type, p.TokenID))
}

func (s *Server) auctionList(_ context.Context, _ types.Address, p listParams) (interface{}, error) {
	status, err := parseStatus(p.Status)
	if err != nil {
		return nil, err
	}
	list, err := s.market.Auctions(status)
	if err != nil {
		return nil, err
	}
	return auctionViews(list), nil
}

// --- escrow ---

type assetParams struct {
	Asset string `json:"asset"`
}

type typeParams struct {
	Type string `json:"type"`
}

type pendingParams struct {
	Account types.Address `json:"account"`
	Asset   string        `json:"asset"`
	Type    string        `json:"type"`
}

type PendingView struct {
	Account      types.Address `json:"account"`
	Asset        string        `json:"asset,omitempty"`
	Payout       string        `json:"payout,omitempty"`
	Type         string        `json:"type,omitempty"`
	Collectibles []uint64      `json:"collectibles,omitempty"`
}

type ClaimedCollectiblesView struct {
	Type     string   `json:"type"`
	TokenIDs []uint64 `json:"tokenIds"`
}

func (s *Server) escrowClaimPayout(_ context.Context, caller types.Address, p assetParams) (interface{}, error) {
	claimed, err := s.market.ClaimPayout(caller, p.Asset)
	if err != nil {
		return nil, err
	}
	return formatAmount(claimed), nil
}

func (s *Server) escrowClaimNFTs(_ context.Context, caller types.Address, p typeParams) (interface{}, error) {
	ids, err := s.market.ClaimNFTs(caller, p.Type)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ClaimedCollectiblesView{Type: p.Type, TokenIDs: ids}, nil
}

func (s *Server) escrowPending(_ context.Context, _ types.Address, p pendingParams) (interface{}, error) {
	if p.Account.IsZero() {
		return nil, invalidParams("account required")
	}
	if p.Asset == "" && p.Type == "" {
		return nil, invalidParams("asset or type required")
	}
	view := PendingView{Account: p.Account, Asset: p.Asset, Type: p.Type}
	if p.Asset != "" {
		payout, err := s.market.PendingPayout(p.Account, p.Asset)
		if err != nil {
			return nil, err
		}
		view.Payout = formatAmount(payout).Amount
	}
	if p.Type != "" {
		ids, err := s.market.PendingCollectibles(p.Account, p.Type)
		if err != nil {
			return nil, err
		}
		view.Collectibles = ids
	}
	return view, nil
}

// --- royalties ---

type royaltyParams struct {
	Owner   types.Address `json:"owner"`
	Type    string        `json:"type"`
	TokenID uint64        `json:"tokenId"`
}

type RoyaltyView struct {
	Config    *RoyaltyConfigView `json:"config"`
	LineItems []LineItemView     `json:"lineItems"`
}

func (s *Server) royaltyGet(_ context.Context, _ types.Address, p royaltyParams) (interface{}, error) {
	cfg, err := s.market.RoyaltyConfig(p.Type, p.TokenID)
	if err != nil {
		return nil, err
	}
	items, err := s.market.Royalty(p.Owner, p.Type, p.TokenID)
	if err != nil {
		return nil, err
	}
	return RoyaltyView{Config: royaltyConfigView(cfg), LineItems: lineItemViews(items)}, nil
}

// --- accounts ---

type setupParams struct {
	Assets           []string `json:"assets"`
	CollectibleTypes []string `json:"collectibleTypes"`
}

type pathParams struct {
	Path string `json:"path"`
}

type transferParams struct {
	To     types.Address   `json:"to"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

type transferCollectibleParams struct {
	To      types.Address `json:"to"`
	Type    string        `json:"type"`
	TokenID uint64        `json:"tokenId"`
}

type balanceParams struct {
	Account types.Address `json:"account"`
	Asset   string        `json:"asset"`
}

type collectiblesParams struct {
	Account types.Address `json:"account"`
	Type    string        `json:"type"`
}

type okView struct {
	OK bool `json:"ok"`
}

func okResult(err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return okView{OK: true}, nil
}

func (s *Server) accountSetup(_ context.Context, caller types.Address, p setupParams) (interface{}, error) {
	return okResult(s.market.Setup(caller, p.Assets, p.CollectibleTypes))
}

func (s *Server) accountLink(_ context.Context, caller types.Address, p pathParams) (interface{}, error) {
	return okResult(s.market.Link(caller, p.Path))
}

func (s *Server) accountUnlink(_ context.Context, caller types.Address, p pathParams) (interface{}, error) {
	return okResult(s.market.Unlink(caller, p.Path))
}

func (s *Server) accountTransfer(_ context.Context, caller types.Address, p transferParams) (interface{}, error) {
	return okResult(s.market.Transfer(caller, p.To, p.Asset, p.Amount))
}

func (s *Server) accountTransferCollectible(_ context.Context, caller types.Address, p transferCollectibleParams) (interface{}, error) {
	return okResult(s.market.TransferCollectible(caller, p.To, p.Type, p.TokenID))
}

func (s *Server) accountBalance(_ context.Context, _ types.Address, p balanceParams) (interface{}, error) {
	bal, err := s.market.Balance(p.Account, p.Asset)
	if err != nil {
		return nil, err
	}
	return formatAmount(bal), nil
}

func (s *Server) accountCollectibles(_ context.Context, _ types.Address, p collectiblesParams) (interface{}, error) {
	ids, err := s.market.Collectibles(p.Account, p.Type)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ClaimedCollectiblesView{Type: p.Type, TokenIDs: ids}, nil
}

// --- admin ---

type royaltyConfigParams struct {
	Creators    []types.Address `json:"creators"`
	CreatorCut  decimal.Decimal `json:"creatorCut"`
	Platform    types.Address   `json:"platform"`
	PlatformCut decimal.Decimal `json:"platformCut"`
}

type mintParams struct {
	Owner   types.Address        `json:"owner"`
	Type    string               `json:"type"`
	TokenID uint64               `json:"tokenId"`
	Royalty *royaltyConfigParams `json:"royalty"`
}

type fundParams struct {
	To     types.Address   `json:"to"`
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

type addAssetParams struct {
	ID           string `json:"id"`
	ReceiverPath string `json:"receiverPath"`
}

type assetIDParams struct {
	ID string `json:"id"`
}

type addCollectibleTypeParams struct {
	ID             string `json:"id"`
	CollectionPath string `json:"collectionPath"`
}

func registryResult(reg *assets.Registry, err error) (interface{}, error) {
	if err != nil {
		return nil, err
	}
	return registryView(reg), nil
}

func (s *Server) adminMint(_ context.Context, caller types.Address, p mintParams) (interface{}, error) {
	var cfg *royalty.Config
	if p.Royalty != nil {
		cfg = &royalty.Config{
			Type:        p.Type,
			TokenID:     p.TokenID,
			Creators:    p.Royalty.Creators,
			CreatorCut:  p.Royalty.CreatorCut,
			Platform:    p.Royalty.Platform,
			PlatformCut: p.Royalty.PlatformCut,
		}
	}
	return okResult(s.market.Mint(caller, p.Owner, p.Type, p.TokenID, cfg))
}

func (s *Server) adminFund(_ context.Context, caller types.Address, p fundParams) (interface{}, error) {
	return okResult(s.market.Fund(caller, p.To, p.Asset, p.Amount))
}

func (s *Server) adminAddAsset(_ context.Context, caller types.Address, p addAssetParams) (interface{}, error) {
	return registryResult(s.market.AddAsset(caller, assets.AssetType{ID: p.ID, ReceiverPath: p.ReceiverPath}))
}

func (s *Server) adminRemoveAsset(_ context.Context, caller types.Address, p assetIDParams) (interface{}, error) {
	return registryResult(s.market.RemoveAsset(caller, p.ID))
}

func (s *Server) adminSetCanonical(_ context.Context, caller types.Address, p assetIDParams) (interface{}, error) {
	return registryResult(s.market.SetCanonical(caller, p.ID))
}

func (s *Server) adminAddCollectibleType(_ context.Context, caller types.Address, p addCollectibleTypeParams) (interface{}, error) {
	return registryResult(s.market.AddCollectibleType(caller, assets.CollectibleType{ID: p.ID, CollectionPath: p.CollectionPath}))
}

// --- registry and events ---

type emptyParams struct{}

type eventsParams struct {
	Type  string `json:"type"`
	After uint64 `json:"after"`
	Limit int    `json:"limit"`
}

func (s *Server) registryGet(_ context.Context, _ types.Address, _ emptyParams) (interface{}, error) {
	return registryResult(s.market.Registry())
}

func (s *Server) eventsList(ctx context.Context, _ types.Address, p eventsParams) (interface{}, error) {
	if s.journal == nil {
		return nil, &RPCError{Code: codeServerError, Message: "event journal disabled"}
	}
	if p.Limit < 0 {
		return nil, invalidParams(fmt.Sprintf("limit must be non-negative, got %d", p.Limit))
	}
	entries, err := s.journal.List(ctx, indexer.Query{Type: p.Type, After: p.After, Limit: p.Limit})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []indexer.Entry{}
	}
	return entries, nil
}

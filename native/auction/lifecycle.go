package auction

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/errors"
	"nftmarket/core/types"
)

type createParams struct {
	kind             Kind
	collectibleType  string
	tokenID          uint64
	biddingAsset     string
	feeRecipients    []types.Address
	feePercentages   []decimal.Decimal
	minPrice         decimal.NullDecimal
	buyNowPrice      decimal.NullDecimal
	whitelistedBuyer types.Address
	bidPeriodSeconds int64
	bidIncrease      decimal.Decimal
}

// CreateSale opens a fixed-price sale. Offers below the buy-now price are held
// until the seller takes one or a buyer meets the price.
func (e *Engine) CreateSale(caller types.Address, req SaleRequest) (*Auction, error) {
	if !req.BuyNowPrice.IsPositive() || !exact(req.BuyNowPrice) {
		return nil, errInvalidPrice
	}
	return e.create(caller, createParams{
		kind:             KindFixedPrice,
		collectibleType:  req.CollectibleType,
		tokenID:          req.TokenID,
		biddingAsset:     req.BiddingAsset,
		feeRecipients:    req.FeeRecipients,
		feePercentages:   req.FeePercentages,
		buyNowPrice:      decimal.NewNullDecimal(req.BuyNowPrice),
		whitelistedBuyer: req.WhitelistedBuyer,
		bidIncrease:      e.params.DefaultBidIncrease,
	})
}

// CreateDefault opens an auction using the module's default bid period and
// bid increase.
func (e *Engine) CreateDefault(caller types.Address, req AuctionRequest) (*Auction, error) {
	req.BidPeriodSeconds = e.params.DefaultBidPeriodSeconds
	req.BidIncrease = e.params.DefaultBidIncrease
	return e.createAuction(caller, req)
}

// Create opens an auction with an explicit bid period and bid increase.
func (e *Engine) Create(caller types.Address, req AuctionRequest) (*Auction, error) {
	if req.BidPeriodSeconds <= 0 {
		return nil, errInvalidPeriod
	}
	if req.BidIncrease.LessThan(e.params.MinBidIncrease) {
		return nil, errBidIncreaseFloor
	}
	return e.createAuction(caller, req)
}

func (e *Engine) createAuction(caller types.Address, req AuctionRequest) (*Auction, error) {
	if !req.MinPrice.IsPositive() || !req.BuyNowPrice.IsPositive() {
		return nil, errInvalidPrice
	}
	if !exact(req.MinPrice) || !exact(req.BuyNowPrice) {
		return nil, errInvalidPrice
	}
	minPrice := decimal.NewNullDecimal(req.MinPrice)
	buyNow := decimal.NewNullDecimal(req.BuyNowPrice)
	if err := e.checkRatio(minPrice, buyNow); err != nil {
		return nil, err
	}
	return e.create(caller, createParams{
		kind:             KindAuction,
		collectibleType:  req.CollectibleType,
		tokenID:          req.TokenID,
		biddingAsset:     req.BiddingAsset,
		feeRecipients:    req.FeeRecipients,
		feePercentages:   req.FeePercentages,
		minPrice:         minPrice,
		buyNowPrice:      buyNow,
		bidPeriodSeconds: req.BidPeriodSeconds,
		bidIncrease:      amount.Truncate(req.BidIncrease),
	})
}

// exact reports whether d fits the 8-place ledger precision unchanged.
func exact(d decimal.Decimal) bool { return d.Equal(amount.Truncate(d)) }

func (e *Engine) create(caller types.Address, p createParams) (*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !e.registry.IsCollectibleType(p.collectibleType) {
		return nil, errUnknownType
	}
	if !e.registry.IsSupported(p.biddingAsset) {
		return nil, errUnsupportedAsset
	}
	owns, err := e.custody.Owns(caller, p.collectibleType, p.tokenID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, errNotOwner
	}
	if err := ValidateFeeSchedule(p.feeRecipients, p.feePercentages); err != nil {
		return nil, errors.Kind(errors.ErrValidation, errInvalidFees.Error()+": "+err.Error())
	}
	for _, pct := range p.feePercentages {
		if !exact(pct) {
			return nil, errors.Kind(errors.ErrValidation, errInvalidFees.Error()+": fee fraction exceeds ledger precision")
		}
	}
	existing, err := e.load(p.collectibleType, p.tokenID)
	if err != nil {
		return nil, err
	}
	if existing.Status == StatusActive {
		return nil, errDuplicateAuction
	}
	now := e.now()
	a := &Auction{
		CollectibleType:  p.collectibleType,
		TokenID:          p.tokenID,
		Status:           StatusActive,
		Kind:             p.kind,
		Round:            existing.Round + 1,
		Seller:           caller,
		FeeRecipients:    append([]types.Address(nil), p.feeRecipients...),
		FeePercentages:   append([]decimal.Decimal(nil), p.feePercentages...),
		BiddingAsset:     p.biddingAsset,
		Target:           SameAsBidder(),
		BidPeriodSeconds: p.bidPeriodSeconds,
		MinPrice:         p.minPrice,
		BuyNowPrice:      p.buyNowPrice,
		WhitelistedBuyer: p.whitelistedBuyer,
		BidIncrease:      p.bidIncrease,
		CreatedAt:        now,
	}
	if existing.HasBid() {
		a.HighestBid = existing.HighestBid
		a.HighestBidder = existing.HighestBidder
		a.BidAsset = existing.BidAsset
		a.Target = existing.Target
	}
	e.emit(newCreatedEvent(a))
	if a.HasBid() {
		if err := e.reevaluate(a); err != nil {
			return nil, err
		}
	} else if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// reevaluate applies the rules of a fresh bid to a bid carried over from
// before the sale existed.
func (e *Engine) reevaluate(a *Auction) error {
	rule := e.eligible(a, a.HighestBidder, a.HighestBid.Decimal)
	if rule != nil && errors.KindOf(rule) == nil {
		return rule
	}
	if a.BidAsset != a.BiddingAsset || rule != nil {
		if err := e.refund(a, reasonIneligible); err != nil {
			return err
		}
		a.clearBid()
		return e.store(a)
	}
	if a.BuyNowPrice.Valid && a.HighestBid.Decimal.GreaterThanOrEqual(a.BuyNowPrice.Decimal) {
		e.emit(newTriggerEvent(EventTypeBoughtNow, a, a.HighestBidder))
		return e.settle(a, reasonBoughtNow)
	}
	if e.qualifies(a, a.HighestBid.Decimal) {
		if err := e.commit(a); err != nil {
			return err
		}
	}
	return e.store(a)
}

// eligible returns the rule a bidder would break by holding the high bid.
// Storage failures come back unclassified.
func (e *Engine) eligible(a *Auction, bidder types.Address, amt decimal.Decimal) error {
	if bidder == a.Seller {
		return errSellerBid
	}
	holds, err := e.custody.Owns(bidder, a.CollectibleType, a.TokenID)
	if err != nil {
		return err
	}
	if holds {
		return errHolderBid
	}
	if !a.WhitelistedBuyer.IsZero() {
		if bidder != a.WhitelistedBuyer {
			return errNotWhitelisted
		}
		if !a.BuyNowPrice.Valid || amt.LessThan(a.BuyNowPrice.Decimal) {
			return errWhitelistPrice
		}
	}
	return nil
}

func (e *Engine) qualifies(a *Auction, amt decimal.Decimal) bool {
	return a.Kind == KindAuction && a.MinPrice.Valid && amt.GreaterThanOrEqual(a.MinPrice.Decimal)
}

// commit starts or refreshes the countdown and captures the seller's custody.
func (e *Engine) commit(a *Auction) error {
	now := e.now()
	if !a.Committed() {
		owns, err := e.custody.Owns(a.Seller, a.CollectibleType, a.TokenID)
		if err != nil {
			return err
		}
		if !owns {
			return errCustodyLost
		}
		a.SellerWithdrawRef = &CustodyRef{Holder: a.Seller, Type: a.CollectibleType, TokenID: a.TokenID, CapturedAt: now}
	}
	a.AuctionEndTime = now + a.BidPeriodSeconds
	return nil
}

// refund returns the held bid to its bidder, through escrow when the bidder
// cannot receive it.
func (e *Engine) refund(a *Auction, reason string) error {
	if !a.HasBid() {
		return nil
	}
	d, err := e.deliveries.Deliver(VaultAddress, a.HighestBidder, a.BidAsset, a.HighestBid.Decimal)
	if err != nil {
		return err
	}
	eventType := EventTypeBidRefunded
	if reason == "" {
		eventType = EventTypeBidWithdrawn
	}
	e.emit(newRefundEvent(eventType, a, d, reason))
	return nil
}

// Bid places a bid whose collectible goes to the bidder.
func (e *Engine) Bid(caller types.Address, collectibleType string, id uint64, asset string, amt decimal.Decimal) (*Auction, error) {
	return e.placeBid(caller, collectibleType, id, asset, amt, SameAsBidder())
}

// CustomBid places a bid whose collectible goes to recipient.
func (e *Engine) CustomBid(caller types.Address, collectibleType string, id uint64, asset string, amt decimal.Decimal, recipient types.Address) (*Auction, error) {
	if recipient.IsZero() {
		return nil, errInvalidRecipient
	}
	return e.placeBid(caller, collectibleType, id, asset, amt, Explicit(recipient))
}

func (e *Engine) placeBid(caller types.Address, collectibleType string, id uint64, asset string, amt decimal.Decimal, target SettlementTarget) (*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !amt.IsPositive() || !amt.Equal(amount.Truncate(amt)) {
		return nil, errInvalidAmount
	}
	if !e.registry.IsSupported(asset) {
		return nil, errUnsupportedAsset
	}
	if !e.registry.IsCollectibleType(collectibleType) {
		return nil, errUnknownType
	}
	a, err := e.load(collectibleType, id)
	if err != nil {
		return nil, err
	}
	increase := a.BidIncrease
	meetsBuyNow := false
	if a.Status == StatusActive {
		if asset != a.BiddingAsset {
			return nil, errWrongAsset
		}
		if a.Committed() && e.now() >= a.AuctionEndTime {
			return nil, errAuctionEnded
		}
		meetsBuyNow = a.BuyNowPrice.Valid && amt.GreaterThanOrEqual(a.BuyNowPrice.Decimal)
	} else {
		if asset != e.registry.Canonical() {
			return nil, errEarlyBidAsset
		}
		increase = e.params.DefaultBidIncrease
	}
	if err := e.eligible(a, caller, amt); err != nil {
		return nil, err
	}
	if a.HasBid() && !meetsBuyNow {
		threshold := a.HighestBid.Decimal.Mul(amount.One.Add(increase))
		if !amt.GreaterThan(threshold) {
			return nil, errBidTooLow
		}
	}
	if err := e.funds.SetupVault(VaultAddress, asset); err != nil {
		return nil, err
	}
	if err := e.funds.Transfer(caller, VaultAddress, asset, amt); err != nil {
		return nil, err
	}
	if err := e.refund(a, reasonOutbid); err != nil {
		return nil, err
	}
	a.HighestBid = decimal.NewNullDecimal(amt)
	a.HighestBidder = caller
	a.BidAsset = asset
	a.Target = target
	if a.Status == StatusActive && !meetsBuyNow && e.qualifies(a, amt) {
		if err := e.commit(a); err != nil {
			return nil, err
		}
	}
	e.emit(newBidPlacedEvent(a))
	if meetsBuyNow {
		e.emit(newTriggerEvent(EventTypeBoughtNow, a, caller))
		if err := e.settle(a, reasonBoughtNow); err != nil {
			return nil, err
		}
		return a.Clone(), nil
	}
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// Settle completes an expired auction. Any account may call it.
func (e *Engine) Settle(caller types.Address, collectibleType string, id uint64) (*Auction, error) {
	a, err := e.loadActive(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !a.Committed() {
		return nil, errNotCommitted
	}
	if e.now() < a.AuctionEndTime {
		return nil, errAuctionStillOpen
	}
	if err := e.settle(a, reasonExpired); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// TakeHighestBid lets the seller accept the held bid immediately.
func (e *Engine) TakeHighestBid(caller types.Address, collectibleType string, id uint64) (*Auction, error) {
	a, err := e.loadForSeller(caller, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !a.HasBid() {
		return nil, errNoBid
	}
	e.emit(newTriggerEvent(EventTypeHighestBidTaken, a, caller))
	if err := e.settle(a, reasonTaken); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// Withdraw cancels an uncommitted sale and refunds any held bid.
func (e *Engine) Withdraw(caller types.Address, collectibleType string, id uint64) (*Auction, error) {
	a, err := e.loadForSeller(caller, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if a.Committed() {
		return nil, errAuctionCommitted
	}
	if err := e.refund(a, reasonSeller); err != nil {
		return nil, err
	}
	e.emit(newWithdrawnEvent(a, reasonSeller))
	a.reset(StatusWithdrawn)
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// WithdrawBid returns the caller's held bid. Only the highest bidder may call
// it, and only before the auction commits.
func (e *Engine) WithdrawBid(caller types.Address, collectibleType string, id uint64) (*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	a, err := e.load(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !a.HasBid() {
		return nil, errNoBid
	}
	if a.HighestBidder != caller {
		return nil, errNotHighestBidder
	}
	if a.Committed() {
		return nil, errAuctionCommitted
	}
	if err := e.refund(a, ""); err != nil {
		return nil, err
	}
	a.clearBid()
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// UpdateBuyNowPrice changes the buy-now price. A held bid that meets the new
// price settles the sale immediately.
func (e *Engine) UpdateBuyNowPrice(caller types.Address, collectibleType string, id uint64, price decimal.Decimal) (*Auction, error) {
	a, err := e.loadForSeller(caller, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !price.IsPositive() || !price.Equal(amount.Truncate(price)) {
		return nil, errInvalidPrice
	}
	buyNow := decimal.NewNullDecimal(price)
	if err := e.checkRatio(a.MinPrice, buyNow); err != nil {
		return nil, err
	}
	a.BuyNowPrice = buyNow
	e.emit(newPriceUpdatedEvent(EventTypeBuyNowPriceUpdated, a))
	if a.HasBid() && a.HighestBid.Decimal.GreaterThanOrEqual(price) {
		rule := e.eligible(a, a.HighestBidder, a.HighestBid.Decimal)
		if rule != nil && errors.KindOf(rule) == nil {
			return nil, rule
		}
		if rule == nil {
			e.emit(newTriggerEvent(EventTypeBoughtNow, a, a.HighestBidder))
			if err := e.settle(a, reasonBoughtNow); err != nil {
				return nil, err
			}
			return a.Clone(), nil
		}
	}
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// UpdateMinimumPrice changes the reserve of an uncommitted auction. A held bid
// that meets the new reserve commits the auction.
func (e *Engine) UpdateMinimumPrice(caller types.Address, collectibleType string, id uint64, price decimal.Decimal) (*Auction, error) {
	a, err := e.loadForSeller(caller, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if a.Kind != KindAuction {
		return nil, errWrongMode
	}
	if a.Committed() {
		return nil, errAuctionCommitted
	}
	if !price.IsPositive() || !price.Equal(amount.Truncate(price)) {
		return nil, errInvalidPrice
	}
	minPrice := decimal.NewNullDecimal(price)
	if err := e.checkRatio(minPrice, a.BuyNowPrice); err != nil {
		return nil, err
	}
	a.MinPrice = minPrice
	if a.HasBid() && e.qualifies(a, a.HighestBid.Decimal) {
		if err := e.commit(a); err != nil {
			return nil, err
		}
	}
	e.emit(newPriceUpdatedEvent(EventTypeMinimumPriceUpdated, a))
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

// UpdateWhitelistedBuyer changes the account allowed to buy a fixed-price
// sale. The zero address opens the sale to anyone.
func (e *Engine) UpdateWhitelistedBuyer(caller types.Address, collectibleType string, id uint64, buyer types.Address) (*Auction, error) {
	a, err := e.loadForSeller(caller, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if a.Kind != KindFixedPrice {
		return nil, errWrongMode
	}
	a.WhitelistedBuyer = buyer
	e.emit(newWhitelistUpdatedEvent(a))
	if err := e.store(a); err != nil {
		return nil, err
	}
	return a.Clone(), nil
}

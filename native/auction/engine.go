package auction

import (
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/escrow"
	"nftmarket/native/royalty"
)

var (
	errNilState         = errors.Kind(errors.ErrValidation, "auction engine: state not configured")
	errUnknownType      = errors.Kind(errors.ErrValidation, "auction engine: collectible type not registered")
	errUnsupportedAsset = errors.Kind(errors.ErrValidation, "auction engine: bidding asset not supported")
	errNotOwner         = errors.Kind(errors.ErrValidation, "auction engine: caller does not hold the collectible")
	errInvalidFees      = errors.Kind(errors.ErrValidation, "auction engine: invalid fee schedule")
	errInvalidPrice     = errors.Kind(errors.ErrValidation, "auction engine: price must be positive")
	errPriceRatio       = errors.Kind(errors.ErrValidation, "auction engine: minimum price exceeds allowed share of buy-now price")
	errBidIncreaseFloor = errors.Kind(errors.ErrValidation, "auction engine: bid increase below minimum")
	errInvalidPeriod    = errors.Kind(errors.ErrValidation, "auction engine: bid period must be positive")
	errDuplicateAuction = errors.Kind(errors.ErrConflict, "auction engine: auction already active")
	errAuctionNotFound  = errors.Kind(errors.ErrNotFound, "auction engine: no active auction")
	errNotSeller        = errors.Kind(errors.ErrUnauthorized, "auction engine: caller is not the seller")
	errNotHighestBidder = errors.Kind(errors.ErrUnauthorized, "auction engine: caller is not the highest bidder")
	errNotWhitelisted   = errors.Kind(errors.ErrUnauthorized, "auction engine: caller is not the whitelisted buyer")
	errInvalidAmount    = errors.Kind(errors.ErrValidation, "auction engine: bid amount must be positive")
	errWrongAsset       = errors.Kind(errors.ErrValidation, "auction engine: bid asset does not match auction")
	errEarlyBidAsset    = errors.Kind(errors.ErrValidation, "auction engine: bids before a sale exists must use the canonical asset")
	errSellerBid        = errors.Kind(errors.ErrValidation, "auction engine: seller cannot bid")
	errHolderBid        = errors.Kind(errors.ErrValidation, "auction engine: holder of the collectible cannot bid")
	errBidTooLow        = errors.Kind(errors.ErrValidation, "auction engine: bid does not exceed the required increase")
	errWhitelistPrice   = errors.Kind(errors.ErrValidation, "auction engine: whitelisted sale requires the buy-now price")
	errInvalidRecipient = errors.Kind(errors.ErrValidation, "auction engine: custom bid recipient required")
	errNoBid            = errors.Kind(errors.ErrValidation, "auction engine: no bid to act on")
	errAuctionCommitted = errors.Kind(errors.ErrConflict, "auction engine: auction already committed")
	errWrongMode        = errors.Kind(errors.ErrValidation, "auction engine: operation not available for this sale kind")
	errCustodyLost      = errors.Kind(errors.ErrConflict, "auction engine: seller no longer holds the collectible")
	errAuctionEnded     = errors.Kind(errors.ErrTiming, "auction engine: auction has ended; settle it")
	errNotCommitted     = errors.Kind(errors.ErrTiming, "auction engine: auction has no qualifying bid yet")
	errAuctionStillOpen = errors.Kind(errors.ErrTiming, "auction engine: auction end time not reached")
)

const (
	reasonBoughtNow   = "bought_now"
	reasonTaken       = "highest_bid_taken"
	reasonExpired     = "expired"
	reasonOutbid      = "outbid"
	reasonIneligible  = "ineligible"
	reasonSeller      = "seller"
	reasonCustodyLost = "custody_lost"

	labelFee    = "Fee"
	labelSeller = "Seller"
)

type engineState interface {
	AuctionGet(collectibleType string, id uint64) (*Auction, bool, error)
	AuctionPut(*Auction) error
	AuctionList() ([]types.CollectibleID, error)
}

type registry interface {
	IsSupported(id string) bool
	IsCollectibleType(id string) bool
	Canonical() string
}

type custody interface {
	Owns(account types.Address, collectibleType string, id uint64) (bool, error)
}

type funds interface {
	SetupVault(owner types.Address, asset string) error
	Transfer(from, to types.Address, asset string, amt decimal.Decimal) error
}

type royalties interface {
	Schedule(collectibleType string, id uint64, asset string) ([]royalty.LineItem, error)
}

type deliveries interface {
	Deliver(from, to types.Address, asset string, amt decimal.Decimal) (escrow.Delivery, error)
	DeliverCollectible(from, to types.Address, collectibleType string, id uint64) (escrow.CollectibleDelivery, error)
}

// Engine runs the sale state machine for every collectible.
type Engine struct {
	state      engineState
	registry   registry
	custody    custody
	funds      funds
	royalties  royalties
	deliveries deliveries
	emitter    events.Emitter
	params     Params
	nowFn      func() int64
}

func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		params:  DefaultParams(),
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetRegistry(r registry) { e.registry = r }

func (e *Engine) SetCustody(c custody) { e.custody = c }

func (e *Engine) SetFunds(f funds) { e.funds = f }

func (e *Engine) SetRoyalties(r royalties) { e.royalties = r }

func (e *Engine) SetDeliveries(d deliveries) { e.deliveries = d }

func (e *Engine) SetParams(p Params) { e.params = p }

func (e *Engine) Params() Params { return e.params }

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the ledger clock. Passing nil restores wall time.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func (e *Engine) emit(evt *types.Event) {
	if e.emitter != nil && evt != nil {
		e.emitter.Emit(auctionEvent{evt: evt})
	}
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.registry == nil || e.custody == nil || e.funds == nil || e.royalties == nil || e.deliveries == nil {
		return errNilState
	}
	return nil
}

// load returns the stored record, or a fresh StatusNone record.
func (e *Engine) load(collectibleType string, id uint64) (*Auction, error) {
	a, ok, err := e.state.AuctionGet(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Auction{CollectibleType: collectibleType, TokenID: id, Status: StatusNone, Target: SameAsBidder()}, nil
	}
	return a, nil
}

func (e *Engine) loadActive(collectibleType string, id uint64) (*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	a, err := e.load(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusActive {
		return nil, errAuctionNotFound
	}
	return a, nil
}

func (e *Engine) loadForSeller(caller types.Address, collectibleType string, id uint64) (*Auction, error) {
	a, err := e.loadActive(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if a.Seller != caller {
		return nil, errNotSeller
	}
	return a, nil
}

func (e *Engine) store(a *Auction) error {
	a.UpdatedAt = e.now()
	return e.state.AuctionPut(a)
}

// Get returns a snapshot of the record for the collectible.
func (e *Engine) Get(collectibleType string, id uint64) (*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	a, ok, err := e.state.AuctionGet(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Kind(errors.ErrNotFound, "auction engine: no record for collectible")
	}
	return a.Clone(), nil
}

// List returns every record, active or not, in creation order. A non-nil
// status filter keeps only matching records.
func (e *Engine) List(status *Status) ([]*Auction, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	ids, err := e.state.AuctionList()
	if err != nil {
		return nil, err
	}
	out := make([]*Auction, 0, len(ids))
	for _, id := range ids {
		a, ok, err := e.state.AuctionGet(id.Type, id.ID)
		if err != nil {
			return nil, err
		}
		if !ok || (status != nil && a.Status != *status) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// AssetInUse reports whether an active sale bids in asset or any record still
// holds a bid paid in it.
func (e *Engine) AssetInUse(asset string) (bool, error) {
	all, err := e.List(nil)
	if err != nil {
		return false, err
	}
	for _, a := range all {
		if a.Status == StatusActive && a.BiddingAsset == asset {
			return true, nil
		}
		if a.HighestBid.Valid && a.BidAsset == asset {
			return true, nil
		}
	}
	return false, nil
}

func (e *Engine) checkRatio(minPrice, buyNow decimal.NullDecimal) error {
	if !minPrice.Valid || !buyNow.Valid {
		return nil
	}
	ceiling := buyNow.Decimal.Mul(e.params.MaxMinPriceRatio)
	if minPrice.Decimal.GreaterThan(ceiling) {
		return errPriceRatio
	}
	return nil
}

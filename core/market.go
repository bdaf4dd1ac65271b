package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"nftmarket/core/assets"
	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/auction"
	"nftmarket/native/royalty"
	"nftmarket/observability"
	"nftmarket/storage"
)

// MarketConfig carries the dependencies of a Market. Zero values select
// defaults: module params, a no-op emitter, wall time and the default logger.
type MarketConfig struct {
	Admin   types.Address
	Params  auction.Params
	Emitter events.Emitter
	Clock   func() time.Time
	Logger  *slog.Logger
}

// Market executes every public operation serially and atomically. Each
// operation runs against a fresh overlay of the database; its writes are
// committed in one batch and its events forwarded only when it succeeds.
type Market struct {
	stateMu sync.Mutex
	db      storage.Database
	admin   types.Address
	params  auction.Params
	emitter events.Emitter
	clock   *LedgerClock
	logger  *slog.Logger
}

func NewMarket(db storage.Database, cfg MarketConfig) (*Market, error) {
	if db == nil {
		return nil, fmt.Errorf("market: database required")
	}
	params := cfg.Params
	if params.DefaultBidPeriodSeconds == 0 {
		params = auction.DefaultParams()
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("market: invalid auction params: %w", err)
	}
	m := &Market{
		db:      db,
		admin:   cfg.Admin,
		params:  params,
		emitter: cfg.Emitter,
		clock:   NewLedgerClock(cfg.Clock),
		logger:  cfg.Logger,
	}
	if m.emitter == nil {
		m.emitter = events.NoopEmitter{}
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	last, err := NewSession(db, nil, SessionOptions{}).State.ClockGet()
	if err != nil {
		return nil, fmt.Errorf("market: load ledger clock: %w", err)
	}
	m.clock.Observe(last)
	return m, nil
}

// SetClock replaces the wall clock behind the ledger clock. Ledger time never
// moves backwards, whatever the new source reports.
func (m *Market) SetClock(now func() time.Time) { m.clock.SetSource(now) }

// Now returns the ledger time of the last operation.
func (m *Market) Now() int64 { return m.clock.Last() }

func (m *Market) Admin() types.Address { return m.admin }

func (m *Market) Params() auction.Params { return m.params }

func (m *Market) session(db storage.Database, emitter events.Emitter, now int64) *Session {
	return NewSession(db, emitter, SessionOptions{
		Admin:  m.admin,
		Params: m.params,
		Now:    func() int64 { return now },
	})
}

// execute runs fn as one atomic operation.
func (m *Market) execute(op string, caller types.Address, fn func(*Session) error) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()

	start := time.Now()
	now := m.clock.Tick()
	overlay := storage.NewOverlay(m.db)
	buffer := events.NewBuffer()
	s := m.session(overlay, buffer, now)

	err := fn(s)
	if err == nil {
		err = s.State.ClockPut(now)
	}
	if err == nil {
		err = overlay.Commit()
	}
	if err != nil {
		overlay.Discard()
		buffer.Reset()
		m.logger.Info("market operation rejected",
			slog.String("op", op),
			slog.String("caller", caller.String()),
			slog.String("kind", errors.Name(err)),
			slog.Any("error", err))
		observability.Market().RecordOperation(op, errors.Name(err), time.Since(start))
		return err
	}
	count := buffer.Len()
	buffer.Flush(m.emitter)
	m.logger.Debug("market operation committed",
		slog.String("op", op),
		slog.String("caller", caller.String()),
		slog.Int("events", count))
	observability.Market().RecordOperation(op, "", time.Since(start))
	observability.Market().SetLedgerTime(now)
	return nil
}

// view runs a read-only fn against committed state.
func (m *Market) view(fn func(*Session) error) error {
	m.stateMu.Lock()
	defer m.stateMu.Unlock()
	return fn(m.session(m.db, nil, m.clock.Last()))
}

// --- registry ---

func (m *Market) Registry() (*assets.Registry, error) {
	var reg *assets.Registry
	err := m.view(func(s *Session) error {
		var err error
		reg, err = s.Registry.Snapshot()
		return err
	})
	return reg, err
}

func (m *Market) AddAsset(caller types.Address, asset assets.AssetType) (*assets.Registry, error) {
	var reg *assets.Registry
	err := m.execute("admin_addAsset", caller, func(s *Session) error {
		var err error
		reg, err = s.Registry.AddAsset(caller, asset)
		return err
	})
	return reg, err
}

func (m *Market) RemoveAsset(caller types.Address, id string) (*assets.Registry, error) {
	var reg *assets.Registry
	err := m.execute("admin_removeAsset", caller, func(s *Session) error {
		var err error
		reg, err = s.Registry.RemoveAsset(caller, id)
		return err
	})
	return reg, err
}

func (m *Market) SetCanonical(caller types.Address, id string) (*assets.Registry, error) {
	var reg *assets.Registry
	err := m.execute("admin_setCanonical", caller, func(s *Session) error {
		var err error
		reg, err = s.Registry.SetCanonical(caller, id)
		return err
	})
	return reg, err
}

func (m *Market) AddCollectibleType(caller types.Address, ct assets.CollectibleType) (*assets.Registry, error) {
	var reg *assets.Registry
	err := m.execute("admin_addCollectibleType", caller, func(s *Session) error {
		var err error
		reg, err = s.Registry.AddCollectibleType(caller, ct)
		return err
	})
	return reg, err
}

// --- collaborators ---

// Mint creates a collectible for owner and fixes its royalty configuration.
// A nil cfg mints without royalties.
func (m *Market) Mint(caller, owner types.Address, collectibleType string, id uint64, cfg *royalty.Config) error {
	return m.execute("admin_mint", caller, func(s *Session) error {
		if err := s.Collectibles.Mint(caller, owner, collectibleType, id); err != nil {
			return err
		}
		if cfg == nil {
			return nil
		}
		withID := cfg.Clone()
		withID.Type = collectibleType
		withID.TokenID = id
		return s.Royalty.SetConfig(withID)
	})
}

// Fund mints amt of asset into the account's vault.
func (m *Market) Fund(caller, to types.Address, asset string, amt decimal.Decimal) error {
	return m.execute("admin_fund", caller, func(s *Session) error {
		return s.Bank.Mint(caller, to, asset, amt)
	})
}

// Setup creates the caller's vaults and collections and links their receivers.
func (m *Market) Setup(caller types.Address, assetIDs, collectibleTypes []string) error {
	return m.execute("account_setup", caller, func(s *Session) error {
		return s.Receivers.Setup(caller, assetIDs, collectibleTypes)
	})
}

func (m *Market) Link(caller types.Address, path string) error {
	return m.execute("account_link", caller, func(s *Session) error {
		return s.Receivers.Link(caller, path)
	})
}

func (m *Market) Unlink(caller types.Address, path string) error {
	return m.execute("account_unlink", caller, func(s *Session) error {
		return s.Receivers.Unlink(caller, path)
	})
}

// Transfer moves tokens between vaults directly, without receiver resolution.
func (m *Market) Transfer(caller, to types.Address, asset string, amt decimal.Decimal) error {
	return m.execute("account_transfer", caller, func(s *Session) error {
		return s.Bank.Transfer(caller, to, asset, amt)
	})
}

func (m *Market) TransferCollectible(caller, to types.Address, collectibleType string, id uint64) error {
	return m.execute("account_transferCollectible", caller, func(s *Session) error {
		return s.Collectibles.Transfer(caller, to, collectibleType, id)
	})
}

func (m *Market) Balance(account types.Address, asset string) (decimal.Decimal, error) {
	out := decimal.Zero
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Bank.Balance(account, asset)
		return err
	})
	return out, err
}

func (m *Market) Collectibles(account types.Address, collectibleType string) ([]uint64, error) {
	var out []uint64
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Collectibles.Tokens(account, collectibleType)
		return err
	})
	return out, err
}

// --- auctions ---

func (m *Market) auctionOp(op string, caller types.Address, fn func(*auction.Engine) (*auction.Auction, error)) (*auction.Auction, error) {
	var out *auction.Auction
	err := m.execute(op, caller, func(s *Session) error {
		var err error
		out, err = fn(s.Auction)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Market) CreateSale(caller types.Address, req auction.SaleRequest) (*auction.Auction, error) {
	return m.auctionOp("auction_createSale", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.CreateSale(caller, req)
	})
}

func (m *Market) CreateDefault(caller types.Address, req auction.AuctionRequest) (*auction.Auction, error) {
	return m.auctionOp("auction_createDefault", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.CreateDefault(caller, req)
	})
}

func (m *Market) Create(caller types.Address, req auction.AuctionRequest) (*auction.Auction, error) {
	return m.auctionOp("auction_create", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.Create(caller, req)
	})
}

func (m *Market) Bid(caller types.Address, collectibleType string, id uint64, asset string, amt decimal.Decimal) (*auction.Auction, error) {
	return m.auctionOp("auction_bid", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.Bid(caller, collectibleType, id, asset, amt)
	})
}

func (m *Market) CustomBid(caller types.Address, collectibleType string, id uint64, asset string, amt decimal.Decimal, recipient types.Address) (*auction.Auction, error) {
	return m.auctionOp("auction_customBid", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.CustomBid(caller, collectibleType, id, asset, amt, recipient)
	})
}

func (m *Market) Settle(caller types.Address, collectibleType string, id uint64) (*auction.Auction, error) {
	return m.auctionOp("auction_settle", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.Settle(caller, collectibleType, id)
	})
}

func (m *Market) TakeHighestBid(caller types.Address, collectibleType string, id uint64) (*auction.Auction, error) {
	return m.auctionOp("auction_takeHighestBid", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.TakeHighestBid(caller, collectibleType, id)
	})
}

func (m *Market) Withdraw(caller types.Address, collectibleType string, id uint64) (*auction.Auction, error) {
	return m.auctionOp("auction_withdraw", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.Withdraw(caller, collectibleType, id)
	})
}

func (m *Market) WithdrawBid(caller types.Address, collectibleType string, id uint64) (*auction.Auction, error) {
	return m.auctionOp("auction_withdrawBid", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.WithdrawBid(caller, collectibleType, id)
	})
}

func (m *Market) UpdateBuyNowPrice(caller types.Address, collectibleType string, id uint64, price decimal.Decimal) (*auction.Auction, error) {
	return m.auctionOp("auction_updateBuyNowPrice", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.UpdateBuyNowPrice(caller, collectibleType, id, price)
	})
}

func (m *Market) UpdateMinimumPrice(caller types.Address, collectibleType string, id uint64, price decimal.Decimal) (*auction.Auction, error) {
	return m.auctionOp("auction_updateMinimumPrice", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.UpdateMinimumPrice(caller, collectibleType, id, price)
	})
}

func (m *Market) UpdateWhitelistedBuyer(caller types.Address, collectibleType string, id uint64, buyer types.Address) (*auction.Auction, error) {
	return m.auctionOp("auction_updateWhitelistedBuyer", caller, func(e *auction.Engine) (*auction.Auction, error) {
		return e.UpdateWhitelistedBuyer(caller, collectibleType, id, buyer)
	})
}

func (m *Market) Auction(collectibleType string, id uint64) (*auction.Auction, error) {
	var out *auction.Auction
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Auction.Get(collectibleType, id)
		return err
	})
	return out, err
}

// Auctions lists every record; a non-nil status keeps only matching ones.
func (m *Market) Auctions(status *auction.Status) ([]*auction.Auction, error) {
	var out []*auction.Auction
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Auction.List(status)
		return err
	})
	return out, err
}

// --- escrow ---

func (m *Market) ClaimPayout(caller types.Address, asset string) (decimal.Decimal, error) {
	claimed := decimal.Zero
	err := m.execute("escrow_claimPayout", caller, func(s *Session) error {
		var err error
		claimed, err = s.Escrow.ClaimPayout(caller, asset)
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return claimed, nil
}

func (m *Market) ClaimNFTs(caller types.Address, collectibleType string) ([]uint64, error) {
	var claimed []uint64
	err := m.execute("escrow_claimNFTs", caller, func(s *Session) error {
		var err error
		claimed, err = s.Escrow.ClaimNFTs(caller, collectibleType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

func (m *Market) PendingPayout(account types.Address, asset string) (decimal.Decimal, error) {
	out := decimal.Zero
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Escrow.PendingPayout(account, asset)
		return err
	})
	return out, err
}

func (m *Market) PendingCollectibles(account types.Address, collectibleType string) ([]uint64, error) {
	var out []uint64
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Escrow.PendingCollectibles(account, collectibleType)
		return err
	})
	return out, err
}

// --- royalties ---

func (m *Market) Royalty(owner types.Address, collectibleType string, id uint64) ([]royalty.LineItem, error) {
	var out []royalty.LineItem
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Royalty.GetNFTRoyalty(owner, collectibleType, id)
		return err
	})
	return out, err
}

func (m *Market) RoyaltyConfig(collectibleType string, id uint64) (*royalty.Config, error) {
	var out *royalty.Config
	err := m.view(func(s *Session) error {
		var err error
		out, err = s.Royalty.Config(collectibleType, id)
		return err
	})
	return out, err
}

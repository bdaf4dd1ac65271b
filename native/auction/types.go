package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
)

// ModuleName names the auction module; its vault account holds live bids.
const ModuleName = "auction"

// VaultAddress is the account holding every pending bid.
var VaultAddress = types.ModuleAddress(ModuleName)

// Status enumerates the lifecycle of an auction record. The key survives
// settlement and withdrawal so a record is never ambiguous about whether a
// sale is live.
type Status uint8

const (
	// StatusNone marks a record that only carries a bid placed before any sale
	// was created.
	StatusNone Status = iota
	StatusActive
	StatusSettled
	StatusWithdrawn
)

func (s Status) Valid() bool { return s <= StatusWithdrawn }

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusActive:
		return "active"
	case StatusSettled:
		return "settled"
	case StatusWithdrawn:
		return "withdrawn"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Kind distinguishes fixed-price sales from bidding auctions. Both share the
// same record shape.
type Kind uint8

const (
	KindAuction Kind = iota
	KindFixedPrice
)

func (k Kind) Valid() bool { return k <= KindFixedPrice }

func (k Kind) String() string {
	switch k {
	case KindAuction:
		return "auction"
	case KindFixedPrice:
		return "sale"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// TargetKind tags a SettlementTarget.
type TargetKind uint8

const (
	TargetSameAsBidder TargetKind = iota
	TargetExplicit
)

// SettlementTarget names who receives the collectible when the highest bid
// wins: the bidder, or an explicit account chosen by a custom bid.
type SettlementTarget struct {
	Kind    TargetKind
	Account types.Address
}

func SameAsBidder() SettlementTarget { return SettlementTarget{Kind: TargetSameAsBidder} }

func Explicit(account types.Address) SettlementTarget {
	return SettlementTarget{Kind: TargetExplicit, Account: account}
}

// Recipient resolves the target against the bidder.
func (t SettlementTarget) Recipient(bidder types.Address) types.Address {
	if t.Kind == TargetExplicit {
		return t.Account
	}
	return bidder
}

// CustodyRef records that the seller held the collectible when the auction
// committed. It is re-checked before settlement moves the token.
type CustodyRef struct {
	Holder     types.Address
	Type       string
	TokenID    uint64
	CapturedAt int64
}

// Auction is the sale record for a single collectible.
type Auction struct {
	CollectibleType string
	TokenID         uint64
	Status          Status
	Kind            Kind
	// Round counts sale creations for this collectible.
	Round uint64

	Seller            types.Address
	SellerWithdrawRef *CustodyRef

	FeeRecipients  []types.Address
	FeePercentages []decimal.Decimal

	BiddingAsset  string
	HighestBid    decimal.NullDecimal
	HighestBidder types.Address
	// BidAsset is the asset the held bid was paid in.
	BidAsset string
	Target   SettlementTarget

	BidPeriodSeconds int64
	AuctionEndTime   int64
	MinPrice         decimal.NullDecimal
	BuyNowPrice      decimal.NullDecimal
	WhitelistedBuyer types.Address
	BidIncrease      decimal.Decimal

	CreatedAt int64
	UpdatedAt int64
}

func (a *Auction) ID() types.CollectibleID {
	return types.CollectibleID{Type: a.CollectibleType, ID: a.TokenID}
}

// Committed reports whether a qualifying bid has started the countdown.
func (a *Auction) Committed() bool { return a != nil && a.AuctionEndTime > 0 }

func (a *Auction) HasBid() bool { return a != nil && a.HighestBid.Valid && !a.HighestBidder.IsZero() }

// Clone returns a deep copy of the auction.
func (a *Auction) Clone() *Auction {
	if a == nil {
		return nil
	}
	clone := *a
	clone.FeeRecipients = append([]types.Address(nil), a.FeeRecipients...)
	clone.FeePercentages = append([]decimal.Decimal(nil), a.FeePercentages...)
	if a.SellerWithdrawRef != nil {
		ref := *a.SellerWithdrawRef
		clone.SellerWithdrawRef = &ref
	}
	return &clone
}

func (a *Auction) clearBid() {
	a.HighestBid = decimal.NullDecimal{}
	a.HighestBidder = types.Address{}
	a.BidAsset = ""
	a.Target = SameAsBidder()
}

// reset clears every sale field and moves the record to status.
func (a *Auction) reset(status Status) {
	a.clearBid()
	a.Status = status
	a.Seller = types.Address{}
	a.SellerWithdrawRef = nil
	a.FeeRecipients = nil
	a.FeePercentages = nil
	a.BiddingAsset = ""
	a.BidPeriodSeconds = 0
	a.AuctionEndTime = 0
	a.MinPrice = decimal.NullDecimal{}
	a.BuyNowPrice = decimal.NullDecimal{}
	a.WhitelistedBuyer = types.Address{}
	a.BidIncrease = decimal.Zero
	a.Kind = KindAuction
}

// ValidateFeeSchedule checks the parallel fee arrays: equal length, non-zero
// recipients, fractions summing to at most one.
func ValidateFeeSchedule(recipients []types.Address, percentages []decimal.Decimal) error {
	if len(recipients) != len(percentages) {
		return fmt.Errorf("fee recipients and percentages differ in length (%d vs %d)", len(recipients), len(percentages))
	}
	sum := decimal.Zero
	for i, pct := range percentages {
		if recipients[i].IsZero() {
			return fmt.Errorf("fee recipient %d is empty", i)
		}
		if !amount.IsFraction(pct) {
			return fmt.Errorf("fee percentage %d out of range", i)
		}
		sum = sum.Add(pct)
	}
	if sum.GreaterThan(amount.One) {
		return fmt.Errorf("fee percentages sum to %s", sum.String())
	}
	return nil
}

// SaleRequest creates a fixed-price sale.
type SaleRequest struct {
	CollectibleType  string
	TokenID          uint64
	BiddingAsset     string
	BuyNowPrice      decimal.Decimal
	WhitelistedBuyer types.Address
	FeeRecipients    []types.Address
	FeePercentages   []decimal.Decimal
}

// AuctionRequest creates a bidding auction. BidPeriodSeconds and BidIncrease
// are honoured only by Engine.Create; CreateDefault uses the module defaults.
type AuctionRequest struct {
	CollectibleType  string
	TokenID          uint64
	BiddingAsset     string
	MinPrice         decimal.Decimal
	BuyNowPrice      decimal.Decimal
	FeeRecipients    []types.Address
	FeePercentages   []decimal.Decimal
	BidPeriodSeconds int64
	BidIncrease      decimal.Decimal
}

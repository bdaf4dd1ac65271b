package auction

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
)

// Split is one share of a settled bid.
type Split struct {
	Recipient types.Address
	Amount    decimal.Decimal
	Label     string
}

// Splits computes the payout of total: the fee schedule first, then the
// royalty schedule when enabled, each share truncated to ledger precision and
// capped at what remains. The seller receives the remainder, so the shares
// always sum to total.
func (e *Engine) Splits(a *Auction, total decimal.Decimal) ([]Split, error) {
	remaining := total
	splits := make([]Split, 0, len(a.FeeRecipients)+2)
	take := func(to types.Address, fraction decimal.Decimal, label string) {
		share := amount.Min(amount.Mul(total, fraction), remaining)
		if !share.IsPositive() {
			return
		}
		remaining = remaining.Sub(share)
		splits = append(splits, Split{Recipient: to, Amount: share, Label: label})
	}
	for i, recipient := range a.FeeRecipients {
		take(recipient, a.FeePercentages[i], labelFee)
	}
	if e.params.ApplyRoyalties {
		items, err := e.royalties.Schedule(a.CollectibleType, a.TokenID, a.BidAsset)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			take(item.Payee, item.Cut, item.Label)
		}
	}
	if remaining.IsPositive() {
		splits = append(splits, Split{Recipient: a.Seller, Amount: remaining, Label: labelSeller})
	}
	return splits, nil
}

// settle pays out the held bid, delivers the collectible and resets the
// record. Deliveries that cannot be pushed land in escrow instead of failing
// the settlement.
func (e *Engine) settle(a *Auction, reason string) error {
	owns, err := e.custody.Owns(a.Seller, a.CollectibleType, a.TokenID)
	if err != nil {
		return err
	}
	if !owns {
		if err := e.refund(a, reasonCustodyLost); err != nil {
			return err
		}
		e.emit(newWithdrawnEvent(a, reasonCustodyLost))
		a.reset(StatusWithdrawn)
		return e.store(a)
	}
	splits, err := e.Splits(a, a.HighestBid.Decimal)
	if err != nil {
		return err
	}
	sellerProceeds := decimal.Zero
	for _, split := range splits {
		d, err := e.deliveries.Deliver(VaultAddress, split.Recipient, a.BidAsset, split.Amount)
		if err != nil {
			return err
		}
		if split.Label == labelSeller {
			sellerProceeds = split.Amount
		}
		e.emit(newPayoutSentEvent(a, split.Label, d))
	}
	recipient := a.Target.Recipient(a.HighestBidder)
	cd, err := e.deliveries.DeliverCollectible(a.Seller, recipient, a.CollectibleType, a.TokenID)
	if err != nil {
		return err
	}
	e.emit(newSettledEvent(a, reason, cd, amount.Format(sellerProceeds)))
	a.reset(StatusSettled)
	return e.store(a)
}

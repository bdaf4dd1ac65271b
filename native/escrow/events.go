package escrow

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
)

const (
	EventTypePayoutCredited = "escrow.payout.credited"
	EventTypePayoutClaimed  = "escrow.payout.claimed"
	EventTypeNFTCredited    = "escrow.nft.credited"
	EventTypeNFTsClaimed    = "escrow.nfts.claimed"
)

type escrowEvent struct {
	evt *types.Event
}

func (e escrowEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e escrowEvent) Event() *types.Event { return e.evt }

func newPayoutEvent(eventType string, account types.Address, asset string, amt, pending decimal.Decimal) *types.Event {
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"account": account.String(),
		"asset":   asset,
		"amount":  amount.Format(amt),
		"pending": amount.Format(pending),
	}}
}

func newNFTCreditedEvent(account types.Address, collectibleType string, id uint64) *types.Event {
	return &types.Event{Type: EventTypeNFTCredited, Attributes: map[string]string{
		"account": account.String(),
		"type":    collectibleType,
		"tokenId": strconv.FormatUint(id, 10),
	}}
}

func newNFTsClaimedEvent(account types.Address, collectibleType string, ids []uint64) *types.Event {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return &types.Event{Type: EventTypeNFTsClaimed, Attributes: map[string]string{
		"account":  account.String(),
		"type":     collectibleType,
		"tokenIds": strings.Join(parts, ","),
	}}
}

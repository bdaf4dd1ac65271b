package bank

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/types"
)

const (
	EventTypeVaultCreated = "bank.vault.created"
	EventTypeMinted       = "bank.minted"
	EventTypeTransferred  = "bank.transferred"
)

type bankEvent struct {
	evt *types.Event
}

func (e bankEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e bankEvent) Event() *types.Event { return e.evt }

func newVaultCreatedEvent(owner types.Address, asset string) *types.Event {
	return &types.Event{Type: EventTypeVaultCreated, Attributes: map[string]string{
		"owner": owner.String(),
		"asset": asset,
	}}
}

func newMintedEvent(to types.Address, asset string, amt decimal.Decimal) *types.Event {
	return &types.Event{Type: EventTypeMinted, Attributes: map[string]string{
		"to":     to.String(),
		"asset":  asset,
		"amount": amount.Format(amt),
	}}
}

func newTransferredEvent(from, to types.Address, asset string, amt decimal.Decimal) *types.Event {
	return &types.Event{Type: EventTypeTransferred, Attributes: map[string]string{
		"from":   from.String(),
		"to":     to.String(),
		"asset":  asset,
		"amount": amount.Format(amt),
	}}
}

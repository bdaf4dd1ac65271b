package collectibles

import (
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeCollectionCreated = "collectibles.collection.created"
	EventTypeMinted            = "collectibles.minted"
	EventTypeTransferred       = "collectibles.transferred"
)

type collectibleEvent struct {
	evt *types.Event
}

func (e collectibleEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e collectibleEvent) Event() *types.Event { return e.evt }

func newCollectionCreatedEvent(owner types.Address, collectibleType string) *types.Event {
	return &types.Event{Type: EventTypeCollectionCreated, Attributes: map[string]string{
		"owner": owner.String(),
		"type":  collectibleType,
	}}
}

func newMintedEvent(owner types.Address, collectibleType string, id uint64) *types.Event {
	return &types.Event{Type: EventTypeMinted, Attributes: map[string]string{
		"owner":   owner.String(),
		"type":    collectibleType,
		"tokenId": strconv.FormatUint(id, 10),
	}}
}

func newTransferredEvent(from, to types.Address, collectibleType string, id uint64) *types.Event {
	return &types.Event{Type: EventTypeTransferred, Attributes: map[string]string{
		"from":    from.String(),
		"to":      to.String(),
		"type":    collectibleType,
		"tokenId": strconv.FormatUint(id, 10),
	}}
}

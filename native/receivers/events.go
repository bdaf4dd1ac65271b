package receivers

import (
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeLinked       = "receivers.linked"
	EventTypeUnlinked     = "receivers.unlinked"
	EventTypeAccountSetup = "receivers.account.setup"
)

type receiverEvent struct {
	evt *types.Event
}

func (e receiverEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e receiverEvent) Event() *types.Event { return e.evt }

func newLinkEvent(eventType string, owner types.Address, path string) *types.Event {
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"owner": owner.String(),
		"path":  path,
	}}
}

func newAccountSetupEvent(owner types.Address, assetCount, typeCount int) *types.Event {
	return &types.Event{Type: EventTypeAccountSetup, Attributes: map[string]string{
		"owner":            owner.String(),
		"assets":           strconv.Itoa(assetCount),
		"collectibleTypes": strconv.Itoa(typeCount),
	}}
}

package assets

import (
	"strconv"

	"nftmarket/core/types"
)

const (
	EventTypeAssetAdded           = "registry.asset.added"
	EventTypeAssetRemoved         = "registry.asset.removed"
	EventTypeCollectibleTypeAdded = "registry.collectible_type.added"
	EventTypeCanonicalChanged     = "registry.canonical.changed"
)

type registryEvent struct {
	evt *types.Event
}

func (e registryEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e registryEvent) Event() *types.Event { return e.evt }

func newRegistryEvent(eventType string, version uint64, id, path string) *types.Event {
	return &types.Event{Type: eventType, Attributes: map[string]string{
		"id":      id,
		"path":    path,
		"version": strconv.FormatUint(version, 10),
	}}
}

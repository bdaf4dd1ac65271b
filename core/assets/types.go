package assets

import (
	"fmt"
	"strings"

	"nftmarket/core/types"
)

// GenericReceiverPath is the well-known path of an account's multi-asset
// royalty receiver. It routes any supported fungible asset into the account's
// matching vault.
const GenericReceiverPath = "/public/GenericFTReceiver"

// AssetType describes a supported fungible asset.
type AssetType struct {
	ID           string
	ReceiverPath string
}

// CollectibleType describes a recognised collection type.
type CollectibleType struct {
	ID             string
	CollectionPath string
}

// Registry is the versioned set of supported asset and collectible types.
// Version increases by one on every admin mutation.
type Registry struct {
	Version      uint64
	Canonical    string
	Assets       []AssetType
	Collectibles []CollectibleType
}

// Clone returns a deep copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Assets = append([]AssetType(nil), r.Assets...)
	clone.Collectibles = append([]CollectibleType(nil), r.Collectibles...)
	return &clone
}

func (r *Registry) Asset(id string) (AssetType, bool) {
	if r == nil {
		return AssetType{}, false
	}
	for _, a := range r.Assets {
		if a.ID == id {
			return a, true
		}
	}
	return AssetType{}, false
}

func (r *Registry) CollectibleType(id string) (CollectibleType, bool) {
	if r == nil {
		return CollectibleType{}, false
	}
	for _, c := range r.Collectibles {
		if c.ID == id {
			return c, true
		}
	}
	return CollectibleType{}, false
}

// SanitizeAssetType trims the identifier and fills the default receiver path
// "/public/<Contract>Receiver".
func SanitizeAssetType(a AssetType) (AssetType, error) {
	a.ID = strings.TrimSpace(a.ID)
	a.ReceiverPath = strings.TrimSpace(a.ReceiverPath)
	if a.ID == "" {
		return a, fmt.Errorf("asset type id required")
	}
	if a.ReceiverPath == "" {
		a.ReceiverPath = "/public/" + lowerFirst(types.ContractName(a.ID)) + "Receiver"
	}
	if !strings.HasPrefix(a.ReceiverPath, "/public/") {
		return a, fmt.Errorf("receiver path %q must live under /public/", a.ReceiverPath)
	}
	if a.ReceiverPath == GenericReceiverPath {
		return a, fmt.Errorf("receiver path %q is reserved", a.ReceiverPath)
	}
	return a, nil
}

// SanitizeCollectibleType trims the identifier and fills the default
// collection path "/public/<Contract>Collection".
func SanitizeCollectibleType(c CollectibleType) (CollectibleType, error) {
	c.ID = strings.TrimSpace(c.ID)
	c.CollectionPath = strings.TrimSpace(c.CollectionPath)
	if c.ID == "" {
		return c, fmt.Errorf("collectible type id required")
	}
	if c.CollectionPath == "" {
		c.CollectionPath = "/public/" + types.ContractName(c.ID) + "Collection"
	}
	if !strings.HasPrefix(c.CollectionPath, "/public/") {
		return c, fmt.Errorf("collection path %q must live under /public/", c.CollectionPath)
	}
	return c, nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

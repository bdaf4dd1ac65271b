package receivers

import "nftmarket/core/types"

// ReceiverRef points at an account's deposit endpoint for one fungible asset
// type. A reference may be unusable; callers check Usable before pushing.
type ReceiverRef struct {
	Account types.Address
	Path    string
	Asset   string
	// Generic marks the multi-asset royalty receiver.
	Generic bool
}

// CollectionRef points at an account's public collection for one collectible
// type.
type CollectionRef struct {
	Account types.Address
	Path    string
	Type    string
}

package receivers

import (
	"nftmarket/core/assets"
	"nftmarket/core/types"
)

// Resolve returns the best receiver for pushing asset to account. It prefers
// the generic royalty receiver, then the asset's native receiver. When neither
// is usable it still returns the native reference with usable=false so callers
// always learn which endpoint the account is expected to publish.
func (e *Engine) Resolve(account types.Address, asset string) (ReceiverRef, bool, error) {
	if err := e.ready(); err != nil {
		return ReceiverRef{}, false, err
	}
	info, ok := e.registry.Asset(asset)
	if !ok {
		return ReceiverRef{}, false, errUnsupportedAsset
	}
	generic := ReceiverRef{Account: account, Path: assets.GenericReceiverPath, Asset: info.ID, Generic: true}
	usable, err := e.Usable(generic)
	if err != nil {
		return ReceiverRef{}, false, err
	}
	if usable {
		return generic, true, nil
	}
	native := ReceiverRef{Account: account, Path: info.ReceiverPath, Asset: info.ID}
	usable, err = e.Usable(native)
	if err != nil {
		return ReceiverRef{}, false, err
	}
	return native, usable, nil
}

// Lookup is Resolve in option form: nil when no usable receiver exists.
func (e *Engine) Lookup(account types.Address, asset string) (*ReceiverRef, error) {
	ref, usable, err := e.Resolve(account, asset)
	if err != nil || !usable {
		return nil, err
	}
	return &ref, nil
}

// Usable re-checks a reference against live link state: the path must be
// linked and the account must hold a vault of the referenced asset.
func (e *Engine) Usable(ref ReceiverRef) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	if ref.Account.IsZero() {
		return false, nil
	}
	linked, err := e.state.ReceiverLinked(ref.Account, ref.Path)
	if err != nil || !linked {
		return false, err
	}
	return e.vaults.HasVault(ref.Account, ref.Asset)
}

// ResolveCollection returns the account's public collection for the type and
// whether it can currently receive deposits.
func (e *Engine) ResolveCollection(account types.Address, collectibleType string) (CollectionRef, bool, error) {
	if err := e.ready(); err != nil {
		return CollectionRef{}, false, err
	}
	ct, ok := e.registry.CollectibleType(collectibleType)
	if !ok {
		return CollectionRef{}, false, errUnknownType
	}
	ref := CollectionRef{Account: account, Path: ct.CollectionPath, Type: ct.ID}
	if account.IsZero() {
		return ref, false, nil
	}
	linked, err := e.state.ReceiverLinked(account, ct.CollectionPath)
	if err != nil || !linked {
		return ref, false, err
	}
	has, err := e.collections.HasCollection(account, ct.ID)
	if err != nil {
		return ref, false, err
	}
	return ref, has, nil
}

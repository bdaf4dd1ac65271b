package assets

import (
	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
)

var (
	errNilState          = errors.Kind(errors.ErrValidation, "registry: state not configured")
	errNotAdmin          = errors.Kind(errors.ErrUnauthorized, "registry: caller is not the admin")
	errDuplicateAsset    = errors.Kind(errors.ErrConflict, "registry: asset type already supported")
	errDuplicateType     = errors.Kind(errors.ErrConflict, "registry: collectible type already registered")
	errUnknownAsset      = errors.Kind(errors.ErrNotFound, "registry: asset type not supported")
	errCanonicalRequired = errors.Kind(errors.ErrValidation, "registry: canonical asset cannot be removed")
	errAssetInUse        = errors.Kind(errors.ErrConflict, "registry: asset type is held by an open sale")
)

type engineState interface {
	RegistryGet() (*Registry, error)
	RegistryPut(*Registry) error
}

// UsageChecker reports whether value denominated in an asset type is still
// held by a module that delivers it later.
type UsageChecker interface {
	AssetInUse(asset string) (bool, error)
}

// Engine gates mutations of the supported-type registry behind the configured
// admin account and serves versioned reads to the other modules.
type Engine struct {
	state   engineState
	emitter events.Emitter
	admin   types.Address
	usage   []UsageChecker
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetAdmin(admin types.Address) { e.admin = admin }

// AddUsageChecker registers a module consulted before an asset type is removed.
func (e *Engine) AddUsageChecker(c UsageChecker) {
	if c != nil {
		e.usage = append(e.usage, c)
	}
}

// SetEmitter configures the event emitter used by the engine. Passing nil resets
// the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

func (e *Engine) emit(evt *types.Event) {
	if e.emitter != nil && evt != nil {
		e.emitter.Emit(registryEvent{evt: evt})
	}
}

// Snapshot returns a copy of the current registry.
func (e *Engine) Snapshot() (*Registry, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	reg, err := e.state.RegistryGet()
	if err != nil {
		return nil, err
	}
	if reg == nil {
		reg = &Registry{}
	}
	return reg.Clone(), nil
}

// IsSupported reports whether id names a supported fungible asset type.
func (e *Engine) IsSupported(id string) bool {
	reg, err := e.Snapshot()
	if err != nil {
		return false
	}
	_, ok := reg.Asset(id)
	return ok
}

func (e *Engine) Asset(id string) (AssetType, bool) {
	reg, err := e.Snapshot()
	if err != nil {
		return AssetType{}, false
	}
	return reg.Asset(id)
}

// IsCollectibleType reports whether id names a registered collectible type.
func (e *Engine) IsCollectibleType(id string) bool {
	_, ok := e.CollectibleType(id)
	return ok
}

func (e *Engine) CollectibleType(id string) (CollectibleType, bool) {
	reg, err := e.Snapshot()
	if err != nil {
		return CollectibleType{}, false
	}
	return reg.CollectibleType(id)
}

// Canonical returns the asset type accepted for bids placed before an auction
// exists and used to resolve royalty receivers for queries.
func (e *Engine) Canonical() string {
	reg, err := e.Snapshot()
	if err != nil {
		return ""
	}
	return reg.Canonical
}

func (e *Engine) requireAdmin(caller types.Address) error {
	if e.admin.IsZero() || caller != e.admin {
		return errNotAdmin
	}
	return nil
}

func (e *Engine) store(reg *Registry) error {
	reg.Version++
	return e.state.RegistryPut(reg)
}

// AddAsset registers a supported asset type. The first asset registered
// becomes canonical.
func (e *Engine) AddAsset(caller types.Address, asset AssetType) (*Registry, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	sanitized, err := SanitizeAssetType(asset)
	if err != nil {
		return nil, errors.Kind(errors.ErrValidation, "registry: "+err.Error())
	}
	reg, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, exists := reg.Asset(sanitized.ID); exists {
		return nil, errDuplicateAsset
	}
	reg.Assets = append(reg.Assets, sanitized)
	if reg.Canonical == "" {
		reg.Canonical = sanitized.ID
	}
	if err := e.store(reg); err != nil {
		return nil, err
	}
	e.emit(newRegistryEvent(EventTypeAssetAdded, reg.Version, sanitized.ID, sanitized.ReceiverPath))
	return reg.Clone(), nil
}

// RemoveAsset withdraws support for an asset type. Removal is refused while an
// open sale or a held bid uses the asset. Pending escrow balances in a removed
// asset can no longer be claimed until it is re-added.
func (e *Engine) RemoveAsset(caller types.Address, id string) (*Registry, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	reg, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	asset, exists := reg.Asset(id)
	if !exists {
		return nil, errUnknownAsset
	}
	if reg.Canonical == id {
		return nil, errCanonicalRequired
	}
	for _, c := range e.usage {
		inUse, err := c.AssetInUse(id)
		if err != nil {
			return nil, err
		}
		if inUse {
			return nil, errAssetInUse
		}
	}
	filtered := reg.Assets[:0]
	for _, a := range reg.Assets {
		if a.ID != id {
			filtered = append(filtered, a)
		}
	}
	reg.Assets = filtered
	if err := e.store(reg); err != nil {
		return nil, err
	}
	e.emit(newRegistryEvent(EventTypeAssetRemoved, reg.Version, asset.ID, asset.ReceiverPath))
	return reg.Clone(), nil
}

// SetCanonical changes the canonical asset type. The asset must already be
// supported.
func (e *Engine) SetCanonical(caller types.Address, id string) (*Registry, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	reg, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	asset, exists := reg.Asset(id)
	if !exists {
		return nil, errUnknownAsset
	}
	reg.Canonical = asset.ID
	if err := e.store(reg); err != nil {
		return nil, err
	}
	e.emit(newRegistryEvent(EventTypeCanonicalChanged, reg.Version, asset.ID, asset.ReceiverPath))
	return reg.Clone(), nil
}

func (e *Engine) AddCollectibleType(caller types.Address, ct CollectibleType) (*Registry, error) {
	if err := e.requireAdmin(caller); err != nil {
		return nil, err
	}
	sanitized, err := SanitizeCollectibleType(ct)
	if err != nil {
		return nil, errors.Kind(errors.ErrValidation, "registry: "+err.Error())
	}
	reg, err := e.Snapshot()
	if err != nil {
		return nil, err
	}
	if _, exists := reg.CollectibleType(sanitized.ID); exists {
		return nil, errDuplicateType
	}
	reg.Collectibles = append(reg.Collectibles, sanitized)
	if err := e.store(reg); err != nil {
		return nil, err
	}
	e.emit(newRegistryEvent(EventTypeCollectibleTypeAdded, reg.Version, sanitized.ID, sanitized.CollectionPath))
	return reg.Clone(), nil
}

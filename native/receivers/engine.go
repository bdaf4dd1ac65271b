package receivers

import (
	"strings"

	"nftmarket/core/assets"
	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
)

var (
	errNilState         = errors.Kind(errors.ErrValidation, "receivers engine: state not configured")
	errInvalidPath      = errors.Kind(errors.ErrValidation, "receivers engine: path must live under /public/")
	errUnsupportedAsset = errors.Kind(errors.ErrValidation, "receivers engine: asset type not supported")
	errUnknownType      = errors.Kind(errors.ErrValidation, "receivers engine: collectible type not registered")
	errZeroAccount      = errors.Kind(errors.ErrValidation, "receivers engine: account required")
)

type engineState interface {
	ReceiverLinked(owner types.Address, path string) (bool, error)
	ReceiverLinkPut(owner types.Address, path string, linked bool) error
}

type vaults interface {
	HasVault(owner types.Address, asset string) (bool, error)
	SetupVault(owner types.Address, asset string) error
}

type collections interface {
	HasCollection(owner types.Address, collectibleType string) (bool, error)
	SetupCollection(owner types.Address, collectibleType string) error
}

type registry interface {
	Asset(id string) (assets.AssetType, bool)
	CollectibleType(id string) (assets.CollectibleType, bool)
}

// Engine keeps the per-account receiver links and resolves the best usable
// endpoint for a push. Links are re-read on every resolution.
type Engine struct {
	state       engineState
	vaults      vaults
	collections collections
	registry    registry
	emitter     events.Emitter
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetVaults(v vaults) { e.vaults = v }

func (e *Engine) SetCollections(c collections) { e.collections = c }

func (e *Engine) SetRegistry(r registry) { e.registry = r }

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
		e.emitter.Emit(receiverEvent{evt: evt})
	}
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.vaults == nil || e.collections == nil || e.registry == nil {
		return errNilState
	}
	return nil
}

func normalizePath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "/public/") || len(trimmed) == len("/public/") {
		return "", errInvalidPath
	}
	return trimmed, nil
}

// Link publishes the caller's endpoint at path.
func (e *Engine) Link(caller types.Address, path string) error {
	return e.setLink(caller, path, true, EventTypeLinked)
}

// Unlink revokes the caller's endpoint at path. References resolved earlier
// become unusable.
func (e *Engine) Unlink(caller types.Address, path string) error {
	return e.setLink(caller, path, false, EventTypeUnlinked)
}

func (e *Engine) setLink(caller types.Address, path string, linked bool, eventType string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if caller.IsZero() {
		return errZeroAccount
	}
	normalized, err := normalizePath(path)
	if err != nil {
		return err
	}
	current, err := e.state.ReceiverLinked(caller, normalized)
	if err != nil {
		return err
	}
	if current == linked {
		return nil
	}
	if err := e.state.ReceiverLinkPut(caller, normalized, linked); err != nil {
		return err
	}
	e.emit(newLinkEvent(eventType, caller, normalized))
	return nil
}

func (e *Engine) Linked(owner types.Address, path string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	return e.state.ReceiverLinked(owner, path)
}

// Setup creates the caller's vaults and collections and links their public
// paths together with the generic royalty receiver.
func (e *Engine) Setup(caller types.Address, assetIDs, collectibleTypes []string) error {
	if err := e.ready(); err != nil {
		return err
	}
	for _, id := range assetIDs {
		asset, ok := e.registry.Asset(id)
		if !ok {
			return errUnsupportedAsset
		}
		if err := e.vaults.SetupVault(caller, asset.ID); err != nil {
			return err
		}
		if err := e.Link(caller, asset.ReceiverPath); err != nil {
			return err
		}
	}
	if len(assetIDs) > 0 {
		if err := e.Link(caller, assets.GenericReceiverPath); err != nil {
			return err
		}
	}
	for _, id := range collectibleTypes {
		ct, ok := e.registry.CollectibleType(id)
		if !ok {
			return errUnknownType
		}
		if err := e.collections.SetupCollection(caller, ct.ID); err != nil {
			return err
		}
		if err := e.Link(caller, ct.CollectionPath); err != nil {
			return err
		}
	}
	e.emit(newAccountSetupEvent(caller, len(assetIDs), len(collectibleTypes)))
	return nil
}

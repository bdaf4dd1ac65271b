package collectibles

import (
	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
)

var (
	errNilState      = errors.Kind(errors.ErrValidation, "collectibles engine: state not configured")
	errNotAdmin      = errors.Kind(errors.ErrUnauthorized, "collectibles engine: caller is not the admin")
	errUnknownType   = errors.Kind(errors.ErrValidation, "collectibles engine: collectible type not registered")
	errNoCollection  = errors.Kind(errors.ErrNotFound, "collectibles engine: collection not found")
	errTokenNotFound = errors.Kind(errors.ErrNotFound, "collectibles engine: token not found")
	errTokenExists   = errors.Kind(errors.ErrConflict, "collectibles engine: token already minted")
	errNotOwner      = errors.Kind(errors.ErrUnauthorized, "collectibles engine: account does not hold the token")
	errZeroAccount   = errors.Kind(errors.ErrValidation, "collectibles engine: account required")
)

// ErrNoCollection reports a deposit to an account lacking a collection for the
// type.
var ErrNoCollection = errNoCollection

type engineState interface {
	TokenGet(collectibleType string, id uint64) (*Token, bool, error)
	TokenPut(*Token) error
	CollectionGet(owner types.Address, collectibleType string) (*Collection, bool, error)
	CollectionPut(*Collection) error
}

type typeRegistry interface {
	IsCollectibleType(id string) bool
}

// Engine owns collectible custody: which account holds each token and which
// accounts can receive each collectible type.
type Engine struct {
	state    engineState
	registry typeRegistry
	emitter  events.Emitter
	admin    types.Address
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetRegistry(registry typeRegistry) { e.registry = registry }

func (e *Engine) SetAdmin(admin types.Address) { e.admin = admin }

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
		e.emitter.Emit(collectibleEvent{evt: evt})
	}
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return nil
}

func (e *Engine) checkType(collectibleType string) error {
	if e.registry != nil && !e.registry.IsCollectibleType(collectibleType) {
		return errUnknownType
	}
	return nil
}

// SetupCollection creates an empty collection. Existing collections are left
// untouched.
func (e *Engine) SetupCollection(owner types.Address, collectibleType string) error {
	if err := e.ready(); err != nil {
		return err
	}
	if owner.IsZero() {
		return errZeroAccount
	}
	if err := e.checkType(collectibleType); err != nil {
		return err
	}
	_, ok, err := e.state.CollectionGet(owner, collectibleType)
	if err != nil || ok {
		return err
	}
	if err := e.state.CollectionPut(&Collection{Owner: owner, Type: collectibleType}); err != nil {
		return err
	}
	e.emit(newCollectionCreatedEvent(owner, collectibleType))
	return nil
}

func (e *Engine) HasCollection(owner types.Address, collectibleType string) (bool, error) {
	if err := e.ready(); err != nil {
		return false, err
	}
	_, ok, err := e.state.CollectionGet(owner, collectibleType)
	return ok, err
}

// Tokens lists the ids held by owner for the type in ascending order.
func (e *Engine) Tokens(owner types.Address, collectibleType string) ([]uint64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	c, ok, err := e.state.CollectionGet(owner, collectibleType)
	if err != nil || !ok {
		return []uint64{}, err
	}
	return append([]uint64{}, c.IDs...), nil
}

// Owner returns the account holding the token.
func (e *Engine) Owner(collectibleType string, id uint64) (types.Address, error) {
	if err := e.ready(); err != nil {
		return types.Address{}, err
	}
	tok, ok, err := e.state.TokenGet(collectibleType, id)
	if err != nil {
		return types.Address{}, err
	}
	if !ok {
		return types.Address{}, errTokenNotFound
	}
	return tok.Owner, nil
}

func (e *Engine) Owns(account types.Address, collectibleType string, id uint64) (bool, error) {
	owner, err := e.Owner(collectibleType, id)
	if err != nil {
		if errors.KindOf(err) == errors.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return owner == account, nil
}

// Mint issues a new token into owner's collection. Admin only.
func (e *Engine) Mint(caller, owner types.Address, collectibleType string, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if e.admin.IsZero() || caller != e.admin {
		return errNotAdmin
	}
	if err := e.checkType(collectibleType); err != nil {
		return err
	}
	if _, ok, err := e.state.TokenGet(collectibleType, id); err != nil {
		return err
	} else if ok {
		return errTokenExists
	}
	coll, ok, err := e.state.CollectionGet(owner, collectibleType)
	if err != nil {
		return err
	}
	if !ok {
		return errNoCollection
	}
	coll.add(id)
	if err := e.state.CollectionPut(coll); err != nil {
		return err
	}
	if err := e.state.TokenPut(&Token{Type: collectibleType, ID: id, Owner: owner}); err != nil {
		return err
	}
	e.emit(newMintedEvent(owner, collectibleType, id))
	return nil
}

// Transfer withdraws the token from the holder's collection and deposits it
// into the recipient's. It fails with ErrNoCollection, leaving custody
// unchanged, when the recipient cannot receive the type.
func (e *Engine) Transfer(from, to types.Address, collectibleType string, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	owner, err := e.Owner(collectibleType, id)
	if err != nil {
		return err
	}
	if owner != from {
		return errNotOwner
	}
	dst, ok, err := e.state.CollectionGet(to, collectibleType)
	if err != nil {
		return err
	}
	if !ok {
		return errNoCollection
	}
	if from == to {
		return nil
	}
	src, ok, err := e.state.CollectionGet(from, collectibleType)
	if err != nil {
		return err
	}
	if !ok || !src.remove(id) {
		return errNotOwner
	}
	dst.add(id)
	if err := e.state.CollectionPut(src); err != nil {
		return err
	}
	if err := e.state.CollectionPut(dst); err != nil {
		return err
	}
	if err := e.state.TokenPut(&Token{Type: collectibleType, ID: id, Owner: to}); err != nil {
		return err
	}
	e.emit(newTransferredEvent(from, to, collectibleType, id))
	return nil
}

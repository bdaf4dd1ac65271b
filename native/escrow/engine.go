package escrow

import (
	stderrors "errors"

	"github.com/shopspring/decimal"

	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
	"nftmarket/native/bank"
	"nftmarket/native/collectibles"
	"nftmarket/native/receivers"
)

var (
	errNilState            = errors.Kind(errors.ErrValidation, "escrow engine: state not configured")
	errUnsupportedAsset    = errors.Kind(errors.ErrValidation, "escrow engine: asset type not supported")
	errUnknownType         = errors.Kind(errors.ErrValidation, "escrow engine: collectible type not registered")
	errNothingPending      = errors.Kind(errors.ErrValidation, "escrow engine: nothing pending for caller")
	errReceiverUnavailable = errors.Kind(errors.ErrValidation, "escrow engine: caller has no usable receiver")
)

type engineState interface {
	EscrowPayoutGet(owner types.Address, asset string) (decimal.Decimal, error)
	EscrowPayoutPut(owner types.Address, asset string, amt decimal.Decimal) error
	EscrowCollectiblesGet(owner types.Address, collectibleType string) ([]uint64, error)
	EscrowCollectiblesPut(owner types.Address, collectibleType string, ids []uint64) error
}

type fungibles interface {
	SetupVault(owner types.Address, asset string) error
	Transfer(from, to types.Address, asset string, amt decimal.Decimal) error
}

type nonFungibles interface {
	SetupCollection(owner types.Address, collectibleType string) error
	Transfer(from, to types.Address, collectibleType string, id uint64) error
}

type resolver interface {
	Resolve(account types.Address, asset string) (receivers.ReceiverRef, bool, error)
	ResolveCollection(account types.Address, collectibleType string) (receivers.CollectionRef, bool, error)
}

type registry interface {
	IsSupported(id string) bool
	IsCollectibleType(id string) bool
}

// Engine is the pull-based claim queue. Value that cannot be pushed to its
// recipient is parked in the escrow vault under the recipient's name until the
// recipient claims it.
type Engine struct {
	state       engineState
	bank        fungibles
	collectible nonFungibles
	resolver    resolver
	registry    registry
	emitter     events.Emitter
}

// NewEngine creates an escrow engine with a no-op emitter. Callers can override
// the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetBank(b fungibles) { e.bank = b }

func (e *Engine) SetCollectibles(c nonFungibles) { e.collectible = c }

func (e *Engine) SetResolver(r resolver) { e.resolver = r }

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

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(escrowEvent{evt: event})
}

func (e *Engine) ready() error {
	if e == nil || e.state == nil || e.bank == nil || e.collectible == nil || e.resolver == nil || e.registry == nil {
		return errNilState
	}
	return nil
}

// CreditFungible moves amt from `from` into the escrow vault and adds it to
// account's pending balance.
func (e *Engine) CreditFungible(from, account types.Address, asset string, amt decimal.Decimal) error {
	if err := e.ready(); err != nil {
		return err
	}
	if !amt.IsPositive() {
		return nil
	}
	if err := e.bank.SetupVault(VaultAddress, asset); err != nil {
		return err
	}
	if err := e.bank.Transfer(from, VaultAddress, asset, amt); err != nil {
		return err
	}
	pending, err := e.state.EscrowPayoutGet(account, asset)
	if err != nil {
		return err
	}
	pending = pending.Add(amt)
	if err := e.state.EscrowPayoutPut(account, asset, pending); err != nil {
		return err
	}
	e.emit(newPayoutEvent(EventTypePayoutCredited, account, asset, amt, pending))
	return nil
}

// CreditCollectible moves the token from `from` into the escrow vault and
// appends it to account's waiting list.
func (e *Engine) CreditCollectible(from, account types.Address, collectibleType string, id uint64) error {
	if err := e.ready(); err != nil {
		return err
	}
	if err := e.collectible.SetupCollection(VaultAddress, collectibleType); err != nil {
		return err
	}
	if err := e.collectible.Transfer(from, VaultAddress, collectibleType, id); err != nil {
		return err
	}
	pending, err := e.state.EscrowCollectiblesGet(account, collectibleType)
	if err != nil {
		return err
	}
	pending = append(pending, id)
	if err := e.state.EscrowCollectiblesPut(account, collectibleType, pending); err != nil {
		return err
	}
	e.emit(newNFTCreditedEvent(account, collectibleType, id))
	return nil
}

// Deliver pushes amt from `from` to the recipient's best receiver and falls
// back to crediting the escrow queue when no usable receiver exists.
func (e *Engine) Deliver(from, to types.Address, asset string, amt decimal.Decimal) (Delivery, error) {
	out := Delivery{Recipient: to, Asset: asset, Amount: amt}
	if err := e.ready(); err != nil {
		return out, err
	}
	if !amt.IsPositive() {
		return out, nil
	}
	ref, usable, err := e.resolver.Resolve(to, asset)
	if err != nil {
		return out, err
	}
	out.Path = ref.Path
	if usable {
		err := e.bank.Transfer(from, to, asset, amt)
		if err == nil {
			return out, nil
		}
		if !stderrors.Is(err, bank.ErrNoVault) {
			return out, err
		}
	}
	out.Escrowed = true
	return out, e.CreditFungible(from, to, asset, amt)
}

// DeliverCollectible pushes the token to the recipient's collection and falls
// back to the escrow queue when the collection cannot receive it.
func (e *Engine) DeliverCollectible(from, to types.Address, collectibleType string, id uint64) (CollectibleDelivery, error) {
	out := CollectibleDelivery{Recipient: to, Type: collectibleType, TokenID: id}
	if err := e.ready(); err != nil {
		return out, err
	}
	ref, usable, err := e.resolver.ResolveCollection(to, collectibleType)
	if err != nil {
		return out, err
	}
	out.Path = ref.Path
	if usable {
		err := e.collectible.Transfer(from, to, collectibleType, id)
		if err == nil {
			return out, nil
		}
		if !stderrors.Is(err, collectibles.ErrNoCollection) {
			return out, err
		}
	}
	out.Escrowed = true
	return out, e.CreditCollectible(from, to, collectibleType, id)
}

// ClaimPayout pushes the caller's full pending balance of asset to the
// caller's resolved receiver. The push is final: an unusable receiver fails the
// claim and leaves the balance in place.
func (e *Engine) ClaimPayout(caller types.Address, asset string) (decimal.Decimal, error) {
	if err := e.ready(); err != nil {
		return decimal.Zero, err
	}
	if !e.registry.IsSupported(asset) {
		return decimal.Zero, errUnsupportedAsset
	}
	pending, err := e.state.EscrowPayoutGet(caller, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if !pending.IsPositive() {
		return decimal.Zero, errNothingPending
	}
	_, usable, err := e.resolver.Resolve(caller, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if !usable {
		return decimal.Zero, errReceiverUnavailable
	}
	if err := e.bank.Transfer(VaultAddress, caller, asset, pending); err != nil {
		return decimal.Zero, err
	}
	if err := e.state.EscrowPayoutPut(caller, asset, decimal.Zero); err != nil {
		return decimal.Zero, err
	}
	e.emit(newPayoutEvent(EventTypePayoutClaimed, caller, asset, pending, decimal.Zero))
	return pending, nil
}

// ClaimNFTs pushes every waiting collectible of the type to the caller's
// collection and empties the waiting list.
func (e *Engine) ClaimNFTs(caller types.Address, collectibleType string) ([]uint64, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if !e.registry.IsCollectibleType(collectibleType) {
		return nil, errUnknownType
	}
	pending, err := e.state.EscrowCollectiblesGet(caller, collectibleType)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, errNothingPending
	}
	_, usable, err := e.resolver.ResolveCollection(caller, collectibleType)
	if err != nil {
		return nil, err
	}
	if !usable {
		return nil, errReceiverUnavailable
	}
	for _, id := range pending {
		if err := e.collectible.Transfer(VaultAddress, caller, collectibleType, id); err != nil {
			return nil, err
		}
	}
	if err := e.state.EscrowCollectiblesPut(caller, collectibleType, nil); err != nil {
		return nil, err
	}
	e.emit(newNFTsClaimedEvent(caller, collectibleType, pending))
	return pending, nil
}

func (e *Engine) PendingPayout(account types.Address, asset string) (decimal.Decimal, error) {
	if e == nil || e.state == nil {
		return decimal.Zero, errNilState
	}
	return e.state.EscrowPayoutGet(account, asset)
}

func (e *Engine) PendingCollectibles(account types.Address, collectibleType string) ([]uint64, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	ids, err := e.state.EscrowCollectiblesGet(account, collectibleType)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []uint64{}
	}
	return ids, nil
}

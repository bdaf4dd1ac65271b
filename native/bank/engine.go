package bank

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/errors"
	"nftmarket/core/events"
	"nftmarket/core/types"
)

var (
	errNilState          = errors.Kind(errors.ErrValidation, "bank engine: state not configured")
	errNotAdmin          = errors.Kind(errors.ErrUnauthorized, "bank engine: caller is not the admin")
	errNoVault           = errors.Kind(errors.ErrNotFound, "bank engine: vault not found")
	errInsufficientFunds = errors.Kind(errors.ErrValidation, "bank engine: insufficient funds")
	errInvalidAmount     = errors.Kind(errors.ErrValidation, "bank engine: amount must be positive")
	errUnsupportedAsset  = errors.Kind(errors.ErrValidation, "bank engine: asset type not supported")
	errZeroAccount       = errors.Kind(errors.ErrValidation, "bank engine: account required")
)

// ErrNoVault reports a deposit to an account lacking a vault for the asset.
var ErrNoVault = errNoVault

type engineState interface {
	VaultGet(owner types.Address, asset string) (*Vault, bool, error)
	VaultPut(*Vault) error
}

type assetRegistry interface {
	IsSupported(id string) bool
}

// Engine is the fungible transfer primitive: vault creation, withdraw,
// deposit and the admin faucet.
type Engine struct {
	state    engineState
	registry assetRegistry
	emitter  events.Emitter
	admin    types.Address
}

func NewEngine() *Engine {
	return &Engine{emitter: events.NoopEmitter{}}
}

func (e *Engine) SetState(state engineState) { e.state = state }

func (e *Engine) SetRegistry(registry assetRegistry) { e.registry = registry }

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
		e.emitter.Emit(bankEvent{evt: evt})
	}
}

func (e *Engine) vault(owner types.Address, asset string) (*Vault, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	v, ok, err := e.state.VaultGet(owner, asset)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errNoVault
	}
	return v, nil
}

// SetupVault creates an empty vault for the asset. Existing vaults are left
// untouched.
func (e *Engine) SetupVault(owner types.Address, asset string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if owner.IsZero() {
		return errZeroAccount
	}
	if e.registry != nil && !e.registry.IsSupported(asset) {
		return errUnsupportedAsset
	}
	_, ok, err := e.state.VaultGet(owner, asset)
	if err != nil || ok {
		return err
	}
	if err := e.state.VaultPut(&Vault{Owner: owner, Asset: asset, Balance: decimal.Zero}); err != nil {
		return err
	}
	e.emit(newVaultCreatedEvent(owner, asset))
	return nil
}

func (e *Engine) HasVault(owner types.Address, asset string) (bool, error) {
	if e == nil || e.state == nil {
		return false, errNilState
	}
	_, ok, err := e.state.VaultGet(owner, asset)
	return ok, err
}

// Balance returns the vault balance, or zero when no vault exists.
func (e *Engine) Balance(owner types.Address, asset string) (decimal.Decimal, error) {
	if e == nil || e.state == nil {
		return decimal.Zero, errNilState
	}
	v, ok, err := e.state.VaultGet(owner, asset)
	if err != nil || !ok {
		return decimal.Zero, err
	}
	return v.Balance, nil
}

// Withdraw debits amount from the owner's vault.
func (e *Engine) Withdraw(owner types.Address, asset string, amt decimal.Decimal) error {
	if !amt.IsPositive() {
		return errInvalidAmount
	}
	v, err := e.vault(owner, asset)
	if err != nil {
		return err
	}
	if v.Balance.LessThan(amt) {
		return errInsufficientFunds
	}
	v.Balance = v.Balance.Sub(amt)
	return e.state.VaultPut(v)
}

// Deposit credits amount to the owner's vault and fails with ErrNoVault when
// the owner has none.
func (e *Engine) Deposit(owner types.Address, asset string, amt decimal.Decimal) error {
	if !amt.IsPositive() {
		return errInvalidAmount
	}
	v, err := e.vault(owner, asset)
	if err != nil {
		return err
	}
	v.Balance = v.Balance.Add(amt)
	return e.state.VaultPut(v)
}

// Transfer moves amount between two vaults of the same asset.
func (e *Engine) Transfer(from, to types.Address, asset string, amt decimal.Decimal) error {
	if _, err := e.vault(to, asset); err != nil {
		return err
	}
	if err := e.Withdraw(from, asset, amt); err != nil {
		return err
	}
	if err := e.Deposit(to, asset, amt); err != nil {
		return err
	}
	e.emit(newTransferredEvent(from, to, asset, amt))
	return nil
}

// Mint credits newly issued tokens to an existing vault. Admin only.
func (e *Engine) Mint(caller, to types.Address, asset string, amt decimal.Decimal) error {
	if e.admin.IsZero() || caller != e.admin {
		return errNotAdmin
	}
	if e.registry != nil && !e.registry.IsSupported(asset) {
		return errUnsupportedAsset
	}
	if err := e.Deposit(to, asset, amt); err != nil {
		return err
	}
	e.emit(newMintedEvent(to, asset, amt))
	return nil
}

package core

import (
	"nftmarket/core/assets"
	"nftmarket/core/events"
	"nftmarket/core/state"
	"nftmarket/core/types"
	"nftmarket/native/auction"
	"nftmarket/native/bank"
	"nftmarket/native/collectibles"
	"nftmarket/native/escrow"
	"nftmarket/native/receivers"
	"nftmarket/native/royalty"
	"nftmarket/storage"
)

// SessionOptions carries the settings shared by every engine of a session.
type SessionOptions struct {
	Admin  types.Address
	Params auction.Params
	// Now returns the ledger time in unix seconds. Nil means wall time.
	Now func() int64
}

// Session wires every module engine over a single state manager. All engines
// observe each other's writes through the shared database.
type Session struct {
	State        *state.Manager
	Registry     *assets.Engine
	Bank         *bank.Engine
	Collectibles *collectibles.Engine
	Receivers    *receivers.Engine
	Royalty      *royalty.Switchboard
	Escrow       *escrow.Engine
	Auction      *auction.Engine
}

// NewSession builds a fully wired session on db. Events from every engine go
// to emitter; nil discards them.
func NewSession(db storage.Database, emitter events.Emitter, opts SessionOptions) *Session {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	manager := state.NewManager(db)
	s := &Session{State: manager}
	s.Registry = newRegistryEngine(manager, emitter, opts.Admin)
	s.Bank = newBankEngine(manager, emitter, s.Registry, opts.Admin)
	s.Collectibles = newCollectiblesEngine(manager, emitter, s.Registry, opts.Admin)
	s.Receivers = newReceiversEngine(manager, emitter, s)
	s.Royalty = newSwitchboard(manager, s)
	s.Escrow = newEscrowEngine(manager, emitter, s)
	s.Auction = newAuctionEngine(manager, emitter, s, opts)
	s.Registry.AddUsageChecker(s.Auction)
	return s
}

func newRegistryEngine(manager *state.Manager, emitter events.Emitter, admin types.Address) *assets.Engine {
	engine := assets.NewEngine()
	engine.SetState(manager)
	engine.SetAdmin(admin)
	engine.SetEmitter(emitter)
	return engine
}

func newBankEngine(manager *state.Manager, emitter events.Emitter, registry *assets.Engine, admin types.Address) *bank.Engine {
	engine := bank.NewEngine()
	engine.SetState(manager)
	engine.SetRegistry(registry)
	engine.SetAdmin(admin)
	engine.SetEmitter(emitter)
	return engine
}

func newCollectiblesEngine(manager *state.Manager, emitter events.Emitter, registry *assets.Engine, admin types.Address) *collectibles.Engine {
	engine := collectibles.NewEngine()
	engine.SetState(manager)
	engine.SetRegistry(registry)
	engine.SetAdmin(admin)
	engine.SetEmitter(emitter)
	return engine
}

func newReceiversEngine(manager *state.Manager, emitter events.Emitter, s *Session) *receivers.Engine {
	engine := receivers.NewEngine()
	engine.SetState(manager)
	engine.SetVaults(s.Bank)
	engine.SetCollections(s.Collectibles)
	engine.SetRegistry(s.Registry)
	engine.SetEmitter(emitter)
	return engine
}

func newSwitchboard(manager *state.Manager, s *Session) *royalty.Switchboard {
	board := royalty.NewSwitchboard()
	board.SetState(manager)
	board.SetOwnership(s.Collectibles)
	board.SetResolver(s.Receivers)
	board.SetCanonical(s.Registry)
	return board
}

func newEscrowEngine(manager *state.Manager, emitter events.Emitter, s *Session) *escrow.Engine {
	engine := escrow.NewEngine()
	engine.SetState(manager)
	engine.SetBank(s.Bank)
	engine.SetCollectibles(s.Collectibles)
	engine.SetResolver(s.Receivers)
	engine.SetRegistry(s.Registry)
	engine.SetEmitter(emitter)
	return engine
}

func newAuctionEngine(manager *state.Manager, emitter events.Emitter, s *Session, opts SessionOptions) *auction.Engine {
	engine := auction.NewEngine()
	engine.SetState(manager)
	engine.SetRegistry(s.Registry)
	engine.SetCustody(s.Collectibles)
	engine.SetFunds(s.Bank)
	engine.SetRoyalties(s.Royalty)
	engine.SetDeliveries(s.Escrow)
	if opts.Params.DefaultBidPeriodSeconds > 0 {
		engine.SetParams(opts.Params)
	}
	engine.SetNowFunc(opts.Now)
	engine.SetEmitter(emitter)
	return engine
}

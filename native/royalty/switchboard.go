package royalty

import (
	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
	"nftmarket/core/errors"
	"nftmarket/core/types"
	"nftmarket/native/receivers"
)

var (
	errNilState      = errors.Kind(errors.ErrValidation, "royalty switchboard: state not configured")
	errNotOwner      = errors.Kind(errors.ErrUnauthorized, "royalty switchboard: account does not hold the collectible")
	errNoCanonical   = errors.Kind(errors.ErrValidation, "royalty switchboard: no canonical asset configured")
	errInvalidConfig = errors.Kind(errors.ErrValidation, "royalty switchboard: invalid configuration")
	errConfigExists  = errors.Kind(errors.ErrConflict, "royalty switchboard: configuration already fixed")
)

type engineState interface {
	RoyaltyConfigGet(collectibleType string, id uint64) (*Config, bool, error)
	RoyaltyConfigPut(*Config) error
}

type ownership interface {
	Owns(account types.Address, collectibleType string, id uint64) (bool, error)
}

type resolver interface {
	Resolve(account types.Address, asset string) (receivers.ReceiverRef, bool, error)
}

type canonicalSource interface {
	Canonical() string
}

// Switchboard maps a collectible to its ordered royalty payees and their best
// available receivers. Nothing is cached; every call re-resolves live links.
type Switchboard struct {
	state     engineState
	owners    ownership
	resolver  resolver
	canonical canonicalSource
}

func NewSwitchboard() *Switchboard { return &Switchboard{} }

func (s *Switchboard) SetState(state engineState) { s.state = state }

func (s *Switchboard) SetOwnership(o ownership) { s.owners = o }

func (s *Switchboard) SetResolver(r resolver) { s.resolver = r }

func (s *Switchboard) SetCanonical(c canonicalSource) { s.canonical = c }

// SetConfig fixes the royalty configuration of a collectible. It is called
// once, at mint time.
func (s *Switchboard) SetConfig(cfg *Config) error {
	if s == nil || s.state == nil {
		return errNilState
	}
	sanitized, err := SanitizeConfig(cfg)
	if err != nil {
		return errors.Kind(errors.ErrValidation, errInvalidConfig.Error()+": "+err.Error())
	}
	if _, exists, err := s.state.RoyaltyConfigGet(sanitized.Type, sanitized.TokenID); err != nil {
		return err
	} else if exists {
		return errConfigExists
	}
	return s.state.RoyaltyConfigPut(sanitized)
}

// Config returns the stored configuration, or nil when the collectible has
// none.
func (s *Switchboard) Config(collectibleType string, id uint64) (*Config, error) {
	if s == nil || s.state == nil {
		return nil, errNilState
	}
	cfg, ok, err := s.state.RoyaltyConfigGet(collectibleType, id)
	if err != nil || !ok {
		return nil, err
	}
	return cfg, nil
}

// GetNFTRoyalty returns the royalty schedule for a collectible held by owner,
// resolving receivers for the canonical asset type.
func (s *Switchboard) GetNFTRoyalty(owner types.Address, collectibleType string, id uint64) ([]LineItem, error) {
	if s == nil || s.state == nil || s.owners == nil || s.resolver == nil || s.canonical == nil {
		return nil, errNilState
	}
	owns, err := s.owners.Owns(owner, collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, errNotOwner
	}
	asset := s.canonical.Canonical()
	if asset == "" {
		return nil, errNoCanonical
	}
	return s.Schedule(collectibleType, id, asset)
}

// Schedule returns the royalty line items resolved for asset. Every configured
// payee yields a line even when no usable receiver exists.
func (s *Switchboard) Schedule(collectibleType string, id uint64, asset string) ([]LineItem, error) {
	if s == nil || s.state == nil || s.resolver == nil {
		return nil, errNilState
	}
	cfg, ok, err := s.state.RoyaltyConfigGet(collectibleType, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []LineItem{}, nil
	}
	items := make([]LineItem, 0, len(cfg.Creators)+1)
	if len(cfg.Creators) > 0 {
		share := amount.Div(cfg.CreatorCut, decimal.NewFromInt(int64(len(cfg.Creators))))
		for _, creator := range cfg.Creators {
			item, err := s.line(creator, asset, share, LabelCreator)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
	if !cfg.Platform.IsZero() {
		item, err := s.line(cfg.Platform, asset, cfg.PlatformCut, LabelPlatform)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Switchboard) line(payee types.Address, asset string, cut decimal.Decimal, label string) (LineItem, error) {
	ref, usable, err := s.resolver.Resolve(payee, asset)
	if err != nil {
		return LineItem{}, err
	}
	return LineItem{Payee: payee, Receiver: ref, Usable: usable, Cut: cut, Label: label}, nil
}

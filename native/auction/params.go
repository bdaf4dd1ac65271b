package auction

import (
	"fmt"

	"github.com/shopspring/decimal"

	"nftmarket/core/amount"
)

// Params tunes the auction module.
type Params struct {
	DefaultBidPeriodSeconds int64
	DefaultBidIncrease      decimal.Decimal
	// MinBidIncrease is the floor for custom bid-increase fractions.
	MinBidIncrease decimal.Decimal
	// MaxMinPriceRatio bounds minPrice relative to buyNowPrice, inclusive.
	MaxMinPriceRatio decimal.Decimal
	// ApplyRoyalties adds the switchboard schedule to every settlement split.
	ApplyRoyalties bool
}

func DefaultParams() Params {
	return Params{
		DefaultBidPeriodSeconds: 86400,
		DefaultBidIncrease:      amount.MustParse("0.10"),
		MinBidIncrease:          amount.MustParse("0.02"),
		MaxMinPriceRatio:        amount.MustParse("0.8"),
		ApplyRoyalties:          true,
	}
}

func (p Params) Validate() error {
	if p.DefaultBidPeriodSeconds <= 0 {
		return fmt.Errorf("default bid period must be positive")
	}
	if !p.MinBidIncrease.IsPositive() {
		return fmt.Errorf("minimum bid increase must be positive")
	}
	if p.DefaultBidIncrease.LessThan(p.MinBidIncrease) {
		return fmt.Errorf("default bid increase %s below floor %s", p.DefaultBidIncrease, p.MinBidIncrease)
	}
	if !p.MaxMinPriceRatio.IsPositive() || p.MaxMinPriceRatio.GreaterThan(amount.One) {
		return fmt.Errorf("min price ratio must be in (0, 1]")
	}
	return nil
}

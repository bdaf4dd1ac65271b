package config

import (
	"fmt"

	"nftmarket/core/amount"
	"nftmarket/native/auction"
)

// Validate checks ranges and cross-field constraints.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config required")
	}
	if _, err := cfg.AdminAddress(); err != nil {
		return fmt.Errorf("admin: %w", err)
	}
	if _, err := cfg.AuctionParams(); err != nil {
		return fmt.Errorf("auction: %w", err)
	}
	if cfg.RPC.RateLimitPerMinute < 0 || cfg.RPC.Burst < 0 {
		return fmt.Errorf("rpc: rate limits must not be negative")
	}
	if cfg.RPC.MaxBodyBytes < 0 {
		return fmt.Errorf("rpc: max_body_bytes must not be negative")
	}
	if cfg.Logging.MaxBackups < 0 || cfg.Logging.MaxAgeDays < 0 || cfg.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("logging: rotation limits must not be negative")
	}
	if r := cfg.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry: SampleRatio must be between 0 and 1")
	}
	return nil
}

// AuctionParams converts the [Auction] section into module parameters.
func (c *Config) AuctionParams() (auction.Params, error) {
	params := auction.Params{
		DefaultBidPeriodSeconds: c.Auction.DefaultBidPeriodSeconds,
		ApplyRoyalties:          c.Auction.ApplyRoyalties == nil || *c.Auction.ApplyRoyalties,
	}
	var err error
	if params.DefaultBidIncrease, err = amount.Parse(c.Auction.DefaultBidIncrease); err != nil {
		return params, fmt.Errorf("DefaultBidIncrease: %w", err)
	}
	if params.MinBidIncrease, err = amount.Parse(c.Auction.MinBidIncrease); err != nil {
		return params, fmt.Errorf("MinBidIncrease: %w", err)
	}
	if params.MaxMinPriceRatio, err = amount.Parse(c.Auction.MaxMinPriceRatio); err != nil {
		return params, fmt.Errorf("MaxMinPriceRatio: %w", err)
	}
	if err := params.Validate(); err != nil {
		return params, err
	}
	return params, nil
}

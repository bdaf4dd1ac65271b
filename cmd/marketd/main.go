package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"nftmarket/config"
	"nftmarket/core"
	"nftmarket/core/events"
	"nftmarket/indexer"
	"nftmarket/observability"
	"nftmarket/observability/logging"
	telemetry "nftmarket/observability/otel"
	"nftmarket/rpc"
	"nftmarket/storage"
)

const genesisPathEnv = "MARKET_GENESIS"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides MARKET_GENESIS and config GenesisFile)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	env := cfg.Environment
	if v := strings.TrimSpace(os.Getenv("MARKET_ENV")); v != "" {
		env = v
	}
	logger := logging.Setup("marketd", env, logging.Options{
		Level:      cfg.Logging.Level,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, resolveGenesisPath(*genesisFlag, cfg.GenesisFile, os.LookupEnv), env, logger); err != nil {
		logger.Error("marketd stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, genesisPath, env string, logger *slog.Logger) error {
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName: "marketd",
		Environment: env,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     telemetry.ParseHeaders(cfg.Telemetry.Headers),
		Traces:      cfg.Telemetry.Traces,
		SampleRatio: cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	admin, err := cfg.AdminAddress()
	if err != nil {
		return fmt.Errorf("parse admin address: %w", err)
	}
	params, err := cfg.AuctionParams()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("prepare data directory: %w", err)
	}
	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "ledger"))
	if err != nil {
		return fmt.Errorf("open ledger database: %w", err)
	}
	defer db.Close()

	journal, err := indexer.Open(cfg.Indexer.Path, logger)
	if err != nil {
		return fmt.Errorf("open event journal: %w", err)
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logger.Warn("event journal close failed", slog.Any("error", err))
		}
	}()

	market, err := core.NewMarket(db, core.MarketConfig{
		Admin:   admin,
		Params:  params,
		Emitter: events.Multi{journal, observability.Events()},
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	if genesisPath != "" {
		g, err := config.LoadGenesis(genesisPath)
		if err != nil {
			return fmt.Errorf("load genesis: %w", err)
		}
		applied, err := market.ApplyGenesis(g)
		if err != nil {
			return fmt.Errorf("apply genesis: %w", err)
		}
		if applied {
			logger.Info("genesis applied", slog.String("path", genesisPath))
		} else {
			logger.Info("ledger already initialised; genesis skipped", slog.String("path", genesisPath))
		}
	}

	server := rpc.NewServer(market, journal, rpc.ServerConfig{
		JWTSecret:          cfg.RPC.JWTSecret,
		RateLimitPerMinute: float64(cfg.RPC.RateLimitPerMinute),
		Burst:              cfg.RPC.Burst,
		MaxBodyBytes:       cfg.RPC.MaxBodyBytes,
		ReadTimeout:        time.Duration(cfg.RPC.ReadTimeoutSeconds) * time.Second,
	}, logger)

	logger.Info("marketd starting",
		slog.String("listen", cfg.ListenAddress),
		slog.String("dataDir", cfg.DataDir),
		slog.String("admin", admin.String()),
		logging.MaskField("jwtSecret", cfg.RPC.JWTSecret))
	return server.Serve(ctx, cfg.ListenAddress)
}

// resolveGenesisPath prefers the flag, then the environment, then the config.
func resolveGenesisPath(flagPath, configPath string, lookupEnv func(string) (string, bool)) string {
	if p := strings.TrimSpace(flagPath); p != "" {
		return p
	}
	if lookupEnv != nil {
		if p, ok := lookupEnv(genesisPathEnv); ok && strings.TrimSpace(p) != "" {
			return strings.TrimSpace(p)
		}
	}
	return strings.TrimSpace(configPath)
}

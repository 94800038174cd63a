package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/luca-patrignani/helix/config"
	"github.com/luca-patrignani/helix/domain/digest"
	"github.com/luca-patrignani/helix/ledger"
	"github.com/luca-patrignani/helix/metrics"
	"github.com/luca-patrignani/helix/store"
)

// helix holds what a command needs once the configuration is resolved: the
// restored ledger, its store and the optional metrics server.
type helix struct {
	out     io.Writer
	config  config.Config
	logger  *slog.Logger
	ledger  *ledger.Ledger
	store   *store.Store
	metrics *metrics.Server
}

func (h *helix) open(cctx *cli.Context) error {
	if h.ledger != nil {
		return nil
	}
	cfg, err := resolveConfig(cctx)
	if err != nil {
		return err
	}
	h.config = cfg

	// Create a new slog logger with the PTerm logger as handler
	plog := pterm.DefaultLogger.WithLevel(ptermLevel(cfg.Level())).WithWriter(h.out)
	h.logger = slog.New(pterm.NewSlogHandler(plog))

	if cfg.MetricsAddr != "" {
		h.metrics, err = metrics.NewServer(metrics.WithAddr(cfg.MetricsAddr), metrics.WithLogger(h.logger))
		if err != nil {
			return err
		}
		h.logger.Info("serving metrics", "url", h.metrics.URL())
	}

	engine, err := digest.NewWithSuite(cfg.DigestSuite)
	if err != nil {
		return err
	}
	h.store, err = store.Open(store.Options{Path: cfg.DataDir, Logger: h.logger})
	if err != nil {
		return err
	}
	l := ledger.New(
		ledger.WithLogger(h.logger),
		ledger.WithDigestEngine(engine),
		ledger.WithObserver(metrics.NewLedger()),
	)
	started := time.Now()
	err = store.Restore(h.store, l)
	metrics.ObserveStore("load", err, started)
	if err != nil {
		return fmt.Errorf("failed to restore chain from %s: %w", cfg.DataDir, err)
	}
	h.ledger = l
	h.logger.Debug("chain restored", "records", l.Len(), "data_dir", cfg.DataDir)
	return nil
}

// resolveConfig loads the configuration file and applies the global flags on
// top of it.
func resolveConfig(cctx *cli.Context) (config.Config, error) {
	cfg, err := config.Load(cctx.Path("config"))
	if err != nil {
		return config.Config{}, err
	}
	if cctx.IsSet("data-dir") {
		cfg.DataDir = cctx.Path("data-dir")
	}
	if cctx.IsSet("log-level") {
		cfg.LogLevel = cctx.String("log-level")
	}
	if cctx.IsSet("metrics-addr") {
		cfg.MetricsAddr = cctx.String("metrics-addr")
	}
	return cfg, cfg.Validate()
}

func ptermLevel(level slog.Level) pterm.LogLevel {
	switch {
	case level <= slog.LevelDebug:
		return pterm.LogLevelDebug
	case level <= slog.LevelInfo:
		return pterm.LogLevelInfo
	case level <= slog.LevelWarn:
		return pterm.LogLevelWarn
	default:
		return pterm.LogLevelError
	}
}

// persist writes newly committed records to the store.
func (h *helix) persist() error {
	started := time.Now()
	n, err := h.store.Sync(h.ledger)
	metrics.ObserveStore("sync", err, started)
	if err != nil {
		return fmt.Errorf("failed to persist chain: %w", err)
	}
	if n > 0 {
		h.logger.Debug("records persisted", "count", n)
	}
	return nil
}

// submit queues raw and commits it right away.
func (h *helix) submit(raw, token string) (ledger.Record, error) {
	if _, err := h.ledger.Submit(raw, token); err != nil {
		return ledger.Record{}, err
	}
	rec, err := h.ledger.Commit()
	if err != nil {
		return ledger.Record{}, err
	}
	return rec, h.persist()
}

func (h *helix) close() error {
	var errs []error
	if h.store != nil {
		errs = append(errs, h.store.Close())
		h.store = nil
	}
	if h.metrics != nil {
		errs = append(errs, h.metrics.Close())
		h.metrics = nil
	}
	h.ledger = nil
	return errors.Join(errs...)
}

// withHelix opens the ledger before running action.
func withHelix(h *helix, action func(*helix, *cli.Context) error) cli.ActionFunc {
	return func(cctx *cli.Context) error {
		if err := h.open(cctx); err != nil {
			return err
		}
		return action(h, cctx)
	}
}

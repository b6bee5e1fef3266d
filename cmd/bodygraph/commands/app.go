package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/openfroyo/bodygraph/pkg/config"
	"github.com/openfroyo/bodygraph/pkg/engine"
	"github.com/openfroyo/bodygraph/pkg/ephemeris"
	"github.com/openfroyo/bodygraph/pkg/service"
	"github.com/openfroyo/bodygraph/pkg/stores"
	"github.com/openfroyo/bodygraph/pkg/telemetry"
)

// app holds the components a command runs against.
type app struct {
	cfg   *config.Config
	tel   *telemetry.Telemetry
	store *stores.SQLiteStore
	svc   *service.Service
}

// openApp loads configuration and wires telemetry, the archive (when
// withStore is set) and the chart service.
func openApp(ctx context.Context, withStore bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Telemetry.Logging.Level = level
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	tel, err := telemetry.NewTelemetry(&cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	a := &app{cfg: cfg, tel: tel}

	var store stores.Store
	if withStore {
		s, err := openStore(ctx, cfg.Store)
		if err != nil {
			_ = tel.Shutdown(ctx)
			return nil, err
		}
		a.store = s
		store = s
	}

	provider, err := newProvider(cfg.Chart.Provider)
	if err != nil {
		a.close()
		return nil, err
	}

	calc := engine.NewCalculator(provider, cfg.Chart.Search)
	a.svc = service.New(calc, store, tel, service.Options{
		Timeout:          cfg.Chart.Timeout,
		DefaultListLimit: cfg.Chart.DefaultListLimit,
		MaxListLimit:     cfg.Chart.MaxListLimit,
		MaxParallel:      cfg.Chart.BatchParallelism,
	}, log.Logger)

	return a, nil
}

func openStore(ctx context.Context, cfg stores.Config) (*stores.SQLiteStore, error) {
	store, err := stores.NewSQLiteStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", cfg.Path, err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate store %s: %w", cfg.Path, err)
	}
	return store, nil
}

func newProvider(name string) (engine.EphemerisProvider, error) {
	switch name {
	case "analytic":
		return ephemeris.NewInstrumented(name, ephemeris.NewAnalytic()), nil
	default:
		return nil, fmt.Errorf("unknown ephemeris provider %q", name)
	}
}

// close flushes pending events into the archive before closing it.
func (a *app) close() {
	if err := a.tel.Shutdown(context.Background()); err != nil {
		log.Warn().Err(err).Msg("Telemetry shutdown failed")
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close store")
		}
	}
}

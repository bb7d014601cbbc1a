// Package app wires the configured object store, services and router. The
// server, the serverless entry point and the CLI all build through it so the
// CMS client is created once per process and injected everywhere.
package app

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/adapters/cms"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/adapters/cms/cosmic"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/adapters/handler"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/config"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/core/services"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/logging"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/ports"
	"github.com/wadjakorntonsri/go-wireframe-builder/pkg/render"
)

type App struct {
	Config  *config.Config
	Store   ports.ObjectStore
	Handler http.Handler
	Logger  logging.Logger

	closers []func() error
}

// New validates cfg, opens the configured store and builds the application.
// provider may be nil, in which case nothing is logged.
func New(cfg *config.Config, provider logging.Provider) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: logging.Module(provider, logging.RootModule)}
	store, closeStore, err := OpenStore(cfg, logging.Module(provider, logging.StoreModule))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeStore)
	if err := a.build(store, provider); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// NewWithStore builds the application over an already opened store. The
// caller keeps ownership of the store.
func NewWithStore(cfg *config.Config, store ports.ObjectStore, provider logging.Provider) (*App, error) {
	a := &App{Config: cfg, Logger: logging.Module(provider, logging.RootModule)}
	if err := a.build(store, provider); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *App) build(store ports.ObjectStore, provider logging.Provider) error {
	engine, err := render.New()
	if err != nil {
		return errors.Wrap(err, "Cannot parse templates")
	}
	gateway := cms.NewGateway(store, logging.Module(provider, logging.GatewayModule))
	pages := services.NewPageService(gateway)
	editor := services.NewEditorService(gateway, logging.Module(provider, logging.EditorModule))

	a.Store = store
	a.Handler = handler.NewRouter(a.Config, pages, editor, engine, logging.Module(provider, logging.HTTPModule))
	return nil
}

// OpenStore opens the object store selected by cfg.CMSDriver. The returned
// close function releases it.
func OpenStore(cfg *config.Config, logger logging.Logger) (ports.ObjectStore, func() error, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	switch cfg.CMSDriver {
	case config.DriverSQLite:
		repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "Cannot open database %q", cfg.DatabaseURL)
		}
		logger.Info("object store ready", "driver", config.DriverSQLite)
		return repo, repo.Close, nil
	default:
		client := cosmic.NewClient(cosmic.Config{
			APIURL:     cfg.CosmicAPIURL,
			BucketSlug: cfg.CosmicBucketSlug,
			ReadKey:    cfg.CosmicReadKey,
			WriteKey:   cfg.CosmicWriteKey,
			Timeout:    cfg.HTTPTimeout,
		}, nil)
		if cfg.CosmicWriteKey == "" {
			logger.Warn("COSMIC_WRITE_KEY is not set, saves will be rejected by the CMS")
		}
		logger.Info("object store ready", "driver", config.DriverCosmic, "bucket", cfg.CosmicBucketSlug)
		return client, func() error { return nil }, nil
	}
}

// Close releases the store.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

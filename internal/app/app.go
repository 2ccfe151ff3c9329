package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"

	"github.com/mwantia/arsip/internal/config"
	"github.com/mwantia/arsip/internal/records"
	"github.com/mwantia/arsip/pkg/log"
	"github.com/mwantia/arsip/pkg/settings"
)

const cleanupTimeout = 30 * time.Second

type App struct {
	mutex sync.Mutex

	cfg *config.BaseConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	settings *settings.Settings
}

// Load builds the application from the configuration bound to viper.
func Load() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return New(cfg)
}

func New(cfg *config.BaseConfig) (*App, error) {
	a := &App{
		cfg:      cfg,
		log:      log.NewLoggerService("arsip", cfg.Log),
		settings: settings.New(cfg.SettingsFile(), cfg.Resolve(".")),
	}

	sc, err := a.setupServices()
	if err != nil {
		return nil, err
	}
	a.sc = sc
	return a, nil
}

func (a *App) setupServices() (*container.ServiceContainer, error) {
	sc := container.NewServiceContainer()
	sc.AddTagProcessor(log.NewLoggerTagProcessor())

	errs := container.Errors{}

	a.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](sc,
		container.With[log.LoggerService](),
		container.WithInstance(a.log)))

	a.log.Debug("Registering 'BaseConfig'...")
	errs.Add(container.Register[*config.BaseConfig](sc,
		container.WithInstance(a.cfg)))

	a.log.Debug("Registering 'Settings'...")
	errs.Add(container.Register[*settings.Settings](sc,
		container.WithInstance(a.settings)))

	a.log.Debug("Registering 'Archiver'...")
	errs.Add(container.Register[*backupService](sc,
		container.With[Archiver](),
		container.AsSingleton()))

	a.log.Debug("Registering 'RecordService'...")
	errs.Add(container.Register[*recordService](sc,
		container.AsSingleton()))

	if err := errs.Errors(); err != nil {
		return nil, err
	}
	return sc, nil
}

func (a *App) Config() *config.BaseConfig {
	return a.cfg
}

func (a *App) Logger() log.LoggerService {
	return a.log
}

func (a *App) Settings() *settings.Settings {
	return a.settings
}

// Backup resolves the archive service. Restore is refused while records
// of this application hold the live store open.
func (a *App) Backup(ctx context.Context) (Archiver, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	archiver, err := container.Resolve[Archiver](ctx, a.sc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive service: %w", err)
	}
	return archiver, nil
}

// Records opens and migrates the live store on first use.
func (a *App) Records(ctx context.Context) (*records.Service, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	rs, err := container.Resolve[*recordService](ctx, a.sc)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve record service: %w", err)
	}
	return rs.service, nil
}

// Run calls fn with a context cancelled on interrupt and releases every
// service afterwards.
func (a *App) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	runErr := fn(ctx)

	shutdown, cancelShutdown := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancelShutdown()

	return errors.Join(runErr, a.Close(shutdown))
}

// Close releases every resolved service. Services resolved afterwards start
// from a fresh container.
func (a *App) Close(ctx context.Context) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	var errs []error
	if err := a.sc.Cleanup(ctx); err != nil {
		errs = append(errs, fmt.Errorf("failed to complete service container cleanup: %w", err))
	}

	sc, err := a.setupServices()
	if err != nil {
		errs = append(errs, err)
	} else {
		a.sc = sc
	}
	return errors.Join(errs...)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikolayk812/lpg-cart/internal/cart"
	"github.com/nikolayk812/lpg-cart/internal/catalog"
	"github.com/nikolayk812/lpg-cart/internal/config"
	"github.com/nikolayk812/lpg-cart/internal/connectivity"
	"github.com/nikolayk812/lpg-cart/internal/notify"
	"github.com/nikolayk812/lpg-cart/internal/observability"
	"github.com/nikolayk812/lpg-cart/internal/port"
	"github.com/nikolayk812/lpg-cart/internal/remote"
	"github.com/nikolayk812/lpg-cart/internal/repository"
)

const serviceName = "cartctl"

// app holds everything one command invocation needs.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	client   *remote.Client
	monitor  *connectivity.Monitor
	prober   *connectivity.Prober
	recorder *notify.Recorder
	notifier port.Notifier

	cart     port.CartService
	catalog  *catalog.Service
	orders   port.OrderRepository
	profiles port.ProfileRepository

	closers []func(context.Context) error
}

func newApp(ctx context.Context, logOutput io.Writer) (_ *app, err error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.APIToken == "" {
		return nil, errors.New("CART_API_TOKEN is required")
	}

	instruments, shutdown, err := observability.Init(ctx, observability.Settings{
		ServiceName:   serviceName,
		LogOutput:     logOutput,
		LogLevel:      cfg.LogLevel,
		StdoutTraces:  cfg.OtelStdout,
		StdoutMetrics: cfg.OtelStdout,
	})
	if err != nil {
		return nil, fmt.Errorf("observability.Init: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  instruments.Logger,
		closers: []func(context.Context) error{shutdown},
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, a.close(context.WithoutCancel(ctx)))
		}
	}()

	local, err := a.openLocalStore(ctx)
	if err != nil {
		return nil, err
	}

	creds := remote.NewStaticCredentials(cfg.APIToken)
	a.client, err = remote.NewClient(cfg.APIURL, &http.Client{Timeout: cfg.HTTPTimeout}, creds)
	if err != nil {
		return nil, fmt.Errorf("remote.NewClient: %w", err)
	}

	a.prober = connectivity.NewProber(a.client, cfg.ProbeInterval, a.logger)
	a.monitor = connectivity.NewMonitor(a.prober.Check(ctx), connectivity.WithLogger(a.logger))

	a.recorder = &notify.Recorder{}
	a.notifier = notify.Multi{notify.NewLogNotifier(a.logger), a.recorder}

	a.orders = repository.NewOrders(local)
	a.profiles = repository.NewProfiles(local)
	a.catalog = catalog.NewService(a.client, repository.NewProducts(local), a.monitor, a.logger)

	store, err := cart.NewStore(repository.NewCart(local), a.client, a.monitor, creds,
		cart.WithLogger(a.logger),
		cart.WithNotifier(a.notifier),
		cart.WithOrders(a.client, a.orders),
	)
	if err != nil {
		return nil, fmt.Errorf("cart.NewStore: %w", err)
	}

	a.cart = observability.NewCartService(store,
		observability.WithLogger(a.logger),
		observability.WithTracer(instruments.Tracer(serviceName)),
		observability.WithMeter(instruments.Meter(serviceName)),
	)

	if err := a.cart.Open(ctx, cfg.OwnerID); err != nil {
		return nil, fmt.Errorf("cart.Open: %w", err)
	}

	return a, nil
}

func (a *app) openLocalStore(ctx context.Context) (port.LocalStore, error) {
	switch a.cfg.StoreKind {
	case config.StoreMemory:
		return repository.NewMemoryStore(), nil

	case config.StoreSQLite:
		store, err := repository.OpenSQLiteStore(ctx, a.cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("repository.OpenSQLiteStore: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return store, nil

	case config.StorePostgres:
		pool, err := pgxpool.New(ctx, a.cfg.StoreDSN)
		if err != nil {
			return nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })

		if err := repository.MigratePostgres(ctx, pool); err != nil {
			return nil, fmt.Errorf("repository.MigratePostgres: %w", err)
		}
		return repository.NewPostgresStore(pool), nil

	default:
		return nil, fmt.Errorf("store kind[%s] is not supported", a.cfg.StoreKind)
	}
}

// syncPending pushes work queued by an earlier offline invocation.
func (a *app) syncPending(ctx context.Context) {
	if !a.monitor.Online() || !a.cart.Snapshot().HasOutbox() {
		return
	}
	if _, err := a.cart.Sync(ctx); err != nil {
		a.logger.WarnContext(ctx, "failed to sync pending cart changes", slog.String("error", err.Error()))
	}
}

func (a *app) close(ctx context.Context) error {
	var err error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, a.closers[i](ctx))
	}
	a.closers = nil
	return err
}

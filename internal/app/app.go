// Package app assembles the store backend, repositories and services from
// configuration. Both the HTTP server and the CLI start from Build.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflex/internal/auth"
	"github.com/spec-kit/ticketflex/internal/clock"
	"github.com/spec-kit/ticketflex/internal/config"
	"github.com/spec-kit/ticketflex/internal/events"
	"github.com/spec-kit/ticketflex/internal/observability"
	"github.com/spec-kit/ticketflex/internal/persistence"
	"github.com/spec-kit/ticketflex/internal/repository"
	"github.com/spec-kit/ticketflex/internal/service"
	"github.com/spec-kit/ticketflex/internal/tickets"
	"github.com/spec-kit/ticketflex/internal/worker"
)

// Options override collaborators that are otherwise derived from config.
type Options struct {
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Clock   clock.Clock
	// Store replaces the configured backend.
	Store persistence.KV
}

// Container holds the wired application.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Metrics
	Store     persistence.KV
	Sessions  repository.SessionRepository
	Minter    auth.TokenMinter
	Auth      *service.AuthService
	Tickets   *service.TicketService
	Dashboard *service.DashboardService

	closers []func()
}

// Build connects the configured backend and wires every service on it.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Container, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	c := &Container{Config: cfg, Logger: logger, Metrics: opts.Metrics}

	kv := opts.Store
	if kv == nil {
		var err error
		kv, err = c.connect(ctx)
		if err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Store = kv

	minter, err := auth.NewTokenMinter(cfg.Auth, clk)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Minter = minter

	ticketRepo := repository.NewTicketRepository(kv)
	userRepo := repository.NewUserRepository(kv)
	c.Sessions = repository.NewSessionRepository(kv)

	store, err := tickets.NewStore(ctx, ticketRepo, logger, c.Metrics)
	if err != nil {
		c.Close()
		return nil, err
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartActivityWorker(service.NewActivityService(dispatcher, logger.Named("activity")))

	c.Auth = service.NewAuthService(service.AuthDependencies{
		UserRepo:    userRepo,
		SessionRepo: c.Sessions,
		Hasher:      auth.NewPasswordHasher(cfg.Auth),
		Minter:      minter,
		Clock:       clk,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     c.Metrics,
		SubmitDelay: cfg.Auth.SubmitDelay(),
	})
	c.Tickets = service.NewTicketService(service.TicketDependencies{
		Store:      store,
		Clock:      clk,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	c.Dashboard = service.NewDashboardService(store, userRepo, logger)
	return c, nil
}

func (c *Container) connect(ctx context.Context) (persistence.KV, error) {
	var backends persistence.Backends
	switch c.Config.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, c.Config.Postgres, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		c.closers = append(c.closers, pg.Close)
		if c.Config.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, c.Logger); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}
		backends.Postgres = pg
	case config.StoreDriverRedis:
		rdb, err := persistence.NewRedis(ctx, c.Config.Redis, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		c.closers = append(c.closers, rdb.Close)
		backends.Redis = rdb
	}
	return persistence.NewKV(c.Config.Store, backends)
}

// Close releases backend connections.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

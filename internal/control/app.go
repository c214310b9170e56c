package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/auctionlab/bidworker/internal/core/config"
	"github.com/auctionlab/bidworker/internal/health"
	redisclient "github.com/auctionlab/bidworker/internal/infra/redis"
	"github.com/auctionlab/bidworker/internal/infra/storage"
	"github.com/auctionlab/bidworker/internal/infra/storage/memory"
	"github.com/auctionlab/bidworker/internal/infra/storage/postgres"
	"github.com/auctionlab/bidworker/internal/metrics"
	"github.com/auctionlab/bidworker/internal/worker"
)

// App owns the worker's dependencies and lifecycle. All clients are
// constructed here and injected; nothing holds module-level connections.
type App struct {
	cfg          *config.AppConfig
	db           *postgres.DB
	redisClient  *redisclient.Client
	worker       *worker.Worker
	pending      storage.PendingJobRepository
	healthServer *health.Server
	log          *slog.Logger
	cancel       context.CancelFunc
	done         chan struct{}
}

// NewApp wires up storage, queue, processors and the worker loop.
func NewApp(cfg *config.AppConfig) (*App, error) {
	log := slog.Default()

	var (
		ledger  storage.Ledger
		users   storage.UserRepository
		pending storage.PendingJobRepository
		db      *postgres.DB
	)

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		ledger = postgres.NewLedger(db)
		users = postgres.NewUserRepo(db)
		pending = postgres.NewPendingJobRepo(db, cfg.Worker.PendingTable)
		log.Info("using PostgreSQL ledger")
	} else {
		store := memory.NewMemoryStorage()
		ledger = memory.NewLedger(store)
		users = memory.NewUserRepo(store)
		pending = memory.NewPendingJobRepo(store)
		log.Warn("no database configured, using in-memory ledger")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	w := worker.New(worker.Config{
		Queue:     redisClient,
		Publisher: redisClient,
		Bids:      worker.NewBidProcessor(ledger, users, log),
		Accepts:   worker.NewAcceptProcessor(ledger, log),
		Pending:   pending,
		Retry: worker.RetryPolicy{
			MaxRetries: cfg.Worker.MaxRetries,
			BaseDelay:  cfg.Worker.BackoffBase,
		},
		PopTimeout: cfg.Worker.PopTimeout,
		Logger:     log,
	})

	checks := map[string]health.Check{
		"redis": redisClient.Health,
	}
	if db != nil {
		checks["database"] = db.Health
	}

	return &App{
		cfg:          cfg,
		db:           db,
		redisClient:  redisClient,
		worker:       w,
		pending:      pending,
		healthServer: health.NewServer(cfg.Server.Port, checks),
		log:          log,
		done:         make(chan struct{}),
	}, nil
}

// Start launches the worker loop, the health server and the gauge
// collector. It returns immediately; Stop tears everything down.
func (a *App) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	go func() {
		defer close(a.done)
		if err := a.worker.Run(runCtx); err != nil {
			a.log.Error("worker exited", "error", err)
		}
	}()

	go a.collectGauges(runCtx)

	go func() {
		a.log.Info("health server listening", "port", a.cfg.Server.Port)
		if err := a.healthServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("health server failed", "error", err)
		}
	}()

	return nil
}

// Stop shuts the application down, waiting for the worker loop to finish
// its current job.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	select {
	case <-a.done:
	case <-ctx.Done():
		a.log.Warn("timed out waiting for worker loop")
	}

	if err := a.healthServer.Stop(ctx); err != nil {
		a.log.Warn("health server shutdown failed", "error", err)
	}
	if err := a.redisClient.Close(); err != nil {
		a.log.Warn("redis close failed", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("database close failed", "error", err)
		}
	}
	return nil
}

// collectGauges samples queue depth and recovery-store size.
func (a *App) collectGauges(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if depth, err := a.redisClient.Depth(ctx); err == nil {
				metrics.QueueDepth.Set(float64(depth))
			}
			if n, err := a.pending.Count(ctx); err == nil {
				metrics.PendingJobs.Set(float64(n))
			}
		}
	}
}

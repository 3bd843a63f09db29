// Package poolsync refreshes pool configuration and vault exchange rates
// from chain state on a cron schedule.
package poolsync

import (
	"context"
	"time"

	"levee/core"
	"levee/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	"github.com/fox-one/pkg/uuid"
	"github.com/robfig/cron/v3"
)

// Worker pool sync worker
type Worker struct {
	worker.BaseJob
	db          *db.DB
	pools       core.IPoolStore
	poolReader  core.PoolReader
	vaultReader core.VaultReader
	addresses   []string
}

// New new pool sync worker
func New(
	cfg core.ChainConfig,
	database *db.DB,
	pools core.IPoolStore,
	poolReader core.PoolReader,
	vaultReader core.VaultReader,
) *Worker {
	interval := cfg.SyncInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	job := Worker{
		db:          database,
		pools:       pools,
		poolReader:  poolReader,
		vaultReader: vaultReader,
		addresses:   cfg.Pools,
	}

	job.Cron = cron.New()
	_, _ = job.Cron.AddFunc("@every "+interval.String(), job.BaseJob.Run)
	job.OnWork = func() error {
		return job.onWork(context.Background())
	}

	return &job
}

// Run starts the cron schedule and blocks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	<-ctx.Done()
	return ctx.Err()
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "poolsync")

	for _, address := range w.addresses {
		if err := w.syncPool(ctx, address); err != nil {
			// a failing pool is retried on the next run; the rest of
			// the batch still syncs
			log.WithError(err).Errorln("sync pool:", address)
		}
	}

	return nil
}

func (w *Worker) syncPool(ctx context.Context, address string) error {
	pool, err := w.poolReader.ReadPool(ctx, address)
	if err != nil {
		return err
	}

	rate, err := w.vaultReader.ReadExchangeRate(ctx, address)
	if err != nil {
		return err
	}
	pool.ExchangeRate = rate

	if err := pool.Validate(); err != nil {
		return err
	}

	existing, err := w.pools.FindByAddress(ctx, address)
	if err == nil {
		pool.ID = existing.ID
		pool.Version = existing.Version
		pool.CreatedAt = existing.CreatedAt
	} else if err != core.ErrPoolNotFound {
		return err
	} else if pool.ID == "" {
		pool.ID = uuid.New()
	}

	return w.pools.Save(ctx, w.db, pool)
}

package worker

import (
	"context"
	"time"

	"github.com/fox-one/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Worker a long running job
type Worker interface {
	Run(ctx context.Context) error
}

// TickWorker runs a job on a fixed delay. A tick only starts after the
// previous one has returned, so cycles never overlap
type TickWorker struct {
	Delay time.Duration
	// ErrDelay the delay after a failed tick
	ErrDelay time.Duration
}

// StartTick ticks until ctx is cancelled
func (w *TickWorker) StartTick(ctx context.Context, onTick func(ctx context.Context) error) error {
	delay := w.Delay
	if delay <= 0 {
		delay = time.Minute
	}

	errDelay := w.ErrDelay
	if errDelay <= 0 {
		errDelay = delay
	}

	dur := time.Millisecond
	timer := time.NewTimer(dur)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			if err := onTick(ctx); err != nil {
				logger.FromContext(ctx).WithError(err).Debugln("tick failed")
				dur = errDelay
			} else {
				dur = delay
			}

			timer.Reset(dur)
		}
	}
}

// OnWork job body
type OnWork func() error

// BaseJob a cron scheduled job guarded against overlapping runs
type BaseJob struct {
	Cron      *cron.Cron
	IsRunning bool
	OnWork    OnWork
}

func (job *BaseJob) Start() error {
	job.Cron.Start()
	return nil
}

func (job *BaseJob) Stop() error {
	job.Cron.Stop()
	return nil
}

func (job *BaseJob) Run() {
	if job.IsRunning {
		return
	}

	job.IsRunning = true
	defer func() { job.IsRunning = false }()

	_ = job.OnWork()
}

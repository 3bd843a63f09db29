// Package scanner runs the liquidation scan on a schedule and hands the
// resulting proposals to the external executor.
package scanner

import (
	"context"
	"sync"
	"time"

	"levee/core"
	"levee/pkg/concurrency"
	"levee/worker"

	"github.com/fox-one/pkg/logger"
)

// Worker liquidation scan worker
type Worker struct {
	worker.TickWorker
	liquidations core.ILiquidationService
	sink         core.ProposalSink
}

// New new liquidation scan worker
func New(cfg core.ScannerConfig, liquidations core.ILiquidationService, sink core.ProposalSink) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	return &Worker{
		TickWorker:   worker.TickWorker{Delay: cfg.Interval},
		liquidations: liquidations,
		sink:         sink,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "scanner")

	proposals, err := w.liquidations.FindLiquidatablePositions(ctx)
	if err != nil {
		log.WithError(err).Errorln("liquidations.FindLiquidatablePositions")
		return err
	}

	if len(proposals) == 0 {
		return nil
	}

	log.Infoln("found", len(proposals), "liquidatable positions")

	limit := concurrency.NewGoLimit(concurrency.DefaultMax)
	wg := sync.WaitGroup{}
	for _, proposal := range proposals {
		limit.Add()
		wg.Add(1)

		go func(proposal *core.LiquidationProposal) {
			defer func() {
				limit.Done()
				wg.Done()
			}()

			// a rejected proposal never aborts the batch; the next scan
			// will pick the position up again
			if err := w.sink.Submit(ctx, proposal); err != nil {
				log.WithError(err).Errorln("sink.Submit:", proposal.PositionID)
			}
		}(proposal)
	}

	wg.Wait()
	return nil
}

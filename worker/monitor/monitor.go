// Package monitor implements the position monitor: a single cooperative
// loop that re-evaluates every active position's health each cycle,
// classifies severity and raises graduated alerts.
package monitor

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"levee/core"
	"levee/pkg/risk"
	"levee/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.New(1, 0)

// Worker position monitor worker
type Worker struct {
	worker.TickWorker
	positions core.IPositionStore
	pools     core.IPoolStore
	oracle    core.IPriceOracleService
	notifier  core.INotificationService
	property  property.Store

	warning  decimal.Decimal
	critical decimal.Decimal

	mu    sync.Mutex
	stats core.MonitorStats
}

// New new position monitor worker
func New(
	cfg core.MonitorConfig,
	positions core.IPositionStore,
	pools core.IPoolStore,
	oracle core.IPriceOracleService,
	notifier core.INotificationService,
	property property.Store,
) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if !cfg.WarningThreshold.IsPositive() {
		cfg.WarningThreshold = decimal.NewFromFloat(1.2)
	}
	if !cfg.CriticalThreshold.IsPositive() {
		cfg.CriticalThreshold = decimal.NewFromFloat(1.05)
	}

	return &Worker{
		TickWorker: worker.TickWorker{Delay: cfg.Interval},
		positions:  positions,
		pools:      pools,
		oracle:     oracle,
		notifier:   notifier,
		property:   property,
		warning:    cfg.WarningThreshold,
		critical:   cfg.CriticalThreshold,
	}
}

// Run run worker
func (w *Worker) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

// Stats cumulative statistics since start or the last reset
func (w *Worker) Stats() core.MonitorStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// ResetStats zeroes the cumulative statistics
func (w *Worker) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = core.MonitorStats{}
}

// onWork one full monitoring cycle. Per position failures are counted
// and skipped; only a failure to load state aborts the cycle
func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "monitor")

	positions, err := w.positions.ListActive(ctx)
	if err != nil {
		log.WithError(err).Errorln("positions.ListActive")
		return err
	}

	pools, err := w.pools.AllAsMap(ctx)
	if err != nil {
		log.WithError(err).Errorln("pools.AllAsMap")
		return err
	}

	w.adoptReset(ctx)

	quotes, quoteErrs := w.fetchPrices(ctx, positions)

	var cycle core.MonitorStats
	for _, position := range positions {
		cycle.PositionsChecked++

		if err := w.evaluate(ctx, position, pools, quotes, quoteErrs, &cycle); err != nil {
			cycle.Errors++
			log.WithError(err).Errorln("evaluate position:", position.ID)
		}
	}

	w.mu.Lock()
	w.stats.Cycles++
	w.stats.PositionsChecked += cycle.PositionsChecked
	w.stats.AlertsWarning += cycle.AlertsWarning
	w.stats.AlertsCritical += cycle.AlertsCritical
	w.stats.AlertsLiquidatable += cycle.AlertsLiquidatable
	w.stats.Errors += cycle.Errors
	w.stats.LastCycleAt = time.Now()
	stats := w.stats
	w.mu.Unlock()

	w.persistStats(ctx, stats)

	log.Debugf("cycle done: %d positions, %d errors", cycle.PositionsChecked, cycle.Errors)
	return nil
}

// fetchPrices collects the asset set of indebted positions and fetches
// quotes in one batch; debt free positions trigger no oracle traffic
func (w *Worker) fetchPrices(ctx context.Context, positions []*core.Position) (map[string]*core.PriceQuote, map[string]error) {
	assets := make(map[string]bool)
	for _, position := range positions {
		if !position.HasDebt() {
			continue
		}

		assets[position.CollateralAsset] = true
		assets[position.DebtAsset] = true
	}

	if len(assets) == 0 {
		return nil, nil
	}

	assetIDs := make([]string, 0, len(assets))
	for asset := range assets {
		assetIDs = append(assetIDs, asset)
	}

	return w.oracle.GetPrices(ctx, assetIDs)
}

func (w *Worker) evaluate(
	ctx context.Context,
	position *core.Position,
	pools map[string]*core.Pool,
	quotes map[string]*core.PriceQuote,
	quoteErrs map[string]error,
	cycle *core.MonitorStats,
) error {
	log := logger.FromContext(ctx).WithField("worker", "monitor")

	if !position.HasDebt() {
		// infinitely healthy; clear any stored factor, no alert
		if position.HealthFactor.Valid {
			return w.positions.UpdateHealth(ctx, position.ID, decimal.NullDecimal{})
		}

		return nil
	}

	pool, ok := pools[position.PoolID]
	if !ok {
		return core.ErrPoolNotFound
	}

	collateralQuote, ok := quotes[position.CollateralAsset]
	if !ok {
		if err := quoteErrs[position.CollateralAsset]; err != nil {
			return err
		}
		return core.ErrUnsupportedAsset
	}

	debtQuote, ok := quotes[position.DebtAsset]
	if !ok {
		if err := quoteErrs[position.DebtAsset]; err != nil {
			return err
		}
		return core.ErrUnsupportedAsset
	}

	health := risk.HealthFactor(
		position.CollateralAmount, collateralQuote.Price,
		position.DebtAmount, debtQuote.Price,
		pool.LiquidationThreshold,
	)

	severity, threshold := w.classify(health)
	if severity.Alertable() {
		alert := &core.Alert{
			TraceID:         uuid.New(),
			PositionID:      position.ID,
			PoolID:          position.PoolID,
			CollateralAsset: position.CollateralAsset,
			DebtAsset:       position.DebtAsset,
			Severity:        severity,
			HealthFactor:    health.Value,
			Threshold:       threshold,
		}

		// delivery failure must not block the cycle
		if err := w.notifier.Emit(ctx, alert); err != nil {
			log.WithError(err).Errorln("notifier.Emit:", position.ID)
		}

		cycle.CountAlert(severity)
	}

	return w.positions.UpdateHealth(ctx, position.ID, health.NullDecimal())
}

func (w *Worker) classify(health risk.Health) (core.Severity, decimal.Decimal) {
	switch {
	case health.Infinite:
		return core.SeverityHealthy, decimal.Zero
	case health.Value.LessThan(one):
		return core.SeverityLiquidatable, one
	case health.Value.LessThan(w.critical):
		return core.SeverityCritical, w.critical
	case health.Value.LessThan(w.warning):
		return core.SeverityWarning, w.warning
	default:
		return core.SeverityHealthy, decimal.Zero
	}
}

// adoptReset syncs the in-memory counters with the persisted snapshot.
// The API resets stats by writing a zeroed snapshot; a persisted cycle
// count below the in-memory one means such a reset happened and the
// worker continues from the stored counters instead of overwriting them
func (w *Worker) adoptReset(ctx context.Context) {
	if w.property == nil {
		return
	}

	v, err := w.property.Get(ctx, core.MonitorStatsProperty)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("property.Get", core.MonitorStatsProperty)
		return
	}

	raw := v.String()
	if raw == "" {
		return
	}

	var stored core.MonitorStats
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return
	}

	w.mu.Lock()
	if stored.Cycles < w.stats.Cycles {
		w.stats = stored
	}
	w.mu.Unlock()
}

func (w *Worker) persistStats(ctx context.Context, stats core.MonitorStats) {
	if w.property == nil {
		return
	}

	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}

	if err := w.property.Save(ctx, core.MonitorStatsProperty, string(raw)); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("property.Save", core.MonitorStatsProperty)
	}
}

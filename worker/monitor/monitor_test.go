package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"levee/core"
	"levee/pkg/number"
	"levee/pkg/risk"

	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOracle struct {
	mu     sync.Mutex
	prices map[string]decimal.Decimal
	calls  int
}

func (f *fakeOracle) GetPrice(ctx context.Context, assetID string) (*core.PriceQuote, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	price, ok := f.prices[assetID]
	if !ok {
		return nil, core.ErrUnsupportedAsset
	}

	return &core.PriceQuote{AssetID: assetID, Price: price, SourceCount: 5}, nil
}

func (f *fakeOracle) RefreshPrice(ctx context.Context, assetID string) (*core.PriceQuote, error) {
	return f.GetPrice(ctx, assetID)
}

func (f *fakeOracle) GetPrices(ctx context.Context, assetIDs []string) (map[string]*core.PriceQuote, map[string]error) {
	quotes := make(map[string]*core.PriceQuote)
	errs := make(map[string]error)
	for _, assetID := range assetIDs {
		if quote, err := f.GetPrice(ctx, assetID); err != nil {
			errs[assetID] = err
		} else {
			quotes[assetID] = quote
		}
	}
	return quotes, errs
}

func (f *fakeOracle) Clear() {}

func (f *fakeOracle) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakePositionStore struct {
	positions []*core.Position
	updated   map[string]decimal.NullDecimal
}

func (s *fakePositionStore) Create(ctx context.Context, p *core.Position) error { return nil }
func (s *fakePositionStore) Find(ctx context.Context, id string) (*core.Position, error) {
	return nil, core.ErrPositionNotFound
}
func (s *fakePositionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	return nil, nil
}
func (s *fakePositionStore) ListActive(ctx context.Context) ([]*core.Position, error) {
	return s.positions, nil
}
func (s *fakePositionStore) Update(ctx context.Context, tx *db.DB, p *core.Position) error {
	return nil
}
func (s *fakePositionStore) UpdateHealth(ctx context.Context, id string, health decimal.NullDecimal) error {
	if s.updated == nil {
		s.updated = make(map[string]decimal.NullDecimal)
	}
	s.updated[id] = health
	return nil
}

type fakePoolStore struct {
	pools []*core.Pool
}

func (s *fakePoolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error { return nil }
func (s *fakePoolStore) Find(ctx context.Context, id string) (*core.Pool, error) {
	return nil, core.ErrPoolNotFound
}
func (s *fakePoolStore) FindByAddress(ctx context.Context, address string) (*core.Pool, error) {
	return nil, core.ErrPoolNotFound
}
func (s *fakePoolStore) All(ctx context.Context) ([]*core.Pool, error) { return s.pools, nil }
func (s *fakePoolStore) AllAsMap(ctx context.Context) (map[string]*core.Pool, error) {
	m := make(map[string]*core.Pool)
	for _, p := range s.pools {
		m[p.ID] = p
	}
	return m, nil
}

type fakeNotifier struct {
	alerts []*core.Alert
	fail   bool
}

func (n *fakeNotifier) Emit(ctx context.Context, alert *core.Alert) error {
	if n.fail {
		return core.ErrUnknown
	}
	n.alerts = append(n.alerts, alert)
	return nil
}

type fakePropertyStore struct {
	mu     sync.Mutex
	values map[string]property.Value
}

func (s *fakePropertyStore) Get(ctx context.Context, key string) (property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key], nil
}

func (s *fakePropertyStore) Save(ctx context.Context, key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]property.Value)
	}
	s.values[key] = property.Parse(value)
	return nil
}

func (s *fakePropertyStore) Expire(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *fakePropertyStore) List(ctx context.Context) (map[string]property.Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values, nil
}

func d(v string) decimal.Decimal {
	return number.Decimal(v)
}

func ethPool() *core.Pool {
	return &core.Pool{
		ID:                   "pool-eth-usdc",
		CollateralAsset:      "eth",
		DebtAsset:            "usdc",
		MaxLTV:               d("0.75"),
		LiquidationThreshold: d("0.80"),
		LiquidationBonus:     d("0.05"),
	}
}

// position with 1.5 ETH collateral: health = 3000 / debt at the
// test prices (ETH 2500, threshold 0.80)
func position(id string, debt string) *core.Position {
	return &core.Position{
		ID:               id,
		PoolID:           "pool-eth-usdc",
		CollateralAsset:  "eth",
		CollateralAmount: d("1.5"),
		DebtAsset:        "usdc",
		DebtAmount:       d(debt),
		Status:           core.PositionStatusActive,
	}
}

func newWorker(positions []*core.Position) (*Worker, *fakePositionStore, *fakeNotifier, *fakeOracle) {
	store := &fakePositionStore{positions: positions}
	notifier := &fakeNotifier{}
	oracle := &fakeOracle{prices: map[string]decimal.Decimal{
		"eth":  d("2500"),
		"usdc": d("1"),
	}}

	w := New(
		core.MonitorConfig{},
		store,
		&fakePoolStore{pools: []*core.Pool{ethPool()}},
		oracle,
		notifier,
		nil,
	)
	return w, store, notifier, oracle
}

func TestCycleClassification(t *testing.T) {
	w, store, notifier, _ := newWorker([]*core.Position{
		position("healthy", "1000"),      // health 3.0
		position("warning", "2600"),      // health ~1.15
		position("critical", "2900"),     // health ~1.03
		position("liquidatable", "3100"), // health ~0.97
		position("debt-free", "0"),
	})

	require.NoError(t, w.onWork(context.Background()))

	bySeverity := make(map[string]core.Severity)
	for _, alert := range notifier.alerts {
		bySeverity[alert.PositionID] = alert.Severity
	}

	assert.Len(t, notifier.alerts, 3, "healthy positions raise no alert")
	assert.Equal(t, core.SeverityWarning, bySeverity["warning"])
	assert.Equal(t, core.SeverityCritical, bySeverity["critical"])
	assert.Equal(t, core.SeverityLiquidatable, bySeverity["liquidatable"])

	// recomputed health factors are persisted
	require.Contains(t, store.updated, "healthy")
	assert.True(t, store.updated["healthy"].Valid)
	assert.True(t, store.updated["healthy"].Decimal.Equal(d("3")))
	assert.True(t, store.updated["liquidatable"].Decimal.LessThan(d("1")))

	stats := w.Stats()
	assert.Equal(t, int64(1), stats.Cycles)
	assert.Equal(t, int64(5), stats.PositionsChecked)
	assert.Equal(t, int64(1), stats.AlertsWarning)
	assert.Equal(t, int64(1), stats.AlertsCritical)
	assert.Equal(t, int64(1), stats.AlertsLiquidatable)
	assert.Equal(t, int64(0), stats.Errors)
	assert.False(t, stats.LastCycleAt.IsZero())
}

func TestCycleIsolatesFailures(t *testing.T) {
	// ten positions; #4 references an asset the oracle does not know.
	// the cycle must classify the other nine and count exactly one error
	positions := make([]*core.Position, 0, 10)
	for i := 1; i <= 10; i++ {
		p := position(fmt.Sprintf("p%d", i), "3100")
		if i == 4 {
			p.CollateralAsset = "doge"
		}
		positions = append(positions, p)
	}

	w, store, notifier, _ := newWorker(positions)
	require.NoError(t, w.onWork(context.Background()))

	stats := w.Stats()
	assert.Equal(t, int64(10), stats.PositionsChecked)
	assert.Equal(t, int64(1), stats.Errors)
	assert.Equal(t, int64(9), stats.AlertsLiquidatable)
	assert.Len(t, notifier.alerts, 9)

	assert.NotContains(t, store.updated, "p4")
	for i := 5; i <= 10; i++ {
		assert.Contains(t, store.updated, fmt.Sprintf("p%d", i),
			"positions after the failing one must still be evaluated")
	}
}

func TestCycleSkipsOracleForDebtFree(t *testing.T) {
	stale := position("was-indebted", "0")
	stale.HealthFactor = decimal.NullDecimal{Valid: true, Decimal: d("1.5")}

	w, store, notifier, oracle := newWorker([]*core.Position{
		position("debt-free", "0"),
		stale,
	})

	require.NoError(t, w.onWork(context.Background()))

	assert.Equal(t, 0, oracle.callCount(), "debt free positions trigger no oracle traffic")
	assert.Empty(t, notifier.alerts)

	// a leftover health factor from before the debt was repaid is cleared
	require.Contains(t, store.updated, "was-indebted")
	assert.False(t, store.updated["was-indebted"].Valid)
	assert.NotContains(t, store.updated, "debt-free")
}

func TestNotifierFailureDoesNotBlockCycle(t *testing.T) {
	w, store, notifier, _ := newWorker([]*core.Position{
		position("liquidatable", "3100"),
	})
	notifier.fail = true

	require.NoError(t, w.onWork(context.Background()))

	// the alert could not be delivered but the health is still persisted
	assert.Contains(t, store.updated, "liquidatable")
	stats := w.Stats()
	assert.Equal(t, int64(0), stats.Errors)
}

func TestStatsReset(t *testing.T) {
	w, _, _, _ := newWorker([]*core.Position{position("p1", "1000")})

	require.NoError(t, w.onWork(context.Background()))
	require.Equal(t, int64(1), w.Stats().Cycles)

	w.ResetStats()
	stats := w.Stats()
	assert.Equal(t, int64(0), stats.Cycles)
	assert.Equal(t, int64(0), stats.PositionsChecked)
	assert.True(t, stats.LastCycleAt.IsZero())
}

func TestStatsResetSurvivesNextCycle(t *testing.T) {
	properties := &fakePropertyStore{}
	w := New(
		core.MonitorConfig{},
		&fakePositionStore{positions: []*core.Position{position("p1", "1000")}},
		&fakePoolStore{pools: []*core.Pool{ethPool()}},
		&fakeOracle{prices: map[string]decimal.Decimal{
			"eth":  d("2500"),
			"usdc": d("1"),
		}},
		&fakeNotifier{},
		properties,
	)

	ctx := context.Background()
	require.NoError(t, w.onWork(ctx))
	require.NoError(t, w.onWork(ctx))
	require.Equal(t, int64(2), persistedStats(t, properties).Cycles)

	// the API resets by writing a zeroed snapshot; the next cycle must
	// continue from zero instead of republishing the old counters
	raw, err := json.Marshal(core.MonitorStats{})
	require.NoError(t, err)
	require.NoError(t, properties.Save(ctx, core.MonitorStatsProperty, string(raw)))

	require.NoError(t, w.onWork(ctx))

	snapshot := persistedStats(t, properties)
	assert.Equal(t, int64(1), snapshot.Cycles)
	assert.Equal(t, int64(1), snapshot.PositionsChecked)
	assert.Equal(t, int64(1), w.Stats().Cycles)
}

func persistedStats(t *testing.T, s *fakePropertyStore) core.MonitorStats {
	v, err := s.Get(context.Background(), core.MonitorStatsProperty)
	require.NoError(t, err)

	var stats core.MonitorStats
	require.NoError(t, json.Unmarshal([]byte(v.String()), &stats))
	return stats
}

func TestClassifyBoundaries(t *testing.T) {
	w, _, _, _ := newWorker(nil)

	severity, threshold := w.classify(risk.Health{Value: d("0.999999")})
	assert.Equal(t, core.SeverityLiquidatable, severity)
	assert.True(t, threshold.Equal(d("1")))

	// exactly 1.0 is not liquidatable but still critical
	severity, _ = w.classify(risk.Health{Value: d("1")})
	assert.Equal(t, core.SeverityCritical, severity)

	severity, _ = w.classify(risk.Health{Value: d("1.05")})
	assert.Equal(t, core.SeverityWarning, severity)

	severity, _ = w.classify(risk.Health{Value: d("1.2")})
	assert.Equal(t, core.SeverityHealthy, severity)

	severity, _ = w.classify(risk.InfiniteHealth())
	assert.Equal(t, core.SeverityHealthy, severity)
}

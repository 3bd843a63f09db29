package liquidation

import (
	"context"
	"time"

	"levee/core"
	"levee/pkg/number"
	"levee/pkg/risk"

	"github.com/fox-one/pkg/logger"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type service struct {
	positions    core.IPositionStore
	pools        core.IPoolStore
	liquidations core.ILiquidationStore
	oracle       core.IPriceOracleService
}

// New new liquidation scanner service
func New(
	positions core.IPositionStore,
	pools core.IPoolStore,
	liquidations core.ILiquidationStore,
	oracle core.IPriceOracleService,
) core.ILiquidationService {
	return &service{
		positions:    positions,
		pools:        pools,
		liquidations: liquidations,
		oracle:       oracle,
	}
}

func (s *service) FindLiquidatablePositions(ctx context.Context) ([]*core.LiquidationProposal, error) {
	log := logger.FromContext(ctx).WithField("service", "liquidation")

	positions, err := s.positions.ListActive(ctx)
	if err != nil {
		log.WithError(err).Errorln("positions.ListActive")
		return nil, err
	}

	pools, err := s.pools.AllAsMap(ctx)
	if err != nil {
		log.WithError(err).Errorln("pools.AllAsMap")
		return nil, err
	}

	// positions without debt are infinitely healthy and never scanned
	indebted := positions[:0]
	assets := make(map[string]bool)
	for _, p := range positions {
		if !p.HasDebt() {
			continue
		}

		indebted = append(indebted, p)
		assets[p.CollateralAsset] = true
		assets[p.DebtAsset] = true
	}

	assetIDs := make([]string, 0, len(assets))
	for asset := range assets {
		assetIDs = append(assetIDs, asset)
	}

	quotes, quoteErrs := s.oracle.GetPrices(ctx, assetIDs)
	for asset, err := range quoteErrs {
		log.WithError(err).Errorln("price unavailable:", asset)
	}

	proposals := make([]*core.LiquidationProposal, 0)
	for _, position := range indebted {
		pool, ok := pools[position.PoolID]
		if !ok {
			log.Errorln("pool not found:", position.PoolID)
			continue
		}

		collateralQuote, ok := quotes[position.CollateralAsset]
		if !ok {
			continue
		}
		debtQuote, ok := quotes[position.DebtAsset]
		if !ok {
			continue
		}

		health := risk.HealthFactor(
			position.CollateralAmount, collateralQuote.Price,
			position.DebtAmount, debtQuote.Price,
			pool.LiquidationThreshold,
		)
		if !health.Liquidatable() {
			continue
		}

		proposal := s.buildProposal(position, pool, collateralQuote, debtQuote, health)
		proposals = append(proposals, proposal)
	}

	return proposals, nil
}

// buildProposal covers the full outstanding debt when the collateral
// supports it, otherwise the largest partial amount the collateral can pay
func (s *service) buildProposal(
	position *core.Position,
	pool *core.Pool,
	collateralQuote, debtQuote *core.PriceQuote,
	health risk.Health,
) *core.LiquidationProposal {
	debtToCover := position.DebtAmount
	seized, bonus := risk.SeizureAmounts(debtToCover, collateralQuote.Price, debtQuote.Price, pool.LiquidationBonus)

	if seized.GreaterThan(position.CollateralAmount) {
		debtToCover = maxCoverableDebt(position.CollateralAmount, collateralQuote.Price, debtQuote.Price, pool.LiquidationBonus)
		seized, bonus = risk.SeizureAmounts(debtToCover, collateralQuote.Price, debtQuote.Price, pool.LiquidationBonus)
	}

	// trace derived from the position and amount so rescans of the same
	// state resubmit under the same id
	trace := foxuuid.MD5(position.ID + ":liquidate:" + debtToCover.String())

	return &core.LiquidationProposal{
		TraceID:           trace,
		PositionID:        position.ID,
		PoolID:            pool.ID,
		DebtAsset:         position.DebtAsset,
		DebtToCover:       debtToCover,
		CollateralAsset:   position.CollateralAsset,
		CollateralToSeize: seized,
		BonusAmount:       bonus,
		HealthFactor:      health.Value,
		CollateralPrice:   collateralQuote,
		DebtPrice:         debtQuote,
		CreatedAt:         time.Now(),
	}
}

func (s *service) ComputeSeizure(ctx context.Context, position *core.Position, pool *core.Pool, debtToCover decimal.Decimal) (*core.Seizure, error) {
	if !debtToCover.IsPositive() {
		return nil, core.ErrInvalidAmount
	}

	quotes, quoteErrs := s.oracle.GetPrices(ctx, []string{position.CollateralAsset, position.DebtAsset})
	for _, err := range quoteErrs {
		return nil, err
	}

	// a liquidator never repays more than the position owes
	if debtToCover.GreaterThan(position.DebtAmount) {
		debtToCover = position.DebtAmount
	}

	collateralQuote := quotes[position.CollateralAsset]
	debtQuote := quotes[position.DebtAsset]

	seized, bonus := risk.SeizureAmounts(debtToCover, collateralQuote.Price, debtQuote.Price, pool.LiquidationBonus)
	if seized.GreaterThan(position.CollateralAmount) {
		return nil, core.ErrInsufficientCollateral
	}

	return &core.Seizure{
		DebtCovered:      debtToCover,
		CollateralSeized: seized,
		BonusAmount:      bonus,
	}, nil
}

func (s *service) RecordEvent(ctx context.Context, event *core.LiquidationEvent) error {
	if _, err := uuid.FromString(event.TraceID); err != nil {
		return core.ErrInvalidTraceID
	}

	if _, found, err := s.liquidations.FindByTrace(ctx, event.TraceID); err != nil {
		return err
	} else if found {
		// events are immutable once recorded
		return nil
	}

	return s.liquidations.Create(ctx, event)
}

// maxCoverableDebt the debt amount whose seizure, bonus included, consumes
// exactly the remaining collateral
func maxCoverableDebt(collateralAmount, collateralPrice, debtPrice, bonus decimal.Decimal) decimal.Decimal {
	collateralValue := collateralAmount.Mul(collateralPrice)
	debtValue := number.Div(collateralValue, decimal.New(1, 0).Add(bonus))
	return number.Floor(number.Div(debtValue, debtPrice), number.AmountPrecision)
}

package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LiquidationEvent a confirmed liquidation, immutable once recorded
type LiquidationEvent struct {
	ID               uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID          string          `sql:"size:36;unique_index:idx_liquidations_trace" json:"trace_id"`
	PositionID       string          `sql:"size:36;index:idx_liquidations_position" json:"position_id"`
	Liquidator       string          `sql:"size:64" json:"liquidator"`
	DebtRepaid       decimal.Decimal `sql:"type:decimal(32,8)" json:"debt_repaid"`
	CollateralSeized decimal.Decimal `sql:"type:decimal(32,8)" json:"collateral_seized"`
	BonusAmount      decimal.Decimal `sql:"type:decimal(32,8)" json:"bonus_amount"`
	TxHash           string          `sql:"size:128" json:"tx_hash"`
	CreatedAt        time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// Seizure a liquidation payout breakdown. CollateralSeized is always the
// exact sum of the base value and the bonus
type Seizure struct {
	DebtCovered      decimal.Decimal `json:"debt_covered"`
	CollateralSeized decimal.Decimal `json:"collateral_seized"`
	BonusAmount      decimal.Decimal `json:"bonus_amount"`
}

// LiquidationProposal an eligible liquidation computed as of the last scan.
// The external executor must re-validate on chain before committing
type LiquidationProposal struct {
	TraceID           string          `json:"trace_id"`
	PositionID        string          `json:"position_id"`
	PoolID            string          `json:"pool_id"`
	DebtAsset         string          `json:"debt_asset"`
	DebtToCover       decimal.Decimal `json:"debt_to_cover"`
	CollateralAsset   string          `json:"collateral_asset"`
	CollateralToSeize decimal.Decimal `json:"collateral_to_seize"`
	BonusAmount       decimal.Decimal `json:"bonus_amount"`
	HealthFactor      decimal.Decimal `json:"health_factor"`
	CollateralPrice   *PriceQuote     `json:"collateral_price"`
	DebtPrice         *PriceQuote     `json:"debt_price"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ILiquidationStore liquidation event store interface, insert only
type ILiquidationStore interface {
	Create(ctx context.Context, event *LiquidationEvent) error
	FindByTrace(ctx context.Context, traceID string) (*LiquidationEvent, bool, error)
	ListByPosition(ctx context.Context, positionID string) ([]*LiquidationEvent, error)
}

// ILiquidationService liquidation scanner interface
type ILiquidationService interface {
	// FindLiquidatablePositions scans active positions and proposes
	// liquidations for those with a defined health factor below one
	FindLiquidatablePositions(ctx context.Context) ([]*LiquidationProposal, error)
	// ComputeSeizure prices a liquidation of debtToCover against the
	// position; debtToCover is capped at the outstanding debt
	ComputeSeizure(ctx context.Context, position *Position, pool *Pool, debtToCover decimal.Decimal) (*Seizure, error)
	// RecordEvent persists a confirmed liquidation reported by the executor
	RecordEvent(ctx context.Context, event *LiquidationEvent) error
}

// ProposalSink external executor boundary consuming liquidation proposals
type ProposalSink interface {
	Submit(ctx context.Context, proposal *LiquidationProposal) error
}

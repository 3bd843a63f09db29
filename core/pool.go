package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Pool a collateral/debt asset pair configuration, refreshed from chain state
type Pool struct {
	ID              string `sql:"size:36;PRIMARY_KEY" json:"id"`
	Address         string `sql:"size:64;unique_index:idx_pools_address" json:"address"`
	CollateralAsset string `sql:"size:36" json:"collateral_asset"`
	DebtAsset       string `sql:"size:36" json:"debt_asset"`
	// MaxLTV borrowable value / collateral value, e.g. 0.75
	MaxLTV decimal.Decimal `sql:"type:decimal(20,8)" json:"max_ltv"`
	// LiquidationThreshold risk adjustment applied to collateral, always >= MaxLTV
	LiquidationThreshold decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_threshold"`
	// LiquidationBonus extra collateral fraction awarded to a liquidator
	LiquidationBonus decimal.Decimal `sql:"type:decimal(20,8)" json:"liquidation_bonus"`
	TotalSupplied    decimal.Decimal `sql:"type:decimal(32,8)" json:"total_supplied"`
	TotalBorrowed    decimal.Decimal `sql:"type:decimal(32,8)" json:"total_borrowed"`
	// ExchangeRate assets per unit of vault share
	ExchangeRate decimal.Decimal `sql:"type:decimal(32,16)" json:"exchange_rate"`
	Version      int64           `sql:"default:0" json:"version"`
	CreatedAt    time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// AvailableLiquidity supplied minus borrowed, never negative on a valid pool
func (p *Pool) AvailableLiquidity() decimal.Decimal {
	return p.TotalSupplied.Sub(p.TotalBorrowed)
}

// Validate checks the pool invariants before it is accepted from chain state
func (p *Pool) Validate() error {
	if p.LiquidationThreshold.LessThan(p.MaxLTV) {
		return ErrInvalidPoolConfig
	}

	if p.TotalBorrowed.GreaterThan(p.TotalSupplied) {
		return ErrInsufficientLiquidity
	}

	return nil
}

// IPoolStore pool store interface
type IPoolStore interface {
	Save(ctx context.Context, tx *db.DB, pool *Pool) error
	Find(ctx context.Context, id string) (*Pool, error)
	FindByAddress(ctx context.Context, address string) (*Pool, error)
	All(ctx context.Context) ([]*Pool, error)
	AllAsMap(ctx context.Context) (map[string]*Pool, error)
}

package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// position lifecycle status
const (
	PositionStatusActive     = "active"
	PositionStatusLiquidated = "liquidated"
	PositionStatusClosed     = "closed"
)

// Position a user exposure in one pool
type Position struct {
	ID               string          `sql:"size:36;PRIMARY_KEY" json:"id"`
	UserID           string          `sql:"size:36;index:idx_positions_user" json:"user_id"`
	PoolID           string          `sql:"size:36;index:idx_positions_pool" json:"pool_id"`
	CollateralAsset  string          `sql:"size:36" json:"collateral_asset"`
	CollateralAmount decimal.Decimal `sql:"type:decimal(32,8)" json:"collateral_amount"`
	DebtAsset        string          `sql:"size:36" json:"debt_asset"`
	DebtAmount       decimal.Decimal `sql:"type:decimal(32,8)" json:"debt_amount"`
	// HealthFactor is null while the position carries no debt
	HealthFactor decimal.NullDecimal `sql:"type:decimal(32,16)" json:"health_factor"`
	Status       string              `sql:"size:16;default:'active';index:idx_positions_status" json:"status"`
	Version      int64               `sql:"default:0" json:"version"`
	CreatedAt    time.Time           `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time           `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// HasDebt reports whether the position carries outstanding debt
func (p *Position) HasDebt() bool {
	return p.DebtAmount.IsPositive()
}

// IPositionStore position store interface
type IPositionStore interface {
	Create(ctx context.Context, position *Position) error
	Find(ctx context.Context, id string) (*Position, error)
	FindByUser(ctx context.Context, userID string) ([]*Position, error)
	ListActive(ctx context.Context) ([]*Position, error)
	Update(ctx context.Context, tx *db.DB, position *Position) error
	UpdateHealth(ctx context.Context, id string, health decimal.NullDecimal) error
}

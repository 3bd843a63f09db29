package views

import (
	"levee/core"

	"github.com/shopspring/decimal"
)

// Position position view
type Position struct {
	core.Position
	Liquidatable bool `json:"liquidatable"`
}

// PositionView build the position view
func PositionView(p *core.Position) *Position {
	return &Position{
		Position:     *p,
		Liquidatable: p.HealthFactor.Valid && p.HealthFactor.Decimal.LessThan(decimal.New(1, 0)),
	}
}

// PositionLimits current safe operation bounds of a position
type PositionLimits struct {
	PositionID      string              `json:"position_id"`
	LTV             decimal.Decimal     `json:"ltv"`
	HealthFactor    decimal.NullDecimal `json:"health_factor"`
	MaxBorrowable   decimal.Decimal     `json:"max_borrowable"`
	MaxWithdrawable decimal.Decimal     `json:"max_withdrawable"`
	// DegradedPrices true when any price came from the stale fallback
	DegradedPrices bool `json:"degraded_prices"`
}

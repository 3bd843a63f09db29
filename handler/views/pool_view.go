package views

import (
	"levee/core"
	"levee/pkg/risk"

	"github.com/shopspring/decimal"
)

// Pool pool view
type Pool struct {
	core.Pool
	AvailableLiquidity decimal.Decimal `json:"available_liquidity"`
	// SuppliedShares total supplied expressed in vault shares at the
	// current exchange rate
	SuppliedShares decimal.Decimal `json:"supplied_shares"`
}

// PoolView build the pool view
func PoolView(p *core.Pool) *Pool {
	return &Pool{
		Pool:               *p,
		AvailableLiquidity: p.AvailableLiquidity(),
		SuppliedShares:     risk.SharesForAssets(p.TotalSupplied, p.ExchangeRate),
	}
}

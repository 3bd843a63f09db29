package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// PoolReader reads pool configuration from chain state
type PoolReader interface {
	ReadPool(ctx context.Context, address string) (*Pool, error)
}

// VaultReader reads the vault share/asset exchange rate from chain state
type VaultReader interface {
	ReadExchangeRate(ctx context.Context, address string) (decimal.Decimal, error)
}

// OracleReader queries the price oracle contract with an aggregation mode
type OracleReader interface {
	QueryPrice(ctx context.Context, assetID string, mode AggregationMode) (*PriceQuote, error)
}

package core

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

// AggregationMode how the oracle combines its independent sources
type AggregationMode string

const (
	// AggregationMedian primary aggregation mode
	AggregationMedian AggregationMode = "median"
	// AggregationMean secondary aggregation mode, tried when median fails
	AggregationMean AggregationMode = "mean"
)

// PriceQuote a validated oracle price for one asset
type PriceQuote struct {
	AssetID     string          `json:"asset_id"`
	Price       decimal.Decimal `json:"price"`
	Decimals    int32           `json:"decimals"`
	UpdatedAt   time.Time       `json:"updated_at"`
	SourceCount int             `json:"source_count"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty"`
	// Degraded marks a quote served from the stale cache after both
	// aggregation modes failed
	Degraded bool `json:"degraded,omitempty"`
	// Content raw oracle payload kept for audit
	Content types.JSONText `json:"content,omitempty"`
}

// Age quote age relative to now
func (q *PriceQuote) Age(now time.Time) time.Duration {
	return now.Sub(q.UpdatedAt)
}

// Expired reports whether the oracle-provided expiration has passed
func (q *PriceQuote) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// IPriceOracleService price oracle client interface
type IPriceOracleService interface {
	// GetPrice returns a cached or freshly fetched quote for the asset
	GetPrice(ctx context.Context, assetID string) (*PriceQuote, error)
	// RefreshPrice bypasses the cache and forces an oracle query
	RefreshPrice(ctx context.Context, assetID string) (*PriceQuote, error)
	// GetPrices fetches quotes for several assets independently; a failure
	// for one asset never fails the batch, errors are returned per asset
	GetPrices(ctx context.Context, assetIDs []string) (map[string]*PriceQuote, map[string]error)
	// Clear empties the price cache
	Clear()
}

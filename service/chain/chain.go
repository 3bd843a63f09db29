// Package chain adapts the HTTP chain gateway to the typed reader
// interfaces the risk engine depends on.
package chain

import (
	"context"
	"fmt"
	"time"

	"levee/core"
	"levee/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Config chain gateway config
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

// Reader typed access to pool, vault and oracle contract state
type Reader struct {
	cfg Config
}

// New new chain reader
func New(cfg Config) *Reader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Reader{cfg: cfg}
}

var (
	_ core.PoolReader   = (*Reader)(nil)
	_ core.VaultReader  = (*Reader)(nil)
	_ core.OracleReader = (*Reader)(nil)
)

// ReadPool read pool configuration from chain state
func (r *Reader) ReadPool(ctx context.Context, address string) (*core.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/pools/%s", r.cfg.Endpoint, address)
	logger.FromContext(ctx).Debugln("read pool:", url)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var pool core.Pool
	if err := resthttp.ParseResponse(resp, &pool); err != nil {
		return nil, err
	}

	pool.Address = address
	return &pool, nil
}

// ReadExchangeRate read the vault share/asset exchange rate
func (r *Reader) ReadExchangeRate(ctx context.Context, address string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	url := fmt.Sprintf("%s/vaults/%s/exchange-rate", r.cfg.Endpoint, address)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return decimal.Zero, err
	}

	var body struct {
		ExchangeRate decimal.Decimal `json:"exchange_rate"`
	}
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return decimal.Zero, err
	}

	if !body.ExchangeRate.IsPositive() {
		return decimal.Zero, core.ErrZeroPrice
	}

	return body.ExchangeRate, nil
}

// QueryPrice query the oracle contract with an aggregation mode
func (r *Reader) QueryPrice(ctx context.Context, assetID string, mode core.AggregationMode) (*core.PriceQuote, error) {
	url := fmt.Sprintf("%s/oracle/prices/%s?mode=%s", r.cfg.Endpoint, assetID, mode)
	logger.FromContext(ctx).Debugln("query price:", url)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var quote core.PriceQuote
	if err := resthttp.ParseResponse(resp, &quote); err != nil {
		return nil, err
	}

	quote.Content = resp.Body()
	return &quote, nil
}

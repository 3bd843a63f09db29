package oracle

import (
	"context"
	"errors"
	"sync"
	"time"

	"levee/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const cacheCapacity = 1024

// Config price oracle client config with defaults applied by New
type Config struct {
	CacheTTL           time.Duration
	StalenessTolerance time.Duration
	QueryTimeout       time.Duration
	MinSourceCount     int
	// Assets maps internal asset ids to oracle identifiers
	Assets map[string]string
}

func (c *Config) defaults() {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Minute
	}
	if c.StalenessTolerance <= 0 {
		c.StalenessTolerance = 5 * time.Minute
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 10 * time.Second
	}
	if c.MinSourceCount <= 0 {
		c.MinSourceCount = 3
	}
}

type client struct {
	reader core.OracleReader
	cfg    Config

	// cache holds fresh quotes with a TTL; stale keeps the last good
	// quote per asset for the degraded fallback
	cache gcache.Cache
	stale gcache.Cache
	sf    singleflight.Group
}

// New new price oracle client. The cache belongs to the client, not the
// process; two clients never share entries
func New(reader core.OracleReader, cfg Config) core.IPriceOracleService {
	cfg.defaults()

	return &client{
		reader: reader,
		cfg:    cfg,
		cache:  gcache.New(cacheCapacity).LRU().Build(),
		stale:  gcache.New(cacheCapacity).LRU().Build(),
	}
}

func (c *client) GetPrice(ctx context.Context, assetID string) (*core.PriceQuote, error) {
	return c.getPrice(ctx, assetID, false)
}

func (c *client) RefreshPrice(ctx context.Context, assetID string) (*core.PriceQuote, error) {
	return c.getPrice(ctx, assetID, true)
}

func (c *client) GetPrices(ctx context.Context, assetIDs []string) (map[string]*core.PriceQuote, map[string]error) {
	var (
		mu     sync.Mutex
		quotes = make(map[string]*core.PriceQuote, len(assetIDs))
		errs   = make(map[string]error)
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, assetID := range assetIDs {
		assetID := assetID
		g.Go(func() error {
			quote, err := c.GetPrice(ctx, assetID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[assetID] = err
			} else {
				quotes[assetID] = quote
			}

			// one failed asset never fails the batch
			return nil
		})
	}

	_ = g.Wait()
	return quotes, errs
}

func (c *client) Clear() {
	c.cache.Purge()
	c.stale.Purge()
}

func (c *client) getPrice(ctx context.Context, assetID string, bypassCache bool) (*core.PriceQuote, error) {
	oracleID, ok := c.cfg.Assets[assetID]
	if !ok {
		return nil, core.ErrUnsupportedAsset
	}

	// refreshes fly under their own key so they never adopt the result
	// of a fetch that started before the refresh was requested
	key := assetID
	if bypassCache {
		key += ":refresh"
	} else {
		if v, err := c.cache.Get(assetID); err == nil {
			if quote, ok := v.(*core.PriceQuote); ok {
				return quote, nil
			}
		}
	}

	v, err, _ := c.sf.Do(key, func() (interface{}, error) {
		return c.fetchWithFallback(ctx, assetID, oracleID)
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.PriceQuote), nil
}

func (c *client) fetchWithFallback(ctx context.Context, assetID, oracleID string) (*core.PriceQuote, error) {
	log := logger.FromContext(ctx).WithField("oracle", assetID)

	quote, primaryErr := c.fetch(ctx, oracleID, core.AggregationMedian)
	if primaryErr != nil {
		log.WithError(primaryErr).Debugln("median query failed, retrying with mean")

		var meanErr error
		quote, meanErr = c.fetch(ctx, oracleID, core.AggregationMean)
		if meanErr != nil {
			// both modes failed; serve the last good quote flagged as
			// degraded if there is one
			if v, err := c.stale.Get(assetID); err == nil {
				if last, ok := v.(*core.PriceQuote); ok {
					log.WithError(meanErr).Warnln("serving degraded price")
					degraded := *last
					degraded.Degraded = true
					return &degraded, nil
				}
			}

			return nil, mostSpecific(primaryErr, meanErr)
		}
	}

	quote.AssetID = assetID
	if err := c.cache.SetWithExpire(assetID, quote, c.cfg.CacheTTL); err != nil {
		log.WithError(err).Errorln("cache.SetWithExpire")
	}
	if err := c.stale.Set(assetID, quote); err != nil {
		log.WithError(err).Errorln("stale.Set")
	}

	return quote, nil
}

func (c *client) fetch(ctx context.Context, oracleID string, mode core.AggregationMode) (*core.PriceQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.QueryTimeout)
	defer cancel()

	quote, err := c.reader.QueryPrice(ctx, oracleID, mode)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, core.ErrNetworkTimeout
		}
		return nil, err
	}

	return quote, c.validate(quote)
}

func (c *client) validate(quote *core.PriceQuote) error {
	if !quote.Price.IsPositive() {
		return core.ErrZeroPrice
	}

	if quote.SourceCount < c.cfg.MinSourceCount {
		return core.ErrInsufficientSources
	}

	now := time.Now()
	if quote.Age(now) > c.cfg.StalenessTolerance || quote.Expired(now) {
		return core.ErrStalePrice
	}

	return nil
}

// mostSpecific picks the error that says the most about what the oracle
// actually returned; a validation rejection beats a transport failure
func mostSpecific(errs ...error) error {
	best := errs[0]
	bestRank := rank(best)

	for _, err := range errs[1:] {
		if r := rank(err); r > bestRank {
			best, bestRank = err, r
		}
	}

	return best
}

func rank(err error) int {
	switch {
	case errors.Is(err, core.ErrZeroPrice):
		return 4
	case errors.Is(err, core.ErrInsufficientSources):
		return 3
	case errors.Is(err, core.ErrStalePrice):
		return 2
	case errors.Is(err, core.ErrNetworkTimeout):
		return 1
	default:
		return 0
	}
}

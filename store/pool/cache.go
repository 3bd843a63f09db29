package pool

import (
	"context"
	"fmt"
	"time"

	"levee/core"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/store/db"
	"golang.org/x/sync/singleflight"
)

const allKey = "pools:all"

// Cache wraps a pool store with a read-through cache. Pool configuration
// only changes when the sync worker refreshes it, so short expirations
// are safe
func Cache(store core.IPoolStore, exp time.Duration) core.IPoolStore {
	return &cachePoolStore{
		IPoolStore: store,
		cache:      gcache.New(256).LRU().Build(),
		sf:         &singleflight.Group{},
		exp:        exp,
	}
}

type cachePoolStore struct {
	core.IPoolStore
	cache gcache.Cache
	sf    *singleflight.Group
	exp   time.Duration
}

func (s *cachePoolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	if err := s.IPoolStore.Save(ctx, tx, pool); err != nil {
		return err
	}

	s.cache.Remove(s.poolKey(pool.ID))
	s.cache.Remove(allKey)
	return nil
}

func (s *cachePoolStore) Find(ctx context.Context, id string) (*core.Pool, error) {
	if v, err := s.cache.Get(s.poolKey(id)); err == nil {
		if pool, ok := v.(*core.Pool); ok {
			return pool, nil
		}
	}

	v, err, _ := s.sf.Do(s.poolKey(id), func() (interface{}, error) {
		pool, err := s.IPoolStore.Find(ctx, id)
		if err != nil {
			return nil, err
		}

		_ = s.cache.SetWithExpire(s.poolKey(id), pool, s.exp)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.Pool), nil
}

func (s *cachePoolStore) All(ctx context.Context) ([]*core.Pool, error) {
	if v, err := s.cache.Get(allKey); err == nil {
		if pools, ok := v.([]*core.Pool); ok {
			return pools, nil
		}
	}

	v, err, _ := s.sf.Do(allKey, func() (interface{}, error) {
		pools, err := s.IPoolStore.All(ctx)
		if err != nil {
			return nil, err
		}

		_ = s.cache.SetWithExpire(allKey, pools, s.exp)
		return pools, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*core.Pool), nil
}

func (s *cachePoolStore) AllAsMap(ctx context.Context) (map[string]*core.Pool, error) {
	pools, err := s.All(ctx)
	if err != nil {
		return nil, err
	}

	m := make(map[string]*core.Pool, len(pools))
	for _, pool := range pools {
		m[pool.ID] = pool
	}

	return m, nil
}

func (s *cachePoolStore) poolKey(id string) string {
	return fmt.Sprintf("pools:id:%s", id)
}

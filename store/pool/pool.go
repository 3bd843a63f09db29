package pool

import (
	"context"

	"levee/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Pool{})
		if err := tx.AutoMigrate(core.Pool{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) Save(ctx context.Context, tx *db.DB, pool *core.Pool) error {
	return tx.Update().Save(pool).Error
}

func (s *poolStore) Find(ctx context.Context, id string) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("id = ?", id).First(&pool).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPoolNotFound
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) FindByAddress(ctx context.Context, address string) (*core.Pool, error) {
	var pool core.Pool
	if err := s.db.View().Where("address = ?", address).First(&pool).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPoolNotFound
		}

		return nil, err
	}

	return &pool, nil
}

func (s *poolStore) All(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	if err := s.db.View().Find(&pools).Error; err != nil {
		return nil, err
	}

	return pools, nil
}

func (s *poolStore) AllAsMap(ctx context.Context) (map[string]*core.Pool, error) {
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

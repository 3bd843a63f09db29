package position

import (
	"context"

	"levee/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Position{})
		if err := tx.AutoMigrate(core.Position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Create(ctx context.Context, position *core.Position) error {
	return s.db.Update().Create(position).Error
}

func (s *positionStore) Find(ctx context.Context, id string) (*core.Position, error) {
	var position core.Position
	if err := s.db.View().Where("id = ?", id).First(&position).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, core.ErrPositionNotFound
		}

		return nil, err
	}

	return &position, nil
}

func (s *positionStore) FindByUser(ctx context.Context, userID string) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().Where("user_id = ?", userID).Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) ListActive(ctx context.Context) ([]*core.Position, error) {
	var positions []*core.Position
	if err := s.db.View().
		Where("status = ?", core.PositionStatusActive).
		Find(&positions).Error; err != nil {
		return nil, err
	}

	return positions, nil
}

func (s *positionStore) Update(ctx context.Context, tx *db.DB, position *core.Position) error {
	version := position.Version
	position.Version++

	updates := tx.Update().Model(position).
		Where("version = ?", version).
		Updates(position)
	if updates.Error != nil {
		return updates.Error
	}

	if updates.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	return nil
}

func (s *positionStore) UpdateHealth(ctx context.Context, id string, health decimal.NullDecimal) error {
	return s.db.Update().Model(core.Position{}).
		Where("id = ?", id).
		Update("health_factor", health).Error
}

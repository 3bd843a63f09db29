package liquidation

import (
	"context"

	"levee/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type liquidationStore struct {
	db *db.DB
}

// New new liquidation event store
func New(db *db.DB) core.ILiquidationStore {
	return &liquidationStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.LiquidationEvent{})
		if err := tx.AutoMigrate(core.LiquidationEvent{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *liquidationStore) Create(ctx context.Context, event *core.LiquidationEvent) error {
	return s.db.Update().Create(event).Error
}

func (s *liquidationStore) FindByTrace(ctx context.Context, traceID string) (*core.LiquidationEvent, bool, error) {
	var event core.LiquidationEvent
	if err := s.db.View().Where("trace_id = ?", traceID).First(&event).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return &event, true, nil
}

func (s *liquidationStore) ListByPosition(ctx context.Context, positionID string) ([]*core.LiquidationEvent, error) {
	var events []*core.LiquidationEvent
	if err := s.db.View().
		Where("position_id = ?", positionID).
		Order("id DESC").
		Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

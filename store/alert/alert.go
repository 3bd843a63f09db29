package alert

import (
	"context"

	"levee/core"

	"github.com/fox-one/pkg/store/db"
)

type alertStore struct {
	db *db.DB
}

// New new alert store
func New(db *db.DB) core.IAlertStore {
	return &alertStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Alert{})
		if err := tx.AutoMigrate(core.Alert{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *alertStore) Create(ctx context.Context, alert *core.Alert) error {
	return s.db.Update().Create(alert).Error
}

func (s *alertStore) ListByPosition(ctx context.Context, positionID string, limit int) ([]*core.Alert, error) {
	var alerts []*core.Alert
	if err := s.db.View().
		Where("position_id = ?", positionID).
		Order("id DESC").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

func (s *alertStore) ListRecent(ctx context.Context, limit int) ([]*core.Alert, error) {
	var alerts []*core.Alert
	if err := s.db.View().
		Order("id DESC").
		Limit(limit).
		Find(&alerts).Error; err != nil {
		return nil, err
	}

	return alerts, nil
}

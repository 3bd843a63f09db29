package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Severity bucket of a monitored position
type Severity string

const (
	SeverityHealthy      Severity = "healthy"
	SeverityWarning      Severity = "warning"
	SeverityCritical     Severity = "critical"
	SeverityLiquidatable Severity = "liquidatable"
)

// Priority notification priority for the severity
func (s Severity) Priority() string {
	switch s {
	case SeverityWarning:
		return "medium"
	case SeverityCritical, SeverityLiquidatable:
		return "critical"
	default:
		return "low"
	}
}

// Alertable reports whether the severity warrants a notification
func (s Severity) Alertable() bool {
	switch s {
	case SeverityWarning, SeverityCritical, SeverityLiquidatable:
		return true
	}
	return false
}

// Alert a health alert raised by the position monitor
type Alert struct {
	ID              uint64          `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	TraceID         string          `sql:"size:36;unique_index:idx_alerts_trace" json:"trace_id"`
	PositionID      string          `sql:"size:36;index:idx_alerts_position" json:"position_id"`
	PoolID          string          `sql:"size:36" json:"pool_id"`
	CollateralAsset string          `sql:"size:36" json:"collateral_asset"`
	DebtAsset       string          `sql:"size:36" json:"debt_asset"`
	Severity        Severity        `sql:"size:16" json:"severity"`
	HealthFactor    decimal.Decimal `sql:"type:decimal(32,16)" json:"health_factor"`
	// Threshold the classification bound the health factor fell below
	Threshold decimal.Decimal `sql:"type:decimal(20,8)" json:"threshold"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

// IAlertStore alert store interface
type IAlertStore interface {
	Create(ctx context.Context, alert *Alert) error
	ListByPosition(ctx context.Context, positionID string, limit int) ([]*Alert, error)
	ListRecent(ctx context.Context, limit int) ([]*Alert, error)
}

// INotificationService notification sink, fire and forget from the
// monitor's point of view
type INotificationService interface {
	Emit(ctx context.Context, alert *Alert) error
}

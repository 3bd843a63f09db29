package notifier

import (
	"context"
	"time"

	"levee/core"
	"levee/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

// Config alert webhook config
type Config struct {
	WebhookURL string
	Timeout    time.Duration
}

type notifier struct {
	cfg    Config
	alerts core.IAlertStore
}

// New new webhook notifier. Alerts are persisted for the dashboard and
// pushed to the configured webhook; callers treat Emit as fire and forget
func New(cfg Config, alerts core.IAlertStore) core.INotificationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	return &notifier{cfg: cfg, alerts: alerts}
}

func (n *notifier) Emit(ctx context.Context, alert *core.Alert) error {
	log := logger.FromContext(ctx).WithField("service", "notifier")

	if err := n.alerts.Create(ctx, alert); err != nil {
		log.WithError(err).Errorln("alerts.Create")
		return err
	}

	if n.cfg.WebhookURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	body := map[string]interface{}{
		"priority":      alert.Severity.Priority(),
		"severity":      alert.Severity,
		"position_id":   alert.PositionID,
		"pool_id":       alert.PoolID,
		"assets":        []string{alert.CollateralAsset, alert.DebtAsset},
		"health_factor": alert.HealthFactor,
		"threshold":     alert.Threshold,
	}

	resp, err := resthttp.Request(ctx).SetBody(body).Post(n.cfg.WebhookURL)
	if err != nil {
		log.WithError(err).Errorln("webhook post failed")
		return err
	}

	if err := resthttp.ParseResponse(resp, nil); err != nil {
		log.WithError(err).Errorln("webhook rejected alert")
		return err
	}

	return nil
}

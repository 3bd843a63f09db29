// Package executor submits liquidation proposals to the external
// executor service over HTTP. The engine never signs or sends
// transactions itself.
package executor

import (
	"context"
	"time"

	"levee/core"
	"levee/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
)

// Config executor client config
type Config struct {
	Endpoint string
	Timeout  time.Duration
}

type sink struct {
	cfg Config
}

// New new executor proposal sink
func New(cfg Config) core.ProposalSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &sink{cfg: cfg}
}

func (s *sink) Submit(ctx context.Context, proposal *core.LiquidationProposal) error {
	log := logger.FromContext(ctx).WithFields(map[string]interface{}{
		"service":  "executor",
		"trace":    proposal.TraceID,
		"position": proposal.PositionID,
	})

	if s.cfg.Endpoint == "" {
		log.Infoln("no executor configured, proposal dropped")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := resthttp.Request(ctx).SetBody(proposal).Post(s.cfg.Endpoint + "/proposals")
	if err != nil {
		log.WithError(err).Errorln("executor post failed")
		return err
	}

	if err := resthttp.ParseResponse(resp, nil); err != nil {
		log.WithError(err).Errorln("executor rejected proposal")
		return err
	}

	log.Infoln("proposal submitted")
	return nil
}

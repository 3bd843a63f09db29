package scanner

import (
	"context"
	"sync"
	"testing"

	"levee/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLiquidationService struct {
	proposals []*core.LiquidationProposal
}

func (s *fakeLiquidationService) FindLiquidatablePositions(ctx context.Context) ([]*core.LiquidationProposal, error) {
	return s.proposals, nil
}

func (s *fakeLiquidationService) ComputeSeizure(ctx context.Context, position *core.Position, pool *core.Pool, debtToCover decimal.Decimal) (*core.Seizure, error) {
	return nil, core.ErrUnknown
}

func (s *fakeLiquidationService) RecordEvent(ctx context.Context, event *core.LiquidationEvent) error {
	return nil
}

type fakeSink struct {
	mu        sync.Mutex
	submitted []string
	failFor   string
}

func (s *fakeSink) Submit(ctx context.Context, proposal *core.LiquidationProposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if proposal.PositionID == s.failFor {
		return core.ErrUnknown
	}

	s.submitted = append(s.submitted, proposal.PositionID)
	return nil
}

func TestScanSubmitsProposals(t *testing.T) {
	sink := &fakeSink{failFor: "p2"}
	w := New(core.ScannerConfig{}, &fakeLiquidationService{
		proposals: []*core.LiquidationProposal{
			{PositionID: "p1"},
			{PositionID: "p2"},
			{PositionID: "p3"},
		},
	}, sink)

	require.NoError(t, w.onWork(context.Background()))

	// the rejected proposal is dropped, the rest go through
	assert.ElementsMatch(t, []string{"p1", "p3"}, sink.submitted)
}

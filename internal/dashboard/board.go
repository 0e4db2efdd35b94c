package dashboard

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/felixggj/happy-robot-fde/internal/api"
	"github.com/felixggj/happy-robot-fde/internal/models"
)

const (
	PanelMetrics = "metrics"
	PanelLoads   = "loads"
	PanelCalls   = "calls"
)

// Source is the part of the API client the board reads from.
type Source interface {
	GetMetrics(ctx context.Context) (models.Metrics, error)
	GetLoads(ctx context.Context, filter models.LoadFilter) ([]models.Load, error)
	GetCallSessions(ctx context.Context, limit int) ([]models.CallSession, error)
}

type Options struct {
	Loads      models.LoadFilter
	CallsLimit int
}

type Board struct {
	Metrics *Panel[models.Metrics]
	Loads   *Panel[[]models.Load]
	Calls   *Panel[[]models.CallSession]

	logger zerolog.Logger
}

type Snapshot struct {
	Metrics State[models.Metrics]
	Loads   State[[]models.Load]
	Calls   State[[]models.CallSession]
}

func NewBoard(src Source, opts Options, logger zerolog.Logger) *Board {
	return &Board{
		Metrics: NewPanel[models.Metrics](PanelMetrics, src.GetMetrics),
		Loads: NewPanel[[]models.Load](PanelLoads, func(ctx context.Context) ([]models.Load, error) {
			return src.GetLoads(ctx, opts.Loads)
		}),
		Calls: NewPanel[[]models.CallSession](PanelCalls, func(ctx context.Context) ([]models.CallSession, error) {
			return src.GetCallSessions(ctx, opts.CallsLimit)
		}),
		logger: logger,
	}
}

// Refresh loads every panel concurrently. A failing panel keeps its previous
// data and never cancels its siblings.
func (b *Board) Refresh(ctx context.Context) Snapshot {
	var wg conc.WaitGroup
	wg.Go(func() {
		s, applied := b.Metrics.Load(ctx)
		b.logResult(PanelMetrics, s.Err, applied)
	})
	wg.Go(func() {
		s, applied := b.Loads.Load(ctx)
		b.logResult(PanelLoads, s.Err, applied)
	})
	wg.Go(func() {
		s, applied := b.Calls.Load(ctx)
		b.logResult(PanelCalls, s.Err, applied)
	})
	wg.Wait()
	return b.Snapshot()
}

func (b *Board) Snapshot() Snapshot {
	return Snapshot{
		Metrics: b.Metrics.State(),
		Loads:   b.Loads.State(),
		Calls:   b.Calls.State(),
	}
}

// Close deactivates every panel. Loads still in flight are cancelled and
// their results discarded.
func (b *Board) Close() {
	b.Metrics.Deactivate()
	b.Loads.Deactivate()
	b.Calls.Deactivate()
}

func (b *Board) logResult(panel string, err error, applied bool) {
	if err == nil || !applied {
		return
	}
	ev := b.logger.Warn().Err(err).Str("panel", panel)
	var rf *api.RequestFailedError
	if errors.As(err, &rf) {
		ev = ev.Int("status", rf.StatusCode)
	}
	ev.Msg(api.UserMessage(panel, err))
}

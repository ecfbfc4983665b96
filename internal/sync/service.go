// Package sync runs one weekly reconciliation pass: resolve the week
// window, probe the upstream candidates per series, normalize and aggregate
// the rows, and merge the canonical record into the persisted week document.
package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/tuliahq/sales-sync/internal/aggregate"
	"github.com/tuliahq/sales-sync/internal/normalize"
	"github.com/tuliahq/sales-sync/internal/probe"
	"github.com/tuliahq/sales-sync/internal/week"
	"github.com/tuliahq/sales-sync/pkg/config"
	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
	"github.com/tuliahq/sales-sync/pkg/logger"
	"github.com/tuliahq/sales-sync/pkg/metrics"
)

const (
	seriesProjected = "projected"
	seriesActual    = "actual"
)

// Store persists the canonical week record via a field-level merge.
type Store interface {
	MergeWeek(ctx context.Context, workspace, weekKey string, payload map[string]any) error
}

// Params configure the sync service.
type Params struct {
	Logger      *logger.Logger
	Getter      probe.Getter
	Store       Store
	Metrics     *metrics.SyncRunMetrics
	SevenShifts config.SevenShiftsConfig
	Sync        config.SyncConfig
	Now         func() time.Time
}

// Service is the run-to-completion reconciliation engine. One invocation
// performs one fetch-normalize-write pass; scheduling is external.
type Service struct {
	logg    *logger.Logger
	prober  *probe.Prober
	store   Store
	metrics *metrics.SyncRunMetrics
	ss      config.SevenShiftsConfig
	cfg     config.SyncConfig
	now     func() time.Time
}

func NewService(params Params) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Getter == nil {
		return nil, fmt.Errorf("upstream getter required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		logg:    params.Logger,
		prober:  probe.New(params.Getter, params.Logger),
		store:   params.Store,
		metrics: params.Metrics,
		ss:      params.SevenShifts,
		cfg:     params.Sync,
		now:     now,
	}, nil
}

type seriesResult struct {
	row     aggregate.Row
	dropped normalize.Stats
	outside int
}

// Run executes one reconciliation pass.
func (s *Service) Run(ctx context.Context) error {
	started := s.now()
	runID := uuid.NewString()
	ctx = s.logg.WithRunID(ctx, runID)
	ctx = s.logg.WithWorkspace(ctx, s.cfg.Workspace)

	err := s.run(ctx, runID)

	if s.metrics != nil {
		s.metrics.ObserveDuration(s.cfg.Workspace, s.now().Sub(started))
		if err != nil {
			s.metrics.IncFailure(s.cfg.Workspace)
		} else {
			s.metrics.IncSuccess(s.cfg.Workspace)
		}
	}
	return err
}

func (s *Service) run(ctx context.Context, runID string) error {
	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}

	win, err := week.Resolve(s.cfg.TargetDate, loc, s.now())
	if err != nil {
		return err
	}
	ctx = s.logg.WithWeek(ctx, win.StartISO())
	s.logg.Info(s.logg.WithField(ctx, "week_end", win.EndISO()), "week window resolved")

	candidates := probe.DefaultCandidates(s.ss.CompanyID, s.ss.LocationID, win)

	// The two series are independent request groups with no shared mutable
	// state; only the candidate order within each group matters.
	var projected, actual seriesResult
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		projected, err = s.fetchSeries(groupCtx, seriesProjected, candidates, win)
		return err
	})
	group.Go(func() error {
		var err error
		actual, err = s.fetchSeries(groupCtx, seriesActual, candidates, win)
		return err
	})
	if err := group.Wait(); err != nil {
		return err
	}

	s.recordDrops(projected, actual)

	data := WeekData{
		ProjSales:   projected.row,
		ActualSales: actual.row,
	}
	if s.cfg.WriteDelta {
		delta := aggregate.Delta(actual.row, projected.row, s.emptyMode())
		data.SalesDelta = &delta
	}

	meta := newMeta(runID, win.StartISO(), win.EndISO(), s.cfg.Timezone, s.now())
	payload := buildPayload(meta, data)

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"proj_total":   projected.row.Total,
		"actual_total": actual.row.Total,
	}), "upserting week record")

	if err := s.store.MergeWeek(ctx, s.cfg.Workspace, win.StartISO(), payload); err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodePersistence, err, "merge week record")
	}

	s.logg.Info(ctx, "week record upserted")
	return nil
}

func (s *Service) fetchSeries(ctx context.Context, series string, candidates []probe.Candidate, win week.Window) (seriesResult, error) {
	result, err := s.prober.Fetch(ctx, series, candidates)
	if s.metrics != nil {
		s.metrics.AddAttempts(series, len(result.Attempts))
	}
	if err != nil {
		return seriesResult{}, err
	}

	entries, stats := normalize.Entries(result.Rows, normalize.Options{MinorUnits: s.cfg.MinorUnits})

	acc := aggregate.NewAccumulator()
	outside := 0
	for _, entry := range entries {
		key, ok := win.DayKey(entry.Date)
		if !ok {
			// Belongs to a different week; must not contaminate this record.
			outside++
			s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
				"series": series,
				"date":   entry.Date.Format("2006-01-02"),
			}), "row outside week window discarded")
			continue
		}
		amount := seriesAmount(entry, series)
		if amount == nil {
			continue
		}
		acc.Add(key, *amount)
	}

	return seriesResult{
		row:     acc.Row(s.emptyMode()),
		dropped: stats,
		outside: outside,
	}, nil
}

func seriesAmount(entry normalize.Entry, series string) *decimal.Decimal {
	if series == seriesProjected {
		return entry.Projected
	}
	return entry.Actual
}

func (s *Service) recordDrops(projected, actual seriesResult) {
	if s.metrics == nil {
		return
	}
	s.metrics.AddDroppedRows("no_date", projected.dropped.Dropped+actual.dropped.Dropped)
	s.metrics.AddDroppedRows("out_of_window", projected.outside+actual.outside)
}

func (s *Service) emptyMode() string {
	if s.cfg.EmptyDayMode == config.EmptyDayZero {
		return aggregate.EmptyZero
	}
	return aggregate.EmptyBlank
}

// Package probe resolves which upstream endpoint actually serves sales data.
// The upstream schema is not contractually fixed, so candidates are a flat
// ordered list tried in sequence, never polymorphic response handlers.
package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/multierr"

	"github.com/tuliahq/sales-sync/internal/normalize"
	"github.com/tuliahq/sales-sync/internal/week"
	pkgerrors "github.com/tuliahq/sales-sync/pkg/errors"
	"github.com/tuliahq/sales-sync/pkg/logger"
)

// Candidate is one specific upstream request shape attempted in the
// fallback sequence.
type Candidate struct {
	Name  string
	Path  string
	Query url.Values
}

// Attempt records the outcome of one candidate for error reporting.
type Attempt struct {
	Candidate string `json:"candidate"`
	Rows      int    `json:"rows"`
	Error     string `json:"error,omitempty"`
}

// Getter issues a single upstream request and returns the raw JSON body.
type Getter interface {
	Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error)
}

// Result carries the winning candidate's rows plus the full attempt log.
type Result struct {
	Candidate string
	Rows      []map[string]any
	Attempts  []Attempt
}

// Prober walks an ordered candidate list until one yields usable rows.
type Prober struct {
	getter Getter
	logg   *logger.Logger
}

func New(getter Getter, logg *logger.Logger) *Prober {
	return &Prober{getter: getter, logg: logg}
}

// Fetch tries each candidate in order and returns the first response that
// is transport-successful and contains at least one extractable row. A
// failed candidate advances to the next; no state beyond the attempt log is
// kept between candidates. When every candidate is exhausted the error
// reports the attempts rather than silently degrading to zero data.
func (p *Prober) Fetch(ctx context.Context, series string, candidates []Candidate) (Result, error) {
	result := Result{Attempts: make([]Attempt, 0, len(candidates))}
	var combined error

	for _, candidate := range candidates {
		raw, err := p.getter.Get(ctx, candidate.Path, candidate.Query)
		if err != nil {
			result.Attempts = append(result.Attempts, Attempt{Candidate: candidate.Name, Error: err.Error()})
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", candidate.Name, err))
			p.warn(ctx, series, candidate.Name, err)
			continue
		}

		rows, err := normalize.Rows(raw)
		if err != nil {
			result.Attempts = append(result.Attempts, Attempt{Candidate: candidate.Name, Error: err.Error()})
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", candidate.Name, err))
			p.warn(ctx, series, candidate.Name, err)
			continue
		}
		if len(rows) == 0 {
			err := fmt.Errorf("no extractable rows")
			result.Attempts = append(result.Attempts, Attempt{Candidate: candidate.Name, Error: err.Error()})
			combined = multierr.Append(combined, fmt.Errorf("%s: %w", candidate.Name, err))
			p.warn(ctx, series, candidate.Name, err)
			continue
		}

		result.Candidate = candidate.Name
		result.Rows = rows
		result.Attempts = append(result.Attempts, Attempt{Candidate: candidate.Name, Rows: len(rows)})
		if p.logg != nil {
			p.logg.Info(p.logg.WithFields(ctx, map[string]any{
				"series":    series,
				"candidate": candidate.Name,
				"rows":      len(rows),
			}), "upstream candidate succeeded")
		}
		return result, nil
	}

	return result, pkgerrors.Wrap(pkgerrors.CodeUpstreamExhausted, combined,
		fmt.Sprintf("no usable upstream source for %s series", series)).
		WithDetails(result.Attempts)
}

func (p *Prober) warn(ctx context.Context, series, candidate string, err error) {
	if p.logg == nil {
		return
	}
	ctx = p.logg.WithFields(ctx, map[string]any{"series": series, "candidate": candidate})
	p.logg.Warn(p.logg.WithField(ctx, "reason", err.Error()), "upstream candidate failed")
}

// DefaultCandidates builds the ordered request shapes for a week window.
// Some tenants only answer on the location-scoped path, so the
// company-scoped path is tried first and the location-scoped path second.
func DefaultCandidates(companyID, locationID string, win week.Window) []Candidate {
	query := url.Values{
		"start": {win.StartISO()},
		"end":   {win.EndISO()},
	}
	return []Candidate{
		{
			Name:  "company-location-sales",
			Path:  fmt.Sprintf("/company/%s/locations/%s/sales", companyID, locationID),
			Query: query,
		},
		{
			Name:  "location-sales",
			Path:  fmt.Sprintf("/locations/%s/sales", locationID),
			Query: query,
		},
	}
}

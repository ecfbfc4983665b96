package sync

import (
	"time"

	"github.com/tuliahq/sales-sync/internal/aggregate"
)

const sourceName = "7shifts"

// Meta describes one write for downstream diagnosis.
type Meta struct {
	UpdatedAt string `firestore:"updated_at" json:"updated_at"`
	Source    string `firestore:"source" json:"source"`
	WeekStart string `firestore:"week_start" json:"week_start"`
	WeekEnd   string `firestore:"week_end" json:"week_end"`
	Timezone  string `firestore:"timezone" json:"timezone"`
	RunID     string `firestore:"run_id" json:"run_id"`
}

// WeekData holds the sales rows owned by this writer. Sibling fields under
// the same document (manual budget adjustments and the like) are never
// touched because the write is a field-level merge.
type WeekData struct {
	ProjSales   aggregate.Row  `firestore:"proj_sales" json:"proj_sales"`
	ActualSales aggregate.Row  `firestore:"actual_sales" json:"actual_sales"`
	SalesDelta  *aggregate.Row `firestore:"sales_delta,omitempty" json:"sales_delta,omitempty"`
}

func buildPayload(meta Meta, data WeekData) map[string]any {
	inner := map[string]any{
		"proj_sales":   data.ProjSales,
		"actual_sales": data.ActualSales,
	}
	if data.SalesDelta != nil {
		inner["sales_delta"] = *data.SalesDelta
	}
	return map[string]any{
		"meta": meta,
		"data": inner,
	}
}

func newMeta(runID, weekStart, weekEnd, timezone string, now time.Time) Meta {
	return Meta{
		UpdatedAt: now.UTC().Format(time.RFC3339),
		Source:    sourceName,
		WeekStart: weekStart,
		WeekEnd:   weekEnd,
		Timezone:  timezone,
		RunID:     runID,
	}
}

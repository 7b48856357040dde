// Package derive computes pure projections over a snapshot of call records:
// summary metrics, time-bucketed counts for charting, and the filtered,
// sorted, paginated table view. Every function is deterministic over its
// inputs and holds no state, so projections are recomputed on demand rather
// than cached in mutable fields.
package derive

import (
	"math"

	"call-dashboard/internal/records"
)

// Summary is the metrics projection shown on the dashboard cards.
type Summary struct {
	Total     int `json:"total_calls"`
	Pending   int `json:"pending_calls"`
	Completed int `json:"completed_calls"`
	Open      int `json:"open_calls"`
	Closed    int `json:"closed_calls"`
	Abandoned int `json:"abandoned_calls"`

	// Unresolved counts every record whose status is not Completed.
	Unresolved int `json:"unresolved_calls"`

	// CSATScore is the mean of all non-null ratings, rounded to one decimal
	// place; exactly 0 when no ratings exist.
	CSATScore float64 `json:"csat_score"`
}

// Metrics aggregates the snapshot into a Summary. Status counting is exact
// string match against the enum; unknown statuses only contribute to Total
// and Unresolved.
func Metrics(recs []records.CallRecord) Summary {
	var out Summary
	var ratingSum float64
	var rated int

	for _, r := range recs {
		out.Total++
		switch r.Status {
		case records.StatusPending:
			out.Pending++
		case records.StatusCompleted:
			out.Completed++
		case records.StatusOpen:
			out.Open++
		case records.StatusClosed:
			out.Closed++
		case records.StatusAbandoned:
			out.Abandoned++
		}
		if r.Status != records.StatusCompleted {
			out.Unresolved++
		}
		if r.CSATRating != nil {
			ratingSum += *r.CSATRating
			rated++
		}
	}

	if rated > 0 {
		out.CSATScore = math.Round(ratingSum/float64(rated)*10) / 10
	}
	return out
}

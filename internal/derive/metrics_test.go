package derive

import (
	"testing"

	"call-dashboard/internal/records"
)

func rating(v float64) *float64 { return &v }

func TestMetrics_CountsByStatus(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", Status: records.StatusPending},
		{ID: "2", Status: records.StatusCompleted},
		{ID: "3", Status: records.StatusCompleted},
		{ID: "4", Status: records.StatusOpen},
		{ID: "5", Status: records.StatusClosed},
		{ID: "6", Status: records.StatusAbandoned},
	}
	m := Metrics(recs)
	if m.Total != 6 {
		t.Fatalf("expected total 6, got %d", m.Total)
	}
	if m.Pending != 1 || m.Completed != 2 || m.Open != 1 || m.Closed != 1 || m.Abandoned != 1 {
		t.Fatalf("unexpected status counts: %+v", m)
	}
	if m.Unresolved != 4 {
		t.Fatalf("expected 4 unresolved, got %d", m.Unresolved)
	}
}

func TestMetrics_CSATScoreIsMeanRoundedToOneDecimal(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CSATRating: rating(4)},
		{ID: "2", CSATRating: rating(5)},
		{ID: "3", CSATRating: rating(6)},
		{ID: "4"}, // unrated, must not dilute the mean
	}
	m := Metrics(recs)
	if m.CSATScore != 5.0 {
		t.Fatalf("expected csat 5.0, got %v", m.CSATScore)
	}
}

func TestMetrics_CSATScoreRounds(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CSATRating: rating(4)},
		{ID: "2", CSATRating: rating(5)},
		{ID: "3", CSATRating: rating(5)},
	}
	m := Metrics(recs)
	if m.CSATScore != 4.7 {
		t.Fatalf("expected csat 4.7, got %v", m.CSATScore)
	}
}

func TestMetrics_CSATScoreZeroWithoutRatings(t *testing.T) {
	if got := Metrics(nil).CSATScore; got != 0 {
		t.Fatalf("expected 0 on empty collection, got %v", got)
	}
	recs := []records.CallRecord{{ID: "1"}, {ID: "2"}}
	if got := Metrics(recs).CSATScore; got != 0 {
		t.Fatalf("expected 0 on all-null ratings, got %v", got)
	}
}

func TestMetrics_Deterministic(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", Status: records.StatusPending, CSATRating: rating(3)},
		{ID: "2", Status: records.StatusCompleted},
	}
	if Metrics(recs) != Metrics(recs) {
		t.Fatalf("expected identical summaries for identical input")
	}
}

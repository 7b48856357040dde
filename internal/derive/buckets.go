package derive

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"call-dashboard/internal/records"
)

// Bucket is one chart point: a derived time-period label and how many
// records fall into it.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ChartData holds the three bucket series. Each series is ordered by first
// occurrence of its label in the record sequence, not sorted.
type ChartData struct {
	Daily   []Bucket `json:"daily"`
	Weekly  []Bucket `json:"weekly"`
	Monthly []Bucket `json:"monthly"`
}

// TimeBuckets groups records by day (YYYY-MM-DD), week-of-month label
// (year-W<n>) and month (year-month, no zero padding). Records whose date
// does not parse to a valid calendar date are skipped and logged; they never
// fail the projection.
func TimeBuckets(recs []records.CallRecord, log *slog.Logger) ChartData {
	if log == nil {
		log = slog.Default()
	}
	daily := newSeries()
	weekly := newSeries()
	monthly := newSeries()

	for _, r := range recs {
		day, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			log.Warn("skipping record with invalid date", "record_id", r.ID, "date", r.Date)
			continue
		}
		daily.add(day.Format("2006-01-02"))
		weekly.add(weekLabel(day))
		monthly.add(fmt.Sprintf("%d-%d", day.Year(), int(day.Month())))
	}

	return ChartData{Daily: daily.buckets(), Weekly: weekly.buckets(), Monthly: monthly.buckets()}
}

// weekLabel derives the week-of-month label: the 1st is week 1, days 2-8 are
// week 2, and each further 7 days bump the week number. Deliberately matches
// the historical chart labels rather than an even calendar split, so existing
// series keep their label boundaries.
func weekLabel(day time.Time) string {
	w := int(math.Ceil(float64(day.Day()-1)/7)) + 1
	return fmt.Sprintf("%d-W%d", day.Year(), w)
}

// series counts by label while remembering first-occurrence order.
type series struct {
	order []string
	count map[string]int
}

func newSeries() *series {
	return &series{count: map[string]int{}}
}

func (s *series) add(label string) {
	if _, seen := s.count[label]; !seen {
		s.order = append(s.order, label)
	}
	s.count[label]++
}

func (s *series) buckets() []Bucket {
	out := make([]Bucket, 0, len(s.order))
	for _, label := range s.order {
		out = append(out, Bucket{Label: label, Count: s.count[label]})
	}
	return out
}

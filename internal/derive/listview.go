package derive

import (
	"fmt"
	"sort"
	"strings"

	"call-dashboard/internal/records"
)

// PageSize is the fixed table page size.
const PageSize = 10

// SortState tracks the single selected sort column and direction.
type SortState struct {
	Key  string `json:"key"`
	Desc bool   `json:"desc"`
}

// Toggle returns the state after the user selects a column: re-selecting the
// current key reverses direction, a new key resets to ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key {
		return SortState{Key: key, Desc: !s.Desc}
	}
	return SortState{Key: key}
}

// Query is the full input of the table projection.
type Query struct {
	// Search matches customer_name case-insensitively as a substring.
	Search string
	// Status filters by exact match; empty admits every status.
	Status records.Status

	Sort SortState

	// Page is 1-based. Values below 1 clamp to the first page; values past
	// the end yield an empty page.
	Page int
}

// Page is one page of the filtered, sorted view plus the figures the table
// footer needs.
type Page struct {
	Records    []records.CallRecord `json:"records"`
	Page       int                  `json:"page"`
	TotalPages int                  `json:"total_pages"`
	Filtered   int                  `json:"filtered_count"`
}

// ListView filters, sorts, and paginates a snapshot. The input slice is
// never mutated; sorting is stable, so equal keys keep their prior relative
// order.
func ListView(recs []records.CallRecord, q Query) Page {
	filtered := filter(recs, q)

	if q.Sort.Key != "" {
		sort.SliceStable(filtered, func(i, j int) bool {
			a, b := sortValue(filtered[i], q.Sort.Key), sortValue(filtered[j], q.Sort.Key)
			if q.Sort.Desc {
				return a > b
			}
			return a < b
		})
	}

	totalPages := (len(filtered) + PageSize - 1) / PageSize

	page := q.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * PageSize
	if start >= len(filtered) {
		return Page{Records: []records.CallRecord{}, Page: page, TotalPages: totalPages, Filtered: len(filtered)}
	}
	end := start + PageSize
	if end > len(filtered) {
		end = len(filtered)
	}
	return Page{Records: filtered[start:end], Page: page, TotalPages: totalPages, Filtered: len(filtered)}
}

func filter(recs []records.CallRecord, q Query) []records.CallRecord {
	needle := strings.ToLower(q.Search)
	out := make([]records.CallRecord, 0, len(recs))
	for _, r := range recs {
		if needle != "" && !strings.Contains(strings.ToLower(r.CustomerName), needle) {
			continue
		}
		if q.Status != "" && r.Status != q.Status {
			continue
		}
		out = append(out, r)
	}
	return out
}

// sortValue projects a record onto the comparable value for a column. CSAT
// ratings compare numerically via a padded rendering; everything else is a
// plain string compare.
func sortValue(r records.CallRecord, key string) string {
	switch key {
	case "id":
		return r.ID
	case "customer_name":
		return r.CustomerName
	case "caller_name":
		return r.CallerName
	case "number":
		return r.Number
	case "email":
		return r.Email
	case "address":
		return r.Address
	case "time":
		return r.Time
	case "date":
		return r.Date
	case "duration":
		return r.Duration
	case "status":
		return string(r.Status)
	case "csat_rating":
		if r.CSATRating == nil {
			return ""
		}
		return fmt.Sprintf("%012.3f", *r.CSATRating)
	default:
		return ""
	}
}

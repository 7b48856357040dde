package derive

import (
	"fmt"
	"testing"

	"call-dashboard/internal/records"
)

func TestListView_FilterMatchesSearchAndStatus(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CustomerName: "Acme", Status: records.StatusPending, Date: "2024-03-01"},
		{ID: "2", CustomerName: "Globex", Status: records.StatusPending},
		{ID: "3", CustomerName: "Acme Industries", Status: records.StatusCompleted},
	}
	view := ListView(recs, Query{Search: "acme", Status: records.StatusPending, Page: 1})
	if view.Filtered != 1 || view.Records[0].ID != "1" {
		t.Fatalf("expected only the pending Acme record, got %+v", view.Records)
	}
}

func TestListView_EmptyStatusAdmitsAll(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CustomerName: "Acme", Status: records.StatusPending},
		{ID: "2", CustomerName: "Acme", Status: records.StatusClosed},
	}
	view := ListView(recs, Query{Search: "acme", Page: 1})
	if view.Filtered != 2 {
		t.Fatalf("expected both records, got %d", view.Filtered)
	}
}

func TestListView_FilterIsIdempotent(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CustomerName: "Acme", Status: records.StatusPending},
		{ID: "2", CustomerName: "Globex", Status: records.StatusOpen},
	}
	q := Query{Search: "acme", Page: 1}
	once := ListView(recs, q)
	twice := ListView(once.Records, q)
	if len(once.Records) != len(twice.Records) {
		t.Fatalf("filtering twice changed the result: %d vs %d", len(once.Records), len(twice.Records))
	}
	for i := range once.Records {
		if once.Records[i].ID != twice.Records[i].ID {
			t.Fatalf("filtering twice reordered the result")
		}
	}
}

func TestListView_SortIsStable(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CustomerName: "Acme", Date: "2024-03-02"},
		{ID: "2", CustomerName: "Acme", Date: "2024-03-01"},
		{ID: "3", CustomerName: "Acme", Date: "2024-03-01"},
	}
	view := ListView(recs, Query{Sort: SortState{Key: "date"}, Page: 1})
	// Records 2 and 3 share a date; their prior relative order must survive.
	if view.Records[0].ID != "2" || view.Records[1].ID != "3" || view.Records[2].ID != "1" {
		t.Fatalf("unexpected order: %+v", ids(view.Records))
	}
}

func TestListView_SortDescendingReverses(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "1", CustomerName: "Beta"},
		{ID: "2", CustomerName: "Alpha"},
	}
	view := ListView(recs, Query{Sort: SortState{Key: "customer_name", Desc: true}, Page: 1})
	if view.Records[0].ID != "1" {
		t.Fatalf("expected descending order, got %+v", ids(view.Records))
	}
}

func TestListView_InputSliceNotMutated(t *testing.T) {
	recs := []records.CallRecord{
		{ID: "b", CustomerName: "B"},
		{ID: "a", CustomerName: "A"},
	}
	ListView(recs, Query{Sort: SortState{Key: "customer_name"}, Page: 1})
	if recs[0].ID != "b" {
		t.Fatalf("input slice was reordered")
	}
}

func TestListView_Pagination(t *testing.T) {
	recs := make([]records.CallRecord, 25)
	for i := range recs {
		recs[i] = records.CallRecord{ID: fmt.Sprintf("%02d", i)}
	}

	page3 := ListView(recs, Query{Page: 3})
	if len(page3.Records) != 5 {
		t.Fatalf("expected 5 records on page 3 of 25, got %d", len(page3.Records))
	}
	if page3.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", page3.TotalPages)
	}

	beyond := ListView(recs, Query{Page: 99})
	if len(beyond.Records) != 0 {
		t.Fatalf("expected empty slice past the end, got %d records", len(beyond.Records))
	}

	clamped := ListView(recs, Query{Page: 0})
	if clamped.Page != 1 || len(clamped.Records) != PageSize {
		t.Fatalf("expected page 0 to clamp to the first page, got page=%d len=%d", clamped.Page, len(clamped.Records))
	}
}

func TestSortState_Toggle(t *testing.T) {
	s := SortState{}

	s = s.Toggle("date")
	if s.Key != "date" || s.Desc {
		t.Fatalf("new key should start ascending, got %+v", s)
	}
	s = s.Toggle("date")
	if !s.Desc {
		t.Fatalf("re-selecting the key should reverse direction, got %+v", s)
	}
	s = s.Toggle("status")
	if s.Key != "status" || s.Desc {
		t.Fatalf("selecting a new key should reset to ascending, got %+v", s)
	}
}

func ids(recs []records.CallRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

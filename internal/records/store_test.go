package records

import (
	"context"
	"errors"
	"testing"
)

// fakeAPI is an in-memory stand-in for the remote REST API.
type fakeAPI struct {
	serverRecs []CallRecord
	nextID     int

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	listCalls int
}

func (f *fakeAPI) ListCalls(ctx context.Context) ([]CallRecord, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]CallRecord, len(f.serverRecs))
	copy(out, f.serverRecs)
	return out, nil
}

func (f *fakeAPI) CreateCall(ctx context.Context, draft CallRecord, att *Attachment) (CallRecord, error) {
	if f.createErr != nil {
		return CallRecord{}, f.createErr
	}
	f.nextID++
	draft.ID = itoa(f.nextID)
	f.serverRecs = append(f.serverRecs, draft)
	return draft, nil
}

func (f *fakeAPI) UpdateCall(ctx context.Context, id string, draft CallRecord, att *Attachment) (CallRecord, error) {
	if f.updateErr != nil {
		return CallRecord{}, f.updateErr
	}
	for i, r := range f.serverRecs {
		if r.ID == id {
			draft.ID = id
			f.serverRecs[i] = draft
			return draft, nil
		}
	}
	return CallRecord{}, errors.New("not found")
}

func (f *fakeAPI) DeleteCall(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, r := range f.serverRecs {
		if r.ID == id {
			f.serverRecs = append(f.serverRecs[:i], f.serverRecs[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestStore_FetchAllReplacesSnapshot(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1", CustomerName: "Acme"}}}
	s := NewStore(api, nil)

	got, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	api.serverRecs = []CallRecord{{ID: "2"}, {ID: "3"}}
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected snapshot replaced wholesale, got %d records", s.Len())
	}
}

func TestStore_FailedFetchKeepsPriorCollection(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	api.listErr = errors.New("boom")
	if _, err := s.FetchAll(context.Background()); err == nil {
		t.Fatalf("expected fetch error")
	}
	if s.Len() != 1 {
		t.Fatalf("failed fetch must not clear the collection, got %d", s.Len())
	}
}

func TestStore_CreateRefetches(t *testing.T) {
	api := &fakeAPI{}
	s := NewStore(api, nil)

	created, err := s.Create(context.Background(), CallRecord{CustomerName: "Acme"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected server-assigned id")
	}
	// Server-assigned fields become visible via the refetch, not local insertion.
	if s.Len() != 1 {
		t.Fatalf("expected collection to hold the created record, got %d", s.Len())
	}
	if api.listCalls != 1 {
		t.Fatalf("expected exactly one refetch after create, got %d", api.listCalls)
	}
}

func TestStore_CreateFailureLeavesCollectionIntact(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	api.createErr = errors.New("rejected")
	if _, err := s.Create(context.Background(), CallRecord{}, nil); err == nil {
		t.Fatalf("expected create error")
	}
	if s.Len() != 1 {
		t.Fatalf("failed create must not touch the collection, got %d", s.Len())
	}
}

func TestStore_UpdateRefetches(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1", CustomerName: "Acme"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	updated, err := s.Update(context.Background(), "1", CallRecord{CustomerName: "Acme Corp"}, nil)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if updated.CustomerName != "Acme Corp" {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	snap := s.Snapshot()
	if snap[0].CustomerName != "Acme Corp" {
		t.Fatalf("expected refetched collection to carry the update, got %+v", snap[0])
	}
}

func TestStore_UpdateRequiresID(t *testing.T) {
	s := NewStore(&fakeAPI{}, nil)
	if _, err := s.Update(context.Background(), "", CallRecord{}, nil); !errors.Is(err, ErrEmptyID) {
		t.Fatalf("expected ErrEmptyID, got %v", err)
	}
}

func TestStore_DeleteDropsExactlyOneID(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1"}, {ID: "2"}, {ID: "3"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if err := s.Delete(context.Background(), "2"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, r := range s.Snapshot() {
		if r.ID == "2" {
			t.Fatalf("deleted id still present")
		}
	}
	if s.Len() != 2 {
		t.Fatalf("expected exactly one row removed, got %d", s.Len())
	}

	// Delete then fetch: the server no longer has the id either.
	got, err := s.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	for _, r := range got {
		if r.ID == "2" {
			t.Fatalf("refetch resurrected a deleted id")
		}
	}
}

func TestStore_DeleteFailureKeepsRecord(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	api.deleteErr = errors.New("boom")
	if err := s.Delete(context.Background(), "1"); err == nil {
		t.Fatalf("expected delete error")
	}
	if s.Len() != 1 {
		t.Fatalf("failed delete must not remove locally, got %d", s.Len())
	}
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	api := &fakeAPI{serverRecs: []CallRecord{{ID: "1", CustomerName: "Acme"}}}
	s := NewStore(api, nil)
	if _, err := s.FetchAll(context.Background()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	snap := s.Snapshot()
	snap[0].CustomerName = "mutated"
	if s.Snapshot()[0].CustomerName != "Acme" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}

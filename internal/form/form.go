// Package form manages the lifecycle of a single call record being created
// or edited: draft state, load-from-record, validation, and submission.
package form

import (
	"context"
	"fmt"
	"strings"

	"call-dashboard/internal/records"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Submitter is the slice of the record store the form depends on.
type Submitter interface {
	Create(ctx context.Context, draft records.CallRecord, att *records.Attachment) (records.CallRecord, error)
	Update(ctx context.Context, id string, draft records.CallRecord, att *records.Attachment) (records.CallRecord, error)
}

// Controller is the form state machine. It starts in create mode with an
// empty draft; BeginEdit switches to edit mode with the target copied in.
// Successful submission resets back to create mode; a failed submission
// keeps the draft and mode intact so user input survives.
//
// The controller owns its draft exclusively. Drafts travel by value: a draft
// is copied into a request payload, never aliased into the store.
type Controller struct {
	store Submitter

	mode   Mode
	target string // persisted id when editing
	draft  records.CallRecord
	att    *records.Attachment
}

func NewController(store Submitter) *Controller {
	return &Controller{store: store, mode: ModeCreate}
}

func (c *Controller) Mode() Mode { return c.mode }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() records.CallRecord { return c.draft }

// SetDraft replaces the draft fields. The id is controlled by the mode, not
// the caller: whatever id the incoming value carries is dropped.
func (c *Controller) SetDraft(d records.CallRecord) {
	d.ID = ""
	c.draft = d
}

// Attach stages a recording file for the next submission.
func (c *Controller) Attach(att *records.Attachment) { c.att = att }

// BeginEdit pre-populates the form from a persisted record and switches to
// edit mode. Editing a transient record is a programming error.
func (c *Controller) BeginEdit(rec records.CallRecord) error {
	if !rec.Persisted() {
		return fmt.Errorf("form: cannot edit a record without an id")
	}
	c.mode = ModeEdit
	c.target = rec.ID
	rec.ID = ""
	c.draft = rec
	c.att = nil
	return nil
}

// Reset discards the draft and returns to create mode. Used for cancel and
// after a successful submit.
func (c *Controller) Reset() {
	c.mode = ModeCreate
	c.target = ""
	c.draft = records.CallRecord{}
	c.att = nil
}

// Submit validates the draft and, only if it passes, delegates to the store
// according to the current mode. Validation failures never reach the
// network. On success the controller resets; on failure it is left exactly
// as it was.
func (c *Controller) Submit(ctx context.Context) (records.CallRecord, error) {
	if err := Validate(c.draft); err != nil {
		return records.CallRecord{}, err
	}

	var (
		rec records.CallRecord
		err error
	)
	switch c.mode {
	case ModeEdit:
		rec, err = c.store.Update(ctx, c.target, c.draft, c.att)
	default:
		rec, err = c.store.Create(ctx, c.draft, c.att)
	}
	if err != nil {
		return records.CallRecord{}, err
	}
	c.Reset()
	return rec, nil
}

// FieldError is a client-side, field-scoped validation failure.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("form: %s %s", e.Field, e.Reason)
}

// Validate checks the draft against the submission policy: every field
// required except the attachment, plus a minimal email shape check.
func Validate(d records.CallRecord) error {
	required := []struct {
		field, value string
	}{
		{"customer_name", d.CustomerName},
		{"caller_name", d.CallerName},
		{"number", d.Number},
		{"email", d.Email},
		{"address", d.Address},
		{"time", d.Time},
		{"date", d.Date},
		{"duration", d.Duration},
		{"status", string(d.Status)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return &FieldError{Field: f.field, Reason: "is required"}
		}
	}
	if !d.Status.Valid() {
		return &FieldError{Field: "status", Reason: "is not a known status"}
	}
	if !validEmail(d.Email) {
		return &FieldError{Field: "email", Reason: "is not a valid address"}
	}
	return nil
}

// validEmail requires an @ with a non-empty local part and a domain segment
// containing a dot. Anything stricter belongs to the server.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.Contains(domain, "@")
}

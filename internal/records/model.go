package records

// CallRecord is the sole domain entity: one logged call against a customer.
//
// A record is either persisted (ID assigned by the remote API) or a transient
// draft held by the form layer before submission. Drafts are copied into
// request payloads, never aliased into the store.
type CallRecord struct {
	ID string `json:"id,omitempty"`

	CustomerName string `json:"customer_name"`
	CallerName   string `json:"caller_name"`
	Number       string `json:"number"`
	Email        string `json:"email"`
	Address      string `json:"address"`

	// Time is a local time-of-day string (HH:MM); Date is the calendar date
	// (YYYY-MM-DD) used as the grouping key for chart buckets.
	Time string `json:"time"`
	Date string `json:"date"`

	// Duration is free-form text, not parsed.
	Duration string `json:"duration"`

	Status Status `json:"status"`

	// Recording is a URL to an uploaded attachment, when one exists.
	Recording string `json:"recording,omitempty"`

	// CSATRating is set by an external survey process; nil until rated.
	// It is never edited through this dashboard.
	CSATRating *float64 `json:"csat_rating"`
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusOpen      Status = "Open"
	StatusClosed    Status = "Closed"
	StatusAbandoned Status = "Abandoned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusOpen, StatusClosed, StatusAbandoned:
		return true
	default:
		return false
	}
}

// Persisted reports whether the record originates from the remote API.
func (r CallRecord) Persisted() bool { return r.ID != "" }

// Attachment is an optional recording file submitted alongside a draft.
type Attachment struct {
	Filename string
	Data     []byte
}

package upstream

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed API exchange. Callers branch on the kind,
// not on raw status codes.
type ErrorKind string

const (
	// KindNetwork covers transport failures: the request never produced an
	// HTTP response. Retryable by re-invoking the same operation.
	KindNetwork ErrorKind = "network"

	// KindAuth is a 401: the session is no longer valid and the gate must
	// transition to logged-out.
	KindAuth ErrorKind = "auth"

	// KindForbidden is a 403: permission denied, session stays alive.
	KindForbidden ErrorKind = "forbidden"

	// KindNotFound is a 404 on an addressed resource.
	KindNotFound ErrorKind = "not_found"

	// KindServer covers 5xx responses and malformed payloads.
	KindServer ErrorKind = "server"

	// KindValidation is a 4xx rejection of the submitted payload.
	KindValidation ErrorKind = "validation"
)

// APIError is the typed result of any failed exchange with the remote API.
type APIError struct {
	Kind    ErrorKind
	Status  int // 0 for transport failures
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream: %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("upstream: %s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

func netErr(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: "server not reachable", cause: err}
}

// AsAPIError extracts an *APIError from an error chain.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	if ae, ok := AsAPIError(err); ok {
		return ae.Kind == kind
	}
	return false
}

func IsAuth(err error) bool      { return IsKind(err, KindAuth) }
func IsForbidden(err error) bool { return IsKind(err, KindForbidden) }
func IsNotFound(err error) bool  { return IsKind(err, KindNotFound) }
func IsNetwork(err error) bool   { return IsKind(err, KindNetwork) }

package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an upstream API failure.
type ErrorKind int

const (
	// KindTransport means no HTTP response was received at all.
	KindTransport ErrorKind = iota
	// KindAuth covers 401 and 403 responses.
	KindAuth
	// KindValidation covers the remaining 4xx responses; the server message
	// is surfaced verbatim.
	KindValidation
	// KindServer covers 5xx responses.
	KindServer
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// APIError is the typed error every gateway call returns on failure.
// StatusCode is zero for transport errors. Message carries the
// server-supplied message when one was present.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream %s error: %s", e.Kind, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream %s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("upstream %s error: status %d", e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind from err, or (0, false) if err is not a
// gateway error.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsAuth reports whether err is an upstream 401/403.
func IsAuth(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindAuth
}

// IsValidation reports whether err is an upstream non-auth 4xx.
func IsValidation(err error) bool {
	k, ok := KindOf(err)
	return ok && k == KindValidation
}

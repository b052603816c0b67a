package summarizer

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind is the closed set of failure classes a provider reports.
type ErrorKind int

const (
	KindHTTP ErrorKind = iota
	KindInvalidCredential
	KindQuotaExceeded
	KindNetwork
	KindMalformedResponse
)

const (
	invalidCredentialMarker = "API_KEY_INVALID"
	quotaExceededMarker     = "QUOTA_EXCEEDED"
	resourceExhaustedMarker = "RESOURCE_EXHAUSTED"
)

func (k ErrorKind) String() string {
	switch k {
	case KindHTTP:
		return "http"
	case KindInvalidCredential:
		return "invalid_credential"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindNetwork:
		return "network"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is returned by providers for every failed call. Kind is decided once,
// where the response is read.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	// Code is the provider's own error code, if any.
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of a provider error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}

	return 0, false
}

// classifyStatus checks credential markers first, then quota markers.
func classifyStatus(statusCode int, markers ...string) ErrorKind {
	joined := strings.ToUpper(strings.Join(markers, " "))

	switch {
	case strings.Contains(joined, invalidCredentialMarker),
		statusCode == http.StatusUnauthorized,
		statusCode == http.StatusForbidden:
		return KindInvalidCredential
	case strings.Contains(joined, quotaExceededMarker),
		strings.Contains(joined, resourceExhaustedMarker),
		statusCode == http.StatusTooManyRequests:
		return KindQuotaExceeded
	default:
		return KindHTTP
	}
}

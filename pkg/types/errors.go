package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidURL         = errors.New("invalid facebook url")
	ErrContentUnavailable = errors.New("content unavailable")
	ErrUnhandledContent   = errors.New("unhandled content")
	ErrMissingCredentials = errors.New("missing facebook credentials")
	ErrRetryable          = errors.New("retryable failure")
	ErrMalformedData      = errors.New("malformed data block")
	ErrVideoURLUnresolved = errors.New("could not resolve video url")
	ErrMissingField       = errors.New("required field missing")
)

// SieveError reports a recognized shape whose required field could not be
// extracted. It matches ErrUnhandledContent.
type SieveError struct {
	Sieve string
	Field string
	Err   error
}

func (e *SieveError) Error() string {
	return fmt.Sprintf("sieve %s: field %s: %v", e.Sieve, e.Field, e.Err)
}

func (e *SieveError) Unwrap() error { return e.Err }

func (e *SieveError) Is(target error) bool { return target == ErrUnhandledContent }

// UnhandledContentError carries enough of the page payload to write a new sieve.
type UnhandledContentError struct {
	URL       string
	Shape     string
	Fragments int
	Sample    []string
}

func (e *UnhandledContentError) Error() string {
	return fmt.Sprintf("unhandled content at %s (shape %s, %d fragments, keys %s)",
		e.URL, e.Shape, e.Fragments, strings.Join(e.Sample, ","))
}

func (e *UnhandledContentError) Is(target error) bool { return target == ErrUnhandledContent }

// RetryableError wraps a transient failure so a scheduler can requeue the URL.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RetryableError) Unwrap() error { return e.Err }

func (e *RetryableError) Is(target error) bool { return target == ErrRetryable }

// IsRetryable reports whether err should be retried later.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRetryable)
}

// ErrorKind maps an error onto the lookup failure taxonomy.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidURL):
		return "invalid_url"
	case errors.Is(err, ErrContentUnavailable):
		return "content_unavailable"
	case errors.Is(err, ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, ErrRetryable):
		return "retryable"
	case errors.Is(err, ErrMalformedData):
		return "malformed_data"
	case errors.Is(err, ErrUnhandledContent):
		return "unhandled_content"
	default:
		return "error"
	}
}

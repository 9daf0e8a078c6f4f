package geocode

import (
	"errors"
	"fmt"
)

// Kind classifies reverse-geocoding failures. The refresh coordinator keys
// its retry policy off it.
type Kind int

const (
	// Network covers transport errors, timeouts and 5xx responses.
	Network Kind = iota
	// RateLimited means the provider answered 429.
	RateLimited
	// NoResult means the provider has no address for the coordinate.
	NoResult
	// Malformed covers invalid input coordinates and undecodable responses.
	Malformed
)

func (k Kind) String() string {
	switch k {
	case Network:
		return "network"
	case RateLimited:
		return "rate_limited"
	case NoResult:
		return "no_result"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Retryable reports whether a failure of this kind is worth one more attempt.
func (k Kind) Retryable() bool {
	return k == Network || k == RateLimited
}

// Error is the only error type returned by Resolver.Resolve.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "geocode " + e.Kind.String()
	}
	return fmt.Sprintf("geocode %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf extracts the Kind from err. Errors that are not *Error are
// treated as Network failures.
func KindOf(err error) Kind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return Network
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

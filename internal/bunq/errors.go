package bunq

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthenticationFailed wraps every failed handshake step.
	ErrAuthenticationFailed = errors.New("bunq authentication failed")
	// ErrMissingAPIKey is returned when neither the user nor the configuration supplied a key.
	ErrMissingAPIKey = errors.New("bunq API key is not configured")
	// ErrMissingToken is returned when a handshake response carries no token at Response[1].
	ErrMissingToken = errors.New("token missing from handshake response")
	// ErrEmptyResponse is returned when a single-object endpoint answers with an empty collection.
	ErrEmptyResponse = errors.New("empty response collection")
	// ErrNoUser is returned when GET /user yields no person to scope account paths with.
	ErrNoUser = errors.New("no user in response")
)

// FetchError describes a failed data retrieval: a network error, a non-2xx status or an
// undecodable body.
type FetchError struct {
	Op     string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("bunq %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("bunq %s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err carries a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

func authError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrAuthenticationFailed, step, err)
}

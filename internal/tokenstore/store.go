// Package tokenstore persists the bunq credentials between runs: the session and installation
// tokens produced by the handshake and the API key supplied by the user.
package tokenstore

import (
	"errors"
)

// Keys of the persisted entries.
const (
	KeySessionToken      = "bunq_session_token"
	KeyInstallationToken = "bunq_installation_token"
	KeyAPIKey            = "bunq_api_key"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("token not found")

// Store is a flat string key-value store.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	// Delete removes the keys. Missing keys are not an error.
	Delete(keys ...string) error
	Close() error
}

// Lookup returns the value for key, or "" when it is absent or unreadable.
func Lookup(s Store, key string) string {
	v, err := s.Get(key)
	if err != nil {
		return ""
	}
	return v
}

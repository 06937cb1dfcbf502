// Package storage provides the key/value abstraction that holds session
// credentials for the API client.
package storage

import "errors"

// ErrNotFound is returned by Store.Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Keys under which the API client keeps its session credentials.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// Store is a flat string key/value store. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set creates or overwrites the value for key.
	Set(key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
	// Clear removes every key.
	Clear() error
}

// Lookup is Get with the not-found case folded into ok. Other errors are
// returned as-is.
func Lookup(s Store, key string) (value string, ok bool, err error) {
	v, err := s.Get(key)
	if errors.Is(err, ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, v != "", nil
}

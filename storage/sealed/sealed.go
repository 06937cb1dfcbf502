// Package sealed wraps a storage.Store so that values are encrypted before
// they reach the underlying backend.
//
// Each value is sealed with AES-256-GCM into a storage.Envelope, JSON encoded
// and base64 wrapped. The key is derived from a caller-provided secret with
// HKDF-SHA256 and held in a memguard Enclave between uses. The storage key is
// bound in as additional data, so a ciphertext copied to another key fails
// to open.
package sealed

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/awnumar/memguard"

	icrypto "github.com/jmcleod/stockroom/internal/crypto"
	"github.com/jmcleod/stockroom/internal/util"
	"github.com/jmcleod/stockroom/storage"
)

const (
	namespace = "stockroom"
	keyInfo   = "stockroom:session-store:v1"
	aadVer    = 1
)

var keySalt = []byte(namespace)

// ErrDestroyed is returned after Destroy has been called.
var ErrDestroyed = errors.New("sealed store destroyed")

// Store encrypts values on the way into an inner storage.Store and decrypts
// them on the way out.
type Store struct {
	inner storage.Store

	mu  sync.RWMutex
	key *memguard.Enclave
}

var _ storage.Store = (*Store)(nil)

// New derives the sealing key from secret and returns a Store wrapping inner.
// The secret is not retained.
func New(inner storage.Store, secret []byte) (*Store, error) {
	if inner == nil {
		return nil, fmt.Errorf("sealed: inner store is nil")
	}
	key, err := util.DeriveKey(secret, keySalt, []byte(keyInfo))
	if err != nil {
		return nil, fmt.Errorf("sealed: %w", err)
	}
	// NewEnclave wipes key.
	return &Store{inner: inner, key: memguard.NewEnclave(key)}, nil
}

// Destroy drops the key material. Further calls return ErrDestroyed.
func (s *Store) Destroy() {
	s.mu.Lock()
	s.key = nil
	s.mu.Unlock()
}

func (s *Store) withKey(fn func(key []byte) error) error {
	s.mu.RLock()
	enclave := s.key
	s.mu.RUnlock()
	if enclave == nil {
		return ErrDestroyed
	}
	buf, err := enclave.Open()
	if err != nil {
		return fmt.Errorf("opening key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.Bytes())
}

func (s *Store) Get(key string) (string, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%s: decoding sealed value: %w", key, err)
	}
	var env storage.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("%s: parsing sealed value: %w", key, err)
	}
	var value string
	err = s.withKey(func(k []byte) error {
		plain, err := storage.Open(k, &env, icrypto.AADSessionValue(namespace, key, aadVer))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		value = string(plain)
		util.WipeBytes(plain)
		return nil
	})
	return value, err
}

func (s *Store) Set(key, value string) error {
	var env *storage.Envelope
	err := s.withKey(func(k []byte) error {
		var err error
		env, err = storage.Seal(k, []byte(value), icrypto.AADSessionValue(namespace, key, aadVer))
		return err
	})
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return s.inner.Set(key, base64.StdEncoding.EncodeToString(data))
}

func (s *Store) Delete(key string) error {
	return s.inner.Delete(key)
}

func (s *Store) Clear() error {
	return s.inner.Clear()
}

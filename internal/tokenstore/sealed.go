package tokenstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

// ErrSealBroken is returned when a stored value cannot be opened with the configured secret.
var ErrSealBroken = errors.New("sealed token cannot be opened")

// SealedStore encrypts values with NaCl secretbox before handing them to the wrapped store.
type SealedStore struct {
	inner Store
	key   [32]byte
}

// Seal wraps inner so that values are encrypted at rest with a key derived from secret.
func Seal(inner Store, secret string) (*SealedStore, error) {
	if secret == "" {
		return nil, errors.New("seal secret is required")
	}
	s := &SealedStore{inner: inner}
	h := hkdf.New(sha256.New, []byte(secret), nil, []byte("bunqdash-token-store"))
	if _, err := io.ReadFull(h, s.key[:]); err != nil {
		return nil, fmt.Errorf("derive seal key: %w", err)
	}
	return s, nil
}

func (s *SealedStore) Get(key string) (string, error) {
	raw, err := s.inner.Get(key)
	if err != nil {
		return "", err
	}
	box, err := base64.StdEncoding.DecodeString(raw)
	if err != nil || len(box) < nonceSize {
		return "", ErrSealBroken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealBroken
	}
	return string(plain), nil
}

func (s *SealedStore) Set(key, value string) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(value), &nonce, &s.key)
	return s.inner.Set(key, base64.StdEncoding.EncodeToString(box))
}

func (s *SealedStore) Delete(keys ...string) error {
	return s.inner.Delete(keys...)
}

func (s *SealedStore) Close() error {
	return s.inner.Close()
}

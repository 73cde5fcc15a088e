// Package hasher computes digests of encoded snapshots.
package hasher

import (
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
)

// ErrDataIsNil is returned if the passed data is nil.
var ErrDataIsNil = errors.New("data is nil")

// Hasher computes a named digest.
type Hasher interface {
	// Name identifies the algorithm in storage keys.
	Name() string
	// Hash returns the digest of data.
	Hash(data []byte) ([]byte, error)
}

type digest struct {
	name   string
	create func() hash.Hash
}

// NewSHA256Hasher returns a SHA-256 Hasher.
func NewSHA256Hasher() Hasher {
	return digest{name: "sha256", create: sha256.New}
}

// NewSHA1Hasher returns a SHA-1 Hasher.
func NewSHA1Hasher() Hasher {
	return digest{name: "sha1", create: sha1.New}
}

// Name implements Hasher.
func (d digest) Name() string {
	return d.name
}

// Hash implements Hasher. Every call starts from a fresh state.
func (d digest) Hash(data []byte) ([]byte, error) {
	if data == nil {
		return nil, ErrDataIsNil
	}

	h := d.create()

	_, err := h.Write(data)
	if err != nil {
		return nil, fmt.Errorf("failed to write data: %w", err)
	}

	return h.Sum(nil), nil
}

package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/tarantool/go-objgraph/hasher"
)

var (
	// ErrNoPrivateKey is returned by Sign on a verify-only RSAPSS.
	ErrNoPrivateKey = errors.New("private key is not set")
	// ErrNoPublicKey is returned by Verify when no public key is set.
	ErrNoPublicKey = errors.New("public key is not set")
)

// RSAPSS signs SHA-256 digests with RSASSA-PSS.
type RSAPSS struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	hasher     hasher.Hasher
}

var _ SignerVerifier = RSAPSS{}

// NewRSAPSS creates a signer-verifier from a key pair.
func NewRSAPSS(privateKey *rsa.PrivateKey) RSAPSS {
	var publicKey *rsa.PublicKey
	if privateKey != nil {
		publicKey = &privateKey.PublicKey
	}

	return RSAPSS{
		privateKey: privateKey,
		publicKey:  publicKey,
		hasher:     hasher.NewSHA256Hasher(),
	}
}

// NewRSAPSSVerifier creates a verify-only RSAPSS.
func NewRSAPSSVerifier(publicKey *rsa.PublicKey) RSAPSS {
	return RSAPSS{
		privateKey: nil,
		publicKey:  publicKey,
		hasher:     hasher.NewSHA256Hasher(),
	}
}

func pssOptions() *rsa.PSSOptions {
	return &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
		Hash:       crypto.SHA256,
	}
}

// Name implements SignerVerifier.
func (r RSAPSS) Name() string {
	return "rsapss"
}

// Sign implements Signer.
func (r RSAPSS) Sign(data []byte) ([]byte, error) {
	if r.privateKey == nil {
		return nil, ErrNoPrivateKey
	}

	digest, err := r.hasher.Hash(data)
	if err != nil {
		return nil, fmt.Errorf("failed to get hash: %w", err)
	}

	signature, err := rsa.SignPSS(rand.Reader, r.privateKey, crypto.SHA256, digest, pssOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to sign: %w", err)
	}

	return signature, nil
}

// Verify implements Verifier.
func (r RSAPSS) Verify(data []byte, signature []byte) error {
	if r.publicKey == nil {
		return ErrNoPublicKey
	}

	digest, err := r.hasher.Hash(data)
	if err != nil {
		return fmt.Errorf("failed to get hash: %w", err)
	}

	err = rsa.VerifyPSS(r.publicKey, crypto.SHA256, digest, signature, pssOptions())
	if err != nil {
		return fmt.Errorf("failed to verify: %w", err)
	}

	return nil
}

// Package crypto signs encoded snapshots and verifies their signatures.
package crypto

// Signer produces signatures.
type Signer interface {
	// Name identifies the algorithm in storage keys.
	Name() string
	// Sign returns the signature of data.
	Sign(data []byte) ([]byte, error)
}

// Verifier checks signatures.
type Verifier interface {
	// Name identifies the algorithm in storage keys.
	Name() string
	// Verify checks that signature matches data.
	Verify(data []byte, signature []byte) error
}

// SignerVerifier both signs and verifies.
type SignerVerifier interface {
	Signer
	Verifier
}

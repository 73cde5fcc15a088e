package snapshot

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/tarantool/go-objgraph/namer"
)

var (
	// ErrInvalidName is returned for a malformed snapshot name.
	ErrInvalidName = namer.ErrInvalidName
	// ErrNotFound is returned by Get for a missing snapshot.
	ErrNotFound = errors.New("not found")
	// ErrPredicateFailed is returned by Put or Delete when the predicates
	// given with WithPutPredicates or WithDeletePredicates do not hold.
	ErrPredicateFailed = errors.New("predicate check failed")
)

// ImpossibleError reports a store configuration that cannot produce the
// keys it asks for.
type ImpossibleError struct {
	text string
}

func errHasherNotFound(name string) error {
	return ImpossibleError{text: "hasher not found: " + name}
}

func errSignerNotFound(name string) error {
	return ImpossibleError{text: "signer not found: " + name}
}

func errUnknownKeyType(keyType fmt.Stringer) error {
	return ImpossibleError{text: "unknown key type: " + keyType.String()}
}

func (e ImpossibleError) Error() string {
	return e.text
}

// EncodeError is returned when a snapshot cannot be turned into records.
type EncodeError struct {
	stage  string
	parent error
}

func errEncode(stage string, parent error) error {
	if parent == nil {
		return nil
	}

	return EncodeError{stage: stage, parent: parent}
}

// Unwrap returns the underlying error.
func (e EncodeError) Unwrap() error {
	return e.parent
}

func (e EncodeError) Error() string {
	return fmt.Sprintf("failed to %s: %s", e.stage, e.parent)
}

// ValidationError reports a stored snapshot that failed verification.
type ValidationError struct {
	text   string
	parent error
}

func (e ValidationError) Error() string {
	if e.parent == nil {
		return e.text
	}

	return fmt.Sprintf("%s: %s", e.text, e.parent)
}

// Unwrap returns the underlying error.
func (e ValidationError) Unwrap() error {
	return e.parent
}

func errMissingValue() error {
	return ValidationError{text: "graph record is missing", parent: nil}
}

func errHashNotVerifiedMissing(hasherName string) error {
	return ValidationError{
		text:   fmt.Sprintf("hash %q not verified (missing)", hasherName),
		parent: nil,
	}
}

func errSignatureNotVerifiedMissing(verifierName string) error {
	return ValidationError{
		text:   fmt.Sprintf("signature %q not verified (missing)", verifierName),
		parent: nil,
	}
}

type hashMismatchDetailError struct {
	expected []byte
	got      []byte
}

func (h hashMismatchDetailError) Error() string {
	return fmt.Sprintf("expected %s, got %s", hex.EncodeToString(h.expected), hex.EncodeToString(h.got))
}

func errHashMismatch(hasherName string, expected, got []byte) error {
	return ValidationError{
		text:   fmt.Sprintf("hash mismatch for %q", hasherName),
		parent: hashMismatchDetailError{expected: expected, got: got},
	}
}

func errFailedToComputeHash(hasherName string, parent error) error {
	return ValidationError{
		text:   fmt.Sprintf("failed to calculate hash %q", hasherName),
		parent: parent,
	}
}

func errSignatureVerificationFailed(verifierName string, parent error) error {
	return ValidationError{
		text:   fmt.Sprintf("signature verification failed for %q", verifierName),
		parent: parent,
	}
}

func errFailedToDecode(parent error) error {
	return ValidationError{
		text:   "failed to decode graph",
		parent: parent,
	}
}

// AggregatedError collects every verification failure of one snapshot.
type AggregatedError struct {
	parent []error
}

// Unwrap returns the collected errors.
func (e *AggregatedError) Unwrap() []error {
	return e.parent
}

// Append adds a non-nil error.
func (e *AggregatedError) Append(err error) {
	if err != nil {
		e.parent = append(e.parent, err)
	}
}

func (e *AggregatedError) Error() string {
	texts := make([]string, 0, len(e.parent))
	for _, p := range e.parent {
		texts = append(texts, p.Error())
	}

	if len(texts) == 1 {
		return texts[0]
	}

	return "aggregated error: " + strings.Join(texts, ", ")
}

// Finalize returns nil, the single error, or the aggregate.
func (e *AggregatedError) Finalize() error {
	switch len(e.parent) {
	case 0:
		return nil
	case 1:
		return e.parent[0]
	default:
		return e
	}
}

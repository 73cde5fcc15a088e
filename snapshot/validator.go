package snapshot

import (
	"bytes"
	"slices"

	"github.com/samber/lo"
	"github.com/tarantool/go-option"

	objgraph "github.com/tarantool/go-objgraph"
	"github.com/tarantool/go-objgraph/crypto"
	"github.com/tarantool/go-objgraph/hasher"
	"github.com/tarantool/go-objgraph/kv"
	"github.com/tarantool/go-objgraph/marshaller"
	"github.com/tarantool/go-objgraph/namer"
	"github.com/tarantool/go-objgraph/node"
)

// Validator verifies integrity-protected records and decodes their graphs.
type Validator struct {
	namer      namer.Namer
	marshaller marshaller.Marshaller
	hashers    map[string]hasher.Hasher
	verifiers  map[string]crypto.Verifier
}

// NewValidator creates a Validator.
func NewValidator(
	namer namer.Namer,
	marshaller marshaller.Marshaller,
	hashers []hasher.Hasher,
	verifiers []crypto.Verifier,
) Validator {
	return Validator{
		namer:      namer,
		marshaller: marshaller,
		hashers:    lo.KeyBy(hashers, hasher.Hasher.Name),
		verifiers:  lo.KeyBy(verifiers, crypto.Verifier.Name),
	}
}

type parsedKV struct {
	key    namer.Key
	record kv.KeyValue
}

// Validate groups records by snapshot name and verifies every group.
// Results are ordered by name.
func (v Validator) Validate(kvs []kv.KeyValue) ([]Result, error) {
	parsed := make([]parsedKV, 0, len(kvs))

	for _, record := range kvs {
		key, err := v.namer.ParseKey(string(record.Key))
		if err != nil {
			return nil, ValidationError{text: "failed to parse key", parent: err}
		}

		parsed = append(parsed, parsedKV{key: key, record: record})
	}

	groups := lo.GroupBy(parsed, func(item parsedKV) string {
		return item.key.Name()
	})

	names := lo.Keys(groups)
	slices.Sort(names)

	return lo.Map(names, func(name string, _ int) Result {
		return v.validateSingle(name, groups[name])
	}), nil
}

func (v Validator) validateSingle(name string, group []parsedKV) Result {
	result := Result{
		Name:     name,
		Data:     option.None[node.PersistentData](),
		Value:    option.None[any](),
		Revision: 0,
		Error:    nil,
	}

	value, ok := lo.Find(group, func(item parsedKV) bool {
		return item.key.Type() == namer.KeyTypeValue
	})
	if !ok {
		result.Error = errMissingValue()
		return result
	}

	result.Revision = value.record.ModRevision
	body := value.record.Value

	data, err := v.marshaller.Unmarshal(body)
	if err == nil {
		err = objgraph.Validate(data)
	}

	if err != nil {
		result.Error = errFailedToDecode(err)
		return result
	}

	result.Data = option.Some(data)
	result.Error = v.verify(body, group)

	return result
}

func (v Validator) verify(body []byte, group []parsedKV) error {
	expectedHashers := lo.Assign(v.hashers)
	expectedVerifiers := lo.Assign(v.verifiers)
	aggregated := &AggregatedError{parent: nil}

	for _, item := range group {
		property := item.key.Property()

		switch item.key.Type() {
		case namer.KeyTypeHash:
			h, ok := expectedHashers[property]
			if !ok {
				continue
			}

			delete(expectedHashers, property)

			digest, err := h.Hash(body)
			switch {
			case err != nil:
				aggregated.Append(errFailedToComputeHash(property, err))
			case !bytes.Equal(digest, item.record.Value):
				aggregated.Append(errHashMismatch(property, item.record.Value, digest))
			}
		case namer.KeyTypeSignature:
			verifier, ok := expectedVerifiers[property]
			if !ok {
				continue
			}

			delete(expectedVerifiers, property)

			err := verifier.Verify(body, item.record.Value)
			if err != nil {
				aggregated.Append(errSignatureVerificationFailed(property, err))
			}
		case namer.KeyTypeValue:
		}
	}

	for _, hasherName := range sortedNames(expectedHashers) {
		aggregated.Append(errHashNotVerifiedMissing(hasherName))
	}

	for _, verifierName := range sortedNames(expectedVerifiers) {
		aggregated.Append(errSignatureNotVerifiedMissing(verifierName))
	}

	return aggregated.Finalize()
}

func sortedNames[V any](m map[string]V) []string {
	names := lo.Keys(m)
	slices.Sort(names)

	return names
}

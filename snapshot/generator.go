package snapshot

import (
	"github.com/samber/lo"

	"github.com/tarantool/go-objgraph/crypto"
	"github.com/tarantool/go-objgraph/hasher"
	"github.com/tarantool/go-objgraph/kv"
	"github.com/tarantool/go-objgraph/marshaller"
	"github.com/tarantool/go-objgraph/namer"
	"github.com/tarantool/go-objgraph/node"
)

// Generator turns persistent graph data into integrity-protected records.
type Generator struct {
	namer      namer.Namer
	marshaller marshaller.Marshaller
	hashers    map[string]hasher.Hasher
	signers    map[string]crypto.Signer
}

// NewGenerator creates a Generator.
func NewGenerator(
	namer namer.Namer,
	marshaller marshaller.Marshaller,
	hashers []hasher.Hasher,
	signers []crypto.Signer,
) Generator {
	return Generator{
		namer:      namer,
		marshaller: marshaller,
		hashers:    lo.KeyBy(hashers, hasher.Hasher.Name),
		signers:    lo.KeyBy(signers, crypto.Signer.Name),
	}
}

// Encode marshals data with the configured marshaller.
func (g Generator) Encode(data node.PersistentData) ([]byte, error) {
	encoded, err := g.marshaller.Marshal(data)
	if err != nil {
		return nil, errEncode("marshal graph", err)
	}

	return encoded, nil
}

// Generate returns the value, hash and signature records of name.
func (g Generator) Generate(name string, data node.PersistentData) ([]kv.KeyValue, error) {
	keys, err := g.namer.GenerateNames(name)
	if err != nil {
		return nil, errEncode("generate keys", err)
	}

	encoded, err := g.Encode(data)
	if err != nil {
		return nil, err
	}

	results := make([]kv.KeyValue, 0, len(keys))

	for _, key := range keys {
		var value []byte

		switch key.Type() {
		case namer.KeyTypeValue:
			value = encoded
		case namer.KeyTypeHash:
			h, ok := g.hashers[key.Property()]
			if !ok {
				return nil, errHasherNotFound(key.Property())
			}

			value, err = h.Hash(encoded)
			if err != nil {
				return nil, errEncode("compute hash", err)
			}
		case namer.KeyTypeSignature:
			signer, ok := g.signers[key.Property()]
			if !ok {
				return nil, errSignerNotFound(key.Property())
			}

			value, err = signer.Sign(encoded)
			if err != nil {
				return nil, errEncode("generate signature", err)
			}
		default:
			return nil, errUnknownKeyType(key.Type())
		}

		results = append(results, kv.KeyValue{
			Key:         []byte(key.Build()),
			Value:       value,
			ModRevision: 0,
		})
	}

	return results, nil
}

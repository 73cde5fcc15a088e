package snapshot

import (
	"slices"

	"github.com/samber/lo"
	"github.com/tarantool/go-option"
	"go.uber.org/zap"

	objgraph "github.com/tarantool/go-objgraph"
	"github.com/tarantool/go-objgraph/crypto"
	"github.com/tarantool/go-objgraph/hasher"
	"github.com/tarantool/go-objgraph/marshaller"
	"github.com/tarantool/go-objgraph/namer"
	"github.com/tarantool/go-objgraph/storage"
)

// DefaultPrefix is the key prefix used when WithPrefix is not given.
const DefaultPrefix = "/objgraph/"

// Builder configures a Store. Every With method returns a modified copy.
type Builder struct {
	storage    storage.Storage
	registry   *objgraph.Registry
	hashers    []hasher.Hasher
	signers    []crypto.Signer
	verifiers  []crypto.Verifier
	marshaller marshaller.Marshaller
	logger     *zap.Logger

	prefix string
	namer  option.Generic[namer.Namer]
}

// NewBuilder creates a Builder for snapshots of graphs built from types in
// registry. A nil registry allows only plain values.
func NewBuilder(storageInstance storage.Storage, registry *objgraph.Registry) Builder {
	return Builder{
		storage:    storageInstance,
		registry:   registry,
		hashers:    []hasher.Hasher{},
		signers:    []crypto.Signer{},
		verifiers:  []crypto.Verifier{},
		marshaller: marshaller.NewYAMLMarshaller(),
		logger:     zap.NewNop(),

		prefix: DefaultPrefix,
		namer:  option.None[namer.Namer](),
	}
}

func (b Builder) copy() Builder {
	return Builder{
		storage:    b.storage,
		registry:   b.registry,
		hashers:    slices.Clone(b.hashers),
		signers:    slices.Clone(b.signers),
		verifiers:  slices.Clone(b.verifiers),
		marshaller: b.marshaller,
		logger:     b.logger,

		prefix: b.prefix,
		namer:  b.namer,
	}
}

// WithHasher adds a hasher. Every snapshot gets one digest per hasher.
func (b Builder) WithHasher(h hasher.Hasher) Builder {
	out := b.copy()
	out.hashers = append(out.hashers, h)

	return out
}

// WithSignerVerifier adds an algorithm used both to sign and to verify.
func (b Builder) WithSignerVerifier(sv crypto.SignerVerifier) Builder {
	out := b.copy()
	out.signers = append(out.signers, sv)
	out.verifiers = append(out.verifiers, sv)

	return out
}

// WithSigner adds a signer.
func (b Builder) WithSigner(signer crypto.Signer) Builder {
	out := b.copy()
	out.signers = append(out.signers, signer)

	return out
}

// WithVerifier adds a verifier. Put fails for a verifier with no signer of
// the same name.
func (b Builder) WithVerifier(verifier crypto.Verifier) Builder {
	out := b.copy()
	out.verifiers = append(out.verifiers, verifier)

	return out
}

// WithMarshaller sets the encoding of stored graphs. YAML is the default.
func (b Builder) WithMarshaller(m marshaller.Marshaller) Builder {
	out := b.copy()
	out.marshaller = m

	return out
}

// WithPrefix sets the key prefix. It is ignored when WithNamer is used.
func (b Builder) WithPrefix(prefix string) Builder {
	out := b.copy()
	out.prefix = prefix

	return out
}

// WithNamer replaces the key layout.
func (b Builder) WithNamer(n namer.Namer) Builder {
	out := b.copy()
	out.namer = option.Some(n)

	return out
}

// WithLogger sets the logger. A nil logger is ignored.
func (b Builder) WithLogger(logger *zap.Logger) Builder {
	out := b.copy()
	if logger != nil {
		out.logger = logger
	}

	return out
}

// Build creates the Store.
func (b Builder) Build() *Store {
	keyNamer := b.namer.UnwrapOr(nil)
	if keyNamer == nil {
		sigNames := lo.Uniq(append(
			lo.Map(b.signers, func(s crypto.Signer, _ int) string { return s.Name() }),
			lo.Map(b.verifiers, func(v crypto.Verifier, _ int) string { return v.Name() })...,
		))

		keyNamer = namer.NewDefaultNamer(
			b.prefix,
			lo.Map(b.hashers, func(h hasher.Hasher, _ int) string { return h.Name() }),
			sigNames,
		)
	}

	return &Store{
		base:     b.storage,
		registry: b.registry,
		gen:      NewGenerator(keyNamer, b.marshaller, b.hashers, b.signers),
		val:      NewValidator(keyNamer, b.marshaller, b.hashers, b.verifiers),
		namer:    keyNamer,
		logger:   b.logger,
	}
}

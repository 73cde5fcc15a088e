// Package snapshot keeps named object graphs in storage.
//
// A snapshot is the persistent form of a graph encoded by a marshaller and
// stored next to its digests and signatures. Reads verify every configured
// hasher and verifier before the graph is restored.
//
// See [Builder] for configuration and [Store] for the available operations.
package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/tarantool/go-option"
	"go.uber.org/zap"

	objgraph "github.com/tarantool/go-objgraph"
	"github.com/tarantool/go-objgraph/internal/options"
	"github.com/tarantool/go-objgraph/namer"
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	"github.com/tarantool/go-objgraph/storage"
	"github.com/tarantool/go-objgraph/watch"
)

// Store reads and writes snapshots.
type Store struct {
	base     storage.Storage
	registry *objgraph.Registry
	gen      Generator
	val      Validator
	namer    namer.Namer
	logger   *zap.Logger
}

// Predicate is a condition bound to the graph record of a snapshot.
type Predicate func(key []byte) predicate.Predicate

// Event reports a change of a snapshot.
type Event struct {
	// Name is the changed snapshot.
	Name string
	// Deleted is set when the snapshot was removed.
	Deleted bool
}

type getOptions struct {
	ignoreVerificationError bool
}

type putOptions struct {
	predicates []Predicate
}

type deleteOptions struct {
	withPrefix bool
	predicates []Predicate
}

// GetOption configures Get and Range.
type GetOption = options.OptionCallback[getOptions]

// PutOption configures Put.
type PutOption = options.OptionCallback[putOptions]

// DeleteOption configures Delete.
type DeleteOption = options.OptionCallback[deleteOptions]

// IgnoreVerificationError makes Get and Range return snapshots whose digest
// or signature check failed. The failure stays in Result.Error.
func IgnoreVerificationError() GetOption {
	return func(opts *getOptions) {
		opts.ignoreVerificationError = true
	}
}

// WithPutPredicates makes Put conditional. [ErrPredicateFailed] is returned
// when a predicate does not hold.
func WithPutPredicates(predicates ...Predicate) PutOption {
	return func(opts *putOptions) {
		opts.predicates = append(opts.predicates, predicates...)
	}
}

// WithDeletePredicates makes Delete conditional. [ErrPredicateFailed] is
// returned when a predicate does not hold.
func WithDeletePredicates(predicates ...Predicate) DeleteOption {
	return func(opts *deleteOptions) {
		opts.predicates = append(opts.predicates, predicates...)
	}
}

// WithPrefix makes Delete remove every snapshot under a directory name.
func WithPrefix() DeleteOption {
	return func(opts *deleteOptions) {
		opts.withPrefix = true
	}
}

// VersionEqual holds when the snapshot was last written at revision.
// Revision 0 holds for a missing snapshot.
func (s *Store) VersionEqual(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionEqual(key, revision) }
}

// VersionNotEqual holds when the snapshot was not last written at revision.
func (s *Store) VersionNotEqual(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionNotEqual(key, revision) }
}

// VersionGreater holds when the snapshot was last written after revision.
func (s *Store) VersionGreater(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionGreater(key, revision) }
}

// VersionLess holds when the snapshot was last written before revision.
func (s *Store) VersionLess(revision int64) Predicate {
	return func(key []byte) predicate.Predicate { return predicate.VersionLess(key, revision) }
}

// ValueEqual holds when the stored graph encodes exactly like root.
func (s *Store) ValueEqual(root any) (Predicate, error) {
	return s.valuePredicate(root, predicate.ValueEqual)
}

// ValueNotEqual holds when the stored graph does not encode like root.
func (s *Store) ValueNotEqual(root any) (Predicate, error) {
	return s.valuePredicate(root, predicate.ValueNotEqual)
}

func (s *Store) valuePredicate(root any, build func(key []byte, value []byte) predicate.Predicate) (Predicate, error) {
	data, err := s.serializer().Serialize(root)
	if err != nil {
		return nil, errEncode("serialize predicate value", err)
	}

	encoded, err := s.gen.Encode(data)
	if err != nil {
		return nil, err
	}

	return func(key []byte) predicate.Predicate {
		return build(key, encoded)
	}, nil
}

func (s *Store) serializer() *objgraph.SerializeContext {
	return objgraph.NewSerializeContext(s.registry, objgraph.WithLogger(s.logger))
}

func (s *Store) deserializer() *objgraph.DeserializeContext {
	return objgraph.NewDeserializeContext(s.registry, objgraph.WithLogger(s.logger))
}

func checkName(name string, directory bool) error {
	err := namer.CheckName(name)
	switch {
	case err != nil:
		return err
	case directory && !namer.IsDirectory(name):
		return fmt.Errorf("%w: %q is not a directory", ErrInvalidName, name)
	case !directory && namer.IsDirectory(name):
		return fmt.Errorf("%w: %q is a directory", ErrInvalidName, name)
	default:
		return nil
	}
}

func (s *Store) keys(name string) ([]namer.Key, []byte, error) {
	keys, err := s.namer.GenerateNames(name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate keys for %q: %w", name, err)
	}

	for _, key := range keys {
		if key.Type() == namer.KeyTypeValue {
			return keys, []byte(key.Build()), nil
		}
	}

	return nil, nil, errUnknownKeyType(namer.KeyTypeValue)
}

func bind(predicates []Predicate, key []byte) []predicate.Predicate {
	out := make([]predicate.Predicate, 0, len(predicates))
	for _, p := range predicates {
		out = append(out, p(key))
	}

	return out
}

// Put serializes root and stores it under name.
func (s *Store) Put(ctx context.Context, name string, root any, opts ...PutOption) error {
	err := checkName(name, false)
	if err != nil {
		return err
	}

	putOpts := options.ApplyOptions[putOptions](nil, opts)

	_, valueKey, err := s.keys(name)
	if err != nil {
		return err
	}

	data, err := s.serializer().Serialize(root)
	if err != nil {
		return errEncode("serialize graph", err)
	}

	records, err := s.gen.Generate(name, data)
	if err != nil {
		return err
	}

	ops := make([]operation.Operation, 0, len(records))
	for _, record := range records {
		ops = append(ops, operation.Put(record.Key, record.Value))
	}

	predicates := bind(putOpts.predicates, valueKey)

	txn := s.base.Tx(ctx)
	if len(predicates) > 0 {
		txn = txn.If(predicates...)
	}

	resp, err := txn.Then(ops...).Commit()
	if err != nil {
		return fmt.Errorf("failed to store snapshot %q: %w", name, err)
	}

	if !resp.Succeeded {
		return ErrPredicateFailed
	}

	s.logger.Debug("snapshot stored",
		zap.String("name", name),
		zap.Int("objects", len(data.Objects)),
		zap.Int("records", len(records)))

	return nil
}

// Get reads, verifies and restores the snapshot stored under name.
func (s *Store) Get(ctx context.Context, name string, opts ...GetOption) (Result, error) {
	err := checkName(name, false)
	if err != nil {
		return Result{}, err
	}

	getOpts := options.ApplyOptions[getOptions](nil, opts)

	results, err := s.read(ctx, name)
	if err != nil {
		return Result{}, err
	}

	if len(results) == 0 {
		return Result{}, ErrNotFound
	}

	result := results[0]
	if result.Error != nil && !s.tolerate(result, getOpts) {
		return Result{}, result.Error
	}

	s.logger.Debug("snapshot loaded", zap.String("name", name), zap.Int64("revision", result.Revision))

	return result, nil
}

// Range reads every snapshot under a directory name, ordered by name.
// Snapshots that fail verification are skipped.
func (s *Store) Range(ctx context.Context, dir string, opts ...GetOption) ([]Result, error) {
	err := checkName(dir, true)
	if err != nil {
		return nil, err
	}

	getOpts := options.ApplyOptions[getOptions](nil, opts)

	results, err := s.read(ctx, dir)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))

	for _, result := range results {
		if result.Error == nil || s.tolerate(result, getOpts) {
			out = append(out, result)
			continue
		}

		s.logger.Warn("skipping snapshot", zap.String("name", result.Name), zap.Error(result.Error))
	}

	return out, nil
}

func (s *Store) tolerate(result Result, opts getOptions) bool {
	if !opts.ignoreVerificationError || result.Value.IsZero() {
		return false
	}

	s.logger.Warn("snapshot verification failed",
		zap.String("name", result.Name),
		zap.Error(result.Error))

	return true
}

func (s *Store) read(ctx context.Context, name string) ([]Result, error) {
	keys, _, err := s.keys(name)
	if err != nil {
		return nil, err
	}

	ops := make([]operation.Operation, 0, len(keys))
	for _, key := range keys {
		ops = append(ops, operation.Get([]byte(key.Build())))
	}

	resp, err := s.base.Tx(ctx).Then(ops...).Commit()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %q: %w", name, err)
	}

	results, err := s.val.Validate(resp.Flatten())
	if err != nil {
		return nil, err
	}

	for i := range results {
		s.restore(&results[i])
	}

	return results, nil
}

func (s *Store) restore(result *Result) {
	data, ok := result.Data.Get()
	if !ok {
		return
	}

	root, err := s.deserializer().Deserialize(data)
	if err != nil {
		if result.Error == nil {
			result.Error = err
		}

		return
	}

	result.Value = option.Some(root)
}

// Delete removes the snapshot stored under name. With [WithPrefix], name is
// a directory and every snapshot under it is removed.
func (s *Store) Delete(ctx context.Context, name string, opts ...DeleteOption) error {
	deleteOpts := options.ApplyOptions[deleteOptions](nil, opts)

	err := checkName(name, deleteOpts.withPrefix)
	if err != nil {
		return err
	}

	keys, valueKey, err := s.keys(name)
	if err != nil {
		return err
	}

	ops := make([]operation.Operation, 0, len(keys))
	for _, key := range keys {
		ops = append(ops, operation.Delete([]byte(key.Build())))
	}

	predicates := bind(deleteOpts.predicates, valueKey)

	txn := s.base.Tx(ctx)
	if len(predicates) > 0 {
		txn = txn.If(predicates...)
	}

	resp, err := txn.Then(ops...).Commit()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", name, err)
	}

	if !resp.Succeeded {
		return ErrPredicateFailed
	}

	s.logger.Debug("snapshot deleted", zap.String("name", name), zap.Int("records", len(resp.Flatten())))

	return nil
}

// Watch streams changes of the snapshot name, or of every snapshot under a
// directory name. The returned function stops the stream.
func (s *Store) Watch(ctx context.Context, name string) (<-chan Event, func(), error) {
	err := namer.CheckName(name)
	if err != nil {
		return nil, nil, err
	}

	_, valueKey, err := s.keys(name)
	if err != nil {
		return nil, nil, err
	}

	var watchOpts []watch.Option
	if namer.IsDirectory(name) {
		watchOpts = append(watchOpts, watch.WithPrefix())
	}

	raw, stop, err := s.base.Watch(ctx, valueKey, watchOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch snapshot %q: %w", name, err)
	}

	events := make(chan Event)
	done := make(chan struct{})
	stopAll := sync.OnceFunc(func() {
		close(done)
		stop()
	})

	go func() {
		defer close(events)
		defer stopAll()

		for event := range raw {
			key, err := s.namer.ParseKey(string(event.Key))
			if err != nil {
				s.logger.Debug("skipping foreign key", zap.ByteString("key", event.Key))
				continue
			}

			select {
			case events <- Event{Name: key.Name(), Deleted: event.Deleted}:
			case <-ctx.Done():
				return
			case <-done:
				return
			}
		}
	}()

	return events, stopAll, nil
}

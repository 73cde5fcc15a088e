// Package storage is the transactional key-value layer snapshots are kept in.
// It wraps a driver.Driver with a transaction builder, range reads and
// change streams.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/tarantool/go-objgraph/driver"
	"github.com/tarantool/go-objgraph/internal/options"
	"github.com/tarantool/go-objgraph/kv"
	"github.com/tarantool/go-objgraph/operation"
	txPkg "github.com/tarantool/go-objgraph/tx"
	"github.com/tarantool/go-objgraph/watch"
)

// ErrInvalidPrefix is returned by Range for a prefix not ending with "/".
var ErrInvalidPrefix = errors.New("prefix must be empty or end with \"/\"")

type rangeOptions struct {
	prefix string
	limit  int
}

// RangeOption configures a Range call.
type RangeOption = options.OptionCallback[rangeOptions]

// WithPrefix restricts Range to keys under prefix.
func WithPrefix(prefix string) RangeOption {
	return func(opts *rangeOptions) {
		opts.prefix = prefix
	}
}

// WithLimit caps the number of records returned by Range.
func WithLimit(limit int) RangeOption {
	return func(opts *rangeOptions) {
		opts.limit = limit
	}
}

// Storage is the key-value storage interface.
type Storage interface {
	// Watch streams changes of a key or a prefix. The returned function
	// stops the stream.
	Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error)

	// Tx creates a new transaction bound to ctx.
	Tx(ctx context.Context) txPkg.Tx

	// Range returns records ordered by key.
	Range(ctx context.Context, opts ...RangeOption) ([]kv.KeyValue, error)
}

type storage struct {
	driver driver.Driver
}

// NewStorage creates a Storage on top of driver.
func NewStorage(driver driver.Driver) Storage {
	return &storage{
		driver: driver,
	}
}

// Watch implements Storage.
func (s *storage) Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error) {
	events, stop, err := s.driver.Watch(ctx, key, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to watch: %w", err)
	}

	return events, stop, nil
}

// Tx implements Storage.
func (s *storage) Tx(ctx context.Context) txPkg.Tx {
	return newTx(ctx, s.driver)
}

// Range implements Storage.
func (s *storage) Range(ctx context.Context, opts ...RangeOption) ([]kv.KeyValue, error) {
	rangeOpts := options.ApplyOptions[rangeOptions](nil, opts)

	if !operation.IsPrefix([]byte(rangeOpts.prefix)) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, rangeOpts.prefix)
	}

	resp, err := s.Tx(ctx).Then(
		operation.Get([]byte(rangeOpts.prefix), operation.WithLimit(rangeOpts.limit)),
	).Commit()
	if err != nil {
		return nil, err
	}

	return resp.Flatten(), nil
}

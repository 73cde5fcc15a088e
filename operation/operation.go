// Package operation describes the requests that make up a storage transaction.
//
// A key ending in "/" addresses every key under that prefix for Get and
// Delete operations.
package operation

import (
	"bytes"

	"github.com/tarantool/go-objgraph/internal/options"
)

type operationOptions struct {
	limit int
}

// Option configures an operation.
type Option = options.OptionCallback[operationOptions]

// WithLimit caps the number of records returned by a prefix Get.
// Zero means no limit.
func WithLimit(limit int) Option {
	return func(opts *operationOptions) {
		opts.limit = limit
	}
}

// Operation is a single request executed inside a transaction.
type Operation struct {
	typ   Type
	key   []byte
	value []byte
	opts  operationOptions
}

func newOperation(typ Type, key, value []byte, opts []Option) Operation {
	return Operation{
		typ:   typ,
		key:   key,
		value: value,
		opts:  options.ApplyOptions[operationOptions](nil, opts),
	}
}

// Get reads a key, or every key under it when the key is a prefix.
func Get(key []byte, opts ...Option) Operation {
	return newOperation(TypeGet, key, nil, opts)
}

// Put writes value under key.
func Put(key, value []byte, opts ...Option) Operation {
	return newOperation(TypePut, key, value, opts)
}

// Delete removes a key, or every key under it when the key is a prefix.
func Delete(key []byte, opts ...Option) Operation {
	return newOperation(TypeDelete, key, nil, opts)
}

// Type returns the operation kind.
func (o Operation) Type() Type {
	return o.typ
}

// Key returns the target key.
func (o Operation) Key() []byte {
	return o.key
}

// Value returns the value of a Put, nil otherwise.
func (o Operation) Value() []byte {
	return o.value
}

// Limit returns the record limit of a prefix Get.
func (o Operation) Limit() int {
	return o.opts.limit
}

// IsPrefix reports whether the operation addresses a key range.
func (o Operation) IsPrefix() bool {
	return IsPrefix(o.key)
}

// IsPrefix reports whether key denotes a key range.
func IsPrefix(key []byte) bool {
	return len(key) == 0 || bytes.HasSuffix(key, []byte("/"))
}

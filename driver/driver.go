// Package driver defines the backend interface behind storage.
package driver

import (
	"context"

	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	"github.com/tarantool/go-objgraph/tx"
	"github.com/tarantool/go-objgraph/watch"
)

// Driver executes transactions and streams changes for a backend.
type Driver interface {
	// Execute runs thenOps when every predicate holds and elseOps otherwise.
	Execute(
		ctx context.Context,
		predicates []predicate.Predicate,
		thenOps []operation.Operation,
		elseOps []operation.Operation,
	) (tx.Response, error)

	// Watch streams changes of key, or of every key under it when key ends
	// with "/" or watch.WithPrefix is passed. The returned function stops
	// the watch and closes the channel.
	Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error)
}

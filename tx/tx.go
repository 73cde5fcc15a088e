// Package tx defines the conditional transaction builder used by storage.
package tx

import (
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
)

// Tx builds and commits a single conditional transaction.
//
// Calls must follow the If, Then, Else order; each may be made at most once.
type Tx interface {
	// If sets the guarding predicates. No predicates means the condition holds.
	If(predicates ...predicate.Predicate) Tx
	// Then sets the operations executed when the condition holds.
	Then(operations ...operation.Operation) Tx
	// Else sets the operations executed when the condition fails.
	Else(operations ...operation.Operation) Tx
	// Commit executes the transaction atomically.
	Commit() (Response, error)
}

package storage

import (
	"context"
	"fmt"

	"github.com/tarantool/go-option"

	"github.com/tarantool/go-objgraph/driver"
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	txPkg "github.com/tarantool/go-objgraph/tx"
)

type tx struct {
	driver driver.Driver
	ctx    context.Context //nolint:containedctx

	predicates option.Generic[[]predicate.Predicate]
	thenOps    option.Generic[[]operation.Operation]
	elseOps    option.Generic[[]operation.Operation]
}

func newTx(ctx context.Context, driver driver.Driver) txPkg.Tx {
	return &tx{
		driver:     driver,
		ctx:        ctx,
		predicates: option.None[[]predicate.Predicate](),
		thenOps:    option.None[[]operation.Operation](),
		elseOps:    option.None[[]operation.Operation](),
	}
}

// If panics when called twice or after Then/Else.
func (tb *tx) If(predicates ...predicate.Predicate) txPkg.Tx {
	switch {
	case tb.predicates.IsSome():
		panic("predicates are already set")
	case tb.thenOps.IsSome() || tb.elseOps.IsSome():
		panic("If can only be called before Then/Else")
	}

	tb.predicates = option.Some(predicates)

	return tb
}

// Then panics when called twice or after Else.
func (tb *tx) Then(operations ...operation.Operation) txPkg.Tx {
	switch {
	case tb.thenOps.IsSome():
		panic("then operations are already set")
	case tb.elseOps.IsSome():
		panic("Then can only be called before Else")
	}

	tb.thenOps = option.Some(operations)

	return tb
}

// Else panics when called twice.
func (tb *tx) Else(operations ...operation.Operation) txPkg.Tx {
	if tb.elseOps.IsSome() {
		panic("else operations are already set")
	}

	tb.elseOps = option.Some(operations)

	return tb
}

func (tb *tx) Commit() (txPkg.Response, error) {
	resp, err := tb.driver.Execute(
		tb.ctx,
		tb.predicates.UnwrapOr(nil),
		tb.thenOps.UnwrapOr(nil),
		tb.elseOps.UnwrapOr(nil),
	)
	if err != nil {
		return txPkg.Response{}, fmt.Errorf("tx execute failed: %w", err)
	}

	return resp, nil
}

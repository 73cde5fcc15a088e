// Package mocks holds test doubles for the storage interfaces.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/gojuno/minimock/v3"

	"github.com/tarantool/go-objgraph/driver"
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	"github.com/tarantool/go-objgraph/tx"
	"github.com/tarantool/go-objgraph/watch"
)

// ExecuteFunc is the body of an expected Driver.Execute call.
type ExecuteFunc func(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error)

// WatchFunc is the body of an expected Driver.Watch call.
type WatchFunc func(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error)

// ExecuteParams records the arguments of one Execute call.
type ExecuteParams struct {
	Predicates []predicate.Predicate
	ThenOps    []operation.Operation
	ElseOps    []operation.Operation
}

// DriverMock is a driver.Driver registered with a minimock controller.
// Calls without an expectation fail the test, and expectations that were
// never met are reported when the controller finishes.
type DriverMock struct {
	t minimock.Tester

	mu           sync.Mutex
	execute      ExecuteFunc
	watch        WatchFunc
	executeCalls []ExecuteParams
	watchCalls   int
}

var _ driver.Driver = (*DriverMock)(nil)

// NewDriverMock creates a DriverMock and registers it with mc.
func NewDriverMock(mc *minimock.Controller) *DriverMock {
	mock := &DriverMock{t: mc} //nolint:exhaustruct
	mc.RegisterMocker(mock)

	return mock
}

// ExpectExecute makes Execute call fn.
func (m *DriverMock) ExpectExecute(fn ExecuteFunc) *DriverMock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.execute = fn

	return m
}

// ExpectExecuteReturn makes Execute return resp and err.
func (m *DriverMock) ExpectExecuteReturn(resp tx.Response, err error) *DriverMock {
	return m.ExpectExecute(func(
		context.Context, []predicate.Predicate, []operation.Operation, []operation.Operation,
	) (tx.Response, error) {
		return resp, err
	})
}

// ExpectWatch makes Watch call fn.
func (m *DriverMock) ExpectWatch(fn WatchFunc) *DriverMock {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.watch = fn

	return m
}

// ExecuteCalls returns the arguments of every Execute call so far.
func (m *DriverMock) ExecuteCalls() []ExecuteParams {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]ExecuteParams(nil), m.executeCalls...)
}

// Execute implements driver.Driver.
func (m *DriverMock) Execute(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error) {
	m.mu.Lock()
	fn := m.execute
	m.executeCalls = append(m.executeCalls, ExecuteParams{
		Predicates: predicates,
		ThenOps:    thenOps,
		ElseOps:    elseOps,
	})
	m.mu.Unlock()

	if fn == nil {
		m.t.Helper()
		m.t.Fatalf("unexpected call to DriverMock.Execute with %d predicates", len(predicates))

		return tx.Response{}, nil
	}

	return fn(ctx, predicates, thenOps, elseOps)
}

// Watch implements driver.Driver.
func (m *DriverMock) Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error) {
	m.mu.Lock()
	fn := m.watch
	m.watchCalls++
	m.mu.Unlock()

	if fn == nil {
		m.t.Helper()
		m.t.Fatalf("unexpected call to DriverMock.Watch with key %q", key)

		return nil, nil, nil
	}

	return fn(ctx, key, opts...)
}

func (m *DriverMock) done() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return (m.execute == nil || len(m.executeCalls) > 0) && (m.watch == nil || m.watchCalls > 0)
}

// MinimockFinish reports expectations that were never met.
func (m *DriverMock) MinimockFinish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.execute != nil && len(m.executeCalls) == 0 {
		m.t.Error("expected call to DriverMock.Execute")
	}

	if m.watch != nil && m.watchCalls == 0 {
		m.t.Error("expected call to DriverMock.Watch")
	}
}

// MinimockWait waits up to timeout for every expectation to be met.
func (m *DriverMock) MinimockWait(timeout time.Duration) {
	deadline := time.After(timeout)

	for !m.done() {
		select {
		case <-deadline:
			m.MinimockFinish()

			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

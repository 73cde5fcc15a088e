// Package dummy provides an in-memory storage driver for tests and
// single-process use.
package dummy

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/tarantool/go-objgraph/driver"
	"github.com/tarantool/go-objgraph/kv"
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	"github.com/tarantool/go-objgraph/tx"
	"github.com/tarantool/go-objgraph/watch"
)

const (
	eventChannelSize = 100
)

type watcher struct {
	key    string
	prefix bool
	ch     chan watch.Event
}

func (w watcher) matches(key string) bool {
	if w.prefix {
		return strings.HasPrefix(key, w.key)
	}

	return key == w.key
}

// Driver keeps records in memory. Every mutating transaction bumps the
// revision once, starting from 1.
type Driver struct {
	mu       sync.Mutex
	records  map[string]kv.KeyValue
	revision int64
	watchers map[uint64]watcher
	nextID   uint64
}

var _ driver.Driver = (*Driver)(nil)

// New creates an empty Driver.
func New() *Driver {
	return &Driver{
		mu:       sync.Mutex{},
		records:  make(map[string]kv.KeyValue),
		revision: 0,
		watchers: make(map[uint64]watcher),
		nextID:   0,
	}
}

// Revision returns the revision of the last mutating transaction.
func (d *Driver) Revision() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.revision
}

// Execute implements driver.Driver.
func (d *Driver) Execute(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error) {
	if err := ctx.Err(); err != nil {
		return tx.Response{}, fmt.Errorf("failed to execute: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	succeeded := d.check(predicates)

	ops := elseOps
	if succeeded {
		ops = thenOps
	}

	return tx.Response{
		Succeeded: succeeded,
		Results:   d.apply(ops),
	}, nil
}

// Watch implements driver.Driver.
func (d *Driver) Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error) {
	options := watch.Apply(opts)

	d.mu.Lock()
	d.nextID++
	id := d.nextID
	w := watcher{
		key:    string(key),
		prefix: options.Prefix || operation.IsPrefix(key),
		ch:     make(chan watch.Event, eventChannelSize),
	}
	d.watchers[id] = w
	d.mu.Unlock()

	stopped := make(chan struct{})
	stop := sync.OnceFunc(func() { close(stopped) })

	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
		}

		d.mu.Lock()
		defer d.mu.Unlock()

		delete(d.watchers, id)
		close(w.ch)
	}()

	return w.ch, stop, nil
}

func (d *Driver) check(predicates []predicate.Predicate) bool {
	for _, pred := range predicates {
		if !d.holds(pred) {
			return false
		}
	}

	return true
}

func (d *Driver) holds(pred predicate.Predicate) bool {
	if !pred.Target().Supports(pred.Operation()) {
		return false
	}

	record, exists := d.records[string(pred.Key())]

	switch pred.Target() {
	case predicate.TargetVersion:
		revision, ok := pred.Value().(int64)
		if !ok {
			return false
		}

		// A missing key has revision 0.
		return pred.Operation().Holds(cmp.Compare(record.ModRevision, revision))
	case predicate.TargetValue:
		value, ok := pred.Value().([]byte)
		if !ok {
			return false
		}

		diff := 1
		if exists && bytes.Equal(record.Value, value) {
			diff = 0
		}

		return pred.Operation().Holds(diff)
	default:
		return false
	}
}

func (d *Driver) byPrefix(prefix string, limit int) []kv.KeyValue {
	var out []kv.KeyValue

	for key, record := range d.records {
		if strings.HasPrefix(key, prefix) {
			out = append(out, record)
		}
	}

	slices.SortFunc(out, func(a, b kv.KeyValue) int {
		return bytes.Compare(a.Key, b.Key)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out
}

func (d *Driver) lookup(op operation.Operation) []kv.KeyValue {
	if op.IsPrefix() {
		return d.byPrefix(string(op.Key()), op.Limit())
	}

	record, ok := d.records[string(op.Key())]
	if !ok {
		return nil
	}

	return []kv.KeyValue{record}
}

func (d *Driver) apply(ops []operation.Operation) []tx.RequestResponse {
	results := make([]tx.RequestResponse, 0, len(ops))
	next := d.revision + 1
	mutated := false

	for _, op := range ops {
		var values []kv.KeyValue

		switch op.Type() {
		case operation.TypeGet:
			values = d.lookup(op)
		case operation.TypePut:
			key := string(op.Key())
			d.records[key] = kv.KeyValue{
				Key:         bytes.Clone(op.Key()),
				Value:       bytes.Clone(op.Value()),
				ModRevision: next,
			}

			d.notify(key, false)
		case operation.TypeDelete:
			values = d.lookup(op)
			for _, record := range values {
				delete(d.records, string(record.Key))
				d.notify(string(record.Key), true)
			}
		}

		// A delete that matched nothing leaves the revision alone.
		if op.Type().Mutates() && (op.Type() == operation.TypePut || len(values) > 0) {
			mutated = true
		}

		results = append(results, tx.RequestResponse{Values: values})
	}

	if mutated {
		d.revision = next
	}

	return results
}

// notify drops events for watchers whose buffer is full.
func (d *Driver) notify(key string, deleted bool) {
	for _, w := range d.watchers {
		if !w.matches(key) {
			continue
		}

		select {
		case w.ch <- watch.Event{Prefix: []byte(w.key), Key: []byte(key), Deleted: deleted}:
		default:
		}
	}
}

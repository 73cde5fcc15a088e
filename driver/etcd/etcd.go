// Package etcd implements the storage driver on top of an etcd cluster.
package etcd

import (
	"context"
	"errors"
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-objgraph/driver"
	"github.com/tarantool/go-objgraph/kv"
	"github.com/tarantool/go-objgraph/operation"
	"github.com/tarantool/go-objgraph/predicate"
	"github.com/tarantool/go-objgraph/tx"
	"github.com/tarantool/go-objgraph/watch"
)

// Client is the part of *etcd.Client used by the driver.
type Client interface {
	// Txn creates a new transaction.
	Txn(ctx context.Context) etcd.Txn
	// Watch watches a key or a key range.
	Watch(ctx context.Context, key string, opts ...etcd.OpOption) etcd.WatchChan
}

// Driver stores records in etcd.
type Driver struct {
	client Client
}

var (
	_ driver.Driver = (*Driver)(nil)

	errUnsupportedPredicateTarget  = errors.New("unsupported predicate target")
	errValuePredicateRequiresBytes = errors.New("value predicate requires []byte value")
	errUnsupportedValueOperation   = errors.New("unsupported operation for value predicate")
	errVersionPredicateRequiresInt = errors.New("version predicate requires int64 value")
	errUnsupportedVersionOperation = errors.New("unsupported operation for version predicate")
	errUnsupportedOperationType    = errors.New("unsupported operation type")
)

// New creates a driver using a connected etcd client.
func New(client Client) *Driver {
	return &Driver{client: client}
}

// Execute implements driver.Driver.
func (d *Driver) Execute(
	ctx context.Context,
	predicates []predicate.Predicate,
	thenOps []operation.Operation,
	elseOps []operation.Operation,
) (tx.Response, error) {
	cmps, err := predicatesToCmps(predicates)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert predicates: %w", err)
	}

	thenEtcdOps, err := operationsToEtcdOps(thenOps)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert then operations: %w", err)
	}

	elseEtcdOps, err := operationsToEtcdOps(elseOps)
	if err != nil {
		return tx.Response{}, fmt.Errorf("failed to convert else operations: %w", err)
	}

	resp, err := d.client.Txn(ctx).If(cmps...).Then(thenEtcdOps...).Else(elseEtcdOps...).Commit()
	if err != nil {
		return tx.Response{}, fmt.Errorf("transaction failed: %w", err)
	}

	return toTxResponse(resp), nil
}

const (
	eventChannelSize = 100
)

// Watch implements driver.Driver.
func (d *Driver) Watch(ctx context.Context, key []byte, opts ...watch.Option) (<-chan watch.Event, func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)

	var etcdOpts []etcd.OpOption
	if watch.Apply(opts).Prefix || operation.IsPrefix(key) {
		etcdOpts = append(etcdOpts, etcd.WithPrefix())
	}

	watchCh := d.client.Watch(watchCtx, string(key), etcdOpts...)
	eventCh := make(chan watch.Event, eventChannelSize)

	go func() {
		defer close(eventCh)

		for {
			select {
			case <-watchCtx.Done():
				return
			case resp, ok := <-watchCh:
				if !ok {
					return
				}

				if resp.Err() != nil {
					continue
				}

				for _, event := range resp.Events {
					select {
					case eventCh <- watch.Event{
						Prefix:  key,
						Key:     event.Kv.Key,
						Deleted: event.Type == etcd.EventTypeDelete,
					}:
					case <-watchCtx.Done():
						return
					}
				}
			}
		}
	}()

	return eventCh, cancel, nil
}

func toTxResponse(resp *etcd.TxnResponse) tx.Response {
	results := make([]tx.RequestResponse, 0, len(resp.Responses))

	for _, etcdResp := range resp.Responses {
		var values []kv.KeyValue

		switch {
		case etcdResp.GetResponseRange() != nil:
			for _, etcdKv := range etcdResp.GetResponseRange().Kvs {
				values = append(values, kv.KeyValue{
					Key:         etcdKv.Key,
					Value:       etcdKv.Value,
					ModRevision: etcdKv.ModRevision,
				})
			}
		case etcdResp.GetResponseDeleteRange() != nil:
			for _, etcdKv := range etcdResp.GetResponseDeleteRange().PrevKvs {
				values = append(values, kv.KeyValue{
					Key:         etcdKv.Key,
					Value:       etcdKv.Value,
					ModRevision: etcdKv.ModRevision,
				})
			}
		}

		results = append(results, tx.RequestResponse{Values: values})
	}

	return tx.Response{
		Succeeded: resp.Succeeded,
		Results:   results,
	}
}

package etcd

import (
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-objgraph/operation"
)

func operationsToEtcdOps(ops []operation.Operation) ([]etcd.Op, error) {
	etcdOps := make([]etcd.Op, 0, len(ops))

	for _, op := range ops {
		etcdOp, err := operationToEtcdOp(op)
		if err != nil {
			return nil, err
		}

		etcdOps = append(etcdOps, etcdOp)
	}

	return etcdOps, nil
}

func operationToEtcdOp(op operation.Operation) (etcd.Op, error) {
	key := string(op.Key())

	var opts []etcd.OpOption
	if op.IsPrefix() {
		opts = append(opts, etcd.WithPrefix())
	}

	switch op.Type() {
	case operation.TypeGet:
		if op.Limit() > 0 {
			opts = append(opts, etcd.WithLimit(int64(op.Limit())))
		}

		return etcd.OpGet(key, opts...), nil
	case operation.TypePut:
		return etcd.OpPut(key, string(op.Value())), nil
	case operation.TypeDelete:
		opts = append(opts, etcd.WithPrevKV())

		return etcd.OpDelete(key, opts...), nil
	default:
		return etcd.Op{}, fmt.Errorf("%w: %v", errUnsupportedOperationType, op.Type())
	}
}

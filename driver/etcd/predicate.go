package etcd

import (
	"fmt"

	etcd "go.etcd.io/etcd/client/v3"

	"github.com/tarantool/go-objgraph/predicate"
)

func predicatesToCmps(predicates []predicate.Predicate) ([]etcd.Cmp, error) {
	cmps := make([]etcd.Cmp, 0, len(predicates))

	for _, pred := range predicates {
		cmp, err := predicateToCmp(pred)
		if err != nil {
			return nil, err
		}

		cmps = append(cmps, cmp)
	}

	return cmps, nil
}

func predicateToCmp(pred predicate.Predicate) (etcd.Cmp, error) {
	switch pred.Target() {
	case predicate.TargetValue:
		return valuePredicateToCmp(pred)
	case predicate.TargetVersion:
		return versionPredicateToCmp(pred)
	default:
		return etcd.Cmp{}, fmt.Errorf("%w: %v", errUnsupportedPredicateTarget, pred.Target())
	}
}

func valuePredicateToCmp(pred predicate.Predicate) (etcd.Cmp, error) {
	value, ok := pred.Value().([]byte)
	if !ok {
		return etcd.Cmp{}, errValuePredicateRequiresBytes
	}

	if !predicate.TargetValue.Supports(pred.Operation()) {
		return etcd.Cmp{}, fmt.Errorf("%w: %v", errUnsupportedValueOperation, pred.Operation())
	}

	return etcd.Compare(etcd.Value(string(pred.Key())), pred.Operation().Symbol(), string(value)), nil
}

func versionPredicateToCmp(pred predicate.Predicate) (etcd.Cmp, error) {
	revision, ok := pred.Value().(int64)
	if !ok {
		return etcd.Cmp{}, errVersionPredicateRequiresInt
	}

	if !predicate.TargetVersion.Supports(pred.Operation()) {
		return etcd.Cmp{}, fmt.Errorf("%w: %v", errUnsupportedVersionOperation, pred.Operation())
	}

	return etcd.Compare(etcd.ModRevision(string(pred.Key())), pred.Operation().Symbol(), revision), nil
}

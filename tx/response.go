package tx

import "github.com/tarantool/go-objgraph/kv"

// Response is the outcome of a committed transaction.
type Response struct {
	// Succeeded reports whether the predicates held.
	Succeeded bool
	// Results holds one entry per executed operation, in order.
	Results []RequestResponse
}

// Flatten concatenates the values of every operation result.
func (r Response) Flatten() []kv.KeyValue {
	var out []kv.KeyValue
	for _, result := range r.Results {
		out = append(out, result.Values...)
	}

	return out
}

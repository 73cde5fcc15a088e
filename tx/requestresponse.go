package tx

import "github.com/tarantool/go-objgraph/kv"

// RequestResponse is the result of a single operation.
type RequestResponse struct {
	// Values holds the records read by a Get or removed by a Delete.
	Values []kv.KeyValue
}

package snapshot

import (
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-objgraph/node"
)

// Result is a snapshot read back from storage.
type Result struct {
	// Name is the snapshot name.
	Name string
	// Data is the decoded persistent form, set when the graph record could
	// be decoded.
	Data option.Generic[node.PersistentData]
	// Value is the restored root, set when Data could be deserialized.
	Value option.Generic[any]
	// Revision is the modification revision of the graph record.
	Revision int64
	// Error holds verification or restore failures.
	Error error
}

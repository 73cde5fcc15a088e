package objgraph_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	objgraph "github.com/tarantool/go-objgraph"
	"github.com/tarantool/go-objgraph/node"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		data     node.PersistentData
		expected error
	}{
		{
			name:     "primitive root",
			data:     node.PersistentData{Root: node.Primitive("x")},
			expected: nil,
		},
		{
			name: "well formed cycle",
			data: node.PersistentData{
				Objects: []node.Node{node.Object(map[string]node.Node{"self": node.Ref(0)})},
				Root:    node.Ref(0),
			},
			expected: nil,
		},
		{
			name:     "root out of range",
			data:     node.PersistentData{Root: node.Ref(1)},
			expected: objgraph.ErrUnresolvedReference,
		},
		{
			name:     "composite root",
			data:     node.PersistentData{Root: node.Array()},
			expected: objgraph.ErrInternal,
		},
		{
			name: "dangling ref in map key",
			data: node.PersistentData{
				Objects: []node.Node{node.Map(node.Entry{Key: node.Ref(3), Value: node.Primitive(1)})},
				Root:    node.Ref(0),
			},
			expected: objgraph.ErrUnresolvedReference,
		},
		{
			name: "embedded composite",
			data: node.PersistentData{
				Objects: []node.Node{node.Set(node.Object(nil))},
				Root:    node.Ref(0),
			},
			expected: objgraph.ErrInternal,
		},
		{
			name: "primitive slot",
			data: node.PersistentData{
				Objects: []node.Node{node.Primitive(1)},
				Root:    node.Ref(0),
			},
			expected: objgraph.ErrType,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			err := objgraph.Validate(test.data)
			if test.expected == nil {
				require.NoError(t, err)

				return
			}

			require.ErrorIs(t, err, test.expected)
		})
	}
}

func TestValidate_SerializedGraph(t *testing.T) {
	t.Parallel()

	person := &Person{Name: "p"}
	person.Friend = person

	data, err := objgraph.NewSerializeContext(newRegistry()).Serialize(objgraph.Object{"p": person})
	require.NoError(t, err)
	require.NoError(t, objgraph.Validate(data))
}

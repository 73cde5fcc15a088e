// Package node defines the tagged-node data model shared by graph
// serialization and deserialization.
//
// Every value reachable from a graph root is represented either inline, as a
// primitive node, or as a node stored in a numbered slot of
// [PersistentData.Objects]. Composite nodes never embed other composite nodes
// directly: they hold [KindRef] nodes pointing at slots, which is what makes
// shared references and cycles representable.
package node

import (
	"slices"

	"github.com/samber/lo"
)

// UndefinedType is the type of the Undefined marker.
type UndefinedType struct{}

// Undefined marks an absent value. It is a primitive and distinct from nil.
var Undefined UndefinedType //nolint:gochecknoglobals

// Entry is a single key/value pair of a map node.
type Entry struct {
	Key   Node
	Value Node
}

// Node is a single serialized value. Only the payload fields relevant to
// Kind are set.
type Node struct {
	// Kind selects which of the payload fields below are meaningful.
	Kind Kind
	// Value is the inline payload of primitive, boxed, date and regexp nodes.
	Value any
	// Index is the slot index of a ref node.
	Index int
	// Items holds array elements and set members.
	Items []Node
	// Entries holds map entries in insertion order.
	Entries []Entry
	// Fields holds record fields of object nodes.
	Fields map[string]Node
	// ClassName is the registered type name of a user object node.
	ClassName string
}

// Primitive creates an inline node. The value must satisfy IsPrimitiveValue.
func Primitive(value any) Node {
	return Node{Kind: KindPrimitive, Value: value}
}

// Ref creates a reference to slot index.
func Ref(index int) Node {
	return Node{Kind: KindRef, Index: index}
}

// Array creates an array node.
func Array(items ...Node) Node {
	return Node{Kind: KindArray, Items: items}
}

// Number creates a boxed number node.
func Number(value float64) Node {
	return Node{Kind: KindNumber, Value: value}
}

// Boolean creates a boxed boolean node.
func Boolean(value bool) Node {
	return Node{Kind: KindBoolean, Value: value}
}

// String creates a boxed string node.
func String(value string) Node {
	return Node{Kind: KindString, Value: value}
}

// Map creates a map node.
func Map(entries ...Entry) Node {
	return Node{Kind: KindMap, Entries: entries}
}

// Set creates a set node.
func Set(items ...Node) Node {
	return Node{Kind: KindSet, Items: items}
}

// Date creates a date node from epoch milliseconds.
func Date(epochMillis int64) Node {
	return Node{Kind: KindDate, Value: epochMillis}
}

// RegExp creates a regular expression node.
func RegExp(pattern string) Node {
	return Node{Kind: KindRegExp, Value: pattern}
}

// Object creates a plain record node.
func Object(fields map[string]Node) Node {
	return Node{Kind: KindObject, Fields: fields}
}

// UserObject creates a record node of a registered type.
func UserObject(className string, fields map[string]Node) Node {
	return Node{Kind: KindObject, Fields: fields, ClassName: className}
}

// IsPrimitive reports whether the node is carried inline.
func (n Node) IsPrimitive() bool {
	return n.Kind == KindPrimitive
}

// IsRef reports whether the node is a slot reference.
func (n Node) IsRef() bool {
	return n.Kind == KindRef
}

// IsComposite reports whether the node may contain other nodes.
func (n Node) IsComposite() bool {
	switch n.Kind { //nolint:exhaustive
	case KindArray, KindMap, KindSet, KindObject:
		return true
	default:
		return false
	}
}

// IsUserObject reports whether the node is a record of a registered type.
func (n Node) IsUserObject() bool {
	return n.Kind == KindObject && n.ClassName != ""
}

// Children returns the nodes directly contained in a composite node.
// Object fields are returned in field name order.
func (n Node) Children() []Node {
	switch n.Kind { //nolint:exhaustive
	case KindArray, KindSet:
		return n.Items
	case KindMap:
		out := make([]Node, 0, 2*len(n.Entries))
		for _, entry := range n.Entries {
			out = append(out, entry.Key, entry.Value)
		}

		return out
	case KindObject:
		names := lo.Keys(n.Fields)
		slices.Sort(names)

		return lo.Map(names, func(name string, _ int) Node {
			return n.Fields[name]
		})
	default:
		return nil
	}
}

// IsPrimitiveValue reports whether a Go value is carried inline.
func IsPrimitiveValue(value any) bool {
	switch value.(type) {
	case nil, UndefinedType, bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return true
	default:
		return false
	}
}

// PersistentData is the flat form of a graph: the slot table and the root.
type PersistentData struct {
	// Objects holds the node owned by each slot, in slot order.
	Objects []Node
	// Root is a ref node, or a primitive if the graph root was primitive.
	Root Node
}

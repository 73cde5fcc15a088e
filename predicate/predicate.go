// Package predicate describes the conditions guarding a storage transaction.
package predicate

// Predicate is a single transaction condition.
type Predicate interface {
	// Key returns the compared key.
	Key() []byte
	// Operation returns the comparison.
	Operation() Op
	// Target returns the compared part of the record.
	Target() Target
	// Value returns the operand: []byte for values, int64 for versions.
	Value() any
}

type predicate struct {
	key    []byte
	op     Op
	target Target
	value  any
}

func (p predicate) Key() []byte    { return p.key }
func (p predicate) Operation() Op  { return p.op }
func (p predicate) Target() Target { return p.target }
func (p predicate) Value() any     { return p.value }

// ValueEqual holds when the value stored under key equals value.
func ValueEqual(key []byte, value []byte) Predicate {
	return predicate{key: key, op: OpEqual, target: TargetValue, value: value}
}

// ValueNotEqual holds when the value stored under key differs from value.
func ValueNotEqual(key []byte, value []byte) Predicate {
	return predicate{key: key, op: OpNotEqual, target: TargetValue, value: value}
}

// VersionEqual holds when key was last modified at revision.
// Revision 0 matches a missing key.
func VersionEqual(key []byte, revision int64) Predicate {
	return predicate{key: key, op: OpEqual, target: TargetVersion, value: revision}
}

// VersionNotEqual holds when key was not last modified at revision.
func VersionNotEqual(key []byte, revision int64) Predicate {
	return predicate{key: key, op: OpNotEqual, target: TargetVersion, value: revision}
}

// VersionGreater holds when key was last modified after revision.
func VersionGreater(key []byte, revision int64) Predicate {
	return predicate{key: key, op: OpGreater, target: TargetVersion, value: revision}
}

// VersionLess holds when key was last modified before revision.
func VersionLess(key []byte, revision int64) Predicate {
	return predicate{key: key, op: OpLess, target: TargetVersion, value: revision}
}

package predicate

// Op is the comparison performed by a predicate.
type Op int

const (
	// OpEqual matches equal operands.
	OpEqual Op = iota
	// OpNotEqual matches different operands.
	OpNotEqual
	// OpGreater matches when the stored operand is greater.
	OpGreater
	// OpLess matches when the stored operand is less.
	OpLess
)

var opSymbols = map[Op]string{ //nolint:gochecknoglobals
	OpEqual:    "=",
	OpNotEqual: "!=",
	OpGreater:  ">",
	OpLess:     "<",
}

// Symbol returns the comparison operator as written in etcd compares, or ""
// for an unknown Op.
func (op Op) Symbol() string {
	return opSymbols[op]
}

// Holds reports whether the op accepts a three-way comparison result of the
// stored operand against the predicate operand.
func (op Op) Holds(cmp int) bool {
	switch op {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpLess:
		return cmp < 0
	default:
		return false
	}
}

func (op Op) String() string {
	switch op {
	case OpEqual:
		return "Equal"
	case OpNotEqual:
		return "NotEqual"
	case OpGreater:
		return "Greater"
	case OpLess:
		return "Less"
	default:
		return "Unknown"
	}
}

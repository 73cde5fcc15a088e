package node

// Kind is the discriminant of a serialized node.
type Kind int

const (
	// KindPrimitive is an inline number, string, boolean, nil or Undefined.
	KindPrimitive Kind = iota
	// KindRef is a back-reference into the persistent object list.
	KindRef
	// KindArray is an ordered list of element nodes.
	KindArray
	// KindNumber is a boxed number with its own identity.
	KindNumber
	// KindBoolean is a boxed boolean with its own identity.
	KindBoolean
	// KindString is a boxed string with its own identity.
	KindString
	// KindMap is an ordered sequence of key/value node pairs.
	KindMap
	// KindSet is an ordered sequence of member nodes.
	KindSet
	// KindDate is a point in time stored as epoch milliseconds.
	KindDate
	// KindRegExp is a regular expression stored as its pattern text.
	KindRegExp
	// KindObject is a plain record or, with a class name, a registered record.
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindRef:
		return "Ref"
	case KindArray:
		return "Array"
	case KindNumber:
		return "Number"
	case KindBoolean:
		return "Boolean"
	case KindString:
		return "String"
	case KindMap:
		return "Map"
	case KindSet:
		return "Set"
	case KindDate:
		return "Date"
	case KindRegExp:
		return "RegExp"
	case KindObject:
		return "Object"
	default:
		return "Unknown"
	}
}

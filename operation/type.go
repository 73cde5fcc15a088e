package operation

// Type is the kind of a storage operation.
type Type int

const (
	// TypeGet reads a key or a key range.
	TypeGet Type = iota
	// TypePut writes a key.
	TypePut
	// TypeDelete removes a key or a key range.
	TypeDelete
)

// Mutates reports whether operations of the type change stored records and
// so advance the store revision when they take effect.
func (t Type) Mutates() bool {
	return t == TypePut || t == TypeDelete
}

func (t Type) String() string {
	switch t {
	case TypeGet:
		return "Get"
	case TypePut:
		return "Put"
	case TypeDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

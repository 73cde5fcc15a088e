package namer

// KeyType is the role of a storage key.
type KeyType int

const (
	// KeyTypeValue holds the encoded graph.
	KeyTypeValue KeyType = iota + 1
	// KeyTypeHash holds a digest of the encoded graph.
	KeyTypeHash
	// KeyTypeSignature holds a signature of the encoded graph.
	KeyTypeSignature
)

func (k KeyType) String() string {
	switch k {
	case KeyTypeValue:
		return valueSegment
	case KeyTypeHash:
		return hashSegment
	case KeyTypeSignature:
		return sigSegment
	default:
		return "unknown"
	}
}

// Key is a parsed storage key.
type Key struct {
	name     string
	keyType  KeyType
	property string
	raw      string
}

// NewKey creates a Key.
func NewKey(name string, keyType KeyType, property string, raw string) Key {
	return Key{
		name:     name,
		keyType:  keyType,
		property: property,
		raw:      raw,
	}
}

// Name returns the snapshot name.
func (k Key) Name() string {
	return k.name
}

// Type returns the key role.
func (k Key) Type() KeyType {
	return k.keyType
}

// Property returns the algorithm name of hash and signature keys.
func (k Key) Property() string {
	return k.property
}

// Build returns the full storage key.
func (k Key) Build() string {
	return k.raw
}

func (k Key) String() string {
	return k.raw
}

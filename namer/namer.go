// Package namer maps snapshot names to storage keys.
//
// Under a prefix P, the snapshot "a/b" is stored as
//
//	P graph/a/b             encoded graph
//	P hash/<algorithm>/a/b  digest, one per hasher
//	P sig/<algorithm>/a/b   signature, one per signer
//
// Names are "/"-separated paths without empty segments. A name ending with
// "/" denotes every snapshot below it and the empty name denotes all of them.
package namer

import (
	"strings"
)

const (
	valueSegment = "graph"
	hashSegment  = "hash"
	sigSegment   = "sig"
)

// Namer maps snapshot names to storage keys and back.
type Namer interface {
	// GenerateNames returns the keys of name: one value key followed by hash
	// and signature keys. Keys of a directory name are prefixes.
	GenerateNames(name string) ([]Key, error)
	// ParseKey recovers the name and role of a storage key.
	ParseKey(key string) (Key, error)
	// Root returns the prefix every generated key starts with.
	Root() string
}

// DefaultNamer implements Namer.
type DefaultNamer struct {
	prefix    string
	hashNames []string
	sigNames  []string
}

var _ Namer = DefaultNamer{}

// NewDefaultNamer creates a namer producing hash keys for hashNames and
// signature keys for sigNames. A "/" is appended to prefix when missing.
func NewDefaultNamer(prefix string, hashNames []string, sigNames []string) DefaultNamer {
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return DefaultNamer{
		prefix:    prefix,
		hashNames: hashNames,
		sigNames:  sigNames,
	}
}

// Root implements Namer.
func (n DefaultNamer) Root() string {
	return n.prefix
}

// CheckName validates a snapshot or directory name.
func CheckName(name string) error {
	if name == "" {
		return nil
	}

	if strings.HasPrefix(name, "/") {
		return errInvalidName(name, "must not start with '/'")
	}

	if strings.Contains(name, "//") {
		return errInvalidName(name, "must not contain empty segments")
	}

	return nil
}

// IsDirectory reports whether name denotes a group of snapshots.
func IsDirectory(name string) bool {
	return name == "" || strings.HasSuffix(name, "/")
}

// GenerateNames implements Namer.
func (n DefaultNamer) GenerateNames(name string) ([]Key, error) {
	err := CheckName(name)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, 0, 1+len(n.hashNames)+len(n.sigNames))
	keys = append(keys, NewKey(name, KeyTypeValue, "", n.prefix+valueSegment+"/"+name))

	for _, hashName := range n.hashNames {
		keys = append(keys, NewKey(name, KeyTypeHash, hashName,
			n.prefix+hashSegment+"/"+hashName+"/"+name))
	}

	for _, sigName := range n.sigNames {
		keys = append(keys, NewKey(name, KeyTypeSignature, sigName,
			n.prefix+sigSegment+"/"+sigName+"/"+name))
	}

	return keys, nil
}

// ParseKey implements Namer.
func (n DefaultNamer) ParseKey(key string) (Key, error) {
	rest, ok := strings.CutPrefix(key, n.prefix)
	if !ok {
		return Key{}, errInvalidKey(key, "prefix '"+n.prefix+"' not found")
	}

	segment, rest, ok := strings.Cut(rest, "/")
	if !ok {
		return Key{}, errInvalidKey(key, "key type is missing")
	}

	var (
		keyType  KeyType
		property string
	)

	switch segment {
	case valueSegment:
		keyType = KeyTypeValue
	case hashSegment, sigSegment:
		keyType = KeyTypeHash
		if segment == sigSegment {
			keyType = KeyTypeSignature
		}

		property, rest, ok = strings.Cut(rest, "/")
		if !ok || property == "" {
			return Key{}, errInvalidKey(key, "algorithm is missing")
		}
	default:
		return Key{}, errInvalidKey(key, "unknown key type '"+segment+"'")
	}

	if rest == "" || IsDirectory(rest) || CheckName(rest) != nil {
		return Key{}, errInvalidKey(key, "invalid name '"+rest+"'")
	}

	return NewKey(rest, keyType, property, key), nil
}

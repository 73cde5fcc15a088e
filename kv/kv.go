// Package kv defines the key-value record exchanged with storage drivers.
package kv

// KeyValue is a single stored record.
type KeyValue struct {
	// Key is the full storage key.
	Key []byte
	// Value is the raw stored value.
	Value []byte

	// ModRevision is the revision of the last modification of the key.
	ModRevision int64
}

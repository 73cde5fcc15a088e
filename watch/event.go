// Package watch defines change notifications emitted by storage drivers.
package watch

// Event reports a change.
type Event struct {
	// Prefix is the watched key or prefix.
	Prefix []byte
	// Key is the key that changed.
	Key []byte
	// Deleted is set when the key was removed.
	Deleted bool
}

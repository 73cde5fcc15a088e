package namer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey is matched by every InvalidKeyError.
	ErrInvalidKey = errors.New("invalid key")
	// ErrInvalidName is matched by every InvalidNameError.
	ErrInvalidName = errors.New("invalid name")
)

// InvalidKeyError is returned by ParseKey for a storage key outside the
// snapshot layout: a foreign prefix, an unknown record kind or a missing
// algorithm segment.
type InvalidKeyError struct {
	Key     string
	Problem string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("%s '%s': %s", ErrInvalidKey, e.Key, e.Problem)
}

// Unwrap returns ErrInvalidKey.
func (e InvalidKeyError) Unwrap() error {
	return ErrInvalidKey
}

func errInvalidKey(key string, problem string) error {
	return InvalidKeyError{
		Key:     key,
		Problem: problem,
	}
}

// InvalidNameError is returned for a snapshot name that starts with "/" or
// contains an empty segment.
type InvalidNameError struct {
	Name    string
	Problem string
}

func (e InvalidNameError) Error() string {
	return fmt.Sprintf("%s '%s': %s", ErrInvalidName, e.Name, e.Problem)
}

// Unwrap returns ErrInvalidName.
func (e InvalidNameError) Unwrap() error {
	return ErrInvalidName
}

func errInvalidName(name string, problem string) error {
	return InvalidNameError{
		Name:    name,
		Problem: problem,
	}
}

package objgraph

import (
	"errors"
	"fmt"
)

var (
	// ErrType matches every TypeError.
	ErrType = errors.New("type error")
	// ErrInternal matches every InternalError.
	ErrInternal = errors.New("internal error")
	// ErrUnresolvedReference matches every UnresolvedReferenceError.
	ErrUnresolvedReference = errors.New("unresolved reference")
)

// TypeError is returned when a value or node does not match any supported kind,
// or when a class name does not resolve in the registry.
type TypeError struct {
	text string
}

func errUnsupportedValue(value any) error {
	return TypeError{text: fmt.Sprintf("unsupported value of type %T", value)}
}

func errUnregisteredType(value any) error {
	return TypeError{text: fmt.Sprintf("type %T is not registered", value)}
}

func errUnknownClass(className string) error {
	return TypeError{text: fmt.Sprintf("class %q is not registered", className)}
}

func errNoObject(index int, reason string) error {
	return TypeError{text: fmt.Sprintf("slot %d produced no object: %s", index, reason)}
}

func errFieldType(field string, value any, target string) error {
	return TypeError{text: fmt.Sprintf("field %q: cannot assign %T to %s", field, value, target)}
}

// Error returns a string representation of the type error.
func (e TypeError) Error() string {
	return "type error: " + e.text
}

// Is reports whether target is ErrType.
func (e TypeError) Is(target error) bool {
	return target == ErrType //nolint:errorlint
}

// InternalError is returned when persistent data is structurally malformed.
type InternalError struct {
	kind string
}

func errEmbeddedComposite(kind fmt.Stringer) error {
	return InternalError{kind: kind.String()}
}

// Error returns a string representation of the internal error.
func (e InternalError) Error() string {
	return fmt.Sprintf("internal error: %s node embedded directly, expected a ref", e.kind)
}

// Is reports whether target is ErrInternal.
func (e InternalError) Is(target error) bool {
	return target == ErrInternal //nolint:errorlint
}

// UnresolvedReferenceError is returned by the completeness check when a
// reachable reference has no finished object behind it.
type UnresolvedReferenceError struct {
	// Index is the slot the reference points at.
	Index int
	// Missing is true when the slot does not exist at all.
	Missing bool
}

// Error returns a string representation of the unresolved reference error.
func (e UnresolvedReferenceError) Error() string {
	if e.Missing {
		return fmt.Sprintf("unresolved reference: slot %d does not exist", e.Index)
	}

	return fmt.Sprintf("unresolved reference: slot %d is still being reconstructed", e.Index)
}

// Is reports whether target is ErrUnresolvedReference.
func (e UnresolvedReferenceError) Is(target error) bool {
	return target == ErrUnresolvedReference //nolint:errorlint
}

// Hook stages reported by HookError.
const (
	StageSerialize   = "serialize"
	StageDeserialize = "deserialize"
	StagePre         = "pre"
	StagePost        = "post"
)

// HookError wraps a failure returned by a user hook.
type HookError struct {
	ClassName string
	Field     string
	Stage     string
	parent    error
}

func errHook(className, field, stage string, parent error) error {
	if parent == nil {
		return nil
	}

	return HookError{ClassName: className, Field: field, Stage: stage, parent: parent}
}

// Unwrap returns the error returned by the hook.
func (e HookError) Unwrap() error {
	return e.parent
}

// Error returns a string representation of the hook error.
func (e HookError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s hook of %q failed: %s", e.Stage, e.ClassName, e.parent)
	}

	return fmt.Sprintf("%s hook of %q field %q failed: %s", e.Stage, e.ClassName, e.Field, e.parent)
}

// RegistrationError is returned when a type cannot be registered.
type RegistrationError struct {
	ClassName string
	text      string
}

func errRegistration(className, format string, args ...any) error {
	return RegistrationError{ClassName: className, text: fmt.Sprintf(format, args...)}
}

// Error returns a string representation of the registration error.
func (e RegistrationError) Error() string {
	return fmt.Sprintf("failed to register %q: %s", e.ClassName, e.text)
}

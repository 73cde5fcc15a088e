package objgraph

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/tarantool/go-objgraph/node"
)

// identity is the reference identity of a graph value: its dynamic type and
// address. Two live values are the same object only if both match.
type identity struct {
	typ reflect.Type
	ptr unsafe.Pointer
}

func identityOf(value any) (identity, bool) {
	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Pointer, reflect.Map:
		if rv.IsNil() {
			return identity{}, false
		}

		return identity{typ: rv.Type(), ptr: rv.UnsafePointer()}, true
	default:
		return identity{}, false
	}
}

// isNilReference reports whether value is a typed nil pointer or a nil
// Object, which is encoded as a nil primitive. Bare slices and foreign map
// types are never references, nil or not.
func isNilReference(value any) bool {
	if object, ok := value.(Object); ok {
		return object == nil
	}

	rv := reflect.ValueOf(value)

	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// normalizePrimitive converts values of named bool, string and numeric types
// to their predeclared base type.
func normalizePrimitive(value any) (any, bool) {
	if node.IsPrimitiveValue(value) {
		return value, true
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() { //nolint:exhaustive
	case reflect.Bool:
		return rv.Bool(), true
	case reflect.String:
		return rv.String(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return nil, false
	}
}

// levelView returns a typed pointer to the part of the struct pointed to by
// ptr that belongs to descriptor level. ptr must point to level.typ or to a
// type embedding it through the chain of parent indexes.
func levelView(ptr reflect.Value, path []int, level reflect.Type) reflect.Value {
	if len(path) == 0 {
		return ptr
	}

	field := ptr.Elem().FieldByIndex(path)

	return reflect.NewAt(level, field.Addr().UnsafePointer())
}

func isIntKind(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	default:
		return false
	}
}

func isUintKind(kind reflect.Kind) bool {
	switch kind { //nolint:exhaustive
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isFloatKind(kind reflect.Kind) bool {
	return kind == reflect.Float32 || kind == reflect.Float64
}

func isNumberKind(kind reflect.Kind) bool {
	return isIntKind(kind) || isUintKind(kind) || isFloatKind(kind)
}

// convertNumber converts a numeric value to target, refusing lossy results.
func convertNumber(value reflect.Value, target reflect.Type) (reflect.Value, bool) {
	out := reflect.New(target).Elem()
	kind := value.Kind()

	switch {
	case isIntKind(target.Kind()):
		var integer int64

		switch {
		case isIntKind(kind):
			integer = value.Int()
		case isUintKind(kind):
			if value.Uint() > math.MaxInt64 {
				return out, false
			}

			integer = int64(value.Uint()) //nolint:gosec
		default:
			float := value.Float()
			if float != math.Trunc(float) || float < math.MinInt64 || float >= math.MaxInt64 {
				return out, false
			}

			integer = int64(float)
		}

		if out.OverflowInt(integer) {
			return out, false
		}

		out.SetInt(integer)
	case isUintKind(target.Kind()):
		var unsigned uint64

		switch {
		case isIntKind(kind):
			if value.Int() < 0 {
				return out, false
			}

			unsigned = uint64(value.Int())
		case isUintKind(kind):
			unsigned = value.Uint()
		default:
			float := value.Float()
			if float != math.Trunc(float) || float < 0 || float >= math.MaxUint64 {
				return out, false
			}

			unsigned = uint64(float)
		}

		if out.OverflowUint(unsigned) {
			return out, false
		}

		out.SetUint(unsigned)
	default:
		var float float64

		switch {
		case isIntKind(kind):
			float = float64(value.Int())
		case isUintKind(kind):
			float = float64(value.Uint())
		default:
			float = value.Float()
		}

		if out.OverflowFloat(float) {
			return out, false
		}

		out.SetFloat(float)
	}

	return out, true
}

// assign stores a deserialized value into a struct field, converting within
// the numeric, string and bool families.
func assign(field reflect.Value, name string, value any) error {
	if value == nil {
		field.SetZero()

		return nil
	}

	rv := reflect.ValueOf(value)
	target := field.Type()

	switch {
	case rv.Type().AssignableTo(target):
		field.Set(rv)
	case isNumberKind(rv.Kind()) && isNumberKind(target.Kind()):
		converted, ok := convertNumber(rv, target)
		if !ok {
			return errFieldType(name, value, target.String())
		}

		field.Set(converted)
	case rv.Kind() == reflect.String && target.Kind() == reflect.String,
		rv.Kind() == reflect.Bool && target.Kind() == reflect.Bool:
		field.Set(rv.Convert(target))
	default:
		return errFieldType(name, value, target.String())
	}

	return nil
}

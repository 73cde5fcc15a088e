package node

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

// ErrMalformedTree is returned when a decoded tree does not describe a node.
var ErrMalformedTree = errors.New("malformed node tree")

const (
	typeKey      = "type"
	valueKey     = "value"
	classNameKey = "classname"
	objectsKey   = "objects"
	rootKey      = "root"

	undefinedTag = "undefined"
)

//nolint:gochecknoglobals
var kindTags = map[Kind]string{
	KindRef:     "refobj",
	KindArray:   "array",
	KindNumber:  "number",
	KindBoolean: "boolean",
	KindString:  "string",
	KindMap:     "map",
	KindSet:     "set",
	KindDate:    "date",
	KindRegExp:  "regexp",
	KindObject:  "object",
}

//nolint:gochecknoglobals
var tagKinds = lo.Invert(kindTags)

func errMalformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedTree, fmt.Sprintf(format, args...))
}

// Tree converts the node into plain maps, slices and primitives that any
// generic encoder can write. Primitives stay bare; every other kind becomes a
// map with a "type" tag.
func (n Node) Tree() any {
	switch n.Kind {
	case KindPrimitive:
		if n.Value == Undefined {
			return map[string]any{typeKey: undefinedTag}
		}

		return n.Value
	case KindRef:
		return tagged(n.Kind, n.Index)
	case KindArray, KindSet:
		return tagged(n.Kind, treeList(n.Items))
	case KindMap:
		entries := lo.Map(n.Entries, func(entry Entry, _ int) any {
			return []any{entry.Key.Tree(), entry.Value.Tree()}
		})

		return tagged(n.Kind, entries)
	case KindObject:
		fields := make(map[string]any, len(n.Fields))
		for name, field := range n.Fields {
			fields[name] = field.Tree()
		}

		out := tagged(n.Kind, fields)
		if n.ClassName != "" {
			out[classNameKey] = n.ClassName
		}

		return out
	case KindNumber, KindBoolean, KindString, KindDate, KindRegExp:
		return tagged(n.Kind, n.Value)
	default:
		return nil
	}
}

func tagged(kind Kind, value any) map[string]any {
	return map[string]any{
		typeKey:  kindTags[kind],
		valueKey: value,
	}
}

func treeList(nodes []Node) []any {
	return lo.Map(nodes, func(item Node, _ int) any {
		return item.Tree()
	})
}

// FromTree is the inverse of [Node.Tree]. It accepts the loosely typed values
// produced by YAML, MessagePack and JSON decoders.
func FromTree(tree any) (Node, error) {
	fields, isMap := asStringMap(tree)
	if !isMap {
		if number, ok := tree.(json.Number); ok {
			return Primitive(fromNumber(number)), nil
		}

		if !IsPrimitiveValue(tree) {
			return Node{}, errMalformed("unexpected %T", tree)
		}

		return Primitive(tree), nil
	}

	tag, ok := fields[typeKey].(string)
	if !ok {
		return Node{}, errMalformed("missing %q tag", typeKey)
	}

	if tag == undefinedTag {
		return Primitive(Undefined), nil
	}

	kind, ok := tagKinds[tag]
	if !ok {
		return Node{}, errMalformed("unknown tag %q", tag)
	}

	return fromTagged(kind, fields)
}

func fromTagged(kind Kind, fields map[string]any) (Node, error) {
	value := fields[valueKey]

	switch kind { //nolint:exhaustive
	case KindRef:
		index, ok := toInt64(value)
		if !ok {
			return Node{}, errMalformed("ref index %v", value)
		}

		return Ref(int(index)), nil
	case KindArray, KindSet:
		items, err := listFromTree(value)
		if err != nil {
			return Node{}, err
		}

		return Node{Kind: kind, Items: items}, nil
	case KindMap:
		return mapFromTree(value)
	case KindObject:
		return objectFromTree(fields)
	case KindNumber:
		number, ok := toFloat64(value)
		if !ok {
			return Node{}, errMalformed("boxed number %v", value)
		}

		return Number(number), nil
	case KindBoolean:
		boolean, ok := value.(bool)
		if !ok {
			return Node{}, errMalformed("boxed boolean %v", value)
		}

		return Boolean(boolean), nil
	case KindString:
		str, ok := value.(string)
		if !ok {
			return Node{}, errMalformed("boxed string %v", value)
		}

		return String(str), nil
	case KindDate:
		millis, ok := toInt64(value)
		if !ok {
			return Node{}, errMalformed("date %v", value)
		}

		return Date(millis), nil
	case KindRegExp:
		pattern, ok := value.(string)
		if !ok {
			return Node{}, errMalformed("regexp %v", value)
		}

		return RegExp(pattern), nil
	default:
		return Node{}, errMalformed("unsupported kind %s", kind)
	}
}

func listFromTree(value any) ([]Node, error) {
	if value == nil {
		return nil, nil
	}

	raw, ok := value.([]any)
	if !ok {
		return nil, errMalformed("expected list, got %T", value)
	}

	out := make([]Node, 0, len(raw))

	for _, item := range raw {
		child, err := FromTree(item)
		if err != nil {
			return nil, err
		}

		out = append(out, child)
	}

	return out, nil
}

func mapFromTree(value any) (Node, error) {
	pairs, err := listOfLists(value)
	if err != nil {
		return Node{}, err
	}

	entries := make([]Entry, 0, len(pairs))

	for _, pair := range pairs {
		if len(pair) != 2 { //nolint:mnd
			return Node{}, errMalformed("map entry of length %d", len(pair))
		}

		key, err := FromTree(pair[0])
		if err != nil {
			return Node{}, err
		}

		val, err := FromTree(pair[1])
		if err != nil {
			return Node{}, err
		}

		entries = append(entries, Entry{Key: key, Value: val})
	}

	return Map(entries...), nil
}

func listOfLists(value any) ([][]any, error) {
	if value == nil {
		return nil, nil
	}

	raw, ok := value.([]any)
	if !ok {
		return nil, errMalformed("expected list, got %T", value)
	}

	out := make([][]any, 0, len(raw))

	for _, item := range raw {
		pair, ok := item.([]any)
		if !ok {
			return nil, errMalformed("expected pair, got %T", item)
		}

		out = append(out, pair)
	}

	return out, nil
}

func objectFromTree(fields map[string]any) (Node, error) {
	var raw map[string]any

	if fields[valueKey] != nil {
		var ok bool

		raw, ok = asStringMap(fields[valueKey])
		if !ok {
			return Node{}, errMalformed("object fields of type %T", fields[valueKey])
		}
	}

	out := make(map[string]Node, len(raw))

	for name, field := range raw {
		child, err := FromTree(field)
		if err != nil {
			return Node{}, fmt.Errorf("field %q: %w", name, err)
		}

		out[name] = child
	}

	className := ""

	if rawName, present := fields[classNameKey]; present {
		name, ok := rawName.(string)
		if !ok {
			return Node{}, errMalformed("class name of type %T", rawName)
		}

		className = name
	}

	return UserObject(className, out), nil
}

// asStringMap normalizes decoder map flavours to map[string]any.
func asStringMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case map[any]any:
		out := make(map[string]any, len(typed))

		for key, val := range typed {
			name, ok := key.(string)
			if !ok {
				return nil, false
			}

			out[name] = val
		}

		return out, true
	default:
		return nil, false
	}
}

// fromNumber narrows a decoded JSON number to int64 when it is integral.
func fromNumber(number json.Number) any {
	if integer, err := number.Int64(); err == nil {
		return integer
	}

	if unsigned, err := strconv.ParseUint(number.String(), 10, 64); err == nil {
		return unsigned
	}

	if float, err := number.Float64(); err == nil {
		return float
	}

	return number.String()
}

func toInt64(value any) (int64, bool) {
	switch typed := value.(type) {
	case json.Number:
		integer, err := typed.Int64()

		return integer, err == nil
	case int:
		return int64(typed), true
	case int8:
		return int64(typed), true
	case int16:
		return int64(typed), true
	case int32:
		return int64(typed), true
	case int64:
		return typed, true
	case uint:
		return int64(typed), uint64(typed) <= math.MaxInt64
	case uint8:
		return int64(typed), true
	case uint16:
		return int64(typed), true
	case uint32:
		return int64(typed), true
	case uint64:
		return int64(typed), typed <= math.MaxInt64 //nolint:gosec
	case float32:
		return int64(typed), float32(int64(typed)) == typed
	case float64:
		return int64(typed), float64(int64(typed)) == typed
	default:
		return 0, false
	}
}

func toFloat64(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case json.Number:
		float, err := typed.Float64()

		return float, err == nil
	default:
		integer, ok := toInt64(value)

		return float64(integer), ok
	}
}

// Tree converts the persistent data into a generic map for encoding.
func (d PersistentData) Tree() map[string]any {
	return map[string]any{
		objectsKey: treeList(d.Objects),
		rootKey:    d.Root.Tree(),
	}
}

// PersistentDataFromTree is the inverse of [PersistentData.Tree].
func PersistentDataFromTree(tree any) (PersistentData, error) {
	fields, ok := asStringMap(tree)
	if !ok {
		return PersistentData{}, errMalformed("persistent data of type %T", tree)
	}

	objects, err := listFromTree(fields[objectsKey])
	if err != nil {
		return PersistentData{}, fmt.Errorf("objects: %w", err)
	}

	root, err := FromTree(fields[rootKey])
	if err != nil {
		return PersistentData{}, fmt.Errorf("root: %w", err)
	}

	return PersistentData{Objects: objects, Root: root}, nil
}

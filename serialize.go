package objgraph

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tarantool/go-objgraph/internal/options"
	"github.com/tarantool/go-objgraph/node"
)

// SerializeContext flattens a live object graph into node.PersistentData.
// A context may be reused for consecutive calls but not concurrently.
type SerializeContext struct {
	registry *Registry
	logger   *zap.Logger

	objects []node.Node
	slots   map[identity]int
}

// NewSerializeContext creates a context resolving struct types through reg.
// A nil registry accepts no struct types.
func NewSerializeContext(reg *Registry, opts ...Option) *SerializeContext {
	cfg := options.ApplyOptions(defaultContextOptions, opts)

	return &SerializeContext{
		registry: reg,
		logger:   cfg.logger,
		objects:  nil,
		slots:    nil,
	}
}

// Serialize flattens the graph reachable from root. Slots are numbered in
// first-encounter order.
func (c *SerializeContext) Serialize(root any) (node.PersistentData, error) {
	c.objects = nil
	c.slots = map[identity]int{}

	rootNode, err := c.SerializeObject(root)
	if err != nil {
		return node.PersistentData{}, err
	}

	c.logger.Debug("object graph serialized",
		zap.Int("objects", len(c.objects)),
		zap.Stringer("root", rootNode.Kind),
	)

	return node.PersistentData{Objects: c.objects, Root: rootNode}, nil
}

// SerializeObject returns the node for value: primitives inline, everything
// else as a ref to its slot. Field hooks call it to serialize nested values.
func (c *SerializeContext) SerializeObject(value any) (node.Node, error) {
	if value == nil || isNilReference(value) {
		return node.Primitive(nil), nil
	}

	if primitive, ok := normalizePrimitive(value); ok {
		return node.Primitive(primitive), nil
	}

	id, ok := identityOf(value)
	if !ok {
		return node.Node{}, errUnsupportedValue(value)
	}

	if c.slots == nil {
		c.slots = map[identity]int{}
	}

	if index, found := c.slots[id]; found {
		return node.Ref(index), nil
	}

	index := len(c.objects)
	c.objects = append(c.objects, node.Node{})
	c.slots[id] = index

	body, err := c.expand(value)
	if err != nil {
		return node.Node{}, err
	}

	c.objects[index] = body

	return node.Ref(index), nil
}

func (c *SerializeContext) expand(value any) (node.Node, error) {
	switch typed := value.(type) {
	case *[]any:
		items, err := c.serializeAll(*typed)
		if err != nil {
			return node.Node{}, err
		}

		return node.Array(items...), nil
	case *float64:
		return node.Number(*typed), nil
	case *bool:
		return node.Boolean(*typed), nil
	case *string:
		return node.String(*typed), nil
	case *Map:
		return c.expandMap(typed)
	case *Set:
		items, err := c.serializeAll(typed.members)
		if err != nil {
			return node.Node{}, err
		}

		return node.Set(items...), nil
	case *time.Time:
		return node.Date(typed.UnixMilli()), nil
	case *regexp.Regexp:
		return node.RegExp(typed.String()), nil
	case Object:
		return c.expandObject(typed)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return node.Node{}, errUnsupportedValue(value)
	}

	if c.registry == nil {
		return node.Node{}, errUnregisteredType(value)
	}

	desc, ok := c.registry.LookupType(rv.Type().Elem())
	if !ok {
		return node.Node{}, errUnregisteredType(value)
	}

	return c.expandRegistered(desc, rv)
}

func (c *SerializeContext) serializeAll(values []any) ([]node.Node, error) {
	out := make([]node.Node, 0, len(values))

	for i, value := range values {
		item, err := c.SerializeObject(value)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		out = append(out, item)
	}

	return out, nil
}

func (c *SerializeContext) expandMap(m *Map) (node.Node, error) {
	entries := make([]node.Entry, 0, m.Len())

	for i, key := range m.keys {
		keyNode, err := c.SerializeObject(key)
		if err != nil {
			return node.Node{}, fmt.Errorf("map key %d: %w", i, err)
		}

		valueNode, err := c.SerializeObject(m.values[i])
		if err != nil {
			return node.Node{}, fmt.Errorf("map value %d: %w", i, err)
		}

		entries = append(entries, node.Entry{Key: keyNode, Value: valueNode})
	}

	return node.Map(entries...), nil
}

func (c *SerializeContext) expandObject(obj Object) (node.Node, error) {
	fields := make(map[string]node.Node, len(obj))

	for _, name := range sortedKeys(obj) {
		field, err := c.SerializeObject(obj[name])
		if err != nil {
			return node.Node{}, fmt.Errorf("field %q: %w", name, err)
		}

		fields[name] = field
	}

	return node.Object(fields), nil
}

// expandRegistered walks the descriptor chain from the most derived level up.
// A field written by a derived level is not overwritten by its ancestors.
func (c *SerializeContext) expandRegistered(desc *Descriptor, ptr reflect.Value) (node.Node, error) {
	chain := desc.Chain()
	views := desc.views(ptr)
	fields := map[string]node.Node{}

	for i, level := range chain {
		for _, prop := range level.properties {
			if _, done := fields[prop.name]; done {
				continue
			}

			var value any = node.Undefined
			if prop.HasField() {
				value = views[i].Elem().FieldByIndex(prop.index).Interface()
			}

			if prop.serialize != nil {
				field, err := prop.serialize(views[i], value, c)
				if err != nil {
					return node.Node{}, errHook(level.name, prop.name, StageSerialize, err)
				}

				fields[prop.name] = field

				continue
			}

			field, err := c.SerializeObject(value)
			if err != nil {
				return node.Node{}, fmt.Errorf("%s.%s: %w", level.name, prop.name, err)
			}

			fields[prop.name] = field
		}
	}

	return node.UserObject(desc.name, fields), nil
}

// sortedKeys fixes the visiting order of record fields so that slot numbering
// does not depend on map iteration order.
func sortedKeys[V any](fields map[string]V) []string {
	names := lo.Keys(fields)
	slices.Sort(names)

	return names
}

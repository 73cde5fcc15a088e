package objgraph

import (
	"fmt"
	"reflect"
	"regexp"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/tarantool/go-objgraph/internal/options"
	"github.com/tarantool/go-objgraph/node"
)

type poolEntry struct {
	object any
	built  bool
}

// DeserializeContext rebuilds a live object graph from node.PersistentData.
// A context may be reused for consecutive calls but not concurrently.
type DeserializeContext struct {
	registry *Registry
	logger   *zap.Logger

	data           []node.Node
	pool           []poolEntry
	reconstructing map[identity]struct{}
}

// NewDeserializeContext creates a context resolving class names through reg.
// A nil registry resolves no class names.
func NewDeserializeContext(reg *Registry, opts ...Option) *DeserializeContext {
	cfg := options.ApplyOptions(defaultContextOptions, opts)

	return &DeserializeContext{
		registry:       reg,
		logger:         cfg.logger,
		data:           nil,
		pool:           nil,
		reconstructing: map[identity]struct{}{},
	}
}

// Deserialize rebuilds the graph and returns its root. The whole graph
// reachable from the root must be complete when the call returns.
func (c *DeserializeContext) Deserialize(data node.PersistentData) (any, error) {
	c.data = data.Objects
	c.pool = make([]poolEntry, len(data.Objects))
	c.reconstructing = map[identity]struct{}{}

	root, err := c.DeserializeObject(data.Root, true)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("object graph deserialized",
		zap.Int("objects", len(data.Objects)),
		zap.Int("materialized", lo.CountBy(c.pool, func(entry poolEntry) bool { return entry.built })),
	)

	return root, nil
}

// DeserializeObject returns the value for n. Refs are materialized on first
// use and shared afterwards. With requireComplete set, every reference
// reachable from n must point at a finished object. Field hooks call it to
// restore nested values.
func (c *DeserializeContext) DeserializeObject(n node.Node, requireComplete bool) (any, error) {
	switch {
	case n.IsPrimitive():
		return n.Value, nil
	case !n.IsRef():
		return nil, errEmbeddedComposite(n.Kind)
	}

	object, err := c.resolve(n.Index)
	if err != nil {
		return nil, err
	}

	if requireComplete {
		if err := c.checkComplete(n); err != nil {
			return nil, err
		}
	}

	return object, nil
}

// resolve returns the object of slot index, materializing it if needed.
// Refs to slots that do not exist resolve to nil; the completeness check
// reports them.
func (c *DeserializeContext) resolve(index int) (any, error) {
	if index < 0 || index >= len(c.pool) {
		return nil, nil //nolint:nilnil
	}

	if entry := c.pool[index]; entry.built {
		return entry.object, nil
	}

	return c.materialize(index)
}

func (c *DeserializeContext) store(index int, object any) {
	c.pool[index] = poolEntry{object: object, built: true}
}

func (c *DeserializeContext) mark(object any) {
	if id, ok := identityOf(object); ok {
		c.reconstructing[id] = struct{}{}
	}
}

func (c *DeserializeContext) unmark(object any) {
	if id, ok := identityOf(object); ok {
		delete(c.reconstructing, id)
	}
}

func (c *DeserializeContext) isReconstructing(object any) bool {
	id, ok := identityOf(object)
	if !ok {
		return false
	}

	_, found := c.reconstructing[id]

	return found
}

//nolint:cyclop,funlen
func (c *DeserializeContext) materialize(index int) (any, error) {
	n := c.data[index]

	switch n.Kind { //nolint:exhaustive
	case node.KindArray:
		items := make([]any, 0, len(n.Items))
		array := &items
		c.store(index, array)
		c.mark(array)

		for i, item := range n.Items {
			value, err := c.DeserializeObject(item, false)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}

			*array = append(*array, value)
		}

		c.unmark(array)

		return array, nil
	case node.KindMap:
		m := NewMap()
		c.store(index, m)
		c.mark(m)

		for i, entry := range n.Entries {
			key, err := c.DeserializeObject(entry.Key, false)
			if err != nil {
				return nil, fmt.Errorf("map key %d: %w", i, err)
			}

			value, err := c.DeserializeObject(entry.Value, false)
			if err != nil {
				return nil, fmt.Errorf("map value %d: %w", i, err)
			}

			m.Set(key, value)
		}

		c.unmark(m)

		return m, nil
	case node.KindSet:
		set := NewSet()
		c.store(index, set)
		c.mark(set)

		for i, item := range n.Items {
			member, err := c.DeserializeObject(item, false)
			if err != nil {
				return nil, fmt.Errorf("set member %d: %w", i, err)
			}

			set.Add(member)
		}

		c.unmark(set)

		return set, nil
	case node.KindObject:
		if n.IsUserObject() {
			return c.materializeRegistered(index, n)
		}

		obj := Object{}
		c.store(index, obj)
		c.mark(obj)

		for _, name := range sortedKeys(n.Fields) {
			value, err := c.DeserializeObject(n.Fields[name], false)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", name, err)
			}

			obj[name] = value
		}

		c.unmark(obj)

		return obj, nil
	default:
		object, err := c.materializeLeaf(index, n)
		if err != nil {
			return nil, err
		}

		c.store(index, object)

		return object, nil
	}
}

func (c *DeserializeContext) materializeLeaf(index int, n node.Node) (any, error) {
	switch n.Kind { //nolint:exhaustive
	case node.KindNumber:
		number, ok := numberPayload[float64](n.Value)
		if !ok {
			return nil, errNoObject(index, fmt.Sprintf("number payload %v", n.Value))
		}

		return &number, nil
	case node.KindBoolean:
		boolean, ok := n.Value.(bool)
		if !ok {
			return nil, errNoObject(index, fmt.Sprintf("boolean payload %v", n.Value))
		}

		return &boolean, nil
	case node.KindString:
		str, ok := n.Value.(string)
		if !ok {
			return nil, errNoObject(index, fmt.Sprintf("string payload %v", n.Value))
		}

		return &str, nil
	case node.KindDate:
		millis, ok := numberPayload[int64](n.Value)
		if !ok {
			return nil, errNoObject(index, fmt.Sprintf("date payload %v", n.Value))
		}

		date := time.UnixMilli(millis).UTC()

		return &date, nil
	case node.KindRegExp:
		pattern, ok := n.Value.(string)
		if !ok {
			return nil, errNoObject(index, fmt.Sprintf("regexp payload %v", n.Value))
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, errNoObject(index, err.Error())
		}

		return re, nil
	default:
		return nil, errNoObject(index, "slot holds a "+n.Kind.String()+" node")
	}
}

func numberPayload[T int64 | float64](value any) (T, bool) {
	rv := reflect.ValueOf(value)
	if !isNumberKind(rv.Kind()) {
		return 0, false
	}

	converted, ok := convertNumber(rv, reflect.TypeFor[T]())
	if !ok {
		return 0, false
	}

	return converted.Interface().(T), true //nolint:forcetypeassert
}

func (c *DeserializeContext) materializeRegistered(index int, n node.Node) (any, error) {
	if c.registry == nil {
		return nil, errUnknownClass(n.ClassName)
	}

	desc, ok := c.registry.Lookup(n.ClassName)
	if !ok {
		return nil, errUnknownClass(n.ClassName)
	}

	ptr := reflect.New(desc.typ)
	object := ptr.Interface()

	c.store(index, object)
	c.mark(object)

	if err := c.runChain(desc, ptr, n); err != nil {
		return nil, err
	}

	c.unmark(object)

	return object, nil
}

// runChain restores a registered instance level by level, base first. Each
// level runs its pre hook, its fields and its post hook in that order.
func (c *DeserializeContext) runChain(desc *Descriptor, ptr reflect.Value, n node.Node) error {
	chain := desc.Chain()
	views := desc.views(ptr)

	for i := len(chain) - 1; i >= 0; i-- {
		level, view := chain[i], views[i]

		if level.pre != nil {
			if err := level.pre(view); err != nil {
				return errHook(level.name, "", StagePre, err)
			}
		}

		for _, prop := range level.properties {
			if err := c.restoreField(level, prop, view, n); err != nil {
				return err
			}
		}

		if level.post != nil {
			if err := level.post(view); err != nil {
				return errHook(level.name, "", StagePost, err)
			}
		}
	}

	return nil
}

func (c *DeserializeContext) restoreField(level *Descriptor, prop Property, view reflect.Value, n node.Node) error {
	raw, present := n.Fields[prop.name]

	if prop.deserialize != nil {
		if !present {
			raw = node.Primitive(node.Undefined)
		}

		return errHook(level.name, prop.name, StageDeserialize, prop.deserialize(view, raw, c))
	}

	if !present || !prop.HasField() {
		return nil
	}

	value, err := c.DeserializeObject(raw, false)
	if err != nil {
		return fmt.Errorf("%s.%s: %w", level.name, prop.name, err)
	}

	if value == node.Undefined {
		return nil
	}

	return assign(view.Elem().FieldByIndex(prop.index), prop.name, value)
}

// checkComplete walks everything reachable from n and fails on the first
// reference that has no object yet or whose object is still being rebuilt.
func (c *DeserializeContext) checkComplete(n node.Node) error {
	return c.walkComplete(n, map[int]bool{})
}

func (c *DeserializeContext) walkComplete(n node.Node, visited map[int]bool) error {
	if n.IsRef() {
		index := n.Index

		if index < 0 || index >= len(c.pool) {
			return UnresolvedReferenceError{Index: index, Missing: true}
		}

		entry := c.pool[index]
		if !entry.built || c.isReconstructing(entry.object) {
			return UnresolvedReferenceError{Index: index, Missing: false}
		}

		if visited[index] {
			return nil
		}

		visited[index] = true

		return c.walkComplete(c.data[index], visited)
	}

	for _, child := range n.Children() {
		if err := c.walkComplete(child, visited); err != nil {
			return err
		}
	}

	return nil
}

package objgraph

import (
	"reflect"
	"slices"
	"sync"

	"github.com/samber/lo"
	"github.com/tarantool/go-option"

	"github.com/tarantool/go-objgraph/node"
)

// FieldSerializer produces the node stored for a field of obj. value is the
// current field value, or node.Undefined for a property with no struct field.
type FieldSerializer[T any] func(obj *T, value any, ctx *SerializeContext) (node.Node, error)

// FieldDeserializer restores a field of obj from raw. raw is
// node.Primitive(node.Undefined) when the field is absent from the node.
type FieldDeserializer[T any] func(obj *T, raw node.Node, ctx *DeserializeContext) error

type serializeHook func(obj reflect.Value, value any, ctx *SerializeContext) (node.Node, error)

type deserializeHook func(obj reflect.Value, raw node.Node, ctx *DeserializeContext) error

type lifecycleHook func(obj reflect.Value) error

// Property is a single entry of a descriptor's property table.
type Property struct {
	name        string
	index       []int
	serialize   serializeHook
	deserialize deserializeHook
}

// Name returns the field name the property is stored under.
func (p Property) Name() string {
	return p.name
}

// HasField reports whether the property is backed by a struct field.
func (p Property) HasField() bool {
	return p.index != nil
}

// HasSerializeHook reports whether a custom serializer is attached.
func (p Property) HasSerializeHook() bool {
	return p.serialize != nil
}

// HasDeserializeHook reports whether a custom deserializer is attached.
func (p Property) HasDeserializeHook() bool {
	return p.deserialize != nil
}

// Descriptor is the registered metadata of one struct type.
type Descriptor struct {
	name        string
	typ         reflect.Type
	parent      option.Generic[*Descriptor]
	parentIndex []int
	properties  []Property
	pre         lifecycleHook
	post        lifecycleHook
}

// Name returns the class name written into serialized nodes.
func (d *Descriptor) Name() string {
	return d.name
}

// Type returns the registered struct type.
func (d *Descriptor) Type() reflect.Type {
	return d.typ
}

// Parent returns the parent descriptor, if any.
func (d *Descriptor) Parent() option.Generic[*Descriptor] {
	return d.parent
}

// Properties returns the property table of this level only.
func (d *Descriptor) Properties() []Property {
	return slices.Clone(d.properties)
}

// Chain returns the descriptor followed by its ancestors, most derived first.
func (d *Descriptor) Chain() []*Descriptor {
	out := []*Descriptor{d}

	for current := d.parent; current.IsSome(); {
		parent := current.Unwrap()
		out = append(out, parent)
		current = parent.parent
	}

	return out
}

// views returns a typed pointer for every level of the chain, aligned with
// Chain. ptr must point to a value of d.typ.
func (d *Descriptor) views(ptr reflect.Value) []reflect.Value {
	chain := d.Chain()
	out := make([]reflect.Value, len(chain))
	out[0] = ptr

	for i := 1; i < len(chain); i++ {
		out[i] = levelView(out[i-1], chain[i-1].parentIndex, chain[i].typ)
	}

	return out
}

// Registry maps class names and Go types to descriptors. Registration and
// lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	byType map[reflect.Type]*Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		mu:     sync.RWMutex{},
		byName: map[string]*Descriptor{},
		byType: map[reflect.Type]*Descriptor{},
	}
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName[name]

	return d, ok
}

// LookupType returns the descriptor of struct type typ.
func (r *Registry) LookupType(typ reflect.Type) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byType[typ]

	return d, ok
}

// Names returns the registered class names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := lo.Keys(r.byName)
	slices.Sort(names)

	return names
}

// registration collects the effect of RegisterOptions for one type.
type registration struct {
	name       string
	typ        reflect.Type
	parent     option.Generic[*Descriptor]
	fields     []string
	hooked     []Property
	pre        lifecycleHook
	post       lifecycleHook
	errorCause error
}

func (r *registration) fail(format string, args ...any) {
	if r.errorCause == nil {
		r.errorCause = errRegistration(r.name, format, args...)
	}
}

func (r *registration) checkHookType(hookType reflect.Type, what string) bool {
	if hookType != r.typ {
		r.fail("%s is declared for %s", what, hookType)

		return false
	}

	return true
}

// RegisterOption configures a type registration.
type RegisterOption interface {
	apply(r *registration)
}

type optionFunc func(r *registration)

func (f optionFunc) apply(r *registration) {
	f(r)
}

// WithParent makes the registered type a child of parent. The registered
// struct must embed the parent struct by value.
func WithParent(parent *Descriptor) RegisterOption {
	return optionFunc(func(r *registration) {
		if parent == nil {
			r.fail("nil parent descriptor")

			return
		}

		r.parent = option.Some(parent)
	})
}

// WithFields adds plain properties serialized from exported struct fields.
func WithFields(names ...string) RegisterOption {
	return optionFunc(func(r *registration) {
		r.fields = append(r.fields, names...)
	})
}

// WithField adds a property with custom hooks. Either hook may be nil, in
// which case the field is handled as a plain property in that direction. The
// name does not have to match a struct field when both hooks are given.
func WithField[T any](name string, ser FieldSerializer[T], de FieldDeserializer[T]) RegisterOption {
	return optionFunc(func(r *registration) {
		if !r.checkHookType(reflect.TypeFor[T](), "field "+name+" hooks") {
			return
		}

		prop := Property{name: name, index: nil, serialize: nil, deserialize: nil}

		if ser != nil {
			prop.serialize = func(obj reflect.Value, value any, ctx *SerializeContext) (node.Node, error) {
				return ser(obj.Interface().(*T), value, ctx) //nolint:forcetypeassert
			}
		}

		if de != nil {
			prop.deserialize = func(obj reflect.Value, raw node.Node, ctx *DeserializeContext) error {
				return de(obj.Interface().(*T), raw, ctx) //nolint:forcetypeassert
			}
		}

		r.hooked = append(r.hooked, prop)
	})
}

// WithPre sets a hook invoked on deserialization before the level's fields
// are assigned.
func WithPre[T any](hook func(obj *T) error) RegisterOption {
	return optionFunc(func(r *registration) {
		if r.checkHookType(reflect.TypeFor[T](), "pre hook") && hook != nil {
			r.pre = func(obj reflect.Value) error {
				return hook(obj.Interface().(*T)) //nolint:forcetypeassert
			}
		}
	})
}

// WithPost sets a hook invoked on deserialization after the level's fields
// are assigned.
func WithPost[T any](hook func(obj *T) error) RegisterOption {
	return optionFunc(func(r *registration) {
		if r.checkHookType(reflect.TypeFor[T](), "post hook") && hook != nil {
			r.post = func(obj reflect.Value) error {
				return hook(obj.Interface().(*T)) //nolint:forcetypeassert
			}
		}
	})
}

// Register adds struct type T to reg under name.
func Register[T any](reg *Registry, name string, opts ...RegisterOption) (*Descriptor, error) {
	r := &registration{
		name:       name,
		typ:        reflect.TypeFor[T](),
		parent:     option.None[*Descriptor](),
		fields:     nil,
		hooked:     nil,
		pre:        nil,
		post:       nil,
		errorCause: nil,
	}

	for _, opt := range opts {
		opt.apply(r)
	}

	desc, err := r.build(reg)
	if err != nil {
		return nil, err
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.byName[name]; ok {
		return nil, errRegistration(name, "name is already registered")
	}

	if existing, ok := reg.byType[desc.typ]; ok {
		return nil, errRegistration(name, "type %s is already registered as %q", desc.typ, existing.name)
	}

	reg.byName[name] = desc
	reg.byType[desc.typ] = desc

	return desc, nil
}

// MustRegister is like Register but panics on failure.
func MustRegister[T any](reg *Registry, name string, opts ...RegisterOption) *Descriptor {
	desc, err := Register[T](reg, name, opts...)
	if err != nil {
		panic(err)
	}

	return desc
}

func (r *registration) build(reg *Registry) (*Descriptor, error) {
	switch {
	case r.errorCause != nil:
		return nil, r.errorCause
	case r.name == "":
		return nil, errRegistration(r.name, "empty class name")
	case r.typ.Kind() != reflect.Struct:
		return nil, errRegistration(r.name, "%s is not a struct type", r.typ)
	case r.typ.Size() == 0:
		return nil, errRegistration(r.name, "%s is zero-sized and has no stable identity", r.typ)
	}

	desc := &Descriptor{
		name:        r.name,
		typ:         r.typ,
		parent:      r.parent,
		parentIndex: nil,
		properties:  nil,
		pre:         r.pre,
		post:        r.post,
	}

	if parent, ok := r.parent.Get(); ok {
		if registered, found := reg.Lookup(parent.name); !found || registered != parent {
			return nil, errRegistration(r.name, "parent %q belongs to another registry", parent.name)
		}

		index, found := embeddedIndex(r.typ, parent.typ)
		if !found {
			return nil, errRegistration(r.name, "%s does not embed parent %s by value", r.typ, parent.typ)
		}

		desc.parentIndex = index
	}

	seen := map[string]bool{}

	for _, name := range r.fields {
		field, ok := r.typ.FieldByName(name)
		if !ok || !field.IsExported() {
			return nil, errRegistration(r.name, "no exported field %q in %s", name, r.typ)
		}

		if seen[name] {
			return nil, errRegistration(r.name, "property %q declared twice", name)
		}

		seen[name] = true

		desc.properties = append(desc.properties, Property{
			name:        name,
			index:       field.Index,
			serialize:   nil,
			deserialize: nil,
		})
	}

	for _, prop := range r.hooked {
		if seen[prop.name] {
			return nil, errRegistration(r.name, "property %q declared twice", prop.name)
		}

		seen[prop.name] = true

		field, ok := r.typ.FieldByName(prop.name)

		switch {
		case ok && field.IsExported():
			prop.index = field.Index
		case prop.serialize == nil || prop.deserialize == nil:
			return nil, errRegistration(r.name, "property %q needs both hooks without an exported field", prop.name)
		}

		desc.properties = append(desc.properties, prop)
	}

	return desc, nil
}

// embeddedIndex finds the index path of a struct of type target embedded by
// value, directly or transitively, in typ.
func embeddedIndex(typ, target reflect.Type) ([]int, bool) {
	field, ok := lo.Find(reflect.VisibleFields(typ), func(field reflect.StructField) bool {
		return field.Anonymous && field.Type == target
	})

	return field.Index, ok
}

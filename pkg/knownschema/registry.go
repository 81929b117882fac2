// Package knownschema maps Go types to the canonical Schema values they
// conform to, the way the teacher's pkg/cramberry.Registry maps Go types to
// wire TypeIDs. Scalars, strings, slices, arrays, maps, and pointers are
// derived automatically by reflection; struct and union (interface) types
// must be registered explicitly, since reflection alone can't tell us a
// struct's intended wire field names or a sealed interface's closed set of
// implementations.
package knownschema

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/blockberries/binschema/pkg/schema"
)

// FieldInfo names the wire name and the underlying Go struct field for one
// field of a registered struct type, in declaration order.
type FieldInfo struct {
	WireName string
	GoField  reflect.StructField
}

// VariantInfo names the wire variant name and the concrete Go type for one
// implementation of a registered union (interface) type, in registration
// order — registration order is the enum's ordinal order, so it must stay
// stable once published the same way the teacher's TypeID assignment must.
type VariantInfo struct {
	Name string
	Type reflect.Type

	// PtrReceiver is true when only *Type (not Type) implements the union
	// interface, so reflectcodec must hand back a pointer rather than a
	// value when reconstructing this variant on decode.
	PtrReceiver bool
}

type structReg struct {
	name   string
	fields []FieldInfo
}

type unionReg struct {
	name     string
	variants []VariantInfo
}

// Registry maps reflect.Type to schema.Schema. It is safe for concurrent
// use after registration, mirroring the teacher's Registry's RWMutex
// discipline: registration typically happens at init() time, lookups
// happen continuously from many goroutines decoding independent messages.
type Registry struct {
	mu      sync.RWMutex
	structs map[reflect.Type]*structReg
	unions  map[reflect.Type]*unionReg
	cache   map[reflect.Type]schema.Schema
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		structs: make(map[reflect.Type]*structReg),
		unions:  make(map[reflect.Type]*unionReg),
		cache:   make(map[reflect.Type]schema.Schema),
	}
}

// DefaultRegistry is the global registry used by package reflectcodec's
// unqualified Marshal/Unmarshal.
var DefaultRegistry = NewRegistry()

// RegisterStruct derives T's field list by reflection (exported fields
// only, wire name from a `binschema:"name"` tag or else the Go field name;
// `binschema:"-"` excludes a field) and registers it so For(reflect.Type)
// can build T's Schema. Calling it twice for the same type is a no-op.
func RegisterStruct[T any]() error {
	return DefaultRegistry.RegisterStructType(reflect.TypeFor[T]())
}

// RegisterStructType is the non-generic form of RegisterStruct.
func (r *Registry) RegisterStructType(t reflect.Type) error {
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("knownschema: %s is not a struct type", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.structs[t]; ok {
		return nil
	}

	fields := make([]FieldInfo, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("binschema"); ok {
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, FieldInfo{WireName: name, GoField: f})
	}

	r.structs[t] = &structReg{name: typeName(t), fields: fields}
	delete(r.cache, t)
	return nil
}

// UnionVariant names one implementation of a registered union type. Sample
// is used only to recover the implementation's reflect.Type; a nil
// *ImplType or zero value of ImplType both work.
type UnionVariant struct {
	Name   string
	Sample any
}

// RegisterUnion registers the closed set of concrete types that can appear
// behind interface I, in ordinal order. I has no Go analogue of Rust's
// sealed enum, so the set must be given explicitly rather than discovered.
func RegisterUnion[I any](variants ...UnionVariant) error {
	return DefaultRegistry.RegisterUnionType(reflect.TypeFor[I](), variants)
}

// RegisterUnionType is the non-generic form of RegisterUnion.
func (r *Registry) RegisterUnionType(iface reflect.Type, variants []UnionVariant) error {
	if iface.Kind() != reflect.Interface {
		return fmt.Errorf("knownschema: %s is not an interface type", iface)
	}
	vs := make([]VariantInfo, 0, len(variants))
	for _, v := range variants {
		implType := reflect.TypeOf(v.Sample)
		if implType == nil {
			return fmt.Errorf("knownschema: variant %q of %s: sample must carry a concrete type", v.Name, iface)
		}
		for implType.Kind() == reflect.Ptr {
			implType = implType.Elem()
		}
		ptrReceiver := false
		switch {
		case implType.Implements(iface):
		case reflect.PointerTo(implType).Implements(iface):
			ptrReceiver = true
		default:
			return fmt.Errorf("knownschema: variant %q: %s does not implement %s", v.Name, implType, iface)
		}
		vs = append(vs, VariantInfo{Name: v.Name, Type: implType, PtrReceiver: ptrReceiver})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.unions[iface] = &unionReg{name: typeName(iface), variants: vs}
	delete(r.cache, iface)
	return nil
}

// StructFields returns the registered field list for a struct type.
func (r *Registry) StructFields(t reflect.Type) ([]FieldInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sr, ok := r.structs[t]
	if !ok {
		return nil, false
	}
	return sr.fields, true
}

// UnionVariants returns the registered variant list for an interface type.
func (r *Registry) UnionVariants(t reflect.Type) ([]VariantInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ur, ok := r.unions[t]
	if !ok {
		return nil, false
	}
	return ur.variants, true
}

// Of returns T's canonical Schema from the default registry.
func Of[T any]() (schema.Schema, error) {
	return DefaultRegistry.For(reflect.TypeFor[T]())
}

// For returns t's canonical Schema, deriving it from t's reflect.Kind for
// built-in shapes and consulting the registered struct/union tables
// otherwise. The result is cached: repeated calls for the same type are
// cheap after the first.
func (r *Registry) For(t reflect.Type) (schema.Schema, error) {
	r.mu.RLock()
	if s, ok := r.cache[t]; ok {
		r.mu.RUnlock()
		return s, nil
	}
	r.mu.RUnlock()

	s, err := r.resolve(t, nil)
	if err != nil {
		return schema.Schema{}, err
	}

	r.mu.Lock()
	r.cache[t] = s
	r.mu.Unlock()
	return s, nil
}

// resolve builds t's Schema, tracking the chain of Go types currently being
// expanded so a self-referential Go type (a linked list node holding a
// pointer to itself, say) resolves to a Recurse node instead of reflecting
// forever. This is the Go-type-level analogue of the teacher's
// TypeRegistration graph, generalized from a flat ID table to a
// depth-aware schema builder.
func (r *Registry) resolve(t reflect.Type, stack []reflect.Type) (schema.Schema, error) {
	for i, anc := range stack {
		if anc == t {
			return schema.RecurseSchema(len(stack) - i), nil
		}
	}

	if s, ok := specialScalar(t); ok {
		return s, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return schema.BoolSchema(), nil
	case reflect.Uint8:
		return schema.U8Schema(), nil
	case reflect.Uint16:
		return schema.U16Schema(), nil
	case reflect.Uint32:
		return schema.U32Schema(), nil
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return schema.U64Schema(), nil
	case reflect.Int8:
		return schema.I8Schema(), nil
	case reflect.Int16:
		return schema.I16Schema(), nil
	case reflect.Int32:
		return schema.I32Schema(), nil
	case reflect.Int, reflect.Int64:
		return schema.I64Schema(), nil
	case reflect.Float32:
		return schema.F32Schema(), nil
	case reflect.Float64:
		return schema.F64Schema(), nil
	case reflect.String:
		return schema.StrSchema(), nil
	case reflect.Ptr:
		inner, err := r.resolve(t.Elem(), pushType(stack, t))
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.OptionSchema(inner), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return schema.BytesSchema(), nil
		}
		elem, err := r.resolve(t.Elem(), pushType(stack, t))
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.VarSeqSchema(elem), nil
	case reflect.Array:
		elem, err := r.resolve(t.Elem(), pushType(stack, t))
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.FixedSeqSchema(t.Len(), elem), nil
	case reflect.Map:
		next := pushType(stack, t)
		key, err := r.resolve(t.Key(), next)
		if err != nil {
			return schema.Schema{}, err
		}
		val, err := r.resolve(t.Elem(), next)
		if err != nil {
			return schema.Schema{}, err
		}
		return schema.VarSeqSchema(schema.TupleSchema(key, val)), nil
	case reflect.Struct:
		return r.resolveStruct(t, stack)
	case reflect.Interface:
		return r.resolveUnion(t, stack)
	default:
		return schema.Schema{}, fmt.Errorf("knownschema: unsupported Go kind %s for type %s", t.Kind(), t)
	}
}

func (r *Registry) resolveStruct(t reflect.Type, stack []reflect.Type) (schema.Schema, error) {
	r.mu.RLock()
	sr, ok := r.structs[t]
	r.mu.RUnlock()
	if !ok {
		return schema.Schema{}, fmt.Errorf("knownschema: struct type %s is not registered; call RegisterStruct[%s]() first", t, t.Name())
	}

	next := pushType(stack, t)
	fields := make([]schema.Field, len(sr.fields))
	for i, f := range sr.fields {
		fs, err := r.resolve(f.GoField.Type, next)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("knownschema: field %s.%s: %w", t.Name(), f.GoField.Name, err)
		}
		fields[i] = schema.Field{Name: f.WireName, Schema: fs}
	}
	return schema.StructSchema(fields...), nil
}

func (r *Registry) resolveUnion(t reflect.Type, stack []reflect.Type) (schema.Schema, error) {
	r.mu.RLock()
	ur, ok := r.unions[t]
	r.mu.RUnlock()
	if !ok {
		return schema.Schema{}, fmt.Errorf("knownschema: interface type %s is not registered; call RegisterUnion[%s](...) first", t, t.Name())
	}

	next := pushType(stack, t)
	variants := make([]schema.Variant, len(ur.variants))
	for i, v := range ur.variants {
		vs, err := r.resolve(v.Type, next)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("knownschema: union variant %s.%s: %w", t.Name(), v.Name, err)
		}
		variants[i] = schema.Variant{Name: v.Name, Schema: vs}
	}
	return schema.EnumSchema(variants...), nil
}

// pushType returns stack with t appended, always to a fresh backing array
// so sibling branches of the same resolve call (a map's key and value, a
// struct's successive fields) never alias each other's slice.
func pushType(stack []reflect.Type, t reflect.Type) []reflect.Type {
	next := make([]reflect.Type, len(stack)+1)
	copy(next, stack)
	next[len(stack)] = t
	return next
}

// SchemaSchema returns the canonical Schema describing Schema values
// themselves, backing spec's self-encoding round-trip property. It
// reproduces the original's "KnownSchema for Schema" without needing a
// registration call, since pkg/schema already carries its own
// self-description.
func (r *Registry) SchemaSchema() schema.Schema {
	return schema.SelfSchema()
}

func typeName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

package avro

import "reflect"

// binaryEncodeFunc is the plan shape for the binary SerializerBuilder: a
// monomorphic closure over a value and a sink (spec.md §4.3).
type binaryEncodeFunc func(w *BinaryWriter, v reflect.Value) error

// binaryDecodeFunc is the plan shape for the binary DeserializerBuilder.
type binaryDecodeFunc func(r *BinaryReader, v reflect.Value) error

// jsonEncodeFunc is the plan shape for the JSON SerializerBuilder.
type jsonEncodeFunc func(w *JSONWriter, v reflect.Value) error

// jsonDecodeFunc is the plan shape for the JSON DeserializerBuilder.
type jsonDecodeFunc func(r *JSONReader, v reflect.Value) error

// refKey identifies a (schema, host type) pair for the BuildContext's
// references map (spec.md §4.3 step 4): the same pair reached through two
// different paths in the schema graph gets exactly one plan.
type refKey struct {
	schema Schema
	typ    reflect.Type
}

// buildContext carries the forward-reference bookkeeping that lets the
// builder terminate on cyclic schemas paired with cyclic host types.
type buildContext struct {
	binaryEnc   map[refKey]*binaryEncodeFunc
	binaryDec   map[refKey]*binaryDecodeFunc
	jsonEnc     map[refKey]*jsonEncodeFunc
	jsonDec     map[refKey]*jsonDecodeFunc
	types       *typeCache
	resolver    TypeResolver
	nameMatcher nameMatcher
	blockLength int
}

func newBuildContext(resolver TypeResolver, opts ...BuilderOption) *buildContext {
	ctx := &buildContext{
		binaryEnc: make(map[refKey]*binaryEncodeFunc),
		binaryDec: make(map[refKey]*binaryDecodeFunc),
		jsonEnc:   make(map[refKey]*jsonEncodeFunc),
		jsonDec:   make(map[refKey]*jsonDecodeFunc),
		types:     newTypeCache(),
		resolver:  resolver,
	}
	applyBuilderOptions(ctx, opts)
	return ctx
}

// TypeResolver customizes how the builder maps schema elements to host
// types; SelectType (spec.md §4.6 "Union") is the main overridable hook,
// letting a caller map a polymorphic base type to concrete union variants.
type TypeResolver interface {
	// SelectType chooses the concrete host type to instantiate for a
	// union branch, given the union's declared host type rt (which may be
	// an interface or nil) and the chosen branch schema. The default
	// resolver returns rt unchanged when it is concrete, and the schema's
	// natural Go type (*GenericRecord for records; see defaultGoType) when
	// rt is nil or an interface.
	SelectType(branch Schema, rt reflect.Type) reflect.Type
}

// DefaultTypeResolver is the TypeResolver used when none is supplied.
type DefaultTypeResolver struct{}

// SelectType implements TypeResolver.
func (DefaultTypeResolver) SelectType(branch Schema, rt reflect.Type) reflect.Type {
	if rt != nil && rt.Kind() != reflect.Interface {
		return rt
	}
	return defaultGoType(branch)
}

// defaultGoType returns the natural Go type for a schema when no host
// type was supplied (used for generic decoding, spec.md's GenericRecord).
func defaultGoType(s Schema) reflect.Type {
	s = resolveRef(s)
	switch s.Type() {
	case Null:
		return reflect.TypeOf((*interface{})(nil)).Elem()
	case Boolean:
		return reflect.TypeOf(false)
	case Int:
		return reflect.TypeOf(int32(0))
	case Long:
		return reflect.TypeOf(int64(0))
	case Float:
		return reflect.TypeOf(float32(0))
	case Double:
		return reflect.TypeOf(float64(0))
	case String, Enum:
		return reflect.TypeOf("")
	case Bytes, Fixed:
		return reflect.TypeOf([]byte(nil))
	case Array:
		return reflect.SliceOf(defaultGoType(s.(*ArraySchema).Items()))
	case Map:
		return reflect.MapOf(reflect.TypeOf(""), defaultGoType(s.(*MapSchema).Values()))
	case Record:
		return reflect.TypeOf((*GenericRecord)(nil))
	case Union:
		u := s.(*UnionSchema)
		if _, valIdx, ok := u.Nullable(); ok {
			return reflect.PtrTo(defaultGoType(u.Branches()[valIdx]))
		}
		return reflect.TypeOf(UnionValue{})
	default:
		return reflect.TypeOf((*interface{})(nil)).Elem()
	}
}

package avro

import (
	"strconv"
	"strings"
)

// ArraySchema is the Avro array type: an ordered sequence of Items.
type ArraySchema struct {
	properties
	items Schema
}

// NewArraySchema constructs an array schema.
func NewArraySchema(items Schema, props map[string]interface{}) *ArraySchema {
	return &ArraySchema{properties: newProperties(props, schemaReserved), items: items}
}

// Type returns Array.
func (s *ArraySchema) Type() Type { return Array }

// Items returns the array's element schema.
func (s *ArraySchema) Items() Schema { return s.items }

// String returns the schema's JSON representation.
func (s *ArraySchema) String() string {
	return `{"type":"array","items":` + s.items.String() + `}`
}

// MapSchema is the Avro map type: a string-keyed mapping to Values.
type MapSchema struct {
	properties
	values Schema
}

// NewMapSchema constructs a map schema.
func NewMapSchema(values Schema, props map[string]interface{}) *MapSchema {
	return &MapSchema{properties: newProperties(props, schemaReserved), values: values}
}

// Type returns Map.
func (s *MapSchema) Type() Type { return Map }

// Values returns the map's value schema.
func (s *MapSchema) Values() Schema { return s.values }

// String returns the schema's JSON representation.
func (s *MapSchema) String() string {
	return `{"type":"map","values":` + s.values.String() + `}`
}

// UnionSchema is the Avro union type: an ordered, distinguishable set of
// branch schemas (spec.md §3.1, §3.2: at most one Null branch, no nested
// union, no two indistinguishable branches).
type UnionSchema struct {
	branches []Schema
}

// NewUnionSchema constructs a union schema, validating spec.md §3.2's
// distinguishability invariant.
func NewUnionSchema(branches []Schema) (*UnionSchema, error) {
	seen := make(map[string]bool, len(branches))
	nullCount := 0
	for i, b := range branches {
		if b.Type() == Union {
			return nil, newError(InvalidSchema, "union branch %d may not itself be a union", i)
		}
		if b.Type() == Null {
			nullCount++
			if nullCount > 1 {
				return nil, newError(InvalidSchema, "union may contain at most one null branch")
			}
		}
		key := unionDistinguishKey(b)
		if seen[key] {
			return nil, newError(InvalidSchema, "union branch %d (%s) is not distinguishable from an earlier branch", i, key)
		}
		seen[key] = true
	}
	return &UnionSchema{branches: branches}, nil
}

// unionDistinguishKey returns the key used to test branch distinguishability:
// named types by full name, everything else by its type name.
func unionDistinguishKey(s Schema) string {
	s = resolveRef(s)
	if n, ok := s.(NamedSchema); ok {
		return n.FullName()
	}
	return string(s.Type())
}

// Type returns Union.
func (s *UnionSchema) Type() Type { return Union }

// Branches returns the union's ordered branch schemas.
func (s *UnionSchema) Branches() []Schema { return s.branches }

// Nullable reports whether this is a two-branch union with one null
// branch (the common "optional" shape), and if so the index of the null
// branch and the other branch.
func (s *UnionSchema) Nullable() (nullIndex, valueIndex int, ok bool) {
	if len(s.branches) != 2 {
		return 0, 0, false
	}
	if s.branches[0].Type() == Null {
		return 0, 1, true
	}
	if s.branches[1].Type() == Null {
		return 1, 0, true
	}
	return 0, 0, false
}

// IndexOf returns the index of the branch matching key (as produced by
// unionDistinguishKey), or -1.
func (s *UnionSchema) IndexOf(key string) int {
	for i, b := range s.branches {
		if unionDistinguishKey(b) == key {
			return i
		}
	}
	return -1
}

// String returns the schema's JSON representation.
func (s *UnionSchema) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range s.branches {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.String())
	}
	b.WriteByte(']')
	return b.String()
}

// FixedSchema is the Avro fixed type: a named schema of an exact byte Size.
type FixedSchema struct {
	name
	properties
	size    int
	logical LogicalSchema
}

// NewFixedSchema constructs a fixed schema. size must be non-negative
// (spec.md §4.1); a decimal logical type's precision must fit within size
// bytes (spec.md §4.4: "on Fixed, the byte length must equal the fixed
// size").
func NewFixedSchema(n, namespace string, size int, aliases []string, logical LogicalSchema, props map[string]interface{}) (*FixedSchema, error) {
	if size < 0 {
		return nil, newError(InvalidSchema, "fixed size must be non-negative, got %d", size)
	}
	if dl, ok := logical.(*DecimalLogicalSchema); ok {
		if max := maxDecimalPrecisionForSize(size); dl.Precision() > max {
			return nil, newError(InvalidSchema, "decimal precision %d does not fit in a %d-byte fixed (max %d)", dl.Precision(), size, max)
		}
	}
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	return &FixedSchema{name: nm, properties: newProperties(props, schemaReserved), size: size, logical: logical}, nil
}

// Type returns Fixed.
func (s *FixedSchema) Type() Type { return Fixed }

// Size returns the fixed schema's byte size.
func (s *FixedSchema) Size() int { return s.size }

// Logical returns the attached logical schema, or nil.
func (s *FixedSchema) Logical() LogicalSchema { return s.logical }

// String returns the schema's JSON representation.
func (s *FixedSchema) String() string {
	out := `{"name":"` + s.FullName() + `","type":"fixed","size":` + strconv.Itoa(s.size)
	if s.logical != nil {
		out += "," + s.logical.String()
	}
	return out + "}"
}

// EnumSchema is the Avro enum type: a named schema with an ordered,
// unique set of Symbols and an optional Default symbol.
type EnumSchema struct {
	name
	properties
	symbols []string
	def     string
	doc     string
}

// NewEnumSchema constructs an enum schema. symbols must be non-empty and
// unique identifiers (spec.md §3.1); def, if non-empty, must be one of
// symbols.
func NewEnumSchema(n, namespace string, symbols []string, aliases []string, def, doc string, props map[string]interface{}) (*EnumSchema, error) {
	if len(symbols) == 0 {
		return nil, newError(InvalidSchema, "enum %s must have at least one symbol", n)
	}
	seen := make(map[string]bool, len(symbols))
	for _, sym := range symbols {
		if err := validateIdentifier(sym); err != nil {
			return nil, wrapError(InvalidSchema, err, "invalid enum symbol %q", sym)
		}
		if seen[sym] {
			return nil, newError(InvalidSchema, "duplicate enum symbol %q", sym)
		}
		seen[sym] = true
	}
	if def != "" && !seen[def] {
		return nil, newError(InvalidSchema, "enum default %q is not among its symbols", def)
	}
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	return &EnumSchema{name: nm, properties: newProperties(props, schemaReserved), symbols: symbols, def: def, doc: doc}, nil
}

// Type returns Enum.
func (s *EnumSchema) Type() Type { return Enum }

// Symbols returns the enum's ordered symbol list.
func (s *EnumSchema) Symbols() []string { return s.symbols }

// Default returns the enum's fallback symbol, or "" if none.
func (s *EnumSchema) Default() string { return s.def }

// Doc returns the enum's documentation string.
func (s *EnumSchema) Doc() string { return s.doc }

// IndexOf returns the zero-based index of sym, or -1.
func (s *EnumSchema) IndexOf(sym string) int {
	for i, x := range s.symbols {
		if x == sym {
			return i
		}
	}
	return -1
}

// String returns the schema's JSON representation.
func (s *EnumSchema) String() string {
	var b strings.Builder
	b.WriteString(`{"name":"`)
	b.WriteString(s.FullName())
	b.WriteString(`","type":"enum","symbols":[`)
	for i, sym := range s.symbols {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(sym)
		b.WriteByte('"')
	}
	b.WriteString("]}")
	return b.String()
}

// Field is a single field of a RecordSchema.
type Field struct {
	properties
	name      string
	aliases   []string
	doc       string
	typ       Schema
	hasDef    bool
	def       interface{}
}

// NewField constructs a record field. If hasDefault, def is the field's
// parsed default value (§3.4), already validated against typ.
func NewField(name string, typ Schema, aliases []string, doc string, hasDefault bool, def interface{}, props map[string]interface{}) (*Field, error) {
	if err := validateIdentifier(name); err != nil {
		return nil, wrapError(InvalidSchema, err, "invalid field name %q", name)
	}
	f := &Field{
		properties: newProperties(props, fieldReserved),
		name:       name,
		aliases:    aliases,
		doc:        doc,
		typ:        typ,
	}
	if hasDefault {
		v, ok := validDefaultValue(typ, def)
		if !ok {
			return nil, newError(InvalidSchema, "default value %v is not valid for field %q of type %s", def, name, typ.Type())
		}
		f.def = v
		f.hasDef = true
	}
	return f, nil
}

// Name returns the field's name.
func (f *Field) Name() string { return f.name }

// Aliases returns the field's aliases.
func (f *Field) Aliases() []string { return f.aliases }

// Type returns the field's schema.
func (f *Field) Type() Schema { return f.typ }

// Doc returns the field's documentation string.
func (f *Field) Doc() string { return f.doc }

// HasDefault reports whether the field declares a default value.
func (f *Field) HasDefault() bool { return f.hasDef }

// Default returns the field's default value, or nil if none (including
// when the default itself is null).
func (f *Field) Default() interface{} { return f.def }

// String returns the field's JSON representation.
func (f *Field) String() string {
	return `{"name":"` + f.name + `","type":` + f.typ.String() + `}`
}

// RecordSchema is the Avro record type: a named schema with an ordered
// list of Fields. Field types may reference the enclosing record
// (directly or transitively) through a RefSchema, forming a cycle.
type RecordSchema struct {
	name
	properties
	fields []*Field
	doc    string
}

// NewRecordSchema constructs a record schema with no fields yet; use
// SetFields once the enclosing RefSchema has been registered, which is
// what makes cyclic record definitions representable (spec.md §3.2, §4.5).
func NewRecordSchema(n, namespace string, aliases []string, doc string, props map[string]interface{}) (*RecordSchema, error) {
	nm, err := newName(n, namespace, aliases)
	if err != nil {
		return nil, err
	}
	return &RecordSchema{name: nm, properties: newProperties(props, schemaReserved), doc: doc}, nil
}

// SetFields assigns the record's fields once they have been parsed/built.
func (s *RecordSchema) SetFields(fields []*Field) { s.fields = fields }

// Type returns Record.
func (s *RecordSchema) Type() Type { return Record }

// Fields returns the record's ordered fields.
func (s *RecordSchema) Fields() []*Field { return s.fields }

// Doc returns the record's documentation string.
func (s *RecordSchema) Doc() string { return s.doc }

// FieldByName returns the field with the given name, or nil.
func (s *RecordSchema) FieldByName(name string) *Field {
	for _, f := range s.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// FieldByNameOrAlias returns the field matching name by name or alias.
func (s *RecordSchema) FieldByNameOrAlias(name string) *Field {
	if f := s.FieldByName(name); f != nil {
		return f
	}
	for _, f := range s.fields {
		for _, a := range f.aliases {
			if a == name {
				return f
			}
		}
	}
	return nil
}

// String returns the schema's JSON representation.
func (s *RecordSchema) String() string {
	var b strings.Builder
	b.WriteString(`{"name":"`)
	b.WriteString(s.FullName())
	b.WriteString(`","type":"record","fields":[`)
	for i, f := range s.fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(f.String())
	}
	b.WriteString("]}")
	return b.String()
}

// RefSchema is a reference to a previously-declared named schema, used to
// represent cycles: a record field whose type is (transitively) its own
// enclosing record is a RefSchema pointing back at that record.
type RefSchema struct {
	actual NamedSchema
}

// NewRefSchema constructs a reference to an already-registered named schema.
func NewRefSchema(actual NamedSchema) *RefSchema { return &RefSchema{actual: actual} }

// Type returns Ref.
func (s *RefSchema) Type() Type { return Ref }

// Schema returns the schema being referenced.
func (s *RefSchema) Schema() Schema { return s.actual }

// String returns the reference's full-name-only JSON representation.
func (s *RefSchema) String() string { return `"` + s.actual.FullName() + `"` }

// resolveRef unwraps a RefSchema down to the underlying named schema; it
// is a no-op for any other schema kind.
func resolveRef(s Schema) Schema {
	if r, ok := s.(*RefSchema); ok {
		return r.actual
	}
	return s
}

// typeName returns the name used for union-branch distinguishing and
// generic-record union-wrapper keys: the full name for named schemas
// (after unwrapping a RefSchema), otherwise the primitive type name.
func typeName(s Schema) string {
	s = resolveRef(s)
	if n, ok := s.(NamedSchema); ok {
		return n.FullName()
	}
	return string(s.Type())
}

// Package avro implements the Apache Avro data framework: parsing and
// emitting Avro schemas (including Parsing Canonical Form), and building,
// at runtime from a (Schema, Go type) pair, specialized binary and
// Avro-JSON encoders and decoders.
package avro

import (
	"fmt"
	"strings"
)

// Type is an Avro schema type.
type Type string

// Schema type constants.
const (
	Record  Type = "record"
	Ref     Type = "<ref>"
	Enum    Type = "enum"
	Array   Type = "array"
	Map     Type = "map"
	Union   Type = "union"
	Fixed   Type = "fixed"
	String  Type = "string"
	Bytes   Type = "bytes"
	Int     Type = "int"
	Long    Type = "long"
	Float   Type = "float"
	Double  Type = "double"
	Boolean Type = "boolean"
	Null    Type = "null"
)

// LogicalType is an Avro logical type annotation.
type LogicalType string

// Logical type constants. This is the closed set spec.md §3.3 names.
const (
	DecimalLogical   LogicalType = "decimal"
	UUID             LogicalType = "uuid"
	Date             LogicalType = "date"
	TimeMillis       LogicalType = "time-millis"
	TimeMicros       LogicalType = "time-micros"
	TimestampMillis  LogicalType = "timestamp-millis"
	TimestampMicros  LogicalType = "timestamp-micros"
	DurationLogical  LogicalType = "duration"
)

var (
	schemaReserved = []string{
		"doc", "fields", "items", "name", "namespace", "size", "symbols",
		"values", "type", "aliases", "logicalType", "precision", "scale",
	}
	fieldReserved = []string{"default", "doc", "name", "order", "type", "aliases"}
)

// Schema represents an Avro schema. Every schema kind in spec.md §3.1
// implements this interface. Schemas are logically immutable once
// constructed and exposed; record/union children may be shared pointers
// forming cycles (spec.md §3.5), so Schema values must be compared with
// Equal, not ==, and printed with String, which must terminate on cycles.
type Schema interface {
	// Type returns the schema's kind.
	Type() Type
	// String returns the schema's full JSON representation (not the
	// canonical form; see WriteCanonical for that).
	String() string
}

// LogicalSchema represents a logical-type annotation attached to a
// primitive or fixed schema (spec.md §3.3).
type LogicalSchema interface {
	// Type returns the logical type.
	Type() LogicalType
	// String returns the logical type's canonical JSON fragment.
	String() string
}

// LogicalTypeSchema is implemented by schemas that may carry a LogicalSchema.
type LogicalTypeSchema interface {
	// Logical returns the attached logical schema, or nil.
	Logical() LogicalSchema
}

// PropertySchema is implemented by schemas that carry arbitrary
// non-reserved JSON properties.
type PropertySchema interface {
	// Prop returns a custom property by name, or nil if absent.
	Prop(name string) interface{}
}

// NamedSchema is implemented by the three named schema kinds: record,
// enum, and fixed.
type NamedSchema interface {
	Schema
	PropertySchema
	// Name returns the schema's unqualified local name.
	Name() string
	// Namespace returns the schema's namespace, or "" if unqualified.
	Namespace() string
	// FullName returns "namespace.name", or just "name" if unqualified.
	FullName() string
	// Aliases returns the schema's fully-qualified aliases.
	Aliases() []string
}

// name holds the parsed name/namespace/aliases shared by record, enum,
// and fixed schemas (spec.md §3.1's Name).
type name struct {
	local     string
	namespace string
	full      string
	aliases   []string
}

func newName(n, ns string, aliases []string) (name, error) {
	if idx := strings.LastIndexByte(n, '.'); idx > -1 {
		ns = n[:idx]
		n = n[idx+1:]
	}

	full := n
	if ns != "" {
		full = ns + "." + n
	}

	for _, part := range strings.Split(full, ".") {
		if err := validateIdentifier(part); err != nil {
			return name{}, wrapError(InvalidSchema, err, "invalid name part %q in name %q", part, full)
		}
	}

	resolved := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if !strings.Contains(alias, ".") {
			if err := validateIdentifier(alias); err != nil {
				return name{}, wrapError(InvalidSchema, err, "invalid alias %q", alias)
			}
			if ns == "" {
				resolved = append(resolved, alias)
				continue
			}
			resolved = append(resolved, ns+"."+alias)
			continue
		}
		for _, part := range strings.Split(alias, ".") {
			if err := validateIdentifier(part); err != nil {
				return name{}, wrapError(InvalidSchema, err, "invalid alias part %q in alias %q", part, alias)
			}
		}
		resolved = append(resolved, alias)
	}

	return name{local: n, namespace: ns, full: full, aliases: resolved}, nil
}

func (n name) Name() string        { return n.local }
func (n name) Namespace() string   { return n.namespace }
func (n name) FullName() string    { return n.full }
func (n name) Aliases() []string   { return n.aliases }

// properties stores the non-reserved JSON object keys of a schema (§6.1:
// "unknown keys on an object are ignored when reading; the writer never
// emits them" -- we DO retain them and expose them through Prop, but
// neither String nor WriteCanonical emits them).
type properties struct {
	props map[string]interface{}
}

func newProperties(raw map[string]interface{}, reserved []string) properties {
	p := properties{props: make(map[string]interface{})}
	for k, v := range raw {
		if isReserved(reserved, k) {
			continue
		}
		p.props[k] = v
	}
	return p
}

func isReserved(reserved []string, k string) bool {
	for _, r := range reserved {
		if r == k {
			return true
		}
	}
	return false
}

func (p properties) Prop(k string) interface{} {
	if p.props == nil {
		return nil
	}
	return p.props[k]
}

// PrimitiveSchema is a leaf Avro schema: null, boolean, int, long, float,
// double, bytes, or string (spec.md §3.1).
type PrimitiveSchema struct {
	typ     Type
	logical LogicalSchema
}

// NewPrimitiveSchema constructs a primitive schema, optionally with a
// logical-type annotation. The caller is responsible for only attaching
// logical types valid for typ (spec.md §3.2); Parse enforces this when
// reading from JSON.
func NewPrimitiveSchema(typ Type, logical LogicalSchema) *PrimitiveSchema {
	return &PrimitiveSchema{typ: typ, logical: logical}
}

// Type returns the primitive's kind.
func (s *PrimitiveSchema) Type() Type { return s.typ }

// Logical returns the attached logical schema, or nil.
func (s *PrimitiveSchema) Logical() LogicalSchema { return s.logical }

// String returns the schema's JSON representation.
func (s *PrimitiveSchema) String() string {
	if s.logical == nil {
		return `"` + string(s.typ) + `"`
	}
	return `{"type":"` + string(s.typ) + `",` + s.logical.String() + `}`
}

func validateIdentifier(s string) error {
	if s == "" {
		return fmt.Errorf("name must be non-empty")
	}
	for i, r := range s {
		ok := (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || r == '_'
		if !ok && i > 0 {
			ok = r >= '0' && r <= '9'
		}
		if !ok {
			return fmt.Errorf("invalid character %q in identifier %q", r, s)
		}
	}
	return nil
}

func isReservedFieldKey(k string) bool { return isReserved(fieldReserved, k) }

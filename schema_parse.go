package avro

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/go-avro/avro/internal/avrolog"
)

var parseJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse reads an Avro schema from its JSON representation (spec.md §6.1).
func Parse(schemaJSON string) (Schema, error) {
	return ParseWithCache(schemaJSON, "", NewSchemaCache())
}

// MustParse is like Parse but panics on error.
func MustParse(schemaJSON string) Schema {
	s, err := Parse(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// ParseWithCache reads a schema using a caller-supplied name cache and
// starting namespace, so that schemas referring to names registered in a
// previous call can be resolved.
func ParseWithCache(schemaJSON, namespace string, cache *SchemaCache) (Schema, error) {
	var raw interface{}
	if err := parseJSON.Unmarshal([]byte(schemaJSON), &raw); err != nil {
		return nil, wrapError(InvalidSchema, err, "invalid schema JSON")
	}
	return parseType(cache, namespace, raw)
}

// parseType dispatches in the order spec.md §4.5 names: logical-types are
// folded into the primitive/fixed cases below, so the effective order is
// collections → unions → named types → primitives → named-reference.
func parseType(cache *SchemaCache, namespace string, raw interface{}) (Schema, error) {
	switch v := raw.(type) {
	case string:
		return parseTypeName(cache, namespace, v)
	case []interface{}:
		return parseUnion(cache, namespace, v)
	case map[string]interface{}:
		return parseObject(cache, namespace, v)
	default:
		return nil, newError(UnknownSchema, "unrecognized schema element %#v", raw)
	}
}

func parseTypeName(cache *SchemaCache, namespace, n string) (Schema, error) {
	switch Type(n) {
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		return NewPrimitiveSchema(Type(n), nil), nil
	default:
		full := n
		if namespace != "" && !containsDot(n) {
			full = namespace + "." + n
		}
		if s := cache.Get(full); s != nil {
			return NewRefSchema(s), nil
		}
		if s := cache.Get(n); s != nil {
			return NewRefSchema(s), nil
		}
		return nil, newError(UnknownSchema, "unknown schema reference %q", n)
	}
}

func containsDot(s string) bool {
	for _, r := range s {
		if r == '.' {
			return true
		}
	}
	return false
}

func parseUnion(cache *SchemaCache, namespace string, raw []interface{}) (Schema, error) {
	branches := make([]Schema, len(raw))
	for i, r := range raw {
		s, err := parseType(cache, namespace, r)
		if err != nil {
			return nil, err
		}
		branches[i] = s
	}
	return NewUnionSchema(branches)
}

func parseObject(cache *SchemaCache, namespace string, raw map[string]interface{}) (Schema, error) {
	t, _ := raw["type"].(string)
	if t == "" {
		return nil, newError(InvalidSchema, "schema object missing a string \"type\"")
	}

	switch Type(t) {
	case Record:
		return parseRecord(cache, namespace, raw)
	case Enum:
		return parseEnum(cache, namespace, raw)
	case Fixed:
		return parseFixed(cache, namespace, raw)
	case Array:
		items, ok := raw["items"]
		if !ok {
			return nil, newError(InvalidSchema, "array schema missing \"items\"")
		}
		itemSchema, err := parseType(cache, namespace, items)
		if err != nil {
			return nil, err
		}
		return NewArraySchema(itemSchema, raw), nil
	case Map:
		values, ok := raw["values"]
		if !ok {
			return nil, newError(InvalidSchema, "map schema missing \"values\"")
		}
		valSchema, err := parseType(cache, namespace, values)
		if err != nil {
			return nil, err
		}
		return NewMapSchema(valSchema, raw), nil
	case Null, Boolean, Int, Long, Float, Double, Bytes, String:
		logical := parseLogicalType(raw, Type(t))
		return NewPrimitiveSchema(Type(t), logical), nil
	default:
		return nil, newError(UnknownSchema, "unrecognized schema type %q", t)
	}
}

// parseLogicalType matches spec.md §4.5: "logical-type cases match before
// the underlying primitive case; an unknown logical type falls through to
// the primitive case without error." Only decimal carries parameters.
func parseLogicalType(raw map[string]interface{}, underlying Type) LogicalSchema {
	lt, _ := raw["logicalType"].(string)
	if lt == "" {
		return nil
	}
	switch LogicalType(lt) {
	case DecimalLogical:
		if underlying != Bytes && underlying != Fixed {
			return nil
		}
		precision, _ := toInt(raw["precision"])
		scale, _ := toInt(raw["scale"])
		s, err := NewDecimalLogicalSchema(precision, scale)
		if err != nil {
			return nil
		}
		return s
	case UUID:
		if underlying != String {
			return nil
		}
		return NewPrimitiveLogicalSchema(UUID)
	case Date:
		if underlying != Int {
			return nil
		}
		return NewPrimitiveLogicalSchema(Date)
	case TimeMillis:
		if underlying != Int {
			return nil
		}
		return NewPrimitiveLogicalSchema(TimeMillis)
	case TimeMicros:
		if underlying != Long {
			return nil
		}
		return NewPrimitiveLogicalSchema(TimeMicros)
	case TimestampMillis:
		if underlying != Long {
			return nil
		}
		return NewPrimitiveLogicalSchema(TimestampMillis)
	case TimestampMicros:
		if underlying != Long {
			return nil
		}
		return NewPrimitiveLogicalSchema(TimestampMicros)
	default:
		// Unknown logical type (or "duration", which is fixed-only and
		// handled in parseFixed): fall through to the primitive, per spec.
		avrolog.Default.Debug("unrecognized logicalType, falling back to primitive", "logicalType", lt, "underlying", underlying)
		return nil
	}
}

func toInt(v interface{}) (int, bool) {
	f, ok := v.(float64)
	if !ok {
		return 0, false
	}
	return int(f), true
}

func parseAliases(raw map[string]interface{}) []string {
	a, ok := raw["aliases"].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(a))
	for _, v := range a {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func scopedNamespace(raw map[string]interface{}, outer string) (string, string, error) {
	n, _ := raw["name"].(string)
	if n == "" {
		return "", "", newError(InvalidSchema, "named schema missing \"name\"")
	}
	ns, _ := raw["namespace"].(string)
	if ns == "" {
		ns = outer
	}
	return n, ns, nil
}

func parseRecord(cache *SchemaCache, outerNamespace string, raw map[string]interface{}) (Schema, error) {
	n, ns, err := scopedNamespace(raw, outerNamespace)
	if err != nil {
		return nil, err
	}
	doc, _ := raw["doc"].(string)
	rec, err := NewRecordSchema(n, ns, parseAliases(raw), doc, raw)
	if err != nil {
		return nil, err
	}
	if cache.Get(rec.FullName()) != nil {
		return nil, newError(InvalidSchema, "duplicate schema name %q", rec.FullName())
	}
	// Register before parsing fields: this is what makes a field that
	// refers back to this record resolve to a RefSchema instead of
	// recursing forever.
	cache.Add(rec)

	rawFields, _ := raw["fields"].([]interface{})
	fields := make([]*Field, 0, len(rawFields))
	for _, rf := range rawFields {
		fm, ok := rf.(map[string]interface{})
		if !ok {
			return nil, newError(InvalidSchema, "record %q has a non-object field entry", rec.FullName())
		}
		f, err := parseField(cache, rec.Namespace(), fm)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	rec.SetFields(fields)
	return rec, nil
}

func parseField(cache *SchemaCache, recordNamespace string, raw map[string]interface{}) (*Field, error) {
	name, _ := raw["name"].(string)
	if name == "" {
		return nil, newError(InvalidSchema, "field missing \"name\"")
	}
	typeRaw, ok := raw["type"]
	if !ok {
		return nil, newError(InvalidSchema, "field %q missing \"type\"", name)
	}
	typ, err := parseType(cache, recordNamespace, typeRaw)
	if err != nil {
		return nil, err
	}
	doc, _ := raw["doc"].(string)
	def, hasDef := raw["default"]
	return NewField(name, typ, parseAliases(raw), doc, hasDef, def, raw)
}

func parseEnum(cache *SchemaCache, outerNamespace string, raw map[string]interface{}) (Schema, error) {
	n, ns, err := scopedNamespace(raw, outerNamespace)
	if err != nil {
		return nil, err
	}
	rawSymbols, _ := raw["symbols"].([]interface{})
	symbols := make([]string, 0, len(rawSymbols))
	for _, s := range rawSymbols {
		if str, ok := s.(string); ok {
			symbols = append(symbols, str)
		}
	}
	def, _ := raw["default"].(string)
	doc, _ := raw["doc"].(string)
	en, err := NewEnumSchema(n, ns, symbols, parseAliases(raw), def, doc, raw)
	if err != nil {
		return nil, err
	}
	if cache.Get(en.FullName()) != nil {
		return nil, newError(InvalidSchema, "duplicate schema name %q", en.FullName())
	}
	cache.Add(en)
	return en, nil
}

func parseFixed(cache *SchemaCache, outerNamespace string, raw map[string]interface{}) (Schema, error) {
	n, ns, err := scopedNamespace(raw, outerNamespace)
	if err != nil {
		return nil, err
	}
	size, ok := toInt(raw["size"])
	if !ok {
		return nil, newError(InvalidSchema, "fixed %q missing integer \"size\"", n)
	}

	var logical LogicalSchema
	if lt, _ := raw["logicalType"].(string); lt == string(DurationLogical) {
		if size == 12 {
			logical = NewPrimitiveLogicalSchema(DurationLogical)
		}
	} else {
		logical = parseLogicalType(raw, Fixed)
	}

	fx, err := NewFixedSchema(n, ns, size, parseAliases(raw), logical, raw)
	if err != nil {
		return nil, err
	}
	if cache.Get(fx.FullName()) != nil {
		return nil, newError(InvalidSchema, "duplicate schema name %q", fx.FullName())
	}
	cache.Add(fx)
	return fx, nil
}

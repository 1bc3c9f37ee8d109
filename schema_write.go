package avro

import (
	"strconv"
	"strings"
)

// WriteCanonical renders s in Avro Parsing Canonical Form (spec.md §4.5,
// §8.1 "Canonical minimality"): doc, aliases, default, logicalType, and
// unknown attributes are dropped; object keys are ordered
// name, type, fields|symbols|items|values|size; namespace is merged into
// name; each named schema is written in full only at its first
// occurrence and by full name thereafter.
func WriteCanonical(s Schema) string {
	var b strings.Builder
	writeCanonical(&b, s, make(map[string]bool))
	return b.String()
}

func writeCanonical(b *strings.Builder, s Schema, seen map[string]bool) {
	s = resolveRef(s)
	switch v := s.(type) {
	case *PrimitiveSchema:
		b.WriteByte('"')
		b.WriteString(string(v.Type()))
		b.WriteByte('"')
	case *ArraySchema:
		b.WriteString(`{"type":"array","items":`)
		writeCanonical(b, v.Items(), seen)
		b.WriteByte('}')
	case *MapSchema:
		b.WriteString(`{"type":"map","values":`)
		writeCanonical(b, v.Values(), seen)
		b.WriteByte('}')
	case *UnionSchema:
		b.WriteByte('[')
		for i, branch := range v.Branches() {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, branch, seen)
		}
		b.WriteByte(']')
	case *FixedSchema:
		if seen[v.FullName()] {
			writeCanonicalRef(b, v.FullName())
			return
		}
		seen[v.FullName()] = true
		b.WriteString(`{"name":"`)
		b.WriteString(v.FullName())
		b.WriteString(`","type":"fixed","size":`)
		b.WriteString(strconv.Itoa(v.Size()))
		b.WriteByte('}')
	case *EnumSchema:
		if seen[v.FullName()] {
			writeCanonicalRef(b, v.FullName())
			return
		}
		seen[v.FullName()] = true
		b.WriteString(`{"name":"`)
		b.WriteString(v.FullName())
		b.WriteString(`","type":"enum","symbols":[`)
		for i, sym := range v.Symbols() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(sym)
			b.WriteByte('"')
		}
		b.WriteString("]}")
	case *RecordSchema:
		if seen[v.FullName()] {
			writeCanonicalRef(b, v.FullName())
			return
		}
		seen[v.FullName()] = true
		b.WriteString(`{"name":"`)
		b.WriteString(v.FullName())
		b.WriteString(`","type":"record","fields":[`)
		for i, f := range v.Fields() {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(`{"name":"`)
			b.WriteString(f.Name())
			b.WriteString(`","type":`)
			writeCanonical(b, f.Type(), seen)
			b.WriteByte('}')
		}
		b.WriteString("]}")
	}
}

func writeCanonicalRef(b *strings.Builder, fullName string) {
	b.WriteByte('"')
	b.WriteString(fullName)
	b.WriteByte('"')
}

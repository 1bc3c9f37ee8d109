package avro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePrimitiveSchemas(t *testing.T) {
	for raw, want := range map[string]Type{
		`"string"`:  String,
		`"int"`:     Int,
		`"long"`:    Long,
		`"boolean"`: Boolean,
		`"float"`:   Float,
		`"double"`:  Double,
		`"bytes"`:   Bytes,
		`"null"`:    Null,
	} {
		s, err := Parse(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, s.Type(), raw)
	}
}

func TestParseArraySchema(t *testing.T) {
	s, err := Parse(`{"type":"array", "items": "string"}`)
	require.NoError(t, err)
	arr, ok := s.(*ArraySchema)
	require.True(t, ok)
	require.Equal(t, String, arr.Items().Type())

	s, err = Parse(`{"type":"array", "items": {"type":"array", "items": "long"}}`)
	require.NoError(t, err)
	arr = s.(*ArraySchema)
	inner, ok := arr.Items().(*ArraySchema)
	require.True(t, ok)
	require.Equal(t, Long, inner.Items().Type())
}

func TestParseMapSchema(t *testing.T) {
	s, err := Parse(`{"type":"map", "values": ["int", "string"]}`)
	require.NoError(t, err)
	m, ok := s.(*MapSchema)
	require.True(t, ok)
	u, ok := m.Values().(*UnionSchema)
	require.True(t, ok)
	require.Equal(t, Int, u.Branches()[0].Type())
	require.Equal(t, String, u.Branches()[1].Type())
}

func TestParseRecordSchema(t *testing.T) {
	s, err := Parse(`{"namespace": "scalago", "type": "record", "name": "PingPong", "fields": [
		{"name": "counter", "type": "long"},
		{"name": "name", "type": "string"}
	]}`)
	require.NoError(t, err)
	rec := s.(*RecordSchema)
	require.Equal(t, "scalago.PingPong", rec.FullName())
	require.Equal(t, "counter", rec.Fields()[0].Name())
	require.Equal(t, Long, rec.Fields()[0].Type().Type())
	require.Equal(t, "name", rec.Fields()[1].Name())
	require.Equal(t, String, rec.Fields()[1].Type().Type())
}

func TestParseEnumSchema(t *testing.T) {
	s, err := Parse(`{"type":"enum", "name":"foo", "symbols":["A", "B", "C", "D"]}`)
	require.NoError(t, err)
	en := s.(*EnumSchema)
	require.Equal(t, "foo", en.FullName())
	require.Equal(t, []string{"A", "B", "C", "D"}, en.Symbols())
}

func TestParseUnionSchema(t *testing.T) {
	s, err := Parse(`["null", "string"]`)
	require.NoError(t, err)
	u := s.(*UnionSchema)
	require.Equal(t, Null, u.Branches()[0].Type())
	require.Equal(t, String, u.Branches()[1].Type())
	_, _, nullable := u.Nullable()
	require.True(t, nullable)
}

func TestUnionRejectsTwoNullBranches(t *testing.T) {
	_, err := Parse(`["null", "null"]`)
	require.Error(t, err)
}

func TestUnionRejectsNestedUnion(t *testing.T) {
	_, err := Parse(`[["null", "string"], "int"]`)
	require.Error(t, err)
}

func TestUnionRejectsIndistinguishableBranches(t *testing.T) {
	_, err := Parse(`[{"type":"array","items":"int"}, {"type":"array","items":"string"}]`)
	require.Error(t, err)
}

func TestParseFixedSchema(t *testing.T) {
	s, err := Parse(`{"type": "fixed", "size": 16, "name": "md5"}`)
	require.NoError(t, err)
	fx := s.(*FixedSchema)
	require.Equal(t, 16, fx.Size())
	require.Equal(t, "md5", fx.FullName())
}

func TestFixedRejectsNegativeSize(t *testing.T) {
	_, err := Parse(`{"type": "fixed", "size": -1, "name": "bad"}`)
	require.Error(t, err)
}

func TestRecordCustomProps(t *testing.T) {
	s, err := Parse(`{"type": "record", "name": "TestRecord", "hello": "world", "fields": [
		{"name": "longRecordField", "type": "long"}
	]}`)
	require.NoError(t, err)
	value := s.(*RecordSchema).Prop("hello")
	require.NotNil(t, value)
	require.Equal(t, "world", value)
}

func TestDuplicateSchemaNameRejected(t *testing.T) {
	cache := NewSchemaCache()
	_, err := ParseWithCache(`{"type":"record","name":"Dup","fields":[{"name":"a","type":"long"}]}`, "", cache)
	require.NoError(t, err)
	_, err = ParseWithCache(`{"type":"record","name":"Dup","fields":[{"name":"b","type":"string"}]}`, "", cache)
	require.Error(t, err)
}

func TestEnumDefaultMustBeASymbol(t *testing.T) {
	_, err := Parse(`{"type":"enum","name":"foo","symbols":["A","B"],"default":"C"}`)
	require.Error(t, err)
}

func TestRecordFieldDefaultValidatedAgainstType(t *testing.T) {
	_, err := Parse(`{"type":"record","name":"R","fields":[
		{"name":"n","type":"int","default":"not a number"}
	]}`)
	require.Error(t, err)
}

package avro

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaEqualIgnoresCosmetics(t *testing.T) {
	a := MustParse(`{"type": "record", "name": "TestRecord", "namespace": "xyz", "doc": "a doc", "fields": [
		{"name": "field1", "type": "long"},
		{"name": "field2", "type": "string", "doc": "hello world"}
	]}`)

	b := MustParse(`{"type": "record", "name": "TestRecord", "namespace": "xyz", "fields": [
		{"name": "field1", "type": "long"},
		{"name": "field2", "type": "string", "doc": "a different doc entirely"}
	]}`)

	require.True(t, Equal(a, b), "doc strings must not affect schema equality")
}

func TestSchemaEqualDistinguishesStructure(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"record-extra-field", `{"type":"record","name":"R","fields":[{"name":"a","type":"long"},{"name":"b","type":"string"}]}`},
		{"enum-reordered", `{"type":"enum","name":"foo","symbols":["D","C","B","A"]}`},
		{"fixed-different-size", `{"type":"fixed","size":32,"name":"md5"}`},
		{"array-of-long", `{"type":"array","items":"long"}`},
		{"map-of-double", `{"type":"map","values":"double"}`},
		{"union-reordered", `["string","null"]`},
		{"union-three-branch", `["string","int","float"]`},
	}

	baseline := MustParse(`{"type":"record","name":"R","fields":[{"name":"a","type":"long"}]}`)
	for _, c := range cases {
		s := MustParse(c.raw)
		require.False(t, Equal(baseline, s), "case %s unexpectedly equal to baseline", c.name)
	}
}

func TestWriteCanonicalStripsNonEssentialAttributes(t *testing.T) {
	s := MustParse(`{"type":"enum","name":"foo","doc":"hello","symbols":["A","B","C","D"]}`)
	got := WriteCanonical(s)
	require.Equal(t, `{"name":"foo","type":"enum","symbols":["A","B","C","D"]}`, got)
}

func TestWriteCanonicalRecordNamespaceMerge(t *testing.T) {
	s := MustParse(`{"type":"record","name":"Rec","namespace":"com.example","fields":[
		{"name":"id","type":"long"}
	]}`)
	got := WriteCanonical(s)
	require.Equal(t, `{"name":"com.example.Rec","type":"record","fields":[{"name":"id","type":"long"}]}`, got)
}

func TestWriteCanonicalIsIdempotent(t *testing.T) {
	s := MustParse(`{"type":"record","name":"Rec","namespace":"com.example","fields":[
		{"name":"id","type":"long"},
		{"name":"tag","type":["null","string"],"default":null}
	]}`)
	first := WriteCanonical(s)
	reparsed := MustParse(first)
	second := WriteCanonical(reparsed)
	require.Equal(t, first, second)
}

func TestSchemaCacheResolvesByNameAndAlias(t *testing.T) {
	cache := NewSchemaCache()
	raw := `{"type": "record", "name": "TestRecord", "namespace": "com.github.elodina", "aliases": ["OldRecord"], "fields": [
		{"name": "longRecordField", "type": "long"}
	]}`
	s, err := ParseWithCache(raw, "", cache)
	require.NoError(t, err)
	require.Equal(t, Record, s.Type())

	require.NotNil(t, cache.Get("com.github.elodina.TestRecord"))
	require.NotNil(t, cache.Get("com.github.elodina.OldRecord"))
}

func TestRecursiveRecordSchemaParses(t *testing.T) {
	raw := `{"type": "record", "name": "Node", "fields": [
		{"name": "value", "type": "long"},
		{"name": "children", "type": {"type": "array", "items": "Node"}}
	]}`
	s, err := Parse(raw)
	require.NoError(t, err)

	rec, ok := s.(*RecordSchema)
	require.True(t, ok)

	childArray, ok := rec.Fields()[1].Type().(*ArraySchema)
	require.True(t, ok)

	ref, ok := childArray.Items().(*RefSchema)
	require.True(t, ok)
	require.Same(t, rec, ref.Schema())
}

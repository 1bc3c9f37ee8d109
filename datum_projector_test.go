package avro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundTripGeneric(t *testing.T, record *GenericRecord) *GenericRecord {
	t.Helper()
	var buf bytes.Buffer
	w := NewGenericDatumWriter(record.Schema())
	require.NoError(t, w.Write(record, NewBinaryEncoder(&buf)))

	r := NewGenericDatumReader(record.Schema())
	decoded, err := r.Read(NewBinaryDecoder(&buf))
	require.NoError(t, err)
	return decoded
}

func roundTripSpecific(t *testing.T, record interface{}, schema Schema, target interface{}) {
	t.Helper()
	var buf bytes.Buffer
	w := NewSpecificDatumWriter(schema)
	require.NoError(t, w.Write(record, NewBinaryEncoder(&buf)))

	r := NewSpecificDatumReader(schema)
	require.NoError(t, r.Read(target, NewBinaryDecoder(&buf)))
}

func TestUnionAsOption(t *testing.T) {
	nestedSchema := MustParse(`{
					"name": "Nest",
					"type": "record",
					"fields": [
						{ "name": "id", "type": "int" }
					]
				}`)

	schema := MustParse(`{
	    "type": "record",
	    "name": "Rec",
	    "fields": [
	        { "name": "opt_bool", "type": ["null", "boolean"] },
	        { "name": "opt_int", "type": ["null", "int"] },
	        { "name": "opt_long", "type": ["null", "long"] },
	        { "name": "opt_float", "type": ["null", "float"] },
			{ "name": "opt_double", "type": ["null", "double"] },
	        { "name": "opt_bytes", "type": ["null", "bytes"] },
	        { "name": "opt_string", "type": ["null", "string"] },
			{ "name": "opt_fixed", "type": ["null", { "name": "fixed5", "type": "fixed", "size": 5 } ] },
			{ "name": "opt_array", "type": ["null", { "type": "array", "items": "string"}] },
			{ "name": "opt_map", "type": ["null", { "type": "map", "values": "string"}] },
			{ "name": "opt_record", "type": [ "null", {
					"name": "Nest",
					"type": "record",
					"fields": [
						{ "name": "id", "type": "int" }
					]
				}
			] }
	    ]
	}`)

	emptyGenericRecord := NewGenericRecord(schema)
	for _, name := range []string{
		"opt_bool", "opt_int", "opt_long", "opt_float", "opt_double",
		"opt_bytes", "opt_string", "opt_fixed", "opt_array", "opt_map", "opt_record",
	} {
		emptyGenericRecord.Set(name, nil)
	}
	decoded := roundTripGeneric(t, emptyGenericRecord)
	require.Equal(t, emptyGenericRecord.String(), decoded.String())

	genericRecord := NewGenericRecord(schema)
	optBool := true
	genericRecord.Set("opt_bool", &optBool)
	optInt := int32(1)
	genericRecord.Set("opt_int", &optInt)
	optLong := int64(1)
	genericRecord.Set("opt_long", &optLong)
	optFloat := float32(1)
	genericRecord.Set("opt_float", &optFloat)
	optDouble := float64(1)
	genericRecord.Set("opt_double", &optDouble)
	optBytes := []byte("hello")
	genericRecord.Set("opt_bytes", &optBytes)
	optString := "hello"
	genericRecord.Set("opt_string", &optString)
	optFixed := []byte("12345")
	genericRecord.Set("opt_fixed", &optFixed)
	optArray := []string{"hello", "world"}
	genericRecord.Set("opt_array", &optArray)
	optMap := map[string]string{"hello": "world"}
	genericRecord.Set("opt_map", &optMap)
	optNested := NewGenericRecord(nestedSchema)
	optNested.Set("id", int32(1))
	genericRecord.Set("opt_record", optNested)

	decoded = roundTripGeneric(t, genericRecord)
	require.Equal(t, genericRecord.String(), decoded.String())

	type Nest struct {
		Id int32
	}

	type Rec struct {
		OptBool   *bool   `avro:"opt_bool"`
		OptInt    *int32  `avro:"opt_int"`
		OptLong   *int64  `avro:"opt_long"`
		OptFloat  *float32 `avro:"opt_float"`
		OptDouble *float64 `avro:"opt_double"`
		OptBytes  *[]byte `avro:"opt_bytes"`
		OptString *string `avro:"opt_string"`
		OptFixed  *[]byte `avro:"opt_fixed"`
		OptArray  *[]string `avro:"opt_array"`
		OptMap    *map[string]string `avro:"opt_map"`
		OptRecord *Nest   `avro:"opt_record"`
	}

	emptySpecificRecord := &Rec{}
	var emptyDecoded Rec
	roundTripSpecific(t, emptySpecificRecord, schema, &emptyDecoded)
	require.Equal(t, *emptySpecificRecord, emptyDecoded)

	specificRecord := &Rec{
		OptBool:   &optBool,
		OptInt:    &optInt,
		OptLong:   &optLong,
		OptFloat:  &optFloat,
		OptDouble: &optDouble,
		OptBytes:  &optBytes,
		OptString: &optString,
		OptFixed:  &optFixed,
		OptArray:  &optArray,
		OptMap:    &optMap,
		OptRecord: &Nest{Id: 1},
	}
	var specificDecoded Rec
	roundTripSpecific(t, specificRecord, schema, &specificDecoded)
	require.Equal(t, *specificRecord, specificDecoded)
}

func TestDatumProjectorGeneric(t *testing.T) {
	schemaV1 := MustParse(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "deleted", "type": "int" },
						{ "name": "sum", "type": "int" },
						{ "name": "longToDouble", "type": "long" },
						{ "name": "id", "type": "bytes" }
					]
				}`)

	// fields are reordered; id is renamed to key and promoted to string;
	// added is a new field with a default.
	schemaV2 := MustParse(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "key", "type": "string", "aliases": ["id"] },
						{ "name": "sum", "type": "long" },
						{ "name": "longToDouble", "type": "double" },
						{ "name": "added", "type": { "type": "array", "items": "long" }, "default": [1,2,3] }
					]
				}`)

	genRecV1 := NewGenericRecord(schemaV1)
	genRecV1.Set("deleted", int32(5))
	genRecV1.Set("sum", int32(99))
	genRecV1.Set("id", []byte("key1"))
	genRecV1.Set("longToDouble", int64(12345))

	var buf bytes.Buffer
	w := NewGenericDatumWriter(schemaV1)
	require.NoError(t, w.Write(genRecV1, NewBinaryEncoder(&buf)))

	proj, err := NewDatumProjector(schemaV2, schemaV1)
	require.NoError(t, err)

	values := make(map[string]interface{})
	require.NoError(t, proj.Read(&values, NewBinaryReader(buf.Bytes())))

	require.Equal(t, "key1", values["key"])
	require.Equal(t, int64(99), values["sum"])
	require.Len(t, values["added"], 3)
}

func TestDatumProjectorSpecific(t *testing.T) {
	schemaV1 := MustParse(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "deleted", "type": "int" },
						{ "name": "sum", "type": "int" },
						{ "name": "longToDouble", "type": "long" },
						{ "name": "id", "type": "bytes" }
					]
				}`)

	schemaV2 := MustParse(`{
					"name": "Rec",
					"type": "record",
					"fields": [
						{ "name": "key", "type": "string", "aliases": ["id"] },
						{ "name": "sum", "type": "long" },
						{ "name": "longToDouble", "type": "double" },
						{ "name": "added", "type": { "type": "array", "items": "long" }, "default": [1,2,3] }
					]
				}`)

	type RecV1 struct {
		Deleted      int32
		Id           []byte
		Sum          int32
		LongToDouble int64
	}
	type RecV2 struct {
		Key          string
		Sum          int64
		LongToDouble float64
		Added        []int64
	}

	recV1 := &RecV1{Deleted: 500, Id: []byte("key1"), Sum: 1000, LongToDouble: 12345}
	var buf bytes.Buffer
	w := NewSpecificDatumWriter(schemaV1)
	require.NoError(t, w.Write(recV1, NewBinaryEncoder(&buf)))

	proj, err := NewDatumProjector(schemaV2, schemaV1)
	require.NoError(t, err)

	recV2 := new(RecV2)
	require.NoError(t, proj.Read(recV2, NewBinaryReader(buf.Bytes())))

	require.Equal(t, string(recV1.Id), recV2.Key)
	require.Equal(t, int64(recV1.Sum), recV2.Sum)
	require.Equal(t, float64(recV1.LongToDouble), recV2.LongToDouble)
	require.Len(t, recV2.Added, 3)
}

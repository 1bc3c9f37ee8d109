package avro

import (
	"testing"
)

// complexFuzzSchema exercises array, map, enum, union, fixed, and nested
// record cases in one shape, the way the corpus-generation schema used to
// before gofuzz was replaced by the standard library's fuzzing support.
var complexFuzzSchema = MustParse(`{
    "type": "record",
    "namespace": "example.avro",
    "name": "Complex",
    "fields": [
        {"name": "stringArray", "type": {"type": "array", "items": "string"}},
        {"name": "longArray", "type": {"type": "array", "items": "long"}},
        {"name": "enumField", "type": {"type": "enum", "name": "foo", "symbols": ["A", "B", "C", "D"]}},
        {"name": "mapOfInts", "type": {"type": "map", "values": "int"}},
        {"name": "unionField", "type": ["null", "string", "boolean"]},
        {"name": "fixedField", "type": {"type": "fixed", "size": 16, "name": "md5"}},
        {"name": "recordField", "type": ["null", {
            "type": "record",
            "name": "TestRecord",
            "fields": [
                {"name": "longRecordField", "type": "long"},
                {"name": "stringRecordField", "type": "string"},
                {"name": "intRecordField", "type": "int"},
                {"name": "floatRecordField", "type": "float"}
            ]
        }]},
        {"name": "mapOfRecord", "type": {"type": "map", "values": "TestRecord"}}
    ]
}`)

type fuzzTestRecord struct {
	LongRecordField   int64
	StringRecordField string
	IntRecordField    int32
	FloatRecordField  float32
}

type fuzzComplex struct {
	StringArray []string
	LongArray   []int64
	EnumField   string
	MapOfInts   map[string]int32
	UnionField  UnionValue
	FixedField  []byte
	RecordField *fuzzTestRecord
	MapOfRecord map[string]*fuzzTestRecord
}

// FuzzUnmarshalComplex feeds arbitrary bytes to Unmarshal against a schema
// with every collection/union/fixed/nested-record case present. Decoding
// corrupt input must return an error, never panic.
func FuzzUnmarshalComplex(f *testing.F) {
	codec := NewCodec(complexFuzzSchema)

	seed := &fuzzComplex{
		StringArray: []string{"abc", "def", "ghi", "jkl"},
		LongArray:   []int64{978, -1},
		EnumField:   "D",
		MapOfInts:   map[string]int32{"aaa": 485},
		UnionField:  UnionValue{BranchKey: "string", Value: "AAAAAAAAAABCDEF"},
		FixedField:  []byte("0123456789abcdef"),
		RecordField: &fuzzTestRecord{LongRecordField: 1, StringRecordField: "x", IntRecordField: 2, FloatRecordField: 1.5},
		MapOfRecord: map[string]*fuzzTestRecord{},
	}
	b, err := codec.Marshal(seed)
	if err != nil {
		f.Fatalf("seed marshal: %v", err)
	}
	f.Add(b)
	f.Add([]byte{})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		var dest fuzzComplex
		_ = codec.Unmarshal(data, &dest)

		var generic map[string]interface{}
		_ = codec.Unmarshal(data, &generic)
	})
}

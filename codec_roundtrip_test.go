package avro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

// spec.md §8.1 "Round-trip" and "Byte stability" exercised across the
// primitive/array/map/enum/fixed shapes a record can be built from.
func TestCodecMarshalRoundTripPrimitives(t *testing.T) {
	cases := []struct {
		name   string
		schema string
		value  interface{}
		target interface{}
	}{
		{"boolean", `"boolean"`, true, new(bool)},
		{"int", `"int"`, int32(-42), new(int32)},
		{"long", `"long"`, int64(1 << 40), new(int64)},
		{"float", `"float"`, float32(3.5), new(float32)},
		{"double", `"double"`, float64(2.71828), new(float64)},
		{"string", `"string"`, "hello, avro", new(string)},
		{"bytes", `"bytes"`, []byte{0x01, 0x02, 0xff}, new([]byte)},
		{"array", `{"type":"array","items":"string"}`, []string{"a", "b", "c"}, new([]string)},
		{"map", `{"type":"map","values":"long"}`, map[string]int64{"x": 1, "y": 2}, new(map[string]int64)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			schema := MustParse(c.schema)
			codec := NewCodec(schema)

			data, err := codec.Marshal(c.value)
			require.NoError(t, err)

			data2, err := codec.Marshal(c.value)
			require.NoError(t, err)
			require.Equal(t, data, data2, "byte stability: two encodes of the same value must match")

			require.NoError(t, codec.Unmarshal(data, c.target))
			got := derefAny(c.target)
			require.Equal(t, c.value, got)
		})
	}
}

func derefAny(v interface{}) interface{} {
	switch p := v.(type) {
	case *bool:
		return *p
	case *int32:
		return *p
	case *int64:
		return *p
	case *float32:
		return *p
	case *float64:
		return *p
	case *string:
		return *p
	case *[]byte:
		return *p
	case *[]string:
		return *p
	case *map[string]int64:
		return *p
	}
	panic("unhandled type in derefAny")
}

func TestCodecFixedAndEnumRoundTrip(t *testing.T) {
	schema := MustParse(`{"type":"record","name":"Rec","fields":[
		{"name":"id","type":{"type":"fixed","name":"md5","size":4}},
		{"name":"color","type":{"type":"enum","name":"Color","symbols":["RED","GREEN","BLUE"]}}
	]}`)

	type Rec struct {
		Id    [4]byte
		Color string
	}

	codec := NewCodec(schema)
	in := &Rec{Id: [4]byte{1, 2, 3, 4}, Color: "GREEN"}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out Rec
	require.NoError(t, codec.Unmarshal(data, &out))
	require.Equal(t, *in, out)
}

// spec.md §8.2 scenario 4: a record with a cycle round-trips through a
// four-level tree with two children per node, and each child list emits
// a single positive-count block followed by the zero terminator.
type cyclicNode struct {
	Value    int32
	Children []cyclicNode
}

func buildCyclicTree(depth int) cyclicNode {
	n := cyclicNode{Value: int32(depth), Children: []cyclicNode{}}
	if depth <= 0 {
		return n
	}
	n.Children = []cyclicNode{buildCyclicTree(depth - 1), buildCyclicTree(depth - 1)}
	return n
}

func TestRecordWithCycleRoundTrip(t *testing.T) {
	schema := MustParse(`{"type":"record","name":"Node","fields":[
		{"name":"value","type":"int"},
		{"name":"children","type":{"type":"array","items":"Node"}}
	]}`)

	tree := buildCyclicTree(4)
	codec := NewCodec(schema)

	data, err := codec.Marshal(&tree)
	require.NoError(t, err)

	var out cyclicNode
	require.NoError(t, codec.Unmarshal(data, &out))
	require.Equal(t, tree, out)

	// Each non-leaf node's children block is [count=2, item, item, 0].
	// Leaf nodes (depth 0) have no children, so their block is just [0].
	require.True(t, bytes.Contains(data, []byte{0x00}), "expected at least one block terminator")
}

// spec.md §8.2 scenario 5: union [null, int].
func TestUnionNullIntEncoding(t *testing.T) {
	schema := MustParse(`["null","int"]`)
	codec := NewCodec(schema)

	var nilInt *int32
	data, err := codec.Marshal(nilInt)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, data)

	n := int32(2)
	data, err = codec.Marshal(&n)
	require.NoError(t, err)
	require.Equal(t, []byte{0x02, 0x04}, data)

	var decodedNull *int32
	require.NoError(t, codec.Unmarshal([]byte{0x00}, &decodedNull))
	require.Nil(t, decodedNull)

	var decodedVal *int32
	require.NoError(t, codec.Unmarshal([]byte{0x02, 0x04}, &decodedVal))
	require.NotNil(t, decodedVal)
	require.Equal(t, int32(2), *decodedVal)
}

// spec.md §8.2 scenario 6: a host type that omits a field with a
// declared default still encodes correctly, and the missing-field skip
// mechanism consumes the bytes of a field absent from a narrower host
// type on decode.
func TestRecordMissingFieldDefaultAndSkip(t *testing.T) {
	schema := MustParse(`{"type":"record","name":"Rec","fields":[
		{"name":"first","type":"int"},
		{"name":"second","type":["null","string"],"default":null},
		{"name":"third","type":"int"}
	]}`)

	type narrowRec struct {
		First int32
		Third int32
	}

	codec := NewCodec(schema)
	data, err := codec.Marshal(&narrowRec{First: 1, Third: 3})
	require.NoError(t, err)

	var back narrowRec
	require.NoError(t, codec.Unmarshal(data, &back))
	require.Equal(t, narrowRec{First: 1, Third: 3}, back)

	gr := NewGenericDatumReader(schema)
	rec, err := gr.Read(NewBinaryDecoder(bytes.NewReader(data)))
	require.NoError(t, err)
	require.Equal(t, int32(1), rec.Get("first"))
	require.Nil(t, rec.Get("second"))
	require.Equal(t, int32(3), rec.Get("third"))
}

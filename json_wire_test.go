package avro

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// spec.md §6.3: primitives encode to their natural JSON representation.
func TestCodecMarshalAvroJSONPrimitives(t *testing.T) {
	cases := []struct {
		name   string
		schema string
		value  interface{}
		want   string
		target interface{}
	}{
		{"boolean", `"boolean"`, true, `true`, new(bool)},
		{"int", `"int"`, int32(-42), `-42`, new(int32)},
		{"long", `"long"`, int64(1 << 40), `1099511627776`, new(int64)},
		{"string", `"string"`, "hello", `"hello"`, new(string)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			codec := NewCodec(MustParse(c.schema))
			data, err := codec.MarshalAvroJSON(c.value)
			require.NoError(t, err)
			require.JSONEq(t, c.want, string(data))

			require.NoError(t, codec.UnmarshalAvroJSON(data, c.target))
			got := derefAny(c.target)
			require.Equal(t, c.value, got)
		})
	}
}

// spec.md §6.3: bytes values encode as a string of one \uNNNN escape per
// byte, not as base64 or a JSON array of numbers.
func TestCodecMarshalAvroJSONBytesEscaping(t *testing.T) {
	codec := NewCodec(MustParse(`"bytes"`))
	data, err := codec.MarshalAvroJSON([]byte{0x00, 0x41, 0xff})
	require.NoError(t, err)

	var want string
	want += `"`
	for _, b := range []byte{0x00, 0x41, 0xff} {
		want += string('\\') + string('u') + "00" + fmt.Sprintf("%02x", b)
	}
	want += `"`
	require.Equal(t, want, string(data))

	var out []byte
	require.NoError(t, codec.UnmarshalAvroJSON(data, &out))
	require.Equal(t, []byte{0x00, 0x41, 0xff}, out)
}

// spec.md §6.3: records encode as JSON objects keyed by field name.
func TestCodecMarshalAvroJSONRecordRoundTrip(t *testing.T) {
	schema := MustParse(`{"type":"record","name":"Point","fields":[
		{"name":"x","type":"int"},
		{"name":"y","type":"int"}
	]}`)

	type Point struct {
		X int32
		Y int32
	}

	codec := NewCodec(schema)
	in := &Point{X: 3, Y: -7}
	data, err := codec.MarshalAvroJSON(in)
	require.NoError(t, err)
	require.JSONEq(t, `{"x":3,"y":-7}`, string(data))

	var out Point
	require.NoError(t, codec.UnmarshalAvroJSON(data, &out))
	require.Equal(t, *in, out)
}

// spec.md §6.3: a nullable union ([null,T]) encodes as a bare null or a
// bare value, with no branch wrapper.
func TestCodecMarshalAvroJSONNullableUnion(t *testing.T) {
	schema := MustParse(`["null","int"]`)
	codec := NewCodec(schema)

	var nilInt *int32
	data, err := codec.MarshalAvroJSON(nilInt)
	require.NoError(t, err)
	require.JSONEq(t, `null`, string(data))

	n := int32(9)
	data, err = codec.MarshalAvroJSON(&n)
	require.NoError(t, err)
	require.JSONEq(t, `9`, string(data))

	var decodedNull *int32
	require.NoError(t, codec.UnmarshalAvroJSON([]byte(`null`), &decodedNull))
	require.Nil(t, decodedNull)

	var decodedVal *int32
	require.NoError(t, codec.UnmarshalAvroJSON([]byte(`9`), &decodedVal))
	require.NotNil(t, decodedVal)
	require.Equal(t, int32(9), *decodedVal)
}

// spec.md §6.3: a non-nullable union wraps its value as
// {"<branchName>": value}.
func TestCodecMarshalAvroJSONUnionWrapper(t *testing.T) {
	schema := MustParse(`["string","int"]`)
	codec := NewCodec(schema)

	data, err := codec.MarshalAvroJSON(UnionValue{BranchKey: "int", Value: int32(5)})
	require.NoError(t, err)
	require.JSONEq(t, `{"int":5}`, string(data))

	var out UnionValue
	require.NoError(t, codec.UnmarshalAvroJSON(data, &out))
	require.Equal(t, "int", out.BranchKey)
	require.Equal(t, int32(5), out.Value)

	data, err = codec.MarshalAvroJSON(UnionValue{BranchKey: "string", Value: "hi"})
	require.NoError(t, err)
	require.JSONEq(t, `{"string":"hi"}`, string(data))
}

package avro

import (
	"math/big"

	jsoniter "github.com/json-iterator/go"
)

// JSONWriter is the output sink for the Avro JSON encoding (spec.md
// §6.3), built on jsoniter's streaming writer.
type JSONWriter struct {
	stream *jsoniter.Stream
}

// NewJSONWriter constructs a writer around a fresh jsoniter stream.
func NewJSONWriter() *JSONWriter {
	return &JSONWriter{stream: jsoniter.ConfigDefault.BorrowStream(nil)}
}

// Bytes returns the accumulated JSON output.
func (w *JSONWriter) Bytes() []byte { return w.stream.Buffer() }

// WriteNull writes a JSON null.
func (w *JSONWriter) WriteNull() { w.stream.WriteNil() }

// WriteBool writes a JSON boolean.
func (w *JSONWriter) WriteBool(v bool) { w.stream.WriteBool(v) }

// WriteInt writes a JSON number for a 32-bit integer.
func (w *JSONWriter) WriteInt(v int32) { w.stream.WriteInt32(v) }

// WriteLong writes a JSON number for a 64-bit integer.
func (w *JSONWriter) WriteLong(v int64) { w.stream.WriteInt64(v) }

// WriteFloat writes a JSON number for a float32.
func (w *JSONWriter) WriteFloat(v float32) { w.stream.WriteFloat32(v) }

// WriteDouble writes a JSON number for a float64.
func (w *JSONWriter) WriteDouble(v float64) { w.stream.WriteFloat64(v) }

// WriteString writes a JSON string.
func (w *JSONWriter) WriteString(v string) { w.stream.WriteString(v) }

// WriteBytes writes bytes as a string of \uNNNN escapes, one per byte,
// per spec.md §6.3.
func (w *JSONWriter) WriteBytes(v []byte) {
	w.stream.WriteRaw(`"`)
	for _, b := range v {
		writeByteEscape(w.stream, b)
	}
	w.stream.WriteRaw(`"`)
}

func writeByteEscape(s *jsoniter.Stream, b byte) {
	const hex = "0123456789abcdef"
	s.WriteRaw(`\u00`)
	s.WriteRaw(string([]byte{hex[b>>4], hex[b&0xf]}))
}

// WriteArrayStart writes the opening bracket of a JSON array.
func (w *JSONWriter) WriteArrayStart() { w.stream.WriteArrayStart() }

// WriteArrayEnd writes the closing bracket of a JSON array.
func (w *JSONWriter) WriteArrayEnd() { w.stream.WriteArrayEnd() }

// WriteMore writes the separating comma between array/object elements.
func (w *JSONWriter) WriteMore() { w.stream.WriteMore() }

// WriteObjectStart writes the opening brace of a JSON object.
func (w *JSONWriter) WriteObjectStart() { w.stream.WriteObjectStart() }

// WriteObjectEnd writes the closing brace of a JSON object.
func (w *JSONWriter) WriteObjectEnd() { w.stream.WriteObjectEnd() }

// WriteObjectField writes a quoted field name followed by a colon.
func (w *JSONWriter) WriteObjectField(name string) { w.stream.WriteObjectField(name) }

// WriteDecimalBytes writes a decimal's scaled two's-complement bytes as
// an Avro-JSON bytes value.
func (w *JSONWriter) WriteDecimalBytes(unscaled *big.Int) {
	w.WriteBytes(decimalToBytes(unscaled))
}

package avro

import (
	"encoding/binary"
	"math"
	"math/big"
)

// BinaryWriter is the output sink primitives from spec.md §4.4 append to.
// It wraps a growable byte buffer; the caller owns the buffer and may
// reuse a Writer across calls via Reset.
type BinaryWriter struct {
	buf []byte
}

// NewBinaryWriter constructs an empty writer.
func NewBinaryWriter() *BinaryWriter { return &BinaryWriter{} }

// Reset empties the writer for reuse.
func (w *BinaryWriter) Reset() { w.buf = w.buf[:0] }

// Bytes returns the accumulated output. The slice is invalidated by the
// next write.
func (w *BinaryWriter) Bytes() []byte { return w.buf }

// WriteBoolean writes a single byte: 0x00 for false, 0x01 for true.
func (w *BinaryWriter) WriteBoolean(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

// WriteInt writes a zig-zag varint-encoded 32-bit integer.
func (w *BinaryWriter) WriteInt(v int32) {
	w.writeVarint(uint64(uint32((v << 1) ^ (v >> 31))))
}

// WriteLong writes a zig-zag varint-encoded 64-bit integer.
func (w *BinaryWriter) WriteLong(v int64) {
	w.writeVarint(uint64((v << 1) ^ (v >> 63)))
}

func (w *BinaryWriter) writeVarint(v uint64) {
	for v >= 0x80 {
		w.buf = append(w.buf, byte(v)|0x80)
		v >>= 7
	}
	w.buf = append(w.buf, byte(v))
}

// WriteFloat writes 4 little-endian IEEE-754 bytes.
func (w *BinaryWriter) WriteFloat(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteDouble writes 8 little-endian IEEE-754 bytes.
func (w *BinaryWriter) WriteDouble(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes writes a length-prefixed byte string.
func (w *BinaryWriter) WriteBytes(v []byte) {
	w.WriteLong(int64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteString writes a length-prefixed UTF-8 string.
func (w *BinaryWriter) WriteString(v string) {
	w.WriteLong(int64(len(v)))
	w.buf = append(w.buf, v...)
}

// WriteFixed writes exactly len(v) raw bytes, no length prefix. The
// caller must supply a slice matching the schema's declared size.
func (w *BinaryWriter) WriteFixed(v []byte) {
	w.buf = append(w.buf, v...)
}

// WriteBlockHeader writes a single positive-count block header (spec.md
// §8.1 "Block framing"). The array and map encoders emit one block by
// default and several when WithBlockLength caps the block size; they never
// emit negative-count blocks.
func (w *BinaryWriter) WriteBlockHeader(count int) {
	w.WriteLong(int64(count))
}

// WriteBlockEnd writes the zero-count block terminator.
func (w *BinaryWriter) WriteBlockEnd() {
	w.WriteLong(0)
}

// WriteDecimal writes a decimal's scaled big-integer in two's-complement
// big-endian form, as raw bytes (for a Bytes schema).
func (w *BinaryWriter) WriteDecimal(unscaled *big.Int) {
	w.WriteBytes(decimalToBytes(unscaled))
}

// WriteDecimalFixed writes a decimal's scaled big-integer into exactly
// size bytes (for a Fixed schema); returns Overflow if it does not fit.
func (w *BinaryWriter) WriteDecimalFixed(unscaled *big.Int, size int) error {
	b := decimalToBytes(unscaled)
	if len(b) > size {
		return newError(Overflow, "decimal value requires %d bytes but fixed size is %d", len(b), size)
	}
	pad := make([]byte, size-len(b))
	if unscaled.Sign() < 0 {
		for i := range pad {
			pad[i] = 0xff
		}
	}
	w.buf = append(w.buf, pad...)
	w.buf = append(w.buf, b...)
	return nil
}

func decimalToBytes(unscaled *big.Int) []byte {
	if unscaled.Sign() == 0 {
		return []byte{0}
	}
	b := unscaled.Bytes()
	if unscaled.Sign() > 0 {
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Two's complement of a negative magnitude: first give the magnitude
	// an unambiguous positive byte representation (pad with a leading
	// 0x00 when its own top bit is set), then invert and add one.
	pos := new(big.Int).Neg(unscaled)
	mag := pos.Bytes()
	if mag[0]&0x80 != 0 {
		mag = append([]byte{0}, mag...)
	}
	out := make([]byte, len(mag))
	carry := true
	for i := len(mag) - 1; i >= 0; i-- {
		v := ^mag[i]
		if carry {
			v++
			carry = v == 0
		}
		out[i] = v
	}
	return out
}

// WriteDuration writes the fixed-12 Avro duration encoding: three
// little-endian uint32 values, months/days/milliseconds.
func (w *BinaryWriter) WriteDuration(months, days, millis uint32) {
	var b [12]byte
	binary.LittleEndian.PutUint32(b[0:4], months)
	binary.LittleEndian.PutUint32(b[4:8], days)
	binary.LittleEndian.PutUint32(b[8:12], millis)
	w.buf = append(w.buf, b[:]...)
}

package avro

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Zig-zag varint boundaries, spec.md §8.2 scenario 1.
func TestWriteLongZigZagBoundaries(t *testing.T) {
	cases := []struct {
		name string
		v    int64
		want []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"negative-one", -1, []byte{0x01}},
		{"sixty-four", 64, []byte{0x80, 0x01}},
		{"min-int64", math.MinInt64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewBinaryWriter()
			w.WriteLong(c.v)
			require.Equal(t, c.want, w.Bytes())

			r := NewBinaryReader(c.want)
			got, err := r.ReadLong()
			require.NoError(t, err)
			require.Equal(t, c.v, got)
			require.Equal(t, 0, r.Remaining())
		})
	}
}

// A ten-byte run of continuation-bit-set bytes never terminates within
// ReadLong's 10-byte budget and must be rejected, not silently wrapped.
func TestReadLongRejectsNonTerminatingVarint(t *testing.T) {
	raw := append(bytesRepeat(0xff, 10), 0x01)
	_, err := NewBinaryReader(raw).ReadLong()
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, Overflow, kind)
}

func bytesRepeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// spec.md §8.2 scenario 2: decimal(5,2) worked example.
func TestDecimalToBytesWorkedExample(t *testing.T) {
	unscaled := big.NewInt(-166666)
	got := decimalToBytes(unscaled)
	require.Equal(t, []byte{0xfd, 0x74, 0xf6}, got)

	back := decimalFromBytes(got)
	require.Equal(t, unscaled, back)
}

func TestWriteDecimalWorkedExample(t *testing.T) {
	w := NewBinaryWriter()
	w.WriteDecimal(big.NewInt(-166666))
	require.Equal(t, []byte{0x06, 0xfd, 0x74, 0xf6}, w.Bytes())

	r := NewBinaryReader(w.Bytes())
	got, err := r.ReadDecimal()
	require.NoError(t, err)
	d := NewDecimal(got, 2)
	require.Equal(t, "-1666.66", d.String())
}

// decimalToBytes must round-trip through decimalFromBytes for a spread of
// magnitudes, including ones that land exactly on a two's-complement
// sign-bit boundary (the case the inverted padding condition broke).
func TestDecimalToBytesRoundTrips(t *testing.T) {
	values := []int64{0, 1, -1, 127, 128, -128, -129, 200, -200, 65535, -65535, 166666, -166666}
	for _, v := range values {
		n := big.NewInt(v)
		b := decimalToBytes(n)
		got := decimalFromBytes(b)
		require.Equal(t, 0, n.Cmp(got), "value %d", v)
	}
}

// WriteDecimalFixed must not spuriously overflow a size that genuinely
// fits once decimalToBytes stops over-padding.
func TestWriteDecimalFixedDoesNotSpuriouslyOverflow(t *testing.T) {
	w := NewBinaryWriter()
	err := w.WriteDecimalFixed(big.NewInt(-166666), 4)
	require.NoError(t, err)
	require.Len(t, w.Bytes(), 4)

	r := NewBinaryReader(w.Bytes())
	got, err := r.ReadDecimalFixed(4)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(-166666), got)
}

// spec.md §8.2 scenario 3: duration encoding.
func TestWriteDurationWorkedExamples(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want []byte
	}{
		{"zero", 0, []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
		{"one-millisecond", time.Millisecond, []byte{0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0}},
		{"one-day", 24 * time.Hour, []byte{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			months, days, millis, err := durationToParts(c.d)
			require.NoError(t, err)
			w := NewBinaryWriter()
			w.WriteDuration(months, days, millis)
			require.Equal(t, c.want, w.Bytes())

			r := NewBinaryReader(c.want)
			gotMonths, gotDays, gotMillis, err := r.ReadDuration()
			require.NoError(t, err)
			require.Equal(t, c.d, partsToDuration(gotMonths, gotDays, gotMillis))
		})
	}
}

func TestDurationToPartsRejectsNegative(t *testing.T) {
	_, _, _, err := durationToParts(-time.Millisecond)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, Overflow, kind)
}

// Block framing: a non-empty array emits one positive-count block
// followed by the zero terminator (spec.md §8.1/§4.4).
func TestArrayBlockFramingShape(t *testing.T) {
	schema := MustParse(`{"type":"array","items":"int"}`)
	data, err := NewCodec(schema).Marshal([]int32{10, 20})
	require.NoError(t, err)

	// count=2 (zig-zag 4), item 10 (zig-zag 20), item 20 (zig-zag 40), block end 0.
	require.Equal(t, []byte{0x04, 0x14, 0x28, 0x00}, data)
}

func TestEmptyArrayBlockFramingShape(t *testing.T) {
	schema := MustParse(`{"type":"array","items":"int"}`)
	data, err := NewCodec(schema).Marshal([]int32{})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00}, data)
}

// spec.md §8.2 scenario 7: canonical form worked example.
func TestWriteCanonicalWorkedExample(t *testing.T) {
	s := MustParse(`{"type":"record","name":"ns.R","doc":"x","fields":[{"name":"a","type":"int","doc":"y"}]}`)
	got := WriteCanonical(s)
	require.Equal(t, `{"name":"ns.R","type":"record","fields":[{"name":"a","type":"int"}]}`, got)
}

package avro

import (
	"io"
	"reflect"
	"sync"
)

// Codec builds and caches the binary and Avro-JSON plans for one schema
// against whatever host types it is asked to (de)serialize, tying
// together the schema model, the type resolver, and the builder
// framework (spec.md §4.3) behind a single call-once, use-many API
// (spec.md §5's concurrency contract: a built Codec is safe for
// concurrent Marshal/Unmarshal calls). mu guards the four plan caches so
// two goroutines racing to build a plan for the same previously-unseen
// host type don't corrupt the maps; the plans themselves, once built, are
// immutable and require no further synchronization.
type Codec struct {
	schema   Schema
	resolver TypeResolver
	opts     []BuilderOption

	mu     sync.RWMutex
	binEnc map[reflect.Type]binaryEncodeFunc
	binDec map[reflect.Type]binaryDecodeFunc
	jsnEnc map[reflect.Type]jsonEncodeFunc
	jsnDec map[reflect.Type]jsonDecodeFunc
}

// NewCodec constructs a Codec for schema using the default type
// resolver.
func NewCodec(schema Schema, opts ...BuilderOption) *Codec {
	return NewCodecWithResolver(schema, DefaultTypeResolver{}, opts...)
}

// NewCodecWithResolver constructs a Codec using a custom TypeResolver,
// e.g. to override union SelectType behavior. opts are applied to every
// buildContext the Codec creates, e.g. WithNameMatcher or
// WithBlockLength. A WithSelectType option in opts is applied after
// resolver and replaces it.
func NewCodecWithResolver(schema Schema, resolver TypeResolver, opts ...BuilderOption) *Codec {
	return &Codec{
		schema:   schema,
		resolver: resolver,
		opts:     opts,
		binEnc:   make(map[reflect.Type]binaryEncodeFunc),
		binDec:   make(map[reflect.Type]binaryDecodeFunc),
		jsnEnc:   make(map[reflect.Type]jsonEncodeFunc),
		jsnDec:   make(map[reflect.Type]jsonDecodeFunc),
	}
}

// Schema returns the codec's schema.
func (c *Codec) Schema() Schema { return c.schema }

func (c *Codec) binaryEncoderFor(rt reflect.Type) (binaryEncodeFunc, error) {
	c.mu.RLock()
	f, ok := c.binEnc[rt]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}
	ctx := newBuildContext(c.resolver, c.opts...)
	f, err := buildBinaryEncoder(ctx, c.schema, rt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.binEnc[rt] = f
	c.mu.Unlock()
	return f, nil
}

func (c *Codec) binaryDecoderFor(rt reflect.Type) (binaryDecodeFunc, error) {
	c.mu.RLock()
	f, ok := c.binDec[rt]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}
	ctx := newBuildContext(c.resolver, c.opts...)
	f, err := buildBinaryDecoder(ctx, c.schema, rt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.binDec[rt] = f
	c.mu.Unlock()
	return f, nil
}

func (c *Codec) jsonEncoderFor(rt reflect.Type) (jsonEncodeFunc, error) {
	c.mu.RLock()
	f, ok := c.jsnEnc[rt]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}
	ctx := newBuildContext(c.resolver, c.opts...)
	f, err := buildJSONEncoder(ctx, c.schema, rt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.jsnEnc[rt] = f
	c.mu.Unlock()
	return f, nil
}

func (c *Codec) jsonDecoderFor(rt reflect.Type) (jsonDecodeFunc, error) {
	c.mu.RLock()
	f, ok := c.jsnDec[rt]
	c.mu.RUnlock()
	if ok {
		return f, nil
	}
	ctx := newBuildContext(c.resolver, c.opts...)
	f, err := buildJSONDecoder(ctx, c.schema, rt)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.jsnDec[rt] = f
	c.mu.Unlock()
	return f, nil
}

// Marshal encodes v to the Avro binary encoding (spec.md §6.2).
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	enc, err := c.binaryEncoderFor(rv.Type())
	if err != nil {
		return nil, err
	}
	w := NewBinaryWriter()
	if err := enc(w, rv); err != nil {
		return nil, err
	}
	out := make([]byte, len(w.Bytes()))
	copy(out, w.Bytes())
	return out, nil
}

// Unmarshal decodes Avro binary data into v, which must be a non-nil
// pointer.
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newError(UnsupportedType, "Unmarshal requires a non-nil pointer, got %v", rv.Type())
	}
	dec, err := c.binaryDecoderFor(rv.Elem().Type())
	if err != nil {
		return err
	}
	return dec(NewBinaryReader(data), rv.Elem())
}

// MarshalAvroJSON encodes v to the Avro JSON encoding (spec.md §6.3),
// distinct from the schema's own JSON representation.
func (c *Codec) MarshalAvroJSON(v interface{}) ([]byte, error) {
	rv := reflect.ValueOf(v)
	enc, err := c.jsonEncoderFor(rv.Type())
	if err != nil {
		return nil, err
	}
	w := NewJSONWriter()
	if err := enc(w, rv); err != nil {
		return nil, err
	}
	out := make([]byte, len(w.Bytes()))
	copy(out, w.Bytes())
	return out, nil
}

// UnmarshalAvroJSON decodes Avro JSON data into v, a non-nil pointer.
func (c *Codec) UnmarshalAvroJSON(data []byte, v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newError(UnsupportedType, "UnmarshalAvroJSON requires a non-nil pointer, got %v", rv.Type())
	}
	dec, err := c.jsonDecoderFor(rv.Elem().Type())
	if err != nil {
		return err
	}
	return dec(NewJSONReader(data), rv.Elem())
}

// Marshal is a package-level convenience that builds a throwaway Codec.
// Callers encoding repeatedly against the same schema should build one
// Codec with NewCodec and reuse it instead.
func Marshal(schema Schema, v interface{}) ([]byte, error) {
	return NewCodec(schema).Marshal(v)
}

// Unmarshal is the package-level counterpart of Marshal.
func Unmarshal(schema Schema, data []byte, v interface{}) error {
	return NewCodec(schema).Unmarshal(data, v)
}

// BinaryEncoder adapts a Codec to write to an io.Writer, matching the
// classic Avro DatumWriter/Encoder split: a DatumWriter knows how to
// traverse a value, an Encoder knows how to get bytes to a sink.
type BinaryEncoder struct {
	w io.Writer
}

// NewBinaryEncoder wraps an io.Writer.
func NewBinaryEncoder(w io.Writer) *BinaryEncoder { return &BinaryEncoder{w: w} }

// BinaryDecoder adapts a Codec to read from an io.Reader.
type BinaryDecoder struct {
	r io.Reader
}

// NewBinaryDecoder wraps an io.Reader.
func NewBinaryDecoder(r io.Reader) *BinaryDecoder { return &BinaryDecoder{r: r} }

func readAll(r io.Reader) ([]byte, error) {
	buf := make([]byte, 0, 512)
	chunk := make([]byte, 512)
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return buf, nil
		}
	}
}

// SpecificDatumWriter serializes values of a single, compile-time-known
// Go type against schema, in the tradition of Avro's SpecificDatumWriter.
type SpecificDatumWriter struct {
	codec *Codec
}

// NewSpecificDatumWriter constructs a writer for schema.
func NewSpecificDatumWriter(schema Schema) *SpecificDatumWriter {
	return &SpecificDatumWriter{codec: NewCodec(schema)}
}

// Write encodes v's binary representation to enc.
func (w *SpecificDatumWriter) Write(v interface{}, enc *BinaryEncoder) error {
	b, err := w.codec.Marshal(v)
	if err != nil {
		return err
	}
	_, err = enc.w.Write(b)
	return err
}

// SpecificDatumReader deserializes into a single, compile-time-known Go
// type.
type SpecificDatumReader struct {
	codec *Codec
}

// NewSpecificDatumReader constructs a reader for schema.
func NewSpecificDatumReader(schema Schema) *SpecificDatumReader {
	return &SpecificDatumReader{codec: NewCodec(schema)}
}

// Read decodes a value of v's underlying type from dec into v.
func (r *SpecificDatumReader) Read(v interface{}, dec *BinaryDecoder) error {
	b, err := readAll(dec.r)
	if err != nil {
		return err
	}
	return r.codec.Unmarshal(b, v)
}

// GenericDatumWriter serializes GenericRecord values whose shape is only
// known through the schema itself.
type GenericDatumWriter struct {
	schema Schema
	codec  *Codec
}

// NewGenericDatumWriter constructs a writer for schema.
func NewGenericDatumWriter(schema Schema) *GenericDatumWriter {
	return &GenericDatumWriter{schema: schema, codec: NewCodec(schema)}
}

// Write encodes rec's binary representation to enc.
func (w *GenericDatumWriter) Write(rec *GenericRecord, enc *BinaryEncoder) error {
	b, err := w.codec.Marshal(rec.values)
	if err != nil {
		return err
	}
	_, err = enc.w.Write(b)
	return err
}

// GenericDatumReader deserializes into a GenericRecord.
type GenericDatumReader struct {
	schema Schema
	codec  *Codec
}

// NewGenericDatumReader constructs a reader for schema.
func NewGenericDatumReader(schema Schema) *GenericDatumReader {
	return &GenericDatumReader{schema: schema, codec: NewCodec(schema)}
}

// Read decodes a GenericRecord from dec.
func (r *GenericDatumReader) Read(dec *BinaryDecoder) (*GenericRecord, error) {
	b, err := readAll(dec.r)
	if err != nil {
		return nil, err
	}
	rec := NewGenericRecord(r.schema)
	if err := r.codec.Unmarshal(b, &rec.values); err != nil {
		return nil, err
	}
	return rec, nil
}

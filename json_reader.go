package avro

import (
	jsoniter "github.com/json-iterator/go"
)

// JSONReader is the input cursor for the Avro JSON encoding, built on
// jsoniter's streaming iterator.
type JSONReader struct {
	iter *jsoniter.Iterator
}

// NewJSONReader constructs a reader over buf.
func NewJSONReader(buf []byte) *JSONReader {
	return &JSONReader{iter: jsoniter.ConfigDefault.BorrowIterator(buf)}
}

// ReadNull consumes a JSON null.
func (r *JSONReader) ReadNull() error {
	r.iter.ReadNil()
	return r.iterErr()
}

// ReadBool reads a JSON boolean.
func (r *JSONReader) ReadBool() (bool, error) {
	v := r.iter.ReadBool()
	return v, r.iterErr()
}

// ReadInt reads a JSON number as a 32-bit integer.
func (r *JSONReader) ReadInt() (int32, error) {
	v := r.iter.ReadInt32()
	return v, r.iterErr()
}

// ReadLong reads a JSON number as a 64-bit integer.
func (r *JSONReader) ReadLong() (int64, error) {
	v := r.iter.ReadInt64()
	return v, r.iterErr()
}

// ReadFloat reads a JSON number as a float32.
func (r *JSONReader) ReadFloat() (float32, error) {
	v := r.iter.ReadFloat32()
	return v, r.iterErr()
}

// ReadDouble reads a JSON number as a float64.
func (r *JSONReader) ReadDouble() (float64, error) {
	v := r.iter.ReadFloat64()
	return v, r.iterErr()
}

// ReadString reads a JSON string.
func (r *JSONReader) ReadString() (string, error) {
	v := r.iter.ReadString()
	return v, r.iterErr()
}

// ReadBytes reads a \uNNNN-escaped byte string.
func (r *JSONReader) ReadBytes() ([]byte, error) {
	s, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	runes := []rune(s)
	b := make([]byte, len(runes))
	for i, c := range runes {
		b[i] = byte(c)
	}
	return b, nil
}

// WhatIsNext reports the kind of the next JSON value without consuming
// it (used to detect JSON null for union/optional dispatch).
func (r *JSONReader) WhatIsNext() jsoniter.ValueType {
	return r.iter.WhatIsNext()
}

// ReadArrayCB iterates a JSON array, invoking cb for each element; cb
// reports whether to continue.
func (r *JSONReader) ReadArrayCB(cb func(*JSONReader) bool) error {
	r.iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		return cb(r)
	})
	return r.iterErr()
}

// ReadObjectCB iterates a JSON object, invoking cb with each field name;
// cb reports whether to continue.
func (r *JSONReader) ReadObjectCB(cb func(*JSONReader, string) bool) error {
	r.iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
		return cb(r, field)
	})
	return r.iterErr()
}

// Skip discards the next JSON value of any shape.
func (r *JSONReader) Skip() error {
	r.iter.Skip()
	return r.iterErr()
}

func (r *JSONReader) iterErr() error {
	if r.iter.Error != nil {
		return wrapError(InvalidEncoding, r.iter.Error, "invalid JSON wire value")
	}
	return nil
}

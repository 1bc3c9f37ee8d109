package avro

// GenericRecord is a schema-described record value with no compile-time
// Go type: field values are stored by name and decoded to each field's
// natural Go representation (spec.md's "default Go mapping" for a
// record with no host type supplied). It is the generic counterpart to a
// user's own struct, used by GenericDatumReader/Writer.
type GenericRecord struct {
	schema *RecordSchema
	values map[string]interface{}
}

// NewGenericRecord constructs an empty GenericRecord for schema, which
// must resolve (through a RefSchema, if necessary) to a record schema.
func NewGenericRecord(schema Schema) *GenericRecord {
	rec, _ := resolveRef(schema).(*RecordSchema)
	return &GenericRecord{schema: rec, values: make(map[string]interface{})}
}

// Schema returns the record's schema.
func (r *GenericRecord) Schema() *RecordSchema { return r.schema }

// Get returns the named field's value, or nil if unset.
func (r *GenericRecord) Get(name string) interface{} { return r.values[name] }

// Set assigns the named field's value.
func (r *GenericRecord) Set(name string, v interface{}) { r.values[name] = v }

// String returns the record's Avro-JSON representation, or "{}" if the
// record has no schema or encoding fails.
func (r *GenericRecord) String() string {
	if r.schema == nil {
		return "{}"
	}
	b, err := NewCodec(r.schema).MarshalAvroJSON(r.values)
	if err != nil {
		return "{}"
	}
	return string(b)
}

package avro

import "reflect"

// buildBinarySkip builds a case that consumes a schema's encoding
// without materializing a host value (spec.md §4.7): used when a record
// field has no matching host member, so later fields stay aligned.
// Skipping must not allocate host objects, so it never calls indirect or
// constructs reflect.Values for items.
func buildBinarySkip(ctx *buildContext, schema Schema) (binaryDecodeFunc, error) {
	schema = resolveRef(schema)

	switch s := schema.(type) {
	case *PrimitiveSchema:
		return skipPrimitive(s.Type())
	case *FixedSchema:
		size := s.Size()
		return func(r *BinaryReader, _ reflect.Value) error {
			_, err := r.ReadFixed(size)
			return err
		}, nil
	case *EnumSchema:
		return func(r *BinaryReader, _ reflect.Value) error {
			_, err := r.ReadInt()
			return err
		}, nil
	case *ArraySchema:
		itemSkip, err := buildBinarySkip(ctx, s.Items())
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, _ reflect.Value) error {
			for {
				count, byteSize, err := r.ReadBlockCount()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				if byteSize > 0 {
					if err := r.SkipBlock(byteSize); err != nil {
						return err
					}
					continue
				}
				for i := int64(0); i < count; i++ {
					if err := itemSkip(r, reflect.Value{}); err != nil {
						return err
					}
				}
			}
		}, nil
	case *MapSchema:
		valSkip, err := buildBinarySkip(ctx, s.Values())
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, _ reflect.Value) error {
			for {
				count, byteSize, err := r.ReadBlockCount()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				if byteSize > 0 {
					if err := r.SkipBlock(byteSize); err != nil {
						return err
					}
					continue
				}
				for i := int64(0); i < count; i++ {
					if _, err := r.ReadString(); err != nil {
						return err
					}
					if err := valSkip(r, reflect.Value{}); err != nil {
						return err
					}
				}
			}
		}, nil
	case *UnionSchema:
		branchSkip := make([]binaryDecodeFunc, len(s.Branches()))
		for i, b := range s.Branches() {
			f, err := buildBinarySkip(ctx, b)
			if err != nil {
				return nil, err
			}
			branchSkip[i] = f
		}
		return func(r *BinaryReader, _ reflect.Value) error {
			idx, err := r.ReadLong()
			if err != nil {
				return err
			}
			if int(idx) < 0 || int(idx) >= len(branchSkip) {
				return newError(OutOfRange, "union branch index %d out of range while skipping", idx)
			}
			return branchSkip[idx](r, reflect.Value{})
		}, nil
	case *RecordSchema:
		fieldSkip := make([]binaryDecodeFunc, len(s.Fields()))
		for i, f := range s.Fields() {
			sk, err := buildBinarySkip(ctx, f.Type())
			if err != nil {
				return nil, err
			}
			fieldSkip[i] = sk
		}
		return func(r *BinaryReader, _ reflect.Value) error {
			for _, sk := range fieldSkip {
				if err := sk(r, reflect.Value{}); err != nil {
					return err
				}
			}
			return nil
		}, nil
	default:
		return nil, newError(UnsupportedSchema, "no skip case for schema kind %s", schema.Type())
	}
}

func skipPrimitive(t Type) (binaryDecodeFunc, error) {
	switch t {
	case Null:
		return func(r *BinaryReader, _ reflect.Value) error { return nil }, nil
	case Boolean:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadBoolean(); return err }, nil
	case Int:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadInt(); return err }, nil
	case Long:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadLong(); return err }, nil
	case Float:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadFloat(); return err }, nil
	case Double:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadDouble(); return err }, nil
	case String, Bytes:
		return func(r *BinaryReader, _ reflect.Value) error { _, err := r.ReadBytes(); return err }, nil
	default:
		return nil, newError(UnsupportedSchema, "unrecognized primitive type %s", t)
	}
}

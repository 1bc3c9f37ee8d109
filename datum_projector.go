package avro

import "reflect"

// DatumProjector decodes binary data written under one schema (the
// writer schema) into a host value shaped for a possibly-different
// schema (the reader schema) — Avro's schema evolution (spec.md's
// glossary: "compatibility rules allowing a reader schema to differ
// from the writer schema (aliases, defaults, missing fields)"). Unlike
// Codec, which assumes reader and writer agree, DatumProjector is built
// from a (readerSchema, writerSchema) pair.
type DatumProjector struct {
	project projectionFunc
}

// NewDatumProjector builds a projector from writerSchema-encoded bytes to
// readerSchema-shaped host values.
func NewDatumProjector(readerSchema, writerSchema Schema) (*DatumProjector, error) {
	proj, err := newProjection(newProjectionContext(), readerSchema, writerSchema)
	if err != nil {
		return nil, err
	}
	return &DatumProjector{project: proj}, nil
}

// Read decodes one value from r into target, which must be a non-nil
// pointer of the reader schema's host shape.
func (p *DatumProjector) Read(target interface{}, r *BinaryReader) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return newError(UnsupportedType, "DatumProjector.Read requires a non-nil pointer, got %v", rv.Type())
	}
	return p.project(r, rv.Elem())
}

type projectionFunc func(r *BinaryReader, target reflect.Value) error

// projectionKey identifies a (reader, writer) schema pair; named schemas
// compare by pointer identity, which is enough to detect the
// self-reference that makes a record recursive.
type projectionKey struct {
	reader, writer Schema
}

type projectionContext struct {
	cache map[projectionKey]*projectionFunc
}

func newProjectionContext() *projectionContext {
	return &projectionContext{cache: make(map[projectionKey]*projectionFunc)}
}

// newProjection builds the projection for one (reader, writer) pair,
// recursing through records via a forward-reference handle so that a
// self-referential record schema terminates (spec.md §4.3's recursion
// contract, generalized here to schema-pair recursion).
func newProjection(ctx *projectionContext, reader, writer Schema) (projectionFunc, error) {
	reader, writer = resolveRef(reader), resolveRef(writer)
	key := projectionKey{reader: reader, writer: writer}
	if p, ok := ctx.cache[key]; ok {
		return func(r *BinaryReader, v reflect.Value) error { return (*p)(r, v) }, nil
	}
	p := new(projectionFunc)
	ctx.cache[key] = p

	built, err := buildProjection(ctx, reader, writer)
	if err != nil {
		delete(ctx.cache, key)
		return nil, err
	}
	*p = built
	return built, nil
}

func buildProjection(ctx *projectionContext, reader, writer Schema) (projectionFunc, error) {
	switch reader.Type() {
	case Null:
		if writer.Type() != Null {
			return nil, incompatibleProjection(reader, writer)
		}
		return func(r *BinaryReader, v reflect.Value) error { return nil }, nil

	case Boolean:
		if writer.Type() != Boolean {
			return nil, incompatibleProjection(reader, writer)
		}
		return func(r *BinaryReader, v reflect.Value) error {
			b, err := r.ReadBoolean()
			if err != nil {
				return err
			}
			indirect(v).SetBool(b)
			return nil
		}, nil

	case Int:
		if writer.Type() != Int {
			return nil, incompatibleProjection(reader, writer)
		}
		return func(r *BinaryReader, v reflect.Value) error {
			n, err := r.ReadInt()
			if err != nil {
				return err
			}
			indirect(v).SetInt(int64(n))
			return nil
		}, nil

	case Long:
		switch writer.Type() {
		case Int:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadInt()
				if err != nil {
					return err
				}
				indirect(v).SetInt(int64(n))
				return nil
			}, nil
		case Long:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadLong()
				if err != nil {
					return err
				}
				indirect(v).SetInt(n)
				return nil
			}, nil
		}
		return nil, incompatibleProjection(reader, writer)

	case Float:
		switch writer.Type() {
		case Int:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadInt()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		case Long:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadLong()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		case Float:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadFloat()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		}
		return nil, incompatibleProjection(reader, writer)

	case Double:
		switch writer.Type() {
		case Int:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadInt()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		case Long:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadLong()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		case Float:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadFloat()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(float64(n))
				return nil
			}, nil
		case Double:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadDouble()
				if err != nil {
					return err
				}
				indirect(v).SetFloat(n)
				return nil
			}, nil
		}
		return nil, incompatibleProjection(reader, writer)

	case Bytes:
		switch writer.Type() {
		case Bytes:
			return func(r *BinaryReader, v reflect.Value) error {
				b, err := r.ReadBytes()
				if err != nil {
					return err
				}
				indirect(v).SetBytes(b)
				return nil
			}, nil
		case String:
			return func(r *BinaryReader, v reflect.Value) error {
				s, err := r.ReadString()
				if err != nil {
					return err
				}
				indirect(v).SetBytes([]byte(s))
				return nil
			}, nil
		}
		return nil, incompatibleProjection(reader, writer)

	case String:
		switch writer.Type() {
		case String:
			return func(r *BinaryReader, v reflect.Value) error {
				s, err := r.ReadString()
				if err != nil {
					return err
				}
				indirect(v).SetString(s)
				return nil
			}, nil
		case Bytes:
			return func(r *BinaryReader, v reflect.Value) error {
				b, err := r.ReadBytes()
				if err != nil {
					return err
				}
				indirect(v).SetString(string(b))
				return nil
			}, nil
		}
		return nil, incompatibleProjection(reader, writer)

	case Fixed:
		wf, ok := writer.(*FixedSchema)
		rf := reader.(*FixedSchema)
		if !ok || wf.Size() != rf.Size() {
			return nil, incompatibleProjection(reader, writer)
		}
		size := rf.Size()
		return func(r *BinaryReader, v reflect.Value) error {
			b, err := r.ReadFixed(size)
			if err != nil {
				return err
			}
			indirect(v).SetBytes(b)
			return nil
		}, nil

	case Enum:
		we, ok := writer.(*EnumSchema)
		re := reader.(*EnumSchema)
		if !ok {
			return nil, incompatibleProjection(reader, writer)
		}
		return func(r *BinaryReader, v reflect.Value) error {
			idx, err := r.ReadInt()
			if err != nil {
				return err
			}
			symbols := we.Symbols()
			if int(idx) < 0 || int(idx) >= len(symbols) {
				return newError(OutOfRange, "enum index %d out of range for writer schema %s", idx, we.FullName())
			}
			sym := symbols[idx]
			if re.IndexOf(sym) < 0 {
				if re.Default() == "" {
					return newError(OutOfRange, "symbol %q not present in reader enum %s and no default", sym, re.FullName())
				}
				sym = re.Default()
			}
			indirect(v).SetString(sym)
			return nil
		}, nil

	case Array:
		wa, ok := writer.(*ArraySchema)
		ra := reader.(*ArraySchema)
		if !ok {
			return nil, incompatibleProjection(reader, writer)
		}
		itemProj, err := newProjection(ctx, ra.Items(), wa.Items())
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, v reflect.Value) error {
			v = indirect(v)
			sliceType := v.Type()
			if sliceType.Kind() != reflect.Slice {
				sliceType = reflect.SliceOf(defaultGoType(ra.Items()))
			}
			v.Set(reflect.MakeSlice(sliceType, 0, 0))
			for {
				count, byteSize, err := r.ReadBlockCount()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				_ = byteSize
				for i := int64(0); i < count; i++ {
					item := reflect.New(sliceType.Elem()).Elem()
					if err := itemProj(r, item); err != nil {
						return err
					}
					v.Set(reflect.Append(v, item))
				}
			}
		}, nil

	case Map:
		wm, ok := writer.(*MapSchema)
		rm := reader.(*MapSchema)
		if !ok {
			return nil, incompatibleProjection(reader, writer)
		}
		valProj, err := newProjection(ctx, rm.Values(), wm.Values())
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, v reflect.Value) error {
			v = indirect(v)
			mapType := v.Type()
			if mapType.Kind() != reflect.Map {
				mapType = reflect.MapOf(reflect.TypeOf(""), defaultGoType(rm.Values()))
			}
			v.Set(reflect.MakeMap(mapType))
			for {
				count, byteSize, err := r.ReadBlockCount()
				if err != nil {
					return err
				}
				if count == 0 {
					return nil
				}
				_ = byteSize
				for i := int64(0); i < count; i++ {
					k, err := r.ReadString()
					if err != nil {
						return err
					}
					item := reflect.New(mapType.Elem()).Elem()
					if err := valProj(r, item); err != nil {
						return err
					}
					v.SetMapIndex(reflect.ValueOf(k), item)
				}
			}
		}, nil

	case Union:
		return buildUnionProjection(ctx, reader.(*UnionSchema), writer)

	case Record:
		rr, ok1 := reader.(*RecordSchema)
		wr, ok2 := writer.(*RecordSchema)
		if !ok1 || !ok2 {
			return nil, incompatibleProjection(reader, writer)
		}
		return buildRecordProjection(ctx, rr, wr)

	default:
		return nil, newError(UnsupportedSchema, "no projection case for reader schema kind %s", reader.Type())
	}
}

// buildUnionProjection handles both "writer is a union, reader is not"
// and "both are unions": the branch actually present on the wire is
// read, then projected toward whatever the reader expects.
func buildUnionProjection(ctx *projectionContext, reader *UnionSchema, writer Schema) (projectionFunc, error) {
	if wu, ok := writer.(*UnionSchema); ok {
		branchProj := make([]projectionFunc, len(wu.Branches()))
		for i, wb := range wu.Branches() {
			rb := matchReaderBranch(reader, wb)
			p, err := newProjection(ctx, rb, wb)
			if err != nil {
				return nil, err
			}
			branchProj[i] = p
		}
		return func(r *BinaryReader, v reflect.Value) error {
			idx, err := r.ReadLong()
			if err != nil {
				return err
			}
			if int(idx) < 0 || int(idx) >= len(branchProj) {
				return newError(OutOfRange, "union branch index %d out of range", idx)
			}
			return branchProj[idx](r, v)
		}, nil
	}
	// Writer is a plain (non-union) schema; match it against one of the
	// reader's branches and project directly, with no tag on the wire.
	rb := matchReaderBranch(reader, writer)
	return newProjection(ctx, rb, writer)
}

// matchReaderBranch finds the reader union branch matching a writer
// schema by its distinguishing key, falling back to the first branch of
// the same primitive kind, and finally the first branch.
func matchReaderBranch(reader *UnionSchema, writer Schema) Schema {
	wantKey := typeName(writer)
	for _, b := range reader.Branches() {
		if typeName(b) == wantKey {
			return b
		}
	}
	for _, b := range reader.Branches() {
		if b.Type() == writer.Type() {
			return b
		}
	}
	if len(reader.Branches()) > 0 {
		return reader.Branches()[0]
	}
	return writer
}

func buildRecordProjection(ctx *projectionContext, reader, writer *RecordSchema) (projectionFunc, error) {
	type fieldProjection struct {
		proj projectionFunc
		name string // reader field name; "" if writer-only (skip)
		typ  Schema // reader field schema
		skip binaryDecodeFunc
	}

	plans := make([]fieldProjection, len(writer.Fields()))
	matched := make(map[string]bool, len(reader.Fields()))

	for i, wf := range writer.Fields() {
		rf := reader.FieldByNameOrAlias(wf.Name())
		if rf == nil {
			sk, err := buildBinarySkip(nil, wf.Type())
			if err != nil {
				return nil, err
			}
			plans[i] = fieldProjection{skip: sk}
			continue
		}
		matched[rf.Name()] = true
		proj, err := newProjection(ctx, rf.Type(), wf.Type())
		if err != nil {
			return nil, err
		}
		plans[i] = fieldProjection{proj: proj, name: rf.Name(), typ: rf.Type()}
	}

	type defaultAssignment struct {
		name string
		typ  Schema
		def  interface{}
	}
	var defaults []defaultAssignment
	for _, rf := range reader.Fields() {
		if matched[rf.Name()] {
			continue
		}
		if !rf.HasDefault() {
			return nil, newError(InvalidSchema, "reader field %q has no writer counterpart and no default", rf.Name())
		}
		defaults = append(defaults, defaultAssignment{name: rf.Name(), typ: rf.Type(), def: rf.Default()})
	}

	return func(r *BinaryReader, v reflect.Value) error {
		v = indirect(v)
		isMapHost := v.Kind() == reflect.Map
		if isMapHost && v.IsNil() {
			v.Set(reflect.MakeMap(v.Type()))
		}
		for _, fp := range plans {
			if fp.proj == nil {
				if err := fp.skip(r, reflect.Value{}); err != nil {
					return err
				}
				continue
			}
			if isMapHost {
				et := v.Type().Elem()
				if et.Kind() == reflect.Interface {
					et = defaultGoType(fp.typ)
				}
				item := reflect.New(et).Elem()
				if err := fp.proj(r, item); err != nil {
					return err
				}
				v.SetMapIndex(reflect.ValueOf(fp.name), item)
				continue
			}
			plan, ok := resolveField(v.Type(), fp.name)
			if !ok {
				return newError(UnsupportedType, "no host field for reader field %q", fp.name)
			}
			if err := fp.proj(r, v.FieldByIndex(plan.index)); err != nil {
				return err
			}
		}
		for _, d := range defaults {
			if isMapHost {
				dv := reflect.New(defaultGoType(d.typ)).Elem()
				assignDefault(dv, d.def)
				v.SetMapIndex(reflect.ValueOf(d.name), dv)
				continue
			}
			plan, ok := resolveField(v.Type(), d.name)
			if !ok {
				continue
			}
			assignDefault(v.FieldByIndex(plan.index), d.def)
		}
		return nil
	}, nil
}

func incompatibleProjection(reader, writer Schema) error {
	return newError(UnsupportedSchema, "no schema resolution from writer %s to reader %s", writer.Type(), reader.Type())
}

package avro

import (
	"math/big"
	"reflect"
	"sort"
	"time"

	"github.com/go-avro/avro/internal/avrolog"
)

var (
	bigIntType  = reflect.TypeOf((*big.Int)(nil))
	decimalType = reflect.TypeOf(Decimal{})
	timeType    = reflect.TypeOf(time.Time{})
	durationGo  = reflect.TypeOf(time.Duration(0))
	bytesType   = reflect.TypeOf([]byte(nil))
	unionValTyp = reflect.TypeOf(UnionValue{})
)

// buildBinaryEncoder is the public entry point for the binary
// SerializerBuilder (spec.md §4.3's build_delegate<T>).
func buildBinaryEncoder(ctx *buildContext, schema Schema, rt reflect.Type) (binaryEncodeFunc, error) {
	key := refKey{schema: resolveRef(schema), typ: rt}
	if p, ok := ctx.binaryEnc[key]; ok {
		return func(w *BinaryWriter, v reflect.Value) error { return (*p)(w, v) }, nil
	}
	p := new(binaryEncodeFunc)
	ctx.binaryEnc[key] = p
	built, err := buildBinaryEncoderCase(ctx, schema, rt)
	if err != nil {
		avrolog.Default.Debug("evicting failed binary encoder plan", "schema", schema.Type(), "type", rt, "err", err)
		delete(ctx.binaryEnc, key)
		return nil, err
	}
	*p = built
	return built, nil
}

// buildBinaryDecoder is the public entry point for the binary
// DeserializerBuilder. An interface (or absent) host type means the
// caller wants the schema's natural Go representation boxed into the
// interface — generic decoding (GenericRecord, map[string]interface{}
// record fields, and so on).
func buildBinaryDecoder(ctx *buildContext, schema Schema, rt reflect.Type) (binaryDecodeFunc, error) {
	// A null schema's natural representation is the interface itself, so it
	// is decoded directly rather than substituted.
	if (rt == nil || rt.Kind() == reflect.Interface) && defaultGoType(schema).Kind() != reflect.Interface {
		concrete := defaultGoType(schema)
		inner, err := buildBinaryDecoder(ctx, schema, concrete)
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, v reflect.Value) error {
			tmp := reflect.New(concrete).Elem()
			if err := inner(r, tmp); err != nil {
				return err
			}
			indirect(v).Set(tmp)
			return nil
		}, nil
	}

	key := refKey{schema: resolveRef(schema), typ: rt}
	if p, ok := ctx.binaryDec[key]; ok {
		return func(r *BinaryReader, v reflect.Value) error { return (*p)(r, v) }, nil
	}
	p := new(binaryDecodeFunc)
	ctx.binaryDec[key] = p
	built, err := buildBinaryDecoderCase(ctx, schema, rt)
	if err != nil {
		avrolog.Default.Debug("evicting failed binary decoder plan", "schema", schema.Type(), "type", rt, "err", err)
		delete(ctx.binaryDec, key)
		return nil, err
	}
	*p = built
	return built, nil
}

func buildBinaryEncoderCase(ctx *buildContext, schema Schema, rt reflect.Type) (binaryEncodeFunc, error) {
	schema = resolveRef(schema)

	if pt, ok := schema.(LogicalTypeSchema); ok && pt.Logical() != nil {
		if f, ok, err := buildLogicalBinaryEncoder(schema, pt.Logical(), rt); ok {
			return f, err
		}
	}

	switch s := schema.(type) {
	case *PrimitiveSchema:
		return buildPrimitiveBinaryEncoder(s.Type(), rt)
	case *FixedSchema:
		return buildFixedBinaryEncoder(s, rt)
	case *EnumSchema:
		return buildEnumBinaryEncoder(s, rt)
	case *ArraySchema:
		return buildArrayBinaryEncoder(ctx, s, rt)
	case *MapSchema:
		return buildMapBinaryEncoder(ctx, s, rt)
	case *UnionSchema:
		return buildUnionBinaryEncoder(ctx, s, rt)
	case *RecordSchema:
		return buildRecordBinaryEncoder(ctx, s, rt)
	default:
		return nil, newError(UnsupportedSchema, "no binary serializer case for schema kind %s", schema.Type())
	}
}

func buildBinaryDecoderCase(ctx *buildContext, schema Schema, rt reflect.Type) (binaryDecodeFunc, error) {
	schema = resolveRef(schema)

	if pt, ok := schema.(LogicalTypeSchema); ok && pt.Logical() != nil {
		if f, ok, err := buildLogicalBinaryDecoder(schema, pt.Logical(), rt); ok {
			return f, err
		}
	}

	switch s := schema.(type) {
	case *PrimitiveSchema:
		return buildPrimitiveBinaryDecoder(s.Type(), rt)
	case *FixedSchema:
		return buildFixedBinaryDecoder(s, rt)
	case *EnumSchema:
		return buildEnumBinaryDecoder(s, rt)
	case *ArraySchema:
		return buildArrayBinaryDecoder(ctx, s, rt)
	case *MapSchema:
		return buildMapBinaryDecoder(ctx, s, rt)
	case *UnionSchema:
		return buildUnionBinaryDecoder(ctx, s, rt)
	case *RecordSchema:
		return buildRecordBinaryDecoder(ctx, s, rt)
	default:
		return nil, newError(UnsupportedSchema, "no binary deserializer case for schema kind %s", schema.Type())
	}
}

// --- primitives ---

func buildPrimitiveBinaryEncoder(t Type, rt reflect.Type) (binaryEncodeFunc, error) {
	switch t {
	case Null:
		return func(w *BinaryWriter, v reflect.Value) error { return nil }, nil
	case Boolean:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteBoolean(indirect(v).Bool())
			return nil
		}, nil
	case Int:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteInt(int32(indirect(v).Int()))
			return nil
		}, nil
	case Long:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteLong(indirect(v).Int())
			return nil
		}, nil
	case Float:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteFloat(float32(indirect(v).Float()))
			return nil
		}, nil
	case Double:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteDouble(indirect(v).Float())
			return nil
		}, nil
	case String:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteString(indirect(v).String())
			return nil
		}, nil
	case Bytes:
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteBytes(indirect(v).Bytes())
			return nil
		}, nil
	default:
		return nil, newError(UnsupportedSchema, "unrecognized primitive type %s", t)
	}
}

func buildPrimitiveBinaryDecoder(t Type, rt reflect.Type) (binaryDecodeFunc, error) {
	switch t {
	case Null:
		return func(r *BinaryReader, v reflect.Value) error { return nil }, nil
	case Boolean:
		return func(r *BinaryReader, v reflect.Value) error {
			b, err := r.ReadBoolean()
			if err != nil {
				return err
			}
			indirect(v).SetBool(b)
			return nil
		}, nil
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
			indirect(v).SetBytes(b)
			return nil
		}, nil
	default:
		return nil, newError(UnsupportedSchema, "unrecognized primitive type %s", t)
	}
}

// --- fixed ---

func buildFixedBinaryEncoder(s *FixedSchema, rt reflect.Type) (binaryEncodeFunc, error) {
	size := s.Size()
	return func(w *BinaryWriter, v reflect.Value) error {
		v = indirect(v)
		var b []byte
		if v.Kind() == reflect.Array {
			b = make([]byte, v.Len())
			reflect.Copy(reflect.ValueOf(b), v)
		} else {
			b = v.Bytes()
		}
		if len(b) != size {
			return newError(Overflow, "fixed value has length %d, schema requires %d", len(b), size)
		}
		w.WriteFixed(b)
		return nil
	}, nil
}

func buildFixedBinaryDecoder(s *FixedSchema, rt reflect.Type) (binaryDecodeFunc, error) {
	size := s.Size()
	return func(r *BinaryReader, v reflect.Value) error {
		b, err := r.ReadFixed(size)
		if err != nil {
			return err
		}
		v = indirect(v)
		if v.Kind() == reflect.Array {
			reflect.Copy(v, reflect.ValueOf(b))
			return nil
		}
		v.SetBytes(b)
		return nil
	}, nil
}

// --- enum ---

func buildEnumBinaryEncoder(s *EnumSchema, rt reflect.Type) (binaryEncodeFunc, error) {
	return func(w *BinaryWriter, v reflect.Value) error {
		sym := indirect(v).String()
		idx := s.IndexOf(sym)
		if idx < 0 {
			for i, cand := range s.Symbols() {
				if equalFold(cand, sym) {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			return newError(OutOfRange, "%q is not a symbol of enum %s", sym, s.FullName())
		}
		w.WriteInt(int32(idx))
		return nil
	}, nil
}

func buildEnumBinaryDecoder(s *EnumSchema, rt reflect.Type) (binaryDecodeFunc, error) {
	return func(r *BinaryReader, v reflect.Value) error {
		idx, err := r.ReadInt()
		if err != nil {
			return err
		}
		symbols := s.Symbols()
		if int(idx) < 0 || int(idx) >= len(symbols) {
			if s.Default() != "" {
				indirect(v).SetString(s.Default())
				return nil
			}
			return newError(OutOfRange, "enum index %d out of range for %s", idx, s.FullName())
		}
		indirect(v).SetString(symbols[idx])
		return nil
	}, nil
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// --- array ---

func buildArrayBinaryEncoder(ctx *buildContext, s *ArraySchema, rt reflect.Type) (binaryEncodeFunc, error) {
	if rt == nil || (rt.Kind() != reflect.Slice && rt.Kind() != reflect.Array) {
		return nil, newError(UnsupportedType, "array schema requires a slice or array host type, got %v", rt)
	}
	elem, err := buildBinaryEncoder(ctx, s.Items(), rt.Elem())
	if err != nil {
		return nil, err
	}
	blockLen := ctx.blockLength
	return func(w *BinaryWriter, v reflect.Value) error {
		v = indirect(v)
		n := v.Len()
		chunk := n
		if blockLen > 0 && blockLen < chunk {
			chunk = blockLen
		}
		for i := 0; i < n; i += chunk {
			end := i + chunk
			if end > n {
				end = n
			}
			w.WriteBlockHeader(end - i)
			for j := i; j < end; j++ {
				if err := elem(w, v.Index(j)); err != nil {
					return err
				}
			}
		}
		w.WriteBlockEnd()
		return nil
	}, nil
}

func buildArrayBinaryDecoder(ctx *buildContext, s *ArraySchema, rt reflect.Type) (binaryDecodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Slice {
		return nil, newError(UnsupportedType, "array schema requires a slice host type, got %v", rt)
	}
	elem, err := buildBinaryDecoder(ctx, s.Items(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(r *BinaryReader, v reflect.Value) error {
		v = indirect(v)
		v.Set(reflect.MakeSlice(rt, 0, 0))
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
				item := reflect.New(rt.Elem()).Elem()
				if err := elem(r, item); err != nil {
					return err
				}
				v.Set(reflect.Append(v, item))
			}
		}
	}, nil
}

// --- map ---

func buildMapBinaryEncoder(ctx *buildContext, s *MapSchema, rt reflect.Type) (binaryEncodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Map {
		return nil, newError(UnsupportedType, "map schema requires a map host type, got %v", rt)
	}
	elem, err := buildBinaryEncoder(ctx, s.Values(), rt.Elem())
	if err != nil {
		return nil, err
	}
	blockLen := ctx.blockLength
	return func(w *BinaryWriter, v reflect.Value) error {
		v = indirect(v)
		n := v.Len()
		chunk := n
		if blockLen > 0 && blockLen < chunk {
			chunk = blockLen
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(a, b int) bool { return keys[a].String() < keys[b].String() })
		next := 0
		remaining := n
		for remaining > 0 {
			count := chunk
			if count > remaining {
				count = remaining
			}
			w.WriteBlockHeader(count)
			for j := 0; j < count; j++ {
				k := keys[next]
				next++
				w.WriteString(k.String())
				if err := elem(w, v.MapIndex(k)); err != nil {
					return err
				}
			}
			remaining -= count
		}
		w.WriteBlockEnd()
		return nil
	}, nil
}

func buildMapBinaryDecoder(ctx *buildContext, s *MapSchema, rt reflect.Type) (binaryDecodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Map {
		return nil, newError(UnsupportedType, "map schema requires a map host type, got %v", rt)
	}
	elem, err := buildBinaryDecoder(ctx, s.Values(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(r *BinaryReader, v reflect.Value) error {
		v = indirect(v)
		v.Set(reflect.MakeMap(rt))
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
				item := reflect.New(rt.Elem()).Elem()
				if err := elem(r, item); err != nil {
					return err
				}
				v.SetMapIndex(reflect.ValueOf(k), item)
			}
		}
	}, nil
}

// --- union ---

func buildUnionBinaryEncoder(ctx *buildContext, s *UnionSchema, rt reflect.Type) (binaryEncodeFunc, error) {
	if nullIdx, valIdx, ok := s.Nullable(); ok {
		valEnc, err := buildBinaryEncoder(ctx, s.Branches()[valIdx], derefType(rt))
		if err != nil {
			return nil, err
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			v = reflect.Indirect(v)
			if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
				w.WriteLong(int64(nullIdx))
				return nil
			}
			if !v.IsValid() {
				w.WriteLong(int64(nullIdx))
				return nil
			}
			w.WriteLong(int64(valIdx))
			return valEnc(w, v)
		}, nil
	}

	branchEnc := make([]binaryEncodeFunc, len(s.Branches()))
	for i, b := range s.Branches() {
		bt := ctx.resolver.SelectType(b, nil)
		f, err := buildBinaryEncoder(ctx, b, bt)
		if err != nil {
			return nil, err
		}
		branchEnc[i] = f
	}
	return func(w *BinaryWriter, v reflect.Value) error {
		v = indirect(v)
		uv, ok := v.Interface().(UnionValue)
		if !ok {
			return newError(UnsupportedType, "union value must be a UnionValue, got %v", v.Type())
		}
		idx := s.IndexOf(uv.BranchKey)
		if idx < 0 {
			return newError(NoMatchingCase, "union has no branch %q", uv.BranchKey)
		}
		w.WriteLong(int64(idx))
		return branchEnc[idx](w, reflect.ValueOf(uv.Value))
	}, nil
}

func buildUnionBinaryDecoder(ctx *buildContext, s *UnionSchema, rt reflect.Type) (binaryDecodeFunc, error) {
	if nullIdx, valIdx, ok := s.Nullable(); ok {
		elemType := derefType(rt)
		valDec, err := buildBinaryDecoder(ctx, s.Branches()[valIdx], elemType)
		if err != nil {
			return nil, err
		}
		return func(r *BinaryReader, v reflect.Value) error {
			idx, err := r.ReadLong()
			if err != nil {
				return err
			}
			if int(idx) == nullIdx {
				v.Set(reflect.Zero(v.Type()))
				return nil
			}
			if int(idx) != valIdx {
				return newError(OutOfRange, "union branch index %d out of range", idx)
			}
			target := reflect.New(elemType)
			if err := valDec(r, target.Elem()); err != nil {
				return err
			}
			if v.Kind() == reflect.Ptr {
				v.Set(target)
			} else {
				v.Set(target.Elem())
			}
			return nil
		}, nil
	}

	branchDec := make([]binaryDecodeFunc, len(s.Branches()))
	branchTypes := make([]reflect.Type, len(s.Branches()))
	for i, b := range s.Branches() {
		bt := ctx.resolver.SelectType(b, nil)
		branchTypes[i] = bt
		f, err := buildBinaryDecoder(ctx, b, bt)
		if err != nil {
			return nil, err
		}
		branchDec[i] = f
	}
	return func(r *BinaryReader, v reflect.Value) error {
		idx, err := r.ReadLong()
		if err != nil {
			return err
		}
		if int(idx) < 0 || int(idx) >= len(s.Branches()) {
			return newError(OutOfRange, "union branch index %d out of range", idx)
		}
		target := reflect.New(branchTypes[idx]).Elem()
		if err := branchDec[idx](r, target); err != nil {
			return err
		}
		indirect(v).Set(reflect.ValueOf(UnionValue{
			BranchKey: typeName(s.Branches()[idx]),
			Value:     target.Interface(),
		}))
		return nil
	}, nil
}

func derefType(rt reflect.Type) reflect.Type {
	if rt != nil && rt.Kind() == reflect.Ptr {
		return rt.Elem()
	}
	return rt
}

// --- record ---

func buildRecordBinaryEncoder(ctx *buildContext, s *RecordSchema, rt reflect.Type) (binaryEncodeFunc, error) {
	rt = derefType(rt)
	if rt == nil {
		return nil, newError(UnsupportedType, "record schema requires a struct or map host type")
	}

	type fieldWriter struct {
		enc     binaryEncodeFunc
		field   fieldPlan
		hasHost bool
		def     interface{}
		typ     Schema
	}
	writers := make([]fieldWriter, len(s.Fields()))
	var reasons []string

	isMapHost := rt.Kind() == reflect.Map
	for i, f := range s.Fields() {
		fw := fieldWriter{def: f.Default(), typ: f.Type()}
		var memberType reflect.Type
		if isMapHost {
			fw.hasHost = true
			fw.field = fieldPlan{name: f.Name(), isMap: true}
			memberType = rt.Elem()
		} else if plan, ok := resolveFieldMatching(rt, f.Name(), ctx.nameMatcher); ok {
			fw.hasHost = true
			fw.field = plan
			memberType = rt.FieldByIndex(plan.index).Type
		} else if !f.HasDefault() {
			reasons = append(reasons, "field "+f.Name()+" has no matching host member and no default")
			continue
		}
		if !fw.hasHost {
			memberType = defaultGoType(f.Type())
		}
		enc, err := buildBinaryEncoder(ctx, f.Type(), memberType)
		if err != nil {
			return nil, err
		}
		fw.enc = enc
		writers[i] = fw
	}
	if len(reasons) > 0 {
		return nil, noMatchingCase("record "+s.FullName(), reasons)
	}

	return func(w *BinaryWriter, v reflect.Value) error {
		v = indirect(v)
		for _, fw := range writers {
			if !fw.hasHost {
				defVal := reflect.New(defaultGoType(fw.typ)).Elem()
				assignDefault(defVal, fw.def)
				if err := fw.enc(w, defVal); err != nil {
					return err
				}
				continue
			}
			var mv reflect.Value
			if fw.field.isMap {
				mv = v.MapIndex(reflect.ValueOf(fw.field.name))
				if !mv.IsValid() {
					mv = reflect.Zero(rt.Elem())
				}
			} else {
				mv = v.FieldByIndex(fw.field.index)
			}
			if err := fw.enc(w, mv); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func buildRecordBinaryDecoder(ctx *buildContext, s *RecordSchema, rt reflect.Type) (binaryDecodeFunc, error) {
	rt = derefType(rt)
	if rt == nil {
		return nil, newError(UnsupportedType, "record schema requires a struct or map host type")
	}

	type fieldReader struct {
		dec     binaryDecodeFunc
		skip    binaryDecodeFunc
		field   fieldPlan
		hasHost bool
		valType reflect.Type
	}
	isMapHost := rt.Kind() == reflect.Map
	readers := make([]fieldReader, len(s.Fields()))
	for i, f := range s.Fields() {
		fr := fieldReader{}
		var memberType reflect.Type
		if isMapHost {
			fr.hasHost = true
			fr.field = fieldPlan{name: f.Name(), isMap: true}
			memberType = rt.Elem()
		} else if plan, ok := resolveFieldMatching(rt, f.Name(), ctx.nameMatcher); ok {
			fr.hasHost = true
			fr.field = plan
			memberType = rt.FieldByIndex(plan.index).Type
		}
		if fr.hasHost {
			dec, err := buildBinaryDecoder(ctx, f.Type(), memberType)
			if err != nil {
				return nil, err
			}
			fr.dec = dec
			fr.valType = memberType
		} else {
			skip, err := buildBinarySkip(ctx, f.Type())
			if err != nil {
				return nil, err
			}
			fr.skip = skip
		}
		readers[i] = fr
	}

	return func(r *BinaryReader, v reflect.Value) error {
		v = indirect(v)
		if isMapHost && v.IsNil() {
			v.Set(reflect.MakeMap(rt))
		}
		for _, fr := range readers {
			if !fr.hasHost {
				if err := fr.skip(r, reflect.Value{}); err != nil {
					return err
				}
				continue
			}
			if fr.field.isMap {
				item := reflect.New(fr.valType).Elem()
				if err := fr.dec(r, item); err != nil {
					return err
				}
				v.SetMapIndex(reflect.ValueOf(fr.field.name), item)
				continue
			}
			if err := fr.dec(r, v.FieldByIndex(fr.field.index)); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

// assignDefault assigns a parsed JSON default value (see
// validDefaultValue) into a freshly allocated reflect.Value of the
// target's natural Go type.
func assignDefault(v reflect.Value, def interface{}) {
	if def == nil {
		return
	}
	switch dv := def.(type) {
	case float64:
		switch v.Kind() {
		case reflect.Int32, reflect.Int64, reflect.Int:
			v.SetInt(int64(dv))
		case reflect.Float32, reflect.Float64:
			v.SetFloat(dv)
		}
	case string:
		if v.Kind() == reflect.String {
			v.SetString(dv)
		} else if v.Type() == bytesType {
			v.SetBytes([]byte(dv))
		}
	case bool:
		v.SetBool(dv)
	case []byte:
		v.SetBytes(dv)
	case []interface{}:
		if v.Kind() == reflect.Slice {
			s := reflect.MakeSlice(v.Type(), len(dv), len(dv))
			for i, item := range dv {
				assignDefault(s.Index(i), item)
			}
			v.Set(s)
		}
	}
}

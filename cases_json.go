package avro

import (
	"reflect"

	jsoniter "github.com/json-iterator/go"

	"github.com/go-avro/avro/internal/avrolog"
)

// buildJSONEncoder is the public entry point for the JSON
// SerializerBuilder.
func buildJSONEncoder(ctx *buildContext, schema Schema, rt reflect.Type) (jsonEncodeFunc, error) {
	key := refKey{schema: resolveRef(schema), typ: rt}
	if p, ok := ctx.jsonEnc[key]; ok {
		return func(w *JSONWriter, v reflect.Value) error { return (*p)(w, v) }, nil
	}
	p := new(jsonEncodeFunc)
	ctx.jsonEnc[key] = p
	built, err := buildJSONEncoderCase(ctx, schema, rt)
	if err != nil {
		avrolog.Default.Debug("evicting failed JSON encoder plan", "schema", schema.Type(), "type", rt, "err", err)
		delete(ctx.jsonEnc, key)
		return nil, err
	}
	*p = built
	return built, nil
}

// buildJSONDecoder is the public entry point for the JSON
// DeserializerBuilder. See buildBinaryDecoder for the interface-type
// (generic decoding) substitution this mirrors.
func buildJSONDecoder(ctx *buildContext, schema Schema, rt reflect.Type) (jsonDecodeFunc, error) {
	if (rt == nil || rt.Kind() == reflect.Interface) && defaultGoType(schema).Kind() != reflect.Interface {
		concrete := defaultGoType(schema)
		inner, err := buildJSONDecoder(ctx, schema, concrete)
		if err != nil {
			return nil, err
		}
		return func(r *JSONReader, v reflect.Value) error {
			tmp := reflect.New(concrete).Elem()
			if err := inner(r, tmp); err != nil {
				return err
			}
			indirect(v).Set(tmp)
			return nil
		}, nil
	}

	key := refKey{schema: resolveRef(schema), typ: rt}
	if p, ok := ctx.jsonDec[key]; ok {
		return func(r *JSONReader, v reflect.Value) error { return (*p)(r, v) }, nil
	}
	p := new(jsonDecodeFunc)
	ctx.jsonDec[key] = p
	built, err := buildJSONDecoderCase(ctx, schema, rt)
	if err != nil {
		avrolog.Default.Debug("evicting failed JSON decoder plan", "schema", schema.Type(), "type", rt, "err", err)
		delete(ctx.jsonDec, key)
		return nil, err
	}
	*p = built
	return built, nil
}

func buildJSONEncoderCase(ctx *buildContext, schema Schema, rt reflect.Type) (jsonEncodeFunc, error) {
	schema = resolveRef(schema)

	switch s := schema.(type) {
	case *PrimitiveSchema:
		return buildPrimitiveJSONEncoder(s.Type())
	case *FixedSchema:
		return buildFixedJSONEncoder(s)
	case *EnumSchema:
		return buildEnumJSONEncoder(s)
	case *ArraySchema:
		return buildArrayJSONEncoder(ctx, s, rt)
	case *MapSchema:
		return buildMapJSONEncoder(ctx, s, rt)
	case *UnionSchema:
		return buildUnionJSONEncoder(ctx, s, rt)
	case *RecordSchema:
		return buildRecordJSONEncoder(ctx, s, rt)
	default:
		return nil, newError(UnsupportedSchema, "no JSON serializer case for schema kind %s", schema.Type())
	}
}

func buildJSONDecoderCase(ctx *buildContext, schema Schema, rt reflect.Type) (jsonDecodeFunc, error) {
	schema = resolveRef(schema)

	switch s := schema.(type) {
	case *PrimitiveSchema:
		return buildPrimitiveJSONDecoder(s.Type())
	case *FixedSchema:
		return buildFixedJSONDecoder(s)
	case *EnumSchema:
		return buildEnumJSONDecoder(s)
	case *ArraySchema:
		return buildArrayJSONDecoder(ctx, s, rt)
	case *MapSchema:
		return buildMapJSONDecoder(ctx, s, rt)
	case *UnionSchema:
		return buildUnionJSONDecoder(ctx, s, rt)
	case *RecordSchema:
		return buildRecordJSONDecoder(ctx, s, rt)
	default:
		return nil, newError(UnsupportedSchema, "no JSON deserializer case for schema kind %s", schema.Type())
	}
}

// --- primitives ---

func buildPrimitiveJSONEncoder(t Type) (jsonEncodeFunc, error) {
	switch t {
	case Null:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteNull(); return nil }, nil
	case Boolean:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteBool(indirect(v).Bool()); return nil }, nil
	case Int:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteInt(int32(indirect(v).Int())); return nil }, nil
	case Long:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteLong(indirect(v).Int()); return nil }, nil
	case Float:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteFloat(float32(indirect(v).Float())); return nil }, nil
	case Double:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteDouble(indirect(v).Float()); return nil }, nil
	case String:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteString(indirect(v).String()); return nil }, nil
	case Bytes:
		return func(w *JSONWriter, v reflect.Value) error { w.WriteBytes(indirect(v).Bytes()); return nil }, nil
	default:
		return nil, newError(UnsupportedSchema, "unrecognized primitive type %s", t)
	}
}

func buildPrimitiveJSONDecoder(t Type) (jsonDecodeFunc, error) {
	switch t {
	case Null:
		return func(r *JSONReader, v reflect.Value) error { return r.ReadNull() }, nil
	case Boolean:
		return func(r *JSONReader, v reflect.Value) error {
			b, err := r.ReadBool()
			if err != nil {
				return err
			}
			indirect(v).SetBool(b)
			return nil
		}, nil
	case Int:
		return func(r *JSONReader, v reflect.Value) error {
			n, err := r.ReadInt()
			if err != nil {
				return err
			}
			indirect(v).SetInt(int64(n))
			return nil
		}, nil
	case Long:
		return func(r *JSONReader, v reflect.Value) error {
			n, err := r.ReadLong()
			if err != nil {
				return err
			}
			indirect(v).SetInt(n)
			return nil
		}, nil
	case Float:
		return func(r *JSONReader, v reflect.Value) error {
			n, err := r.ReadFloat()
			if err != nil {
				return err
			}
			indirect(v).SetFloat(float64(n))
			return nil
		}, nil
	case Double:
		return func(r *JSONReader, v reflect.Value) error {
			n, err := r.ReadDouble()
			if err != nil {
				return err
			}
			indirect(v).SetFloat(n)
			return nil
		}, nil
	case String:
		return func(r *JSONReader, v reflect.Value) error {
			s, err := r.ReadString()
			if err != nil {
				return err
			}
			indirect(v).SetString(s)
			return nil
		}, nil
	case Bytes:
		return func(r *JSONReader, v reflect.Value) error {
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

// --- fixed / enum ---

func buildFixedJSONEncoder(s *FixedSchema) (jsonEncodeFunc, error) {
	size := s.Size()
	return func(w *JSONWriter, v reflect.Value) error {
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
		w.WriteBytes(b)
		return nil
	}, nil
}

func buildFixedJSONDecoder(s *FixedSchema) (jsonDecodeFunc, error) {
	size := s.Size()
	return func(r *JSONReader, v reflect.Value) error {
		b, err := r.ReadBytes()
		if err != nil {
			return err
		}
		if len(b) != size {
			return newError(Overflow, "fixed value has length %d, schema requires %d", len(b), size)
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

func buildEnumJSONEncoder(s *EnumSchema) (jsonEncodeFunc, error) {
	return func(w *JSONWriter, v reflect.Value) error {
		w.WriteString(indirect(v).String())
		return nil
	}, nil
}

func buildEnumJSONDecoder(s *EnumSchema) (jsonDecodeFunc, error) {
	return func(r *JSONReader, v reflect.Value) error {
		sym, err := r.ReadString()
		if err != nil {
			return err
		}
		if s.IndexOf(sym) < 0 {
			if s.Default() != "" {
				indirect(v).SetString(s.Default())
				return nil
			}
			return newError(OutOfRange, "%q is not a symbol of enum %s", sym, s.FullName())
		}
		indirect(v).SetString(sym)
		return nil
	}, nil
}

// --- array / map ---

func buildArrayJSONEncoder(ctx *buildContext, s *ArraySchema, rt reflect.Type) (jsonEncodeFunc, error) {
	if rt == nil || (rt.Kind() != reflect.Slice && rt.Kind() != reflect.Array) {
		return nil, newError(UnsupportedType, "array schema requires a slice or array host type, got %v", rt)
	}
	elem, err := buildJSONEncoder(ctx, s.Items(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(w *JSONWriter, v reflect.Value) error {
		v = indirect(v)
		w.WriteArrayStart()
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				w.WriteMore()
			}
			if err := elem(w, v.Index(i)); err != nil {
				return err
			}
		}
		w.WriteArrayEnd()
		return nil
	}, nil
}

func buildArrayJSONDecoder(ctx *buildContext, s *ArraySchema, rt reflect.Type) (jsonDecodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Slice {
		return nil, newError(UnsupportedType, "array schema requires a slice host type, got %v", rt)
	}
	elem, err := buildJSONDecoder(ctx, s.Items(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(r *JSONReader, v reflect.Value) error {
		v = indirect(v)
		v.Set(reflect.MakeSlice(rt, 0, 0))
		var elemErr error
		err := r.ReadArrayCB(func(r *JSONReader) bool {
			item := reflect.New(rt.Elem()).Elem()
			if elemErr = elem(r, item); elemErr != nil {
				return false
			}
			v.Set(reflect.Append(v, item))
			return true
		})
		if elemErr != nil {
			return elemErr
		}
		return err
	}, nil
}

func buildMapJSONEncoder(ctx *buildContext, s *MapSchema, rt reflect.Type) (jsonEncodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Map {
		return nil, newError(UnsupportedType, "map schema requires a map host type, got %v", rt)
	}
	elem, err := buildJSONEncoder(ctx, s.Values(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(w *JSONWriter, v reflect.Value) error {
		v = indirect(v)
		w.WriteObjectStart()
		iter := v.MapRange()
		first := true
		for iter.Next() {
			if !first {
				w.WriteMore()
			}
			first = false
			w.WriteObjectField(iter.Key().String())
			if err := elem(w, iter.Value()); err != nil {
				return err
			}
		}
		w.WriteObjectEnd()
		return nil
	}, nil
}

func buildMapJSONDecoder(ctx *buildContext, s *MapSchema, rt reflect.Type) (jsonDecodeFunc, error) {
	if rt == nil || rt.Kind() != reflect.Map {
		return nil, newError(UnsupportedType, "map schema requires a map host type, got %v", rt)
	}
	elem, err := buildJSONDecoder(ctx, s.Values(), rt.Elem())
	if err != nil {
		return nil, err
	}
	return func(r *JSONReader, v reflect.Value) error {
		v = indirect(v)
		v.Set(reflect.MakeMap(rt))
		var elemErr error
		err := r.ReadObjectCB(func(r *JSONReader, field string) bool {
			item := reflect.New(rt.Elem()).Elem()
			if elemErr = elem(r, item); elemErr != nil {
				return false
			}
			v.SetMapIndex(reflect.ValueOf(field), item)
			return true
		})
		if elemErr != nil {
			return elemErr
		}
		return err
	}, nil
}

// --- union ---

func buildUnionJSONEncoder(ctx *buildContext, s *UnionSchema, rt reflect.Type) (jsonEncodeFunc, error) {
	if nullIdx, valIdx, ok := s.Nullable(); ok {
		valEnc, err := buildJSONEncoder(ctx, s.Branches()[valIdx], derefType(rt))
		if err != nil {
			return nil, err
		}
		_ = nullIdx
		return func(w *JSONWriter, v reflect.Value) error {
			v = reflect.Indirect(v)
			if !v.IsValid() || ((v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil()) {
				w.WriteNull()
				return nil
			}
			return valEnc(w, v)
		}, nil
	}

	branchEnc := make([]jsonEncodeFunc, len(s.Branches()))
	branchKeys := make([]string, len(s.Branches()))
	for i, b := range s.Branches() {
		bt := ctx.resolver.SelectType(b, nil)
		f, err := buildJSONEncoder(ctx, b, bt)
		if err != nil {
			return nil, err
		}
		branchEnc[i] = f
		branchKeys[i] = typeName(b)
	}
	return func(w *JSONWriter, v reflect.Value) error {
		v = indirect(v)
		uv, ok := v.Interface().(UnionValue)
		if !ok {
			return newError(UnsupportedType, "union value must be a UnionValue, got %v", v.Type())
		}
		idx := s.IndexOf(uv.BranchKey)
		if idx < 0 {
			return newError(NoMatchingCase, "union has no branch %q", uv.BranchKey)
		}
		w.WriteObjectStart()
		w.WriteObjectField(branchKeys[idx])
		if err := branchEnc[idx](w, reflect.ValueOf(uv.Value)); err != nil {
			return err
		}
		w.WriteObjectEnd()
		return nil
	}, nil
}

func buildUnionJSONDecoder(ctx *buildContext, s *UnionSchema, rt reflect.Type) (jsonDecodeFunc, error) {
	if nullIdx, valIdx, ok := s.Nullable(); ok {
		_ = nullIdx
		elemType := derefType(rt)
		valDec, err := buildJSONDecoder(ctx, s.Branches()[valIdx], elemType)
		if err != nil {
			return nil, err
		}
		return func(r *JSONReader, v reflect.Value) error {
			if r.WhatIsNext() == jsoniter.NilValue {
				v.Set(reflect.Zero(v.Type()))
				return r.ReadNull()
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

	branchDec := make([]jsonDecodeFunc, len(s.Branches()))
	branchTypes := make([]reflect.Type, len(s.Branches()))
	branchKeys := make(map[string]int, len(s.Branches()))
	for i, b := range s.Branches() {
		bt := ctx.resolver.SelectType(b, nil)
		branchTypes[i] = bt
		f, err := buildJSONDecoder(ctx, b, bt)
		if err != nil {
			return nil, err
		}
		branchDec[i] = f
		branchKeys[typeName(b)] = i
	}
	return func(r *JSONReader, v reflect.Value) error {
		var decodeErr error
		found := false
		err := r.ReadObjectCB(func(r *JSONReader, field string) bool {
			idx, ok := branchKeys[field]
			if !ok {
				decodeErr = newError(NoMatchingCase, "union has no branch %q", field)
				return false
			}
			found = true
			target := reflect.New(branchTypes[idx]).Elem()
			if decodeErr = branchDec[idx](r, target); decodeErr != nil {
				return false
			}
			indirect(v).Set(reflect.ValueOf(UnionValue{BranchKey: field, Value: target.Interface()}))
			return true
		})
		if decodeErr != nil {
			return decodeErr
		}
		if err != nil {
			return err
		}
		if !found {
			return newError(InvalidEncoding, "union object had no branch field")
		}
		return nil
	}, nil
}

// --- record ---

func buildRecordJSONEncoder(ctx *buildContext, s *RecordSchema, rt reflect.Type) (jsonEncodeFunc, error) {
	rt = derefType(rt)
	if rt == nil {
		return nil, newError(UnsupportedType, "record schema requires a struct or map host type")
	}

	type fieldWriter struct {
		enc     jsonEncodeFunc
		name    string
		field   fieldPlan
		hasHost bool
		def     interface{}
		typ     Schema
	}
	writers := make([]fieldWriter, len(s.Fields()))
	var reasons []string
	isMapHost := rt.Kind() == reflect.Map

	for i, f := range s.Fields() {
		fw := fieldWriter{name: f.Name(), def: f.Default(), typ: f.Type()}
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
		enc, err := buildJSONEncoder(ctx, f.Type(), memberType)
		if err != nil {
			return nil, err
		}
		fw.enc = enc
		writers[i] = fw
	}
	if len(reasons) > 0 {
		return nil, noMatchingCase("record "+s.FullName(), reasons)
	}

	return func(w *JSONWriter, v reflect.Value) error {
		v = indirect(v)
		w.WriteObjectStart()
		for i, fw := range writers {
			if i > 0 {
				w.WriteMore()
			}
			w.WriteObjectField(fw.name)
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
		w.WriteObjectEnd()
		return nil
	}, nil
}

func buildRecordJSONDecoder(ctx *buildContext, s *RecordSchema, rt reflect.Type) (jsonDecodeFunc, error) {
	rt = derefType(rt)
	if rt == nil {
		return nil, newError(UnsupportedType, "record schema requires a struct or map host type")
	}

	type fieldReader struct {
		dec     jsonDecodeFunc
		field   fieldPlan
		valType reflect.Type
	}
	isMapHost := rt.Kind() == reflect.Map
	byName := make(map[string]fieldReader, len(s.Fields()))
	for _, f := range s.Fields() {
		var memberType reflect.Type
		var plan fieldPlan
		if isMapHost {
			plan = fieldPlan{name: f.Name(), isMap: true}
			memberType = rt.Elem()
		} else {
			p, ok := resolveFieldMatching(rt, f.Name(), ctx.nameMatcher)
			if !ok {
				continue // no host member: decoded value is simply dropped
			}
			plan = p
			memberType = rt.FieldByIndex(p.index).Type
		}
		dec, err := buildJSONDecoder(ctx, f.Type(), memberType)
		if err != nil {
			return nil, err
		}
		byName[f.Name()] = fieldReader{dec: dec, field: plan, valType: memberType}
	}

	return func(r *JSONReader, v reflect.Value) error {
		v = indirect(v)
		if isMapHost && v.IsNil() {
			v.Set(reflect.MakeMap(rt))
		}
		var fieldErr error
		err := r.ReadObjectCB(func(r *JSONReader, name string) bool {
			fr, ok := byName[name]
			if !ok {
				fieldErr = r.Skip()
				return fieldErr == nil
			}
			if fr.field.isMap {
				item := reflect.New(fr.valType).Elem()
				if fieldErr = fr.dec(r, item); fieldErr != nil {
					return false
				}
				v.SetMapIndex(reflect.ValueOf(fr.field.name), item)
				return true
			}
			fieldErr = fr.dec(r, v.FieldByIndex(fr.field.index))
			return fieldErr == nil
		})
		if fieldErr != nil {
			return fieldErr
		}
		return err
	}, nil
}

package avro

// validDefaultValue validates and normalizes a field or union default
// value against its declared schema, per spec.md §3.4: defaults are
// decoded from the surrounding schema JSON (so def arrives as the usual
// JSON-decoded shapes: nil, bool, float64, string, []interface{},
// map[string]interface{}) and must match the first branch of a union.
// It returns the normalized value and whether it was valid.
func validDefaultValue(s Schema, def interface{}) (interface{}, bool) {
	s = resolveRef(s)

	switch s.Type() {
	case Null:
		return nil, def == nil
	case Boolean:
		v, ok := def.(bool)
		return v, ok
	case Int, Long:
		switch v := def.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case int64:
			return float64(v), true
		default:
			return nil, false
		}
	case Float, Double:
		switch v := def.(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		default:
			return nil, false
		}
	case String:
		v, ok := def.(string)
		return v, ok
	case Bytes:
		v, ok := def.(string)
		if !ok {
			return nil, false
		}
		return stringDefaultToBytes(v), true
	case Fixed:
		v, ok := def.(string)
		if !ok {
			return nil, false
		}
		b := stringDefaultToBytes(v)
		if len(b) != s.(*FixedSchema).Size() {
			return nil, false
		}
		return b, true
	case Enum:
		v, ok := def.(string)
		if !ok {
			return nil, false
		}
		if s.(*EnumSchema).IndexOf(v) < 0 {
			return nil, false
		}
		return v, true
	case Array:
		items, ok := def.([]interface{})
		if !ok {
			return nil, false
		}
		elemSchema := s.(*ArraySchema).Items()
		out := make([]interface{}, len(items))
		for i, item := range items {
			v, ok := validDefaultValue(elemSchema, item)
			if !ok {
				return nil, false
			}
			out[i] = v
		}
		return out, true
	case Map:
		m, ok := def.(map[string]interface{})
		if !ok {
			return nil, false
		}
		valSchema := s.(*MapSchema).Values()
		out := make(map[string]interface{}, len(m))
		for k, item := range m {
			v, ok := validDefaultValue(valSchema, item)
			if !ok {
				return nil, false
			}
			out[k] = v
		}
		return out, true
	case Record:
		m, ok := def.(map[string]interface{})
		if !ok {
			return nil, false
		}
		rec := s.(*RecordSchema)
		out := make(map[string]interface{}, len(rec.Fields()))
		for _, f := range rec.Fields() {
			raw, present := m[f.Name()]
			if !present {
				if !f.HasDefault() {
					return nil, false
				}
				out[f.Name()] = f.Default()
				continue
			}
			v, ok := validDefaultValue(f.Type(), raw)
			if !ok {
				return nil, false
			}
			out[f.Name()] = v
		}
		return out, true
	case Union:
		branches := s.(*UnionSchema).Branches()
		if len(branches) == 0 {
			return nil, false
		}
		// spec.md §3.4: a union default's JSON shape matches the union's
		// first branch, unwrapped (no {"branch": value} wrapper).
		return validDefaultValue(branches[0], def)
	default:
		return nil, false
	}
}

// stringDefaultToBytes converts an Avro bytes/fixed JSON default string
// (one Unicode code point per byte, 0-255) to raw bytes.
func stringDefaultToBytes(s string) []byte {
	r := []rune(s)
	b := make([]byte, len(r))
	for i, c := range r {
		b[i] = byte(c)
	}
	return b
}

package avro

// Equal reports whether two schemas are structurally equivalent,
// per spec.md §3.5: comparison must terminate on cyclic record graphs, so
// it tracks pairs of named schemas already being compared and treats a
// revisit as equal (the standard coinductive-equality trick for cyclic
// structures).
func Equal(a, b Schema) bool {
	return equalSchema(a, b, map[[2]string]bool{})
}

func equalSchema(a, b Schema, visiting map[[2]string]bool) bool {
	a, b = resolveRef(a), resolveRef(b)
	if a.Type() != b.Type() {
		return false
	}

	switch av := a.(type) {
	case *PrimitiveSchema:
		bv := b.(*PrimitiveSchema)
		return equalLogical(av.Logical(), bv.Logical())
	case *ArraySchema:
		bv := b.(*ArraySchema)
		return equalSchema(av.Items(), bv.Items(), visiting)
	case *MapSchema:
		bv := b.(*MapSchema)
		return equalSchema(av.Values(), bv.Values(), visiting)
	case *UnionSchema:
		bv := b.(*UnionSchema)
		if len(av.Branches()) != len(bv.Branches()) {
			return false
		}
		for i := range av.Branches() {
			if !equalSchema(av.Branches()[i], bv.Branches()[i], visiting) {
				return false
			}
		}
		return true
	case *FixedSchema:
		bv := b.(*FixedSchema)
		if av.FullName() != bv.FullName() || av.Size() != bv.Size() {
			return false
		}
		return equalLogical(av.Logical(), bv.Logical())
	case *EnumSchema:
		bv := b.(*EnumSchema)
		if av.FullName() != bv.FullName() || len(av.Symbols()) != len(bv.Symbols()) {
			return false
		}
		for i := range av.Symbols() {
			if av.Symbols()[i] != bv.Symbols()[i] {
				return false
			}
		}
		return true
	case *RecordSchema:
		bv := b.(*RecordSchema)
		if av.FullName() != bv.FullName() {
			return false
		}
		key := [2]string{av.FullName(), bv.FullName()}
		if visiting[key] {
			return true
		}
		visiting[key] = true
		if len(av.Fields()) != len(bv.Fields()) {
			return false
		}
		for i := range av.Fields() {
			fa, fb := av.Fields()[i], bv.Fields()[i]
			if fa.Name() != fb.Name() {
				return false
			}
			if !equalSchema(fa.Type(), fb.Type(), visiting) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func equalLogical(a, b LogicalSchema) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	if da, ok := a.(*DecimalLogicalSchema); ok {
		db := b.(*DecimalLogicalSchema)
		return da.Precision() == db.Precision() && da.Scale() == db.Scale()
	}
	return true
}

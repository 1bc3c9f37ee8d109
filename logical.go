package avro

import (
	"math"
	"strconv"
)

// PrimitiveLogicalSchema is a logical type with no extra parameters: date,
// time-millis, time-micros, timestamp-millis, timestamp-micros, uuid,
// duration (spec.md §3.3).
type PrimitiveLogicalSchema struct {
	typ LogicalType
}

// NewPrimitiveLogicalSchema constructs a parameterless logical type.
func NewPrimitiveLogicalSchema(typ LogicalType) *PrimitiveLogicalSchema {
	return &PrimitiveLogicalSchema{typ: typ}
}

// Type returns the logical type.
func (s *PrimitiveLogicalSchema) Type() LogicalType { return s.typ }

// String returns the logical type's canonical JSON fragment.
func (s *PrimitiveLogicalSchema) String() string {
	return `"logicalType":"` + string(s.typ) + `"`
}

// DecimalLogicalSchema is the decimal logical type: a fixed-point number
// with a given precision (total digits) and scale (digits after the
// point), valid only on bytes or fixed (spec.md §3.2, §3.3).
type DecimalLogicalSchema struct {
	precision int
	scale     int
}

// NewDecimalLogicalSchema constructs a decimal logical schema. precision
// must be positive and scale must not exceed precision, per spec.md §3.2;
// violations return an *Error{Kind: InvalidSchema}.
func NewDecimalLogicalSchema(precision, scale int) (*DecimalLogicalSchema, error) {
	if precision <= 0 {
		return nil, newError(InvalidSchema, "decimal precision must be positive, got %d", precision)
	}
	if scale < 0 {
		return nil, newError(InvalidSchema, "decimal scale must be non-negative, got %d", scale)
	}
	if scale > precision {
		return nil, newError(InvalidSchema, "decimal scale %d may not exceed precision %d", scale, precision)
	}
	return &DecimalLogicalSchema{precision: precision, scale: scale}, nil
}

// Type returns DecimalLogical.
func (s *DecimalLogicalSchema) Type() LogicalType { return DecimalLogical }

// Precision returns the decimal's total digit count.
func (s *DecimalLogicalSchema) Precision() int { return s.precision }

// Scale returns the decimal's digits-after-the-point count.
func (s *DecimalLogicalSchema) Scale() int { return s.scale }

// String returns the logical type's canonical JSON fragment.
func (s *DecimalLogicalSchema) String() string {
	out := `"logicalType":"decimal","precision":` + strconv.Itoa(s.precision)
	if s.scale > 0 {
		out += `,"scale":` + strconv.Itoa(s.scale)
	}
	return out
}

// maxDecimalPrecisionForSize returns the maximum decimal precision that
// fits in a fixed schema of the given byte size.
func maxDecimalPrecisionForSize(size int) int {
	return int(math.Round(math.Floor(math.Log10(2) * (8*float64(size) - 1))))
}

package avro

import "math/big"

// Decimal is the host representation of an Avro decimal logical value: an
// arbitrary-precision integer of the schema's scale (spec.md §3.3, §4.4:
// "convert host decimal to scaled big-integer").
type Decimal struct {
	Unscaled *big.Int
	Scale    int
}

// NewDecimal constructs a Decimal.
func NewDecimal(unscaled *big.Int, scale int) Decimal {
	return Decimal{Unscaled: unscaled, Scale: scale}
}

// Rat returns the decimal's exact rational value.
func (d Decimal) Rat() *big.Rat {
	r := new(big.Rat).SetInt(d.Unscaled)
	if d.Scale == 0 {
		return r
	}
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d.Scale)), nil)
	return r.Quo(r, new(big.Rat).SetInt(denom))
}

func (d Decimal) String() string { return d.Rat().FloatString(d.Scale) }

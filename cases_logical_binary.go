package avro

import (
	"reflect"
	"time"
)

// buildLogicalBinaryEncoder handles the logical-type encodings of
// spec.md §4.4. ok is false when rt is not one of the host types this
// logical type recognizes, in which case the caller falls through to the
// plain underlying-primitive case — the host value is then just the raw
// scaled integer/string with no logical interpretation applied.
func buildLogicalBinaryEncoder(schema Schema, logical LogicalSchema, rt reflect.Type) (f binaryEncodeFunc, ok bool, err error) {
	rt = derefType(rt)
	switch logical.Type() {
	case DecimalLogical:
		if rt != decimalType {
			return nil, false, nil
		}
		dl := logical.(*DecimalLogicalSchema)
		if schema.Type() == Fixed {
			size := schema.(*FixedSchema).Size()
			return func(w *BinaryWriter, v reflect.Value) error {
				d := indirect(v).Interface().(Decimal)
				if d.Scale != dl.Scale() {
					return newError(Overflow, "decimal value scale %d does not match schema scale %d", d.Scale, dl.Scale())
				}
				return w.WriteDecimalFixed(d.Unscaled, size)
			}, true, nil
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			d := indirect(v).Interface().(Decimal)
			if d.Scale != dl.Scale() {
				return newError(Overflow, "decimal value scale %d does not match schema scale %d", d.Scale, dl.Scale())
			}
			w.WriteDecimal(d.Unscaled)
			return nil
		}, true, nil
	case UUID:
		if rt != nil && rt.Kind() == reflect.String {
			return func(w *BinaryWriter, v reflect.Value) error {
				w.WriteString(indirect(v).String())
				return nil
			}, true, nil
		}
		return nil, false, nil
	case Date:
		if rt != timeType {
			return nil, false, nil
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteInt(dateToDays(indirect(v).Interface().(time.Time)))
			return nil
		}, true, nil
	case TimeMillis:
		switch rt {
		case timeType:
			return func(w *BinaryWriter, v reflect.Value) error {
				w.WriteInt(timeToMillis(indirect(v).Interface().(time.Time)))
				return nil
			}, true, nil
		case durationGo:
			return func(w *BinaryWriter, v reflect.Value) error {
				w.WriteInt(int32(indirect(v).Interface().(time.Duration).Milliseconds()))
				return nil
			}, true, nil
		}
		return nil, false, nil
	case TimeMicros:
		switch rt {
		case timeType:
			return func(w *BinaryWriter, v reflect.Value) error {
				w.WriteLong(timeToMicros(indirect(v).Interface().(time.Time)))
				return nil
			}, true, nil
		case durationGo:
			return func(w *BinaryWriter, v reflect.Value) error {
				w.WriteLong(indirect(v).Interface().(time.Duration).Microseconds())
				return nil
			}, true, nil
		}
		return nil, false, nil
	case TimestampMillis:
		if rt != timeType {
			return nil, false, nil
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteLong(timestampToMillis(indirect(v).Interface().(time.Time)))
			return nil
		}, true, nil
	case TimestampMicros:
		if rt != timeType {
			return nil, false, nil
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			w.WriteLong(timestampToMicros(indirect(v).Interface().(time.Time)))
			return nil
		}, true, nil
	case DurationLogical:
		if rt != durationGo {
			return nil, false, nil
		}
		return func(w *BinaryWriter, v reflect.Value) error {
			months, days, millis, err := durationToParts(indirect(v).Interface().(time.Duration))
			if err != nil {
				return err
			}
			w.WriteDuration(months, days, millis)
			return nil
		}, true, nil
	default:
		return nil, false, nil
	}
}

func buildLogicalBinaryDecoder(schema Schema, logical LogicalSchema, rt reflect.Type) (f binaryDecodeFunc, ok bool, err error) {
	rt = derefType(rt)
	switch logical.Type() {
	case DecimalLogical:
		if rt != decimalType {
			return nil, false, nil
		}
		dl := logical.(*DecimalLogicalSchema)
		if schema.Type() == Fixed {
			size := schema.(*FixedSchema).Size()
			return func(r *BinaryReader, v reflect.Value) error {
				u, err := r.ReadDecimalFixed(size)
				if err != nil {
					return err
				}
				indirect(v).Set(reflect.ValueOf(NewDecimal(u, dl.Scale())))
				return nil
			}, true, nil
		}
		return func(r *BinaryReader, v reflect.Value) error {
			u, err := r.ReadDecimal()
			if err != nil {
				return err
			}
			indirect(v).Set(reflect.ValueOf(NewDecimal(u, dl.Scale())))
			return nil
		}, true, nil
	case UUID:
		if rt != nil && rt.Kind() == reflect.String {
			return func(r *BinaryReader, v reflect.Value) error {
				s, err := r.ReadString()
				if err != nil {
					return err
				}
				indirect(v).SetString(s)
				return nil
			}, true, nil
		}
		return nil, false, nil
	case Date:
		if rt != timeType {
			return nil, false, nil
		}
		return func(r *BinaryReader, v reflect.Value) error {
			n, err := r.ReadInt()
			if err != nil {
				return err
			}
			indirect(v).Set(reflect.ValueOf(daysToDate(n)))
			return nil
		}, true, nil
	case TimeMillis:
		switch rt {
		case timeType:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadInt()
				if err != nil {
					return err
				}
				indirect(v).Set(reflect.ValueOf(millisToTime(n)))
				return nil
			}, true, nil
		case durationGo:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadInt()
				if err != nil {
					return err
				}
				indirect(v).Set(reflect.ValueOf(time.Duration(n) * time.Millisecond))
				return nil
			}, true, nil
		}
		return nil, false, nil
	case TimeMicros:
		switch rt {
		case timeType:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadLong()
				if err != nil {
					return err
				}
				indirect(v).Set(reflect.ValueOf(microsToTime(n)))
				return nil
			}, true, nil
		case durationGo:
			return func(r *BinaryReader, v reflect.Value) error {
				n, err := r.ReadLong()
				if err != nil {
					return err
				}
				indirect(v).Set(reflect.ValueOf(time.Duration(n) * time.Microsecond))
				return nil
			}, true, nil
		}
		return nil, false, nil
	case TimestampMillis:
		if rt != timeType {
			return nil, false, nil
		}
		return func(r *BinaryReader, v reflect.Value) error {
			n, err := r.ReadLong()
			if err != nil {
				return err
			}
			indirect(v).Set(reflect.ValueOf(millisToTimestamp(n)))
			return nil
		}, true, nil
	case TimestampMicros:
		if rt != timeType {
			return nil, false, nil
		}
		return func(r *BinaryReader, v reflect.Value) error {
			n, err := r.ReadLong()
			if err != nil {
				return err
			}
			indirect(v).Set(reflect.ValueOf(microsToTimestamp(n)))
			return nil
		}, true, nil
	case DurationLogical:
		if rt != durationGo {
			return nil, false, nil
		}
		return func(r *BinaryReader, v reflect.Value) error {
			months, days, millis, err := r.ReadDuration()
			if err != nil {
				return err
			}
			indirect(v).Set(reflect.ValueOf(partsToDuration(months, days, millis)))
			return nil
		}, true, nil
	default:
		return nil, false, nil
	}
}

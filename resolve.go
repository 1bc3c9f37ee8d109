package avro

import (
	"reflect"
	"strings"

	"github.com/modern-go/reflect2"
)

// structFieldTag is the struct tag key consulted before falling back to
// case-insensitive name matching (spec.md §4.2's "matching host member").
const structFieldTag = "avro"

// fieldPlan describes how a record field's value is reached on a host
// struct: either a struct field index path, or (for map[string]T hosts)
// just the field name.
type fieldPlan struct {
	index []int
	name  string
	isMap bool
}

// nameMatcher is a caller-supplied last-resort field matcher, installed
// via WithNameMatcher, consulted when the tag/exact/fold chain misses.
type nameMatcher func(fieldName, avroName string) bool

// resolveField locates the host struct member matching an Avro field
// name: first an explicit `avro:"..."` tag, then an exact name match,
// then a case-insensitive match. rt must be a struct type.
func resolveField(rt reflect.Type, avroName string) (fieldPlan, bool) {
	return resolveFieldMatching(rt, avroName, nil)
}

// resolveFieldMatching is resolveField with an optional extra matcher
// consulted after the tag/exact/fold chain, for WithNameMatcher callers.
func resolveFieldMatching(rt reflect.Type, avroName string, extra nameMatcher) (fieldPlan, bool) {
	if rt.Kind() != reflect.Struct {
		return fieldPlan{}, false
	}

	type candidate struct {
		index []int
		name  string
	}
	var exact, tagged, fold, extraMatch *candidate

	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			if sf.PkgPath != "" && !sf.Anonymous {
				continue // unexported
			}
			idx := append(append([]int{}, prefix...), i)

			if tag, ok := sf.Tag.Lookup(structFieldTag); ok {
				tagName := strings.Split(tag, ",")[0]
				if tagName == avroName {
					tagged = &candidate{index: idx, name: sf.Name}
					continue
				}
			}
			if sf.Anonymous && sf.Type.Kind() == reflect.Struct {
				walk(sf.Type, idx)
				continue
			}
			if sf.Name == avroName {
				exact = &candidate{index: idx, name: sf.Name}
			} else if fold == nil && strings.EqualFold(sf.Name, avroName) {
				fold = &candidate{index: idx, name: sf.Name}
			} else if extra != nil && extraMatch == nil && extra(sf.Name, avroName) {
				extraMatch = &candidate{index: idx, name: sf.Name}
			}
		}
	}
	walk(rt, nil)

	switch {
	case tagged != nil:
		return fieldPlan{index: tagged.index}, true
	case exact != nil:
		return fieldPlan{index: exact.index}, true
	case fold != nil:
		return fieldPlan{index: fold.index}, true
	case extraMatch != nil:
		return fieldPlan{index: extraMatch.index}, true
	default:
		return fieldPlan{}, false
	}
}

// typeCache memoizes reflect2.Type lookups, grounded on the teacher
// pack's generic reflect2-based codecs (spec.md §4.2 "Type Introspection
// (B)"). Each buildContext allocates one; no builder case calls get, so
// the encode/decode plans do not go through it.
type typeCache struct {
	types map[reflect.Type]reflect2.Type
}

func newTypeCache() *typeCache { return &typeCache{types: make(map[reflect.Type]reflect2.Type)} }

func (c *typeCache) get(rt reflect.Type) reflect2.Type {
	if t, ok := c.types[rt]; ok {
		return t
	}
	t := reflect2.Type2(rt)
	c.types[rt] = t
	return t
}

// indirect dereferences pointers and unwraps interfaces down to the
// concrete settable value, allocating through new pointers as needed.
func indirect(v reflect.Value) reflect.Value {
	for {
		switch v.Kind() {
		case reflect.Ptr:
			if v.IsNil() {
				if !v.CanSet() {
					return v
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		case reflect.Interface:
			if v.IsNil() {
				return v
			}
			v = v.Elem()
		default:
			return v
		}
	}
}

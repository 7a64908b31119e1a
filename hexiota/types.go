package hexiota

import (
	"fmt"
	"math"

	"github.com/Neumenon/hexweave/pattern"
)

// Type is the variant of an Iota.
type Type uint8

const (
	TypePattern Type = iota
	TypeNumber
	TypeBoolean
	TypeVector
	TypeNull
	TypeList
	TypeText
)

// typeTags are the registry names stored in lowered structured data.
var typeTags = [...]string{
	TypePattern: "hexcasting:pattern",
	TypeNumber:  "hexcasting:double",
	TypeBoolean: "hexcasting:boolean",
	TypeVector:  "hexcasting:vec3",
	TypeNull:    "hexcasting:null",
	TypeList:    "hexcasting:list",
	TypeText:    "moreiotas:string",
}

// String returns a short name for the type.
func (t Type) String() string {
	switch t {
	case TypePattern:
		return "pattern"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeVector:
		return "vector"
	case TypeNull:
		return "null"
	case TypeList:
		return "list"
	case TypeText:
		return "text"
	default:
		return fmt.Sprintf("Type(%d)", t)
	}
}

// Tag returns the registry name, e.g. "hexcasting:pattern".
func (t Type) Tag() string {
	if int(t) < len(typeTags) {
		return typeTags[t]
	}
	return ""
}

func typeForTag(tag string) (Type, bool) {
	for i, s := range typeTags {
		if s == tag {
			return Type(i), true
		}
	}
	return 0, false
}

// Iota is a node of the spell value tree. Iotas are immutable once built.
type Iota struct {
	typ  Type
	pat  pattern.Pattern
	num  float64
	b    bool
	vec  [3]float64
	str  string
	list []*Iota
}

// ============================================================
// Constructors
// ============================================================

// Pattern creates a pattern iota.
func Pattern(p pattern.Pattern) *Iota {
	return &Iota{typ: TypePattern, pat: p}
}

// Number creates a number iota.
func Number(v float64) *Iota {
	return &Iota{typ: TypeNumber, num: v}
}

// Bool creates a boolean iota.
func Bool(v bool) *Iota {
	return &Iota{typ: TypeBoolean, b: v}
}

// Vector creates a vector iota.
func Vector(x, y, z float64) *Iota {
	return &Iota{typ: TypeVector, vec: [3]float64{x, y, z}}
}

// Null creates the null iota.
func Null() *Iota {
	return &Iota{typ: TypeNull}
}

// List creates a list iota. The slice is copied.
func List(elems ...*Iota) *Iota {
	list := make([]*Iota, len(elems))
	copy(list, elems)
	return &Iota{typ: TypeList, list: list}
}

// Text creates a text iota.
func Text(s string) *Iota {
	return &Iota{typ: TypeText, str: s}
}

// ============================================================
// Accessors
// ============================================================

// Type returns the variant.
func (v *Iota) Type() Type {
	return v.typ
}

// TypeTag returns the registry name of the variant.
func (v *Iota) TypeTag() string {
	return v.typ.Tag()
}

// AsPattern returns the pattern of a pattern iota.
func (v *Iota) AsPattern() (pattern.Pattern, error) {
	if v.typ != TypePattern {
		return pattern.Pattern{}, fmt.Errorf("hexiota: expected pattern, got %s", v.typ)
	}
	return v.pat, nil
}

// AsNumber returns the value of a number iota.
func (v *Iota) AsNumber() (float64, error) {
	if v.typ != TypeNumber {
		return 0, fmt.Errorf("hexiota: expected number, got %s", v.typ)
	}
	return v.num, nil
}

// AsBool returns the value of a boolean iota.
func (v *Iota) AsBool() (bool, error) {
	if v.typ != TypeBoolean {
		return false, fmt.Errorf("hexiota: expected boolean, got %s", v.typ)
	}
	return v.b, nil
}

// AsVector returns the components of a vector iota.
func (v *Iota) AsVector() ([3]float64, error) {
	if v.typ != TypeVector {
		return [3]float64{}, fmt.Errorf("hexiota: expected vector, got %s", v.typ)
	}
	return v.vec, nil
}

// AsList returns the elements of a list iota.
func (v *Iota) AsList() ([]*Iota, error) {
	if v.typ != TypeList {
		return nil, fmt.Errorf("hexiota: expected list, got %s", v.typ)
	}
	return v.list, nil
}

// AsText returns the value of a text iota.
func (v *Iota) AsText() (string, error) {
	if v.typ != TypeText {
		return "", fmt.Errorf("hexiota: expected text, got %s", v.typ)
	}
	return v.str, nil
}

// IsNull reports whether v is the null iota.
func (v *Iota) IsNull() bool {
	return v.typ == TypeNull
}

// Len returns the number of elements of a list iota, 0 otherwise.
func (v *Iota) Len() int {
	if v.typ != TypeList {
		return 0
	}
	return len(v.list)
}

// Count returns the pattern-generation cost: 1 for scalars and one plus
// the sum of the children for lists.
func (v *Iota) Count() int {
	if v.typ != TypeList {
		return 1
	}
	n := 1
	for _, e := range v.list {
		n += e.Count()
	}
	return n
}

// Equal reports structural equality. NaN numbers compare equal.
func Equal(a, b *Iota) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.typ != b.typ {
		return false
	}
	switch a.typ {
	case TypePattern:
		return a.pat == b.pat
	case TypeNumber:
		return floatEqual(a.num, b.num)
	case TypeBoolean:
		return a.b == b.b
	case TypeVector:
		for i := range a.vec {
			if !floatEqual(a.vec[i], b.vec[i]) {
				return false
			}
		}
		return true
	case TypeNull:
		return true
	case TypeList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case TypeText:
		return a.str == b.str
	default:
		return false
	}
}

func floatEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

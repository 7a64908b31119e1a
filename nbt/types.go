package nbt

import (
	"fmt"
	"math"
)

// Kind identifies the variant of a Tag.
type Kind uint8

const (
	KindEnd Kind = iota // element kind of an empty list
	KindByte
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindString
	KindList
	KindByteArray
	KindIntArray
	KindLongArray
	KindCompound
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEnd:
		return "end"
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindByteArray:
		return "byte_array"
	case KindIntArray:
		return "int_array"
	case KindLongArray:
		return "long_array"
	case KindCompound:
		return "compound"
	default:
		return "unknown"
	}
}

// IsIntegral reports whether k is Byte, Short, Int or Long.
func (k Kind) IsIntegral() bool {
	return k >= KindByte && k <= KindLong
}

// IsNumeric reports whether k is one of the six numeric kinds.
func (k Kind) IsNumeric() bool {
	return k >= KindByte && k <= KindDouble
}

// IsArray reports whether k is one of the typed numeric arrays.
func (k Kind) IsArray() bool {
	return k == KindByteArray || k == KindIntArray || k == KindLongArray
}

// arrayElem returns the element kind of a typed array kind.
func (k Kind) arrayElem() Kind {
	switch k {
	case KindByteArray:
		return KindByte
	case KindIntArray:
		return KindInt
	case KindLongArray:
		return KindLong
	default:
		return KindEnd
	}
}

// Tag is a node of the structured-data tree.
//
// Only the fields matching kind are meaningful. Tags are built with the
// constructors below; lists, arrays and compounds are mutated through
// Append and Set, which keep their invariants.
type Tag struct {
	kind Kind

	intVal   int64
	floatVal float64
	strVal   string

	// List
	elems    []*Tag
	elemKind Kind

	// Typed arrays
	arr []int64

	// Compound, in insertion order
	entries []Entry
}

// Entry is a key/value pair of a compound.
type Entry struct {
	Key   string
	Value *Tag
}

// E is shorthand for building an Entry.
func E(key string, value *Tag) Entry {
	return Entry{Key: key, Value: value}
}

// ============================================================
// Constructors
// ============================================================

// Byte creates a byte tag.
func Byte(v int8) *Tag {
	return &Tag{kind: KindByte, intVal: int64(v)}
}

// Bool creates a byte tag holding 1 or 0.
func Bool(v bool) *Tag {
	if v {
		return Byte(1)
	}
	return Byte(0)
}

// Short creates a short tag.
func Short(v int16) *Tag {
	return &Tag{kind: KindShort, intVal: int64(v)}
}

// Int creates an int tag.
func Int(v int32) *Tag {
	return &Tag{kind: KindInt, intVal: int64(v)}
}

// Long creates a long tag.
func Long(v int64) *Tag {
	return &Tag{kind: KindLong, intVal: v}
}

// Float creates a float tag.
func Float(v float32) *Tag {
	return &Tag{kind: KindFloat, floatVal: float64(v)}
}

// Double creates a double tag.
func Double(v float64) *Tag {
	return &Tag{kind: KindDouble, floatVal: v}
}

// String creates a string tag.
func String(v string) *Tag {
	return &Tag{kind: KindString, strVal: v}
}

// List creates a list tag. All elements must share one kind.
func List(elems ...*Tag) (*Tag, error) {
	t := &Tag{kind: KindList}
	for _, e := range elems {
		if err := t.Append(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// EmptyList creates a list with no elements.
func EmptyList() *Tag {
	return &Tag{kind: KindList}
}

// ByteArray creates a [B;...] tag.
func ByteArray(vals ...int8) *Tag {
	arr := make([]int64, len(vals))
	for i, v := range vals {
		arr[i] = int64(v)
	}
	return &Tag{kind: KindByteArray, arr: arr}
}

// IntArray creates an [I;...] tag.
func IntArray(vals ...int32) *Tag {
	arr := make([]int64, len(vals))
	for i, v := range vals {
		arr[i] = int64(v)
	}
	return &Tag{kind: KindIntArray, arr: arr}
}

// LongArray creates an [L;...] tag.
func LongArray(vals ...int64) *Tag {
	arr := make([]int64, len(vals))
	copy(arr, vals)
	return &Tag{kind: KindLongArray, arr: arr}
}

// Compound creates a compound tag. Keys must be non-empty and unique.
func Compound(entries ...Entry) (*Tag, error) {
	t := NewCompound()
	for _, e := range entries {
		if t.Has(e.Key) {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateKey, e.Key)
		}
		if err := t.Set(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NewCompound creates an empty compound.
func NewCompound() *Tag {
	return &Tag{kind: KindCompound}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the tag kind.
func (t *Tag) Kind() Kind {
	if t == nil {
		return KindEnd
	}
	return t.kind
}

// AsInt returns the value of an integral tag.
func (t *Tag) AsInt() (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	if !t.kind.IsIntegral() {
		return 0, fmt.Errorf("nbt: expected integral tag, got %s", t.kind)
	}
	return t.intVal, nil
}

// AsFloat returns the value of any numeric tag as float64.
func (t *Tag) AsFloat() (float64, error) {
	if t == nil {
		return 0, fmt.Errorf("nbt: nil tag")
	}
	switch {
	case t.kind.IsIntegral():
		return float64(t.intVal), nil
	case t.kind == KindFloat || t.kind == KindDouble:
		return t.floatVal, nil
	default:
		return 0, fmt.Errorf("nbt: expected numeric tag, got %s", t.kind)
	}
}

// AsString returns the value of a string tag.
func (t *Tag) AsString() (string, error) {
	if t == nil {
		return "", fmt.Errorf("nbt: nil tag")
	}
	if t.kind != KindString {
		return "", fmt.Errorf("nbt: expected string, got %s", t.kind)
	}
	return t.strVal, nil
}

// AsList returns the elements of a list tag.
func (t *Tag) AsList() ([]*Tag, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.kind != KindList {
		return nil, fmt.Errorf("nbt: expected list, got %s", t.kind)
	}
	return t.elems, nil
}

// AsArray returns the values of a typed numeric array.
func (t *Tag) AsArray() ([]int64, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if !t.kind.IsArray() {
		return nil, fmt.Errorf("nbt: expected typed array, got %s", t.kind)
	}
	return t.arr, nil
}

// AsCompound returns the entries of a compound in insertion order.
func (t *Tag) AsCompound() ([]Entry, error) {
	if t == nil {
		return nil, fmt.Errorf("nbt: nil tag")
	}
	if t.kind != KindCompound {
		return nil, fmt.Errorf("nbt: expected compound, got %s", t.kind)
	}
	return t.entries, nil
}

// ElemKind returns the element kind of a list or typed array.
// An empty list reports KindEnd.
func (t *Tag) ElemKind() Kind {
	if t == nil {
		return KindEnd
	}
	switch {
	case t.kind == KindList:
		return t.elemKind
	case t.kind.IsArray():
		return t.kind.arrayElem()
	default:
		return KindEnd
	}
}

// Len returns the number of elements or entries of a container tag.
func (t *Tag) Len() int {
	if t == nil {
		return 0
	}
	switch {
	case t.kind == KindList:
		return len(t.elems)
	case t.kind.IsArray():
		return len(t.arr)
	case t.kind == KindCompound:
		return len(t.entries)
	default:
		return 0
	}
}

// Get returns a compound entry by key, or nil.
func (t *Tag) Get(key string) *Tag {
	if t == nil || t.kind != KindCompound {
		return nil
	}
	for _, e := range t.entries {
		if e.Key == key {
			return e.Value
		}
	}
	return nil
}

// Has reports whether a compound contains key.
func (t *Tag) Has(key string) bool {
	return t.Get(key) != nil
}

// ============================================================
// Mutators
// ============================================================

// Append adds an element to a list or typed array.
//
// For lists, the first element fixes the element kind and every later
// element must match it. For typed arrays, the element must be an integral
// tag of the array's element kind.
func (t *Tag) Append(v *Tag) error {
	if v == nil {
		return fmt.Errorf("nbt: cannot append nil tag")
	}
	switch {
	case t.kind == KindList:
		if len(t.elems) == 0 {
			t.elemKind = v.kind
		} else if v.kind != t.elemKind {
			return fmt.Errorf("%w: list of %s cannot hold %s", ErrHeterogeneousList, t.elemKind, v.kind)
		}
		t.elems = append(t.elems, v)
		return nil
	case t.kind.IsArray():
		if v.kind != t.kind.arrayElem() {
			return fmt.Errorf("%w: %s cannot hold %s", ErrHeterogeneousList, t.kind, v.kind)
		}
		t.arr = append(t.arr, v.intVal)
		return nil
	default:
		return fmt.Errorf("nbt: cannot append to %s", t.kind)
	}
}

// Set stores a compound entry, replacing the value in place if key exists.
func (t *Tag) Set(key string, v *Tag) error {
	if t.kind != KindCompound {
		return fmt.Errorf("nbt: cannot set on %s", t.kind)
	}
	if key == "" {
		return ErrEmptyKey
	}
	if v == nil {
		return fmt.Errorf("nbt: nil value for key %q", key)
	}
	for i := range t.entries {
		if t.entries[i].Key == key {
			t.entries[i].Value = v
			return nil
		}
	}
	t.entries = append(t.entries, Entry{Key: key, Value: v})
	return nil
}

// ============================================================
// Equality
// ============================================================

// Equal reports whether two tags are structurally equal, including the
// entry order of compounds.
func Equal(a, b *Tag) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind {
		return false
	}
	switch {
	case a.kind.IsIntegral():
		return a.intVal == b.intVal
	case a.kind == KindFloat || a.kind == KindDouble:
		return a.floatVal == b.floatVal || (math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal))
	case a.kind == KindString:
		return a.strVal == b.strVal
	case a.kind == KindList:
		if len(a.elems) != len(b.elems) {
			return false
		}
		for i := range a.elems {
			if !Equal(a.elems[i], b.elems[i]) {
				return false
			}
		}
		return true
	case a.kind.IsArray():
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if a.arr[i] != b.arr[i] {
				return false
			}
		}
		return true
	case a.kind == KindCompound:
		if len(a.entries) != len(b.entries) {
			return false
		}
		for i := range a.entries {
			if a.entries[i].Key != b.entries[i].Key || !Equal(a.entries[i].Value, b.entries[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

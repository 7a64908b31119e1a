package hexiota

import (
	"errors"
	"fmt"
	"math"

	"github.com/Neumenon/hexweave/nbt"
	"github.com/Neumenon/hexweave/pattern"
)

// Keys of the lowered wrapper compound.
const (
	TypeKey = "hexcasting:type"
	DataKey = "hexcasting:data"
)

var (
	// ErrUnknownType is returned by FromNBT for unregistered type names.
	ErrUnknownType = errors.New("hexiota: unknown iota type")
	// ErrMalformed is returned by FromNBT when a registered type carries
	// data of the wrong shape.
	ErrMalformed = errors.New("hexiota: malformed iota data")
)

// AsNBT lowers v to the structured data the game stores:
// {"hexcasting:type":<type>,"hexcasting:data":<data>}.
func (v *Iota) AsNBT() (*nbt.Tag, error) {
	data, err := v.Data()
	if err != nil {
		return nil, err
	}
	return nbt.Compound(
		nbt.E(TypeKey, nbt.String(v.TypeTag())),
		nbt.E(DataKey, data),
	)
}

// Data lowers the payload of v without the type wrapper.
func (v *Iota) Data() (*nbt.Tag, error) {
	switch v.typ {
	case TypePattern:
		codes, err := v.pat.AngleCodes()
		if err != nil {
			return nil, err
		}
		return nbt.Compound(
			nbt.E("startDir", nbt.Byte(v.pat.Direction.Code())),
			nbt.E("angles", nbt.ByteArray(codes...)),
		)
	case TypeNumber:
		return nbt.Double(v.num), nil
	case TypeBoolean:
		return nbt.Bool(v.b), nil
	case TypeVector:
		if isIntegral(v.vec[0]) && isIntegral(v.vec[1]) && isIntegral(v.vec[2]) {
			return nbt.LongArray(int64(v.vec[0]), int64(v.vec[1]), int64(v.vec[2])), nil
		}
		return nbt.Compound(
			nbt.E("x", nbt.Double(v.vec[0])),
			nbt.E("y", nbt.Double(v.vec[1])),
			nbt.E("z", nbt.Double(v.vec[2])),
		)
	case TypeNull:
		return nbt.Byte(0), nil
	case TypeList:
		out := nbt.EmptyList()
		for i, e := range v.list {
			lowered, err := e.AsNBT()
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			if err := out.Append(lowered); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TypeText:
		return nbt.String(v.str), nil
	default:
		return nil, fmt.Errorf("hexiota: cannot lower %s", v.typ)
	}
}

// NBTString returns the emitted form of AsNBT.
func (v *Iota) NBTString() (string, error) {
	t, err := v.AsNBT()
	if err != nil {
		return "", err
	}
	return nbt.Emit(t), nil
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1<<63
}

// FromNBT raises a lowered wrapper compound back into an Iota. Every
// error wraps ErrUnknownType or ErrMalformed.
func FromNBT(t *nbt.Tag) (*Iota, error) {
	v, err := fromNBT(t)
	if err != nil && !errors.Is(err, ErrUnknownType) && !errors.Is(err, ErrMalformed) {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return v, err
}

func fromNBT(t *nbt.Tag) (*Iota, error) {
	if t == nil || t.Kind() != nbt.KindCompound {
		return nil, errors.New("expected wrapper compound")
	}
	name, err := t.Get(TypeKey).AsString()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TypeKey, err)
	}
	typ, ok := typeForTag(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	data := t.Get(DataKey)
	if data == nil && typ != TypeNull {
		return nil, fmt.Errorf("missing %s", DataKey)
	}

	switch typ {
	case TypePattern:
		return patternFromNBT(data)
	case TypeNumber:
		f, err := data.AsFloat()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case TypeBoolean:
		n, err := data.AsInt()
		if err != nil {
			return nil, err
		}
		return Bool(n != 0), nil
	case TypeVector:
		return vectorFromNBT(data)
	case TypeNull:
		return Null(), nil
	case TypeList:
		elems, err := data.AsList()
		if err != nil {
			return nil, err
		}
		out := make([]*Iota, 0, len(elems))
		for i, e := range elems {
			child, err := FromNBT(e)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, child)
		}
		return &Iota{typ: TypeList, list: out}, nil
	case TypeText:
		s, err := data.AsString()
		if err != nil {
			return nil, err
		}
		return Text(s), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
}

func patternFromNBT(data *nbt.Tag) (*Iota, error) {
	start, err := data.Get("startDir").AsInt()
	if err != nil {
		return nil, fmt.Errorf("startDir: %w", err)
	}
	angles, err := data.Get("angles").AsArray()
	if err != nil {
		return nil, fmt.Errorf("angles: %w", err)
	}
	p, err := pattern.FromCodes(start, angles)
	if err != nil {
		return nil, err
	}
	return Pattern(p), nil
}

func vectorFromNBT(data *nbt.Tag) (*Iota, error) {
	if data.Kind().IsArray() {
		vals, err := data.AsArray()
		if err != nil {
			return nil, err
		}
		if len(vals) != 3 {
			return nil, fmt.Errorf("vector array has %d components", len(vals))
		}
		return Vector(float64(vals[0]), float64(vals[1]), float64(vals[2])), nil
	}
	var xyz [3]float64
	for i, key := range []string{"x", "y", "z"} {
		f, err := data.Get(key).AsFloat()
		if err != nil {
			return nil, fmt.Errorf("vector %s: %w", key, err)
		}
		xyz[i] = f
	}
	return Vector(xyz[0], xyz[1], xyz[2]), nil
}

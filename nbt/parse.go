package nbt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Neumenon/hexweave/stream"
)

// Parse parses structured-data text into a Tag.
//
// Malformed input fails with a *stream.SyntaxError; a fractional literal
// with an integral suffix fails with ErrUnsupportedFloatForIntegralType;
// a mixed list fails with ErrHeterogeneousList. No partial tree is
// returned on error.
func Parse(input string) (*Tag, error) {
	p := &parser{r: stream.NewReader(input)}

	p.r.SkipWhitespace()
	t, err := p.parseValue(false)
	if err != nil {
		return nil, err
	}

	p.r.SkipWhitespace()
	if !p.r.AtEOF() {
		return nil, p.r.Errorf("end of input")
	}
	return t, nil
}

// ParseReader parses a value at the current position of r and leaves the
// cursor just past it. It is used by parsers that embed structured data.
func ParseReader(r *stream.Reader) (*Tag, error) {
	p := &parser{r: r}
	p.r.SkipWhitespace()
	return p.parseValue(false)
}

type parser struct {
	r *stream.Reader
}

// parseValue dispatches on the first significant byte. Bare strings are
// only accepted as compound values.
func (p *parser) parseValue(inCompound bool) (*Tag, error) {
	p.r.SkipWhitespace()

	c := p.r.Peek()
	switch {
	case c == '{':
		return p.parseCompound()

	case c == '[':
		if kind, ok := arrayPrefix(p.r.PeekAt(1), p.r.PeekAt(2)); ok {
			return p.parseArray(kind)
		}
		return p.parseList()

	case c == '"':
		s, err := p.parseQuoted()
		if err != nil {
			return nil, err
		}
		return String(s), nil

	case isDigit(c) || c == '-' || c == '.':
		return p.parseNumber()

	case inCompound && isBareChar(c):
		return String(p.r.ReadWhile(isBareChar)), nil

	default:
		return nil, p.r.Errorf("value")
	}
}

func arrayPrefix(c, sep byte) (Kind, bool) {
	if sep != ';' {
		return KindEnd, false
	}
	switch c {
	case 'B':
		return KindByteArray, true
	case 'I':
		return KindIntArray, true
	case 'L':
		return KindLongArray, true
	}
	return KindEnd, false
}

// parseCompound parses {k:v,k:v}.
func (p *parser) parseCompound() (*Tag, error) {
	if err := p.r.Expect("{"); err != nil {
		return nil, err
	}

	t := NewCompound()
	p.r.SkipWhitespace()
	if p.r.Match('}') {
		return t, nil
	}

	for {
		p.r.SkipWhitespace()
		keyPos := p.r.Pos()
		key, err := p.parseKey()
		if err != nil {
			return nil, err
		}
		if t.Has(key) {
			return nil, &stream.SyntaxError{Pos: keyPos, Expected: "unique key", Found: strconv.Quote(key)}
		}

		p.r.SkipWhitespace()
		if err := p.r.Expect(":"); err != nil {
			return nil, err
		}

		value, err := p.parseValue(true)
		if err != nil {
			return nil, err
		}
		if err := t.Set(key, value); err != nil {
			return nil, fmt.Errorf("%w at %d", err, keyPos)
		}

		p.r.SkipWhitespace()
		if p.r.Match(',') {
			continue
		}
		if err := p.r.Expect("}"); err != nil {
			return nil, err
		}
		return t, nil
	}
}

func (p *parser) parseKey() (string, error) {
	if p.r.Peek() == '"' {
		return p.parseQuoted()
	}
	key := p.r.ReadWhile(isBareChar)
	if key == "" {
		return "", p.r.Errorf("key")
	}
	return key, nil
}

// parseList parses [v,v,...]. Element kinds are checked as they arrive.
func (p *parser) parseList() (*Tag, error) {
	if err := p.r.Expect("["); err != nil {
		return nil, err
	}

	t := EmptyList()
	p.r.SkipWhitespace()
	if p.r.Match(']') {
		return t, nil
	}

	for {
		p.r.SkipWhitespace()
		elemPos := p.r.Pos()
		elem, err := p.parseValue(false)
		if err != nil {
			return nil, err
		}
		if err := t.Append(elem); err != nil {
			return nil, fmt.Errorf("%w at %d", err, elemPos)
		}

		p.r.SkipWhitespace()
		if p.r.Match(',') {
			continue
		}
		if err := p.r.Expect("]"); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// parseArray parses [B;...], [I;...] or [L;...]. Unsuffixed integers are
// taken as the array's element kind.
func (p *parser) parseArray(kind Kind) (*Tag, error) {
	// "[" + prefix letter + ";" were validated by arrayPrefix.
	for i := 0; i < 3; i++ {
		if _, err := p.r.Advance(); err != nil {
			return nil, err
		}
	}

	t := &Tag{kind: kind}
	elem := kind.arrayElem()
	p.r.SkipWhitespace()
	if p.r.Match(']') {
		return t, nil
	}

	for {
		p.r.SkipWhitespace()
		elemPos := p.r.Pos()
		n, err := p.parseNumber()
		if err != nil {
			return nil, err
		}
		if n.kind == KindInt && elem != KindInt {
			if err := checkRange(elem, n.intVal); err != nil {
				return nil, &stream.SyntaxError{Pos: elemPos, Expected: elem.String() + " value", Found: strconv.FormatInt(n.intVal, 10)}
			}
			n = &Tag{kind: elem, intVal: n.intVal}
		}
		if err := t.Append(n); err != nil {
			return nil, fmt.Errorf("%w at %d", err, elemPos)
		}

		p.r.SkipWhitespace()
		if p.r.Match(',') {
			continue
		}
		if err := p.r.Expect("]"); err != nil {
			return nil, err
		}
		return t, nil
	}
}

// parseQuoted parses a double-quoted string; a backslash escapes the
// following byte.
func (p *parser) parseQuoted() (string, error) {
	if err := p.r.Expect(`"`); err != nil {
		return "", err
	}
	var sb strings.Builder
	for {
		c, err := p.r.Advance()
		if err != nil {
			return "", p.r.Errorf(`closing "`)
		}
		switch c {
		case '\\':
			next, err := p.r.Advance()
			if err != nil {
				return "", p.r.Errorf("escaped character")
			}
			sb.WriteByte(next)
		case '"':
			return sb.String(), nil
		default:
			sb.WriteByte(c)
		}
	}
}

// parseNumber lexes -?\d*(\.\d*)?([eE]\d+)? followed by an optional
// b/s/l/f/d suffix.
func (p *parser) parseNumber() (*Tag, error) {
	start := p.r.Pos()

	var sb strings.Builder
	if p.r.Match('-') {
		sb.WriteByte('-')
	}
	intDigits := p.r.ReadWhile(isDigit)
	sb.WriteString(intDigits)

	isFloat := false
	fracDigits := ""
	if p.r.Match('.') {
		isFloat = true
		fracDigits = p.r.ReadWhile(isDigit)
		sb.WriteByte('.')
		sb.WriteString(fracDigits)
	}
	if intDigits == "" && fracDigits == "" {
		return nil, &stream.SyntaxError{Pos: start, Expected: "number", Found: describe(p.r.Rest())}
	}

	if c := p.r.Peek(); c == 'e' || c == 'E' {
		p.r.Advance()
		exp := p.r.ReadWhile(isDigit)
		if exp == "" {
			return nil, p.r.Errorf("exponent digits")
		}
		isFloat = true
		sb.WriteByte('e')
		sb.WriteString(exp)
	}

	literal := sb.String()
	suffix := byte(0)
	switch c := p.r.Peek(); c {
	case 'b', 'B', 's', 'S', 'l', 'L', 'f', 'F', 'd', 'D':
		p.r.Advance()
		suffix = c | 0x20 // lowercase
	}

	var kind Kind
	switch suffix {
	case 'b':
		kind = KindByte
	case 's':
		kind = KindShort
	case 'l':
		kind = KindLong
	case 'f':
		kind = KindFloat
	case 'd':
		kind = KindDouble
	default:
		if isFloat {
			kind = KindDouble
		} else {
			kind = KindInt
		}
	}

	if kind.IsIntegral() {
		if isFloat {
			return nil, fmt.Errorf("%w: %q at %d", ErrUnsupportedFloatForIntegralType, literal+string(suffix), start)
		}
		v, err := strconv.ParseInt(literal, 10, 64)
		if err == nil {
			err = checkRange(kind, v)
		}
		if err != nil {
			return nil, &stream.SyntaxError{Pos: start, Expected: kind.String() + " value", Found: literal}
		}
		return &Tag{kind: kind, intVal: v}, nil
	}

	bits := 64
	if kind == KindFloat {
		bits = 32
	}
	v, err := strconv.ParseFloat(literal, bits)
	if err != nil {
		return nil, &stream.SyntaxError{Pos: start, Expected: kind.String() + " value", Found: literal}
	}
	return &Tag{kind: kind, floatVal: v}, nil
}

var errOutOfRange = errors.New("out of range")

func checkRange(kind Kind, v int64) error {
	var lo, hi int64
	switch kind {
	case KindByte:
		lo, hi = -1<<7, 1<<7-1
	case KindShort:
		lo, hi = -1<<15, 1<<15-1
	case KindInt:
		lo, hi = -1<<31, 1<<31-1
	default:
		return nil
	}
	if v < lo || v > hi {
		return errOutOfRange
	}
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isBareChar matches the unquoted string charset [a-zA-Z0-9_.+-].
func isBareChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || isDigit(c) ||
		c == '_' || c == '.' || c == '+' || c == '-'
}

func describe(rest string) string {
	if rest == "" {
		return "EOF"
	}
	return string(rest[0])
}

package hexiota

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Neumenon/hexweave/nbt"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/stream"
)

// ErrNoMatch is returned by ParseValue when the input holds no iota.
var ErrNoMatch = errors.New("hexiota: no iota found")

// ParseResult holds a parsed iota and non-fatal diagnostics.
// Value is nil when the input did not match any iota.
type ParseResult struct {
	Value    *Iota
	Warnings []string
}

// keywords are tried in order as prefixes of the remaining input.
var keywords = []struct {
	word  string
	value func() *Iota
}{
	{"true", func() *Iota { return Bool(true) }},
	{"false", func() *Iota { return Bool(false) }},
	{"True", func() *Iota { return Bool(true) }},
	{"False", func() *Iota { return Bool(false) }},
	{"null", Null},
	{"Null", Null},
	{"NULL", Null},
}

// Parse parses iota text notation.
//
// Empty input, unknown keywords and number fragments such as "-" or "."
// yield a nil Value rather than an error. Structural problems inside a
// pattern, vector, list or text literal are returned as *stream.SyntaxError.
func Parse(input string) (*ParseResult, error) {
	p := &parser{r: stream.NewReader(input)}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if v != nil {
		p.r.SkipWhitespace()
		if !p.r.AtEOF() {
			p.warnf("ignoring trailing input at position %d (%s)", p.r.Pos(), snippet(p.r.Rest(), 10))
		}
	}
	return &ParseResult{Value: v, Warnings: p.warnings}, nil
}

// ParseValue is Parse for callers that treat no match as an error.
func ParseValue(input string) (*Iota, error) {
	res, err := Parse(input)
	if err != nil {
		return nil, err
	}
	if res.Value == nil {
		if len(res.Warnings) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoMatch, res.Warnings[0])
		}
		return nil, ErrNoMatch
	}
	return res.Value, nil
}

type parser struct {
	r        *stream.Reader
	warnings []string
}

func (p *parser) warnf(format string, args ...interface{}) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

// parseValue returns nil, nil for no match.
func (p *parser) parseValue() (*Iota, error) {
	p.r.SkipWhitespace()
	if p.r.AtEOF() {
		return nil, nil
	}

	c := p.r.Peek()
	switch {
	case c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return p.parseNumber(), nil
	case c == '"':
		return p.parseText()
	case c == '(':
		return p.parseVector()
	case c == '[':
		return p.parseList()
	case c == '<':
		return p.parsePattern()
	case c == '{':
		return p.parseEmbedded()
	}

	for _, kw := range keywords {
		if p.r.MatchString(kw.word) {
			return kw.value(), nil
		}
	}
	p.warnf("don't know what to do at position %d (%s). Check your syntax?", p.r.Pos(), snippet(p.r.Rest(), 10))
	return nil, nil
}

// parseNumber reads -?\d*(\.\d*)? and requires at least one digit.
func (p *parser) parseNumber() *Iota {
	var sb strings.Builder
	if p.r.Match('-') {
		sb.WriteByte('-')
	}
	digits := p.r.ReadWhile(isDigit)
	sb.WriteString(digits)
	valid := digits != ""
	if p.r.Match('.') {
		sb.WriteByte('.')
		frac := p.r.ReadWhile(isDigit)
		sb.WriteString(frac)
		valid = valid || frac != ""
	}
	if !valid {
		return nil
	}
	f, err := strconv.ParseFloat(sb.String(), 64)
	if err != nil {
		return nil
	}
	return Number(f)
}

func (p *parser) parseText() (*Iota, error) {
	if err := p.r.Expect(`"`); err != nil {
		return nil, err
	}
	var sb strings.Builder
	for {
		c, err := p.r.Advance()
		if err != nil {
			return nil, p.r.Errorf(`closing "`)
		}
		switch c {
		case '\\':
			next, err := p.r.Advance()
			if err != nil {
				return nil, p.r.Errorf("escaped character")
			}
			sb.WriteByte(next)
		case '"':
			return Text(sb.String()), nil
		default:
			sb.WriteByte(c)
		}
	}
}

func (p *parser) parseVector() (*Iota, error) {
	if err := p.r.Expect("("); err != nil {
		return nil, err
	}
	var xyz [3]float64
	for i := range xyz {
		if i > 0 {
			p.r.SkipWhitespace()
			if err := p.r.Expect(","); err != nil {
				return nil, err
			}
		}
		p.r.SkipWhitespace()
		n := p.parseNumber()
		if n == nil {
			return nil, nil
		}
		xyz[i] = n.num
	}
	p.r.SkipWhitespace()
	if err := p.r.Expect(")"); err != nil {
		return nil, err
	}
	return Vector(xyz[0], xyz[1], xyz[2]), nil
}

func (p *parser) parseList() (*Iota, error) {
	if err := p.r.Expect("["); err != nil {
		return nil, err
	}
	p.r.SkipWhitespace()
	if p.r.Match(']') {
		return List(), nil
	}

	var elems []*Iota
	for {
		p.r.SkipWhitespace()
		if p.r.AtEOF() {
			return nil, p.r.Errorf("]")
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if v == nil {
			// one bad element invalidates the whole list
			return nil, nil
		}
		elems = append(elems, v)

		p.r.SkipWhitespace()
		p.r.Match(',')
		p.r.SkipWhitespace()
		if p.r.Peek() == ']' {
			break
		}
	}
	if err := p.r.Expect("]"); err != nil {
		return nil, err
	}
	return &Iota{typ: TypeList, list: elems}, nil
}

func (p *parser) parsePattern() (*Iota, error) {
	if err := p.r.Expect("<"); err != nil {
		return nil, err
	}
	p.r.SkipWhitespace()
	start := p.r.Pos()
	name := strings.TrimSpace(p.r.ReadUntil(","))
	dir, ok := pattern.ParseDirection(name)
	if !ok {
		err := p.r.Errorf("a valid direction (ne, e, se, sw, w, nw)")
		err.Pos = start
		err.Found = strconv.Quote(name)
		return nil, err
	}
	p.r.SkipWhitespace()
	if err := p.r.Expect(","); err != nil {
		return nil, err
	}
	p.r.SkipWhitespace()
	angles := strings.ToLower(p.r.ReadWhile(func(c byte) bool {
		return pattern.IsInstruction(c | 0x20)
	}))
	p.r.SkipWhitespace()
	if err := p.r.Expect(">"); err != nil {
		return nil, err
	}
	return Pattern(pattern.New(dir, angles)), nil
}

// parseEmbedded reads a lowered structured-data payload and raises it.
func (p *parser) parseEmbedded() (*Iota, error) {
	start := p.r.Pos()
	tag, err := nbt.ParseReader(p.r)
	if err != nil {
		return nil, err
	}
	v, err := FromNBT(tag)
	if err != nil {
		return nil, fmt.Errorf("embedded data at %d: %w", start, err)
	}
	return v, nil
}

// snippet returns at most n bytes of s.
func snippet(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

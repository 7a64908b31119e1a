package nbt

import (
	"regexp"
	"strconv"
	"strings"
)

// bareKey matches compound keys that may be written without quotes.
var bareKey = regexp.MustCompile(`^[a-zA-Z0-9_\-.]*$`)

// Emit converts a Tag to its structured-data text.
//
// The output is compact (no whitespace) and compound entries keep their
// insertion order, so Parse(Emit(t)) is structurally equal to t for every
// tag with finite floating-point values.
func Emit(t *Tag) string {
	e := &emitter{}
	e.emit(t)
	return e.sb.String()
}

// String returns the structured-data text of t.
func (t *Tag) String() string {
	return Emit(t)
}

type emitter struct {
	sb strings.Builder
}

func (e *emitter) emit(t *Tag) {
	if t == nil {
		return
	}

	switch t.kind {
	case KindByte:
		e.sb.WriteString(strconv.FormatInt(t.intVal, 10))
		e.sb.WriteByte('b')

	case KindShort:
		e.sb.WriteString(strconv.FormatInt(t.intVal, 10))
		e.sb.WriteByte('s')

	case KindInt:
		e.sb.WriteString(strconv.FormatInt(t.intVal, 10))

	case KindLong:
		e.sb.WriteString(strconv.FormatInt(t.intVal, 10))
		e.sb.WriteByte('L')

	case KindFloat:
		e.sb.WriteString(strconv.FormatFloat(t.floatVal, 'f', -1, 32))
		e.sb.WriteByte('f')

	case KindDouble:
		e.sb.WriteString(strconv.FormatFloat(t.floatVal, 'f', -1, 64))
		e.sb.WriteByte('d')

	case KindString:
		e.emitQuoted(t.strVal)

	case KindList:
		e.sb.WriteByte('[')
		for i, elem := range t.elems {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.emit(elem)
		}
		e.sb.WriteByte(']')

	case KindByteArray, KindIntArray, KindLongArray:
		e.emitArray(t)

	case KindCompound:
		e.sb.WriteByte('{')
		for i, entry := range t.entries {
			if i > 0 {
				e.sb.WriteByte(',')
			}
			e.emitKey(entry.Key)
			e.sb.WriteByte(':')
			e.emit(entry.Value)
		}
		e.sb.WriteByte('}')
	}
}

func (e *emitter) emitArray(t *Tag) {
	var prefix, suffix string
	switch t.kind {
	case KindByteArray:
		prefix, suffix = "B;", "b"
	case KindIntArray:
		prefix, suffix = "I;", ""
	case KindLongArray:
		prefix, suffix = "L;", "L"
	}

	e.sb.WriteByte('[')
	e.sb.WriteString(prefix)
	for i, v := range t.arr {
		if i > 0 {
			e.sb.WriteByte(',')
		}
		e.sb.WriteString(strconv.FormatInt(v, 10))
		e.sb.WriteString(suffix)
	}
	e.sb.WriteByte(']')
}

func (e *emitter) emitKey(key string) {
	if bareKey.MatchString(key) {
		e.sb.WriteString(key)
		return
	}
	e.emitQuoted(key)
}

func (e *emitter) emitQuoted(s string) {
	e.sb.WriteByte('"')
	e.sb.WriteString(escapeString(s))
	e.sb.WriteByte('"')
}

// escapeString escapes backslashes and double quotes.
func escapeString(s string) string {
	if !strings.ContainsAny(s, `\"`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

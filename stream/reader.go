package stream

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnexpectedEOF is returned when a read runs past the end of the buffer.
var ErrUnexpectedEOF = errors.New("unexpected EOF")

// ErrRewindAtStart is returned by Rewind when the cursor is already at 0.
var ErrRewindAtStart = errors.New("cannot rewind past start of stream")

// Reader is a cursor over a text buffer.
// The cursor is a byte offset and always satisfies 0 <= Pos() <= len(text).
//
// Readers are not safe for concurrent use; every parse owns its own Reader.
type Reader struct {
	content string
	cursor  int
}

// NewReader creates a reader positioned at the start of content.
func NewReader(content string) *Reader {
	return &Reader{content: content}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int {
	return r.cursor
}

// Len returns the length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.content)
}

// AtEOF reports whether the cursor is at the end of the buffer.
func (r *Reader) AtEOF() bool {
	return r.cursor >= len(r.content)
}

// Advance consumes and returns the next byte.
func (r *Reader) Advance() (byte, error) {
	if r.AtEOF() {
		return 0, ErrUnexpectedEOF
	}
	c := r.content[r.cursor]
	r.cursor++
	return c, nil
}

// Peek returns the next byte without consuming it, or 0 at EOF.
func (r *Reader) Peek() byte {
	if r.AtEOF() {
		return 0
	}
	return r.content[r.cursor]
}

// PeekAt returns the byte n positions after the cursor, or 0 past the end.
func (r *Reader) PeekAt(n int) byte {
	if r.cursor+n >= len(r.content) {
		return 0
	}
	return r.content[r.cursor+n]
}

// PeekAhead returns up to n bytes following the cursor.
// Positions past the end of the buffer are filled with 0.
func (r *Reader) PeekAhead(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteByte(r.PeekAt(i))
	}
	return sb.String()
}

// Rewind moves the cursor back by one byte.
func (r *Reader) Rewind() error {
	if r.cursor == 0 {
		return ErrRewindAtStart
	}
	r.cursor--
	return nil
}

// ReadWhile consumes bytes while valid reports true.
func (r *Reader) ReadWhile(valid func(c byte) bool) string {
	start := r.cursor
	for !r.AtEOF() && valid(r.content[r.cursor]) {
		r.cursor++
	}
	return r.content[start:r.cursor]
}

// ReadUntil consumes bytes up to (not including) the next occurrence of sep,
// or to EOF when sep does not occur.
func (r *Reader) ReadUntil(sep string) string {
	rest := r.content[r.cursor:]
	idx := strings.Index(rest, sep)
	if idx < 0 {
		r.cursor = len(r.content)
		return rest
	}
	r.cursor += idx
	return rest[:idx]
}

// Match consumes c if it is the next byte.
func (r *Reader) Match(c byte) bool {
	if r.AtEOF() || r.content[r.cursor] != c {
		return false
	}
	r.cursor++
	return true
}

// MatchString consumes s if the buffer continues with it.
// On a partial match the cursor is left unchanged.
func (r *Reader) MatchString(s string) bool {
	if !strings.HasPrefix(r.content[r.cursor:], s) {
		return false
	}
	r.cursor += len(s)
	return true
}

// Expect consumes s byte by byte, failing with a *SyntaxError at the first
// byte that does not match.
func (r *Reader) Expect(s string) error {
	for i := 0; i < len(s); i++ {
		if !r.Match(s[i]) {
			return r.Errorf(string(s[i]))
		}
	}
	return nil
}

// SkipWhitespace consumes ASCII and Unicode whitespace.
func (r *Reader) SkipWhitespace() {
	for !r.AtEOF() && unicode.IsSpace(rune(r.content[r.cursor])) {
		r.cursor++
	}
}

// Branch returns an independent reader over the unread remainder.
func (r *Reader) Branch() *Reader {
	return NewReader(r.content[r.cursor:])
}

// Rest returns the unread remainder without consuming it.
func (r *Reader) Rest() string {
	return r.content[r.cursor:]
}

// Errorf builds a *SyntaxError at the cursor describing what was expected
// and what the next byte actually is.
func (r *Reader) Errorf(expected string) *SyntaxError {
	return &SyntaxError{
		Pos:      r.cursor,
		Expected: expected,
		Found:    r.describeNext(),
		Context:  r.context(10),
	}
}

func (r *Reader) describeNext() string {
	if r.AtEOF() {
		return "EOF"
	}
	return string(r.content[r.cursor])
}

// context returns up to n bytes on either side of the cursor.
func (r *Reader) context(n int) string {
	lo := r.cursor - n
	if lo < 0 {
		lo = 0
	}
	hi := r.cursor + n
	if hi > len(r.content) {
		hi = len(r.content)
	}
	return r.content[lo:r.cursor] + " | " + r.content[r.cursor:hi]
}

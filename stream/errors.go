package stream

import "fmt"

// SyntaxError reports malformed input at a byte offset.
type SyntaxError struct {
	Pos      int
	Expected string
	Found    string
	Context  string // text around Pos, "before | after"
}

func (e *SyntaxError) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("syntax error at %d: expected %s but found %s", e.Pos, e.Expected, e.Found)
	}
	return fmt.Sprintf("syntax error at %d: expected %s but found %s (%s)", e.Pos, e.Expected, e.Found, e.Context)
}

package pattern

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Instructions is the turn alphabet, sharp-left through reverse.
const Instructions = "aqweds"

// angleCodes maps each instruction to the angle code the game stores.
var angleCodes = map[byte]int8{
	'a': 4, // sharp left
	'q': 5, // slight left
	'w': 0, // straight
	'e': 1, // slight right
	'd': 2, // sharp right
	's': 3, // reverse
}

// IsInstruction reports whether c is in the turn alphabet (lowercase).
func IsInstruction(c byte) bool {
	_, ok := angleCodes[c]
	return ok
}

// InstructionFromCode returns the instruction for a stored angle code.
func InstructionFromCode(code int64) (byte, bool) {
	for c, v := range angleCodes {
		if int64(v) == code {
			return c, true
		}
	}
	return 0, false
}

// Pattern is a starting direction plus a string of turn instructions.
// Patterns are values; Extend returns a new pattern.
type Pattern struct {
	Direction Direction
	Angles    string
}

// New creates a pattern.
func New(dir Direction, angles string) Pattern {
	return Pattern{Direction: dir, Angles: angles}
}

// Extend returns a copy of p with suffix appended.
func (p Pattern) Extend(suffix string) Pattern {
	return Pattern{Direction: p.Direction, Angles: p.Angles + suffix}
}

// Last returns the final instruction, or 0 for an empty pattern.
func (p Pattern) Last() byte {
	if p.Angles == "" {
		return 0
	}
	return p.Angles[len(p.Angles)-1]
}

// AngleCodes returns the stored angle code of every instruction.
func (p Pattern) AngleCodes() ([]int8, error) {
	for i := 0; i < len(p.Angles); i++ {
		if !IsInstruction(p.Angles[i]) {
			return nil, fmt.Errorf("pattern: invalid instruction %q at %d", p.Angles[i], i)
		}
	}
	return lo.Map([]byte(p.Angles), func(c byte, _ int) int8 {
		return angleCodes[c]
	}), nil
}

// Shorthand returns "dir,angles" as used in translated listings.
func (p Pattern) Shorthand() string {
	return p.Direction.Name() + "," + p.Angles
}

// String returns the pattern in <dir,angles> notation.
func (p Pattern) String() string {
	return "<" + p.Shorthand() + ">"
}

// FromCodes rebuilds a pattern from stored start-direction and angle codes.
func FromCodes(startDir int64, angles []int64) (Pattern, error) {
	dir, ok := DirectionFromCode(startDir)
	if !ok {
		return Pattern{}, fmt.Errorf("pattern: invalid start direction code %d", startDir)
	}
	var sb strings.Builder
	for i, code := range angles {
		c, ok := InstructionFromCode(code)
		if !ok {
			return Pattern{}, fmt.Errorf("pattern: invalid angle code %d at %d", code, i)
		}
		sb.WriteByte(c)
	}
	return New(dir, sb.String()), nil
}

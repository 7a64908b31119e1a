package pattern

import (
	"errors"
	"fmt"
)

// ErrInvalidMask is returned for masks that are empty or contain
// characters other than 'v' and '-'.
var ErrInvalidMask = errors.New("pattern: invalid bookkeeper mask")

// Bookkeeper builds the stack-mask pattern for mask, where 'v' drops the
// item at that position and '-' keeps it.
func Bookkeeper(mask string) (Pattern, error) {
	if mask == "" {
		return Pattern{}, fmt.Errorf("%w: empty", ErrInvalidMask)
	}

	var p Pattern
	switch mask[0] {
	case 'v':
		p = New(SouthEast, "a")
	case '-':
		p = New(East, "")
	default:
		return Pattern{}, fmt.Errorf("%w: %q at 0", ErrInvalidMask, mask[0])
	}

	for i := 1; i < len(mask); i++ {
		switch mask[i] {
		case 'v':
			if p.Last() == 'a' {
				p = p.Extend("da")
			} else {
				p = p.Extend("ea")
			}
		case '-':
			if p.Last() == 'a' {
				p = p.Extend("e")
			} else {
				p = p.Extend("w")
			}
		default:
			return Pattern{}, fmt.Errorf("%w: %q at %d", ErrInvalidMask, mask[i], i)
		}
	}
	return p, nil
}

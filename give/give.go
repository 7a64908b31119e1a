// Package give renders iotas as in-game commands that hand the player a
// focus holding the iota, splitting large lists across several commands.
package give

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/pattern"
)

// DefaultLimit is the longest command the game's chat accepts.
const DefaultLimit = 32000

// Template selects the command that carries the focus data.
type Template string

const (
	// Give puts the focus in the nearest player's inventory.
	Give Template = "give"
	// Summon drops the focus as an item entity above the command block.
	Summon Template = "summon"
)

var (
	ErrUnknownTemplate = errors.New("give: unknown template")
	ErrTooLarge        = errors.New("give: element does not fit in one command")
	ErrBadShorthand    = errors.New("give: malformed pattern shorthand")
)

// ParseTemplate returns the template named s.
func ParseTemplate(s string) (Template, error) {
	switch t := Template(strings.ToLower(strings.TrimSpace(s))); t {
	case Give, Summon:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, s)
	}
}

// Command wraps focus data in tmpl. Unknown templates format as Give.
func Command(data string, tmpl Template) string {
	if tmpl == Summon {
		return `summon item ~ ~0.6 ~ {Item:{id:"hexcasting:focus",Count:1b,tag:{data:` + data + `}}}`
	}
	return "give @p hexcasting:focus{data:" + data + "}"
}

// Result holds the commands produced by Split.
type Result struct {
	Commands []string
	Limit    int
	Warnings []string
}

// Capacity reports the unused room in the last command, in characters and
// as a percentage of the limit rounded to one decimal.
func (r *Result) Capacity() (chars int, percent float64) {
	if len(r.Commands) == 0 || r.Limit <= 0 {
		return 0, 0
	}
	chars = r.Limit - len(r.Commands[len(r.Commands)-1])
	percent = math.Round(float64(chars)/float64(r.Limit)*1000) / 10
	return chars, percent
}

// Summary describes the split in one line.
func (r *Result) Summary() string {
	chars, percent := r.Capacity()
	return fmt.Sprintf("%d commands, %.1f%% capacity (%d chars) in last command", len(r.Commands), percent, chars)
}

// Split renders v as commands no longer than limit. A list is split
// greedily: elements are added to the current command until the next one
// would overflow it. Any other iota becomes a single command. A limit of
// zero or less means DefaultLimit.
func Split(v *hexiota.Iota, limit int, tmpl Template) (*Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	res := &Result{Limit: limit}

	parts, err := v.AsList()
	if err != nil {
		data, err := v.NBTString()
		if err != nil {
			return nil, err
		}
		res.Commands = []string{Command(data, tmpl)}
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s iota is not a list, cannot split", v.Type()))
		return res, nil
	}

	empty, err := hexiota.List().NBTString()
	if err != nil {
		return nil, err
	}
	base := len(Command(empty, tmpl))

	sizes := make([]int, len(parts))
	for i, p := range parts {
		s, err := p.NBTString()
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		sizes[i] = len(s)
	}

	emit := func(chunk []*hexiota.Iota) error {
		data, err := hexiota.List(chunk...).NBTString()
		if err != nil {
			return err
		}
		res.Commands = append(res.Commands, Command(data, tmpl))
		return nil
	}

	start, size := 0, base
	for i, n := range sizes {
		if base+n > limit {
			return nil, fmt.Errorf("%w: element %d needs %d of %d chars", ErrTooLarge, i, base+n, limit)
		}
		add := n
		if i > start {
			add++
		}
		if size+add > limit {
			if err := emit(parts[start:i]); err != nil {
				return nil, err
			}
			start, size = i, base+n
			continue
		}
		size += add
	}
	if err := emit(parts[start:]); err != nil {
		return nil, err
	}
	return res, nil
}

var shorthandPattern = regexp.MustCompile(`<([sn]?[ew]),([aqweds]*)>`)

// ShorthandIota converts a ';'-separated list of "<dir,angles>" patterns
// into a list iota.
func ShorthandIota(list string) (*hexiota.Iota, error) {
	var elems []*hexiota.Iota
	for i, item := range strings.Split(list, ";") {
		m := shorthandPattern.FindStringSubmatch(item)
		if m == nil {
			return nil, fmt.Errorf("%w: item %d %q", ErrBadShorthand, i, item)
		}
		dir, ok := pattern.ParseDirection(m[1])
		if !ok {
			return nil, fmt.Errorf("%w: item %d direction %q", ErrBadShorthand, i, m[1])
		}
		elems = append(elems, hexiota.Pattern(pattern.New(dir, m[2])))
	}
	return hexiota.List(elems...), nil
}

// Shorthand returns the give command for a ';'-separated list of
// "<dir,angles>" patterns.
func Shorthand(list string) (string, error) {
	v, err := ShorthandIota(list)
	if err != nil {
		return "", err
	}
	data, err := v.NBTString()
	if err != nil {
		return "", err
	}
	return Command(data, Give), nil
}

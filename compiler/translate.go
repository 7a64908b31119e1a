package compiler

import (
	"context"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/spelldb"
)

// Lookup resolves a spell name. A miss is ok == false with a nil error.
type Lookup interface {
	Lookup(ctx context.Context, name string) (spelldb.Spell, bool, error)
}

// Suggester is implemented by lookups that can propose near matches.
type Suggester interface {
	Suggest(ctx context.Context, name string, n int) ([]string, error)
}

var (
	numericalReflection = regexp.MustCompile(`^Numerical Reflection: (.+)$`)
	bookkeepersGambit   = regexp.MustCompile(`^Bookkeeper's Gambit: ([\-v]+)$`)
)

// Translator turns lines of spell names into patterns.
type Translator struct {
	lookup Lookup
	synth  *pattern.Synthesizer
	logger *log.Logger
}

// NewTranslator creates a Translator. A nil logger discards output.
func NewTranslator(lookup Lookup, synth *pattern.Synthesizer, logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.New(io.Discard, "[COMPILER] ", log.LstdFlags)
	}
	return &Translator{lookup: lookup, synth: synth, logger: logger}
}

// Translate converts one line to a pattern.
//
// Blank lines and names missing from the lookup yield a nil pattern and a
// nil error; misses are logged. "{" and "}" stand for Introspection and
// Retrospection. "Numerical Reflection: N" synthesizes the integer N and
// "Bookkeeper's Gambit: mask" builds a stack mask.
func (t *Translator) Translate(ctx context.Context, line string) (*pattern.Pattern, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	line = strings.ReplaceAll(line, "{", "Introspection")
	line = strings.ReplaceAll(line, "}", "Retrospection")

	if m := numericalReflection.FindStringSubmatch(line); m != nil {
		n, err := parseInteger(m[1])
		if err != nil {
			return nil, err
		}
		p, err := t.synth.Number(ctx, n)
		if err != nil {
			return nil, fmt.Errorf("numerical reflection %d: %w", n, err)
		}
		return &p, nil
	}

	if m := bookkeepersGambit.FindStringSubmatch(line); m != nil {
		p, err := pattern.Bookkeeper(m[1])
		if err != nil {
			return nil, err
		}
		return &p, nil
	}

	spell, ok, err := t.lookup.Lookup(ctx, line)
	if err != nil {
		return nil, err
	}
	if !ok {
		t.logMiss(ctx, line)
		return nil, nil
	}
	p, err := spell.ToPattern()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (t *Translator) logMiss(ctx context.Context, name string) {
	s, ok := t.lookup.(Suggester)
	if !ok {
		t.logger.Printf("failed to translate %q", name)
		return
	}
	suggestions, err := s.Suggest(ctx, name, 3)
	if err != nil || len(suggestions) == 0 {
		t.logger.Printf("failed to translate %q", name)
		return
	}
	t.logger.Printf("failed to translate %q (did you mean %s?)", name, strings.Join(suggestions, ", "))
}

// TranslateShorthand returns "dir,angles" for line, or "" when the line
// is blank or unknown.
func (t *Translator) TranslateShorthand(ctx context.Context, line string) (string, error) {
	p, err := t.Translate(ctx, line)
	if err != nil || p == nil {
		return "", err
	}
	return p.Shorthand(), nil
}

// parseInteger parses a decimal literal that must denote an int64.
func parseInteger(s string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("numerical reflection %q: %w", s, err)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("numerical reflection %q: not an integer", s)
	}
	n := d.IntPart()
	if !decimal.NewFromInt(n).Equal(d) {
		return 0, fmt.Errorf("numerical reflection %q: out of range", s)
	}
	return n, nil
}

package compiler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/multierr"

	"github.com/Neumenon/hexweave/hexiota"
)

var (
	libraryEntry = regexp.MustCompile(`^// :: (.*)$`)
	libraryAlias = regexp.MustCompile(`^// \+: (.*)$`)
)

// fallbackEntry names patterns that appear before the first entry header.
const fallbackEntry = "__fallback"

// LibraryEntry summarizes one named definition of a library.
type LibraryEntry struct {
	Names    []string `json:"names"`
	Patterns int      `json:"patterns"`
}

// Library is the result of BuildLibrary.
type Library struct {
	// Iota is a flat list alternating Text(name) and List(patterns), with
	// one pair per name or alias.
	Iota     *hexiota.Iota
	Entries  []LibraryEntry
	Warnings []string
}

// BuildLibrary compiles a library source. "// :: name" starts a new
// definition, "// +: alias" adds another name for it and other comment
// lines are ignored. Every remaining line is translated into a pattern of
// the current definition. Definitions without patterns are skipped with a
// warning. Lines that fail to translate are collected and returned
// together.
func (t *Translator) BuildLibrary(ctx context.Context, content string) (*Library, error) {
	lib := &Library{}
	var items []*hexiota.Iota
	target := []string{fallbackEntry}
	var builder []*hexiota.Iota
	var errs error

	flush := func() {
		if len(builder) > 0 {
			for _, name := range target {
				t.logger.Printf("writing %s with %d patterns", name, len(builder))
				items = append(items, hexiota.Text(name), hexiota.List(builder...))
			}
			lib.Entries = append(lib.Entries, LibraryEntry{Names: target, Patterns: len(builder)})
			return
		}
		if len(target) == 1 && target[0] == fallbackEntry {
			return
		}
		msg := fmt.Sprintf("empty function definition for %s, skipping", strings.Join(target, " and "))
		t.logger.Print(msg)
		lib.Warnings = append(lib.Warnings, msg)
	}

	for n, line := range strings.Split(content, "\n") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		switch {
		case libraryEntry.MatchString(line):
			name := libraryEntry.FindStringSubmatch(line)[1]
			t.logger.Printf("new %s", name)
			flush()
			target = []string{name}
			builder = nil
		case libraryAlias.MatchString(line):
			alias := libraryAlias.FindStringSubmatch(line)[1]
			t.logger.Printf("alias %s", alias)
			target = append(target, alias)
		case strings.HasPrefix(line, "//"):
		default:
			p, err := t.Translate(ctx, line)
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("line %d: %w", n+1, err))
				continue
			}
			if p != nil {
				builder = append(builder, hexiota.Pattern(*p))
			}
		}
	}
	flush()

	if errs != nil {
		return nil, errs
	}
	lib.Iota = hexiota.List(items...)
	return lib, nil
}

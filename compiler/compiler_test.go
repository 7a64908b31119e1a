package compiler

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/multierr"

	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/spelldb"
)

type mapLookup map[string]spelldb.Spell

func (m mapLookup) Lookup(_ context.Context, name string) (spelldb.Spell, bool, error) {
	s, ok := m[name]
	return s, ok, nil
}

func testLookup() mapLookup {
	return mapLookup{
		"Mind's Reflection": {Translation: "Mind's Reflection", Direction: "NORTH_EAST", Pattern: "qaq"},
		"Introspection":     {Translation: "Introspection", Direction: "WEST", Pattern: "qqq"},
		"Retrospection":     {Translation: "Retrospection", Direction: "EAST", Pattern: "eee"},
	}
}

func newTestTranslator(logger *log.Logger) *Translator {
	return NewTranslator(testLookup(), pattern.NewSynthesizer(pattern.DefaultSynthOptions()), logger)
}

// ============================================================
// Translation
// ============================================================

func TestTranslate(t *testing.T) {
	tr := newTestTranslator(nil)
	ctx := context.Background()

	tests := []struct {
		line string
		want *pattern.Pattern
	}{
		{"", nil},
		{"   ", nil},
		{"Mind's Reflection", &pattern.Pattern{Direction: pattern.NorthEast, Angles: "qaq"}},
		{"  Mind's Reflection  ", &pattern.Pattern{Direction: pattern.NorthEast, Angles: "qaq"}},
		{"{", &pattern.Pattern{Direction: pattern.West, Angles: "qqq"}},
		{"}", &pattern.Pattern{Direction: pattern.East, Angles: "eee"}},
		{"Bookkeeper's Gambit: v-", &pattern.Pattern{Direction: pattern.SouthEast, Angles: "ae"}},
		{"Numerical Reflection: 0", &pattern.Pattern{Direction: pattern.SouthEast, Angles: "aqaa"}},
		{"Numerical Reflection: 1", &pattern.Pattern{Direction: pattern.SouthEast, Angles: "aqaaw"}},
		{"Unknown Distillation", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := tr.Translate(ctx, tt.line)
			if err != nil {
				t.Fatalf("Translate failed: %v", err)
			}
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("Translate(%q) = %v, want %v", tt.line, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("Translate(%q) = %v, want %v", tt.line, *got, *tt.want)
			}
		})
	}
}

func TestTranslate_NegativeNumber(t *testing.T) {
	tr := newTestTranslator(nil)
	got, err := tr.Translate(context.Background(), "Numerical Reflection: -16")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got.Direction != pattern.NorthEast || !strings.HasPrefix(got.Angles, "dedd") {
		t.Errorf("got %v", *got)
	}
}

func TestTranslate_Errors(t *testing.T) {
	tr := newTestTranslator(nil)
	for _, line := range []string{
		"Numerical Reflection: 1.5",
		"Numerical Reflection: abc",
		"Numerical Reflection: 99999999999999999999",
	} {
		if _, err := tr.Translate(context.Background(), line); err == nil {
			t.Errorf("Translate(%q) should fail", line)
		}
	}
}

func TestTranslate_LogsMiss(t *testing.T) {
	var buf bytes.Buffer
	tr := newTestTranslator(log.New(&buf, "[COMPILER] ", 0))

	got, err := tr.Translate(context.Background(), "Nonexistent Purification")
	if err != nil || got != nil {
		t.Fatalf("Translate = %v, %v", got, err)
	}
	if !strings.Contains(buf.String(), `failed to translate "Nonexistent Purification"`) {
		t.Errorf("log = %q", buf.String())
	}
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{" -7 ", -7},
		{"10.0", 10},
		{"1e3", 1000},
	}
	for _, tt := range tests {
		got, err := parseInteger(tt.in)
		if err != nil {
			t.Errorf("parseInteger(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseInteger(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestTranslateSource(t *testing.T) {
	tr := newTestTranslator(nil)
	ctx := context.Background()

	got, err := tr.TranslateSource(ctx, "Mind's Reflection\n\nUnknown\nIntrospection", Hexpattern, Hexiota)
	if err != nil {
		t.Fatalf("TranslateSource failed: %v", err)
	}
	if got != "[<ne,qaq>,<w,qqq>]" {
		t.Errorf("TranslateSource = %q", got)
	}

	same, _ := tr.TranslateSource(ctx, "anything", Hexpattern, Hexcasting)
	if same != "anything" {
		t.Errorf("identity translation = %q", same)
	}

	if _, err := tr.TranslateSource(ctx, "[]", Hexiota, Hexcasting); !errors.Is(err, ErrUnsupportedTranslation) {
		t.Errorf("expected ErrUnsupportedTranslation, got %v", err)
	}
}

func TestLanguageOf(t *testing.T) {
	for path, want := range map[string]Language{
		"main.hexpattern":    Hexpattern,
		"lib/x.hexcasting":   Hexcasting,
		"data/iotas.hexiota": Hexiota,
	} {
		got, err := LanguageOf(path)
		if err != nil || got != want {
			t.Errorf("LanguageOf(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := LanguageOf("notes.txt"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

// ============================================================
// Preprocessor
// ============================================================

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fs
}

func TestPreprocessor_Includes(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"main.hexiota":    "[<e,w>,\n#include lib.hexpattern\n]\n",
		"lib.hexpattern":  "// the library\nMind's Reflection\n\n\n//#include more.hexcasting\n",
		"more.hexcasting": "Introspection // open\n",
	})
	pp := NewPreprocessor(fs, newTestTranslator(nil), nil)

	out, err := pp.Process(context.Background(), "main.hexiota")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	v, err := hexiota.ParseValue(out)
	if err != nil {
		t.Fatalf("output %q does not parse: %v", out, err)
	}
	want := hexiota.List(
		hexiota.Pattern(pattern.New(pattern.East, "w")),
		hexiota.List(
			hexiota.Pattern(pattern.New(pattern.NorthEast, "qaq")),
			hexiota.Pattern(pattern.New(pattern.West, "qqq")),
		),
	)
	if !hexiota.Equal(v, want) {
		t.Errorf("got %s, want %s", v, want)
	}

	stats := pp.Stats()
	if stats.Fetched != 3 || stats.Processed != 3 {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestPreprocessor_StripsComments(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"main.hexpattern": "// header\nMind's Reflection // trailing\n\n   \n\nIntrospection\n",
	})
	pp := NewPreprocessor(fs, newTestTranslator(nil), nil)

	out, err := pp.Process(context.Background(), "main.hexpattern")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "\nMind's Reflection\nIntrospection\n" {
		t.Errorf("Process = %q", out)
	}
}

func TestPreprocessor_Circular(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"a.hexpattern": "//#include b.hexpattern\n",
		"b.hexpattern": "//#include a.hexpattern\n",
	})
	pp := NewPreprocessor(fs, newTestTranslator(nil), nil)

	_, err := pp.Process(context.Background(), "a.hexpattern")
	if !errors.Is(err, ErrCircularInclude) {
		t.Fatalf("expected ErrCircularInclude, got %v", err)
	}
	var ce *CircularIncludeError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CircularIncludeError, got %T", err)
	}
	if strings.Join(ce.Chain, " -> ") != "a.hexpattern -> b.hexpattern -> a.hexpattern" {
		t.Errorf("Chain = %v", ce.Chain)
	}
}

func TestPreprocessor_Reuse(t *testing.T) {
	var buf bytes.Buffer
	fs := writeFiles(t, map[string]string{
		"main.hexpattern": "//#include lib.hexpattern\n//#include lib.hexpattern\n",
		"lib.hexpattern":  "Mind's Reflection\n",
	})
	pp := NewPreprocessor(fs, newTestTranslator(nil), log.New(&buf, "", 0))

	out, err := pp.Process(context.Background(), "main.hexpattern")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if strings.Count(out, "Mind's Reflection") != 2 {
		t.Errorf("Process = %q", out)
	}
	if !strings.Contains(buf.String(), "reusing lib.hexpattern") {
		t.Errorf("expected cache reuse, log = %q", buf.String())
	}
}

func TestPreprocessor_Missing(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"main.hexpattern": "//#include gone.hexpattern\n",
	})
	pp := NewPreprocessor(fs, newTestTranslator(nil), nil)
	if _, err := pp.Process(context.Background(), "main.hexpattern"); err == nil {
		t.Error("expected error for missing include")
	}
}

// ============================================================
// Library
// ============================================================

const librarySource = `Mind's Reflection
// :: getSelf
// +: me
Mind's Reflection
// a comment
// :: empty
// :: intro
{
`

func TestBuildLibrary(t *testing.T) {
	tr := newTestTranslator(nil)
	lib, err := tr.BuildLibrary(context.Background(), librarySource)
	if err != nil {
		t.Fatalf("BuildLibrary failed: %v", err)
	}

	items, _ := lib.Iota.AsList()
	if len(items) != 8 {
		t.Fatalf("got %d items, want 8: %s", len(items), lib.Iota)
	}
	names := []string{}
	for i := 0; i < len(items); i += 2 {
		s, err := items[i].AsText()
		if err != nil {
			t.Fatalf("item %d is not text: %s", i, items[i])
		}
		names = append(names, s)
		if items[i+1].Type() != hexiota.TypeList {
			t.Errorf("item %d is not a list: %s", i+1, items[i+1])
		}
	}
	if strings.Join(names, ",") != "__fallback,getSelf,me,intro" {
		t.Errorf("names = %v", names)
	}

	if len(lib.Entries) != 3 {
		t.Errorf("Entries = %+v", lib.Entries)
	}
	if len(lib.Warnings) != 1 || !strings.Contains(lib.Warnings[0], "empty") {
		t.Errorf("Warnings = %v", lib.Warnings)
	}
}

func TestBuildLibrary_CollectsErrors(t *testing.T) {
	tr := newTestTranslator(nil)
	_, err := tr.BuildLibrary(context.Background(), "// :: x\nNumerical Reflection: 0.5\nNumerical Reflection: 1.25\n")
	if err == nil {
		t.Fatal("expected error")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("got %d errors, want 2: %v", n, err)
	}
}

// ============================================================
// Manifest and build
// ============================================================

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(`{"entrypoint": "main.hexpattern", "library": "lib.hexpattern"}`))
	if err != nil {
		t.Fatalf("ParseManifest failed: %v", err)
	}
	if m.Entrypoint != "main.hexpattern" || m.Library != "lib.hexpattern" {
		t.Errorf("manifest = %+v", m)
	}

	y, err := ParseManifest([]byte("name: demo\nentrypoint: spell.hexiota\n"))
	if err != nil {
		t.Fatalf("ParseManifest(yaml) failed: %v", err)
	}
	if y.Name != "demo" {
		t.Errorf("Name = %q", y.Name)
	}

	for _, bad := range []string{`{}`, `{"entrypoint":"main.txt"}`, `{"entrypoint":"a.hexiota","library":"b.md"}`, `[`} {
		if _, err := ParseManifest([]byte(bad)); err == nil {
			t.Errorf("ParseManifest(%s) should fail", bad)
		}
	}
}

func TestCompiler_Build(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		DefaultManifest:   `{"entrypoint":"main.hexpattern","library":"lib.hexpattern"}`,
		"main.hexpattern": "Mind's Reflection\n// comment\nIntrospection\n",
		"lib.hexpattern":  "// :: self\nMind's Reflection\n",
	})
	c := New(fs, newTestTranslator(nil), nil)

	b, err := c.Build(context.Background(), DefaultManifest)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if b.ID == "" {
		t.Error("missing build ID")
	}
	if b.Output != "Mind's Reflection\nIntrospection\n" {
		t.Errorf("Output = %q", b.Output)
	}
	want := hexiota.List(
		hexiota.Pattern(pattern.New(pattern.NorthEast, "qaq")),
		hexiota.Pattern(pattern.New(pattern.West, "qqq")),
	)
	if !hexiota.Equal(b.Iota, want) {
		t.Errorf("Iota = %s", b.Iota)
	}
	if b.Library == nil || len(b.Library.Entries) != 1 {
		t.Errorf("Library = %+v", b.Library)
	}
	if _, ok := HexToHash(b.Digest); !ok {
		t.Errorf("Digest = %q", b.Digest)
	}
	if b.Digest != HashToHex(ContentHash(b.Output)) {
		t.Error("Digest does not match output")
	}
	if !strings.Contains(b.Summary(), "processed 1 files") {
		t.Errorf("Summary = %q", b.Summary())
	}
}

func TestCompiler_BuildFailures(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"loop.json":    `{"entrypoint":"a.hexpattern"}`,
		"a.hexpattern": "//#include a.hexpattern\n",
		"broken.json":  `{"entrypoint":"bad.hexiota"}`,
		"bad.hexiota":  "[<bogus,w>]",
		"nolib.json":   `{"entrypoint":"ok.hexiota","library":"missing.hexpattern"}`,
		"ok.hexiota":   "[]",
	})
	c := New(fs, newTestTranslator(nil), nil)
	ctx := context.Background()

	if _, err := c.Build(ctx, "loop.json"); !errors.Is(err, ErrCircularInclude) {
		t.Errorf("loop: expected ErrCircularInclude, got %v", err)
	}
	if _, err := c.Build(ctx, "broken.json"); err == nil {
		t.Error("broken: expected parse error")
	}
	if _, err := c.Build(ctx, "nolib.json"); err == nil {
		t.Error("nolib: expected library read error")
	}
	if _, err := c.Build(ctx, "absent.json"); err == nil {
		t.Error("absent: expected manifest error")
	}
}

func TestHexToHash(t *testing.T) {
	h := ContentHash("hello")
	back, ok := HexToHash(HashToHex(h))
	if !ok || back != h {
		t.Error("hash hex round trip failed")
	}
	if _, ok := HexToHash("zz"); ok {
		t.Error("short input should fail")
	}
	if _, ok := HexToHash(strings.Repeat("g", 64)); ok {
		t.Error("non-hex input should fail")
	}
}

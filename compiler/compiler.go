// Package compiler builds spell packages: it translates spell names into
// patterns, resolves #include directives across source files, builds
// pattern libraries and assembles the result into an iota.
package compiler

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/Neumenon/hexweave/hexiota"
)

// Compiler builds packages from a filesystem.
type Compiler struct {
	fs         afero.Fs
	translator *Translator
	logger     *log.Logger
}

// New creates a Compiler. A nil logger discards output.
func New(fs afero.Fs, translator *Translator, logger *log.Logger) *Compiler {
	if logger == nil {
		logger = log.New(io.Discard, "[COMPILER] ", log.LstdFlags)
	}
	return &Compiler{fs: fs, translator: translator, logger: logger}
}

// Build is the result of compiling a package.
type Build struct {
	ID       string
	Manifest *Manifest
	// Output is the processed entrypoint text.
	Output string
	// Iota is Output parsed as an iota; spell-name entrypoints are
	// translated first. Nil if the output holds no iota.
	Iota     *hexiota.Iota
	Library  *Library
	Warnings []string
	Digest   string
	Stats    Stats
	Duration time.Duration
}

// Summary describes the build in one line.
func (b *Build) Summary() string {
	return fmt.Sprintf("output %s in %s, fetched %d things, processed %d files",
		humanize.Bytes(uint64(len(b.Output))), b.Duration.Round(time.Millisecond),
		b.Stats.Fetched, b.Stats.Processed)
}

// Build compiles the package described by the manifest at manifestPath.
func (c *Compiler) Build(ctx context.Context, manifestPath string) (*Build, error) {
	m, err := LoadManifest(c.fs, manifestPath)
	if err != nil {
		return nil, err
	}
	return c.BuildManifest(ctx, m)
}

// BuildManifest compiles an already loaded manifest.
func (c *Compiler) BuildManifest(ctx context.Context, m *Manifest) (*Build, error) {
	start := time.Now()
	b := &Build{ID: uuid.NewString(), Manifest: m}
	c.logger.Printf("build %s: entrypoint %s", b.ID, m.Entrypoint)

	pp := NewPreprocessor(c.fs, c.translator, c.logger)
	out, err := pp.Process(ctx, m.Entrypoint)
	if err != nil {
		c.logger.Printf("build %s failed: %v", b.ID, err)
		return nil, err
	}
	b.Output = out

	lang, err := LanguageOf(m.Entrypoint)
	if err != nil {
		return nil, err
	}
	iotaText, err := c.translator.TranslateSource(ctx, out, lang, Hexiota)
	if err != nil {
		return nil, err
	}
	res, err := hexiota.Parse(iotaText)
	if err != nil {
		return nil, fmt.Errorf("build %s: parse output: %w", b.ID, err)
	}
	b.Iota = res.Value
	b.Warnings = append(b.Warnings, res.Warnings...)
	if b.Iota == nil {
		b.Warnings = append(b.Warnings, "failed to parse output as an iota")
	}

	if m.Library != "" {
		src, err := afero.ReadFile(c.fs, m.Library)
		if err != nil {
			return nil, fmt.Errorf("build %s: read library: %w", b.ID, err)
		}
		lib, err := c.translator.BuildLibrary(ctx, string(src))
		if err != nil {
			return nil, fmt.Errorf("build %s: library: %w", b.ID, err)
		}
		b.Library = lib
		b.Warnings = append(b.Warnings, lib.Warnings...)
	}

	b.Digest = HashToHex(ContentHash(b.Output))
	b.Stats = pp.Stats()
	b.Duration = time.Since(start)
	c.logger.Printf("build %s completed: %s", b.ID, b.Summary())
	return b, nil
}

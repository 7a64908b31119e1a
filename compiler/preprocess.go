package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// ErrCircularInclude is wrapped by CircularIncludeError.
var ErrCircularInclude = errors.New("circular #include detected")

// CircularIncludeError reports an include cycle. Chain ends with the file
// that was included a second time.
type CircularIncludeError struct {
	Chain []string
}

func (e *CircularIncludeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCircularInclude, strings.Join(e.Chain, " -> "))
}

func (e *CircularIncludeError) Unwrap() error {
	return ErrCircularInclude
}

var (
	slashInclude  = regexp.MustCompile(`(?m)^[ \t]*//#include (.*?)(?:$|;)`)
	hashInclude   = regexp.MustCompile(`(?m)^[ \t]*#include (.*?)(?:$|;)`)
	lineComment   = regexp.MustCompile(`(?m)//.*$`)
	blankLineRuns = regexp.MustCompile(`(\s*\n)+`)
)

func includeRule(l Language) *regexp.Regexp {
	if l.canonical() == Hexiota {
		return hashInclude
	}
	return slashInclude
}

// Stats counts the work done by a Preprocessor.
type Stats struct {
	Fetched   int `json:"fetched"`
	Processed int `json:"processed"`
}

// Preprocessor resolves #include directives and strips comments. Sources
// and processed results are cached for the Preprocessor's lifetime.
type Preprocessor struct {
	fs         afero.Fs
	translator *Translator
	logger     *log.Logger

	mu        sync.Mutex
	sources   map[string]string
	processed map[string]string
}

// NewPreprocessor creates a Preprocessor reading from fs.
func NewPreprocessor(fs afero.Fs, translator *Translator, logger *log.Logger) *Preprocessor {
	if logger == nil {
		logger = log.New(io.Discard, "[COMPILER] ", log.LstdFlags)
	}
	return &Preprocessor{
		fs:         fs,
		translator: translator,
		logger:     logger,
		sources:    make(map[string]string),
		processed:  make(map[string]string),
	}
}

// Process returns the fully included, comment-free content of file.
func (p *Preprocessor) Process(ctx context.Context, file string) (string, error) {
	return p.process(ctx, path.Clean(file), nil)
}

// Stats returns how many files were read and processed.
func (p *Preprocessor) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{Fetched: len(p.sources), Processed: len(p.processed)}
}

func (p *Preprocessor) process(ctx context.Context, file string, stack []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	for _, s := range stack {
		if s == file {
			chain := append(append([]string{}, stack...), file)
			p.logger.Printf("circular #include detected: %s", strings.Join(chain, " -> "))
			return "", &CircularIncludeError{Chain: chain}
		}
	}
	if cached, ok := p.cachedProcessed(file); ok {
		p.logger.Printf("reusing %s (%d)", file, len(cached))
		return cached, nil
	}

	lang, err := LanguageOf(file)
	if err != nil {
		return "", err
	}
	content, err := p.source(file)
	if err != nil {
		return "", err
	}
	original := content

	rule := includeRule(lang)
	for {
		loc := rule.FindStringSubmatchIndex(content)
		if loc == nil {
			break
		}
		included := path.Clean(strings.TrimSpace(content[loc[2]:loc[3]]))
		includedLang, err := LanguageOf(included)
		if err != nil {
			return "", fmt.Errorf("%s: include %s: %w", file, included, err)
		}
		body, err := p.process(ctx, included, append(stack[:len(stack):len(stack)], file))
		if err != nil {
			return "", err
		}
		translated, err := p.translator.TranslateSource(ctx, body, includedLang, lang)
		if err != nil {
			return "", fmt.Errorf("%s: include %s: %w", file, included, err)
		}
		p.logger.Printf("merging %s <- %s", file, included)
		content = content[:loc[0]] + translated + content[loc[1]:]
	}

	content = lineComment.ReplaceAllString(content, "")
	content = blankLineRuns.ReplaceAllString(content, "\n")

	ratio := 100
	if len(original) > 0 {
		ratio = len(content) * 100 / len(original)
	}
	p.logger.Printf("processed %s %d -> %d (%d%%)", file, len(original), len(content), ratio)

	p.mu.Lock()
	p.processed[file] = content
	p.mu.Unlock()
	return content, nil
}

func (p *Preprocessor) cachedProcessed(file string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.processed[file]
	return v, ok
}

func (p *Preprocessor) source(file string) (string, error) {
	p.mu.Lock()
	if text, ok := p.sources[file]; ok {
		p.mu.Unlock()
		p.logger.Printf("fetch: %s %d (cached)", file, len(text))
		return text, nil
	}
	p.mu.Unlock()

	data, err := afero.ReadFile(p.fs, file)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", file, err)
	}
	text := string(data)

	p.mu.Lock()
	p.sources[file] = text
	p.mu.Unlock()
	p.logger.Printf("fetch: %s %d", file, len(text))
	return text, nil
}

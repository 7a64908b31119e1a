package compiler

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
)

// Language is a source file dialect, named by file extension.
type Language string

const (
	// Hexpattern and Hexcasting are one spell name per line.
	Hexpattern Language = "hexpattern"
	Hexcasting Language = "hexcasting"
	// Hexiota is iota text notation.
	Hexiota Language = "hexiota"
)

var (
	ErrUnsupportedLanguage    = errors.New("compiler: unsupported language")
	ErrUnsupportedTranslation = errors.New("compiler: cannot translate")
)

// LanguageOf returns the language of a file path by extension.
func LanguageOf(p string) (Language, error) {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	switch Language(ext) {
	case Hexpattern, Hexcasting, Hexiota:
		return Language(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, ext)
	}
}

// canonical folds hexpattern into hexcasting.
func (l Language) canonical() Language {
	if l == Hexpattern {
		return Hexcasting
	}
	return l
}

// TranslateSource converts content between languages. Spell-name sources
// become an iota list of their patterns; unknown names are dropped.
func (t *Translator) TranslateSource(ctx context.Context, content string, from, to Language) (string, error) {
	from, to = from.canonical(), to.canonical()
	if from == to {
		return content, nil
	}
	if from != Hexcasting || to != Hexiota {
		return "", fmt.Errorf("%w: %s -> %s", ErrUnsupportedTranslation, from, to)
	}

	t.logger.Printf("translating %s to %s", from, to)
	start := time.Now()
	lines := strings.Split(content, "\n")
	translated := make([]string, 0, len(lines))
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		partial, err := t.TranslateShorthand(ctx, line)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(partial) != "" {
			translated = append(translated, "<"+partial+">")
		}
	}
	t.logger.Printf("translated %d lines in %s", len(translated), time.Since(start).Round(time.Millisecond))
	return "[" + strings.Join(translated, ",") + "]", nil
}

package spelldb

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSchemaMismatch is returned when the CSV header differs from Columns.
var ErrSchemaMismatch = errors.New("spelldb: scheme does not match CSV")

// DecodeCSV reads pattern rows. Missing trailing fields are left empty and
// blank lines are skipped.
func DecodeCSV(r io.Reader) ([]Spell, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty input", ErrSchemaMismatch)
	}
	if err != nil {
		return nil, fmt.Errorf("spelldb: read header: %w", err)
	}
	if len(header) != len(Columns) {
		return nil, fmt.Errorf("%w: %d columns, want %d", ErrSchemaMismatch, len(header), len(Columns))
	}
	for i, h := range header {
		if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) != Columns[i] {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrSchemaMismatch, i, h, Columns[i])
		}
	}

	var spells []Spell
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("spelldb: read row: %w", err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		spells = append(spells, spellFromRecord(rec))
	}
	return spells, nil
}

func spellFromRecord(rec []string) Spell {
	field := func(i int) string {
		if i < len(rec) {
			return strings.TrimRight(rec[i], "\r")
		}
		return ""
	}
	return Spell{
		Mod:         field(0),
		Translation: field(1),
		Direction:   field(2),
		Pattern:     field(3),
		IsGreat:     strings.EqualFold(field(4), "true"),
		ModID:       field(5),
		Name:        field(6),
		ClassName:   field(7),
		Args:        field(8),
		BookAnchor:  field(9),
	}
}

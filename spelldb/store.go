package spelldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	_ "modernc.org/sqlite"
)

// Store is an in-memory SQLite table of spells keyed by translation.
// When a translation appears more than once the first row wins.
type Store struct {
	db     *sql.DB
	logger *log.Logger
}

// NewStore opens a private in-memory database and creates the schema.
// A nil logger discards output.
func NewStore(logger *log.Logger) (*Store, error) {
	if logger == nil {
		logger = log.New(io.Discard, "[SPELLDB] ", log.LstdFlags)
	}
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("spelldb: open db: %w", err)
	}
	// the in-memory database lives as long as its last connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS spells (
			translation TEXT PRIMARY KEY,
			mod TEXT NOT NULL DEFAULT '',
			direction TEXT NOT NULL DEFAULT '',
			pattern TEXT NOT NULL DEFAULT '',
			is_great BOOLEAN NOT NULL DEFAULT 0,
			modid TEXT NOT NULL DEFAULT '',
			name TEXT NOT NULL DEFAULT '',
			classname TEXT NOT NULL DEFAULT '',
			args TEXT NOT NULL DEFAULT '',
			book_anchor TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_spells_mod ON spells(mod)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("spelldb: migrate: %w", err)
		}
	}
	return nil
}

// Close closes the database; its contents are discarded.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load inserts spells in one transaction and returns how many were new.
func (s *Store) Load(ctx context.Context, spells []Spell) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("spelldb: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO spells
		(translation, mod, direction, pattern, is_great, modid, name, classname, args, book_anchor)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("spelldb: prepare insert: %w", err)
	}
	defer stmt.Close()

	added := 0
	for _, sp := range spells {
		if sp.Translation == "" {
			continue
		}
		res, err := stmt.ExecContext(ctx, sp.Translation, sp.Mod, sp.Direction, sp.Pattern,
			sp.IsGreat, sp.ModID, sp.Name, sp.ClassName, sp.Args, sp.BookAnchor)
		if err != nil {
			return 0, fmt.Errorf("spelldb: insert %q: %w", sp.Translation, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("spelldb: commit: %w", err)
	}
	s.logger.Printf("loaded %d spells (%d rows)", added, len(spells))
	return added, nil
}

// Lookup finds a spell by exact translation. A miss returns ok == false
// and a nil error.
func (s *Store) Lookup(ctx context.Context, name string) (Spell, bool, error) {
	var sp Spell
	err := s.db.QueryRowContext(ctx, `SELECT translation, mod, direction, pattern, is_great,
		modid, name, classname, args, book_anchor FROM spells WHERE translation = ?`, name).
		Scan(&sp.Translation, &sp.Mod, &sp.Direction, &sp.Pattern, &sp.IsGreat,
			&sp.ModID, &sp.Name, &sp.ClassName, &sp.Args, &sp.BookAnchor)
	if errors.Is(err, sql.ErrNoRows) {
		return Spell{}, false, nil
	}
	if err != nil {
		return Spell{}, false, fmt.Errorf("spelldb: lookup %q: %w", name, err)
	}
	return sp, true, nil
}

// Count returns the number of stored spells.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spells`).Scan(&n); err != nil {
		return 0, fmt.Errorf("spelldb: count: %w", err)
	}
	return n, nil
}

// Names returns every stored translation in alphabetical order.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT translation FROM spells ORDER BY translation`)
	if err != nil {
		return nil, fmt.Errorf("spelldb: names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("spelldb: names: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Suggest returns up to n stored translations that fuzzily match name,
// closest first.
func (s *Store) Suggest(ctx context.Context, name string, n int) ([]string, error) {
	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)

	out := make([]string, 0, n)
	for _, r := range ranks {
		if len(out) == n {
			break
		}
		out = append(out, r.Target)
	}
	return out, nil
}

// Package spelldb holds the table of named spell patterns used to
// translate spell names into patterns.
//
// The table comes from a CSV export with one row per pattern. Rows are
// loaded into an in-memory SQLite store and looked up by their English
// translation, e.g. "Mind's Reflection".
package spelldb

import (
	"fmt"
	"strings"

	"github.com/Neumenon/hexweave/pattern"
)

// DefaultSource is the published pattern table.
const DefaultSource = "https://object-object.github.io/HexBug/patterns.csv"

// Columns is the required CSV header, in order.
var Columns = []string{
	"mod", "translation", "direction", "pattern", "is_great",
	"modid", "name", "classname", "args", "book_anchor",
}

// Spell is one row of the pattern table.
type Spell struct {
	Mod         string `json:"mod"`
	Translation string `json:"translation"`
	Direction   string `json:"direction"`
	Pattern     string `json:"pattern"`
	IsGreat     bool   `json:"isGreat"`
	ModID       string `json:"modid"`
	Name        string `json:"name"`
	ClassName   string `json:"classname"`
	Args        string `json:"args"`
	BookAnchor  string `json:"bookAnchor"`
}

// ToPattern converts the row's direction name and instructions to a
// pattern.
func (s Spell) ToPattern() (pattern.Pattern, error) {
	dir, ok := pattern.ParseDirection(s.Direction)
	if !ok {
		return pattern.Pattern{}, fmt.Errorf("spelldb: %q: unknown direction %q", s.Translation, s.Direction)
	}
	angles := strings.ToLower(strings.TrimSpace(s.Pattern))
	for i := 0; i < len(angles); i++ {
		if !pattern.IsInstruction(angles[i]) {
			return pattern.Pattern{}, fmt.Errorf("spelldb: %q: invalid instruction %q", s.Translation, angles[i])
		}
	}
	return pattern.New(dir, angles), nil
}

package pattern

import (
	"fmt"
	"strings"
)

// Direction is the starting heading of a pattern.
// Its numeric value is the start-direction code the game stores.
type Direction uint8

const (
	NorthEast Direction = iota
	East
	SouthEast
	SouthWest
	West
	NorthWest
)

var directionNames = [...]string{"ne", "e", "se", "sw", "w", "nw"}

// Name returns the short lowercase name (ne, e, se, sw, w, nw).
func (d Direction) Name() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// String returns the short name.
func (d Direction) String() string {
	return d.Name()
}

// Code returns the start-direction code (ne=0 ... nw=5).
func (d Direction) Code() int8 {
	return int8(d)
}

// Valid reports whether d is one of the six directions.
func (d Direction) Valid() bool {
	return int(d) < len(directionNames)
}

// directionAliases maps upper-cased names, including long forms, to
// directions.
var directionAliases = map[string]Direction{
	"NE":         NorthEast,
	"E":          East,
	"SE":         SouthEast,
	"SW":         SouthWest,
	"W":          West,
	"NW":         NorthWest,
	"NORTH_EAST": NorthEast,
	"EAST":       East,
	"SOUTH_EAST": SouthEast,
	"SOUTH_WEST": SouthWest,
	"WEST":       West,
	"NORTH_WEST": NorthWest,
	"NORTHEAST":  NorthEast,
	"SOUTHEAST":  SouthEast,
	"SOUTHWEST":  SouthWest,
	"NORTHWEST":  NorthWest,
}

// ParseDirection resolves a direction name case-insensitively.
func ParseDirection(name string) (Direction, bool) {
	d, ok := directionAliases[strings.ToUpper(strings.TrimSpace(name))]
	return d, ok
}

// DirectionFromCode returns the direction for a start-direction code.
func DirectionFromCode(code int64) (Direction, bool) {
	if code < 0 || code >= int64(len(directionNames)) {
		return 0, false
	}
	return Direction(code), true
}

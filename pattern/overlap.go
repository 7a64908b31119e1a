package pattern

// hexCoord is an axial grid coordinate.
type hexCoord struct {
	Q int
	R int
}

// facings lists the six headings in clockwise order starting east.
// Each entry is the axial step taken when moving in that heading.
var facings = [6]hexCoord{
	{Q: 1, R: 0},  // e
	{Q: 0, R: 1},  // se
	{Q: -1, R: 1}, // sw
	{Q: -1, R: 0}, // w
	{Q: 0, R: -1}, // nw
	{Q: 1, R: -1}, // ne
}

// turnDelta is the change in facing index for each instruction.
var turnDelta = map[byte]int{
	'a': -2,
	'q': -1,
	'w': 0,
	'e': 1,
	'd': 2,
	's': 3,
}

// edge is an undirected grid segment with canonically ordered endpoints.
type edge struct {
	A hexCoord
	B hexCoord
}

func newEdge(a, b hexCoord) edge {
	if b.Q < a.Q || (b.Q == a.Q && b.R < a.R) {
		a, b = b, a
	}
	return edge{A: a, B: b}
}

// HasOverlap reports whether the walk described by instructions traverses
// any grid segment twice, in either direction.
//
// The walk starts at the origin with an implicit first segment heading
// east; each instruction then turns relative to the current heading and
// draws one more segment. Bytes outside the turn alphabet do not turn.
func HasOverlap(instructions string) bool {
	cursor := hexCoord{}
	facing := 0
	seen := make(map[edge]struct{}, len(instructions)+1)

	step := func() bool {
		d := facings[facing]
		next := hexCoord{Q: cursor.Q + d.Q, R: cursor.R + d.R}
		e := newEdge(cursor, next)
		if _, ok := seen[e]; ok {
			return true
		}
		seen[e] = struct{}{}
		cursor = next
		return false
	}

	if step() {
		return true
	}
	for i := 0; i < len(instructions); i++ {
		facing = ((facing+turnDelta[instructions[i]])%6 + 6) % 6
		if step() {
			return true
		}
	}
	return false
}

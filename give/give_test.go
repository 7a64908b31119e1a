package give

import (
	"errors"
	"strings"
	"testing"

	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/nbt"
	"github.com/Neumenon/hexweave/pattern"
)

const givePrefix = "give @p hexcasting:focus{data:"

// unwrap recovers the iota carried by a give command.
func unwrap(t *testing.T, cmd string) *hexiota.Iota {
	t.Helper()
	if !strings.HasPrefix(cmd, givePrefix) || !strings.HasSuffix(cmd, "}") {
		t.Fatalf("not a give command: %.60s", cmd)
	}
	tag, err := nbt.Parse(cmd[len(givePrefix) : len(cmd)-1])
	if err != nil {
		t.Fatalf("command data does not parse: %v", err)
	}
	v, err := hexiota.FromNBT(tag)
	if err != nil {
		t.Fatalf("FromNBT failed: %v", err)
	}
	return v
}

func patternList(n int) *hexiota.Iota {
	elems := make([]*hexiota.Iota, n)
	for i := range elems {
		elems[i] = hexiota.Pattern(pattern.New(pattern.Direction(i%6), strings.Repeat("qa", i%7+1)))
	}
	return hexiota.List(elems...)
}

// ============================================================
// Templates
// ============================================================

func TestCommand(t *testing.T) {
	if got := Command("1d", Give); got != "give @p hexcasting:focus{data:1d}" {
		t.Errorf("give = %q", got)
	}
	want := `summon item ~ ~0.6 ~ {Item:{id:"hexcasting:focus",Count:1b,tag:{data:1d}}}`
	if got := Command("1d", Summon); got != want {
		t.Errorf("summon = %q", got)
	}
}

func TestParseTemplate(t *testing.T) {
	for in, want := range map[string]Template{"give": Give, " Summon ": Summon} {
		got, err := ParseTemplate(in)
		if err != nil || got != want {
			t.Errorf("ParseTemplate(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseTemplate("tellraw"); !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("expected ErrUnknownTemplate, got %v", err)
	}
}

// ============================================================
// Shorthand
// ============================================================

func TestShorthand(t *testing.T) {
	got, err := Shorthand("<ne,qaq>;<w,qqq>")
	if err != nil {
		t.Fatalf("Shorthand failed: %v", err)
	}
	want := `give @p hexcasting:focus{data:{"hexcasting:type":"hexcasting:list","hexcasting:data":[` +
		`{"hexcasting:type":"hexcasting:pattern","hexcasting:data":{startDir:0b,angles:[B;5b,4b,5b]}},` +
		`{"hexcasting:type":"hexcasting:pattern","hexcasting:data":{startDir:4b,angles:[B;5b,5b,5b]}}]}}`
	if got != want {
		t.Errorf("Shorthand =\n%s\nwant\n%s", got, want)
	}
}

func TestShorthand_EmptyAngles(t *testing.T) {
	v, err := ShorthandIota("<se,>")
	if err != nil {
		t.Fatalf("ShorthandIota failed: %v", err)
	}
	want := hexiota.List(hexiota.Pattern(pattern.New(pattern.SouthEast, "")))
	if !hexiota.Equal(v, want) {
		t.Errorf("got %s", v)
	}
}

func TestShorthand_Errors(t *testing.T) {
	for _, in := range []string{"", "<x,qa>", "<ne,qaq>;;<w,q>", "ne,qaq"} {
		if _, err := Shorthand(in); !errors.Is(err, ErrBadShorthand) {
			t.Errorf("Shorthand(%q): expected ErrBadShorthand, got %v", in, err)
		}
	}
}

// ============================================================
// Splitting
// ============================================================

func TestSplit_SingleCommand(t *testing.T) {
	v := patternList(5)
	res, err := Split(v, 0, Give)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if res.Limit != DefaultLimit || len(res.Commands) != 1 {
		t.Fatalf("got %d commands, limit %d", len(res.Commands), res.Limit)
	}
	if !hexiota.Equal(unwrap(t, res.Commands[0]), v) {
		t.Error("command does not carry the iota")
	}
}

func TestSplit_Greedy(t *testing.T) {
	v := patternList(200)
	const limit = 2000

	res, err := Split(v, limit, Give)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(res.Commands) < 2 {
		t.Fatalf("expected several commands, got %d", len(res.Commands))
	}

	var all []*hexiota.Iota
	for i, cmd := range res.Commands {
		if len(cmd) > limit {
			t.Errorf("command %d has %d chars", i, len(cmd))
		}
		chunk, err := unwrap(t, cmd).AsList()
		if err != nil {
			t.Fatalf("command %d: %v", i, err)
		}
		if len(chunk) == 0 {
			t.Errorf("command %d is empty", i)
		}
		if i < len(res.Commands)-1 {
			following := len(all) + len(chunk)
			s, _ := mustList(t, v)[following].NBTString()
			if len(cmd)+1+len(s) <= limit {
				t.Errorf("command %d could have held element %d", i, following)
			}
		}
		all = append(all, chunk...)
	}
	if !hexiota.Equal(hexiota.List(all...), v) {
		t.Error("commands do not reassemble the list")
	}
}

func mustList(t *testing.T, v *hexiota.Iota) []*hexiota.Iota {
	t.Helper()
	l, err := v.AsList()
	if err != nil {
		t.Fatalf("AsList failed: %v", err)
	}
	return l
}

func TestSplit_NotAList(t *testing.T) {
	res, err := Split(hexiota.Number(3), 0, Summon)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := `summon item ~ ~0.6 ~ {Item:{id:"hexcasting:focus",Count:1b,tag:{data:{"hexcasting:type":"hexcasting:double","hexcasting:data":3d}}}}`
	if len(res.Commands) != 1 || res.Commands[0] != want {
		t.Errorf("Commands = %q", res.Commands)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("Warnings = %v", res.Warnings)
	}
}

func TestSplit_EmptyList(t *testing.T) {
	res, err := Split(hexiota.List(), 0, Give)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(res.Commands) != 1 {
		t.Fatalf("Commands = %q", res.Commands)
	}
	if unwrap(t, res.Commands[0]).Len() != 0 {
		t.Error("expected empty list")
	}
}

func TestSplit_TooLarge(t *testing.T) {
	if _, err := Split(patternList(3), 50, Give); !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestCapacity(t *testing.T) {
	res := &Result{Commands: []string{"x", strings.Repeat("x", 31000)}, Limit: DefaultLimit}
	chars, percent := res.Capacity()
	if chars != 1000 || percent != 3.1 {
		t.Errorf("Capacity = %d, %v", chars, percent)
	}
	if got := res.Summary(); got != "2 commands, 3.1% capacity (1000 chars) in last command" {
		t.Errorf("Summary = %q", got)
	}

	empty := &Result{Limit: DefaultLimit}
	if c, p := empty.Capacity(); c != 0 || p != 0 {
		t.Errorf("empty Capacity = %d, %v", c, p)
	}
}

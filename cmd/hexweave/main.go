// hexweave - spell compiler CLI tool
//
// Usage:
//
//	hexweave number <n>                 Print the pattern that pushes n
//	hexweave overlap <instructions>     Report whether a path retraces an edge
//	hexweave nbt fmt [file]             Normalize structured-data text
//	hexweave iota fmt|lower [file]      Normalize iota text or lower it to NBT
//	hexweave translate [file]           Translate spell names to an iota list
//	hexweave build [manifest]           Build a spell package
//	hexweave library [file]             Build a pattern library
//	hexweave give [file]                Export an iota as give commands
//	hexweave serve                      Run the HTTP API
//	hexweave config                     Print the effective configuration
//	hexweave version                    Print version info
//
// If no file is given, reads from stdin.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"github.com/Neumenon/hexweave/compiler"
	"github.com/Neumenon/hexweave/give"
	"github.com/Neumenon/hexweave/hexiota"
	"github.com/Neumenon/hexweave/internal/api"
	"github.com/Neumenon/hexweave/internal/config"
	"github.com/Neumenon/hexweave/nbt"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/spelldb"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch {
	case versionArgs[cmd]:
		fmt.Printf("hexweave %s (commit %s, built %s)\n", api.Version, api.GitCommit, api.BuildTime)
		return
	case cmd == "help" || cmd == "-h" || cmd == "--help":
		printUsage()
		return
	case strings.HasPrefix(cmd, "-"):
		fmt.Fprintf(os.Stderr, "missing command before %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	flags := pflag.NewFlagSet("hexweave "+cmd, pflag.ContinueOnError)
	config.RegisterFlags(flags)
	shorthand := flags.Bool("shorthand", false, "give: read a ';'-separated list of <dir,angles> patterns")
	if err := flags.Parse(os.Args[2:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fatal("%v", err)
	}
	cfg, err := config.Load("", flags)
	if err != nil {
		fatal("config: %v", err)
	}
	args := flags.Args()
	app := newApp(cfg)
	ctx := context.Background()

	switch cmd {
	case "number":
		if len(args) < 1 {
			fatal("hexweave number: missing value")
		}
		app.cmdNumber(ctx, args[0])
	case "overlap":
		instructions := ""
		if len(args) > 0 {
			instructions = args[0]
		}
		fmt.Println(pattern.HasOverlap(instructions))
	case "nbt":
		if len(args) < 1 || args[0] != "fmt" {
			fatal("hexweave nbt: missing subcommand (fmt)")
		}
		cmdNBTFmt(openInput(args[1:]))
	case "iota":
		if len(args) < 1 {
			fatal("hexweave iota: missing subcommand (fmt, lower)")
		}
		switch args[0] {
		case "fmt":
			cmdIotaFmt(openInput(args[1:]), false)
		case "lower":
			cmdIotaFmt(openInput(args[1:]), true)
		default:
			fatal("hexweave iota: unknown subcommand: %s", args[0])
		}
	case "translate":
		app.cmdTranslate(ctx, openInput(args))
	case "build":
		manifest := compiler.DefaultManifest
		if len(args) > 0 {
			manifest = args[0]
		}
		app.cmdBuild(ctx, manifest)
	case "library":
		app.cmdLibrary(ctx, openInput(args))
	case "give":
		app.cmdGive(openInput(args), *shorthand)
	case "serve":
		app.cmdServe()
	case "config":
		out, err := cfg.YAML()
		if err != nil {
			fatal("config: %v", err)
		}
		os.Stdout.Write(out)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

// versionArgs are the top-level spellings of the version command. -v is
// the short form of --verbose everywhere.
var versionArgs = map[string]bool{"version": true, "--version": true}

func printUsage() {
	fmt.Fprint(os.Stderr, `hexweave - spell compiler CLI tool

Usage:
  hexweave number <n>                 Print the pattern that pushes n
  hexweave overlap <instructions>     Report whether a path retraces an edge
  hexweave nbt fmt [file]             Normalize structured-data text
  hexweave iota fmt [file]            Normalize iota text
  hexweave iota lower [file]          Lower iota text to structured data
  hexweave translate [file]           Translate spell names to an iota list
  hexweave build [manifest]           Build a spell package (default hexpackage.json)
  hexweave library [file]             Build a pattern library
  hexweave give [file]                Export an iota as give commands
  hexweave serve                      Run the HTTP API
  hexweave config                     Print the effective configuration
  hexweave version                    Print version info

Options:
  -c, --config FILE   Config file (yaml, json or toml)
  --mode MODE         Number synthesis mode: fast, faster, unweighted, shorter
  --source SRC        Pattern table URL or CSV path
  --retries N         Retries when fetching the pattern table
  --root DIR          Package root directory
  --limit N           Maximum command length (default 32000)
  --template NAME     Command template: give or summon
  --shorthand         give: input is <dir,angles>;<dir,angles>...
  --addr ADDR         HTTP listen address (default :8080)
  -v, --verbose       Log progress to stderr

Settings may also come from HEXWEAVE_* environment variables,
e.g. HEXWEAVE_SYNTH_MODE=fast.

If no file is given, reads from stdin.

Examples:
  hexweave number 1024
  echo '[<e,w>, 1, "hi"]' | hexweave iota lower
  hexweave translate spell.hexpattern --source patterns.csv
  hexweave give spell.hexiota --template summon
`)
}

// app holds the components shared by commands.
type app struct {
	cfg    *config.Config
	synth  *pattern.Synthesizer
	stderr io.Writer
}

func newApp(cfg *config.Config) *app {
	a := &app{cfg: cfg, stderr: os.Stderr}
	a.synth = pattern.NewSynthesizer(cfg.SynthOptions(a.logger("[SYNTH] ")))
	return a
}

// logger returns a stderr logger when verbose, nil otherwise.
func (a *app) logger(prefix string) *log.Logger {
	if !a.cfg.Log.Verbose {
		return nil
	}
	return log.New(a.stderr, prefix, log.LstdFlags)
}

// loadStore fetches the configured pattern table into a Store.
func (a *app) loadStore(ctx context.Context) (*spelldb.Store, error) {
	logger := a.logger("[SPELLDB] ")
	f := spelldb.NewFetcher(a.cfg.FetchOptions(logger))
	return spelldb.LoadStore(ctx, f, a.cfg.SpellDB.Source, logger)
}

// translator loads the spell table and builds a Translator on it.
func (a *app) translator(ctx context.Context) (*compiler.Translator, *spelldb.Store) {
	store, err := a.loadStore(ctx)
	if err != nil {
		fatal("load spell table: %v", err)
	}
	return compiler.NewTranslator(store, a.synth, a.logger("[COMPILER] ")), store
}

func (a *app) cmdNumber(ctx context.Context, arg string) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fatal("hexweave number: %v", err)
	}
	p, err := a.synth.Number(ctx, n)
	if err != nil {
		fatal("synthesize %d: %v", n, err)
	}
	lowered, err := hexiota.Pattern(p).NBTString()
	if err != nil {
		fatal("lower: %v", err)
	}
	fmt.Println(p)
	fmt.Println(lowered)
}

// cmdNBTFmt: structured-data text -> compact canonical text
func cmdNBTFmt(r io.Reader) {
	tag, err := nbt.Parse(readAll(r))
	if err != nil {
		fatal("parse: %v", err)
	}
	fmt.Println(nbt.Emit(tag))
}

// cmdIotaFmt: iota text -> canonical iota text, or structured data when lower
func cmdIotaFmt(r io.Reader, lower bool) {
	res, err := hexiota.Parse(readAll(r))
	if err != nil {
		fatal("parse: %v", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if res.Value == nil {
		fatal("parse: %v", hexiota.ErrNoMatch)
	}
	if !lower {
		fmt.Println(res.Value)
		return
	}
	out, err := res.Value.NBTString()
	if err != nil {
		fatal("lower: %v", err)
	}
	fmt.Println(out)
}

func (a *app) cmdTranslate(ctx context.Context, r io.Reader) {
	t, store := a.translator(ctx)
	defer store.Close()
	out, err := t.TranslateSource(ctx, readAll(r), compiler.Hexpattern, compiler.Hexiota)
	if err != nil {
		fatal("translate: %v", err)
	}
	fmt.Println(out)
}

func (a *app) cmdBuild(ctx context.Context, manifest string) {
	t, store := a.translator(ctx)
	defer store.Close()
	fs := afero.NewBasePathFs(afero.NewOsFs(), a.cfg.Compiler.Root)
	c := compiler.New(fs, t, a.logger("[COMPILER] "))

	b, err := c.Build(ctx, manifest)
	if err != nil {
		fatal("build: %v", err)
	}
	for _, w := range b.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	if b.Iota != nil {
		fmt.Println(b.Iota)
	} else {
		fmt.Print(b.Output)
	}
	if b.Library != nil {
		fmt.Println(b.Library.Iota)
	}
	fmt.Fprintf(os.Stderr, "build %s: %s (sha256 %s)\n", b.ID, b.Summary(), b.Digest[:16])
}

func (a *app) cmdLibrary(ctx context.Context, r io.Reader) {
	t, store := a.translator(ctx)
	defer store.Close()
	lib, err := t.BuildLibrary(ctx, readAll(r))
	if err != nil {
		fatal("library: %v", err)
	}
	for _, w := range lib.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	fmt.Println(lib.Iota)
	for _, e := range lib.Entries {
		fmt.Fprintf(os.Stderr, "%s: %d patterns\n", strings.Join(e.Names, ", "), e.Patterns)
	}
}

func (a *app) cmdGive(r io.Reader, shorthand bool) {
	input := strings.TrimSpace(readAll(r))
	var v *hexiota.Iota
	var err error
	if shorthand {
		v, err = give.ShorthandIota(input)
	} else {
		v, err = hexiota.ParseValue(input)
	}
	if err != nil {
		fatal("parse: %v", err)
	}
	res, err := give.Split(v, a.cfg.Give.Limit, a.cfg.GiveTemplate())
	if err != nil {
		fatal("give: %v", err)
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
	for _, c := range res.Commands {
		fmt.Println(c)
	}
	fmt.Fprintln(os.Stderr, res.Summary())
}

// openInput returns the named file, or stdin when args is empty or "-".
func openInput(args []string) io.Reader {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin
	}
	f, err := os.Open(args[0])
	if err != nil {
		fatal("open file: %v", err)
	}
	return f
}

func readAll(r io.Reader) string {
	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	if c, ok := r.(io.Closer); ok && r != os.Stdin {
		c.Close()
	}
	return string(data)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

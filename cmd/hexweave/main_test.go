package main

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/Neumenon/hexweave/internal/config"
)

func TestVersionArgs(t *testing.T) {
	for _, arg := range []string{"version", "--version"} {
		if !versionArgs[arg] {
			t.Errorf("%q should print the version", arg)
		}
	}
	if versionArgs["-v"] {
		t.Error("-v is --verbose, not version")
	}
}

func TestShortVerboseFlag(t *testing.T) {
	flags := pflag.NewFlagSet("hexweave number", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse([]string{"-v", "42"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	cfg, err := config.Load("", flags)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Log.Verbose {
		t.Error("-v did not enable verbose logging")
	}
	if args := flags.Args(); len(args) != 1 || args[0] != "42" {
		t.Errorf("Args = %v", args)
	}

	a := newApp(cfg)
	if a.logger("[SYNTH] ") == nil {
		t.Error("verbose app should log")
	}
}

// Package config loads hexweave settings from defaults, an optional config
// file, HEXWEAVE_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/Neumenon/hexweave/give"
	"github.com/Neumenon/hexweave/pattern"
	"github.com/Neumenon/hexweave/spelldb"
)

// EnvPrefix prefixes environment overrides, e.g. HEXWEAVE_SYNTH_MODE.
const EnvPrefix = "HEXWEAVE"

// Config holds all settings.
type Config struct {
	Synth    SynthConfig    `mapstructure:"synth" yaml:"synth"`
	SpellDB  SpellDBConfig  `mapstructure:"spelldb" yaml:"spelldb"`
	Compiler CompilerConfig `mapstructure:"compiler" yaml:"compiler"`
	Give     GiveConfig     `mapstructure:"give" yaml:"give"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// SynthConfig configures number synthesis.
type SynthConfig struct {
	// Mode is one of fast, faster, unweighted or shorter.
	Mode       string `mapstructure:"mode" yaml:"mode"`
	YieldEvery int    `mapstructure:"yield_every" yaml:"yield_every"`
}

// SpellDBConfig configures where the pattern table comes from.
type SpellDBConfig struct {
	// Source is an http(s) URL or a local CSV path.
	Source  string        `mapstructure:"source" yaml:"source"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Retries uint64        `mapstructure:"retries" yaml:"retries"`
}

// CompilerConfig configures package builds.
type CompilerConfig struct {
	// Root is the directory manifests and includes are resolved against.
	Root string `mapstructure:"root" yaml:"root"`
}

// GiveConfig configures command export.
type GiveConfig struct {
	Limit    int    `mapstructure:"limit" yaml:"limit"`
	Template string `mapstructure:"template" yaml:"template"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr" yaml:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// LogConfig configures diagnostics.
type LogConfig struct {
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Synth: SynthConfig{
			Mode:       "shorter",
			YieldEvery: 100,
		},
		SpellDB: SpellDBConfig{
			Source:  spelldb.DefaultSource,
			Timeout: 30 * time.Second,
			Retries: 3,
		},
		Compiler: CompilerConfig{
			Root: ".",
		},
		Give: GiveConfig{
			Limit:    give.DefaultLimit,
			Template: string(give.Give),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 60 * time.Second,
		},
	}
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"mode":     "synth.mode",
	"source":   "spelldb.source",
	"retries":  "spelldb.retries",
	"root":     "compiler.root",
	"limit":    "give.limit",
	"template": "give.template",
	"addr":     "server.addr",
	"verbose":  "log.verbose",
}

// RegisterFlags defines the flags Load understands on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := DefaultConfig()
	fs.StringP("config", "c", "", "config file (yaml, json or toml)")
	fs.String("mode", d.Synth.Mode, "number synthesis mode: fast, faster, unweighted or shorter")
	fs.String("source", d.SpellDB.Source, "pattern table URL or CSV path")
	fs.Uint64("retries", d.SpellDB.Retries, "retries when fetching the pattern table")
	fs.String("root", d.Compiler.Root, "package root directory")
	fs.Int("limit", d.Give.Limit, "maximum command length")
	fs.String("template", d.Give.Template, "command template: give or summon")
	fs.String("addr", d.Server.Addr, "HTTP listen address")
	fs.BoolP("verbose", "v", d.Log.Verbose, "log progress to stderr")
}

// Load resolves the configuration. path may be empty; when flags carries
// a "config" flag its value is used instead. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("synth.mode", d.Synth.Mode)
	v.SetDefault("synth.yield_every", d.Synth.YieldEvery)
	v.SetDefault("spelldb.source", d.SpellDB.Source)
	v.SetDefault("spelldb.timeout", d.SpellDB.Timeout)
	v.SetDefault("spelldb.retries", d.SpellDB.Retries)
	v.SetDefault("compiler.root", d.Compiler.Root)
	v.SetDefault("give.limit", d.Give.Limit)
	v.SetDefault("give.template", d.Give.Template)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)
	v.SetDefault("log.verbose", d.Log.Verbose)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if _, err := pattern.WeightForMode(c.Synth.Mode); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("synth.mode: %w", err))
	}
	if c.Synth.YieldEvery <= 0 {
		errs = multierr.Append(errs, errors.New("synth.yield_every must be positive"))
	}
	if c.SpellDB.Source == "" {
		errs = multierr.Append(errs, errors.New("spelldb.source is required"))
	}
	if c.SpellDB.Timeout <= 0 {
		errs = multierr.Append(errs, errors.New("spelldb.timeout must be positive"))
	}
	if c.Compiler.Root == "" {
		errs = multierr.Append(errs, errors.New("compiler.root is required"))
	}
	if c.Give.Limit <= 0 {
		errs = multierr.Append(errs, errors.New("give.limit must be positive"))
	}
	if _, err := give.ParseTemplate(c.Give.Template); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("give.template: %w", err))
	}
	if c.Server.Addr == "" {
		errs = multierr.Append(errs, errors.New("server.addr is required"))
	}
	if c.Server.RequestTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("server.request_timeout must be positive"))
	}
	return errs
}

// SynthOptions converts the synth settings. The config must be valid.
func (c *Config) SynthOptions(logger *log.Logger) pattern.SynthOptions {
	opts := pattern.DefaultSynthOptions()
	if w, err := pattern.WeightForMode(c.Synth.Mode); err == nil {
		opts.Weight = w
	}
	opts.YieldEvery = c.Synth.YieldEvery
	opts.Logger = logger
	return opts
}

// FetchOptions converts the spelldb settings.
func (c *Config) FetchOptions(logger *log.Logger) spelldb.FetchOptions {
	return spelldb.FetchOptions{
		HTTPClient: &http.Client{Timeout: c.SpellDB.Timeout},
		Retries:    c.SpellDB.Retries,
		Logger:     logger,
	}
}

// GiveTemplate returns the configured command template.
func (c *Config) GiveTemplate() give.Template {
	t, err := give.ParseTemplate(c.Give.Template)
	if err != nil {
		return give.Give
	}
	return t
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

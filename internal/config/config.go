// Package config collects binviz settings from defaults, the environment
// and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"strconv"
	"strings"

	"github.com/olivier-w/binviz/internal/export"
	"github.com/olivier-w/binviz/internal/frame"
	"github.com/olivier-w/binviz/internal/quant"
	"github.com/olivier-w/binviz/internal/sample"
)

const (
	EnvStrategy = "BINVIZ_STRATEGY"
	EnvDebug    = "BINVIZ_DEBUG"
)

type Config struct {
	Count    int
	FPS      int
	Seed     uint64 // 0 seeds from the runtime
	Strategy string
	Debug    bool
	LogPath  string

	// Headless export; enabled when ExportDir is set.
	ExportDir    string
	ExportFrames int
	ExportEvery  int
	ExportWidth  int
	ExportHeight int
	Script       string
}

// Default returns the interactive defaults.
func Default() Config {
	return Config{
		Count:        sample.DefaultCount,
		FPS:          60,
		Strategy:     quant.Standard.String(),
		LogPath:      "binviz.log",
		ExportFrames: 900,
		ExportEvery:  1,
		ExportWidth:  export.DefaultWidth,
		ExportHeight: export.DefaultHeight,
	}
}

// Bind registers the flags on fs, using the current values as defaults.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.IntVar(&c.Count, "count", c.Count, "number of particles")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frames per second")
	fs.Uint64Var(&c.Seed, "seed", c.Seed, "random seed (0 = random)")
	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "initial strategy: standard, adaptive or optimized")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "write debug logs to -log")
	fs.StringVar(&c.LogPath, "log", c.LogPath, "debug log file")
	fs.StringVar(&c.ExportDir, "export", c.ExportDir, "write PNG frames to this directory instead of running the TUI")
	fs.IntVar(&c.ExportFrames, "frames", c.ExportFrames, "number of frames to simulate when exporting")
	fs.IntVar(&c.ExportEvery, "every", c.ExportEvery, "export every Nth frame")
	fs.IntVar(&c.ExportWidth, "width", c.ExportWidth, "export image width in pixels")
	fs.IntVar(&c.ExportHeight, "height", c.ExportHeight, "export image height in pixels")
	fs.StringVar(&c.Script, "script", c.Script, "scripted requests when exporting, e.g. adaptive@300,optimized@700,generate@1200")
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := strings.TrimSpace(getenv(EnvStrategy)); v != "" {
		c.Strategy = v
	}
	if v := strings.TrimSpace(getenv(EnvDebug)); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return invalid(EnvDebug, v, "expected a boolean")
		}
		c.Debug = on
	}
	return nil
}

// Load resolves defaults, then the environment, then args.
func Load(args []string, getenv func(string) string) (Config, error) {
	cfg := Default()
	if err := cfg.ApplyEnv(getenv); err != nil {
		return cfg, err
	}
	fs := flag.NewFlagSet("binviz", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate reports every rejected field.
func (c Config) Validate() error {
	var errs []error
	if c.Count < 1 {
		errs = append(errs, invalid("count", c.Count, "must be positive"))
	}
	if c.FPS < 1 || c.FPS > 240 {
		errs = append(errs, invalid("fps", c.FPS, "must be between 1 and 240"))
	}
	if _, ok := quant.ParseStrategy(c.Strategy); !ok {
		errs = append(errs, invalid("strategy", c.Strategy, "unknown strategy"))
	}
	if c.Debug && c.LogPath == "" {
		errs = append(errs, invalid("log", c.LogPath, "required with -debug"))
	}
	if c.Headless() {
		if c.ExportFrames < 1 {
			errs = append(errs, invalid("frames", c.ExportFrames, "must be positive"))
		}
		if c.ExportEvery < 1 {
			errs = append(errs, invalid("every", c.ExportEvery, "must be positive"))
		}
		if c.ExportWidth < 16 || c.ExportHeight < 16 {
			errs = append(errs, invalid("size", strconv.Itoa(c.ExportWidth)+"x"+strconv.Itoa(c.ExportHeight), "must be at least 16x16"))
		}
	}
	if _, err := ParseScript(c.Script); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Headless reports whether frames are exported instead of shown.
func (c Config) Headless() bool { return c.ExportDir != "" }

// InitialStrategy returns the parsed strategy, standard if unknown.
func (c Config) InitialStrategy() quant.Strategy {
	s, _ := quant.ParseStrategy(c.Strategy)
	return s
}

// ParseScript parses comma-separated name@tick cues. The name is a strategy
// or "generate".
func ParseScript(script string) ([]frame.Cue, error) {
	var cues []frame.Cue
	for _, item := range strings.Split(script, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, at, ok := strings.Cut(item, "@")
		if !ok {
			return nil, invalid("script", item, "expected name@tick")
		}
		tick, err := strconv.ParseUint(strings.TrimSpace(at), 10, 64)
		if err != nil || tick == 0 {
			return nil, invalid("script", item, "tick must be a positive integer")
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "generate" || name == "regen" {
			cues = append(cues, frame.Cue{Tick: tick, Generate: true})
			continue
		}
		s, ok := quant.ParseStrategy(name)
		if !ok {
			return nil, invalid("script", item, "unknown strategy")
		}
		cues = append(cues, frame.Cue{Tick: tick, Strategy: s})
	}
	return cues, nil
}

package config

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/pkg/engine"
	"github.com/yourusername/bgpilot/pkg/game"
	"github.com/yourusername/bgpilot/pkg/gnubg"
)

// SetupLogging installs the global logger writing to w.
func (c Config) SetupLogging(w io.Writer) {
	zerolog.SetGlobalLevel(c.LogLevel)
	if c.LogPretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// RunnerOptions returns the gnubg subprocess settings.
func (c Config) RunnerOptions() gnubg.RunnerOptions {
	return gnubg.RunnerOptions{
		Path:    c.GnubgPath,
		Args:    c.GnubgArgs,
		Timeout: c.GnubgTimeout,
		DryRun:  c.DryRun,
	}
}

// CommandOptions returns the hint script settings.
func (c Config) CommandOptions() gnubg.CommandOptions {
	return gnubg.CommandOptions{Variant: c.Variant, Hints: c.Hints}
}

// EngineOptions returns the pipeline settings.
func (c Config) EngineOptions() engine.EngineOptions {
	opts := engine.DefaultEngineOptions()
	opts.HeroID = game.PlayerID(c.HeroID)
	opts.DebounceTTL = c.DebounceTTL
	return opts
}

// Client builds a gnubg client from the settings.
func (c Config) Client() *gnubg.Client {
	return gnubg.NewClient(gnubg.NewExecRunner(c.RunnerOptions()), c.CommandOptions())
}

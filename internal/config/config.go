// Package config loads runtime settings from the environment, after an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds every tunable of the engine, the CLI and the server.
type Config struct {
	GnubgPath    string        // GNUBG_PATH
	GnubgArgs    []string      // GNUBG_ARGS, space separated
	GnubgTimeout time.Duration // GNUBG_TIMEOUT_SEC
	DryRun       bool          // GNUBG_DRY_RUN
	Variant      string        // GNUBG_VARIANT
	Hints        int           // GNUBG_HINTS

	DebounceTTL   time.Duration // BGPILOT_DEBOUNCE_TTL
	NotifyWorkers int           // BGPILOT_NOTIFY_WORKERS
	NotifyWait    time.Duration // BGPILOT_NOTIFY_WAIT
	LogLevel      zerolog.Level // BGPILOT_LOG_LEVEL
	LogPretty     bool          // BGPILOT_LOG_PRETTY
	HeroID        string        // BGPILOT_HERO_ID
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		GnubgPath:     "gnubg",
		GnubgArgs:     []string{"-t", "-q"},
		GnubgTimeout:  8 * time.Second,
		Variant:       "standard",
		Hints:         1,
		DebounceTTL:   450 * time.Millisecond,
		NotifyWorkers: 2,
		NotifyWait:    2 * time.Second,
		LogLevel:      zerolog.InfoLevel,
	}
}

// Load reads files (".env" when none are given) if they exist, then
// overlays the environment on the defaults. Missing files are not an error.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv(os.Getenv)
}

// FromEnv builds a config from a lookup function.
func FromEnv(getenv func(string) string) Config {
	c := Default()

	if v := strings.TrimSpace(getenv("GNUBG_PATH")); v != "" {
		c.GnubgPath = v
	}
	if v, ok := lookup(getenv, "GNUBG_ARGS"); ok {
		c.GnubgArgs = strings.Fields(v)
	}
	if v, ok := lookup(getenv, "GNUBG_TIMEOUT_SEC"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.GnubgTimeout = time.Duration(f * float64(time.Second))
		}
	}
	c.DryRun = asBool(getenv("GNUBG_DRY_RUN"))
	if v := strings.TrimSpace(getenv("GNUBG_VARIANT")); v != "" {
		c.Variant = v
	}
	c.Hints = atoiDef(getenv("GNUBG_HINTS"), c.Hints)

	c.DebounceTTL = durationDef(getenv("BGPILOT_DEBOUNCE_TTL"), c.DebounceTTL)
	c.NotifyWorkers = atoiDef(getenv("BGPILOT_NOTIFY_WORKERS"), c.NotifyWorkers)
	c.NotifyWait = durationDef(getenv("BGPILOT_NOTIFY_WAIT"), c.NotifyWait)
	if lvl, err := zerolog.ParseLevel(strings.TrimSpace(getenv("BGPILOT_LOG_LEVEL"))); err == nil && lvl != zerolog.NoLevel {
		c.LogLevel = lvl
	}
	c.LogPretty = asBool(getenv("BGPILOT_LOG_PRETTY"))
	c.HeroID = strings.TrimSpace(getenv("BGPILOT_HERO_ID"))

	return c
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	return v, v != ""
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func atoiDef(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// durationDef accepts Go durations ("450ms") and bare seconds ("0.45").
func durationDef(s string, def time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
		return time.Duration(f * float64(time.Second))
	}
	return def
}

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaults(t *testing.T) {
	c := FromEnv(envMap(nil))

	assert.Equal(t, Default(), c)
	assert.Equal(t, 8*time.Second, c.GnubgTimeout)
	assert.Equal(t, 450*time.Millisecond, c.DebounceTTL)
	assert.Equal(t, "standard", c.Variant)
	assert.False(t, c.DryRun)
}

func TestFromEnv(t *testing.T) {
	c := FromEnv(envMap(map[string]string{
		"GNUBG_PATH":             "/opt/gnubg/bin/gnubg",
		"GNUBG_ARGS":             "-t  -q -r",
		"GNUBG_TIMEOUT_SEC":      "2.5",
		"GNUBG_DRY_RUN":          "yes",
		"GNUBG_HINTS":            "3",
		"BGPILOT_DEBOUNCE_TTL":   "0.2",
		"BGPILOT_NOTIFY_WORKERS": "4",
		"BGPILOT_NOTIFY_WAIT":    "750ms",
		"BGPILOT_LOG_LEVEL":      "debug",
		"BGPILOT_HERO_ID":        " hero-1 ",
	}))

	assert.Equal(t, "/opt/gnubg/bin/gnubg", c.GnubgPath)
	assert.Equal(t, []string{"-t", "-q", "-r"}, c.GnubgArgs)
	assert.Equal(t, 2500*time.Millisecond, c.GnubgTimeout)
	assert.True(t, c.DryRun)
	assert.Equal(t, 3, c.Hints)
	assert.Equal(t, 200*time.Millisecond, c.DebounceTTL)
	assert.Equal(t, 4, c.NotifyWorkers)
	assert.Equal(t, 750*time.Millisecond, c.NotifyWait)
	assert.Equal(t, zerolog.DebugLevel, c.LogLevel)
	assert.Equal(t, "hero-1", c.HeroID)
}

func TestFromEnvIgnoresGarbage(t *testing.T) {
	c := FromEnv(envMap(map[string]string{
		"GNUBG_TIMEOUT_SEC":      "soon",
		"GNUBG_HINTS":            "-1",
		"BGPILOT_NOTIFY_WORKERS": "many",
		"BGPILOT_LOG_LEVEL":      "loud",
	}))

	assert.Equal(t, Default(), c)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("BGPILOT_HERO_ID=from-file\n"), 0o600))
	t.Setenv("BGPILOT_HERO_ID", "")
	require.NoError(t, os.Unsetenv("BGPILOT_HERO_ID"))

	c := Load(path)
	assert.Equal(t, "from-file", c.HeroID)
	require.NoError(t, os.Unsetenv("BGPILOT_HERO_ID"))
}

func TestWiring(t *testing.T) {
	c := FromEnv(envMap(map[string]string{
		"GNUBG_DRY_RUN":        "1",
		"GNUBG_VARIANT":        "nackgammon",
		"BGPILOT_HERO_ID":      "hero-1",
		"BGPILOT_DEBOUNCE_TTL": "1s",
	}))

	opts := c.EngineOptions()
	assert.Equal(t, "hero-1", string(opts.HeroID))
	assert.Equal(t, time.Second, opts.DebounceTTL)

	assert.Equal(t, "nackgammon", c.CommandOptions().Variant)
	assert.True(t, c.RunnerOptions().DryRun)
	assert.Equal(t, []string{"-t", "-q"}, c.RunnerOptions().Args)
	assert.NotNil(t, c.Client())
}

func TestSetupLogging(t *testing.T) {
	saved, level := log.Logger, zerolog.GlobalLevel()
	defer func() {
		log.Logger = saved
		zerolog.SetGlobalLevel(level)
	}()

	var buf bytes.Buffer
	c := Default()
	c.LogLevel = zerolog.WarnLevel
	c.SetupLogging(&buf)

	log.Info().Msg("hidden")
	log.Warn().Str("pos", "4HPwATDgc/ABMA").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"message":"shown"`)
	assert.Contains(t, out, `"pos":"4HPwATDgc/ABMA"`)
}

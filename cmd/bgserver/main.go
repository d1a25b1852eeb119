// Command bgserver runs the bgpilot API server.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/bgpilot/internal/config"
	"github.com/yourusername/bgpilot/internal/notify"
	"github.com/yourusername/bgpilot/pkg/api"
	"github.com/yourusername/bgpilot/pkg/engine"
	"github.com/yourusername/bgpilot/pkg/turn"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()

	host := flag.String("host", "localhost", "Host to bind to (use 0.0.0.0 for all interfaces)")
	port := flag.Int("port", 8080, "Port to listen on")
	gnubgPath := flag.String("gnubg", cfg.GnubgPath, "Path to the gnubg binary")
	dryRun := flag.Bool("dry-run", cfg.DryRun, "Echo gnubg scripts instead of running gnubg")
	hero := flag.String("hero", cfg.HeroID, "Player to act for (default: whoever is on roll)")
	gnubgWorkers := flag.Int("gnubg-workers", 2, "Max concurrent gnubg runs")
	readTimeout := flag.Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	pretty := flag.Bool("pretty", cfg.LogPretty, "Human-readable console logs")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Printf("bgpilot API Server v%s\n", version)
		os.Exit(0)
	}

	cfg.GnubgPath = *gnubgPath
	cfg.DryRun = *dryRun
	cfg.HeroID = *hero
	cfg.LogPretty = *pretty
	cfg.SetupLogging(os.Stderr)

	log.Info().
		Str("version", version).
		Str("gnubg", cfg.GnubgPath).
		Bool("dry_run", cfg.DryRun).
		Str("hero", cfg.HeroID).
		Msg("bgserver-starting")

	pool := notify.NewPool(notify.PoolConfig{Workers: cfg.NotifyWorkers})
	notifier := notify.NewNotifier(pool, notify.LogSink{Level: zerolog.InfoLevel})

	client := cfg.Client()
	pipeline := engine.NewEngine(client, turn.NewCoordinator(), notifier, cfg.EngineOptions())

	serverCfg := api.DefaultConfig()
	serverCfg.Host = *host
	serverCfg.Port = *port
	serverCfg.ReadTimeout = *readTimeout
	serverCfg.WriteTimeout = 0 // notices are streamed
	serverCfg.MaxGnubgWorkers = *gnubgWorkers

	server := api.NewServer(pipeline, client, serverCfg, version)
	server.Handlers().SetNotifyPool(pool)
	notifier.AddSink(server.Handlers().Broker())

	err := server.ListenAndServeWithGracefulShutdown()
	if cerr := pool.Close(cfg.NotifyWait); cerr != nil {
		log.Warn().Err(cerr).Msg("notify-pool-close")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("server-error")
	}
}

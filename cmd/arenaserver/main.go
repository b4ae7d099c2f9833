// Package main provides the arena server binary: one combat session ticked in
// the background, a websocket endpoint for the controlling client, and status
// endpoints.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/cory-johannsen/turnarena/internal/config"
	"github.com/cory-johannsen/turnarena/internal/game/ai"
	"github.com/cory-johannsen/turnarena/internal/game/arena"
	"github.com/cory-johannsen/turnarena/internal/game/dice"
	"github.com/cory-johannsen/turnarena/internal/game/session"
	"github.com/cory-johannsen/turnarena/internal/gameserver"
	"github.com/cory-johannsen/turnarena/internal/observability"
	"github.com/cory-johannsen/turnarena/internal/scripting"
	"github.com/cory-johannsen/turnarena/internal/server"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "arenaserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(reg)

	layout := arena.DefaultRoster()
	if cfg.Session.RosterPath != "" {
		layout, err = arena.LoadRosterFromFile(cfg.Session.RosterPath)
		if err != nil {
			logger.Fatal("loading roster", zap.String("path", cfg.Session.RosterPath), zap.Error(err))
		}
	}
	logger.Info("roster loaded", zap.Int("fighters", len(layout.Fighters)))

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Session.Seed != 0 {
		src = dice.NewSeededSource(cfg.Session.Seed)
		logger.Info("using seeded source", zap.Uint64("seed", cfg.Session.Seed))
	}
	src = dice.NewLoggedSource(src, logger)

	var script ai.ScriptCaller
	if cfg.Session.AIScript != "" {
		scriptMgr := scripting.NewManager(src, logger, cfg.Session.ScriptInstructionLimit)
		defer scriptMgr.Close()
		if err := scriptMgr.LoadFile(cfg.Session.AIScript); err != nil {
			logger.Fatal("loading AI script", zap.String("path", cfg.Session.AIScript), zap.Error(err))
		}
		script = scriptMgr
		logger.Info("loaded AI script", zap.String("path", cfg.Session.AIScript))
	}

	sess := session.New(session.Config{AIDelay: cfg.Session.AIDelay}, session.Deps{
		Layout:  layout,
		Source:  src,
		Script:  script,
		Metrics: metrics,
		Logger:  logger,
	})
	driver := gameserver.NewDriver(cfg.Session.TickInterval, sess, cfg.Session.InboxSize, metrics, logger)
	bridge := gameserver.NewBridge(driver, cfg.Bridge, metrics, logger)
	router := gameserver.NewRouter(bridge, driver, reg)

	ln, err := net.Listen("tcp", cfg.Server.Addr())
	if err != nil {
		logger.Fatal("listening", zap.String("addr", cfg.Server.Addr()), zap.Error(err))
	}
	httpSvc := server.NewHTTPService(ln, router, cfg.Server.ShutdownTimeout, logger)
	httpSvc.OnShutdown(bridge.Close)

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("session", &server.FuncService{StartFn: driver.Start, StopFn: driver.Stop})
	lifecycle.Add("http", httpSvc)

	logger.Info("arena server initialized",
		zap.String("session_id", sess.ID()),
		zap.String("addr", httpSvc.Addr().String()),
		zap.Duration("tick_interval", cfg.Session.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(context.Background()); err != nil {
		logger.Fatal("arena server exited", zap.Error(err))
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"starfight-server/internal/admin"
	"starfight-server/internal/config"
	"starfight-server/internal/game"
	"starfight-server/internal/logging"
	"starfight-server/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "starfight:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse("starfight", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return err
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := game.Options{
		Width:  cfg.World.Width,
		Height: cfg.World.Height,
		Rate:   cfg.World.Rate,
		Limits: game.Limits{
			MaxConns:      cfg.Server.MaxConns,
			MaxConnsPerIP: cfg.Server.MaxConnsPerIP,
			AcceptRate:    cfg.Server.AcceptRate,
			AcceptBurst:   cfg.Server.AcceptBurst,
		},
		Logger: log.Named("game"),
	}
	var stats admin.Stats
	if cfg.Store.Path != "" {
		db, err := store.Open(cfg.Store.Path, store.Options{
			BatchSize:     cfg.Store.BatchSize,
			FlushInterval: cfg.Store.FlushInterval(),
		}, log.Named("store"))
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		defer db.Close()
		opts.Recorder = db
		stats = db
		log.Infow("store opened", "path", cfg.Store.Path)
	}

	g := game.New(opts)
	go g.Run(ctx)

	if cfg.Admin.Addr != "" {
		srv := &http.Server{
			Addr: cfg.Admin.Addr,
			Handler: admin.New(g, stats, admin.Options{
				SpectateInterval: cfg.Admin.SpectateInterval(),
				PublicAddr:       cfg.Admin.PublicAddr,
			}, log.Named("admin")).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go serveAdmin(srv, log)
		defer srv.Close()
	}

	return game.NewServer(g, log.Named("server")).ListenAndServe(ctx, cfg.Server.Addr)
}

func serveAdmin(srv *http.Server, log *zap.SugaredLogger) {
	log.Infow("admin listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("admin server failed", "err", err)
	}
}

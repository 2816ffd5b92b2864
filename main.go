package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rinha/config"
	"rinha/db"
	"rinha/http"
)

const (
	dbReadyAttempts = 10
	dbReadyInterval = time.Second
)

func setupLogger(level, format string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	logger = logger.Level(lvl).With().Timestamp().Logger()

	log.Logger = logger
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, db.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.MaxConns,
		MinConns:       cfg.MinConns,
		ConnectTimeout: cfg.ConnectTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxLifetime:    cfg.MaxLifetime,
		SearchPath:     "public",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open connection pool")
	}
	defer pool.Close()

	if err := db.WaitForDatabase(ctx, pool, dbReadyAttempts, dbReadyInterval); err != nil {
		log.Fatal().Err(err).Msg("database not ready")
	}
	log.Info().Int32("max_conns", cfg.MaxConns).Msg("connection pool ready")

	var repo db.Repository = db.NewPessoaRepository(pool, cfg.AcquireTimeout)
	if cfg.CacheEnabled {
		cache, err := db.NewCache(cfg.CacheMaxCost)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create cache")
		}
		defer cache.Close()
		repo = db.NewCachedRepository(repo, cache)
	}

	router := handler.NewRouter(handler.New(repo), logger)
	srv := &http.Server{
		Handler:           handler.RequestLogger(router, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	listener, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr()).Msg("failed to bind")
	}

	if cfg.PprofAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.PprofAddr).Msg("pprof listening")
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				log.Error().Err(err).Msg("pprof server stopped")
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", listener.Addr().String()).Msg("server starting")
		serveErr <- srv.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
		return
	}
	log.Info().Msg("server shutdown complete")
}

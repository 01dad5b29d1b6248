package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dovydenkovas/learned-cat/internal/adminapi"
	"github.com/dovydenkovas/learned-cat/internal/bank"
	"github.com/dovydenkovas/learned-cat/internal/config"
	"github.com/dovydenkovas/learned-cat/internal/exam"
	"github.com/dovydenkovas/learned-cat/internal/logger"
	"github.com/dovydenkovas/learned-cat/internal/store"
	"github.com/dovydenkovas/learned-cat/internal/transport"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("listen", cfg.ListenAddr).
		Str("bank", cfg.BankDir).
		Str("db", cfg.DBDriver).
		Msg("Starting learned-cat daemon")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Load Question Bank ────────────────────────────────────────────
	b, err := bank.Load(cfg.BankDir, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load question bank")
	}

	// ─── Open Result Store ─────────────────────────────────────────────
	st, err := store.Open(ctx, store.Driver(cfg.DBDriver), cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open result store")
	}
	defer st.Close()

	// ─── Start Engine Loop ─────────────────────────────────────────────
	engine := exam.NewEngine(b, b, st, log)
	coord := exam.NewCoordinator(engine, cfg.SweepInterval, log)
	go coord.Run(ctx)

	// ─── Start Exam Server ─────────────────────────────────────────────
	srv, err := transport.NewServer(cfg.ListenAddr, coord, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to bind exam server")
	}
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Fatal().Err(err).Msg("Exam server error")
		}
	}()

	// ─── Start Admin API ───────────────────────────────────────────────
	var adminSrv *http.Server
	if cfg.AdminAddr != "" {
		adminSrv = &http.Server{
			Addr:    cfg.AdminAddr,
			Handler: adminapi.NewRouter(st, cfg.GinMode, log),
		}
		go func() {
			log.Info().Str("addr", cfg.AdminAddr).Msg("Admin API listening")
			if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Admin API error")
			}
		}()
	}

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	if adminSrv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := adminSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Admin API shutdown error")
		}
	}

	// Stop the engine loop and listeners.
	cancel()
	time.Sleep(200 * time.Millisecond) // let in-flight replies drain

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

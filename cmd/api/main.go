// Package main is the entry point for the TripMate API server.
// Its sole responsibility is wiring dependencies together and running the
// HTTP server next to the chat dispatcher. No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/gbsb/tripmate/internal/chat"
	"github.com/gbsb/tripmate/internal/config"
	"github.com/gbsb/tripmate/internal/handler"
	"github.com/gbsb/tripmate/internal/middleware"
	"github.com/gbsb/tripmate/internal/place"
	"github.com/gbsb/tripmate/internal/repo"
	"github.com/gbsb/tripmate/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	slog.Info("database connection established")

	// --- Chat -------------------------------------------------------------
	// Redis being down does not stop the API; the dispatcher retries and
	// eventually drops chat jobs.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, chat delivery will retry", "addr", cfg.RedisAddr, "error", err)
	}
	dispatcher := chat.NewDispatcher(chat.NewRedisSink(rdb), chat.DispatcherOptions{Logger: logger})

	// --- Services ---------------------------------------------------------
	store := repo.NewStore(pool)
	meetings := service.NewMeetingService(store, dispatcher, service.TodayIn(loc))
	expenses := service.NewExpenseService(store)
	plans := service.NewPlanService(store)
	places := place.NewClient(place.Options{
		BaseURL: cfg.KakaoBaseURL,
		APIKey:  cfg.KakaoAPIKey,
		Timeout: cfg.PlaceTimeout,
		RPS:     cfg.PlaceRPS,
		Burst:   cfg.PlaceBurst,
	})

	// --- Router -----------------------------------------------------------
	// Order: RequestID → RealIP → Logger → Recoverer → CORS → body cap.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	api := handler.NewServer(meetings, expenses, plans, places)
	r.Mount("/", api.Routes(middleware.NewAuthHandler([]byte(cfg.JWTSecret))))

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// The dispatcher outlives the HTTP server so that chat jobs queued by the
	// last in-flight requests are still drained.
	dispatchCtx, stopDispatcher := context.WithCancel(context.WithoutCancel(ctx))
	defer stopDispatcher()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return dispatcher.Run(dispatchCtx)
	})
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		defer stopDispatcher()
		slog.Info("shutting down server")
		// In-flight requests get 15 seconds to finish.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

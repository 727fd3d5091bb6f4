package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"timeclock/internal/api"
	"timeclock/internal/attendance"
	"timeclock/internal/auth"
	"timeclock/internal/config"
	"timeclock/internal/logging"
	"timeclock/internal/queue"
	"timeclock/internal/store"
	"timeclock/internal/users"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("http server failed", zap.Error(err))
	}
}

func run(cfg config.App, log *zap.Logger) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Warn("db not reachable", zap.Error(err))
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	rdb := store.NewRedis(cfg.RedisAddr, cfg.LoginMaxFails, cfg.LoginFailWindow)
	q := queue.NewRedisQueue(rdb.Client, "")

	userRepo := users.NewRepository(db.Client)
	attRepo := attendance.NewRepository(db.Client)
	attSvc := attendance.NewService(attRepo, rdb, log)
	authSvc := auth.NewService(userRepo, rdb, log)

	h := api.NewHandlers(cfg, log, authSvc, userRepo, attSvc, q)
	r := api.NewRouter(h, db, rdb)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give outstanding requests 10 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server forced shutdown", zap.Error(err))
	}

	log.Info("server exited")
	return nil
}

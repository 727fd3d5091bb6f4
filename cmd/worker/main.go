package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timeclock/internal/attendance"
	"timeclock/internal/config"
	"timeclock/internal/logging"
	"timeclock/internal/queue"
	"timeclock/internal/store"
	"timeclock/internal/users"
)

// Worker consumes backfill messages enqueued at login and runs the
// missed-schedule scan. The redis day marker is shared with the API, so a
// user whose scan already ran today is a no-op here.
func main() {
	cfg := config.Load()
	log := logging.New(cfg)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("db connect failed", zap.Error(err))
	}
	defer db.Close()

	rdb := store.NewRedis(cfg.RedisAddr, cfg.LoginMaxFails, cfg.LoginFailWindow)
	q := queue.NewRedisQueue(rdb.Client, "")

	userRepo := users.NewRepository(db.Client)
	attSvc := attendance.NewService(attendance.NewRepository(db.Client), rdb, log)
	loc := cfg.Location()

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != queue.TypeBackfill {
			continue
		}

		userID, err := uuid.Parse(string(msg.Body))
		if err != nil {
			log.Warn("bad backfill message", zap.String("body", string(msg.Body)))
			continue
		}

		u, err := userRepo.GetByID(ctx, userID)
		if errors.Is(err, users.ErrNotFound) {
			log.Warn("backfill for unknown user", zap.String("user", userID.String()))
			continue
		}
		if err != nil {
			log.Error("user fetch failed", zap.Error(err), zap.String("user", userID.String()))
			continue
		}

		n, err := attSvc.Backfill(ctx, u, time.Now().In(loc))
		if err != nil {
			log.Error("backfill failed", zap.Error(err), zap.String("user", userID.String()))
			continue
		}
		if n > 0 {
			log.Info("backfill completed", zap.String("user", userID.String()), zap.Int("created", n))
		}
	}

	log.Info("worker stopped")
}

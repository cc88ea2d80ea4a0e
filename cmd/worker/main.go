package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"classtrack/internal/attendance"
	"classtrack/internal/config"
	"classtrack/internal/logging"
	"classtrack/internal/queue"
	"classtrack/internal/store"
)

// Worker consumes mutation events and warms the Redis stats snapshot so the
// API can serve aggregations without recomputing them per request.
func main() {
	_ = godotenv.Load() // optional .env for local dev
	cfg := config.Load()

	log, closeLog, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer closeLog()

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
		log.Fatalw("db connect failed", "err", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "")
	}

	repo := attendance.NewRepository(db.Client)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalw("queue consume init failed", "err", err)
	}

	log.Info("worker started, waiting for messages")
	for msg := range messages {
		if msg.Type != queue.TypeStatsDirty {
			continue
		}
		userID := msg.Body
		if userID == "" {
			continue
		}

		subjects, err := repo.ListSubjects(ctx, userID)
		if err != nil {
			log.Warnw("load subjects failed", "user", userID, "err", err)
			continue
		}
		records, err := repo.ListRecords(ctx, userID)
		if err != nil {
			log.Warnw("load attendance failed", "user", userID, "err", err)
			continue
		}

		stats := attendance.ComputeStats(records, subjects)
		payload, err := json.Marshal(stats)
		if err != nil {
			log.Warnw("marshal stats failed", "user", userID, "err", err)
			continue
		}
		if err := redisClient.CacheStats(ctx, userID, payload, cfg.StatsCacheTTL); err != nil {
			log.Warnw("cache stats failed", "user", userID, "err", err)
			continue
		}
		log.Debugw("stats snapshot refreshed", "user", userID)
	}

	log.Info("worker stopped")
}

package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/feed-engine/internal/config"
	"github.com/jwebster45206/feed-engine/internal/logger"
	"github.com/jwebster45206/feed-engine/internal/services/queue"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	if cfg.SessionID == uuid.Nil {
		log.Error("SESSION_ID is required")
		os.Exit(1)
	}

	log.Info("Starting Feed Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"session_id", cfg.SessionID.String(),
		"layout_file", cfg.LayoutFile)

	defs, err := config.LoadLayout(cfg.LayoutFile)
	if err != nil {
		log.Error("Failed to load layout", "error", err)
		os.Exit(1)
	}
	config.CapLines(defs, cfg.MaxLines)
	log.Info("Layout loaded", "widgets", len(defs))

	// Initialize queue service
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	queueClient, err := queue.NewClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create queue client", "error", err)
		os.Exit(1)
	}
	defer func() {
		err = queueClient.Close()
		if err != nil {
			log.Error("Error closing queue client", "error", err)
		}
	}()

	feedQueue := queue.NewFeedQueue(queueClient)
	log.Info("Queue service initialized successfully")

	sess := session.New(defs, nil, log)
	sess.SetID(cfg.SessionID)

	w := worker.New(feedQueue, sess, queueClient.GetRedisClient(), log, os.Getenv("WORKER_ID"))

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		done <- w.Start()
	}()

	log.Info("Worker started, waiting for feed lines...", "worker_id", w.ID())

	select {
	case <-quit:
		log.Info("Worker shutdown signal received")
		w.Stop()
		// Give the worker time to finish its current poll
		select {
		case err = <-done:
		case <-time.After(10 * time.Second):
			log.Warn("Worker did not stop in time")
		}
	case err = <-done:
	}

	if err != nil {
		if errors.Is(err, worker.ErrSessionLocked) {
			log.Error("Another worker owns this session", "error", err)
		} else {
			log.Error("Worker error", "error", err)
		}
		_ = queueClient.Close()
		os.Exit(1)
	}

	log.Info("Worker exited",
		"lines", sess.Lines())
}

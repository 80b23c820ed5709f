package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/feed-engine/internal/feed"
	"github.com/jwebster45206/feed-engine/internal/logger"
	"github.com/jwebster45206/feed-engine/internal/services/events"
	"github.com/jwebster45206/feed-engine/internal/services/queue"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/internal/storage"
)

const (
	lockTTL        = 30 * time.Second
	lockRefresh    = 10 * time.Second
	progressEvery  = 100
	publishTimeout = 2 * time.Second
)

// ErrSessionLocked is returned by Start when another worker owns the session
var ErrSessionLocked = errors.New("session is locked by another worker")

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

var refreshScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// Worker drains one session's feed queue into a session and announces room changes
type Worker struct {
	id          string
	queue       *queue.FeedQueue
	session     *session.Session
	broadcaster *events.Broadcaster
	store       storage.Store
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a new worker instance
func New(feedQueue *queue.FeedQueue, sess *session.Session, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}

	return &Worker{
		id:          workerID,
		queue:       feedQueue,
		session:     sess,
		broadcaster: events.NewBroadcaster(redisClient, log),
		store:       storage.NewRedisStorage(redisClient, 0, log),
		redisClient: redisClient,
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// ID returns the worker id
func (w *Worker) ID() string {
	return w.id
}

// Start consumes the session queue until Stop is called. Only one worker may
// consume a session at a time.
func (w *Worker) Start() error {
	sessionID := w.session.ID()
	w.log.Info("Worker starting", "worker_id", w.id, "session_id", sessionID.String())

	locked, err := w.acquireSessionLock(sessionID)
	if err != nil {
		return fmt.Errorf("failed to acquire session lock: %w", err)
	}
	if !locked {
		return ErrSessionLocked
	}
	defer w.releaseSessionLock(sessionID)
	// Stops keepLock however the pump ends
	defer w.cancel()

	go w.keepLock(sessionID)

	w.restore(sessionID)

	pump := feed.NewPump(w.session, w.log, feed.Options{OnApplied: w.afterLine})
	source := queue.NewFeedSourceAdapter(w.queue, sessionID, w.log)

	stats, err := pump.Run(w.ctx, source)
	w.saveSnapshot(sessionID)
	w.publishStopped(sessionID, err)

	w.log.Info("Worker shutting down",
		"worker_id", w.id,
		"session_id", sessionID.String(),
		"lines", stats.Lines,
		"events", stats.Events,
	)

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("feed pump stopped: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested", "worker_id", w.id)
	w.cancel()
}

// afterLine runs on the pump's consumer goroutine after each applied line
func (w *Worker) afterLine(stats feed.Stats) {
	sessionID := w.session.ID()

	room, roomChanged := w.session.TakeRoomUpdate()
	if roomChanged {
		ctx, cancel := context.WithTimeout(w.ctx, publishTimeout)
		if err := w.broadcaster.PublishRoomUpdated(ctx, sessionID, room); err != nil {
			logger.WithError(w.log, err).Error("Failed to publish room update", "session_id", sessionID.String())
			// Don't stop consuming just because publishing failed
		}
		cancel()
	}

	if roomChanged || stats.Lines%progressEvery == 0 {
		w.saveSnapshot(sessionID)
	}

	if stats.Lines%progressEvery == 0 {
		ctx, cancel := context.WithTimeout(w.ctx, publishTimeout)
		if err := w.broadcaster.PublishLinesApplied(ctx, sessionID, stats.Lines, stats.Events); err != nil {
			logger.WithError(w.log, err).Error("Failed to publish progress", "session_id", sessionID.String())
		}
		cancel()
	}
}

// restore loads the last snapshot so a restarted worker keeps the room and rosters
func (w *Worker) restore(sessionID uuid.UUID) {
	ctx, cancel := context.WithTimeout(w.ctx, publishTimeout)
	defer cancel()
	snap, err := w.store.LoadSnapshot(ctx, sessionID)
	if err != nil {
		logger.WithError(w.log, err).Error("Failed to load snapshot, starting fresh", "session_id", sessionID.String())
		return
	}
	if snap == nil {
		return
	}
	w.session.Restore(snap.Game, snap.Lines)
}

func (w *Worker) saveSnapshot(sessionID uuid.UUID) {
	gs, lines := w.session.Snapshot()
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.store.SaveSnapshot(ctx, &storage.Snapshot{SessionID: sessionID, Lines: lines, Game: gs}); err != nil {
		logger.WithError(w.log, err).Error("Failed to save snapshot", "session_id", sessionID.String())
	}
}

func (w *Worker) publishStopped(sessionID uuid.UUID, runErr error) {
	reason := "stopped"
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		reason = runErr.Error()
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.broadcaster.PublishSessionStopped(ctx, sessionID, reason); err != nil {
		logger.WithError(w.log, err).Error("Failed to publish stop event", "session_id", sessionID.String())
	}
}

func lockKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("feed-lock:%s", sessionID.String())
}

// acquireSessionLock attempts to acquire the consumer lock for a session
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireSessionLock(sessionID uuid.UUID) (bool, error) {
	result, err := w.redisClient.SetNX(w.ctx, lockKey(sessionID), w.id, lockTTL).Result()
	if err != nil {
		return false, err
	}
	return result, nil
}

// keepLock extends the lock while the worker runs
func (w *Worker) keepLock(sessionID uuid.UUID) {
	ticker := time.NewTicker(lockRefresh)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			err := refreshScript.Run(w.ctx, w.redisClient, []string{lockKey(sessionID)}, w.id, lockTTL.Milliseconds()).Err()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.WithError(w.log, err).Error("Failed to refresh session lock", "session_id", sessionID.String())
			}
		}
	}
}

// releaseSessionLock releases the lock for a session
func (w *Worker) releaseSessionLock(sessionID uuid.UUID) {
	// The worker context is usually cancelled by now
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	// Only delete if we own the lock
	if err := releaseScript.Run(ctx, w.redisClient, []string{lockKey(sessionID)}, w.id).Err(); err != nil && !errors.Is(err, redis.Nil) {
		logger.WithError(w.log, err).Error("Failed to release session lock", "session_id", sessionID.String())
	}
}

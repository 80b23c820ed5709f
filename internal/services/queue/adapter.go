package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/queue"
)

const pollTimeout = 5 * time.Second

// FeedSourceAdapter reads one session's queue as a line source for feed.Pump.
// Plain text lines are wrapped as recorded text events so the session parser
// sees a single format.
type FeedSourceAdapter struct {
	queue     *FeedQueue
	sessionID uuid.UUID
	timeout   time.Duration
	lastSeq   int64
	logger    *slog.Logger
}

// NewFeedSourceAdapter creates a source that blocks on the session's queue
func NewFeedSourceAdapter(fq *FeedQueue, sessionID uuid.UUID, logger *slog.Logger) *FeedSourceAdapter {
	return &FeedSourceAdapter{
		queue:     fq,
		sessionID: sessionID,
		timeout:   pollTimeout,
		logger:    logger,
	}
}

// Next blocks until a line is queued or ctx is done. Malformed entries are
// logged and skipped; only Redis failures are returned.
func (a *FeedSourceAdapter) Next(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line, err := a.queue.BlockingDequeue(ctx, a.sessionID, a.timeout)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if errors.Is(err, ErrMalformedLine) {
				a.logger.Warn("Skipping malformed feed line", "session_id", a.sessionID.String(), "error", err)
				continue
			}
			return "", err
		}
		if line == nil {
			continue
		}
		if a.lastSeq != 0 && line.Seq != 0 && line.Seq != a.lastSeq+1 {
			a.logger.Warn("Feed sequence gap", "session_id", a.sessionID.String(), "expected", a.lastSeq+1, "got", line.Seq)
		}
		if line.Seq != 0 {
			a.lastSeq = line.Seq
		}
		return payload(line)
	}
}

func payload(line *queue.FeedLine) (string, error) {
	switch line.Format {
	case queue.LineFormatText:
		data, err := protocol.EncodeLine([]protocol.Event{protocol.Text{Content: line.Line}})
		if err != nil {
			return "", fmt.Errorf("failed to wrap text line: %w", err)
		}
		return string(data), nil
	default:
		return line.Line, nil
	}
}

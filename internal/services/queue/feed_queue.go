package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/feed-engine/pkg/queue"
)

// ErrMalformedLine marks a queued entry that is not a valid FeedLine. The entry
// has already been removed from the queue when this is returned.
var ErrMalformedLine = errors.New("malformed feed line")

// FeedQueue is a FIFO of feed lines per session, stored as a Redis list
type FeedQueue struct {
	client *Client
}

func NewFeedQueue(client *Client) *FeedQueue {
	return &FeedQueue{
		client: client,
	}
}

func queueKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("feed:%s", sessionID.String())
}

func seqKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("feed-seq:%s", sessionID.String())
}

// Enqueue appends one line to the end of a session's queue
func (fq *FeedQueue) Enqueue(ctx context.Context, line *queue.FeedLine) error {
	data, err := line.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize feed line: %w", err)
	}
	if err := fq.client.rdb.RPush(ctx, queueKey(line.SessionID), data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue feed line: %w", err)
	}
	return nil
}

// EnqueueLines numbers raw lines and appends them in order. Returns the
// sequence number of the last line.
func (fq *FeedQueue) EnqueueLines(ctx context.Context, sessionID uuid.UUID, format queue.LineFormat, lines []string) (int64, error) {
	if len(lines) == 0 {
		return 0, nil
	}

	last, err := fq.client.rdb.IncrBy(ctx, seqKey(sessionID), int64(len(lines))).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to reserve sequence numbers: %w", err)
	}
	first := last - int64(len(lines)) + 1

	now := time.Now().UTC()
	values := make([]interface{}, 0, len(lines))
	for i, text := range lines {
		line := &queue.FeedLine{
			SessionID:  sessionID,
			Seq:        first + int64(i),
			Format:     format,
			Line:       text,
			ReceivedAt: now,
		}
		data, err := line.ToJSON()
		if err != nil {
			return 0, fmt.Errorf("failed to serialize feed line: %w", err)
		}
		values = append(values, data)
	}

	if err := fq.client.rdb.RPush(ctx, queueKey(sessionID), values...).Err(); err != nil {
		return 0, fmt.Errorf("failed to enqueue feed lines: %w", err)
	}
	return last, nil
}

// BlockingDequeue waits up to timeout for the next line of a session.
// Returns nil, nil when the timeout elapses with nothing queued.
func (fq *FeedQueue) BlockingDequeue(ctx context.Context, sessionID uuid.UUID, timeout time.Duration) (*queue.FeedLine, error) {
	result, err := fq.client.rdb.BLPop(ctx, timeout, queueKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue feed line: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	line, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedLine, err)
	}
	return line, nil
}

// Dequeue removes and returns every queued line of a session
func (fq *FeedQueue) Dequeue(ctx context.Context, sessionID uuid.UUID) ([]*queue.FeedLine, error) {
	key := queueKey(sessionID)

	var lrange *redis.StringSliceCmd
	_, err := fq.client.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to dequeue feed lines: %w", err)
	}
	return decodeLines(lrange.Val())
}

// Peek returns up to limit queued lines without removing them; limit <= 0 returns all
func (fq *FeedQueue) Peek(ctx context.Context, sessionID uuid.UUID, limit int) ([]*queue.FeedLine, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1
	}
	raw, err := fq.client.rdb.LRange(ctx, queueKey(sessionID), 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek feed lines: %w", err)
	}
	return decodeLines(raw)
}

// Trim drops the oldest lines so at most keep remain queued
func (fq *FeedQueue) Trim(ctx context.Context, sessionID uuid.UUID, keep int) error {
	if keep <= 0 {
		return fq.Clear(ctx, sessionID)
	}
	if err := fq.client.rdb.LTrim(ctx, queueKey(sessionID), int64(-keep), -1).Err(); err != nil {
		return fmt.Errorf("failed to trim feed queue: %w", err)
	}
	return nil
}

// Clear removes every queued line and the sequence counter of a session
func (fq *FeedQueue) Clear(ctx context.Context, sessionID uuid.UUID) error {
	if err := fq.client.rdb.Del(ctx, queueKey(sessionID), seqKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear feed queue: %w", err)
	}
	return nil
}

// Depth returns the number of lines queued for a session
func (fq *FeedQueue) Depth(ctx context.Context, sessionID uuid.UUID) (int, error) {
	count, err := fq.client.rdb.LLen(ctx, queueKey(sessionID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue depth: %w", err)
	}
	return int(count), nil
}

func decodeLines(raw []string) ([]*queue.FeedLine, error) {
	lines := make([]*queue.FeedLine, 0, len(raw))
	for _, r := range raw {
		line, err := queue.FromJSON([]byte(r))
		if err != nil {
			return nil, fmt.Errorf("failed to parse feed line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

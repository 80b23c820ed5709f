package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/feed-engine/pkg/state"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRoomUpdated    EventType = "room.updated"
	EventTypeLinesApplied   EventType = "session.lines_applied"
	EventTypeSessionStopped EventType = "session.stopped"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes session events to Redis Pub/Sub
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Channel returns the pub/sub channel for a session
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("feed-events:%s", sessionID.String())
}

// PublishRoomUpdated publishes a room.updated event carrying the room snapshot
func (b *Broadcaster) PublishRoomUpdated(ctx context.Context, sessionID uuid.UUID, room state.Room) error {
	event := Event{
		Type:      EventTypeRoomUpdated,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"title":      room.Title,
			"room_id":    room.RoomID,
			"components": room.Components,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishLinesApplied publishes progress after a batch of lines was applied
func (b *Broadcaster) PublishLinesApplied(ctx context.Context, sessionID uuid.UUID, lines, events int64) error {
	event := Event{
		Type:      EventTypeLinesApplied,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"lines":  lines,
			"events": events,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// PublishSessionStopped publishes a session.stopped event
func (b *Broadcaster) PublishSessionStopped(ctx context.Context, sessionID uuid.UUID, reason string) error {
	event := Event{
		Type:      EventTypeSessionStopped,
		SessionID: sessionID.String(),
		Data: map[string]interface{}{
			"reason": reason,
		},
	}
	return b.publishToSession(ctx, sessionID, event)
}

// publishToSession publishes an event to the session-specific channel
func (b *Broadcaster) publishToSession(ctx context.Context, sessionID uuid.UUID, event Event) error {
	channel := Channel(sessionID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
	)

	return nil
}

package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/feed-engine/internal/services/events"
	"github.com/jwebster45206/feed-engine/internal/services/queue"
	"github.com/jwebster45206/feed-engine/internal/session"
	"github.com/jwebster45206/feed-engine/internal/storage"
	"github.com/jwebster45206/feed-engine/pkg/protocol"
	queuePkg "github.com/jwebster45206/feed-engine/pkg/queue"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

type harness struct {
	mr      *miniredis.Miniredis
	rdb     *redis.Client
	queue   *queue.FeedQueue
	session *session.Session
	log     *slog.Logger
}

func setup(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	client, err := queue.NewClient(context.Background(), "redis://"+mr.Addr(), log)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	defs := []widget.Definition{
		{Name: "main", Kind: widget.KindText, Streams: []string{"main"}},
		{Name: "room", Kind: widget.KindRoom},
	}
	return &harness{
		mr:      mr,
		rdb:     client.GetRedisClient(),
		queue:   queue.NewFeedQueue(client),
		session: session.New(defs, nil, log),
		log:     log,
	}
}

func encode(t *testing.T, events ...protocol.Event) string {
	t.Helper()
	b, err := protocol.EncodeLine(events)
	require.NoError(t, err)
	return string(b)
}

func TestWorker_AppliesQueueAndPublishesRoomUpdates(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	sessionID := h.session.ID()

	sub := h.rdb.Subscribe(ctx, events.Channel(sessionID))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	_, err = h.queue.EnqueueLines(ctx, sessionID, queuePkg.LineFormatRecorded, []string{
		encode(t, protocol.RoomIdentity{Subtitle: "[Town Square]", RoomID: "228"}),
		encode(t, protocol.RoomComponent{Name: "room exits", Value: "Obvious paths: north"}),
	})
	require.NoError(t, err)
	_, err = h.queue.EnqueueLines(ctx, sessionID, queuePkg.LineFormatText, []string{"A breeze blows."})
	require.NoError(t, err)

	w := New(h.queue, h.session, h.rdb, h.log, "worker-test")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	var titles []string
	deadline := time.After(5 * time.Second)
	for len(titles) < 2 {
		select {
		case msg := <-sub.Channel():
			var ev events.Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			if ev.Type == events.EventTypeRoomUpdated {
				titles = append(titles, ev.Data["title"].(string))
			}
		case <-deadline:
			t.Fatalf("timed out waiting for room updates, got %v", titles)
		}
	}
	assert.Equal(t, []string{"[Town Square - 228]", "[Town Square - 228]"}, titles)

	assert.Eventually(t, func() bool { return h.session.Lines() == 3 }, 5*time.Second, 10*time.Millisecond)
	h.session.View(func(reg *widget.Registry, gs *state.GameState) {
		w, _ := reg.Get("main")
		assert.Equal(t, []string{"A breeze blows."}, w.Content.(*widget.TextContent).Buffer.Strings())
		assert.Equal(t, "Obvious paths: north", gs.RoomComponent(state.ComponentExits))
	})

	assert.True(t, h.mr.Exists(lockKey(sessionID)))
	assert.True(t, h.mr.Exists("feed-state:"+sessionID.String()))

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, h.mr.Exists(lockKey(sessionID)))
}

func TestWorker_SessionLocked(t *testing.T) {
	h := setup(t)
	require.NoError(t, h.mr.Set(lockKey(h.session.ID()), "someone-else"))

	w := New(h.queue, h.session, h.rdb, h.log, "")
	assert.Contains(t, w.ID(), "worker-")
	assert.ErrorIs(t, w.Start(), ErrSessionLocked)

	got, err := h.mr.Get(lockKey(h.session.ID()))
	require.NoError(t, err)
	assert.Equal(t, "someone-else", got)
}

func TestWorker_RestoresSnapshot(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	sessionID := h.session.ID()

	saved := state.NewGameState()
	saved.ID = sessionID
	saved.SetRoomIdentity("[Town Square]", "228", "")
	saved.SetRoomComponent(state.ComponentExits, "Obvious paths: north")
	store := storage.NewRedisStorage(h.rdb, 0, h.log)
	require.NoError(t, store.SaveSnapshot(ctx, &storage.Snapshot{SessionID: sessionID, Lines: 10, Game: saved}))

	w := New(h.queue, h.session, h.rdb, h.log, "worker-restore")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	assert.Eventually(t, func() bool { return h.session.Lines() == 10 }, 5*time.Second, 10*time.Millisecond)
	h.session.View(func(reg *widget.Registry, gs *state.GameState) {
		assert.Equal(t, "[Town Square - 228]", gs.Room.Title)
		w, _ := reg.Get("room")
		assert.Equal(t, "Obvious paths: north", w.Content.(*widget.RoomContent).Exits)
	})

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}

	snap, err := store.LoadSnapshot(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, int64(10), snap.Lines)
}

func TestWorker_SkipsMalformedQueueEntries(t *testing.T) {
	h := setup(t)
	ctx := context.Background()
	sessionID := h.session.ID()

	_, err := h.mr.Push("feed:"+sessionID.String(), "{garbage")
	require.NoError(t, err)
	_, err = h.queue.EnqueueLines(ctx, sessionID, queuePkg.LineFormatText, []string{"Still here."})
	require.NoError(t, err)

	w := New(h.queue, h.session, h.rdb, h.log, "worker-malformed")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	assert.Eventually(t, func() bool { return h.session.Lines() == 1 }, 5*time.Second, 10*time.Millisecond)
	h.session.View(func(reg *widget.Registry, gs *state.GameState) {
		w, _ := reg.Get("main")
		assert.Equal(t, []string{"Still here."}, w.Content.(*widget.TextContent).Buffer.Strings())
	})
	assert.True(t, h.mr.Exists(lockKey(sessionID)))

	w.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWorker_FailedPumpStopsLockRefresh(t *testing.T) {
	h := setup(t)

	w := New(h.queue, h.session, h.rdb, h.log, "worker-fail")
	done := make(chan error, 1)
	go func() { done <- w.Start() }()

	require.Eventually(t, func() bool { return h.mr.Exists(lockKey(h.session.ID())) }, 5*time.Second, 10*time.Millisecond)
	h.mr.Close()

	select {
	case <-done:
	case <-time.After(20 * time.Second):
		t.Fatal("worker did not stop after redis went away")
	}
	assert.ErrorIs(t, w.ctx.Err(), context.Canceled)
}

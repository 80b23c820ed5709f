// Package session ties a widget registry, game state and reducer together
// behind one lock so feed consumers and renderers can share them.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/reducer"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// Session is one live feed and everything derived from it
type Session struct {
	mu       sync.Mutex
	registry *widget.Registry
	game     *state.GameState
	reducer  *reducer.Reducer
	parser   protocol.Parser
	lines    int64
	log      *slog.Logger
}

// New creates a session for a layout. A nil parser defaults to protocol.JSONParser.
func New(defs []widget.Definition, parser protocol.Parser, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if parser == nil {
		parser = protocol.JSONParser{}
	}
	gs := state.NewGameState()
	return &Session{
		registry: widget.NewRegistry(defs),
		game:     gs,
		reducer:  reducer.New(defs, logger),
		parser:   parser,
		log:      logger.With("session_id", gs.ID.String()),
	}
}

// ID returns the session id
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ID
}

// SetID replaces the session id, used when a session is attached to a
// queue whose id was chosen elsewhere
func (s *Session) SetID(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game.ID = id
	s.log = s.log.With("session_id", id.String())
}

// ApplyLine tokenizes one raw feed line and applies it. Returns the number of events.
func (s *Session) ApplyLine(line string) int {
	events := s.parser.ParseLine(line)
	s.ApplyEvents(events)
	return len(events)
}

// ApplyEvents applies one line's worth of events atomically
func (s *Session) ApplyEvents(events []protocol.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reducer.ApplyLine(s.game, s.registry, events)
	s.lines++
}

// Lines returns how many feed lines have been applied
func (s *Session) Lines() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

// View runs fn with the registry and game state under the session lock.
// fn must not retain either value.
func (s *Session) View(fn func(reg *widget.Registry, gs *state.GameState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.registry, s.game)
}

// SelectTab activates a tab of a tabbed widget and clears its unread mark
func (s *Session) SelectTab(name string, index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.registry.Get(name)
	if !ok {
		return false
	}
	c, ok := w.Content.(*widget.TabbedContent)
	if !ok || index < 0 || index >= len(c.Tabs) {
		return false
	}
	c.Select(index)
	return true
}

// Reload swaps in new widget definitions. Widgets that keep their name and
// shape keep their content.
func (s *Session) Reload(defs []widget.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry.Reload(defs)
	s.reducer.Reload(defs)
	s.log.Info("Layout reloaded", "widgets", s.registry.Len())
}

// TakeRoomUpdate returns a copy of the room and clears its dirty flag when
// the room changed since the last call
func (s *Session) TakeRoomUpdate() (state.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.game.TakeRoomDirty() {
		return state.Room{}, false
	}
	room := s.game.Room
	room.Components = make(map[string]string, len(s.game.Room.Components))
	for k, v := range s.game.Room.Components {
		room.Components[k] = v
	}
	return room, true
}

// Snapshot returns a copy of the game state and the applied line count
func (s *Session) Snapshot() (*state.GameState, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone(), s.lines
}

// Restore replaces the game state with a saved one, keeping the session id,
// and refreshes room widgets from it. Widget buffers are not part of a
// snapshot and are left alone.
func (s *Session) Restore(gs *state.GameState, lines int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.game.ID
	s.game = gs.Clone()
	s.game.ID = id
	s.game.Room.Dirty = false
	s.lines = lines

	room := s.game.Room
	s.registry.Each(widget.OfKind(widget.KindRoom), func(w *widget.Widget) {
		c := w.Content.(*widget.RoomContent)
		c.Name = room.Title
		c.Description = room.Components[state.ComponentDescription]
		c.Objects = room.Components[state.ComponentObjects]
		c.Players = room.Components[state.ComponentPlayers]
		c.Exits = room.Components[state.ComponentExits]
	})
	s.log.Info("Session restored from snapshot", "lines", lines, "room", room.Title)
}

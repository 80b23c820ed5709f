// Package reducer applies protocol events to the widget registry and game
// state. Every handler is total: a missing widget or a malformed value leaves
// the display stale instead of failing.
package reducer

import (
	"log/slog"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/stream"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// Reducer owns the stream router and dispatches events to handlers
type Reducer struct {
	router *stream.Router
	logger *slog.Logger
}

// New creates a reducer for the given widget definitions
func New(defs []widget.Definition, logger *slog.Logger) *Reducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reducer{
		router: stream.NewRouter(defs, logger),
		logger: logger,
	}
}

// Reload rebuilds the stream map after definitions change
func (r *Reducer) Reload(defs []widget.Definition) {
	r.router.Rebuild(defs)
}

// ApplyLine applies every event of one feed line, then closes the line
func (r *Reducer) ApplyLine(gs *state.GameState, reg *widget.Registry, events []protocol.Event) {
	for _, ev := range events {
		r.Apply(gs, reg, ev)
	}
	r.router.FinishLine(reg)
}

// FinishLine closes any line left open by text events
func (r *Reducer) FinishLine(reg *widget.Registry) {
	r.router.FinishLine(reg)
}

// Apply applies a single event
func (r *Reducer) Apply(gs *state.GameState, reg *widget.Registry, ev protocol.Event) {
	switch ev := ev.(type) {
	case protocol.Text:
		r.router.RouteText(reg, widget.Segment{
			Text:       ev.Content,
			Foreground: ev.Foreground,
			Background: ev.Background,
			Bold:       ev.Bold,
		})
	case protocol.Prompt:
		gs.Prompt = ev.Text
		gs.PromptTime = ev.Time
		r.router.Prompt(reg, ev.Text)
	case protocol.PushStream:
		r.router.Push(ev.StreamID)
	case protocol.PopStream:
		r.router.Pop()
	case protocol.ClearStream:
		r.router.Clear(reg, ev.StreamID)
	case protocol.Progress:
		r.applyProgress(reg, ev)
	case protocol.Label:
		r.applyLabel(reg, ev)
	case protocol.Roundtime:
		r.applyCountdown(reg, ev.Kind(), countdownRoundtime, ev.EndTime)
	case protocol.CastTime:
		r.applyCountdown(reg, ev.Kind(), countdownCastTime, ev.EndTime)
	case protocol.Compass:
		r.applyCompass(reg, ev)
	case protocol.Injury:
		r.applyInjury(reg, ev)
	case protocol.LeftHand:
		r.applyHand(reg, ev.Kind(), widget.SlotLeft, ev.Item, ev.Link)
	case protocol.RightHand:
		r.applyHand(reg, ev.Kind(), widget.SlotRight, ev.Item, ev.Link)
	case protocol.SpellHand:
		r.applyHand(reg, ev.Kind(), widget.SlotSpell, ev.Item, ev.Link)
	case protocol.Indicator:
		r.applyIndicator(reg, ev)
	case protocol.EffectUpsert:
		r.applyEffectUpsert(reg, ev)
	case protocol.EffectClear:
		r.applyEffectClear(reg, ev)
	case protocol.RoomComponent:
		r.applyRoomComponent(gs, reg, ev)
	case protocol.RoomIdentity:
		r.applyRoomIdentity(gs, reg, ev)
	case protocol.Roster:
		gs.SetRoster(ev.Name, ev.Entries)
	case protocol.Noop:
	default:
		r.logger.Debug("Ignoring unhandled event", "kind", ev.Kind())
	}
}

// missing logs a lookup miss. Misses are expected: layouts are user-edited.
func (r *Reducer) missing(kind protocol.Kind, id string) {
	r.logger.Debug("No widget for event", "kind", kind, "id", id)
}

// Package stream routes text from the feed's named streams to the widgets
// configured to display them, and decides which prompts are shown.
package stream

import (
	"log/slog"
	"strings"

	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// Main is the default stream
const Main = "main"

// unsupportedStreams have dedicated windows in the game client. Without a
// widget configured for them their text is dropped, not shown in main.
var unsupportedStreams = map[string]bool{
	"speech":       true,
	"whispers":     true,
	"talk":         true,
	"inv":          true,
	"ppl":          true,
	"group":        true,
	"familiar":     true,
	"death":        true,
	"logons":       true,
	"atmospherics": true,
	"experience":   true,
	"percWindow":   true,
	"combat":       true,
	"assess":       true,
	"bounty":       true,
	"spells":       true,
}

// Unsupported reports whether a stream is dropped when no widget subscribes to it
func Unsupported(streamID string) bool {
	return unsupportedStreams[streamID]
}

// Destination is where a stream's text is written. Tab is empty for plain text widgets.
type Destination struct {
	Widget string
	Tab    string
}

// State is the router's per-session state
type State struct {
	Current        string
	PromptShown    bool
	SkipNextPrompt bool
}

// Router maps streams to widgets and tracks the current stream
type Router struct {
	state  State
	routes map[string]Destination
	open   []Destination
	logger *slog.Logger
}

// NewRouter builds a router for the given widget definitions
func NewRouter(defs []widget.Definition, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		state:  State{Current: Main},
		logger: logger,
	}
	r.Rebuild(defs)
	return r
}

// Rebuild recomputes the stream map. The first definition subscribing to a
// stream wins.
func (r *Router) Rebuild(defs []widget.Definition) {
	routes := make(map[string]Destination)
	bind := func(streamID string, dest Destination) {
		if streamID == "" {
			return
		}
		if _, taken := routes[streamID]; taken {
			return
		}
		routes[streamID] = dest
	}
	for _, def := range defs {
		switch def.Kind {
		case widget.KindText:
			for _, s := range def.Streams {
				bind(s, Destination{Widget: def.Name})
			}
		case widget.KindTabbed:
			for _, tab := range def.Tabs {
				for _, s := range tab.Streams {
					bind(s, Destination{Widget: def.Name, Tab: tab.Name})
				}
			}
		}
	}
	r.routes = routes
	r.open = nil
}

// State returns a copy of the router state
func (r *Router) State() State {
	return r.state
}

// Lookup returns the explicitly configured destination of a stream
func (r *Router) Lookup(streamID string) (Destination, bool) {
	dest, ok := r.routes[streamID]
	return dest, ok
}

// Push makes streamID the current stream. There is no stack; the last push wins.
func (r *Router) Push(streamID string) {
	r.state.Current = streamID
}

// Pop returns to the main stream. Leaving a stream that feeds a widget other
// than main suppresses the next prompt.
func (r *Router) Pop() {
	if dest, ok := r.routes[r.state.Current]; ok && dest.Widget != widget.MainWidget {
		r.state.SkipNextPrompt = true
	}
	r.state.Current = Main
}

// Resolve decides where text on a stream goes: its configured destination,
// nowhere for unsupported streams without one, or main.
func (r *Router) Resolve(streamID string) (Destination, bool) {
	if dest, ok := r.routes[streamID]; ok {
		return dest, true
	}
	if Unsupported(streamID) {
		return Destination{}, false
	}
	return Destination{Widget: widget.MainWidget}, true
}

// RouteText writes a segment to the current stream's destination. Returns
// false when the text was dropped.
func (r *Router) RouteText(reg *widget.Registry, seg widget.Segment) bool {
	if strings.TrimSpace(seg.Text) != "" {
		r.state.PromptShown = false
	}

	dest, ok := r.Resolve(r.state.Current)
	if !ok {
		r.logger.Debug("Dropping text for unsupported stream", "stream", r.state.Current)
		return false
	}
	return r.write(reg, dest, seg)
}

// Prompt applies the prompt policy and writes the prompt to main if it is shown
func (r *Router) Prompt(reg *widget.Registry, text string) bool {
	if r.state.SkipNextPrompt {
		r.state.SkipNextPrompt = false
		return false
	}
	if r.state.PromptShown {
		return false
	}
	r.state.PromptShown = true
	r.write(reg, Destination{Widget: widget.MainWidget}, widget.Segment{Text: text})
	return true
}

// FinishLine closes the open line on every destination written since the
// last call, so each feed line becomes one display line.
func (r *Router) FinishLine(reg *widget.Registry) {
	for _, dest := range r.open {
		if buf, _ := r.buffer(reg, dest); buf != nil {
			buf.FinishLine()
		}
	}
	r.open = r.open[:0]
}

// Clear empties the buffer a stream is routed to
func (r *Router) Clear(reg *widget.Registry, streamID string) {
	dest, ok := r.Resolve(streamID)
	if !ok {
		return
	}
	if buf, _ := r.buffer(reg, dest); buf != nil {
		buf.Clear()
	}
}

func (r *Router) write(reg *widget.Registry, dest Destination, seg widget.Segment) bool {
	buf, tab := r.buffer(reg, dest)
	if buf == nil {
		r.logger.Debug("No widget for stream destination",
			"stream", r.state.Current,
			"widget", dest.Widget,
			"tab", dest.Tab)
		return false
	}
	buf.Append(seg)
	if tab != nil {
		tab.markActivity()
	}
	r.markOpen(dest)
	return true
}

func (r *Router) markOpen(dest Destination) {
	for _, d := range r.open {
		if d == dest {
			return
		}
	}
	r.open = append(r.open, dest)
}

// buffer finds the text buffer behind a destination. The tab is returned for
// tabbed widgets so activity can be flagged.
func (r *Router) buffer(reg *widget.Registry, dest Destination) (*widget.TextBuffer, *tabRef) {
	w, ok := reg.Get(dest.Widget)
	if !ok {
		return nil, nil
	}
	switch c := w.Content.(type) {
	case *widget.TextContent:
		return c.Buffer, nil
	case *widget.TabbedContent:
		for i, t := range c.Tabs {
			if t.Name == dest.Tab {
				return t.Buffer, &tabRef{content: c, index: i}
			}
		}
	}
	return nil, nil
}

type tabRef struct {
	content *widget.TabbedContent
	index   int
}

// markActivity flags a background tab as unread
func (t *tabRef) markActivity() {
	tab := t.content.Tabs[t.index]
	if t.index != t.content.Active && !tab.IgnoreActivity {
		tab.Unread = true
	}
}

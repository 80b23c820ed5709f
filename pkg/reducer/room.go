package reducer

import (
	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// applyRoomComponent stores a room component. Components are only kept while
// a room widget exists; otherwise game state is left alone.
func (r *Reducer) applyRoomComponent(gs *state.GameState, reg *widget.Registry, ev protocol.RoomComponent) {
	if !reg.HasKind(widget.KindRoom) {
		r.missing(ev.Kind(), ev.Name)
		return
	}
	bucket, ok := state.ComponentBucket(ev.Name)
	if !ok {
		r.logger.Debug("Ignoring unknown room component", "component", ev.Name)
		return
	}

	gs.SetRoomComponent(bucket, ev.Value)
	reg.Each(widget.OfKind(widget.KindRoom), func(w *widget.Widget) {
		c := w.Content.(*widget.RoomContent)
		switch bucket {
		case state.ComponentDescription:
			c.Description = ev.Value
		case state.ComponentObjects:
			c.Objects = ev.Value
		case state.ComponentPlayers:
			c.Players = ev.Value
		case state.ComponentExits:
			c.Exits = ev.Value
		}
	})
}

func (r *Reducer) applyRoomIdentity(gs *state.GameState, reg *widget.Registry, ev protocol.RoomIdentity) {
	gs.SetRoomIdentity(ev.Subtitle, ev.RoomID, ev.UID)
	reg.Each(widget.OfKind(widget.KindRoom), func(w *widget.Widget) {
		w.Content.(*widget.RoomContent).Name = gs.Room.Title
	})
}

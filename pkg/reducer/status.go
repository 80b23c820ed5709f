package reducer

import (
	"strings"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// Countdown ids sent by the feed
const (
	countdownRoundtime = "roundtime"
	countdownCastTime  = "casttime"
)

// Canonical widget names for single-instance displays
const (
	compassWidget  = "compass"
	injuriesWidget = "injuries"
)

func (r *Reducer) applyCountdown(reg *widget.Registry, kind protocol.Kind, id string, endTime int64) {
	n := reg.Each(func(w *widget.Widget) bool {
		c, ok := w.Content.(*widget.CountdownContent)
		return ok && c.ID == id
	}, func(w *widget.Widget) {
		w.Content.(*widget.CountdownContent).EndTime = endTime
	})
	if n > 0 {
		return
	}

	// Layouts sometimes bind a different id but name the widget after the timer
	if w, ok := reg.Get(id); ok {
		if c, ok := w.Content.(*widget.CountdownContent); ok {
			c.EndTime = endTime
			return
		}
	}
	r.missing(kind, id)
}

func (r *Reducer) applyCompass(reg *widget.Registry, ev protocol.Compass) {
	w, ok := reg.Canonical(compassWidget, widget.KindCompass)
	if !ok {
		r.missing(ev.Kind(), compassWidget)
		return
	}
	w.Content.(*widget.CompassContent).Directions = append([]string(nil), ev.Directions...)
}

// InjuryLevel converts an injury image name to a level: Injury1-3 are wounds
// 1-3, Scar1-3 are 4-6, anything else (including a clear) is 0.
func InjuryLevel(imageName string) int {
	switch imageName {
	case "Injury1":
		return 1
	case "Injury2":
		return 2
	case "Injury3":
		return 3
	case "Scar1":
		return 4
	case "Scar2":
		return 5
	case "Scar3":
		return 6
	default:
		return widget.InjuryNone
	}
}

func (r *Reducer) applyInjury(reg *widget.Registry, ev protocol.Injury) {
	w, ok := reg.Canonical(injuriesWidget, widget.KindInjuries)
	if !ok {
		r.missing(ev.Kind(), ev.BodyPart)
		return
	}
	c := w.Content.(*widget.InjuryContent)
	if c.Levels == nil {
		c.Levels = make(map[string]int)
	}
	c.Levels[ev.BodyPart] = InjuryLevel(ev.ImageName)
}

// applyHand updates the combined hands widgets and the single-slot widgets for a slot
func (r *Reducer) applyHand(reg *widget.Registry, kind protocol.Kind, slot, item string, link *protocol.Link) {
	held := widget.HandSlot{Item: strings.TrimSpace(item)}
	if held.Item != "" && link != nil {
		held.ExistID = link.ExistID
		held.Noun = link.Noun
	}

	n := reg.Each(func(w *widget.Widget) bool {
		switch c := w.Content.(type) {
		case *widget.HandsContent:
			return true
		case *widget.HandContent:
			return c.Slot == slot
		default:
			return false
		}
	}, func(w *widget.Widget) {
		switch c := w.Content.(type) {
		case *widget.HandsContent:
			if s := c.SlotFor(slot); s != nil {
				*s = held
			}
		case *widget.HandContent:
			c.HandSlot = held
		}
	})
	if n == 0 {
		r.missing(kind, slot)
	}
}

// applyIndicator sets matching indicators and mirrors the state onto every dashboard
func (r *Reducer) applyIndicator(reg *widget.Registry, ev protocol.Indicator) {
	n := reg.Each(func(w *widget.Widget) bool {
		c, ok := w.Content.(*widget.IndicatorContent)
		return ok && widget.MatchID(c.ID, ev.ID)
	}, func(w *widget.Widget) {
		w.Content.(*widget.IndicatorContent).Active = ev.Active
	})

	n += reg.Each(widget.OfKind(widget.KindDashboard), func(w *widget.Widget) {
		w.Content.(*widget.DashboardContent).Set(ev.ID, ev.Active)
	})
	if n == 0 {
		r.missing(ev.Kind(), ev.ID)
	}
}

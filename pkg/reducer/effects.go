package reducer

import (
	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// forCategory matches effects widgets showing a category, including the All wildcard
func forCategory(category string) func(*widget.Widget) bool {
	return func(w *widget.Widget) bool {
		c, ok := w.Content.(*widget.EffectsContent)
		return ok && (c.Category == category || c.Category == widget.CategoryAll)
	}
}

func (r *Reducer) applyEffectUpsert(reg *widget.Registry, ev protocol.EffectUpsert) {
	effect := widget.Effect{
		Category: ev.Category,
		ID:       ev.ID,
		Value:    ev.Value,
		Text:     ev.Text,
		Time:     ev.Time,
	}
	n := reg.Each(forCategory(ev.Category), func(w *widget.Widget) {
		w.Content.(*widget.EffectsContent).Upsert(effect)
	})
	if n == 0 {
		r.missing(ev.Kind(), ev.Category)
	}
}

func (r *Reducer) applyEffectClear(reg *widget.Registry, ev protocol.EffectClear) {
	n := reg.Each(forCategory(ev.Category), func(w *widget.Widget) {
		w.Content.(*widget.EffectsContent).ClearCategory(ev.Category)
	})
	if n == 0 {
		r.missing(ev.Kind(), ev.Category)
	}
}

package widget

// Widget is a named widget and its current content
type Widget struct {
	Name    string
	Kind    Kind
	Def     Definition
	Content Content
}

// Registry holds widgets by name, in definition order
type Registry struct {
	order   []string
	widgets map[string]*Widget
}

// NewRegistry builds widgets for every definition. Later definitions with a
// duplicate name and definitions of unknown kind are skipped.
func NewRegistry(defs []Definition) *Registry {
	r := &Registry{widgets: make(map[string]*Widget)}
	for _, def := range defs {
		r.Add(def)
	}
	return r
}

// Add creates a widget from a definition. Returns false if the name is taken
// or the kind is unknown.
func (r *Registry) Add(def Definition) bool {
	if _, exists := r.widgets[def.Name]; exists {
		return false
	}
	content := NewContent(def)
	if content == nil {
		return false
	}
	r.widgets[def.Name] = &Widget{Name: def.Name, Kind: def.Kind, Def: def, Content: content}
	r.order = append(r.order, def.Name)
	return true
}

// Remove deletes a widget by name
func (r *Registry) Remove(name string) {
	if _, exists := r.widgets[name]; !exists {
		return
	}
	delete(r.widgets, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// Reload replaces the definitions. Widgets whose name and kind are unchanged
// keep their content; everything else is rebuilt.
func (r *Registry) Reload(defs []Definition) {
	old := r.widgets
	r.widgets = make(map[string]*Widget)
	r.order = nil
	for _, def := range defs {
		if prev, ok := old[def.Name]; ok && prev.Kind == def.Kind && !structural(prev.Def, def) {
			if _, taken := r.widgets[def.Name]; taken {
				continue
			}
			prev.Def = def
			rebind(prev.Content, def)
			r.widgets[def.Name] = prev
			r.order = append(r.order, def.Name)
			continue
		}
		r.Add(def)
	}
}

// structural reports whether a definition change requires fresh content
func structural(a, b Definition) bool {
	if a.Kind == KindTabbed {
		if len(a.Tabs) != len(b.Tabs) {
			return true
		}
		for i := range a.Tabs {
			if a.Tabs[i].Name != b.Tabs[i].Name {
				return true
			}
		}
	}
	return a.ProgressID != b.ProgressID || a.CountdownID != b.CountdownID ||
		a.IndicatorID != b.IndicatorID || a.Category != b.Category ||
		a.Slot != b.Slot || a.Roster != b.Roster || a.MaxLines != b.MaxLines
}

// Get returns the widget with the given name
func (r *Registry) Get(name string) (*Widget, bool) {
	w, ok := r.widgets[name]
	return w, ok
}

// Len returns the number of widgets
func (r *Registry) Len() int {
	return len(r.order)
}

// Widgets returns every widget in definition order
func (r *Registry) Widgets() []*Widget {
	out := make([]*Widget, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.widgets[name])
	}
	return out
}

// Definitions returns the definitions of every widget in order
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.widgets[name].Def)
	}
	return out
}

// Each calls fn for every widget matching pred, in order, and returns how
// many matched
func (r *Registry) Each(pred func(*Widget) bool, fn func(*Widget)) int {
	n := 0
	for _, name := range r.order {
		w := r.widgets[name]
		if pred(w) {
			fn(w)
			n++
		}
	}
	return n
}

// First returns the first widget matching pred
func (r *Registry) First(pred func(*Widget) bool) (*Widget, bool) {
	for _, name := range r.order {
		if w := r.widgets[name]; pred(w) {
			return w, true
		}
	}
	return nil, false
}

// HasKind reports whether any widget of kind k exists
func (r *Registry) HasKind(k Kind) bool {
	_, ok := r.First(OfKind(k))
	return ok
}

// Canonical returns the widget named name if it has kind k, otherwise the
// first widget of kind k
func (r *Registry) Canonical(name string, k Kind) (*Widget, bool) {
	if w, ok := r.widgets[name]; ok && w.Kind == k {
		return w, true
	}
	return r.First(OfKind(k))
}

// OfKind is a predicate matching widgets of kind k
func OfKind(k Kind) func(*Widget) bool {
	return func(w *Widget) bool { return w.Kind == k }
}

// rebind copies stream bindings from a definition into kept content
func rebind(c Content, def Definition) {
	switch c := c.(type) {
	case *TextContent:
		c.Streams = append([]string(nil), def.Streams...)
	case *TabbedContent:
		for i, t := range c.Tabs {
			t.Streams = append([]string(nil), def.Tabs[i].Streams...)
			t.IgnoreActivity = def.Tabs[i].IgnoreActivity
		}
	}
}

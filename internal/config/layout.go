package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/feed-engine/pkg/widget"
)

// ErrInvalidLayout wraps every layout validation failure
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is the on-disk widget layout
type Layout struct {
	MaxLines int                 `yaml:"max_lines,omitempty"`
	Widgets  []widget.Definition `yaml:"widgets"`
}

// LoadLayout reads a YAML layout file. An empty path returns the built-in layout.
func LoadLayout(path string) ([]widget.Definition, error) {
	if strings.TrimSpace(path) == "" {
		layout := DefaultLayout()
		layout.Normalize()
		return layout.Widgets, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}
	return ParseLayout(b)
}

// ParseLayout decodes, normalizes and validates layout YAML
func ParseLayout(data []byte) ([]widget.Definition, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	layout.Normalize()
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return layout.Widgets, nil
}

// DefaultLayout is used when no layout file is configured
func DefaultLayout() Layout {
	return Layout{
		MaxLines: widget.DefaultMaxLines,
		Widgets: []widget.Definition{
			{Name: widget.MainWidget, Kind: widget.KindText, Streams: []string{"main"}},
			{Name: "comms", Kind: widget.KindTabbed, Tabs: []widget.TabDefinition{
				{Name: "Thoughts", Streams: []string{"thoughts"}},
				{Name: "Speech", Streams: []string{"speech", "whispers", "talk"}},
				{Name: "Deaths", Streams: []string{"death"}, IgnoreActivity: true},
			}},
			{Name: "health", Kind: widget.KindProgress, ProgressID: "health"},
			{Name: "mana", Kind: widget.KindProgress, ProgressID: "mana"},
			{Name: "stamina", Kind: widget.KindProgress, ProgressID: "stamina"},
			{Name: "spirit", Kind: widget.KindProgress, ProgressID: "spirit"},
			{Name: "stance", Kind: widget.KindProgress, ProgressID: "pbarStance"},
			{Name: "mindstate", Kind: widget.KindProgress, ProgressID: "mindState"},
			{Name: "encumbrance", Kind: widget.KindProgress, ProgressID: "encumlevel"},
			{Name: "roundtime", Kind: widget.KindCountdown, CountdownID: "roundtime"},
			{Name: "casttime", Kind: widget.KindCountdown, CountdownID: "casttime"},
			{Name: "compass", Kind: widget.KindCompass},
			{Name: "hands", Kind: widget.KindHands},
			{Name: "injuries", Kind: widget.KindInjuries},
			{Name: "effects", Kind: widget.KindEffects, Category: widget.CategoryAll},
			{Name: "status", Kind: widget.KindDashboard},
			{Name: "room", Kind: widget.KindRoom},
		},
	}
}

// Normalize trims names and fills per-widget defaults
func (l *Layout) Normalize() {
	if l.MaxLines <= 0 {
		l.MaxLines = widget.DefaultMaxLines
	}
	for i := range l.Widgets {
		w := &l.Widgets[i]
		w.Name = strings.TrimSpace(w.Name)
		w.Kind = widget.Kind(strings.ToLower(strings.TrimSpace(string(w.Kind))))
		for j := range w.Streams {
			w.Streams[j] = strings.TrimSpace(w.Streams[j])
		}
		switch w.Kind {
		case widget.KindText, widget.KindTabbed:
			if w.MaxLines <= 0 {
				w.MaxLines = l.MaxLines
			}
		case widget.KindEffects:
			if strings.TrimSpace(w.Category) == "" {
				w.Category = widget.CategoryAll
			}
		case widget.KindHand:
			w.Slot = strings.ToLower(strings.TrimSpace(w.Slot))
		}
	}
}

// Validate reports the first problem found, wrapped in ErrInvalidLayout
func (l Layout) Validate() error {
	if len(l.Widgets) == 0 {
		return fmt.Errorf("%w: widgets must not be empty", ErrInvalidLayout)
	}
	seen := map[string]bool{}
	for i, w := range l.Widgets {
		if w.Name == "" {
			return fmt.Errorf("%w: widgets[%d] name must not be empty", ErrInvalidLayout, i)
		}
		if seen[w.Name] {
			return fmt.Errorf("%w: duplicate widget name: %s", ErrInvalidLayout, w.Name)
		}
		seen[w.Name] = true
		if !w.Kind.Valid() {
			return fmt.Errorf("%w: widget %s has unknown kind %q", ErrInvalidLayout, w.Name, w.Kind)
		}
		switch w.Kind {
		case widget.KindTabbed:
			if len(w.Tabs) == 0 {
				return fmt.Errorf("%w: tabbed widget %s must define at least one tab", ErrInvalidLayout, w.Name)
			}
			tabs := map[string]bool{}
			for _, tab := range w.Tabs {
				if strings.TrimSpace(tab.Name) == "" {
					return fmt.Errorf("%w: widget %s has a tab with no name", ErrInvalidLayout, w.Name)
				}
				if tabs[tab.Name] {
					return fmt.Errorf("%w: widget %s duplicate tab: %s", ErrInvalidLayout, w.Name, tab.Name)
				}
				tabs[tab.Name] = true
			}
		case widget.KindHand:
			switch w.Slot {
			case widget.SlotLeft, widget.SlotRight, widget.SlotSpell:
			default:
				return fmt.Errorf("%w: hand widget %s slot must be left, right or spell", ErrInvalidLayout, w.Name)
			}
		case widget.KindProgress:
			if strings.TrimSpace(w.ProgressID) == "" {
				return fmt.Errorf("%w: progress widget %s progress_id must not be empty", ErrInvalidLayout, w.Name)
			}
		case widget.KindIndicator:
			if strings.TrimSpace(w.IndicatorID) == "" {
				return fmt.Errorf("%w: indicator widget %s indicator_id must not be empty", ErrInvalidLayout, w.Name)
			}
		}
	}
	return nil
}

// CapLines lowers the buffer limit of every text and tabbed widget to at most n
func CapLines(defs []widget.Definition, n int) {
	if n <= 0 {
		return
	}
	for i := range defs {
		switch defs[i].Kind {
		case widget.KindText, widget.KindTabbed:
			if defs[i].MaxLines <= 0 || defs[i].MaxLines > n {
				defs[i].MaxLines = n
			}
		}
	}
}

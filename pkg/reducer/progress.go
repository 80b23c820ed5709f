package reducer

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

const (
	encumbranceID   = "encumlevel"
	defaultMaxValue = 100
)

// progressAliases maps the ids the feed sends to ids layouts commonly use
var progressAliases = map[string]string{
	"pbarStance": "stance",
	"stance":     "pbarStance",
	"mindState":  "mindstate",
	"mindstate":  "mindState",
}

var stanceIDs = map[string]bool{
	"pbarStance": true,
	"stance":     true,
}

// Encumbrance colors
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorBrown  = "brown"
	ColorRed    = "red"
)

// EncumbranceColor returns the bar color for an encumbrance value
func EncumbranceColor(value int) string {
	switch {
	case value <= 20:
		return ColorGreen
	case value <= 40:
		return ColorYellow
	case value <= 60:
		return ColorBrown
	default:
		return ColorRed
	}
}

// StanceName converts a stance percentage to its name
func StanceName(value int) string {
	switch {
	case value <= 0:
		return "offensive"
	case value <= 20:
		return "advance"
	case value <= 40:
		return "forward"
	case value <= 60:
		return "neutral"
	case value <= 80:
		return "guarded"
	default:
		return "defensive"
	}
}

// progressTargets resolves progress widgets for an incoming id: alias first,
// then the literal id, then a widget whose name is the id.
func progressTargets(reg *widget.Registry, id string) []*widget.ProgressContent {
	keys := make([]string, 0, 2)
	if alias, ok := progressAliases[id]; ok {
		keys = append(keys, alias)
	}
	keys = append(keys, id)

	for _, key := range keys {
		var found []*widget.ProgressContent
		reg.Each(widget.OfKind(widget.KindProgress), func(w *widget.Widget) {
			if c := w.Content.(*widget.ProgressContent); c.ID == key {
				found = append(found, c)
			}
		})
		if len(found) > 0 {
			return found
		}
	}

	if w, ok := reg.Get(id); ok {
		if c, ok := w.Content.(*widget.ProgressContent); ok {
			return []*widget.ProgressContent{c}
		}
	}
	return nil
}

func (r *Reducer) applyProgress(reg *widget.Registry, ev protocol.Progress) {
	targets := progressTargets(reg, ev.ID)
	if len(targets) == 0 {
		r.missing(ev.Kind(), ev.ID)
		return
	}

	maxValue := ev.Max
	if maxValue <= 0 {
		maxValue = defaultMaxValue
	}

	for _, c := range targets {
		c.Value = ev.Value
		c.Max = maxValue
		switch {
		case ev.ID == encumbranceID:
			c.Color = EncumbranceColor(ev.Value)
			c.Label = ev.Text
		case stanceIDs[ev.ID]:
			c.Label = StanceName(ev.Value)
		default:
			c.Label = progressLabel(ev.Text)
		}
	}
}

func (r *Reducer) applyLabel(reg *widget.Registry, ev protocol.Label) {
	targets := progressTargets(reg, ev.ID)
	if len(targets) == 0 {
		r.missing(ev.Kind(), ev.ID)
		return
	}

	value := lastNumber(ev.Value)
	for _, c := range targets {
		c.Value = value
		c.Max = defaultMaxValue
		c.Label = ev.Value
	}
}

// progressLabel drops the leading name from "health 325/326" style text
func progressLabel(text string) string {
	if !strings.Contains(text, "/") {
		return text
	}
	fields := strings.Fields(text)
	for i, f := range fields {
		if strings.IndexFunc(f, unicode.IsDigit) >= 0 {
			return strings.Join(fields[i:], " ")
		}
	}
	return text
}

// lastNumber returns the last whitespace-separated token that is a run of
// digits once surrounding non-digits are trimmed, or 0
func lastNumber(s string) int {
	value := 0
	for _, f := range strings.Fields(s) {
		digits := strings.TrimFunc(f, func(r rune) bool { return !isASCIIDigit(r) })
		if digits == "" || strings.IndexFunc(digits, func(r rune) bool { return !isASCIIDigit(r) }) >= 0 {
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		value = n
	}
	return value
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

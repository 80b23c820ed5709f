// Package widget holds the registry of named widgets and the content each
// kind of widget carries. Rendering reads these values; the reducer writes them.
package widget

import "fmt"

// Kind is the declared type of a widget
type Kind string

const (
	KindText      Kind = "text"
	KindTabbed    Kind = "tabbed"
	KindProgress  Kind = "progress"
	KindCountdown Kind = "countdown"
	KindIndicator Kind = "indicator"
	KindCompass   Kind = "compass"
	KindHand      Kind = "hand"
	KindHands     Kind = "hands"
	KindInjuries  Kind = "injuries"
	KindEffects   Kind = "effects"
	KindDashboard Kind = "dashboard"
	KindRoom      Kind = "room"
	KindRoster    Kind = "roster"
)

var allKinds = []Kind{
	KindText, KindTabbed, KindProgress, KindCountdown, KindIndicator, KindCompass,
	KindHand, KindHands, KindInjuries, KindEffects, KindDashboard, KindRoom, KindRoster,
}

// Kinds returns every known widget kind
func Kinds() []Kind {
	out := make([]Kind, len(allKinds))
	copy(out, allKinds)
	return out
}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	for _, known := range allKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind converts a config string to a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown widget kind %q", s)
	}
	return k, nil
}

// Hand slots
const (
	SlotLeft  = "left"
	SlotRight = "right"
	SlotSpell = "spell"
)

// CategoryAll is the wildcard effects category
const CategoryAll = "All"

// MainWidget is the name of the default text widget
const MainWidget = "main"

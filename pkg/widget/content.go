package widget

// Content is the mutable state of a widget. Each Kind has exactly one
// content type; only types in this package implement it.
type Content interface {
	Kind() Kind
	content()
}

// TextContent is a scrolling text log
type TextContent struct {
	Buffer  *TextBuffer
	Streams []string
}

// Tab is one page of a tabbed text widget
type Tab struct {
	Name           string
	Streams        []string
	Buffer         *TextBuffer
	Unread         bool
	IgnoreActivity bool
}

// TabbedContent is a text widget split into tabs, each fed by its own streams
type TabbedContent struct {
	Tabs   []*Tab
	Active int
}

// Tab returns the tab with the given name
func (c *TabbedContent) Tab(name string) (*Tab, bool) {
	for _, t := range c.Tabs {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Select makes tab i active and marks it read. Out of range indexes are ignored.
func (c *TabbedContent) Select(i int) {
	if i < 0 || i >= len(c.Tabs) {
		return
	}
	c.Active = i
	c.Tabs[i].Unread = false
}

// ProgressContent is a bar with a value, a max and a label
type ProgressContent struct {
	ID    string
	Value int
	Max   int
	Label string
	Color string
}

// CountdownContent counts down to an absolute end time (unix seconds)
type CountdownContent struct {
	ID      string
	EndTime int64
}

// IndicatorContent is a single on/off status light
type IndicatorContent struct {
	ID     string
	Active bool
}

// CompassContent lists the exits currently available
type CompassContent struct {
	Directions []string
}

// HandSlot is the item held in one slot
type HandSlot struct {
	Item    string
	ExistID string
	Noun    string
}

// Empty reports whether nothing is held
func (h HandSlot) Empty() bool {
	return h.Item == ""
}

// HandContent shows a single slot
type HandContent struct {
	Slot string
	HandSlot
}

// HandsContent shows left, right and spell slots together
type HandsContent struct {
	Left  HandSlot
	Right HandSlot
	Spell HandSlot
}

// SlotFor returns the slot with the given name, or nil for an unknown name
func (c *HandsContent) SlotFor(slot string) *HandSlot {
	switch slot {
	case SlotLeft:
		return &c.Left
	case SlotRight:
		return &c.Right
	case SlotSpell:
		return &c.Spell
	default:
		return nil
	}
}

// Injury levels: 0 healthy, 1-3 wounds, 4-6 scars
const (
	InjuryNone     = 0
	InjuryMaxLevel = 6
)

// InjuryContent maps body part ids to an injury level
type InjuryContent struct {
	Levels map[string]int
}

// Level returns the level of a body part, 0 when unknown
func (c *InjuryContent) Level(part string) int {
	return c.Levels[part]
}

// Effect is one active spell, buff, debuff or cooldown
type Effect struct {
	Category string
	ID       string
	Value    int
	Text     string
	Time     string
}

// EffectsContent lists the active effects of one category (or All)
type EffectsContent struct {
	Category string
	Effects  []Effect
}

// Upsert replaces the effect with the same category and id, or appends it
func (c *EffectsContent) Upsert(e Effect) {
	for i := range c.Effects {
		if c.Effects[i].Category == e.Category && c.Effects[i].ID == e.ID {
			c.Effects[i] = e
			return
		}
	}
	c.Effects = append(c.Effects, e)
}

// ClearCategory removes every effect of a category
func (c *EffectsContent) ClearCategory(category string) {
	kept := c.Effects[:0]
	for _, e := range c.Effects {
		if e.Category != category {
			kept = append(kept, e)
		}
	}
	c.Effects = kept
}

// DashboardIndicator is one entry on a dashboard
type DashboardIndicator struct {
	ID     string
	Active bool
}

// DashboardContent is an ordered set of indicators
type DashboardContent struct {
	Indicators []DashboardIndicator
}

// Set updates the matching indicator, keeping its stored id, or appends a new one
func (c *DashboardContent) Set(id string, active bool) {
	for i := range c.Indicators {
		if MatchID(c.Indicators[i].ID, id) {
			c.Indicators[i].Active = active
			return
		}
	}
	c.Indicators = append(c.Indicators, DashboardIndicator{ID: id, Active: active})
}

// RoomContent is the aggregated room display
type RoomContent struct {
	Name        string
	Description string
	Objects     string
	Players     string
	Exits       string
}

// RosterContent marks where a roster is displayed. Entries live in game state.
type RosterContent struct {
	Roster string
}

func (*TextContent) Kind() Kind      { return KindText }
func (*TabbedContent) Kind() Kind    { return KindTabbed }
func (*ProgressContent) Kind() Kind  { return KindProgress }
func (*CountdownContent) Kind() Kind { return KindCountdown }
func (*IndicatorContent) Kind() Kind { return KindIndicator }
func (*CompassContent) Kind() Kind   { return KindCompass }
func (*HandContent) Kind() Kind      { return KindHand }
func (*HandsContent) Kind() Kind     { return KindHands }
func (*InjuryContent) Kind() Kind    { return KindInjuries }
func (*EffectsContent) Kind() Kind   { return KindEffects }
func (*DashboardContent) Kind() Kind { return KindDashboard }
func (*RoomContent) Kind() Kind      { return KindRoom }
func (*RosterContent) Kind() Kind    { return KindRoster }

func (*TextContent) content()      {}
func (*TabbedContent) content()    {}
func (*ProgressContent) content()  {}
func (*CountdownContent) content() {}
func (*IndicatorContent) content() {}
func (*CompassContent) content()   {}
func (*HandContent) content()      {}
func (*HandsContent) content()     {}
func (*InjuryContent) content()    {}
func (*EffectsContent) content()   {}
func (*DashboardContent) content() {}
func (*RoomContent) content()      {}
func (*RosterContent) content()    {}

// NewContent builds empty content matching a definition's kind.
// Returns nil for an unknown kind.
func NewContent(def Definition) Content {
	switch def.Kind {
	case KindText:
		return &TextContent{
			Buffer:  NewTextBuffer(def.maxLines()),
			Streams: append([]string(nil), def.Streams...),
		}
	case KindTabbed:
		c := &TabbedContent{}
		for _, td := range def.Tabs {
			c.Tabs = append(c.Tabs, &Tab{
				Name:           td.Name,
				Streams:        append([]string(nil), td.Streams...),
				Buffer:         NewTextBuffer(def.maxLines()),
				IgnoreActivity: td.IgnoreActivity,
			})
		}
		return c
	case KindProgress:
		return &ProgressContent{ID: def.ProgressID, Max: 100}
	case KindCountdown:
		return &CountdownContent{ID: def.CountdownID}
	case KindIndicator:
		return &IndicatorContent{ID: def.IndicatorID}
	case KindCompass:
		return &CompassContent{}
	case KindHand:
		return &HandContent{Slot: def.Slot}
	case KindHands:
		return &HandsContent{}
	case KindInjuries:
		return &InjuryContent{Levels: make(map[string]int)}
	case KindEffects:
		return &EffectsContent{Category: def.Category}
	case KindDashboard:
		return &DashboardContent{}
	case KindRoom:
		return &RoomContent{}
	case KindRoster:
		return &RosterContent{Roster: def.Roster}
	default:
		return nil
	}
}

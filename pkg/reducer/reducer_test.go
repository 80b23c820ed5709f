package reducer

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/feed-engine/pkg/protocol"
	"github.com/jwebster45206/feed-engine/pkg/state"
	"github.com/jwebster45206/feed-engine/pkg/widget"
)

type fixture struct {
	reducer *Reducer
	reg     *widget.Registry
	gs      *state.GameState
}

func newFixture(defs ...widget.Definition) *fixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return &fixture{
		reducer: New(defs, logger),
		reg:     widget.NewRegistry(defs),
		gs:      state.NewGameState(),
	}
}

func (f *fixture) line(events ...protocol.Event) {
	f.reducer.ApplyLine(f.gs, f.reg, events)
}

func content[T widget.Content](t *testing.T, f *fixture, name string) T {
	t.Helper()
	w, ok := f.reg.Get(name)
	require.True(t, ok, "widget %s", name)
	c, ok := w.Content.(T)
	require.True(t, ok, "widget %s has content %T", name, w.Content)
	return c
}

var mainDef = widget.Definition{Name: "main", Kind: widget.KindText, Streams: []string{"main"}}

func TestApply_ThoughtsScenario(t *testing.T) {
	f := newFixture(mainDef, widget.Definition{
		Name: "comms",
		Kind: widget.KindTabbed,
		Tabs: []widget.TabDefinition{
			{Name: "Thoughts", Streams: []string{"thoughts"}},
			{Name: "Speech", Streams: []string{"speech"}},
		},
	})

	f.line(protocol.PushStream{StreamID: "thoughts"}, protocol.Text{Content: "Thoughts line"}, protocol.PopStream{})

	comms := content[*widget.TabbedContent](t, f, "comms")
	thoughts, _ := comms.Tab("Thoughts")
	speech, _ := comms.Tab("Speech")
	assert.Equal(t, []string{"Thoughts line"}, thoughts.Buffer.Strings())
	assert.Zero(t, speech.Buffer.Len())
	assert.Zero(t, content[*widget.TextContent](t, f, "main").Buffer.Len())
}

func TestApply_TextVerbatimAndStyled(t *testing.T) {
	f := newFixture(mainDef)

	f.line(protocol.Text{Content: "A troll ", Foreground: "#FF0000", Bold: true}, protocol.Text{Content: "arrives."})

	buf := content[*widget.TextContent](t, f, "main").Buffer
	require.Equal(t, 1, buf.Len())
	assert.Equal(t, "A troll arrives.", buf.Strings()[0])
	seg := buf.Lines()[0].Segments[0]
	assert.Equal(t, widget.Segment{Text: "A troll ", Foreground: "#FF0000", Bold: true}, seg)
}

func TestApply_RosterStreamWithoutWidgetIsDropped(t *testing.T) {
	f := newFixture(mainDef)

	f.line(protocol.PushStream{StreamID: "ppl"}, protocol.Text{Content: "Bob, Alice"}, protocol.PopStream{})

	assert.Zero(t, content[*widget.TextContent](t, f, "main").Buffer.Len())
}

func TestApply_UnknownStreamGoesToMain(t *testing.T) {
	f := newFixture(mainDef)

	f.line(protocol.PushStream{StreamID: "brandNewStream"}, protocol.Text{Content: "surprise"}, protocol.PopStream{})

	assert.Equal(t, []string{"surprise"}, content[*widget.TextContent](t, f, "main").Buffer.Strings())
}

func TestApply_PromptSuppressedOnceAfterPop(t *testing.T) {
	f := newFixture(mainDef, widget.Definition{Name: "thoughts", Kind: widget.KindText, Streams: []string{"thoughts"}})

	f.line(protocol.PushStream{StreamID: "thoughts"}, protocol.Text{Content: "a thought"}, protocol.PopStream{})
	f.line(protocol.Prompt{Text: "H>", Time: 100})
	f.line(protocol.Prompt{Text: ">", Time: 101})

	assert.Equal(t, []string{">"}, content[*widget.TextContent](t, f, "main").Buffer.Strings())
	assert.Equal(t, ">", f.gs.Prompt)
	assert.Equal(t, int64(101), f.gs.PromptTime)
}

func TestApply_Progress(t *testing.T) {
	tests := []struct {
		name          string
		def           widget.Definition
		event         protocol.Progress
		expectedValue int
		expectedMax   int
		expectedLabel string
		expectedColor string
	}{
		{
			name:          "stance by configured id",
			def:           widget.Definition{Name: "stance", Kind: widget.KindProgress, ProgressID: "pbarStance"},
			event:         protocol.Progress{ID: "pbarStance", Value: 100, Max: 100, Text: "defensive (100%)"},
			expectedValue: 100,
			expectedMax:   100,
			expectedLabel: "defensive",
		},
		{
			name:          "stance through alias",
			def:           widget.Definition{Name: "s", Kind: widget.KindProgress, ProgressID: "stance"},
			event:         protocol.Progress{ID: "pbarStance", Value: 50, Max: 100, Text: "neutral (50%)"},
			expectedValue: 50,
			expectedMax:   100,
			expectedLabel: "neutral",
		},
		{
			name:          "mind state without max",
			def:           widget.Definition{Name: "mind", Kind: widget.KindProgress, ProgressID: "mindstate"},
			event:         protocol.Progress{ID: "mindState", Value: 40, Text: "clear"},
			expectedValue: 40,
			expectedMax:   100,
			expectedLabel: "clear",
		},
		{
			name:          "encumbrance green",
			def:           widget.Definition{Name: "encum", Kind: widget.KindProgress, ProgressID: "encumlevel"},
			event:         protocol.Progress{ID: "encumlevel", Value: 15, Max: 110, Text: "Light Burden"},
			expectedValue: 15,
			expectedMax:   110,
			expectedLabel: "Light Burden",
			expectedColor: ColorGreen,
		},
		{
			name:          "encumbrance brown",
			def:           widget.Definition{Name: "encum", Kind: widget.KindProgress, ProgressID: "encumlevel"},
			event:         protocol.Progress{ID: "encumlevel", Value: 45, Max: 110, Text: "Somewhat Burdened"},
			expectedValue: 45,
			expectedMax:   110,
			expectedLabel: "Somewhat Burdened",
			expectedColor: ColorBrown,
		},
		{
			name:          "encumbrance red",
			def:           widget.Definition{Name: "encum", Kind: widget.KindProgress, ProgressID: "encumlevel"},
			event:         protocol.Progress{ID: "encumlevel", Value: 75, Max: 110, Text: "Overloaded"},
			expectedValue: 75,
			expectedMax:   110,
			expectedLabel: "Overloaded",
			expectedColor: ColorRed,
		},
		{
			name:          "health strips name",
			def:           widget.Definition{Name: "hp", Kind: widget.KindProgress, ProgressID: "health"},
			event:         protocol.Progress{ID: "health", Value: 325, Max: 326, Text: "health 325/326"},
			expectedValue: 325,
			expectedMax:   326,
			expectedLabel: "325/326",
		},
		{
			name:          "verbatim text",
			def:           widget.Definition{Name: "spirit", Kind: widget.KindProgress, ProgressID: "spirit"},
			event:         protocol.Progress{ID: "spirit", Value: 10, Max: 10, Text: "full spirit"},
			expectedValue: 10,
			expectedMax:   10,
			expectedLabel: "full spirit",
		},
		{
			name:          "widget name fallback",
			def:           widget.Definition{Name: "mana", Kind: widget.KindProgress, ProgressID: "mp"},
			event:         protocol.Progress{ID: "mana", Value: 3, Max: 9, Text: "mana 3/9"},
			expectedValue: 3,
			expectedMax:   9,
			expectedLabel: "3/9",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.def)
			f.line(tt.event)

			c := content[*widget.ProgressContent](t, f, tt.def.Name)
			assert.Equal(t, tt.expectedValue, c.Value)
			assert.Equal(t, tt.expectedMax, c.Max)
			assert.Contains(t, c.Label, tt.expectedLabel)
			assert.Equal(t, tt.expectedColor, c.Color)
		})
	}
}

func TestApply_ProgressIDIsCaseSensitive(t *testing.T) {
	f := newFixture(widget.Definition{Name: "hp", Kind: widget.KindProgress, ProgressID: "health"})

	f.line(protocol.Progress{ID: "Health", Value: 1, Max: 10, Text: "health 1/10"})

	c := content[*widget.ProgressContent](t, f, "hp")
	assert.Zero(t, c.Value)
	assert.Equal(t, "health", c.ID)
}

func TestStanceName(t *testing.T) {
	tests := []struct {
		value    int
		expected string
	}{
		{0, "offensive"}, {1, "advance"}, {20, "advance"}, {21, "forward"}, {40, "forward"},
		{41, "neutral"}, {60, "neutral"}, {61, "guarded"}, {80, "guarded"}, {81, "defensive"}, {100, "defensive"},
	}
	for _, tt := range tests {
		if got := StanceName(tt.value); got != tt.expected {
			t.Errorf("StanceName(%d) = %q, want %q", tt.value, got, tt.expected)
		}
	}
}

func TestEncumbranceColor_Brackets(t *testing.T) {
	assert.Equal(t, ColorGreen, EncumbranceColor(20))
	assert.Equal(t, ColorYellow, EncumbranceColor(21))
	assert.Equal(t, ColorYellow, EncumbranceColor(40))
	assert.Equal(t, ColorBrown, EncumbranceColor(60))
	assert.Equal(t, ColorRed, EncumbranceColor(61))
}

func TestApply_Label(t *testing.T) {
	tests := []struct {
		name          string
		value         string
		expectedValue int
	}{
		{name: "percent token", value: "clear as a bell 12%", expectedValue: 12},
		{name: "last number wins", value: "5 of 80 (80)", expectedValue: 80},
		{name: "no digits", value: "fresh and clear", expectedValue: 0},
		{name: "mixed token skipped", value: "level 7 a1b2", expectedValue: 7},
		{name: "empty", value: "", expectedValue: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(widget.Definition{Name: "mind", Kind: widget.KindProgress, ProgressID: "mindState"})
			f.line(protocol.Label{ID: "mindState", Value: tt.value})

			c := content[*widget.ProgressContent](t, f, "mind")
			assert.Equal(t, tt.expectedValue, c.Value)
			assert.Equal(t, 100, c.Max)
			assert.Equal(t, tt.value, c.Label)
		})
	}
}

func TestApply_Countdowns(t *testing.T) {
	t.Run("configured id", func(t *testing.T) {
		f := newFixture(
			widget.Definition{Name: "rt", Kind: widget.KindCountdown, CountdownID: "roundtime"},
			widget.Definition{Name: "ct", Kind: widget.KindCountdown, CountdownID: "casttime"},
		)
		f.line(protocol.Roundtime{EndTime: 1700000010}, protocol.CastTime{EndTime: 1700000020})

		assert.Equal(t, int64(1700000010), content[*widget.CountdownContent](t, f, "rt").EndTime)
		assert.Equal(t, int64(1700000020), content[*widget.CountdownContent](t, f, "ct").EndTime)
	})

	t.Run("name fallback", func(t *testing.T) {
		f := newFixture(widget.Definition{Name: "roundtime", Kind: widget.KindCountdown, CountdownID: "rt_custom"})
		f.line(protocol.Roundtime{EndTime: 1700000030})

		c := content[*widget.CountdownContent](t, f, "roundtime")
		assert.Equal(t, int64(1700000030), c.EndTime)
		assert.Equal(t, "rt_custom", c.ID)
	})

	t.Run("missing widget", func(t *testing.T) {
		f := newFixture(mainDef)
		assert.NotPanics(t, func() { f.line(protocol.CastTime{EndTime: 1}) })
	})
}

func TestApply_CompassReplacesDirections(t *testing.T) {
	f := newFixture(widget.Definition{Name: "compass", Kind: widget.KindCompass})

	f.line(protocol.Compass{Directions: []string{"n", "s", "out"}})
	f.line(protocol.Compass{Directions: []string{"up"}})

	assert.Equal(t, []string{"up"}, content[*widget.CompassContent](t, f, "compass").Directions)
}

func TestApply_Injuries(t *testing.T) {
	f := newFixture(widget.Definition{Name: "doll", Kind: widget.KindInjuries})

	f.line(protocol.Injury{BodyPart: "head", ImageName: "Injury2"})
	f.line(protocol.Injury{BodyPart: "leftArm", ImageName: "Scar3"})

	c := content[*widget.InjuryContent](t, f, "doll")
	assert.Equal(t, 2, c.Level("head"))
	assert.Equal(t, 6, c.Level("leftArm"))

	f.line(protocol.Injury{BodyPart: "head", ImageName: "head"})
	assert.Equal(t, 0, c.Level("head"))
	_, present := c.Levels["head"]
	assert.True(t, present, "clears are stored as level 0")
}

func TestInjuryLevel(t *testing.T) {
	expected := map[string]int{
		"Injury1": 1, "Injury2": 2, "Injury3": 3,
		"Scar1": 4, "Scar2": 5, "Scar3": 6,
		"nsys": 0, "": 0, "Injury4": 0,
	}
	for name, level := range expected {
		assert.Equal(t, level, InjuryLevel(name), name)
	}
}

func TestApply_HandsFanOut(t *testing.T) {
	f := newFixture(
		widget.Definition{Name: "hands", Kind: widget.KindHands},
		widget.Definition{Name: "left", Kind: widget.KindHand, Slot: widget.SlotLeft},
		widget.Definition{Name: "right", Kind: widget.KindHand, Slot: widget.SlotRight},
		widget.Definition{Name: "spell", Kind: widget.KindHand, Slot: widget.SlotSpell},
	)

	f.line(
		protocol.LeftHand{Item: "a steel broadsword", Link: &protocol.Link{ExistID: "42", Noun: "broadsword"}},
		protocol.RightHand{Item: "a wooden shield"},
		protocol.SpellHand{Item: "Spirit Warding I"},
	)

	hands := content[*widget.HandsContent](t, f, "hands")
	assert.Equal(t, widget.HandSlot{Item: "a steel broadsword", ExistID: "42", Noun: "broadsword"}, hands.Left)
	assert.Equal(t, "a wooden shield", hands.Right.Item)
	assert.Equal(t, "Spirit Warding I", hands.Spell.Item)

	left := content[*widget.HandContent](t, f, "left")
	assert.Equal(t, "a steel broadsword", left.Item)
	assert.Equal(t, "42", left.ExistID)
	assert.Equal(t, "a wooden shield", content[*widget.HandContent](t, f, "right").Item)

	f.line(protocol.LeftHand{Item: ""})
	assert.True(t, hands.Left.Empty())
	assert.True(t, left.Empty())
	assert.Empty(t, left.ExistID)
	assert.Equal(t, "a wooden shield", hands.Right.Item)
}

func TestApply_Indicators(t *testing.T) {
	f := newFixture(
		widget.Definition{Name: "standing", Kind: widget.KindIndicator, IndicatorID: "standing"},
		widget.Definition{Name: "kneeling", Kind: widget.KindIndicator, IndicatorID: "Kneeling"},
		widget.Definition{Name: "status", Kind: widget.KindDashboard},
	)

	f.line(protocol.Indicator{ID: "IconSTANDING", Active: true})

	standing := content[*widget.IndicatorContent](t, f, "standing")
	assert.True(t, standing.Active)
	assert.Equal(t, "standing", standing.ID)
	assert.False(t, content[*widget.IndicatorContent](t, f, "kneeling").Active)

	f.line(protocol.Indicator{ID: "IconKNEELING", Active: true})
	kneeling := content[*widget.IndicatorContent](t, f, "kneeling")
	assert.True(t, kneeling.Active)
	assert.Equal(t, "Kneeling", kneeling.ID)
}

func TestApply_DashboardNeverDuplicates(t *testing.T) {
	f := newFixture(widget.Definition{Name: "status", Kind: widget.KindDashboard})

	f.line(protocol.Indicator{ID: "IconHIDDEN", Active: true})
	f.line(protocol.Indicator{ID: "IconHIDDEN", Active: false})

	dash := content[*widget.DashboardContent](t, f, "status")
	require.Len(t, dash.Indicators, 1)
	assert.False(t, dash.Indicators[0].Active)
	assert.Equal(t, "IconHIDDEN", dash.Indicators[0].ID)

	// Ids with and without the Icon prefix are the same indicator
	f.line(protocol.Indicator{ID: "IconSTANDING", Active: true})
	f.line(protocol.Indicator{ID: "STANDING", Active: false})
	f.line(protocol.Indicator{ID: "hidden", Active: true})

	dash = content[*widget.DashboardContent](t, f, "status")
	require.Len(t, dash.Indicators, 2)
	assert.Equal(t, widget.DashboardIndicator{ID: "IconHIDDEN", Active: true}, dash.Indicators[0])
	assert.Equal(t, widget.DashboardIndicator{ID: "IconSTANDING", Active: false}, dash.Indicators[1])
}

func TestApply_IndicatorConfiguredWithPrefix(t *testing.T) {
	f := newFixture(widget.Definition{Name: "standing", Kind: widget.KindIndicator, IndicatorID: "IconSTANDING"})

	f.line(protocol.Indicator{ID: "STANDING", Active: true})
	assert.True(t, content[*widget.IndicatorContent](t, f, "standing").Active)
}

func TestApply_ActiveEffects(t *testing.T) {
	f := newFixture(
		widget.Definition{Name: "buffs", Kind: widget.KindEffects, Category: "Buffs"},
		widget.Definition{Name: "debuffs", Kind: widget.KindEffects, Category: "Debuffs"},
		widget.Definition{Name: "everything", Kind: widget.KindEffects, Category: widget.CategoryAll},
	)

	f.line(protocol.EffectUpsert{Category: "Buffs", ID: "107", Value: 20, Text: "Spirit Barrier", Time: "00:10:00"})
	f.line(protocol.EffectUpsert{Category: "Buffs", ID: "107", Value: 90, Text: "Spirit Barrier", Time: "00:45:00"})
	f.line(protocol.EffectUpsert{Category: "Debuffs", ID: "poison", Value: 5, Text: "Poisoned"})

	buffs := content[*widget.EffectsContent](t, f, "buffs")
	require.Len(t, buffs.Effects, 1)
	assert.Equal(t, 90, buffs.Effects[0].Value)
	assert.Equal(t, "00:45:00", buffs.Effects[0].Time)

	assert.Len(t, content[*widget.EffectsContent](t, f, "debuffs").Effects, 1)
	everything := content[*widget.EffectsContent](t, f, "everything")
	assert.Len(t, everything.Effects, 2)

	f.line(protocol.EffectClear{Category: "Buffs"})
	assert.Empty(t, buffs.Effects)
	require.Len(t, everything.Effects, 1)
	assert.Equal(t, "poison", everything.Effects[0].ID)
}

func TestApply_RoomComponents(t *testing.T) {
	t.Run("without room widget", func(t *testing.T) {
		f := newFixture(mainDef)
		f.line(protocol.RoomComponent{Name: "room desc", Value: "A dusty hall."})

		assert.Empty(t, f.gs.Room.Components)
		assert.False(t, f.gs.Room.Dirty)
	})

	t.Run("with room widget", func(t *testing.T) {
		f := newFixture(mainDef, widget.Definition{Name: "room", Kind: widget.KindRoom})
		f.line(
			protocol.RoomComponent{Name: "room desc", Value: "A dusty hall."},
			protocol.RoomComponent{Name: "room exits", Value: "Obvious exits: north"},
			protocol.RoomComponent{Name: "room exits", Value: "Obvious exits: south"},
			protocol.RoomComponent{Name: "sprite", Value: "ignored"},
		)

		assert.Equal(t, "A dusty hall.", f.gs.RoomComponent(state.ComponentDescription))
		assert.Equal(t, "Obvious exits: south", f.gs.RoomComponent(state.ComponentExits))
		assert.Len(t, f.gs.Room.Components, 2)
		assert.True(t, f.gs.Room.Dirty)

		room := content[*widget.RoomContent](t, f, "room")
		assert.Equal(t, "A dusty hall.", room.Description)
		assert.Equal(t, "Obvious exits: south", room.Exits)
	})
}

func TestApply_RoomIdentityAndRoster(t *testing.T) {
	f := newFixture(widget.Definition{Name: "room", Kind: widget.KindRoom}, widget.Definition{Name: "targets", Kind: widget.KindRoster, Roster: "targets"})

	f.line(
		protocol.RoomIdentity{Subtitle: " - [Town Square]", RoomID: "228", UID: "7120001"},
		protocol.Roster{Name: "targets", Entries: []string{"a kobold"}},
	)

	assert.Equal(t, "[Town Square - 228] (u7120001)", f.gs.Room.Title)
	assert.Equal(t, f.gs.Room.Title, content[*widget.RoomContent](t, f, "room").Name)
	assert.Equal(t, []string{"a kobold"}, f.gs.Roster("targets"))
	assert.Equal(t, "targets", content[*widget.RosterContent](t, f, "targets").Roster)
}

func TestApply_MissingWidgetsAreNoops(t *testing.T) {
	f := newFixture()

	events := []protocol.Event{
		protocol.Text{Content: "nowhere to go"},
		protocol.Prompt{Text: ">"},
		protocol.PushStream{StreamID: "thoughts"},
		protocol.PopStream{},
		protocol.ClearStream{StreamID: "main"},
		protocol.Progress{ID: "health", Value: 1},
		protocol.Label{ID: "mindState", Value: "x"},
		protocol.Roundtime{EndTime: 1},
		protocol.CastTime{EndTime: 1},
		protocol.Compass{Directions: []string{"n"}},
		protocol.Injury{BodyPart: "head", ImageName: "Injury1"},
		protocol.LeftHand{Item: "a rock"},
		protocol.RightHand{},
		protocol.SpellHand{},
		protocol.Indicator{ID: "IconDEAD", Active: true},
		protocol.EffectUpsert{Category: "Buffs", ID: "1"},
		protocol.EffectClear{Category: "Buffs"},
		protocol.RoomComponent{Name: "room desc", Value: "x"},
		protocol.Noop{Tag: "resource"},
	}

	assert.NotPanics(t, func() { f.line(events...) })
	assert.Equal(t, ">", f.gs.Prompt)
}

func TestApply_ToleratesWidgetsChangingBetweenLines(t *testing.T) {
	defs := []widget.Definition{mainDef, {Name: "loot", Kind: widget.KindText, Streams: []string{"loot"}}}
	f := newFixture(defs...)

	f.reg.Remove("loot")
	f.line(protocol.PushStream{StreamID: "loot"}, protocol.Text{Content: "a coin"}, protocol.PopStream{})
	assert.Zero(t, content[*widget.TextContent](t, f, "main").Buffer.Len())

	f.reg.Reload(defs[:1])
	f.reducer.Reload(defs[:1])
	f.line(protocol.PushStream{StreamID: "loot"}, protocol.Text{Content: "a coin"}, protocol.PopStream{})
	assert.Equal(t, []string{"a coin"}, content[*widget.TextContent](t, f, "main").Buffer.Strings())
}

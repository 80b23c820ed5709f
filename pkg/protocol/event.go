// Package protocol defines the events a tokenizer emits for each line of the
// game feed. The set is closed: every event type lives in this package.
package protocol

// Kind identifies the type of event
type Kind string

const (
	KindText          Kind = "text"
	KindPrompt        Kind = "prompt"
	KindPushStream    Kind = "push_stream"
	KindPopStream     Kind = "pop_stream"
	KindClearStream   Kind = "clear_stream"
	KindProgress      Kind = "progress"
	KindLabel         Kind = "label"
	KindRoundtime     Kind = "roundtime"
	KindCastTime      Kind = "casttime"
	KindCompass       Kind = "compass"
	KindInjury        Kind = "injury"
	KindLeftHand      Kind = "left_hand"
	KindRightHand     Kind = "right_hand"
	KindSpellHand     Kind = "spell_hand"
	KindIndicator     Kind = "indicator"
	KindEffectUpsert  Kind = "effect_upsert"
	KindEffectClear   Kind = "effect_clear"
	KindRoomComponent Kind = "room_component"
	KindRoomIdentity  Kind = "room_identity"
	KindRoster        Kind = "roster"
	KindNoop          Kind = "noop"
)

// Event is one tokenizer emission. Only types in this package implement it.
type Event interface {
	Kind() Kind
	event()
}

// Text is a run of styled text on the current stream
type Text struct {
	Content    string `json:"content"`
	Foreground string `json:"foreground,omitempty"`
	Background string `json:"background,omitempty"`
	Bold       bool   `json:"bold,omitempty"`
}

// Prompt is the server prompt that ends a chunk of output
type Prompt struct {
	Text string `json:"text"`
	Time int64  `json:"time,omitempty"`
}

// PushStream redirects following text to a named stream
type PushStream struct {
	StreamID string `json:"stream_id"`
}

// PopStream returns text to the main stream
type PopStream struct{}

// ClearStream empties whatever buffer a stream is mapped to
type ClearStream struct {
	StreamID string `json:"stream_id"`
}

// Progress updates a progress bar. Max of zero means the feed did not send one.
type Progress struct {
	ID    string `json:"id"`
	Value int    `json:"value"`
	Max   int    `json:"max,omitempty"`
	Text  string `json:"text"`
}

// Label updates a progress bar from a free-text label
type Label struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// Roundtime carries the absolute end time of the current roundtime
type Roundtime struct {
	EndTime int64 `json:"end_time"`
}

// CastTime carries the absolute end time of the current cast time
type CastTime struct {
	EndTime int64 `json:"end_time"`
}

// Compass lists the obvious exits
type Compass struct {
	Directions []string `json:"directions"`
}

// Injury updates one body part of the injury doll
type Injury struct {
	BodyPart  string `json:"body_part"`
	ImageName string `json:"image_name"`
}

// Link is the game object metadata attached to a held item
type Link struct {
	ExistID string `json:"exist_id,omitempty"`
	Noun    string `json:"noun,omitempty"`
}

// LeftHand updates the left hand slot. An empty Item means empty hand.
type LeftHand struct {
	Item string `json:"item"`
	Link *Link  `json:"link,omitempty"`
}

// RightHand updates the right hand slot
type RightHand struct {
	Item string `json:"item"`
	Link *Link  `json:"link,omitempty"`
}

// SpellHand updates the prepared spell slot
type SpellHand struct {
	Item string `json:"item"`
	Link *Link  `json:"link,omitempty"`
}

// Indicator toggles a status indicator such as IconSTANDING
type Indicator struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// EffectUpsert inserts or replaces one active effect within a category
type EffectUpsert struct {
	Category string `json:"category"`
	ID       string `json:"id"`
	Value    int    `json:"value"`
	Text     string `json:"text"`
	Time     string `json:"time,omitempty"`
}

// EffectClear removes every active effect in a category
type EffectClear struct {
	Category string `json:"category"`
}

// RoomComponent carries one part of the room description
type RoomComponent struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// RoomIdentity carries the identifiers used to title the current room
type RoomIdentity struct {
	Subtitle string `json:"subtitle,omitempty"`
	RoomID   string `json:"room_id,omitempty"`
	UID      string `json:"uid,omitempty"`
}

// Roster replaces one named roster list (targets, players, group)
type Roster struct {
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

// Noop is a recognized tag with no effect on widget state
type Noop struct {
	Tag string `json:"tag,omitempty"`
}

func (Text) Kind() Kind          { return KindText }
func (Prompt) Kind() Kind        { return KindPrompt }
func (PushStream) Kind() Kind    { return KindPushStream }
func (PopStream) Kind() Kind     { return KindPopStream }
func (ClearStream) Kind() Kind   { return KindClearStream }
func (Progress) Kind() Kind      { return KindProgress }
func (Label) Kind() Kind         { return KindLabel }
func (Roundtime) Kind() Kind     { return KindRoundtime }
func (CastTime) Kind() Kind      { return KindCastTime }
func (Compass) Kind() Kind       { return KindCompass }
func (Injury) Kind() Kind        { return KindInjury }
func (LeftHand) Kind() Kind      { return KindLeftHand }
func (RightHand) Kind() Kind     { return KindRightHand }
func (SpellHand) Kind() Kind     { return KindSpellHand }
func (Indicator) Kind() Kind     { return KindIndicator }
func (EffectUpsert) Kind() Kind  { return KindEffectUpsert }
func (EffectClear) Kind() Kind   { return KindEffectClear }
func (RoomComponent) Kind() Kind { return KindRoomComponent }
func (RoomIdentity) Kind() Kind  { return KindRoomIdentity }
func (Roster) Kind() Kind        { return KindRoster }
func (Noop) Kind() Kind          { return KindNoop }

func (Text) event()          {}
func (Prompt) event()        {}
func (PushStream) event()    {}
func (PopStream) event()     {}
func (ClearStream) event()   {}
func (Progress) event()      {}
func (Label) event()         {}
func (Roundtime) event()     {}
func (CastTime) event()      {}
func (Compass) event()       {}
func (Injury) event()        {}
func (LeftHand) event()      {}
func (RightHand) event()     {}
func (SpellHand) event()     {}
func (Indicator) event()     {}
func (EffectUpsert) event()  {}
func (EffectClear) event()   {}
func (RoomComponent) event() {}
func (RoomIdentity) event()  {}
func (Roster) event()        {}
func (Noop) event()          {}

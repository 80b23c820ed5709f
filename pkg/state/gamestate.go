package state

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Room component buckets
const (
	ComponentDescription = "description"
	ComponentObjects     = "objects"
	ComponentPlayers     = "players"
	ComponentExits       = "exits"
)

// componentNames maps feed component ids to buckets
var componentNames = map[string]string{
	"room desc":          ComponentDescription,
	"room objs":          ComponentObjects,
	"room players":       ComponentPlayers,
	"room exits":         ComponentExits,
	ComponentDescription: ComponentDescription,
	ComponentObjects:     ComponentObjects,
	ComponentPlayers:     ComponentPlayers,
	ComponentExits:       ComponentExits,
}

// ComponentBucket returns the bucket a room component id belongs to
func ComponentBucket(name string) (string, bool) {
	bucket, ok := componentNames[strings.ToLower(strings.TrimSpace(name))]
	return bucket, ok
}

// Room holds what is known about the current room
type Room struct {
	Subtitle   string            `json:"subtitle,omitempty"`
	RoomID     string            `json:"room_id,omitempty"`
	UID        string            `json:"uid,omitempty"`
	Title      string            `json:"title,omitempty"`
	Components map[string]string `json:"components,omitempty"`
	Dirty      bool              `json:"-"` // set when components change; cleared by the consumer
}

// GameState is the non-widget state of a live session.
type GameState struct {
	ID         uuid.UUID           `json:"id"` // Unique ID per session
	Room       Room                `json:"room"`
	Rosters    map[string][]string `json:"rosters,omitempty"`
	Prompt     string              `json:"prompt,omitempty"`
	PromptTime int64               `json:"prompt_time,omitempty"`
}

func NewGameState() *GameState {
	return &GameState{
		ID:      uuid.New(),
		Room:    Room{Components: make(map[string]string)},
		Rosters: make(map[string][]string),
	}
}

// SetRoomComponent replaces one bucket of the room and marks the room dirty
func (gs *GameState) SetRoomComponent(bucket, value string) {
	if gs.Room.Components == nil {
		gs.Room.Components = make(map[string]string)
	}
	gs.Room.Components[bucket] = value
	gs.Room.Dirty = true
}

// RoomComponent returns the value of a bucket, empty when unset
func (gs *GameState) RoomComponent(bucket string) string {
	return gs.Room.Components[bucket]
}

// SetRoomIdentity stores the room identifiers and rebuilds the title
func (gs *GameState) SetRoomIdentity(subtitle, roomID, uid string) {
	gs.Room.Subtitle = cleanSubtitle(subtitle)
	gs.Room.RoomID = strings.TrimSpace(roomID)
	gs.Room.UID = strings.TrimSpace(uid)
	gs.Room.Title = RoomTitle(gs.Room.Subtitle, gs.Room.RoomID, gs.Room.UID)
	gs.Room.Dirty = true
}

// TakeRoomDirty reports whether the room changed since the last call and clears the flag
func (gs *GameState) TakeRoomDirty() bool {
	dirty := gs.Room.Dirty
	gs.Room.Dirty = false
	return dirty
}

// SetRoster replaces a roster list
func (gs *GameState) SetRoster(name string, entries []string) {
	if gs.Rosters == nil {
		gs.Rosters = make(map[string][]string)
	}
	gs.Rosters[name] = append([]string(nil), entries...)
}

// Roster returns a roster list
func (gs *GameState) Roster(name string) []string {
	return gs.Rosters[name]
}

// Clone returns a deep copy
func (gs *GameState) Clone() *GameState {
	c := *gs
	c.Room.Components = make(map[string]string, len(gs.Room.Components))
	for k, v := range gs.Room.Components {
		c.Room.Components[k] = v
	}
	c.Rosters = make(map[string][]string, len(gs.Rosters))
	for k, v := range gs.Rosters {
		c.Rosters[k] = append([]string(nil), v...)
	}
	return &c
}

// RoomTitle builds the room title from whichever identifiers are present
func RoomTitle(subtitle, roomID, uid string) string {
	switch {
	case subtitle != "" && roomID != "" && uid != "":
		return fmt.Sprintf("[%s - %s] (u%s)", subtitle, roomID, uid)
	case subtitle != "" && roomID != "":
		return fmt.Sprintf("[%s - %s]", subtitle, roomID)
	case subtitle != "" && uid != "":
		return fmt.Sprintf("[%s] (u%s)", subtitle, uid)
	case roomID != "" && uid != "":
		return fmt.Sprintf("[%s] (u%s)", roomID, uid)
	case subtitle != "":
		return fmt.Sprintf("[%s]", subtitle)
	case roomID != "":
		return fmt.Sprintf("[%s]", roomID)
	case uid != "":
		return fmt.Sprintf("(u%s)", uid)
	default:
		return ""
	}
}

// cleanSubtitle strips the " - [" decoration the game puts around room subtitles
func cleanSubtitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	return strings.TrimSpace(s)
}

package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LineFormat identifies how the payload of a queued line is encoded
type LineFormat string

const (
	// LineFormatRecorded is a JSON array of protocol events, as written by protocol.EncodeLine
	LineFormatRecorded LineFormat = "recorded"

	// LineFormatText is a plain text line with no markup
	LineFormatText LineFormat = "text"
)

// FeedLine is one line of a game feed waiting to be applied to a session
type FeedLine struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Seq        int64      `json:"seq"`
	Format     LineFormat `json:"format"`
	Line       string     `json:"line"`
	ReceivedAt time.Time  `json:"received_at"`
}

// MarshalJSON serializes the line to JSON for Redis storage
func (l *FeedLine) MarshalJSON() ([]byte, error) {
	type Alias FeedLine
	return json.Marshal(&struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		SessionID: l.SessionID.String(),
		Alias:     (*Alias)(l),
	})
}

// UnmarshalJSON deserializes the line from JSON in Redis
func (l *FeedLine) UnmarshalJSON(data []byte) error {
	type Alias FeedLine
	aux := &struct {
		SessionID string `json:"session_id"`
		*Alias
	}{
		Alias: (*Alias)(l),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	sessionID, err := uuid.Parse(aux.SessionID)
	if err != nil {
		return err
	}

	l.SessionID = sessionID
	if l.Format == "" {
		l.Format = LineFormatRecorded
	}
	return nil
}

// ToJSON converts the line to JSON bytes for Redis
func (l *FeedLine) ToJSON() ([]byte, error) {
	return json.Marshal(l)
}

// FromJSON parses a line from JSON bytes
func FromJSON(data []byte) (*FeedLine, error) {
	var line FeedLine
	if err := json.Unmarshal(data, &line); err != nil {
		return nil, err
	}
	return &line, nil
}

package queue

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedLine_JSON(t *testing.T) {
	line := &FeedLine{
		SessionID:  uuid.New(),
		Seq:        7,
		Format:     LineFormatText,
		Line:       "Obvious paths: north.",
		ReceivedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := line.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"session_id":"`+line.SessionID.String()+`"`)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, line, decoded)
}

func TestFromJSON_DefaultsFormat(t *testing.T) {
	id := uuid.New()
	decoded, err := FromJSON([]byte(`{"session_id":"` + id.String() + `","seq":1,"line":"[]"}`))
	require.NoError(t, err)
	assert.Equal(t, LineFormatRecorded, decoded.Format)
}

func TestFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "hello"},
		{name: "bad session id", input: `{"session_id":"abc","line":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromJSON([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

package protocol

import (
	"encoding/json"
	"fmt"
)

// Parser turns one raw feed line into the events it carries, in order.
// Implementations never fail: malformed input degrades to plain text or is dropped.
type Parser interface {
	ParseLine(line string) []Event
}

// JSONParser reads recorded feeds where every line is a JSON array of event
// envelopes, as written by EncodeLine. Lines that are not valid recordings
// are passed through as plain text.
type JSONParser struct{}

// ParseLine implements Parser
func (JSONParser) ParseLine(line string) []Event {
	events, err := DecodeLine([]byte(line))
	if err != nil {
		return []Event{Text{Content: line}}
	}
	return events
}

// EncodeLine serializes the events of one feed line as a JSON array of envelopes
func EncodeLine(events []Event) ([]byte, error) {
	envelopes := make([]map[string]json.RawMessage, 0, len(events))
	for _, ev := range events {
		env, err := encodeEvent(ev)
		if err != nil {
			return nil, err
		}
		envelopes = append(envelopes, env)
	}
	return json.Marshal(envelopes)
}

func encodeEvent(ev Event) (map[string]json.RawMessage, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", ev.Kind(), err)
	}
	env := make(map[string]json.RawMessage)
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to build %s envelope: %w", ev.Kind(), err)
	}
	kind, _ := json.Marshal(ev.Kind())
	env["type"] = kind
	return env, nil
}

// DecodeLine parses a JSON array of event envelopes. Envelopes with an unknown
// type decode to Noop so newer recordings still replay.
func DecodeLine(data []byte) ([]Event, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to parse event line: %w", err)
	}
	if raws == nil {
		return nil, fmt.Errorf("event line is not an array")
	}

	events := make([]Event, 0, len(raws))
	for i, raw := range raws {
		ev, err := decodeEvent(raw)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeEvent(raw json.RawMessage) (Event, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("failed to read event type: %w", err)
	}

	switch head.Type {
	case KindText:
		return decodeAs[Text](raw)
	case KindPrompt:
		return decodeAs[Prompt](raw)
	case KindPushStream:
		return decodeAs[PushStream](raw)
	case KindPopStream:
		return PopStream{}, nil
	case KindClearStream:
		return decodeAs[ClearStream](raw)
	case KindProgress:
		return decodeAs[Progress](raw)
	case KindLabel:
		return decodeAs[Label](raw)
	case KindRoundtime:
		return decodeAs[Roundtime](raw)
	case KindCastTime:
		return decodeAs[CastTime](raw)
	case KindCompass:
		return decodeAs[Compass](raw)
	case KindInjury:
		return decodeAs[Injury](raw)
	case KindLeftHand:
		return decodeAs[LeftHand](raw)
	case KindRightHand:
		return decodeAs[RightHand](raw)
	case KindSpellHand:
		return decodeAs[SpellHand](raw)
	case KindIndicator:
		return decodeAs[Indicator](raw)
	case KindEffectUpsert:
		return decodeAs[EffectUpsert](raw)
	case KindEffectClear:
		return decodeAs[EffectClear](raw)
	case KindRoomComponent:
		return decodeAs[RoomComponent](raw)
	case KindRoomIdentity:
		return decodeAs[RoomIdentity](raw)
	case KindRoster:
		return decodeAs[Roster](raw)
	case KindNoop:
		return decodeAs[Noop](raw)
	default:
		return Noop{Tag: string(head.Type)}, nil
	}
}

func decodeAs[T Event](raw json.RawMessage) (Event, error) {
	var ev T
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode %s event: %w", ev.Kind(), err)
	}
	return ev, nil
}

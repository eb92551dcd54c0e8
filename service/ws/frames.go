package ws

import (
	"encoding/json"

	decode "TDProject/tools/decode"

	"github.com/pkg/errors"
)

// Event names on the wire. Client→server requests end in _request;
// everything else is server-emitted.
const (
	EventStateLoaded      = "game_state_loaded"
	EventStartWaveRequest = "start_wave_request"
	EventWaveStarted      = "wave_started"
	EventBuildTowerReq    = "build_tower_request"
	EventTowerPlaced      = "tower_placed"
	EventPing             = "ping"
	EventPong             = "pong"
)

// Frame is the tagged wire envelope: {"type": "...", "data": {...}}.
// Data stays generic here; handlers decode it into their own payload
// structs and drop anything malformed.
type Frame struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func ParseFrame(raw []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrap(err, "unmarshal frame")
	}
	if f.Type == "" {
		return nil, errors.New("frame missing type")
	}
	return &f, nil
}

// MarshalFrame builds an outgoing frame around any payload.
func MarshalFrame(eventType string, data any) ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{Type: eventType, Data: data})
}

// WavePayload is the schema of start_wave_request.
type WavePayload struct {
	WaveNumber int `json:"wave_number"`
}

// ExtractWavePayload validates the wave request shape; a wave number
// below 1 (including a missing field) is malformed.
func ExtractWavePayload(f *Frame) (*WavePayload, error) {
	p, err := decode.DecodeMap[WavePayload](f.Data)
	if err != nil {
		return nil, err
	}
	if p.WaveNumber < 1 {
		return nil, errors.Errorf("invalid wave_number %d", p.WaveNumber)
	}
	return p, nil
}

// logSample truncates raw input for refusal logs.
func logSample(data []byte) []byte {
	if len(data) > 256 {
		return data[:256]
	}
	return data
}

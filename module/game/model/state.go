package model

import "encoding/json"

// Default snapshot values for a player's first connection.
const (
	DefaultWaveNumber  = 1
	DefaultResources   = 100
	DefaultPlayerLives = 20
)

// Snapshot is the persisted per-player game progress. TowersData is an
// opaque client-owned blob; the server never interprets it.
type Snapshot struct {
	PlayerID    int64           `json:"player_id"`
	WaveNumber  int             `json:"wave_number"`
	Resources   int             `json:"resources"`
	PlayerLives int             `json:"player_lives"`
	TowersData  json.RawMessage `json:"towers_data"`
}

func NewDefault(playerID int64) *Snapshot {
	return &Snapshot{
		PlayerID:    playerID,
		WaveNumber:  DefaultWaveNumber,
		Resources:   DefaultResources,
		PlayerLives: DefaultPlayerLives,
	}
}

// SaveRequest is a partial update: nil fields keep their stored value.
type SaveRequest struct {
	PlayerID    int64           `json:"player_id"`
	WaveNumber  *int            `json:"wave_number"`
	Resources   *int            `json:"resources"`
	PlayerLives *int            `json:"player_lives"`
	TowersData  json.RawMessage `json:"towers_data"`
}

// Apply merges a partial save onto the snapshot.
func (s *Snapshot) Apply(req *SaveRequest) {
	if req.WaveNumber != nil {
		s.WaveNumber = *req.WaveNumber
	}
	if req.Resources != nil {
		s.Resources = *req.Resources
	}
	if req.PlayerLives != nil {
		s.PlayerLives = *req.PlayerLives
	}
	if len(req.TowersData) > 0 {
		s.TowersData = req.TowersData
	}
}

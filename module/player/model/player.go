package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Player is the credential record: identity plus password hash.
// Game progress lives in game_state, 1:1 by player id.
type Player struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	HighScore    int64     `json:"high_score"`
	CreatedAt    time.Time `json:"created_at"`
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Player) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

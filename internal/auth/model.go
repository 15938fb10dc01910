package auth

import "time"

type Session struct {
	ID        string    `json:"id"`
	PlayerID  int64     `json:"playerId"`
	TokenHash string    `json:"tokenHash"`
	CreatedAt time.Time `json:"createdAt"`
	LastSeen  time.Time `json:"lastSeen"`
	ExpiresAt time.Time `json:"expiresAt"`
}

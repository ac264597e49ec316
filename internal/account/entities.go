package account

import "time"

// User is a marketplace account.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// GameAccount is the user's external identifier in one game, needed by the
// seller to deliver a purchased item.
type GameAccount struct {
	GameType string `json:"gameType" db:"game_type"`
	GameID   string `json:"gameId" db:"game_id"`
}

// Profile is a user with their game accounts resolved.
type Profile struct {
	User
	GameAccounts []GameAccount `json:"gameIds"`
}

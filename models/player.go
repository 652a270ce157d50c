package models

import (
	"time"
)

// Player represents a chat user with a currency balance
type Player struct {
	DiscordID int64     `db:"discord_id"`
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

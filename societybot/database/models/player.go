package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Player is the per-guild account of a user. A user has one Player row per
// guild; balances never cross guilds.
type Player struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID      int64 `bun:"id,pk,autoincrement"`
	UserID  int64 `bun:"user_id,notnull"`
	GuildID int64 `bun:"guild_id,notnull"`

	Money     float64 `bun:"money,notnull,default:0"`
	Debt      float64 `bun:"debt,notnull,default:0"`
	TaxesOwed float64 `bun:"taxes_owed,notnull,default:0"`

	Hunger int    `bun:"hunger,notnull,default:100"`
	Thirst int    `bun:"thirst,notnull,default:100"`
	Health int    `bun:"health,notnull,default:100"`
	Job    string `bun:"job"`

	// Set when the player works for a company.
	CompanyEntrepreneurID *int64 `bun:"company_entrepreneur_id"`

	WorkCooldownUntil time.Time `bun:"work_cooldown_until"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

const (
	DefaultPlayerMoney  = 100.0
	DefaultPlayerHunger = 100
	DefaultPlayerThirst = 100
	DefaultPlayerHealth = 100
)

// NewDefaultPlayer returns the account every user starts with on first
// reference in a guild.
func NewDefaultPlayer(userID, guildID int64) *Player {
	now := time.Now()
	return &Player{
		UserID:    userID,
		GuildID:   guildID,
		Money:     DefaultPlayerMoney,
		Hunger:    DefaultPlayerHunger,
		Thirst:    DefaultPlayerThirst,
		Health:    DefaultPlayerHealth,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

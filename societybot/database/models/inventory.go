package models

import (
	"time"

	"github.com/uptrace/bun"
)

// InventoryLine is one stack of an item held by a player or a company.
// A row exists only while amount > 0. Durability is carried per stack: one
// unit of the stack wears down before the next one is broken out.
type InventoryLine struct {
	bun.BaseModel `bun:"table:inventory_lines,alias:inv"`

	ID        int64  `bun:"id,pk,autoincrement"`
	GuildID   int64  `bun:"guild_id,notnull"`
	OwnerID   int64  `bun:"owner_id,notnull"`
	IsCompany bool   `bun:"is_company,notnull,default:false"`
	ItemTag   string `bun:"item_tag,notnull"`

	Amount     int  `bun:"amount,notnull"`
	Durability *int `bun:"durability"`

	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

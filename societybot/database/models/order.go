package models

import (
	"time"

	"github.com/uptrace/bun"
)

// OrderSide distinguishes standing buy orders from standing sell orders.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// Opposite returns the side a request on this side matches against.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// Order is a standing offer to buy or sell a fixed quantity of an item at a
// fixed unit price. There is at most one live order per
// (guild, owner, item, unit_price, is_company, side) key; placing another at
// the same price merges into it. The autoincrement ID doubles as the
// insertion-order tiebreaker during matching.
type Order struct {
	bun.BaseModel `bun:"table:orders,alias:o"`

	ID        int64     `bun:"id,pk,autoincrement"`
	GuildID   int64     `bun:"guild_id,notnull"`
	OwnerID   int64     `bun:"owner_id,notnull"`
	IsCompany bool      `bun:"is_company,notnull,default:false"`
	Side      OrderSide `bun:"side,notnull"`
	ItemTag   string    `bun:"item_tag,notnull"`

	Amount    int       `bun:"amount,notnull"`
	UnitPrice float64   `bun:"unit_price,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired reports whether the order is invisible to matching at the given
// time.
func (o *Order) Expired(now time.Time) bool {
	return !o.ExpiresAt.After(now)
}

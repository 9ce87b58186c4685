package models

import (
	"math"

	"github.com/uptrace/bun"
)

// MarketItem is the NPC market-maker's state for one item in one guild:
// the price band it quotes and the finite stockpile it sells from. The NPC
// buys at MinPrice and sells at MaxPrice.
type MarketItem struct {
	bun.BaseModel `bun:"table:market_items,alias:m"`

	ID      int64  `bun:"id,pk,autoincrement"`
	GuildID int64  `bun:"guild_id,notnull"`
	ItemTag string `bun:"item_tag,notnull"`

	MinPrice  float64 `bun:"min_price,notnull"`
	MaxPrice  float64 `bun:"max_price,notnull"`
	Stockpile int     `bun:"stockpile,notnull"`
}

// SeedMarketItem returns the NPC state an item starts with on first
// reference in a guild: a band of 75%..125% around the base price and a
// stockpile worth roughly $5000 at base price.
func SeedMarketItem(item *Item, guildID int64) *MarketItem {
	return &MarketItem{
		GuildID:   guildID,
		ItemTag:   item.ItemTag,
		MinPrice:  math.Round(item.BasePrice*0.75*100) / 100,
		MaxPrice:  math.Round(item.BasePrice*1.25*100) / 100,
		Stockpile: int(math.Floor(5000 / item.BasePrice)),
	}
}

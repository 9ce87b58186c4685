package models

import (
	"github.com/uptrace/bun"
)

// Item is a catalog entry. The catalog is immutable at runtime; rows are
// seeded once and only read afterwards. Ingredients are stored as
// "Tag:qty,Tag:qty" for compatibility with the legacy schema and parsed once
// by the catalog package.
type Item struct {
	bun.BaseModel `bun:"table:items,alias:i"`

	ItemTag     string  `bun:"item_tag,pk"`
	Producible  bool    `bun:"producible,notnull,default:false"`
	Ingredients string  `bun:"ingredients"`
	Worksteps   int     `bun:"worksteps,notnull,default:0"`
	BasePrice   float64 `bun:"base_price,notnull"`
	Durability  *int    `bun:"durability"`
}

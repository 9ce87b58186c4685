package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Government is the per-guild fiscal authority: it sets the tax rate,
// collects into the treasury and funds interventions.
type Government struct {
	bun.BaseModel `bun:"table:governments,alias:g"`

	GuildID      int64     `bun:"guild_id,pk"`
	TaxRate      float64   `bun:"tax_rate,notnull,default:0"`
	InterestRate float64   `bun:"interest_rate,notnull,default:0"`
	Treasury     float64   `bun:"treasury,notnull,default:0"`
	GamblingPool float64   `bun:"gambling_pool,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

const (
	DefaultTaxRate      = 0.10
	DefaultInterestRate = 0.30
)

// NewDefaultGovernment returns the government a guild starts with on first
// taxable transaction.
func NewDefaultGovernment(guildID int64) *Government {
	return &Government{
		GuildID:      guildID,
		TaxRate:      DefaultTaxRate,
		InterestRate: DefaultInterestRate,
		CreatedAt:    time.Now(),
	}
}

// GdpEntry accumulates the gross value of all taxable transactions of one
// guild on one calendar day. Rows are only ever incremented.
type GdpEntry struct {
	bun.BaseModel `bun:"table:gdp_entries,alias:gdp"`

	ID      int64   `bun:"id,pk,autoincrement"`
	GuildID int64   `bun:"guild_id,notnull"`
	Day     string  `bun:"day,notnull"`
	Value   float64 `bun:"value,notnull,default:0"`
}

// GdpDay formats a timestamp as the calendar-day key used by GdpEntry.
func GdpDay(t time.Time) string {
	return t.Format("2006-01-02")
}

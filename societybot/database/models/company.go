package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Company is a player-owned business, keyed by its entrepreneur within a
// guild. Producible items and the per-slot workstep counters are stored as
// comma-joined strings for compatibility with the legacy schema; use the
// typed accessors instead of re-parsing at call sites.
type Company struct {
	bun.BaseModel `bun:"table:companies,alias:c"`

	ID             int64 `bun:"id,pk,autoincrement"`
	EntrepreneurID int64 `bun:"entrepreneur_id,notnull"`
	GuildID        int64 `bun:"guild_id,notnull"`

	Name      string  `bun:"name,notnull"`
	Capital   float64 `bun:"capital,notnull,default:0"`
	Wage      float64 `bun:"wage,notnull,default:0"`
	TaxesOwed float64 `bun:"taxes_owed,notnull,default:0"`

	ProducibleItems string `bun:"producible_items"`
	Worksteps       string `bun:"worksteps"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// MaxProductionSlots is the number of items a company can configure for
// production at once.
const MaxProductionSlots = 5

const (
	CompanyCreationFee    = 1000.0
	DefaultCompanyCapital = 900.0
	DefaultCompanyWage    = 100.0
)

// ProducibleList returns the configured production slots in order.
func (c *Company) ProducibleList() []string {
	if c.ProducibleItems == "" {
		return nil
	}
	return strings.Split(c.ProducibleItems, ",")
}

// WorkstepList returns the remaining workstep counter per production slot.
// Slots beyond the stored list read as zero.
func (c *Company) WorkstepList() []int {
	steps := make([]int, MaxProductionSlots)
	if c.Worksteps == "" {
		return steps
	}
	for i, raw := range strings.Split(c.Worksteps, ",") {
		if i >= MaxProductionSlots {
			break
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		steps[i] = n
	}
	return steps
}

// SetProducibleList replaces the production slots and resets every workstep
// counter, matching the behavior of reconfiguring the factory floor.
func (c *Company) SetProducibleList(tags []string) {
	if len(tags) > MaxProductionSlots {
		tags = tags[:MaxProductionSlots]
	}
	c.ProducibleItems = strings.Join(tags, ",")
	c.SetWorkstepList(make([]int, MaxProductionSlots))
}

// SetWorkstepList stores the per-slot counters.
func (c *Company) SetWorkstepList(steps []int) {
	parts := make([]string, len(steps))
	for i, n := range steps {
		parts[i] = strconv.Itoa(n)
	}
	c.Worksteps = strings.Join(parts, ",")
}

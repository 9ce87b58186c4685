// Package production implements company manufacturing: multi-step builds
// driven by workstep counters, atomic ingredient consumption, and the shared
// tool-durability model.
package production

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

type Pipeline struct {
	companies repositories.CompanyRepository
	inventory repositories.InventoryRepository
	catalog   *catalog.Catalog

	// Serializes production per company so two workers cannot consume the
	// same ingredients or double-emit a unit.
	locks economy.KeyedMutex
}

func New(
	companies repositories.CompanyRepository,
	inventory repositories.InventoryRepository,
	cat *catalog.Catalog,
) *Pipeline {
	return &Pipeline{companies: companies, inventory: inventory, catalog: cat}
}

// Result reports what one workstep did.
type Result struct {
	ItemTag        string
	Started        bool // a new build began, ingredients were consumed
	Finished       bool // a finished unit entered company inventory
	RemainingSteps int
}

// Advance performs one workstep on the company's floor for the given item.
// When the item's counter is at zero a new build starts: all ingredients must
// be present in company inventory and are consumed atomically, and the
// counter is set to the catalog workstep count (minimum 1). Every call then
// decrements the counter; at zero, exactly one finished unit is emitted.
func (p *Pipeline) Advance(ctx context.Context, guildID, entrepreneurID int64, itemTag string) (*Result, error) {
	unlock := p.locks.Lock(fmt.Sprintf("%d:%d", guildID, entrepreneurID))
	defer unlock()

	company, err := p.companies.GetByEntrepreneur(ctx, guildID, entrepreneurID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("company of %d: %w", entrepreneurID, economy.ErrCounterpartyMissing)
		}
		return nil, err
	}

	item, ok := p.catalog.Get(itemTag)
	if !ok {
		return nil, fmt.Errorf("item %q: %w", itemTag, economy.ErrUnknownItem)
	}
	if !item.Producible {
		return nil, fmt.Errorf("%s is not producible: %w", itemTag, economy.ErrNotAllowed)
	}

	slot := -1
	for i, tag := range company.ProducibleList() {
		if tag == itemTag {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, fmt.Errorf("%s is not configured for production: %w", itemTag, economy.ErrNotAllowed)
	}

	steps := company.WorkstepList()
	result := &Result{ItemTag: itemTag}

	if steps[slot] <= 0 {
		ingredients, err := p.catalog.Ingredients(item)
		if err != nil {
			return nil, fmt.Errorf("bad ingredient list for %s: %w", itemTag, err)
		}
		// Check everything before consuming anything.
		for _, ing := range ingredients {
			line, err := p.inventory.Get(ctx, guildID, entrepreneurID, true, ing.Tag)
			if err != nil || line.Amount < ing.Qty {
				return nil, fmt.Errorf("building %s needs %dx %s: %w",
					itemTag, ing.Qty, ing.Tag, economy.ErrInsufficientResources)
			}
		}
		for _, ing := range ingredients {
			if err := p.inventory.Remove(ctx, guildID, entrepreneurID, true, ing.Tag, ing.Qty); err != nil {
				return nil, err
			}
		}

		steps[slot] = item.Worksteps
		if steps[slot] < 1 {
			steps[slot] = 1
		}
		result.Started = true
	}

	steps[slot]--
	company.SetWorkstepList(steps)
	if err := p.companies.Update(ctx, company); err != nil {
		return nil, err
	}

	if steps[slot] <= 0 {
		var dur *int
		if item.Durability != nil {
			d := *item.Durability
			dur = &d
		}
		if err := p.inventory.Add(ctx, guildID, entrepreneurID, true, itemTag, 1, dur); err != nil {
			return nil, err
		}
		result.Finished = true
		slog.Debug("Production finished a unit",
			slog.String("type", "sys"),
			slog.Int64("guild_id", guildID),
			slog.Int64("entrepreneur_id", entrepreneurID),
			slog.String("item", itemTag))
	}

	result.RemainingSteps = steps[slot]
	return result, nil
}

// UseTool wears the owner's tool stack by one use: durability decrements,
// and at zero one unit of the stack breaks and durability resets to the
// catalog value (or becomes permanently nil when the catalog has none).
// Indestructible stacks (nil durability) are a no-op. Returns the stack's
// durability after the use, nil when indestructible.
func (p *Pipeline) UseTool(ctx context.Context, owner economy.AccountRef, toolTag string) (*int, error) {
	line, err := p.inventory.Get(ctx, owner.GuildID, owner.OwnerID, owner.IsCompany, toolTag)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("no %s held: %w", toolTag, economy.ErrInsufficientResources)
		}
		return nil, err
	}
	if line.Durability == nil {
		return nil, nil
	}

	*line.Durability--
	if *line.Durability <= 0 {
		line.Amount--
		if line.Amount <= 0 {
			if err := p.inventory.Delete(ctx, line); err != nil {
				return nil, err
			}
			zero := 0
			return &zero, nil
		}
		if item, ok := p.catalog.Get(toolTag); ok && item.Durability != nil {
			d := *item.Durability
			line.Durability = &d
		} else {
			line.Durability = nil
		}
	}

	if err := p.inventory.Update(ctx, line); err != nil {
		return nil, err
	}
	if line.Durability == nil {
		return nil, nil
	}
	d := *line.Durability
	return &d, nil
}

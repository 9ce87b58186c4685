// Package npcmarket implements the NPC market-maker: a per-(guild, item)
// price band with a finite stockpile, acting as counterparty of last resort.
// The NPC sells at MaxPrice, buys at MinPrice, and moves its band linearly
// with traded volume.
package npcmarket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"golang.org/x/sync/singleflight"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

// driftPerUnit is the price-impact factor per traded unit: a fill of q moves
// both band edges by 1 ± 0.005·q.
const driftPerUnit = 0.005

// priceFloor keeps the band from drifting to zero or below on long
// one-directional sell pressure.
const priceFloor = 0.01

type Market struct {
	catalog *catalog.Catalog
	market  repositories.MarketRepository

	// Collapses concurrent lazy seeding of the same (guild, item).
	seed singleflight.Group
	// Serializes read-modify-write of one market row.
	locks economy.KeyedMutex
}

func New(cat *catalog.Catalog, market repositories.MarketRepository) *Market {
	return &Market{catalog: cat, market: market}
}

func marketKey(guildID int64, itemTag string) string {
	return fmt.Sprintf("%d:%s", guildID, itemTag)
}

// Quote returns the NPC state for an item, seeding it on first reference:
// a 75%..125% band around the catalog base price and a stockpile of
// floor(5000 / base_price).
func (m *Market) Quote(ctx context.Context, guildID int64, itemTag string) (*models.MarketItem, error) {
	state, err := m.market.Get(ctx, guildID, itemTag)
	if err == nil {
		return state, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	item, ok := m.catalog.Get(itemTag)
	if !ok {
		return nil, fmt.Errorf("quote for %q: %w", itemTag, economy.ErrUnknownItem)
	}

	_, err, _ = m.seed.Do(marketKey(guildID, itemTag), func() (interface{}, error) {
		// Create is an insert-if-absent, so a concurrent seed from another
		// process is harmless.
		if err := m.market.Create(ctx, models.SeedMarketItem(item, guildID)); err != nil {
			return nil, fmt.Errorf("failed to seed market for %s: %w", itemTag, err)
		}
		slog.Debug("Seeded NPC market",
			slog.String("type", "sys"),
			slog.Int64("guild_id", guildID),
			slog.String("item", itemTag))
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	return m.market.Get(ctx, guildID, itemTag)
}

// BuyFromNPC fills a purchase from the NPC stockpile at MaxPrice. The fill
// is min(qty, stockpile), further clamped to floor(funds / MaxPrice) when
// the buyer cannot afford the full fill. Returns the filled quantity and the
// unit price charged; a zero fill has no side effects.
func (m *Market) BuyFromNPC(ctx context.Context, guildID int64, itemTag string, qty int, funds float64) (int, float64, error) {
	if qty <= 0 {
		return 0, 0, fmt.Errorf("npc buy of %d: %w", qty, economy.ErrInvalidInput)
	}
	unlock := m.locks.Lock(marketKey(guildID, itemTag))
	defer unlock()

	state, err := m.Quote(ctx, guildID, itemTag)
	if err != nil {
		return 0, 0, err
	}

	price := state.MaxPrice
	fill := qty
	if state.Stockpile < fill {
		fill = state.Stockpile
	}
	if affordable := int(math.Floor(funds / price)); affordable < fill {
		fill = affordable
	}
	if fill <= 0 {
		return 0, price, nil
	}

	state.Stockpile -= fill
	drift(state, fill, true)
	if err := m.market.Update(ctx, state); err != nil {
		return 0, 0, fmt.Errorf("failed to update market after npc buy: %w", err)
	}
	return fill, price, nil
}

// SellToNPC fills a sale to the NPC at MinPrice. The NPC has unlimited money,
// so the whole quantity always fills and the stockpile grows by it.
func (m *Market) SellToNPC(ctx context.Context, guildID int64, itemTag string, qty int) (int, float64, error) {
	if qty <= 0 {
		return 0, 0, fmt.Errorf("npc sell of %d: %w", qty, economy.ErrInvalidInput)
	}
	unlock := m.locks.Lock(marketKey(guildID, itemTag))
	defer unlock()

	state, err := m.Quote(ctx, guildID, itemTag)
	if err != nil {
		return 0, 0, err
	}

	price := state.MinPrice
	state.Stockpile += qty
	drift(state, qty, false)
	if err := m.market.Update(ctx, state); err != nil {
		return 0, 0, fmt.Errorf("failed to update market after npc sell: %w", err)
	}
	return qty, price, nil
}

// drift applies the linear price-impact model after a fill of q units and
// re-establishes the band invariants: MinPrice ≥ 0.01 and
// MaxPrice ≥ MinPrice.
func drift(state *models.MarketItem, q int, up bool) {
	factor := 1 + driftPerUnit*float64(q)
	if !up {
		factor = 1 - driftPerUnit*float64(q)
	}
	state.MinPrice = economy.Round2(state.MinPrice * factor)
	state.MaxPrice = economy.Round2(state.MaxPrice * factor)
	if state.MinPrice < priceFloor {
		state.MinPrice = priceFloor
	}
	if state.MaxPrice < state.MinPrice {
		state.MaxPrice = state.MinPrice
	}
}

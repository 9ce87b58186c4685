// Package orderbook stores standing buy/sell orders and matches incoming
// requests against them in price priority. Settlement (money, inventory,
// notifications) is supplied by the caller through callbacks; the book only
// decides who trades with whom, at what price, for how much.
package orderbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

// OrderTTL is how long a residual order stays live before lazy expiry.
const OrderTTL = 72 * time.Hour

type Book struct {
	orders repositories.OrderRepository
	now    func() time.Time
}

func New(orders repositories.OrderRepository) *Book {
	return &Book{orders: orders, now: time.Now}
}

// PlaceOrMerge inserts the order, or — when the owner already has a live
// order at the same (side, item, price) key — merges the amount into it and
// refreshes its expiry. There is never a second row at the same key.
func (b *Book) PlaceOrMerge(ctx context.Context, order *models.Order) (bool, error) {
	existing, err := b.orders.GetOwn(ctx, order.GuildID, order.OwnerID, order.IsCompany,
		order.Side, order.ItemTag, order.UnitPrice)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			return false, err
		}
		if err := b.orders.Create(ctx, order); err != nil {
			return false, fmt.Errorf("failed to place order: %w", err)
		}
		return false, nil
	}

	existing.Amount += order.Amount
	existing.ExpiresAt = order.ExpiresAt
	if err := b.orders.Update(ctx, existing); err != nil {
		return false, fmt.Errorf("failed to merge order: %w", err)
	}
	*order = *existing
	return true, nil
}

// Own returns the requester's live order at exactly this key, if any.
func (b *Book) Own(ctx context.Context, owner economy.AccountRef, side models.OrderSide, itemTag string, unitPrice float64) (*models.Order, error) {
	return b.orders.GetOwn(ctx, owner.GuildID, owner.OwnerID, owner.IsCompany, side, itemTag, unitPrice)
}

// Fill is one settled match against a standing order.
type Fill struct {
	Counterparty economy.AccountRef
	Qty          int
	UnitPrice    float64
}

func (f Fill) Total() float64 {
	return economy.Round2(float64(f.Qty) * f.UnitPrice)
}

// Request describes one side of a trade to match against the book.
type Request struct {
	Requester economy.AccountRef
	Side      models.OrderSide // side of the request, not of the candidates
	ItemTag   string
	Limit     float64
	Qty       int
}

// Callbacks supplies the settlement collaborators. PayerFunds returns the
// paying side's spendable money for the next candidate: the requester's for a
// buy request, the candidate owner's for a sell request. DeliverableStock,
// when set, returns how many units the delivering side actually holds, so an
// unbacked sell order cannot conjure goods; nil means unlimited. Settle
// performs the irrevocable effects of one fill; once it succeeds the order
// decrement follows unconditionally.
type Callbacks struct {
	PayerFunds       func(ctx context.Context, counterparty economy.AccountRef) (float64, error)
	OwnerExists      func(ctx context.Context, owner economy.AccountRef) (bool, error)
	DeliverableStock func(ctx context.Context, counterparty economy.AccountRef) (int, error)
	Settle           func(ctx context.Context, fill Fill) error
}

// Match visits the opposing side's live orders in price priority — cheapest
// ask first for a buy, best bid first for a sell, ties oldest first — and
// settles fills until the request is satisfied, funds run out, or candidates
// do. Per-candidate quantity is min(remaining, candidate.Amount), clamped to
// floor(funds / price); a clamp to zero ends the scan, since under the
// monotonic ordering no later candidate is affordable either. Stale orders
// whose owner account vanished are deleted and skipped without charge.
//
// The caller must hold the (guild, item) matching lock for the duration.
func (b *Book) Match(ctx context.Context, req Request, cb Callbacks) ([]Fill, error) {
	if req.Qty <= 0 {
		return nil, fmt.Errorf("match of %d units: %w", req.Qty, economy.ErrInvalidInput)
	}

	now := b.now()
	if _, err := b.orders.DeleteExpired(ctx, req.Requester.GuildID, req.ItemTag, now); err != nil {
		return nil, fmt.Errorf("failed to sweep expired orders: %w", err)
	}

	candidates, err := b.orders.Matchable(ctx, req.Requester.GuildID, req.Side.Opposite(), req.ItemTag, req.Limit, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load matchable orders: %w", err)
	}

	var fills []Fill
	remaining := req.Qty
	for _, cand := range candidates {
		if remaining == 0 {
			break
		}

		owner := economy.AccountRef{GuildID: cand.GuildID, OwnerID: cand.OwnerID, IsCompany: cand.IsCompany}
		if owner == req.Requester {
			continue // own standing order, never self-trade
		}

		exists, err := cb.OwnerExists(ctx, owner)
		if err != nil {
			return fills, err
		}
		if !exists {
			if err := b.orders.Delete(ctx, cand.ID); err != nil {
				return fills, fmt.Errorf("failed to delete stale order %d: %w", cand.ID, err)
			}
			slog.Debug("Deleted stale order",
				slog.String("type", "sys"),
				slog.Int64("order_id", cand.ID),
				slog.String("owner", owner.Key()))
			continue
		}

		qty := remaining
		if cand.Amount < qty {
			qty = cand.Amount
		}
		if cb.DeliverableStock != nil {
			stock, err := cb.DeliverableStock(ctx, owner)
			if err != nil {
				return fills, err
			}
			if stock <= 0 {
				// The order's owner no longer holds the goods backing it.
				if err := b.orders.Delete(ctx, cand.ID); err != nil {
					return fills, fmt.Errorf("failed to delete unbacked order %d: %w", cand.ID, err)
				}
				continue
			}
			if stock < qty {
				qty = stock
			}
		}
		funds, err := cb.PayerFunds(ctx, owner)
		if err != nil {
			return fills, err
		}
		if affordable := int(math.Floor(funds / cand.UnitPrice)); affordable < qty {
			qty = affordable
		}
		if qty <= 0 {
			break // payer exhausted; later candidates only cost more
		}

		fill := Fill{Counterparty: owner, Qty: qty, UnitPrice: cand.UnitPrice}
		if err := cb.Settle(ctx, fill); err != nil {
			return fills, fmt.Errorf("failed to settle fill of %d %s: %w", qty, req.ItemTag, err)
		}

		cand.Amount -= qty
		if cand.Amount <= 0 {
			err = b.orders.Delete(ctx, cand.ID)
		} else {
			err = b.orders.Update(ctx, cand)
		}
		if err != nil {
			return fills, fmt.Errorf("failed to decrement order %d: %w", cand.ID, err)
		}

		fills = append(fills, fill)
		remaining -= qty
	}
	return fills, nil
}

// Remove deletes the owner's live orders for an item, optionally narrowed to
// one price point, and reports how many went away.
func (b *Book) Remove(ctx context.Context, owner economy.AccountRef, itemTag string, unitPrice *float64) (int64, error) {
	return b.orders.DeleteOwn(ctx, owner.GuildID, owner.OwnerID, owner.IsCompany, itemTag, unitPrice)
}

// ListByOwner returns the owner's live orders.
func (b *Book) ListByOwner(ctx context.Context, owner economy.AccountRef) ([]*models.Order, error) {
	return b.orders.ListByOwner(ctx, owner.GuildID, owner.OwnerID, owner.IsCompany, b.now())
}

// ListByItem returns all live orders for an item in a guild.
func (b *Book) ListByItem(ctx context.Context, guildID int64, itemTag string) ([]*models.Order, error) {
	return b.orders.ListByItem(ctx, guildID, itemTag, b.now())
}

// ExpireSweep deletes the item's expired orders.
func (b *Book) ExpireSweep(ctx context.Context, guildID int64, itemTag string) (int64, error) {
	return b.orders.DeleteExpired(ctx, guildID, itemTag, b.now())
}

// Package trade orchestrates a buy or sell request: merge into an existing
// order, match against the opposing book side, fall back to the NPC market,
// and persist any remainder as a standing order. All money moves through the
// ledger, all goods through the inventory repository.
package trade

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
	"github.com/ellavondegurechaff/societybot/societybot/economy/ledger"
	"github.com/ellavondegurechaff/societybot/societybot/economy/npcmarket"
	"github.com/ellavondegurechaff/societybot/societybot/economy/orderbook"
)

// UseNPCPrice is the sentinel unit price meaning "trade at whatever the NPC
// quotes": MaxPrice for a buy, MinPrice for a sell.
const UseNPCPrice float64 = -1

// Notifier delivers a best-effort message to a user. Failures are logged and
// swallowed; they never fail the trade.
type Notifier interface {
	Notify(ctx context.Context, userID int64, message string) error
}

type Engine struct {
	ledger    *ledger.Ledger
	npc       *npcmarket.Market
	book      *orderbook.Book
	players   repositories.PlayerRepository
	inventory repositories.InventoryRepository
	catalog   *catalog.Catalog
	notifier  Notifier

	// Serializes matching per (guild, item): two concurrent trades must not
	// both consume the same order quantity.
	matchLocks economy.KeyedMutex

	now func() time.Time
}

func New(
	l *ledger.Ledger,
	npc *npcmarket.Market,
	book *orderbook.Book,
	players repositories.PlayerRepository,
	inventory repositories.InventoryRepository,
	cat *catalog.Catalog,
	notifier Notifier,
) *Engine {
	return &Engine{
		ledger:    l,
		npc:       npc,
		book:      book,
		players:   players,
		inventory: inventory,
		catalog:   cat,
		notifier:  notifier,
		now:       time.Now,
	}
}

// Request is one buy or sell command, already resolved to opaque ids.
type Request struct {
	Account   economy.AccountRef
	Side      models.OrderSide
	ItemTag   string
	UnitPrice float64 // positive, or UseNPCPrice
	Amount    int
}

// Outcome reports what one trade call did. The fields are cumulative, not
// mutually exclusive: a single request can fill against players, then the
// NPC, then leave a residual order.
type Outcome struct {
	Side      models.OrderSide
	ItemTag   string
	UnitPrice float64 // resolved limit price

	Merged      bool
	MergedTotal int // order amount after the merge

	PlayerQty   int
	PlayerTotal float64

	NPCQty       int
	NPCUnitPrice float64
	NPCTotal     float64

	PlacedQty int // residual order amount
}

// Filled reports whether anything traded.
func (o *Outcome) Filled() bool {
	return o.PlayerQty > 0 || o.NPCQty > 0
}

// Trade runs the request through the full state machine. Validation failures
// reject before any mutation; once a fill settles it stays settled even if a
// later step fails.
func (e *Engine) Trade(ctx context.Context, req Request) (*Outcome, error) {
	if req.Amount <= 0 || (req.UnitPrice <= 0 && req.UnitPrice != UseNPCPrice) {
		return nil, fmt.Errorf("amount and unit price must be positive: %w", economy.ErrInvalidInput)
	}
	item, ok := e.catalog.Get(req.ItemTag)
	if !ok {
		return nil, fmt.Errorf("item %q: %w", req.ItemTag, economy.ErrUnknownItem)
	}

	unlock := e.matchLocks.Lock(fmt.Sprintf("%d:%s", req.Account.GuildID, req.ItemTag))
	defer unlock()

	if err := e.resolveAccount(ctx, req.Account); err != nil {
		return nil, err
	}

	quote, err := e.npc.Quote(ctx, req.Account.GuildID, req.ItemTag)
	if err != nil {
		return nil, err
	}
	price := req.UnitPrice
	if price == UseNPCPrice {
		if req.Side == models.OrderSideBuy {
			price = quote.MaxPrice
		} else {
			price = quote.MinPrice
		}
	}

	outcome := &Outcome{Side: req.Side, ItemTag: req.ItemTag, UnitPrice: price}

	// Buys are not gated on funds here: matching clamps each fill to what
	// the payer can afford, and the rest becomes a standing order. Sells
	// must be backed by the goods up front.
	if req.Side == models.OrderSideSell {
		held := e.heldAmount(ctx, req.Account, req.ItemTag)
		if held < req.Amount {
			return nil, fmt.Errorf("selling %dx %s with %d held: %w",
				req.Amount, req.ItemTag, held, economy.ErrInsufficientResources)
		}
	}

	// Merge check: an identical-key order absorbs the request outright.
	if _, err := e.book.Own(ctx, req.Account, req.Side, req.ItemTag, price); err == nil {
		merged, total, err := e.placeResidual(ctx, req.Account, req.Side, req.ItemTag, price, req.Amount)
		if err != nil {
			return nil, err
		}
		outcome.Merged = merged
		outcome.MergedTotal = total
		return outcome, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	remaining, err := e.matchPlayers(ctx, req, price, outcome)
	if err != nil {
		return outcome, err
	}

	if remaining > 0 {
		remaining, err = e.fillNPC(ctx, req, price, remaining, quote, item, outcome)
		if err != nil {
			return outcome, err
		}
	}

	if remaining > 0 {
		if _, _, err := e.placeResidual(ctx, req.Account, req.Side, req.ItemTag, price, remaining); err != nil {
			return outcome, err
		}
		outcome.PlacedQty = remaining
	}

	slog.Info("Trade completed",
		slog.String("type", "cmd"),
		slog.String("side", string(req.Side)),
		slog.String("item", req.ItemTag),
		slog.String("account", req.Account.Key()),
		slog.Int("player_qty", outcome.PlayerQty),
		slog.Int("npc_qty", outcome.NPCQty),
		slog.Int("placed_qty", outcome.PlacedQty))
	return outcome, nil
}

// resolveAccount lazily creates the player account; a company account must
// already exist.
func (e *Engine) resolveAccount(ctx context.Context, ref economy.AccountRef) error {
	if ref.IsCompany {
		exists, err := e.ledger.Exists(ctx, ref)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("company account %s: %w", ref.Key(), economy.ErrCounterpartyMissing)
		}
		return nil
	}
	_, err := e.players.GetOrCreate(ctx, ref.GuildID, ref.OwnerID)
	return err
}

func (e *Engine) heldAmount(ctx context.Context, ref economy.AccountRef, itemTag string) int {
	line, err := e.inventory.Get(ctx, ref.GuildID, ref.OwnerID, ref.IsCompany, itemTag)
	if err != nil {
		return 0
	}
	return line.Amount
}

// matchPlayers runs the order book scan for the request and settles each
// fill: money buyer→seller, tax billed to the seller on the gross, goods
// seller→buyer, counterparty notified. Returns the unmatched remainder.
func (e *Engine) matchPlayers(ctx context.Context, req Request, price float64, outcome *Outcome) (int, error) {
	item, _ := e.catalog.Get(req.ItemTag)

	cb := orderbook.Callbacks{
		OwnerExists: func(ctx context.Context, owner economy.AccountRef) (bool, error) {
			return e.ledger.Exists(ctx, owner)
		},
	}

	if req.Side == models.OrderSideBuy {
		// The requester pays; the candidate sellers deliver.
		cb.PayerFunds = func(ctx context.Context, _ economy.AccountRef) (float64, error) {
			return e.ledger.Balance(ctx, req.Account)
		}
		cb.DeliverableStock = func(ctx context.Context, seller economy.AccountRef) (int, error) {
			return e.heldAmount(ctx, seller, req.ItemTag), nil
		}
		cb.Settle = func(ctx context.Context, fill orderbook.Fill) error {
			return e.settle(ctx, req.Account, fill.Counterparty, req.ItemTag, item.Durability, fill)
		}
	} else {
		// The candidate buyers pay; the requester delivers.
		cb.PayerFunds = func(ctx context.Context, buyer economy.AccountRef) (float64, error) {
			return e.ledger.Balance(ctx, buyer)
		}
		cb.Settle = func(ctx context.Context, fill orderbook.Fill) error {
			return e.settle(ctx, fill.Counterparty, req.Account, req.ItemTag, item.Durability, fill)
		}
	}

	fills, err := e.book.Match(ctx, orderbook.Request{
		Requester: req.Account,
		Side:      req.Side,
		ItemTag:   req.ItemTag,
		Limit:     price,
		Qty:       req.Amount,
	}, cb)
	for _, fill := range fills {
		outcome.PlayerQty += fill.Qty
		outcome.PlayerTotal = economy.Round2(outcome.PlayerTotal + fill.Total())
	}
	if err != nil {
		return req.Amount - outcome.PlayerQty, err
	}
	return req.Amount - outcome.PlayerQty, nil
}

// settle applies one fill between a buyer and a seller.
func (e *Engine) settle(ctx context.Context, buyer, seller economy.AccountRef, itemTag string, durability *int, fill orderbook.Fill) error {
	total := fill.Total()
	if err := e.ledger.Transfer(ctx, buyer, seller, total); err != nil {
		return err
	}
	if _, err := e.ledger.WithholdTax(ctx, seller, total); err != nil {
		return err
	}
	if err := e.inventory.Remove(ctx, seller.GuildID, seller.OwnerID, seller.IsCompany, itemTag, fill.Qty); err != nil {
		return err
	}
	var dur *int
	if durability != nil {
		d := *durability
		dur = &d
	}
	if err := e.inventory.Add(ctx, buyer.GuildID, buyer.OwnerID, buyer.IsCompany, itemTag, fill.Qty, dur); err != nil {
		return err
	}

	e.notify(ctx, fill.Counterparty.OwnerID,
		fmt.Sprintf("Your %s order was filled: %dx %s at $%.2f each ($%.2f total).",
			fillSideWord(buyer, fill), fill.Qty, itemTag, fill.UnitPrice, total))
	return nil
}

func fillSideWord(buyer economy.AccountRef, fill orderbook.Fill) string {
	if fill.Counterparty == buyer {
		return "buy"
	}
	return "sell"
}

// fillNPC runs the market-maker fallback when the requester's limit crosses
// the NPC band on the right side. NPC purchases are untaxed; sales to the
// NPC bill tax on the proceeds like any other sale.
func (e *Engine) fillNPC(ctx context.Context, req Request, price float64, remaining int, quote *models.MarketItem, item *models.Item, outcome *Outcome) (int, error) {
	if req.Side == models.OrderSideBuy {
		if price < quote.MaxPrice || quote.Stockpile <= 0 {
			return remaining, nil
		}
		funds, err := e.ledger.Balance(ctx, req.Account)
		if err != nil {
			return remaining, err
		}
		fill, unitPrice, err := e.npc.BuyFromNPC(ctx, req.Account.GuildID, req.ItemTag, remaining, funds)
		if err != nil {
			return remaining, err
		}
		if fill == 0 {
			return remaining, nil
		}
		total := economy.Round2(float64(fill) * unitPrice)
		if err := e.ledger.Debit(ctx, req.Account, total); err != nil {
			return remaining, err
		}
		var dur *int
		if item.Durability != nil {
			d := *item.Durability
			dur = &d
		}
		if err := e.inventory.Add(ctx, req.Account.GuildID, req.Account.OwnerID, req.Account.IsCompany, req.ItemTag, fill, dur); err != nil {
			return remaining, err
		}
		outcome.NPCQty = fill
		outcome.NPCUnitPrice = unitPrice
		outcome.NPCTotal = total
		return remaining - fill, nil
	}

	if price > quote.MinPrice {
		return remaining, nil
	}
	fill, unitPrice, err := e.npc.SellToNPC(ctx, req.Account.GuildID, req.ItemTag, remaining)
	if err != nil {
		return remaining, err
	}
	total := economy.Round2(float64(fill) * unitPrice)
	if err := e.inventory.Remove(ctx, req.Account.GuildID, req.Account.OwnerID, req.Account.IsCompany, req.ItemTag, fill); err != nil {
		return remaining, err
	}
	if err := e.ledger.Credit(ctx, req.Account, total); err != nil {
		return remaining, err
	}
	if _, err := e.ledger.WithholdTax(ctx, req.Account, total); err != nil {
		return remaining, err
	}
	outcome.NPCQty = fill
	outcome.NPCUnitPrice = unitPrice
	outcome.NPCTotal = total
	return remaining - fill, nil
}

// placeResidual places or merges a standing order for the leftover amount.
func (e *Engine) placeResidual(ctx context.Context, account economy.AccountRef, side models.OrderSide, itemTag string, price float64, amount int) (bool, int, error) {
	order := &models.Order{
		GuildID:   account.GuildID,
		OwnerID:   account.OwnerID,
		IsCompany: account.IsCompany,
		Side:      side,
		ItemTag:   itemTag,
		Amount:    amount,
		UnitPrice: price,
		ExpiresAt: e.now().Add(orderbook.OrderTTL),
	}
	merged, err := e.book.PlaceOrMerge(ctx, order)
	if err != nil {
		return false, 0, err
	}
	return merged, order.Amount, nil
}

func (e *Engine) notify(ctx context.Context, userID int64, message string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, userID, message); err != nil {
		slog.Debug("Counterparty notification failed",
			slog.String("type", "sys"),
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()))
	}
}

// Package ledger performs all balance mutations: transfers between accounts,
// tax withholding and GDP accrual. Nothing else in the repo writes money.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

type Ledger struct {
	players     repositories.PlayerRepository
	companies   repositories.CompanyRepository
	governments repositories.GovernmentRepository

	// Serializes mutations per account. The repositories additionally use
	// atomic SQL updates, so either layer alone prevents lost updates.
	locks economy.KeyedMutex

	now func() time.Time
}

func New(
	players repositories.PlayerRepository,
	companies repositories.CompanyRepository,
	governments repositories.GovernmentRepository,
) *Ledger {
	return &Ledger{
		players:     players,
		companies:   companies,
		governments: governments,
		now:         time.Now,
	}
}

// Exists reports whether the referenced account is present. Stale orders
// whose owner vanished are detected through this.
func (l *Ledger) Exists(ctx context.Context, ref economy.AccountRef) (bool, error) {
	if ref.IsCompany {
		return l.companies.Exists(ctx, ref.GuildID, ref.OwnerID)
	}
	return l.players.Exists(ctx, ref.GuildID, ref.OwnerID)
}

// Balance returns the account's spendable money (player wallet or company
// capital). A missing account maps to ErrCounterpartyMissing.
func (l *Ledger) Balance(ctx context.Context, ref economy.AccountRef) (float64, error) {
	if ref.IsCompany {
		company, err := l.companies.GetByEntrepreneur(ctx, ref.GuildID, ref.OwnerID)
		if err != nil {
			return 0, translateMissing(err, ref)
		}
		return company.Capital, nil
	}
	player, err := l.players.GetByUserID(ctx, ref.GuildID, ref.OwnerID)
	if err != nil {
		return 0, translateMissing(err, ref)
	}
	return player.Money, nil
}

func translateMissing(err error, ref economy.AccountRef) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("account %s: %w", ref.Key(), economy.ErrCounterpartyMissing)
	}
	return err
}

func (l *Ledger) addMoney(ctx context.Context, ref economy.AccountRef, delta float64) error {
	var err error
	if ref.IsCompany {
		err = l.companies.AddCapital(ctx, ref.GuildID, ref.OwnerID, delta)
	} else {
		err = l.players.AddMoney(ctx, ref.GuildID, ref.OwnerID, delta)
	}
	return translateMissing(err, ref)
}

// Credit adds amount to the account unconditionally.
func (l *Ledger) Credit(ctx context.Context, ref economy.AccountRef, amount float64) error {
	amount = economy.Round2(amount)
	if amount <= 0 {
		return fmt.Errorf("credit of %.2f: %w", amount, economy.ErrInvalidInput)
	}
	unlock := l.locks.Lock(ref.Key())
	defer unlock()
	return l.addMoney(ctx, ref, amount)
}

// Debit removes amount from the account, failing without mutation when the
// balance is short.
func (l *Ledger) Debit(ctx context.Context, ref economy.AccountRef, amount float64) error {
	amount = economy.Round2(amount)
	if amount <= 0 {
		return fmt.Errorf("debit of %.2f: %w", amount, economy.ErrInvalidInput)
	}
	unlock := l.locks.Lock(ref.Key())
	defer unlock()

	balance, err := l.Balance(ctx, ref)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("debit of %.2f against balance %.2f: %w", amount, balance, economy.ErrInsufficientFunds)
	}
	return l.addMoney(ctx, ref, -amount)
}

// Transfer moves amount from one account to the other. It fails with
// ErrInsufficientFunds and performs no partial transfer when the source is
// short; callers clamp amounts to available funds before calling.
func (l *Ledger) Transfer(ctx context.Context, from, to economy.AccountRef, amount float64) error {
	amount = economy.Round2(amount)
	if amount <= 0 {
		return fmt.Errorf("transfer of %.2f: %w", amount, economy.ErrInvalidInput)
	}
	if from == to {
		return fmt.Errorf("transfer to self: %w", economy.ErrInvalidInput)
	}
	unlock := l.locks.LockPair(from, to)
	defer unlock()

	balance, err := l.Balance(ctx, from)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("transfer of %.2f against balance %.2f: %w", amount, balance, economy.ErrInsufficientFunds)
	}
	if _, err := l.Balance(ctx, to); err != nil {
		return err
	}

	if err := l.addMoney(ctx, from, -amount); err != nil {
		return err
	}
	if err := l.addMoney(ctx, to, amount); err != nil {
		return err
	}

	slog.Debug("Ledger transfer",
		slog.String("type", "sys"),
		slog.String("from", from.Key()),
		slog.String("to", to.Key()),
		slog.Float64("amount", amount))
	return nil
}

// WithholdTax bills tax on a gross amount: GDP accrues by the full gross for
// the current calendar day, then tax = round(gross * tax_rate, 2) is added to
// the payer's taxes_owed. Tax is billed, never deducted from the proceeds of
// the same transaction. Returns the billed tax.
func (l *Ledger) WithholdTax(ctx context.Context, payer economy.AccountRef, gross float64) (float64, error) {
	gross = economy.Round2(gross)
	if gross <= 0 {
		return 0, nil
	}

	gov, err := l.governments.GetOrCreate(ctx, payer.GuildID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve government: %w", err)
	}
	if err := l.AccrueGDP(ctx, payer.GuildID, gross); err != nil {
		return 0, err
	}

	tax := economy.Round2(gross * gov.TaxRate)
	if tax <= 0 {
		return 0, nil
	}

	unlock := l.locks.Lock(payer.Key())
	defer unlock()

	if payer.IsCompany {
		err = l.companies.AddTaxesOwed(ctx, payer.GuildID, payer.OwnerID, tax)
	} else {
		err = l.players.AddTaxesOwed(ctx, payer.GuildID, payer.OwnerID, tax)
	}
	if err != nil {
		return 0, translateMissing(err, payer)
	}
	return tax, nil
}

// SettleTaxes pays down the account's tax debt from its balance into the
// guild treasury: paid = min(taxes_owed, balance, requested), where a
// non-positive requested means the whole debt. A zero payment is not an
// error. Returns the amount paid.
func (l *Ledger) SettleTaxes(ctx context.Context, payer economy.AccountRef, requested float64) (float64, error) {
	unlock := l.locks.Lock(payer.Key())
	defer unlock()

	var owed, balance float64
	if payer.IsCompany {
		company, err := l.companies.GetByEntrepreneur(ctx, payer.GuildID, payer.OwnerID)
		if err != nil {
			return 0, translateMissing(err, payer)
		}
		owed, balance = company.TaxesOwed, company.Capital
	} else {
		player, err := l.players.GetByUserID(ctx, payer.GuildID, payer.OwnerID)
		if err != nil {
			return 0, translateMissing(err, payer)
		}
		owed, balance = player.TaxesOwed, player.Money
	}

	paid := owed
	if balance < paid {
		paid = balance
	}
	if requested > 0 && requested < paid {
		paid = requested
	}
	paid = economy.Round2(paid)
	if paid <= 0 {
		return 0, nil
	}

	if err := l.addMoney(ctx, payer, -paid); err != nil {
		return 0, err
	}
	var err error
	if payer.IsCompany {
		err = l.companies.AddTaxesOwed(ctx, payer.GuildID, payer.OwnerID, -paid)
	} else {
		err = l.players.AddTaxesOwed(ctx, payer.GuildID, payer.OwnerID, -paid)
	}
	if err != nil {
		return 0, translateMissing(err, payer)
	}

	if _, err := l.governments.GetOrCreate(ctx, payer.GuildID); err != nil {
		return 0, fmt.Errorf("failed to resolve government: %w", err)
	}
	if err := l.governments.AddTreasury(ctx, payer.GuildID, paid); err != nil {
		return 0, fmt.Errorf("failed to credit treasury: %w", err)
	}

	slog.Debug("Taxes settled",
		slog.String("type", "sys"),
		slog.String("payer", payer.Key()),
		slog.Float64("paid", paid))
	return paid, nil
}

// AccrueGDP increments the guild's GDP entry for today.
func (l *Ledger) AccrueGDP(ctx context.Context, guildID int64, amount float64) error {
	amount = economy.Round2(amount)
	if amount <= 0 {
		return nil
	}
	day := models.GdpDay(l.now())
	if err := l.governments.AccrueGDP(ctx, guildID, day, amount); err != nil {
		return fmt.Errorf("failed to accrue GDP for %s: %w", day, err)
	}
	return nil
}

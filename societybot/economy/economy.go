// Package economy holds the pieces the engine packages share: error kinds,
// money rounding, account references and keyed serialization.
package economy

import (
	"errors"
	"fmt"
	"math"
	"sync"
)

// Error kinds for economic rejections. Layers wrap these with context and
// callers branch with errors.Is.
var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrInsufficientFunds     = errors.New("insufficient funds")
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrNotAllowed            = errors.New("not allowed")
	ErrCounterpartyMissing   = errors.New("counterparty account missing")
	ErrUnknownItem           = errors.New("unknown item")
)

// Round2 rounds a monetary amount to 2 decimal places. Every computed amount
// is rounded at the point of computation so comparisons never see drift.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// AccountRef identifies a money-holding account: a player's wallet or a
// company's capital, scoped to a guild.
type AccountRef struct {
	GuildID   int64
	OwnerID   int64
	IsCompany bool
}

func (a AccountRef) Key() string {
	return fmt.Sprintf("%d:%d:%t", a.GuildID, a.OwnerID, a.IsCompany)
}

// Less defines the canonical lock order for two-account operations.
func (a AccountRef) Less(b AccountRef) bool {
	return a.Key() < b.Key()
}

// KeyedMutex serializes work per string key. Matching uses it keyed by
// (guild, item); the ledger uses it keyed by account.
type KeyedMutex struct {
	locks sync.Map
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *KeyedMutex) Lock(key string) func() {
	mu, _ := k.locks.LoadOrStore(key, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

// LockPair acquires both account mutexes in canonical order so concurrent
// transfers over the same pair cannot deadlock. Locking the same account
// twice is degraded to a single lock.
func (k *KeyedMutex) LockPair(a, b AccountRef) func() {
	if a == b {
		return k.Lock(a.Key())
	}
	first, second := a, b
	if b.Less(a) {
		first, second = b, a
	}
	unlockFirst := k.Lock(first.Key())
	unlockSecond := k.Lock(second.Key())
	return func() {
		unlockSecond()
		unlockFirst()
	}
}

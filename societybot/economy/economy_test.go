package economy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"exact", 12.5, 12.5},
		{"rounds up", 25.555, 25.56},
		{"rounds down", 7.694, 7.69},
		{"half rounds away", 0.005, 0.01},
		{"negative", -1.005, -1.0},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.want, Round2(tt.in), 1e-9)
		})
	}
}

func TestKeyedMutexSerializes(t *testing.T) {
	var km KeyedMutex
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("same-key")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestLockPairOppositeOrdersDoNotDeadlock(t *testing.T) {
	var km KeyedMutex
	a := AccountRef{GuildID: 1, OwnerID: 10}
	b := AccountRef{GuildID: 1, OwnerID: 20, IsCompany: true}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			unlock := km.LockPair(a, b)
			unlock()
		}()
		go func() {
			defer wg.Done()
			unlock := km.LockPair(b, a)
			unlock()
		}()
	}
	wg.Wait()
}

func TestLockPairSameAccount(t *testing.T) {
	var km KeyedMutex
	a := AccountRef{GuildID: 1, OwnerID: 10}

	// Must not double-lock the same mutex.
	unlock := km.LockPair(a, a)
	unlock()

	unlock = km.Lock(a.Key())
	unlock()
}

func TestAccountRefKeyDistinguishesKind(t *testing.T) {
	player := AccountRef{GuildID: 1, OwnerID: 10}
	company := AccountRef{GuildID: 1, OwnerID: 10, IsCompany: true}
	require.NotEqual(t, player.Key(), company.Key())
}

package stock

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Random reserve/release sequences against one row must never drive the
// available quantity negative.
func TestMem_RandomSequenceNeverNegative(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	ledger := NewMem(map[string]int{"RUG-12345": 20})
	for i := 0; i < 5000; i++ {
		qty := rng.Intn(7) + 1
		if rng.Intn(2) == 0 {
			_, err := ledger.Reserve(ctx, "RUG-12345", qty)
			require.NoError(t, err)
		} else {
			_, err := ledger.Release(ctx, "RUG-12345", qty)
			require.NoError(t, err)
		}
		avail, err := ledger.Available(ctx, "RUG-12345")
		require.NoError(t, err)
		require.GreaterOrEqual(t, avail, 0, "iteration %d", i)
	}
}

// Concurrent reservations on a shared sku: exactly `initial` units may be
// granted, no more.
func TestMem_ConcurrentReserveNeverOversells(t *testing.T) {
	ctx := context.Background()
	const initial = 50

	ledger := NewMem(map[string]int{"RUG-RED-001": initial})

	var granted int64
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := ledger.Reserve(ctx, "RUG-RED-001", 1)
			if err != nil {
				return
			}
			if ok {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, initial, granted)
	avail, err := ledger.Available(ctx, "RUG-RED-001")
	require.NoError(t, err)
	assert.Equal(t, 0, avail)
}

func TestMem_ReserveInsufficientLeavesStockUntouched(t *testing.T) {
	ctx := context.Background()
	ledger := NewMem(map[string]int{"RUG-12345": 2})

	ok, err := ledger.Reserve(ctx, "RUG-12345", 3)
	require.NoError(t, err)
	assert.False(t, ok)

	avail, err := ledger.Available(ctx, "RUG-12345")
	require.NoError(t, err)
	assert.Equal(t, 2, avail)
}

func TestMem_ReleaseUnknownSKU(t *testing.T) {
	ctx := context.Background()
	ledger := NewMem(nil)

	ok, err := ledger.Release(ctx, "NOPE", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ledger.Available(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrUnknownSKU)
}

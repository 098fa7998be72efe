package stock

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownSKU = errors.New("unknown sku")

// Mem is a process-local ledger behind the same interface as PG. It exists
// for tests and single-node development only; it cannot be correct across
// multiple process instances.
type Mem struct {
	mu  sync.Mutex
	qty map[string]int
}

func NewMem(initial map[string]int) *Mem {
	m := &Mem{qty: make(map[string]int, len(initial))}
	for sku, q := range initial {
		m.qty[sku] = q
	}
	return m
}

func (m *Mem) Reserve(_ context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.qty[sku]
	if !ok || cur < qty {
		return false, nil
	}
	m.qty[sku] = cur - qty
	return true, nil
}

func (m *Mem) Release(_ context.Context, sku string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.qty[sku]
	if !ok {
		return false, nil
	}
	m.qty[sku] = cur + qty
	return true, nil
}

func (m *Mem) Available(_ context.Context, sku string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.qty[sku]
	if !ok {
		return 0, ErrUnknownSKU
	}
	return cur, nil
}

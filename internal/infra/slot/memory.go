// Package slot implements the durable key-value slot that holds the
// serialized ledger: Redis for deployments, a local file for single-host
// installs, and an in-process slot for tests and throwaway runs.
package slot

import (
	"context"
	"sync"

	"github.com/boddenberg/daily-balances-go/internal/domain"
	"github.com/boddenberg/daily-balances-go/internal/port"
)

// Memory keeps the record in process memory.
type Memory struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory returns an empty in-process slot.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return nil, domain.ErrNoState
	}
	return append([]byte(nil), m.data...), nil
}

func (m *Memory) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

var (
	_ port.Slot   = (*Memory)(nil)
	_ port.Pinger = (*Memory)(nil)
)

package cart

import (
	"context"
	"sync"

	"pos-system/internal/logger"
)

// Registry hands out one Manager per device ID. Managers are created on
// first use and restored from the store, so a device picks up its cart
// across sessions.
type Registry struct {
	mu       sync.Mutex
	managers map[string]*Manager
	store    Store
	logger   *logger.Logger
}

// NewRegistry creates a registry backed by the given store
func NewRegistry(store Store, log *logger.Logger) *Registry {
	return &Registry{
		managers: make(map[string]*Manager),
		store:    store,
		logger:   log,
	}
}

// Manager returns the cart manager for the device, restoring persisted state
// on first access
func (r *Registry) Manager(ctx context.Context, deviceID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[deviceID]; ok {
		return m
	}

	m := NewManager(deviceID, r.store, r.logger)
	m.Restore(ctx)
	r.managers[deviceID] = m
	return m
}

package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager coordinates the lifecycle of a set of background services.
// It is created and held by an upper layer (the shutdown coordinator) and
// hands out handles to the individual services.
type Manager struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	services map[string]bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates a new lifecycle manager.
func NewManager() *Manager {
	m := &Manager{
		services: make(map[string]bool),
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	return m
}

// NewServiceHandle registers a service and returns its lifecycle handle.
// The manager tracks the service in its WaitGroup until the handle is closed.
func (m *Manager) NewServiceHandle(name string) (*Handle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.services[name] {
		return nil, fmt.Errorf("lifecycle: service %q already registered", name)
	}
	m.services[name] = true
	m.wg.Add(1)
	zap.S().Infow("lifecycle: service registered", "service", name)

	return &Handle{
		ctx: m.ctx,
		Close: func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if _, exists := m.services[name]; !exists {
				return
			}
			delete(m.services, name)
			m.wg.Done()
		},
	}, nil
}

// Shutdown broadcasts the stop signal to every registered service.
func (m *Manager) Shutdown() {
	zap.S().Info("lifecycle: broadcasting shutdown signal")
	m.cancel()
}

// WaitWithTimeout waits for all registered services to finish, up to the
// given timeout. It returns the names of the services still running when the
// timeout elapses, or nil if everything stopped in time.
func (m *Manager) WaitWithTimeout(timeout time.Duration) []string {
	doneChan := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(doneChan)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-doneChan:
		return nil
	case <-timer.C:
		m.mu.Lock()
		defer m.mu.Unlock()
		remaining := make([]string, 0, len(m.services))
		for name := range m.services {
			remaining = append(remaining, name)
		}
		return remaining
	}
}

package daemon

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/maxmode/internal/maximize"
	"github.com/1broseidon/maxmode/internal/platform"
)

// HostConfig configures a Host.
type HostConfig struct {
	// Containers to watch. Empty means the backend's current container.
	Containers []platform.ContainerID
	Logger     *slog.Logger
}

// Status is a point-in-time view of the mode.
type Status struct {
	Active         bool
	ManagedWindows int
	Containers     []platform.ContainerID
	ActiveSince    time.Time
	Uptime         time.Duration
}

// currentContainer is implemented by backends that know which container the
// user is looking at.
type currentContainer interface {
	CurrentContainer() (platform.ContainerID, error)
}

// Host owns the single maximize controller of the process. Enable creates it,
// Disable destroys it. Every entry into the controller, including backend
// notifications, runs under one lock.
type Host struct {
	mu         sync.Mutex
	raw        platform.Backend
	backend    platform.Backend
	logger     *slog.Logger
	containers []platform.ContainerID

	controller  *maximize.Controller
	activeSince time.Time
	started     time.Time
	now         func() time.Time
}

// NewHost creates an inactive host.
func NewHost(backend platform.Backend, cfg HostConfig) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Host{
		raw:        backend,
		logger:     logger,
		containers: append([]platform.ContainerID(nil), cfg.Containers...),
		now:        time.Now,
	}
	h.backend = &serialBackend{Backend: backend, mu: &h.mu}
	h.started = h.now()
	return h
}

// Enable turns the mode on and reports whether it was off before. Enabling an
// active mode is a no-op.
func (h *Host) Enable() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller != nil {
		return false, nil
	}
	if err := h.enableLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// Disable turns the mode off and reports whether it was on before. Disabling
// an inactive mode is a no-op.
func (h *Host) Disable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller == nil {
		return false
	}
	h.disableLocked()
	return true
}

// Toggle flips the mode and returns whether it is now active.
func (h *Host) Toggle() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.controller != nil {
		h.disableLocked()
		return false, nil
	}
	if err := h.enableLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// Active reports whether the mode is on.
func (h *Host) Active() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.controller != nil
}

// ManagedWindowCount returns the number of managed windows, 0 when inactive.
func (h *Host) ManagedWindowCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller == nil {
		return 0
	}
	return h.controller.NumberOfManagedWindows()
}

// Status reports the current mode state.
func (h *Host) Status() Status {
	h.mu.Lock()
	defer h.mu.Unlock()

	st := Status{
		Containers: append([]platform.ContainerID(nil), h.containers...),
		Uptime:     h.now().Sub(h.started),
	}
	if h.controller != nil {
		st.Active = true
		st.ManagedWindows = h.controller.NumberOfManagedWindows()
		st.Containers = h.controller.Containers()
		st.ActiveSince = h.activeSince
	}
	return st
}

// SetContainers changes the watched containers. It takes effect the next
// time the mode is enabled.
func (h *Host) SetContainers(containers []platform.ContainerID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.containers = append([]platform.ContainerID(nil), containers...)
}

// Reconcile resyncs the active controller with the window registry.
func (h *Host) Reconcile() (pruned, adopted int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.controller == nil {
		return 0, 0
	}
	return h.controller.Reconcile()
}

func (h *Host) enableLocked() error {
	if h.controller != nil {
		return nil
	}

	containers, err := h.resolveContainers()
	if err != nil {
		return err
	}
	c, err := maximize.Enable(h.backend, maximize.Options{
		Containers: containers,
		Logger:     h.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to enable maximize mode: %w", err)
	}
	h.controller = c
	h.activeSince = h.now()
	return nil
}

func (h *Host) disableLocked() {
	if h.controller == nil {
		return
	}
	h.controller.Disable()
	h.controller = nil
	h.activeSince = time.Time{}
}

func (h *Host) resolveContainers() ([]platform.ContainerID, error) {
	if len(h.containers) > 0 {
		return append([]platform.ContainerID(nil), h.containers...), nil
	}
	if cc, ok := h.raw.(currentContainer); ok {
		current, err := cc.CurrentContainer()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve current desktop: %w", err)
		}
		return []platform.ContainerID{current}, nil
	}
	return []platform.ContainerID{0}, nil
}

// serialBackend delivers backend notifications under the host lock so they
// never interleave with host calls. Callbacks unsubscribed while one was in
// flight are dropped.
type serialBackend struct {
	platform.Backend
	mu *sync.Mutex
}

type serialSub struct {
	inner     platform.Subscription
	cancelled bool
}

// Unsubscribe must be called with the host lock held.
func (s *serialSub) Unsubscribe() {
	s.cancelled = true
	s.inner.Unsubscribe()
}

func (b *serialBackend) OnWindowCreated(container platform.ContainerID, fn func(platform.WindowID)) platform.Subscription {
	sub := &serialSub{}
	sub.inner = b.Backend.OnWindowCreated(container, func(id platform.WindowID) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !sub.cancelled {
			fn(id)
		}
	})
	return sub
}

func (b *serialBackend) OnWindowDestroyed(id platform.WindowID, fn func(platform.WindowID)) platform.Subscription {
	sub := &serialSub{}
	sub.inner = b.Backend.OnWindowDestroyed(id, func(id platform.WindowID) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !sub.cancelled {
			fn(id)
		}
	})
	return sub
}

func (b *serialBackend) OnWorkAreaChanged(container platform.ContainerID, fn func(platform.Rect)) platform.Subscription {
	sub := &serialSub{}
	sub.inner = b.Backend.OnWorkAreaChanged(container, func(area platform.Rect) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if !sub.cancelled {
			fn(area)
		}
	})
	return sub
}

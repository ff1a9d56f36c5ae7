package platform

import (
	"fmt"
	"slices"
	"sync"
)

// WindowSpec describes a window to create in a MemoryBackend.
type WindowSpec struct {
	Type        WindowType
	CanMaximize bool
	Bounds      Rect
}

type memWindow struct {
	id            WindowID
	container     ContainerID
	typ           WindowType
	canMaximize   bool
	state         ShowState
	preMinimize   ShowState
	bounds        Rect
	restoreBounds Rect
}

type memSub struct {
	b      *MemoryBackend
	active bool
	// detach removes the subscription from its list. Called with b.mu held.
	detach func()
}

func (s *memSub) Unsubscribe() {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false
	s.detach()
}

// without removes s from m[key], dropping the key once nothing is left.
func without[K comparable, S comparable](m map[K][]S, key K, s S) {
	rest := slices.DeleteFunc(m[key], func(x S) bool { return x == s })
	if len(rest) == 0 {
		delete(m, key)
		return
	}
	m[key] = rest
}

type createdSub struct {
	*memSub
	fn func(WindowID)
}

type destroyedSub struct {
	*memSub
	fn func(WindowID)
}

type workAreaSub struct {
	*memSub
	fn func(Rect)
}

// MemoryBackend is an in-process window system. It keeps an MRU list, maximize
// restore bounds per window and per-container work areas, and delivers
// notifications synchronously before the triggering call returns.
type MemoryBackend struct {
	mu        sync.Mutex
	nextID    WindowID
	windows   map[WindowID]*memWindow
	workAreas map[ContainerID]Rect
	mru       []WindowID

	created   map[ContainerID][]*createdSub
	destroyed map[WindowID][]*destroyedSub
	workArea  map[ContainerID][]*workAreaSub
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an empty window system whose containers all start
// with the given work area.
func NewMemoryBackend(defaultWorkArea Rect) *MemoryBackend {
	return &MemoryBackend{
		nextID:    1,
		windows:   make(map[WindowID]*memWindow),
		workAreas: map[ContainerID]Rect{-1: defaultWorkArea},
		created:   make(map[ContainerID][]*createdSub),
		destroyed: make(map[WindowID][]*destroyedSub),
		workArea:  make(map[ContainerID][]*workAreaSub),
	}
}

func (b *MemoryBackend) workAreaLocked(container ContainerID) Rect {
	if wa, ok := b.workAreas[container]; ok {
		return wa
	}
	return b.workAreas[-1]
}

// CreateWindow adds a window to a container and activates it.
func (b *MemoryBackend) CreateWindow(container ContainerID, spec WindowSpec) WindowID {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.windows[id] = &memWindow{
		id:          id,
		container:   container,
		typ:         spec.Type,
		canMaximize: spec.CanMaximize,
		state:       ShowStateNormal,
		bounds:      spec.Bounds,
	}
	b.mru = append([]WindowID{id}, b.mru...)

	var fns []func(WindowID)
	for _, s := range b.created[container] {
		if s.active {
			fns = append(fns, s.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}
	return id
}

// DestroyWindow removes a window. Destroy subscribers run before the window
// disappears from the registry.
func (b *MemoryBackend) DestroyWindow(id WindowID) error {
	b.mu.Lock()
	if _, ok := b.windows[id]; !ok {
		b.mu.Unlock()
		return fmt.Errorf("destroy %d: %w", id, ErrWindowNotFound)
	}
	var fns []func(WindowID)
	for _, s := range b.destroyed[id] {
		if s.active {
			fns = append(fns, s.fn)
		}
	}
	delete(b.destroyed, id)
	b.mu.Unlock()

	for _, fn := range fns {
		fn(id)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.windows, id)
	for i, wid := range b.mru {
		if wid == id {
			b.mru = append(b.mru[:i], b.mru[i+1:]...)
			break
		}
	}
	return nil
}

// Activate moves a window to the front of the MRU list.
func (b *MemoryBackend) Activate(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.windows[id]; !ok {
		return fmt.Errorf("activate %d: %w", id, ErrWindowNotFound)
	}
	for i, wid := range b.mru {
		if wid == id {
			b.mru = append(b.mru[:i], b.mru[i+1:]...)
			break
		}
	}
	b.mru = append([]WindowID{id}, b.mru...)
	return nil
}

// MRU returns all windows, most recently activated first.
func (b *MemoryBackend) MRU() []WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]WindowID, len(b.mru))
	copy(out, b.mru)
	return out
}

// SetWorkArea changes the usable area of a container. Maximized windows are
// re-laid out to the new area before subscribers are notified.
func (b *MemoryBackend) SetWorkArea(container ContainerID, area Rect) {
	b.mu.Lock()
	b.workAreas[container] = area
	for _, w := range b.windows {
		if w.container == container && w.state == ShowStateMaximized {
			w.bounds = area
		}
	}
	var fns []func(Rect)
	for _, s := range b.workArea[container] {
		if s.active {
			fns = append(fns, s.fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(area)
	}
}

// Windows lists the windows of a container, most recently used first.
func (b *MemoryBackend) Windows(container ContainerID) ([]WindowID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []WindowID
	for _, id := range b.mru {
		if b.windows[id].container == container {
			out = append(out, id)
		}
	}
	return out, nil
}

func (b *MemoryBackend) OnWindowCreated(container ContainerID, fn func(WindowID)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &createdSub{memSub: &memSub{b: b, active: true}, fn: fn}
	s.detach = func() { without(b.created, container, s) }
	b.created[container] = append(b.created[container], s)
	return s
}

func (b *MemoryBackend) OnWindowDestroyed(id WindowID, fn func(WindowID)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &destroyedSub{memSub: &memSub{b: b, active: true}, fn: fn}
	s.detach = func() { without(b.destroyed, id, s) }
	b.destroyed[id] = append(b.destroyed[id], s)
	return s
}

func (b *MemoryBackend) WorkArea(container ContainerID) (Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.workAreaLocked(container), nil
}

func (b *MemoryBackend) OnWorkAreaChanged(container ContainerID, fn func(Rect)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := &workAreaSub{memSub: &memSub{b: b, active: true}, fn: fn}
	s.detach = func() { without(b.workArea, container, s) }
	b.workArea[container] = append(b.workArea[container], s)
	return s
}

// Subscribers returns the number of active subscriptions of every kind.
func (b *MemoryBackend) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, subs := range b.created {
		for _, s := range subs {
			if s.active {
				n++
			}
		}
	}
	for _, subs := range b.destroyed {
		for _, s := range subs {
			if s.active {
				n++
			}
		}
	}
	for _, subs := range b.workArea {
		for _, s := range subs {
			if s.active {
				n++
			}
		}
	}
	return n
}

func (b *MemoryBackend) window(id WindowID) (*memWindow, error) {
	w, ok := b.windows[id]
	if !ok {
		return nil, fmt.Errorf("window %d: %w", id, ErrWindowNotFound)
	}
	return w, nil
}

func (b *MemoryBackend) WindowType(id WindowID) (WindowType, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return 0, err
	}
	return w.typ, nil
}

func (b *MemoryBackend) CanMaximize(id WindowID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return false, err
	}
	return w.canMaximize, nil
}

func (b *MemoryBackend) ShowState(id WindowID) (ShowState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return 0, err
	}
	return w.state, nil
}

func (b *MemoryBackend) Bounds(id WindowID) (Rect, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return Rect{}, err
	}
	return w.bounds, nil
}

func (b *MemoryBackend) SetBounds(id WindowID, bounds Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return err
	}
	if w.state == ShowStateMaximized {
		w.restoreBounds = bounds
		return nil
	}
	w.bounds = bounds
	return nil
}

func (b *MemoryBackend) Maximize(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return err
	}
	switch w.state {
	case ShowStateMaximized:
		return nil
	case ShowStateNormal:
		w.restoreBounds = w.bounds
	case ShowStateMinimized:
		if w.preMinimize != ShowStateMaximized {
			w.restoreBounds = w.bounds
		}
	}
	w.state = ShowStateMaximized
	w.bounds = b.workAreaLocked(w.container)
	return nil
}

func (b *MemoryBackend) Minimize(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return err
	}
	if w.state == ShowStateMinimized {
		return nil
	}
	w.preMinimize = w.state
	w.state = ShowStateMinimized
	return nil
}

// Restore returns a window to the normal state. A window that was maximized,
// directly or before being minimized, gets its pre-maximize bounds back.
func (b *MemoryBackend) Restore(id WindowID) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	w, err := b.window(id)
	if err != nil {
		return err
	}
	wasMaximized := w.state == ShowStateMaximized ||
		(w.state == ShowStateMinimized && w.preMinimize == ShowStateMaximized)
	if wasMaximized {
		w.bounds = w.restoreBounds
	}
	w.state = ShowStateNormal
	return nil
}

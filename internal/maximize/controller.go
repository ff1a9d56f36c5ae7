package maximize

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/1broseidon/maxmode/internal/platform"
)

// Options configures a Controller.
type Options struct {
	// Containers are the window groups watched while the mode is active.
	Containers []platform.ContainerID
	Logger     *slog.Logger
}

// Controller forces eligible windows into the maximized state for one
// activation interval and puts them back when the interval ends.
//
// A Controller is not safe for concurrent use. Its notification callbacks
// must never run nested inside another call on the same Controller.
type Controller struct {
	backend    platform.Backend
	logger     *slog.Logger
	containers []platform.ContainerID

	store     *Store
	workAreas map[platform.ContainerID]platform.Rect
	// seen holds every window classified during this interval, managed or not.
	seen map[platform.WindowID]struct{}
	subs []platform.Subscription

	disabled bool
}

// Enable starts a new activation interval: existing windows in the watched
// containers are classified, snapshotted and transitioned, and the controller
// begins listening for window and work area changes.
func Enable(backend platform.Backend, opts Options) (*Controller, error) {
	if backend == nil {
		return nil, errors.New("maximize: nil backend")
	}
	if len(opts.Containers) == 0 {
		return nil, errors.New("maximize: no containers to watch")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Controller{
		backend:    backend,
		logger:     logger,
		containers: append([]platform.ContainerID(nil), opts.Containers...),
		store:      NewStore(),
		workAreas:  make(map[platform.ContainerID]platform.Rect, len(opts.Containers)),
		seen:       make(map[platform.WindowID]struct{}),
	}

	// Read everything up front so a failure leaves all windows untouched.
	existing := make(map[platform.ContainerID][]platform.WindowID, len(c.containers))
	for _, container := range c.containers {
		area, err := backend.WorkArea(container)
		if err != nil {
			return nil, fmt.Errorf("work area of container %d: %w", container, err)
		}
		c.workAreas[container] = area

		ids, err := backend.Windows(container)
		if err != nil {
			return nil, fmt.Errorf("list windows of container %d: %w", container, err)
		}
		existing[container] = ids
	}

	ignored := 0
	for _, container := range c.containers {
		for _, id := range existing[container] {
			// Sticky windows are listed by every container.
			if _, ok := c.seen[id]; ok {
				continue
			}
			if !c.manage(container, id) {
				ignored++
			}
		}
	}

	for _, container := range c.containers {
		c.subs = append(c.subs,
			backend.OnWindowCreated(container, func(id platform.WindowID) {
				c.windowCreated(container, id)
			}),
			backend.OnWorkAreaChanged(container, func(area platform.Rect) {
				c.workAreaChanged(container, area)
			}),
		)
	}

	c.logger.Info("maximize mode enabled",
		"containers", c.containers,
		"managed", c.store.Len(),
		"ignored", ignored,
	)
	return c, nil
}

// Disable ends the activation interval, restoring every managed window to its
// saved state. The controller must not be used afterwards.
func (c *Controller) Disable() {
	c.mustBeActive()

	for _, sub := range c.subs {
		sub.Unsubscribe()
	}
	c.subs = nil

	restored := 0
	for _, r := range c.store.Records() {
		c.store.Remove(r.Window)
		r.destroyed.Unsubscribe()
		if err := c.restore(r); err != nil {
			c.logger.Warn("failed to restore window", "window", r.Window, "error", err)
			continue
		}
		restored++
	}

	c.logger.Info("maximize mode disabled", "restored", restored)
	c.disabled = true
	c.store = nil
	c.seen = nil
}

// NumberOfManagedWindows returns how many windows currently have a record.
func (c *Controller) NumberOfManagedWindows() int {
	c.mustBeActive()
	return c.store.Len()
}

// Containers returns the watched containers.
func (c *Controller) Containers() []platform.ContainerID {
	return append([]platform.ContainerID(nil), c.containers...)
}

// Records returns a snapshot of the managed records.
func (c *Controller) Records() []Record {
	c.mustBeActive()
	out := make([]Record, 0, c.store.Len())
	for _, r := range c.store.Records() {
		out = append(out, *r)
	}
	return out
}

// Reconcile compares the store with the registry. Records of windows the
// window system no longer knows are dropped without a restore, and windows
// that were never seen are managed as if they had just been created. It covers
// notifications the window system failed to deliver.
//
// A managed window missing from every listing but still known, say one moved
// to an unwatched container, keeps its record and is restored on Disable.
func (c *Controller) Reconcile() (pruned, adopted int) {
	c.mustBeActive()

	listed := make(map[platform.WindowID]platform.ContainerID)
	var order []platform.WindowID
	for _, container := range c.containers {
		ids, err := c.backend.Windows(container)
		if err != nil {
			c.logger.Warn("reconcile: failed to list windows", "container", container, "error", err)
			continue
		}
		for _, id := range ids {
			if _, ok := listed[id]; ok {
				continue
			}
			listed[id] = container
			order = append(order, id)
		}
	}

	for _, r := range c.store.Records() {
		if container, ok := listed[r.Window]; ok {
			r.Container = container
			continue
		}
		if !c.gone(r.Window) {
			continue
		}
		c.forget(r.Window)
		pruned++
		c.logger.Debug("pruned vanished window", "window", r.Window)
	}

	for _, id := range order {
		if _, ok := c.seen[id]; ok {
			continue
		}
		if c.manage(listed[id], id) {
			adopted++
		}
	}
	return pruned, adopted
}

// gone reports whether the window system has no window with this id.
func (c *Controller) gone(id platform.WindowID) bool {
	_, err := c.backend.ShowState(id)
	return errors.Is(err, platform.ErrWindowNotFound)
}

func (c *Controller) windowCreated(container platform.ContainerID, id platform.WindowID) {
	c.mustBeActive()
	if _, ok := c.seen[id]; ok {
		return
	}
	c.manage(container, id)
}

func (c *Controller) windowDestroyed(id platform.WindowID) {
	c.mustBeActive()
	c.forget(id)
	c.logger.Debug("managed window destroyed", "window", id)
}

func (c *Controller) workAreaChanged(container platform.ContainerID, area platform.Rect) {
	c.mustBeActive()
	c.workAreas[container] = area

	for _, r := range c.store.Records() {
		if r.Container != container || !r.CurrentlyUnmaximizable() {
			continue
		}
		if err := c.place(r.Window, area); err != nil {
			c.logger.Warn("failed to reposition window", "window", r.Window, "error", err)
		}
	}
}

// manage classifies a newly observed window, records it if eligible and
// applies the entry transition. It reports whether a record was created.
func (c *Controller) manage(container platform.ContainerID, id platform.WindowID) bool {
	c.seen[id] = struct{}{}

	r, err := c.snapshot(container, id)
	if err != nil {
		c.logger.Warn("skipping unreadable window", "window", id, "error", err)
		return false
	}
	if r == nil {
		return false
	}

	c.store.Insert(r)
	r.destroyed = c.backend.OnWindowDestroyed(id, c.windowDestroyed)

	if err := c.enter(r); err != nil {
		c.logger.Warn("failed to transition window", "window", id, "error", err)
	}
	return true
}

func (c *Controller) snapshot(container platform.ContainerID, id platform.WindowID) (*Record, error) {
	typ, err := c.backend.WindowType(id)
	if err != nil {
		return nil, fmt.Errorf("window type: %w", err)
	}
	canMaximize, err := c.backend.CanMaximize(id)
	if err != nil {
		return nil, fmt.Errorf("can maximize: %w", err)
	}
	class := Classify(typ, canMaximize)
	if !class.Managed() {
		c.logger.Debug("ignoring window", "window", id, "type", typ)
		return nil, nil
	}

	state, err := c.backend.ShowState(id)
	if err != nil {
		return nil, fmt.Errorf("show state: %w", err)
	}
	bounds, err := c.backend.Bounds(id)
	if err != nil {
		return nil, fmt.Errorf("bounds: %w", err)
	}

	return &Record{
		Window:            id,
		Container:         container,
		Class:             class,
		OriginalBounds:    bounds,
		OriginalShowState: state,
	}, nil
}

func (c *Controller) enter(r *Record) error {
	if r.OriginalShowState == platform.ShowStateMinimized {
		c.logger.Debug("leaving minimized window alone", "window", r.Window)
		return nil
	}

	switch r.Class {
	case Maximizable:
		if r.OriginalShowState == platform.ShowStateMaximized {
			return nil
		}
		c.logger.Debug("maximizing window", "window", r.Window, "bounds", r.OriginalBounds.String())
		return c.backend.Maximize(r.Window)
	case TrackedOnly:
		return c.place(r.Window, c.workAreas[r.Container])
	}
	return nil
}

// place moves a tracked window into area without resizing it. Minimized
// windows stay where they are.
func (c *Controller) place(id platform.WindowID, area platform.Rect) error {
	state, err := c.backend.ShowState(id)
	if err != nil {
		return err
	}
	if state == platform.ShowStateMinimized {
		return nil
	}
	bounds, err := c.backend.Bounds(id)
	if err != nil {
		return err
	}
	next := Center(bounds, area)
	if next == bounds {
		return nil
	}
	c.logger.Debug("repositioning window", "window", id, "from", bounds.String(), "to", next.String())
	return c.backend.SetBounds(id, next)
}

// restore applies the exit transition for one record. Show state changes the
// user made during the interval win over the snapshot.
func (c *Controller) restore(r *Record) error {
	current, err := c.backend.ShowState(r.Window)
	if err != nil {
		return err
	}
	if current == platform.ShowStateMinimized || r.OriginalShowState == platform.ShowStateMinimized {
		return nil
	}

	if r.HadRestoreState() {
		if current != platform.ShowStateMaximized {
			return c.backend.Maximize(r.Window)
		}
		return nil
	}
	if r.OriginalShowState == platform.ShowStateNormal {
		if current == platform.ShowStateMaximized {
			if err := c.backend.Restore(r.Window); err != nil {
				return err
			}
		}
		bounds, err := c.backend.Bounds(r.Window)
		if err != nil {
			return err
		}
		if bounds != r.OriginalBounds {
			return c.backend.SetBounds(r.Window, r.OriginalBounds)
		}
	}
	return nil
}

// forget drops a record without touching its window.
func (c *Controller) forget(id platform.WindowID) {
	r := c.store.Remove(id)
	r.destroyed.Unsubscribe()
	delete(c.seen, id)
}

func (c *Controller) mustBeActive() {
	if c.disabled {
		panic("maximize: controller used after Disable")
	}
}

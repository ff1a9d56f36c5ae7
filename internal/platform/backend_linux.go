//go:build linux

package platform

import (
	"fmt"
	"log"
	"sync"

	"github.com/1broseidon/maxmode/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// LinuxBackend wraps an X11 connection behind the platform Backend interface.
// Containers are EWMH virtual desktops. Window lifecycle and work area
// notifications are derived from root window property changes and delivered
// on the X11 event loop goroutine.
type LinuxBackend struct {
	conn *x11.Connection

	mu        sync.Mutex
	nextSub   uint64
	known     map[xproto.Window]struct{}
	lastAreas map[ContainerID]Rect
	created   map[ContainerID]map[uint64]func(WindowID)
	destroyed map[WindowID]map[uint64]func(WindowID)
	workArea  map[ContainerID]map[uint64]func(Rect)
}

var _ Backend = (*LinuxBackend)(nil)

type subscriptionFunc func()

func (f subscriptionFunc) Unsubscribe() { f() }

// NewLinuxBackend creates a Linux platform backend from an existing X11
// connection and starts watching the root window.
func NewLinuxBackend(conn *x11.Connection) (*LinuxBackend, error) {
	b := &LinuxBackend{
		conn:      conn,
		known:     make(map[xproto.Window]struct{}),
		lastAreas: make(map[ContainerID]Rect),
		created:   make(map[ContainerID]map[uint64]func(WindowID)),
		destroyed: make(map[WindowID]map[uint64]func(WindowID)),
		workArea:  make(map[ContainerID]map[uint64]func(Rect)),
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}
	for _, win := range clients {
		b.known[win] = struct{}{}
	}

	if err := conn.WatchRootProperties(b.rootPropertyChanged); err != nil {
		return nil, err
	}
	return b, nil
}

// NewLinuxBackendFromDisplay creates a new Linux backend by opening a fresh X11 connection.
func NewLinuxBackendFromDisplay() (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	b, err := NewLinuxBackend(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return b, nil
}

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

// EventLoop starts the X11 event loop (blocking).
func (b *LinuxBackend) EventLoop() {
	if b != nil && b.conn != nil {
		b.conn.EventLoop()
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// RootWindow returns the X11 root window ID.
func (b *LinuxBackend) RootWindow() xproto.Window {
	if b == nil || b.conn == nil {
		return 0
	}
	return b.conn.Root
}

// CurrentContainer returns the current virtual desktop.
func (b *LinuxBackend) CurrentContainer() (ContainerID, error) {
	desktop, err := b.conn.CurrentDesktop()
	if err != nil {
		return 0, err
	}
	return ContainerID(desktop), nil
}

// Windows lists the windows on a desktop, top-most first. Sticky windows
// belong to every desktop. Windows first seen here are not reported through
// OnWindowCreated.
func (b *LinuxBackend) Windows(container ContainerID) ([]WindowID, error) {
	stacking, err := b.conn.StackingOrder()
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	for _, win := range stacking {
		b.known[win] = struct{}{}
	}
	b.mu.Unlock()

	out := make([]WindowID, 0, len(stacking))
	for _, win := range stacking {
		if b.onContainer(win, container) {
			out = append(out, WindowID(win))
		}
	}
	return out, nil
}

func (b *LinuxBackend) onContainer(win xproto.Window, container ContainerID) bool {
	desktop, err := b.conn.WindowDesktop(win)
	if err != nil {
		// Without _NET_WM_DESKTOP the window is on the only desktop there is.
		return true
	}
	return desktop == x11.Sticky || ContainerID(desktop) == container
}

func (b *LinuxBackend) OnWindowCreated(container ContainerID, fn func(WindowID)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.nextSub
	b.nextSub++
	if b.created[container] == nil {
		b.created[container] = make(map[uint64]func(WindowID))
	}
	b.created[container][key] = fn
	return subscriptionFunc(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.created[container], key)
	})
}

func (b *LinuxBackend) OnWindowDestroyed(id WindowID, fn func(WindowID)) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.nextSub
	b.nextSub++
	if b.destroyed[id] == nil {
		b.destroyed[id] = make(map[uint64]func(WindowID))
	}
	b.destroyed[id][key] = fn
	return subscriptionFunc(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.destroyed[id], key)
		if len(b.destroyed[id]) == 0 {
			delete(b.destroyed, id)
		}
	})
}

func (b *LinuxBackend) WorkArea(container ContainerID) (Rect, error) {
	area, err := b.conn.WorkArea(int(container))
	if err != nil {
		return Rect{}, err
	}
	return rectFromArea(area), nil
}

func (b *LinuxBackend) OnWorkAreaChanged(container ContainerID, fn func(Rect)) Subscription {
	area, err := b.WorkArea(container)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.lastAreas[container] = area
	}
	key := b.nextSub
	b.nextSub++
	if b.workArea[container] == nil {
		b.workArea[container] = make(map[uint64]func(Rect))
	}
	b.workArea[container][key] = fn
	return subscriptionFunc(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.workArea[container], key)
	})
}

func (b *LinuxBackend) rootPropertyChanged(name string) {
	switch name {
	case x11.PropClientList:
		b.syncClients()
	case x11.PropWorkArea:
		b.syncWorkAreas()
	}
}

// syncClients diffs the client list against the last known set and notifies
// subscribers about windows that appeared or went away.
func (b *LinuxBackend) syncClients() {
	clients, err := b.conn.ClientList()
	if err != nil {
		log.Printf("Warning: failed to read client list: %v", err)
		return
	}
	current := make(map[xproto.Window]struct{}, len(clients))
	for _, win := range clients {
		current[win] = struct{}{}
	}

	type delivery struct {
		id WindowID
		fn func(WindowID)
	}
	var gone, added []delivery

	b.mu.Lock()
	for win := range b.known {
		if _, ok := current[win]; ok {
			continue
		}
		delete(b.known, win)
		id := WindowID(win)
		for _, fn := range b.destroyed[id] {
			gone = append(gone, delivery{id: id, fn: fn})
		}
		delete(b.destroyed, id)
	}
	var fresh []xproto.Window
	for _, win := range clients {
		if _, ok := b.known[win]; ok {
			continue
		}
		b.known[win] = struct{}{}
		fresh = append(fresh, win)
	}
	subs := make(map[ContainerID][]func(WindowID), len(b.created))
	for container, fns := range b.created {
		for _, fn := range fns {
			subs[container] = append(subs[container], fn)
		}
	}
	b.mu.Unlock()

	for _, win := range fresh {
		for container, fns := range subs {
			if !b.onContainer(win, container) {
				continue
			}
			for _, fn := range fns {
				added = append(added, delivery{id: WindowID(win), fn: fn})
			}
		}
	}

	for _, d := range gone {
		d.fn(d.id)
	}
	for _, d := range added {
		d.fn(d.id)
	}
}

func (b *LinuxBackend) syncWorkAreas() {
	type delivery struct {
		area Rect
		fns  []func(Rect)
	}

	b.mu.Lock()
	containers := make([]ContainerID, 0, len(b.workArea))
	for container, fns := range b.workArea {
		if len(fns) > 0 {
			containers = append(containers, container)
		}
	}
	b.mu.Unlock()

	var deliveries []delivery
	for _, container := range containers {
		area, err := b.WorkArea(container)
		if err != nil {
			log.Printf("Warning: failed to read work area of desktop %d: %v", container, err)
			continue
		}

		b.mu.Lock()
		if b.lastAreas[container] == area {
			b.mu.Unlock()
			continue
		}
		b.lastAreas[container] = area
		d := delivery{area: area}
		for _, fn := range b.workArea[container] {
			d.fns = append(d.fns, fn)
		}
		b.mu.Unlock()
		deliveries = append(deliveries, d)
	}

	for _, d := range deliveries {
		for _, fn := range d.fns {
			fn(d.area)
		}
	}
}

func (b *LinuxBackend) WindowType(id WindowID) (WindowType, error) {
	types, err := b.conn.WindowTypes(xproto.Window(id))
	if err != nil {
		return 0, err
	}
	for _, t := range types {
		if wt, ok := windowTypeFromAtom(t); ok {
			return wt, nil
		}
	}
	return WindowTypeNormal, nil
}

func windowTypeFromAtom(atom string) (WindowType, bool) {
	switch atom {
	case "_NET_WM_WINDOW_TYPE_NORMAL", "_NET_WM_WINDOW_TYPE_DIALOG":
		return WindowTypeNormal, true
	case "_NET_WM_WINDOW_TYPE_DOCK":
		return WindowTypePanel, true
	case "_NET_WM_WINDOW_TYPE_NOTIFICATION", "_NET_WM_WINDOW_TYPE_SPLASH":
		return WindowTypePopup, true
	case "_NET_WM_WINDOW_TYPE_MENU", "_NET_WM_WINDOW_TYPE_DROPDOWN_MENU", "_NET_WM_WINDOW_TYPE_POPUP_MENU":
		return WindowTypeMenu, true
	case "_NET_WM_WINDOW_TYPE_TOOLTIP":
		return WindowTypeTooltip, true
	case "_NET_WM_WINDOW_TYPE_DESKTOP", "_NET_WM_WINDOW_TYPE_TOOLBAR", "_NET_WM_WINDOW_TYPE_UTILITY",
		"_NET_WM_WINDOW_TYPE_COMBO", "_NET_WM_WINDOW_TYPE_DND":
		return WindowTypeControl, true
	}
	return 0, false
}

func (b *LinuxBackend) CanMaximize(id WindowID) (bool, error) {
	return b.conn.CanMaximize(xproto.Window(id))
}

func (b *LinuxBackend) ShowState(id WindowID) (ShowState, error) {
	st, err := b.conn.State(xproto.Window(id))
	if err != nil {
		return 0, b.lookupError(id, err)
	}
	switch {
	case st.Minimized:
		return ShowStateMinimized, nil
	case st.Maximized:
		return ShowStateMaximized, nil
	default:
		return ShowStateNormal, nil
	}
}

// lookupError wraps err with ErrWindowNotFound when the window is no longer
// in the client list.
func (b *LinuxBackend) lookupError(id WindowID, err error) error {
	clients, cerr := b.conn.ClientList()
	if cerr != nil {
		return err
	}
	for _, win := range clients {
		if WindowID(win) == id {
			return err
		}
	}
	return fmt.Errorf("window %d: %w: %v", id, ErrWindowNotFound, err)
}

func (b *LinuxBackend) Bounds(id WindowID) (Rect, error) {
	x, y, w, h, err := b.conn.Geometry(xproto.Window(id))
	if err != nil {
		return Rect{}, err
	}
	return Rect{X: x, Y: y, Width: w, Height: h}, nil
}

func (b *LinuxBackend) SetBounds(id WindowID, bounds Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(id), bounds.X, bounds.Y, bounds.Width, bounds.Height)
}

func (b *LinuxBackend) Maximize(id WindowID) error {
	return b.conn.SetMaximized(xproto.Window(id), true)
}

func (b *LinuxBackend) Minimize(id WindowID) error {
	return b.conn.Iconify(xproto.Window(id))
}

func (b *LinuxBackend) Restore(id WindowID) error {
	st, err := b.conn.State(xproto.Window(id))
	if err != nil {
		return err
	}
	if st.Minimized {
		if err := b.conn.Deiconify(xproto.Window(id)); err != nil {
			return err
		}
	}
	if st.Maximized {
		return b.conn.SetMaximized(xproto.Window(id), false)
	}
	return nil
}

func rectFromArea(a x11.Area) Rect {
	return Rect{X: a.X, Y: a.Y, Width: a.Width, Height: a.Height}
}

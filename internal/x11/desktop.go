package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Sticky is the desktop number reported for windows shown on all desktops.
const Sticky = -1

// CurrentDesktop returns the current virtual desktop number (0-indexed).
func (c *Connection) CurrentDesktop() (int, error) {
	desktop, err := ewmh.CurrentDesktopGet(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to get current desktop: %w", err)
	}
	return int(desktop), nil
}

// WindowDesktop returns the desktop a window is on, or Sticky.
func (c *Connection) WindowDesktop(win xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	if desktop == 0xFFFFFFFF {
		return Sticky, nil
	}
	return int(desktop), nil
}

// ClientList returns the managed top-level windows in mapping order.
func (c *Connection) ClientList() ([]xproto.Window, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}
	return clients, nil
}

// StackingOrder returns the managed windows top-most first. Window managers
// raise on activation, so this doubles as a most-recently-used order.
func (c *Connection) StackingOrder() ([]xproto.Window, error) {
	stacking, err := ewmh.ClientListStackingGet(c.XUtil)
	if err != nil {
		// Some WMs only publish _NET_CLIENT_LIST.
		return c.ClientList()
	}
	out := make([]xproto.Window, len(stacking))
	for i, win := range stacking {
		out[len(stacking)-1-i] = win
	}
	return out, nil
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

const (
	stateMaxVert = "_NET_WM_STATE_MAXIMIZED_VERT"
	stateMaxHorz = "_NET_WM_STATE_MAXIMIZED_HORZ"
	stateHidden  = "_NET_WM_STATE_HIDDEN"

	actionMaxVert = "_NET_WM_ACTION_MAXIMIZE_VERT"
	actionMaxHorz = "_NET_WM_ACTION_MAXIMIZE_HORZ"

	// _NET_WM_STATE actions.
	stateRemove = 0
	stateAdd    = 1

	sourcePager = 2
)

// WindowState is the subset of _NET_WM_STATE and WM_STATE the mode cares about.
type WindowState struct {
	Maximized bool
	Minimized bool
}

// WindowTypes returns the _NET_WM_WINDOW_TYPE atoms of a window. A window
// without the property yields an empty slice and no error.
func (c *Connection) WindowTypes(win xproto.Window) ([]string, error) {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		if _, perr := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply(); perr != nil {
			return nil, fmt.Errorf("window %d: %w", win, perr)
		}
		return nil, nil
	}
	return types, nil
}

// CanMaximize reports whether the window manager allows maximizing the window
// in both directions. Without _NET_WM_ALLOWED_ACTIONS, a window whose normal
// hints pin its size is treated as fixed.
func (c *Connection) CanMaximize(win xproto.Window) (bool, error) {
	actions, err := ewmh.WmAllowedActionsGet(c.XUtil, win)
	if err == nil && len(actions) > 0 {
		var vert, horz bool
		for _, a := range actions {
			switch a {
			case actionMaxVert:
				vert = true
			case actionMaxHorz:
				horz = true
			}
		}
		return vert && horz, nil
	}

	hints, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return true, nil
	}
	const sized = icccm.SizeHintPMinSize | icccm.SizeHintPMaxSize
	if hints.Flags&sized != sized {
		return true, nil
	}
	fixed := hints.MinWidth == hints.MaxWidth && hints.MinHeight == hints.MaxHeight
	return !fixed, nil
}

// State reads the maximized and minimized flags of a window.
func (c *Connection) State(win xproto.Window) (WindowState, error) {
	var st WindowState

	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err == nil {
		var vert, horz bool
		for _, s := range states {
			switch s {
			case stateMaxVert:
				vert = true
			case stateMaxHorz:
				horz = true
			case stateHidden:
				st.Minimized = true
			}
		}
		st.Maximized = vert && horz
	}

	if wmState, err := icccm.WmStateGet(c.XUtil, win); err == nil && wmState.State == icccm.StateIconic {
		st.Minimized = true
	}
	return st, nil
}

// Geometry returns the client area of a window in root coordinates.
func (c *Connection) Geometry(win xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get geometry of %d: %w", win, err)
	}
	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to translate coordinates of %d: %w", win, err)
	}
	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}

// MoveResizeWindow moves and resizes a window without changing its state.
func (c *Connection) MoveResizeWindow(win xproto.Window, x, y, width, height int) error {
	// Prefer the EWMH request so the WM accounts for decorations.
	if err := ewmh.MoveresizeWindow(c.XUtil, win, x, y, width, height); err != nil {
		xwindow.New(c.XUtil, win).MoveResize(x, y, width, height)
	}
	return nil
}

// SetMaximized adds or removes both maximized states in a single request.
func (c *Connection) SetMaximized(win xproto.Window, maximized bool) error {
	vert, err := xprop.Atm(c.XUtil, stateMaxVert)
	if err != nil {
		return err
	}
	horz, err := xprop.Atm(c.XUtil, stateMaxHorz)
	if err != nil {
		return err
	}
	action := uint32(stateRemove)
	if maximized {
		action = stateAdd
	}
	return c.sendRootMessage(win, "_NET_WM_STATE", action, uint32(vert), uint32(horz), sourcePager, 0)
}

// Iconify asks the window manager to minimize a window (ICCCM 4.1.4).
func (c *Connection) Iconify(win xproto.Window) error {
	return c.sendRootMessage(win, "WM_CHANGE_STATE", uint32(icccm.StateIconic), 0, 0, 0, 0)
}

// Deiconify maps an iconic window back to the normal state.
func (c *Connection) Deiconify(win xproto.Window) error {
	return xproto.MapWindowChecked(c.XUtil.Conn(), win).Check()
}

// sendRootMessage sends a 32-bit client message about win to the root window.
// The message is built by hand because the xgbutil ewmh request helpers
// panic on this library version (uint vs int type assertion).
func (c *Connection) sendRootMessage(win xproto.Window, atomName string, data ...uint32) error {
	atom, err := xprop.Atm(c.XUtil, atomName)
	if err != nil {
		return fmt.Errorf("failed to intern %s: %w", atomName, err)
	}

	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
}

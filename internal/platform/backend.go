package platform

import (
	"errors"
	"fmt"
)

// ErrWindowNotFound is returned for operations on windows the window system
// does not know.
var ErrWindowNotFound = errors.New("window not found")

// WindowID is a platform-neutral window identifier.
type WindowID uint32

// ContainerID identifies a logical group of top-level windows watched by the
// mode controller. On X11 it is the EWMH virtual desktop number.
type ContainerID int

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// String renders the rect as "x,y wxh".
func (r Rect) String() string {
	return fmt.Sprintf("%d,%d %dx%d", r.X, r.Y, r.Width, r.Height)
}

// SameSize reports whether both rects have identical dimensions.
func (r Rect) SameSize(o Rect) bool {
	return r.Width == o.Width && r.Height == o.Height
}

// ShowState is how a window is currently presented.
type ShowState int

const (
	ShowStateNormal ShowState = iota
	ShowStateMaximized
	ShowStateMinimized
)

func (s ShowState) String() string {
	switch s {
	case ShowStateNormal:
		return "normal"
	case ShowStateMaximized:
		return "maximized"
	case ShowStateMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// WindowType is the declared role of a window.
type WindowType int

const (
	WindowTypeNormal WindowType = iota
	WindowTypePanel
	WindowTypePopup
	WindowTypeControl
	WindowTypeMenu
	WindowTypeTooltip
)

func (t WindowType) String() string {
	switch t {
	case WindowTypeNormal:
		return "normal"
	case WindowTypePanel:
		return "panel"
	case WindowTypePopup:
		return "popup"
	case WindowTypeControl:
		return "control"
	case WindowTypeMenu:
		return "menu"
	case WindowTypeTooltip:
		return "tooltip"
	default:
		return "unknown"
	}
}

// Subscription is a handle to a registered notification callback.
type Subscription interface {
	Unsubscribe()
}

// Registry enumerates top-level windows and reports their lifecycle.
type Registry interface {
	// Windows lists the windows of a container, most recently used first.
	Windows(container ContainerID) ([]WindowID, error)
	OnWindowCreated(container ContainerID, fn func(WindowID)) Subscription
	OnWindowDestroyed(id WindowID, fn func(WindowID)) Subscription
}

// Geometry reports the usable desktop area of a container.
type Geometry interface {
	WorkArea(container ContainerID) (Rect, error)
	OnWorkAreaChanged(container ContainerID, fn func(Rect)) Subscription
}

// WindowState reads and drives the presentation of a single window.
// None of these operations may activate, raise or re-stack the window.
type WindowState interface {
	WindowType(id WindowID) (WindowType, error)
	CanMaximize(id WindowID) (bool, error)
	ShowState(id WindowID) (ShowState, error)
	Bounds(id WindowID) (Rect, error)
	SetBounds(id WindowID, bounds Rect) error
	Maximize(id WindowID) error
	Minimize(id WindowID) error
	Restore(id WindowID) error
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Registry
	Geometry
	WindowState
}

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// Root window properties that drive the mode controller.
const (
	PropClientList = "_NET_CLIENT_LIST"
	PropWorkArea   = "_NET_WORKAREA"
)

// WatchRootProperties calls fn with the name of every root window property
// that changes. Callbacks run on the event loop goroutine.
func (c *Connection) WatchRootProperties(fn func(name string)) error {
	if err := xwindow.New(c.XUtil, c.Root).Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("failed to listen on root window: %w", err)
	}

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		fn(name)
	}).Connect(c.XUtil, c.Root)
	return nil
}

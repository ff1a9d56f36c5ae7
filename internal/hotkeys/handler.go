package hotkeys

import (
	"log"
	"sync"

	"github.com/1broseidon/maxmode/internal/platform"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Toggler flips the maximize mode.
type Toggler interface {
	Toggle() (bool, error)
}

// x11Accessor is an optional interface for backends that expose X11 internals.
type x11Accessor interface {
	XUtil() *xgbutil.XUtil
	RootWindow() xproto.Window
}

// Handler manages global keyboard shortcuts
type Handler struct {
	xu      *xgbutil.XUtil
	root    xproto.Window
	toggler Toggler
}

var ignoreModsOnce sync.Once

// NewHandler creates a new hotkey handler. It returns nil when the backend
// has no X11 connection to grab keys on.
func NewHandler(backend platform.Backend, toggler Toggler) *Handler {
	accessor, ok := backend.(x11Accessor)
	if !ok || accessor.XUtil() == nil {
		return nil
	}
	xu := accessor.XUtil()

	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:      xu,
		root:    accessor.RootWindow(),
		toggler: toggler,
	}
}

// Register binds the mode toggle to a key sequence such as "Mod4-Mod1-m".
func (h *Handler) Register(keySequence string) error {
	return h.RegisterFunc(keySequence, func() {
		active, err := h.toggler.Toggle()
		if err != nil {
			log.Printf("Maximize mode toggle failed: %v", err)
			return
		}
		log.Printf("Maximize mode toggled by hotkey (active=%v)", active)
	})
}

// RegisterFunc registers an arbitrary hotkey callback.
func (h *Handler) RegisterFunc(keySequence string, callback func()) error {
	return keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		callback()
	}).Connect(h.xu, h.root, keySequence, true)
}

// Unregister drops every key grab on the root window.
func (h *Handler) Unregister() {
	keybind.Detach(h.xu, h.root)
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}

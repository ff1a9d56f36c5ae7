package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Area is a rectangle in root window coordinates.
type Area struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Monitor represents a physical display
type Monitor struct {
	ID   int
	Name string
	Area
}

// Monitors retrieves all active monitors using XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC.
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: name,
			Area: Area{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}

	return monitors, nil
}

// WorkArea returns the usable area of a virtual desktop. It reads
// _NET_WORKAREA and falls back to the first monitor, then to the root window.
func (c *Connection) WorkArea(desktop int) (Area, error) {
	if areas, err := ewmh.WorkareaGet(c.XUtil); err == nil && len(areas) > 0 {
		idx := desktop
		if idx < 0 || idx >= len(areas) {
			idx = 0
		}
		wa := areas[idx]
		return Area{X: wa.X, Y: wa.Y, Width: int(wa.Width), Height: int(wa.Height)}, nil
	}

	if monitors, err := c.Monitors(); err == nil && len(monitors) > 0 {
		return monitors[0].Area, nil
	}

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return Area{}, fmt.Errorf("failed to get root geometry: %w", err)
	}
	return Area{Width: int(geom.Width), Height: int(geom.Height)}, nil
}

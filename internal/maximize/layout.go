package maximize

import "github.com/1broseidon/maxmode/internal/platform"

// Center places bounds in the middle of area without changing its size.
// On an axis where the window is larger than the area it is pinned to the
// area's origin.
func Center(bounds, area platform.Rect) platform.Rect {
	out := bounds
	out.X = centerAxis(bounds.Width, area.X, area.Width)
	out.Y = centerAxis(bounds.Height, area.Y, area.Height)
	return out
}

func centerAxis(size, origin, span int) int {
	if size >= span {
		return origin
	}
	return origin + (span-size)/2
}

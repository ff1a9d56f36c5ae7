package maximize

import "github.com/1broseidon/maxmode/internal/platform"

// Eligibility is the controller's classification of a window.
type Eligibility int

const (
	// Ignored windows are never touched and never counted.
	Ignored Eligibility = iota
	// TrackedOnly windows are counted and repositioned but never maximized.
	TrackedOnly
	// Maximizable windows are forced into the maximized state.
	Maximizable
)

func (e Eligibility) String() string {
	switch e {
	case Ignored:
		return "ignored"
	case TrackedOnly:
		return "tracked"
	case Maximizable:
		return "maximizable"
	default:
		return "unknown"
	}
}

// Managed reports whether windows of this class get a record in the store.
func (e Eligibility) Managed() bool {
	return e == TrackedOnly || e == Maximizable
}

// Classify decides how the controller treats a window of the given type.
func Classify(t platform.WindowType, canMaximize bool) Eligibility {
	if t != platform.WindowTypeNormal {
		return Ignored
	}
	if !canMaximize {
		return TrackedOnly
	}
	return Maximizable
}

package maximize

import (
	"strings"
	"testing"

	"github.com/1broseidon/maxmode/internal/platform"
)

var desktop = platform.Rect{X: 0, Y: 0, Width: 800, Height: 600}

const watched platform.ContainerID = 0

func newBackend() *platform.MemoryBackend {
	return platform.NewMemoryBackend(desktop)
}

func createWindow(b *platform.MemoryBackend, typ platform.WindowType, bounds platform.Rect) platform.WindowID {
	return b.CreateWindow(watched, platform.WindowSpec{Type: typ, CanMaximize: true, Bounds: bounds})
}

func createNonMaximizable(b *platform.MemoryBackend, bounds platform.Rect) platform.WindowID {
	return b.CreateWindow(watched, platform.WindowSpec{Type: platform.WindowTypeNormal, Bounds: bounds})
}

func enable(t *testing.T, b platform.Backend) *Controller {
	t.Helper()
	c, err := Enable(b, Options{Containers: []platform.ContainerID{watched}})
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	return c
}

func expectState(t *testing.T, b *platform.MemoryBackend, id platform.WindowID, want platform.ShowState) {
	t.Helper()
	got, err := b.ShowState(id)
	if err != nil {
		t.Fatalf("show state of %d: %v", id, err)
	}
	if got != want {
		t.Fatalf("window %d: expected %s, got %s", id, want, got)
	}
}

func expectBounds(t *testing.T, b *platform.MemoryBackend, id platform.WindowID, want platform.Rect) {
	t.Helper()
	got, err := b.Bounds(id)
	if err != nil {
		t.Fatalf("bounds of %d: %v", id, err)
	}
	if got != want {
		t.Fatalf("window %d: expected bounds %s, got %s", id, want, got)
	}
}

func expectPanic(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic containing %q", substr)
		}
		msg, _ := r.(string)
		if !strings.Contains(msg, substr) {
			t.Fatalf("expected panic containing %q, got %v", substr, r)
		}
	}()
	fn()
}

func TestController_EnableWithNoWindows(t *testing.T) {
	b := newBackend()
	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 0 {
		t.Fatalf("expected 0 managed windows, got %d", n)
	}
	c.Disable()
	if n := b.Subscribers(); n != 0 {
		t.Fatalf("expected all subscriptions released, %d remain", n)
	}
}

func TestController_EnableRequiresContainers(t *testing.T) {
	if _, err := Enable(newBackend(), Options{}); err == nil {
		t.Fatalf("expected error without containers")
	}
	if _, err := Enable(nil, Options{Containers: []platform.ContainerID{0}}); err == nil {
		t.Fatalf("expected error with nil backend")
	}
}

func TestController_PreExistingWindows(t *testing.T) {
	b := newBackend()
	rect1 := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	rect2 := platform.Rect{X: 10, Y: 60, Width: 200, Height: 50}
	rect3 := platform.Rect{X: 20, Y: 140, Width: 100, Height: 100}
	rect := platform.Rect{X: 80, Y: 90, Width: 100, Height: 110}

	w1 := createWindow(b, platform.WindowTypeNormal, rect1)
	w2 := createWindow(b, platform.WindowTypeNormal, rect2)
	w3 := createNonMaximizable(b, rect3)
	ignored := []platform.WindowID{
		createWindow(b, platform.WindowTypePanel, rect),
		createWindow(b, platform.WindowTypePopup, rect),
		createWindow(b, platform.WindowTypeControl, rect),
		createWindow(b, platform.WindowTypeMenu, rect),
		createWindow(b, platform.WindowTypeTooltip, rect),
	}

	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 3 {
		t.Fatalf("expected 3 managed windows, got %d", n)
	}
	expectState(t, b, w1, platform.ShowStateMaximized)
	expectState(t, b, w2, platform.ShowStateMaximized)
	expectState(t, b, w3, platform.ShowStateNormal)

	moved, _ := b.Bounds(w3)
	if moved.X == rect3.X && moved.Y == rect3.Y {
		t.Fatalf("expected tracked window to move, still at %s", moved)
	}
	if !moved.SameSize(rect3) {
		t.Fatalf("expected tracked window size preserved, got %s", moved)
	}
	for _, id := range ignored {
		expectState(t, b, id, platform.ShowStateNormal)
		expectBounds(t, b, id, rect)
	}

	c.Disable()
	expectState(t, b, w1, platform.ShowStateNormal)
	expectState(t, b, w2, platform.ShowStateNormal)
	expectState(t, b, w3, platform.ShowStateNormal)
	expectBounds(t, b, w1, rect1)
	expectBounds(t, b, w2, rect2)
	expectBounds(t, b, w3, rect3)
	for _, id := range ignored {
		expectState(t, b, id, platform.ShowStateNormal)
		expectBounds(t, b, id, rect)
	}
}

func TestController_WindowsCreatedWhileActive(t *testing.T) {
	b := newBackend()
	c := enable(t, b)

	rect1 := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	rect2 := platform.Rect{X: 10, Y: 60, Width: 200, Height: 50}
	rect3 := platform.Rect{X: 20, Y: 140, Width: 100, Height: 100}
	rect := platform.Rect{X: 80, Y: 90, Width: 100, Height: 110}

	w1 := createWindow(b, platform.WindowTypeNormal, rect1)
	w2 := createWindow(b, platform.WindowTypeNormal, rect2)
	w3 := createNonMaximizable(b, rect3)
	menu := createWindow(b, platform.WindowTypeMenu, rect)

	expectState(t, b, w1, platform.ShowStateMaximized)
	expectState(t, b, w2, platform.ShowStateMaximized)
	expectState(t, b, w3, platform.ShowStateNormal)
	if got, _ := b.Bounds(w3); got == rect3 {
		t.Fatalf("expected created tracked window to be repositioned")
	}
	expectBounds(t, b, menu, rect)
	if n := c.NumberOfManagedWindows(); n != 3 {
		t.Fatalf("expected 3 managed windows, got %d", n)
	}

	c.Disable()
	expectBounds(t, b, w1, rect1)
	expectBounds(t, b, w2, rect2)
	expectBounds(t, b, w3, rect3)
	expectBounds(t, b, menu, rect)
	expectState(t, b, w1, platform.ShowStateNormal)
	expectState(t, b, w2, platform.ShowStateNormal)
}

func TestController_WindowsDestroyedWhileActive(t *testing.T) {
	t.Run("pre-existing", func(t *testing.T) {
		b := newBackend()
		w1 := createWindow(b, platform.WindowTypeNormal, platform.Rect{X: 10, Y: 10, Width: 200, Height: 50})
		w2 := createWindow(b, platform.WindowTypeNormal, platform.Rect{X: 10, Y: 60, Width: 200, Height: 50})
		w3 := createNonMaximizable(b, platform.Rect{X: 20, Y: 140, Width: 100, Height: 100})

		c := enable(t, b)
		if n := c.NumberOfManagedWindows(); n != 3 {
			t.Fatalf("expected 3, got %d", n)
		}
		for _, id := range []platform.WindowID{w1, w2, w3} {
			if err := b.DestroyWindow(id); err != nil {
				t.Fatalf("destroy: %v", err)
			}
		}
		if n := c.NumberOfManagedWindows(); n != 0 {
			t.Fatalf("expected 0 after destroy, got %d", n)
		}
		c.Disable()
	})

	t.Run("created while active", func(t *testing.T) {
		b := newBackend()
		c := enable(t, b)
		w1 := createWindow(b, platform.WindowTypeNormal, platform.Rect{X: 10, Y: 10, Width: 200, Height: 50})
		w2 := createNonMaximizable(b, platform.Rect{X: 20, Y: 140, Width: 100, Height: 100})
		if n := c.NumberOfManagedWindows(); n != 2 {
			t.Fatalf("expected 2, got %d", n)
		}
		_ = b.DestroyWindow(w1)
		if n := c.NumberOfManagedWindows(); n != 1 {
			t.Fatalf("expected 1, got %d", n)
		}
		_ = b.DestroyWindow(w2)
		if n := c.NumberOfManagedWindows(); n != 0 {
			t.Fatalf("expected 0, got %d", n)
		}
		c.Disable()
	})
}

func TestController_MaximizedWindowStaysMaximized(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	w := createWindow(b, platform.WindowTypeNormal, rect)
	if err := b.Maximize(w); err != nil {
		t.Fatalf("maximize: %v", err)
	}

	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	records := c.Records()
	if !records[0].HadRestoreState() {
		t.Fatalf("expected record to note the window was already maximized")
	}
	expectState(t, b, w, platform.ShowStateMaximized)

	c.Disable()
	expectState(t, b, w, platform.ShowStateMaximized)

	if err := b.Restore(w); err != nil {
		t.Fatalf("restore: %v", err)
	}
	expectBounds(t, b, w, rect)
}

func TestController_MinimizedWindowBehavior(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 100, Height: 100}
	initiallyMinimized := createWindow(b, platform.WindowTypeNormal, rect)
	initiallyNormal := createWindow(b, platform.WindowTypeNormal, rect)
	initiallyMaximized := createWindow(b, platform.WindowTypeNormal, rect)
	_ = b.Minimize(initiallyMinimized)
	_ = b.Maximize(initiallyMaximized)

	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}
	expectState(t, b, initiallyMinimized, platform.ShowStateMinimized)
	expectState(t, b, initiallyNormal, platform.ShowStateMaximized)
	expectState(t, b, initiallyMaximized, platform.ShowStateMaximized)

	_ = b.Minimize(initiallyNormal)
	_ = b.Minimize(initiallyMaximized)

	c.Disable()
	expectState(t, b, initiallyMinimized, platform.ShowStateMinimized)
	expectState(t, b, initiallyNormal, platform.ShowStateMinimized)
	expectState(t, b, initiallyMaximized, platform.ShowStateMinimized)
}

func TestController_LastUserStateWins(t *testing.T) {
	rect := platform.Rect{X: 10, Y: 10, Width: 100, Height: 100}

	t.Run("minimized at entry then maximized by user", func(t *testing.T) {
		b := newBackend()
		w := createWindow(b, platform.WindowTypeNormal, rect)
		_ = b.Minimize(w)

		c := enable(t, b)
		_ = b.Restore(w)
		_ = b.Minimize(w)
		_ = b.Maximize(w)
		c.Disable()
		expectState(t, b, w, platform.ShowStateMaximized)
	})

	t.Run("normal at entry restored by user", func(t *testing.T) {
		b := newBackend()
		w := createWindow(b, platform.WindowTypeNormal, rect)

		c := enable(t, b)
		_ = b.Restore(w)
		_ = b.SetBounds(w, platform.Rect{X: 300, Y: 300, Width: 50, Height: 50})
		c.Disable()
		expectState(t, b, w, platform.ShowStateNormal)
		expectBounds(t, b, w, rect)
	})

	t.Run("snapshot is not retaken", func(t *testing.T) {
		b := newBackend()
		w := createWindow(b, platform.WindowTypeNormal, rect)

		c := enable(t, b)
		_ = b.Minimize(w)
		_ = b.Restore(w)
		records := c.Records()
		if records[0].OriginalBounds != rect || records[0].OriginalShowState != platform.ShowStateNormal {
			t.Fatalf("snapshot changed: %+v", records[0])
		}
		c.Disable()
		expectBounds(t, b, w, rect)
	})
}

func TestController_MinimizedTrackedWindowIsLeftAlone(t *testing.T) {
	b := newBackend()
	c := enable(t, b)

	// A window that is still minimized when the mode ends is never touched.
	rect := platform.Rect{X: 20, Y: 140, Width: 100, Height: 100}
	w := createNonMaximizable(b, rect)
	_ = b.Minimize(w)
	b.SetWorkArea(watched, platform.Rect{Width: 1000, Height: 700})
	c.Disable()

	expectState(t, b, w, platform.ShowStateMinimized)
}

func TestController_DesktopSizeChangeMovesUnmaximizable(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 20, Y: 140, Width: 100, Height: 100}
	w := createNonMaximizable(b, rect)

	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	moved, _ := b.Bounds(w)
	if moved == rect || !moved.SameSize(rect) {
		t.Fatalf("expected repositioned window with unchanged size, got %s", moved)
	}
	if moved.X != 350 || moved.Y != 250 {
		t.Fatalf("expected window centered at 350,250, got %s", moved)
	}

	b.SetWorkArea(watched, platform.Rect{Width: 810, Height: 600})
	again, _ := b.Bounds(w)
	if again == moved || !again.SameSize(rect) {
		t.Fatalf("expected another move after resize, got %s", again)
	}
	if again.X+again.Width > 810 || again.Y+again.Height > 600 {
		t.Fatalf("window %s outside the new work area", again)
	}

	c.Disable()
	expectBounds(t, b, w, rect)
}

func TestController_DesktopSizeChangeKeepsMaximizedFull(t *testing.T) {
	b := newBackend()
	w := createWindow(b, platform.WindowTypeNormal, platform.Rect{X: 10, Y: 10, Width: 200, Height: 50})
	c := enable(t, b)

	next := platform.Rect{Width: 1024, Height: 768}
	b.SetWorkArea(watched, next)
	expectBounds(t, b, w, next)
	c.Disable()
}

func TestController_PreservesMRUOrder(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	var ids []platform.WindowID
	for i := 0; i < 5; i++ {
		ids = append(ids, createWindow(b, platform.WindowTypeNormal, rect))
	}

	check := func(stage string) {
		t.Helper()
		mru := b.MRU()
		for i, id := range ids {
			if mru[len(ids)-1-i] != id {
				t.Fatalf("%s: unexpected MRU order %v", stage, mru)
			}
		}
	}

	check("before enable")
	c := enable(t, b)
	if n := c.NumberOfManagedWindows(); n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
	check("while active")
	c.Disable()
	check("after disable")
}

func TestController_IgnoresOtherContainers(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	other := b.CreateWindow(1, platform.WindowSpec{Type: platform.WindowTypeNormal, CanMaximize: true, Bounds: rect})

	c := enable(t, b)
	late := b.CreateWindow(1, platform.WindowSpec{Type: platform.WindowTypeNormal, CanMaximize: true, Bounds: rect})
	if n := c.NumberOfManagedWindows(); n != 0 {
		t.Fatalf("expected 0, got %d", n)
	}
	expectState(t, b, other, platform.ShowStateNormal)
	expectState(t, b, late, platform.ShowStateNormal)
	c.Disable()
}

func TestController_ReenableStartsFresh(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	w := createWindow(b, platform.WindowTypeNormal, rect)

	c := enable(t, b)
	c.Disable()

	c2 := enable(t, b)
	if n := c2.NumberOfManagedWindows(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	expectState(t, b, w, platform.ShowStateMaximized)
	c2.Disable()
	expectBounds(t, b, w, rect)
}

func TestController_UseAfterDisablePanics(t *testing.T) {
	c := enable(t, newBackend())
	c.Disable()
	expectPanic(t, "used after Disable", func() { c.NumberOfManagedWindows() })
	expectPanic(t, "used after Disable", func() { c.Disable() })
}

func TestController_ReconcilePrunesDestroyedAndAdoptsMissed(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	w1 := createWindow(b, platform.WindowTypeNormal, rect)
	w2 := createWindow(b, platform.WindowTypeNormal, rect)

	// Destroy notifications for w1 are lost, and w2 is missing from the
	// listing read at enable time.
	reg := &lossyRegistry{
		MemoryBackend: b,
		hidden:        map[platform.WindowID]bool{w2: true},
		deaf:          map[platform.WindowID]bool{w1: true},
	}
	c := enable(t, reg)
	if n := c.NumberOfManagedWindows(); n != 1 {
		t.Fatalf("expected 1 managed window, got %d", n)
	}

	if err := b.DestroyWindow(w1); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	reg.hidden = nil

	pruned, adopted := c.Reconcile()
	if pruned != 1 || adopted != 1 {
		t.Fatalf("expected 1 pruned, 1 adopted, got %d, %d", pruned, adopted)
	}
	if n := c.NumberOfManagedWindows(); n != 1 {
		t.Fatalf("expected 1, got %d", n)
	}
	expectState(t, b, w2, platform.ShowStateMaximized)

	pruned, adopted = c.Reconcile()
	if pruned != 0 || adopted != 0 {
		t.Fatalf("expected a second pass to change nothing, got %d, %d", pruned, adopted)
	}

	c.Disable()
	expectState(t, b, w2, platform.ShowStateNormal)
	expectBounds(t, b, w2, rect)
}

func TestController_ReconcileKeepsUnlistedLiveWindow(t *testing.T) {
	b := newBackend()
	rect := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	w1 := createWindow(b, platform.WindowTypeNormal, rect)

	reg := &lossyRegistry{MemoryBackend: b}
	c := enable(t, reg)
	expectState(t, b, w1, platform.ShowStateMaximized)

	// One listing misses the window even though it still exists.
	reg.hidden = map[platform.WindowID]bool{w1: true}
	if pruned, adopted := c.Reconcile(); pruned != 0 || adopted != 0 {
		t.Fatalf("expected 0 pruned, 0 adopted, got %d, %d", pruned, adopted)
	}
	reg.hidden = nil
	if pruned, adopted := c.Reconcile(); pruned != 0 || adopted != 0 {
		t.Fatalf("expected 0 pruned, 0 adopted, got %d, %d", pruned, adopted)
	}

	records := c.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].OriginalShowState != platform.ShowStateNormal || records[0].OriginalBounds != rect {
		t.Fatalf("original state overwritten: %s %s", records[0].OriginalShowState, records[0].OriginalBounds)
	}

	c.Disable()
	expectState(t, b, w1, platform.ShowStateNormal)
	expectBounds(t, b, w1, rect)
}

func TestController_OverlappingContainersManageOnce(t *testing.T) {
	b := newBackend()
	rect1 := platform.Rect{X: 10, Y: 10, Width: 200, Height: 50}
	rect2 := platform.Rect{X: 30, Y: 70, Width: 150, Height: 90}
	w1 := createWindow(b, platform.WindowTypeNormal, rect1)
	w2 := b.CreateWindow(1, platform.WindowSpec{Type: platform.WindowTypeNormal, CanMaximize: true, Bounds: rect2})

	// w1 is sticky and listed by both containers.
	reg := &lossyRegistry{
		MemoryBackend: b,
		extra:         map[platform.ContainerID][]platform.WindowID{1: {w1}},
	}
	c, err := Enable(reg, Options{Containers: []platform.ContainerID{0, 1}})
	if err != nil {
		t.Fatalf("enable: %v", err)
	}
	if n := c.NumberOfManagedWindows(); n != 2 {
		t.Fatalf("expected 2 managed windows, got %d", n)
	}
	expectState(t, b, w1, platform.ShowStateMaximized)
	expectState(t, b, w2, platform.ShowStateMaximized)

	if pruned, adopted := c.Reconcile(); pruned != 0 || adopted != 0 {
		t.Fatalf("expected 0 pruned, 0 adopted, got %d, %d", pruned, adopted)
	}

	c.Disable()
	expectState(t, b, w1, platform.ShowStateNormal)
	expectBounds(t, b, w1, rect1)
	expectState(t, b, w2, platform.ShowStateNormal)
	expectBounds(t, b, w2, rect2)
	if n := b.Subscribers(); n != 0 {
		t.Fatalf("expected all subscriptions released, %d remain", n)
	}
}

// lossyRegistry distorts what the memory backend reports: hidden windows are
// left out of listings, extra windows are added to them, and destroy
// notifications for deaf windows are never delivered.
type lossyRegistry struct {
	*platform.MemoryBackend
	hidden map[platform.WindowID]bool
	extra  map[platform.ContainerID][]platform.WindowID
	deaf   map[platform.WindowID]bool
}

func (r *lossyRegistry) Windows(container platform.ContainerID) ([]platform.WindowID, error) {
	ids, err := r.MemoryBackend.Windows(container)
	if err != nil {
		return nil, err
	}
	var out []platform.WindowID
	for _, id := range append(ids, r.extra[container]...) {
		if !r.hidden[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func (r *lossyRegistry) OnWindowDestroyed(id platform.WindowID, fn func(platform.WindowID)) platform.Subscription {
	if r.deaf[id] {
		return nopSubscription{}
	}
	return r.MemoryBackend.OnWindowDestroyed(id, fn)
}

type nopSubscription struct{}

func (nopSubscription) Unsubscribe() {}

package maximize

import (
	"fmt"
	"sort"

	"github.com/1broseidon/maxmode/internal/platform"
)

// Record is the state a managed window returns to when the mode ends.
// Original fields are captured once, when the window is first seen.
type Record struct {
	Window    platform.WindowID
	Container platform.ContainerID
	Class     Eligibility

	OriginalBounds    platform.Rect
	OriginalShowState platform.ShowState

	destroyed platform.Subscription
}

// HadRestoreState reports whether the window was already maximized at entry.
func (r *Record) HadRestoreState() bool {
	return r.OriginalShowState == platform.ShowStateMaximized
}

// CurrentlyUnmaximizable reports whether the window is tracked for layout only.
func (r *Record) CurrentlyUnmaximizable() bool {
	return r.Class == TrackedOnly
}

// Store maps windows to their saved state. A window is present at most once.
type Store struct {
	records map[platform.WindowID]*Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: make(map[platform.WindowID]*Record)}
}

// Insert adds a record. Inserting a window twice is a programming error.
func (s *Store) Insert(r *Record) {
	if _, ok := s.records[r.Window]; ok {
		panic(fmt.Sprintf("maximize: window %d inserted twice", r.Window))
	}
	s.records[r.Window] = r
}

// Remove deletes and returns the record of a window that must be present.
func (s *Store) Remove(id platform.WindowID) *Record {
	r, ok := s.records[id]
	if !ok {
		panic(fmt.Sprintf("maximize: window %d is not managed", id))
	}
	delete(s.records, id)
	return r
}

// Get returns the record for a window, if any.
func (s *Store) Get(id platform.WindowID) (*Record, bool) {
	r, ok := s.records[id]
	return r, ok
}

// Len returns the number of managed windows.
func (s *Store) Len() int {
	return len(s.records)
}

// Records returns a snapshot of all records ordered by window id.
func (s *Store) Records() []*Record {
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Window < out[j].Window })
	return out
}

package maximize

import (
	"testing"

	"github.com/1broseidon/maxmode/internal/platform"
)

func TestStore_InsertGetRemove(t *testing.T) {
	s := NewStore()
	s.Insert(&Record{Window: 2, Class: Maximizable})
	s.Insert(&Record{Window: 1, Class: TrackedOnly})

	if s.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", s.Len())
	}
	r, ok := s.Get(1)
	if !ok || !r.CurrentlyUnmaximizable() {
		t.Fatalf("expected tracked-only record for window 1, got %+v", r)
	}

	records := s.Records()
	if records[0].Window != 1 || records[1].Window != 2 {
		t.Fatalf("expected records ordered by window id")
	}

	if got := s.Remove(2); got.Window != 2 {
		t.Fatalf("removed wrong record: %+v", got)
	}
	if _, ok := s.Get(2); ok {
		t.Fatalf("window 2 should be gone")
	}
}

func TestStore_DoubleInsertPanics(t *testing.T) {
	s := NewStore()
	s.Insert(&Record{Window: 7})
	expectPanic(t, "inserted twice", func() { s.Insert(&Record{Window: 7}) })
}

func TestStore_RemoveAbsentPanics(t *testing.T) {
	s := NewStore()
	expectPanic(t, "not managed", func() { s.Remove(platform.WindowID(3)) })
}

func TestClassify(t *testing.T) {
	tests := []struct {
		typ         platform.WindowType
		canMaximize bool
		want        Eligibility
	}{
		{platform.WindowTypeNormal, true, Maximizable},
		{platform.WindowTypeNormal, false, TrackedOnly},
		{platform.WindowTypePanel, true, Ignored},
		{platform.WindowTypePopup, true, Ignored},
		{platform.WindowTypeControl, false, Ignored},
		{platform.WindowTypeMenu, true, Ignored},
		{platform.WindowTypeTooltip, false, Ignored},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			if got := Classify(tt.typ, tt.canMaximize); got != tt.want {
				t.Fatalf("Classify(%s, %v) = %s, want %s", tt.typ, tt.canMaximize, got, tt.want)
			}
		})
	}
}

func TestCenter(t *testing.T) {
	area := platform.Rect{X: 0, Y: 20, Width: 800, Height: 580}
	tests := []struct {
		name   string
		bounds platform.Rect
		want   platform.Rect
	}{
		{"fits", platform.Rect{X: 20, Y: 140, Width: 100, Height: 100}, platform.Rect{X: 350, Y: 260, Width: 100, Height: 100}},
		{"too wide", platform.Rect{X: 5, Y: 5, Width: 900, Height: 100}, platform.Rect{X: 0, Y: 260, Width: 900, Height: 100}},
		{"too tall", platform.Rect{X: 5, Y: 5, Width: 100, Height: 700}, platform.Rect{X: 350, Y: 20, Width: 100, Height: 700}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Center(tt.bounds, area); got != tt.want {
				t.Fatalf("Center(%s) = %s, want %s", tt.bounds, got, tt.want)
			}
		})
	}
}

package main

import (
	"image"
	"testing"
	"time"

	"picbook/internal/spread"
	"picbook/internal/viewport"
)

func TestPageStatus(t *testing.T) {
	tests := []struct {
		name    string
		display spread.Display
		total   int
		want    string
	}{
		{"empty book", spread.Display{}, 0, "0 / 0"},
		{"first spread", spread.Display{Index: 0, Left: "1.png", Right: "2.png"}, 10, "1-2 / 10"},
		{"middle spread", spread.Display{Index: 1, Left: "3.png", Right: "4.png"}, 10, "3-4 / 10"},
		{"odd last page", spread.Display{Index: 2, Left: "5.png"}, 5, "5 / 5"},
		{"single page book", spread.Display{Left: "1.png"}, 1, "1 / 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pageStatus(tt.display, tt.total); got != tt.want {
				t.Errorf("pageStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFitRect(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		box  image.Rectangle
		want image.Rectangle
	}{
		{"same aspect", 100, 200, image.Rect(0, 0, 50, 100), image.Rect(0, 0, 50, 100)},
		{"wide box centers horizontally", 100, 100, image.Rect(0, 0, 300, 100), image.Rect(100, 0, 200, 100)},
		{"tall box centers vertically", 200, 100, image.Rect(10, 10, 110, 210), image.Rect(10, 85, 110, 135)},
		{"upscales small images", 10, 20, image.Rect(0, 0, 100, 100), image.Rect(25, 0, 75, 100)},
		{"empty image", 0, 10, image.Rect(0, 0, 100, 100), image.Rectangle{}},
		{"empty box", 10, 10, image.Rectangle{}, image.Rectangle{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fitRect(tt.w, tt.h, tt.box); got != tt.want {
				t.Errorf("fitRect(%d, %d, %v) = %v, want %v", tt.w, tt.h, tt.box, got, tt.want)
			}
		})
	}
}

func TestGameWindowSyncFullscreen(t *testing.T) {
	cfg := viewport.DefaultConfig()
	cfg.Family = viewport.FamilyIOS
	tracker := viewport.NewTracker(cfg, nil)
	tracker.Observe(1000, 1000, time.Now())
	w := &gameWindow{tracker: tracker}

	tracker.SetFullscreen(true)
	if got := tracker.Current(); got.Width != 1000 {
		t.Fatalf("fullscreen width = %d, want 1000", got.Width)
	}

	// The system left fullscreen without going through SetFullscreen.
	w.syncFullscreen(false)
	if tracker.Fullscreen() {
		t.Error("tracker still fullscreen")
	}
	if got := tracker.Current(); got.Width != 980 || got.Height != 920 {
		t.Errorf("windowed usable = %+v, want 980x920", got)
	}

	w.syncFullscreen(false)
	w.syncFullscreen(true)
	if !tracker.Fullscreen() {
		t.Error("tracker missed entering fullscreen")
	}
}

package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"picbook/internal/catalog"
	"picbook/internal/reader"
	"picbook/internal/spread"
)

const (
	// Overlay message display duration
	overlayMessageDuration = 2 * time.Second
)

// Screen is the top-level view the game shows
type Screen int

const (
	ScreenLibrary Screen = iota
	ScreenReader
)

// RenderState provides read-only access to game state for the renderer
type RenderState interface {
	CurrentScreen() Screen
	IsFullscreen() bool
	Now() time.Time

	// Reader
	GetSpreadImages() (left, right *ebiten.Image)
	GetDisplay() spread.Display
	GetSlots() spread.Slots
	GetZoom() float64
	GetBookTitle() string
	GetTotalPages() int
	ControlsVisible() bool
	IsRightToLeft() bool

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Display data
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
	GetCacheStats() (cached int, stats PreloadStats)
	GetLibraryView() *LibraryView
	GetThumbnail(book catalog.Book) *ebiten.Image
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()
	ShowLibrary()
	Escape()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleReadingDirection()

	// Reader
	ExecuteCommand(cmd reader.Command) bool
	ZoomBy(delta float64)
	ZoomReset()

	// Messages
	ShowOverlayMessage(message string)

	GetTotalSpreads() int
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsReading() bool
}

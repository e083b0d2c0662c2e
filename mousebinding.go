package main

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `json:"wheel_sensitivity"`
	EnableMouse      bool    `json:"enable_mouse"`
	WheelInverted    bool    `json:"wheel_inverted"`
	// EnableGestures lets the left button drive swipe and tap recognition.
	EnableGestures bool `json:"enable_gestures"`
}

// MouseCombination represents a mouse action with optional modifiers
type MouseCombination struct {
	Button      ebiten.MouseButton
	IsWheel     bool
	WheelDeltaX float64
	WheelDeltaY float64
	Shift       bool
	Ctrl        bool
	Alt         bool
}

// MousebindingManager handles dynamic mouse binding processing
type MousebindingManager struct {
	mousebindings map[string][]string
	parsed        map[string][]MouseCombination
	settings      MouseSettings
}

// NewMousebindingManager creates a new MousebindingManager
func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	mm := &MousebindingManager{settings: settings}
	mm.UpdateMousebindings(mousebindings)
	return mm
}

// mouseMapping maps binding names to Ebiten mouse buttons. The left button
// belongs to the gesture recognizer unless a modifier is held.
var mouseMapping = map[string]ebiten.MouseButton{
	"LeftClick":   ebiten.MouseButtonLeft,
	"RightClick":  ebiten.MouseButtonRight,
	"MiddleClick": ebiten.MouseButtonMiddle,
	"Back":        ebiten.MouseButton3,
	"Forward":     ebiten.MouseButton4,
}

// parseMouseString parses a mouse string like "Shift+MiddleClick" or "WheelUp" into a MouseCombination
func parseMouseString(mouseStr string) (MouseCombination, bool) {
	if mouseStr == "" {
		return MouseCombination{}, false
	}
	parts := strings.Split(mouseStr, "+")
	combination := MouseCombination{}

	actionName := parts[len(parts)-1]
	if strings.HasPrefix(actionName, "Wheel") {
		combination.IsWheel = true
		switch actionName {
		case "WheelUp":
			combination.WheelDeltaY = 1.0
		case "WheelDown":
			combination.WheelDeltaY = -1.0
		case "WheelLeft":
			combination.WheelDeltaX = -1.0
		case "WheelRight":
			combination.WheelDeltaX = 1.0
		default:
			return MouseCombination{}, false
		}
	} else {
		button, exists := mouseMapping[actionName]
		if !exists {
			return MouseCombination{}, false
		}
		combination.Button = button
	}

	for _, modifier := range parts[:len(parts)-1] {
		switch strings.ToLower(modifier) {
		case "shift":
			combination.Shift = true
		case "ctrl":
			combination.Ctrl = true
		case "alt":
			combination.Alt = true
		default:
			return MouseCombination{}, false
		}
	}

	return combination, true
}

// wheelMatches checks a wheel delta against the direction of a binding
func wheelMatches(combination MouseCombination, wheelX, wheelY float64) bool {
	if combination.WheelDeltaX != 0 {
		return (combination.WheelDeltaX > 0 && wheelX > 0) || (combination.WheelDeltaX < 0 && wheelX < 0)
	}
	if combination.WheelDeltaY != 0 {
		return (combination.WheelDeltaY > 0 && wheelY > 0) || (combination.WheelDeltaY < 0 && wheelY < 0)
	}
	return false
}

// isMouseActionTriggered checks if a mouse combination fired in this frame
func (mm *MousebindingManager) isMouseActionTriggered(combination MouseCombination, mods Modifiers) bool {
	if !mm.settings.EnableMouse {
		return false
	}
	if !mods.matches(combination.Shift, combination.Ctrl, combination.Alt) {
		return false
	}

	if combination.IsWheel {
		wheelX, wheelY := ebiten.Wheel()
		if mm.settings.WheelInverted {
			wheelY = -wheelY
		}
		wheelX *= mm.settings.WheelSensitivity
		wheelY *= mm.settings.WheelSensitivity
		return wheelMatches(combination, wheelX, wheelY)
	}

	return inpututil.IsMouseButtonJustPressed(combination.Button)
}

// CheckAction checks if any mouse binding for the given action is triggered
func (mm *MousebindingManager) CheckAction(action string) bool {
	mods := currentModifiers()
	for _, combination := range mm.parsed[action] {
		if mm.isMouseActionTriggered(combination, mods) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action when one of its mouse bindings fired
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !mm.CheckAction(action) {
		return false
	}

	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}

// UpdateMousebindings replaces the mouse bindings. Unparseable entries are dropped.
func (mm *MousebindingManager) UpdateMousebindings(mousebindings map[string][]string) {
	mm.mousebindings = mousebindings
	mm.parsed = make(map[string][]MouseCombination, len(mousebindings))
	for action, bindings := range mousebindings {
		for _, s := range bindings {
			if combination, ok := parseMouseString(s); ok {
				mm.parsed[action] = append(mm.parsed[action], combination)
			}
		}
	}
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		EnableMouse:      true,
		WheelInverted:    false,
		EnableGestures:   true,
	}
}

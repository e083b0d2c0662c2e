package main

import "picbook/internal/reader"

// zoomStep is the zoom change of one zoom_in or zoom_out action.
const zoomStep = 0.25

// ActionExecutor runs named actions for both the keybinding and the
// mousebinding manager
type ActionExecutor struct{}

// NewActionExecutor creates a new ActionExecutor instance
func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// readerCommands are the actions that map one to one onto reader commands
var readerCommands = map[string]reader.Command{
	"next":       reader.CommandNext,
	"previous":   reader.CommandPrevious,
	"first":      reader.CommandFirst,
	"last":       reader.CommandLast,
	"fullscreen": reader.CommandToggleFullscreen,
}

// ExecuteAction executes the given action using the InputActions interface.
// It reports whether the action is known.
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if cmd, ok := readerCommands[action]; ok {
		if inputState.IsReading() {
			inputActions.ExecuteCommand(cmd)
		}
		return true
	}

	switch action {
	case "quit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "library":
		inputActions.ShowLibrary()
	case "escape":
		inputActions.Escape()
	case "toggle_reading_direction":
		inputActions.ToggleReadingDirection()
	case "zoom_in":
		inputActions.ZoomBy(zoomStep)
	case "zoom_out":
		inputActions.ZoomBy(-zoomStep)
	case "zoom_reset":
		inputActions.ZoomReset()
	default:
		return false
	}

	return true
}

// globalActionExecutor is shared by the binding managers
var globalActionExecutor = NewActionExecutor()

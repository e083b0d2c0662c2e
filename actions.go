package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings, mouse bindings, and descriptions
var actionDefinitions = []ActionDefinition{
	{"quit", []string{"KeyQ"}, []string{}, "Quit application"},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide page info"},
	{"library", []string{"KeyL"}, []string{"Back"}, "Return to the library"},
	{"next", []string{"ArrowRight", "ArrowDown", "Space"}, []string{"WheelDown"}, "Next spread"},
	{"previous", []string{"ArrowLeft", "ArrowUp", "Backspace"}, []string{"WheelUp"}, "Previous spread"},
	{"first", []string{"Home"}, []string{}, "Jump to first spread"},
	{"last", []string{"End"}, []string{}, "Jump to last spread"},
	{"fullscreen", []string{"KeyF", "F11"}, []string{"MiddleClick"}, "Toggle fullscreen"},
	{"escape", []string{"Escape"}, []string{}, "Leave fullscreen, or return to the library"},
	{"toggle_reading_direction", []string{"Shift+KeyB"}, []string{}, "Toggle reading direction (LTR / RTL)"},

	// Zoom actions
	{"zoom_in", []string{"Equal", "Shift+Equal"}, []string{"Ctrl+WheelUp"}, "Zoom in"},
	{"zoom_out", []string{"Minus"}, []string{"Ctrl+WheelDown"}, "Zoom out"},
	{"zoom_reset", []string{"Key0"}, []string{"Shift+MiddleClick"}, "Reset zoom"},
}

// findAction looks up an action definition by name
func findAction(name string) (ActionDefinition, bool) {
	for _, action := range actionDefinitions {
		if action.Name == name {
			return action, true
		}
	}
	return ActionDefinition{}, false
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = append([]string{}, action.Keys...)
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = append([]string{}, action.MouseActions...)
	}
	return mousebindings
}

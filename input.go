package main

// InputHandler handles keyboard and mouse bindings on the reader screen
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, inputState InputState, keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
	}
}

// HandleInput processes all bindings for the current frame.
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	inputProcessed := false

	inputProcessed = h.handleApplicationKeys() || inputProcessed
	inputProcessed = h.handleDisplayToggles() || inputProcessed

	if h.inputActions.GetTotalSpreads() > 0 {
		inputProcessed = h.handleNavigation() || inputProcessed
		inputProcessed = h.handleZoom() || inputProcessed
	}

	return inputProcessed
}

// run executes action when either its keys or its mouse bindings fired
func (h *InputHandler) run(action string) bool {
	if h.keybindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
		return true
	}
	if h.mousebindingManager != nil {
		return h.mousebindingManager.ExecuteAction(action, h.inputActions, h.inputState)
	}
	return false
}

func (h *InputHandler) runAll(actions ...string) bool {
	inputProcessed := false
	for _, action := range actions {
		if h.run(action) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

func (h *InputHandler) handleApplicationKeys() bool {
	return h.runAll("quit", "library", "escape")
}

func (h *InputHandler) handleDisplayToggles() bool {
	return h.runAll("help", "info", "fullscreen", "toggle_reading_direction")
}

func (h *InputHandler) handleNavigation() bool {
	return h.runAll("next", "previous", "first", "last")
}

func (h *InputHandler) handleZoom() bool {
	return h.runAll("zoom_in", "zoom_out", "zoom_reset")
}

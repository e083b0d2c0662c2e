package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"picbook/internal/catalog"
	"picbook/internal/gesture"
	"picbook/internal/logger"
	"picbook/internal/reader"
	"picbook/internal/viewport"
)

// Window size constants
const (
	defaultWidth  = 1024
	defaultHeight = 720
	minWidth      = 400
	minHeight     = 300
)

const (
	defaultLibraryDir  = "books"
	defaultBookID      = "book1"
	defaultFontSize    = 24.0
	defaultCacheSize   = 24
	defaultPreload     = 4
	configFileName     = ".picbook.json"
	fallbackConfigFile = "picbook.json"
)

// validateKeybindings validates the keybindings configuration
func validateKeybindings(keybindings map[string][]string) error {
	keyToAction := make(map[string]string)
	validKeys := getValidKeyNames()

	for action, keys := range keybindings {
		if _, known := findAction(action); !known {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, keyStr := range keys {
			if err := validateKeyString(keyStr, validKeys); err != nil {
				return fmt.Errorf("invalid key '%s' for action '%s': %v", keyStr, action, err)
			}

			if existingAction, exists := keyToAction[keyStr]; exists {
				return fmt.Errorf("key conflict: '%s' is bound to both '%s' and '%s'", keyStr, existingAction, action)
			}
			keyToAction[keyStr] = action
		}
	}

	return nil
}

// validateKeyString validates a single key string format
func validateKeyString(keyStr string, validKeys map[string]bool) error {
	if keyStr == "" {
		return fmt.Errorf("empty key string")
	}
	parts := strings.Split(keyStr, "+")

	keyName := parts[len(parts)-1]
	if !validKeys[keyName] {
		return fmt.Errorf("unknown key: %s", keyName)
	}

	for i := 0; i < len(parts)-1; i++ {
		if !isModifier(parts[i]) {
			return fmt.Errorf("unknown modifier: %s", parts[i])
		}
	}

	return nil
}

// validateMousebindings checks mouse binding strings the same way keys are checked.
func validateMousebindings(mousebindings map[string][]string) error {
	seen := make(map[string]string)
	for action, bindings := range mousebindings {
		if _, known := findAction(action); !known {
			return fmt.Errorf("unknown action '%s'", action)
		}
		for _, s := range bindings {
			if _, ok := parseMouseString(s); !ok {
				return fmt.Errorf("invalid mouse binding '%s' for action '%s'", s, action)
			}
			if existing, exists := seen[s]; exists {
				return fmt.Errorf("mouse conflict: '%s' is bound to both '%s' and '%s'", s, existing, action)
			}
			seen[s] = action
		}
	}
	return nil
}

func isModifier(s string) bool {
	switch strings.ToLower(s) {
	case "shift", "ctrl", "alt":
		return true
	}
	return false
}

// getValidKeyNames returns the set of key names accepted in the config file
func getValidKeyNames() map[string]bool {
	valid := make(map[string]bool)
	for name := range getKeyMapping() {
		valid[name] = true
	}
	return valid
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
}

func (r *ConfigLoadResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	if r.Status == "OK" {
		r.Status = "Warning"
	}
}

// GestureSettings holds the swipe, tap and pinch thresholds.
type GestureSettings struct {
	SwipeThreshold   float64 `json:"swipe_threshold"`     // pixels
	SwipeTimeLimitMs int     `json:"swipe_time_limit_ms"` // milliseconds
	TouchTapRadius   float64 `json:"touch_tap_radius"`    // pixels
	MouseTapRadius   float64 `json:"mouse_tap_radius"`    // pixels
	TapTimeLimitMs   int     `json:"tap_time_limit_ms"`   // milliseconds
	PinchStep        float64 `json:"pinch_step"`
}

// ViewportSettings holds the settle delay and the correction factors.
type ViewportSettings struct {
	SettleDelayMs int                  `json:"settle_delay_ms"`
	Family        string               `json:"family"` // empty means detect
	Corrections   viewport.Corrections `json:"corrections"`
}

type Config struct {
	WindowWidth    int                 `json:"window_width"`
	WindowHeight   int                 `json:"window_height"`
	Fullscreen     bool                `json:"fullscreen"`
	RightToLeft    bool                `json:"right_to_left"`
	HelpFontSize   float64             `json:"help_font_size"`
	SortMethod     int                 `json:"sort_method"`
	CacheSize      int                 `json:"cache_size"`
	PreloadEnabled bool                `json:"preload_enabled"`
	PreloadCount   int                 `json:"preload_count"`
	LibraryDir     string              `json:"library_dir"`
	DataDir        string              `json:"data_dir"`
	DefaultBook    string              `json:"default_book"`
	WatchLibrary   bool                `json:"watch_library"`
	AutoHideMs     int                 `json:"auto_hide_ms"`
	LogLevel       string              `json:"log_level"`
	LogFormat      string              `json:"log_format"`
	Gesture        GestureSettings     `json:"gesture"`
	Viewport       ViewportSettings    `json:"viewport"`
	Mouse          MouseSettings       `json:"mouse"`
	Keybindings    map[string][]string `json:"keybindings"`
	Mousebindings  map[string][]string `json:"mousebindings"`
}

func getConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fallbackConfigFile
	}
	return filepath.Join(homeDir, configFileName)
}

// defaultDataDir is where the progress database lives unless configured.
func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", ".picbook")
	}
	return filepath.Join(dir, "picbook")
}

func defaultGestureSettings() GestureSettings {
	g := gesture.DefaultConfig()
	return GestureSettings{
		SwipeThreshold:   g.SwipeThreshold,
		SwipeTimeLimitMs: int(g.SwipeTimeLimit / time.Millisecond),
		TouchTapRadius:   g.TouchTapRadius,
		MouseTapRadius:   g.MouseTapRadius,
		TapTimeLimitMs:   int(g.TapTimeLimit / time.Millisecond),
		PinchStep:        g.PinchStep,
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		WindowWidth:    defaultWidth,
		WindowHeight:   defaultHeight,
		HelpFontSize:   defaultFontSize,
		SortMethod:     catalog.SortNatural,
		CacheSize:      defaultCacheSize,
		PreloadEnabled: true,
		PreloadCount:   defaultPreload,
		LibraryDir:     defaultLibraryDir,
		DataDir:        defaultDataDir(),
		DefaultBook:    defaultBookID,
		WatchLibrary:   true,
		AutoHideMs:     int(reader.DefaultAutoHideDelay / time.Millisecond),
		LogLevel:       "info",
		LogFormat:      logger.FormatPretty,
		Gesture:        defaultGestureSettings(),
		Viewport: ViewportSettings{
			SettleDelayMs: int(viewport.DefaultSettleDelay / time.Millisecond),
			Corrections:   viewport.DefaultCorrections(),
		},
		Mouse:         GetDefaultMouseSettings(),
		Keybindings:   GetDefaultKeybindings(),
		Mousebindings: GetDefaultMousebindings(),
	}
}

func loadConfig(configPath string) ConfigLoadResult {
	if configPath == "" {
		configPath = getConfigPath()
	}
	return loadConfigFromPath(configPath)
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	config := DefaultConfig()

	result := ConfigLoadResult{
		Config:   config,
		Warnings: []string{},
		Status:   "OK",
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		// Config file not found is not an error - use defaults
		result.Status = "Default"
		return result
	}

	if err := json.Unmarshal(data, &config); err != nil {
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file %s: %v", configPath, err))
		return result
	}

	validateConfig(&config, &result)
	result.Config = config
	return result
}

// validateConfig clamps out-of-range values back to their defaults.
func validateConfig(config *Config, result *ConfigLoadResult) {
	defaults := DefaultConfig()

	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	// Minimum 12px for readability
	if config.HelpFontSize <= 12.0 {
		config.HelpFontSize = defaultFontSize
	}

	if config.SortMethod < catalog.SortNatural || config.SortMethod > catalog.SortEntryOrder {
		config.SortMethod = catalog.SortNatural
	}

	if config.CacheSize < 4 {
		config.CacheSize = defaultCacheSize
	} else if config.CacheSize > 128 {
		config.CacheSize = 128
	}

	if config.PreloadCount < 1 {
		config.PreloadCount = defaultPreload
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if strings.TrimSpace(config.LibraryDir) == "" {
		config.LibraryDir = defaults.LibraryDir
	}
	if strings.TrimSpace(config.DataDir) == "" {
		config.DataDir = defaults.DataDir
	}
	if strings.TrimSpace(config.DefaultBook) == "" {
		config.DefaultBook = defaults.DefaultBook
	}

	if config.AutoHideMs < 500 || config.AutoHideMs > 60000 {
		config.AutoHideMs = defaults.AutoHideMs
	}

	if !logger.ValidFormat(config.LogFormat) {
		result.warn("unknown log format %q", config.LogFormat)
		config.LogFormat = defaults.LogFormat
	}

	validateGesture(&config.Gesture, defaults.Gesture)
	validateViewport(&config.Viewport, defaults.Viewport, result)

	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = defaults.Mouse.WheelSensitivity
	}

	if config.Keybindings == nil {
		config.Keybindings = GetDefaultKeybindings()
	} else {
		for action, defaultKeys := range GetDefaultKeybindings() {
			if _, exists := config.Keybindings[action]; !exists {
				config.Keybindings[action] = defaultKeys
			}
		}
		if err := validateKeybindings(config.Keybindings); err != nil {
			config.Keybindings = GetDefaultKeybindings()
			result.warn("Keybinding errors: %v", err)
		}
	}

	if config.Mousebindings == nil {
		config.Mousebindings = GetDefaultMousebindings()
	} else {
		for action, defaultMouse := range GetDefaultMousebindings() {
			if _, exists := config.Mousebindings[action]; !exists {
				config.Mousebindings[action] = defaultMouse
			}
		}
		if err := validateMousebindings(config.Mousebindings); err != nil {
			config.Mousebindings = GetDefaultMousebindings()
			result.warn("Mouse binding errors: %v", err)
		}
	}
}

func validateGesture(g *GestureSettings, defaults GestureSettings) {
	if g.SwipeThreshold <= 0 {
		g.SwipeThreshold = defaults.SwipeThreshold
	}
	if g.SwipeTimeLimitMs <= 0 {
		g.SwipeTimeLimitMs = defaults.SwipeTimeLimitMs
	}
	if g.TouchTapRadius <= 0 {
		g.TouchTapRadius = defaults.TouchTapRadius
	}
	if g.MouseTapRadius <= 0 {
		g.MouseTapRadius = defaults.MouseTapRadius
	}
	if g.TapTimeLimitMs <= 0 {
		g.TapTimeLimitMs = defaults.TapTimeLimitMs
	}
	if g.PinchStep <= 0 || g.PinchStep >= 1 {
		g.PinchStep = defaults.PinchStep
	}
}

func validateViewport(v *ViewportSettings, defaults ViewportSettings, result *ConfigLoadResult) {
	if v.SettleDelayMs < 0 || v.SettleDelayMs > 5000 {
		v.SettleDelayMs = defaults.SettleDelayMs
	}
	if v.Family != "" {
		if _, err := viewport.ParseFamily(v.Family); err != nil {
			result.warn("%v", err)
			v.Family = ""
		}
	}
	if v.Corrections == nil {
		v.Corrections = defaults.Corrections
		return
	}
	for family, def := range defaults.Corrections {
		c, ok := v.Corrections[family]
		if !ok {
			v.Corrections[family] = def
			continue
		}
		if !validFactor(c.Windowed) || !validFactor(c.Fullscreen) {
			result.warn("correction factors for %s must be in (0, 1]", family)
			v.Corrections[family] = def
		}
	}
}

func validFactor(f viewport.Factor) bool {
	return f.Width > 0 && f.Width <= 1 && f.Height > 0 && f.Height <= 1
}

// GestureConfig converts the settings for the recognizer.
func (c Config) GestureConfig() gesture.Config {
	return gesture.Config{
		SwipeThreshold: c.Gesture.SwipeThreshold,
		SwipeTimeLimit: time.Duration(c.Gesture.SwipeTimeLimitMs) * time.Millisecond,
		TouchTapRadius: c.Gesture.TouchTapRadius,
		MouseTapRadius: c.Gesture.MouseTapRadius,
		TapTimeLimit:   time.Duration(c.Gesture.TapTimeLimitMs) * time.Millisecond,
		PinchStep:      c.Gesture.PinchStep,
	}
}

// ViewportConfig converts the settings for the tracker.
func (c Config) ViewportConfig() viewport.Config {
	family := viewport.CurrentFamily()
	if c.Viewport.Family != "" {
		if f, err := viewport.ParseFamily(c.Viewport.Family); err == nil {
			family = f
		}
	}
	return viewport.Config{
		SettleDelay: time.Duration(c.Viewport.SettleDelayMs) * time.Millisecond,
		Family:      family,
		Corrections: c.Viewport.Corrections,
	}
}

// AutoHideDelay is how long reader controls stay visible.
func (c Config) AutoHideDelay() time.Duration {
	return time.Duration(c.AutoHideMs) * time.Millisecond
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	return catalog.GetSortStrategy(sortMethod).Name()
}

func saveConfig(config Config, configPath string) error {
	if configPath == "" {
		configPath = getConfigPath()
	}
	return saveConfigToPath(config, configPath)
}

func saveConfigToPath(config Config, configPath string) error {
	if config.WindowWidth < minWidth || config.WindowHeight < minHeight {
		return fmt.Errorf("not saving config with invalid window size: %dx%d",
			config.WindowWidth, config.WindowHeight)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("save config to %s: %w", configPath, err)
	}
	return nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logical MIDI outputs. Each is routed to an OS port by name.
const (
	OutputLighting = "Lighting"
	OutputQLab     = "QLAB"
	OutputDrums    = "Drums"
	OutputKeys     = "Keys"
	OutputHorn     = "Horn"
)

// Outputs lists every logical output in a stable order
var Outputs = []string{OutputLighting, OutputQLab, OutputDrums, OutputKeys, OutputHorn}

// DisplayMode selects the front-end
type DisplayMode string

const (
	DisplayWindow DisplayMode = "window" // full-screen projector window
	DisplayTUI    DisplayMode = "tui"    // terminal
)

// Route sends a logical output to a MIDI port and channel
type Route struct {
	Port    string `json:"port"`
	Channel uint8  `json:"channel"`
}

// Config is the main configuration structure
type Config struct {
	Routes             map[string]Route `json:"routes,omitempty"`
	Display            DisplayMode      `json:"display,omitempty"`
	IdleDelayMs        int              `json:"idleDelayMs,omitempty"`
	RepeatDelayMs      int              `json:"repeatDelayMs,omitempty"`
	ReleaseAfterMs     int              `json:"releaseAfterMs,omitempty"`
	HornReleaseNoteOff bool             `json:"hornReleaseNoteOff,omitempty"`
	Palette            string           `json:"palette,omitempty"` // optional .gpl overriding region colors
}

const (
	defaultIdleDelayMs = 100
	// longer than the usual OS auto-repeat delay (X11 660ms, macOS up to 750ms)
	defaultRepeatDelayMs  = 900
	defaultReleaseAfterMs = 600
)

// DefaultConfig routes every output to a port with the same name on channel 0
func DefaultConfig() *Config {
	routes := make(map[string]Route, len(Outputs))
	for _, name := range Outputs {
		routes[name] = Route{Port: name}
	}
	return &Config{
		Routes:         routes,
		Display:        DisplayWindow,
		IdleDelayMs:    defaultIdleDelayMs,
		RepeatDelayMs:  defaultRepeatDelayMs,
		ReleaseAfterMs: defaultReleaseAfterMs,
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "kitchen-party"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from the default path, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields defaults; fields
// left out of the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.fillRoutes()

	return cfg, nil
}

// fillRoutes adds default routes for outputs the file did not mention
func (c *Config) fillRoutes() {
	if c.Routes == nil {
		c.Routes = make(map[string]Route, len(Outputs))
	}
	for _, name := range Outputs {
		if _, ok := c.Routes[name]; !ok {
			c.Routes[name] = Route{Port: name}
		}
	}
}

// Validate checks values a hand-edited file could get wrong
func (c *Config) Validate() error {
	switch c.Display {
	case DisplayWindow, DisplayTUI:
	default:
		return fmt.Errorf("unknown display %q", c.Display)
	}
	for name, r := range c.Routes {
		if r.Channel > 15 {
			return fmt.Errorf("route %s: channel %d out of range 0-15", name, r.Channel)
		}
	}
	if c.IdleDelayMs < 0 || c.RepeatDelayMs < 0 || c.ReleaseAfterMs < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Route returns the route for a logical output, defaulting to a port of the
// same name
func (c *Config) Route(name string) Route {
	if r, ok := c.Routes[name]; ok {
		return r
	}
	return Route{Port: name}
}

// IdleDelay is the pause between the idle and ready lighting cues
func (c *Config) IdleDelay() time.Duration {
	if c.IdleDelayMs <= 0 {
		return defaultIdleDelayMs * time.Millisecond
	}
	return time.Duration(c.IdleDelayMs) * time.Millisecond
}

// RepeatDelay is how long the terminal front-end waits for the first repeat
// after a press before treating the key as released
func (c *Config) RepeatDelay() time.Duration {
	if c.RepeatDelayMs <= 0 {
		return defaultRepeatDelayMs * time.Millisecond
	}
	return time.Duration(c.RepeatDelayMs) * time.Millisecond
}

// ReleaseAfter is how long the terminal front-end waits between later
// repeats before treating the key as released
func (c *Config) ReleaseAfter() time.Duration {
	if c.ReleaseAfterMs <= 0 {
		return defaultReleaseAfterMs * time.Millisecond
	}
	return time.Duration(c.ReleaseAfterMs) * time.Millisecond
}

// Package config loads and saves the widget's YAML configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-widget/common"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file read when no path is given on the command line.
const DefaultPath = "config.yml"

const (
	minOpacity = 10
	maxOpacity = 100
)

// AnimationItem is one step of an action's animation sequence.
type AnimationItem struct {
	Name string `yaml:"name"`
	Loop bool   `yaml:"loop,omitempty"`
	// Length is the time in seconds before the next item starts. Nil queues the next item at the
	// natural end of this one.
	Length *float32 `yaml:"length,omitempty"`
}

// Delay returns the item's length, or 0 when it has none.
func (i AnimationItem) Delay() float32 {
	if i.Length == nil {
		return 0
	}
	return *i.Length
}

// Action binds a trigger key to an animation sequence.
type Action struct {
	Trigger  common.Key
	Sequence []AnimationItem
	// ReturnToIdle queues the idle animation after the sequence. It defaults to true.
	ReturnToIdle bool
}

// actionDocument is the on-disk form of Action.
type actionDocument struct {
	Trigger      common.Key      `yaml:"trigger"`
	Sequence     []AnimationItem `yaml:"sequence"`
	ReturnToIdle *bool           `yaml:"return_to_idle,omitempty"`
}

// MarshalYAML omits return_to_idle when it holds the default.
func (a Action) MarshalYAML() (any, error) {
	doc := actionDocument{Trigger: a.Trigger, Sequence: a.Sequence}
	if !a.ReturnToIdle {
		doc.ReturnToIdle = &a.ReturnToIdle
	}
	return doc, nil
}

// UnmarshalYAML decodes an action, defaulting return_to_idle to true.
func (a *Action) UnmarshalYAML(node *yaml.Node) error {
	var doc actionDocument
	if err := node.Decode(&doc); err != nil {
		return err
	}
	*a = Action{
		Trigger:      doc.Trigger,
		Sequence:     doc.Sequence,
		ReturnToIdle: doc.ReturnToIdle == nil || *doc.ReturnToIdle,
	}
	return nil
}

// Config is the widget configuration.
type Config struct {
	// Pack is the character pack, a zip archive holding char.atlas, char.rig and the atlas pages.
	Pack          string   `yaml:"pack"`
	Actions       []Action `yaml:"actions"`
	IdleAnimation string   `yaml:"idle_animation,omitempty"`
	// WindowSize and WindowPosition are in logical pixels.
	WindowSize     [2]float64 `yaml:"window_size,flow"`
	WindowPosition [2]float64 `yaml:"window_position,flow"`
	Scale          float32    `yaml:"scale"`
	BottomOffset   float32    `yaml:"bottom_offset"`
	// Opacity is a percentage between 10 and 100.
	Opacity   int  `yaml:"opacity"`
	VSync     bool `yaml:"vsync"`
	Profiling bool `yaml:"profiling"`
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		Pack:         "character.zip",
		Actions:      []Action{},
		WindowSize:   [2]float64{300, 400},
		Scale:        1,
		BottomOffset: 5,
		Opacity:      100,
		VSync:        true,
	}
}

// Load reads the configuration file at path.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - *Config: the configuration with defaults for missing keys
//   - error: an error wrapping fs.ErrNotExist when the file is missing, or a decode error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration document over the defaults.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the configuration with defaults for missing keys and opacity clamped
//   - error: an error if the document is malformed or names an unknown key
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Actions == nil {
		cfg.Actions = []Action{}
	}
	cfg.Opacity = ClampOpacity(cfg.Opacity)
	return cfg, nil
}

// Save writes the configuration to path.
//
// Parameters:
//   - path: the file to write
//
// Returns:
//   - error: an error if encoding or writing failed
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// OpacityFactor returns the opacity as a factor in [0.1, 1].
func (c *Config) OpacityFactor() float32 {
	return float32(ClampOpacity(c.Opacity)) / 100
}

// ClampOpacity limits an opacity percentage to the range 10 to 100.
func ClampOpacity(percent int) int {
	return min(max(percent, minOpacity), maxOpacity)
}

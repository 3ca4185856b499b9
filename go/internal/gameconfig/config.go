package gameconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Defaults used when the config file is missing or a value is invalid.
const (
	DefaultDurationSec = 5.0
	DefaultTickMs      = 100
)

// Config holds the game tuning read from YAML.
type Config struct {
	Game struct {
		DurationsSec       []float64 `yaml:"durations_sec"`
		DefaultDurationSec float64   `yaml:"default_duration_sec"`
		TickIntervalMs     int       `yaml:"tick_interval_ms"`
	} `yaml:"game"`
}

// Load reads the config file at path. A missing file is not an error;
// it yields defaults, same as any individual invalid value. The game
// must stay playable no matter what the config says.
func Load(path string) *Config {
	var config Config

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not read game config; using defaults")
		return &config
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not parse game config; using defaults")
		return &Config{}
	}
	return &config
}

// DefaultDuration returns the configured default round length, falling
// back to 5s when absent or non-positive.
func (c *Config) DefaultDuration() time.Duration {
	sec := c.Game.DefaultDurationSec
	if sec <= 0 {
		sec = DefaultDurationSec
	}
	return time.Duration(sec * float64(time.Second))
}

// DurationChoices returns the selectable round lengths. Non-positive
// entries are dropped; an empty list collapses to the default duration.
func (c *Config) DurationChoices() []time.Duration {
	choices := make([]time.Duration, 0, len(c.Game.DurationsSec))
	for _, sec := range c.Game.DurationsSec {
		if sec > 0 {
			choices = append(choices, time.Duration(sec*float64(time.Second)))
		}
	}
	if len(choices) == 0 {
		choices = []time.Duration{c.DefaultDuration()}
	}
	return choices
}

// TickInterval returns the countdown granularity, default 100ms.
func (c *Config) TickInterval() time.Duration {
	ms := c.Game.TickIntervalMs
	if ms <= 0 {
		ms = DefaultTickMs
	}
	return time.Duration(ms) * time.Millisecond
}

// String summarizes the effective config for startup logging.
func (c *Config) String() string {
	return fmt.Sprintf("default=%s tick=%s choices=%v",
		c.DefaultDuration(), c.TickInterval(), c.DurationChoices())
}

package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Selector is the operator-facing duration source: it holds the round
// lengths a player may choose from and the current choice. The controller
// reads it at Start and Restart; changing the selection mid-run does not
// affect the session in flight.
type Selector struct {
	mu      sync.Mutex
	choices []time.Duration
	current time.Duration
}

// NewSelector creates a selector with the given choices and default.
// Non-positive values fall back to DefaultDuration.
func NewSelector(choices []time.Duration, defaultDuration time.Duration) *Selector {
	valid := make([]time.Duration, 0, len(choices))
	for _, d := range choices {
		if d > 0 {
			valid = append(valid, d)
		}
	}
	if len(valid) == 0 {
		valid = []time.Duration{DefaultDuration}
	}
	return &Selector{
		choices: valid,
		current: sanitizeDuration(defaultDuration),
	}
}

// CurrentDuration implements DurationSource.
func (s *Selector) CurrentDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Select switches the current duration. Only values from the configured
// choices are accepted; anything else is ignored and reported false.
func (s *Selector) Select(d time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, choice := range s.choices {
		if choice == d {
			s.current = d
			return true
		}
	}
	log.Debug().Dur("duration", d).Msg("ignoring duration outside configured choices")
	return false
}

// Choices returns the selectable durations.
func (s *Selector) Choices() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, len(s.choices))
	copy(out, s.choices)
	return out
}

// Package sensor reports local readings to Home Assistant as entity states.
package sensor

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	hass "github.com/frankli0324/go-hass"
)

// StateSetter is satisfied by *hass.API.
type StateSetter interface {
	SetState(ctx context.Context, entityID string, state interface{}, attributes map[string]interface{}) (*hass.State, error)
}

type Sensor struct {
	entityID   string
	value      func() (float64, error)
	attributes map[string]interface{}

	delta    float64
	hasDelta bool

	last     float64
	reported bool
}

type Option func(*Sensor)

// WithReportDelta only reports a reading if it differs from the last
// reported one by more than delta.
func WithReportDelta(delta float64) Option {
	return func(s *Sensor) { s.delta, s.hasDelta = math.Abs(delta), true }
}

// WithAttribute adds an attribute sent along with every reading.
func WithAttribute(name string, value interface{}) Option {
	return func(s *Sensor) { s.attributes[name] = value }
}

func New(entityID string, value func() (float64, error), unit string, opts ...Option) *Sensor {
	s := &Sensor{
		entityID:   entityID,
		value:      value,
		attributes: map[string]interface{}{"unit_of_measurement": unit},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sensor) EntityID() string {
	return s.entityID
}

// Last returns the last reported reading.
func (s *Sensor) Last() (float64, bool) {
	return s.last, s.reported
}

// Report takes a reading and sends it unless it is within the report delta
// of the last reported one. the reading is only remembered once sent.
func (s *Sensor) Report(ctx context.Context, setter StateSetter) (bool, error) {
	v, err := s.value()
	if err != nil {
		return false, fmt.Errorf("sensor %s: reading value: %w", s.entityID, err)
	}
	if s.reported && s.hasDelta && math.Abs(v-s.last) <= s.delta {
		return false, nil
	}
	if _, err := setter.SetState(ctx, s.entityID, v, s.attributes); err != nil {
		return false, fmt.Errorf("sensor %s: %w", s.entityID, err)
	}
	s.last, s.reported = v, true
	return true, nil
}

// Poll reports every sensor each interval until ctx is done. failures are
// logged and retried on the next tick.
func Poll(ctx context.Context, interval time.Duration, setter StateSetter, logger *slog.Logger, sensors ...*Sensor) error {
	if logger == nil {
		logger = slog.Default()
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, s := range sensors {
			sent, err := s.Report(ctx, setter)
			if err != nil {
				logger.Warn("sensor report failed", "entity_id", s.entityID, "error", err)
				continue
			}
			if sent {
				logger.Debug("sensor reported", "entity_id", s.entityID, "value", s.last)
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

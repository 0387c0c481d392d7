// Package alert watches futures prices against converted gamma levels and
// fires each level once when price comes within a distance threshold.
package alert

import (
	"math"
	"time"
)

const DefaultDistanceThreshold = 0.5

// Observation carries the optional market context for a price check.
// A nil field means the value was not observed.
type Observation struct {
	Volume   *float64
	Velocity *float64
}

// Condition is one monitored level.
type Condition struct {
	Name              string     `json:"level_name"`
	Level             float64    `json:"level"`
	DistanceThreshold float64    `json:"distance_threshold"`
	VolumeThreshold   float64    `json:"volume_threshold,omitempty"` // 0 disables the volume gate
	Triggered         bool       `json:"triggered"`
	TriggeredAt       *time.Time `json:"trigger_time,omitempty"`
}

// Check reports whether price satisfies the condition. It does not mark the
// condition as triggered.
func (c Condition) Check(price float64, obs Observation) bool {
	if math.Abs(price-c.Level) > c.DistanceThreshold {
		return false
	}

	if c.VolumeThreshold > 0 && obs.Volume != nil && *obs.Volume < c.VolumeThreshold {
		return false
	}

	// moving away from the level
	if obs.Velocity != nil {
		v := *obs.Velocity
		if price < c.Level && v < 0 {
			return false
		}
		if price > c.Level && v > 0 {
			return false
		}
	}

	return true
}

package alert

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/spread"
)

// Event records a condition firing.
type Event struct {
	Name        string    `json:"level_name"`
	Level       float64   `json:"level"`
	Price       float64   `json:"current_price"`
	Distance    float64   `json:"distance"`
	Volume      *float64  `json:"volume,omitempty"`
	Velocity    *float64  `json:"velocity,omitempty"`
	TriggeredAt time.Time `json:"timestamp"`
}

type Summary struct {
	Total     int         `json:"total_conditions"`
	Triggered int         `json:"triggered_count"`
	Active    []Condition `json:"active_conditions"`
	History   int         `json:"alert_history_count"`
}

// Watcher evaluates a set of conditions. It is safe for concurrent use.
type Watcher struct {
	mu                sync.Mutex
	conditions        []Condition
	history           []Event
	distanceThreshold float64
	volumeThreshold   float64
	logger            *zap.Logger
	now               func() time.Time
}

// NewWatcher creates a watcher whose Setup conditions use the given
// thresholds. A non-positive distance threshold falls back to
// DefaultDistanceThreshold.
func NewWatcher(distanceThreshold, volumeThreshold float64, logger *zap.Logger) *Watcher {
	if distanceThreshold <= 0 || math.IsNaN(distanceThreshold) {
		distanceThreshold = DefaultDistanceThreshold
	}
	if volumeThreshold < 0 || math.IsNaN(volumeThreshold) {
		volumeThreshold = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		distanceThreshold: distanceThreshold,
		volumeThreshold:   volumeThreshold,
		logger:            logger,
		now:               time.Now,
	}
}

// Add appends a condition. A non-positive distance threshold takes the
// watcher default.
func (w *Watcher) Add(c Condition) {
	if c.DistanceThreshold <= 0 {
		c.DistanceThreshold = w.distanceThreshold
	}

	w.mu.Lock()
	w.conditions = append(w.conditions, c)
	w.mu.Unlock()

	w.logger.Info("alert condition added",
		zap.String("level", c.Name),
		zap.Float64("target", c.Level),
		zap.Float64("threshold", c.DistanceThreshold),
	)
}

// Setup replaces all conditions with one per converted level.
func (w *Watcher) Setup(levels []spread.Converted) {
	conditions := make([]Condition, 0, len(levels))
	for _, lvl := range levels {
		conditions = append(conditions, Condition{
			Name:              lvl.Name,
			Level:             lvl.Futures,
			DistanceThreshold: w.distanceThreshold,
			VolumeThreshold:   w.volumeThreshold,
		})
	}

	w.mu.Lock()
	w.conditions = conditions
	w.mu.Unlock()

	w.logger.Info("alert conditions configured", zap.Int("count", len(conditions)))
}

// Evaluate checks every untriggered condition against price and returns the
// events fired by this call. Each condition fires at most once until Reset.
func (w *Watcher) Evaluate(price float64, obs Observation) []Event {
	w.mu.Lock()
	defer w.mu.Unlock()

	fired := []Event{}
	for i := range w.conditions {
		c := &w.conditions[i]
		if c.Triggered || !c.Check(price, obs) {
			continue
		}

		at := w.now()
		c.Triggered = true
		c.TriggeredAt = &at

		ev := Event{
			Name:        c.Name,
			Level:       c.Level,
			Price:       price,
			Distance:    math.Abs(price - c.Level),
			Volume:      obs.Volume,
			Velocity:    obs.Velocity,
			TriggeredAt: at,
		}
		w.history = append(w.history, ev)
		fired = append(fired, ev)

		w.logger.Warn("alert triggered",
			zap.String("level", c.Name),
			zap.Float64("target", c.Level),
			zap.Float64("price", price),
			zap.Float64("distance", ev.Distance),
		)
	}
	return fired
}

// Reset re-arms every condition. History is kept.
func (w *Watcher) Reset() {
	w.mu.Lock()
	for i := range w.conditions {
		w.conditions[i].Triggered = false
		w.conditions[i].TriggeredAt = nil
	}
	w.mu.Unlock()

	w.logger.Info("alert conditions reset")
}

// Conditions returns a copy of the current conditions.
func (w *Watcher) Conditions() []Condition {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Condition, len(w.conditions))
	copy(out, w.conditions)
	return out
}

func (w *Watcher) History() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Event, len(w.history))
	copy(out, w.history)
	return out
}

func (w *Watcher) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()

	active := make([]Condition, len(w.conditions))
	copy(active, w.conditions)

	triggered := 0
	for _, c := range w.conditions {
		if c.Triggered {
			triggered++
		}
	}
	return Summary{
		Total:     len(w.conditions),
		Triggered: triggered,
		Active:    active,
		History:   len(w.history),
	}
}

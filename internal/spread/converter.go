// Package spread translates index levels onto a futures contract using a
// fixed additive spread (futures minus index), set once per session.
package spread

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

var ErrInvalidPrice = errors.New("price must be positive and finite")

// Converted is one level expressed on both instruments.
type Converted struct {
	Name    string  `json:"name"`
	Index   float64 `json:"index"`
	Futures float64 `json:"futures"`
	Spread  float64 `json:"spread"`
}

// Summary describes the converter state.
type Summary struct {
	Available bool       `json:"spread_available"`
	Spread    *float64   `json:"spread,omitempty"`
	SetAt     *time.Time `json:"spread_timestamp,omitempty"`
}

// Converter holds the current spread. It is safe for concurrent use.
type Converter struct {
	mu     sync.RWMutex
	spread float64
	setAt  time.Time
	has    bool
	logger *zap.Logger
}

func NewConverter(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger}
}

// Calculate stores futuresPrice - indexPrice as the session spread.
func (c *Converter) Calculate(indexPrice, futuresPrice float64) (float64, error) {
	if !validPrice(indexPrice) {
		return 0, fmt.Errorf("index %w, got %v", ErrInvalidPrice, indexPrice)
	}
	if !validPrice(futuresPrice) {
		return 0, fmt.Errorf("futures %w, got %v", ErrInvalidPrice, futuresPrice)
	}

	s := futuresPrice - indexPrice
	c.store(s)
	c.logger.Info("spread calculated",
		zap.Float64("spread", s),
		zap.Float64("index", indexPrice),
		zap.Float64("futures", futuresPrice),
	)
	return s, nil
}

// Set stores an explicit spread. Negative spreads are valid.
func (c *Converter) Set(spread float64) error {
	if math.IsNaN(spread) || math.IsInf(spread, 0) {
		return fmt.Errorf("spread must be finite, got %v", spread)
	}
	c.store(spread)
	c.logger.Info("spread set", zap.Float64("spread", spread))
	return nil
}

func (c *Converter) store(s float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spread = s
	c.setAt = time.Now()
	c.has = true
}

// Spread returns the current spread and whether one has been set.
func (c *Converter) Spread() (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spread, c.has
}

// ConvertLevel returns level + spread. ok is false when no spread is set.
func (c *Converter) ConvertLevel(level float64) (float64, bool) {
	s, ok := c.Spread()
	if !ok {
		return 0, false
	}
	return level + s, true
}

// ConvertLevels converts the present levels in put wall, call wall, gamma
// flip order. Without a spread the result is empty.
func (c *Converter) ConvertLevels(levels gamma.LevelSet) []Converted {
	s, ok := c.Spread()
	if !ok {
		c.logger.Warn("cannot convert levels, spread not available")
		return []Converted{}
	}

	named := levels.Named()
	out := make([]Converted, 0, len(named))
	for _, lvl := range named {
		out = append(out, Converted{
			Name:    lvl.Name,
			Index:   lvl.Strike,
			Futures: lvl.Strike + s,
			Spread:  s,
		})
	}
	c.logger.Debug("levels converted", zap.Int("count", len(out)), zap.Float64("spread", s))
	return out
}

func (c *Converter) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.has {
		return Summary{}
	}
	s, at := c.spread, c.setAt
	return Summary{Available: true, Spread: &s, SetAt: &at}
}

func validPrice(p float64) bool {
	return !math.IsNaN(p) && !math.IsInf(p, 0) && p > 0
}

// Package gamma computes dealer gamma exposure across the strikes of a
// single-expiry options chain and derives put wall, call wall and gamma flip
// levels, an importance ranking and a regime label.
package gamma

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	DefaultContractMultiplier = 100
	DefaultFlipWindowPct      = 0.01
	DefaultTopK               = 5
)

// Params are the engine constants, fixed for the lifetime of an Engine.
type Params struct {
	ContractMultiplier float64 // shares per contract
	FlipWindowPct      float64 // gamma flip search window as a fraction of price
	TopK               int     // number of ranked strikes returned
}

// DefaultParams returns multiplier 100, a ±1% flip window and top 5.
func DefaultParams() Params {
	return Params{
		ContractMultiplier: DefaultContractMultiplier,
		FlipWindowPct:      DefaultFlipWindowPct,
		TopK:               DefaultTopK,
	}
}

// Validate rejects parameters that indicate a caller defect.
func (p Params) Validate() error {
	if !isFinite(p.ContractMultiplier) || p.ContractMultiplier <= 0 {
		return fmt.Errorf("%w: contract multiplier must be positive, got %v", ErrInvalidParams, p.ContractMultiplier)
	}
	if !isFinite(p.FlipWindowPct) || p.FlipWindowPct < 0 {
		return fmt.Errorf("%w: gamma flip window must be >= 0, got %v", ErrInvalidParams, p.FlipWindowPct)
	}
	if p.TopK < 0 {
		return fmt.Errorf("%w: top k must be >= 0, got %d", ErrInvalidParams, p.TopK)
	}
	return nil
}

// Engine runs the analysis pipeline. It keeps no state between calls and is
// safe for concurrent use.
type Engine struct {
	params Params
	logger *zap.Logger
}

func NewEngine(params Params, logger *zap.Logger) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{params: params, logger: logger}, nil
}

func (e *Engine) Params() Params {
	return e.params
}

// Analyze runs dealer gamma, strike aggregation, level search, ranking and
// regime classification in that order. Empty input yields an empty table,
// no levels, an empty ranking and the neutral regime.
func (e *Engine) Analyze(rows []ContractRow, referencePrice float64) (*Result, error) {
	if !isFinite(referencePrice) || referencePrice <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidReferencePrice, referencePrice)
	}

	strikes := Aggregate(rows, e.params.ContractMultiplier)
	levels := FindLevels(strikes, referencePrice, e.params.FlipWindowPct)
	ranked := Rank(strikes, e.params.TopK)
	regime := ClassifyRegime(referencePrice, levels.GammaFlip)

	e.logger.Debug("gamma analysis complete",
		zap.Int("rows", len(rows)),
		zap.Int("strikes", len(strikes)),
		zap.Float64("price", referencePrice),
		zap.String("regime", string(regime)),
	)
	for _, lvl := range levels.Named() {
		e.logger.Debug("level identified",
			zap.String("level", lvl.Name),
			zap.Float64("strike", lvl.Strike),
			zap.Float64("gamma", lvl.Gamma),
		)
	}

	return &Result{
		ReferencePrice: referencePrice,
		Strikes:        strikes,
		Levels:         levels,
		Ranked:         ranked,
		Regime:         regime,
	}, nil
}

package gamma

// Regime is the market-behavior classification derived from the gamma flip.
type Regime string

const (
	RegimeLongGamma  Regime = "long_gamma"  // mean-reverting
	RegimeShortGamma Regime = "short_gamma" // trend-amplifying
	RegimeNeutral    Regime = "neutral"     // no gamma flip found
)

// ClassifyRegime is a pure function of the reference price and the gamma
// flip. Price above the flip models the market as short gamma.
func ClassifyRegime(price float64, flip *Level) Regime {
	if flip == nil {
		return RegimeNeutral
	}
	if price > flip.Strike {
		return RegimeShortGamma
	}
	return RegimeLongGamma
}

package gamma

import "math"

// FindLevels runs the put wall, call wall and gamma flip searches over a
// strike-sorted aggregate. Each search is independent and leaves its level nil
// when no strike qualifies.
func FindLevels(strikes []StrikeAggregate, price, windowPct float64) LevelSet {
	return LevelSet{
		PutWall:   putWall(strikes, price),
		CallWall:  callWall(strikes, price),
		GammaFlip: gammaFlip(strikes, price, windowPct),
	}
}

// putWall picks the largest |put gamma| strictly below price, falling back to
// strikes at or below price when nothing is strictly below.
func putWall(strikes []StrikeAggregate, price float64) *Level {
	putGamma := func(s StrikeAggregate) float64 { return s.DealerGammaPut }

	if lvl := maxAbs(strikes, func(s float64) bool { return s < price }, putGamma); lvl != nil {
		return lvl
	}
	return maxAbs(strikes, func(s float64) bool { return s <= price }, putGamma)
}

// callWall picks the largest |call gamma| strictly above price, falling back to
// strikes at or above price.
func callWall(strikes []StrikeAggregate, price float64) *Level {
	callGamma := func(s StrikeAggregate) float64 { return s.DealerGammaCall }

	if lvl := maxAbs(strikes, func(s float64) bool { return s > price }, callGamma); lvl != nil {
		return lvl
	}
	return maxAbs(strikes, func(s float64) bool { return s >= price }, callGamma)
}

// gammaFlip picks the strike with net gamma closest to zero inside
// [price*(1-windowPct), price*(1+windowPct)].
func gammaFlip(strikes []StrikeAggregate, price, windowPct float64) *Level {
	lower := price * (1 - windowPct)
	upper := price * (1 + windowPct)

	var best *Level
	bestAbs := math.Inf(1)
	for _, s := range strikes {
		if s.Strike < lower || s.Strike > upper {
			continue
		}
		// strict comparison keeps the lowest strike on ties
		if a := math.Abs(s.NetGamma); best == nil || a < bestAbs {
			best = &Level{Strike: s.Strike, Gamma: s.NetGamma}
			bestAbs = a
		}
	}
	return best
}

func maxAbs(strikes []StrikeAggregate, include func(strike float64) bool, value func(StrikeAggregate) float64) *Level {
	var best *Level
	bestAbs := -1.0
	for _, s := range strikes {
		if !include(s.Strike) {
			continue
		}
		v := value(s)
		if a := math.Abs(v); a > bestAbs {
			best = &Level{Strike: s.Strike, Gamma: v}
			bestAbs = a
		}
	}
	return best
}

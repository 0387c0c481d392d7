package gamma

import (
	"math"
	"sort"
)

// DealerGamma returns the signed gamma exposure of one contract row, modeling
// dealers as short every listed contract:
//
//	-open_interest * gamma * multiplier
//
// Missing or malformed inputs, and products that overflow, contribute
// exactly 0.
func DealerGamma(row ContractRow, multiplier float64) float64 {
	if row.OpenInterest <= 0 || !isFinite(row.Gamma) || row.Gamma == 0 {
		return 0
	}
	exposure := -float64(row.OpenInterest) * row.Gamma * multiplier
	if !isFinite(exposure) {
		return 0
	}
	return exposure
}

// Aggregate groups rows by strike and returns one aggregate per distinct
// strike, sorted ascending. Rows without a usable strike are skipped.
func Aggregate(rows []ContractRow, multiplier float64) []StrikeAggregate {
	if len(rows) == 0 {
		return []StrikeAggregate{}
	}

	byStrike := make(map[float64]*StrikeAggregate)
	for _, row := range rows {
		if !isFinite(row.Strike) || row.Strike <= 0 {
			continue
		}

		agg, ok := byStrike[row.Strike]
		if !ok {
			agg = &StrikeAggregate{Strike: row.Strike}
			byStrike[row.Strike] = agg
		}

		exposure := DealerGamma(row, multiplier)
		switch row.Type {
		case Call:
			agg.DealerGammaCall = addFinite(agg.DealerGammaCall, exposure)
		case Put:
			agg.DealerGammaPut = addFinite(agg.DealerGammaPut, exposure)
		}

		if row.Volume > 0 {
			agg.VolumeSum += row.Volume
		}
		if row.OpenInterest > 0 {
			agg.OpenInterestSum += row.OpenInterest
		}
	}

	out := make([]StrikeAggregate, 0, len(byStrike))
	for _, agg := range byStrike {
		agg.NetGamma = addFinite(agg.DealerGammaCall, agg.DealerGammaPut)
		out = append(out, *agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Strike < out[j].Strike })
	return out
}

// addFinite returns sum+v, or sum unchanged when the result would overflow.
func addFinite(sum, v float64) float64 {
	if next := sum + v; isFinite(next) {
		return next
	}
	return sum
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

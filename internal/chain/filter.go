package chain

import "sort"

// SelectExpiry keeps records expiring on date (YYYY-MM-DD). Records without an
// expiration are assumed to belong to the selected expiry. An empty date keeps
// everything.
func SelectExpiry(records []Record, date string) []Record {
	if date == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Expiration == "" || r.Expiration == date {
			out = append(out, r)
		}
	}
	return out
}

// Expirations lists the distinct non-empty expirations in ascending order.
func Expirations(records []Record) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		if r.Expiration != "" {
			seen[r.Expiration] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for e := range seen {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// NearestExpiry returns the first expiration on or after date, or "" when the
// chain has none.
func NearestExpiry(records []Record, date string) string {
	for _, e := range Expirations(records) {
		if e >= date {
			return e
		}
	}
	return ""
}

// FilterRange keeps records with strike inside price*(1 ± rangePct/100) and
// volume >= minVolume. rangePct <= 0 disables the strike bound and
// minVolume <= 0 disables the volume bound.
func FilterRange(records []Record, price, rangePct float64, minVolume int64) []Record {
	lower, upper := 0.0, 0.0
	if rangePct > 0 {
		lower = price * (1 - rangePct/100)
		upper = price * (1 + rangePct/100)
	}

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if rangePct > 0 && (r.Strike < lower || r.Strike > upper) {
			continue
		}
		if minVolume > 0 && r.Volume < minVolume {
			continue
		}
		out = append(out, r)
	}
	return out
}

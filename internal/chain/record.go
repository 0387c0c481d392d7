// Package chain reads single-expiry option chain snapshots from CSV, JSON and
// JSONL files and converts them into engine rows.
package chain

import (
	"math"
	"strconv"
	"strings"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

// Record is one contract as read from a chain file.
type Record struct {
	Ticker       string             `json:"ticker,omitempty"`
	Expiration   string             `json:"expiration,omitempty"`
	Strike       float64            `json:"strike"`
	Type         gamma.ContractType `json:"type"`
	Volume       int64              `json:"volume"`
	OpenInterest int64              `json:"open_interest"`
	Gamma        float64            `json:"gamma"`
}

// Row converts the record into an engine input row.
func (r Record) Row() gamma.ContractRow {
	return gamma.ContractRow{
		Strike:       r.Strike,
		Type:         r.Type,
		Volume:       r.Volume,
		OpenInterest: r.OpenInterest,
		Gamma:        r.Gamma,
	}
}

// Rows converts records into engine input rows, preserving order.
func Rows(records []Record) []gamma.ContractRow {
	rows := make([]gamma.ContractRow, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return rows
}

// parseFloat returns 0 for empty, null or unparsable input.
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// parseCount accepts integers and integral floats such as "1200.0".
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	f := parseFloat(s)
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

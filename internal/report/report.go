// Package report assembles analysis output for JSON, table and CSV sinks.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/dgnsrekt/gexbot-levels/internal/alert"
	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
	"github.com/dgnsrekt/gexbot-levels/internal/spread"
)

type Report struct {
	AnalysisID      string                  `json:"analysis_id,omitempty"`
	Date            string                  `json:"date,omitempty"`
	GeneratedAt     time.Time               `json:"timestamp"`
	ReferencePrice  float64                 `json:"reference_price"`
	FuturesPrice    *float64                `json:"futures_price,omitempty"`
	Spread          *float64                `json:"spread,omitempty"`
	Regime          gamma.Regime            `json:"regime"`
	Levels          gamma.LevelSet          `json:"levels"`
	ConvertedLevels []spread.Converted      `json:"converted_levels"`
	TopStrikes      []gamma.RankedStrike    `json:"top_strikes"`
	Profile         []gamma.StrikeAggregate `json:"profile"`
	Alerts          []alert.Event           `json:"alerts"`
}

// Build copies an analysis result into a report. Nil slices become empty so
// the JSON form always carries arrays.
func Build(result *gamma.Result, converted []spread.Converted, events []alert.Event) *Report {
	rep := &Report{
		GeneratedAt:     time.Now().UTC(),
		ReferencePrice:  result.ReferencePrice,
		Regime:          result.Regime,
		Levels:          result.Levels,
		ConvertedLevels: converted,
		TopStrikes:      result.Ranked,
		Profile:         result.Strikes,
		Alerts:          events,
	}
	if rep.ConvertedLevels == nil {
		rep.ConvertedLevels = []spread.Converted{}
	}
	if rep.TopStrikes == nil {
		rep.TopStrikes = []gamma.RankedStrike{}
	}
	if rep.Profile == nil {
		rep.Profile = []gamma.StrikeAggregate{}
	}
	if rep.Alerts == nil {
		rep.Alerts = []alert.Event{}
	}
	return rep
}

// Converted looks up a converted level by name.
func (r *Report) Converted(name string) (spread.Converted, bool) {
	for _, c := range r.ConvertedLevels {
		if c.Name == name {
			return c, true
		}
	}
	return spread.Converted{}, false
}

func WriteJSON(w io.Writer, rep *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// InvalidField describes one rejected setting.
type InvalidField struct {
	Key    string
	Value  any
	Reason string
}

// ValidationErrors collects every invalid setting so they can be fixed in
// one pass.
type ValidationErrors struct {
	Fields []InvalidField
}

func (e *ValidationErrors) Add(key string, value any, reason string) {
	e.Fields = append(e.Fields, InvalidField{Key: key, Value: value, Reason: reason})
}

func (e *ValidationErrors) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationErrors) Error() string {
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, f := range e.Fields {
		sb.WriteString(fmt.Sprintf("  - %s = %v: %s\n", f.Key, f.Value, f.Reason))
	}
	return sb.String()
}

func (c *Config) Validate() error {
	errs := &ValidationErrors{}

	if !finite(c.Engine.ContractMultiplier) || c.Engine.ContractMultiplier <= 0 {
		errs.Add("engine.contract_multiplier", c.Engine.ContractMultiplier, "must be positive")
	}
	if !finite(c.Engine.GammaFlipWindowPct) || c.Engine.GammaFlipWindowPct < 0 {
		errs.Add("engine.gamma_flip_window_pct", c.Engine.GammaFlipWindowPct, "must be >= 0")
	}
	if c.Engine.TopK < 0 {
		errs.Add("engine.top_k", c.Engine.TopK, "must be >= 0")
	}

	if !finite(c.Filter.StrikeRangePct) || c.Filter.StrikeRangePct < 0 {
		errs.Add("filter.strike_range_pct", c.Filter.StrikeRangePct, "must be >= 0 (0 disables the range bound)")
	}
	if c.Filter.MinVolume < 0 {
		errs.Add("filter.min_volume", c.Filter.MinVolume, "must be >= 0")
	}

	if !finite(c.Alerts.DistanceThreshold) || c.Alerts.DistanceThreshold <= 0 {
		errs.Add("alerts.distance_threshold", c.Alerts.DistanceThreshold, "must be positive")
	}
	if !finite(c.Alerts.VolumeThreshold) || c.Alerts.VolumeThreshold < 0 {
		errs.Add("alerts.volume_threshold", c.Alerts.VolumeThreshold, "must be >= 0 (0 disables the volume gate)")
	}

	if c.Session.Timezone != "" {
		if _, err := time.LoadLocation(c.Session.Timezone); err != nil {
			errs.Add("session.timezone", c.Session.Timezone, "unknown timezone")
		}
	}

	if !ValidFormats[Format(c.Output.Format)] {
		errs.Add("output.format", c.Output.Format, "must be one of json, table, csv")
	}

	if c.Logging.Level != "" && !ValidLogLevels[strings.ToLower(c.Logging.Level)] {
		errs.Add("logging.level", c.Logging.Level, "must be one of debug, info, warn, error")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

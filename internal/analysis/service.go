// Package analysis runs the end-to-end levels pipeline shared by the CLI and
// the HTTP server: expiry selection, range filtering, gamma analysis, futures
// conversion and alert evaluation.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/alert"
	"github.com/dgnsrekt/gexbot-levels/internal/chain"
	"github.com/dgnsrekt/gexbot-levels/internal/config"
	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
	"github.com/dgnsrekt/gexbot-levels/internal/report"
	"github.com/dgnsrekt/gexbot-levels/internal/session"
	"github.com/dgnsrekt/gexbot-levels/internal/spread"
)

// ExpiryAll disables expiry selection.
const ExpiryAll = "all"

type Request struct {
	Records        []chain.Record
	ReferencePrice float64

	// Expiry selects one expiration (YYYY-MM-DD). Empty picks the nearest
	// expiration on or after the current session; ExpiryAll keeps every row.
	Expiry string

	FuturesPrice *float64 // derives the spread when Spread is nil
	Spread       *float64
	WatchPrice   *float64 // futures price checked against converted levels
	Observation  alert.Observation
	SkipFilter   bool
	Now          time.Time
}

type Service struct {
	cfg      *config.Config
	engine   *gamma.Engine
	calendar *session.Calendar
	logger   *zap.Logger
}

func NewService(cfg *config.Config, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	engine, err := gamma.NewEngine(cfg.EngineParams(), logger.Named("engine"))
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	cal, err := session.New(cfg.Session.Timezone)
	if err != nil {
		return nil, fmt.Errorf("creating session calendar: %w", err)
	}

	return &Service{cfg: cfg, engine: engine, calendar: cal, logger: logger}, nil
}

func (s *Service) Config() *config.Config {
	return s.cfg
}

// Run analyzes one chain snapshot and returns the assembled report.
func (s *Service) Run(ctx context.Context, req Request) (*report.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateOptional("futures_price", req.FuturesPrice, true); err != nil {
		return nil, err
	}
	if err := validateOptional("spread", req.Spread, false); err != nil {
		return nil, err
	}
	if err := validateOptional("watch_price", req.WatchPrice, true); err != nil {
		return nil, err
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	expiry := s.resolveExpiry(req.Records, req.Expiry, now)
	records := chain.SelectExpiry(req.Records, expiry)

	if s.cfg.Filter.Enabled && !req.SkipFilter {
		before := len(records)
		records = chain.FilterRange(records, req.ReferencePrice, s.cfg.Filter.StrikeRangePct, s.cfg.Filter.MinVolume)
		s.logger.Info("filtered chain",
			zap.Int("before", before),
			zap.Int("after", len(records)),
			zap.Float64("rangePct", s.cfg.Filter.StrikeRangePct),
			zap.Int64("minVolume", s.cfg.Filter.MinVolume),
		)
	}

	result, err := s.engine.Analyze(chain.Rows(records), req.ReferencePrice)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	converter := spread.NewConverter(s.logger.Named("spread"))
	switch {
	case req.Spread != nil:
		if err := converter.Set(*req.Spread); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	case req.FuturesPrice != nil:
		if _, err := converter.Calculate(req.ReferencePrice, *req.FuturesPrice); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	converted := converter.ConvertLevels(result.Levels)

	var events []alert.Event
	if req.WatchPrice != nil && len(converted) > 0 {
		watcher := alert.NewWatcher(s.cfg.Alerts.DistanceThreshold, s.cfg.Alerts.VolumeThreshold, s.logger.Named("alert"))
		watcher.Setup(converted)
		events = watcher.Evaluate(*req.WatchPrice, req.Observation)
	}

	rep := report.Build(result, converted, events)
	if expiry != "" {
		rep.Date = expiry
	} else {
		rep.Date = s.calendar.SessionDate(now)
	}
	rep.FuturesPrice = req.FuturesPrice
	if sp, ok := converter.Spread(); ok {
		rep.Spread = &sp
	}

	s.logger.Info("analysis complete",
		zap.String("date", rep.Date),
		zap.Int("contracts", len(records)),
		zap.Int("strikes", len(result.Strikes)),
		zap.String("regime", string(result.Regime)),
		zap.Int("alerts", len(events)),
	)

	return rep, nil
}

// resolveExpiry returns the expiration to select, or "" for no selection.
func (s *Service) resolveExpiry(records []chain.Record, requested string, now time.Time) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case ExpiryAll:
		return ""
	case "":
		sessionDate := s.calendar.SessionDate(now)
		expiry := chain.NearestExpiry(records, sessionDate)
		if expiry != "" && expiry != sessionDate {
			s.logger.Info("no expiry on session date, using nearest",
				zap.String("session", sessionDate),
				zap.String("expiry", expiry),
			)
		}
		return expiry
	default:
		return strings.TrimSpace(requested)
	}
}

func validateOptional(name string, v *float64, positive bool) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidRequest, name, *v)
	}
	if positive && *v <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidRequest, name, *v)
	}
	return nil
}

package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/analysis"
	"github.com/dgnsrekt/gexbot-levels/internal/config"
)

var ErrReloadInProgress = errors.New("reload already in progress")

// ReloadManager owns the active analysis service and swaps it atomically when
// the configuration file is reloaded. In-flight requests keep the service
// they started with.
type ReloadManager struct {
	service    atomic.Pointer[analysis.Service]
	configPath string
	logger     *zap.Logger

	reloadMu sync.Mutex // prevents concurrent reloads
	loadedAt atomic.Int64
}

// NewReloadManager loads the configuration at configPath and builds the
// initial service.
func NewReloadManager(configPath string, logger *zap.Logger) (*ReloadManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rm := &ReloadManager{configPath: configPath, logger: logger}

	svc, err := rm.build()
	if err != nil {
		return nil, err
	}
	rm.service.Store(svc)
	rm.loadedAt.Store(time.Now().UnixNano())
	return rm, nil
}

func (rm *ReloadManager) Service() *analysis.Service {
	return rm.service.Load()
}

func (rm *ReloadManager) LoadedAt() time.Time {
	return time.Unix(0, rm.loadedAt.Load()).UTC()
}

// ReloadResult contains the result of a successful reload operation.
type ReloadResult struct {
	ConfigPath string              `json:"config_path"`
	LoadedAt   time.Time           `json:"loaded_at"`
	Engine     config.EngineConfig `json:"engine"`
	Filter     config.FilterConfig `json:"filter"`
}

// Reload re-reads the configuration and swaps in a new service. On error the
// current service stays active.
func (rm *ReloadManager) Reload(ctx context.Context) (*ReloadResult, error) {
	if !rm.reloadMu.TryLock() {
		return nil, ErrReloadInProgress
	}
	defer rm.reloadMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rm.logger.Info("starting config reload", zap.String("path", rm.configPath))

	svc, err := rm.build()
	if err != nil {
		rm.logger.Warn("config reload failed, keeping current config", zap.Error(err))
		return nil, err
	}

	rm.service.Store(svc)
	now := time.Now()
	rm.loadedAt.Store(now.UnixNano())

	cfg := svc.Config()
	rm.logger.Info("config reload complete",
		zap.Float64("multiplier", cfg.Engine.ContractMultiplier),
		zap.Float64("flipWindowPct", cfg.Engine.GammaFlipWindowPct),
		zap.Int("topK", cfg.Engine.TopK),
	)

	return &ReloadResult{
		ConfigPath: rm.configPath,
		LoadedAt:   now.UTC(),
		Engine:     cfg.Engine,
		Filter:     cfg.Filter,
	}, nil
}

func (rm *ReloadManager) build() (*analysis.Service, error) {
	cfg, err := config.Load(rm.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	svc, err := analysis.NewService(cfg, rm.logger)
	if err != nil {
		return nil, fmt.Errorf("building analysis service: %w", err)
	}
	return svc, nil
}

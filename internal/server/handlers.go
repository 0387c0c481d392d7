package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgnsrekt/gexbot-levels/internal/alert"
	"github.com/dgnsrekt/gexbot-levels/internal/analysis"
	"github.com/dgnsrekt/gexbot-levels/internal/chain"
	"github.com/dgnsrekt/gexbot-levels/internal/config"
	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
	"github.com/dgnsrekt/gexbot-levels/internal/metrics"
	"github.com/dgnsrekt/gexbot-levels/internal/spread"
)

type Server struct {
	reload  *ReloadManager
	metrics *metrics.Registry
	config  *config.ServerConfig
	logger  *zap.Logger
}

func NewServer(reload *ReloadManager, reg *metrics.Registry, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		reload:  reload,
		metrics: reg,
		config:  cfg,
		logger:  logger,
	}
}

// levelsRequest is the POST /v1/levels body.
type levelsRequest struct {
	ReferencePrice *float64          `json:"reference_price"`
	Contracts      []json.RawMessage `json:"contracts"`
	Expiry         string            `json:"expiry,omitempty"`
	FuturesPrice   *float64          `json:"futures_price,omitempty"`
	Spread         *float64          `json:"spread,omitempty"`
	WatchPrice     *float64          `json:"watch_price,omitempty"`
	Volume         *float64          `json:"volume,omitempty"`
	Velocity       *float64          `json:"velocity,omitempty"`
	Filter         *bool             `json:"filter,omitempty"`
}

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"loadedAt": s.reload.LoadedAt(),
	})
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var body levelsRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.ObserveAnalysisError("body_too_large")
			writeError(w, http.StatusRequestEntityTooLarge, "request body exceeds limit")
			return
		}
		s.metrics.ObserveAnalysisError("bad_json")
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if body.ReferencePrice == nil {
		s.metrics.ObserveAnalysisError("invalid_price")
		writeError(w, http.StatusBadRequest, "reference_price is required")
		return
	}

	records, err := chain.DecodeRecords(body.Contracts)
	if err != nil {
		s.metrics.ObserveAnalysisError("bad_contract")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := analysis.Request{
		Records:        records,
		ReferencePrice: *body.ReferencePrice,
		Expiry:         body.Expiry,
		FuturesPrice:   body.FuturesPrice,
		Spread:         body.Spread,
		WatchPrice:     body.WatchPrice,
		Observation:    alert.Observation{Volume: body.Volume, Velocity: body.Velocity},
		SkipFilter:     body.Filter != nil && !*body.Filter,
	}

	analysisID := uuid.New().String()
	rep, err := s.reload.Service().Run(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, gamma.ErrInvalidReferencePrice):
			s.metrics.ObserveAnalysisError("invalid_price")
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, analysis.ErrInvalidRequest), errors.Is(err, spread.ErrInvalidPrice):
			s.metrics.ObserveAnalysisError("invalid_request")
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.metrics.ObserveAnalysisError("internal")
			s.logger.Error("analysis failed", zap.String("analysisID", analysisID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "analysis failed")
		}
		return
	}

	rep.AnalysisID = analysisID
	for _, ev := range rep.Alerts {
		s.metrics.ObserveAlert(ev.Name)
	}
	s.metrics.ObserveAnalysis(rep.Regime, len(rep.Profile))

	s.logger.Debug("levels computed",
		zap.String("analysisID", analysisID),
		zap.Int("contracts", len(records)),
		zap.String("regime", string(rep.Regime)),
	)

	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.reload.Service().Config())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	result, err := s.reload.Reload(r.Context())
	if err != nil {
		if errors.Is(err, ErrReloadInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeJSON encodes v before writing the header so an unencodable value
// becomes a 500 instead of an empty success.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "encoding response: " + err.Error()})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

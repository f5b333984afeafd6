// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/pcbvalues/internal/domain/model"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ScoreService reads and writes gallery records.
type ScoreService interface {
	Find(ctx context.Context, name string) (model.Score, error)
	List(ctx context.Context) ([]model.Score, error)

	// Submit validates and stores p. It reports duplicate=true for an
	// identical replay and returns *model.NameTakenError when the name is
	// taken and override is false.
	Submit(ctx context.Context, p model.Submission, override bool) (duplicate bool, err error)

	EditFlags(ctx context.Context, name string, flags int64) error
}

// MatchService ranks the gallery against a score vector.
type MatchService interface {
	AxisCount() int
	Match(ctx context.Context, target []float64) ([]model.Match, error)
}

// ImportService queues exported payloads for asynchronous application.
type ImportService interface {
	// EnqueueImport validates p and queues it under batch.
	EnqueueImport(ctx context.Context, batch string, p model.Submission) error
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ScoreService
	MatchService
	ImportService
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	scoresHandler *ScoresHandler
	flagsHandler  *FlagsHandler
	matchHandler  *MatchHandler
	importHandler *ImportHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := options{matchLimit: defaultMatchLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
		scoresHandler: NewScoresHandler(deps),
		flagsHandler:  NewFlagsHandler(deps),
		matchHandler:  NewMatchHandler(deps, cfg.matchLimit),
		importHandler: NewImportHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/scores", MetricsMiddleware(s.scoresHandler.HandleScores, "scores"))
	mux.HandleFunc("/api/scores/", MetricsMiddleware(s.scoresHandler.HandleFind, "scores_find"))
	mux.HandleFunc("/api/flags", MetricsMiddleware(s.flagsHandler.HandleEditFlags, "flags"))
	mux.HandleFunc("/api/match", MetricsMiddleware(s.matchHandler.HandleMatch, "match"))
	mux.HandleFunc("/api/import", MetricsMiddleware(s.importHandler.HandleImport, "import"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type successResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

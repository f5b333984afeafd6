package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/pcbvalues/internal/adapters/repository"
	"github.com/okian/pcbvalues/internal/domain/model"
	"github.com/okian/pcbvalues/pkg/metrics"
)

// ScoresHandler serves the score store endpoints.
type ScoresHandler struct {
	deps ScoreService
}

// NewScoresHandler creates a new scores handler.
func NewScoresHandler(deps ScoreService) *ScoresHandler {
	return &ScoresHandler{deps: deps}
}

// HandleScores handles GET /api/scores (list) and POST /api/scores (submit).
func (h *ScoresHandler) HandleScores(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ScoresHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_scores"
	scores, err := h.deps.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if scores == nil {
		scores = []model.Score{}
	}
	writeJSON(w, http.StatusOK, scores)
}

// HandleFind handles GET /api/scores/{name}.
func (h *ScoresHandler) HandleFind(w http.ResponseWriter, r *http.Request) {
	const op = "api.find_score"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/api/scores/")
	name, err := url.PathUnescape(raw)
	if err != nil || strings.TrimSpace(name) == "" || strings.Contains(raw, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	score, err := h.deps.Find(r.Context(), name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, score)
	}
}

func (h *ScoresHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	override := parseOverride(r.URL.Query())

	var p model.Submission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&p); err != nil {
		metrics.RecordSubmission(metrics.SubmissionRejected)
		writeJSON(w, http.StatusBadRequest, model.SubmitResponse{Error: "invalid JSON payload"})
		return
	}

	duplicate, err := h.deps.Submit(r.Context(), p, override)
	writeSubmitResult(w, duplicate, err)
}

func writeSubmitResult(w http.ResponseWriter, duplicate bool, err error) {
	var taken *model.NameTakenError
	switch {
	case errors.As(err, &taken):
		existing := taken.Existing
		writeJSON(w, http.StatusConflict, model.SubmitResponse{
			Action:   model.ActionConfirm,
			Error:    taken.Error(),
			Existing: &existing,
		})
	case errors.Is(err, model.ErrInvalidSubmission):
		writeJSON(w, http.StatusBadRequest, model.SubmitResponse{Error: err.Error()})
	case err != nil:
		writeJSON(w, http.StatusInternalServerError, model.SubmitResponse{Error: "failed to store score"})
	default:
		writeJSON(w, http.StatusOK, model.SubmitResponse{Success: true, Duplicate: duplicate})
	}
}

// parseOverride reads the override flag: missing or "false" in any case is
// false, anything else is true.
func parseOverride(q url.Values) bool {
	vals, ok := q["override"]
	if !ok || len(vals) == 0 {
		return false
	}
	return !strings.EqualFold(vals[0], "false")
}

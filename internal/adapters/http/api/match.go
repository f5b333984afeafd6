package api

import (
	"net/http"
	"strconv"

	"github.com/okian/pcbvalues/internal/domain/codec"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// MatchHandler ranks the gallery against a score.
type MatchHandler struct {
	deps  MatchService
	limit int
}

// NewMatchHandler creates a new match handler returning at most limit
// entries unless the request asks otherwise.
func NewMatchHandler(deps MatchService, limit int) *MatchHandler {
	return &MatchHandler{deps: deps, limit: limit}
}

// HandleMatch handles GET /api/match?score=..&limit=N. A limit of 0
// returns the full ordering.
func (h *MatchHandler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.match"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	target, err := codec.Decode(q.Get("score"), h.deps.AxisCount())
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	limit := h.limit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	ranked, err := h.deps.Match(r.Context(), target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []model.Match{}
	}
	writeJSON(w, http.StatusOK, ranked)
}

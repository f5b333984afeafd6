package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pcbvalues/internal/adapters/repository"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// FlagsHandler edits record flags.
type FlagsHandler struct {
	deps ScoreService
}

// NewFlagsHandler creates a new flags handler.
func NewFlagsHandler(deps ScoreService) *FlagsHandler {
	return &FlagsHandler{deps: deps}
}

type editFlagsRequest struct {
	Name  string `json:"name"`
	Flags *int64 `json:"flags"`
}

// HandleEditFlags handles POST /api/flags.
func (h *FlagsHandler) HandleEditFlags(w http.ResponseWriter, r *http.Request) {
	const op = "api.edit_flags"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req editFlagsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Flags == nil {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	err := h.deps.EditFlags(r.Context(), req.Name, *req.Flags)
	switch {
	case errors.Is(err, model.ErrInvalidFlags), errors.Is(err, repository.ErrInvalidFlags),
		errors.Is(err, repository.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	default:
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

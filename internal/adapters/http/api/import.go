package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/pcbvalues/internal/adapters/mq/queue"
	"github.com/okian/pcbvalues/internal/domain/model"
)

// ImportHandler accepts exported score payloads for background application.
type ImportHandler struct {
	deps ImportService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(deps ImportService) *ImportHandler {
	return &ImportHandler{deps: deps}
}

type importResponse struct {
	Batch    string         `json:"batch"`
	Accepted int            `json:"accepted"`
	Rejected []importReject `json:"rejected"`
}

type importReject struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// HandleImport handles POST /api/import. The body is a single payload or an
// array of payloads as written by the client export.
func (h *ImportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	payloads, err := decodePayloads(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	resp := importResponse{Batch: uuid.NewString(), Rejected: []importReject{}}
	for i, p := range payloads {
		err := h.deps.EnqueueImport(r.Context(), resp.Batch, p)
		switch {
		case errors.Is(err, queue.ErrFull), errors.Is(err, queue.ErrClosed):
			writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
			return
		case err != nil:
			resp.Rejected = append(resp.Rejected, importReject{Index: i, Name: p.Name, Error: err.Error()})
		default:
			resp.Accepted++
		}
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func decodePayloads(body []byte) ([]model.Submission, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var many []model.Submission
		if err := json.Unmarshal(trimmed, &many); err != nil {
			return nil, err
		}
		return many, nil
	}
	var one model.Submission
	if err := json.Unmarshal(trimmed, &one); err != nil {
		return nil, err
	}
	return []model.Submission{one}, nil
}

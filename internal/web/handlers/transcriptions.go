package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/jusunglee/hangulize/internal/db"
	"github.com/jusunglee/hangulize/internal/transcription"
)

const maxBatchSize = 100

type TranscriptionHandler struct {
	svc *transcription.Service
	log *slog.Logger
}

func NewTranscriptionHandler(svc *transcription.Service, log *slog.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{svc: svc, log: log}
}

type historyResponse struct {
	ID         int64  `json:"id"`
	Language   string `json:"language"`
	Input      string `json:"input"`
	Output     string `json:"output"`
	Phonemes   string `json:"phonemes"`
	Hits       int64  `json:"hits"`
	CreatedAt  string `json:"created_at"`
	LastUsedAt string `json:"last_used_at"`
}

type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type listResponse struct {
	Data       []historyResponse `json:"data"`
	Pagination paginationMeta    `json:"pagination"`
}

func toHistoryResponse(t db.Transcription, _ int) historyResponse {
	return historyResponse{
		ID:         t.ID,
		Language:   t.Language,
		Input:      t.Input,
		Output:     t.Output,
		Phonemes:   t.Phonemes,
		Hits:       t.Hits,
		CreatedAt:  t.CreatedAt.Format(time.RFC3339),
		LastUsedAt: t.LastUsedAt.Format(time.RFC3339),
	}
}

func (h *TranscriptionHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if status, ok := clientError(err); ok {
		writeError(w, status, err.Error())
		return
	}
	h.log.ErrorContext(r.Context(), op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *TranscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transcription.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	out, err := h.svc.Transcribe(r.Context(), req)
	if err != nil {
		h.fail(w, r, "transcribing", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type batchRequest struct {
	Language string   `json:"language"`
	Texts    []string `json:"texts"`
}

func (h *TranscriptionHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Language == "" || len(req.Texts) == 0 {
		writeError(w, http.StatusBadRequest, "language and texts are required")
		return
	}
	if len(req.Texts) > maxBatchSize {
		writeError(w, http.StatusBadRequest, "too many texts (max "+strconv.Itoa(maxBatchSize)+")")
		return
	}

	out, err := h.svc.TranscribeBatch(r.Context(), req.Language, req.Texts)
	if err != nil {
		h.fail(w, r, "transcribing batch", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *TranscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 25
	}
	offset := (page - 1) * limit

	items, total, err := h.svc.History(r.Context(), q.Get("language"), int32(limit), int32(offset))
	if err != nil {
		h.fail(w, r, "listing transcriptions", err)
		return
	}

	writeJSON(w, http.StatusOK, listResponse{
		Data: lo.Map(items, toHistoryResponse),
		Pagination: paginationMeta{
			Page:  page,
			Limit: limit,
			Total: total,
		},
	})
}

// Prune deletes history last used before the RFC 3339 "before" parameter.
func (h *TranscriptionHandler) Prune(w http.ResponseWriter, r *http.Request) {
	before, err := time.Parse(time.RFC3339, r.URL.Query().Get("before"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "before must be an RFC 3339 timestamp")
		return
	}

	n, err := h.svc.Prune(r.Context(), before)
	if err != nil {
		h.fail(w, r, "pruning transcriptions", err)
		return
	}
	h.log.InfoContext(r.Context(), "pruned transcriptions", "before", before, "deleted", n)
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}

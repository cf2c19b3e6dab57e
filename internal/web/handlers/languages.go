package handlers

import (
	"net/http"

	"github.com/jusunglee/hangulize/internal/transcription"
)

type LanguageHandler struct {
	svc *transcription.Service
}

func NewLanguageHandler(svc *transcription.Service) *LanguageHandler {
	return &LanguageHandler{svc: svc}
}

func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"data": h.svc.Languages()})
}

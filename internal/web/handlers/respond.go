package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jusunglee/hangulize/internal/language"
	"github.com/jusunglee/hangulize/internal/transcription"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// clientError reports whether err was caused by the request rather than
// the server, and the status to answer with.
func clientError(err error) (int, bool) {
	switch {
	case errors.Is(err, language.ErrUnknownLanguage):
		return http.StatusNotFound, true
	case errors.Is(err, transcription.ErrEmptyText), errors.Is(err, transcription.ErrTextTooLong):
		return http.StatusBadRequest, true
	case errors.Is(err, transcription.ErrNoHistory):
		return http.StatusNotImplemented, true
	}
	return 0, false
}

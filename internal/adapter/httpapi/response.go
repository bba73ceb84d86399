package httpapi

import (
	"OllamaChat/internal/ai"
	"errors"
	"net/http"
)

// Сообщения для клиента. Детали ошибки остаются только в логе.
const (
	msgMissingPrompt      = "message is required"
	msgMalformedBody      = "invalid request body"
	msgBackendUnavailable = "generation backend unavailable"
	msgGenerationFailed   = "failed to generate response"
	msgMethodNotAllowed   = "method not allowed; use POST"
)

type successResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// WriteResult отдаёт 200 {"response": text}.
func WriteResult(w http.ResponseWriter, text string) {
	writeJSON(w, http.StatusOK, successResponse{Response: text})
}

// WriteError отдаёт {"error": msg} со статусом по классу ошибки.
func WriteError(w http.ResponseWriter, err error) {
	status, msg := StatusFor(err)
	writeJSON(w, status, errorResponse{Error: msg})
}

// StatusFor: ошибки клиента → 400, всё остальное (включая ошибки бэкенда) → 500.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingPrompt):
		return http.StatusBadRequest, msgMissingPrompt
	case errors.Is(err, ErrMalformedBody):
		return http.StatusBadRequest, msgMalformedBody
	case errors.Is(err, ai.ErrBackendUnavailable):
		return http.StatusInternalServerError, msgBackendUnavailable
	default:
		return http.StatusInternalServerError, msgGenerationFailed
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, msgGenerationFailed, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

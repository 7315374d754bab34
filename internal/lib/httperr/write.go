package httperr

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse — тело любой ошибки API
type ErrorResponse struct {
	Error      string `json:"error"`
	Service    string `json:"service,omitempty"`
	Dependency string `json:"dependency,omitempty"`
	Details    string `json:"details,omitempty"`
}

// WriteJSON пишет произвольный JSON-ответ с указанным статусом
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Write переводит ошибку в JSON-ответ. Классифицированные ошибки получают
// свой статус и сообщение, всё остальное — 500 без внутренних деталей.
func Write(w http.ResponseWriter, log *slog.Logger, err error) {
	if e, ok := From(err); ok {
		WriteJSON(w, e.Kind.Status(), ErrorResponse{
			Error:      e.Message,
			Service:    e.Service,
			Dependency: e.Dependency,
			Details:    e.Details,
		})
		return
	}

	log.Error("unhandled error", slog.Any("error", err))
	WriteJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

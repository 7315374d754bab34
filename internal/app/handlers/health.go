package handlers

import (
	"net/http"

	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// HealthHandler обрабатывает GET /health
func HealthHandler(serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httperr.WriteJSON(w, http.StatusOK, map[string]string{
			"service": serviceName,
			"status":  "ok",
		})
	}
}

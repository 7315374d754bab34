package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// GetRandomFortuneHandler обрабатывает GET /api/fortunes/random
func GetRandomFortuneHandler(log *slog.Logger, fortuneService service.FortuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetRandomFortuneHandler"
		logger := log.With(slog.String("op", op))

		fortune, err := fortuneService.GetRandomFortune(r.Context())
		if err != nil {
			logger.Error("failed to get fortune", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, fortune)
	}
}

// GetAllFortunesHandler обрабатывает GET /api/fortunes
func GetAllFortunesHandler(log *slog.Logger, fortuneService service.FortuneService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetAllFortunesHandler"
		logger := log.With(slog.String("op", op))

		fortunes, err := fortuneService.GetAllFortunes(r.Context())
		if err != nil {
			logger.Error("failed to list fortunes", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, fortunes)
	}
}

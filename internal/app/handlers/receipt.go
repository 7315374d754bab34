package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/auth/securitymw"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// GetReceiptHandler обрабатывает GET /api/receipts/{orderId}.
// Проверка владения выполняется внутри сервиса: владельца можно
// узнать только после загрузки заказа.
func GetReceiptHandler(log *slog.Logger, receiptService service.ReceiptService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetReceiptHandler"
		logger := log.With(slog.String("op", op))

		authCtx, ok := securitymw.FromContext(r.Context())
		if !ok {
			httperr.Write(w, logger, httperr.Unauthorized("not logged in"))
			return
		}

		orderID := chi.URLParam(r, "orderId")
		receipt, err := receiptService.GetReceipt(r.Context(), orderID, authCtx, securitymw.TokenFromContext(r.Context()))
		if err != nil {
			logger.Error("failed to build receipt", slog.String("orderID", orderID), slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, receipt)
	}
}

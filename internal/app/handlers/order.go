package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/auth/securitymw"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// AddOrderHandler обрабатывает POST /api/orders.
// Покупателем всегда становится аутентифицированный субъект,
// userId из тела запроса игнорируется.
func AddOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddOrderHandler"
		logger := log.With(slog.String("op", op))

		authCtx, ok := securitymw.FromContext(r.Context())
		if !ok {
			httperr.Write(w, logger, httperr.Unauthorized("not logged in"))
			return
		}

		var input service.CreateOrderInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}
		input.UserID = authCtx.UserID

		order, err := orderService.PlaceOrder(r.Context(), &input, securitymw.TokenFromContext(r.Context()))
		if err != nil {
			logger.Error("failed to place order", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}

		httperr.WriteJSON(w, http.StatusCreated, order)
	}
}

// GetAllOrdersHandler обрабатывает GET /api/orders (только админ)
func GetAllOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetAllOrdersHandler"
		logger := log.With(slog.String("op", op))

		orders, err := orderService.GetAllOrders(r.Context())
		if err != nil {
			logger.Error("failed to list orders", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, orders)
	}
}

// GetMyOrdersHandler обрабатывает GET /api/orders/me
func GetMyOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetMyOrdersHandler"
		logger := log.With(slog.String("op", op))

		authCtx, ok := securitymw.FromContext(r.Context())
		if !ok {
			httperr.Write(w, logger, httperr.Unauthorized("not logged in"))
			return
		}

		orders, err := orderService.GetOrdersByUser(r.Context(), authCtx.UserID)
		if err != nil {
			logger.Error("failed to list user orders", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, orders)
	}
}

// GetOrderByIDHandler обрабатывает GET /api/orders/{id}
func GetOrderByIDHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderByIDHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			httperr.Write(w, logger, httperr.BadRequest("missing order id"))
			return
		}

		order, err := orderService.GetOrderByID(r.Context(), id)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, order)
	}
}

// UpdateOrderHandler обрабатывает PUT /api/orders/{id} (только админ)
func UpdateOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			httperr.Write(w, logger, httperr.BadRequest("missing order id"))
			return
		}

		var patch service.OrderPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		order, err := orderService.UpdateOrder(r.Context(), id, &patch)
		if err != nil {
			logger.Error("failed to update order", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, order)
	}
}

// DeleteOrderHandler обрабатывает DELETE /api/orders/{id}
func DeleteOrderHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteOrderHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if id == "" {
			httperr.Write(w, logger, httperr.BadRequest("missing order id"))
			return
		}

		if err := orderService.DeleteOrder(r.Context(), id); err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, map[string]string{"info": "deleted successfully"})
	}
}

// DeleteAllOrdersHandler обрабатывает DELETE /api/orders (только админ)
func DeleteAllOrdersHandler(log *slog.Logger, orderService service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteAllOrdersHandler"
		logger := log.With(slog.String("op", op))

		deleted, err := orderService.DeleteAllOrders(r.Context())
		if err != nil {
			logger.Error("failed to delete orders", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
	}
}

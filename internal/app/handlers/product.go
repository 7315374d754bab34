package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// GetAllProductsHandler обрабатывает GET /api/products
func GetAllProductsHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetAllProductsHandler"
		logger := log.With(slog.String("op", op))

		products, err := productService.GetAllProducts(r.Context())
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, products)
	}
}

// GetProductByIDHandler обрабатывает GET /api/products/{id}
func GetProductByIDHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductByIDHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		product, err := productService.GetProductByID(r.Context(), id)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, product)
	}
}

// AddProductHandler обрабатывает POST /api/products (только админ)
func AddProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddProductHandler"
		logger := log.With(slog.String("op", op))

		var input service.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		product, err := productService.AddProduct(r.Context(), &input)
		if err != nil {
			logger.Error("failed to add product", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, product)
	}
}

// UpdateProductHandler обрабатывает PUT /api/products/{id} (только админ)
func UpdateProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		var input service.ProductInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		product, err := productService.UpdateProduct(r.Context(), id, &input)
		if err != nil {
			logger.Error("failed to update product", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, product)
	}
}

// AdjustStockHandler обрабатывает PATCH /api/products/{id}/stock.
// Нехватка остатков и отсутствующий товар дают одинаковый 400,
// вызывающая сторона не должна их различать.
func AdjustStockHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	type request struct {
		Delta int `json:"delta"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AdjustStockHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		product, err := productService.AdjustStock(r.Context(), id, req.Delta)
		if err != nil {
			logger.Warn("stock adjustment rejected", slog.String("id", id), slog.Int("delta", req.Delta), slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, product)
	}
}

// ToggleActiveHandler обрабатывает PATCH /api/products/{id}/active (только админ)
func ToggleActiveHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ToggleActiveHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		product, err := productService.ToggleActive(r.Context(), id)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает DELETE /api/products/{id} (только админ)
func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if err := productService.DeleteProduct(r.Context(), id); err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, map[string]string{"info": "deleted successfully"})
	}
}

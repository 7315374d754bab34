package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// ProductClient — узкий клиент каталога товаров
type ProductClient struct {
	log     *slog.Logger
	baseURL string
	from    string
	client  *http.Client
}

func NewProductClient(log *slog.Logger, baseURL, callingService string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		log:     log,
		baseURL: baseURL,
		from:    callingService,
		client:  newHTTPClient(timeout),
	}
}

// GetByID возвращает товар по id
func (c *ProductClient) GetByID(ctx context.Context, id, token string) (*models.Product, error) {
	const op = "clients.ProductClient.GetByID"

	if err := validateID(id, "product id"); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/products/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	withBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("product service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceProduct, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, fmt.Sprintf("product with id %s not found", id))
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &product, nil
}

// GetByIDs загружает товары последовательно, дубликаты id схлопываются
func (c *ProductClient) GetByIDs(ctx context.Context, ids []string, token string) ([]*models.Product, error) {
	seen := make(map[string]struct{}, len(ids))
	products := make([]*models.Product, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		product, err := c.GetByID(ctx, id, token)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// AdjustStock атомарно меняет остаток товара на delta (отрицательная —
// резервирование, положительная — возврат). Хранилище отклоняет изменение,
// которое увело бы остаток ниже нуля, — в этом случае придёт 400, и по
// ответу нельзя отличить «не найден» от «не хватает остатка».
func (c *ProductClient) AdjustStock(ctx context.Context, id string, delta int, token string) (*models.Product, error) {
	const op = "clients.ProductClient.AdjustStock"

	if err := validateID(id, "product id"); err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]int{"delta": delta})
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal body: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch,
		c.baseURL+"/products/"+id+"/stock", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	withBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("product service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceProduct, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, fmt.Sprintf("product with id %s not found", id))
	}

	var product models.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &product, nil
}

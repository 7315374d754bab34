package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// OrderClient используется receipt-сервисом для чтения заказов
type OrderClient struct {
	log     *slog.Logger
	baseURL string
	from    string
	client  *http.Client
}

func NewOrderClient(log *slog.Logger, baseURL, callingService string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		log:     log,
		baseURL: baseURL,
		from:    callingService,
		client:  newHTTPClient(timeout),
	}
}

// GetByID возвращает заказ по id
func (c *OrderClient) GetByID(ctx context.Context, id, token string) (*models.Order, error) {
	const op = "clients.OrderClient.GetByID"

	if err := validateID(id, "order id"); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/orders/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	withBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("order service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceOrder, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, fmt.Sprintf("order with id %s not found", id))
	}

	var order models.Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &order, nil
}

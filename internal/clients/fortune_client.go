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

// FortuneClient достаёт предсказание для чека
type FortuneClient struct {
	log     *slog.Logger
	baseURL string
	from    string
	client  *http.Client
}

func NewFortuneClient(log *slog.Logger, baseURL, callingService string, timeout time.Duration) *FortuneClient {
	return &FortuneClient{
		log:     log,
		baseURL: baseURL,
		from:    callingService,
		client:  newHTTPClient(timeout),
	}
}

// Random возвращает случайное предсказание
func (c *FortuneClient) Random(ctx context.Context) (*models.Fortune, error) {
	const op = "clients.FortuneClient.Random"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/fortunes/random", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("fortune service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceFortune, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, "no fortunes available")
	}

	var fortune models.Fortune
	if err := json.NewDecoder(resp.Body).Decode(&fortune); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &fortune, nil
}

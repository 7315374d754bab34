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

// AuthClient проверяет bearer-токены через удалённый auth-сервис.
// Вызывается на каждом защищённом запросе, результат нигде не кэшируется.
type AuthClient struct {
	log     *slog.Logger
	baseURL string
	from    string // имя вызывающего сервиса, попадает в метаданные ошибок
	client  *http.Client
}

func NewAuthClient(log *slog.Logger, baseURL, callingService string, timeout time.Duration) *AuthClient {
	return &AuthClient{
		log:     log,
		baseURL: baseURL,
		from:    callingService,
		client:  newHTTPClient(timeout),
	}
}

// Verify подтверждает токен у auth-сервиса и возвращает AuthContext.
// Пустой токен отклоняется локально, без сетевого вызова.
func (c *AuthClient) Verify(ctx context.Context, token string) (*models.AuthContext, error) {
	const op = "clients.AuthClient.Verify"

	if token == "" {
		return nil, httperr.Unauthorized("missing token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	withBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("auth service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceAuth, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var auth models.AuthContext
		if err := json.NewDecoder(resp.Body).Decode(&auth); err != nil {
			return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
		}
		return &auth, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, httperr.Unauthorized(readError(resp))
	case resp.StatusCode == http.StatusForbidden:
		return nil, httperr.Forbidden(readError(resp))
	default:
		// любой другой не-2xx — проблема на стороне авторитета
		return nil, httperr.Unavailable(c.from, ServiceAuth, fmt.Errorf("%s", readError(resp)))
	}
}

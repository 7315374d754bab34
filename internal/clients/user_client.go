package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// UserClient — узкий клиент user-сервиса
type UserClient struct {
	log     *slog.Logger
	baseURL string
	from    string
	client  *http.Client
}

func NewUserClient(log *slog.Logger, baseURL, callingService string, timeout time.Duration) *UserClient {
	return &UserClient{
		log:     log,
		baseURL: baseURL,
		from:    callingService,
		client:  newHTTPClient(timeout),
	}
}

// GetByID возвращает пользователя по id, токен пробрасывается дальше
func (c *UserClient) GetByID(ctx context.Context, id, token string) (*models.User, error) {
	const op = "clients.UserClient.GetByID"

	if err := validateID(id, "user id"); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/users/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	withBearer(req, token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("user service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, fmt.Sprintf("user with id %s not found", id))
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &user, nil
}

// GetByEmail используется auth-сервисом при регистрации и логине
func (c *UserClient) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "clients.UserClient.GetByEmail"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/users/by-email/"+url.PathEscape(email), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("user service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, fmt.Sprintf("user with email %s not found", email))
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &user, nil
}

// Create создаёт пользователя, вызывается auth-сервисом при регистрации
func (c *UserClient) Create(ctx context.Context, user *models.User) (*models.User, error) {
	const op = "clients.UserClient.Create"

	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal user: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("user service call failed", slog.String("op", op), slog.Any("error", err))
		return nil, httperr.Unavailable(c.from, ServiceUser, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, translateStatus(resp, "")
	}

	var created models.User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("%s: failed to decode response: %w", op, err)
	}
	return &created, nil
}

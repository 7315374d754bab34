package clients

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// Имена сервисов, используются в метаданных ошибок недоступности
const (
	ServiceAuth    = "auth-service"
	ServiceUser    = "user-service"
	ServiceProduct = "product-service"
	ServiceOrder   = "order-service"
	ServiceReceipt = "receipt-service"
	ServiceFortune = "fortune-service"
)

// DefaultTimeout — таймаут удалённого вызова, если не задан в конфиге
const DefaultTimeout = 5 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// validateID проверяет формат идентификатора локально,
// до сетевого вызова — невалидный id не стоит round-trip'а
func validateID(id, field string) error {
	if _, err := uuid.Parse(id); err != nil {
		return httperr.BadRequestf("invalid %s: %s", field, id)
	}
	return nil
}

// readError достаёт сообщение из тела {error: ...}, иначе статус-текст
func readError(resp *http.Response) string {
	var body httperr.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		return body.Error
	}
	return resp.Status
}

// translateStatus — общее правило перевода не-2xx ответов удалённых хранилищ:
// 404 превращается в NotFound (сообщение можно подменить), 401 и 403 сохраняют
// свой статус — отказ в доступе должен дойти до клиента как отказ в доступе,
// всё остальное — BadRequest с текстом ошибки апстрима
func translateStatus(resp *http.Response, notFoundMsg string) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		if notFoundMsg == "" {
			notFoundMsg = readError(resp)
		}
		return httperr.NotFound(notFoundMsg)
	case http.StatusUnauthorized:
		return httperr.Unauthorized(readError(resp))
	case http.StatusForbidden:
		return httperr.Forbidden(readError(resp))
	}
	return httperr.BadRequest(readError(resp))
}

func withBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

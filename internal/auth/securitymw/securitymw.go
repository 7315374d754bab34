package securitymw

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
)

// TokenVerifier — то, что умеет подтверждать bearer-токен.
// В продакшене это clients.AuthClient, в тестах — фейк.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.AuthContext, error)
}

// OwnerResolver достаёт id владельца ресурса из запроса.
// Может сам сходить в хранилище (например, прочитать заказ ради userId).
type OwnerResolver func(r *http.Request) (string, error)

type contextKey string

const (
	authContextKey contextKey = "authContext"
	rawTokenKey    contextKey = "rawToken"
)

// Options — поведение извлечения токена. Cookie-fallback используется
// только админской поверхностью.
type Options struct {
	CookieName          string
	AllowCookieFallback bool
}

func extractBearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func extractCookie(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// RequireLoggedIn проверяет токен через верификатор и кладёт AuthContext
// в контекст запроса. Проверка выполняется на каждом запросе заново.
func RequireLoggedIn(log *slog.Logger, verifier TokenVerifier, opts *Options) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r)
			if opts != nil && opts.AllowCookieFallback && opts.CookieName != "" {
				// админская поверхность предпочитает cookie
				if cookieToken := extractCookie(r, opts.CookieName); cookieToken != "" {
					token = cookieToken
				}
			}

			if token == "" {
				httperr.Write(w, log, httperr.Unauthorized("missing token"))
				return
			}

			authCtx, err := verifier.Verify(r.Context(), token)
			if err != nil {
				httperr.Write(w, log, err)
				return
			}

			ctx := context.WithValue(r.Context(), authContextKey, authCtx)
			ctx = context.WithValue(ctx, rawTokenKey, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin пускает только админов. Должен стоять после RequireLoggedIn.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := FromContext(r.Context())
			if !ok {
				httperr.Write(w, log, httperr.Unauthorized("not logged in"))
				return
			}
			if !authCtx.IsAdmin() {
				httperr.Write(w, log, httperr.Forbidden("admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnerOrAdmin пускает владельца ресурса или админа.
// Админ проходит без разрешения владельца; пустой owner id закрывает
// доступ. Должен стоять после RequireLoggedIn.
func RequireOwnerOrAdmin(log *slog.Logger, resolve OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx, ok := FromContext(r.Context())
			if !ok {
				httperr.Write(w, log, httperr.Unauthorized("not logged in"))
				return
			}
			if authCtx.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, err := resolve(r)
			if err != nil {
				httperr.Write(w, log, err)
				return
			}
			if ownerID == "" || authCtx.UserID != ownerID {
				httperr.Write(w, log, httperr.Forbidden("owner or admin access required"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// FromContext извлекает AuthContext из контекста запроса
func FromContext(ctx context.Context) (*models.AuthContext, bool) {
	authCtx, ok := ctx.Value(authContextKey).(*models.AuthContext)
	return authCtx, ok
}

// TokenFromContext возвращает исходный bearer-токен для проброса дальше
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(rawTokenKey).(string)
	return token
}

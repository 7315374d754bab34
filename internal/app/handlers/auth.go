package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// TokenCookieName — имя куки с JWT, дублирующей Authorization-заголовок
const TokenCookieName = "token"

func setTokenCookie(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// RegisterHandler обрабатывает POST /api/auth/register
func RegisterHandler(log *slog.Logger, authService service.AuthService, tokenTTL time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var input service.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		token, err := authService.Register(r.Context(), &input)
		if err != nil {
			logger.Error("registration failed", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}

		setTokenCookie(w, token, tokenTTL)
		httperr.WriteJSON(w, http.StatusCreated, map[string]string{"token": token})
	}
}

// LoginHandler обрабатывает POST /api/auth/login
func LoginHandler(log *slog.Logger, authService service.AuthService, tokenTTL time.Duration) http.HandlerFunc {
	type request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		token, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}

		setTokenCookie(w, token, tokenTTL)
		httperr.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
	}
}

// LogoutHandler обрабатывает POST /api/auth/logout: сервер ничего не
// помнит про токен, достаточно сбросить куку
func LogoutHandler(log *slog.Logger, authService service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LogoutHandler"
		logger := log.With(slog.String("op", op))

		if err := authService.Logout(r.Context()); err != nil {
			httperr.Write(w, logger, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     TokenCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		httperr.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// VerifyHandler обрабатывает GET /api/auth/verify. Этим эндпоинтом
// пользуются остальные сервисы через AuthClient.
func VerifyHandler(log *slog.Logger, authService service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.VerifyHandler"
		logger := log.With(slog.String("op", op))

		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httperr.Write(w, logger, httperr.Unauthorized("missing bearer token"))
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" {
			httperr.Write(w, logger, httperr.Unauthorized("missing bearer token"))
			return
		}

		authCtx, err := authService.VerifyToken(token)
		if err != nil {
			logger.Warn("token rejected", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, authCtx)
	}
}

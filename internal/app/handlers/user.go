package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/service"
)

// GetAllUsersHandler обрабатывает GET /api/users (только админ)
func GetAllUsersHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetAllUsersHandler"
		logger := log.With(slog.String("op", op))

		users, err := userService.GetAllUsers(r.Context())
		if err != nil {
			logger.Error("failed to list users", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, users)
	}
}

// GetUserByIDHandler обрабатывает GET /api/users/{id}
func GetUserByIDHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserByIDHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		user, err := userService.GetUserByID(r.Context(), id)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, user)
	}
}

// GetUserByEmailHandler обрабатывает GET /api/users/by-email/{email}.
// Используется auth-сервисом при регистрации и логине.
func GetUserByEmailHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetUserByEmailHandler"
		logger := log.With(slog.String("op", op))

		email := chi.URLParam(r, "email")
		user, err := userService.GetUserByEmail(r.Context(), email)
		if err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, user)
	}
}

// AddUserHandler обрабатывает POST /api/users
func AddUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.AddUserHandler"
		logger := log.With(slog.String("op", op))

		var input service.UserInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		user, err := userService.AddUser(r.Context(), &input)
		if err != nil {
			logger.Error("failed to add user", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusCreated, user)
	}
}

// UpdateUserHandler обрабатывает PUT /api/users/{id} (владелец или админ)
func UpdateUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateUserHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		var input service.UserInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			httperr.Write(w, logger, httperr.BadRequest("invalid request body"))
			return
		}

		user, err := userService.UpdateUser(r.Context(), id, &input)
		if err != nil {
			logger.Error("failed to update user", slog.Any("error", err))
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler обрабатывает DELETE /api/users/{id} (только админ)
func DeleteUserHandler(log *slog.Logger, userService service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteUserHandler"
		logger := log.With(slog.String("op", op))

		id := chi.URLParam(r, "id")
		if err := userService.DeleteUser(r.Context(), id); err != nil {
			httperr.Write(w, logger, err)
			return
		}
		httperr.WriteJSON(w, http.StatusOK, map[string]string{"info": "deleted successfully"})
	}
}

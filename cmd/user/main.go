package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/app"
	"github.com/linemk/micro-shop/internal/app/handlers"
	"github.com/linemk/micro-shop/internal/auth/securitymw"
	"github.com/linemk/micro-shop/internal/clients"
	"github.com/linemk/micro-shop/internal/config"
	"github.com/linemk/micro-shop/internal/lib/logger"
	"github.com/linemk/micro-shop/internal/service"
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting user service", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	userRepo := storage.NewUserRepository(application.DB)
	userService := service.NewUserService(log, userRepo)

	authClient := clients.NewAuthClient(log, cfg.Services.AuthURL, clients.ServiceUser, cfg.Services.ClientTimeout)

	// владелец профиля — сам пользователь из пути
	profileOwner := securitymw.OwnerResolver(func(r *http.Request) (string, error) {
		return chi.URLParam(r, "id"), nil
	})

	router := app.NewRouter(log, clients.ServiceUser)

	router.Route("/api/users", func(r chi.Router) {
		// создание и поиск по email открыты: ими пользуется auth-сервис
		// при регистрации, когда токена ещё нет
		r.Post("/", handlers.AddUserHandler(log, userService))
		r.Get("/by-email/{email}", handlers.GetUserByEmailHandler(log, userService))

		r.Group(func(r chi.Router) {
			r.Use(securitymw.RequireLoggedIn(log, authClient, nil))

			r.Group(func(r chi.Router) {
				r.Use(securitymw.RequireAdmin(log))
				r.Get("/", handlers.GetAllUsersHandler(log, userService))
				r.Delete("/{id}", handlers.DeleteUserHandler(log, userService))
			})

			r.Group(func(r chi.Router) {
				r.Use(securitymw.RequireOwnerOrAdmin(log, profileOwner))
				r.Get("/{id}", handlers.GetUserByIDHandler(log, userService))
				r.Put("/{id}", handlers.UpdateUserHandler(log, userService))
			})
		})
	})

	app.Run(log, cfg.HTTPServer, router)
}

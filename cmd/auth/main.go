package main

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/app"
	"github.com/linemk/micro-shop/internal/app/handlers"
	"github.com/linemk/micro-shop/internal/auth"
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
	log.Info("starting auth service", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	tokenTTL := time.Duration(cfg.JWT.TokenTTL) * time.Minute
	tokens, err := auth.NewTokenManager(cfg.JWT.Secret, tokenTTL)
	if err != nil {
		log.Error("failed to initialize token manager", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize token manager"))
	}

	credsRepo := storage.NewCredentialsRepository(application.DB)
	userClient := clients.NewUserClient(log, cfg.Services.UserURL, clients.ServiceAuth, cfg.Services.ClientTimeout)

	authService := service.NewAuthService(log, credsRepo, userClient, tokens)

	router := app.NewRouter(log, clients.ServiceAuth)

	router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", handlers.RegisterHandler(log, authService, tokenTTL))
		r.Post("/login", handlers.LoginHandler(log, authService, tokenTTL))
		r.Post("/logout", handlers.LogoutHandler(log, authService))
		r.Get("/verify", handlers.VerifyHandler(log, authService))
	})

	app.Run(log, cfg.HTTPServer, router)
}

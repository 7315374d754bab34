package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/app"
	"github.com/linemk/micro-shop/internal/app/handlers"
	"github.com/linemk/micro-shop/internal/cache"
	"github.com/linemk/micro-shop/internal/clients"
	"github.com/linemk/micro-shop/internal/config"
	"github.com/linemk/micro-shop/internal/lib/logger"
	"github.com/linemk/micro-shop/internal/service"
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting fortune service", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	defer redisClient.Close()

	fortuneRepo := storage.NewFortuneRepository(application.DB)
	fortuneCache := cache.NewRedisFortuneCache(redisClient, cfg.Redis.FortuneTTL)
	fortuneService := service.NewFortuneService(log, fortuneRepo, fortuneCache)

	router := app.NewRouter(log, clients.ServiceFortune)

	router.Route("/api/fortunes", func(r chi.Router) {
		r.Get("/", handlers.GetAllFortunesHandler(log, fortuneService))
		r.Get("/random", handlers.GetRandomFortuneHandler(log, fortuneService))
	})

	app.Run(log, cfg.HTTPServer, router)
}

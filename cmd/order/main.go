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
	"github.com/linemk/micro-shop/internal/events"
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
	log.Info("starting order service", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	orderRepo := storage.NewOrderRepository(application.DB)

	// клиенты соседних сервисов
	authClient := clients.NewAuthClient(log, cfg.Services.AuthURL, clients.ServiceOrder, cfg.Services.ClientTimeout)
	userClient := clients.NewUserClient(log, cfg.Services.UserURL, clients.ServiceOrder, cfg.Services.ClientTimeout)
	productClient := clients.NewProductClient(log, cfg.Services.ProductURL, clients.ServiceOrder, cfg.Services.ClientTimeout)

	// продюсер сверки остатков опционален: без брокера несработавшие
	// списания остаются только в логах
	var reconciler service.ReconciliationPublisher
	if cfg.Kafka.Brokers != "" {
		producer := events.NewReconciliationProducer(log, cfg.Kafka.Brokers, cfg.Kafka.ReconciliationTopic)
		defer producer.Close()
		reconciler = producer
	}

	orderService := service.NewOrderService(log, orderRepo, userClient, productClient, reconciler)

	// владелец заказа известен только самому заказу
	orderOwner := securitymw.OwnerResolver(func(r *http.Request) (string, error) {
		order, err := orderService.GetOrderByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			return "", err
		}
		return order.UserID, nil
	})

	router := app.NewRouter(log, clients.ServiceOrder)

	router.Route("/api/orders", func(r chi.Router) {
		r.Use(securitymw.RequireLoggedIn(log, authClient, nil))

		r.Post("/", handlers.AddOrderHandler(log, orderService))
		r.Get("/me", handlers.GetMyOrdersHandler(log, orderService))

		r.Group(func(r chi.Router) {
			r.Use(securitymw.RequireAdmin(log))
			r.Get("/", handlers.GetAllOrdersHandler(log, orderService))
			r.Put("/{id}", handlers.UpdateOrderHandler(log, orderService))
			r.Delete("/", handlers.DeleteAllOrdersHandler(log, orderService))
		})

		r.Group(func(r chi.Router) {
			r.Use(securitymw.RequireOwnerOrAdmin(log, orderOwner))
			r.Get("/{id}", handlers.GetOrderByIDHandler(log, orderService))
			r.Delete("/{id}", handlers.DeleteOrderHandler(log, orderService))
		})
	})

	app.Run(log, cfg.HTTPServer, router)
}

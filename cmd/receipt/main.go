package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/linemk/micro-shop/internal/app"
	"github.com/linemk/micro-shop/internal/app/handlers"
	"github.com/linemk/micro-shop/internal/auth/securitymw"
	"github.com/linemk/micro-shop/internal/clients"
	"github.com/linemk/micro-shop/internal/config"
	"github.com/linemk/micro-shop/internal/lib/logger"
	"github.com/linemk/micro-shop/internal/service"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting receipt service", slog.String("env", cfg.Env))

	// у сервиса чеков нет собственного хранилища: всё собирается
	// из соседних сервисов на лету
	authClient := clients.NewAuthClient(log, cfg.Services.AuthURL, clients.ServiceReceipt, cfg.Services.ClientTimeout)
	orderClient := clients.NewOrderClient(log, cfg.Services.OrderURL, clients.ServiceReceipt, cfg.Services.ClientTimeout)
	userClient := clients.NewUserClient(log, cfg.Services.UserURL, clients.ServiceReceipt, cfg.Services.ClientTimeout)
	productClient := clients.NewProductClient(log, cfg.Services.ProductURL, clients.ServiceReceipt, cfg.Services.ClientTimeout)
	fortuneClient := clients.NewFortuneClient(log, cfg.Services.FortuneURL, clients.ServiceReceipt, cfg.Services.ClientTimeout)

	receiptService := service.NewReceiptService(log, orderClient, userClient, productClient, fortuneClient)

	router := app.NewRouter(log, clients.ServiceReceipt)

	router.Route("/api/receipts", func(r chi.Router) {
		r.Use(securitymw.RequireLoggedIn(log, authClient, nil))
		r.Get("/{orderId}", handlers.GetReceiptHandler(log, receiptService))
	})

	app.Run(log, cfg.HTTPServer, router)
}

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
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/pkg/errors"
)

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting product service", slog.String("env", cfg.Env))

	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(log, cfg)
	if err != nil {
		log.Error("failed to initialize app", slog.Any("error", err))
		panic(errors.Wrap(err, "failed to initialize app"))
	}
	defer application.DB.Close()

	productRepo := storage.NewProductRepository(application.DB)
	productService := service.NewProductService(log, productRepo)

	authClient := clients.NewAuthClient(log, cfg.Services.AuthURL, clients.ServiceProduct, cfg.Services.ClientTimeout)

	router := app.NewRouter(log, clients.ServiceProduct)

	router.Route("/api/products", func(r chi.Router) {
		// каталог читается без токена
		r.Get("/", handlers.GetAllProductsHandler(log, productService))
		r.Get("/{id}", handlers.GetProductByIDHandler(log, productService))

		r.Group(func(r chi.Router) {
			r.Use(securitymw.RequireLoggedIn(log, authClient, nil))

			// списанием остатков пользуется сервис заказов от имени покупателя
			r.Patch("/{id}/stock", handlers.AdjustStockHandler(log, productService))

			r.Group(func(r chi.Router) {
				r.Use(securitymw.RequireAdmin(log))
				r.Post("/", handlers.AddProductHandler(log, productService))
				r.Put("/{id}", handlers.UpdateProductHandler(log, productService))
				r.Patch("/{id}/active", handlers.ToggleActiveHandler(log, productService))
				r.Delete("/{id}", handlers.DeleteProductHandler(log, productService))
			})
		})
	})

	app.Run(log, cfg.HTTPServer, router)
}

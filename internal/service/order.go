package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/events"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/storage"
)

var validate = validator.New()

// UserGetter — кусок user-клиента, нужный саге
type UserGetter interface {
	GetByID(ctx context.Context, id, token string) (*models.User, error)
}

// ProductCatalog — кусок product-клиента, нужный саге
type ProductCatalog interface {
	GetByID(ctx context.Context, id, token string) (*models.Product, error)
	AdjustStock(ctx context.Context, id string, delta int, token string) (*models.Product, error)
}

// ReconciliationPublisher — необязательный выход для несработавших
// списаний остатка
type ReconciliationPublisher interface {
	Publish(ctx context.Context, event events.StockReconciliation) error
}

// CreateOrderItemInput — позиция из запроса покупателя. Цена намеренно
// не принимается: источником цен служит каталог.
type CreateOrderItemInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gte=1"`
	Size      string `json:"size,omitempty"`
	Color     string `json:"color,omitempty"`
}

// CreateOrderInput — входные данные заказа. UserID проставляет обработчик
// из AuthContext, значение из тела запроса игнорируется.
type CreateOrderInput struct {
	UserID          string                 `json:"userId"`
	Items           []CreateOrderItemInput `json:"items"`
	ShippingAddress models.Address         `json:"shippingAddress"`
}

// OrderPatch — частичное обновление заказа
type OrderPatch struct {
	Status          *models.OrderStatus `json:"status,omitempty"`
	ShippingAddress *models.Address     `json:"shippingAddress,omitempty"`
}

type OrderService interface {
	PlaceOrder(ctx context.Context, input *CreateOrderInput, token string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	GetOrdersByUser(ctx context.Context, userID string) ([]*models.Order, error)
	UpdateOrder(ctx context.Context, id string, patch *OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	DeleteAllOrders(ctx context.Context) (int64, error)
}

type orderService struct {
	log        *slog.Logger
	orderRepo  storage.OrderStorage
	users      UserGetter
	products   ProductCatalog
	reconciler ReconciliationPublisher // nil отключает публикацию
}

// NewOrderService собирает сервис заказов. Клиенты передаются снаружи,
// чтобы тесты могли подставить фейки.
func NewOrderService(log *slog.Logger, orderRepo storage.OrderStorage, users UserGetter, products ProductCatalog, reconciler ReconciliationPublisher) OrderService {
	return &orderService{
		log:        log,
		orderRepo:  orderRepo,
		users:      users,
		products:   products,
		reconciler: reconciler,
	}
}

func validateOrderID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return httperr.BadRequestf("invalid order id: %s", id)
	}
	return nil
}

// PlaceOrder выполняет размещение заказа: проверка покупателя, снятие
// цен и остатков из каталога, подсчёт сумм, запись заказа и списание
// остатков. Позиции обрабатываются строго последовательно — снимок цен
// должен быть согласованным, а частичный сбой не должен оставлять
// параллельных резервирований. До записи заказа любой сбой прерывает всё
// без следов; сбой списания после записи заказ уже не отменяет, но
// возвращается вызывающему как ошибка каталога.
func (s *orderService) PlaceOrder(ctx context.Context, input *CreateOrderInput, token string) (*models.Order, error) {
	const op = "service.orderService.PlaceOrder"
	logger := s.log.With(slog.String("op", op), slog.String("userID", input.UserID))

	// пустая корзина отсекается до каких-либо сетевых вызовов
	if len(input.Items) == 0 {
		return nil, httperr.BadRequest("order must contain at least one item")
	}

	// покупатель должен существовать
	if _, err := s.users.GetByID(ctx, input.UserID, token); err != nil {
		logger.Warn("buyer validation failed", slog.Any("error", err))
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(input.Items))
	var subtotal float64

	for _, item := range input.Items {
		logger.Info("fetching product", slog.String("productID", item.ProductID))

		product, err := s.products.GetByID(ctx, item.ProductID, token)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, httperr.BadRequestf("product %s is inactive", product.Name)
		}

		// сервер — источник цен, значения из запроса не используются
		unitPrice := product.Price
		subtotal += unitPrice * float64(item.Quantity)

		items = append(items, models.OrderItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			Currency:  product.Currency,
		})
	}

	shippingCost := 0.0 // задел под расчёт доставки
	total := subtotal + shippingCost

	order := &models.Order{
		UserID:          input.UserID,
		Items:           items,
		Status:          models.StatusPending,
		Subtotal:        subtotal,
		ShippingCost:    shippingCost,
		Total:           total,
		ShippingAddress: input.ShippingAddress,
	}

	if err := validate.Struct(order); err != nil {
		logger.Warn("order validation failed", slog.Any("error", err))
		return nil, httperr.BadRequestf("invalid order: %v", err)
	}

	id, err := s.orderRepo.CreateOrder(ctx, order)
	if err != nil {
		logger.Error("failed to persist order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to persist order: %w", op, err)
	}

	// списание остатков строго после записи заказа; сбой здесь заказ не
	// отменяет — позиция логируется и уходит в очередь сверки, но вызывающему
	// отдаётся ошибка каталога: остаток решает каталог, а не сага
	var stockErr error
	for _, item := range items {
		if _, err := s.products.AdjustStock(ctx, item.ProductID, -item.Quantity, token); err != nil {
			logger.Warn("stock adjustment failed",
				slog.String("orderID", id),
				slog.String("productID", item.ProductID),
				slog.Int("quantity", item.Quantity),
				slog.Any("error", err),
			)
			s.publishReconciliation(ctx, id, item, err)
			if stockErr == nil {
				stockErr = err
			}
		}
	}
	if stockErr != nil {
		return nil, stockErr
	}

	// перечитываем из хранилища, чтобы отдать ровно то, что сохранено
	return s.orderRepo.GetOrderByID(ctx, id)
}

func (s *orderService) publishReconciliation(ctx context.Context, orderID string, item models.OrderItem, cause error) {
	if s.reconciler == nil {
		return
	}
	event := events.StockReconciliation{
		OrderID:   orderID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		Reason:    cause.Error(),
	}
	if err := s.reconciler.Publish(ctx, event); err != nil {
		s.log.Error("failed to publish reconciliation event",
			slog.String("orderID", orderID),
			slog.String("productID", item.ProductID),
			slog.Any("error", err),
		)
	}
}

func (s *orderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	const op = "service.orderService.GetOrderByID"

	if err := validateOrderID(id); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, httperr.NotFoundf("order with id %s was not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return order, nil
}

func (s *orderService) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	const op = "service.orderService.GetAllOrders"

	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

func (s *orderService) GetOrdersByUser(ctx context.Context, userID string) ([]*models.Order, error) {
	const op = "service.orderService.GetOrdersByUser"

	if _, err := uuid.Parse(userID); err != nil {
		return nil, httperr.BadRequestf("invalid user id: %s", userID)
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return orders, nil
}

// UpdateOrder применяет частичное обновление и валидирует документ заново
func (s *orderService) UpdateOrder(ctx context.Context, id string, patch *OrderPatch) (*models.Order, error) {
	const op = "service.orderService.UpdateOrder"

	if err := validateOrderID(id); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, httperr.NotFoundf("order with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if patch.Status != nil {
		order.Status = *patch.Status
	}
	if patch.ShippingAddress != nil {
		order.ShippingAddress = *patch.ShippingAddress
	}

	if err := validate.Struct(order); err != nil {
		return nil, httperr.BadRequestf("invalid order: %v", err)
	}

	if err := s.orderRepo.UpdateOrder(ctx, order); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return nil, httperr.NotFoundf("order with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.orderRepo.GetOrderByID(ctx, id)
}

func (s *orderService) DeleteOrder(ctx context.Context, id string) error {
	const op = "service.orderService.DeleteOrder"

	if err := validateOrderID(id); err != nil {
		return err
	}

	if err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
		if errors.Is(err, storage.ErrOrderNotFound) {
			return httperr.NotFoundf("order with id %s not found", id)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *orderService) DeleteAllOrders(ctx context.Context) (int64, error) {
	const op = "service.orderService.DeleteAllOrders"

	deleted, err := s.orderRepo.DeleteAllOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return deleted, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"golang.org/x/sync/errgroup"
)

// OrderFetcher — кусок order-клиента, нужный сборке чека
type OrderFetcher interface {
	GetByID(ctx context.Context, id, token string) (*models.Order, error)
}

// ProductLister — пакетная выборка товаров для чека
type ProductLister interface {
	GetByIDs(ctx context.Context, ids []string, token string) ([]*models.Product, error)
}

// FortuneTeller — предсказание для чека, строго best-effort
type FortuneTeller interface {
	Random(ctx context.Context) (*models.Fortune, error)
}

// ReceiptItem — строка чека с посчитанной суммой
type ReceiptItem struct {
	Name      string  `json:"name"`
	SKU       string  `json:"sku,omitempty"`
	Size      string  `json:"size,omitempty"`
	Color     string  `json:"color,omitempty"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	Price     string  `json:"price"`
	Total     string  `json:"total"`
}

type ReceiptOrder struct {
	OrderID      string             `json:"orderId"`
	Status       models.OrderStatus `json:"status"`
	CreatedAt    string             `json:"createdAt"`
	Subtotal     string             `json:"subtotal"`
	ShippingCost string             `json:"shippingCost"`
	Total        string             `json:"total"`
	Currency     models.Currency    `json:"currency"`
}

type ReceiptCustomer struct {
	Name    string         `json:"name"`
	Email   string         `json:"email,omitempty"`
	Address models.Address `json:"address"`
}

// Receipt — собранный чек одного заказа
type Receipt struct {
	Order    ReceiptOrder    `json:"order"`
	Customer ReceiptCustomer `json:"customer"`
	Items    []ReceiptItem   `json:"items"`
	Fortune  *models.Fortune `json:"fortune,omitempty"`
}

type ReceiptService interface {
	GetReceipt(ctx context.Context, orderID string, requester *models.AuthContext, token string) (*Receipt, error)
}

type receiptService struct {
	log      *slog.Logger
	orders   OrderFetcher
	users    UserGetter
	products ProductLister
	fortunes FortuneTeller
}

func NewReceiptService(log *slog.Logger, orders OrderFetcher, users UserGetter, products ProductLister, fortunes FortuneTeller) ReceiptService {
	return &receiptService{
		log:      log,
		orders:   orders,
		users:    users,
		products: products,
		fortunes: fortunes,
	}
}

func formatMoney(amount float64, currency models.Currency) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// GetReceipt собирает чек: заказ, затем покупатель и товары параллельно.
// Читать чек может владелец заказа или админ. Предсказание — украшение,
// его отсутствие чек не ломает.
func (s *receiptService) GetReceipt(ctx context.Context, orderID string, requester *models.AuthContext, token string) (*Receipt, error) {
	const op = "service.receiptService.GetReceipt"
	logger := s.log.With(slog.String("op", op), slog.String("orderID", orderID))

	order, err := s.orders.GetByID(ctx, orderID, token)
	if err != nil {
		return nil, err
	}

	if !requester.IsAdmin() && requester.UserID != order.UserID {
		return nil, httperr.Forbidden("owner or admin access required")
	}

	productIDs := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}

	var (
		user     *models.User
		products []*models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var gerr error
		user, gerr = s.users.GetByID(gctx, order.UserID, token)
		return gerr
	})
	g.Go(func() error {
		var gerr error
		products, gerr = s.products.GetByIDs(gctx, productIDs, token)
		return gerr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var fortune *models.Fortune
	if s.fortunes != nil {
		fortune, err = s.fortunes.Random(ctx)
		if err != nil {
			logger.Warn("fortune unavailable, receipt goes out without one", slog.Any("error", err))
			fortune = nil
		}
	}

	return s.assemble(order, user, products, fortune), nil
}

func (s *receiptService) assemble(order *models.Order, user *models.User, products []*models.Product, fortune *models.Fortune) *Receipt {
	currency := models.CurrencyILS
	if len(order.Items) > 0 {
		currency = order.Items[0].Currency
	}

	byID := make(map[string]*models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	items := make([]ReceiptItem, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.Name
		sku := item.SKU
		// каталог мог уйти вперёд — свежие название и sku приоритетнее
		if p, ok := byID[item.ProductID]; ok {
			if p.Name != "" {
				name = p.Name
			}
			if p.SKU != "" {
				sku = p.SKU
			}
		}
		lineTotal := float64(item.Quantity) * item.UnitPrice
		items = append(items, ReceiptItem{
			Name:      name,
			SKU:       sku,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: lineTotal,
			Price:     formatMoney(item.UnitPrice, item.Currency),
			Total:     formatMoney(lineTotal, item.Currency),
		})
	}

	customerName := order.ShippingAddress.FullName
	customerEmail := ""
	if user != nil {
		customerName = user.Name
		customerEmail = user.Email
	}

	return &Receipt{
		Order: ReceiptOrder{
			OrderID:      order.ID,
			Status:       order.Status,
			CreatedAt:    order.CreatedAt.Format("2006-01-02 15:04:05"),
			Subtotal:     formatMoney(order.Subtotal, currency),
			ShippingCost: formatMoney(order.ShippingCost, currency),
			Total:        formatMoney(order.Total, currency),
			Currency:     currency,
		},
		Customer: ReceiptCustomer{
			Name:    customerName,
			Email:   customerEmail,
			Address: order.ShippingAddress,
		},
		Items:   items,
		Fortune: fortune,
	}
}

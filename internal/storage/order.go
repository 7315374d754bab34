package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderStorage описывает методы для работы с заказами.
type OrderStorage interface {
	// CreateOrder сохраняет заказ вместе с позициями в одной транзакции
	// и возвращает присвоенный id.
	CreateOrder(ctx context.Context, order *models.Order) (string, error)
	// GetOrderByID возвращает заказ с позициями.
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetAllOrders возвращает все заказы.
	GetAllOrders(ctx context.Context) ([]*models.Order, error)
	// GetOrdersByUserID возвращает заказы покупателя, новые первыми.
	GetOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error)
	// UpdateOrder перезаписывает заказ и его позиции.
	UpdateOrder(ctx context.Context, order *models.Order) error
	// DeleteOrder удаляет заказ.
	DeleteOrder(ctx context.Context, id string) error
	// DeleteAllOrders удаляет все заказы и возвращает их количество.
	DeleteAllOrders(ctx context.Context) (int64, error)
}

// orderRepository — конкретная реализация OrderStorage.
type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт новый репозиторий заказов.
func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	const op = "storage.orderRepository.CreateOrder"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, subtotal, shipping_cost, total,
		                    full_name, street, country, zip_code, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())`,
		id, order.UserID, order.Status, order.Subtotal, order.ShippingCost, order.Total,
		order.ShippingAddress.FullName, order.ShippingAddress.Street,
		order.ShippingAddress.Country, order.ShippingAddress.ZipCode, order.ShippingAddress.Phone,
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return "", fmt.Errorf("%s: rollback failed: %w", op, rbErr)
		}
		return "", fmt.Errorf("%s: failed to insert order: %w", op, err)
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, sku, name, size, color, quantity, unit_price, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, i, item.ProductID, item.SKU, item.Name, item.Size, item.Color,
			item.Quantity, item.UnitPrice, item.Currency,
		)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return "", fmt.Errorf("%s: rollback failed: %w", op, rbErr)
			}
			return "", fmt.Errorf("%s: failed to insert order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return id, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, status, subtotal, shipping_cost, total,
		       full_name, street, country, zip_code, phone, created_at, updated_at
		FROM orders WHERE id = $1`, id)
	if err := scanOrder(row, order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetAllOrders(ctx context.Context) ([]*models.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, user_id, status, subtotal, shipping_cost, total,
		       full_name, street, country, zip_code, phone, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
}

func (r *orderRepository) GetOrdersByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	return r.queryOrders(ctx, `
		SELECT id, user_id, status, subtotal, shipping_cost, total,
		       full_name, street, country, zip_code, phone, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *orderRepository) UpdateOrder(ctx context.Context, order *models.Order) error {
	const op = "storage.orderRepository.UpdateOrder"

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET user_id = $2, status = $3, subtotal = $4, shipping_cost = $5, total = $6,
		    full_name = $7, street = $8, country = $9, zip_code = $10, phone = $11, updated_at = NOW()
		WHERE id = $1`,
		order.ID, order.UserID, order.Status, order.Subtotal, order.ShippingCost, order.Total,
		order.ShippingAddress.FullName, order.ShippingAddress.Street,
		order.ShippingAddress.Country, order.ShippingAddress.ZipCode, order.ShippingAddress.Phone,
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback failed: %w", op, rbErr)
		}
		return fmt.Errorf("%s: failed to update order: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback failed: %w", op, rbErr)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback failed: %w", op, rbErr)
		}
		return ErrOrderNotFound
	}

	// позиции проще перезаписать целиком
	if _, err := tx.ExecContext(ctx, "DELETE FROM order_items WHERE order_id = $1", order.ID); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%s: rollback failed: %w", op, rbErr)
		}
		return fmt.Errorf("%s: failed to delete old items: %w", op, err)
	}
	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, position, product_id, sku, name, size, color, quantity, unit_price, currency)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			order.ID, i, item.ProductID, item.SKU, item.Name, item.Size, item.Color,
			item.Quantity, item.UnitPrice, item.Currency,
		)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("%s: rollback failed: %w", op, rbErr)
			}
			return fmt.Errorf("%s: failed to insert order item: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}
	return nil
}

func (r *orderRepository) DeleteOrder(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *orderRepository) DeleteAllOrders(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, order *models.Order) error {
	return row.Scan(
		&order.ID, &order.UserID, &order.Status, &order.Subtotal, &order.ShippingCost, &order.Total,
		&order.ShippingAddress.FullName, &order.ShippingAddress.Street,
		&order.ShippingAddress.Country, &order.ShippingAddress.ZipCode, &order.ShippingAddress.Phone,
		&order.CreatedAt, &order.UpdatedAt,
	)
}

func (r *orderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []*models.Order{}
	for rows.Next() {
		order := &models.Order{}
		if err := scanOrder(rows, order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, order := range orders {
		items, err := r.loadItems(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		order.Items = items
	}
	return orders, nil
}

func (r *orderRepository) loadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, sku, name, size, color, quantity, unit_price, currency
		FROM order_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ProductID, &item.SKU, &item.Name, &item.Size, &item.Color,
			&item.Quantity, &item.UnitPrice, &item.Currency); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/linemk/micro-shop/internal/domain/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	// ErrStockConflict возвращается условным декрементом: по нему нельзя
	// отличить «товара нет» от «остатка не хватает»
	ErrStockConflict = errors.New("not enough stock or product not found")
	ErrSKUTaken      = errors.New("sku is already taken")
)

// ProductStorage описывает методы для работы с каталогом.
type ProductStorage interface {
	GetAllProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) (string, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
	// AdjustStock меняет остаток на delta одним условным UPDATE:
	// остаток никогда не уходит ниже нуля, конфликтующие заказы
	// сериализует сама БД.
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
	// ToggleActive переключает признак активности товара.
	ToggleActive(ctx context.Context, id string) (*models.Product, error)
}

type productRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) ProductStorage {
	return &productRepository{db: db}
}

const productColumns = "id, sku, name, description, price, currency, stock, is_active, created_at, updated_at"

func scanProduct(row rowScanner, p *models.Product) error {
	return row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Price, &p.Currency,
		&p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) GetAllProducts(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p := &models.Product{}
		if err := scanProduct(rows, p); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) (string, error) {
	const op = "storage.productRepository.CreateProduct"

	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, description, price, currency, stock, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())`,
		id, product.SKU, product.Name, product.Description, product.Price,
		product.Currency, product.Stock, product.IsActive,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			return "", ErrSKUTaken
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return id, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET sku = $2, name = $3, description = $4, price = $5, currency = $6,
		    stock = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1`,
		product.ID, product.SKU, product.Name, product.Description, product.Price,
		product.Currency, product.Stock, product.IsActive,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	p := &models.Product{}
	row := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND stock + $2 >= 0
		RETURNING `+productColumns,
		id, delta,
	)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStockConflict
		}
		return nil, err
	}
	return p, nil
}

func (r *productRepository) ToggleActive(ctx context.Context, id string) (*models.Product, error) {
	p := &models.Product{}
	row := r.db.QueryRowContext(ctx, `
		UPDATE products SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING `+productColumns,
		id,
	)
	if err := scanProduct(row, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

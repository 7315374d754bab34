package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRows(id string, stock int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "sku", "name", "description", "price", "currency", "stock", "is_active", "created_at", "updated_at"}).
		AddRow(id, "TSHIRT-1", "T-Shirt", "", 25.5, "USD", stock, true, now, now)
}

func TestProductRepository_AdjustStock_Success(t *testing.T) {
	// Создаем sqlmock для эмуляции базы данных.
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	productID := uuid.NewString()

	// Условный UPDATE вернул обновлённую строку — остатка хватило.
	mock.ExpectQuery(`UPDATE products`).
		WithArgs(productID, -2).
		WillReturnRows(productRows(productID, 8))

	product, err := repo.AdjustStock(ctx, productID, -2)
	require.NoError(t, err)
	assert.Equal(t, 8, product.Stock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_AdjustStock_Conflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()
	productID := uuid.NewString()

	// Ноль строк: либо товара нет, либо остатка не хватает —
	// репозиторий не различает эти случаи.
	mock.ExpectQuery(`UPDATE products`).
		WithArgs(productID, -100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "description", "price", "currency", "stock", "is_active", "created_at", "updated_at"}))

	product, err := repo.AdjustStock(ctx, productID, -100)
	assert.ErrorIs(t, err, storage.ErrStockConflict)
	assert.Nil(t, product)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProductRepository_GetProductByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	productID := uuid.NewString()

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs(productID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "sku", "name", "description", "price", "currency", "stock", "is_active", "created_at", "updated_at"}))

	product, err := repo.GetProductByID(context.Background(), productID)
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.Nil(t, product)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateOrder_Transactional(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	order := &models.Order{
		UserID: uuid.NewString(),
		Status: models.StatusPending,
		Items: []models.OrderItem{
			{ProductID: uuid.NewString(), SKU: "TSHIRT-1", Name: "T-Shirt", Quantity: 2, UnitPrice: 25.5, Currency: models.CurrencyUSD},
			{ProductID: uuid.NewString(), SKU: "MUG-1", Name: "Mug", Quantity: 1, UnitPrice: 10, Currency: models.CurrencyUSD},
		},
		Subtotal: 61,
		Total:    61,
		ShippingAddress: models.Address{
			FullName: "Ivan Petrov", Street: "12 Main St", Country: "IL", ZipCode: "12345",
		},
	}

	// заказ и позиции пишутся в одной транзакции
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := repo.CreateOrder(ctx, order)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_CreateOrder_RollbackOnItemFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	order := &models.Order{
		UserID: uuid.NewString(),
		Status: models.StatusPending,
		Items: []models.OrderItem{
			{ProductID: uuid.NewString(), SKU: "TSHIRT-1", Name: "T-Shirt", Quantity: 1, UnitPrice: 25.5, Currency: models.CurrencyUSD},
		},
		Subtotal: 25.5,
		Total:    25.5,
		ShippingAddress: models.Address{
			FullName: "Ivan Petrov", Street: "12 Main St", Country: "IL", ZipCode: "12345",
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO order_items`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = repo.CreateOrder(ctx, order)
	assert.Error(t, err, "item insert failure must fail the whole order")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_DeleteAllOrders(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectExec(`DELETE FROM orders`).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := repo.DeleteAllOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)

	assert.NoError(t, mock.ExpectationsWereMet())
}

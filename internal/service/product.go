package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/linemk/micro-shop/internal/domain/models"
	"github.com/linemk/micro-shop/internal/lib/httperr"
	"github.com/linemk/micro-shop/internal/storage"
)

// ProductInput — создание/обновление товара
type ProductInput struct {
	SKU         string          `json:"sku" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Price       float64         `json:"price" validate:"gte=0"`
	Currency    models.Currency `json:"currency" validate:"required,oneof=USD EUR ILS"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsActive    *bool           `json:"isActive,omitempty"`
}

type ProductService interface {
	GetAllProducts(ctx context.Context) ([]*models.Product, error)
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	AddProduct(ctx context.Context, input *ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, input *ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error)
	ToggleActive(ctx context.Context, id string) (*models.Product, error)
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage) ProductService {
	return &productService{log: log, productRepo: productRepo}
}

func validateProductID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return httperr.BadRequestf("invalid product id: %s", id)
	}
	return nil
}

func (s *productService) GetAllProducts(ctx context.Context) ([]*models.Product, error) {
	const op = "service.productService.GetAllProducts"

	products, err := s.productRepo.GetAllProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.productService.GetProductByID"

	if err := validateProductID(id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, httperr.NotFoundf("product with id %s was not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) AddProduct(ctx context.Context, input *ProductInput) (*models.Product, error) {
	const op = "service.productService.AddProduct"
	logger := s.log.With(slog.String("op", op), slog.String("sku", input.SKU))

	if err := validate.Struct(input); err != nil {
		return nil, httperr.BadRequestf("invalid product: %v", err)
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	product := &models.Product{
		SKU:         input.SKU,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Currency:    input.Currency,
		Stock:       input.Stock,
		IsActive:    isActive,
	}

	id, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		if errors.Is(err, storage.ErrSKUTaken) {
			return nil, httperr.BadRequest("sku is already taken")
		}
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.productRepo.GetProductByID(ctx, id)
}

func (s *productService) UpdateProduct(ctx context.Context, id string, input *ProductInput) (*models.Product, error) {
	const op = "service.productService.UpdateProduct"

	if err := validateProductID(id); err != nil {
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		return nil, httperr.BadRequestf("invalid product: %v", err)
	}

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, httperr.NotFoundf("product with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	product.SKU = input.SKU
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price
	product.Currency = input.Currency
	product.Stock = input.Stock
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, httperr.NotFoundf("product with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.productRepo.GetProductByID(ctx, id)
}

func (s *productService) DeleteProduct(ctx context.Context, id string) error {
	const op = "service.productService.DeleteProduct"

	if err := validateProductID(id); err != nil {
		return err
	}

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return httperr.NotFoundf("product with id %s not found", id)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// AdjustStock меняет остаток условным обновлением в БД. Отказ хранилища
// намеренно не различает «нет товара» и «нет остатка» — наружу уходит
// общий BadRequest.
func (s *productService) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	const op = "service.productService.AdjustStock"
	logger := s.log.With(slog.String("op", op), slog.String("productID", id), slog.Int("delta", delta))

	if err := validateProductID(id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		if errors.Is(err, storage.ErrStockConflict) {
			logger.Warn("stock adjustment rejected")
			return nil, httperr.BadRequestf("not enough stock or product with id %s not found", id)
		}
		logger.Error("failed to adjust stock", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) ToggleActive(ctx context.Context, id string) (*models.Product, error) {
	const op = "service.productService.ToggleActive"

	if err := validateProductID(id); err != nil {
		return nil, err
	}

	product, err := s.productRepo.ToggleActive(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, httperr.NotFoundf("product with id %s not found", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

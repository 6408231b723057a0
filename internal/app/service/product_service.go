package service

import (
	"context"

	"medistore/internal/common"
	"medistore/internal/domain/model"
	"medistore/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug" // For slug generation
)

type ProductService struct {
	productRepo repository.ProductRepository
	locks       *ProductLocks // shared with the inventory reconciler
}

func NewProductService(productRepo repository.ProductRepository, locks *ProductLocks) *ProductService {
	return &ProductService{productRepo: productRepo, locks: locks}
}

type CreateProductRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Stock       *int     `json:"stock,omitempty"`
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *ProductService) GetBySlug(ctx context.Context, productSlug string) (*model.Product, error) {
	return s.productRepo.FindBySlug(ctx, productSlug)
}

func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*model.Product, error) {
	if req.Name == "" {
		return nil, common.Errorf("product name is required: %w", common.ErrBadRequest)
	}
	if req.Stock < 0 || req.Price < 0 {
		return nil, common.Errorf("stock and price must not be negative: %w", common.ErrValidation)
	}

	product := &model.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Slug:        slug.Make(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
	}
	return s.productRepo.Save(ctx, product)
}

// Update rewrites the whole product row, so it holds the product's lock
// for its read-modify-write even when the stock field is untouched; a
// concurrent reconcile decrement must not be clobbered by a stale save.
func (s *ProductService) Update(ctx context.Context, id string, req UpdateProductRequest) (*model.Product, error) {
	lock := s.locks.Get(id)
	lock.Lock()
	defer lock.Unlock()

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
		product.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, common.Errorf("price must not be negative: %w", common.ErrValidation)
		}
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, common.Errorf("stock must not be negative: %w", common.ErrValidation)
		}
		product.Stock = *req.Stock
	}
	return s.productRepo.Save(ctx, product)
}

package service

import (
	"context"
	"strings"
	"time"

	"tradequote_backend/internal/catalog/repository"
	"tradequote_backend/internal/catalog/transport"
	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
)

// Service provides business logic for the product catalog.
type Service struct {
	repo repository.Repository
}

// New creates a new catalog service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// CreateProduct creates a catalog product.
func (s *Service) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*transport.ProductResponse, error) {
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	now := time.Now()
	p := repository.Product{
		ID:          uuid.New(),
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		SKU:         strings.TrimSpace(req.SKU),
		Description: req.Description,
		Unit:        unit,
		UnitPrice:   req.UnitPrice,
		GSTRate:     req.GSTRate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return buildProductResponse(&p), nil
}

// UpdateProduct applies the provided fields to an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req transport.UpdateProductRequest) (*transport.ProductResponse, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, apperr.Validation("product name must not be empty")
		}
		p.Name = trimmed
	}
	if req.SKU != nil {
		p.SKU = strings.TrimSpace(*req.SKU)
	}
	if req.Description != nil {
		p.Description = req.Description
	}
	if req.Unit != nil {
		p.Unit = strings.TrimSpace(*req.Unit)
	}
	if req.UnitPrice != nil {
		p.UnitPrice = *req.UnitPrice
	}
	if req.GSTRate != nil {
		p.GSTRate = *req.GSTRate
	}
	if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = time.Now()

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, err
	}
	return buildProductResponse(p), nil
}

// DeleteProduct removes a product if it is not referenced by quotations.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteProduct(ctx, id)
}

// GetProduct retrieves a single product.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*transport.ProductResponse, error) {
	p, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildProductResponse(p), nil
}

// ListProducts retrieves products with filtering and pagination.
func (s *Service) ListProducts(ctx context.Context, req transport.ListProductsRequest) (*transport.ProductListResponse, error) {
	params := repository.ListProductsParams{
		Search:     req.Search,
		ActiveOnly: req.ActiveOnly,
		Page:       max(req.Page, 1),
		PageSize:   clampPageSize(req.PageSize),
	}

	if req.CategoryID != "" {
		parsed, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, apperr.BadRequest("invalid categoryId format")
		}
		params.CategoryID = &parsed
	}

	items, total, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.ProductResponse, len(items))
	for i := range items {
		responses[i] = *buildProductResponse(&items[i])
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return &transport.ProductListResponse{
		Items:      responses,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// CreateCategory creates a product category.
func (s *Service) CreateCategory(ctx context.Context, req transport.CreateCategoryRequest) (*transport.CategoryResponse, error) {
	c := repository.Category{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(req.Name),
		CreatedAt: time.Now(),
	}
	if err := s.repo.CreateCategory(ctx, &c); err != nil {
		return nil, err
	}
	return &transport.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}, nil
}

// DeleteCategory removes a category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteCategory(ctx, id)
}

// ListCategories retrieves all categories.
func (s *Service) ListCategories(ctx context.Context) ([]transport.CategoryResponse, error) {
	items, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.CategoryResponse, len(items))
	for i, c := range items {
		responses[i] = transport.CategoryResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt}
	}
	return responses, nil
}

func buildProductResponse(p *repository.Product) *transport.ProductResponse {
	return &transport.ProductResponse{
		ID:          p.ID,
		CategoryID:  p.CategoryID,
		Name:        p.Name,
		SKU:         p.SKU,
		Description: p.Description,
		Unit:        p.Unit,
		UnitPrice:   p.UnitPrice,
		GSTRate:     p.GSTRate,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func clampPageSize(size int) int {
	if size < 1 || size > 100 {
		return 50
	}
	return size
}

package service

import (
	"context"
	"strings"
	"time"

	"tradequote_backend/internal/customers/repository"
	"tradequote_backend/internal/customers/transport"
	"tradequote_backend/platform/apperr"
	"tradequote_backend/platform/phone"

	"github.com/google/uuid"
)

// Service provides business logic for customers.
type Service struct {
	repo repository.Repository
}

// New creates a new customer service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create creates a customer.
func (s *Service) Create(ctx context.Context, req transport.CreateCustomerRequest) (*transport.CustomerResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("customer name must not be empty")
	}

	now := time.Now()
	c := repository.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     normalizeOptional(req.Email),
		Phone:     normalizePhone(req.Phone),
		Address:   normalizeOptional(req.Address),
		GSTNumber: normalizeOptional(req.GSTNumber),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &c); err != nil {
		return nil, err
	}
	return buildResponse(&c), nil
}

// Update applies present fields to an existing customer. A present empty
// string clears the stored value; this is the explicit-edit path, distinct
// from the merge semantics used during quotation creation.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateCustomerRequest) (*transport.CustomerResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("customer name must not be empty")
		}
		c.Name = name
	}
	if req.Email != nil {
		c.Email = normalizeOptional(req.Email)
	}
	if req.Phone != nil {
		c.Phone = normalizePhone(req.Phone)
	}
	if req.Address != nil {
		c.Address = normalizeOptional(req.Address)
	}
	if req.GSTNumber != nil {
		c.GSTNumber = normalizeOptional(req.GSTNumber)
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return buildResponse(c), nil
}

// Delete removes a customer that owns no quotations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// GetByID retrieves a single customer.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.CustomerResponse, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildResponse(c), nil
}

// List retrieves customers with search and pagination.
func (s *Service) List(ctx context.Context, req transport.ListCustomersRequest) (*transport.CustomerListResponse, error) {
	params := repository.ListParams{
		Search:   req.Search,
		Page:     max(req.Page, 1),
		PageSize: clampPageSize(req.PageSize),
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	responses := make([]transport.CustomerResponse, len(items))
	for i := range items {
		responses[i] = *buildResponse(&items[i])
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return &transport.CustomerListResponse{
		Items:      responses,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

func buildResponse(c *repository.Customer) *transport.CustomerResponse {
	return &transport.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		GSTNumber: c.GSTNumber,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// normalizeOptional trims the value and maps empty strings to NULL.
func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizePhone(v *string) *string {
	normalized := normalizeOptional(v)
	if normalized == nil {
		return nil
	}
	e164 := phone.NormalizeE164(*normalized)
	return &e164
}

func clampPageSize(size int) int {
	if size < 1 || size > 100 {
		return 50
	}
	return size
}

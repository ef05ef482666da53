package service

import (
	"context"
	"strings"
	"time"

	"tradequote_backend/internal/businessnames/repository"
	"tradequote_backend/internal/businessnames/transport"
	"tradequote_backend/internal/events"
	"tradequote_backend/platform/apperr"
	"tradequote_backend/platform/phone"

	"github.com/google/uuid"
)

// Service provides business logic for seller identities.
type Service struct {
	repo repository.Repository
	bus  events.Bus // optional — nil means no event publishing
}

// New creates a new business names service.
func New(repo repository.Repository) *Service {
	return &Service{repo: repo}
}

// SetEventBus injects the event bus (set after construction by the composition root).
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// Create creates a business name. Creating the first default or an explicit
// default clears any other default flag atomically.
func (s *Service) Create(ctx context.Context, req transport.CreateBusinessNameRequest) (*transport.BusinessNameResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.Validation("business name must not be empty")
	}

	now := time.Now()
	b := repository.BusinessName{
		ID:        uuid.New(),
		Name:      name,
		Address:   normalizeOptional(req.Address),
		Phone:     normalizePhone(req.Phone),
		Email:     normalizeOptional(req.Email),
		GSTNumber: normalizeOptional(req.GSTNumber),
		IsDefault: req.IsDefault,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, &b); err != nil {
		return nil, err
	}

	if b.IsDefault {
		s.publishDefaultChanged(ctx, b.ID, b.Name)
	}
	return buildResponse(&b), nil
}

// Update applies present fields. Setting isDefault true flips the default
// atomically; setting it false simply clears this record's flag (the system
// may legitimately have zero defaults).
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateBusinessNameRequest) (*transport.BusinessNameResponse, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.Validation("business name must not be empty")
		}
		b.Name = name
	}
	if req.Address != nil {
		b.Address = normalizeOptional(req.Address)
	}
	if req.Phone != nil {
		b.Phone = normalizePhone(req.Phone)
	}
	if req.Email != nil {
		b.Email = normalizeOptional(req.Email)
	}
	if req.GSTNumber != nil {
		b.GSTNumber = normalizeOptional(req.GSTNumber)
	}

	becameDefault := false
	if req.IsDefault != nil {
		becameDefault = *req.IsDefault && !b.IsDefault
		b.IsDefault = *req.IsDefault
	}
	b.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, err
	}

	if becameDefault {
		s.publishDefaultChanged(ctx, b.ID, b.Name)
	}
	return buildResponse(b), nil
}

// SetDefault makes the target the sole default identity.
func (s *Service) SetDefault(ctx context.Context, id uuid.UUID) (*transport.BusinessNameResponse, error) {
	if err := s.repo.SetDefault(ctx, id); err != nil {
		return nil, err
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publishDefaultChanged(ctx, b.ID, b.Name)
	return buildResponse(b), nil
}

// Delete removes an unreferenced business name, or deactivates one that is
// referenced by quotations.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (*transport.DeleteBusinessNameResponse, error) {
	deactivated, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	status := "deleted"
	if deactivated {
		status = "deactivated"
	}
	return &transport.DeleteBusinessNameResponse{Status: status}, nil
}

// GetByID retrieves a single business name.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.BusinessNameResponse, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildResponse(b), nil
}

// List retrieves all business names.
func (s *Service) List(ctx context.Context) ([]transport.BusinessNameResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]transport.BusinessNameResponse, len(items))
	for i := range items {
		responses[i] = *buildResponse(&items[i])
	}
	return responses, nil
}

func (s *Service) publishDefaultChanged(ctx context.Context, id uuid.UUID, name string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.BusinessNameDefaultChanged{
		BaseEvent:      events.NewBaseEvent(),
		BusinessNameID: id,
		Name:           name,
	})
}

func buildResponse(b *repository.BusinessName) *transport.BusinessNameResponse {
	return &transport.BusinessNameResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		Phone:     b.Phone,
		Email:     b.Email,
		GSTNumber: b.GSTNumber,
		IsDefault: b.IsDefault,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

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

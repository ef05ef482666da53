package service

import (
	"context"
	"math"
	"strings"

	"tradequote_backend/internal/events"
	"tradequote_backend/internal/quotations/repository"
	"tradequote_backend/internal/quotations/transport"
	"tradequote_backend/platform/apperr"
	"tradequote_backend/platform/phone"

	"github.com/google/uuid"
)

// amountEpsilon is the tolerance for caller-supplied monetary arithmetic.
// Mismatches at or beyond it are rejected, never recomputed.
const amountEpsilon = 0.01

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogProduct is the product data copied onto a catalog line item.
type CatalogProduct struct {
	ID          uuid.UUID
	Name        string
	Unit        string
	Description *string
}

// CatalogReader resolves product references at quotation time.
type CatalogReader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*CatalogProduct, error)
}

// IdentityReader checks that a seller identity exists.
type IdentityReader interface {
	BusinessNameExists(ctx context.Context, id uuid.UUID) error
}

// Service provides business logic for quotations.
type Service struct {
	store      repository.Store
	catalog    CatalogReader
	identities IdentityReader
	bus        events.Bus // optional — nil means no event publishing
}

// New creates a new quotation service.
func New(store repository.Store, catalog CatalogReader, identities IdentityReader) *Service {
	return &Service{store: store, catalog: catalog, identities: identities}
}

// SetEventBus injects the event bus (set after construction by the composition root).
func (s *Service) SetEventBus(bus events.Bus) {
	s.bus = bus
}

// Create validates and persists a new quotation. The initial status is always
// DRAFT regardless of any status the caller may have supplied.
func (s *Service) Create(ctx context.Context, req transport.CreateQuotationRequest) (*transport.QuotationResponse, error) {
	spec, err := s.buildCustomerSpec(req)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateTotals(req); err != nil {
		return nil, err
	}
	if err := s.checkBusinessName(ctx, req.BusinessNameID); err != nil {
		return nil, err
	}

	agg, err := s.store.Create(ctx, repository.CreateParams{
		ID:             uuid.New(),
		Customer:       spec,
		BusinessNameID: req.BusinessNameID,
		Title:          normalizeOptional(req.Title),
		Description:    normalizeOptional(req.Description),
		Notes:          normalizeOptional(req.Notes),
		Subtotal:       req.Subtotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
		Status:         string(transport.StatusDraft),
		ValidUntil:     req.ValidUntil,
		Items:          items,
	})
	if err != nil {
		return nil, err
	}

	s.publishCreated(ctx, agg)
	return buildResponse(agg), nil
}

// Update validates and replaces a quotation's full state. Items are replaced
// wholesale; the quotation number and status are preserved.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateQuotationRequest) (*transport.QuotationResponse, error) {
	spec, err := s.buildCustomerSpec(req)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := validateTotals(req); err != nil {
		return nil, err
	}
	if err := s.checkBusinessName(ctx, req.BusinessNameID); err != nil {
		return nil, err
	}

	agg, err := s.store.Update(ctx, id, repository.UpdateParams{
		Customer:       spec,
		BusinessNameID: req.BusinessNameID,
		Title:          normalizeOptional(req.Title),
		Description:    normalizeOptional(req.Description),
		Notes:          normalizeOptional(req.Notes),
		Subtotal:       req.Subtotal,
		TaxRate:        req.TaxRate,
		TaxAmount:      req.TaxAmount,
		TotalAmount:    req.TotalAmount,
		ValidUntil:     req.ValidUntil,
		Items:          items,
	})
	if err != nil {
		return nil, err
	}
	return buildResponse(agg), nil
}

// UpdateStatus moves a quotation to any of the known statuses. Every pair of
// known statuses is a legal transition; only unknown literals are rejected.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status transport.QuotationStatus) (*transport.QuotationResponse, error) {
	if !status.Valid() {
		return nil, apperr.Validation("unknown quotation status: " + string(status))
	}

	agg, oldStatus, err := s.store.UpdateStatus(ctx, id, string(status))
	if err != nil {
		return nil, err
	}

	if oldStatus != string(status) {
		s.publishStatusChanged(ctx, agg, oldStatus)
	}
	return buildResponse(agg), nil
}

// GetByID retrieves a single quotation aggregate.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*transport.QuotationResponse, error) {
	agg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return buildResponse(agg), nil
}

// List retrieves a filtered, paginated page of quotations.
func (s *Service) List(ctx context.Context, req transport.ListQuotationsRequest) (*transport.QuotationListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := clampPageSize(req.PageSize)

	params := repository.ListParams{
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}
	if req.Status != "" {
		params.Status = &req.Status
	}
	if search := strings.TrimSpace(req.Search); search != "" {
		params.Search = &search
	}

	result, err := s.store.List(ctx, params)
	if err != nil {
		return nil, err
	}

	items := make([]transport.QuotationResponse, len(result.Items))
	for i := range result.Items {
		items[i] = *buildResponse(&result.Items[i])
	}

	totalPages := (result.Total + pageSize - 1) / pageSize
	return &transport.QuotationListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Delete removes a quotation and its items.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

// buildCustomerSpec validates the customer payload and picks the resolve
// mode: an explicit selection wins, saveCustomer opts into identity reuse,
// and everything else gets a standalone record.
func (s *Service) buildCustomerSpec(req transport.CreateQuotationRequest) (repository.CustomerSpec, error) {
	name := strings.TrimSpace(req.CustomerInfo.Name)
	if name == "" && req.SelectedCustomerID == nil {
		return repository.CustomerSpec{}, apperr.Validation("customer name must not be empty")
	}

	input := repository.CustomerInput{
		Name:      name,
		Email:     normalizeOptional(req.CustomerInfo.Email),
		Phone:     normalizePhone(req.CustomerInfo.Phone),
		Address:   normalizeOptional(req.CustomerInfo.Address),
		GSTNumber: normalizeOptional(req.CustomerInfo.GSTNumber),
	}

	switch {
	case req.SelectedCustomerID != nil:
		return repository.CustomerSpec{
			Mode:       repository.ResolveUseExisting,
			ExistingID: *req.SelectedCustomerID,
			Input:      input,
		}, nil
	case req.SaveCustomer:
		return repository.CustomerSpec{Mode: repository.ResolveMergeByIdentity, Input: input}, nil
	default:
		return repository.CustomerSpec{Mode: repository.ResolveAlwaysCreate, Input: input}, nil
	}
}

// buildItems validates every line and materializes the rows to insert.
// Catalog lines get the product's current name, unit and description copied
// in so later product edits never rewrite history.
func (s *Service) buildItems(ctx context.Context, req transport.CreateQuotationRequest) ([]repository.QuotationItem, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("at least one line item is required")
	}

	items := make([]repository.QuotationItem, 0, len(req.Items))
	for i, in := range req.Items {
		if in.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}
		if in.UnitPrice < 0 {
			return nil, apperr.Validation("item unit price must not be negative")
		}
		if math.Abs(in.LineTotal-in.Quantity*in.UnitPrice) >= amountEpsilon {
			return nil, apperr.Validation("item line total does not match quantity times unit price")
		}

		item := repository.QuotationItem{
			ID:        uuid.New(),
			IsCustom:  in.IsCustom,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
			LineTotal: in.LineTotal,
			SortOrder: i,
		}

		if in.IsCustom {
			customName := normalizeOptional(in.CustomName)
			if in.ProductID != nil || customName == nil {
				return nil, apperr.Validation("custom items require a custom name and no product reference")
			}
			item.CustomName = customName
			item.CustomUnit = normalizeOptional(in.CustomUnit)
			item.CustomDescription = normalizeOptional(in.CustomDescription)
		} else {
			if in.ProductID == nil || normalizeOptional(in.CustomName) != nil {
				return nil, apperr.Validation("catalog items require a product reference and no custom name")
			}
			product, err := s.catalog.GetProduct(ctx, *in.ProductID)
			if err != nil {
				return nil, err
			}
			item.ProductID = in.ProductID
			item.ProductName = &product.Name
			item.ProductUnit = &product.Unit
			item.ProductDescription = product.Description
		}

		items = append(items, item)
	}
	return items, nil
}

// validateTotals checks the caller-supplied monetary identities. Amounts are
// never recomputed on the caller's behalf.
func validateTotals(req transport.CreateQuotationRequest) error {
	var lineSum float64
	for _, in := range req.Items {
		lineSum += in.LineTotal
	}
	if math.Abs(req.Subtotal-lineSum) >= amountEpsilon {
		return apperr.Validation("subtotal does not match the sum of line totals")
	}
	if math.Abs(req.TaxAmount-req.Subtotal*req.TaxRate/100) >= amountEpsilon {
		return apperr.Validation("tax amount does not match subtotal and tax rate")
	}
	if math.Abs(req.TotalAmount-(req.Subtotal+req.TaxAmount)) >= amountEpsilon {
		return apperr.Validation("total amount does not match subtotal plus tax")
	}
	return nil
}

func (s *Service) checkBusinessName(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	return s.identities.BusinessNameExists(ctx, *id)
}

func (s *Service) publishCreated(ctx context.Context, agg *repository.Aggregate) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.QuotationCreated{
		BaseEvent:       events.NewBaseEvent(),
		QuotationID:     agg.Quotation.ID,
		QuotationNumber: agg.Quotation.QuotationNumber,
		CustomerID:      agg.Quotation.CustomerID,
		TotalAmount:     agg.Quotation.TotalAmount,
	})
}

func (s *Service) publishStatusChanged(ctx context.Context, agg *repository.Aggregate, oldStatus string) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, events.QuotationStatusChanged{
		BaseEvent:       events.NewBaseEvent(),
		QuotationID:     agg.Quotation.ID,
		QuotationNumber: agg.Quotation.QuotationNumber,
		OldStatus:       oldStatus,
		NewStatus:       agg.Quotation.Status,
	})
}

func buildResponse(agg *repository.Aggregate) *transport.QuotationResponse {
	items := make([]transport.QuotationItemResponse, len(agg.Items))
	for i, item := range agg.Items {
		items[i] = buildItemResponse(item)
	}

	resp := &transport.QuotationResponse{
		ID:              agg.Quotation.ID,
		QuotationNumber: agg.Quotation.QuotationNumber,
		Customer: transport.CustomerResponse{
			ID:        agg.Customer.ID,
			Name:      agg.Customer.Name,
			Email:     agg.Customer.Email,
			Phone:     agg.Customer.Phone,
			Address:   agg.Customer.Address,
			GSTNumber: agg.Customer.GSTNumber,
		},
		Title:       agg.Quotation.Title,
		Description: agg.Quotation.Description,
		Notes:       agg.Quotation.Notes,
		Subtotal:    agg.Quotation.Subtotal,
		TaxRate:     agg.Quotation.TaxRate,
		TaxAmount:   agg.Quotation.TaxAmount,
		TotalAmount: agg.Quotation.TotalAmount,
		Status:      transport.QuotationStatus(agg.Quotation.Status),
		ValidUntil:  agg.Quotation.ValidUntil,
		Items:       items,
		CreatedAt:   agg.Quotation.CreatedAt,
		UpdatedAt:   agg.Quotation.UpdatedAt,
	}

	if agg.BusinessName != nil {
		resp.BusinessName = &transport.BusinessNameResponse{
			ID:        agg.BusinessName.ID,
			Name:      agg.BusinessName.Name,
			Address:   agg.BusinessName.Address,
			Phone:     agg.BusinessName.Phone,
			Email:     agg.BusinessName.Email,
			GSTNumber: agg.BusinessName.GSTNumber,
			IsDefault: agg.BusinessName.IsDefault,
			IsActive:  agg.BusinessName.IsActive,
		}
	}
	return resp
}

// buildItemResponse flattens the copied-product and custom columns into the
// single name/unit/description the API exposes.
func buildItemResponse(item repository.QuotationItem) transport.QuotationItemResponse {
	resp := transport.QuotationItemResponse{
		ID:        item.ID,
		IsCustom:  item.IsCustom,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		LineTotal: item.LineTotal,
		SortOrder: item.SortOrder,
	}
	if item.IsCustom {
		if item.CustomName != nil {
			resp.Name = *item.CustomName
		}
		if item.CustomUnit != nil {
			resp.Unit = *item.CustomUnit
		} else {
			resp.Unit = "pcs"
		}
		resp.Description = item.CustomDescription
	} else {
		if item.ProductName != nil {
			resp.Name = *item.ProductName
		}
		if item.ProductUnit != nil {
			resp.Unit = *item.ProductUnit
		}
		resp.Description = item.ProductDescription
	}
	return resp
}

func clampPageSize(size int) int {
	if size < 1 {
		return defaultPageSize
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
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

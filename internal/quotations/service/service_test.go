package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tradequote_backend/internal/events"
	"tradequote_backend/internal/quotations/repository"
	"tradequote_backend/internal/quotations/transport"
	"tradequote_backend/platform/apperr"

	"github.com/google/uuid"
)

// fakeStore keeps aggregates in memory and mimics the store's customer
// resolution and number allocation closely enough for service-level tests.
type fakeStore struct {
	aggregates map[uuid.UUID]*repository.Aggregate
	customers  map[uuid.UUID]repository.Customer
	byIdentity map[string]uuid.UUID
	nextNumber int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		aggregates: make(map[uuid.UUID]*repository.Aggregate),
		customers:  make(map[uuid.UUID]repository.Customer),
		byIdentity: make(map[string]uuid.UUID),
	}
}

func (f *fakeStore) resolve(spec repository.CustomerSpec) (repository.Customer, error) {
	switch spec.Mode {
	case repository.ResolveUseExisting:
		c, ok := f.customers[spec.ExistingID]
		if !ok {
			return repository.Customer{}, apperr.NotFound("customer not found")
		}
		return c, nil
	case repository.ResolveMergeByIdentity:
		key := spec.Input.Name
		if spec.Input.Email != nil {
			key += "|" + *spec.Input.Email
		}
		if id, ok := f.byIdentity[key]; ok {
			merged := repository.MergeContact(f.customers[id], spec.Input)
			f.customers[id] = merged
			return merged, nil
		}
		c := f.newCustomer(spec.Input)
		f.byIdentity[key] = c.ID
		return c, nil
	default:
		return f.newCustomer(spec.Input), nil
	}
}

func (f *fakeStore) newCustomer(in repository.CustomerInput) repository.Customer {
	c := repository.Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		GSTNumber: in.GSTNumber,
	}
	f.customers[c.ID] = c
	return c
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateParams) (*repository.Aggregate, error) {
	customer, err := f.resolve(params.Customer)
	if err != nil {
		return nil, err
	}
	f.nextNumber++
	agg := &repository.Aggregate{
		Quotation: repository.Quotation{
			ID:              params.ID,
			QuotationNumber: fmt.Sprintf("QUO-20260824-%03d", f.nextNumber),
			CustomerID:      customer.ID,
			BusinessNameID:  params.BusinessNameID,
			Title:           params.Title,
			Subtotal:        params.Subtotal,
			TaxRate:         params.TaxRate,
			TaxAmount:       params.TaxAmount,
			TotalAmount:     params.TotalAmount,
			Status:          params.Status,
			ValidUntil:      params.ValidUntil,
			CreatedAt:       time.Now(),
			UpdatedAt:       time.Now(),
		},
		Customer: customer,
		Items:    params.Items,
	}
	f.aggregates[params.ID] = agg
	return agg, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, params repository.UpdateParams) (*repository.Aggregate, error) {
	agg, ok := f.aggregates[id]
	if !ok {
		return nil, apperr.NotFound("quotation not found")
	}
	customer, err := f.resolve(params.Customer)
	if err != nil {
		return nil, err
	}
	agg.Customer = customer
	agg.Quotation.CustomerID = customer.ID
	agg.Quotation.Subtotal = params.Subtotal
	agg.Quotation.TaxRate = params.TaxRate
	agg.Quotation.TaxAmount = params.TaxAmount
	agg.Quotation.TotalAmount = params.TotalAmount
	agg.Items = params.Items
	return agg, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*repository.Aggregate, string, error) {
	agg, ok := f.aggregates[id]
	if !ok {
		return nil, "", apperr.NotFound("quotation not found")
	}
	prior := agg.Quotation.Status
	agg.Quotation.Status = status
	return agg, prior, nil
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*repository.Aggregate, error) {
	agg, ok := f.aggregates[id]
	if !ok {
		return nil, apperr.NotFound("quotation not found")
	}
	return agg, nil
}

func (f *fakeStore) List(_ context.Context, _ repository.ListParams) (*repository.ListResult, error) {
	result := &repository.ListResult{}
	for _, agg := range f.aggregates {
		result.Items = append(result.Items, *agg)
	}
	result.Total = len(result.Items)
	return result, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.aggregates[id]; !ok {
		return apperr.NotFound("quotation not found")
	}
	delete(f.aggregates, id)
	return nil
}

type fakeCatalog struct {
	products map[uuid.UUID]CatalogProduct
}

func (f *fakeCatalog) GetProduct(_ context.Context, id uuid.UUID) (*CatalogProduct, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.NotFound("product not found")
	}
	return &p, nil
}

type fakeIdentities struct {
	known map[uuid.UUID]bool
}

func (f *fakeIdentities) BusinessNameExists(_ context.Context, id uuid.UUID) error {
	if !f.known[id] {
		return apperr.NotFound("business name not found")
	}
	return nil
}

// fakeBus records published events synchronously.
type fakeBus struct {
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeBus) Subscribe(string, events.Handler) {}

func newTestService() (*Service, *fakeStore, *fakeCatalog, *fakeIdentities) {
	store := newFakeStore()
	catalog := &fakeCatalog{products: make(map[uuid.UUID]CatalogProduct)}
	identities := &fakeIdentities{known: make(map[uuid.UUID]bool)}
	return New(store, catalog, identities), store, catalog, identities
}

func strp(s string) *string { return &s }

func validRequest() transport.CreateQuotationRequest {
	return transport.CreateQuotationRequest{
		CustomerInfo: transport.CustomerInfo{Name: "Sharma Traders"},
		Items: []transport.QuotationItemRequest{
			{
				IsCustom:   true,
				CustomName: strp("Transport charges"),
				Quantity:   2,
				UnitPrice:  500,
				LineTotal:  1000,
			},
		},
		Subtotal:    1000,
		TaxRate:     18,
		TaxAmount:   180,
		TotalAmount: 1180,
	}
}

func TestCreate_InitialStatusIsAlwaysDraft(t *testing.T) {
	svc, _, _, _ := newTestService()

	resp, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != transport.StatusDraft {
		t.Fatalf("expected status DRAFT, got %s", resp.Status)
	}
	if resp.QuotationNumber == "" {
		t.Fatal("expected an allocated quotation number")
	}
}

func TestCreate_RejectsEmptyItems(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.Items = nil

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsLineTotalMismatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.Items[0].LineTotal = 1100 // 2 x 500 = 1000

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsSubtotalMismatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.Subtotal = 900 // the single line totals 1000
	req.TaxAmount = 162
	req.TotalAmount = 1062

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_AcceptsRoundingWithinEpsilon(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := transport.CreateQuotationRequest{
		CustomerInfo: transport.CustomerInfo{Name: "Sharma Traders"},
		Items: []transport.QuotationItemRequest{
			{IsCustom: true, CustomName: strp("Wire"), Quantity: 3, UnitPrice: 33.33, LineTotal: 99.99},
		},
		Subtotal:    99.99,
		TaxRate:     18,
		TaxAmount:   18.00, // exact is 17.9982
		TotalAmount: 117.99,
	}

	if _, err := svc.Create(context.Background(), req); err != nil {
		t.Fatalf("expected sub-epsilon rounding to pass, got %v", err)
	}
}

func TestCreate_RejectsTaxAmountMismatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.TaxAmount = 200 // 18% of 1000 is 180
	req.TotalAmount = 1200

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsTotalMismatch(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.TotalAmount = 1300

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsCustomItemWithProductReference(t *testing.T) {
	svc, _, catalog, _ := newTestService()

	productID := uuid.New()
	catalog.products[productID] = CatalogProduct{ID: productID, Name: "Cable", Unit: "m"}

	req := validRequest()
	req.Items[0].ProductID = &productID

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_RejectsCatalogItemWithoutProductReference(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.Items[0].IsCustom = false
	req.Items[0].CustomName = nil

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreate_UnknownProductIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	missing := uuid.New()
	req := validRequest()
	req.Items[0].IsCustom = false
	req.Items[0].CustomName = nil
	req.Items[0].ProductID = &missing

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreate_CopiesProductDetailsOntoItem(t *testing.T) {
	svc, store, catalog, _ := newTestService()

	productID := uuid.New()
	catalog.products[productID] = CatalogProduct{
		ID:          productID,
		Name:        "Copper Cable 2.5mm",
		Unit:        "m",
		Description: strp("FR insulated"),
	}

	req := validRequest()
	req.Items[0] = transport.QuotationItemRequest{
		ProductID: &productID,
		Quantity:  10,
		UnitPrice: 100,
		LineTotal: 1000,
	}

	resp, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	agg := store.aggregates[resp.ID]
	if len(agg.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(agg.Items))
	}
	item := agg.Items[0]
	if item.ProductName == nil || *item.ProductName != "Copper Cable 2.5mm" {
		t.Fatalf("expected product name copied onto item, got %v", item.ProductName)
	}
	if item.ProductUnit == nil || *item.ProductUnit != "m" {
		t.Fatalf("expected product unit copied onto item, got %v", item.ProductUnit)
	}
}

func TestCreate_UnknownBusinessNameIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	missing := uuid.New()
	req := validRequest()
	req.BusinessNameID = &missing

	_, err := svc.Create(context.Background(), req)
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestCreate_SaveCustomerReusesIdentity(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()
	req.SaveCustomer = true
	req.CustomerInfo.Email = strp("info@sharma.in")

	first, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Customer.ID != second.Customer.ID {
		t.Fatalf("expected same customer for same identity, got %s and %s", first.Customer.ID, second.Customer.ID)
	}
}

func TestCreate_WithoutSaveCustomerAlwaysCreatesNewRecord(t *testing.T) {
	svc, _, _, _ := newTestService()

	req := validRequest()

	first, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Customer.ID == second.Customer.ID {
		t.Fatal("expected distinct customers when saveCustomer is false")
	}
}

func TestUpdate_ReplacesItemsWholesale(t *testing.T) {
	svc, store, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := validRequest()
	req.Items = []transport.QuotationItemRequest{
		{IsCustom: true, CustomName: strp("Labour"), Quantity: 1, UnitPrice: 300, LineTotal: 300},
		{IsCustom: true, CustomName: strp("Fittings"), Quantity: 2, UnitPrice: 350, LineTotal: 700},
	}
	req.Subtotal = 1000

	resp, err := svc.Update(context.Background(), created.ID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Fatalf("expected 2 items after replacement, got %d", len(resp.Items))
	}

	agg := store.aggregates[created.ID]
	for _, item := range agg.Items {
		if item.CustomName != nil && *item.CustomName == "Transport charges" {
			t.Fatal("old item survived the replacement")
		}
	}
}

func TestUpdate_UnknownQuotationIsNotFound(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Update(context.Background(), uuid.New(), validRequest())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateStatus_AnyKnownTransitionIsLegal(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Including moves backwards out of terminal-looking states.
	for _, status := range []transport.QuotationStatus{
		transport.StatusSent,
		transport.StatusAccepted,
		transport.StatusDraft,
		transport.StatusExpired,
		transport.StatusRejected,
	} {
		resp, err := svc.UpdateStatus(context.Background(), created.ID, status)
		if err != nil {
			t.Fatalf("transition to %s failed: %v", status, err)
		}
		if resp.Status != status {
			t.Fatalf("expected status %s, got %s", status, resp.Status)
		}
	}
}

func TestUpdateStatus_EventCarriesStatusFromTheWrite(t *testing.T) {
	svc, _, _, _ := newTestService()
	bus := &fakeBus{}
	svc.SetEventBus(bus)

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.published = nil

	if _, err := svc.UpdateStatus(context.Background(), created.ID, transport.StatusSent); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 1 {
		t.Fatalf("expected 1 event, got %d", len(bus.published))
	}
	changed, ok := bus.published[0].(events.QuotationStatusChanged)
	if !ok {
		t.Fatalf("expected a status changed event, got %T", bus.published[0])
	}
	if changed.OldStatus != "DRAFT" || changed.NewStatus != "SENT" {
		t.Fatalf("expected DRAFT to SENT, got %s to %s", changed.OldStatus, changed.NewStatus)
	}
}

func TestUpdateStatus_NoEventWhenStatusUnchanged(t *testing.T) {
	svc, _, _, _ := newTestService()
	bus := &fakeBus{}
	svc.SetEventBus(bus)

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bus.published = nil

	if _, err := svc.UpdateStatus(context.Background(), created.ID, transport.StatusDraft); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bus.published) != 0 {
		t.Fatalf("expected no events for a no-op transition, got %d", len(bus.published))
	}
}

func TestUpdateStatus_RejectsUnknownLiteral(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.UpdateStatus(context.Background(), created.ID, transport.QuotationStatus("CANCELLED"))
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for unknown literal, got %v", err)
	}

	current, err := svc.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current.Status != transport.StatusDraft {
		t.Fatalf("rejected transition must not change stored status, got %s", current.Status)
	}
}

func TestDelete_RemovesQuotation(t *testing.T) {
	svc, _, _, _ := newTestService()

	created, err := svc.Create(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), created.ID); apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

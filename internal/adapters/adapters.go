// Package adapters bridges the quotation service's read interfaces to the
// sibling modules' repositories, keeping the domain packages decoupled from
// each other.
package adapters

import (
	"context"

	bnrepo "tradequote_backend/internal/businessnames/repository"
	catalogrepo "tradequote_backend/internal/catalog/repository"
	"tradequote_backend/internal/quotations/service"

	"github.com/google/uuid"
)

// CatalogReader adapts the catalog repository to the quotation service.
type CatalogReader struct {
	repo catalogrepo.Repository
}

// NewCatalogReader creates a catalog reader backed by the catalog module.
func NewCatalogReader(repo catalogrepo.Repository) *CatalogReader {
	return &CatalogReader{repo: repo}
}

// GetProduct resolves a product reference for a quotation line item.
func (a *CatalogReader) GetProduct(ctx context.Context, id uuid.UUID) (*service.CatalogProduct, error) {
	p, err := a.repo.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &service.CatalogProduct{
		ID:          p.ID,
		Name:        p.Name,
		Unit:        p.Unit,
		Description: p.Description,
	}, nil
}

// IdentityReader adapts the business names repository to the quotation service.
type IdentityReader struct {
	repo bnrepo.Repository
}

// NewIdentityReader creates an identity reader backed by the business names module.
func NewIdentityReader(repo bnrepo.Repository) *IdentityReader {
	return &IdentityReader{repo: repo}
}

// BusinessNameExists returns NotFound when the identity does not exist.
func (a *IdentityReader) BusinessNameExists(ctx context.Context, id uuid.UUID) error {
	_, err := a.repo.GetByID(ctx, id)
	return err
}

// Compile-time checks against the service interfaces.
var (
	_ service.CatalogReader  = (*CatalogReader)(nil)
	_ service.IdentityReader = (*IdentityReader)(nil)
)

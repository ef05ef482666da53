// Package catalog provides the product catalog domain module.
package catalog

import (
	"tradequote_backend/internal/catalog/handler"
	"tradequote_backend/internal/catalog/repository"
	"tradequote_backend/internal/catalog/service"
	apphttp "tradequote_backend/internal/http"
	"tradequote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the catalog domain module.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
}

// NewModule creates a new catalog module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		repo:    repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "catalog"
}

// Repository returns the repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/products"), ctx.V1.Group("/categories"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

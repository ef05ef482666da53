// Package customers provides the customer domain module.
package customers

import (
	"tradequote_backend/internal/customers/handler"
	"tradequote_backend/internal/customers/repository"
	"tradequote_backend/internal/customers/service"
	apphttp "tradequote_backend/internal/http"
	"tradequote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the customers domain module.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
}

// NewModule creates a new customers module with all dependencies wired.
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
	return "customers"
}

// Repository returns the repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/customers"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

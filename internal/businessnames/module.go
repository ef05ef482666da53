// Package businessnames provides the seller identity ("business name") domain module.
package businessnames

import (
	"tradequote_backend/internal/businessnames/handler"
	"tradequote_backend/internal/businessnames/repository"
	"tradequote_backend/internal/businessnames/service"
	"tradequote_backend/internal/events"
	apphttp "tradequote_backend/internal/http"
	"tradequote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the business names domain module.
type Module struct {
	handler *handler.Handler
	repo    repository.Repository
}

// NewModule creates a new business names module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		repo:    repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "businessnames"
}

// Repository returns the repository for cross-module adapters.
func (m *Module) Repository() repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/business-names"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

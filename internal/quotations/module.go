// Package quotations provides the quotation domain module: creation with
// customer resolution and number allocation, item management, GST totals and
// the status lifecycle.
package quotations

import (
	"tradequote_backend/internal/events"
	apphttp "tradequote_backend/internal/http"
	"tradequote_backend/internal/quotations/handler"
	"tradequote_backend/internal/quotations/repository"
	"tradequote_backend/internal/quotations/service"
	"tradequote_backend/platform/logger"
	"tradequote_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotations domain module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates a new quotations module with all dependencies wired.
// The catalog and identity readers come from the sibling modules via
// the adapters package.
func NewModule(pool *pgxpool.Pool, catalog service.CatalogReader, identities service.IdentityReader, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	store := repository.New(pool, log)
	svc := service.New(store, catalog, identities)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotations"
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/quotations"))
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)

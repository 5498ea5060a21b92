package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	apppw "github.com/jhoicas/piecework-api/internal/application/piecework"
	"github.com/jhoicas/piecework-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Catalog   *apppw.CatalogUseCase
	Resolver  *apppw.PriceResolverUseCase
	Accrual   *apppw.AccrualUseCase
	Stats     *apppw.StatsUseCase
	Reports   *apppw.ReportUseCase
	JWTSecret string
	Logger    zerolog.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	managers := RequireRole(jwt.RoleManager, jwt.RoleSuperAdmin)
	anyRole := RequireRole(jwt.RoleDriver, jwt.RoleManager, jwt.RoleSuperAdmin)

	// Categorías
	categoryHandler := NewCategoryHandler(deps.Catalog, deps.Logger)
	categories := api.Group("/categories")
	categories.Get("/", anyRole, categoryHandler.List)
	categories.Post("/", managers, categoryHandler.Create)
	categories.Post("/cleanup", managers, categoryHandler.Cleanup)
	categories.Put("/:id", managers, categoryHandler.Update)
	categories.Delete("/:id", managers, categoryHandler.Delete)

	// Precios
	priceHandler := NewPriceHandler(deps.Catalog, deps.Resolver, deps.Logger)
	api.Get("/warehouses/:warehouseId/prices", anyRole, priceHandler.ListByWarehouse)
	prices := api.Group("/prices")
	prices.Get("/resolve", anyRole, priceHandler.Resolve)
	prices.Put("/", managers, priceHandler.Upsert)
	prices.Put("/batch", managers, priceHandler.BatchUpsert)
	prices.Delete("/:id", managers, priceHandler.Delete)

	// Registros a destajo
	recordHandler := NewRecordHandler(deps.Accrual, deps.Logger)
	records := api.Group("/piecework/records")
	records.Post("/", anyRole, recordHandler.Submit)
	records.Get("/", anyRole, recordHandler.List)
	records.Get("/same-day", anyRole, recordHandler.SameDay)
	records.Get("/:id", anyRole, recordHandler.GetByID)
	records.Post("/:id/accumulate", anyRole, recordHandler.Accumulate)
	records.Put("/:id", managers, recordHandler.Update)
	records.Delete("/:id", managers, recordHandler.Delete)

	// Estadísticas y reportes
	statsHandler := NewStatsHandler(deps.Stats, deps.Reports, deps.Logger)
	api.Get("/piecework/stats", anyRole, statsHandler.Stats)
	reports := api.Group("/piecework/reports", managers)
	reports.Get("/drivers", statsHandler.Drivers)
	reports.Get("/export", statsHandler.Export)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Dispatcher *inventory.Dispatcher
	History    *inventory.HistoryService
	ItemUC     *usecase.ItemUseCase
	CategoryUC *usecase.CategoryUseCase
	JWTSecret  string
	// AdminRoles filtra por el rol del token antes de consultar al actor; vacío no filtra.
	AdminRoles []string
	Logger     zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	admin := func(c *fiber.Ctx) error { return c.Next() }
	if len(deps.AdminRoles) > 0 {
		admin = RequireRole(deps.AdminRoles...)
	}

	// Movements
	movements := protected.Group("/movements")
	movementHandler := NewMovementHandler(deps.Dispatcher, deps.History, deps.Logger)
	movements.Post("/", movementHandler.Register)
	movements.Post("/receipt", movementHandler.Receipt)
	movements.Post("/issue", movementHandler.Issue)
	movements.Post("/adjustment", movementHandler.Adjustment)
	movements.Get("/", movementHandler.History)

	// Items
	items := protected.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.Logger)
	items.Post("/", admin, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/:id", itemHandler.GetByID)
	items.Patch("/:id", admin, itemHandler.Update)
	items.Delete("/:id", admin, itemHandler.Delete)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.Logger)
	categories.Post("/", admin, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Patch("/:id", admin, categoryHandler.Update)
	categories.Delete("/:id", admin, categoryHandler.Delete)
}

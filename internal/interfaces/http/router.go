package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Produccion-api/internal/application/inventory"
	"github.com/jhoicas/Produccion-api/internal/application/production"
)

// RoleAdmin rol con acceso a la reconciliación del libro.
const RoleAdmin = "admin"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Lots      *inventory.LotUseCase
	Stock     *inventory.StockUseCase
	Transfers *inventory.TransferUseCase
	Recipes   *production.RecipeUseCase
	Assembly  *production.AssemblyUseCase
	JWTSecret string
}

// Router registra las rutas de la API. Todas requieren Bearer Token: el sujeto firma los movimientos.
func Router(app *fiber.App, deps RouterDeps) {
	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Lotes
	lots := protected.Group("/lots")
	lotHandler := NewLotHandler(deps.Lots)
	lots.Post("/", lotHandler.Create)
	lots.Get("/", lotHandler.List)
	lots.Get("/:id", lotHandler.GetByID)
	lots.Patch("/:id/active", lotHandler.SetActive)
	lots.Post("/:id/waste", lotHandler.RegisterWaste)
	lots.Post("/:id/debit", lotHandler.Debit)
	lots.Post("/:id/credit", lotHandler.Credit)

	// Inventario y transferencias
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Stock, deps.Transfers)
	inv.Post("/", inventoryHandler.RegisterInitialStock)
	inv.Get("/", inventoryHandler.List)
	inv.Post("/debit", inventoryHandler.Debit)
	inv.Post("/credit", inventoryHandler.Credit)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Get("/reconciliation", RequireRole(RoleAdmin), inventoryHandler.Reconcile)
	protected.Get("/movements", inventoryHandler.Movements)

	// Recetas y producción
	productionHandler := NewProductionHandler(deps.Recipes, deps.Assembly)
	recipes := protected.Group("/recipes")
	recipes.Post("/", productionHandler.DefineRecipe)
	recipes.Get("/", productionHandler.ListRecipes)
	recipes.Get("/requirements/:presentation_id", productionHandler.Requirements)
	recipes.Get("/:id", productionHandler.GetRecipe)

	prod := protected.Group("/production")
	prod.Post("/assemblies", productionHandler.Assemble)
	prod.Post("/runs", productionHandler.Produce)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-cacc/internal/application/auth"
	"github.com/jhoicas/inventario-cacc/internal/application/cart"
	"github.com/jhoicas/inventario-cacc/internal/application/catalog"
	"github.com/jhoicas/inventario-cacc/internal/application/dto"
	"github.com/jhoicas/inventario-cacc/internal/application/inventory"
	"github.com/jhoicas/inventario-cacc/internal/application/order"
	"github.com/jhoicas/inventario-cacc/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	ProductUC   *catalog.ProductUseCase
	CategoryUC  *catalog.CategoryUseCase
	SupplierUC  *catalog.SupplierUseCase
	CustomerUC  *catalog.CustomerUseCase
	InventoryUC *inventory.UseCase
	CartSvc     *cart.Service
	OrderUC     *order.UseCase
	JWTSecret   string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("", AuthMiddleware(deps.JWTSecret))
	admin := RequireRole(entity.RoleAdmin)
	anyRole := RequireRole(entity.RoleAdmin, entity.RoleCliente)

	protected.Get("/auth/me", anyRole, authHandler.Me)

	// Productos: lectura para cualquier rol, escritura solo admin
	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products", anyRole)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Post("/", admin, productHandler.Create)
	products.Put("/:id", admin, productHandler.Update)
	products.Delete("/:id", admin, productHandler.Delete)

	// Categorías: lectura para cualquier rol; proveedores y clientes solo admin
	NewCatalogHandler[dto.CategoryRequest, dto.CategoryResponse](deps.CategoryUC).
		mount(protected.Group("/categories", anyRole), admin)
	NewCatalogHandler[dto.ContactRequest, dto.ContactResponse](deps.SupplierUC).
		mount(protected.Group("/suppliers", admin))
	NewCatalogHandler[dto.ContactRequest, dto.ContactResponse](deps.CustomerUC).
		mount(protected.Group("/customers", admin))

	// Carrito de la sesión
	cartHandler := NewCartHandler(deps.CartSvc)
	cartGroup := protected.Group("/cart", anyRole)
	cartGroup.Get("/", cartHandler.Get)
	cartGroup.Delete("/", cartHandler.Clear)
	cartGroup.Post("/items", cartHandler.AddItem)
	cartGroup.Put("/items/:productId", cartHandler.UpdateItem)
	cartGroup.Delete("/items/:productId", cartHandler.RemoveItem)

	// Pedidos
	orderHandler := NewOrderHandler(deps.OrderUC)
	orders := protected.Group("/orders", anyRole)
	orders.Post("/checkout", orderHandler.Checkout)
	orders.Get("/", orderHandler.Mine)
	orders.Get("/:id", orderHandler.GetByID)

	adminOrders := protected.Group("/admin/orders", admin)
	adminOrders.Get("/", orderHandler.AdminList)
	adminOrders.Patch("/:id/status", orderHandler.SetStatus)

	// Inventario (admin)
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv := protected.Group("/inventory", admin)
	inv.Post("/movements", inventoryHandler.RegisterMovement)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Delete("/movements/:id", inventoryHandler.ReverseMovement)
	inv.Get("/stats", inventoryHandler.Stats)
	inv.Get("/ledger/:productId", inventoryHandler.Ledger)
}

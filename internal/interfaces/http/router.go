package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/punchlist-api/internal/application/auth"
	"github.com/jhoicas/punchlist-api/internal/application/building"
	"github.com/jhoicas/punchlist-api/internal/application/identity"
	"github.com/jhoicas/punchlist-api/internal/application/inventory"
	"github.com/jhoicas/punchlist-api/internal/application/sector"
	"github.com/jhoicas/punchlist-api/internal/application/task"
	"github.com/jhoicas/punchlist-api/internal/application/transfer"
	"github.com/jhoicas/punchlist-api/internal/domain/entity"
	"github.com/jhoicas/punchlist-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	Resolver   ActorResolver
	UserUC     *identity.UserUseCase
	SectorUC   *sector.UseCase
	LedgerUC   *inventory.LedgerUseCase
	TransferUC *transfer.UseCase
	TaskUC     *task.UseCase
	BuildingUC *building.UseCase
	JWTSecret  string
	AppName    string
	Logger     *logger.Logger

	// FilesDir directorio servido en FilesPrefix cuando el storage es local.
	FilesDir    string
	FilesPrefix string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Use(MetricsMiddleware())
	app.Use(RequestLogger(deps.Logger))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if deps.FilesDir != "" && deps.FilesPrefix != "" {
		app.Static(deps.FilesPrefix, deps.FilesDir)
	}

	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.Resolver, deps.Logger))
	protected.Get("/me", authHandler.Me)

	// Inventario
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.LedgerUC, deps.TransferUC)
	inv.Get("/items", RequirePermission(entity.PermInventoryView), inventoryHandler.ListItems)
	inv.Post("/items", RequirePermission(entity.PermInventoryManage), inventoryHandler.CreateItem)
	inv.Put("/items/:id", RequirePermission(entity.PermInventoryManage), inventoryHandler.UpdateItem)
	inv.Post("/items/:id/movements", RequirePermission(entity.PermInventoryManage), inventoryHandler.MoveStock)
	inv.Get("/transfers/pending", RequireSigner(), inventoryHandler.PendingTransfers)
	inv.Post("/movements/:id/attachments", RequireSigner(), inventoryHandler.UploadAttachment)
	inv.Post("/movements/:id/transfer-form", RequireSigner(), inventoryHandler.RegenerateForm)

	// Sectores (listado abierto a cualquier actor; escritura con manage_sectors)
	sectors := protected.Group("/sectors")
	sectorHandler := NewSectorHandler(deps.SectorUC)
	sectors.Get("/", sectorHandler.List)
	sectors.Post("/", RequirePermission(entity.PermManageSectors), sectorHandler.Create)
	sectors.Put("/:id", RequirePermission(entity.PermManageSectors), sectorHandler.Update)
	sectors.Delete("/:id", RequirePermission(entity.PermManageSectors), sectorHandler.Delete)

	// Usuarios
	users := protected.Group("/users", RequirePermission(entity.PermManageUsers))
	userHandler := NewUserHandler(deps.UserUC)
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Create)
	users.Get("/roles", userHandler.Roles)
	users.Put("/:id", userHandler.Update)
	users.Post("/:id/suspend", userHandler.Suspend)
	users.Post("/:id/unsuspend", userHandler.Unsuspend)
	users.Get("/:id/permissions", userHandler.Permissions)
	users.Put("/:id/permissions", userHandler.SavePermissions)

	// Tareas
	tasks := protected.Group("/tasks")
	taskHandler := NewTaskHandler(deps.TaskUC)
	tasks.Get("/", RequirePermission(entity.PermViewTasks), taskHandler.List)
	tasks.Post("/", RequirePermission(entity.PermManageTasks), taskHandler.Create)
	tasks.Get("/summary", RequirePermission(entity.PermViewTasks), taskHandler.Summary)
	tasks.Get("/recent", RequirePermission(entity.PermViewTasks), taskHandler.Recent)
	tasks.Get("/:id", RequirePermission(entity.PermViewTasks), taskHandler.Get)
	tasks.Patch("/:id", RequirePermission(entity.PermManageTasks), taskHandler.Update)

	// Edificios y salas
	buildingHandler := NewBuildingHandler(deps.BuildingUC)
	buildings := protected.Group("/buildings")
	buildings.Get("/", RequirePermission(entity.PermViewTasks), buildingHandler.ListBuildings)
	buildings.Post("/", RequirePermission(entity.PermManageTasks), buildingHandler.CreateBuilding)
	buildings.Get("/:id/rooms", RequirePermission(entity.PermViewTasks), buildingHandler.RoomsByBuilding)
	buildings.Delete("/:id", RequirePermission(entity.PermManageTasks), buildingHandler.DeleteBuilding)
	rooms := protected.Group("/rooms")
	rooms.Get("/", RequirePermission(entity.PermViewTasks), buildingHandler.ListRooms)
	rooms.Post("/", RequirePermission(entity.PermManageTasks), buildingHandler.CreateRoom)
	rooms.Put("/:id", RequirePermission(entity.PermManageTasks), buildingHandler.UpdateRoom)
	rooms.Delete("/:id", RequirePermission(entity.PermManageTasks), buildingHandler.DeleteRoom)
}

package server

import (
	"log/slog"
	"time"

	"go-winery-scm/internal/config"
	"go-winery-scm/internal/handler"
	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/middleware"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/service"
	"go-winery-scm/internal/ws"
	"go-winery-scm/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Deps are the long-lived objects the HTTP app is built from.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  *slog.Logger
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	// RequestLog enables fiber's access log; tests leave it off.
	RequestLog bool
}

// New wires repositories, services and handlers and registers every route.
func New(d Deps) *fiber.App {
	cfg := d.Config
	db := d.DB
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	tokens := jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL)

	// Repositories
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	productRepo := repository.NewProductRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	messageRepo := repository.NewMessageRepo(db)
	cameraRepo := repository.NewCameraRepo(db)

	// Services
	authService := service.NewAuthService(userRepo, tokens, d.Hub, cfg.SessionIdleTimeout, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, log)
	supplierService := service.NewSupplierService(supplierRepo, userRepo, roleRepo, log)
	invService := service.NewInventoryService(productRepo, txRepo, db, d.Hub, d.Metrics, log)
	orderService := service.NewOrderService(orderRepo, supplierRepo, productRepo, txRepo, db, d.Hub, d.Metrics, log)
	messageService := service.NewMessageService(messageRepo, userRepo, d.Hub, log)
	cameraService := service.NewCameraService(cameraRepo, log)
	dashService := service.NewDashboardService(userRepo, supplierRepo, productRepo, orderRepo, txRepo, cameraRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(userService)
	adminHandler := handler.NewAdminHandler(dashService, cameraService)
	supplierHandler := handler.NewSupplierHandler(supplierService, orderService, dashService)
	purchasingHandler := handler.NewPurchasingHandler(orderService, supplierService, dashService)
	warehouseHandler := handler.NewWarehouseHandler(invService, orderService, dashService)
	messageHandler := handler.NewMessageHandler(messageService)
	dashHandler := handler.NewDashboardHandler(dashService)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ErrorHandler: handler.ErrorHandler,
	})

	if d.RequestLog {
		app.Use(logger.New())
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(d.Metrics.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Ping()
		}
		if err != nil {
			return c.Status(503).JSON(fiber.Map{"status": "unavailable", "error": "database unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "ws_clients": d.Hub.ClientCount()})
	})
	app.Get("/metrics", d.Metrics.Handler())

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        cfg.LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Too many login attempts, try again later"})
		},
	}), authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)

	// ============ AUTHENTICATED ROUTES ============
	requireAuth := middleware.RequireAuth(tokens, userRepo)
	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Get("/me", requireAuth, authHandler.Me)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Post("/heartbeat", requireAuth, authHandler.Heartbeat)

	protected := api.Group("", requireAuth)
	protected.Get("/dashboard/stock-movement", middleware.RequirePrivilege(model.PrivDashboardView), dashHandler.GetStockMovement)

	messages := protected.Group("/messages")
	messages.Get("/inbox", messageHandler.Inbox)
	messages.Get("/sent", messageHandler.Sent)
	messages.Get("/unread-count", messageHandler.UnreadCount)
	messages.Get("/recipients", userHandler.GetRecipients)
	messages.Post("/", middleware.RequirePrivilege(model.PrivMessageSend), messageHandler.Send)
	messages.Get("/:id", messageHandler.Get)
	messages.Post("/:id/read", messageHandler.MarkRead)
	messages.Delete("/:id", messageHandler.Delete)

	// ============ ADMIN ============
	admin := protected.Group("/admin", middleware.RequireRole(model.RoleAdmin))
	admin.Get("/dashboard", adminHandler.Dashboard)

	admin.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	admin.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	admin.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	admin.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), userHandler.UpdateUser)
	admin.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), userHandler.DeleteUser)
	admin.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserPrivileges), userHandler.UpdateUserPrivileges)
	admin.Get("/roles", roleHandler.GetRoles)
	admin.Get("/privileges", roleHandler.GetPrivileges)

	suppliers := admin.Group("/suppliers", middleware.RequirePrivilege(model.PrivSupplierManage))
	suppliers.Get("/", supplierHandler.GetSuppliers)
	suppliers.Post("/", supplierHandler.CreateSupplier)
	suppliers.Get("/:id", supplierHandler.GetSupplier)
	suppliers.Put("/:id", supplierHandler.UpdateSupplier)
	suppliers.Patch("/:id/status", supplierHandler.SetStatus)

	cameras := admin.Group("/cameras", middleware.RequirePrivilege(model.PrivCameraManage))
	cameras.Get("/", adminHandler.GetCameras)
	cameras.Post("/", adminHandler.CreateCamera)
	cameras.Get("/:id", adminHandler.GetCamera)
	cameras.Put("/:id", adminHandler.UpdateCamera)
	cameras.Delete("/:id", adminHandler.DeleteCamera)

	// ============ PURCHASING ============
	purchasing := protected.Group("/purchasing", middleware.RequireRole(model.RolePurchasing))
	purchasing.Get("/dashboard", middleware.RequirePrivilege(model.PrivDashboardView), purchasingHandler.Dashboard)
	purchasing.Get("/suppliers", middleware.RequirePrivilege(model.PrivOrderCreate), purchasingHandler.Suppliers)
	purchasing.Get("/orders", middleware.RequirePrivilege(model.PrivOrderView), purchasingHandler.GetOrders)
	purchasing.Post("/orders", middleware.RequirePrivilege(model.PrivOrderCreate), purchasingHandler.CreateOrder)
	purchasing.Get("/orders/:id", middleware.RequirePrivilege(model.PrivOrderView), purchasingHandler.GetOrder)
	purchasing.Post("/orders/:id/approve", middleware.RequirePrivilege(model.PrivOrderApprove), purchasingHandler.ApproveOrder)
	purchasing.Post("/orders/:id/reject", middleware.RequirePrivilege(model.PrivOrderApprove), purchasingHandler.RejectOrder)

	// ============ WAREHOUSE ============
	warehouse := protected.Group("/warehouse", middleware.RequireRole(model.RoleWarehouse))
	warehouse.Get("/dashboard", middleware.RequirePrivilege(model.PrivDashboardView), warehouseHandler.Dashboard)
	warehouse.Get("/products", middleware.RequirePrivilege(model.PrivProductView), warehouseHandler.GetProducts)
	warehouse.Post("/products", middleware.RequirePrivilege(model.PrivProductCreate), warehouseHandler.CreateProduct)
	warehouse.Get("/products/:id", middleware.RequirePrivilege(model.PrivProductView), warehouseHandler.GetProduct)
	warehouse.Put("/products/:id", middleware.RequirePrivilege(model.PrivProductUpdate), warehouseHandler.UpdateProduct)
	warehouse.Post("/stock/adjust", middleware.RequirePrivilege(model.PrivStockAdjust), warehouseHandler.AdjustStock)
	warehouse.Get("/transactions", middleware.RequirePrivilege(model.PrivStockView), warehouseHandler.GetTransactions)
	warehouse.Get("/transactions/:id", middleware.RequirePrivilege(model.PrivStockView), warehouseHandler.GetTransaction)
	warehouse.Get("/orders", middleware.RequirePrivilege(model.PrivOrderView), warehouseHandler.PendingOrders)
	warehouse.Get("/orders/:id", middleware.RequirePrivilege(model.PrivOrderView), warehouseHandler.GetOrder)
	warehouse.Post("/orders/:id/receive", middleware.RequirePrivilege(model.PrivOrderReceive), warehouseHandler.ReceiveOrder)
	warehouse.Get("/export", middleware.RequirePrivilege(model.PrivProductView), warehouseHandler.ExportInventory)

	// ============ SUPPLIER PORTAL ============
	supplier := protected.Group("/supplier", middleware.RequireRole(model.RoleSupplier))
	supplier.Get("/dashboard", supplierHandler.Dashboard)
	supplier.Get("/profile", supplierHandler.Profile)
	supplier.Put("/profile", supplierHandler.UpdateProfile)
	supplier.Get("/orders", middleware.RequirePrivilege(model.PrivOrderView), supplierHandler.Orders)
	supplier.Get("/orders/:id", middleware.RequirePrivilege(model.PrivOrderView), supplierHandler.Order)

	// ============ WEBSOCKET ============
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}, middleware.RequireSocketAuth(tokens, userRepo), func(c *fiber.Ctx) error {
		c.Locals(ws.LocalUserID, c.Locals(middleware.LocalUserID))
		c.Locals(ws.LocalRole, c.Locals(middleware.LocalRole))
		return c.Next()
	})
	app.Get("/ws", websocket.New(d.Hub.Serve))

	return app
}

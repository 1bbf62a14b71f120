package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-medwarehouse/internal/handler"
	"go-medwarehouse/internal/middleware"
	"go-medwarehouse/internal/model"
	"go-medwarehouse/internal/repository"
	"go-medwarehouse/internal/service"
	"go-medwarehouse/pkg/database"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// 2. Setup Database
	db := database.ConnectDB()
	// Auto Migrate (Hati-hati di production, sebaiknya pakai tools migrasi terpisah)
	db.AutoMigrate(
		&model.User{},
		&model.Supplier{},
		&model.Warehouse{}, &model.Zone{}, &model.Shelf{},
		&model.Product{}, &model.Batch{},
		&model.Stock{}, &model.StockMovement{},
		&model.PurchaseOrder{}, &model.PurchaseOrderItem{},
		&model.TransferOrder{}, &model.TransferOrderItem{},
		&model.StockCount{}, &model.StockCountItem{},
		&model.Notification{}, &model.Payment{},
		&model.Sequence{},
	)

	// 3. Seed default admin user
	seedAdmin(db)

	// 4. Dependency Injection (Wiring Layers)
	userRepo := repository.NewUserRepo(db)
	supplierRepo := repository.NewSupplierRepo(db)
	warehouseRepo := repository.NewWarehouseRepo(db)
	productRepo := repository.NewProductRepo(db)
	batchRepo := repository.NewBatchRepo(db)
	stockRepo := repository.NewStockRepo(db)
	movementRepo := repository.NewStockMovementRepo(db)
	purchaseRepo := repository.NewPurchaseOrderRepo(db)
	transferRepo := repository.NewTransferOrderRepo(db)
	countRepo := repository.NewStockCountRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	sequenceRepo := repository.NewSequenceRepo()

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	warehouseService := service.NewWarehouseService(warehouseRepo, stockRepo)
	productService := service.NewProductService(productRepo)
	batchService := service.NewBatchService(batchRepo, stockRepo, productRepo, notificationRepo, db)
	stockService := service.NewStockService(stockRepo, movementRepo, batchRepo, productRepo, notificationRepo, db)
	movementService := service.NewStockMovementService(movementRepo, batchRepo, productRepo, warehouseRepo, sequenceRepo, stockService, db)
	purchaseService := service.NewPurchaseOrderService(purchaseRepo, productRepo, warehouseRepo, batchRepo, sequenceRepo, movementService, db)
	transferService := service.NewTransferOrderService(transferRepo, productRepo, warehouseRepo, sequenceRepo, stockService, movementService, db)
	countService := service.NewStockCountService(countRepo, warehouseRepo, stockRepo, sequenceRepo, stockService, movementService, db)
	notificationService := service.NewNotificationService(notificationRepo)
	paymentService := service.NewPaymentService(paymentRepo, purchaseRepo, db)
	dashboardService := service.NewDashboardService(purchaseService, transferService, stockService, batchService, movementService, notificationService)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	warehouseHandler := handler.NewWarehouseHandler(warehouseService)
	productHandler := handler.NewProductHandler(productService)
	batchHandler := handler.NewBatchHandler(batchService)
	stockHandler := handler.NewStockHandler(stockService)
	movementHandler := handler.NewStockMovementHandler(movementService)
	purchaseHandler := handler.NewPurchaseOrderHandler(purchaseService)
	transferHandler := handler.NewTransferOrderHandler(transferService)
	countHandler := handler.NewStockCountHandler(countService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "MedWarehouse API v1.0",
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)

	// ============ PROTECTED ROUTES ============
	// All routes below require authentication
	protected := api.Group("", middleware.RequireAuth(userRepo))

	auth.Get("/profile", middleware.RequireAuth(userRepo), authHandler.Profile)
	auth.Post("/change-password", middleware.RequireAuth(userRepo), authHandler.ChangePassword)

	// Role shortcuts
	manage := middleware.RequireRole(model.RoleAdmin)
	operate := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager, model.RolePharmacist)
	approve := middleware.RequireRole(model.RoleAdmin, model.RoleWarehouseManager)

	// User Management (ADMIN only)
	users := protected.Group("/users", manage)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.Get)
	users.Put("/:id", userHandler.Update)
	users.Delete("/:id", userHandler.Delete)

	// Suppliers
	suppliers := protected.Group("/suppliers")
	suppliers.Get("/", supplierHandler.List)
	suppliers.Get("/:id", supplierHandler.Get)
	suppliers.Post("/", manage, supplierHandler.Create)
	suppliers.Put("/:id", manage, supplierHandler.Update)
	suppliers.Delete("/:id", manage, supplierHandler.Delete)

	// Warehouses, zones, and shelves
	warehouses := protected.Group("/warehouses")
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.Get)
	warehouses.Get("/:id/zones", warehouseHandler.Zones)
	warehouses.Post("/", manage, warehouseHandler.Create)
	warehouses.Put("/:id", manage, warehouseHandler.Update)
	warehouses.Post("/:id/deactivate", manage, warehouseHandler.Deactivate)
	warehouses.Post("/:id/zones", manage, warehouseHandler.CreateZone)
	protected.Post("/zones/:zoneId/shelves", manage, warehouseHandler.CreateShelf)

	// Products
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.Get)
	products.Post("/", operate, productHandler.Create)
	products.Put("/:id", operate, productHandler.Update)
	products.Post("/:id/discontinue", approve, productHandler.Discontinue)
	products.Delete("/:id", manage, productHandler.Delete)

	// Batches
	batches := protected.Group("/batches")
	batches.Get("/", batchHandler.List)
	batches.Get("/expiring", batchHandler.Expiring)
	batches.Get("/:id", batchHandler.Get)
	batches.Post("/", operate, batchHandler.Create)
	batches.Put("/:id", operate, batchHandler.Update)
	batches.Post("/:id/recall", approve, batchHandler.Recall)
	batches.Delete("/:id", manage, batchHandler.Delete)

	// Stock levels and reservations
	stocks := protected.Group("/stocks")
	stocks.Get("/", stockHandler.List)
	stocks.Get("/low", stockHandler.LowStock)
	stocks.Get("/verify", stockHandler.Verify)
	stocks.Get("/product/:productId", stockHandler.ByProduct)
	stocks.Get("/warehouse/:warehouseId", stockHandler.ByWarehouse)
	stocks.Get("/:id", stockHandler.Get)
	stocks.Post("/:id/reserve", operate, stockHandler.Reserve)
	stocks.Post("/:id/release", operate, stockHandler.Release)

	// Stock movements
	movements := protected.Group("/stock-movements")
	movements.Get("/", movementHandler.List)
	movements.Get("/summary", movementHandler.Summary)
	movements.Get("/product/:productId", movementHandler.ProductHistory)
	movements.Get("/:id", movementHandler.Get)
	movements.Post("/", operate, movementHandler.Create)

	// Purchase orders
	purchases := protected.Group("/purchase-orders")
	purchases.Get("/", purchaseHandler.List)
	purchases.Get("/stats", purchaseHandler.Stats)
	purchases.Get("/:id", purchaseHandler.Get)
	purchases.Post("/", operate, purchaseHandler.Create)
	purchases.Put("/:id", operate, purchaseHandler.Update)
	purchases.Post("/:id/submit", operate, purchaseHandler.Submit)
	purchases.Post("/:id/approve", approve, purchaseHandler.Approve)
	purchases.Post("/:id/order", approve, purchaseHandler.PlaceOrder)
	purchases.Post("/:id/receive", operate, purchaseHandler.Receive)
	purchases.Post("/:id/cancel", approve, purchaseHandler.Cancel)

	// Payments against purchase orders
	payments := protected.Group("/payments")
	payments.Get("/", paymentHandler.List)
	payments.Get("/status/:orderId", paymentHandler.Status)
	payments.Get("/:id", paymentHandler.Get)
	payments.Post("/", approve, paymentHandler.Create)

	// Transfer orders
	transfers := protected.Group("/transfer-orders")
	transfers.Get("/", transferHandler.List)
	transfers.Get("/stats", transferHandler.Stats)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Post("/", operate, transferHandler.Create)
	transfers.Post("/:id/submit", operate, transferHandler.Submit)
	transfers.Post("/:id/approve", approve, transferHandler.Approve)
	transfers.Post("/:id/reject", approve, transferHandler.Reject)
	transfers.Post("/:id/ship", operate, transferHandler.Ship)
	transfers.Post("/:id/receive", operate, transferHandler.Receive)
	transfers.Post("/:id/cancel", approve, transferHandler.Cancel)

	// Stock counts
	counts := protected.Group("/stock-counts")
	counts.Get("/", countHandler.List)
	counts.Get("/:id", countHandler.Get)
	counts.Get("/:id/variance", countHandler.Variance)
	counts.Post("/", operate, countHandler.Create)
	counts.Post("/:id/start", operate, countHandler.Start)
	counts.Post("/:id/record", operate, countHandler.RecordCounts)
	counts.Post("/:id/complete", operate, countHandler.Complete)
	counts.Post("/:id/approve", approve, countHandler.Approve)
	counts.Post("/:id/cancel", approve, countHandler.Cancel)

	// Notifications
	notifications := protected.Group("/notifications")
	notifications.Get("/", notificationHandler.List)
	notifications.Get("/unread-count", notificationHandler.UnreadCount)
	notifications.Post("/read-all", notificationHandler.MarkAllRead)
	notifications.Post("/:id/read", notificationHandler.MarkRead)

	// Dashboard
	protected.Get("/dashboard", dashboardHandler.Summary)

	// 7. Graceful Shutdown
	go func() {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		if err := app.Listen(":" + port); err != nil {
			log.Panic(err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the default SUPER_ADMIN user if it doesn't exist
func seedAdmin(db *gorm.DB) {
	userRepo := repository.NewUserRepo(db)

	if _, err := userRepo.FindByUsername("admin"); err == nil {
		return
	}

	admin := &model.User{
		Username:  "admin",
		Email:     "admin@example.com",
		FirstName: "Super",
		LastName:  "Admin",
		Role:      model.RoleSuperAdmin,
		IsActive:  true,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"

	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	if err := admin.SetPassword(password); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
	} else {
		log.Println("✅ Admin user created: admin / " + password + " (SUPER_ADMIN)")
	}
}

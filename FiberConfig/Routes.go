package FiberConfig

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"FleetGuard/AI"
	"FleetGuard/Controllers"
	"FleetGuard/Models"
	"FleetGuard/Notifications"
	"FleetGuard/Storage"
	"FleetGuard/Workflow"
	"FleetGuard/middleware"
)

func SetupRoutes(app *fiber.App, store *Storage.Gateway, engine *Workflow.Engine, analyzer *AI.Client, notifier *Notifications.Notifier) {
	db := store.Local()

	// Initialize handlers
	authController := Controllers.NewAuthController(db)
	unitController := Controllers.NewUnitController(store, engine)
	reportController := Controllers.NewReportController(store, engine, analyzer, notifier)
	syncController := Controllers.NewSyncController(store)
	excelController := Controllers.NewExcelController(store)
	tokenController := Controllers.NewTokenController(db)

	// API group
	api := app.Group("/api")

	// Session routes
	api.Post("/register", authController.Register)
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	api.Get("/user", middleware.Verify(db, Models.PermissionWorker), authController.User)
	api.Post("/UpdateToken", tokenController.UpdateToken)

	// Unit routes
	units := api.Group("/units", middleware.Verify(db, Models.PermissionWorker))
	units.Get("/", unitController.GetUnits)
	units.Get("/:id", unitController.GetUnit)
	units.Put("/:id/status", middleware.Verify(db, Models.PermissionManager), unitController.UpdateUnitStatus)

	// Report routes - summarize/export before the ID routes to avoid conflicts
	reports := api.Group("/reports", middleware.Verify(db, Models.PermissionWorker))
	reports.Get("/", reportController.GetReports)
	reports.Get("/export_excel", middleware.Verify(db, Models.PermissionManager), excelController.ExportReports)
	reports.Post("/summarize", middleware.Verify(db, Models.PermissionManager), reportController.SummarizeReports)
	reports.Post("/", reportController.CreateReport)
	reports.Put("/:id/approve", middleware.Verify(db, Models.PermissionManager), reportController.ApproveReport)
	reports.Put("/:id/resolve", middleware.Verify(db, Models.PermissionManager), reportController.ResolveReport)

	// Backup and offline sync routes
	sync := api.Group("/sync", middleware.Verify(db, Models.PermissionWorker))
	sync.Get("/export", syncController.ExportData)
	sync.Post("/import", middleware.Verify(db, Models.PermissionManager), syncController.ImportData)
	sync.Post("/now", syncController.SyncNow)
	sync.Get("/status", syncController.Status)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func FiberConfig(store *Storage.Gateway, engine *Workflow.Engine, analyzer *AI.Client, notifier *Notifications.Notifier) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, store, engine, analyzer, notifier)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}

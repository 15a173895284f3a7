package routes

import (
	"attendtrack_go/config"
	"attendtrack_go/controllers"
	"attendtrack_go/database"
	"attendtrack_go/middleware"
	"attendtrack_go/services"
	"attendtrack_go/services/websocket"
	"attendtrack_go/storage"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub) {
	db := database.GetDB()

	taxonomy := services.NewTaxonomyService(db)
	attendance := services.NewAttendanceService(db)
	engine := services.NewQueryEngine(attendance)
	exporter := services.NewReportExporter(attendance)
	if config.AppConfig != nil && config.AppConfig.ArchiveReports {
		if archive, err := storage.NewReportArchive(); err != nil {
			logrus.WithError(err).Warn("Report archiving disabled: S3 client init failed")
		} else {
			exporter.Archive = archive
		}
	}

	levelController := controllers.NewLevelController(taxonomy)
	teacherController := controllers.NewTeacherController(taxonomy)
	attendanceController := controllers.NewAttendanceController(attendance, engine, exporter, wsHub)
	pinController := controllers.NewPinController(db)
	logController := controllers.NewLogController(services.NewLogMaintenanceService())
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))
	wsController := controllers.NewWebSocketController(wsHub)

	app.Get("/health", healthController.GetHealthStatus)

	api := app.Group("/api/v1")

	// Kiosk routes: PIN-gated on the client, no server session
	pin := api.Group("/pin")
	pin.Post("/validate", pinController.ValidatePin)
	pin.Put("/update-pin", middleware.AdminGuard(), pinController.UpdatePin)

	// the kiosk posts attendance without admin credentials
	api.Post("/attendance/create-attendance", attendanceController.CreateAttendance)

	// Level and section taxonomy (admin)
	level := api.Group("/level")
	level.Get("/get-Level", levelController.GetLevels)
	level.Post("/create-level", middleware.AdminGuard(), levelController.CreateLevel)
	level.Post("/add-section", middleware.AdminGuard(), levelController.AddSections)
	level.Patch("/update-level/:id", middleware.AdminGuard(), levelController.UpdateLevel)
	level.Delete("/delete-level/:id", middleware.AdminGuard(), levelController.DeleteLevel)
	level.Delete("/delete-section/:id", middleware.AdminGuard(), levelController.DeleteSection)

	// Teacher roster (admin)
	teacher := api.Group("/teacher")
	teacher.Get("/get-teachers", teacherController.GetTeachers)
	teacher.Post("/create-teacher", middleware.AdminGuard(), teacherController.CreateTeacher)
	teacher.Patch("/update-teacher/:id", middleware.AdminGuard(), teacherController.UpdateTeacher)
	teacher.Delete("/delete-teacher/:id", middleware.AdminGuard(), teacherController.DeleteTeacher)

	// Attendance reporting (admin)
	att := api.Group("/attendance", middleware.AdminGuard())
	att.Get("/get-attendance", attendanceController.GetAttendance)
	att.Get("/get-attendance-excel", attendanceController.ExportAttendance)
	att.Delete("/delete-attendance/:id", attendanceController.DeleteAttendance)

	// Activity log audit trail (admin)
	logs := api.Group("/logs", middleware.AdminGuard())
	logs.Get("/", logController.GetLogs)
	logs.Get("/:id", logController.GetLog)
	logs.Delete("/old", logController.DeleteOldLogs)
	logs.Post("/flush-cache", logController.FlushCachedLogs)

	// Live feed
	ws := api.Group("/ws")
	ws.Get("/stats", middleware.AdminGuard(), wsController.GetFeedStats)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.FeedHandler())
}

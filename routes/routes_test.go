package routes

import (
	"testing"

	"attendtrack_go/database"
	"attendtrack_go/services/websocket"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The paths and verbs are the kiosk/admin client's contract and must not
// drift.
func TestSetupRoutesRegistersClientPaths(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	database.DB = db

	app := fiber.New()
	SetupRoutes(app, websocket.NewHub())

	registered := map[string]bool{}
	for _, stack := range app.Stack() {
		for _, r := range stack {
			registered[r.Method+" "+r.Path] = true
		}
	}

	expected := []string{
		"POST /api/v1/pin/validate",
		"PUT /api/v1/pin/update-pin",
		"GET /api/v1/level/get-Level",
		"POST /api/v1/level/create-level",
		"POST /api/v1/level/add-section",
		"PATCH /api/v1/level/update-level/:id",
		"DELETE /api/v1/level/delete-level/:id",
		"DELETE /api/v1/level/delete-section/:id",
		"GET /api/v1/teacher/get-teachers",
		"POST /api/v1/teacher/create-teacher",
		"PATCH /api/v1/teacher/update-teacher/:id",
		"DELETE /api/v1/teacher/delete-teacher/:id",
		"POST /api/v1/attendance/create-attendance",
		"GET /api/v1/attendance/get-attendance",
		"GET /api/v1/attendance/get-attendance-excel",
		"DELETE /api/v1/attendance/delete-attendance/:id",
		"GET /health",
	}
	for _, want := range expected {
		if !registered[want] {
			t.Fatalf("expected route %q to be registered", want)
		}
	}

	if registered["PUT /api/v1/pin/update"] {
		t.Fatalf("stale pin rotation path is still registered")
	}
}

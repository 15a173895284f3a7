package controllers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/services"
	"attendtrack_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	Attendance *services.AttendanceService
	Engine     *services.QueryEngine
	Exporter   *services.ReportExporter
	Hub        *websocket.Hub
}

func NewAttendanceController(att *services.AttendanceService, engine *services.QueryEngine, exporter *services.ReportExporter, hub *websocket.Hub) *AttendanceController {
	return &AttendanceController{Attendance: att, Engine: engine, Exporter: exporter, Hub: hub}
}

// GetAttendance answers the admin report query: calendar-day range,
// optional teacher/level substring filters, stable pagination.
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(services.DefaultPageSize)))

	criteria := services.Criteria{
		TeacherContains: c.Query("teacher"),
		LevelContains:   c.Query("level"),
		SortDescending:  c.Query("sort") == "desc",
		Page:            page,
		PageSize:        limit,
	}

	if rangeParam := c.Query("checkInTimeRange"); rangeParam != "" {
		start, end, err := parseCheckInTimeRange(rangeParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		criteria.StartDate = start
		criteria.EndDate = end
	}

	result := ac.Engine.Run(criteria)
	if result.FetchErr != nil {
		// distinguish "fetch failed" from "no matches"
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to fetch attendance data",
		})
	}

	return c.JSON(fiber.Map{
		"data":        result.Rows,
		"page":        result.Page,
		"total_pages": result.TotalPages,
		"match_count": result.MatchCount,
	})
}

// CreateAttendance runs a kiosk submission through the form workflow and
// stores the assembled record.
func (ac *AttendanceController) CreateAttendance(c *fiber.Ctx) error {
	var req struct {
		Date      string                 `json:"date" validate:"required"`
		LevelID   uint                   `json:"level_id" validate:"required"`
		SectionID uint                   `json:"section_id" validate:"required"`
		Periods   []services.PeriodEntry `json:"periods" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Please fill in Date, Level, Section and at least one period"})
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid date, expected YYYY-MM-DD"})
	}

	submission := services.NewSubmission()
	submission.Begin()
	submission.SetDate(date)
	submission.SetLevel(req.LevelID)
	submission.SetSection(req.SectionID)
	for i, p := range req.Periods {
		if i == 0 {
			if err := submission.SetPeriod(0, p); err != nil {
				return respondError(c, err)
			}
			continue
		}
		submission.AddPeriod(p)
	}

	record, err := submission.Submit(ac.Attendance)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "attendance", record.ID, req)
	if ac.Hub != nil {
		rows := services.FlattenRecords([]models.AttendanceRecord{*record})
		if len(rows) > 0 {
			ac.Hub.Broadcast("attendance_recorded", rows[0])
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Attendance recorded successfully",
		"data":    record,
	})
}

// DeleteAttendance removes a record and its periods
func (ac *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid attendance ID"})
	}

	if err := ac.Attendance.DeleteRecord(uint(id)); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "attendance", uint(id), nil)
	return c.JSON(fiber.Map{"message": "Attendance deleted successfully"})
}

// ExportAttendance streams the xlsx report for a date range. Free-text
// filters stay on screen; only the range applies here.
func (ac *AttendanceController) ExportAttendance(c *fiber.Ctx) error {
	var start, end time.Time
	if rangeParam := c.Query("checkInTimeRange"); rangeParam != "" {
		var err error
		start, end, err = parseCheckInTimeRange(rangeParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	data, err := ac.Exporter.Export(start, end)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to generate attendance report",
		})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="attendance_report.xlsx"`)
	return c.Send(data)
}

// parseCheckInTimeRange splits the client's "START_END" range parameter.
// Bounds arrive either as full ISO timestamps (report table) or as plain
// dates (excel download).
func parseCheckInTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.SplitN(s, "_", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid checkInTimeRange, expected START_END")
	}
	start, err := parseRangeBound(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range start: %v", err)
	}
	end, err := parseRangeBound(parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid range end: %v", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("range end is before range start")
	}
	return start, end, nil
}

func parseRangeBound(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Local(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

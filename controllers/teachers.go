package controllers

import (
	"strconv"

	"attendtrack_go/middleware"
	"attendtrack_go/services"

	"github.com/gofiber/fiber/v2"
)

type TeacherController struct {
	Taxonomy *services.TaxonomyService
}

func NewTeacherController(taxonomy *services.TaxonomyService) *TeacherController {
	return &TeacherController{Taxonomy: taxonomy}
}

// GetTeachers returns all teachers
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	teachers, err := tc.Taxonomy.GetTeachers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch teachers",
		})
	}
	return c.JSON(fiber.Map{"data": teachers})
}

// CreateTeacher creates a new teacher
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var req struct {
		TeacherName string `json:"teacherName" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Teacher name is required"})
	}

	teacher, err := tc.Taxonomy.CreateTeacher(req.TeacherName)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "teacher", teacher.ID, req)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Teacher added successfully",
		"data":    teacher,
	})
}

// UpdateTeacher renames an existing teacher
func (tc *TeacherController) UpdateTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID"})
	}

	var req struct {
		TeacherName string `json:"teacherName" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Teacher name is required"})
	}

	teacher, err := tc.Taxonomy.RenameTeacher(uint(id), req.TeacherName)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "teacher", teacher.ID, req)
	return c.JSON(fiber.Map{
		"message": "Teacher updated successfully",
		"data":    teacher,
	})
}

// DeleteTeacher removes a teacher. Attendance history keeps the teacher's
// denormalized name on every period.
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid teacher ID"})
	}

	if err := tc.Taxonomy.DeleteTeacher(uint(id)); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "teacher", uint(id), nil)
	return c.JSON(fiber.Map{"message": "Teacher deleted successfully"})
}

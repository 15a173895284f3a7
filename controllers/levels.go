package controllers

import (
	"strconv"

	"attendtrack_go/middleware"
	"attendtrack_go/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type LevelController struct {
	Taxonomy *services.TaxonomyService
}

func NewLevelController(taxonomy *services.TaxonomyService) *LevelController {
	return &LevelController{Taxonomy: taxonomy}
}

// GetLevels returns every level with its sections
func (lc *LevelController) GetLevels(c *fiber.Ctx) error {
	levels, err := lc.Taxonomy.GetLevels()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch levels",
		})
	}
	return c.JSON(fiber.Map{"data": levels})
}

// CreateLevel creates a level together with its initial sections
func (lc *LevelController) CreateLevel(c *fiber.Ctx) error {
	var req struct {
		Level    string   `json:"level" validate:"required"`
		Sections []string `json:"sections" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Level name and sections are required"})
	}

	level, err := lc.Taxonomy.CreateLevel(req.Level, req.Sections)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "CREATE", "level", level.ID, req)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Level and sections added successfully",
		"data":    level,
	})
}

// AddSections appends sections to an existing level; the call is atomic
func (lc *LevelController) AddSections(c *fiber.Ctx) error {
	var req struct {
		LevelID            uint     `json:"levelId" validate:"required"`
		AdditionalSections []string `json:"additionalSections" validate:"required,min=1"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "levelId and additionalSections are required"})
	}

	level, err := lc.Taxonomy.AddSections(req.LevelID, req.AdditionalSections)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "level", level.ID, req)
	return c.JSON(fiber.Map{
		"message": "Additional sections added successfully",
		"data":    level,
	})
}

// UpdateLevel renames a level
func (lc *LevelController) UpdateLevel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid level ID"})
	}

	var req struct {
		Level string `json:"level" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Level name cannot be empty"})
	}

	level, err := lc.Taxonomy.RenameLevel(uint(id), req.Level)
	if err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "level", level.ID, req)
	return c.JSON(fiber.Map{
		"message": "Level updated successfully",
		"data":    level,
	})
}

// DeleteLevel removes a level and its sections unless attendance history
// still references it
func (lc *LevelController) DeleteLevel(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid level ID"})
	}

	if err := lc.Taxonomy.DeleteLevel(uint(id)); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "level", uint(id), nil)
	return c.JSON(fiber.Map{"message": "Level deleted successfully"})
}

// DeleteSection removes a single section under the same referencing rule
func (lc *LevelController) DeleteSection(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid section ID"})
	}

	if err := lc.Taxonomy.DeleteSection(uint(id)); err != nil {
		return respondError(c, err)
	}

	middleware.LogActivity(c, "DELETE", "section", uint(id), nil)
	return c.JSON(fiber.Map{"message": "Section deleted successfully"})
}

package controllers

import (
	"attendtrack_go/middleware"
	"attendtrack_go/models"
	"attendtrack_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PinController struct {
	DB *gorm.DB
}

func NewPinController(db *gorm.DB) *PinController {
	return &PinController{DB: db}
}

// ValidatePin gates the kiosk screen. The response only says whether the
// PIN matched; no token or session is issued.
func (pc *PinController) ValidatePin(c *fiber.Ctx) error {
	var req struct {
		Pin string `json:"pin" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "PIN is required"})
	}

	var pin models.KioskPin
	if err := pc.DB.Where("active = ?", true).Order("id DESC").First(&pin).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false})
	}

	if utils.CheckPin(req.Pin, pin.PinHash) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"valid": false})
	}

	return c.JSON(fiber.Map{"valid": true})
}

// UpdatePin replaces the active kiosk PIN. Admin only.
func (pc *PinController) UpdatePin(c *fiber.Ctx) error {
	var req struct {
		Pin string `json:"pin" validate:"required,min=4,max=12"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "PIN must be 4 to 12 characters"})
	}

	hash, err := utils.HashPin(req.Pin)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update PIN"})
	}

	err = pc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.KioskPin{}).Where("active = ?", true).Update("active", false).Error; err != nil {
			return err
		}
		return tx.Create(&models.KioskPin{PinHash: hash, Active: true}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update PIN"})
	}

	middleware.LogActivity(c, "UPDATE", "pin", 0, nil)
	return c.JSON(fiber.Map{"message": "Kiosk PIN updated successfully"})
}

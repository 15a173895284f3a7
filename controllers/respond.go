package controllers

import (
	"errors"

	"attendtrack_go/apperrors"

	"github.com/gofiber/fiber/v2"
)

// respondError maps typed domain errors onto HTTP statuses. Anything
// unrecognized is a plain internal error.
func respondError(c *fiber.Ctx, err error) error {
	var (
		dup      *apperrors.DuplicateNameError
		notFound *apperrors.NotFoundError
		invalid  *apperrors.ValidationError
		conflict *apperrors.ConflictError
	)
	switch {
	case errors.As(err, &dup):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": dup.Error(), "names": dup.Names})
	case errors.As(err, &conflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": conflict.Error()})
	case errors.As(err, &notFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": notFound.Error()})
	case errors.As(err, &invalid):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": invalid.Error(), "field": invalid.Field})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
}

package Controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"FleetGuard/Models"
	"FleetGuard/Notifications"
)

// TokenController registers device push tokens.
type TokenController struct {
	DB *gorm.DB
}

func NewTokenController(db *gorm.DB) *TokenController {
	return &TokenController{DB: db}
}

func (t *TokenController) UpdateToken(ctx *fiber.Ctx) error {
	var req Models.UpdateTokenRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token value is required"})
	}

	if err := Notifications.RegisterToken(t.DB, req.Value); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store token"})
	}
	return ctx.JSON(fiber.Map{"message": "Token updated successfully"})
}

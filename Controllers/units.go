package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"FleetGuard/Models"
	"FleetGuard/Storage"
	"FleetGuard/Workflow"
)

// UnitController serves the fleet list and the manager status override.
type UnitController struct {
	Store  *Storage.Gateway
	Engine *Workflow.Engine
}

func NewUnitController(store *Storage.Gateway, engine *Workflow.Engine) *UnitController {
	return &UnitController{Store: store, Engine: engine}
}

// GetUnits returns the fleet, remote-first with silent local fallback.
func (u *UnitController) GetUnits(ctx *fiber.Ctx) error {
	return ctx.JSON(u.Store.FetchUnits())
}

// GetUnit returns one unit from the local baseline.
func (u *UnitController) GetUnit(ctx *fiber.Ctx) error {
	unit, ok := u.Store.UnitByID(ctx.Params("id"))
	if !ok {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
	}
	return ctx.JSON(unit)
}

// UpdateUnitStatus is the direct manager override, including marking a unit
// OUT_OF_SERVICE and returning it to service by hand.
func (u *UnitController) UpdateUnitStatus(ctx *fiber.Ctx) error {
	var req Models.UpdateUnitStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, _ := ctx.Locals("user").(Models.User)
	outcome, err := u.Engine.OverrideUnitStatus(ctx.Params("id"), req.Status, user)
	if err != nil {
		switch {
		case errors.Is(err, Workflow.ErrNotAllowed):
			return ctx.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, Workflow.ErrUnknownUnit):
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Unit not found"})
		default:
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	unit, _ := u.Store.UnitByID(ctx.Params("id"))
	return ctx.JSON(fiber.Map{"unit": unit, "outcome": outcome})
}

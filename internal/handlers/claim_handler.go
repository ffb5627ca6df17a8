package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ClaimHandler struct {
	principalResolver
	claimService *services.ClaimService
}

func NewClaimHandler(claims *services.ClaimService, principals *services.PrincipalService) *ClaimHandler {
	return &ClaimHandler{
		principalResolver: principalResolver{principals: principals},
		claimService:      claims,
	}
}

// Create files a claim against ?lostItemId= or ?foundItemId=.
func (h *ClaimHandler) Create(c *fiber.Ctx) error {
	caller, err := h.current(c)
	if err != nil {
		return err
	}
	lostID, err := queryID(c, "lostItemId")
	if err != nil {
		return err
	}
	foundID, err := queryID(c, "foundItemId")
	if err != nil {
		return err
	}
	var req dto.CreateClaimRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	claim, err := h.claimService.Create(caller.ID, services.ClaimTarget{LostReportID: lostID, FoundReportID: foundID}, &req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.Status(fiber.StatusCreated).JSON(claim)
}

func (h *ClaimHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	claim, err := h.claimService.ByID(id, services.ActorOf(caller))
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Review(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	claim, err := h.claimService.Review(id, c.Query("status"), caller.ID)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Rollback(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	claim, err := h.claimService.Rollback(id, caller.ID)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(claim)
}

func (h *ClaimHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	if err := h.claimService.Delete(id, services.ActorOf(caller)); err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.MessageResponse{Message: "Claim request deleted successfully"})
}

func (h *ClaimHandler) ByStatus(c *fiber.Ctx) error {
	claims, err := h.claimService.ByStatus(c.Query("status"))
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(claims)
}

func (h *ClaimHandler) Mine(c *fiber.Ctx) error {
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	claims, err := h.claimService.ByOwner(caller.ID)
	if err != nil {
		return err
	}
	return c.JSON(claims)
}

func (h *ClaimHandler) All(c *fiber.Ctx) error {
	claims, err := h.claimService.All()
	if err != nil {
		return err
	}
	return c.JSON(claims)
}

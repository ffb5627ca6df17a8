package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type PrincipalHandler struct {
	principalResolver
	principalService *services.PrincipalService
}

func NewPrincipalHandler(principals *services.PrincipalService) *PrincipalHandler {
	return &PrincipalHandler{
		principalResolver: principalResolver{principals: principals},
		principalService:  principals,
	}
}

func (h *PrincipalHandler) CreateAdmin(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.principalService.CreateAdmin(&req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPrincipalResponse(p))
}

func (h *PrincipalHandler) List(c *fiber.Ctx) error {
	ps, err := h.principalService.List(c.Query("kind"))
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.NewPrincipalList(ps))
}

func (h *PrincipalHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	p, err := h.principalService.Get(id, services.ActorOf(caller))
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.NewPrincipalResponse(p))
}

func (h *PrincipalHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.principalService.UpdateProfile(id, services.ActorOf(caller), &req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.NewPrincipalResponse(p))
}

func (h *PrincipalHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	if err := h.principalService.Delete(id, services.ActorOf(caller)); err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.MessageResponse{Message: "Account deleted successfully"})
}

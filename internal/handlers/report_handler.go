package handlers

import (
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/lostfound-backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	principalResolver
	reportService *services.ReportService
}

func NewReportHandler(reports *services.ReportService, principals *services.PrincipalService) *ReportHandler {
	return &ReportHandler{
		principalResolver: principalResolver{principals: principals},
		reportService:     reports,
	}
}

func (h *ReportHandler) CreateLost(c *fiber.Ctx) error {
	caller, err := h.current(c)
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.reportService.CreateLost(caller.ID, &req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ReportHandler) ListLost(c *fiber.Ctx) error {
	items, err := h.reportService.ListLost()
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *ReportHandler) GetLost(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := h.reportService.GetLost(id)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(item)
}

func (h *ReportHandler) DeleteLost(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	if err := h.reportService.DeleteLost(id, services.ActorOf(caller)); err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.MessageResponse{Message: "Lost item deleted successfully"})
}

func (h *ReportHandler) CreateFound(c *fiber.Ctx) error {
	caller, err := h.current(c)
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.reportService.CreateFound(caller.ID, &req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ReportHandler) ListFound(c *fiber.Ctx) error {
	items, err := h.reportService.ListFound()
	if err != nil {
		return err
	}
	return c.JSON(items)
}

func (h *ReportHandler) GetFound(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	item, err := h.reportService.GetFound(id)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(item)
}

func (h *ReportHandler) UpdateFound(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}
	var req dto.ReportRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	item, err := h.reportService.UpdateFound(id, services.ActorOf(caller), &req)
	if err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(item)
}

func (h *ReportHandler) DeleteFound(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	caller, err := h.current(c)
	if err != nil {
		return err
	}

	if err := h.reportService.DeleteFound(id, services.ActorOf(caller)); err != nil {
		return respondError(c, err, fiber.StatusUnauthorized)
	}
	return c.JSON(dto.MessageResponse{Message: "Found item deleted successfully"})
}

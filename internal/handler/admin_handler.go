package handler

import (
	"go-winery-scm/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler serves the admin dashboard and camera registry.
type AdminHandler struct {
	dashboard service.DashboardService
	cameras   service.CameraService
}

func NewAdminHandler(dashboard service.DashboardService, cameras service.CameraService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, cameras: cameras}
}

// GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	data, err := h.dashboard.GetAdminDashboard()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// GET /api/v1/admin/cameras
func (h *AdminHandler) GetCameras(c *fiber.Ctx) error {
	cameras, err := h.cameras.GetAll()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(cameras)
}

// GET /api/v1/admin/cameras/:id
func (h *AdminHandler) GetCamera(c *fiber.Ctx) error {
	id, err := paramID(c, "camera")
	if err != nil {
		return err
	}
	camera, err := h.cameras.GetByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(camera)
}

// POST /api/v1/admin/cameras
func (h *AdminHandler) CreateCamera(c *fiber.Ctx) error {
	var req service.CameraRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	camera, err := h.cameras.Create(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Camera created", "data": camera})
}

// PUT /api/v1/admin/cameras/:id
func (h *AdminHandler) UpdateCamera(c *fiber.Ctx) error {
	id, err := paramID(c, "camera")
	if err != nil {
		return err
	}
	var req service.CameraRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	camera, err := h.cameras.Update(id, &req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Camera updated", "data": camera})
}

// DELETE /api/v1/admin/cameras/:id
func (h *AdminHandler) DeleteCamera(c *fiber.Ctx) error {
	id, err := paramID(c, "camera")
	if err != nil {
		return err
	}
	actor, _ := actorFrom(c)
	if err := h.cameras.Delete(id, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Camera deleted"})
}

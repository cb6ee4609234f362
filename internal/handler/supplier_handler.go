package handler

import (
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SupplierHandler covers supplier management for admins and the supplier portal.
type SupplierHandler struct {
	suppliers service.SupplierService
	orders    service.OrderService
	dashboard service.DashboardService
}

func NewSupplierHandler(suppliers service.SupplierService, orders service.OrderService, dashboard service.DashboardService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers, orders: orders, dashboard: dashboard}
}

// GetSuppliers lists suppliers, optionally by ?status=
// GET /api/v1/admin/suppliers
func (h *SupplierHandler) GetSuppliers(c *fiber.Ctx) error {
	suppliers, err := h.suppliers.GetAllSuppliers(model.SupplierStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suppliers)
}

// GET /api/v1/admin/suppliers/:id
func (h *SupplierHandler) GetSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return err
	}
	supplier, err := h.suppliers.GetSupplierByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

// CreateSupplier creates the supplier login and company profile
// POST /api/v1/admin/suppliers
func (h *SupplierHandler) CreateSupplier(c *fiber.Ctx) error {
	var req service.CreateSupplierRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	supplier, err := h.suppliers.CreateSupplier(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Supplier created", "data": supplier})
}

// PUT /api/v1/admin/suppliers/:id
func (h *SupplierHandler) UpdateSupplier(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return err
	}
	var req service.SupplierProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	supplier, err := h.suppliers.UpdateSupplier(id, &req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier updated", "data": supplier})
}

// PATCH /api/v1/admin/suppliers/:id/status
func (h *SupplierHandler) SetStatus(c *fiber.Ctx) error {
	id, err := paramID(c, "supplier")
	if err != nil {
		return err
	}
	var req struct {
		Status model.SupplierStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	supplier, err := h.suppliers.SetStatus(id, req.Status, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Supplier status updated", "data": supplier})
}

// GET /api/v1/supplier/dashboard
func (h *SupplierHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	data, err := h.dashboard.GetSupplierDashboard(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// GET /api/v1/supplier/profile
func (h *SupplierHandler) Profile(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	supplier, err := h.suppliers.GetProfile(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(supplier)
}

// PUT /api/v1/supplier/profile
func (h *SupplierHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.SupplierProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	supplier, err := h.suppliers.UpdateProfile(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated", "data": supplier})
}

// GET /api/v1/supplier/orders
func (h *SupplierHandler) Orders(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	orders, err := h.orders.GetSupplierOrders(actor, model.OrderStatus(c.Query("status")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/supplier/orders/:id
func (h *SupplierHandler) Order(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := paramID(c, "order")
	if err != nil {
		return err
	}
	order, err := h.orders.GetSupplierOrder(actor, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

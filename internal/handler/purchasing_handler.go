package handler

import (
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchasingHandler struct {
	orders    service.OrderService
	suppliers service.SupplierService
	dashboard service.DashboardService
}

func NewPurchasingHandler(orders service.OrderService, suppliers service.SupplierService, dashboard service.DashboardService) *PurchasingHandler {
	return &PurchasingHandler{orders: orders, suppliers: suppliers, dashboard: dashboard}
}

// GET /api/v1/purchasing/dashboard
func (h *PurchasingHandler) Dashboard(c *fiber.Ctx) error {
	data, err := h.dashboard.GetPurchasingDashboard()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// Suppliers lists suppliers orders can be placed with
// GET /api/v1/purchasing/suppliers
func (h *PurchasingHandler) Suppliers(c *fiber.Ctx) error {
	suppliers, err := h.suppliers.GetAllSuppliers(model.SupplierActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(suppliers)
}

// POST /api/v1/purchasing/orders
func (h *PurchasingHandler) CreateOrder(c *fiber.Ctx) error {
	var req service.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	order, err := h.orders.CreateOrder(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order created", "data": order})
}

// GetOrders lists orders newest first; ?status= and ?supplier_id= filter
// GET /api/v1/purchasing/orders
func (h *PurchasingHandler) GetOrders(c *fiber.Ctx) error {
	supplierID, ok := queryUUID(c, "supplier_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid supplier_id"})
	}
	orders, err := h.orders.GetOrders(repository.OrderFilter{
		Status:     model.OrderStatus(c.Query("status")),
		SupplierID: supplierID,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/purchasing/orders/:id
func (h *PurchasingHandler) GetOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return err
	}
	order, err := h.orders.GetOrderByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(order)
}

// POST /api/v1/purchasing/orders/:id/approve
func (h *PurchasingHandler) ApproveOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return err
	}
	actor, _ := actorFrom(c)
	order, err := h.orders.ApproveOrder(id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order approved", "data": order})
}

// POST /api/v1/purchasing/orders/:id/reject
func (h *PurchasingHandler) RejectOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return err
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return invalidJSON(c)
		}
	}
	actor, _ := actorFrom(c)
	order, err := h.orders.RejectOrder(id, req.Reason, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order rejected", "data": order})
}

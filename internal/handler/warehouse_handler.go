package handler

import (
	"fmt"
	"time"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/report"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type WarehouseHandler struct {
	inventory service.InventoryService
	orders    service.OrderService
	dashboard service.DashboardService
}

func NewWarehouseHandler(inventory service.InventoryService, orders service.OrderService, dashboard service.DashboardService) *WarehouseHandler {
	return &WarehouseHandler{inventory: inventory, orders: orders, dashboard: dashboard}
}

// GET /api/v1/warehouse/dashboard?days=7
func (h *WarehouseHandler) Dashboard(c *fiber.Ctx) error {
	data, err := h.dashboard.GetWarehouseDashboard(queryInt(c, "days", 7))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

// GetProducts supports ?category=, ?low_stock=true and ?search=
// GET /api/v1/warehouse/products
func (h *WarehouseHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.inventory.GetAllProducts(repository.ProductFilter{
		Category: c.Query("category"),
		LowStock: c.QueryBool("low_stock"),
		Search:   c.Query("search"),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/warehouse/products/:id
func (h *WarehouseHandler) GetProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return err
	}
	product, err := h.inventory.GetProductByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// POST /api/v1/warehouse/products
func (h *WarehouseHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	product, err := h.inventory.CreateProduct(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// UpdateProduct changes metadata only; quantity is ignored here
// PUT /api/v1/warehouse/products/:id
func (h *WarehouseHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "product")
	if err != nil {
		return err
	}
	var req service.ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	product, err := h.inventory.UpdateProduct(id, &req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// POST /api/v1/warehouse/stock/adjust
func (h *WarehouseHandler) AdjustStock(c *fiber.Ctx) error {
	var req service.StockAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	actor, _ := actorFrom(c)
	tx, err := h.inventory.AdjustStock(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Stock adjusted", "data": tx})
}

// GetTransactions supports ?product_id=, ?type=in|out and ?limit=
// GET /api/v1/warehouse/transactions
func (h *WarehouseHandler) GetTransactions(c *fiber.Ctx) error {
	productID, ok := queryUUID(c, "product_id")
	if !ok {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product_id"})
	}
	transactions, err := h.inventory.GetAllTransactions(repository.TransactionFilter{
		ProductID: productID,
		Type:      model.TransactionType(c.Query("type")),
		Limit:     queryInt(c, "limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(transactions)
}

// GET /api/v1/warehouse/transactions/:id
func (h *WarehouseHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := paramID(c, "transaction")
	if err != nil {
		return err
	}
	tx, err := h.inventory.GetTransactionByID(id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tx)
}

// PendingOrders lists approved orders waiting to be received
// GET /api/v1/warehouse/orders
func (h *WarehouseHandler) PendingOrders(c *fiber.Ctx) error {
	orders, err := h.orders.GetOrders(repository.OrderFilter{Status: model.OrderApproved})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/warehouse/orders/:id
func (h *WarehouseHandler) GetOrder(c *fiber.Ctx) error {
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

// POST /api/v1/warehouse/orders/:id/receive
func (h *WarehouseHandler) ReceiveOrder(c *fiber.Ctx) error {
	id, err := paramID(c, "order")
	if err != nil {
		return err
	}
	actor, _ := actorFrom(c)
	order, err := h.orders.ReceiveOrder(id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order received", "data": order})
}

// ExportInventory streams the current stock as an XLSX workbook
// GET /api/v1/warehouse/export
func (h *WarehouseHandler) ExportInventory(c *fiber.Ctx) error {
	products, err := h.inventory.GetAllProducts(repository.ProductFilter{})
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	data, err := report.InventoryXLSX(products, now)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="inventory-%s.xlsx"`, now.Format("20060102")))
	return c.Send(data)
}

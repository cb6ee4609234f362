package service

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	CreateOrder(req *CreateOrderRequest, actor Actor) (*model.Order, error)
	GetOrders(filter repository.OrderFilter) ([]model.Order, error)
	GetOrderByID(id uuid.UUID) (*model.Order, error)
	GetSupplierOrders(actor Actor, status model.OrderStatus) ([]model.Order, error)
	GetSupplierOrder(actor Actor, id uuid.UUID) (*model.Order, error)
	ApproveOrder(id uuid.UUID, actor Actor) (*model.Order, error)
	RejectOrder(id uuid.UUID, reason string, actor Actor) (*model.Order, error)
	ReceiveOrder(id uuid.UUID, actor Actor) (*model.Order, error)
}

type CreateOrderRequest struct {
	SupplierID   uuid.UUID          `json:"supplier_id" validate:"uuid_required"`
	Notes        string             `json:"notes" validate:"max=2000"`
	ExpectedDate string             `json:"expected_date"` // YYYY-MM-DD, optional
	Items        []OrderItemRequest `json:"items" validate:"dive"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id" validate:"uuid_required"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type orderService struct {
	orderRepo       repository.OrderRepository
	supplierRepo    repository.SupplierRepository
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	db              *gorm.DB
	wsHub           *ws.Hub
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	transactionRepo repository.TransactionRepository,
	db *gorm.DB,
	hub *ws.Hub,
	m *metrics.Metrics,
	logger *slog.Logger,
) OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &orderService{
		orderRepo:       orderRepo,
		supplierRepo:    supplierRepo,
		productRepo:     productRepo,
		transactionRepo: transactionRepo,
		db:              db,
		wsHub:           hub,
		metrics:         m,
		logger:          logger,
	}
}

func (s *orderService) CreateOrder(req *CreateOrderRequest, actor Actor) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if err := checkPrice("item price", item.Price); err != nil {
			return nil, err
		}
	}

	var expected *time.Time
	if req.ExpectedDate != "" {
		parsed, err := time.Parse("2006-01-02", req.ExpectedDate)
		if err != nil {
			return nil, invalid("invalid expected_date format, use YYYY-MM-DD")
		}
		expected = &parsed
	}

	supplier, err := s.supplierRepo.FindByID(req.SupplierID)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	if !supplier.IsActive() {
		return nil, ErrSupplierInactive
	}

	ids := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]bool, len(req.Items))
	for _, item := range req.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	products, err := s.productRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, ErrProductNotFound
	}

	items := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = model.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}

	order := &model.Order{
		SupplierID:   supplier.ID,
		Status:       model.OrderPending,
		TotalAmount:  model.CalculateTotal(items),
		Notes:        req.Notes,
		ExpectedDate: expected,
		CreatedByID:  actor.ID,
		Items:        items,
	}
	order.CreatedBy = actor.AuditID()
	order.UpdatedBy = actor.AuditID()

	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	s.metrics.OrderTransition(string(model.OrderPending))
	s.logger.Info("order created",
		slog.String("order_id", order.ID.String()),
		slog.String("supplier", supplier.CompanyName),
		slog.String("total", order.TotalAmount.StringFixed(2)),
		slog.String("by", actor.Username),
	)
	s.publish(order, supplier, "created", actor)

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetOrders(filter repository.OrderFilter) ([]model.Order, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, invalid("unknown order status %q", filter.Status)
	}
	return s.orderRepo.FindAll(filter)
}

func (s *orderService) GetOrderByID(id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrOrderNotFound)
	}
	return order, nil
}

func (s *orderService) GetSupplierOrders(actor Actor, status model.OrderStatus) ([]model.Order, error) {
	supplier, err := s.supplierRepo.FindByUserID(actor.ID)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	return s.GetOrders(repository.OrderFilter{Status: status, SupplierID: &supplier.ID})
}

// GetSupplierOrder returns the order only when it belongs to the acting supplier.
func (s *orderService) GetSupplierOrder(actor Actor, id uuid.UUID) (*model.Order, error) {
	supplier, err := s.supplierRepo.FindByUserID(actor.ID)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	order, err := s.GetOrderByID(id)
	if err != nil {
		return nil, err
	}
	if order.SupplierID != supplier.ID {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderService) ApproveOrder(id uuid.UUID, actor Actor) (*model.Order, error) {
	return s.transition(id, model.OrderApproved, actor, func(tx *gorm.DB, order *model.Order, fields map[string]interface{}) error {
		now := time.Now()
		fields["approved_by_id"] = actorID(actor)
		fields["approved_at"] = now
		return nil
	})
}

func (s *orderService) RejectOrder(id uuid.UUID, reason string, actor Actor) (*model.Order, error) {
	if len(reason) > 2000 {
		return nil, invalid("reason is too long")
	}
	return s.transition(id, model.OrderRejected, actor, func(tx *gorm.DB, order *model.Order, fields map[string]interface{}) error {
		fields["approved_by_id"] = actorID(actor)
		fields["approved_at"] = time.Now()
		fields["reject_reason"] = reason
		return nil
	})
}

// ReceiveOrder books every item into stock and logs one inbound transaction per
// item. All of it commits together or not at all.
func (s *orderService) ReceiveOrder(id uuid.UUID, actor Actor) (*model.Order, error) {
	var received []model.OrderItem
	order, err := s.transition(id, model.OrderReceived, actor, func(tx *gorm.DB, order *model.Order, fields map[string]interface{}) error {
		items := append([]model.OrderItem(nil), order.Items...)
		// Lock products in a stable order.
		sort.Slice(items, func(i, j int) bool {
			return items[i].ProductID.String() < items[j].ProductID.String()
		})

		ref := order.ID
		for _, item := range items {
			product, err := s.productRepo.FindForUpdate(tx, item.ProductID)
			if err != nil {
				return fmt.Errorf("receive item %s: %w", item.ProductID, notFound(err, ErrProductNotFound))
			}
			if err := s.productRepo.UpdateQuantity(tx, product.ID, product.Quantity+item.Quantity, actor.AuditID()); err != nil {
				return err
			}

			record := &model.InventoryTransaction{
				ProductID:     product.ID,
				Quantity:      item.Quantity,
				Type:          model.TxIn,
				ReferenceType: model.RefOrder,
				ReferenceID:   &ref,
				Note:          fmt.Sprintf("Received purchase order %s", shortID(order.ID)),
				CreatedByID:   actorID(actor),
			}
			record.CreatedBy = actor.AuditID()
			record.UpdatedBy = actor.AuditID()
			if err := s.transactionRepo.Create(tx, record); err != nil {
				return err
			}
		}

		fields["received_by_id"] = actorID(actor)
		fields["received_at"] = time.Now()
		received = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, item := range received {
		s.metrics.StockMovement(string(model.TxIn), string(model.RefOrder), item.Quantity)
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "order_received",
		To:      ws.Audience{Roles: staffRoles},
		Message: fmt.Sprintf("%s received order %s into stock", actor.Name, shortID(order.ID)),
		Data: map[string]interface{}{
			"order_id": order.ID,
			"items":    len(received),
			"user":     actor.eventUser(),
		},
	})
	return order, nil
}

type transitionFunc func(tx *gorm.DB, order *model.Order, fields map[string]interface{}) error

// transition locks the order, checks the status change is allowed, lets apply do
// its work and add columns, then writes the new status in the same transaction.
func (s *orderService) transition(id uuid.UUID, next model.OrderStatus, actor Actor, apply transitionFunc) (*model.Order, error) {
	var from model.OrderStatus
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrOrderNotFound)
		}
		from = order.Status
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
		}

		fields := map[string]interface{}{
			"status":     next,
			"updated_by": actor.AuditID(),
		}
		if apply != nil {
			if err := apply(tx, order, fields); err != nil {
				return err
			}
		}
		return s.orderRepo.UpdateStatus(tx, order.ID, fields)
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	s.metrics.OrderTransition(string(next))
	s.logger.Info("order status changed",
		slog.String("order_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(next)),
		slog.String("by", actor.Username),
	)
	s.publish(order, order.Supplier, string(next), actor)
	return order, nil
}

// publish sends an order event to staff and to the supplier that owns the order.
func (s *orderService) publish(order *model.Order, supplier *model.Supplier, action string, actor Actor) {
	to := ws.Audience{Roles: staffRoles}
	company := ""
	if supplier != nil {
		company = supplier.CompanyName
		to.Users = []uuid.UUID{supplier.UserID}
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventOrderUpdate,
		Action:  action,
		To:      to,
		Message: fmt.Sprintf("%s %s order %s for %s", actor.Name, action, shortID(order.ID), company),
		Data: map[string]interface{}{
			"order_id":     order.ID,
			"supplier_id":  order.SupplierID,
			"status":       order.Status,
			"total_amount": order.TotalAmount,
			"user":         actor.eventUser(),
		},
	})
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

package service

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryService interface {
	CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error)
	UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error)
	AdjustStock(req *StockAdjustmentRequest, actor Actor) (*model.InventoryTransaction, error)
	GetAllProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProductByID(id uuid.UUID) (*model.Product, error)
	GetAllTransactions(filter repository.TransactionFilter) ([]model.InventoryTransaction, error)
	GetTransactionByID(id uuid.UUID) (*model.InventoryTransaction, error)
}

// ProductRequest is the editable product metadata. Quantity is only set on create;
// afterwards stock moves through adjustments and received orders.
type ProductRequest struct {
	Name     string          `json:"name" validate:"required,max=255"`
	Category string          `json:"category" validate:"required,oneof=wine grape barrel bottle cork label packaging chemical other"`
	Quantity int             `json:"quantity" validate:"gte=0"`
	MinStock int             `json:"min_stock" validate:"gte=0"`
	Unit     string          `json:"unit" validate:"required,max=20"`
	Price    decimal.Decimal `json:"price"`
}

type StockAdjustmentRequest struct {
	ProductID uuid.UUID             `json:"product_id" validate:"uuid_required"`
	Type      model.TransactionType `json:"type" validate:"required,oneof=in out"`
	Quantity  int                   `json:"quantity"`
	Note      string                `json:"note" validate:"required,max=500"`
}

type inventoryService struct {
	productRepo     repository.ProductRepository
	transactionRepo repository.TransactionRepository
	db              *gorm.DB
	wsHub           *ws.Hub
	metrics         *metrics.Metrics
	logger          *slog.Logger
}

func NewInventoryService(pRepo repository.ProductRepository, tRepo repository.TransactionRepository, db *gorm.DB, hub *ws.Hub, m *metrics.Metrics, logger *slog.Logger) InventoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &inventoryService{
		productRepo:     pRepo,
		transactionRepo: tRepo,
		db:              db,
		wsHub:           hub,
		metrics:         m,
		logger:          logger,
	}
}

func (s *inventoryService) CreateProduct(req *ProductRequest, actor Actor) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := checkPrice("price", req.Price); err != nil {
		return nil, err
	}

	if existing, _ := s.productRepo.FindByName(req.Name); existing != nil {
		return nil, ErrProductExists
	}

	product := &model.Product{
		Name:     req.Name,
		Category: req.Category,
		Quantity: req.Quantity,
		MinStock: req.MinStock,
		Unit:     req.Unit,
		Price:    req.Price,
	}
	product.CreatedBy = actor.AuditID()
	product.UpdatedBy = actor.AuditID()

	// Opening stock goes through the ledger like every other movement.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		if product.Quantity == 0 {
			return nil
		}
		opening := &model.InventoryTransaction{
			ProductID:     product.ID,
			Quantity:      product.Quantity,
			Type:          model.TxIn,
			ReferenceType: model.RefAdjustment,
			Note:          "Opening balance",
			CreatedByID:   actorID(actor),
		}
		opening.CreatedBy = actor.AuditID()
		opening.UpdatedBy = actor.AuditID()
		return s.transactionRepo.Create(tx, opening)
	})
	if err != nil {
		s.logger.Error("create product failed", slog.String("name", product.Name), slog.Any("error", err))
		return nil, err
	}
	s.metrics.StockMovement(string(model.TxIn), string(model.RefAdjustment), product.Quantity)

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		To:      ws.Audience{Roles: staffRoles},
		Action:  "product_created",
		Message: fmt.Sprintf("%s created product '%s'", actor.Name, product.Name),
		Data: map[string]interface{}{
			"product": productEvent(product),
			"user":    actor.eventUser(),
		},
	})
	return product, nil
}

func (s *inventoryService) UpdateProduct(id uuid.UUID, req *ProductRequest, actor Actor) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := checkPrice("price", req.Price); err != nil {
		return nil, err
	}

	var updated model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.FindForUpdate(tx, id)
		if err != nil {
			return notFound(err, ErrProductNotFound)
		}

		if req.Name != existing.Name {
			var clash int64
			if err := tx.Model(&model.Product{}).Where("name = ? AND id <> ?", req.Name, id).Count(&clash).Error; err != nil {
				return err
			}
			if clash > 0 {
				return ErrProductExists
			}
		}

		existing.Name = req.Name
		existing.Category = req.Category
		existing.MinStock = req.MinStock
		existing.Unit = req.Unit
		existing.Price = req.Price
		existing.UpdatedBy = actor.AuditID()

		if err := s.productRepo.Update(tx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		To:      ws.Audience{Roles: staffRoles},
		Action:  "product_updated",
		Message: fmt.Sprintf("%s updated product '%s'", actor.Name, updated.Name),
		Data: map[string]interface{}{
			"product": productEvent(&updated),
			"user":    actor.eventUser(),
		},
	})
	return &updated, nil
}

// AdjustStock applies a manual in/out movement. The product row is locked for the
// duration so concurrent adjustments cannot push stock below zero.
func (s *inventoryService) AdjustStock(req *StockAdjustmentRequest, actor Actor) (*model.InventoryTransaction, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var (
		product  *model.Product
		oldStock int
		newStock int
		record   *model.InventoryTransaction
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		product, err = s.productRepo.FindForUpdate(tx, req.ProductID)
		if err != nil {
			return notFound(err, ErrProductNotFound)
		}

		oldStock = product.Quantity
		newStock = oldStock
		switch req.Type {
		case model.TxIn:
			newStock += req.Quantity
		case model.TxOut:
			if oldStock < req.Quantity {
				return fmt.Errorf("%w: %s has %d %s", ErrInsufficientStock, product.Name, oldStock, product.Unit)
			}
			newStock -= req.Quantity
		}

		if err := s.productRepo.UpdateQuantity(tx, product.ID, newStock, actor.AuditID()); err != nil {
			return err
		}

		record = &model.InventoryTransaction{
			ProductID:     product.ID,
			Quantity:      req.Quantity,
			Type:          req.Type,
			ReferenceType: model.RefAdjustment,
			Note:          req.Note,
			CreatedByID:   actorID(actor),
		}
		record.CreatedBy = actor.AuditID()
		record.UpdatedBy = actor.AuditID()
		return s.transactionRepo.Create(tx, record)
	})
	if err != nil {
		if !errors.Is(err, ErrInsufficientStock) && !errors.Is(err, ErrProductNotFound) {
			s.logger.Error("stock adjustment failed", slog.String("product_id", req.ProductID.String()), slog.Any("error", err))
		}
		return nil, err
	}

	product.Quantity = newStock
	record.Product = product
	s.metrics.StockMovement(string(req.Type), string(model.RefAdjustment), req.Quantity)

	verb := "added"
	if req.Type == model.TxOut {
		verb = "removed"
	}
	s.wsHub.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		To:      ws.Audience{Roles: staffRoles},
		Action:  "transaction_created",
		Message: fmt.Sprintf("%s %s %d %s of '%s'", actor.Name, verb, req.Quantity, product.Unit, product.Name),
		Data: map[string]interface{}{
			"transaction_id": record.ID,
			"type":           req.Type,
			"quantity":       req.Quantity,
			"product":        productEvent(product),
			"old_stock":      oldStock,
			"new_stock":      newStock,
			"user":           actor.eventUser(),
		},
	})
	return record, nil
}

func (s *inventoryService) GetAllProducts(filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Category != "" && !model.IsValidCategory(filter.Category) {
		return nil, invalid("unknown category %q", filter.Category)
	}
	return s.productRepo.FindAll(filter)
}

func (s *inventoryService) GetProductByID(id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *inventoryService) GetAllTransactions(filter repository.TransactionFilter) ([]model.InventoryTransaction, error) {
	if filter.Type != "" && filter.Type != model.TxIn && filter.Type != model.TxOut {
		return nil, invalid("type must be in or out")
	}
	return s.transactionRepo.FindAll(filter)
}

func (s *inventoryService) GetTransactionByID(id uuid.UUID) (*model.InventoryTransaction, error) {
	t, err := s.transactionRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return t, nil
}

func productEvent(p *model.Product) map[string]interface{} {
	return map[string]interface{}{
		"id":        p.ID,
		"name":      p.Name,
		"category":  p.Category,
		"quantity":  p.Quantity,
		"min_stock": p.MinStock,
		"unit":      p.Unit,
		"low_stock": p.IsLowStock(),
	}
}

func actorID(a Actor) *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

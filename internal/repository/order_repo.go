package repository

import (
	"time"

	"go-winery-scm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows order listings. Zero values mean "no filter".
type OrderFilter struct {
	Status     model.OrderStatus
	SupplierID *uuid.UUID
	Limit      int
}

type OrderRepository interface {
	Create(order *model.Order) error
	FindAll(filter OrderFilter) ([]model.Order, error)
	FindByID(id uuid.UUID) (*model.Order, error)
	FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	UpdateStatus(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	CountByStatus(supplierID *uuid.UUID) (map[model.OrderStatus]int64, error)
	SumTotal(status model.OrderStatus, supplierID *uuid.UUID, since *time.Time) (decimal.Decimal, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

// Create inserts the order and its items in one transaction.
func (r *orderRepo) Create(order *model.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			order.Items = items
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
			items[i].CreatedBy = order.CreatedBy
		}
		order.Items = items
		if len(items) == 0 {
			return nil
		}
		return tx.Omit("Product").Create(&order.Items).Error
	})
}

func (r *orderRepo) FindAll(filter OrderFilter) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.Preload("Supplier").Preload("CreatedByUser").Order("created_at DESC")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Find(&orders).Error
	return orders, err
}

func (r *orderRepo) FindByID(id uuid.UUID) (*model.Order, error) {
	var order model.Order
	err := r.db.
		Preload("Supplier").
		Preload("CreatedByUser").
		Preload("Items.Product").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindForUpdate row-locks the order inside tx and loads its items.
func (r *orderRepo) FindForUpdate(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", order.ID).Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) UpdateStatus(tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Updates(fields).Error
}

func (r *orderRepo) CountByStatus(supplierID *uuid.UUID) (map[model.OrderStatus]int64, error) {
	type row struct {
		Status model.OrderStatus
		Count  int64
	}
	var rows []row
	query := r.db.Model(&model.Order{}).Select("status, COUNT(*) AS count").Group("status")
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[model.OrderStatus]int64{
		model.OrderPending:  0,
		model.OrderApproved: 0,
		model.OrderRejected: 0,
		model.OrderReceived: 0,
	}
	for _, rc := range rows {
		counts[rc.Status] = rc.Count
	}
	return counts, nil
}

// SumTotal adds up total_amount for orders in status, optionally scoped by supplier and start time.
func (r *orderRepo) SumTotal(status model.OrderStatus, supplierID *uuid.UUID, since *time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	query := r.db.Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("status = ?", status)
	if supplierID != nil {
		query = query.Where("supplier_id = ?", *supplierID)
	}
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

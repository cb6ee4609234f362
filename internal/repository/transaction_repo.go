package repository

import (
	"time"

	"go-winery-scm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransactionFilter narrows inventory transaction listings.
type TransactionFilter struct {
	ProductID   *uuid.UUID
	Type        model.TransactionType
	ReferenceID *uuid.UUID
	Limit       int
}

type TransactionRepository interface {
	Create(tx *gorm.DB, t *model.InventoryTransaction) error
	FindAll(filter TransactionFilter) ([]model.InventoryTransaction, error)
	FindByID(id uuid.UUID) (*model.InventoryTransaction, error)
	GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error)
}

// StockMovementData is one day of the stock movement chart.
type StockMovementData struct {
	Date     string `json:"date"`
	Inbound  int    `json:"inbound"`
	Outbound int    `json:"outbound"`
}

type transactionRepo struct {
	db *gorm.DB
}

func NewTransactionRepo(db *gorm.DB) TransactionRepository {
	return &transactionRepo{db}
}

// Create writes through tx so the movement commits with the stock update.
func (r *transactionRepo) Create(tx *gorm.DB, t *model.InventoryTransaction) error {
	return tx.Omit("Product", "CreatedByUser").Create(t).Error
}

func (r *transactionRepo) FindAll(filter TransactionFilter) ([]model.InventoryTransaction, error) {
	var transactions []model.InventoryTransaction
	query := r.db.Preload("Product").Preload("CreatedByUser").Order("created_at DESC")
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ReferenceID != nil {
		query = query.Where("reference_id = ?", *filter.ReferenceID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	err := query.Find(&transactions).Error
	return transactions, err
}

func (r *transactionRepo) FindByID(id uuid.UUID) (*model.InventoryTransaction, error) {
	var transaction model.InventoryTransaction
	if err := r.db.Preload("Product").Preload("CreatedByUser").First(&transaction, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (r *transactionRepo) GetStockMovement(startDate, endDate time.Time) ([]StockMovementData, error) {
	results := []StockMovementData{}

	rows, err := r.db.Model(&model.InventoryTransaction{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(CASE WHEN type = 'in' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'out' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var data StockMovementData
		var day interface{}
		if err := rows.Scan(&day, &data.Inbound, &data.Outbound); err != nil {
			return nil, err
		}
		data.Date = formatDay(day)
		results = append(results, data)
	}

	return results, rows.Err()
}

// formatDay normalizes DATE() output, which is a time on postgres and text on sqlite.
func formatDay(v interface{}) string {
	switch d := v.(type) {
	case time.Time:
		return d.Format("2006-01-02")
	case string:
		return d
	case []byte:
		return string(d)
	default:
		return ""
	}
}

package model

import "github.com/google/uuid"

type TransactionType string

const (
	TxIn  TransactionType = "in"
	TxOut TransactionType = "out"
)

type ReferenceType string

const (
	RefOrder      ReferenceType = "order"
	RefAdjustment ReferenceType = "adjustment"
)

// InventoryTransaction is one stock movement for a product.
type InventoryTransaction struct {
	BaseModel
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Product       *Product        `json:"product,omitempty"`
	Quantity      int             `gorm:"not null" json:"quantity"`
	Type          TransactionType `gorm:"type:varchar(10);not null;index" json:"type"`
	ReferenceType ReferenceType   `gorm:"type:varchar(20);not null" json:"reference_type"`
	ReferenceID   *uuid.UUID      `gorm:"type:uuid;index" json:"reference_id,omitempty"`
	Note          string          `gorm:"type:text" json:"note"`

	CreatedByID   *uuid.UUID `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedByUser *User      `gorm:"foreignKey:CreatedByID" json:"created_by_user,omitempty"`
}

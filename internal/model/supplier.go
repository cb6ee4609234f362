package model

import "github.com/google/uuid"

type SupplierStatus string

const (
	SupplierActive   SupplierStatus = "active"
	SupplierInactive SupplierStatus = "inactive"
)

// Supplier is the company profile behind a SUPPLIER user account (1:1).
type Supplier struct {
	BaseModel
	UserID        uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	User          *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CompanyName   string         `gorm:"type:varchar(255);not null" json:"company_name" validate:"required"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(30)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email" validate:"omitempty,email"`
	Address       string         `gorm:"type:text" json:"address"`
	Status        SupplierStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status" validate:"omitempty,oneof=active inactive"`
}

func (s *Supplier) IsActive() bool {
	return s.Status == SupplierActive
}

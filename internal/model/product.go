package model

import "github.com/shopspring/decimal"

// Product categories used by the winery. Free text is rejected by validation.
const (
	CategoryWine      = "wine"
	CategoryGrape     = "grape"
	CategoryBarrel    = "barrel"
	CategoryBottle    = "bottle"
	CategoryCork      = "cork"
	CategoryLabel     = "label"
	CategoryPackaging = "packaging"
	CategoryChemical  = "chemical"
	CategoryOther     = "other"
)

type Product struct {
	BaseModel
	Name     string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name" validate:"required"`
	Category string          `gorm:"type:varchar(50);not null;index" json:"category" validate:"required,oneof=wine grape barrel bottle cork label packaging chemical other"`
	Quantity int             `gorm:"not null;default:0" json:"quantity" validate:"gte=0"`
	MinStock int             `gorm:"not null;default:0" json:"min_stock" validate:"gte=0"`
	Unit     string          `gorm:"type:varchar(20)" json:"unit" validate:"required"`
	Price    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
}

// IsLowStock reports whether the quantity is at or below the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// Categories lists every accepted product category.
var Categories = []string{
	CategoryWine, CategoryGrape, CategoryBarrel, CategoryBottle, CategoryCork,
	CategoryLabel, CategoryPackaging, CategoryChemical, CategoryOther,
}

func IsValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

package repository

import (
	"go-winery-scm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	FindAll(status model.SupplierStatus) ([]model.Supplier, error)
	FindByID(id uuid.UUID) (*model.Supplier, error)
	FindByUserID(userID uuid.UUID) (*model.Supplier, error)
	CreateWithUser(user *model.User, supplier *model.Supplier) error
	Update(supplier *model.Supplier) error
	UpdateStatus(id uuid.UUID, status model.SupplierStatus, updatedBy string) error
	CountActive() (int64, error)
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) FindAll(status model.SupplierStatus) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	query := r.db.Preload("User").Order("company_name ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&suppliers).Error
	return suppliers, err
}

func (r *supplierRepo) FindByID(id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.Preload("User").First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepo) FindByUserID(userID uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.Preload("User").First(&supplier, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

// CreateWithUser inserts the login account, its privileges and the supplier
// profile in one transaction.
func (r *supplierRepo) CreateWithUser(user *model.User, supplier *model.Supplier) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Role", "Privileges").Create(user).Error; err != nil {
			return err
		}
		if len(user.Privileges) > 0 {
			if err := tx.Model(user).Association("Privileges").Replace(user.Privileges); err != nil {
				return err
			}
		}
		supplier.UserID = user.ID
		return tx.Omit("User").Create(supplier).Error
	})
}

func (r *supplierRepo) Update(supplier *model.Supplier) error {
	return r.db.Omit("User").Save(supplier).Error
}

func (r *supplierRepo) UpdateStatus(id uuid.UUID, status model.SupplierStatus, updatedBy string) error {
	res := r.db.Model(&model.Supplier{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     status,
		"updated_by": updatedBy,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supplierRepo) CountActive() (int64, error) {
	var n int64
	err := r.db.Model(&model.Supplier{}).Where("status = ?", model.SupplierActive).Count(&n).Error
	return n, err
}

package repository

import (
	"go-winery-scm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CameraRepository interface {
	FindAll() ([]model.Camera, error)
	FindByID(id uuid.UUID) (*model.Camera, error)
	Create(camera *model.Camera) error
	Update(camera *model.Camera) error
	Delete(id uuid.UUID) error
	Count() (int64, error)
}

type cameraRepo struct {
	db *gorm.DB
}

func NewCameraRepo(db *gorm.DB) CameraRepository {
	return &cameraRepo{db}
}

func (r *cameraRepo) FindAll() ([]model.Camera, error) {
	var cameras []model.Camera
	err := r.db.Order("name ASC").Find(&cameras).Error
	return cameras, err
}

func (r *cameraRepo) FindByID(id uuid.UUID) (*model.Camera, error) {
	var camera model.Camera
	if err := r.db.First(&camera, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &camera, nil
}

func (r *cameraRepo) Create(camera *model.Camera) error {
	return r.db.Create(camera).Error
}

func (r *cameraRepo) Update(camera *model.Camera) error {
	return r.db.Save(camera).Error
}

func (r *cameraRepo) Delete(id uuid.UUID) error {
	res := r.db.Delete(&model.Camera{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *cameraRepo) Count() (int64, error) {
	var n int64
	err := r.db.Model(&model.Camera{}).Count(&n).Error
	return n, err
}

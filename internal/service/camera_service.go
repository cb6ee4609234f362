package service

import (
	"log/slog"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"

	"github.com/google/uuid"
)

type CameraService interface {
	GetAll() ([]model.Camera, error)
	GetByID(id uuid.UUID) (*model.Camera, error)
	Create(req *CameraRequest, actor Actor) (*model.Camera, error)
	Update(id uuid.UUID, req *CameraRequest, actor Actor) (*model.Camera, error)
	Delete(id uuid.UUID, actor Actor) error
}

type CameraRequest struct {
	Name      string             `json:"name" validate:"required,max=100"`
	Location  string             `json:"location" validate:"required,max=255"`
	StreamURL string             `json:"stream_url" validate:"omitempty,url"`
	Status    model.CameraStatus `json:"status" validate:"required,oneof=online offline maintenance"`
	Notes     string             `json:"notes"`
}

type cameraService struct {
	cameraRepo repository.CameraRepository
	logger     *slog.Logger
}

func NewCameraService(cameraRepo repository.CameraRepository, logger *slog.Logger) CameraService {
	if logger == nil {
		logger = slog.Default()
	}
	return &cameraService{cameraRepo: cameraRepo, logger: logger}
}

func (s *cameraService) GetAll() ([]model.Camera, error) {
	return s.cameraRepo.FindAll()
}

func (s *cameraService) GetByID(id uuid.UUID) (*model.Camera, error) {
	camera, err := s.cameraRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrCameraNotFound)
	}
	return camera, nil
}

func (s *cameraService) Create(req *CameraRequest, actor Actor) (*model.Camera, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	camera := &model.Camera{
		Name:      req.Name,
		Location:  req.Location,
		StreamURL: req.StreamURL,
		Status:    req.Status,
		Notes:     req.Notes,
	}
	camera.CreatedBy = actor.AuditID()
	camera.UpdatedBy = actor.AuditID()
	if err := s.cameraRepo.Create(camera); err != nil {
		return nil, err
	}
	return camera, nil
}

func (s *cameraService) Update(id uuid.UUID, req *CameraRequest, actor Actor) (*model.Camera, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	camera, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	camera.Name = req.Name
	camera.Location = req.Location
	camera.StreamURL = req.StreamURL
	camera.Status = req.Status
	camera.Notes = req.Notes
	camera.UpdatedBy = actor.AuditID()
	if err := s.cameraRepo.Update(camera); err != nil {
		return nil, err
	}
	return camera, nil
}

func (s *cameraService) Delete(id uuid.UUID, actor Actor) error {
	if err := s.cameraRepo.Delete(id); err != nil {
		return notFound(err, ErrCameraNotFound)
	}
	s.logger.Info("camera deleted", slog.String("camera_id", id.String()), slog.String("by", actor.Username))
	return nil
}

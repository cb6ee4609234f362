package service

import (
	"fmt"
	"log/slog"
	"strings"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"

	"github.com/google/uuid"
)

type SupplierService interface {
	CreateSupplier(req *CreateSupplierRequest, actor Actor) (*model.Supplier, error)
	UpdateSupplier(id uuid.UUID, req *SupplierProfileRequest, actor Actor) (*model.Supplier, error)
	SetStatus(id uuid.UUID, status model.SupplierStatus, actor Actor) (*model.Supplier, error)
	GetAllSuppliers(status model.SupplierStatus) ([]model.Supplier, error)
	GetSupplierByID(id uuid.UUID) (*model.Supplier, error)
	GetProfile(actor Actor) (*model.Supplier, error)
	UpdateProfile(req *SupplierProfileRequest, actor Actor) (*model.Supplier, error)
}

// CreateSupplierRequest carries the login account and company profile of a new supplier.
type CreateSupplierRequest struct {
	Username      string `json:"username" validate:"required,min=3,max=50"`
	Password      string `json:"password" validate:"required,min=6"`
	FullName      string `json:"full_name"`
	Email         string `json:"email" validate:"required,email"`
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone" validate:"max=30"`
	Address       string `json:"address"`
}

type SupplierProfileRequest struct {
	CompanyName   string `json:"company_name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone" validate:"max=30"`
	Email         string `json:"email" validate:"omitempty,email"`
	Address       string `json:"address"`
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	logger       *slog.Logger
}

func NewSupplierService(supplierRepo repository.SupplierRepository, userRepo repository.UserRepository, roleRepo repository.RoleRepository, logger *slog.Logger) SupplierService {
	if logger == nil {
		logger = slog.Default()
	}
	return &supplierService{
		supplierRepo: supplierRepo,
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		logger:       logger,
	}
}

func (s *supplierService) CreateSupplier(req *CreateSupplierRequest, actor Actor) (*model.Supplier, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validate(req); err != nil {
		return nil, err
	}

	if taken, err := s.userRepo.UsernameTaken(req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameExists
	}
	if taken, err := s.userRepo.EmailTaken(req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailExists
	}

	role, err := s.roleRepo.FindByCode(model.RoleSupplier)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}

	fullName := req.FullName
	if fullName == "" {
		fullName = req.ContactPerson
	}
	if fullName == "" {
		fullName = req.CompanyName
	}

	user := &model.User{
		Username:   req.Username,
		Email:      req.Email,
		FullName:   fullName,
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	user.CreatedBy = actor.AuditID()
	user.UpdatedBy = actor.AuditID()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	supplier := &model.Supplier{
		CompanyName:   req.CompanyName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Status:        model.SupplierActive,
	}
	supplier.CreatedBy = actor.AuditID()
	supplier.UpdatedBy = actor.AuditID()

	if err := s.supplierRepo.CreateWithUser(user, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created", slog.String("company", supplier.CompanyName), slog.String("username", user.Username), slog.String("by", actor.Username))
	return s.supplierRepo.FindByID(supplier.ID)
}

func (s *supplierService) UpdateSupplier(id uuid.UUID, req *SupplierProfileRequest, actor Actor) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	return s.applyProfile(supplier, req, actor)
}

func (s *supplierService) SetStatus(id uuid.UUID, status model.SupplierStatus, actor Actor) (*model.Supplier, error) {
	if status != model.SupplierActive && status != model.SupplierInactive {
		return nil, invalid("status must be active or inactive")
	}
	if err := s.supplierRepo.UpdateStatus(id, status, actor.AuditID()); err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	s.logger.Info("supplier status changed", slog.String("supplier_id", id.String()), slog.String("status", string(status)))
	return s.supplierRepo.FindByID(id)
}

func (s *supplierService) GetAllSuppliers(status model.SupplierStatus) ([]model.Supplier, error) {
	if status != "" && status != model.SupplierActive && status != model.SupplierInactive {
		return nil, invalid("unknown supplier status %q", status)
	}
	return s.supplierRepo.FindAll(status)
}

func (s *supplierService) GetSupplierByID(id uuid.UUID) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	return supplier, nil
}

// GetProfile returns the supplier row linked to the acting user.
func (s *supplierService) GetProfile(actor Actor) (*model.Supplier, error) {
	supplier, err := s.supplierRepo.FindByUserID(actor.ID)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}
	return supplier, nil
}

func (s *supplierService) UpdateProfile(req *SupplierProfileRequest, actor Actor) (*model.Supplier, error) {
	supplier, err := s.GetProfile(actor)
	if err != nil {
		return nil, err
	}
	return s.applyProfile(supplier, req, actor)
}

func (s *supplierService) applyProfile(supplier *model.Supplier, req *SupplierProfileRequest, actor Actor) (*model.Supplier, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if err := validate(req); err != nil {
		return nil, err
	}

	supplier.CompanyName = req.CompanyName
	supplier.ContactPerson = req.ContactPerson
	supplier.Phone = req.Phone
	supplier.Email = req.Email
	supplier.Address = req.Address
	supplier.UpdatedBy = actor.AuditID()

	if err := s.supplierRepo.Update(supplier); err != nil {
		return nil, err
	}
	return s.supplierRepo.FindByID(supplier.ID)
}

package service

import (
	"fmt"
	"log/slog"
	"strings"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"

	"github.com/google/uuid"
)

type UserService interface {
	CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error)
	UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error)
	DeleteUser(userID uuid.UUID, actor Actor) error
	UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error)
	GetAllUsers(roleCode string) ([]model.UserResponse, error)
	GetUserByID(id uuid.UUID) (*model.UserResponse, error)
	GetRecipients(userID uuid.UUID) ([]model.UserSummary, error)
	GetRoles() ([]model.Role, error)
	GetPrivileges() ([]model.Privilege, error)
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	RoleCode string `json:"role" validate:"required,role_code"`
}

type UpdateUserRequest struct {
	Email    string  `json:"email" validate:"required,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=6"`
	FullName string  `json:"full_name" validate:"required"`
	RoleCode string  `json:"role" validate:"required,role_code"`
	IsActive *bool   `json:"is_active"`
}

type userService struct {
	userRepo      repository.UserRepository
	privilegeRepo repository.PrivilegeRepository
	roleRepo      repository.RoleRepository
	logger        *slog.Logger
}

func NewUserService(userRepo repository.UserRepository, privilegeRepo repository.PrivilegeRepository, roleRepo repository.RoleRepository, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo:      userRepo,
		privilegeRepo: privilegeRepo,
		roleRepo:      roleRepo,
		logger:        logger,
	}
}

func (s *userService) CreateUser(req *CreateUserRequest, actor Actor) (*model.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.RoleCode == model.RoleSupplier {
		return nil, invalid("supplier accounts are created through the supplier endpoint")
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

	role, err := s.roleRepo.FindByCode(req.RoleCode)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}

	user := &model.User{
		Username: req.Username,
		Email:    req.Email,
		FullName: req.FullName,
		RoleID:   &role.ID,
		IsActive: true,
	}
	user.CreatedBy = actor.AuditID()
	user.UpdatedBy = actor.AuditID()
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// New accounts start with their role's default privileges.
	user.Privileges = role.Privileges

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	s.logger.Info("user created", slog.String("username", user.Username), slog.String("role", role.Code), slog.String("by", actor.Username))

	return s.userRepo.FindByID(user.ID)
}

func (s *userService) UpdateUser(userID uuid.UUID, req *UpdateUserRequest, actor Actor) (*model.User, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validate(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	if req.Email != user.Email {
		taken, err := s.userRepo.EmailTaken(req.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrEmailExists
		}
	}

	role, err := s.roleRepo.FindByCode(req.RoleCode)
	if err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}
	if (user.RoleCode() == model.RoleSupplier) != (role.Code == model.RoleSupplier) {
		return nil, invalid("cannot move an account into or out of the SUPPLIER role")
	}
	roleChanged := user.RoleID == nil || *user.RoleID != role.ID

	user.Email = req.Email
	user.FullName = req.FullName
	user.RoleID = &role.ID
	user.Role = role
	user.UpdatedBy = actor.AuditID()

	endSessions := false
	if req.IsActive != nil {
		if user.IsActive && !*req.IsActive {
			endSessions = true
		}
		user.IsActive = *req.IsActive
	}
	if req.Password != nil && *req.Password != "" {
		if err := user.SetPassword(*req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		endSessions = true
	}
	if endSessions {
		user.TokenVersion = uuid.New().String()
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	// A role change resets privileges to the new role's defaults.
	if roleChanged {
		if err := s.userRepo.UpdatePrivileges(user.ID, role.Privileges); err != nil {
			return nil, err
		}
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) DeleteUser(userID uuid.UUID, actor Actor) error {
	if userID == actor.ID {
		return ErrCannotDeleteSelf
	}
	if err := s.userRepo.Delete(userID, actor.AuditID()); err != nil {
		return notFound(err, ErrUserNotFound)
	}
	s.logger.Info("user deleted", slog.String("user_id", userID.String()), slog.String("by", actor.Username))
	return nil
}

func (s *userService) UpdateUserPrivileges(userID uuid.UUID, privilegeCodes []string, actor Actor) (*model.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}

	unique := make([]string, 0, len(privilegeCodes))
	seen := make(map[string]bool, len(privilegeCodes))
	for _, code := range privilegeCodes {
		if !seen[code] {
			seen[code] = true
			unique = append(unique, code)
		}
	}

	privileges, err := s.privilegeRepo.FindByCodes(unique)
	if err != nil {
		return nil, err
	}
	if len(privileges) != len(unique) {
		return nil, invalid("unknown privilege code")
	}

	if err := s.userRepo.UpdatePrivileges(userID, privileges); err != nil {
		return nil, err
	}

	user.UpdatedBy = actor.AuditID()
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	return s.userRepo.FindByID(userID)
}

func (s *userService) GetAllUsers(roleCode string) ([]model.UserResponse, error) {
	if roleCode != "" && !model.IsValidRoleCode(roleCode) {
		return nil, invalid("unknown role %q", roleCode)
	}
	users, err := s.userRepo.FindAll(roleCode)
	if err != nil {
		return nil, err
	}

	responses := make([]model.UserResponse, len(users))
	for i := range users {
		responses[i] = users[i].ToResponse()
	}
	return responses, nil
}

func (s *userService) GetUserByID(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	response := user.ToResponse()
	return &response, nil
}

// GetRecipients lists the active users userID can message.
func (s *userService) GetRecipients(userID uuid.UUID) ([]model.UserSummary, error) {
	users, err := s.userRepo.FindActiveExcept(userID)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserSummary, len(users))
	for i := range users {
		out[i] = *users[i].Summary()
	}
	return out, nil
}

func (s *userService) GetRoles() ([]model.Role, error) {
	return s.roleRepo.FindAll()
}

func (s *userService) GetPrivileges() ([]model.Privilege, error) {
	return s.privilegeRepo.FindAll()
}

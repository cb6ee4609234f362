package repository

import (
	"errors"
	"fmt"
	"log"

	"go-winery-scm/internal/model"

	"gorm.io/gorm"
)

// DefaultAdminUsername is the account created on first boot.
const DefaultAdminUsername = "admin"

// SeedDefaults creates default privileges, roles, role privileges and the admin
// user when they don't exist. Safe to run on every boot.
func SeedDefaults(db *gorm.DB, adminPassword string) error {
	privilegeRepo := NewPrivilegeRepo(db)
	roleRepo := NewRoleRepo(db)
	userRepo := NewUserRepo(db)

	if err := privilegeRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed privileges: %w", err)
	}
	if err := roleRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}

	allPrivileges, err := privilegeRepo.FindAll()
	if err != nil {
		return err
	}

	// ADMIN gets ALL privileges
	adminRole, err := roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	if len(adminRole.Privileges) == 0 {
		if err := db.Model(adminRole).Association("Privileges").Replace(allPrivileges); err != nil {
			return err
		}
		log.Println("ADMIN role assigned all privileges")
	}

	for code, privCodes := range model.DefaultRolePrivileges {
		role, err := roleRepo.FindByCode(code)
		if err != nil {
			return err
		}
		if len(role.Privileges) > 0 {
			continue
		}
		privileges, err := privilegeRepo.FindByCodes(privCodes)
		if err != nil {
			return err
		}
		if err := db.Model(role).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
		log.Printf("%s role assigned %d privileges", code, len(privileges))
	}

	_, err = userRepo.FindByUsername(DefaultAdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	adminRole, err = roleRepo.FindByCode(model.RoleAdmin)
	if err != nil {
		return err
	}
	admin := &model.User{
		Username:   DefaultAdminUsername,
		Email:      "admin@winery.local",
		FullName:   "Winery Administrator",
		RoleID:     &adminRole.ID,
		IsActive:   true,
		Privileges: adminRole.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(adminPassword); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := userRepo.Create(admin); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Printf("Admin user created: %s (ADMIN)", DefaultAdminUsername)
	return nil
}

// Package testutil builds seeded in-memory databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"go-winery-scm/internal/config"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Password is the password every fixture user gets.
const Password = "secret123"

// NewDB returns a migrated and seeded sqlite database private to t.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Connect(database.Options{Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, "sqlite", false, model.All()...))
	require.NoError(t, repository.SeedDefaults(db, Password))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// Config returns a valid configuration for tests.
func Config() *config.Config {
	return &config.Config{
		AppName:            "winery-test",
		AppEnv:             "test",
		DBDriver:           "sqlite",
		JWTSecret:          "test-secret-at-least-16-chars",
		JWTTTL:             time.Hour,
		SessionIdleTimeout: 30 * time.Minute,
		CORSOrigins:        "*",
		LoginRateLimit:     1000,
		SeedAdminPassword:  Password,
	}
}

// Admin returns the seeded admin account.
func Admin(t testing.TB, db *gorm.DB) *model.User {
	t.Helper()
	user, err := repository.NewUserRepo(db).FindByUsername(repository.DefaultAdminUsername)
	require.NoError(t, err)
	return user
}

// CreateUser inserts an active user with roleCode and that role's default privileges.
func CreateUser(t testing.TB, db *gorm.DB, username, roleCode string) *model.User {
	t.Helper()
	role, err := repository.NewRoleRepo(db).FindByCode(roleCode)
	require.NoError(t, err)

	user := &model.User{
		Username:   username,
		Email:      username + "@winery.test",
		FullName:   strings.ToUpper(username[:1]) + username[1:],
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	require.NoError(t, user.SetPassword(Password))
	userRepo := repository.NewUserRepo(db)
	require.NoError(t, userRepo.Create(user))

	loaded, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	return loaded
}

// CreateSupplier inserts a SUPPLIER user with its linked supplier profile.
func CreateSupplier(t testing.TB, db *gorm.DB, username, company string) *model.Supplier {
	t.Helper()
	user := CreateUser(t, db, username, model.RoleSupplier)
	supplier := &model.Supplier{
		UserID:        user.ID,
		CompanyName:   company,
		ContactPerson: user.FullName,
		Email:         user.Email,
		Status:        model.SupplierActive,
	}
	require.NoError(t, db.Omit("User").Create(supplier).Error)

	loaded, err := repository.NewSupplierRepo(db).FindByID(supplier.ID)
	require.NoError(t, err)
	return loaded
}

// CreateProduct inserts a product with the given stock levels and unit price.
func CreateProduct(t testing.TB, db *gorm.DB, name string, quantity, minStock int, price string) *model.Product {
	t.Helper()
	product := &model.Product{
		Name:     name,
		Category: model.CategoryOther,
		Quantity: quantity,
		MinStock: minStock,
		Unit:     "pcs",
		Price:    decimal.RequireFromString(price),
	}
	require.NoError(t, repository.NewProductRepo(db).Create(db, product))
	return product
}

// Quantity reads the current stock of a product straight from the table.
func Quantity(t testing.TB, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var p model.Product
	require.NoError(t, db.First(&p, "id = ?", productID).Error)
	return p.Quantity
}

package service

import (
	"errors"
	"fmt"

	"go-winery-scm/internal/model"
	"go-winery-scm/pkg/validator"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrWeakPassword       = errors.New("new password must be at least 6 characters")
	ErrSessionTimeout     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session expired (logged in on another device)")
	ErrUsernameExists     = errors.New("username already exists")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrCannotDeleteSelf   = errors.New("cannot delete your own account")

	ErrSupplierNotFound = errors.New("supplier not found")
	ErrSupplierInactive = errors.New("supplier is inactive")

	ErrProductNotFound     = errors.New("product not found")
	ErrProductExists       = errors.New("product name already exists")
	ErrInsufficientStock   = errors.New("insufficient stock remaining")
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidTransition = errors.New("invalid order status transition")

	ErrMessageNotFound      = errors.New("message not found")
	ErrCannotMessageSelf    = errors.New("cannot send a message to yourself")
	ErrRecipientUnavailable = errors.New("recipient not found or inactive")

	ErrCameraNotFound = errors.New("camera not found")
)

// staffRoles receive stock and order events; suppliers only hear about their own orders.
var staffRoles = []string{model.RoleAdmin, model.RoleWarehouse, model.RolePurchasing}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID       uuid.UUID
	Username string
	Name     string
	Role     string
}

// AuditID is the value stored in created_by / updated_by columns.
func (a Actor) AuditID() string {
	if a.ID == uuid.Nil {
		return "system"
	}
	return a.ID.String()
}

func (a Actor) eventUser() map[string]interface{} {
	return map[string]interface{}{
		"id":       a.ID,
		"username": a.Username,
		"name":     a.Name,
	}
}

func validate(v interface{}) error {
	if err := validator.Error(v); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// checkPrice rejects negative amounts and anything finer than cents, which the
// numeric(12,2) columns would round away.
func checkPrice(field string, price decimal.Decimal) error {
	if price.IsNegative() {
		return invalid("%s must not be negative", field)
	}
	if !price.Equal(price.Round(2)) {
		return invalid("%s must have at most 2 decimal places", field)
	}
	return nil
}

// notFound maps gorm.ErrRecordNotFound to sentinel and wraps anything else.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

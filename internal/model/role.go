package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleAdmin      = "ADMIN"
	RoleWarehouse  = "WAREHOUSE"
	RolePurchasing = "PURCHASING"
	RoleSupplier   = "SUPPLIER"
)

// IsValidRoleCode reports whether code is one of the fixed role strings.
func IsValidRoleCode(code string) bool {
	switch code {
	case RoleAdmin, RoleWarehouse, RolePurchasing, RoleSupplier:
		return true
	}
	return false
}

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Full system access, user, supplier and camera management",
	},
	{
		Code:        RoleWarehouse,
		Name:        "Warehouse Staff",
		Description: "Inventory quantities and receiving of approved orders",
	},
	{
		Code:        RolePurchasing,
		Name:        "Purchasing Manager",
		Description: "Creates, approves and rejects purchase orders",
	},
	{
		Code:        RoleSupplier,
		Name:        "Supplier",
		Description: "Views own purchase orders and maintains company profile",
	},
}

// DefaultRolePrivileges maps each role to the privilege codes it receives at seed time.
// ADMIN receives every privilege and is not listed here.
var DefaultRolePrivileges = map[string][]string{
	RoleWarehouse: {
		PrivProductView, PrivProductCreate, PrivProductUpdate,
		PrivStockAdjust, PrivStockView,
		PrivOrderView, PrivOrderReceive,
		PrivMessageSend, PrivDashboardView,
	},
	RolePurchasing: {
		PrivProductView, PrivStockView,
		PrivOrderView, PrivOrderCreate, PrivOrderApprove,
		PrivMessageSend, PrivDashboardView,
	},
	RoleSupplier: {
		PrivOrderView, PrivMessageSend, PrivDashboardView,
	},
}

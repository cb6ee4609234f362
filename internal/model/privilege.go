package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "order:approve"
	Name string `gorm:"type:varchar(100)" json:"name"`
}

const (
	PrivUserView       = "user:view"
	PrivUserCreate     = "user:create"
	PrivUserUpdate     = "user:update"
	PrivUserDelete     = "user:delete"
	PrivUserPrivileges = "user:update_privilege"
	PrivSupplierManage = "supplier:manage"
	PrivCameraManage   = "camera:manage"
	PrivProductView    = "product:view"
	PrivProductCreate  = "product:create"
	PrivProductUpdate  = "product:update"
	PrivStockAdjust    = "stock:adjust"
	PrivStockView      = "stock:view_transactions"
	PrivOrderView      = "order:view"
	PrivOrderCreate    = "order:create"
	PrivOrderApprove   = "order:approve"
	PrivOrderReceive   = "order:receive"
	PrivMessageSend    = "message:send"
	PrivDashboardView  = "dashboard:view"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserPrivileges, Name: "Update User Privileges"},
	{Code: PrivSupplierManage, Name: "Manage Suppliers"},
	{Code: PrivCameraManage, Name: "Manage Cameras"},
	{Code: PrivProductView, Name: "View Product"},
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivStockAdjust, Name: "Adjust Stock"},
	{Code: PrivStockView, Name: "View Stock Transactions"},
	{Code: PrivOrderView, Name: "View Orders"},
	{Code: PrivOrderCreate, Name: "Create Orders"},
	{Code: PrivOrderApprove, Name: "Approve Or Reject Orders"},
	{Code: PrivOrderReceive, Name: "Receive Orders"},
	{Code: PrivMessageSend, Name: "Send Messages"},
	{Code: PrivDashboardView, Name: "View Dashboard"},
}

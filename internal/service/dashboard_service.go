package service

import (
	"time"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const (
	recentLimit         = 5
	recentTxLimit       = 10
	lowStockLimit       = 10
	defaultMovementDays = 7
	maxMovementDays     = 365
)

type AdminDashboard struct {
	Users              int64                        `json:"users"`
	ActiveSuppliers    int64                        `json:"active_suppliers"`
	Products           int64                        `json:"products"`
	LowStockProducts   int64                        `json:"low_stock_products"`
	Cameras            int64                        `json:"cameras"`
	OrdersByStatus     map[model.OrderStatus]int64  `json:"orders_by_status"`
	TotalSpend         decimal.Decimal              `json:"total_spend"`
	RecentOrders       []model.Order                `json:"recent_orders"`
	RecentTransactions []model.InventoryTransaction `json:"recent_transactions"`
}

type PurchasingDashboard struct {
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
	PendingAmount  decimal.Decimal             `json:"pending_amount"`
	SpendThisMonth decimal.Decimal             `json:"spend_this_month"`
	LowStock       []model.Product             `json:"low_stock"`
	RecentOrders   []model.Order               `json:"recent_orders"`
}

type WarehouseDashboard struct {
	Products           int64                          `json:"products"`
	TotalUnits         int64                          `json:"total_units"`
	LowStock           []model.Product                `json:"low_stock"`
	AwaitingReceipt    []model.Order                  `json:"awaiting_receipt"`
	RecentTransactions []model.InventoryTransaction   `json:"recent_transactions"`
	StockMovement      []repository.StockMovementData `json:"stock_movement"`
}

type SupplierDashboard struct {
	Supplier       *model.Supplier             `json:"supplier"`
	OrdersByStatus map[model.OrderStatus]int64 `json:"orders_by_status"`
	TotalReceived  decimal.Decimal             `json:"total_received"`
	RecentOrders   []model.Order               `json:"recent_orders"`
}

type DashboardService interface {
	GetAdminDashboard() (*AdminDashboard, error)
	GetPurchasingDashboard() (*PurchasingDashboard, error)
	GetWarehouseDashboard(days int) (*WarehouseDashboard, error)
	GetSupplierDashboard(actor Actor) (*SupplierDashboard, error)
	GetStockMovement(days int) ([]repository.StockMovementData, error)
}

type dashboardService struct {
	userRepo     repository.UserRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	orderRepo    repository.OrderRepository
	txRepo       repository.TransactionRepository
	cameraRepo   repository.CameraRepository
	now          func() time.Time
}

func NewDashboardService(
	userRepo repository.UserRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	txRepo repository.TransactionRepository,
	cameraRepo repository.CameraRepository,
) DashboardService {
	return &dashboardService{
		userRepo:     userRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		txRepo:       txRepo,
		cameraRepo:   cameraRepo,
		now:          time.Now,
	}
}

func (s *dashboardService) GetAdminDashboard() (*AdminDashboard, error) {
	var d AdminDashboard
	var g errgroup.Group

	g.Go(func() (err error) { d.Users, err = s.userRepo.Count(); return })
	g.Go(func() (err error) { d.ActiveSuppliers, err = s.supplierRepo.CountActive(); return })
	g.Go(func() (err error) { d.Products, err = s.productRepo.Count(); return })
	g.Go(func() (err error) { d.LowStockProducts, err = s.productRepo.CountLowStock(); return })
	g.Go(func() (err error) { d.Cameras, err = s.cameraRepo.Count(); return })
	g.Go(func() (err error) { d.OrdersByStatus, err = s.orderRepo.CountByStatus(nil); return })
	g.Go(func() (err error) {
		d.TotalSpend, err = s.orderRepo.SumTotal(model.OrderReceived, nil, nil)
		return
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.orderRepo.FindAll(repository.OrderFilter{Limit: recentLimit})
		return
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = s.txRepo.FindAll(repository.TransactionFilter{Limit: recentTxLimit})
		return
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *dashboardService) GetPurchasingDashboard() (*PurchasingDashboard, error) {
	var d PurchasingDashboard
	var g errgroup.Group
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	g.Go(func() (err error) { d.OrdersByStatus, err = s.orderRepo.CountByStatus(nil); return })
	g.Go(func() (err error) {
		d.PendingAmount, err = s.orderRepo.SumTotal(model.OrderPending, nil, nil)
		return
	})
	g.Go(func() (err error) {
		d.SpendThisMonth, err = s.orderRepo.SumTotal(model.OrderReceived, nil, &monthStart)
		return
	})
	g.Go(func() (err error) { d.LowStock, err = s.productRepo.FindLowStock(lowStockLimit); return })
	g.Go(func() (err error) {
		d.RecentOrders, err = s.orderRepo.FindAll(repository.OrderFilter{Limit: recentLimit})
		return
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *dashboardService) GetWarehouseDashboard(days int) (*WarehouseDashboard, error) {
	var d WarehouseDashboard
	var g errgroup.Group

	g.Go(func() (err error) { d.Products, err = s.productRepo.Count(); return })
	g.Go(func() (err error) { d.TotalUnits, err = s.productRepo.TotalUnits(); return })
	g.Go(func() (err error) { d.LowStock, err = s.productRepo.FindLowStock(lowStockLimit); return })
	g.Go(func() (err error) {
		d.AwaitingReceipt, err = s.orderRepo.FindAll(repository.OrderFilter{Status: model.OrderApproved})
		return
	})
	g.Go(func() (err error) {
		d.RecentTransactions, err = s.txRepo.FindAll(repository.TransactionFilter{Limit: recentTxLimit})
		return
	})
	g.Go(func() (err error) { d.StockMovement, err = s.GetStockMovement(days); return })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *dashboardService) GetSupplierDashboard(actor Actor) (*SupplierDashboard, error) {
	supplier, err := s.supplierRepo.FindByUserID(actor.ID)
	if err != nil {
		return nil, notFound(err, ErrSupplierNotFound)
	}

	d := SupplierDashboard{Supplier: supplier}
	var g errgroup.Group
	g.Go(func() (err error) { d.OrdersByStatus, err = s.orderRepo.CountByStatus(&supplier.ID); return })
	g.Go(func() (err error) {
		d.TotalReceived, err = s.orderRepo.SumTotal(model.OrderReceived, &supplier.ID, nil)
		return
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.orderRepo.FindAll(repository.OrderFilter{SupplierID: &supplier.ID, Limit: recentLimit})
		return
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetStockMovement returns per-day in/out totals for the last days days.
func (s *dashboardService) GetStockMovement(days int) ([]repository.StockMovementData, error) {
	if days <= 0 {
		days = defaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)

	return s.txRepo.GetStockMovement(startDate, endDate)
}

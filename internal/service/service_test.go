package service

import (
	"context"
	"testing"
	"time"

	"go-winery-scm/internal/metrics"
	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/testutil"
	"go-winery-scm/internal/ws"
	"go-winery-scm/pkg/jwt"
	"go-winery-scm/pkg/logger"

	"gorm.io/gorm"
)

type testEnv struct {
	db     *gorm.DB
	tokens *jwt.Manager

	users     repository.UserRepository
	products  repository.ProductRepository
	txs       repository.TransactionRepository
	orders    repository.OrderRepository
	suppliers repository.SupplierRepository
	messages  repository.MessageRepository

	auth        AuthService
	userSvc     UserService
	supplierSvc SupplierService
	inventory   InventoryService
	orderSvc    OrderService
	messageSvc  MessageService
	cameras     CameraService
	dashboard   DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.Discard()

	hub := ws.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	m := metrics.New()
	tokens := jwt.NewManager("test-secret-at-least-16-chars", time.Hour)

	e := &testEnv{
		db:        db,
		tokens:    tokens,
		users:     repository.NewUserRepo(db),
		products:  repository.NewProductRepo(db),
		txs:       repository.NewTransactionRepo(db),
		orders:    repository.NewOrderRepo(db),
		suppliers: repository.NewSupplierRepo(db),
		messages:  repository.NewMessageRepo(db),
	}
	roles := repository.NewRoleRepo(db)
	privileges := repository.NewPrivilegeRepo(db)
	cameraRepo := repository.NewCameraRepo(db)

	e.auth = NewAuthService(e.users, tokens, hub, 30*time.Minute, log)
	e.userSvc = NewUserService(e.users, privileges, roles, log)
	e.supplierSvc = NewSupplierService(e.suppliers, e.users, roles, log)
	e.inventory = NewInventoryService(e.products, e.txs, db, hub, m, log)
	e.orderSvc = NewOrderService(e.orders, e.suppliers, e.products, e.txs, db, hub, m, log)
	e.messageSvc = NewMessageService(e.messages, e.users, hub, log)
	e.cameras = NewCameraService(cameraRepo, log)
	e.dashboard = NewDashboardService(e.users, e.suppliers, e.products, e.orders, e.txs, cameraRepo)
	return e
}

func actorOf(u *model.User) Actor {
	return Actor{ID: u.ID, Username: u.Username, Name: u.FullName, Role: u.RoleCode()}
}

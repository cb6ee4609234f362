package repository_test

import (
	"testing"
	"time"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeedDefaultsIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, repository.SeedDefaults(db, "another-password"))

	roles, err := repository.NewRoleRepo(db).FindAll()
	require.NoError(t, err)
	assert.Len(t, roles, len(model.DefaultRoles))

	privileges, err := repository.NewPrivilegeRepo(db).FindAll()
	require.NoError(t, err)
	assert.Len(t, privileges, len(model.DefaultPrivileges))

	users, err := repository.NewUserRepo(db).Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, users)

	// The second run must not reset the admin password.
	admin := testutil.Admin(t, db)
	assert.True(t, admin.CheckPassword(testutil.Password))
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))
}

func TestUserRepoSoftDelete(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	u := testutil.CreateUser(t, db, "temp", model.RoleWarehouse)

	require.NoError(t, users.Delete(u.ID, "tester"))
	_, err := users.FindByID(u.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, users.Delete(u.ID, "tester"), gorm.ErrRecordNotFound)

	var deletedBy []string
	require.NoError(t, db.Unscoped().Model(&model.User{}).Where("id = ?", u.ID).Pluck("deleted_by", &deletedBy).Error)
	assert.Equal(t, []string{"tester"}, deletedBy)
}

func TestUserRepoTakenChecksSeeDeletedRows(t *testing.T) {
	db := testutil.NewDB(t)
	users := repository.NewUserRepo(db)
	u := testutil.CreateUser(t, db, "temp", model.RoleWarehouse)
	require.NoError(t, users.Delete(u.ID, "tester"))

	taken, err := users.UsernameTaken("temp")
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = users.EmailTaken(u.Email)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = users.UsernameTaken("fresh")
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestSupplierCreateWithUserStoresPrivileges(t *testing.T) {
	db := testutil.NewDB(t)
	role, err := repository.NewRoleRepo(db).FindByCode(model.RoleSupplier)
	require.NoError(t, err)
	require.NotEmpty(t, role.Privileges)

	user := &model.User{Username: "barrelco", Email: "ops@barrelco.test", FullName: "Barrel Co", RoleID: &role.ID, IsActive: true, Privileges: role.Privileges}
	require.NoError(t, user.SetPassword(testutil.Password))
	supplier := &model.Supplier{CompanyName: "Barrel Co", Email: user.Email, Status: model.SupplierActive}
	require.NoError(t, repository.NewSupplierRepo(db).CreateWithUser(user, supplier))

	loaded, err := repository.NewUserRepo(db).FindByID(supplier.UserID)
	require.NoError(t, err)
	assert.ElementsMatch(t, model.DefaultRolePrivileges[model.RoleSupplier], loaded.GetPrivilegeCodes())

	// A failed supplier insert leaves no orphan account behind.
	clash := &model.User{Username: "barrelco2", Email: "ops2@barrelco.test", FullName: "Clash", RoleID: &role.ID, IsActive: true, Privileges: role.Privileges}
	require.NoError(t, clash.SetPassword(testutil.Password))
	dup := &model.Supplier{BaseModel: model.BaseModel{ID: supplier.ID}, CompanyName: "Clash", Status: model.SupplierActive}
	require.Error(t, repository.NewSupplierRepo(db).CreateWithUser(clash, dup))
	taken, err := repository.NewUserRepo(db).UsernameTaken("barrelco2")
	require.NoError(t, err)
	assert.False(t, taken)
}

func newOrder(supplier *model.Supplier, buyer *model.User, product *model.Product, status model.OrderStatus, total string) *model.Order {
	order := &model.Order{
		SupplierID:  supplier.ID,
		Status:      status,
		TotalAmount: decimal.RequireFromString(total),
		CreatedByID: buyer.ID,
		Items: []model.OrderItem{
			{ProductID: product.ID, Quantity: 1, Price: decimal.RequireFromString(total)},
		},
	}
	order.CreatedBy = buyer.ID.String()
	return order
}

func TestOrderRepoAggregates(t *testing.T) {
	db := testutil.NewDB(t)
	orders := repository.NewOrderRepo(db)
	buyer := testutil.CreateUser(t, db, "buyer", model.RolePurchasing)
	north := testutil.CreateSupplier(t, db, "north", "North Cooperage")
	south := testutil.CreateSupplier(t, db, "south", "South Glass")
	barrel := testutil.CreateProduct(t, db, "Barrel", 1, 0, "400.00")

	require.NoError(t, orders.Create(newOrder(north, buyer, barrel, model.OrderReceived, "400.00")))
	require.NoError(t, orders.Create(newOrder(north, buyer, barrel, model.OrderReceived, "250.50")))
	require.NoError(t, orders.Create(newOrder(south, buyer, barrel, model.OrderPending, "99.99")))
	require.NoError(t, orders.Create(newOrder(south, buyer, barrel, model.OrderRejected, "10.00")))

	counts, err := orders.CountByStatus(nil)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[model.OrderReceived])
	assert.EqualValues(t, 1, counts[model.OrderPending])
	assert.EqualValues(t, 1, counts[model.OrderRejected])
	assert.EqualValues(t, 0, counts[model.OrderApproved])
	assert.Len(t, counts, 4)

	southCounts, err := orders.CountByStatus(&south.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, southCounts[model.OrderReceived])

	total, err := orders.SumTotal(model.OrderReceived, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "650.50", total.StringFixed(2))

	total, err = orders.SumTotal(model.OrderReceived, &south.ID, nil)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	future := time.Now().Add(time.Hour)
	total, err = orders.SumTotal(model.OrderReceived, nil, &future)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	list, err := orders.FindAll(repository.OrderFilter{SupplierID: &north.ID})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, o := range list {
		assert.Equal(t, "North Cooperage", o.Supplier.CompanyName)
	}

	limited, err := orders.FindAll(repository.OrderFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, limited, 3)

	loaded, err := orders.FindByID(list[0].ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Barrel", loaded.Items[0].Product.Name)
}

func TestMessageRepoReadState(t *testing.T) {
	db := testutil.NewDB(t)
	messages := repository.NewMessageRepo(db)
	from := testutil.CreateUser(t, db, "from", model.RolePurchasing)
	to := testutil.CreateUser(t, db, "to", model.RoleWarehouse)

	for _, subject := range []string{"first", "second"} {
		require.NoError(t, messages.Create(&model.Message{SenderID: from.ID, ReceiverID: to.ID, Subject: subject, Body: "-"}))
	}

	inbox, err := messages.Inbox(to.ID, false)
	require.NoError(t, err)
	require.Len(t, inbox, 2)

	require.NoError(t, messages.MarkRead(inbox[0].ID))
	read, err := messages.FindByID(inbox[0].ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	require.NotNil(t, read.ReadAt)
	readAt := *read.ReadAt

	// Marking again keeps the first read time.
	require.NoError(t, messages.MarkRead(inbox[0].ID))
	again, err := messages.FindByID(inbox[0].ID)
	require.NoError(t, err)
	assert.True(t, again.ReadAt.Equal(readAt))

	n, err := messages.UnreadCount(to.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	sent, err := messages.Sent(from.ID)
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	require.NoError(t, messages.Delete(inbox[1].ID, to.ID.String()))
	assert.ErrorIs(t, messages.Delete(inbox[1].ID, to.ID.String()), gorm.ErrRecordNotFound)
	n, err = messages.UnreadCount(to.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestTransactionRepoFiltersAndMovement(t *testing.T) {
	db := testutil.NewDB(t)
	txs := repository.NewTransactionRepo(db)
	keeper := testutil.CreateUser(t, db, "keeper", model.RoleWarehouse)
	corks := testutil.CreateProduct(t, db, "Corks", 100, 10, "0.20")
	labels := testutil.CreateProduct(t, db, "Labels", 100, 10, "0.05")
	ref := uuid.New()

	movements := []model.InventoryTransaction{
		{ProductID: corks.ID, Quantity: 40, Type: model.TxIn, ReferenceType: model.RefOrder, ReferenceID: &ref},
		{ProductID: corks.ID, Quantity: 15, Type: model.TxOut, ReferenceType: model.RefAdjustment, Note: "breakage"},
		{ProductID: labels.ID, Quantity: 200, Type: model.TxIn, ReferenceType: model.RefAdjustment, Note: "recount"},
	}
	for i := range movements {
		movements[i].CreatedByID = &keeper.ID
		require.NoError(t, txs.Create(db, &movements[i]))
	}

	all, err := txs.FindAll(repository.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "keeper", all[0].CreatedByUser.Username)

	forCorks, err := txs.FindAll(repository.TransactionFilter{ProductID: &corks.ID})
	require.NoError(t, err)
	assert.Len(t, forCorks, 2)

	outs, err := txs.FindAll(repository.TransactionFilter{Type: model.TxOut})
	require.NoError(t, err)
	require.Len(t, outs, 1)
	assert.Equal(t, "breakage", outs[0].Note)

	byOrder, err := txs.FindAll(repository.TransactionFilter{ReferenceID: &ref})
	require.NoError(t, err)
	require.Len(t, byOrder, 1)
	assert.Equal(t, "Corks", byOrder[0].Product.Name)

	movement, err := txs.GetStockMovement(time.Now().Add(-24*time.Hour), time.Now().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, movement, 1)
	assert.Equal(t, 240, movement[0].Inbound)
	assert.Equal(t, 15, movement[0].Outbound)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), movement[0].Date)
}

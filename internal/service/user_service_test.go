package service

import (
	"testing"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAssignsRoleDefaults(t *testing.T) {
	e := newTestEnv(t)
	admin := actorOf(testutil.Admin(t, e.db))

	user, err := e.userSvc.CreateUser(&CreateUserRequest{
		Username: "cellarhand", Email: "cellar@winery.test", Password: "barrel1", FullName: "Cellar Hand", RoleCode: model.RoleWarehouse,
	}, admin)
	require.NoError(t, err)
	require.Equal(t, model.RoleWarehouse, user.RoleCode())
	require.ElementsMatch(t, model.DefaultRolePrivileges[model.RoleWarehouse], user.GetPrivilegeCodes())

	_, err = e.userSvc.CreateUser(&CreateUserRequest{
		Username: "cellarhand", Email: "other@winery.test", Password: "barrel1", FullName: "X", RoleCode: model.RoleWarehouse,
	}, admin)
	require.ErrorIs(t, err, ErrUsernameExists)

	_, err = e.userSvc.CreateUser(&CreateUserRequest{
		Username: "other", Email: "cellar@winery.test", Password: "barrel1", FullName: "X", RoleCode: model.RoleWarehouse,
	}, admin)
	require.ErrorIs(t, err, ErrEmailExists)

	_, err = e.userSvc.CreateUser(&CreateUserRequest{
		Username: "other", Email: "o@winery.test", Password: "barrel1", FullName: "X", RoleCode: "CEO",
	}, admin)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.userSvc.CreateUser(&CreateUserRequest{
		Username: "vendor", Email: "v@winery.test", Password: "barrel1", FullName: "X", RoleCode: model.RoleSupplier,
	}, admin)
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateUserChangesRoleAndDeactivates(t *testing.T) {
	e := newTestEnv(t)
	admin := actorOf(testutil.Admin(t, e.db))
	u := testutil.CreateUser(t, e.db, "swing", model.RoleWarehouse)
	_, err := e.auth.Login("swing", testutil.Password)
	require.NoError(t, err)

	inactive := false
	updated, err := e.userSvc.UpdateUser(u.ID, &UpdateUserRequest{
		Email: u.Email, FullName: "Swing Shift", RoleCode: model.RolePurchasing, IsActive: &inactive,
	}, admin)
	require.NoError(t, err)
	require.Equal(t, model.RolePurchasing, updated.RoleCode())
	require.False(t, updated.IsActive)
	require.ElementsMatch(t, model.DefaultRolePrivileges[model.RolePurchasing], updated.GetPrivilegeCodes())

	_, err = e.auth.Login("swing", testutil.Password)
	require.ErrorIs(t, err, ErrUserInactive)

	_, err = e.userSvc.UpdateUser(u.ID, &UpdateUserRequest{
		Email: u.Email, FullName: "Swing", RoleCode: model.RoleSupplier,
	}, admin)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	adminUser := testutil.Admin(t, e.db)
	admin := actorOf(adminUser)
	u := testutil.CreateUser(t, e.db, "temp", model.RoleWarehouse)

	require.ErrorIs(t, e.userSvc.DeleteUser(adminUser.ID, admin), ErrCannotDeleteSelf)
	require.NoError(t, e.userSvc.DeleteUser(u.ID, admin))
	_, err := e.userSvc.GetUserByID(u.ID)
	require.ErrorIs(t, err, ErrUserNotFound)
	require.ErrorIs(t, e.userSvc.DeleteUser(u.ID, admin), ErrUserNotFound)
}

func TestDeletedAccountsKeepTheirNames(t *testing.T) {
	e := newTestEnv(t)
	adminUser := testutil.Admin(t, e.db)
	admin := actorOf(adminUser)
	gone := testutil.CreateUser(t, e.db, "seasonal", model.RoleWarehouse)
	stays := testutil.CreateUser(t, e.db, "fulltime", model.RoleWarehouse)
	require.NoError(t, e.userSvc.DeleteUser(gone.ID, admin))

	_, err := e.userSvc.CreateUser(&CreateUserRequest{
		Username: "seasonal", Email: "new@winery.test", Password: "barrel1", FullName: "X", RoleCode: model.RoleWarehouse,
	}, admin)
	require.ErrorIs(t, err, ErrUsernameExists)

	_, err = e.userSvc.CreateUser(&CreateUserRequest{
		Username: "seasonal2", Email: gone.Email, Password: "barrel1", FullName: "X", RoleCode: model.RoleWarehouse,
	}, admin)
	require.ErrorIs(t, err, ErrEmailExists)

	_, err = e.userSvc.UpdateUser(stays.ID, &UpdateUserRequest{Email: gone.Email, FullName: "Full Time", RoleCode: model.RoleWarehouse}, admin)
	require.ErrorIs(t, err, ErrEmailExists)

	_, err = e.supplierSvc.CreateSupplier(&CreateSupplierRequest{
		Username: "seasonal", Password: "stopper1", Email: "sales@seasonal.test", CompanyName: "Seasonal Corks",
	}, admin)
	require.ErrorIs(t, err, ErrUsernameExists)
}

func TestUpdateUserPrivileges(t *testing.T) {
	e := newTestEnv(t)
	admin := actorOf(testutil.Admin(t, e.db))
	u := testutil.CreateUser(t, e.db, "clerk", model.RolePurchasing)

	updated, err := e.userSvc.UpdateUserPrivileges(u.ID, []string{model.PrivOrderView, model.PrivOrderView, model.PrivMessageSend}, admin)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{model.PrivOrderView, model.PrivMessageSend}, updated.GetPrivilegeCodes())

	_, err = e.userSvc.UpdateUserPrivileges(u.ID, []string{"rocket:launch"}, admin)
	require.ErrorIs(t, err, ErrValidation)

	_, err = e.userSvc.UpdateUserPrivileges(uuid.New(), nil, admin)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestListUsersAndRecipients(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.Admin(t, e.db)
	testutil.CreateUser(t, e.db, "keeper", model.RoleWarehouse)
	testutil.CreateUser(t, e.db, "buyer", model.RolePurchasing)

	all, err := e.userSvc.GetAllUsers("")
	require.NoError(t, err)
	require.Len(t, all, 3)

	keepers, err := e.userSvc.GetAllUsers(model.RoleWarehouse)
	require.NoError(t, err)
	require.Len(t, keepers, 1)
	require.Equal(t, "keeper", keepers[0].Username)

	_, err = e.userSvc.GetAllUsers("JANITOR")
	require.ErrorIs(t, err, ErrValidation)

	recipients, err := e.userSvc.GetRecipients(admin.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 2)

	roles, err := e.userSvc.GetRoles()
	require.NoError(t, err)
	require.Len(t, roles, 4)
}

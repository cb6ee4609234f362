package service

import (
	"testing"
	"time"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/testutil"
	"go-winery-scm/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestLoginAndValidateToken(t *testing.T) {
	e := newTestEnv(t)
	testutil.CreateUser(t, e.db, "keeper", model.RoleWarehouse)

	resp, err := e.auth.Login("keeper", testutil.Password)
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, model.RoleWarehouse, resp.Role.Code)
	require.Contains(t, resp.Privileges, model.PrivStockAdjust)

	claims, err := e.tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "keeper", claims.Username)

	valid, err := e.auth.ValidateToken(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "keeper", valid.User.Username)

	_, err = e.auth.Login("keeper", "wrong-password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Login("nobody", testutil.Password)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	e := newTestEnv(t)
	u := testutil.CreateUser(t, e.db, "former", model.RolePurchasing)
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("is_active", false).Error)

	_, err := e.auth.Login("former", testutil.Password)
	require.ErrorIs(t, err, ErrUserInactive)
}

func TestSecondLoginAndLogoutInvalidateTokens(t *testing.T) {
	e := newTestEnv(t)
	u := testutil.CreateUser(t, e.db, "buyer", model.RolePurchasing)

	first, err := e.auth.Login("buyer", testutil.Password)
	require.NoError(t, err)
	second, err := e.auth.Login("buyer", testutil.Password)
	require.NoError(t, err)

	_, err = e.auth.ValidateToken(first.Token)
	require.ErrorIs(t, err, ErrSessionReplaced)
	_, err = e.auth.ValidateToken(second.Token)
	require.NoError(t, err)

	require.NoError(t, e.auth.Logout(u.ID))
	_, err = e.auth.ValidateToken(second.Token)
	require.ErrorIs(t, err, ErrSessionReplaced)
}

func TestValidateTokenIdleTimeout(t *testing.T) {
	e := newTestEnv(t)
	u := testutil.CreateUser(t, e.db, "idle", model.RoleWarehouse)
	resp, err := e.auth.Login("idle", testutil.Password)
	require.NoError(t, err)

	stale := time.Now().Add(-2 * time.Hour)
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("last_seen_at", stale).Error)
	_, err = e.auth.ValidateToken(resp.Token)
	require.ErrorIs(t, err, ErrSessionTimeout)

	require.NoError(t, e.auth.Heartbeat(u.ID))
	_, err = e.auth.ValidateToken(resp.Token)
	require.NoError(t, err)

	// A zero timeout disables the check.
	noIdle := NewAuthService(e.users, e.tokens, nil, 0, logger.Discard())
	require.NoError(t, e.db.Model(&model.User{}).Where("id = ?", u.ID).Update("last_seen_at", stale).Error)
	_, err = noIdle.ValidateToken(resp.Token)
	require.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	e := newTestEnv(t)
	u := testutil.CreateUser(t, e.db, "keeper", model.RoleWarehouse)
	resp, err := e.auth.Login("keeper", testutil.Password)
	require.NoError(t, err)

	require.ErrorIs(t, e.auth.ChangePassword(u.ID, testutil.Password, "123"), ErrWeakPassword)
	require.ErrorIs(t, e.auth.ChangePassword(u.ID, "not-it", "riesling42"), ErrWrongPassword)
	require.NoError(t, e.auth.ChangePassword(u.ID, testutil.Password, "riesling42"))

	_, err = e.auth.ValidateToken(resp.Token)
	require.ErrorIs(t, err, ErrSessionReplaced)

	_, err = e.auth.Login("keeper", testutil.Password)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Login("keeper", "riesling42")
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	admin := testutil.Admin(t, e.db)

	me, err := e.auth.Me(admin.ID)
	require.NoError(t, err)
	require.Equal(t, "admin", me.Username)
	require.Equal(t, model.RoleAdmin, me.Role.Code)
	require.Len(t, me.Privileges, len(model.DefaultPrivileges))
}

package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/testutil"
	"go-winery-scm/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func withLocals(role string, privileges []string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals(LocalRole, role)
		}
		if privileges != nil {
			c.Locals(LocalPrivileges, privileges)
		}
		return c.Next()
	}
}

func status(t *testing.T, handlers ...fiber.Handler) int {
	t.Helper()
	app := fiber.New()
	handlers = append(handlers, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/", handlers...)
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	return resp.StatusCode
}

func TestRequireRole(t *testing.T) {
	require.Equal(t, 200, status(t, withLocals("WAREHOUSE", nil), RequireRole("WAREHOUSE")))
	require.Equal(t, 200, status(t, withLocals("ADMIN", nil), RequireRole("SUPPLIER")))
	require.Equal(t, 200, status(t, withLocals("PURCHASING", nil), RequireRole("WAREHOUSE", "PURCHASING")))
	require.Equal(t, 403, status(t, withLocals("SUPPLIER", nil), RequireRole("WAREHOUSE")))
	require.Equal(t, 403, status(t, RequireRole("WAREHOUSE")))
}

func TestRequirePrivilege(t *testing.T) {
	require.Equal(t, 200, status(t, withLocals("", []string{"order:view"}), RequirePrivilege("order:view")))
	require.Equal(t, 403, status(t, withLocals("", []string{"order:view"}), RequirePrivilege("order:approve")))
	require.Equal(t, 403, status(t, RequirePrivilege("order:view")))
}

func TestRequireAnyPrivilege(t *testing.T) {
	require.Equal(t, 200, status(t, withLocals("", []string{"stock:adjust"}), RequireAnyPrivilege("order:view", "stock:adjust")))
	require.Equal(t, 403, status(t, withLocals("", []string{}), RequireAnyPrivilege("order:view", "stock:adjust")))
}

func TestRequireSocketAuthAcceptsQueryOrHeader(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "keeper", model.RoleWarehouse)
	tokens := jwt.NewManager("test-secret-at-least-16-chars", time.Hour)
	token, err := tokens.GenerateToken(jwt.Subject{UserID: user.ID, Username: user.Username, TokenVersion: user.TokenVersion})
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/ws", RequireSocketAuth(tokens, repository.NewUserRepo(db)), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals(LocalUserID).(string) + " " + c.Locals(LocalRole).(string))
	})
	code := func(target, header string) int {
		req := httptest.NewRequest("GET", target, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	require.Equal(t, 200, code("/ws?token="+token, ""))
	require.Equal(t, 200, code("/ws", "Bearer "+token))
	require.Equal(t, 401, code("/ws", ""))
	require.Equal(t, 401, code("/ws", "Token "+token))
	require.Equal(t, 401, code("/ws?token=nope", ""))

	require.NoError(t, db.Model(&model.User{}).Where("id = ?", user.ID).Update("token_version", "rotated").Error)
	require.Equal(t, 401, code("/ws?token="+token, ""))
}

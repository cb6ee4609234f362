package middleware

import (
	"strings"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth.
const (
	LocalUserID     = "user_id"
	LocalUsername   = "username"
	LocalUserName   = "user_name"
	LocalRole       = "user_role"
	LocalPrivileges = "user_privileges"
)

// RequireAuth validates the Bearer token, checks the account is still active and the
// token belongs to its current session, then stores the user in c.Locals.
func RequireAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}
		return authenticate(c, tokens, userRepo, token)
	}
}

// RequireSocketAuth authenticates a websocket handshake. Browsers cannot set headers
// on the upgrade request, so the token may also be passed as ?token=.
func RequireSocketAuth(tokens *jwt.Manager, userRepo repository.UserRepository) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			token, _ = bearerToken(c.Get("Authorization"))
		}
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, tokens, userRepo, token)
	}
}

func bearerToken(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func authenticate(c *fiber.Ctx, tokens *jwt.Manager, userRepo repository.UserRepository, token string) error {
	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	user, err := userRepo.FindByID(claims.UserID)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "User not found"})
	}
	if !user.IsActive {
		return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
	}
	if user.TokenVersion != claims.TokenVersion {
		return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
	}

	// Role and privileges come from the database so admin changes apply immediately.
	c.Locals(LocalUserID, user.ID.String())
	c.Locals(LocalUsername, user.Username)
	c.Locals(LocalUserName, user.FullName)
	c.Locals(LocalRole, user.RoleCode())
	c.Locals(LocalPrivileges, user.GetPrivilegeCodes())

	return c.Next()
}

// RequireRole lets the request through when the user's role is one of roles.
// ADMIN passes every role gate.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals(LocalRole).(string)
		if role == "" {
			return c.Status(403).JSON(fiber.Map{"error": "No role found"})
		}
		if role == model.RoleAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if r == role {
				return c.Next()
			}
		}
		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires role " + strings.Join(roles, " or "),
		})
	}
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}

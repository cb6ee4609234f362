package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"go-winery-scm/internal/middleware"
	"go-winery-scm/internal/service"
	"go-winery-scm/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// actorFrom builds the acting user from the locals RequireAuth sets.
func actorFrom(c *fiber.Ctx) (service.Actor, bool) {
	raw, _ := c.Locals(middleware.LocalUserID).(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return service.Actor{}, false
	}
	username, _ := c.Locals(middleware.LocalUsername).(string)
	name, _ := c.Locals(middleware.LocalUserName).(string)
	role, _ := c.Locals(middleware.LocalRole).(string)
	return service.Actor{ID: id, Username: username, Name: name, Role: role}, true
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(401).JSON(fiber.Map{"error": "Unauthorized"})
}

// paramID parses the :id route param; the returned error renders as 400.
func paramID(c *fiber.Ctx, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "Invalid "+what+" ID")
	}
	return id, nil
}

func queryUUID(c *fiber.Ctx, key string) (*uuid.UUID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func invalidJSON(c *fiber.Ctx) error {
	return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
}

// respondError maps service errors to status codes. Unexpected errors are logged,
// not shown to the client.
func respondError(c *fiber.Ctx, err error) error {
	code := statusFor(err)
	if code == fiber.StatusInternalServerError {
		slog.Error("request failed", slog.String("path", c.Path()), slog.Any("error", err))
		return c.Status(code).JSON(fiber.Map{"error": "Internal server error"})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrWrongPassword),
		errors.Is(err, service.ErrCannotMessageSelf),
		errors.Is(err, service.ErrRecipientUnavailable),
		errors.Is(err, service.ErrSupplierInactive):
		return fiber.StatusBadRequest

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrUserInactive),
		errors.Is(err, service.ErrSessionTimeout),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		return fiber.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, service.ErrCannotDeleteSelf):
		return fiber.StatusForbidden

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrSupplierNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTransactionNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrCameraNotFound):
		return fiber.StatusNotFound

	case errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrProductExists),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders errors that escape handlers in the same {"error": ...} shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else if s := statusFor(err); s != fiber.StatusInternalServerError {
		code = s
		msg = err.Error()
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}

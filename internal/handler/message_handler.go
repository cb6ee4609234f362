package handler

import (
	"go-winery-scm/internal/service"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	messages service.MessageService
}

func NewMessageHandler(messages service.MessageService) *MessageHandler {
	return &MessageHandler{messages: messages}
}

// Inbox lists received messages; ?unread=true limits to unread ones
// GET /api/v1/messages/inbox
func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	messages, err := h.messages.Inbox(actor, c.QueryBool("unread"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// GET /api/v1/messages/sent
func (h *MessageHandler) Sent(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	messages, err := h.messages.Sent(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(messages)
}

// GET /api/v1/messages/unread-count
func (h *MessageHandler) UnreadCount(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	n, err := h.messages.UnreadCount(actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

// GET /api/v1/messages/:id
func (h *MessageHandler) Get(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := paramID(c, "message")
	if err != nil {
		return err
	}
	message, err := h.messages.Get(id, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(message)
}

// POST /api/v1/messages
func (h *MessageHandler) Send(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var req service.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	message, err := h.messages.Send(&req, actor)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Message sent", "data": message})
}

// POST /api/v1/messages/:id/read
func (h *MessageHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := paramID(c, "message")
	if err != nil {
		return err
	}
	if err := h.messages.MarkRead(id, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Marked as read"})
}

// DELETE /api/v1/messages/:id
func (h *MessageHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	id, err := paramID(c, "message")
	if err != nil {
		return err
	}
	if err := h.messages.Delete(id, actor); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Message deleted"})
}

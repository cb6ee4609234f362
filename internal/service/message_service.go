package service

import (
	"log/slog"
	"strings"

	"go-winery-scm/internal/model"
	"go-winery-scm/internal/repository"
	"go-winery-scm/internal/ws"

	"github.com/google/uuid"
)

type MessageService interface {
	Send(req *SendMessageRequest, actor Actor) (*model.MessageResponse, error)
	Inbox(actor Actor, unreadOnly bool) ([]model.MessageResponse, error)
	Sent(actor Actor) ([]model.MessageResponse, error)
	Get(id uuid.UUID, actor Actor) (*model.MessageResponse, error)
	MarkRead(id uuid.UUID, actor Actor) error
	UnreadCount(actor Actor) (int64, error)
	Delete(id uuid.UUID, actor Actor) error
}

type SendMessageRequest struct {
	ReceiverID uuid.UUID `json:"receiver_id" validate:"uuid_required"`
	Subject    string    `json:"subject" validate:"required,max=255"`
	Body       string    `json:"body" validate:"required"`
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	wsHub       *ws.Hub
	logger      *slog.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, userRepo repository.UserRepository, hub *ws.Hub, logger *slog.Logger) MessageService {
	if logger == nil {
		logger = slog.Default()
	}
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		wsHub:       hub,
		logger:      logger,
	}
}

func (s *messageService) Send(req *SendMessageRequest, actor Actor) (*model.MessageResponse, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	req.Body = strings.TrimSpace(req.Body)
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.ReceiverID == actor.ID {
		return nil, ErrCannotMessageSelf
	}

	receiver, err := s.userRepo.FindByID(req.ReceiverID)
	if err != nil || !receiver.IsActive {
		return nil, ErrRecipientUnavailable
	}

	message := &model.Message{
		SenderID:   actor.ID,
		ReceiverID: receiver.ID,
		Subject:    req.Subject,
		Body:       req.Body,
	}
	message.CreatedBy = actor.AuditID()
	message.UpdatedBy = actor.AuditID()
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	saved, err := s.messageRepo.FindByID(message.ID)
	if err != nil {
		return nil, err
	}
	resp := saved.ToResponse()

	// Only the receiver's sockets get the notice; the body stays out of it.
	s.wsHub.Publish(ws.Event{
		Type:   ws.EventNewMessage,
		Action: "created",
		To:     ws.Audience{Users: []uuid.UUID{receiver.ID}},
		Data: map[string]interface{}{
			"message_id":  resp.ID,
			"receiver_id": resp.ReceiverID,
			"sender":      resp.Sender,
			"subject":     resp.Subject,
		},
	})
	s.logger.Debug("message sent", slog.String("from", actor.Username), slog.String("to", receiver.Username))
	return &resp, nil
}

func (s *messageService) Inbox(actor Actor, unreadOnly bool) ([]model.MessageResponse, error) {
	messages, err := s.messageRepo.Inbox(actor.ID, unreadOnly)
	if err != nil {
		return nil, err
	}
	return toMessageResponses(messages), nil
}

func (s *messageService) Sent(actor Actor) ([]model.MessageResponse, error) {
	messages, err := s.messageRepo.Sent(actor.ID)
	if err != nil {
		return nil, err
	}
	return toMessageResponses(messages), nil
}

// Get returns a message to its sender or receiver. Opening it as the receiver marks it read.
func (s *messageService) Get(id uuid.UUID, actor Actor) (*model.MessageResponse, error) {
	message, err := s.participantMessage(id, actor)
	if err != nil {
		return nil, err
	}
	if message.ReceiverID == actor.ID && !message.IsRead {
		if err := s.messageRepo.MarkRead(message.ID); err != nil {
			return nil, err
		}
		if message, err = s.messageRepo.FindByID(id); err != nil {
			return nil, err
		}
	}
	resp := message.ToResponse()
	return &resp, nil
}

func (s *messageService) MarkRead(id uuid.UUID, actor Actor) error {
	message, err := s.participantMessage(id, actor)
	if err != nil {
		return err
	}
	if message.ReceiverID != actor.ID {
		return ErrForbidden
	}
	return s.messageRepo.MarkRead(id)
}

func (s *messageService) UnreadCount(actor Actor) (int64, error) {
	return s.messageRepo.UnreadCount(actor.ID)
}

func (s *messageService) Delete(id uuid.UUID, actor Actor) error {
	if _, err := s.participantMessage(id, actor); err != nil {
		return err
	}
	if err := s.messageRepo.Delete(id, actor.AuditID()); err != nil {
		return notFound(err, ErrMessageNotFound)
	}
	return nil
}

// participantMessage hides messages from anyone who is neither sender nor receiver.
func (s *messageService) participantMessage(id uuid.UUID, actor Actor) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(id)
	if err != nil {
		return nil, notFound(err, ErrMessageNotFound)
	}
	if message.SenderID != actor.ID && message.ReceiverID != actor.ID {
		return nil, ErrMessageNotFound
	}
	return message, nil
}

func toMessageResponses(messages []model.Message) []model.MessageResponse {
	out := make([]model.MessageResponse, len(messages))
	for i := range messages {
		out[i] = messages[i].ToResponse()
	}
	return out
}

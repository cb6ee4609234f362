package repository

import (
	"time"

	"go-winery-scm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(message *model.Message) error
	Inbox(userID uuid.UUID, unreadOnly bool) ([]model.Message, error)
	Sent(userID uuid.UUID) ([]model.Message, error)
	FindByID(id uuid.UUID) (*model.Message, error)
	MarkRead(id uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
	Delete(id uuid.UUID, deletedBy string) error
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepository {
	return &messageRepo{db}
}

func (r *messageRepo) Create(message *model.Message) error {
	return r.db.Omit("Sender", "Receiver").Create(message).Error
}

func (r *messageRepo) Inbox(userID uuid.UUID, unreadOnly bool) ([]model.Message, error) {
	var messages []model.Message
	query := r.db.Preload("Sender").Preload("Receiver").
		Where("receiver_id = ?", userID).
		Order("created_at DESC")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	err := query.Find(&messages).Error
	return messages, err
}

func (r *messageRepo) Sent(userID uuid.UUID) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Preload("Sender").Preload("Receiver").
		Where("sender_id = ?", userID).
		Order("created_at DESC").
		Find(&messages).Error
	return messages, err
}

func (r *messageRepo) FindByID(id uuid.UUID) (*model.Message, error) {
	var message model.Message
	if err := r.db.Preload("Sender").Preload("Receiver").First(&message, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// MarkRead is a no-op for messages that are already read.
func (r *messageRepo) MarkRead(id uuid.UUID) error {
	return r.db.Model(&model.Message{}).
		Where("id = ? AND is_read = ?", id, false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now(),
		}).Error
}

func (r *messageRepo) UnreadCount(userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.Model(&model.Message{}).
		Where("receiver_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}

func (r *messageRepo) Delete(id uuid.UUID, deletedBy string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Message{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Message{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

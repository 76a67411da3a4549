package db

import (
	"context"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationRepository struct {
	database *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{database: database}
}

func (repo *NotificationRepository) LastFiredAt(ctx context.Context, userID uint, ruleID string) (time.Time, bool, error) {
	record := models.NotificationCooldown{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND rule_id = ?", userID, ruleID).
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return time.Time{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return time.Time{}, false, nil
	}
	return record.LastFiredAt, true, nil
}

// CreateWithCooldown stores the notification and moves the (user, rule)
// cooldown to firedAt in one transaction. Concurrent emits for the same key
// resolve to the last write.
func (repo *NotificationRepository) CreateWithCooldown(ctx context.Context, notification *models.Notification, firedAt time.Time) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		cooldown := models.NotificationCooldown{
			UserID:      notification.UserID,
			RuleID:      notification.RuleID,
			LastFiredAt: firedAt,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "rule_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_fired_at"}),
		}).Create(&cooldown).Error
	})
}

func (repo *NotificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	notifications := make([]models.Notification, 0)
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("created_at DESC, id DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (repo *NotificationRepository) MarkRead(ctx context.Context, userID uint, notificationID uint, readAt time.Time) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", readAt)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
)

var (
	ErrNotificationEmitFailed = errors.New("emit notification failed")
	ErrNotificationNotFound   = errors.New("notification not found")
)

type CooldownStore interface {
	LastFiredAt(ctx context.Context, userID uint, ruleID string) (time.Time, bool, error)
}

// CooldownMirror is implemented by cooldown caches that need to learn about
// emissions written to the database.
type CooldownMirror interface {
	MarkFired(ctx context.Context, userID uint, ruleID string, firedAt time.Time, ttl time.Duration) error
}

type NotificationStore interface {
	CreateWithCooldown(ctx context.Context, notification *models.Notification, firedAt time.Time) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID uint, notificationID uint, readAt time.Time) (bool, error)
}

type NotificationPusher interface {
	Push(ctx context.Context, notification models.Notification) error
}

type NotificationDispatcher struct {
	store     NotificationStore
	cooldowns CooldownStore
	pusher    NotificationPusher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewNotificationDispatcher(store NotificationStore, cooldowns CooldownStore, pusher NotificationPusher, logger *logrus.Logger) *NotificationDispatcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationDispatcher{
		store:     store,
		cooldowns: cooldowns,
		pusher:    pusher,
		logger:    logger,
		now:       time.Now,
	}
}

// HasFiredWithinCooldown reports true while (user, rule) is cooling down.
func (dispatcher *NotificationDispatcher) HasFiredWithinCooldown(ctx context.Context, userID uint, ruleID string, cooldownDays int, now time.Time) (bool, error) {
	if cooldownDays <= 0 {
		return false, nil
	}
	lastFired, found, err := dispatcher.cooldowns.LastFiredAt(ctx, userID, ruleID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	return !CooldownElapsed(lastFired, cooldownDays, now), nil
}

// Emit stores the notification and its cooldown record together. Push delivery
// is best effort and never fails the emit.
func (dispatcher *NotificationDispatcher) Emit(ctx context.Context, userID uint, emission Emission, now time.Time) (models.Notification, error) {
	notification := models.Notification{
		UserID:    userID,
		RuleID:    emission.RuleID,
		Type:      string(emission.Type),
		Priority:  emission.Priority,
		Title:     emission.Title,
		Message:   emission.Message,
		CreatedAt: now,
	}
	if err := dispatcher.store.CreateWithCooldown(ctx, &notification, now); err != nil {
		return models.Notification{}, fmt.Errorf("%w: %v", ErrNotificationEmitFailed, err)
	}

	fields := logrus.Fields{"user_id": userID, "rule_id": emission.RuleID}
	if mirror, ok := dispatcher.cooldowns.(CooldownMirror); ok {
		ttl := time.Duration(emission.CooldownDays) * 24 * time.Hour
		if err := mirror.MarkFired(ctx, userID, emission.RuleID, now, ttl); err != nil {
			dispatcher.logger.WithFields(fields).Warnf("Failed to mirror cooldown: %+v", err)
		}
	}
	if dispatcher.pusher != nil {
		if err := dispatcher.pusher.Push(ctx, notification); err != nil {
			dispatcher.logger.WithFields(fields).Warnf("Failed to push notification: %+v", err)
		}
	}

	dispatcher.logger.WithFields(fields).Info("notification emitted")
	return notification, nil
}

func (dispatcher *NotificationDispatcher) List(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]models.Notification, error) {
	return dispatcher.store.ListByUser(ctx, userID, unreadOnly, limit)
}

func (dispatcher *NotificationDispatcher) MarkRead(ctx context.Context, userID uint, notificationID uint) error {
	updated, err := dispatcher.store.MarkRead(ctx, userID, notificationID, dispatcher.now())
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotificationNotFound
	}
	return nil
}

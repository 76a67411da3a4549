package db

import (
	"context"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

type DailyLogRepository struct {
	database *gorm.DB
}

func NewDailyLogRepository(database *gorm.DB) *DailyLogRepository {
	return &DailyLogRepository{database: database}
}

// ListRecent returns the newest logs first; rows sharing a date are ordered by
// id so the latest write comes first.
func (repo *DailyLogRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	query := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *DailyLogRepository) FindByDate(ctx context.Context, userID uint, date time.Time) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		Order("id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

// Upsert writes entry keyed by (user_id, date). An existing row keeps its id and
// creation time; every other column is replaced.
func (repo *DailyLogRepository) Upsert(ctx context.Context, entry *models.DailyLog) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing := models.DailyLog{}
		result := tx.Where("user_id = ? AND date = ?", entry.UserID, entry.Date).Limit(1).Find(&existing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return tx.Create(entry).Error
		}
		entry.ID = existing.ID
		entry.CreatedAt = existing.CreatedAt
		return tx.Save(entry).Error
	})
}

package db

import (
	"context"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

type ScoreRepository struct {
	database *gorm.DB
}

func NewScoreRepository(database *gorm.DB) *ScoreRepository {
	return &ScoreRepository{database: database}
}

func (repo *ScoreRepository) Save(ctx context.Context, record *models.ScoreRecord) error {
	return repo.database.WithContext(ctx).Create(record).Error
}

// Latest returns nil without an error when no score was stored yet.
func (repo *ScoreRepository) Latest(ctx context.Context, userID uint) (*models.ScoreRecord, error) {
	record := models.ScoreRecord{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("calculated_at DESC, id DESC").
		Limit(1).
		Find(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &record, nil
}

func (repo *ScoreRepository) History(ctx context.Context, userID uint, limit int) ([]models.ScoreRecord, error) {
	records := make([]models.ScoreRecord, 0)
	query := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("calculated_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

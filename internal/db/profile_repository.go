package db

import (
	"context"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) FindByID(ctx context.Context, userID uint) (models.UserProfile, error) {
	var profile models.UserProfile
	if err := repo.database.WithContext(ctx).First(&profile, userID).Error; err != nil {
		return models.UserProfile{}, err
	}
	return profile, nil
}

func (repo *ProfileRepository) Create(ctx context.Context, profile *models.UserProfile) error {
	return repo.database.WithContext(ctx).Create(profile).Error
}

func (repo *ProfileRepository) Save(ctx context.Context, profile *models.UserProfile) error {
	return repo.database.WithContext(ctx).Save(profile).Error
}

// ListNotifiableIDs pages through users that accept notifications, ordered by id.
func (repo *ProfileRepository) ListNotifiableIDs(ctx context.Context, afterID uint, limit int) ([]uint, error) {
	ids := make([]uint, 0, limit)
	if err := repo.database.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("notifications_enabled = ? AND id > ?", true, afterID).
		Order("id ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

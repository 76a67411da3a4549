package db

import (
	"context"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PillarRepository struct {
	database *gorm.DB
}

func NewPillarRepository(database *gorm.DB) *PillarRepository {
	return &PillarRepository{database: database}
}

// Find returns nil without an error when the user has no snapshot for pillar.
func (repo *PillarRepository) Find(ctx context.Context, userID uint, pillar models.Pillar) (*models.PillarSnapshot, error) {
	snapshot := models.PillarSnapshot{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND pillar = ?", userID, pillar).
		Limit(1).
		Find(&snapshot)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &snapshot, nil
}

func (repo *PillarRepository) ListByUser(ctx context.Context, userID uint) ([]models.PillarSnapshot, error) {
	snapshots := make([]models.PillarSnapshot, 0, len(models.AllPillars()))
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// Upsert replaces the snapshot stored for (user_id, pillar).
func (repo *PillarRepository) Upsert(ctx context.Context, snapshot *models.PillarSnapshot) error {
	return repo.database.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "pillar"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cycle_length", "cycle_regularity", "diagnoses", "smoker",
			"vegetable_servings", "fruit_servings", "water_glasses", "alcohol_consumption", "ultra_processed", "folic_acid",
			"digestive_health", "fermented_foods", "antibiotics_last_year", "vaginal_infections",
			"stress_level", "sleep_hours", "sleep_quality", "emotional_wellbeing", "relaxation_practice",
			"updated_at",
		}),
	}).Create(snapshot).Error
}

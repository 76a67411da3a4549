package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

type KnowledgeRepository struct {
	database *gorm.DB
}

func NewKnowledgeRepository(database *gorm.DB) *KnowledgeRepository {
	return &KnowledgeRepository{database: database}
}

func (repo *KnowledgeRepository) CreateBatch(ctx context.Context, chunks []models.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return repo.database.WithContext(ctx).CreateInBatches(&chunks, 100).Error
}

func (repo *KnowledgeRepository) DeleteBySource(ctx context.Context, source string) error {
	return repo.database.WithContext(ctx).Where("source = ?", source).Delete(&models.KnowledgeChunk{}).Error
}

// ListCandidates loads chunks for similarity ranking. An empty pillar means all.
func (repo *KnowledgeRepository) ListCandidates(ctx context.Context, pillar string) ([]models.KnowledgeChunk, error) {
	chunks := make([]models.KnowledgeChunk, 0)
	query := repo.database.WithContext(ctx)
	if pillar != "" {
		query = query.Where("pillar = ? OR pillar = ''", pillar)
	}
	if err := query.Order("id ASC").Find(&chunks).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

type ReportRepository struct {
	database *gorm.DB
}

func NewReportRepository(database *gorm.DB) *ReportRepository {
	return &ReportRepository{database: database}
}

func (repo *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return repo.database.WithContext(ctx).Create(report).Error
}

func (repo *ReportRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Report, error) {
	reports := make([]models.Report, 0)
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (repo *ReportRepository) FindByPublicID(ctx context.Context, userID uint, publicID uuid.UUID) (models.Report, error) {
	var report models.Report
	if err := repo.database.WithContext(ctx).
		Where("public_id = ? AND user_id = ?", publicID, userID).
		First(&report).Error; err != nil {
		return models.Report{}, err
	}
	return report, nil
}

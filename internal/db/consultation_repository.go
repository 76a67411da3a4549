package db

import (
	"context"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

type ConsultationRepository struct {
	database *gorm.DB
}

func NewConsultationRepository(database *gorm.DB) *ConsultationRepository {
	return &ConsultationRepository{database: database}
}

func (repo *ConsultationRepository) Append(ctx context.Context, form *models.ConsultationForm) error {
	return repo.database.WithContext(ctx).Create(form).Error
}

func (repo *ConsultationRepository) ListByUser(ctx context.Context, userID uint, formType string, limit int) ([]models.ConsultationForm, error) {
	forms := make([]models.ConsultationForm, 0)
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID)
	if formType != "" {
		query = query.Where("form_type = ?", formType)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Order("submitted_at DESC, id DESC").Find(&forms).Error; err != nil {
		return nil, err
	}
	return forms, nil
}

func (repo *ConsultationRepository) FindByID(ctx context.Context, formID uint) (models.ConsultationForm, error) {
	var form models.ConsultationForm
	if err := repo.database.WithContext(ctx).First(&form, formID).Error; err != nil {
		return models.ConsultationForm{}, err
	}
	return form, nil
}

// UpdateReview touches only the mutable review columns.
func (repo *ConsultationRepository) UpdateReview(ctx context.Context, formID uint, status string, pdfURL string) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.ConsultationForm{}).
		Where("id = ?", formID).
		Updates(map[string]any{
			"status":           status,
			"reviewed_pdf_url": pdfURL,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

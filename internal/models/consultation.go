package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	FormStatusPending  = "pending"
	FormStatusReviewed = "reviewed"

	FormTypeInitial = "INITIAL"
)

type FormAnswer struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
}

// ConsultationForm is append-only; only Status and ReviewedPDFURL change after insert.
type ConsultationForm struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;index" json:"user_id"`
	FormType       string         `gorm:"not null;index" json:"form_type"`
	Answers        datatypes.JSON `json:"answers"`
	SnapshotStats  datatypes.JSON `json:"snapshot_stats"`
	Status         string         `gorm:"not null;default:pending" json:"status"`
	ReviewedPDFURL string         `gorm:"column:reviewed_pdf_url;not null;default:''" json:"reviewed_pdf_url"`
	SubmittedAt    time.Time      `gorm:"not null" json:"submitted_at"`
}

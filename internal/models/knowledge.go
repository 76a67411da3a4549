package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type KnowledgeChunk struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Source    string    `gorm:"not null;index" json:"source"`
	Pillar    string    `gorm:"not null;default:''" json:"pillar"`
	Content   string    `gorm:"not null" json:"content"`
	Embedding []float32 `gorm:"serializer:json" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	ReportKindBasic = "BASIC"
	ReportKindDaily = "DAILY"
)

type Report struct {
	ID         uint      `gorm:"primaryKey" json:"-"`
	PublicID   uuid.UUID `gorm:"type:text;uniqueIndex;not null" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Kind       string    `gorm:"not null" json:"kind"`
	Content    string    `gorm:"not null" json:"content"`
	ScoreTotal *float64  `json:"score_total"`
	CreatedAt  time.Time `json:"created_at"`
}

func (report *Report) BeforeCreate(tx *gorm.DB) error {
	if report.PublicID == uuid.Nil {
		report.PublicID = uuid.New()
	}
	return nil
}

package models

import "time"

const (
	DefaultCycleLength = 28

	CycleRegular   = "regular"
	CycleIrregular = "irregular"

	HeightUnitCentimeters = "cm"
	HeightUnitMeters      = "m"
)

type UserProfile struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Email                string     `gorm:"uniqueIndex;not null" json:"email"`
	Name                 string     `gorm:"not null;default:''" json:"name"`
	Age                  int        `gorm:"not null;default:0" json:"age"`
	Weight               *float64   `json:"weight"`
	Height               *float64   `json:"height"`
	HeightUnit           string     `gorm:"not null;default:''" json:"height_unit"`
	CycleLength          *int       `json:"cycle_length"`
	CycleRegularity      string     `gorm:"not null;default:''" json:"cycle_regularity"`
	LastPeriodDate       *time.Time `gorm:"type:date" json:"last_period_date"`
	Smoker               string     `gorm:"not null;default:''" json:"smoker"`
	Diagnoses            []string   `gorm:"serializer:json" json:"diagnoses"`
	NotificationsEnabled bool       `gorm:"not null" json:"notifications_enabled"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

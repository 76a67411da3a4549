package models

import "time"

const (
	LHPositive = "positive"
	LHNegative = "negative"
)

type DailyLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"not null;uniqueIndex:uidx_user_date" json:"user_id"`
	Date            time.Time `gorm:"type:date;not null;uniqueIndex:uidx_user_date" json:"date"`
	CycleDay        *int      `json:"cycle_day"`
	SleepHours      *float64  `json:"sleep_hours"`
	SleepQuality    *int      `json:"sleep_quality"`
	StressLevel     *int      `json:"stress_level"`
	WaterGlasses    *int      `json:"water_glasses"`
	VeggieServings  *int      `json:"veggie_servings"`
	ActivityMinutes *int      `json:"activity_minutes"`
	SunMinutes      *int      `json:"sun_minutes"`
	Alcohol         *bool     `json:"alcohol"`
	BBT             *float64  `gorm:"column:bbt" json:"bbt"`
	Mucus           string    `gorm:"not null;default:''" json:"mucus"`
	Cervix          string    `gorm:"not null;default:''" json:"cervix"`
	LHTest          string    `gorm:"column:lh_test;not null;default:''" json:"lh_test"`
	Symptoms        []string  `gorm:"serializer:json" json:"symptoms"`
	Notes           string    `json:"notes"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

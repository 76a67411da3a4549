package models

import (
	"strings"
	"time"
)

type Pillar string

const (
	PillarFunction Pillar = "FUNCTION"
	PillarFood     Pillar = "FOOD"
	PillarFlora    Pillar = "FLORA"
	PillarFlow     Pillar = "FLOW"
)

func AllPillars() []Pillar {
	return []Pillar{PillarFunction, PillarFood, PillarFlora, PillarFlow}
}

// ParsePillar accepts any casing and reports false for unknown names.
func ParsePillar(raw string) (Pillar, bool) {
	candidate := Pillar(strings.ToUpper(strings.TrimSpace(raw)))
	for _, pillar := range AllPillars() {
		if pillar == candidate {
			return pillar, true
		}
	}
	return "", false
}

// PillarSnapshot is the current questionnaire state for one pillar. Every
// sub-factor is nullable: nil means the user has not answered it.
type PillarSnapshot struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID uint   `gorm:"not null;uniqueIndex:uidx_user_pillar" json:"user_id"`
	Pillar Pillar `gorm:"type:text;not null;uniqueIndex:uidx_user_pillar" json:"pillar"`

	// FUNCTION
	CycleLength     *int     `json:"cycle_length,omitempty"`
	CycleRegularity *string  `json:"cycle_regularity,omitempty"`
	Diagnoses       []string `gorm:"serializer:json" json:"diagnoses,omitempty"`
	Smoker          *string  `json:"smoker,omitempty"`

	// FOOD
	VegetableServings  *float64 `json:"vegetable_servings,omitempty"`
	FruitServings      *float64 `json:"fruit_servings,omitempty"`
	WaterGlasses       *float64 `json:"water_glasses,omitempty"`
	AlcoholConsumption *float64 `json:"alcohol_consumption,omitempty"`
	UltraProcessed     *float64 `json:"ultra_processed,omitempty"`
	FolicAcid          *bool    `json:"folic_acid,omitempty"`

	// FLORA
	DigestiveHealth     *int     `json:"digestive_health,omitempty"`
	FermentedFoods      *float64 `json:"fermented_foods,omitempty"`
	AntibioticsLastYear *bool    `json:"antibiotics_last_year,omitempty"`
	VaginalInfections   *int     `json:"vaginal_infections,omitempty"`

	// FLOW
	StressLevel        *int     `json:"stress_level,omitempty"`
	SleepHours         *float64 `json:"sleep_hours,omitempty"`
	SleepQuality       *int     `json:"sleep_quality,omitempty"`
	EmotionalWellbeing *int     `json:"emotional_wellbeing,omitempty"`
	RelaxationPractice *bool    `json:"relaxation_practice,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

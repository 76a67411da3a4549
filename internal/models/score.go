package models

import (
	"strings"
	"time"
)

const (
	ScoreReasonProfileUpdate  = "profile_update"
	ScoreReasonDailyLogUpdate = "daily_log_update"
	ScoreReasonManual         = "manual_recalculation"
)

func ScoreReasonPillarUpdate(pillar Pillar) string {
	return "pillar_" + strings.ToLower(string(pillar)) + "_update"
}

// FertyScoreResult holds the composite score. A nil value means the pillar
// (or the total) had no data and must not be read as zero.
type FertyScoreResult struct {
	Total    *float64 `json:"total"`
	Function *float64 `json:"function"`
	Food     *float64 `json:"food"`
	Flora    *float64 `json:"flora"`
	Flow     *float64 `json:"flow"`
}

func (result FertyScoreResult) PillarScore(pillar Pillar) *float64 {
	switch pillar {
	case PillarFunction:
		return result.Function
	case PillarFood:
		return result.Food
	case PillarFlora:
		return result.Flora
	case PillarFlow:
		return result.Flow
	default:
		return nil
	}
}

type ScoreRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_ferty_scores_user_calculated" json:"user_id"`
	Total        *float64  `json:"total"`
	Function     *float64  `json:"function"`
	Food         *float64  `json:"food"`
	Flora        *float64  `json:"flora"`
	Flow         *float64  `json:"flow"`
	Reason       string    `gorm:"not null" json:"reason"`
	CalculatedAt time.Time `gorm:"not null;index:idx_ferty_scores_user_calculated" json:"calculated_at"`
}

func (ScoreRecord) TableName() string { return "ferty_scores" }

func (record ScoreRecord) Result() FertyScoreResult {
	return FertyScoreResult{
		Total:    record.Total,
		Function: record.Function,
		Food:     record.Food,
		Flora:    record.Flora,
		Flow:     record.Flow,
	}
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/datatypes"
)

const snapshotStatsWindow = DynamicDays

var (
	ErrInvalidPillar          = errors.New("invalid pillar")
	ErrInvalidFormType        = errors.New("invalid form type")
	ErrPillarSaveFailed       = errors.New("save pillar snapshot failed")
	ErrPillarLoadFailed       = errors.New("load pillar data failed")
	ErrConsultationSaveFailed = errors.New("save consultation form failed")
	ErrFormNotFound           = errors.New("consultation form not found")
)

type PillarStore interface {
	Find(ctx context.Context, userID uint, pillar models.Pillar) (*models.PillarSnapshot, error)
	ListByUser(ctx context.Context, userID uint) ([]models.PillarSnapshot, error)
	Upsert(ctx context.Context, snapshot *models.PillarSnapshot) error
}

type ConsultationStore interface {
	Append(ctx context.Context, form *models.ConsultationForm) error
	ListByUser(ctx context.Context, userID uint, formType string, limit int) ([]models.ConsultationForm, error)
	UpdateReview(ctx context.Context, formID uint, status string, pdfURL string) (bool, error)
}

type ScoreRefresher interface {
	RecalculateAfterWrite(ctx context.Context, userID uint, reason string) ScoreOutcome
}

type PillarSubmission struct {
	Snapshot models.PillarSnapshot   `json:"snapshot"`
	Form     models.ConsultationForm `json:"form"`
	Score    ScoreOutcome            `json:"score"`
}

type PillarService struct {
	pillars       PillarStore
	consultations ConsultationStore
	logs          ScoreLogReader
	scores        ScoreRefresher
	now           func() time.Time
}

func NewPillarService(pillars PillarStore, consultations ConsultationStore, logs ScoreLogReader, scores ScoreRefresher) *PillarService {
	return &PillarService{
		pillars:       pillars,
		consultations: consultations,
		logs:          logs,
		scores:        scores,
		now:           time.Now,
	}
}

// SavePillarForm merges the answers into the current snapshot, keeps the raw
// answers as form history and refreshes the score. Answers with unknown ids are
// kept in the history only. Every answer is validated before anything is written.
func (service *PillarService) SavePillarForm(ctx context.Context, userID uint, pillar models.Pillar, answers []models.FormAnswer) (PillarSubmission, error) {
	pillar, ok := models.ParsePillar(string(pillar))
	if !ok {
		return PillarSubmission{}, ErrInvalidPillar
	}

	existing, err := service.pillars.Find(ctx, userID, pillar)
	if err != nil {
		return PillarSubmission{}, fmt.Errorf("%w: %v", ErrPillarLoadFailed, err)
	}
	snapshot := models.PillarSnapshot{UserID: userID, Pillar: pillar}
	if existing != nil {
		snapshot = *existing
	}

	history := make([]models.FormAnswer, 0, len(answers))
	for _, answer := range answers {
		questionID := strings.TrimSpace(answer.QuestionID)
		if questionID == "" {
			continue
		}
		answer.QuestionID = questionID

		question, known := PillarFieldMap[questionID]
		if known && question.Pillar == pillar && strings.TrimSpace(answer.Answer) != "" {
			if err := question.apply(&snapshot, answer.Answer); err != nil {
				return PillarSubmission{}, err
			}
			if answer.Question == "" {
				answer.Question = question.Label
			}
		}
		history = append(history, answer)
	}

	if err := service.pillars.Upsert(ctx, &snapshot); err != nil {
		return PillarSubmission{}, fmt.Errorf("%w: %v", ErrPillarSaveFailed, err)
	}

	form, err := service.appendForm(ctx, userID, string(pillar), history)
	if err != nil {
		return PillarSubmission{}, err
	}

	return PillarSubmission{
		Snapshot: snapshot,
		Form:     form,
		Score:    service.scores.RecalculateAfterWrite(ctx, userID, models.ScoreReasonPillarUpdate(pillar)),
	}, nil
}

// SaveInitialForm stores the onboarding questionnaire as history only.
func (service *PillarService) SaveInitialForm(ctx context.Context, userID uint, answers []models.FormAnswer) (models.ConsultationForm, error) {
	return service.appendForm(ctx, userID, models.FormTypeInitial, answers)
}

func (service *PillarService) appendForm(ctx context.Context, userID uint, formType string, answers []models.FormAnswer) (models.ConsultationForm, error) {
	encodedAnswers, err := json.Marshal(answers)
	if err != nil {
		return models.ConsultationForm{}, fmt.Errorf("%w: encode answers: %v", ErrConsultationSaveFailed, err)
	}

	stats, err := service.snapshotStats(ctx, userID)
	if err != nil {
		return models.ConsultationForm{}, fmt.Errorf("%w: %v", ErrConsultationSaveFailed, err)
	}
	encodedStats, err := json.Marshal(stats)
	if err != nil {
		return models.ConsultationForm{}, fmt.Errorf("%w: encode stats: %v", ErrConsultationSaveFailed, err)
	}

	form := models.ConsultationForm{
		UserID:        userID,
		FormType:      formType,
		Answers:       datatypes.JSON(encodedAnswers),
		SnapshotStats: datatypes.JSON(encodedStats),
		Status:        models.FormStatusPending,
		SubmittedAt:   service.now(),
	}
	if err := service.consultations.Append(ctx, &form); err != nil {
		return models.ConsultationForm{}, fmt.Errorf("%w: %v", ErrConsultationSaveFailed, err)
	}
	return form, nil
}

// SnapshotStats are the daily-log averages attached to a submitted form.
type SnapshotStats struct {
	LogsCount          int      `json:"logs_count"`
	AvgSleepHours      *float64 `json:"avg_sleep_hours"`
	AvgSleepQuality    *float64 `json:"avg_sleep_quality"`
	AvgStressLevel     *float64 `json:"avg_stress_level"`
	AvgWaterGlasses    *float64 `json:"avg_water_glasses"`
	AvgVeggieServings  *float64 `json:"avg_veggie_servings"`
	AvgActivityMinutes *float64 `json:"avg_activity_minutes"`
	AlcoholDays        int      `json:"alcohol_days"`
}

func (service *PillarService) snapshotStats(ctx context.Context, userID uint) (SnapshotStats, error) {
	logs, err := service.logs.ListRecent(ctx, userID, snapshotStatsWindow)
	if err != nil {
		return SnapshotStats{}, fmt.Errorf("load recent logs: %w", err)
	}
	return BuildSnapshotStats(logs), nil
}

func BuildSnapshotStats(logs []models.DailyLog) SnapshotStats {
	var sleep, quality, stress, water, veggies, activity logMean
	stats := SnapshotStats{LogsCount: len(logs)}
	for _, entry := range logs {
		sleep.addFloat(entry.SleepHours)
		quality.addInt(entry.SleepQuality)
		stress.addInt(entry.StressLevel)
		water.addInt(entry.WaterGlasses)
		veggies.addInt(entry.VeggieServings)
		activity.addInt(entry.ActivityMinutes)
		if entry.Alcohol != nil && *entry.Alcohol {
			stats.AlcoholDays++
		}
	}
	stats.AvgSleepHours = sleep.rounded()
	stats.AvgSleepQuality = quality.rounded()
	stats.AvgStressLevel = stress.rounded()
	stats.AvgWaterGlasses = water.rounded()
	stats.AvgVeggieServings = veggies.rounded()
	stats.AvgActivityMinutes = activity.rounded()
	return stats
}

func (service *PillarService) FetchPillarData(ctx context.Context, userID uint) (FertyPillars, error) {
	snapshots, err := service.pillars.ListByUser(ctx, userID)
	if err != nil {
		return FertyPillars{}, fmt.Errorf("%w: %v", ErrPillarLoadFailed, err)
	}
	pillars := FertyPillars{}
	for index := range snapshots {
		pillars.Set(&snapshots[index])
	}
	return pillars, nil
}

// FetchPillarAnswers renders the stored snapshot back into questionnaire
// answers. Submitting them again leaves the snapshot unchanged.
func (service *PillarService) FetchPillarAnswers(ctx context.Context, userID uint, pillar models.Pillar) ([]models.FormAnswer, error) {
	pillar, ok := models.ParsePillar(string(pillar))
	if !ok {
		return nil, ErrInvalidPillar
	}
	snapshot, err := service.pillars.Find(ctx, userID, pillar)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPillarLoadFailed, err)
	}

	answers := make([]models.FormAnswer, 0)
	if snapshot == nil {
		return answers, nil
	}
	for _, question := range QuestionsForPillar(pillar) {
		value, ok := question.format(snapshot)
		if !ok {
			continue
		}
		answers = append(answers, models.FormAnswer{
			QuestionID: question.ID,
			Question:   question.Label,
			Answer:     value,
		})
	}
	return answers, nil
}

func (service *PillarService) ListForms(ctx context.Context, userID uint, formType string, limit int) ([]models.ConsultationForm, error) {
	normalized := strings.ToUpper(strings.TrimSpace(formType))
	if normalized != "" && normalized != models.FormTypeInitial {
		if _, ok := models.ParsePillar(normalized); !ok {
			return nil, ErrInvalidFormType
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return service.consultations.ListByUser(ctx, userID, normalized, limit)
}

func (service *PillarService) MarkFormReviewed(ctx context.Context, formID uint, pdfURL string) error {
	updated, err := service.consultations.UpdateReview(ctx, formID, models.FormStatusReviewed, strings.TrimSpace(pdfURL))
	if err != nil {
		return err
	}
	if !updated {
		return ErrFormNotFound
	}
	return nil
}

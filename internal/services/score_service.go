package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
)

const scoreLogLookback = 30

var (
	ErrScoreInputsLoadFailed = errors.New("load score inputs failed")
	ErrScoreSaveFailed       = errors.New("save score failed")
	ErrScoreLoadFailed       = errors.New("load score failed")
)

type ScoreProfileReader interface {
	FindByID(ctx context.Context, userID uint) (models.UserProfile, error)
}

type ScoreLogReader interface {
	ListRecent(ctx context.Context, userID uint, limit int) ([]models.DailyLog, error)
}

type ScorePillarReader interface {
	Find(ctx context.Context, userID uint, pillar models.Pillar) (*models.PillarSnapshot, error)
}

type ScoreRecordStore interface {
	Save(ctx context.Context, record *models.ScoreRecord) error
	Latest(ctx context.Context, userID uint) (*models.ScoreRecord, error)
	History(ctx context.Context, userID uint, limit int) ([]models.ScoreRecord, error)
}

// ScoreOutcome is what a write path reports back after its score refresh.
// Warning is set when the refresh failed; the write itself still succeeded.
type ScoreOutcome struct {
	Result    models.FertyScoreResult `json:"score"`
	Persisted bool                    `json:"persisted"`
	Warning   string                  `json:"score_warning,omitempty"`
}

type ScoreService struct {
	profiles   ScoreProfileReader
	logs       ScoreLogReader
	pillars    ScorePillarReader
	scores     ScoreRecordStore
	calculator ScoreCalculator
	location   *time.Location
	logger     *logrus.Logger
	now        func() time.Time
}

func NewScoreService(profiles ScoreProfileReader, logs ScoreLogReader, pillars ScorePillarReader, scores ScoreRecordStore, calculator ScoreCalculator, location *time.Location, logger *logrus.Logger) *ScoreService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ScoreService{
		profiles:   profiles,
		logs:       logs,
		pillars:    pillars,
		scores:     scores,
		calculator: calculator,
		location:   location,
		logger:     logger,
		now:        time.Now,
	}
}

// Recalculate recomputes the score from stored inputs and appends it to the
// score history with reason.
func (service *ScoreService) Recalculate(ctx context.Context, userID uint, reason string) (models.FertyScoreResult, error) {
	now := service.now().In(service.location)
	result, err := service.Preview(ctx, userID, now)
	if err != nil {
		return models.FertyScoreResult{}, err
	}

	record := models.ScoreRecord{
		UserID:       userID,
		Total:        result.Total,
		Function:     result.Function,
		Food:         result.Food,
		Flora:        result.Flora,
		Flow:         result.Flow,
		Reason:       reason,
		CalculatedAt: now,
	}
	if err := service.scores.Save(ctx, &record); err != nil {
		return result, fmt.Errorf("%w: %v", ErrScoreSaveFailed, err)
	}
	return result, nil
}

// Preview computes the score without storing it.
func (service *ScoreService) Preview(ctx context.Context, userID uint, now time.Time) (models.FertyScoreResult, error) {
	profile, err := service.profiles.FindByID(ctx, userID)
	if err != nil {
		return models.FertyScoreResult{}, fmt.Errorf("%w: profile: %v", ErrScoreInputsLoadFailed, err)
	}
	logs, err := service.logs.ListRecent(ctx, userID, scoreLogLookback)
	if err != nil {
		return models.FertyScoreResult{}, fmt.Errorf("%w: daily logs: %v", ErrScoreInputsLoadFailed, err)
	}

	pillars := FertyPillars{}
	for _, pillar := range models.AllPillars() {
		snapshot, err := service.pillars.Find(ctx, userID, pillar)
		if err != nil {
			return models.FertyScoreResult{}, fmt.Errorf("%w: pillar %s: %v", ErrScoreInputsLoadFailed, pillar, err)
		}
		pillars.Set(snapshot)
	}

	today := DateAtLocation(now, service.location)
	return service.calculator.Calculate(profile, logs, pillars, today), nil
}

// RecalculateAfterWrite is called after a successful write. It never returns
// an error so the caller's write is never undone by a scoring problem.
func (service *ScoreService) RecalculateAfterWrite(ctx context.Context, userID uint, reason string) ScoreOutcome {
	result, err := service.Recalculate(ctx, userID, reason)
	if err != nil {
		service.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"reason":  reason,
		}).Warnf("Failed to refresh ferty score: %+v", err)
		return ScoreOutcome{
			Result:  result,
			Warning: "score could not be updated",
		}
	}
	return ScoreOutcome{Result: result, Persisted: true}
}

func (service *ScoreService) Latest(ctx context.Context, userID uint) (*models.ScoreRecord, error) {
	record, err := service.scores.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoreLoadFailed, err)
	}
	return record, nil
}

func (service *ScoreService) History(ctx context.Context, userID uint, limit int) ([]models.ScoreRecord, error) {
	if limit <= 0 || limit > 365 {
		limit = 30
	}
	records, err := service.scores.History(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoreLoadFailed, err)
	}
	return records, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

const (
	defaultDayListLimit = 30
	maxDayListLimit     = 366
)

var (
	ErrDayEntryLoadFailed = errors.New("load day entry failed")
	ErrDayEntrySaveFailed = errors.New("save day entry failed")
	ErrInvalidDayInput    = errors.New("invalid day input")
	ErrFutureDay          = errors.New("day is in the future")
)

type DayLogStore interface {
	ListRecent(ctx context.Context, userID uint, limit int) ([]models.DailyLog, error)
	FindByDate(ctx context.Context, userID uint, date time.Time) (models.DailyLog, bool, error)
	Upsert(ctx context.Context, entry *models.DailyLog) error
}

type DayProfileReader interface {
	FindByID(ctx context.Context, userID uint) (models.UserProfile, error)
}

// DailyLogInput replaces the stored entry for a day; nil fields are stored as
// "not logged".
type DailyLogInput struct {
	CycleDay        *int
	SleepHours      *float64
	SleepQuality    *int
	StressLevel     *int
	WaterGlasses    *int
	VeggieServings  *int
	ActivityMinutes *int
	SunMinutes      *int
	Alcohol         *bool
	BBT             *float64
	Mucus           string
	Cervix          string
	LHTest          string
	Symptoms        []string
	Notes           string
}

type DaySubmission struct {
	Entry models.DailyLog `json:"entry"`
	Score ScoreOutcome    `json:"score"`
}

type DayService struct {
	logs     DayLogStore
	profiles DayProfileReader
	scores   ScoreRefresher
	location *time.Location
	now      func() time.Time
}

func NewDayService(logs DayLogStore, profiles DayProfileReader, scores ScoreRefresher, location *time.Location) *DayService {
	if location == nil {
		location = time.UTC
	}
	return &DayService{
		logs:     logs,
		profiles: profiles,
		scores:   scores,
		location: location,
		now:      time.Now,
	}
}

// Upsert stores the entry for day and refreshes the score. When the caller
// does not send a cycle day it is derived from the profile's last period.
func (service *DayService) Upsert(ctx context.Context, userID uint, day time.Time, input DailyLogInput) (DaySubmission, error) {
	date := StorageDate(DateAtLocation(day, service.location))
	today := DateAtLocation(service.now(), service.location)
	if calendarDaysBetween(date, today) < 0 {
		return DaySubmission{}, ErrFutureDay
	}
	if err := validateDailyLogInput(input); err != nil {
		return DaySubmission{}, err
	}

	entry := models.DailyLog{
		UserID:          userID,
		Date:            date,
		CycleDay:        input.CycleDay,
		SleepHours:      input.SleepHours,
		SleepQuality:    input.SleepQuality,
		StressLevel:     input.StressLevel,
		WaterGlasses:    input.WaterGlasses,
		VeggieServings:  input.VeggieServings,
		ActivityMinutes: input.ActivityMinutes,
		SunMinutes:      input.SunMinutes,
		Alcohol:         input.Alcohol,
		BBT:             input.BBT,
		Mucus:           strings.TrimSpace(input.Mucus),
		Cervix:          strings.TrimSpace(input.Cervix),
		LHTest:          strings.ToLower(strings.TrimSpace(input.LHTest)),
		Symptoms:        normalizeSymptoms(input.Symptoms),
		Notes:           strings.TrimSpace(input.Notes),
	}

	if entry.CycleDay == nil {
		cycleDay, err := service.derivedCycleDay(ctx, userID, date)
		if err != nil {
			return DaySubmission{}, err
		}
		entry.CycleDay = cycleDay
	}

	if err := service.logs.Upsert(ctx, &entry); err != nil {
		return DaySubmission{}, fmt.Errorf("%w: %v", ErrDayEntrySaveFailed, err)
	}

	return DaySubmission{
		Entry: entry,
		Score: service.scores.RecalculateAfterWrite(ctx, userID, models.ScoreReasonDailyLogUpdate),
	}, nil
}

func (service *DayService) derivedCycleDay(ctx context.Context, userID uint, date time.Time) (*int, error) {
	profile, err := service.profiles.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: profile: %v", ErrDayEntryLoadFailed, err)
	}
	cycleDay := ProfileCycleDay(profile, date)
	if cycleDay <= 0 {
		return nil, nil
	}
	return &cycleDay, nil
}

func (service *DayService) FetchLogByDate(ctx context.Context, userID uint, day time.Time) (models.DailyLog, bool, error) {
	date := StorageDate(DateAtLocation(day, service.location))
	entry, found, err := service.logs.FindByDate(ctx, userID, date)
	if err != nil {
		return models.DailyLog{}, false, fmt.Errorf("%w: %v", ErrDayEntryLoadFailed, err)
	}
	return entry, found, nil
}

// List returns the newest entries first.
func (service *DayService) List(ctx context.Context, userID uint, limit int) ([]models.DailyLog, error) {
	if limit <= 0 {
		limit = defaultDayListLimit
	}
	if limit > maxDayListLimit {
		limit = maxDayListLimit
	}
	logs, err := service.logs.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDayEntryLoadFailed, err)
	}
	return logs, nil
}

func validateDailyLogInput(input DailyLogInput) error {
	if input.CycleDay != nil && (*input.CycleDay < 1 || *input.CycleDay > 90) {
		return fmt.Errorf("%w: cycle day must be between 1 and 90", ErrInvalidDayInput)
	}
	if input.SleepHours != nil && (!isFinite(*input.SleepHours) || *input.SleepHours < 0 || *input.SleepHours > 24) {
		return fmt.Errorf("%w: sleep hours must be between 0 and 24", ErrInvalidDayInput)
	}
	if !inIntRange(input.SleepQuality, 1, 5) {
		return fmt.Errorf("%w: sleep quality must be between 1 and 5", ErrInvalidDayInput)
	}
	if !inIntRange(input.StressLevel, 1, 5) {
		return fmt.Errorf("%w: stress level must be between 1 and 5", ErrInvalidDayInput)
	}
	if !inIntRange(input.WaterGlasses, 0, 50) || !inIntRange(input.VeggieServings, 0, 50) {
		return fmt.Errorf("%w: servings out of range", ErrInvalidDayInput)
	}
	if !inIntRange(input.ActivityMinutes, 0, 1440) || !inIntRange(input.SunMinutes, 0, 1440) {
		return fmt.Errorf("%w: minutes out of range", ErrInvalidDayInput)
	}
	if input.BBT != nil && (!isFinite(*input.BBT) || *input.BBT < 34 || *input.BBT > 43) {
		return fmt.Errorf("%w: basal body temperature out of range", ErrInvalidDayInput)
	}
	switch strings.ToLower(strings.TrimSpace(input.LHTest)) {
	case "", models.LHPositive, models.LHNegative:
	default:
		return fmt.Errorf("%w: lh test must be positive or negative", ErrInvalidDayInput)
	}
	return nil
}

func inIntRange(value *int, low int, high int) bool {
	return value == nil || (*value >= low && *value <= high)
}

func normalizeSymptoms(symptoms []string) []string {
	if symptoms == nil {
		return nil
	}
	normalized := make([]string, 0, len(symptoms))
	seen := make(map[string]bool, len(symptoms))
	for _, symptom := range symptoms {
		key := strings.ToLower(strings.TrimSpace(symptom))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		normalized = append(normalized, key)
	}
	return normalized
}

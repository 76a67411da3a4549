package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
	"gorm.io/gorm"
)

const (
	maxProfileAge      = 120
	minWeightKilograms = 20.0
	maxWeightKilograms = 400.0
	maxDiagnoses       = 20
	weightRulesWarning = "weight notifications could not be evaluated"
)

var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileLoadFailed   = errors.New("load profile failed")
	ErrProfileSaveFailed   = errors.New("save profile failed")
	ErrInvalidProfileInput = errors.New("invalid profile input")
)

type ProfileStore interface {
	FindByID(ctx context.Context, userID uint) (models.UserProfile, error)
	Create(ctx context.Context, profile *models.UserProfile) error
	Save(ctx context.Context, profile *models.UserProfile) error
}

type WeightRuleRunner interface {
	RunForUser(ctx context.Context, userID uint, trigger RuleTrigger, previousWeight *float64) (RuleRunResult, error)
}

// ProfileUpdate carries a partial update; nil fields are left untouched.
type ProfileUpdate struct {
	Email                *string
	Name                 *string
	Age                  *int
	Weight               *float64
	Height               *float64
	HeightUnit           *string
	CycleLength          *int
	CycleRegularity      *string
	LastPeriodDate       *time.Time
	Smoker               *string
	Diagnoses            *[]string
	NotificationsEnabled *bool
}

type ProfileUpdateResult struct {
	Profile       models.UserProfile    `json:"profile"`
	Score         ScoreOutcome          `json:"score"`
	Notifications []models.Notification `json:"notifications"`
	RuleWarning   string                `json:"rule_warning,omitempty"`
}

type ProfileService struct {
	profiles ProfileStore
	rules    WeightRuleRunner
	scores   ScoreRefresher
	location *time.Location
	logger   *logrus.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, rules WeightRuleRunner, scores ScoreRefresher, location *time.Location, logger *logrus.Logger) *ProfileService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ProfileService{
		profiles: profiles,
		rules:    rules,
		scores:   scores,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

func (service *ProfileService) Get(ctx context.Context, userID uint) (models.UserProfile, error) {
	profile, err := service.profiles.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("%w: %v", ErrProfileLoadFailed, err)
	}
	return profile, nil
}

// Update applies update, creating the profile on first use. A changed weight
// runs the WEIGHT_UPDATE rules against the previous weight; rule and score
// problems are reported in the result and never fail the update.
func (service *ProfileService) Update(ctx context.Context, userID uint, update ProfileUpdate) (ProfileUpdateResult, error) {
	profile, err := service.profiles.FindByID(ctx, userID)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		profile = models.UserProfile{ID: userID, NotificationsEnabled: true}
		created = true
	case err != nil:
		return ProfileUpdateResult{}, fmt.Errorf("%w: %v", ErrProfileLoadFailed, err)
	}

	previousWeight := profile.Weight
	if err := service.applyUpdate(&profile, update); err != nil {
		return ProfileUpdateResult{}, err
	}
	if created && strings.TrimSpace(profile.Email) == "" {
		return ProfileUpdateResult{}, fmt.Errorf("%w: email is required for a new profile", ErrInvalidProfileInput)
	}

	if created {
		err = service.profiles.Create(ctx, &profile)
	} else {
		err = service.profiles.Save(ctx, &profile)
	}
	if err != nil {
		return ProfileUpdateResult{}, fmt.Errorf("%w: %v", ErrProfileSaveFailed, err)
	}

	result := ProfileUpdateResult{Profile: profile, Notifications: make([]models.Notification, 0)}
	if service.rules != nil && weightChanged(previousWeight, profile.Weight) {
		run, err := service.rules.RunForUser(ctx, userID, TriggerWeightUpdate, previousWeight)
		if err != nil {
			service.logger.WithField("user_id", userID).Warnf("Failed to run weight rules: %+v", err)
			result.RuleWarning = weightRulesWarning
		}
		result.Notifications = append(result.Notifications, run.Emitted...)
	}

	result.Score = service.scores.RecalculateAfterWrite(ctx, userID, models.ScoreReasonProfileUpdate)
	return result, nil
}

func weightChanged(previous *float64, current *float64) bool {
	if previous == nil || current == nil {
		return previous != current
	}
	return *previous != *current
}

func (service *ProfileService) applyUpdate(profile *models.UserProfile, update ProfileUpdate) error {
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if email == "" || !strings.Contains(email, "@") {
			return fmt.Errorf("%w: invalid email", ErrInvalidProfileInput)
		}
		profile.Email = email
	}
	if update.Name != nil {
		profile.Name = strings.TrimSpace(*update.Name)
	}
	if update.Age != nil {
		if *update.Age < 0 || *update.Age > maxProfileAge {
			return fmt.Errorf("%w: age out of range", ErrInvalidProfileInput)
		}
		profile.Age = *update.Age
	}
	if update.Weight != nil {
		weight := *update.Weight
		if !isFinite(weight) || weight < minWeightKilograms || weight > maxWeightKilograms {
			return fmt.Errorf("%w: weight out of range", ErrInvalidProfileInput)
		}
		profile.Weight = &weight
	}
	if update.HeightUnit != nil {
		unit := strings.ToLower(strings.TrimSpace(*update.HeightUnit))
		switch unit {
		case "", models.HeightUnitCentimeters, models.HeightUnitMeters:
		default:
			return fmt.Errorf("%w: unknown height unit %q", ErrInvalidProfileInput, unit)
		}
		profile.HeightUnit = unit
	}
	if update.Height != nil {
		height := *update.Height
		if !validHeight(height, profile.HeightUnit) {
			return fmt.Errorf("%w: height out of range", ErrInvalidProfileInput)
		}
		profile.Height = &height
	}
	if update.CycleLength != nil {
		if !IsValidCycleLength(*update.CycleLength) {
			return fmt.Errorf("%w: cycle length must be between 15 and 90 days", ErrInvalidProfileInput)
		}
		cycleLength := *update.CycleLength
		profile.CycleLength = &cycleLength
	}
	if update.CycleRegularity != nil {
		regularity := strings.ToLower(strings.TrimSpace(*update.CycleRegularity))
		switch regularity {
		case "", models.CycleRegular, models.CycleIrregular:
		default:
			return fmt.Errorf("%w: unknown cycle regularity %q", ErrInvalidProfileInput, regularity)
		}
		profile.CycleRegularity = regularity
	}
	if update.LastPeriodDate != nil {
		day := StorageDate(*update.LastPeriodDate)
		today := StorageDate(service.now().In(service.location))
		if day.After(today) {
			return fmt.Errorf("%w: last period date is in the future", ErrInvalidProfileInput)
		}
		profile.LastPeriodDate = &day
	}
	if update.Smoker != nil {
		profile.Smoker = strings.ToLower(strings.TrimSpace(*update.Smoker))
	}
	if update.Diagnoses != nil {
		if len(*update.Diagnoses) > maxDiagnoses {
			return fmt.Errorf("%w: too many diagnoses", ErrInvalidProfileInput)
		}
		diagnoses := make([]string, 0, len(*update.Diagnoses))
		for _, diagnosis := range *update.Diagnoses {
			if trimmed := strings.TrimSpace(diagnosis); trimmed != "" {
				diagnoses = append(diagnoses, trimmed)
			}
		}
		profile.Diagnoses = diagnoses
	}
	if update.NotificationsEnabled != nil {
		profile.NotificationsEnabled = *update.NotificationsEnabled
	}
	return nil
}

func validHeight(height float64, unit string) bool {
	if !isFinite(height) || height <= 0 {
		return false
	}
	switch unit {
	case models.HeightUnitMeters:
		return height >= 0.5 && height <= 3
	case models.HeightUnitCentimeters:
		return height >= 50 && height <= 300
	default:
		return (height >= 0.5 && height <= 3) || (height >= 50 && height <= 300)
	}
}

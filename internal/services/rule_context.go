package services

import (
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
)

const DefaultFertilityMaxAge = 45

type RuleContextOptions struct {
	FertilityMaxAge int
}

// RuleContext is derived once per evaluation; rule conditions and message
// builders read the same values instead of recomputing them.
type RuleContext struct {
	Profile          models.UserProfile
	Now              time.Time
	Today            time.Time
	CurrentCycleDay  int
	CycleLength      int
	CycleLengthKnown bool
	Window           FertileWindow
	FertilityMaxAge  int

	BMI            float64
	HasBMI         bool
	PreviousWeight *float64
	PreviousBMI    float64
	HasPreviousBMI bool
	WeightDelta    float64
	HasWeightDelta bool
}

func NewRuleContext(profile models.UserProfile, now time.Time, previousWeight *float64, options RuleContextOptions) RuleContext {
	maxAge := options.FertilityMaxAge
	if maxAge <= 0 {
		maxAge = DefaultFertilityMaxAge
	}

	cycleLength := EffectiveCycleLength(profile)
	ruleCtx := RuleContext{
		Profile:          profile,
		Now:              now,
		Today:            DateAtLocation(now, now.Location()),
		CurrentCycleDay:  ProfileCycleDay(profile, now),
		CycleLength:      cycleLength,
		CycleLengthKnown: profile.CycleLength != nil && IsValidCycleLength(*profile.CycleLength),
		Window:           FertileWindowFor(cycleLength),
		FertilityMaxAge:  maxAge,
		PreviousWeight:   previousWeight,
	}
	ruleCtx.BMI, ruleCtx.HasBMI = ProfileBMI(profile)

	current, okCurrent := floatValue(profile.Weight)
	previous, okPrevious := floatValue(previousWeight)
	if okCurrent && okPrevious && previous > 0 {
		ruleCtx.WeightDelta = current - previous
		ruleCtx.HasWeightDelta = true

		height, okHeight := floatValue(profile.Height)
		if okHeight {
			ruleCtx.PreviousBMI, ruleCtx.HasPreviousBMI = calculateBMIWithUnit(previous, height, profile.HeightUnit)
		}
	}
	return ruleCtx
}

// ShouldNotifyForFertility is the hard age gate for fertile-window messages.
// Unknown age (0) is not gated.
func ShouldNotifyForFertility(age int, maxAge int) bool {
	if maxAge <= 0 {
		maxAge = DefaultFertilityMaxAge
	}
	return age <= maxAge
}

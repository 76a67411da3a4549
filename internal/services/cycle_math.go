package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
)

const (
	lutealPhaseDays     = 14
	fertileDaysBefore   = 5
	fertileDaysAfter    = 1
	defaultPeriodLength = 5
	calendarDateLayout  = "2006-01-02"
)

const (
	PhaseMenstrual  = "menstrual"
	PhaseFollicular = "follicular"
	PhaseFertile    = "fertile"
	PhaseOvulation  = "ovulation"
	PhaseLuteal     = "luteal"
	PhaseUnknown    = "unknown"
)

type FertileWindow struct {
	Start        int `json:"inicio"`
	End          int `json:"fin"`
	Days         int `json:"dias_fertiles"`
	OvulationDay int `json:"dia_ovulacion"`
}

func (window FertileWindow) Contains(cycleDay int) bool {
	return cycleDay >= window.Start && cycleDay <= window.End
}

// ParseLocalDate reads YYYY-MM-DD as midnight in location, never as UTC.
func ParseLocalDate(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.Local
	}
	parsed, err := time.ParseInLocation(calendarDateLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse calendar date %q: %w", raw, err)
	}
	return parsed, nil
}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// calendarDaysBetween compares calendar components, so a stored date keeps its
// day number regardless of the zone it was loaded in and DST shifts do not
// shorten a day.
func calendarDaysBetween(from time.Time, to time.Time) int {
	fromYear, fromMonth, fromDay := from.Date()
	toYear, toMonth, toDay := to.Date()
	start := time.Date(fromYear, fromMonth, fromDay, 0, 0, 0, 0, time.UTC)
	end := time.Date(toYear, toMonth, toDay, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// StorageDate keeps the calendar day of value as UTC midnight, the form every
// date column is written in.
func StorageDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CycleDay returns the 1-based day of the current cycle, wrapping modulo
// cycleLength once the recorded cycle is exceeded. Zero means unknown.
func CycleDay(lastPeriodDate time.Time, cycleLength int, today time.Time) int {
	if lastPeriodDate.IsZero() {
		return 0
	}
	elapsed := calendarDaysBetween(lastPeriodDate, today)
	if elapsed < 0 {
		return 0
	}
	day := elapsed + 1
	if cycleLength > 0 && day > cycleLength {
		day = ((day - 1) % cycleLength) + 1
	}
	return day
}

func OvulationDay(cycleLength int) int {
	return cycleLength - lutealPhaseDays
}

// FertileWindowFor estimates the fertile span in cycle days. Short cycles clamp
// the start to day 1, which shrinks Days below seven.
func FertileWindowFor(cycleLength int) FertileWindow {
	if cycleLength <= 0 {
		cycleLength = models.DefaultCycleLength
	}
	ovulation := OvulationDay(cycleLength)
	start := ovulation - fertileDaysBefore
	if start < 1 {
		start = 1
	}
	end := ovulation + fertileDaysAfter
	days := end - start + 1
	if days < 0 {
		days = 0
	}
	return FertileWindow{
		Start:        start,
		End:          end,
		Days:         days,
		OvulationDay: ovulation,
	}
}

func EffectiveCycleLength(profile models.UserProfile) int {
	if profile.CycleLength != nil && IsValidCycleLength(*profile.CycleLength) {
		return *profile.CycleLength
	}
	return models.DefaultCycleLength
}

func IsValidCycleLength(value int) bool {
	return value >= 15 && value <= 90
}

func ProfileCycleDay(profile models.UserProfile, today time.Time) int {
	if profile.LastPeriodDate == nil {
		return 0
	}
	return CycleDay(*profile.LastPeriodDate, EffectiveCycleLength(profile), today)
}

// DetectCyclePhase maps a cycle day onto the phase names used by the API.
func DetectCyclePhase(cycleDay int, window FertileWindow) string {
	switch {
	case cycleDay <= 0:
		return PhaseUnknown
	case cycleDay <= defaultPeriodLength:
		return PhaseMenstrual
	case cycleDay == window.OvulationDay:
		return PhaseOvulation
	case window.Contains(cycleDay):
		return PhaseFertile
	case cycleDay < window.OvulationDay:
		return PhaseFollicular
	default:
		return PhaseLuteal
	}
}

type CycleOverview struct {
	CycleDay      int           `json:"cycle_day"`
	CycleLength   int           `json:"cycle_length"`
	Phase         string        `json:"phase"`
	Window        FertileWindow `json:"fertile_window"`
	NextPeriod    *time.Time    `json:"next_period,omitempty"`
	LengthAssumed bool          `json:"cycle_length_assumed"`
}

func BuildCycleOverview(profile models.UserProfile, today time.Time) CycleOverview {
	cycleLength := EffectiveCycleLength(profile)
	window := FertileWindowFor(cycleLength)
	day := ProfileCycleDay(profile, today)
	overview := CycleOverview{
		CycleDay:      day,
		CycleLength:   cycleLength,
		Phase:         DetectCyclePhase(day, window),
		Window:        window,
		LengthAssumed: profile.CycleLength == nil || !IsValidCycleLength(*profile.CycleLength),
	}
	if day > 0 {
		next := DateAtLocation(today, today.Location()).AddDate(0, 0, cycleLength-day+1)
		overview.NextPeriod = &next
	}
	return overview
}

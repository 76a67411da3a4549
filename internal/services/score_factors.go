package services

import (
	"math"
	"strings"

	"github.com/terraincognita07/fertyfit/internal/models"
)

// factorSet accumulates sub-factor scores; absent factors are never added.
type factorSet struct {
	sum   float64
	count int
}

func (set *factorSet) add(value float64, ok bool) {
	if !ok || !isFinite(value) {
		return
	}
	set.sum += clampScore(value)
	set.count++
}

func (set factorSet) mean() (float64, bool) {
	if set.count == 0 {
		return 0, false
	}
	return set.sum / float64(set.count), true
}

func isFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

func clampScore(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}
	return value
}

func roundScore(value float64) float64 {
	return math.Round(clampScore(value)*10) / 10
}

func floatValue(value *float64) (float64, bool) {
	if value == nil || !isFinite(*value) {
		return 0, false
	}
	return *value, true
}

func intValue(value *int) (float64, bool) {
	if value == nil {
		return 0, false
	}
	return float64(*value), true
}

// CalculateBMI accepts height in meters or centimeters. Heights above 3 are
// read as centimeters; this keeps old rows that never stored a unit working.
func CalculateBMI(weight float64, height float64) (float64, bool) {
	return calculateBMIWithUnit(weight, height, "")
}

func calculateBMIWithUnit(weight float64, height float64, unit string) (float64, bool) {
	if !isFinite(weight) || !isFinite(height) || weight <= 0 || height <= 0 {
		return 0, false
	}
	meters := height
	switch unit {
	case models.HeightUnitCentimeters:
		meters = height / 100
	case models.HeightUnitMeters:
	default:
		if height > 3 {
			meters = height / 100
		}
	}
	bmi := weight / (meters * meters)
	if !isFinite(bmi) {
		return 0, false
	}
	return bmi, true
}

func ProfileBMI(profile models.UserProfile) (float64, bool) {
	weight, okWeight := floatValue(profile.Weight)
	height, okHeight := floatValue(profile.Height)
	if !okWeight || !okHeight {
		return 0, false
	}
	return calculateBMIWithUnit(weight, height, profile.HeightUnit)
}

func scoreAge(age int) (float64, bool) {
	switch {
	case age <= 0:
		return 0, false
	case age <= 30:
		return 100, true
	case age <= 35:
		return 85, true
	case age <= 38:
		return 65, true
	case age <= 40:
		return 50, true
	case age <= 42:
		return 35, true
	default:
		return 20, true
	}
}

func scoreBMI(bmi float64, ok bool) (float64, bool) {
	if !ok {
		return 0, false
	}
	switch {
	case bmi < 17:
		return 40, true
	case bmi < 18.5:
		return 70, true
	case bmi < 25:
		return 100, true
	case bmi < 30:
		return 75, true
	case bmi < 35:
		return 50, true
	default:
		return 30, true
	}
}

func scoreCycleLength(length int) (float64, bool) {
	switch {
	case length <= 0:
		return 0, false
	case length >= 26 && length <= 32:
		return 100, true
	case length >= 24 && length <= 35:
		return 75, true
	case length >= 21 && length <= 40:
		return 50, true
	default:
		return 25, true
	}
}

func scoreRegularity(regularity string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(regularity)) {
	case models.CycleRegular, "regular_cycle", "si", "sí", "yes":
		return 100, true
	case models.CycleIrregular, "no":
		return 50, true
	default:
		return 0, false
	}
}

var noDiagnosisMarkers = map[string]bool{
	"":        true,
	"none":    true,
	"ninguno": true,
	"ninguna": true,
	"no":      true,
}

// scoreDiagnoses treats a nil list as unanswered and an empty list as "none".
func scoreDiagnoses(diagnoses []string) (float64, bool) {
	if diagnoses == nil {
		return 0, false
	}
	count := 0
	for _, diagnosis := range diagnoses {
		if noDiagnosisMarkers[strings.ToLower(strings.TrimSpace(diagnosis))] {
			continue
		}
		count++
	}
	score := 100 - float64(count)*20
	if score < 20 {
		score = 20
	}
	return score, true
}

func scoreSmoker(status string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "no", "never", "nunca", "non-smoker", "non_smoker":
		return 100, true
	case "former", "ex", "ex-smoker", "exfumadora", "exfumador":
		return 80, true
	case "occasional", "ocasional", "social":
		return 50, true
	case "yes", "si", "sí", "daily", "diario", "smoker", "fumadora", "fumador":
		return 20, true
	default:
		return 0, false
	}
}

// scoreTowardsTarget rewards reaching target linearly; negative inputs are absent.
func scoreTowardsTarget(value float64, ok bool, target float64) (float64, bool) {
	if !ok || value < 0 || target <= 0 {
		return 0, false
	}
	return clampScore(value / target * 100), true
}

func scoreWeeklyAlcohol(drinks float64, ok bool) (float64, bool) {
	if !ok || drinks < 0 {
		return 0, false
	}
	switch {
	case drinks == 0:
		return 100, true
	case drinks <= 2:
		return 80, true
	case drinks <= 5:
		return 55, true
	case drinks <= 10:
		return 30, true
	default:
		return 10, true
	}
}

func scoreUltraProcessed(servings float64, ok bool) (float64, bool) {
	if !ok || servings < 0 {
		return 0, false
	}
	switch {
	case servings <= 2:
		return 100, true
	case servings <= 5:
		return 75, true
	case servings <= 10:
		return 50, true
	default:
		return 25, true
	}
}

func scoreFlag(value *bool, whenTrue float64, whenFalse float64) (float64, bool) {
	if value == nil {
		return 0, false
	}
	if *value {
		return whenTrue, true
	}
	return whenFalse, true
}

// scoreScale maps a bounded scale onto 0..100. Values outside the scale are absent.
func scoreScale(value float64, ok bool, low float64, high float64, higherIsBetter bool) (float64, bool) {
	if !ok || value < low || value > high || high <= low {
		return 0, false
	}
	ratio := (value - low) / (high - low)
	if !higherIsBetter {
		ratio = 1 - ratio
	}
	return ratio * 100, true
}

func scoreInfections(count float64, ok bool) (float64, bool) {
	if !ok || count < 0 {
		return 0, false
	}
	switch {
	case count == 0:
		return 100, true
	case count <= 1:
		return 75, true
	case count <= 2:
		return 50, true
	default:
		return 25, true
	}
}

func scoreSleepHours(hours float64, ok bool) (float64, bool) {
	if !ok || hours <= 0 || hours > 24 {
		return 0, false
	}
	switch {
	case hours >= 7 && hours <= 9:
		return 100, true
	case hours >= 6 && hours <= 10:
		return 75, true
	case hours >= 5 && hours <= 11:
		return 50, true
	default:
		return 25, true
	}
}

// scoreShareAbsent scores a fraction of days on which something undesirable happened.
func scoreShareAbsent(hits int, total int) (float64, bool) {
	if total <= 0 {
		return 0, false
	}
	return (1 - float64(hits)/float64(total)) * 100, true
}

var digestiveSymptoms = stringSet(
	"bloating", "hinchazon", "hinchazón",
	"diarrhea", "diarrea",
	"constipation", "estrenimiento", "estreñimiento",
	"gas", "reflux", "reflujo",
)

func stringSet(values ...string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, value := range values {
		set[value] = true
	}
	return set
}

func hasDigestiveSymptom(symptoms []string) bool {
	for _, symptom := range symptoms {
		if digestiveSymptoms[strings.ToLower(strings.TrimSpace(symptom))] {
			return true
		}
	}
	return false
}

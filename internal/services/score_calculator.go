package services

import (
	"math"
	"sort"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
)

type FertyPillars struct {
	Function *models.PillarSnapshot `json:"function"`
	Food     *models.PillarSnapshot `json:"food"`
	Flora    *models.PillarSnapshot `json:"flora"`
	Flow     *models.PillarSnapshot `json:"flow"`
}

func (pillars FertyPillars) Get(pillar models.Pillar) *models.PillarSnapshot {
	switch pillar {
	case models.PillarFunction:
		return pillars.Function
	case models.PillarFood:
		return pillars.Food
	case models.PillarFlora:
		return pillars.Flora
	case models.PillarFlow:
		return pillars.Flow
	default:
		return nil
	}
}

func (pillars *FertyPillars) Set(snapshot *models.PillarSnapshot) {
	if snapshot == nil {
		return
	}
	switch snapshot.Pillar {
	case models.PillarFunction:
		pillars.Function = snapshot
	case models.PillarFood:
		pillars.Food = snapshot
	case models.PillarFlora:
		pillars.Flora = snapshot
	case models.PillarFlow:
		pillars.Flow = snapshot
	}
}

// ScoreCalculator is pure: no I/O and the same inputs always give the same result.
type ScoreCalculator struct {
	Strategy ScoreStrategy
	Policy   TotalPolicy
}

func NewScoreCalculator(strategy ScoreStrategy, policy TotalPolicy) ScoreCalculator {
	if policy == "" {
		policy = TotalScoredOnly
	}
	return ScoreCalculator{
		Strategy: strategy.normalized(),
		Policy:   policy,
	}
}

func CalculateFertyScore(profile models.UserProfile, logs []models.DailyLog, pillars FertyPillars, today time.Time) models.FertyScoreResult {
	return NewScoreCalculator(DefaultScoreStrategy(), TotalScoredOnly).Calculate(profile, logs, pillars, today)
}

func (calculator ScoreCalculator) Calculate(profile models.UserProfile, logs []models.DailyLog, pillars FertyPillars, today time.Time) models.FertyScoreResult {
	strategy := calculator.Strategy.normalized()
	recent := SelectRecentLogs(logs, strategy.Window, today)

	result := models.FertyScoreResult{
		Function: calculator.blend(strategy, functionStatic(profile, pillars.Function), factorSet{}, 0),
		Food:     calculator.blendDynamic(strategy, foodStatic(pillars.Food), foodDynamic(recent)),
		Flora:    calculator.blendDynamic(strategy, floraStatic(pillars.Flora, pillars.Flow), floraDynamic(recent)),
		Flow:     calculator.blendDynamic(strategy, flowStatic(pillars.Flow), flowDynamic(recent)),
	}
	result.Total = calculator.total(result)
	return result
}

type dynamicPart struct {
	factors factorSet
	samples int
}

func (calculator ScoreCalculator) blendDynamic(strategy ScoreStrategy, static factorSet, dynamic dynamicPart) *float64 {
	return calculator.blend(strategy, static, dynamic.factors, dynamic.samples)
}

func (calculator ScoreCalculator) blend(strategy ScoreStrategy, static factorSet, dynamic factorSet, samples int) *float64 {
	staticScore, hasStatic := static.mean()
	dynamicScore, hasDynamic := dynamic.mean()

	var value float64
	switch {
	case hasStatic && hasDynamic:
		value = strategy.Blend(staticScore, dynamicScore, samples, strategy.Window)
	case hasStatic:
		value = staticScore
	case hasDynamic:
		value = dynamicScore
	default:
		return nil
	}
	if !isFinite(value) {
		return nil
	}
	rounded := roundScore(value)
	return &rounded
}

func (calculator ScoreCalculator) total(result models.FertyScoreResult) *float64 {
	var sum float64
	scored := 0
	for _, pillar := range models.AllPillars() {
		if value := result.PillarScore(pillar); value != nil {
			sum += *value
			scored++
		}
	}
	if scored == 0 {
		return nil
	}

	divisor := float64(scored)
	if calculator.Policy == TotalZeroFill {
		divisor = float64(len(models.AllPillars()))
	}
	total := roundScore(sum / divisor)
	return &total
}

// SelectRecentLogs returns up to window logs dated on or before today, newest
// first. Logs may arrive in any order; when two share a date the highest ID wins.
func SelectRecentLogs(logs []models.DailyLog, window int, today time.Time) []models.DailyLog {
	if window <= 0 || len(logs) == 0 {
		return nil
	}

	sorted := make([]models.DailyLog, 0, len(logs))
	for _, entry := range logs {
		if entry.Date.IsZero() || calendarDaysBetween(entry.Date, today) < 0 {
			continue
		}
		sorted = append(sorted, entry)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		left := sorted[i].Date.Format(calendarDateLayout)
		right := sorted[j].Date.Format(calendarDateLayout)
		if left == right {
			return sorted[i].ID > sorted[j].ID
		}
		return left > right
	})

	selected := make([]models.DailyLog, 0, window)
	seen := make(map[string]bool, window)
	for _, entry := range sorted {
		key := entry.Date.Format(calendarDateLayout)
		if seen[key] {
			continue
		}
		seen[key] = true
		selected = append(selected, entry)
		if len(selected) == window {
			break
		}
	}
	return selected
}

func functionStatic(profile models.UserProfile, snapshot *models.PillarSnapshot) factorSet {
	effective := ProfileWithFunctionAnswers(profile, snapshot)

	var factors factorSet
	factors.add(scoreAge(effective.Age))
	factors.add(scoreBMI(ProfileBMI(effective)))

	cycleLength := 0
	if effective.CycleLength != nil {
		cycleLength = *effective.CycleLength
	}
	factors.add(scoreCycleLength(cycleLength))
	factors.add(scoreRegularity(effective.CycleRegularity))
	factors.add(scoreDiagnoses(effective.Diagnoses))
	factors.add(scoreSmoker(effective.Smoker))
	return factors
}

// ProfileWithFunctionAnswers overlays the FUNCTION questionnaire onto the
// profile: every answered cycle or health field wins over the profile value.
// Scoring and rule evaluation both read cycle data through it.
func ProfileWithFunctionAnswers(profile models.UserProfile, snapshot *models.PillarSnapshot) models.UserProfile {
	if snapshot == nil {
		return profile
	}
	if snapshot.CycleLength != nil {
		cycleLength := *snapshot.CycleLength
		profile.CycleLength = &cycleLength
	}
	if snapshot.CycleRegularity != nil {
		profile.CycleRegularity = *snapshot.CycleRegularity
	}
	if snapshot.Diagnoses != nil {
		profile.Diagnoses = snapshot.Diagnoses
	}
	if snapshot.Smoker != nil {
		profile.Smoker = *snapshot.Smoker
	}
	return profile
}

func foodStatic(snapshot *models.PillarSnapshot) factorSet {
	var factors factorSet
	if snapshot == nil {
		return factors
	}
	vegetables, ok := floatValue(snapshot.VegetableServings)
	factors.add(scoreTowardsTarget(vegetables, ok, 5))
	fruit, ok := floatValue(snapshot.FruitServings)
	factors.add(scoreTowardsTarget(fruit, ok, 3))
	water, ok := floatValue(snapshot.WaterGlasses)
	factors.add(scoreTowardsTarget(water, ok, 8))
	factors.add(scoreWeeklyAlcohol(floatValue(snapshot.AlcoholConsumption)))
	factors.add(scoreUltraProcessed(floatValue(snapshot.UltraProcessed)))
	factors.add(scoreFlag(snapshot.FolicAcid, 100, 40))
	return factors
}

func foodDynamic(recent []models.DailyLog) dynamicPart {
	var veggies, water logMean
	alcoholDays, alcoholTotal, samples := 0, 0, 0
	for _, entry := range recent {
		counted := false
		counted = veggies.addInt(entry.VeggieServings) || counted
		counted = water.addInt(entry.WaterGlasses) || counted
		if entry.Alcohol != nil {
			alcoholTotal++
			if *entry.Alcohol {
				alcoholDays++
			}
			counted = true
		}
		if counted {
			samples++
		}
	}

	var factors factorSet
	factors.add(scoreTowardsTarget(veggies.value(), veggies.ok(), 5))
	factors.add(scoreTowardsTarget(water.value(), water.ok(), 8))
	factors.add(scoreShareAbsent(alcoholDays, alcoholTotal))
	return dynamicPart{factors: factors, samples: samples}
}

// floraStatic reads sleep hours from the FLOW questionnaire because sleep
// quantity is scored only in FLORA.
func floraStatic(snapshot *models.PillarSnapshot, flow *models.PillarSnapshot) factorSet {
	var factors factorSet
	if snapshot != nil {
		digestive, ok := intValue(snapshot.DigestiveHealth)
		factors.add(scoreScale(digestive, ok, 1, 10, true))
		fermented, ok := floatValue(snapshot.FermentedFoods)
		factors.add(scoreTowardsTarget(fermented, ok, 4))
		factors.add(scoreFlag(snapshot.AntibioticsLastYear, 60, 100))
		factors.add(scoreInfections(intValue(snapshot.VaginalInfections)))
	}
	if flow != nil {
		factors.add(scoreSleepHours(floatValue(flow.SleepHours)))
	}
	return factors
}

func floraDynamic(recent []models.DailyLog) dynamicPart {
	var sleep logMean
	symptomDays, symptomTotal, samples := 0, 0, 0
	for _, entry := range recent {
		counted := sleep.addFloat(entry.SleepHours)
		if entry.Symptoms != nil {
			symptomTotal++
			if hasDigestiveSymptom(entry.Symptoms) {
				symptomDays++
			}
			counted = true
		}
		if counted {
			samples++
		}
	}

	var factors factorSet
	factors.add(scoreSleepHours(sleep.value(), sleep.ok()))
	factors.add(scoreShareAbsent(symptomDays, symptomTotal))
	return dynamicPart{factors: factors, samples: samples}
}

func flowStatic(snapshot *models.PillarSnapshot) factorSet {
	var factors factorSet
	if snapshot == nil {
		return factors
	}
	stress, ok := intValue(snapshot.StressLevel)
	factors.add(scoreScale(stress, ok, 1, 5, false))
	quality, ok := intValue(snapshot.SleepQuality)
	factors.add(scoreScale(quality, ok, 1, 5, true))
	wellbeing, ok := intValue(snapshot.EmotionalWellbeing)
	factors.add(scoreScale(wellbeing, ok, 1, 10, true))
	factors.add(scoreFlag(snapshot.RelaxationPractice, 100, 50))
	return factors
}

func flowDynamic(recent []models.DailyLog) dynamicPart {
	var stress, quality, activity, sun logMean
	samples := 0
	for _, entry := range recent {
		counted := false
		counted = stress.addInt(entry.StressLevel) || counted
		counted = quality.addInt(entry.SleepQuality) || counted
		counted = activity.addInt(entry.ActivityMinutes) || counted
		counted = sun.addInt(entry.SunMinutes) || counted
		if counted {
			samples++
		}
	}

	var factors factorSet
	factors.add(scoreScale(stress.value(), stress.ok(), 1, 5, false))
	factors.add(scoreScale(quality.value(), quality.ok(), 1, 5, true))
	factors.add(scoreTowardsTarget(activity.value(), activity.ok(), 30))
	factors.add(scoreTowardsTarget(sun.value(), sun.ok(), 15))
	return dynamicPart{factors: factors, samples: samples}
}

// logMean averages one daily-log field over the window, skipping nil and NaN.
type logMean struct {
	sum   float64
	count int
}

func (mean *logMean) addFloat(value *float64) bool {
	number, ok := floatValue(value)
	if !ok {
		return false
	}
	mean.sum += number
	mean.count++
	return true
}

func (mean *logMean) addInt(value *int) bool {
	number, ok := intValue(value)
	if !ok {
		return false
	}
	mean.sum += number
	mean.count++
	return true
}

func (mean logMean) ok() bool {
	return mean.count > 0
}

func (mean logMean) value() float64 {
	if mean.count == 0 {
		return 0
	}
	return mean.sum / float64(mean.count)
}

func (mean logMean) rounded() *float64 {
	if mean.count == 0 {
		return nil
	}
	value := math.Round(mean.value()*10) / 10
	return &value
}

package api

import (
	"strings"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
	"github.com/terraincognita07/fertyfit/internal/services"
)

type profilePayload struct {
	Email                *string   `json:"email" validate:"omitempty,email,max=254"`
	Name                 *string   `json:"name" validate:"omitempty,max=120"`
	Age                  *int      `json:"age"`
	Weight               *float64  `json:"weight"`
	Height               *float64  `json:"height"`
	HeightUnit           *string   `json:"height_unit" validate:"omitempty,oneof=cm m"`
	CycleLength          *int      `json:"cycle_length"`
	CycleRegularity      *string   `json:"cycle_regularity" validate:"omitempty,max=32"`
	LastPeriodDate       *string   `json:"last_period_date" validate:"omitempty,datetime=2006-01-02"`
	Smoker               *string   `json:"smoker" validate:"omitempty,max=32"`
	Diagnoses            *[]string `json:"diagnoses"`
	NotificationsEnabled *bool     `json:"notifications_enabled"`
}

func (payload profilePayload) toUpdate(location *time.Location) (services.ProfileUpdate, error) {
	update := services.ProfileUpdate{
		Email:                payload.Email,
		Name:                 payload.Name,
		Age:                  payload.Age,
		Weight:               payload.Weight,
		Height:               payload.Height,
		HeightUnit:           payload.HeightUnit,
		CycleLength:          payload.CycleLength,
		CycleRegularity:      payload.CycleRegularity,
		Smoker:               payload.Smoker,
		Diagnoses:            payload.Diagnoses,
		NotificationsEnabled: payload.NotificationsEnabled,
	}
	if payload.LastPeriodDate != nil && strings.TrimSpace(*payload.LastPeriodDate) != "" {
		parsed, err := services.ParseLocalDate(*payload.LastPeriodDate, location)
		if err != nil {
			return services.ProfileUpdate{}, err
		}
		update.LastPeriodDate = &parsed
	}
	return update, nil
}

type dailyLogPayload struct {
	CycleDay        *int     `json:"cycle_day"`
	SleepHours      *float64 `json:"sleep_hours"`
	SleepQuality    *int     `json:"sleep_quality"`
	StressLevel     *int     `json:"stress_level"`
	WaterGlasses    *int     `json:"water_glasses"`
	VeggieServings  *int     `json:"veggie_servings"`
	ActivityMinutes *int     `json:"activity_minutes"`
	SunMinutes      *int     `json:"sun_minutes"`
	Alcohol         *bool    `json:"alcohol"`
	BBT             *float64 `json:"bbt"`
	Mucus           string   `json:"mucus" validate:"max=64"`
	Cervix          string   `json:"cervix" validate:"max=64"`
	LHTest          string   `json:"lh_test" validate:"max=16"`
	Symptoms        []string `json:"symptoms" validate:"max=30,dive,max=64"`
	Notes           string   `json:"notes" validate:"max=2000"`
}

func (payload dailyLogPayload) toInput() services.DailyLogInput {
	return services.DailyLogInput{
		CycleDay:        payload.CycleDay,
		SleepHours:      payload.SleepHours,
		SleepQuality:    payload.SleepQuality,
		StressLevel:     payload.StressLevel,
		WaterGlasses:    payload.WaterGlasses,
		VeggieServings:  payload.VeggieServings,
		ActivityMinutes: payload.ActivityMinutes,
		SunMinutes:      payload.SunMinutes,
		Alcohol:         payload.Alcohol,
		BBT:             payload.BBT,
		Mucus:           payload.Mucus,
		Cervix:          payload.Cervix,
		LHTest:          payload.LHTest,
		Symptoms:        payload.Symptoms,
		Notes:           payload.Notes,
	}
}

type formAnswerPayload struct {
	QuestionID string `json:"question_id" validate:"required,max=64"`
	Question   string `json:"question" validate:"max=300"`
	Answer     string `json:"answer" validate:"max=500"`
}

type pillarFormPayload struct {
	Answers []formAnswerPayload `json:"answers" validate:"required,min=1,max=100,dive"`
}

func (payload pillarFormPayload) toAnswers() []models.FormAnswer {
	answers := make([]models.FormAnswer, 0, len(payload.Answers))
	for _, answer := range payload.Answers {
		answers = append(answers, models.FormAnswer{
			QuestionID: answer.QuestionID,
			Question:   answer.Question,
			Answer:     answer.Answer,
		})
	}
	return answers
}

type reportPayload struct {
	Kind string `json:"kind" validate:"max=16"`
}

type chatPayload struct {
	Question string `json:"question" validate:"required,max=2000"`
}

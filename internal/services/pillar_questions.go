package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/terraincognita07/fertyfit/internal/models"
)

var ErrInvalidPillarAnswer = errors.New("invalid pillar answer")

// PillarQuestion binds a questionnaire question id to one snapshot column.
// apply and format are inverse: format(apply(x)) is the normalized x.
type PillarQuestion struct {
	ID     string
	Pillar models.Pillar
	Label  string
	apply  func(snapshot *models.PillarSnapshot, raw string) error
	format func(snapshot *models.PillarSnapshot) (string, bool)
}

var pillarQuestions = []PillarQuestion{
	intQuestion("function_cycle_length", models.PillarFunction, "¿Cuántos días dura tu ciclo?", 15, 90,
		func(s *models.PillarSnapshot) **int { return &s.CycleLength }),
	stringQuestion("function_cycle_regularity", models.PillarFunction, "¿Tus ciclos son regulares?",
		func(s *models.PillarSnapshot) **string { return &s.CycleRegularity }),
	listQuestion("function_diagnoses", models.PillarFunction, "¿Tienes algún diagnóstico ginecológico?",
		func(s *models.PillarSnapshot) *[]string { return &s.Diagnoses }),
	stringQuestion("function_smoker", models.PillarFunction, "¿Fumas?",
		func(s *models.PillarSnapshot) **string { return &s.Smoker }),

	floatQuestion("food_vegetable_servings", models.PillarFood, "Raciones de verdura al día", 0, 30,
		func(s *models.PillarSnapshot) **float64 { return &s.VegetableServings }),
	floatQuestion("food_fruit_servings", models.PillarFood, "Raciones de fruta al día", 0, 30,
		func(s *models.PillarSnapshot) **float64 { return &s.FruitServings }),
	floatQuestion("food_water_glasses", models.PillarFood, "Vasos de agua al día", 0, 40,
		func(s *models.PillarSnapshot) **float64 { return &s.WaterGlasses }),
	floatQuestion("food_alcohol_consumption", models.PillarFood, "Bebidas alcohólicas a la semana", 0, 100,
		func(s *models.PillarSnapshot) **float64 { return &s.AlcoholConsumption }),
	floatQuestion("food_ultra_processed", models.PillarFood, "Ultraprocesados a la semana", 0, 100,
		func(s *models.PillarSnapshot) **float64 { return &s.UltraProcessed }),
	boolQuestion("food_folic_acid", models.PillarFood, "¿Tomas ácido fólico?",
		func(s *models.PillarSnapshot) **bool { return &s.FolicAcid }),

	intQuestion("flora_digestive_health", models.PillarFlora, "Salud digestiva (1-10)", 1, 10,
		func(s *models.PillarSnapshot) **int { return &s.DigestiveHealth }),
	floatQuestion("flora_fermented_foods", models.PillarFlora, "Fermentados a la semana", 0, 50,
		func(s *models.PillarSnapshot) **float64 { return &s.FermentedFoods }),
	boolQuestion("flora_antibiotics_last_year", models.PillarFlora, "¿Antibióticos en el último año?",
		func(s *models.PillarSnapshot) **bool { return &s.AntibioticsLastYear }),
	intQuestion("flora_vaginal_infections", models.PillarFlora, "Infecciones vaginales en el último año", 0, 50,
		func(s *models.PillarSnapshot) **int { return &s.VaginalInfections }),

	intQuestion("flow_stress_level", models.PillarFlow, "Nivel de estrés (1-5)", 1, 5,
		func(s *models.PillarSnapshot) **int { return &s.StressLevel }),
	floatQuestion("flow_sleep_hours", models.PillarFlow, "Horas de sueño por noche", 0, 24,
		func(s *models.PillarSnapshot) **float64 { return &s.SleepHours }),
	intQuestion("flow_sleep_quality", models.PillarFlow, "Calidad del sueño (1-5)", 1, 5,
		func(s *models.PillarSnapshot) **int { return &s.SleepQuality }),
	intQuestion("flow_emotional_wellbeing", models.PillarFlow, "Bienestar emocional (1-10)", 1, 10,
		func(s *models.PillarSnapshot) **int { return &s.EmotionalWellbeing }),
	boolQuestion("flow_relaxation_practice", models.PillarFlow, "¿Practicas alguna técnica de relajación?",
		func(s *models.PillarSnapshot) **bool { return &s.RelaxationPractice }),
}

// PillarFieldMap indexes the questionnaire by question id.
var PillarFieldMap = indexPillarQuestions(pillarQuestions)

func indexPillarQuestions(questions []PillarQuestion) map[string]PillarQuestion {
	index := make(map[string]PillarQuestion, len(questions))
	for _, question := range questions {
		index[question.ID] = question
	}
	return index
}

func QuestionsForPillar(pillar models.Pillar) []PillarQuestion {
	questions := make([]PillarQuestion, 0, 6)
	for _, question := range pillarQuestions {
		if question.Pillar == pillar {
			questions = append(questions, question)
		}
	}
	return questions
}

func invalidAnswer(questionID string, raw string, expected string) error {
	return fmt.Errorf("%w: %s expects %s, got %q", ErrInvalidPillarAnswer, questionID, expected, raw)
}

func intQuestion(id string, pillar models.Pillar, label string, min int, max int, field func(*models.PillarSnapshot) **int) PillarQuestion {
	return PillarQuestion{
		ID:     id,
		Pillar: pillar,
		Label:  label,
		apply: func(snapshot *models.PillarSnapshot, raw string) error {
			value, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || value < min || value > max {
				return invalidAnswer(id, raw, fmt.Sprintf("an integer between %d and %d", min, max))
			}
			*field(snapshot) = &value
			return nil
		},
		format: func(snapshot *models.PillarSnapshot) (string, bool) {
			value := *field(snapshot)
			if value == nil {
				return "", false
			}
			return strconv.Itoa(*value), true
		},
	}
}

func floatQuestion(id string, pillar models.Pillar, label string, min float64, max float64, field func(*models.PillarSnapshot) **float64) PillarQuestion {
	return PillarQuestion{
		ID:     id,
		Pillar: pillar,
		Label:  label,
		apply: func(snapshot *models.PillarSnapshot, raw string) error {
			normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
			value, err := strconv.ParseFloat(normalized, 64)
			if err != nil || !isFinite(value) || value < min || value > max {
				return invalidAnswer(id, raw, fmt.Sprintf("a number between %g and %g", min, max))
			}
			*field(snapshot) = &value
			return nil
		},
		format: func(snapshot *models.PillarSnapshot) (string, bool) {
			value := *field(snapshot)
			if value == nil {
				return "", false
			}
			return strconv.FormatFloat(*value, 'f', -1, 64), true
		},
	}
}

func boolQuestion(id string, pillar models.Pillar, label string, field func(*models.PillarSnapshot) **bool) PillarQuestion {
	return PillarQuestion{
		ID:     id,
		Pillar: pillar,
		Label:  label,
		apply: func(snapshot *models.PillarSnapshot, raw string) error {
			value, ok := parseYesNo(raw)
			if !ok {
				return invalidAnswer(id, raw, "yes or no")
			}
			*field(snapshot) = &value
			return nil
		},
		format: func(snapshot *models.PillarSnapshot) (string, bool) {
			value := *field(snapshot)
			if value == nil {
				return "", false
			}
			if *value {
				return "si", true
			}
			return "no", true
		},
	}
}

func stringQuestion(id string, pillar models.Pillar, label string, field func(*models.PillarSnapshot) **string) PillarQuestion {
	return PillarQuestion{
		ID:     id,
		Pillar: pillar,
		Label:  label,
		apply: func(snapshot *models.PillarSnapshot, raw string) error {
			value := strings.ToLower(strings.TrimSpace(raw))
			if len(value) > 64 {
				return invalidAnswer(id, raw, "at most 64 characters")
			}
			*field(snapshot) = &value
			return nil
		},
		format: func(snapshot *models.PillarSnapshot) (string, bool) {
			value := *field(snapshot)
			if value == nil {
				return "", false
			}
			return *value, true
		},
	}
}

// listQuestion reads a comma separated list. "ninguno" and friends store an
// empty list, which is an answer ("none"), unlike a nil list.
func listQuestion(id string, pillar models.Pillar, label string, field func(*models.PillarSnapshot) *[]string) PillarQuestion {
	return PillarQuestion{
		ID:     id,
		Pillar: pillar,
		Label:  label,
		apply: func(snapshot *models.PillarSnapshot, raw string) error {
			items := make([]string, 0)
			for _, part := range strings.Split(raw, ",") {
				item := strings.ToLower(strings.TrimSpace(part))
				if noDiagnosisMarkers[item] {
					continue
				}
				items = append(items, item)
			}
			*field(snapshot) = items
			return nil
		},
		format: func(snapshot *models.PillarSnapshot) (string, bool) {
			items := *field(snapshot)
			if items == nil {
				return "", false
			}
			if len(items) == 0 {
				return "ninguno", true
			}
			return strings.Join(items, ", "), true
		},
	}
}

func parseYesNo(raw string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "si", "sí", "yes", "true", "1", "y", "s":
		return true, true
	case "no", "false", "0", "n":
		return false, true
	default:
		return false, false
	}
}

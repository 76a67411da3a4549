package services

import (
	"fmt"
	"strings"

	"github.com/terraincognita07/fertyfit/internal/models"
)

const (
	RuleFertileWindowStart = "fertile_window_start"
	RuleOvulationDay       = "ovulation_day"
	RulePeriodApproaching  = "period_approaching"
	RuleCycleStarted       = "cycle_started"
	RuleIrregularCycle     = "irregular_cycle"
	RuleMissingPeriodDate  = "missing_period_date"
	RuleWeightLoss         = "weight_loss_progress"
	RuleWeightGain         = "weight_gain_alert"
	RuleBMIOutOfRange      = "bmi_out_of_range"
	RuleAge35Milestone     = "age_35_milestone"
	RuleAge40Milestone     = "age_40_milestone"
)

func fertilityGate(ruleCtx RuleContext) bool {
	return ShouldNotifyForFertility(ruleCtx.Profile.Age, ruleCtx.FertilityMaxAge)
}

// DefaultRuleCatalog returns the notification rules in evaluation order.
func DefaultRuleCatalog() []Rule {
	return []Rule{
		{
			ID:           RuleFertileWindowStart,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationOpportunity,
			Priority:     1,
			CooldownDays: 20,
			Gate:         fertilityGate,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.CurrentCycleDay > 0 && ruleCtx.CurrentCycleDay == ruleCtx.Window.Start
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title: "Tu ventana fértil empieza hoy",
					Message: fmt.Sprintf(
						"Hoy es el día %d de tu ciclo. Tu ventana fértil estimada va del día %d al %d, con la ovulación alrededor del día %d.",
						ruleCtx.CurrentCycleDay, ruleCtx.Window.Start, ruleCtx.Window.End, ruleCtx.Window.OvulationDay,
					),
				}
			},
		},
		{
			ID:           RuleOvulationDay,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationInsight,
			Priority:     1,
			CooldownDays: 20,
			Gate:         fertilityGate,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.CurrentCycleDay > 0 && ruleCtx.CurrentCycleDay == ruleCtx.Window.OvulationDay
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title: "Día estimado de ovulación",
					Message: fmt.Sprintf(
						"Según tu ciclo de %d días, hoy (día %d) es tu día estimado de ovulación. Tu ventana fértil termina el día %d.",
						ruleCtx.CycleLength, ruleCtx.CurrentCycleDay, ruleCtx.Window.End,
					),
				}
			},
		},
		{
			ID:           RulePeriodApproaching,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationTip,
			Priority:     2,
			CooldownDays: 20,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.CurrentCycleDay > 0 && ruleCtx.CycleLength-ruleCtx.CurrentCycleDay == 2
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title: "Tu próxima regla se acerca",
					Message: fmt.Sprintf(
						"Estás en el día %d de un ciclo de %d días: tu menstruación podría llegar en 2 días. Recuerda registrar el primer día.",
						ruleCtx.CurrentCycleDay, ruleCtx.CycleLength,
					),
				}
			},
		},
		{
			ID:           RuleCycleStarted,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationTip,
			Priority:     3,
			CooldownDays: 15,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.CurrentCycleDay == 1
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title:   "Empieza un nuevo ciclo",
					Message: "Hoy comienza tu ciclo. Es un buen momento para revisar tu descanso, hidratación y alimentación.",
				}
			},
		},
		{
			ID:           RuleIrregularCycle,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationInsight,
			Priority:     2,
			CooldownDays: 30,
			Condition: func(ruleCtx RuleContext) bool {
				if strings.EqualFold(ruleCtx.Profile.CycleRegularity, models.CycleIrregular) {
					return true
				}
				return ruleCtx.CycleLengthKnown && (ruleCtx.CycleLength < 21 || ruleCtx.CycleLength > 35)
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				detail := "Has indicado que tus ciclos son irregulares."
				if ruleCtx.CycleLengthKnown && (ruleCtx.CycleLength < 21 || ruleCtx.CycleLength > 35) {
					detail = fmt.Sprintf("Tu ciclo de %d días está fuera del rango habitual de 21 a 35 días.", ruleCtx.CycleLength)
				}
				return RuleMessage{
					Title:   "Revisa la regularidad de tu ciclo",
					Message: detail + " Las predicciones de ventana fértil pueden ser menos precisas; coméntalo con tu especialista.",
				}
			},
		},
		{
			ID:           RuleMissingPeriodDate,
			Triggers:     []RuleTrigger{TriggerDailyCheck},
			Type:         NotificationTip,
			Priority:     3,
			CooldownDays: 7,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.Profile.LastPeriodDate == nil
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title:   "Registra tu última regla",
					Message: "Sin la fecha de tu última menstruación no podemos estimar tu ventana fértil. Añádela en tu perfil.",
				}
			},
		},
		{
			ID:           RuleWeightLoss,
			Triggers:     []RuleTrigger{TriggerWeightUpdate},
			Type:         NotificationCelebration,
			Priority:     2,
			CooldownDays: 7,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.HasWeightDelta && ruleCtx.WeightDelta <= -0.5 && ruleCtx.HasPreviousBMI && ruleCtx.PreviousBMI >= 25
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				message := fmt.Sprintf("Has bajado %.1f kg desde tu último registro.", -ruleCtx.WeightDelta)
				if ruleCtx.HasBMI {
					message += fmt.Sprintf(" Tu IMC actual es %.1f.", ruleCtx.BMI)
				}
				return RuleMessage{Title: "¡Buen progreso!", Message: message}
			},
		},
		{
			ID:           RuleWeightGain,
			Triggers:     []RuleTrigger{TriggerWeightUpdate},
			Type:         NotificationAlert,
			Priority:     2,
			CooldownDays: 7,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.HasWeightDelta && ruleCtx.WeightDelta >= 2
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title: "Cambio de peso notable",
					Message: fmt.Sprintf(
						"Tu peso ha subido %.1f kg desde tu último registro. Los cambios bruscos pueden afectar a tu ciclo.",
						ruleCtx.WeightDelta,
					),
				}
			},
		},
		{
			ID:           RuleBMIOutOfRange,
			Triggers:     []RuleTrigger{TriggerWeightUpdate},
			Type:         NotificationInsight,
			Priority:     2,
			CooldownDays: 30,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.HasBMI && (ruleCtx.BMI < 18.5 || ruleCtx.BMI >= 30)
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				advice := "un IMC bajo puede alterar la ovulación"
				if ruleCtx.BMI >= 30 {
					advice = "un IMC elevado puede dificultar la ovulación regular"
				}
				return RuleMessage{
					Title:   "Tu IMC y tu fertilidad",
					Message: fmt.Sprintf("Tu IMC es %.1f; %s. Tu especialista puede orientarte.", ruleCtx.BMI, advice),
				}
			},
		},
		{
			ID:           RuleAge35Milestone,
			Triggers:     []RuleTrigger{TriggerAgeCheck},
			Type:         NotificationInsight,
			Priority:     2,
			CooldownDays: 365,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.Profile.Age >= 35 && ruleCtx.Profile.Age < 40
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title:   "Tu fertilidad a partir de los 35",
					Message: fmt.Sprintf("Con %d años, la reserva ovárica empieza a disminuir. Valora una revisión anual con tu especialista.", ruleCtx.Profile.Age),
				}
			},
		},
		{
			ID:           RuleAge40Milestone,
			Triggers:     []RuleTrigger{TriggerAgeCheck},
			Type:         NotificationAlert,
			Priority:     1,
			CooldownDays: 365,
			Condition: func(ruleCtx RuleContext) bool {
				return ruleCtx.Profile.Age >= 40
			},
			Message: func(ruleCtx RuleContext) RuleMessage {
				return RuleMessage{
					Title:   "Consulta con un especialista",
					Message: fmt.Sprintf("A los %d años conviene no demorar la consulta de fertilidad si buscas embarazo.", ruleCtx.Profile.Age),
				}
			},
		},
	}
}

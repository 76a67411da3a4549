package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

type RuleTrigger string

const (
	TriggerDailyCheck   RuleTrigger = "DAILY_CHECK"
	TriggerWeightUpdate RuleTrigger = "WEIGHT_UPDATE"
	TriggerAgeCheck     RuleTrigger = "AGE_CHECK"
)

func ParseRuleTrigger(raw string) (RuleTrigger, error) {
	switch trigger := RuleTrigger(raw); trigger {
	case TriggerDailyCheck, TriggerWeightUpdate, TriggerAgeCheck:
		return trigger, nil
	default:
		return "", fmt.Errorf("unknown rule trigger %q", raw)
	}
}

type NotificationType string

const (
	NotificationAlert       NotificationType = "alert"
	NotificationInsight     NotificationType = "insight"
	NotificationCelebration NotificationType = "celebration"
	NotificationTip         NotificationType = "tip"
	NotificationOpportunity NotificationType = "opportunity"
)

type RuleMessage struct {
	Title   string
	Message string
}

// Rule is an immutable catalog entry. Gate, when set, is checked before
// Condition and keeps hard eligibility rules (such as the fertility age limit)
// separate from the rule's own predicate.
type Rule struct {
	ID           string
	Triggers     []RuleTrigger
	Type         NotificationType
	Priority     int
	CooldownDays int
	Gate         func(RuleContext) bool
	Condition    func(RuleContext) bool
	Message      func(RuleContext) RuleMessage
}

func (rule Rule) HasTrigger(trigger RuleTrigger) bool {
	for _, candidate := range rule.Triggers {
		if candidate == trigger {
			return true
		}
	}
	return false
}

type Emission struct {
	RuleID       string           `json:"rule_id"`
	Type         NotificationType `json:"type"`
	Priority     int              `json:"priority"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	CooldownDays int              `json:"-"`
}

type RuleFailure struct {
	RuleID string
	Err    error
}

type RuleEvaluation struct {
	Emissions []Emission
	Failures  []RuleFailure
}

var ErrRuleIncomplete = errors.New("rule has no condition or message builder")

// CooldownChecker answers "has rule X fired for user Y within Z days of now".
type CooldownChecker interface {
	HasFiredWithinCooldown(ctx context.Context, userID uint, ruleID string, cooldownDays int, now time.Time) (bool, error)
}

type RuleEngine struct {
	cooldowns CooldownChecker
	logger    *logrus.Logger
}

func NewRuleEngine(cooldowns CooldownChecker, logger *logrus.Logger) *RuleEngine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RuleEngine{
		cooldowns: cooldowns,
		logger:    logger,
	}
}

// Evaluate walks the catalog once for the given trigger and returns emissions
// in catalog order. A failing rule is recorded and skipped; the rest of the
// catalog is still evaluated.
func (engine *RuleEngine) Evaluate(ctx context.Context, userID uint, catalog []Rule, trigger RuleTrigger, ruleCtx RuleContext) RuleEvaluation {
	evaluation := RuleEvaluation{}
	seen := make(map[string]bool, len(catalog))

	for _, rule := range catalog {
		if !rule.HasTrigger(trigger) || seen[rule.ID] {
			continue
		}
		seen[rule.ID] = true

		emission, fired, err := engine.evaluateRule(ctx, userID, rule, ruleCtx)
		if err != nil {
			engine.logger.WithFields(logrus.Fields{
				"user_id": userID,
				"rule_id": rule.ID,
				"trigger": trigger,
			}).Warnf("rule evaluation failed: %v", err)
			evaluation.Failures = append(evaluation.Failures, RuleFailure{RuleID: rule.ID, Err: err})
			continue
		}
		if fired {
			evaluation.Emissions = append(evaluation.Emissions, emission)
		}
	}

	return evaluation
}

func (engine *RuleEngine) evaluateRule(ctx context.Context, userID uint, rule Rule, ruleCtx RuleContext) (Emission, bool, error) {
	if rule.Condition == nil || rule.Message == nil {
		return Emission{}, false, ErrRuleIncomplete
	}

	matched, err := guardRuleCall(rule.ID, "gate", func() bool {
		return rule.Gate == nil || rule.Gate(ruleCtx)
	})
	if err != nil || !matched {
		return Emission{}, false, err
	}

	matched, err = guardRuleCall(rule.ID, "condition", func() bool {
		return rule.Condition(ruleCtx)
	})
	if err != nil || !matched {
		return Emission{}, false, err
	}

	if rule.CooldownDays > 0 && engine.cooldowns != nil {
		cooling, err := engine.cooldowns.HasFiredWithinCooldown(ctx, userID, rule.ID, rule.CooldownDays, ruleCtx.Now)
		if err != nil {
			return Emission{}, false, fmt.Errorf("cooldown lookup: %w", err)
		}
		if cooling {
			return Emission{}, false, nil
		}
	}

	var message RuleMessage
	if _, err := guardRuleCall(rule.ID, "message", func() bool {
		message = rule.Message(ruleCtx)
		return true
	}); err != nil {
		return Emission{}, false, err
	}

	return Emission{
		RuleID:       rule.ID,
		Type:         rule.Type,
		Priority:     rule.Priority,
		Title:        message.Title,
		Message:      message.Message,
		CooldownDays: rule.CooldownDays,
	}, true, nil
}

func guardRuleCall(ruleID string, stage string, call func() bool) (result bool, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = false
			err = fmt.Errorf("rule %s %s panicked: %v", ruleID, stage, recovered)
		}
	}()
	return call(), nil
}

// CooldownElapsed reports whether a rule last fired at lastFired is armed again
// at now. Days are counted on the calendar of now's location, so a rule that
// fired on day 0 is armed for the whole of day N regardless of the hour or a
// DST change in between.
func CooldownElapsed(lastFired time.Time, cooldownDays int, now time.Time) bool {
	if cooldownDays <= 0 || lastFired.IsZero() {
		return true
	}
	return calendarDaysBetween(lastFired.In(now.Location()), now) >= cooldownDays
}

package services

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/fertyfit/internal/models"
)

var catalogLastPeriod = time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

func onCycleDay(day int) time.Time {
	return catalogLastPeriod.AddDate(0, 0, day-1).Add(10 * time.Hour)
}

func regularProfile(age int) models.UserProfile {
	last := catalogLastPeriod
	return models.UserProfile{
		ID:                   1,
		Age:                  age,
		CycleLength:          intPtr(28),
		CycleRegularity:      models.CycleRegular,
		LastPeriodDate:       &last,
		NotificationsEnabled: true,
	}
}

func firedRuleIDs(t *testing.T, trigger RuleTrigger, ruleCtx RuleContext) []string {
	t.Helper()
	evaluation := NewRuleEngine(nil, quietLogger()).Evaluate(context.Background(), 1, DefaultRuleCatalog(), trigger, ruleCtx)
	if len(evaluation.Failures) != 0 {
		t.Fatalf("unexpected rule failures: %+v", evaluation.Failures)
	}
	for _, emission := range evaluation.Emissions {
		if strings.TrimSpace(emission.Title) == "" || strings.TrimSpace(emission.Message) == "" {
			t.Fatalf("rule %s produced an empty message: %+v", emission.RuleID, emission)
		}
	}
	return emissionIDs(evaluation.Emissions)
}

func TestDefaultRuleCatalog(t *testing.T) {
	lowWeightProfile := regularProfile(30)
	lowWeightProfile.Weight = floatPtr(50)
	lowWeightProfile.Height = floatPtr(170)

	lossProfile := regularProfile(30)
	lossProfile.Weight = floatPtr(79)
	lossProfile.Height = floatPtr(170)

	gainProfile := regularProfile(30)
	gainProfile.Weight = floatPtr(62.5)
	gainProfile.Height = floatPtr(165)

	irregularProfile := regularProfile(30)
	irregularProfile.CycleRegularity = models.CycleIrregular

	longCycleProfile := regularProfile(30)
	longCycleProfile.CycleLength = intPtr(40)

	noPeriodProfile := regularProfile(30)
	noPeriodProfile.LastPeriodDate = nil

	tests := []struct {
		name           string
		trigger        RuleTrigger
		profile        models.UserProfile
		now            time.Time
		previousWeight *float64
		want           []string
	}{
		{name: "fertile window starts", trigger: TriggerDailyCheck, profile: regularProfile(30), now: onCycleDay(9), want: []string{RuleFertileWindowStart}},
		{name: "fertile window gated by age", trigger: TriggerDailyCheck, profile: regularProfile(46), now: onCycleDay(9), want: []string{}},
		{name: "unknown age is not gated", trigger: TriggerDailyCheck, profile: regularProfile(0), now: onCycleDay(9), want: []string{RuleFertileWindowStart}},
		{name: "ovulation day", trigger: TriggerDailyCheck, profile: regularProfile(30), now: onCycleDay(14), want: []string{RuleOvulationDay}},
		{name: "ovulation gated by age", trigger: TriggerDailyCheck, profile: regularProfile(47), now: onCycleDay(14), want: []string{}},
		{name: "quiet mid cycle day", trigger: TriggerDailyCheck, profile: regularProfile(30), now: onCycleDay(20), want: []string{}},
		{name: "period approaching", trigger: TriggerDailyCheck, profile: regularProfile(30), now: onCycleDay(26), want: []string{RulePeriodApproaching}},
		{name: "cycle started", trigger: TriggerDailyCheck, profile: regularProfile(30), now: onCycleDay(29), want: []string{RuleCycleStarted}},
		{name: "irregular by answer", trigger: TriggerDailyCheck, profile: irregularProfile, now: onCycleDay(5), want: []string{RuleIrregularCycle}},
		{name: "irregular by length", trigger: TriggerDailyCheck, profile: longCycleProfile, now: onCycleDay(5), want: []string{RuleIrregularCycle}},
		{name: "two eligible rules keep catalog order", trigger: TriggerDailyCheck, profile: irregularProfile, now: onCycleDay(1), want: []string{RuleCycleStarted, RuleIrregularCycle}},
		{name: "missing last period", trigger: TriggerDailyCheck, profile: noPeriodProfile, now: onCycleDay(5), want: []string{RuleMissingPeriodDate}},
		{name: "weight loss from overweight", trigger: TriggerWeightUpdate, profile: lossProfile, now: onCycleDay(20), previousWeight: floatPtr(80), want: []string{RuleWeightLoss}},
		{name: "weight loss from normal BMI", trigger: TriggerWeightUpdate, profile: gainProfile, now: onCycleDay(20), previousWeight: floatPtr(63.5), want: []string{}},
		{name: "weight gain", trigger: TriggerWeightUpdate, profile: gainProfile, now: onCycleDay(20), previousWeight: floatPtr(60), want: []string{RuleWeightGain}},
		{name: "low BMI", trigger: TriggerWeightUpdate, profile: lowWeightProfile, now: onCycleDay(20), previousWeight: floatPtr(50.2), want: []string{RuleBMIOutOfRange}},
		{name: "weight rules ignore daily trigger", trigger: TriggerDailyCheck, profile: lowWeightProfile, now: onCycleDay(20), previousWeight: floatPtr(45), want: []string{}},
		{name: "age 34", trigger: TriggerAgeCheck, profile: regularProfile(34), now: onCycleDay(20), want: []string{}},
		{name: "age 35 milestone", trigger: TriggerAgeCheck, profile: regularProfile(36), now: onCycleDay(20), want: []string{RuleAge35Milestone}},
		{name: "age 40 milestone", trigger: TriggerAgeCheck, profile: regularProfile(41), now: onCycleDay(20), want: []string{RuleAge40Milestone}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ruleCtx := NewRuleContext(testCase.profile, testCase.now, testCase.previousWeight, RuleContextOptions{})
			got := firedRuleIDs(t, testCase.trigger, ruleCtx)
			if strings.Join(got, ",") != strings.Join(testCase.want, ",") {
				t.Fatalf("expected %v, got %v (cycle day %d)", testCase.want, got, ruleCtx.CurrentCycleDay)
			}
		})
	}
}

func TestDefaultRuleCatalogIsWellFormed(t *testing.T) {
	seen := make(map[string]bool)
	for _, rule := range DefaultRuleCatalog() {
		if seen[rule.ID] {
			t.Fatalf("duplicate rule id %s", rule.ID)
		}
		seen[rule.ID] = true
		if rule.Condition == nil || rule.Message == nil || len(rule.Triggers) == 0 {
			t.Fatalf("rule %s is incomplete", rule.ID)
		}
		if rule.Priority < 1 || rule.Priority > 3 || rule.CooldownDays < 0 {
			t.Fatalf("rule %s has invalid priority or cooldown: %+v", rule.ID, rule)
		}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) != 11 {
		t.Fatalf("expected 11 rules, got %v", ids)
	}
}

func TestFertilityRulesRespectConfiguredMaxAge(t *testing.T) {
	ruleCtx := NewRuleContext(regularProfile(43), onCycleDay(9), nil, RuleContextOptions{FertilityMaxAge: 42})
	if got := firedRuleIDs(t, TriggerDailyCheck, ruleCtx); len(got) != 0 {
		t.Fatalf("expected no fertility emissions above configured age, got %v", got)
	}
}

func TestFertileWindowMessageMentionsWindow(t *testing.T) {
	ruleCtx := NewRuleContext(regularProfile(30), onCycleDay(9), nil, RuleContextOptions{})
	evaluation := NewRuleEngine(nil, quietLogger()).Evaluate(context.Background(), 1, DefaultRuleCatalog(), TriggerDailyCheck, ruleCtx)
	if len(evaluation.Emissions) != 1 {
		t.Fatalf("expected one emission, got %+v", evaluation.Emissions)
	}
	message := evaluation.Emissions[0].Message
	for _, fragment := range []string{"día 9", "del día 9 al 15", "día 14"} {
		if !strings.Contains(message, fragment) {
			t.Fatalf("expected %q in message %q", fragment, message)
		}
	}
}

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/models"
	"golang.org/x/sync/errgroup"
)

var ErrRuleProfileLoadFailed = errors.New("load profile for rules failed")

type RuleProfileReader interface {
	FindByID(ctx context.Context, userID uint) (models.UserProfile, error)
}

// FunctionSnapshotReader supplies the FUNCTION questionnaire, whose cycle
// answers take precedence over the profile.
type FunctionSnapshotReader interface {
	Find(ctx context.Context, userID uint, pillar models.Pillar) (*models.PillarSnapshot, error)
}

type NotificationEmitter interface {
	Emit(ctx context.Context, userID uint, emission Emission, now time.Time) (models.Notification, error)
}

type RuleRunResult struct {
	Evaluation RuleEvaluation
	Emitted    []models.Notification
}

// RuleRunner evaluates one trigger for one user and emits whatever fires.
type RuleRunner struct {
	profiles RuleProfileReader
	pillars  FunctionSnapshotReader
	engine   *RuleEngine
	emitter  NotificationEmitter
	catalog  []Rule
	options  RuleContextOptions
	location *time.Location
	now      func() time.Time
}

func NewRuleRunner(profiles RuleProfileReader, pillars FunctionSnapshotReader, engine *RuleEngine, emitter NotificationEmitter, catalog []Rule, options RuleContextOptions, location *time.Location) *RuleRunner {
	if location == nil {
		location = time.UTC
	}
	return &RuleRunner{
		profiles: profiles,
		pillars:  pillars,
		engine:   engine,
		emitter:  emitter,
		catalog:  catalog,
		options:  options,
		location: location,
		now:      time.Now,
	}
}

// RunForUser returns an error when the profile cannot be loaded or when an
// emission could not be stored. Rule failures are reported in the evaluation.
func (runner *RuleRunner) RunForUser(ctx context.Context, userID uint, trigger RuleTrigger, previousWeight *float64) (RuleRunResult, error) {
	profile, err := runner.profiles.FindByID(ctx, userID)
	if err != nil {
		return RuleRunResult{}, fmt.Errorf("%w: %v", ErrRuleProfileLoadFailed, err)
	}
	if !profile.NotificationsEnabled {
		return RuleRunResult{}, nil
	}
	if runner.pillars != nil {
		function, err := runner.pillars.Find(ctx, userID, models.PillarFunction)
		if err != nil {
			return RuleRunResult{}, fmt.Errorf("%w: function snapshot: %v", ErrRuleProfileLoadFailed, err)
		}
		profile = ProfileWithFunctionAnswers(profile, function)
	}

	now := runner.now().In(runner.location)
	ruleCtx := NewRuleContext(profile, now, previousWeight, runner.options)
	result := RuleRunResult{
		Evaluation: runner.engine.Evaluate(ctx, userID, runner.catalog, trigger, ruleCtx),
	}

	var emitErrors []error
	for _, emission := range result.Evaluation.Emissions {
		notification, err := runner.emitter.Emit(ctx, userID, emission, now)
		if err != nil {
			emitErrors = append(emitErrors, fmt.Errorf("rule %s: %w", emission.RuleID, err))
			continue
		}
		result.Emitted = append(result.Emitted, notification)
	}
	return result, errors.Join(emitErrors...)
}

type NotifiableUserLister interface {
	ListNotifiableIDs(ctx context.Context, afterID uint, limit int) ([]uint, error)
}

type UserRuleRunner interface {
	RunForUser(ctx context.Context, userID uint, trigger RuleTrigger, previousWeight *float64) (RuleRunResult, error)
}

type SweepFailure struct {
	UserID uint   `json:"user_id"`
	Error  string `json:"error"`
}

type SweepReport struct {
	RunID          string         `json:"run_id"`
	Trigger        RuleTrigger    `json:"trigger"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	UsersProcessed int            `json:"users_processed"`
	Emitted        int            `json:"emitted"`
	RuleFailures   int            `json:"rule_failures"`
	Failures       []SweepFailure `json:"failures"`
}

type RuleSweepOptions struct {
	Concurrency int
	UserTimeout time.Duration
	PageSize    int
}

// RuleSweep runs a trigger over every user that accepts notifications. One
// user's failure is recorded and never stops the batch.
type RuleSweep struct {
	users   NotifiableUserLister
	runner  UserRuleRunner
	options RuleSweepOptions
	logger  *logrus.Logger
}

func NewRuleSweep(users NotifiableUserLister, runner UserRuleRunner, options RuleSweepOptions, logger *logrus.Logger) *RuleSweep {
	if options.Concurrency < 1 {
		options.Concurrency = 1
	}
	if options.PageSize < 1 {
		options.PageSize = 200
	}
	if options.UserTimeout <= 0 {
		options.UserTimeout = 30 * time.Second
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RuleSweep{
		users:   users,
		runner:  runner,
		options: options,
		logger:  logger,
	}
}

func (sweep *RuleSweep) Run(ctx context.Context, trigger RuleTrigger) (SweepReport, error) {
	report := SweepReport{
		RunID:     uuid.NewString(),
		Trigger:   trigger,
		StartedAt: time.Now(),
		Failures:  make([]SweepFailure, 0),
	}
	log := sweep.logger.WithFields(logrus.Fields{"run_id": report.RunID, "trigger": trigger})
	log.Info("rule sweep started")

	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(sweep.options.Concurrency)

	var listErr error
	afterID := uint(0)
	for {
		ids, err := sweep.users.ListNotifiableIDs(groupCtx, afterID, sweep.options.PageSize)
		if err != nil {
			listErr = fmt.Errorf("list notifiable users: %w", err)
			break
		}
		for _, userID := range ids {
			group.Go(func() error {
				result, err := sweep.runUser(groupCtx, userID, trigger)

				mu.Lock()
				defer mu.Unlock()
				report.UsersProcessed++
				report.Emitted += len(result.Emitted)
				report.RuleFailures += len(result.Evaluation.Failures)
				if err != nil {
					report.Failures = append(report.Failures, SweepFailure{UserID: userID, Error: err.Error()})
					log.WithField("user_id", userID).Warnf("Failed to evaluate rules: %+v", err)
				}
				return nil
			})
		}
		if len(ids) < sweep.options.PageSize {
			break
		}
		afterID = ids[len(ids)-1]
	}

	_ = group.Wait()
	report.FinishedAt = time.Now()

	log.WithFields(logrus.Fields{
		"users":         report.UsersProcessed,
		"emitted":       report.Emitted,
		"failed_users":  len(report.Failures),
		"rule_failures": report.RuleFailures,
	}).Info("rule sweep finished")

	if listErr != nil {
		return report, listErr
	}
	return report, ctx.Err()
}

func (sweep *RuleSweep) runUser(ctx context.Context, userID uint, trigger RuleTrigger) (result RuleRunResult, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("rule run panicked: %v", recovered)
		}
	}()

	userCtx, cancel := context.WithTimeout(ctx, sweep.options.UserTimeout)
	defer cancel()
	return sweep.runner.RunForUser(userCtx, userID, trigger, nil)
}

// Start runs the given triggers once immediately and then on every tick
// until ctx is cancelled.
func (sweep *RuleSweep) Start(ctx context.Context, interval time.Duration, triggers ...RuleTrigger) {
	if interval <= 0 || len(triggers) == 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()

		sweep.runAll(ctx, triggers)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sweep.runAll(ctx, triggers)
			}
		}
	}()
}

func (sweep *RuleSweep) runAll(ctx context.Context, triggers []RuleTrigger) {
	for _, trigger := range triggers {
		if ctx.Err() != nil {
			return
		}
		if _, err := sweep.Run(ctx, trigger); err != nil {
			sweep.logger.WithField("trigger", trigger).Warnf("Failed to complete rule sweep: %+v", err)
		}
	}
}

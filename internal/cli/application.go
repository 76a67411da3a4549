package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/ai"
	"github.com/terraincognita07/fertyfit/internal/api"
	"github.com/terraincognita07/fertyfit/internal/cache"
	"github.com/terraincognita07/fertyfit/internal/config"
	"github.com/terraincognita07/fertyfit/internal/db"
	"github.com/terraincognita07/fertyfit/internal/services"
	"gorm.io/gorm"
)

// Application holds every wired dependency of a running process.
type Application struct {
	Config       *config.Config
	Logger       *logrus.Logger
	Location     *time.Location
	Database     *gorm.DB
	Repositories *db.Repositories
	Redis        *redis.Client
	Services     api.Services
	Runner       *services.RuleRunner
	Sweep        *services.RuleSweep

	closers []func() error
}

func NewApplication(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Application, error) {
	location := loadLocation(cfg.App.TimeZone, logger)
	app := &Application{Config: cfg, Logger: logger, Location: location}

	database, err := db.Open(db.Options{
		Driver:     cfg.Database.Driver,
		SQLitePath: cfg.Database.Path,
		Postgres: db.PostgresConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Name:     cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
			TimeZone: cfg.App.TimeZone,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	app.Database = database
	app.Repositories = db.NewRepositories(database)
	if sqlDB, err := database.DB(); err == nil {
		app.closers = append(app.closers, sqlDB.Close)
	}

	var cooldowns services.CooldownStore = app.Repositories.Notifications
	if cfg.Rules.CooldownBackend == config.CooldownBackendRedis {
		client, err := cache.NewRedisClient(ctx, cfg.Redis, logger)
		if err != nil {
			app.Close()
			return nil, err
		}
		app.Redis = client
		app.closers = append(app.closers, client.Close)
		cooldowns = cache.NewCooldownStore(client, app.Repositories.Notifications, logger)
	}

	generator, err := newGenerator(ctx, cfg.Gemini, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer, ok := generator.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}

	policy, err := services.ParseTotalPolicy(cfg.Score.TotalPolicy)
	if err != nil {
		app.Close()
		return nil, err
	}
	strategy := services.DefaultScoreStrategy()
	strategy.Window = cfg.Score.DynamicDays
	calculator := services.NewScoreCalculator(strategy, policy)

	repos := app.Repositories
	scores := services.NewScoreService(repos.Profiles, repos.DailyLogs, repos.Pillars, repos.Scores, calculator, location, logger)
	pusher, err := services.NewTelegramPusher(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		app.Close()
		return nil, err
	}
	dispatcher := services.NewNotificationDispatcher(repos.Notifications, cooldowns, pusher, logger)
	engine := services.NewRuleEngine(dispatcher, logger)
	app.Runner = services.NewRuleRunner(repos.Profiles, repos.Pillars, engine, dispatcher, services.DefaultRuleCatalog(), services.RuleContextOptions{
		FertilityMaxAge: cfg.Rules.FertilityMaxAge,
	}, location)
	app.Sweep = services.NewRuleSweep(repos.Profiles, app.Runner, services.RuleSweepOptions{
		Concurrency: cfg.Rules.SweepConcurrency,
	}, logger)

	app.Services = api.Services{
		Profiles:      services.NewProfileService(repos.Profiles, app.Runner, scores, location, logger),
		Days:          services.NewDayService(repos.DailyLogs, repos.Profiles, scores, location),
		Pillars:       services.NewPillarService(repos.Pillars, repos.Consultations, repos.DailyLogs, scores),
		Scores:        scores,
		Notifications: dispatcher,
		Reports:       services.NewReportService(repos.Profiles, repos.DailyLogs, scores, repos.Knowledge, repos.Reports, generator, location, logger),
	}
	return app, nil
}

// newGenerator uses Gemini when an API key is configured and the offline
// generator otherwise.
func newGenerator(ctx context.Context, cfg config.GeminiConfig, logger *logrus.Logger) (services.TextGenerator, error) {
	if cfg.APIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, reports and chat use the offline generator")
		return ai.StaticGenerator{}, nil
	}
	client, err := ai.NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("gemini init failed: %w", err)
	}
	return client, nil
}

func loadLocation(name string, logger *logrus.Logger) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		logger.Warnf("invalid TZ %q, falling back to UTC", name)
		return time.UTC
	}
	return location
}

// Close releases resources in reverse order of acquisition.
func (app *Application) Close() error {
	var errs []error
	for index := len(app.closers) - 1; index >= 0; index-- {
		if err := app.closers[index](); err != nil {
			errs = append(errs, err)
		}
	}
	app.closers = nil
	return errors.Join(errs...)
}

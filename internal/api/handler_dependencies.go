package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/services"
)

// Services are the application services the HTTP surface calls into.
type Services struct {
	Profiles      *services.ProfileService
	Days          *services.DayService
	Pillars       *services.PillarService
	Scores        *services.ScoreService
	Notifications *services.NotificationDispatcher
	Reports       *services.ReportService
}

func (deps Services) validate() error {
	switch {
	case deps.Profiles == nil:
		return errors.New("profile service is required")
	case deps.Days == nil:
		return errors.New("day service is required")
	case deps.Pillars == nil:
		return errors.New("pillar service is required")
	case deps.Scores == nil:
		return errors.New("score service is required")
	case deps.Notifications == nil:
		return errors.New("notification dispatcher is required")
	case deps.Reports == nil:
		return errors.New("report service is required")
	}
	return nil
}

func NewHandler(secret string, location *time.Location, deps Services, logger *logrus.Logger) (*Handler, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{
		secretKey:         []byte(secret),
		location:          location,
		profiles:          deps.Profiles,
		days:              deps.Days,
		pillars:           deps.Pillars,
		scores:            deps.Scores,
		notifications:     deps.Notifications,
		reports:           deps.Reports,
		validator:         newPayloadValidator(),
		generationLimiter: newAttemptLimiter(),
		logger:            logger,
		now:               time.Now,
	}, nil
}

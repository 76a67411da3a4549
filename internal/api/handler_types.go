package api

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/services"
)

type Handler struct {
	secretKey         []byte
	location          *time.Location
	profiles          *services.ProfileService
	days              *services.DayService
	pillars           *services.PillarService
	scores            *services.ScoreService
	notifications     *services.NotificationDispatcher
	reports           *services.ReportService
	validator         *payloadValidator
	generationLimiter *attemptLimiter
	logger            *logrus.Logger
	now               func() time.Time
}

const (
	generationLimit  = 20
	generationWindow = time.Hour
)

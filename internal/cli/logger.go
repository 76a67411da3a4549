package cli

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/fertyfit/internal/config"
)

// NewLogger builds the process logger. Unknown levels fall back to info.
func NewLogger(cfg config.LoggingConfig, output io.Writer) *logrus.Logger {
	if output == nil {
		output = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(output)
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "text") {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

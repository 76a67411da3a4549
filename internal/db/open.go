package db

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type Options struct {
	Driver     string
	SQLitePath string
	Postgres   PostgresConfig
}

func Open(options Options, logger *logrus.Logger) (*gorm.DB, error) {
	switch Dialect(strings.ToLower(strings.TrimSpace(options.Driver))) {
	case "", DialectSQLite:
		return OpenSQLite(options.SQLitePath, logger)
	case DialectPostgres:
		return OpenPostgres(options.Postgres, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", options.Driver)
	}
}

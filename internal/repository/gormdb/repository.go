package gormdb

import (
	"log/slog"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/watchparty/server/internal/repository"
)

type repo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepo(db *gorm.DB, logger *slog.Logger) *repo {
	return &repo{
		db:     db,
		logger: logger,
	}
}

// Open picks the driver from the DSN: postgres URLs go through the pgx
// driver, anything else is treated as a sqlite path (":memory:" included).
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	return gorm.Open(sqlite.Open(dsn), cfg)
}

func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&repository.User{},
		&repository.Identity{},
		&repository.Session{},
		&repository.Participant{},
		&repository.Queue{},
		&repository.QueueItem{},
		&repository.Relationship{},
	)
}

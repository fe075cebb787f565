package persistence

import (
	"fmt"
	"strings"
	"time"

	"github.com/viaticos/backend/internal/infrastructure/config"
	applogger "github.com/viaticos/backend/internal/infrastructure/logger"
	"github.com/viaticos/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB *gorm.DB
}

// NewDatabase connects to Postgres, applies the pool settings and, when
// cfg.TraceEnabled is set, registers otelgorm spans
func NewDatabase(cfg *config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	db, err := Open(postgres.Open(cfg.DSN()), logger, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	tracingCfg := telemetry.DefaultDBTracingConfig()
	tracingCfg.Enabled = cfg.TraceEnabled
	if err := telemetry.NewDBTracingPlugin(tracingCfg, logger).RegisterOtelGorm(db.DB); err != nil {
		return nil, fmt.Errorf("failed to register database tracing: %w", err)
	}

	return db, nil
}

// Open builds a Database over any dialector with the settings every
// repository relies on: translated driver errors and no implicit
// transaction per write
func Open(dialector gorm.Dialector, logger *zap.Logger, logLevel string) (*Database, error) {
	gormLogger := applogger.NewGormLogger(logger, applogger.MapGormLogLevel(logLevel),
		applogger.WithSQLParams(strings.EqualFold(logLevel, "debug")))
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Stats returns database connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Transaction executes a function within a database transaction
func (d *Database) Transaction(fn func(tx *gorm.DB) error) error {
	return d.DB.Transaction(fn)
}

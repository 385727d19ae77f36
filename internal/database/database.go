package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdg-garage/hotel-pms/internal/config"
	"github.com/gdg-garage/hotel-pms/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Connect opens the configured store, migrates it and seeds first-boot data.
func Connect(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	if cfg.SeedDefaults {
		if err := Seed(db, cfg.BootstrapAdminEmail); err != nil {
			return nil, fmt.Errorf("seed database: %w", err)
		}
	}
	return db, nil
}

// Open connects and runs AutoMigrate. A nil logger silences SQL logging.
func Open(driver, dsn string, log *logrus.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: logger.Discard}
	if log != nil {
		gormCfg.Logger = logger.New(log, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLevel(log.GetLevel()),
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if isSQLite(driver) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite has no row locks; a single connection serializes writers.
		// It also keeps a ":memory:" database alive for the pool's lifetime.
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Profile{},
		&models.RoomType{},
		&models.Room{},
		&models.Guest{},
		&models.Extra{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.BookingExtra{},
		&models.Payment{},
	)
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch {
	case isSQLite(driver):
		return sqlite.Open(dsn), nil
	case strings.EqualFold(driver, DriverPostgres):
		return postgres.Open(dsn), nil
	case strings.EqualFold(driver, DriverMySQL):
		return mysql.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", driver)
	}
}

func isSQLite(driver string) bool {
	return driver == "" || strings.EqualFold(driver, DriverSQLite)
}

func gormLevel(level logrus.Level) logger.LogLevel {
	switch {
	case level >= logrus.DebugLevel:
		return logger.Info
	case level >= logrus.WarnLevel:
		return logger.Warn
	default:
		return logger.Error
	}
}

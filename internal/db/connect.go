package db

import (
	"exam_system/internal/config" // Custom package for configuration
	"fmt"                         // DSN formatting
	"time"                        // Pool lifetimes

	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	"gorm.io/gorm/logger"     // GORM logger levels
)

// Dialector picks the GORM dialector for cfg.DBDriver
func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DBDriver {
	case "", "mysql":
		// Setup Data Source Name (DSN) for MySQL
		dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
		return mysql.Open(dsn), nil
	case "postgres", "postgresql":
		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode,
		)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Open connects to the configured database and tunes its connection pool
func Open(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := Dialector(cfg) // Resolve driver
	if err != nil {
		return nil, err
	}
	logLevel := logger.Warn // Quiet in development
	if cfg.IsProd {
		logLevel = logger.Error // Errors only in production
	}
	gdb, err := Connect(dialector, logLevel)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB() // Underlying *sql.DB for pool settings
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)                  // Idle connections kept around
	sqlDB.SetMaxOpenConns(100)                 // Upper bound on open connections
	sqlDB.SetConnMaxLifetime(time.Hour)        // Recycle long-lived connections
	sqlDB.SetConnMaxIdleTime(10 * time.Minute) // Drop idle connections
	return gdb, nil
}

// Connect opens a GORM handle with duplicate-key errors translated to gorm.ErrDuplicatedKey
func Connect(dialector gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,                          // Map driver errors to gorm sentinels
		Logger:         logger.Default.LogMode(level), // SQL logging level
	})
}

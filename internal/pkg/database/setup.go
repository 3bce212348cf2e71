package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Beki78/fetan-pay/app/models"
	"github.com/Beki78/fetan-pay/internal/pkg/env"
)

const maxRetries = 5
const retryDelay = 5 * time.Second

// ErrMissingDatabaseURL is returned when DATABASE_URL is not configured.
var ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")

// DSNFromEnv reads the MySQL DSN ("user:pass@tcp(host:3306)/dbname") from
// DATABASE_URL and makes sure time columns are parsed in UTC.
func DSNFromEnv() (string, error) {
	dsn := strings.TrimSpace(env.GetEnv("DATABASE_URL", ""))
	if dsn == "" {
		return "", ErrMissingDatabaseURL
	}
	return NormalizeDSN(dsn), nil
}

// NormalizeDSN strips a mysql:// scheme and adds parseTime/loc/charset when absent.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "mysql://")
	params := []string{}
	if !strings.Contains(dsn, "parseTime=") {
		params = append(params, "parseTime=True")
	}
	if !strings.Contains(dsn, "loc=") {
		params = append(params, "loc=UTC")
	}
	if !strings.Contains(dsn, "charset=") {
		params = append(params, "charset=utf8mb4")
	}
	if len(params) == 0 {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(params, "&")
}

// MigrationURL turns a DSN into the mysql:// URL golang-migrate expects,
// with multi-statement support enabled.
func MigrationURL(dsn string) string {
	dsn = NormalizeDSN(dsn)
	if !strings.Contains(dsn, "multiStatements=") {
		dsn += "&multiStatements=true"
	}
	return "mysql://" + dsn
}

// Open connects to MySQL, retrying a few times while the database container starts.
func Open(dsn string) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < maxRetries; i++ {
		db, err = gorm.Open(mysql.New(mysql.Config{
			DSN:                       dsn,
			DefaultStringSize:         256,
			SkipInitializeWithVersion: false,
		}), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
			NowFunc: func() time.Time {
				return time.Now().UTC()
			},
		})
		if err == nil {
			return db, nil
		}

		log.Warnf("[Database] Failed to connect (try %d/%d): %v", i+1, maxRetries, err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("open database: %w", err)
}

// AutoMigrate creates or updates the lifecycle tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Merchant{},
		&models.Plan{},
		&models.Subscription{},
	)
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Errorf("[Database] Could not get connection pool: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Errorf("[Database] Close failed: %v", err)
	}
}

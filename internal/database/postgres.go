package database

import (
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresOptions describes how to reach the feedback database.
type PostgresOptions struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	LogLevel     string
	MaxOpenConns int
	MaxIdleConns int
}

// DSN renders the options as a postgres:// URL.
func (o PostgresOptions) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(o.User, o.Password),
		Host:   fmt.Sprintf("%s:%d", o.Host, o.Port),
		Path:   "/" + o.Name,
	}
	q := url.Values{}
	if o.SSLMode != "" {
		q.Set("sslmode", o.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// OpenPostgres builds the connection pool. It does not ping: the server may
// still be starting, and EnsureReady owns waiting for it.
func OpenPostgres(o PostgresOptions) (*gorm.DB, error) {
	level, err := ParseGormLogLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(o.DSN()), &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not open postgres")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "could not access postgres pool")
	}
	if o.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(o.MaxOpenConns)
	}
	if o.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(o.MaxIdleConns)
	}
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// ParseGormLogLevel maps info|warn|error|silent onto gorm's levels. Empty means warn.
func ParseGormLogLevel(v string) (logger.LogLevel, error) {
	switch v {
	case "info":
		return logger.Info, nil
	case "", "warn":
		return logger.Warn, nil
	case "error":
		return logger.Error, nil
	case "silent":
		return logger.Silent, nil
	}
	return logger.Silent, fmt.Errorf("unknown gorm log level: %s", v)
}

package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenGorm connects to MySQL, Postgres or an embedded SQLite file depending on database.driver.
func OpenGorm(c AppConfig) (*gorm.DB, error) {
	dbc := c.Database
	var dialector gorm.Dialector
	switch dbc.Driver {
	case "mysql", "":
		dsn := dbc.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				dbc.User, dbc.Password, dbc.Host, dbc.Port, dbc.Name)
		}
		dialector = mysql.Open(dsn)
	case "postgres":
		dsn := dbc.DSN
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				dbc.Host, dbc.Port, dbc.User, dbc.Password, dbc.Name)
		}
		dialector = postgres.Open(dsn)
	case "sqlite":
		dsn := dbc.DSN
		if dsn == "" {
			dsn = dbc.Name + ".db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", dbc.Driver)
	}

	// Slow-sql threshold is raised to keep the log quiet in normal operation.
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(c.Log.Level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(dbc.MaxIdle)
	sqlDB.SetMaxOpenConns(dbc.MaxOpen)
	sqlDB.SetConnMaxLifetime(dbc.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	// Ping early so network or auth problems surface at startup.
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}
	return db, nil
}

// ConnectMongo dials the configured MongoDB deployment and returns the application database.
func ConnectMongo(ctx context.Context, c AppConfig) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.Database.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(c.Database.MongoDatabase), nil
}

// toGormLogLevel maps the application log level to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// Info prints every statement.
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

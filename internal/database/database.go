package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"storyloom/internal/config"
)

type MethodsDB interface {
	CloseDB() error
	RunMigrations(ctx context.Context, migrationFilePath string) error
	HealthCheck(ctx context.Context) error
}

type DB struct {
	*sqlx.DB
	log *zap.Logger
}

func DSN(cfg config.DB) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.DbHOST,
		cfg.DbPORT,
		cfg.DbUSER,
		cfg.DbPASSWORD,
		cfg.DbNAME,
		cfg.DbSSLMODE,
	)
}

// ConnectDB opens the pool, applies migrations and verifies the connection.
func ConnectDB(ctx context.Context, cfg *config.Config, log *zap.Logger) (*DB, error) {
	log.Info("Connecting to database", zap.String("host", cfg.DB.DbHOST), zap.String("dbname", cfg.DB.DbNAME))

	db, err := sqlx.ConnectContext(ctx, "postgres", DSN(cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	dbStruct := &DB{DB: db, log: log}

	if err := dbStruct.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := dbStruct.HealthCheck(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database health check: %w", err)
	}

	log.Info("Connected to PostgreSQL")
	return dbStruct, nil
}

func (db *DB) CloseDB() error {
	return db.DB.Close()
}

func (db *DB) RunMigrations(ctx context.Context, migrationFilePath string) error {
	migrationSQL, err := os.ReadFile(migrationFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("migration file not found: %s", migrationFilePath)
		}
		return fmt.Errorf("read migration file: %w", err)
	}

	db.log.Info("Applying migrations", zap.String("file", migrationFilePath))

	if _, err := db.ExecContext(ctx, string(migrationSQL)); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	db.log.Info("Migrations applied")
	return nil
}

func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.DB == nil {
		return errors.New("database connection is not initialised")
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}

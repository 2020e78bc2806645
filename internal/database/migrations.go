package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

func newMigrationProvider(db *sql.DB, migrationsDir string) (*goose.Provider, error) {
	if _, err := os.Stat(migrationsDir); err != nil {
		return nil, fmt.Errorf("migrations directory %s: %w", migrationsDir, err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS(migrationsDir))
	if err != nil {
		return nil, fmt.Errorf("failed to create migration provider: %w", err)
	}
	return provider, nil
}

// RunMigrations applies every pending migration of migrationsDir and logs
// each one applied
func RunMigrations(ctx context.Context, db *sql.DB, migrationsDir string, logger *zap.Logger) error {
	provider, err := newMigrationProvider(db, migrationsDir)
	if err != nil {
		return err
	}

	logger.Info("Checking for pending migrations...", zap.String("dir", migrationsDir))

	results, err := provider.Up(ctx)
	if err != nil {
		logger.Error("Failed to run migrations", zap.Error(err))
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, res := range results {
		logger.Info("Applied migration",
			zap.Int64("version", res.Source.Version),
			zap.String("file", res.Source.Path),
			zap.Duration("duration", res.Duration),
		)
	}

	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	logger.Info("Migrations completed successfully", zap.Int64("version", version), zap.Int("applied", len(results)))
	return nil
}

// GetMigrationStatus logs the state of every known migration and returns
// the number still pending
func GetMigrationStatus(ctx context.Context, db *sql.DB, migrationsDir string, logger *zap.Logger) (int, error) {
	provider, err := newMigrationProvider(db, migrationsDir)
	if err != nil {
		return 0, err
	}

	statuses, err := provider.Status(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read migration status: %w", err)
	}

	pending := 0
	for _, st := range statuses {
		fields := []zap.Field{
			zap.Int64("version", st.Source.Version),
			zap.String("file", st.Source.Path),
			zap.String("state", string(st.State)),
		}
		if st.State == goose.StateApplied {
			fields = append(fields, zap.Time("applied_at", st.AppliedAt))
		} else {
			pending++
		}
		logger.Info("Migration", fields...)
	}
	return pending, nil
}

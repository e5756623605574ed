package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mta/internal/config"

	"github.com/rs/zerolog"
)

const backupPrefix = "backup_"

type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
	now    func() time.Time
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	return &BackupService{
		db:     db,
		config: cfg,
		logger: logger,
		now:    time.Now,
	}
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("Backup service is disabled")
		return
	}

	interval := 24 * time.Hour
	if s.config.Schedule != "" {
		if d, err := time.ParseDuration(s.config.Schedule); err == nil && d > 0 {
			interval = d
		} else {
			s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("Failed to parse backup schedule, using default 24h")
		}
	}

	s.logger.Info().Dur("interval", interval).Msg("Backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("Scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a consistent copy of the database and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupFileName := fmt.Sprintf("%s%s.db", backupPrefix, s.now().Format("20060102_150405.000"))
	backupPath := filepath.Join(s.config.StoragePath, backupFileName)

	s.logger.Info().Str("path", backupPath).Msg("Performing database backup using VACUUM INTO")

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		if s.db.Path() == ":memory:" {
			return "", fmt.Errorf("failed to back up in-memory database: %w", err)
		}
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		if err := s.performBackupFallback(backupPath); err != nil {
			return "", err
		}
		return backupPath, nil
	}

	s.logger.Info().Msg("Backup completed successfully")
	return backupPath, nil
}

func (s *BackupService) performBackupFallback(backupPath string) error {
	source, err := os.Open(s.db.Path())
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer source.Close()

	destination, err := os.Create(backupPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer destination.Close()

	// io.Copy is not atomic for SQLite: concurrent writes may corrupt the copy
	if _, err := io.Copy(destination, source); err != nil {
		return fmt.Errorf("failed to copy database: %w", err)
	}

	s.logger.Info().Msg("Fallback backup completed successfully")
	return nil
}

// CleanupOldBackups removes backup files older than the retention window.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	files, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read backup directory for cleanup")
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0

	for _, file := range files {
		if file.IsDir() || !strings.HasPrefix(file.Name(), backupPrefix) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			continue
		}

		if info.ModTime().Before(cutoff) {
			s.logger.Info().Str("file", file.Name()).Msg("Deleting old backup")
			if err := os.Remove(filepath.Join(s.config.StoragePath, file.Name())); err != nil {
				s.logger.Warn().Err(err).Str("file", file.Name()).Msg("Failed to delete old backup")
				continue
			}
			removed++
		}
	}
	return removed
}

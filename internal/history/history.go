// Package history keeps a SQLite log of detected IP changes and whether the
// operator was told about them.
package history

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ipwatch/internal/models"
)

// Recorder writes and reads IP change records.
type Recorder struct {
	db *gorm.DB
}

// Open opens (creating if needed) the database at dbPath.
func Open(dbPath string) (*Recorder, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.AutoMigrate(&models.IPChange{}); err != nil {
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Record stores a change. notifyErr is the outcome of the notification, nil
// when it was delivered.
func (r *Recorder) Record(oldIP, newIP string, notifyErr error) (*models.IPChange, error) {
	change := &models.IPChange{
		OldIP:        oldIP,
		NewIP:        newIP,
		NotifyStatus: models.NotifyStatusSent,
	}
	if notifyErr != nil {
		change.NotifyStatus = models.NotifyStatusFailed
		change.NotifyError = notifyErr.Error()
	}

	if err := r.db.Create(change).Error; err != nil {
		return nil, fmt.Errorf("failed to record ip change: %w", err)
	}
	return change, nil
}

// Recent returns up to limit changes, newest first.
func (r *Recorder) Recent(limit int) ([]models.IPChange, error) {
	var changes []models.IPChange
	q := r.db.Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&changes).Error; err != nil {
		return nil, fmt.Errorf("failed to list ip changes: %w", err)
	}
	return changes, nil
}

// Close closes the database connection
func (r *Recorder) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying *sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Package syncprogress persists the progress of offline download runs so
// that it survives restarts and can be polled over HTTP.
//
//	var _ downloads.ProgressReporter = (*Repository)(nil)
//
// # Usage
//
//	repo := syncprogress.NewRepository(db)
//	err := repo.StartSync(runID, 114)
package syncprogress

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/quransync/internal/entities"
)

// StaleAfter is how long a running record may go without updates before
// it is treated as interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all sync progress database operations.
type Repository struct {
	db       *gorm.DB
	syncType entities.SyncType
}

// NewRepository creates a repository for offline download runs.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, syncType: entities.SyncTypeOfflineDownload}
}

// GetSyncProgress retrieves the progress row for the configured sync type.
func (r *Repository) GetSyncProgress() (*entities.SyncProgress, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ?", r.syncType).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// StartSync creates or resets the progress row for a new run.
func (r *Repository) StartSync(runID string, totalItems int) error {
	var progress entities.SyncProgress
	result := r.db.Where("sync_type = ?", r.syncType).First(&progress)

	now := time.Now()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		progress = entities.SyncProgress{
			SyncType:   r.syncType,
			RunID:      runID,
			Status:     entities.SyncStatusRunning,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&progress).Error
	} else if result.Error != nil {
		return result.Error
	}

	progress.RunID = runID
	progress.Status = entities.SyncStatusRunning
	progress.TotalItems = totalItems
	progress.Processed = 0
	progress.Succeeded = 0
	progress.Failed = 0
	progress.Percent = 0
	progress.CurrentItem = ""
	progress.Error = ""
	progress.StartedAt = now
	progress.UpdatedAt = now
	progress.CompletedAt = nil

	return r.db.Save(&progress).Error
}

// UpdateProgress records the counters of the run identified by runID.
// Updates for a run that was superseded are ignored.
func (r *Repository) UpdateProgress(runID string, processed, succeeded, failed, percent int, currentItem string) error {
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ? AND run_id = ?", r.syncType, runID).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    succeeded,
			"failed":       failed,
			"percent":      percent,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteSync marks the run as finished with the given terminal status.
func (r *Repository) CompleteSync(runID string, status entities.SyncStatus, errorMsg string) error {
	now := time.Now()
	updates := map[string]any{
		"status":       status,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.SyncProgress{}).
		Where("sync_type = ? AND run_id = ?", r.syncType, runID).
		Updates(updates).Error
}

// IsSyncRunning checks if a run is in progress. A running row that has
// not been touched for StaleAfter is marked failed.
func (r *Repository) IsSyncRunning() (bool, error) {
	var progress entities.SyncProgress
	err := r.db.Where("sync_type = ? AND status = ?", r.syncType, entities.SyncStatusRunning).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if progress.UpdatedAt.Before(time.Now().Add(-StaleAfter)) {
		_ = r.CompleteSync(progress.RunID, entities.SyncStatusFailed, "sync was interrupted")
		return false, nil
	}

	return true, nil
}

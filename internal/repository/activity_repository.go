package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskdesk/internal/model"
)

// ActivityRepository persists audit entries.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, entry *model.ActivityEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create activity entry: %w", err)
	}
	return nil
}

// ListByUser returns the user's newest entries, capped at limit.
func (r *ActivityRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]model.ActivityEntry, error) {
	var entries []model.ActivityEntry
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteOlderThan prunes entries created before the cutoff and reports how
// many rows went away.
func (r *ActivityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.ActivityEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune activity entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

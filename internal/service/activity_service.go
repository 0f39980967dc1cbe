package service

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"taskdesk/internal/model"
	"taskdesk/internal/repository"
)

// ActivityService records audit entries as a fire-and-forget side effect:
// a failed write is logged and never fails or delays the operation being
// recorded.
type ActivityService struct {
	repo *repository.ActivityRepository
	wg   sync.WaitGroup
}

func NewActivityService(repo *repository.ActivityRepository) *ActivityService {
	return &ActivityService{repo: repo}
}

// Record writes an entry in the background. before and after are
// snapshotted to JSON; a nil snapshot stores an empty string.
func (s *ActivityService) Record(userID uint, action model.ActivityAction, targetType string, targetID uint, before, after interface{}) {
	entry := &model.ActivityEntry{
		UserID:     userID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Before:     snapshot(before),
		After:      snapshot(after),
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, entry); err != nil {
			log.Printf("activity: record %s: %v", action, err)
		}
	}()
}

// Flush waits for in-flight records; called on shutdown and from tests.
func (s *ActivityService) Flush() {
	s.wg.Wait()
}

// Prune deletes entries older than the retention window.
func (s *ActivityService) Prune(ctx context.Context, retention time.Duration) error {
	n, err := s.repo.DeleteOlderThan(ctx, time.Now().Add(-retention))
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("activity: pruned %d entries", n)
	}
	return nil
}

func snapshot(v interface{}) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

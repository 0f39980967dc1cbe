package service

import (
	"context"
	"fmt"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
	"taskdesk/internal/repository"
)

// CategoryService wraps category business logic. Categories form one
// ordered sequence per user; new ones always enter at the top.
type CategoryService struct {
	repo     *repository.CategoryRepository
	activity *ActivityService
	locks    *ordering.ScopeLock
}

func NewCategoryService(repo *repository.CategoryRepository, activity *ActivityService, locks *ordering.ScopeLock) *CategoryService {
	return &CategoryService{repo: repo, activity: activity, locks: locks}
}

func categoryScopeKey(userID uint) string {
	return fmt.Sprintf("category/%d", userID)
}

// Create inserts a category at position 0, shifting the user's existing
// categories up by one.
func (s *CategoryService) Create(ctx context.Context, user *model.User, name string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	category := &model.Category{UserID: user.ID, Name: name}
	unlock := s.locks.Lock(categoryScopeKey(user.ID))
	err := s.repo.Create(ctx, category)
	unlock()
	if err != nil {
		return nil, err
	}

	s.activity.Record(user.ID, model.ActivityCategoryCreated, "category", category.ID, nil, category)
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

// Move repositions a category within the user's sequence.
func (s *CategoryService) Move(ctx context.Context, user *model.User, categoryID uint, newIndex int) (*model.Category, error) {
	if newIndex < 0 {
		return nil, fmt.Errorf("%w: index must be non-negative", ErrInvalidInput)
	}

	before, err := s.repo.GetByID(ctx, user.ID, categoryID)
	if err != nil {
		return nil, asNotFound(err)
	}

	unlock := s.locks.Lock(categoryScopeKey(user.ID))
	moved, err := s.repo.Move(ctx, user.ID, categoryID, newIndex)
	unlock()
	if err != nil {
		return nil, asNotFound(err)
	}

	s.activity.Record(user.ID, model.ActivityCategoryMoved, "category", moved.ID, before, moved)
	return moved, nil
}

// Delete removes the category, detaching its todos and closing the gap in
// the user's sequence.
func (s *CategoryService) Delete(ctx context.Context, user *model.User, categoryID uint) error {
	before, err := s.repo.GetByID(ctx, user.ID, categoryID)
	if err != nil {
		return asNotFound(err)
	}

	unlock := s.locks.Lock(categoryScopeKey(user.ID))
	err = s.repo.Delete(ctx, user.ID, categoryID)
	unlock()
	if err != nil {
		return asNotFound(err)
	}

	s.activity.Record(user.ID, model.ActivityCategoryDeleted, "category", categoryID, before, nil)
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
	"taskdesk/internal/recurrence"
	"taskdesk/internal/repository"
)

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title          string
	Description    string
	Priority       model.Priority
	CategoryID     *uint
	ParentID       *uint
	DueDate        *time.Time
	RecurrenceRule string
	RecurrenceEnd  *time.Time
}

// TodoService wraps todo business logic: creation, completion with
// recurring successors, and position moves.
type TodoService struct {
	todoRepo     *repository.TodoRepository
	categoryRepo *repository.CategoryRepository
	activity     *ActivityService
	locks        *ordering.ScopeLock
}

func NewTodoService(todoRepo *repository.TodoRepository, categoryRepo *repository.CategoryRepository, activity *ActivityService, locks *ordering.ScopeLock) *TodoService {
	return &TodoService{
		todoRepo:     todoRepo,
		categoryRepo: categoryRepo,
		activity:     activity,
		locks:        locks,
	}
}

func todoScopeKey(userID uint, categoryID *uint) string {
	if categoryID == nil {
		return fmt.Sprintf("todo/%d/none", userID)
	}
	return fmt.Sprintf("todo/%d/%d", userID, *categoryID)
}

// Create validates input and inserts the todo at the end of its scope.
func (s *TodoService) Create(ctx context.Context, user *model.User, input TodoInput) (*model.Todo, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, user.ID, *input.CategoryID); err != nil {
			return nil, asNotFound(err)
		}
	}
	if input.ParentID != nil {
		parent, err := s.todoRepo.FindByID(ctx, user.ID, *input.ParentID)
		if err != nil {
			return nil, asNotFound(err)
		}
		if parent.IsSubtask() {
			return nil, fmt.Errorf("%w: subtasks cannot nest", ErrInvalidInput)
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	todo := &model.Todo{
		UserID:         user.ID,
		CategoryID:     input.CategoryID,
		ParentID:       input.ParentID,
		Title:          input.Title,
		Description:    input.Description,
		Priority:       priority,
		DueDate:        input.DueDate,
		RecurrenceRule: input.RecurrenceRule,
		RecurrenceEnd:  input.RecurrenceEnd,
	}

	unlock := s.locks.Lock(todoScopeKey(user.ID, input.CategoryID))
	err := s.todoRepo.Create(ctx, todo)
	unlock()
	if err != nil {
		return nil, err
	}

	s.activity.Record(user.ID, model.ActivityTodoCreated, "todo", todo.ID, nil, todo)
	return todo, nil
}

func (s *TodoService) Get(ctx context.Context, user *model.User, todoID uint) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, user.ID, todoID)
	if err != nil {
		return nil, asNotFound(err)
	}
	return todo, nil
}

// List returns the user's top-level todos; categoryID narrows to one scope.
func (s *TodoService) List(ctx context.Context, user *model.User, categoryID *uint, scoped bool) ([]model.Todo, error) {
	if scoped {
		return s.todoRepo.ListScope(ctx, user.ID, categoryID)
	}
	return s.todoRepo.ListByUser(ctx, user.ID)
}

// Complete marks a todo done and, when it carries a recurrence rule whose
// next occurrence does not fall past the configured end, creates the
// successor occurrence in the same transaction. An unparseable rule means
// no successor, never an error.
func (s *TodoService) Complete(ctx context.Context, user *model.User, todoID uint, completedAt time.Time) (*model.Todo, *model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, user.ID, todoID)
	if err != nil {
		return nil, nil, asNotFound(err)
	}
	if todo.Completed {
		return todo, nil, nil
	}

	before := *todo
	successor := s.successor(todo, completedAt)

	unlock := s.locks.Lock(todoScopeKey(user.ID, todo.CategoryID))
	err = s.todoRepo.CompleteWithSuccessor(ctx, todo, successor)
	unlock()
	if err != nil {
		return nil, nil, err
	}

	s.activity.Record(user.ID, model.ActivityTodoCompleted, "todo", todo.ID, &before, todo)
	if successor != nil {
		s.activity.Record(user.ID, model.ActivityTodoCreated, "todo", successor.ID, nil, successor)
	}
	return todo, successor, nil
}

// successor builds the next occurrence of a recurring todo, or nil when the
// todo does not recur, the rule cannot be parsed, or the next date falls
// past the recurrence end. The anchor is the due date when present,
// otherwise the completion time.
func (s *TodoService) successor(todo *model.Todo, completedAt time.Time) *model.Todo {
	if todo.RecurrenceRule == "" || todo.IsSubtask() {
		return nil
	}
	anchor := completedAt
	if todo.DueDate != nil {
		anchor = *todo.DueDate
	}
	next, ok := recurrence.NextOccurrence(todo.RecurrenceRule, anchor, todo.RecurrenceEnd)
	if !ok {
		return nil
	}
	return &model.Todo{
		UserID:         todo.UserID,
		CategoryID:     todo.CategoryID,
		Title:          todo.Title,
		Description:    todo.Description,
		Priority:       todo.Priority,
		DueDate:        &next,
		RecurrenceRule: todo.RecurrenceRule,
		RecurrenceEnd:  todo.RecurrenceEnd,
	}
}

// StopRecurrence clears a todo's recurrence rule and end date.
func (s *TodoService) StopRecurrence(ctx context.Context, user *model.User, todoID uint) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, user.ID, todoID)
	if err != nil {
		return nil, asNotFound(err)
	}
	before := *todo
	todo.RecurrenceRule = ""
	todo.RecurrenceEnd = nil
	if err := s.todoRepo.ClearRecurrence(ctx, todo.ID); err != nil {
		return nil, err
	}
	s.activity.Record(user.ID, model.ActivityTodoUpdated, "todo", todo.ID, &before, todo)
	return todo, nil
}

// Move repositions the todo, optionally into a different category.
// newIndex must be non-negative; the scope locks are held around the
// transaction so concurrent moves on the same scope cannot interleave
// their read-then-shift steps.
func (s *TodoService) Move(ctx context.Context, user *model.User, todoID uint, newIndex int, newCategoryID *uint, changeCategory bool) (*model.Todo, error) {
	if newIndex < 0 {
		return nil, fmt.Errorf("%w: index must be non-negative", ErrInvalidInput)
	}

	todo, err := s.todoRepo.FindByID(ctx, user.ID, todoID)
	if err != nil {
		return nil, asNotFound(err)
	}
	if changeCategory && newCategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, user.ID, *newCategoryID); err != nil {
			return nil, asNotFound(err)
		}
	}
	before := *todo

	keys := []string{todoScopeKey(user.ID, todo.CategoryID)}
	if changeCategory {
		keys = append(keys, todoScopeKey(user.ID, newCategoryID))
	}
	unlock := s.locks.Lock(keys...)
	moved, err := s.todoRepo.Move(ctx, user.ID, todoID, newIndex, newCategoryID, changeCategory)
	unlock()
	if err != nil {
		return nil, asNotFound(err)
	}

	s.activity.Record(user.ID, model.ActivityTodoMoved, "todo", moved.ID, &before, moved)
	return moved, nil
}

// Delete removes the todo and its subtasks.
func (s *TodoService) Delete(ctx context.Context, user *model.User, todoID uint) error {
	todo, err := s.todoRepo.FindByID(ctx, user.ID, todoID)
	if err != nil {
		return asNotFound(err)
	}
	if err := s.todoRepo.Delete(ctx, user.ID, todoID); err != nil {
		return asNotFound(err)
	}
	s.activity.Record(user.ID, model.ActivityTodoDeleted, "todo", todoID, todo, nil)
	return nil
}

func asNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

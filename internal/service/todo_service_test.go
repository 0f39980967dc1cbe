package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
	"taskdesk/internal/repository"
)

type fixture struct {
	db         *gorm.DB
	todos      *TodoService
	categories *CategoryService
	activity   *ActivityService
	user       *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	activity := NewActivityService(repository.NewActivityRepository(db))
	locks := ordering.NewScopeLock()
	todoRepo := repository.NewTodoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)

	user, err := repository.NewUserRepository(db).UpsertByEmail(context.Background(), "fixture@example.com", "Fixture")
	require.NoError(t, err)

	return &fixture{
		db:         db,
		todos:      NewTodoService(todoRepo, categoryRepo, activity, locks),
		categories: NewCategoryService(categoryRepo, activity, locks),
		activity:   activity,
		user:       user,
	}
}

func (f *fixture) createTodos(t *testing.T, titles ...string) map[string]uint {
	t.Helper()
	ids := make(map[string]uint, len(titles))
	for _, title := range titles {
		todo, err := f.todos.Create(context.Background(), f.user, TodoInput{Title: title})
		require.NoError(t, err)
		ids[title] = todo.ID
	}
	return ids
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.todos.Create(context.Background(), f.user, TodoInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := uint(4242)
	_, err = f.todos.Create(context.Background(), f.user, TodoInput{Title: "x", CategoryID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComplete_RecurringCreatesSuccessor(t *testing.T) {
	f := newFixture(t)

	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "water plants",
		DueDate:        &due,
		RecurrenceRule: "FREQ=DAILY",
	})
	require.NoError(t, err)

	completed, successor, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, completed.Completed)

	require.NotNil(t, successor)
	assert.False(t, successor.Completed)
	assert.Equal(t, "water plants", successor.Title)
	assert.Equal(t, "FREQ=DAILY", successor.RecurrenceRule)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 1), successor.DueDate.UTC())

	// Exactly one new todo in the scope.
	todos, err := f.todos.List(context.Background(), f.user, nil, true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestComplete_NonRecurring(t *testing.T) {
	f := newFixture(t)
	ids := f.createTodos(t, "one-shot")

	completed, successor, err := f.todos.Complete(context.Background(), f.user, ids["one-shot"], time.Now())
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.Nil(t, successor)
}

func TestComplete_RecurrenceEndReached(t *testing.T) {
	f := newFixture(t)

	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	end := due // next would be the 16th, past the end
	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "expiring",
		DueDate:        &due,
		RecurrenceRule: "FREQ=DAILY",
		RecurrenceEnd:  &end,
	})
	require.NoError(t, err)

	_, successor, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, successor)
}

func TestComplete_UnparseableRuleFailsOpen(t *testing.T) {
	f := newFixture(t)

	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "legacy",
		DueDate:        &due,
		RecurrenceRule: "FREQ=FORTNIGHTLY;WAT=1",
	})
	require.NoError(t, err)

	completed, successor, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, completed.Completed)
	assert.Nil(t, successor)
}

func TestComplete_UndatedUsesCompletionTimeAsAnchor(t *testing.T) {
	f := newFixture(t)

	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "undated",
		RecurrenceRule: "FREQ=WEEKLY",
	})
	require.NoError(t, err)

	completedAt := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	_, successor, err := f.todos.Complete(context.Background(), f.user, todo.ID, completedAt)
	require.NoError(t, err)
	require.NotNil(t, successor)
	require.NotNil(t, successor.DueDate)
	assert.Equal(t, completedAt.AddDate(0, 0, 7), successor.DueDate.UTC())
}

func TestComplete_AlreadyCompletedIsIdempotent(t *testing.T) {
	f := newFixture(t)

	due := time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC)
	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "repeat",
		DueDate:        &due,
		RecurrenceRule: "FREQ=DAILY",
	})
	require.NoError(t, err)

	_, first, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, first)

	_, second, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, second, "completing twice must not spawn a second successor")
}

func TestStopRecurrence(t *testing.T) {
	f := newFixture(t)

	todo, err := f.todos.Create(context.Background(), f.user, TodoInput{
		Title:          "stoppable",
		RecurrenceRule: "FREQ=DAILY",
	})
	require.NoError(t, err)

	stopped, err := f.todos.StopRecurrence(context.Background(), f.user, todo.ID)
	require.NoError(t, err)
	assert.Empty(t, stopped.RecurrenceRule)

	_, successor, err := f.todos.Complete(context.Background(), f.user, todo.ID, time.Now())
	require.NoError(t, err)
	assert.Nil(t, successor)
}

func TestMove_Validation(t *testing.T) {
	f := newFixture(t)
	ids := f.createTodos(t, "a")

	_, err := f.todos.Move(context.Background(), f.user, ids["a"], -1, nil, false)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.todos.Move(context.Background(), f.user, 9999, 0, nil, false)
	assert.ErrorIs(t, err, ErrNotFound)

	missing := uint(4242)
	_, err = f.todos.Move(context.Background(), f.user, ids["a"], 0, &missing, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMove_OtherUsersTodoIsNotFound(t *testing.T) {
	f := newFixture(t)
	ids := f.createTodos(t, "mine")

	other, err := repository.NewUserRepository(f.db).UpsertByEmail(context.Background(), "other@example.com", "Other")
	require.NoError(t, err)

	_, err = f.todos.Move(context.Background(), other, ids["mine"], 0, nil, false)
	assert.ErrorIs(t, err, ErrNotFound)
}

// N concurrent moves on one scope must leave the sort orders a permutation
// of 0..n-1: no duplicates, no gaps.
func TestMove_ConcurrentMovesKeepScopeDense(t *testing.T) {
	f := newFixture(t)
	titles := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	ids := f.createTodos(t, titles...)

	targets := []int{7, 0, 3, 5, 1, 6, 2, 4}
	var wg sync.WaitGroup
	for i, title := range titles {
		wg.Add(1)
		go func(id uint, to int) {
			defer wg.Done()
			_, err := f.todos.Move(context.Background(), f.user, id, to, nil, false)
			assert.NoError(t, err)
		}(ids[title], targets[i])
	}
	wg.Wait()

	todos, err := f.todos.List(context.Background(), f.user, nil, true)
	require.NoError(t, err)
	require.Len(t, todos, len(titles))

	seen := make(map[int]bool, len(todos))
	for _, todo := range todos {
		assert.False(t, seen[todo.SortOrder], "duplicate sort order %d", todo.SortOrder)
		assert.GreaterOrEqual(t, todo.SortOrder, 0)
		assert.Less(t, todo.SortOrder, len(titles))
		seen[todo.SortOrder] = true
	}
}

func TestDelete_RecordsActivity(t *testing.T) {
	f := newFixture(t)
	ids := f.createTodos(t, "doomed")

	require.NoError(t, f.todos.Delete(context.Background(), f.user, ids["doomed"]))
	f.activity.Flush()

	entries, err := repository.NewActivityRepository(f.db).ListByUser(context.Background(), f.user.ID, 10)
	require.NoError(t, err)

	var found bool
	for _, e := range entries {
		if e.Action == model.ActivityTodoDeleted && e.TargetID == ids["doomed"] {
			found = true
			assert.NotEmpty(t, e.Before)
			assert.Empty(t, e.After)
		}
	}
	assert.True(t, found, "expected a todo_deleted entry")
}

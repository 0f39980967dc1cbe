package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"taskdesk/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user, err := NewUserRepository(db).UpsertByEmail(context.Background(), email, "Test User")
	require.NoError(t, err)
	return user
}

// sortOrders returns the scope's sort-order values indexed by todo title.
func sortOrders(t *testing.T, repo *TodoRepository, userID uint, categoryID *uint) map[string]int {
	t.Helper()
	todos, err := repo.ListScope(context.Background(), userID, categoryID)
	require.NoError(t, err)
	out := make(map[string]int, len(todos))
	for _, todo := range todos {
		out[todo.Title] = todo.SortOrder
	}
	return out
}

// requireDense asserts the values are exactly {0..n-1}.
func requireDense(t *testing.T, orders map[string]int) {
	t.Helper()
	seen := make(map[int]string, len(orders))
	for title, pos := range orders {
		require.GreaterOrEqual(t, pos, 0, "todo %q", title)
		require.Less(t, pos, len(orders), "todo %q", title)
		require.NotContains(t, seen, pos, "todos %q and %q share sort order %d", title, seen[pos], pos)
		seen[pos] = title
	}
}

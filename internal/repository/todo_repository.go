package repository

import (
	"context"
	"database/sql"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
)

// TodoRepository handles persistence for todos, including the transactional
// sort-order shifts that keep each (user, category) scope dense.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// todoScope narrows a query to the ordered members of one (user, category)
// scope: top-level todos only, subtasks never participate in ordering.
func todoScope(tx *gorm.DB, userID uint, categoryID *uint) *gorm.DB {
	tx = tx.Where("user_id = ? AND parent_id IS NULL", userID)
	if categoryID == nil {
		return tx.Where("category_id IS NULL")
	}
	return tx.Where("category_id = ?", *categoryID)
}

// Create inserts a todo. Top-level todos land at the end of their scope
// (max sort order + 1); subtasks are stored as-is. Creation deliberately
// does not go through the move machinery.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	if todo.ParentID != nil {
		if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
			return fmt.Errorf("create subtask: %w", err)
		}
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextSortOrder(tx, todo.UserID, todo.CategoryID)
		if err != nil {
			return err
		}
		todo.SortOrder = next
		if err := tx.Create(todo).Error; err != nil {
			return fmt.Errorf("create todo: %w", err)
		}
		return nil
	})
}

func nextSortOrder(tx *gorm.DB, userID uint, categoryID *uint) (int, error) {
	var max sql.NullInt64
	if err := todoScope(tx.Model(&model.Todo{}), userID, categoryID).
		Select("MAX(sort_order)").Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("next sort order: %w", err)
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64) + 1, nil
}

// FindByID returns the user's todo or gorm.ErrRecordNotFound, which also
// covers todos owned by somebody else.
func (r *TodoRepository) FindByID(ctx context.Context, userID, todoID uint) (*model.Todo, error) {
	var todo model.Todo
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND id = ?", userID, todoID).First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// ListScope returns a scope's top-level todos in sort order.
func (r *TodoRepository) ListScope(ctx context.Context, userID uint, categoryID *uint) ([]model.Todo, error) {
	var todos []model.Todo
	if err := todoScope(r.db.WithContext(ctx), userID, categoryID).
		Order("sort_order ASC").Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// ListByUser returns all of a user's top-level todos grouped by category.
func (r *TodoRepository) ListByUser(ctx context.Context, userID uint) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).Preload("Category").
		Where("user_id = ? AND parent_id IS NULL", userID).
		Order("category_id ASC, sort_order ASC").Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// ListSubtasks returns a todo's subtasks in creation order.
func (r *TodoRepository) ListSubtasks(ctx context.Context, userID, parentID uint) ([]model.Todo, error) {
	var todos []model.Todo
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND parent_id = ?", userID, parentID).
		Order("created_at ASC").Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// Move repositions a top-level todo within its scope, or into another
// category, shifting exactly the affected neighbors. Everything runs in one
// transaction; no partial shift is ever visible. Concurrent moves on the
// same scope must be serialized by the caller (see ordering.ScopeLock).
//
// Same-scope moves keep the scope dense. Cross-category moves make room in
// the destination but leave the gap in the source scope unclosed; sort
// order is advisory display order there until the next reorder.
func (r *TodoRepository) Move(ctx context.Context, userID, todoID uint, newIndex int, newCategoryID *uint, changeCategory bool) (*model.Todo, error) {
	var moved model.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var todo model.Todo
		if err := tx.Where("user_id = ? AND id = ?", userID, todoID).First(&todo).Error; err != nil {
			return err
		}
		if todo.ParentID != nil {
			// Subtasks have no position to move.
			return gorm.ErrRecordNotFound
		}

		crossScope := changeCategory && !sameCategory(todo.CategoryID, newCategoryID)
		if crossScope {
			if err := todoScope(tx.Model(&model.Todo{}), userID, newCategoryID).
				Where("sort_order >= ? AND id <> ?", newIndex, todo.ID).
				UpdateColumn("sort_order", gorm.Expr("sort_order + 1")).Error; err != nil {
				return fmt.Errorf("shift destination scope: %w", err)
			}
			todo.CategoryID = newCategoryID
		} else if plan, ok := ordering.PlanMove(todo.SortOrder, newIndex); ok {
			if err := todoScope(tx.Model(&model.Todo{}), userID, todo.CategoryID).
				Where("sort_order BETWEEN ? AND ? AND id <> ?", plan.Low, plan.High, todo.ID).
				UpdateColumn("sort_order", gorm.Expr("sort_order + ?", plan.Delta)).Error; err != nil {
				return fmt.Errorf("shift neighbors: %w", err)
			}
		}

		todo.SortOrder = newIndex
		if err := tx.Model(&model.Todo{}).Where("id = ?", todo.ID).
			Updates(map[string]interface{}{
				"sort_order":  todo.SortOrder,
				"category_id": todo.CategoryID,
			}).Error; err != nil {
			return fmt.Errorf("write position: %w", err)
		}

		return tx.Preload("Category").First(&moved, todo.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

func sameCategory(a, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CompleteWithSuccessor marks a todo completed and, when a successor
// occurrence was computed, inserts it at the end of its scope. Both writes
// share one transaction so a crash can not complete the todo and lose the
// successor.
func (r *TodoRepository) CompleteWithSuccessor(ctx context.Context, todo *model.Todo, successor *model.Todo) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		todo.Completed = true
		if err := tx.Model(&model.Todo{}).Where("id = ?", todo.ID).
			UpdateColumn("completed", true).Error; err != nil {
			return fmt.Errorf("complete todo: %w", err)
		}
		if successor == nil {
			return nil
		}
		next, err := nextSortOrder(tx, successor.UserID, successor.CategoryID)
		if err != nil {
			return err
		}
		successor.SortOrder = next
		if err := tx.Create(successor).Error; err != nil {
			return fmt.Errorf("create successor: %w", err)
		}
		return nil
	})
}

// ClearRecurrence stops a todo from repeating.
func (r *TodoRepository) ClearRecurrence(ctx context.Context, todoID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Todo{}).Where("id = ?", todoID).
		Updates(map[string]interface{}{
			"recurrence_rule": "",
			"recurrence_end":  nil,
		}).Error; err != nil {
		return fmt.Errorf("clear recurrence: %w", err)
	}
	return nil
}

// Delete removes the user's todo along with its subtasks.
func (r *TodoRepository) Delete(ctx context.Context, userID, todoID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, todoID).Delete(&model.Todo{})
		if res.Error != nil {
			return fmt.Errorf("delete todo: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("user_id = ? AND parent_id = ?", userID, todoID).
			Delete(&model.Todo{}).Error; err != nil {
			return fmt.Errorf("delete subtasks: %w", err)
		}
		return nil
	})
}

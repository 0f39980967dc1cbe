package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"taskdesk/internal/model"
	"taskdesk/internal/ordering"
)

// CategoryRepository manages todo categories and their per-user ordering.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category at position 0, shifting every existing category
// of the user up by one in the same transaction. Unlike todos, categories
// always enter at the top.
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Category{}).Where("user_id = ?", category.UserID).
			UpdateColumn("sort_order", gorm.Expr("sort_order + 1")).Error; err != nil {
			return fmt.Errorf("shift categories: %w", err)
		}
		category.SortOrder = 0
		if err := tx.Create(category).Error; err != nil {
			return fmt.Errorf("create category: %w", err)
		}
		return nil
	})
}

// GetByID returns the user's category or gorm.ErrRecordNotFound.
func (r *CategoryRepository) GetByID(ctx context.Context, userID, categoryID uint) (*model.Category, error) {
	var category model.Category
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, categoryID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser returns the user's categories in sort order.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("sort_order ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Move repositions a category within the user's sequence. Same algorithm as
// todo moves, with the scope being the user alone; runs as one transaction
// and relies on the caller for per-scope serialization.
func (r *CategoryRepository) Move(ctx context.Context, userID, categoryID uint, newIndex int) (*model.Category, error) {
	var moved model.Category
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.Where("user_id = ? AND id = ?", userID, categoryID).First(&category).Error; err != nil {
			return err
		}

		if plan, ok := ordering.PlanMove(category.SortOrder, newIndex); ok {
			if err := tx.Model(&model.Category{}).
				Where("user_id = ? AND sort_order BETWEEN ? AND ? AND id <> ?", userID, plan.Low, plan.High, category.ID).
				UpdateColumn("sort_order", gorm.Expr("sort_order + ?", plan.Delta)).Error; err != nil {
				return fmt.Errorf("shift categories: %w", err)
			}
		}

		if err := tx.Model(&model.Category{}).Where("id = ?", category.ID).
			UpdateColumn("sort_order", newIndex).Error; err != nil {
			return fmt.Errorf("write position: %w", err)
		}

		return tx.First(&moved, category.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &moved, nil
}

// Delete removes the user's category, detaches its todos, and closes the
// gap so the remaining categories stay dense.
func (r *CategoryRepository) Delete(ctx context.Context, userID, categoryID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.Where("user_id = ? AND id = ?", userID, categoryID).First(&category).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Todo{}).
			Where("user_id = ? AND category_id = ?", userID, categoryID).
			UpdateColumn("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach todos: %w", err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		if err := tx.Model(&model.Category{}).
			Where("user_id = ? AND sort_order > ?", userID, category.SortOrder).
			UpdateColumn("sort_order", gorm.Expr("sort_order - 1")).Error; err != nil {
			return fmt.Errorf("close gap: %w", err)
		}
		return nil
	})
}

package model

import "time"

// Category groups todos by area (work, health, study, etc.).
// SortOrder values are dense per user: exactly {0..n-1} with no gaps.
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"index;index:idx_user_category_name,unique"`
	Name      string `gorm:"index:idx_user_category_name,unique"`
	SortOrder int    `gorm:"default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Todos     []Todo `gorm:"foreignKey:CategoryID"`
}

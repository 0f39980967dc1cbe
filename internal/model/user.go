package model

import "time"

// User owns todos and categories; every query in the system is scoped to one.
type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"uniqueIndex"`
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package model

import "time"

// ActivityAction identifies what kind of change an audit entry records.
type ActivityAction string

const (
	ActivityTodoCreated     ActivityAction = "todo_created"
	ActivityTodoCompleted   ActivityAction = "todo_completed"
	ActivityTodoUpdated     ActivityAction = "todo_updated"
	ActivityTodoMoved       ActivityAction = "todo_moved"
	ActivityTodoDeleted     ActivityAction = "todo_deleted"
	ActivityCategoryCreated ActivityAction = "category_created"
	ActivityCategoryMoved   ActivityAction = "category_moved"
	ActivityCategoryDeleted ActivityAction = "category_deleted"
)

// ActivityEntry is one row of the audit trail. Before and After hold JSON
// snapshots of the target and may be empty when not applicable.
type ActivityEntry struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index"`
	Action     ActivityAction
	TargetType string
	TargetID   uint
	Before     string
	After      string
	CreatedAt  time.Time `gorm:"index"`
}

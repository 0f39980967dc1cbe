package model

import "time"

// Priority is a coarse urgency level attached to a todo.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Todo represents a single item in the planner. Top-level todos (ParentID
// nil) carry a SortOrder that is dense within their (UserID, CategoryID)
// scope; subtasks are excluded from ordering and from recurrence.
//
// RecurrenceRule holds the encoded rule grammar as an opaque string; empty
// means the todo does not repeat. RecurrenceEnd, when set, is the last date
// on which an occurrence may fall.
type Todo struct {
	ID             uint  `gorm:"primaryKey"`
	UserID         uint  `gorm:"index"`
	CategoryID     *uint `gorm:"index"`
	ParentID       *uint `gorm:"index"`
	Title          string
	Description    string
	Priority       Priority `gorm:"default:medium"`
	Completed      bool     `gorm:"default:false"`
	DueDate        *time.Time
	SortOrder      int `gorm:"default:0"`
	RecurrenceRule string
	RecurrenceEnd  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Category       *Category `gorm:"foreignKey:CategoryID"`
	Subtasks       []Todo    `gorm:"foreignKey:ParentID"`
}

// IsSubtask reports whether the todo belongs to a parent todo.
func (t *Todo) IsSubtask() bool {
	return t.ParentID != nil
}

package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Task is a unit of work tracked by the API.
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:t"`

	ID          string     `bun:"id,pk,type:uuid"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description"`
	DueDate     *time.Time `bun:"due_date"`
	Completed   bool       `bun:"completed,notnull,default:false"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// IsOverdue reports whether an open task is past its due date at now.
func (t *Task) IsOverdue(now time.Time) bool {
	if t == nil || t.Completed || t.DueDate == nil {
		return false
	}
	return t.DueDate.Before(now)
}

// FilterFields returns the attributes list filters are evaluated against.
func (t *Task) FilterFields(now time.Time) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"completed":   t.Completed,
		"overdue":     t.IsOverdue(now),
		"has_due":     t.DueDate != nil,
	}
}
